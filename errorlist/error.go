// Package errorlist accumulates the errors found while resolving a run's
// script files, so rq can report every bad file in one pass instead of
// stopping at the first (spec.md §6 "every file is parsed before exiting").
package errorlist

import (
	"strings"
)

// List is a flat collection of errors that itself satisfies error.
type List []error

// Append adds err to l. A nil err is a no-op. Appending a List flattens it
// into l instead of nesting, so Messages never has to recurse through more
// than one level in practice.
func (l List) Append(err error) List {
	if err == nil {
		return l
	}
	if nested, ok := err.(List); ok {
		return append(l, nested...)
	}
	return append(l, err)
}

// AsError returns l as an error, or nil when l is empty — the usual
// pattern for a function that accumulates into a List across a loop and
// only wants to fail when something actually went wrong.
func (l List) AsError() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

// Messages flattens l into one line per error, unwrapping any nested List.
func (l List) Messages() []string {
	msgs := make([]string, 0, len(l))
	for _, err := range l {
		if nested, ok := err.(List); ok {
			msgs = append(msgs, nested.Messages()...)
		} else {
			msgs = append(msgs, err.Error())
		}
	}
	return msgs
}

// Error joins every message in l with ";  ", so a List
// still behaves sanely wherever it's printed through the plain error
// interface (e.g. %v, or a caller that doesn't know about List).
func (l List) Error() string {
	return strings.Join(l.Messages(), ";  ")
}
