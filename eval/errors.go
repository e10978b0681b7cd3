// Package eval evaluates the AST against a variable set and the current
// HTTP call: templates and expressions (C11–C12), filters (C13),
// predicates (C14), and queries (C15).
package eval

import (
	"fmt"

	"github.com/vdobler/rq/ast"
)

// RuntimeErrorKind enumerates the runtime error kinds of spec.md §6.
type RuntimeErrorKind int

const (
	ErrTemplateVariableNotDefined RuntimeErrorKind = iota
	ErrTemplateTypeMismatch
	ErrEnvMissing
	ErrInvalidUrl
	ErrQueryInvalidInput
	ErrFilterInvalidInput
	ErrFilterRegexNoCapture
	ErrFilterDecode
	ErrInvalidRegex
	ErrAssertFailure
	ErrExpressionInvalidType
	ErrSecretValueViolation
	ErrHttp
	ErrOutput
)

// RuntimeError is a positioned, kinded runtime failure (spec.md §6).
// Non-retryable unless Kind is ErrHttp.
type RuntimeError struct {
	Kind RuntimeErrorKind
	Name string // the name/value/reason/typeName payload, kind-dependent
	Span ast.Span
}

func (e *RuntimeError) Error() string {
	switch e.Kind {
	case ErrTemplateVariableNotDefined:
		return fmt.Sprintf("%s: variable %q is not defined", e.Span, e.Name)
	case ErrTemplateTypeMismatch:
		return fmt.Sprintf("%s: template requires a string value", e.Span)
	case ErrEnvMissing:
		return fmt.Sprintf("%s: environment variable %q is not set", e.Span, e.Name)
	case ErrInvalidUrl:
		return fmt.Sprintf("%s: invalid URL: %s", e.Span, e.Name)
	case ErrQueryInvalidInput:
		return fmt.Sprintf("%s: query cannot be applied to a %s", e.Span, e.Name)
	case ErrFilterInvalidInput:
		return fmt.Sprintf("%s: filter cannot be applied to a %s", e.Span, e.Name)
	case ErrFilterRegexNoCapture:
		return fmt.Sprintf("%s: regex has no capture group", e.Span)
	case ErrFilterDecode:
		return fmt.Sprintf("%s: decode failed: %s", e.Span, e.Name)
	case ErrInvalidRegex:
		return fmt.Sprintf("%s: invalid regex: %s", e.Span, e.Name)
	case ErrExpressionInvalidType:
		return fmt.Sprintf("%s: unexpected value %s", e.Span, e.Name)
	case ErrSecretValueViolation:
		return fmt.Sprintf("%s: secret value used where disallowed", e.Span)
	case ErrHttp:
		return fmt.Sprintf("%s: transport error: %s", e.Span, e.Name)
	case ErrOutput:
		return fmt.Sprintf("%s: output error: %s", e.Span, e.Name)
	default:
		return fmt.Sprintf("%s: runtime error", e.Span)
	}
}

// Retryable reports whether the error kind is subject to a retry policy
// (only HTTP transport errors are, per spec.md §6 propagation policy).
func (e *RuntimeError) Retryable() bool { return e.Kind == ErrHttp }

func errf(kind RuntimeErrorKind, sp ast.Span, name string) *RuntimeError {
	return &RuntimeError{Kind: kind, Name: name, Span: sp}
}
