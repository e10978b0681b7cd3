package main

import (
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/vdobler/rq/redact"
)

// newLogger builds the zerolog.Logger handed to every runner.EntryRunner
// (SPEC_FULL.md AMBIENT STACK "Logging"). Verbosity gating happens inside
// runner itself; this logger's own level is left at Trace so it never
// double-filters what the runner already decided to emit. Every line is
// passed through redactor first, so a secret variable logged at
// --verbose/--very-verbose never reaches the terminal in clear text
// (spec.md §4.10).
func newLogger(redactor *redact.Redactor) zerolog.Logger {
	w := zerolog.ConsoleWriter{Out: redactingWriter{redactor, os.Stderr}, NoColor: !useColor()}
	return zerolog.New(w).With().Timestamp().Logger().Level(zerolog.TraceLevel)
}

// redactingWriter runs every write through redactor.Apply before passing
// it on to out. It reports the full length of p written on success, even
// though the redacted text handed to out is usually shorter, since callers
// only care that p was consumed, not that it passed through unchanged.
type redactingWriter struct {
	redactor *redact.Redactor
	out      io.Writer
}

func (w redactingWriter) Write(p []byte) (int, error) {
	s := string(p)
	if w.redactor != nil {
		s = w.redactor.Apply(s)
	}
	if _, err := io.WriteString(w.out, s); err != nil {
		return 0, err
	}
	return len(p), nil
}
