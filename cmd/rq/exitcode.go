package main

// Exit codes, spec.md §6 "Exit codes.".
const (
	exitSuccess       = 0
	exitUsageError    = 1
	exitParseError    = 2
	exitRuntimeError  = 3
	exitAssertFailure = 4
	exitInternalError = 127
)
