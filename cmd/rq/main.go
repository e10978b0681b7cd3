// Command rq executes .rq scripts against HTTP servers and reports the
// outcome (spec.md §6 "CLI surface"). It is a thin front end over the
// runner/report/progress packages: flags map 1:1 to the options of
// spec.md §4.8 plus the global flags of §6 — no behavior lives here that
// the teacher would have called "application logic".
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUsageError)
	}
}
