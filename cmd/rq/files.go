package main

import (
	"fmt"
	"path/filepath"
	"sort"
)

// resolveFiles collects the script paths to run: positional args and
// --test are both accepted (as repeatable alternatives to each other),
// plus --glob, filtered by --include if given (spec.md §6 CLI surface).
func resolveFiles(args []string) ([]string, error) {
	seen := map[string]bool{}
	var files []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, a := range args {
		add(a)
	}
	for _, t := range flagTest {
		add(t)
	}

	if flagGlob != "" {
		matches, err := filepath.Glob(flagGlob)
		if err != nil {
			return nil, fmt.Errorf("--glob %q: %w", flagGlob, err)
		}
		for _, m := range matches {
			add(m)
		}
	}

	if flagInclude != "" {
		var filtered []string
		for _, f := range files {
			ok, err := filepath.Match(flagInclude, filepath.Base(f))
			if err != nil {
				return nil, fmt.Errorf("--include %q: %w", flagInclude, err)
			}
			if ok {
				filtered = append(filtered, f)
			}
		}
		files = filtered
	}

	sort.Strings(files)
	if len(files) == 0 {
		return nil, fmt.Errorf("no script files given: pass file arguments, --test, or --glob")
	}
	return files, nil
}
