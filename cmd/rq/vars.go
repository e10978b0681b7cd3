package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/vdobler/rq/scope"
	"github.com/vdobler/rq/value"
)

// loadVariables builds the seed scope.Set from --variable/--variables-file
// and --secret/--secrets-file (spec.md §6 "Variables-from-file format"),
// and returns the raw (pre-type-inference) text of every secret so the
// redactor can be seeded with exactly what a user would recognize in
// their own logs (spec.md §5 "the secret redactor ... initialized once
// from the merged set of secret variables before any execution").
func loadVariables() (vars *scope.Set, secretRaw []string, err error) {
	vars = scope.New()

	if flagVariablesFile != "" {
		if err := loadVariableFile(vars, flagVariablesFile, false, nil); err != nil {
			return nil, nil, err
		}
	}
	for _, kv := range flagVariable {
		name, _, v, err := parseAssignment(kv)
		if err != nil {
			return nil, nil, fmt.Errorf("--variable %q: %w", kv, err)
		}
		vars.Set(name, v, false)
	}

	if flagSecretsFile != "" {
		if err := loadVariableFile(vars, flagSecretsFile, true, &secretRaw); err != nil {
			return nil, nil, err
		}
	}
	for _, kv := range flagSecret {
		name, raw, v, err := parseAssignment(kv)
		if err != nil {
			return nil, nil, fmt.Errorf("--secret %q: %w", kv, err)
		}
		vars.Set(name, v, true)
		secretRaw = append(secretRaw, raw)
	}

	return vars, secretRaw, nil
}

// loadVariableFile reads one name=value pair per line; blank lines and #
// comments are ignored (spec.md §6). When collect is non-nil, every
// parsed value's raw text is appended to it (used for secrets files).
func loadVariableFile(vars *scope.Set, path string, secret bool, collect *[]string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, raw, v, err := parseAssignment(line)
		if err != nil {
			return fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
		vars.Set(name, v, secret)
		if collect != nil {
			*collect = append(*collect, raw)
		}
	}
	return scanner.Err()
}

func parseAssignment(s string) (name, raw string, v value.Value, err error) {
	idx := strings.Index(s, "=")
	if idx < 0 {
		return "", "", value.Null, fmt.Errorf("expected name=value")
	}
	name = s[:idx]
	raw = s[idx+1:]
	return name, raw, inferValue(raw), nil
}

// inferValue applies the bool/integer/float/string type rules of spec.md
// §3's Value sum type to a bare CLI/file string, the same inference Hurl
// applies to --variable (original_source/packages/hurl/src/util/term).
func inferValue(raw string) value.Value {
	switch raw {
	case "true":
		return value.Bool(true)
	case "false":
		return value.Bool(false)
	case "null":
		return value.Null
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return value.Integer(n)
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return value.Float(f)
	}
	return value.String(raw)
}
