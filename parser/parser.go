package parser

import (
	"github.com/vdobler/rq/ast"
	"github.com/vdobler/rq/internal/lex"
)

// ParseScript parses the full contents of one script file into an
// ast.File. The returned error, if any, is always a *lex.ParseError.
func ParseScript(filename string, src []byte) (ast.File, error) {
	r := lex.NewReader(filename, src)
	f, err := ParseFile(r)
	if err != nil {
		return ast.File{}, err
	}
	skipBlankLines(r)
	if !r.AtEOF() {
		return ast.File{}, lex.Fatal(r, lex.ErrExpecting, "end of file or next entry")
	}
	return f, nil
}
