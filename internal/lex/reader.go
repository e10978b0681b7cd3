// Package lex holds the reader, cursor, and primitive parsers the script
// parser is built from. Every parser here returns either a parsed value
// and an advanced cursor, or an error tagged recoverable/fatal: a
// recoverable error must leave the cursor where it found it so callers can
// backtrack; a fatal error never backtracks.
package lex

import "github.com/vdobler/rq/ast"

// Cursor is a restartable position inside a Reader's source.
type Cursor struct {
	Offset int
	Line   int
	Column int
}

// Reader holds the full source text of one script file plus a current
// cursor. It never copies the source; all parsing works on byte offsets.
type Reader struct {
	Source []byte
	File   string
	cur    Cursor
}

// NewReader creates a Reader positioned at the start of src.
func NewReader(file string, src []byte) *Reader {
	return &Reader{Source: src, File: file, cur: Cursor{Offset: 0, Line: 1, Column: 1}}
}

// Pos returns the current cursor as an ast.Position.
func (r *Reader) Pos() ast.Position {
	return ast.Position{Line: r.cur.Line, Column: r.cur.Column}
}

// Mark returns a restart point for Seek.
func (r *Reader) Mark() Cursor { return r.cur }

// Seek restores a previously marked cursor, for backtracking out of a
// recoverable failure.
func (r *Reader) Seek(c Cursor) { r.cur = c }

// AtEOF reports whether the cursor is at the end of the source.
func (r *Reader) AtEOF() bool { return r.cur.Offset >= len(r.Source) }

// Peek returns the byte at the cursor without advancing, and false at EOF.
func (r *Reader) Peek() (byte, bool) {
	if r.AtEOF() {
		return 0, false
	}
	return r.Source[r.cur.Offset], true
}

// PeekAt returns the byte n positions ahead of the cursor without
// advancing.
func (r *Reader) PeekAt(n int) (byte, bool) {
	off := r.cur.Offset + n
	if off < 0 || off >= len(r.Source) {
		return 0, false
	}
	return r.Source[off], true
}

// Read consumes and returns one byte, updating line/column bookkeeping.
func (r *Reader) Read() (byte, bool) {
	b, ok := r.Peek()
	if !ok {
		return 0, false
	}
	r.cur.Offset++
	if b == '\n' {
		r.cur.Line++
		r.cur.Column = 1
	} else {
		r.cur.Column++
	}
	return b, true
}

// ReadWhile consumes bytes while pred holds, returning the consumed run.
func (r *Reader) ReadWhile(pred func(byte) bool) string {
	start := r.cur.Offset
	for {
		b, ok := r.Peek()
		if !ok || !pred(b) {
			break
		}
		r.Read()
	}
	return string(r.Source[start:r.cur.Offset])
}

// ReadFrom returns the substring between the marked cursor and the
// current position.
func (r *Reader) ReadFrom(start Cursor) string {
	return string(r.Source[start.Offset:r.cur.Offset])
}

// Span builds an ast.Span from a start cursor to the current position.
func (r *Reader) Span(start Cursor) ast.Span {
	return ast.Span{
		Begin: ast.Position{Line: start.Line, Column: start.Column},
		End:   r.Pos(),
	}
}
