package lex

import "strconv"

func isSpaceTab(b byte) bool { return b == ' ' || b == '\t' }

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isHexDigit(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isAlphaNumUnderscore(b byte) bool {
	return isAlpha(b) || isDigit(b) || b == '_' || b == '-' || b == '.'
}

// Literal matches s exactly or fails fatally. Use for tokens that, once
// their prefix is identified, must be present (e.g. the closing
// placeholder brace).
func Literal(r *Reader, s string) error {
	start := r.Mark()
	for i := 0; i < len(s); i++ {
		b, ok := r.Read()
		if !ok || b != s[i] {
			r.Seek(start)
			return Fatal(r, ErrExpecting, s)
		}
	}
	return nil
}

// TryLiteral matches s exactly or fails recoverably, restoring the cursor.
func TryLiteral(r *Reader, s string) error {
	start := r.Mark()
	for i := 0; i < len(s); i++ {
		b, ok := r.Read()
		if !ok || b != s[i] {
			r.Seek(start)
			return Recoverable(r, s)
		}
	}
	return nil
}

// Whitespace consumes zero or more spaces/tabs (never newlines).
func Whitespace(r *Reader) string {
	return r.ReadWhile(isSpaceTab)
}

// LineTerminator consumes trailing whitespace, an optional `#comment`, and
// a newline or EOF. Fails fatally if anything else follows the optional
// comment.
func LineTerminator(r *Reader) error {
	Whitespace(r)
	if b, ok := r.Peek(); ok && b == '#' {
		r.ReadWhile(func(b byte) bool { return b != '\n' })
	}
	if r.AtEOF() {
		return nil
	}
	b, _ := r.Peek()
	if b == '\n' {
		r.Read()
		return nil
	}
	return Fatal(r, ErrExpecting, "end of line")
}

// Natural matches an unsigned integer with no leading zeros (unless the
// literal is exactly "0").
func Natural(r *Reader) (int64, error) {
	start := r.Mark()
	digits := r.ReadWhile(isDigit)
	if digits == "" {
		r.Seek(start)
		return 0, Recoverable(r, "natural number")
	}
	if len(digits) > 1 && digits[0] == '0' {
		r.Seek(start)
		return 0, Fatal(r, ErrExpecting, "natural number without leading zero")
	}
	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		r.Seek(start)
		return 0, Fatal(r, ErrExpecting, "natural number")
	}
	return v, nil
}

// Integer matches an optionally-signed integer.
func Integer(r *Reader) (int64, error) {
	start := r.Mark()
	neg := false
	if b, ok := r.Peek(); ok && (b == '-' || b == '+') {
		neg = b == '-'
		r.Read()
	}
	v, err := Natural(r)
	if err != nil {
		r.Seek(start)
		return 0, err
	}
	if neg {
		v = -v
	}
	return v, nil
}

// Number matches an integer or decimal literal with an optional exponent,
// returning the raw source text (decimal precision is preserved by the
// caller rather than collapsed to float64 here).
func Number(r *Reader) (string, bool, error) {
	start := r.Mark()
	if b, ok := r.Peek(); ok && (b == '-' || b == '+') {
		r.Read()
	}
	intPart := r.ReadWhile(isDigit)
	if intPart == "" {
		r.Seek(start)
		return "", false, Recoverable(r, "number")
	}
	isFloat := false
	if b, ok := r.Peek(); ok && b == '.' {
		mark := r.Mark()
		r.Read()
		frac := r.ReadWhile(isDigit)
		if frac == "" {
			r.Seek(mark)
		} else {
			isFloat = true
		}
	}
	if b, ok := r.Peek(); ok && (b == 'e' || b == 'E') {
		mark := r.Mark()
		r.Read()
		if b, ok := r.Peek(); ok && (b == '-' || b == '+') {
			r.Read()
		}
		exp := r.ReadWhile(isDigit)
		if exp == "" {
			r.Seek(mark)
		} else {
			isFloat = true
		}
	}
	return r.ReadFrom(start), isFloat, nil
}

// Boolean matches the literal `true` or `false`.
func Boolean(r *Reader) (bool, error) {
	if TryLiteral(r, "true") == nil {
		return true, nil
	}
	if TryLiteral(r, "false") == nil {
		return false, nil
	}
	return false, Recoverable(r, "boolean")
}

// Null matches the literal `null`.
func Null(r *Reader) error {
	return TryLiteral(r, "null")
}

// HexDigit matches exactly one hex digit, fatally if absent.
func HexDigit(r *Reader) (byte, error) {
	b, ok := r.Peek()
	if !ok || !isHexDigit(b) {
		return 0, Fatal(r, ErrHexDigit, "")
	}
	r.Read()
	return b, nil
}

// Filename matches a bare filename token: alphanumerics plus
// `._-/\~` and no surrounding whitespace or `;`.
func Filename(r *Reader) (string, error) {
	start := r.Mark()
	name := r.ReadWhile(func(b byte) bool {
		return isAlphaNumUnderscore(b) || b == '/' || b == '\\' || b == '~'
	})
	if name == "" {
		r.Seek(start)
		return "", Recoverable(r, "filename")
	}
	return name, nil
}

// KeyString matches a bare, unquoted key token used for header names,
// option keys, and section key=value pairs: a run of characters that is
// not whitespace, `:`, or a newline.
func KeyString(r *Reader) (string, error) {
	start := r.Mark()
	key := r.ReadWhile(func(b byte) bool {
		return b != ':' && b != '\n' && b != ' ' && b != '\t' && b != '\r'
	})
	if key == "" {
		r.Seek(start)
		return "", Recoverable(r, "key")
	}
	return key, nil
}
