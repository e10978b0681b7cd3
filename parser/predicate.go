package parser

import (
	"github.com/vdobler/rq/ast"
	"github.com/vdobler/rq/internal/lex"
)

type predOp struct {
	keyword  string
	operator string // symbolic spelling, "" if none
	fn       ast.PredicateFunc
	hasRHS   bool
}

var predOps = []predOp{
	{"equals", "==", ast.PredEqual, true},
	{"notEquals", "!=", ast.PredNotEqual, true},
	{"greaterThanOrEquals", ">=", ast.PredGreaterThanOrEqual, true},
	{"greaterThan", ">", ast.PredGreaterThan, true},
	{"lessThanOrEquals", "<=", ast.PredLessThanOrEqual, true},
	{"lessThan", "<", ast.PredLessThan, true},
	{"startsWith", "", ast.PredStartsWith, true},
	{"endsWith", "", ast.PredEndsWith, true},
	{"contains", "", ast.PredContains, true},
	{"includes", "", ast.PredIncludes, true},
	{"matches", "", ast.PredMatches, true},
	{"exists", "", ast.PredExist, false},
	{"isEmpty", "", ast.PredIsEmpty, false},
	{"isInteger", "", ast.PredIsInteger, false},
	{"isFloat", "", ast.PredIsFloat, false},
	{"isBoolean", "", ast.PredIsBool, false},
	{"isString", "", ast.PredIsString, false},
	{"isCollection", "", ast.PredIsCollection, false},
	{"isDate", "", ast.PredIsDate, false},
	{"isIsoDate", "", ast.PredIsIsoDate, false},
	{"isNumber", "", ast.PredIsNumber, false},
}

// ParsePredicate recognizes an optional `not` prefix, an operator keyword
// or symbol, and a single typed RHS when the shape requires one (spec.md
// §4.6).
func ParsePredicate(r *lex.Reader) (ast.Predicate, error) {
	start := r.Mark()
	not := false
	if mark := r.Mark(); lex.TryLiteral(r, "not") == nil {
		if b, ok := r.Peek(); !ok || b == ' ' || b == '\t' {
			not = true
			lex.Whitespace(r)
		} else {
			r.Seek(mark)
		}
	}

	var matched *predOp
	var usedSymbol bool
	for i := range predOps {
		op := &predOps[i]
		if op.operator != "" {
			mark := r.Mark()
			if lex.TryLiteral(r, op.operator) == nil {
				matched = op
				usedSymbol = true
				break
			}
			r.Seek(mark)
		}
	}
	if matched == nil {
		mark := r.Mark()
		kw, err := identifier(r)
		if err == nil {
			for i := range predOps {
				if predOps[i].keyword == kw {
					matched = &predOps[i]
					break
				}
			}
		}
		if matched == nil {
			r.Seek(mark)
			r.Seek(start)
			return ast.Predicate{}, lex.Recoverable(r, "predicate")
		}
	}

	p := ast.Predicate{Not: not, Func: matched.fn, OperatorSyntax: usedSymbol, Sp: r.Span(start)}
	if !matched.hasRHS {
		p.Sp = r.Span(start)
		return p, nil
	}
	lex.Whitespace(r)
	lit, err := parsePredicateLiteral(r)
	if err != nil {
		return ast.Predicate{}, err
	}
	p.Literal = lit
	p.Sp = r.Span(start)
	return p, nil
}

func parsePredicateLiteral(r *lex.Reader) (ast.PredicateLiteral, error) {
	start := r.Mark()
	if b, ok := r.Peek(); ok {
		switch {
		case b == '"':
			tmpl, err := ParseQuotedTemplate(r)
			if err != nil {
				return ast.PredicateLiteral{}, err
			}
			return ast.PredicateLiteral{Kind: ast.LitString, Template: tmpl, Sp: r.Span(start)}, nil
		case b == '{' :
			if nxt, ok := r.PeekAt(1); ok && nxt == '{' {
				ph, err := parsePlaceholder(r)
				if err != nil {
					return ast.PredicateLiteral{}, err
				}
				tmpl := ast.Template{Elements: []ast.TemplateElement{ph}, Sp: r.Span(start)}
				return ast.PredicateLiteral{Kind: ast.LitString, Template: tmpl, Sp: r.Span(start)}, nil
			}
		case b == '-' || (b >= '0' && b <= '9'):
			num, _, err := lex.Number(r)
			if err != nil {
				return ast.PredicateLiteral{}, err
			}
			return ast.PredicateLiteral{Kind: ast.LitNumber, Number: num, Sp: r.Span(start)}, nil
		case b == 't' || b == 'f':
			mark := r.Mark()
			bv, err := lex.Boolean(r)
			if err == nil {
				return ast.PredicateLiteral{Kind: ast.LitBool, Bool: bv, Sp: r.Span(start)}, nil
			}
			r.Seek(mark)
		case b == 'n':
			mark := r.Mark()
			if lex.Null(r) == nil {
				return ast.PredicateLiteral{Kind: ast.LitNull, Sp: r.Span(start)}, nil
			}
			r.Seek(mark)
		}
	}
	return ast.PredicateLiteral{}, lex.Fatal(r, lex.ErrPredicateValue, "expected a typed literal")
}
