package eval

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"github.com/vdobler/rq/ast"
	"github.com/vdobler/rq/value"
)

// PredicateOutcome is the result of evaluating a predicate against an
// already filtered value (spec.md §4.12).
type PredicateOutcome struct {
	Success      bool
	Actual       value.Value
	TypeMismatch bool
}

// EvalPredicate applies p to actual per the rules of spec.md §4.12. `not`
// inverts Success but never TypeMismatch, and a type mismatch stays a
// failure under `not`.
func EvalPredicate(ctx *Context, actual value.Value, p ast.Predicate) (PredicateOutcome, error) {
	out, err := evalPredicateFunc(ctx, actual, p)
	if err != nil {
		return PredicateOutcome{}, err
	}
	if p.Not && !out.TypeMismatch {
		out.Success = !out.Success
	}
	out.Actual = actual
	return out, nil
}

func evalPredicateFunc(ctx *Context, actual value.Value, p ast.Predicate) (PredicateOutcome, error) {
	switch p.Func {
	case ast.PredExist:
		return PredicateOutcome{Success: !actual.IsNull()}, nil
	case ast.PredIsEmpty:
		n, ok := actual.Len()
		if !ok {
			return PredicateOutcome{TypeMismatch: true}, nil
		}
		return PredicateOutcome{Success: n == 0}, nil
	case ast.PredIsInteger:
		return PredicateOutcome{Success: actual.Kind() == value.KindInteger}, nil
	case ast.PredIsFloat:
		return PredicateOutcome{Success: actual.Kind() == value.KindFloat}, nil
	case ast.PredIsBool:
		return PredicateOutcome{Success: actual.Kind() == value.KindBool}, nil
	case ast.PredIsString:
		return PredicateOutcome{Success: actual.Kind() == value.KindString}, nil
	case ast.PredIsCollection:
		k := actual.Kind()
		return PredicateOutcome{Success: k == value.KindList || k == value.KindObject || k == value.KindNodeset}, nil
	case ast.PredIsDate:
		return PredicateOutcome{Success: actual.Kind() == value.KindDate}, nil
	case ast.PredIsIsoDate:
		if s, ok := actual.String(); ok {
			_, err := value.ParseDate(s, "%Y-%m-%dT%H:%M:%S")
			return PredicateOutcome{Success: err == nil}, nil
		}
		return PredicateOutcome{Success: actual.Kind() == value.KindDate}, nil
	case ast.PredIsNumber:
		return PredicateOutcome{Success: actual.IsNumber()}, nil
	}

	rhs, err := evalLiteral(ctx, p.Literal)
	if err != nil {
		return PredicateOutcome{}, err
	}

	switch p.Func {
	case ast.PredEqual:
		return PredicateOutcome{Success: value.Equal(actual, rhs)}, nil
	case ast.PredNotEqual:
		return PredicateOutcome{Success: !value.Equal(actual, rhs)}, nil
	case ast.PredGreaterThan, ast.PredGreaterThanOrEqual, ast.PredLessThan, ast.PredLessThanOrEqual:
		less, ok := value.Less(actual, rhs)
		eq := value.Equal(actual, rhs)
		if !ok && !eq {
			return PredicateOutcome{TypeMismatch: true}, nil
		}
		switch p.Func {
		case ast.PredGreaterThan:
			return PredicateOutcome{Success: !less && !eq}, nil
		case ast.PredGreaterThanOrEqual:
			return PredicateOutcome{Success: !less}, nil
		case ast.PredLessThan:
			return PredicateOutcome{Success: less}, nil
		case ast.PredLessThanOrEqual:
			return PredicateOutcome{Success: less || eq}, nil
		}
	case ast.PredContains:
		return evalContains(actual, rhs)
	case ast.PredIncludes:
		list, ok := actual.List()
		if !ok {
			return PredicateOutcome{TypeMismatch: true}, nil
		}
		for _, item := range list {
			if value.Equal(item, rhs) {
				return PredicateOutcome{Success: true}, nil
			}
		}
		return PredicateOutcome{Success: false}, nil
	case ast.PredStartsWith:
		return evalStartsEndsWith(actual, rhs, true)
	case ast.PredEndsWith:
		return evalStartsEndsWith(actual, rhs, false)
	case ast.PredMatches:
		s, ok := actual.String()
		rs, rok := rhs.RegexPattern()
		if !rok {
			rs, rok = rhs.String()
		}
		if !ok || !rok {
			return PredicateOutcome{TypeMismatch: true}, nil
		}
		re, err := regexp.Compile(rs)
		if err != nil {
			return PredicateOutcome{}, errf(ErrInvalidRegex, p.Sp, err.Error())
		}
		return PredicateOutcome{Success: re.MatchString(s)}, nil
	}
	return PredicateOutcome{}, errf(ErrExpressionInvalidType, p.Sp, "unsupported predicate")
}

func evalContains(actual, rhs value.Value) (PredicateOutcome, error) {
	if s, ok := actual.String(); ok {
		rs, rok := rhs.String()
		if !rok {
			return PredicateOutcome{TypeMismatch: true}, nil
		}
		return PredicateOutcome{Success: strings.Contains(s, rs)}, nil
	}
	if b, ok := actual.Bytes(); ok {
		rb, rok := rhs.Bytes()
		if !rok {
			if rs, rok2 := rhs.String(); rok2 {
				rb = []byte(rs)
			} else {
				return PredicateOutcome{TypeMismatch: true}, nil
			}
		}
		return PredicateOutcome{Success: bytes.Contains(b, rb)}, nil
	}
	if list, ok := actual.List(); ok {
		for _, item := range list {
			if value.Equal(item, rhs) {
				return PredicateOutcome{Success: true}, nil
			}
		}
		return PredicateOutcome{Success: false}, nil
	}
	return PredicateOutcome{TypeMismatch: true}, nil
}

func evalStartsEndsWith(actual, rhs value.Value, starts bool) (PredicateOutcome, error) {
	if s, ok := actual.String(); ok {
		rs, rok := rhs.String()
		if !rok {
			return PredicateOutcome{TypeMismatch: true}, nil
		}
		if starts {
			return PredicateOutcome{Success: strings.HasPrefix(s, rs)}, nil
		}
		return PredicateOutcome{Success: strings.HasSuffix(s, rs)}, nil
	}
	if b, ok := actual.Bytes(); ok {
		var rb []byte
		if v, ok := rhs.Bytes(); ok {
			rb = v
		} else if s, ok := rhs.String(); ok {
			rb = []byte(s)
		} else {
			return PredicateOutcome{TypeMismatch: true}, nil
		}
		if starts {
			return PredicateOutcome{Success: bytes.HasPrefix(b, rb)}, nil
		}
		return PredicateOutcome{Success: bytes.HasSuffix(b, rb)}, nil
	}
	return PredicateOutcome{TypeMismatch: true}, nil
}

func evalLiteral(ctx *Context, lit ast.PredicateLiteral) (value.Value, error) {
	switch lit.Kind {
	case ast.LitNumber:
		if strings.ContainsAny(lit.Number, ".eE") {
			f, err := strconv.ParseFloat(lit.Number, 64)
			if err != nil {
				return value.Null, errf(ErrExpressionInvalidType, lit.Sp, "number")
			}
			return value.Float(f), nil
		}
		i, err := strconv.ParseInt(lit.Number, 10, 64)
		if err != nil {
			return value.BigInteger(lit.Number), nil
		}
		return value.Integer(i), nil
	case ast.LitBool:
		return value.Bool(lit.Bool), nil
	case ast.LitNull:
		return value.Null, nil
	case ast.LitString:
		r, err := EvalTemplate(ctx, lit.Template)
		if err != nil {
			return value.Null, err
		}
		return value.String(r.Text), nil
	case ast.LitRegex:
		return value.Regex(lit.Regex), nil
	}
	return value.Null, nil
}
