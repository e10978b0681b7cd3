package eval

import (
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/vdobler/rq/ast"
	"github.com/vdobler/rq/value"
)

// EvalResult is the outcome of evaluating a template or expression:
// besides the rendered string, Secret records whether any referenced
// variable (transitively) was secret, per the redaction invariant of
// spec.md §4.10.
type EvalResult struct {
	Text   string
	Secret bool
}

// EvalTemplate concatenates literal parts with stringified expression
// values (spec.md §4.9). It fails with TemplateVariableNotDefined or
// TemplateTypeMismatch, positioned on the offending placeholder or
// expression, when a placeholder can't be rendered as text.
func EvalTemplate(ctx *Context, t ast.Template) (EvalResult, error) {
	var out []byte
	secret := false
	for _, el := range t.Elements {
		switch e := el.(type) {
		case ast.Literal:
			out = append(out, e.Value...)
		case ast.Placeholder:
			r, err := EvalExpression(ctx, e.Expr)
			if err != nil {
				return EvalResult{}, err
			}
			s, ok := stringifyForTemplate(r.exprValue)
			if !ok {
				return EvalResult{}, errf(ErrTemplateTypeMismatch, e.Sp, "")
			}
			out = append(out, s...)
			if r.secret {
				secret = true
			}
		default:
			return EvalResult{}, errf(ErrTemplateTypeMismatch, t.Sp, "")
		}
	}
	return EvalResult{Text: string(out), Secret: secret}, nil
}

// exprEvalResult is the internal result of evaluating an Expression: the
// typed Value plus whether it came from a secret variable.
type exprEvalResult struct {
	exprValue value.Value
	secret    bool
}

// EvalExpressionValue evaluates an expression to its typed Value without
// stringifying, used by JSON-body and predicate-literal placeholders
// where the placeholder stands for a whole value, not template text.
func EvalExpressionValue(ctx *Context, e ast.Expression) (value.Value, bool, error) {
	r, err := EvalExpression(ctx, e)
	if err != nil {
		return value.Null, false, err
	}
	return r.exprValue, r.secret, nil
}

// EvalExpression evaluates a bare variable reference or builtin function
// call (spec.md §4.9).
func EvalExpression(ctx *Context, e ast.Expression) (exprEvalResult, error) {
	if e.IsFunction {
		switch e.Function {
		case ast.FuncNewDate:
			return exprEvalResult{exprValue: value.String(time.Now().UTC().Format("2006-01-02T15:04:05.000Z"))}, nil
		case ast.FuncNewUuid:
			return exprEvalResult{exprValue: value.String(uuid.New().String())}, nil
		case ast.FuncGetEnv:
			v, ok := os.LookupEnv(e.Arg)
			if !ok {
				return exprEvalResult{}, errf(ErrEnvMissing, e.Sp, e.Arg)
			}
			return exprEvalResult{exprValue: value.String(v)}, nil
		}
	}
	v, ok := ctx.Vars.Get(e.Variable)
	if !ok {
		return exprEvalResult{}, errf(ErrTemplateVariableNotDefined, e.Sp, e.Variable)
	}
	return exprEvalResult{exprValue: v.Value, secret: v.Secret}, nil
}

// stringifyForTemplate renders v per the stringification table of
// spec.md §4.9: Integer/BigInteger/Float use their canonical source
// representation, Bool -> true/false, Null -> empty string, Bytes/
// List/Object are errors.
func stringifyForTemplate(v value.Value) (string, bool) {
	switch v.Kind() {
	case value.KindNull:
		return "", true
	case value.KindBool:
		b, _ := v.Bool()
		if b {
			return "true", true
		}
		return "false", true
	case value.KindInteger:
		i, _ := v.Integer()
		return strconv.FormatInt(i, 10), true
	case value.KindBigInteger:
		s, _ := v.BigInteger()
		return s, true
	case value.KindFloat:
		f, _ := v.Float()
		return strconv.FormatFloat(f, 'g', -1, 64), true
	case value.KindString:
		s, _ := v.String()
		return s, true
	case value.KindDate:
		d, _ := v.Date()
		return d.Format("%Y-%m-%dT%H:%M:%S.%fZ"), true
	default:
		return "", false
	}
}
