package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vdobler/rq/ast"
	"github.com/vdobler/rq/scope"
	"github.com/vdobler/rq/value"
)

func lit(s string) ast.Literal { return ast.Literal{Value: s, SourceText: s} }

func TestEvalTemplateLiteralOnly(t *testing.T) {
	vars := scope.New()
	ctx := &Context{Vars: vars}
	tmpl := ast.Template{Elements: []ast.TemplateElement{lit("hello world")}}
	r, err := EvalTemplate(ctx, tmpl)
	require.NoError(t, err)
	assert.Equal(t, "hello world", r.Text)
	assert.False(t, r.Secret)
}

func TestEvalTemplatePlaceholderPropagatesSecret(t *testing.T) {
	vars := scope.New()
	vars.Set("token", value.String("s3cr3t"), true)
	ctx := &Context{Vars: vars}
	tmpl := ast.Template{Elements: []ast.TemplateElement{
		lit("Bearer "),
		ast.Placeholder{Expr: ast.VariableExpr("token", ast.Span{})},
	}}
	r, err := EvalTemplate(ctx, tmpl)
	require.NoError(t, err)
	assert.Equal(t, "Bearer s3cr3t", r.Text)
	assert.True(t, r.Secret)
}

func TestEvalTemplateUndefinedVariableFails(t *testing.T) {
	vars := scope.New()
	ctx := &Context{Vars: vars}
	tmpl := ast.Template{Elements: []ast.TemplateElement{
		ast.Placeholder{Expr: ast.VariableExpr("missing", ast.Span{})},
	}}
	_, err := EvalTemplate(ctx, tmpl)
	require.Error(t, err)
	rerr, ok := err.(*RuntimeError)
	require.True(t, ok)
	assert.Equal(t, ErrTemplateVariableNotDefined, rerr.Kind)
}

func TestEvalExpressionGetEnvMissing(t *testing.T) {
	vars := scope.New()
	ctx := &Context{Vars: vars}
	_, err := EvalExpression(ctx, ast.FunctionExpr(ast.FuncGetEnv, "RQ_DEFINITELY_UNSET_VAR", ast.Span{}))
	require.Error(t, err)
	rerr, ok := err.(*RuntimeError)
	require.True(t, ok)
	assert.Equal(t, ErrEnvMissing, rerr.Kind)
}

func TestEvalExpressionNewUuidProducesValue(t *testing.T) {
	vars := scope.New()
	ctx := &Context{Vars: vars}
	r, err := EvalExpression(ctx, ast.FunctionExpr(ast.FuncNewUuid, "", ast.Span{}))
	require.NoError(t, err)
	s, ok := r.exprValue.String()
	require.True(t, ok)
	assert.Len(t, s, 36)
}
