package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vdobler/rq/ast"
	"github.com/vdobler/rq/value"
)

func numLit(n string) ast.PredicateLiteral { return ast.PredicateLiteral{Kind: ast.LitNumber, Number: n} }

func TestEvalPredicateEqual(t *testing.T) {
	out, err := EvalPredicate(newEvalCtx(), value.Integer(200), ast.Predicate{
		Func:    ast.PredEqual,
		Literal: numLit("200"),
	})
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.False(t, out.TypeMismatch)
}

func TestEvalPredicateNotInvertsSuccessOnly(t *testing.T) {
	out, err := EvalPredicate(newEvalCtx(), value.Integer(200), ast.Predicate{
		Not:     true,
		Func:    ast.PredEqual,
		Literal: numLit("200"),
	})
	require.NoError(t, err)
	assert.False(t, out.Success)
}

func TestEvalPredicateGreaterThanTypeMismatch(t *testing.T) {
	out, err := EvalPredicate(newEvalCtx(), value.String("abc"), ast.Predicate{
		Func:    ast.PredGreaterThan,
		Literal: numLit("5"),
	})
	require.NoError(t, err)
	assert.True(t, out.TypeMismatch)
}

func TestEvalPredicateNotOnTypeMismatchStaysMismatch(t *testing.T) {
	out, err := EvalPredicate(newEvalCtx(), value.String("abc"), ast.Predicate{
		Not:     true,
		Func:    ast.PredGreaterThan,
		Literal: numLit("5"),
	})
	require.NoError(t, err)
	assert.True(t, out.TypeMismatch)
	assert.False(t, out.Success)
}

func TestEvalPredicateContainsString(t *testing.T) {
	out, err := EvalPredicate(newEvalCtx(), value.String("hello world"), ast.Predicate{
		Func:    ast.PredContains,
		Literal: ast.PredicateLiteral{Kind: ast.LitString, Template: textTemplate("world")},
	})
	require.NoError(t, err)
	assert.True(t, out.Success)
}

func TestEvalPredicateIsEmptyOnList(t *testing.T) {
	out, err := EvalPredicate(newEvalCtx(), value.List(nil), ast.Predicate{Func: ast.PredIsEmpty})
	require.NoError(t, err)
	assert.True(t, out.Success)
}

func TestEvalPredicateExist(t *testing.T) {
	out, err := EvalPredicate(newEvalCtx(), value.Null, ast.Predicate{Func: ast.PredExist})
	require.NoError(t, err)
	assert.False(t, out.Success)
}

func TestEvalPredicateMatches(t *testing.T) {
	out, err := EvalPredicate(newEvalCtx(), value.String("order-42"), ast.Predicate{
		Func:    ast.PredMatches,
		Literal: ast.PredicateLiteral{Kind: ast.LitRegex, Regex: `^order-\d+$`},
	})
	require.NoError(t, err)
	assert.True(t, out.Success)
}
