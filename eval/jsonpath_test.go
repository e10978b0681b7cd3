package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vdobler/rq/ast"
)

func TestEvalJSONPathOnTextSingleMatchCollapsesToScalar(t *testing.T) {
	v, err := evalJSONPathOnText(`{"name": "ada"}`, "$.name", ast.Span{})
	require.NoError(t, err)
	s, ok := v.String()
	require.True(t, ok)
	assert.Equal(t, "ada", s)
}

func TestEvalJSONPathOnTextNoMatchIsNull(t *testing.T) {
	v, err := evalJSONPathOnText(`{"name": "ada"}`, "$.missing", ast.Span{})
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}

func TestEvalJSONPathOnTextMultipleMatchesCollapseToList(t *testing.T) {
	v, err := evalJSONPathOnText(`{"items": [1, 2, 3]}`, "$.items[*]", ast.Span{})
	require.NoError(t, err)
	list, ok := v.List()
	require.True(t, ok)
	assert.Len(t, list, 3)
}

func TestEvalJSONPathOnTextRecursiveDescent(t *testing.T) {
	v, err := evalJSONPathOnText(`{"a": {"id": 1}, "b": {"id": 2}}`, "$..id", ast.Span{})
	require.NoError(t, err)
	list, ok := v.List()
	require.True(t, ok)
	assert.Len(t, list, 2)
}

func TestEvalJSONPathOnTextFilterExpression(t *testing.T) {
	v, err := evalJSONPathOnText(`{"items": [{"price": 5}, {"price": 15}, {"price": 20}]}`, `$.items[?(@.price>10)]`, ast.Span{})
	require.NoError(t, err)
	list, ok := v.List()
	require.True(t, ok)
	require.Len(t, list, 2)
}
