package eval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vdobler/rq/ast"
	"github.com/vdobler/rq/scope"
	"github.com/vdobler/rq/value"
)

func textTemplate(s string) ast.Template {
	return ast.Template{Elements: []ast.TemplateElement{lit(s)}}
}

func newEvalCtx() *Context {
	return &Context{Vars: scope.New()}
}

func TestEvalFilterChainCount(t *testing.T) {
	v, err := EvalFilterChain(newEvalCtx(), value.List([]value.Value{value.Integer(1), value.Integer(2)}), []ast.Filter{
		{Kind: ast.FilterCount},
	})
	require.NoError(t, err)
	n, ok := v.Integer()
	require.True(t, ok)
	assert.EqualValues(t, 2, n)
}

func TestEvalFilterChainToIntToFloat(t *testing.T) {
	v, err := EvalFilterChain(newEvalCtx(), value.String("42"), []ast.Filter{{Kind: ast.FilterToInt}})
	require.NoError(t, err)
	n, ok := v.Integer()
	require.True(t, ok)
	assert.EqualValues(t, 42, n)

	v, err = EvalFilterChain(newEvalCtx(), value.String("3.5"), []ast.Filter{{Kind: ast.FilterToFloat}})
	require.NoError(t, err)
	f, ok := v.Float()
	require.True(t, ok)
	assert.Equal(t, 3.5, f)
}

func TestEvalFilterChainRegexCapture(t *testing.T) {
	v, err := EvalFilterChain(newEvalCtx(), value.String("order-1234"), []ast.Filter{
		{Kind: ast.FilterRegex, Arg: textTemplate(`order-(\d+)`)},
	})
	require.NoError(t, err)
	s, ok := v.String()
	require.True(t, ok)
	assert.Equal(t, "1234", s)
}

func TestEvalFilterChainRegexNoCaptureFails(t *testing.T) {
	_, err := EvalFilterChain(newEvalCtx(), value.String("order-1234"), []ast.Filter{
		{Kind: ast.FilterRegex, Arg: textTemplate(`order-\d+`)},
	})
	require.Error(t, err)
	rerr, ok := err.(*RuntimeError)
	require.True(t, ok)
	assert.Equal(t, ErrFilterRegexNoCapture, rerr.Kind)
}

func TestEvalFilterChainReplace(t *testing.T) {
	v, err := EvalFilterChain(newEvalCtx(), value.String("a-b-c"), []ast.Filter{
		{Kind: ast.FilterReplace, Old: textTemplate("-"), New: textTemplate("_")},
	})
	require.NoError(t, err)
	s, _ := v.String()
	assert.Equal(t, "a_b_c", s)
}

func TestEvalFilterChainSplitAndNth(t *testing.T) {
	v, err := EvalFilterChain(newEvalCtx(), value.String("a,b,c"), []ast.Filter{
		{Kind: ast.FilterSplit, Arg: textTemplate(",")},
		{Kind: ast.FilterNth, Index: 1},
	})
	require.NoError(t, err)
	s, ok := v.String()
	require.True(t, ok)
	assert.Equal(t, "b", s)
}

func TestEvalFilterChainBase64RoundTrip(t *testing.T) {
	v, err := EvalFilterChain(newEvalCtx(), value.String("hello"), []ast.Filter{
		{Kind: ast.FilterBase64Encode},
	})
	require.NoError(t, err)
	encoded, _ := v.String()
	assert.Equal(t, "aGVsbG8=", encoded)

	v, err = EvalFilterChain(newEvalCtx(), v, []ast.Filter{{Kind: ast.FilterBase64Decode}})
	require.NoError(t, err)
	b, ok := v.Bytes()
	require.True(t, ok)
	assert.Equal(t, "hello", string(b))
}

func TestEvalFilterChainDaysBeforeNow(t *testing.T) {
	d := value.NewDate(time.Now().UTC().AddDate(0, 0, -3))
	v, err := EvalFilterChain(newEvalCtx(), value.DateValue(d), []ast.Filter{
		{Kind: ast.FilterDaysBeforeNow},
	})
	require.NoError(t, err)
	n, ok := v.Integer()
	require.True(t, ok)
	assert.EqualValues(t, 3, n)
}
