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

func callCtx(c *CallView) *Context {
	return &Context{Vars: scope.New(), Call: c}
}

func TestEvalQueryStatusAndVersion(t *testing.T) {
	ctx := callCtx(&CallView{Status: 201, Version: "HTTP/1.1"})
	v, err := EvalQuery(ctx, ast.Query{Kind: ast.QueryStatus})
	require.NoError(t, err)
	n, _ := v.Integer()
	assert.EqualValues(t, 201, n)

	v, err = EvalQuery(ctx, ast.Query{Kind: ast.QueryVersion})
	require.NoError(t, err)
	s, _ := v.String()
	assert.Equal(t, "HTTP/1.1", s)
}

func TestEvalQueryHeaderSingleAndMultiple(t *testing.T) {
	ctx := callCtx(&CallView{Headers: []HeaderKV{
		{Name: "Content-Type", Value: "application/json"},
		{Name: "Set-Cookie", Value: "a=1"},
		{Name: "Set-Cookie", Value: "b=2"},
	}})
	v, err := EvalQuery(ctx, ast.Query{Kind: ast.QueryHeader, Arg: textTemplate("content-type")})
	require.NoError(t, err)
	s, ok := v.String()
	require.True(t, ok)
	assert.Equal(t, "application/json", s)

	v, err = EvalQuery(ctx, ast.Query{Kind: ast.QueryHeader, Arg: textTemplate("Set-Cookie")})
	require.NoError(t, err)
	list, ok := v.List()
	require.True(t, ok)
	assert.Len(t, list, 2)

	v, err = EvalQuery(ctx, ast.Query{Kind: ast.QueryHeader, Arg: textTemplate("X-Missing")})
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}

func TestEvalQueryCookieAttribute(t *testing.T) {
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	ctx := callCtx(&CallView{Cookies: []CookieView{
		{Name: "sid", Value: "abc", HasExpires: true, Expires: exp, Secure: true},
	}})
	v, err := EvalQuery(ctx, ast.Query{Kind: ast.QueryCookie, CookieName: textTemplate("sid")})
	require.NoError(t, err)
	s, _ := v.String()
	assert.Equal(t, "abc", s)

	v, err = EvalQuery(ctx, ast.Query{Kind: ast.QueryCookie, CookieName: textTemplate("sid"), HasAttr: true, CookieAttr: ast.CookieSecure})
	require.NoError(t, err)
	b, _ := v.Bool()
	assert.True(t, b)

	v, err = EvalQuery(ctx, ast.Query{Kind: ast.QueryCookie, CookieName: textTemplate("missing")})
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}

func TestEvalQueryBodyTextVsBytes(t *testing.T) {
	ctx := callCtx(&CallView{Body: []byte("hello"), BodyIsText: true})
	v, err := EvalQuery(ctx, ast.Query{Kind: ast.QueryBody})
	require.NoError(t, err)
	_, ok := v.String()
	assert.True(t, ok)

	ctx = callCtx(&CallView{Body: []byte{0, 1, 2}, BodyIsText: false})
	v, err = EvalQuery(ctx, ast.Query{Kind: ast.QueryBody})
	require.NoError(t, err)
	_, ok = v.Bytes()
	assert.True(t, ok)
}

func TestEvalQueryJSONPathCollapsesSingleMatch(t *testing.T) {
	ctx := callCtx(&CallView{Body: []byte(`{"id": 42}`), BodyIsText: true})
	v, err := EvalQuery(ctx, ast.Query{Kind: ast.QueryJSONPath, Arg: textTemplate("$.id")})
	require.NoError(t, err)
	n, ok := v.Integer()
	require.True(t, ok)
	assert.EqualValues(t, 42, n)
}

func TestEvalQueryVariable(t *testing.T) {
	ctx := callCtx(nil)
	ctx.Vars.Set("name", value.String("bob"), false)
	v, err := EvalQuery(ctx, ast.Query{Kind: ast.QueryVariable, Arg: textTemplate("name")})
	require.NoError(t, err)
	s, _ := v.String()
	assert.Equal(t, "bob", s)
}

func TestEvalQueryWithoutCallFailsForCallQueries(t *testing.T) {
	ctx := callCtx(nil)
	_, err := EvalQuery(ctx, ast.Query{Kind: ast.QueryStatus})
	require.Error(t, err)
}
