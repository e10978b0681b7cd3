package httpspec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vdobler/rq/ast"
	"github.com/vdobler/rq/eval"
	"github.com/vdobler/rq/scope"
	"github.com/vdobler/rq/value"
)

func TestBuildRequestBasic(t *testing.T) {
	ctx := &eval.Context{Vars: scope.New()}
	req := ast.Request{
		Method: "get",
		URL:    plainTemplate("http://example.com/items"),
		Headers: []ast.Header{
			{Name: plainTemplate("Accept"), Value: plainTemplate("application/json")},
		},
	}
	spec, err := BuildRequest(ctx, req, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "GET", spec.Method)
	assert.Equal(t, "http://example.com/items", spec.URL)
	require.Len(t, spec.Headers, 1)
	assert.Equal(t, "Accept", spec.Headers[0].Name)
}

func TestBuildRequestQueryStringAppended(t *testing.T) {
	ctx := &eval.Context{Vars: scope.New()}
	req := ast.Request{
		Method: "GET",
		URL:    plainTemplate("http://example.com/items?existing=1"),
		Sections: []ast.Section{
			{Kind: ast.SectionQueryStringParams, KeyValues: []ast.KeyValue{
				{Name: plainTemplate("page"), Value: plainTemplate("2")},
			}},
		},
	}
	spec, err := BuildRequest(ctx, req, "", nil)
	require.NoError(t, err)
	assert.Contains(t, spec.URL, "existing=1")
	assert.Contains(t, spec.URL, "page=2")
}

func TestBuildRequestBasicAuthSetsAuthorizationHeader(t *testing.T) {
	ctx := &eval.Context{Vars: scope.New()}
	req := ast.Request{
		Method: "GET",
		URL:    plainTemplate("http://example.com"),
		Sections: []ast.Section{
			{Kind: ast.SectionBasicAuth, BasicAuth: ast.BasicAuth{
				User:     plainTemplate("alice"),
				Password: plainTemplate("secret"),
			}},
		},
	}
	spec, err := BuildRequest(ctx, req, "", nil)
	require.NoError(t, err)
	require.True(t, hasHeader(spec.Headers, "Authorization"))
}

func TestBuildRequestFormParamsSetsImplicitContentType(t *testing.T) {
	ctx := &eval.Context{Vars: scope.New()}
	req := ast.Request{
		Method: "POST",
		URL:    plainTemplate("http://example.com"),
		Sections: []ast.Section{
			{Kind: ast.SectionFormParams, KeyValues: []ast.KeyValue{
				{Name: plainTemplate("name"), Value: plainTemplate("ada")},
			}},
		},
	}
	spec, err := BuildRequest(ctx, req, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "application/x-www-form-urlencoded", spec.ImplicitContentType)
	assert.Equal(t, "name=ada", string(spec.Body))
}

func TestBuildRequestJSONBodySubstitutesPlaceholder(t *testing.T) {
	ctx := &eval.Context{Vars: scope.New()}
	ctx.Vars.Set("id", value.Integer(42), false)
	req := ast.Request{
		Method: "POST",
		URL:    plainTemplate("http://example.com"),
		Body: &ast.Body{
			Kind: ast.BodyJSON,
			JSON: ast.JSONValue{
				HasObj: true,
				Object: []ast.JSONObjectEntry{
					{Key: plainTemplate("id"), Value: ast.JSONValue{
						IsPlaceholder: true,
						Placeholder:   ast.VariableExpr("id", ast.Span{}),
					}},
				},
			},
		},
	}
	spec, err := BuildRequest(ctx, req, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "application/json", spec.ImplicitContentType)
	assert.JSONEq(t, `{"id":42}`, string(spec.Body))
}

func TestBuildRequestInvalidURLFails(t *testing.T) {
	ctx := &eval.Context{Vars: scope.New()}
	req := ast.Request{
		Method: "GET",
		URL:    plainTemplate("http://[::1"),
	}
	_, err := BuildRequest(ctx, req, "", nil)
	require.Error(t, err)
}
