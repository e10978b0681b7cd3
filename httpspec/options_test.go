package httpspec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vdobler/rq/ast"
	"github.com/vdobler/rq/eval"
	"github.com/vdobler/rq/scope"
)

func plainTemplate(s string) ast.Template {
	return ast.Template{Elements: []ast.TemplateElement{ast.Literal{Value: s, SourceText: s}}}
}

func optionSection(opts ...ast.Option) ast.Section {
	return ast.Section{Kind: ast.SectionOptions, Options: opts}
}

func TestResolveOptionsHTTP2DowngradesOnFalse(t *testing.T) {
	ctx := &eval.Context{Vars: scope.New()}
	opts, err := ResolveOptions(ctx, DefaultOptions(), []ast.Section{
		optionSection(ast.Option{Key: "http2", Value: plainTemplate("false")}),
	})
	require.NoError(t, err)
	assert.Equal(t, HTTPVersion1_1, opts.HTTPVersion)
	assert.True(t, opts.VersionPinned)
}

func TestResolveOptionsRepeatZeroImpliesSkip(t *testing.T) {
	ctx := &eval.Context{Vars: scope.New()}
	opts, err := ResolveOptions(ctx, DefaultOptions(), []ast.Section{
		optionSection(ast.Option{Key: "repeat", Value: plainTemplate("0")}),
	})
	require.NoError(t, err)
	assert.True(t, opts.Skip)
}

func TestResolveOptionsVariableMutatesContextVars(t *testing.T) {
	ctx := &eval.Context{Vars: scope.New()}
	_, err := ResolveOptions(ctx, DefaultOptions(), []ast.Section{
		optionSection(ast.Option{Key: "variable", Value: plainTemplate("token=abc123")}),
	})
	require.NoError(t, err)
	v, ok := ctx.Vars.Get("token")
	require.True(t, ok)
	s, _ := v.Value.String()
	assert.Equal(t, "abc123", s)
}

func TestResolveOptionsDelayParsesUnitSuffix(t *testing.T) {
	ctx := &eval.Context{Vars: scope.New()}
	opts, err := ResolveOptions(ctx, DefaultOptions(), []ast.Section{
		optionSection(ast.Option{Key: "delay", Value: plainTemplate("2s")}),
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2000, opts.DelayMS)
}

func TestResolveOptionsOutputOverridesPerEntry(t *testing.T) {
	ctx := &eval.Context{Vars: scope.New()}
	opts, err := ResolveOptions(ctx, DefaultOptions(), []ast.Section{
		optionSection(ast.Option{Key: "output", Value: plainTemplate("response.json")}),
	})
	require.NoError(t, err)
	assert.True(t, opts.HasOutput)
	assert.Equal(t, "response.json", opts.Output)
}
