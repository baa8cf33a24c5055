package resolve

import (
	"path"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lambdaconstruct/internal/texture"
)

func assets(paths ...string) []texture.Asset {
	out := make([]texture.Asset, 0, len(paths))
	for _, p := range paths {
		name := strings.TrimSuffix(path.Base(p), path.Ext(p))
		out = append(out, texture.Asset{Name: name, Path: p})
	}
	return out
}

func TestNewSuffixRulesOrder(t *testing.T) {
	rules := NewSuffixRules(map[string][]string{
		"$basetexture": {"_color", "_Albedo", "_color"},
		"$bumpmap":     {"_normal"},
		"$detail":      {"_d", ""},
		" ":            {"_ignored"},
	})

	assert.Equal(t, []SuffixRule{
		{Suffix: "_albedo", Key: "basetexture"},
		{Suffix: "_normal", Key: "bumpmap"},
		{Suffix: "_color", Key: "basetexture"},
		{Suffix: "_d", Key: "detail"},
	}, rules)
	assert.Equal(t, []string{"basetexture", "bumpmap", "detail"}, Keys(rules))
}

func TestResolveSuffixGrouping(t *testing.T) {
	r := New(NewSuffixRules(map[string][]string{
		"basetexture": {"color"},
		"bumpmap":     {"normal"},
	}))

	m := r.Resolve("rifle_body", assets(
		"models/w/rifle_color.vtf",
		"models/w/rifle_normal.vtf",
	))

	assert.True(t, m.Matched())
	assert.Equal(t, "rifle", m.Group)
	assert.Equal(t, map[string]string{
		"basetexture": "models/w/rifle_color.vtf",
		"bumpmap":     "models/w/rifle_normal.vtf",
	}, m.Textures)
	assert.Equal(t, []string{"basetexture", "bumpmap"}, m.Keys())
}

func TestResolveCutoffBoundary(t *testing.T) {
	rules := NewSuffixRules(map[string][]string{"basetexture": {"_color"}})
	in := assets("abce_color.vtf")

	// "abcd" vs "abce": 3 matching characters of 8 -> 0.75 exactly.
	require.Equal(t, 0.75, SequenceRatio{}.Compare("abcd", "abce"))

	at := &Resolver{Rules: rules, Cutoff: 0.75, Metric: SequenceRatio{}}
	m := at.Resolve("abcd", in)
	assert.Equal(t, "abce", m.Group)
	assert.Equal(t, map[string]string{"basetexture": "abce_color.vtf"}, m.Textures)

	above := &Resolver{Rules: rules, Cutoff: 0.76, Metric: SequenceRatio{}}
	m = above.Resolve("abcd", in)
	assert.False(t, m.Matched())
	assert.Empty(t, m.Textures)
	assert.NotNil(t, m.Textures)
	assert.Equal(t, 0.75, m.Score)
}

func TestResolveTieBreaksOnSortedOrder(t *testing.T) {
	r := New(NewSuffixRules(map[string][]string{"basetexture": {"_color"}}))
	r.Cutoff = 0.5

	// Both groups score 0.75 against "abcd"; the lexically first wins
	// regardless of input order.
	m := r.Resolve("abcd", assets("abcy_color.vtf", "abcx_color.vtf"))
	assert.Equal(t, "abcx", m.Group)
	assert.Equal(t, "abcx_color.vtf", m.Textures["basetexture"])
}

func TestResolveEmptyInputs(t *testing.T) {
	r := New(NewSuffixRules(map[string][]string{"basetexture": {"_color"}}))

	m := r.Resolve("anything", nil)
	assert.False(t, m.Matched())
	assert.Empty(t, m.Textures)

	// No underscore means no group at all.
	m = r.Resolve("plain", assets("plain.vtf"))
	assert.False(t, m.Matched())

	m = r.ResolveIndex("plain", nil)
	assert.Empty(t, m.Textures)
}

func TestResolveFirstRuleWinsPerAsset(t *testing.T) {
	// "_albedo" is longer than "do", so gun_albedo goes to basetexture only
	// and bumpmap stays empty even though "do" would also match.
	r := New(NewSuffixRules(map[string][]string{
		"bumpmap":     {"do"},
		"basetexture": {"_albedo"},
	}))

	m := r.Resolve("gun", assets("gun_albedo.vtf"))
	assert.Equal(t, map[string]string{"basetexture": "gun_albedo.vtf"}, m.Textures)
}

func TestResolveDoesNotOverwriteKey(t *testing.T) {
	r := New(NewSuffixRules(map[string][]string{"basetexture": {"color"}}))

	m := r.Resolve("rifle", assets("b/rifle_diffcolor.vtf", "a/rifle_color.vtf"))
	assert.Equal(t, "a/rifle_color.vtf", m.Textures["basetexture"])
}

func TestResolveIgnoresOtherGroupsAndUnmatchedAssets(t *testing.T) {
	r := New(NewSuffixRules(map[string][]string{"basetexture": {"_color"}}))

	m := r.Resolve("Scope_Lens", assets(
		"scope_lens_color.vtf",
		"scope_lens_rough.vtf",
		"scope_color.vtf",
	))
	assert.Equal(t, "scope_lens", m.Group)
	assert.Equal(t, 1.0, m.Score)
	assert.Equal(t, map[string]string{"basetexture": "scope_lens_color.vtf"}, m.Textures)
}

func TestMetricByName(t *testing.T) {
	m, err := MetricByName("")
	require.NoError(t, err)
	assert.IsType(t, SequenceRatio{}, m)

	for _, name := range MetricNames() {
		m, err := MetricByName(name)
		require.NoError(t, err, name)
		assert.InDelta(t, 1.0, m.Compare("rifle", "rifle"), 1e-9, name)
	}

	_, err = MetricByName("soundex")
	assert.Error(t, err)
}

func TestResolveWithAlternateMetric(t *testing.T) {
	metric, err := MetricByName("jaro-winkler")
	require.NoError(t, err)

	r := &Resolver{
		Rules:  NewSuffixRules(map[string][]string{"basetexture": {"_color"}}),
		Cutoff: 0.8,
		Metric: metric,
	}
	m := r.Resolve("rifle_body", assets("rifle_bodyx_color.vtf", "pistol_color.vtf"))
	assert.Equal(t, "rifle_bodyx", m.Group)
}
