package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRules = Rules{
	"_normal":       {Format: "RGBA8888", AlphaFormat: "RGBA8888", ExtraFlags: []string{"-nomipmaps"}},
	"_detail_alpha": {Format: "BGRA8888"},
	"_alpha":        {Format: "DXT5", AlphaFormat: "DXT5"},
	"default":       {Format: "DXT1"},
}

func TestRulesFor(t *testing.T) {
	for file, want := range map[string]string{
		"rifle_normal.tga":        "_normal",
		"RIFLE_NORMAL.PNG":        "_normal",
		"glass_alpha.png":         "_alpha",
		"scope_detail_alpha.tga":  "_detail_alpha",
		"rifle_color.tga":         "default",
		"dir/normal_map_body.png": "default",
		// The extension is not part of the match.
		"weird.tga_normal": "default",
	} {
		_, name, err := testRules.For(file)
		require.NoError(t, err, file)
		assert.Equal(t, want, name, file)
	}
}

func TestRulesForWithoutDefault(t *testing.T) {
	rules := Rules{"_normal": {Format: "RGBA8888"}}
	_, _, err := rules.For("rifle_color.png")
	assert.ErrorIs(t, err, ErrNoRule)
}

func TestArgs(t *testing.T) {
	args := Args(testRules["_normal"], "in/rifle_normal.tga", "out")
	assert.Equal(t, []string{
		"-file", "in/rifle_normal.tga",
		"-format", "RGBA8888",
		"-output", "out",
		"-alphaformat", "RGBA8888",
		"-nomipmaps",
	}, args)

	args = Args(testRules["default"], "a.png", "out")
	assert.Equal(t, []string{"-file", "a.png", "-format", "DXT1", "-output", "out"}, args)
}

func TestParseFlags(t *testing.T) {
	flags, err := ParseFlags(`-nomipmaps -resize -rclampwidth "512"`)
	require.NoError(t, err)
	assert.Equal(t, []string{"-nomipmaps", "-resize", "-rclampwidth", "512"}, flags)

	_, err = ParseFlags(`-resize "unterminated`)
	assert.Error(t, err)
}
