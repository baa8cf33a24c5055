// Package vmt selects shader templates for materials and fills their
// %key% placeholders with resolved texture paths.
package vmt

import (
	"os"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// DefaultExtension is the file extension of generated shader files.
const DefaultExtension = ".vmt"

// TemplateRule selects a template for materials whose name ends in Suffix.
type TemplateRule struct {
	Suffix string // lowercase
	Path   string
}

// Selector picks the template for a material.
type Selector struct {
	Rules   []TemplateRule // most specific first
	Default string
}

// NewSelector builds a selector from a suffix -> template path table.
// Longer suffixes are tried first; equal lengths are ordered alphabetically.
func NewSelector(table map[string]string, def string) *Selector {
	s := &Selector{Default: def}
	for suffix, p := range table {
		suffix = strings.ToLower(strings.TrimSpace(suffix))
		if suffix == "" || p == "" {
			continue
		}
		s.Rules = append(s.Rules, TemplateRule{Suffix: suffix, Path: p})
	}
	sort.Slice(s.Rules, func(i, j int) bool {
		a, b := s.Rules[i], s.Rules[j]
		if len(a.Suffix) != len(b.Suffix) {
			return len(a.Suffix) > len(b.Suffix)
		}
		return a.Suffix < b.Suffix
	})
	return s
}

// Select returns the template path for material. A matching rule whose file
// is missing is passed over. When nothing usable remains, the default
// template is returned if it exists, otherwise ErrTemplateNotFound.
func (s *Selector) Select(material string) (string, error) {
	name := strings.ToLower(material)
	for _, r := range s.Rules {
		if strings.HasSuffix(name, r.Suffix) && isFile(r.Path) {
			return r.Path, nil
		}
	}
	if s.Default != "" && isFile(s.Default) {
		return s.Default, nil
	}
	if s.Default == "" {
		return "", errors.Wrapf(ErrTemplateNotFound, "material %q: no default template configured", material)
	}
	return "", errors.Wrapf(ErrTemplateNotFound, "material %q: %s", material, s.Default)
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

// Load reads template text from disk.
func Load(p string) (string, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		return "", errors.Wrap(err, "vmt: load template")
	}
	return string(b), nil
}

// leftover matches any placeholder still present after substitution.
var leftover = regexp.MustCompile(`%\$?[A-Za-z0-9_]+%`)

// Render substitutes each %key% in text with the texture path for key,
// written with forward slashes and without its extension. Placeholders with
// no texture are removed so the output never carries a %key% token. Every
// key in configured is stripped as well, whatever characters it contains.
func Render(text string, textures map[string]string, configured ...string) string {
	keys := make([]string, 0, len(textures))
	for k := range textures {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		text = strings.ReplaceAll(text, placeholder(k), TexturePath(textures[k]))
	}
	for _, k := range configured {
		if k = strings.TrimLeft(k, "$"); k != "" {
			text = strings.ReplaceAll(text, placeholder(k), "")
		}
	}

	return leftover.ReplaceAllString(text, "")
}

func placeholder(key string) string {
	return "%" + strings.TrimLeft(key, "$") + "%"
}

// TexturePath converts a texture file path to the form shader files expect:
// forward slashes, no extension.
func TexturePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	return strings.TrimSuffix(p, path.Ext(p))
}
