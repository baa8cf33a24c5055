package convert

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/mattn/go-shellwords"
	"github.com/pkg/errors"
)

// DefaultRule names the rule used when no suffix matches.
const DefaultRule = "default"

// Rule holds the VTFCmd format flags for one texture suffix.
type Rule struct {
	Format      string
	AlphaFormat string
	ExtraFlags  []string
}

// Rules maps a filename suffix (e.g. "_normal") to its rule.
type Rules map[string]Rule

// For returns the rule for file. Suffixes are matched case-insensitively
// against the file name without its extension, longest suffix first. When
// none matches, the default rule is returned. The second result is the
// suffix that matched.
func (rs Rules) For(file string) (Rule, string, error) {
	base := filepath.Base(file)
	stem := strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))

	suffixes := make([]string, 0, len(rs))
	for s := range rs {
		if s != DefaultRule && s != "" {
			suffixes = append(suffixes, s)
		}
	}
	sort.Slice(suffixes, func(i, j int) bool {
		if len(suffixes[i]) != len(suffixes[j]) {
			return len(suffixes[i]) > len(suffixes[j])
		}
		return suffixes[i] < suffixes[j]
	})

	for _, s := range suffixes {
		if strings.HasSuffix(stem, strings.ToLower(s)) {
			return rs[s], s, nil
		}
	}
	if r, ok := rs[DefaultRule]; ok {
		return r, DefaultRule, nil
	}
	return Rule{}, "", errors.Wrapf(ErrNoRule, "%s", base)
}

// Args builds the VTFCmd argument list for converting src into outDir.
func Args(r Rule, src, outDir string) []string {
	args := []string{"-file", src, "-format", r.Format, "-output", outDir}
	if r.AlphaFormat != "" {
		args = append(args, "-alphaformat", r.AlphaFormat)
	}
	return append(args, r.ExtraFlags...)
}

// ParseFlags splits a shell-quoted flag string such as `-nomipmaps -resize`.
func ParseFlags(s string) ([]string, error) {
	args, err := shellwords.Parse(s)
	if err != nil {
		return nil, errors.Wrapf(err, "convert: parse flags %q", s)
	}
	return args, nil
}
