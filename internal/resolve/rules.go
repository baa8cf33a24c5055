package resolve

import (
	"sort"
	"strings"
)

// SuffixRule maps a texture name ending to a shader placeholder key.
type SuffixRule struct {
	Suffix string // lowercase
	Key    string // placeholder name without '$', e.g. "basetexture"
}

// Matches reports whether name ends with the rule's suffix, ignoring case.
func (r SuffixRule) Matches(name string) bool {
	return r.Suffix != "" && strings.HasSuffix(strings.ToLower(name), r.Suffix)
}

// NormalizeKey strips the '$' shader-parameter prefix and surrounding space.
func NormalizeKey(key string) string {
	return strings.TrimLeft(strings.TrimSpace(key), "$")
}

// NewSuffixRules flattens a key -> suffixes table into an ordered rule list.
// Longer suffixes come first so that "_normal_detail" is tried before "_detail";
// equal lengths are ordered by suffix, then key. Empty suffixes and duplicates are dropped.
func NewSuffixRules(mappings map[string][]string) []SuffixRule {
	seen := make(map[SuffixRule]struct{})
	var rules []SuffixRule
	for key, suffixes := range mappings {
		k := NormalizeKey(key)
		if k == "" {
			continue
		}
		for _, s := range suffixes {
			r := SuffixRule{Suffix: strings.ToLower(strings.TrimSpace(s)), Key: k}
			if r.Suffix == "" {
				continue
			}
			if _, dup := seen[r]; dup {
				continue
			}
			seen[r] = struct{}{}
			rules = append(rules, r)
		}
	}

	sort.Slice(rules, func(i, j int) bool {
		a, b := rules[i], rules[j]
		if len(a.Suffix) != len(b.Suffix) {
			return len(a.Suffix) > len(b.Suffix)
		}
		if a.Suffix != b.Suffix {
			return a.Suffix < b.Suffix
		}
		return a.Key < b.Key
	})
	return rules
}

// Keys returns the distinct placeholder keys of rules in sorted order.
func Keys(rules []SuffixRule) []string {
	seen := make(map[string]struct{}, len(rules))
	var keys []string
	for _, r := range rules {
		if _, ok := seen[r.Key]; ok {
			continue
		}
		seen[r.Key] = struct{}{}
		keys = append(keys, r.Key)
	}
	sort.Strings(keys)
	return keys
}
