// Package resolve maps a mesh material name to the texture files that
// should fill its shader placeholders.
//
// A material is first matched to a texture group (a texture name minus its
// last "_token") by string similarity, then the group's textures are sorted
// into placeholder slots by suffix rules.
package resolve

import (
	"sort"
	"strings"

	"lambdaconstruct/internal/texture"
)

// DefaultCutoff is the minimum similarity accepted when none is configured.
const DefaultCutoff = 0.6

// Match is the resolution result for one material.
type Match struct {
	Material string            `json:"material"`
	Group    string            `json:"group,omitempty"` // empty when no group cleared the cutoff
	Score    float64           `json:"score"`
	Textures map[string]string `json:"textures"` // placeholder key -> path relative to the materials root
}

// Matched reports whether a texture group was accepted.
func (m Match) Matched() bool {
	return m.Group != ""
}

// Keys returns the assigned placeholder keys in sorted order.
func (m Match) Keys() []string {
	keys := make([]string, 0, len(m.Textures))
	for k := range m.Textures {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Resolver holds the read-only matching configuration. It is safe for
// concurrent use once built.
type Resolver struct {
	Rules  []SuffixRule // ordered, first match wins; see NewSuffixRules
	Cutoff float64
	Metric Metric
}

// New returns a resolver using the default metric and cutoff.
func New(rules []SuffixRule) *Resolver {
	return &Resolver{Rules: rules, Cutoff: DefaultCutoff, Metric: SequenceRatio{}}
}

// Resolve matches material against the given assets. It never fails: when
// there are no assets or no group scores at least Cutoff, the returned
// mapping is empty.
func (r *Resolver) Resolve(material string, assets []texture.Asset) Match {
	return r.ResolveIndex(material, texture.NewIndex(assets))
}

// ResolveIndex is Resolve over a prebuilt index.
func (r *Resolver) ResolveIndex(material string, idx *texture.Index) Match {
	out := Match{Material: material, Textures: map[string]string{}}
	if idx == nil || idx.Len() == 0 {
		return out
	}

	group, score, ok := r.bestGroup(strings.ToLower(material), idx.Groups())
	out.Score = score
	if !ok {
		return out
	}
	out.Group = group

	for _, a := range idx.Members(group) {
		rule, found := r.ruleFor(a.Name)
		if !found {
			continue
		}
		if _, taken := out.Textures[rule.Key]; taken {
			continue
		}
		out.Textures[rule.Key] = a.Path
	}

	return out
}

// bestGroup scores every candidate in order. Only a strictly higher score
// replaces the current best, so ties go to the earliest candidate.
func (r *Resolver) bestGroup(material string, groups []string) (string, float64, bool) {
	metric := r.Metric
	if metric == nil {
		metric = SequenceRatio{}
	}

	best, bestScore := -1, -1.0
	for i, g := range groups {
		s := metric.Compare(material, g)
		if s > bestScore {
			best, bestScore = i, s
		}
	}
	if best < 0 {
		return "", 0, false
	}
	if bestScore < r.Cutoff {
		return "", bestScore, false
	}
	return groups[best], bestScore, true
}

func (r *Resolver) ruleFor(name string) (SuffixRule, bool) {
	for _, rule := range r.Rules {
		if rule.Matches(name) {
			return rule, true
		}
	}
	return SuffixRule{}, false
}
