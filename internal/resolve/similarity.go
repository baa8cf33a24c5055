package resolve

import (
	"fmt"
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/pmezard/go-difflib/difflib"
)

// Metric scores the similarity of two strings in [0, 1].
type Metric = strutil.StringMetric

// SequenceRatio is the Ratcliff/Obershelp ratio computed by difflib's
// SequenceMatcher over the characters of both strings: 2*M/T where M is the
// number of matching characters and T the total length.
type SequenceRatio struct{}

// Compare returns the sequence ratio of a and b.
func (SequenceRatio) Compare(a, b string) float64 {
	m := difflib.NewMatcher(chars(a), chars(b))
	return m.Ratio()
}

func chars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// DefaultMetric is the name of the metric used when none is configured.
const DefaultMetric = "ratio"

var metricFactories = map[string]func() Metric{
	"ratio": func() Metric { return SequenceRatio{} },
	"levenshtein": func() Metric {
		m := metrics.NewLevenshtein()
		m.CaseSensitive = false
		return m
	},
	"jaro": func() Metric {
		m := metrics.NewJaro()
		m.CaseSensitive = false
		return m
	},
	"jaro-winkler": func() Metric {
		m := metrics.NewJaroWinkler()
		m.CaseSensitive = false
		return m
	},
	"sorensen-dice": func() Metric {
		m := metrics.NewSorensenDice()
		m.CaseSensitive = false
		return m
	},
	"jaccard": func() Metric {
		m := metrics.NewJaccard()
		m.CaseSensitive = false
		return m
	},
}

// MetricByName returns the named similarity metric. An empty name selects
// DefaultMetric.
func MetricByName(name string) (Metric, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = DefaultMetric
	}
	f, ok := metricFactories[name]
	if !ok {
		return nil, fmt.Errorf("resolve: unknown similarity metric %q (known: %s)",
			name, strings.Join(MetricNames(), ", "))
	}
	return f(), nil
}

// MetricNames lists the accepted metric names.
func MetricNames() []string {
	names := make([]string, 0, len(metricFactories))
	for n := range metricFactories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
