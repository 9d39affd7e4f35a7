package triage

import (
	"strings"

	"github.com/jonesrussell/north-cloud/triage/internal/domain"
)

// Matcher assigns a complaint to the category whose keywords occur most
// often in it. It is built once per configuration snapshot and is safe for
// concurrent use.
type Matcher struct {
	categories []domain.Category
	unknown    string
	index      *keywordIndex
}

// NewMatcher compiles categories, in configuration order, into a matcher.
// unknown is the category reported when nothing matches.
func NewMatcher(categories []domain.Category, unknown string) *Matcher {
	normalized := make([]domain.Category, len(categories))
	all := make([]string, 0, len(categories)*estimatedKeywordsPerCategory)
	for i, c := range categories {
		kws := make([]string, len(c.Keywords))
		for j, kw := range c.Keywords {
			kws[j] = Normalize(kw)
		}
		normalized[i] = domain.Category{Name: c.Name, Keywords: kws}
		all = append(all, kws...)
	}

	return &Matcher{
		categories: normalized,
		unknown:    unknown,
		index:      newKeywordIndex(all),
	}
}

const estimatedKeywordsPerCategory = 50

// Match returns the winning category and its matched keywords in keyword
// list order. A keyword listed twice is reported twice. Ties go to the
// category listed first; no positive match at all yields the unknown category
// with an empty keyword list.
func (m *Matcher) Match(text string) (string, []string) {
	normalized := Normalize(text)
	if strings.TrimSpace(normalized) == "" {
		return m.unknown, []string{}
	}

	present := m.index.present(normalized)
	if len(present) == 0 {
		return m.unknown, []string{}
	}

	var (
		best        string
		bestMatches []string
	)
	for _, c := range m.categories {
		var matched []string
		for _, kw := range c.Keywords {
			if _, ok := present[kw]; ok {
				matched = append(matched, kw)
			}
		}
		if len(matched) > len(bestMatches) {
			best = c.Name
			bestMatches = matched
		}
	}

	if len(bestMatches) == 0 {
		return m.unknown, []string{}
	}
	return best, bestMatches
}

// MatchCategory is the one-shot form of Matcher.Match for callers that do not
// keep a compiled matcher around.
func MatchCategory(text string, categories []domain.Category, unknown string) (string, []string) {
	return NewMatcher(categories, unknown).Match(text)
}
