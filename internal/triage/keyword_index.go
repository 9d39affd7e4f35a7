package triage

import (
	"sync"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

// keywordIndex answers "which of these keywords occur in the text" in one
// Aho-Corasick pass. Keywords are stored normalized and deduplicated.
type keywordIndex struct {
	// The automaton records per-call state on its nodes, so Match calls
	// must not overlap.
	mu       sync.Mutex
	matcher  *ahocorasick.Matcher
	keywords []string
}

func newKeywordIndex(keywords []string) *keywordIndex {
	seen := make(map[string]struct{}, len(keywords))
	unique := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		unique = append(unique, kw)
	}

	idx := &keywordIndex{keywords: unique}
	if len(unique) > 0 {
		idx.matcher = ahocorasick.NewStringMatcher(unique)
	}
	return idx
}

// present returns the set of indexed keywords found in normalized text.
func (k *keywordIndex) present(text string) map[string]struct{} {
	found := make(map[string]struct{})
	if k.matcher == nil || text == "" {
		return found
	}

	k.mu.Lock()
	hits := k.matcher.Match([]byte(text))
	k.mu.Unlock()

	for _, i := range hits {
		if i < len(k.keywords) {
			found[k.keywords[i]] = struct{}{}
		}
	}
	return found
}

// any reports whether at least one indexed keyword occurs in normalized text.
func (k *keywordIndex) any(text string) bool {
	return len(k.present(text)) > 0
}
