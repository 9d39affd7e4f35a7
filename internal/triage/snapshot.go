package triage

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/jonesrussell/north-cloud/triage/internal/domain"
	"github.com/jonesrussell/north-cloud/triage/internal/logger"
)

// Settings is the operator-editable configuration behind a Snapshot.
type Settings struct {
	Categories      []domain.Category     `json:"categories"`
	UnknownCategory string                `json:"unknown_category"`
	HighPriority    []string              `json:"high_priority"`
	Neighborhoods   []domain.Neighborhood `json:"neighborhoods"`
	Threshold       float64               `json:"threshold"`
	Weights         *ScoringWeights       `json:"weights,omitempty"`
	UrgentTerms     []string              `json:"urgent_terms"`
}

// Clone deep-copies s.
func (s Settings) Clone() Settings {
	out := s
	out.Categories = make([]domain.Category, len(s.Categories))
	for i, c := range s.Categories {
		out.Categories[i] = domain.Category{Name: c.Name, Keywords: append([]string{}, c.Keywords...)}
	}
	out.HighPriority = append([]string(nil), s.HighPriority...)
	out.Neighborhoods = append([]domain.Neighborhood(nil), s.Neighborhoods...)
	out.UrgentTerms = append([]string(nil), s.UrgentTerms...)
	if s.Weights != nil {
		w := *s.Weights
		out.Weights = &w
	}
	return out
}

// Snapshot is a validated, compiled and immutable view of Settings. One
// snapshot may serve any number of concurrent Analyze calls.
type Snapshot struct {
	settings      Settings
	highPriority  map[string]struct{}
	ignored       []string
	neighborhoods map[string]int
	matcher       *Matcher
	scorer        *Scorer
}

// NewSnapshot validates s and compiles its matchers. Unset unknown category,
// urgent terms and weights fall back to the defaults. Weights are unset only
// when nil; all-zero weights are kept as given. High-priority entries
// naming no configured category are dropped and logged at debug.
func NewSnapshot(s Settings, log logger.Logger) (*Snapshot, error) {
	if log == nil {
		log = logger.NewNop()
	}

	s = s.Clone()
	if s.UnknownCategory == "" {
		s.UnknownCategory = DefaultUnknownCategory
	}
	if s.UrgentTerms == nil {
		s.UrgentTerms = DefaultUrgentTerms()
	}
	if s.Weights == nil {
		w := DefaultScoringWeights()
		s.Weights = &w
	}

	if err := validateSettings(s); err != nil {
		return nil, err
	}

	configured := make(map[string]struct{}, len(s.Categories))
	for _, c := range s.Categories {
		configured[c.Name] = struct{}{}
	}

	snap := &Snapshot{
		settings:      s,
		highPriority:  make(map[string]struct{}, len(s.HighPriority)),
		neighborhoods: make(map[string]int, len(s.Neighborhoods)),
		matcher:       NewMatcher(s.Categories, s.UnknownCategory),
		scorer:        NewScorer(*s.Weights, s.UnknownCategory, s.UrgentTerms),
	}

	for _, name := range s.HighPriority {
		if _, ok := configured[name]; !ok {
			snap.ignored = append(snap.ignored, name)
			log.Debug("Ignoring high-priority entry without a configured category",
				logger.String("category", name))
			continue
		}
		snap.highPriority[name] = struct{}{}
	}
	for _, n := range s.Neighborhoods {
		snap.neighborhoods[n.Name] = n.Weight
	}

	return snap, nil
}

func validateSettings(s Settings) error {
	seen := make(map[string]struct{}, len(s.Categories))
	for i, c := range s.Categories {
		field := fmt.Sprintf("categories[%d]", i)
		if strings.TrimSpace(c.Name) == "" {
			return &ConfigError{Field: field + ".name", Message: "is required"}
		}
		if _, dup := seen[c.Name]; dup {
			return &ConfigError{Field: field + ".name", Message: fmt.Sprintf("duplicate category %q", c.Name)}
		}
		seen[c.Name] = struct{}{}
		for j, kw := range c.Keywords {
			if strings.TrimSpace(kw) == "" {
				return &ConfigError{
					Field:   fmt.Sprintf("%s.keywords[%d]", field, j),
					Message: "blank keyword",
				}
			}
		}
	}

	if math.IsNaN(s.Threshold) || s.Threshold < 0 || s.Threshold > 1 {
		return &ConfigError{Field: "threshold", Message: "must be within [0, 1]"}
	}

	names := make(map[string]struct{}, len(s.Neighborhoods))
	for i, n := range s.Neighborhoods {
		field := fmt.Sprintf("neighborhoods[%d]", i)
		if strings.TrimSpace(n.Name) == "" {
			return &ConfigError{Field: field + ".name", Message: "is required"}
		}
		if _, dup := names[n.Name]; dup {
			return &ConfigError{Field: field + ".name", Message: fmt.Sprintf("duplicate neighborhood %q", n.Name)}
		}
		names[n.Name] = struct{}{}
		if n.Weight < MinNeighborhoodWeight || n.Weight > MaxNeighborhoodWeight {
			return &ConfigError{
				Field:   field + ".weight",
				Message: fmt.Sprintf("must be within [%d, %d]", MinNeighborhoodWeight, MaxNeighborhoodWeight),
			}
		}
	}

	for i, term := range s.UrgentTerms {
		if strings.TrimSpace(term) == "" {
			return &ConfigError{Field: fmt.Sprintf("urgent_terms[%d]", i), Message: "blank term"}
		}
	}

	return s.Weights.validate()
}

// Settings returns a deep copy of the settings the snapshot was built from.
func (s *Snapshot) Settings() Settings {
	return s.settings.Clone()
}

// Threshold returns the toxicity cutoff.
func (s *Snapshot) Threshold() float64 {
	return s.settings.Threshold
}

// UnknownCategory returns the sentinel category name.
func (s *Snapshot) UnknownCategory() string {
	return s.settings.UnknownCategory
}

// Categories returns a copy of the configured categories in order.
func (s *Snapshot) Categories() []domain.Category {
	return s.Settings().Categories
}

// HighPriority returns the effective high-priority categories in configuration order.
func (s *Snapshot) HighPriority() []string {
	out := make([]string, 0, len(s.highPriority))
	for _, c := range s.settings.Categories {
		if _, ok := s.highPriority[c.Name]; ok {
			out = append(out, c.Name)
		}
	}
	return out
}

// IgnoredHighPriority returns high-priority entries that named no configured category.
func (s *Snapshot) IgnoredHighPriority() []string {
	return append([]string(nil), s.ignored...)
}

// NeighborhoodWeight returns the weight of name, or 0 for unknown names.
func (s *Snapshot) NeighborhoodWeight(name string) int {
	return s.neighborhoods[name]
}

// HasNeighborhood reports whether name is a configured neighborhood.
func (s *Snapshot) HasNeighborhood(name string) bool {
	_, ok := s.neighborhoods[name]
	return ok
}

// Neighborhoods returns the configured neighborhoods sorted by name.
func (s *Snapshot) Neighborhoods() []domain.Neighborhood {
	out := append([]domain.Neighborhood(nil), s.settings.Neighborhoods...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// MatchCategory runs the compiled category matcher.
func (s *Snapshot) MatchCategory(text string) (string, []string) {
	return s.matcher.Match(text)
}

// Explain scores one complaint against this snapshot's weights and sets.
func (s *Snapshot) Explain(toxicity float64, category string, matched []string, text string, locationWeight int) Breakdown {
	return s.scorer.Explain(ScoreInput{
		Toxicity:        toxicity,
		Category:        category,
		MatchedKeywords: matched,
		Text:            text,
		HighPriority:    s.highPriority,
		LocationWeight:  locationWeight,
		Threshold:       s.settings.Threshold,
	})
}
