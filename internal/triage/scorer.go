package triage

import "math"

// Priority bounds. Every score leaves the scorer inside [MinPriority, MaxPriority].
const (
	MinPriority = 1
	MaxPriority = 10
)

// ScoringWeights are the terms of the additive priority formula.
type ScoringWeights struct {
	Base               float64 `json:"base"                 yaml:"base"`
	ToxicityMultiplier float64 `json:"toxicity_multiplier"  yaml:"toxicity_multiplier"`
	HighPriorityBonus  float64 `json:"high_priority_bonus"  yaml:"high_priority_bonus"`
	KnownCategoryBonus float64 `json:"known_category_bonus" yaml:"known_category_bonus"`
	UrgentKeywordBonus float64 `json:"urgent_keyword_bonus" yaml:"urgent_keyword_bonus"`
}

// DefaultScoringWeights returns the weights the intake tool has always used.
func DefaultScoringWeights() ScoringWeights {
	return ScoringWeights{
		Base:               2,
		ToxicityMultiplier: 3.0,
		HighPriorityBonus:  3,
		KnownCategoryBonus: 1,
		UrgentKeywordBonus: 2,
	}
}

func (w ScoringWeights) validate() error {
	checks := []struct {
		field string
		value float64
	}{
		{"weights.base", w.Base},
		{"weights.toxicity_multiplier", w.ToxicityMultiplier},
		{"weights.high_priority_bonus", w.HighPriorityBonus},
		{"weights.known_category_bonus", w.KnownCategoryBonus},
		{"weights.urgent_keyword_bonus", w.UrgentKeywordBonus},
	}
	for _, c := range checks {
		if math.IsNaN(c.value) || math.IsInf(c.value, 0) {
			return &ConfigError{Field: c.field, Message: "must be a finite number"}
		}
	}
	return nil
}

// ScoreInput carries everything the scorer looks at for one complaint.
// HighPriority must only hold configured categories; Snapshot guarantees that.
type ScoreInput struct {
	Toxicity        float64
	Category        string
	MatchedKeywords []string
	Text            string
	HighPriority    map[string]struct{}
	LocationWeight  int
	Threshold       float64
}

// Breakdown is the per-term contribution behind a priority score.
type Breakdown struct {
	Base          float64 `json:"base"`
	Toxicity      float64 `json:"toxicity"`
	HighPriority  float64 `json:"high_priority"`
	KnownCategory float64 `json:"known_category"`
	Urgent        float64 `json:"urgent"`
	Location      float64 `json:"location"`
	Raw           float64 `json:"raw"`
	Priority      int     `json:"priority"`
	IsThreat      bool    `json:"is_threat"`
}

// Scorer computes priority scores with fixed weights and urgent terms.
type Scorer struct {
	weights ScoringWeights
	unknown string
	urgent  *keywordIndex
}

// NewScorer builds a scorer. urgentTerms are scanned over the whole text.
func NewScorer(weights ScoringWeights, unknown string, urgentTerms []string) *Scorer {
	terms := make([]string, 0, len(urgentTerms))
	for _, t := range urgentTerms {
		terms = append(terms, Normalize(t))
	}
	return &Scorer{
		weights: weights,
		unknown: unknown,
		urgent:  newKeywordIndex(terms),
	}
}

// Score returns the clamped priority and the threat flag.
func (s *Scorer) Score(in ScoreInput) (int, bool) {
	b := s.Explain(in)
	return b.Priority, b.IsThreat
}

// Explain computes the score and keeps every term for logging.
func (s *Scorer) Explain(in ScoreInput) Breakdown {
	b := Breakdown{
		Base:     s.weights.Base,
		Location: float64(in.LocationWeight),
		IsThreat: in.Toxicity > in.Threshold,
	}

	if b.IsThreat {
		b.Toxicity = in.Toxicity * s.weights.ToxicityMultiplier
	}
	if _, ok := in.HighPriority[in.Category]; ok {
		b.HighPriority = s.weights.HighPriorityBonus
	}
	if in.Category != s.unknown {
		b.KnownCategory = s.weights.KnownCategoryBonus
	}
	if s.urgent.any(Normalize(in.Text)) {
		b.Urgent = s.weights.UrgentKeywordBonus
	}

	b.Raw = b.Base + b.Toxicity + b.HighPriority + b.KnownCategory + b.Urgent + b.Location
	b.Priority = clampPriority(b.Raw)
	return b
}

// clampPriority rounds half to even and clamps into the priority range.
func clampPriority(raw float64) int {
	if math.IsNaN(raw) {
		return MinPriority
	}
	r := math.RoundToEven(raw)
	if r < MinPriority {
		return MinPriority
	}
	if r > MaxPriority {
		return MaxPriority
	}
	return int(r)
}
