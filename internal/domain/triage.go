// Package domain holds the value types shared by the triage core, the HTTP
// API and the CLI.
package domain

// TriageResult is the outcome of triaging one complaint. It is produced once
// per call and never mutated afterwards.
type TriageResult struct {
	Summary         string   `json:"summary"`
	Category        string   `json:"category"`
	IsThreat        bool     `json:"is_threat"`
	MatchedKeywords []string `json:"matched_keywords"`
	ToxicityScore   float64  `json:"toxicity_score"`
	PriorityScore   int      `json:"priority_score"`
}

// Clone returns a copy that shares no slices with r.
func (r TriageResult) Clone() TriageResult {
	out := r
	out.MatchedKeywords = append([]string(nil), r.MatchedKeywords...)
	if out.MatchedKeywords == nil {
		out.MatchedKeywords = []string{}
	}
	return out
}

// Category is one entry of the ordered category configuration.
type Category struct {
	Name     string   `json:"name"     yaml:"name"`
	Keywords []string `json:"keywords" yaml:"keywords"`
}

// Neighborhood is a location with its signed priority adjustment.
type Neighborhood struct {
	Name   string `json:"name"   yaml:"name"`
	Weight int    `json:"weight" yaml:"weight"`
}
