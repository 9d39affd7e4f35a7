// Package session keeps the ordered list of triaged complaints for one
// operator session.
package session

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonesrussell/north-cloud/triage/internal/domain"
	"github.com/jonesrussell/north-cloud/triage/internal/telemetry"
)

// Notices shown next to a threat-flagged result.
const (
	NoticeSuppressed = "⚠️ LET OP: deze klacht wordt niet in behandeling genomen wegens dreigende taal. ⚠️"
	NoticeFlagged    = "⚠️ LET OP: deze klacht is aangemerkt als dreigend. ⚠️"
)

// Entry is one logged complaint.
type Entry struct {
	ID           string    `json:"id"`
	Complaint    string    `json:"complaint"`
	Neighborhood string    `json:"neighborhood"`
	CreatedAt    time.Time `json:"created_at"`
	domain.TriageResult
}

// Log is an append-only, insertion-ordered result log. It is safe for
// concurrent use.
type Log struct {
	mu        sync.Mutex
	entries   []Entry
	telemetry *telemetry.Provider
	now       func() time.Time
}

// NewLog creates an empty log. tp may be nil.
func NewLog(tp *telemetry.Provider) *Log {
	return &Log{telemetry: tp, now: time.Now}
}

// Append records a triaged complaint. Threat-flagged results are dropped
// unless includeThreats is set; the returned bool reports whether the entry
// was kept.
func (l *Log) Append(complaint, neighborhood string, result domain.TriageResult, includeThreats bool) (Entry, bool) {
	entry := Entry{
		ID:           uuid.New().String(),
		Complaint:    complaint,
		Neighborhood: neighborhood,
		TriageResult: result.Clone(),
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entry.CreatedAt = l.now().UTC()
	retained := includeThreats || !result.IsThreat
	if retained {
		l.entries = append(l.entries, entry)
	}
	if l.telemetry != nil {
		l.telemetry.RecordLogged(retained, len(l.entries))
	}
	return entry, retained
}

// Entries returns the log in insertion order.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return cloneEntries(l.entries)
}

// ByPriority returns the log ordered by priority, highest first. Equal
// priorities keep insertion order.
func (l *Log) ByPriority() []Entry {
	out := l.Entries()
	slices.SortStableFunc(out, func(a, b Entry) int {
		return b.PriorityScore - a.PriorityScore
	})
	return out
}

// Len returns the number of entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Reset empties the log.
func (l *Log) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
	if l.telemetry != nil {
		l.telemetry.SetSessionSize(0)
	}
}

// Notice returns the operator notice for result, or "" when none applies.
func Notice(result domain.TriageResult, includeThreats bool) string {
	switch {
	case !result.IsThreat:
		return ""
	case includeThreats:
		return NoticeFlagged
	default:
		return NoticeSuppressed
	}
}

func cloneEntries(in []Entry) []Entry {
	out := make([]Entry, len(in))
	for i, e := range in {
		out[i] = e
		out[i].TriageResult = e.TriageResult.Clone()
	}
	return out
}
