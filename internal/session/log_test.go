package session_test

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/triage/internal/domain"
	"github.com/jonesrussell/north-cloud/triage/internal/session"
	"github.com/jonesrussell/north-cloud/triage/internal/telemetry"
)

func result(category string, priority int, threat bool) domain.TriageResult {
	return domain.TriageResult{
		Category:        category,
		PriorityScore:   priority,
		IsThreat:        threat,
		MatchedKeywords: []string{},
	}
}

func TestLog_AppendRespectsIncludeThreats(t *testing.T) {
	log := session.NewLog(nil)

	_, kept := log.Append("rustig verzoek", "Lombok", result("Verlichting", 4, false), false)
	assert.True(t, kept)

	entry, kept := log.Append("dreigende taal", "Zuilen", result("Onbekend", 7, true), false)
	assert.False(t, kept)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, 1, log.Len())

	_, kept = log.Append("dreigende taal", "Zuilen", result("Onbekend", 7, true), true)
	assert.True(t, kept)
	assert.Equal(t, 2, log.Len())
}

func TestLog_OrderAndPriority(t *testing.T) {
	log := session.NewLog(nil)
	log.Append("a", "", result("X", 3, false), false)
	log.Append("b", "", result("X", 8, false), false)
	log.Append("c", "", result("X", 3, false), false)
	log.Append("d", "", result("X", 10, false), false)

	var inserted []string
	for _, e := range log.Entries() {
		inserted = append(inserted, e.Complaint)
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, inserted)

	var queue []string
	for _, e := range log.ByPriority() {
		queue = append(queue, e.Complaint)
	}
	assert.Equal(t, []string{"d", "b", "a", "c"}, queue)
}

func TestLog_EntriesAreCopies(t *testing.T) {
	log := session.NewLog(nil)
	r := result("Afvalbeheer", 5, false)
	r.MatchedKeywords = []string{"afval"}
	log.Append("afval", "", r, false)

	got := log.Entries()
	require.Len(t, got, 1)
	got[0].MatchedKeywords[0] = "anders"
	got[0].Complaint = "anders"

	fresh := log.Entries()
	require.Len(t, fresh, 1)
	assert.Equal(t, "afval", fresh[0].Complaint)
	assert.Equal(t, []string{"afval"}, fresh[0].MatchedKeywords)
}

func TestLog_Reset(t *testing.T) {
	tp := telemetry.NewProvider(nil)
	log := session.NewLog(tp)
	log.Append("a", "", result("X", 3, false), false)
	assert.InDelta(t, 1, testutil.ToFloat64(tp.Metrics.SessionSize), 1e-9)

	log.Reset()
	assert.Zero(t, log.Len())
	assert.Empty(t, log.Entries())
	assert.InDelta(t, 0, testutil.ToFloat64(tp.Metrics.SessionSize), 1e-9)
}

func TestLog_ConcurrentAppend(t *testing.T) {
	log := session.NewLog(nil)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 20 {
				log.Append("x", "", result("X", 5, false), false)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 200, log.Len())
	ids := make(map[string]struct{})
	for _, e := range log.Entries() {
		ids[e.ID] = struct{}{}
	}
	assert.Len(t, ids, 200)
}

func TestNotice(t *testing.T) {
	assert.Empty(t, session.Notice(result("X", 5, false), false))
	assert.Empty(t, session.Notice(result("X", 5, false), true))
	assert.Equal(t, session.NoticeSuppressed, session.Notice(result("X", 5, true), false))
	assert.Equal(t, session.NoticeFlagged, session.Notice(result("X", 5, true), true))
}
