package triage_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/triage/internal/domain"
	"github.com/jonesrussell/north-cloud/triage/internal/logger"
	"github.com/jonesrussell/north-cloud/triage/internal/telemetry"
	"github.com/jonesrussell/north-cloud/triage/internal/testhelpers"
	"github.com/jonesrussell/north-cloud/triage/internal/triage"
)

func snapshotWith(t *testing.T, mutate func(*triage.Settings)) *triage.Snapshot {
	t.Helper()
	s := triage.DefaultSettings()
	if mutate != nil {
		mutate(&s)
	}
	snap, err := triage.NewSnapshot(s, logger.NewNop())
	require.NoError(t, err)
	return snap
}

func TestAnalyze_ScenarioA_UrgentKnownCategory(t *testing.T) {
	t.Parallel()

	snap := snapshotWith(t, func(s *triage.Settings) { s.HighPriority = nil })
	analyzer := triage.NewAnalyzer(&testhelpers.StubOracle{Default: 0.1}, logger.NewNop(), nil)

	result, err := analyzer.Analyze(context.Background(), snap, "overstroming", 0)
	require.NoError(t, err)

	assert.Equal(t, "Waterbeheer", result.Category)
	assert.Equal(t, []string{"overstroming"}, result.MatchedKeywords)
	assert.False(t, result.IsThreat)
	assert.Equal(t, 5, result.PriorityScore) // base 2 + known 1 + urgent 2
	assert.InDelta(t, 0.1, result.ToxicityScore, 1e-9)
	assert.Equal(t, "Klacht over Waterbeheer: overstroming", result.Summary)
}

func TestAnalyze_ScenarioB_EmptyTextSkipsOracle(t *testing.T) {
	t.Parallel()

	for _, text := range []string{"", "   ", "\n\t"} {
		oracle := &testhelpers.CountingOracle{Next: &testhelpers.StubOracle{Default: 0.99}}
		analyzer := triage.NewAnalyzer(oracle, logger.NewNop(), nil)

		result, err := analyzer.Analyze(context.Background(), snapshotWith(t, nil), text, 0)
		require.NoError(t, err)

		assert.Equal(t, 0, oracle.Calls())
		assert.Equal(t, triage.DefaultUnknownCategory, result.Category)
		assert.Empty(t, result.MatchedKeywords)
		assert.Zero(t, result.ToxicityScore)
		assert.False(t, result.IsThreat)
		assert.Equal(t, 2, result.PriorityScore)
	}
}

func TestAnalyze_ScenarioC_ThreatIndependentOfCategory(t *testing.T) {
	t.Parallel()

	analyzer := triage.NewAnalyzer(&testhelpers.StubOracle{Default: 0.9}, logger.NewNop(), nil)
	snap := snapshotWith(t, nil)

	for _, text := range []string{"hallo daar", "het wegdek bij de brug", "overstroming"} {
		result, err := analyzer.Analyze(context.Background(), snap, text, 0)
		require.NoError(t, err)
		assert.True(t, result.IsThreat, text)
	}
}

func TestAnalyze_ScenarioD_UnconfiguredHighPriorityIgnored(t *testing.T) {
	t.Parallel()

	analyzer := triage.NewAnalyzer(&testhelpers.StubOracle{Default: 0.1}, logger.NewNop(), nil)
	plain := snapshotWith(t, func(s *triage.Settings) { s.HighPriority = nil })
	withGhost := snapshotWith(t, func(s *triage.Settings) { s.HighPriority = []string{"Bestaat niet"} })

	for _, text := range []string{"overstroming", "hallo", "", "de lamp is kapot"} {
		a, err := analyzer.Analyze(context.Background(), plain, text, 0)
		require.NoError(t, err)
		b, err := analyzer.Analyze(context.Background(), withGhost, text, 0)
		require.NoError(t, err)
		assert.Equal(t, a, b, text)
	}
	assert.Equal(t, []string{"Bestaat niet"}, withGhost.IgnoredHighPriority())
}

func TestAnalyze_UnknownSentinelAsHighPriorityCategory(t *testing.T) {
	t.Parallel()

	analyzer := triage.NewAnalyzer(&testhelpers.StubOracle{Default: 0}, logger.NewNop(), nil)

	// Configured sentinel: bonus applies.
	configured := snapshotWith(t, func(s *triage.Settings) { s.HighPriority = []string{"Onbekend"} })
	result, err := analyzer.Analyze(context.Background(), configured, "", 0)
	require.NoError(t, err)
	assert.Equal(t, 5, result.PriorityScore)

	// Sentinel absent from categories: entry is ignored.
	absent := snapshotWith(t, func(s *triage.Settings) {
		s.Categories = s.Categories[1:]
		s.HighPriority = []string{"Onbekend"}
	})
	result, err = analyzer.Analyze(context.Background(), absent, "", 0)
	require.NoError(t, err)
	assert.Equal(t, 2, result.PriorityScore)
}

func TestAnalyze_ScenarioE_LocationWeightRespectsClamp(t *testing.T) {
	t.Parallel()

	snap := snapshotWith(t, nil)

	minimal := triage.NewAnalyzer(&testhelpers.StubOracle{Default: 0}, logger.NewNop(), nil)
	result, err := minimal.Analyze(context.Background(), snap, "", 2)
	require.NoError(t, err)
	assert.Equal(t, 4, result.PriorityScore)

	result, err = minimal.Analyze(context.Background(), snap, "", -2)
	require.NoError(t, err)
	assert.Equal(t, 1, result.PriorityScore)

	maxed := triage.NewAnalyzer(&testhelpers.StubOracle{Default: 1}, logger.NewNop(), nil)
	result, err = maxed.Analyze(context.Background(), snap, "overstroming en brand", 2)
	require.NoError(t, err)
	assert.Equal(t, 10, result.PriorityScore)
}

func TestAnalyze_NeighborhoodWeightFromSnapshot(t *testing.T) {
	t.Parallel()

	snap := snapshotWith(t, nil)
	analyzer := triage.NewAnalyzer(&testhelpers.StubOracle{Default: 0.1}, logger.NewNop(), nil)

	result, err := analyzer.Analyze(context.Background(), snap,
		"Er is een gat in het wegdek bij de brug", snap.NeighborhoodWeight("Overvecht"))
	require.NoError(t, err)

	assert.Equal(t, "Infrastructuur", result.Category)
	assert.Equal(t, []string{"brug", "wegdek"}, result.MatchedKeywords)
	assert.Equal(t, 8, result.PriorityScore) // 2 + high 3 + known 1 + Overvecht 2
}

func TestAnalyze_OracleFailure(t *testing.T) {
	t.Parallel()

	analyzer := triage.NewAnalyzer(&testhelpers.FailingOracle{}, logger.NewNop(), nil)

	result, err := analyzer.Analyze(context.Background(), snapshotWith(t, nil), "overstroming", 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, triage.ErrOracleUnavailable)
	assert.ErrorIs(t, err, testhelpers.ErrOracleDown)
	assert.Equal(t, domain.TriageResult{}, result)
}

func TestAnalyze_OracleOutOfRangeScore(t *testing.T) {
	t.Parallel()

	for _, score := range []float64{-0.1, 1.5} {
		analyzer := triage.NewAnalyzer(&testhelpers.StubOracle{Default: score}, logger.NewNop(), nil)
		_, err := analyzer.Analyze(context.Background(), snapshotWith(t, nil), "overstroming", 0)
		assert.ErrorIs(t, err, triage.ErrOracleUnavailable)
	}
}

func TestAnalyze_NilOracle(t *testing.T) {
	t.Parallel()

	analyzer := triage.NewAnalyzer(nil, logger.NewNop(), nil)
	_, err := analyzer.Analyze(context.Background(), snapshotWith(t, nil), "overstroming", 0)
	assert.ErrorIs(t, err, triage.ErrOracleUnavailable)
}

func TestAnalyze_OracleCalledExactlyOnce(t *testing.T) {
	t.Parallel()

	oracle := &testhelpers.CountingOracle{Next: &testhelpers.StubOracle{Default: 0.3}}
	analyzer := triage.NewAnalyzer(oracle, logger.NewNop(), nil)

	_, err := analyzer.Analyze(context.Background(), snapshotWith(t, nil), "lamp kapot", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, oracle.Calls())
	assert.Equal(t, []string{"lamp kapot"}, oracle.Texts())
}

func TestAnalyze_Idempotent(t *testing.T) {
	t.Parallel()

	analyzer := triage.NewAnalyzer(&testhelpers.StubOracle{Default: 0.7}, logger.NewNop(), nil)
	snap := snapshotWith(t, nil)
	text := "Hangjongeren maken herrie bij de brug, het is gevaarlijk"

	first, err := analyzer.Analyze(context.Background(), snap, text, 1)
	require.NoError(t, err)
	second, err := analyzer.Analyze(context.Background(), snap, text, 1)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAnalyze_NilSnapshot(t *testing.T) {
	t.Parallel()

	analyzer := triage.NewAnalyzer(&testhelpers.StubOracle{}, logger.NewNop(), nil)
	_, err := analyzer.Analyze(context.Background(), nil, "overstroming", 0)

	assert.ErrorIs(t, err, triage.ErrInvalidConfiguration)
}

func TestAnalyze_WithTelemetry(t *testing.T) {
	t.Parallel()

	tp := telemetry.NewProvider(prometheus.NewRegistry())
	ok := triage.NewAnalyzer(&testhelpers.StubOracle{Default: 0.2}, logger.NewNop(), tp)
	failing := triage.NewAnalyzer(&testhelpers.FailingOracle{Err: errors.New("boom")}, logger.NewNop(), tp)
	snap := snapshotWith(t, nil)

	_, err := ok.Analyze(context.Background(), snap, "overstroming", 0)
	require.NoError(t, err)
	_, err = failing.Analyze(context.Background(), snap, "overstroming", 0)
	require.Error(t, err)
}
