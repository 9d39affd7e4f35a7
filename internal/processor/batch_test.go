package processor_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/triage/internal/logger"
	"github.com/jonesrussell/north-cloud/triage/internal/processor"
	"github.com/jonesrussell/north-cloud/triage/internal/testhelpers"
	"github.com/jonesrussell/north-cloud/triage/internal/triage"
)

func defaultSnapshot(t *testing.T) *triage.Snapshot {
	t.Helper()
	snap, err := triage.NewSnapshot(triage.DefaultSettings(), logger.NewNop())
	require.NoError(t, err)
	return snap
}

func TestBatchProcessor_PreservesOrder(t *testing.T) {
	oracle := &testhelpers.CountingOracle{Next: &testhelpers.StubOracle{Default: 0.1}}
	bp := processor.NewBatchProcessor(triage.NewAnalyzer(oracle, logger.NewNop(), nil), 4, logger.NewNop(), nil)

	items := make([]processor.Item, 25)
	for i := range items {
		items[i] = processor.Item{Text: fmt.Sprintf("klacht %d over afval", i), Neighborhood: "Lombok"}
	}

	results := bp.Process(context.Background(), items, defaultSnapshot(t))
	require.Len(t, results, len(items))
	for i, r := range results {
		require.NoError(t, r.Error)
		assert.Equal(t, i, r.Index)
		assert.Equal(t, items[i], r.Item)
		assert.Equal(t, "Afvalbeheer", r.Result.Category)
	}
	assert.Equal(t, len(items), oracle.Calls())
}

func TestBatchProcessor_NeighborhoodWeightApplied(t *testing.T) {
	bp := processor.NewBatchProcessor(
		triage.NewAnalyzer(&testhelpers.StubOracle{Default: 0}, logger.NewNop(), nil), 2, logger.NewNop(), nil)

	results := bp.Process(context.Background(), []processor.Item{
		{Text: "Er ligt afval op straat", Neighborhood: "Overvecht"},
		{Text: "Er ligt afval op straat", Neighborhood: "Oog in Al"},
		{Text: "Er ligt afval op straat", Neighborhood: "Onbekende wijk"},
	}, defaultSnapshot(t))

	assert.Equal(t, 5, results[0].Result.PriorityScore)
	assert.Equal(t, 1, results[1].Result.PriorityScore)
	assert.Equal(t, 3, results[2].Result.PriorityScore)
}

func TestBatchProcessor_PerItemErrors(t *testing.T) {
	oracle := &failOn{text: "kapot"}
	bp := processor.NewBatchProcessor(triage.NewAnalyzer(oracle, logger.NewNop(), nil), 3, logger.NewNop(), nil)

	results := bp.Process(context.Background(), []processor.Item{
		{Text: "goed"}, {Text: "kapot"}, {Text: "ook goed"},
	}, defaultSnapshot(t))

	require.NoError(t, results[0].Error)
	require.ErrorIs(t, results[1].Error, triage.ErrOracleUnavailable)
	require.NoError(t, results[2].Error)
}

func TestBatchProcessor_CanceledContext(t *testing.T) {
	oracle := &testhelpers.CountingOracle{Next: &testhelpers.StubOracle{}}
	bp := processor.NewBatchProcessor(triage.NewAnalyzer(oracle, logger.NewNop(), nil), 2, logger.NewNop(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := bp.Process(ctx, []processor.Item{{Text: "a"}, {Text: "b"}}, defaultSnapshot(t))
	for _, r := range results {
		assert.ErrorIs(t, r.Error, context.Canceled)
	}
	assert.Zero(t, oracle.Calls())
}

func TestBatchProcessor_Empty(t *testing.T) {
	bp := processor.NewBatchProcessor(triage.NewAnalyzer(&testhelpers.StubOracle{}, nil, nil), 0, nil, nil)
	assert.Empty(t, bp.Process(context.Background(), nil, defaultSnapshot(t)))
}

type failOn struct{ text string }

func (f *failOn) Score(_ context.Context, text string) (float64, error) {
	if text == f.text {
		return 0, testhelpers.ErrOracleDown
	}
	return 0.2, nil
}
