// Package processor triages batches of complaints on a bounded worker pool.
package processor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonesrussell/north-cloud/triage/internal/domain"
	"github.com/jonesrussell/north-cloud/triage/internal/logger"
	"github.com/jonesrussell/north-cloud/triage/internal/telemetry"
	"github.com/jonesrussell/north-cloud/triage/internal/triage"
)

// DefaultConcurrency is used when NewBatchProcessor gets a non-positive value.
const DefaultConcurrency = 10

// Item is one complaint in a batch.
type Item struct {
	Text         string `json:"text"`
	Neighborhood string `json:"neighborhood"`
}

// ProcessResult is the outcome for the item at Index.
type ProcessResult struct {
	Index  int
	Item   Item
	Result domain.TriageResult
	Error  error
}

// BatchProcessor runs the analyzer over many complaints in parallel.
type BatchProcessor struct {
	analyzer    *triage.Analyzer
	concurrency int
	logger      logger.Logger
	telemetry   *telemetry.Provider
}

// NewBatchProcessor creates a new batch processor. tp may be nil.
func NewBatchProcessor(analyzer *triage.Analyzer, concurrency int, log logger.Logger, tp *telemetry.Provider) *BatchProcessor {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &BatchProcessor{
		analyzer:    analyzer,
		concurrency: concurrency,
		logger:      log,
		telemetry:   tp,
	}
}

type job struct {
	index int
	item  Item
}

// Process triages items against snap. Results come back in input order. A
// failed item carries its error and does not stop the rest; items left when
// ctx is canceled carry ctx.Err().
func (b *BatchProcessor) Process(ctx context.Context, items []Item, snap *triage.Snapshot) []ProcessResult {
	results := make([]ProcessResult, len(items))
	if len(items) == 0 {
		return results
	}

	batchID := uuid.New().String()
	log := b.logger.With(logger.String("batch_id", batchID))
	log.Info("Starting batch processing",
		logger.Int("batch_size", len(items)),
		logger.Int("concurrency", b.concurrency),
	)
	if b.telemetry != nil {
		b.telemetry.RecordBatchSize(len(items))
	}

	start := time.Now()
	jobs := make(chan job, len(items))
	for i, item := range items {
		jobs <- job{index: i, item: item}
	}
	close(jobs)

	workers := min(b.concurrency, len(items))
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results[j.index] = b.processItem(ctx, snap, j)
			}
		}()
	}
	wg.Wait()

	failed := 0
	for _, r := range results {
		if r.Error != nil {
			failed++
		}
	}
	duration := time.Since(start)
	log.Info("Batch processing complete",
		logger.Int("total", len(items)),
		logger.Int("success", len(items)-failed),
		logger.Int("errors", failed),
		logger.Duration("duration", duration),
	)

	return results
}

func (b *BatchProcessor) processItem(ctx context.Context, snap *triage.Snapshot, j job) ProcessResult {
	out := ProcessResult{Index: j.index, Item: j.item}
	if err := ctx.Err(); err != nil {
		out.Error = err
		return out
	}

	result, err := b.analyzer.Analyze(ctx, snap, j.item.Text, snap.NeighborhoodWeight(j.item.Neighborhood))
	if err != nil {
		out.Error = fmt.Errorf("item %d: %w", j.index, err)
		b.logger.Warn("Failed to triage complaint", logger.Int("index", j.index), logger.Error(err))
		return out
	}
	out.Result = result
	return out
}
