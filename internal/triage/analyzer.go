// Package triage classifies citizen complaints, scores their priority and
// flags threatening language.
package triage

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jonesrussell/north-cloud/triage/internal/domain"
	"github.com/jonesrussell/north-cloud/triage/internal/logger"
	"github.com/jonesrussell/north-cloud/triage/internal/telemetry"
)

// Oracle estimates how toxic a text is, as a probability in [0, 1].
type Oracle interface {
	Score(ctx context.Context, text string) (float64, error)
}

// Analyzer runs the triage pipeline for single complaints. It keeps no state
// between calls.
type Analyzer struct {
	oracle    Oracle
	logger    logger.Logger
	telemetry *telemetry.Provider
}

// NewAnalyzer creates an Analyzer. tp may be nil.
func NewAnalyzer(oracle Oracle, log logger.Logger, tp *telemetry.Provider) *Analyzer {
	if log == nil {
		log = logger.NewNop()
	}
	return &Analyzer{oracle: oracle, logger: log, telemetry: tp}
}

// Analyze triages text against snap. Blank text skips the oracle and scores as
// an unknown complaint with zero toxicity. Otherwise the oracle is called
// exactly once; its failure yields ErrOracleUnavailable and no result.
func (a *Analyzer) Analyze(ctx context.Context, snap *Snapshot, text string, locationWeight int) (domain.TriageResult, error) {
	if snap == nil {
		return domain.TriageResult{}, &ConfigError{Field: "snapshot", Message: "is required"}
	}

	start := time.Now()
	if a.telemetry != nil {
		var span trace.Span
		ctx, span = a.telemetry.StartSpan(ctx, "triage.analyze",
			attribute.Int("text_length", len(text)),
			attribute.Int("location_weight", locationWeight),
		)
		defer span.End()
	}

	category, matched := snap.MatchCategory(text)

	toxicity := 0.0
	if strings.TrimSpace(text) == "" {
		a.logger.Debug("Blank complaint, skipping toxicity oracle")
	} else {
		score, err := a.scoreToxicity(ctx, text)
		if err != nil {
			if a.telemetry != nil {
				a.telemetry.RecordTriageFailure(ctx, "oracle_unavailable")
			}
			return domain.TriageResult{}, err
		}
		toxicity = score
	}

	b := snap.Explain(toxicity, category, matched, text, locationWeight)

	a.logger.Debug("Complaint triaged",
		logger.String("category", category),
		logger.Strings("matched_keywords", matched),
		logger.Float64("toxicity", toxicity),
		logger.Float64("base", b.Base),
		logger.Float64("toxicity_term", b.Toxicity),
		logger.Float64("high_priority_term", b.HighPriority),
		logger.Float64("known_category_term", b.KnownCategory),
		logger.Float64("urgent_term", b.Urgent),
		logger.Float64("location_term", b.Location),
		logger.Int("priority", b.Priority),
		logger.Bool("threat", b.IsThreat),
	)

	if a.telemetry != nil {
		a.telemetry.RecordTriage(ctx, category, b.Priority, b.IsThreat, time.Since(start))
	}

	return domain.TriageResult{
		Summary:         Summarize(category, matched),
		Category:        category,
		IsThreat:        b.IsThreat,
		MatchedKeywords: matched,
		ToxicityScore:   toxicity,
		PriorityScore:   b.Priority,
	}, nil
}

func (a *Analyzer) scoreToxicity(ctx context.Context, text string) (float64, error) {
	if a.oracle == nil {
		return 0, fmt.Errorf("%w: no oracle configured", ErrOracleUnavailable)
	}

	callStart := time.Now()
	var span trace.Span
	if a.telemetry != nil {
		ctx, span = a.telemetry.StartSpan(ctx, "triage.oracle")
		defer span.End()
	}

	score, err := a.oracle.Score(ctx, text)
	if err == nil && (math.IsNaN(score) || score < 0 || score > 1) {
		err = fmt.Errorf("score %v outside [0, 1]", score)
	}

	if a.telemetry != nil {
		a.telemetry.RecordOracleCall(ctx, time.Since(callStart), err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "oracle failed")
		}
	}

	if err != nil {
		a.logger.Warn("Toxicity oracle failed", logger.Error(err))
		return 0, fmt.Errorf("%w: %w", ErrOracleUnavailable, err)
	}
	return score, nil
}
