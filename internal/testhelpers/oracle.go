// Package testhelpers provides toxicity oracles with scripted behavior for tests.
package testhelpers

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrOracleDown is the error returned by FailingOracle.
var ErrOracleDown = errors.New("toxicity model unreachable")

// Oracle is the toxicity scoring contract the helpers implement.
type Oracle interface {
	Score(ctx context.Context, text string) (float64, error)
}

// StubOracle returns a fixed score, or a per-text score when one is set.
type StubOracle struct {
	Default float64
	ByText  map[string]float64
}

// Score implements the oracle contract.
func (s *StubOracle) Score(_ context.Context, text string) (float64, error) {
	if v, ok := s.ByText[text]; ok {
		return v, nil
	}
	return s.Default, nil
}

// FailingOracle always fails.
type FailingOracle struct {
	Err error
}

// Score implements the oracle contract.
func (f *FailingOracle) Score(context.Context, string) (float64, error) {
	if f.Err != nil {
		return 0, f.Err
	}
	return 0, ErrOracleDown
}

// CountingOracle wraps another oracle and counts calls and texts seen.
type CountingOracle struct {
	Next  Oracle
	calls atomic.Int64
	mu    sync.Mutex
	texts []string
}

// Score implements the oracle contract.
func (c *CountingOracle) Score(ctx context.Context, text string) (float64, error) {
	c.calls.Add(1)
	c.mu.Lock()
	c.texts = append(c.texts, text)
	c.mu.Unlock()
	return c.Next.Score(ctx, text)
}

// Calls returns the number of Score calls.
func (c *CountingOracle) Calls() int {
	return int(c.calls.Load())
}

// Texts returns the texts scored so far, in call order.
func (c *CountingOracle) Texts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.texts...)
}
