// Package circuitbreaker guards calls to the toxicity model so a dead sidecar
// fails fast instead of stalling every complaint.
package circuitbreaker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State of the breaker.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Config configures a Breaker. FailureThreshold consecutive failures open the
// circuit; after Timeout it lets trial calls through and SuccessThreshold trial
// successes close it again. OnStateChange, when set, is called under the
// breaker lock on every transition.
type Config struct {
	FailureThreshold int                  `env:"TOXICITY_BREAKER_FAILURES"  yaml:"failure_threshold"`
	SuccessThreshold int                  `env:"TOXICITY_BREAKER_SUCCESSES" yaml:"success_threshold"`
	Timeout          time.Duration        `env:"TOXICITY_BREAKER_TIMEOUT"   yaml:"timeout"`
	OnStateChange    func(from, to State) `yaml:"-"`
}

const (
	defaultFailureThreshold = 5
	defaultSuccessThreshold = 2
	defaultTimeout          = 30 * time.Second
)

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = defaultFailureThreshold
	}
	if c.SuccessThreshold <= 0 {
		c.SuccessThreshold = defaultSuccessThreshold
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

// Breaker is a consecutive-failure circuit breaker.
type Breaker struct {
	mu        sync.Mutex
	cfg       Config
	state     State
	failures  int
	successes int
	openedAt  time.Time
	now       func() time.Time
}

// New creates a closed breaker.
func New(cfg Config) *Breaker {
	cfg.SetDefaults()
	return &Breaker{cfg: cfg, state: StateClosed, now: time.Now}
}

// Execute runs fn unless the circuit is open. Context cancellation by the
// caller is not counted as a failure of the guarded service.
func (b *Breaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := b.before(); err != nil {
		return err
	}

	err := fn(ctx)
	if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return err
	}
	b.after(err)
	return err
}

func (b *Breaker) before() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != StateOpen {
		return nil
	}

	elapsed := b.now().Sub(b.openedAt)
	if elapsed < b.cfg.Timeout {
		return fmt.Errorf("%w: retry in %v", ErrCircuitOpen, b.cfg.Timeout-elapsed)
	}
	b.transition(StateHalfOpen)
	return nil
}

func (b *Breaker) after(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		b.failures++
		switch b.state {
		case StateHalfOpen:
			b.transition(StateOpen)
		case StateClosed:
			if b.failures >= b.cfg.FailureThreshold {
				b.transition(StateOpen)
			}
		case StateOpen:
		}
		return
	}

	b.failures = 0
	if b.state == StateHalfOpen {
		b.successes++
		if b.successes >= b.cfg.SuccessThreshold {
			b.transition(StateClosed)
		}
	}
}

// transition must be called with b.mu held.
func (b *Breaker) transition(to State) {
	if b.state == to {
		return
	}
	from := b.state
	b.state = to
	b.failures = 0
	b.successes = 0
	if to == StateOpen {
		b.openedAt = b.now()
	}
	if b.cfg.OnStateChange != nil {
		b.cfg.OnStateChange(from, to)
	}
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Reset closes the circuit.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.transition(StateClosed)
}
