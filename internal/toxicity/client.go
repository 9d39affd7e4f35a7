// Package toxicity provides toxicity oracles: an HTTP client for the model
// sidecar and a fixed-score oracle for offline use.
package toxicity

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/jonesrussell/north-cloud/triage/internal/circuitbreaker"
	"github.com/jonesrussell/north-cloud/triage/internal/logger"
	"github.com/jonesrussell/north-cloud/triage/internal/mltransport"
	"github.com/jonesrussell/north-cloud/triage/internal/telemetry"
)

// ErrUnavailable indicates the toxicity model could not produce a score.
var ErrUnavailable = errors.New("toxicity service unavailable")

// Oracle estimates how toxic a text is, as a probability in [0, 1].
type Oracle interface {
	Score(ctx context.Context, text string) (float64, error)
}

// Config configures the sidecar client.
type Config struct {
	URL       string                `env:"TOXICITY_URL"        yaml:"url"`
	Timeout   time.Duration         `env:"TOXICITY_TIMEOUT"    yaml:"timeout"`
	RateLimit float64               `env:"TOXICITY_RATE_LIMIT" yaml:"rate_limit"` // requests per second, zero is unlimited
	Burst     int                   `env:"TOXICITY_BURST"      yaml:"burst"`
	Breaker   circuitbreaker.Config `yaml:"breaker"`
}

const (
	defaultURL   = "http://localhost:8090"
	defaultBurst = 1
)

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.URL == "" {
		c.URL = defaultURL
	}
	if c.Timeout <= 0 {
		c.Timeout = mltransport.DefaultTimeout
	}
	if c.Burst <= 0 {
		c.Burst = defaultBurst
	}
	c.Breaker.SetDefaults()
}

// Client scores text against the model sidecar. It is safe for concurrent
// use; the sidecar serializes inference on its side.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *circuitbreaker.Breaker
	logger     logger.Logger
}

// NewClient creates a Client. log and tp may be nil.
func NewClient(cfg Config, log logger.Logger, tp *telemetry.Provider) *Client {
	cfg.SetDefaults()
	if log == nil {
		log = logger.NewNop()
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	breakerCfg := cfg.Breaker
	userHook := breakerCfg.OnStateChange
	breakerCfg.OnStateChange = func(from, to circuitbreaker.State) {
		log.Warn("Toxicity circuit breaker state changed",
			logger.String("from", from.String()),
			logger.String("to", to.String()),
		)
		if tp != nil {
			tp.SetBreakerState(int(to))
		}
		if userHook != nil {
			userHook(from, to)
		}
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		httpClient: mltransport.NewHTTPClient(cfg.Timeout),
		limiter:    rate.NewLimiter(limit, cfg.Burst),
		breaker:    circuitbreaker.New(breakerCfg),
		logger:     log,
	}
}

// Score returns the toxicity probability of text. Every failure wraps
// ErrUnavailable.
func (c *Client) Score(ctx context.Context, text string) (float64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("%w: rate limit: %w", ErrUnavailable, err)
	}

	var score float64
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		resp, err := mltransport.DoScore(ctx, c.httpClient, c.baseURL, &mltransport.ScoreRequest{Text: text})
		if err != nil {
			return err
		}
		p := *resp.Toxicity
		if math.IsNaN(p) || p < 0 || p > 1 {
			return fmt.Errorf("toxicity %v outside [0, 1]", p)
		}
		score = p
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return score, nil
}

// Health checks that the sidecar answers its health endpoint.
func (c *Client) Health(ctx context.Context) error {
	reachable, latency, version, err := mltransport.DoHealth(ctx, c.httpClient, c.baseURL)
	if err != nil {
		if !reachable {
			return fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return err
	}
	c.logger.Debug("Toxicity service healthy",
		logger.Int64("latency_ms", latency),
		logger.String("model_version", version),
	)
	return nil
}

// BreakerState reports the circuit breaker state.
func (c *Client) BreakerState() circuitbreaker.State {
	return c.breaker.State()
}

// Static is an oracle that always returns the same score.
type Static struct {
	Value float64
}

// Score returns s.Value.
func (s Static) Score(context.Context, string) (float64, error) {
	return s.Value, nil
}
