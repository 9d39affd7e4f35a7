// Package events publishes triage outcomes to a Redis stream for downstream
// case-handling systems.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/north-cloud/triage/internal/domain"
	"github.com/jonesrussell/north-cloud/triage/internal/logger"
)

// DefaultStream is the stream triage events are appended to.
const DefaultStream = "triage:results"

// asyncPublishTimeout is the context timeout for async publish operations.
const asyncPublishTimeout = 5 * time.Second

// connectionTimeout bounds the startup ping.
const connectionTimeout = 5 * time.Second

// ErrEmptyAddress is returned when Redis is enabled without an address.
var ErrEmptyAddress = errors.New("redis address is required")

// Config holds the Redis event sink settings.
type Config struct {
	Enabled  bool   `env:"REDIS_ENABLED"  yaml:"enabled"`
	Address  string `env:"REDIS_ADDRESS"  yaml:"address"`
	Password string `env:"REDIS_PASSWORD" yaml:"password"`
	DB       int    `env:"REDIS_DB"       yaml:"db"`
	Stream   string `env:"REDIS_STREAM"   yaml:"stream"`
}

// TriageEvent is the payload published for every triaged complaint.
type TriageEvent struct {
	EventID      uuid.UUID           `json:"event_id"`
	EntryID      string              `json:"entry_id"`
	Complaint    string              `json:"complaint"`
	Neighborhood string              `json:"neighborhood"`
	Retained     bool                `json:"retained"`
	Result       domain.TriageResult `json:"result"`
	Timestamp    time.Time           `json:"timestamp"`
}

// Publisher sends triage events somewhere.
type Publisher interface {
	Publish(ctx context.Context, event TriageEvent) error
	PublishAsync(event TriageEvent)
}

// NewClient connects to Redis and verifies the connection.
func NewClient(cfg Config) (*redis.Client, error) {
	if cfg.Address == "" {
		return nil, ErrEmptyAddress
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// RedisPublisher appends events to a Redis stream. A nil *RedisPublisher is a
// valid no-op publisher.
type RedisPublisher struct {
	client *redis.Client
	stream string
	log    logger.Logger
}

// NewRedisPublisher creates a publisher. Returns nil if client is nil.
func NewRedisPublisher(client *redis.Client, stream string, log logger.Logger) *RedisPublisher {
	if client == nil {
		return nil
	}
	if stream == "" {
		stream = DefaultStream
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &RedisPublisher{client: client, stream: stream, log: log}
}

// Publish appends event to the stream.
func (p *RedisPublisher) Publish(ctx context.Context, event TriageEvent) error {
	if p == nil || p.client == nil {
		return nil
	}

	if event.EventID == uuid.Nil {
		event.EventID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	result := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"event":    string(payload),
			"category": event.Result.Category,
			"priority": event.Result.PriorityScore,
		},
	})
	if publishErr := result.Err(); publishErr != nil {
		p.log.Error("Failed to publish triage event",
			logger.String("entry_id", event.EntryID),
			logger.Error(publishErr),
		)
		return fmt.Errorf("publish to stream: %w", publishErr)
	}

	p.log.Debug("Published triage event",
		logger.String("entry_id", event.EntryID),
		logger.String("stream_id", result.Val()),
	)
	return nil
}

// PublishAsync publishes in the background. Errors are logged.
func (p *RedisPublisher) PublishAsync(event TriageEvent) {
	if p == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), asyncPublishTimeout)
		defer cancel()

		if err := p.Publish(ctx, event); err != nil {
			p.log.Warn("Async publish failed", logger.String("entry_id", event.EntryID), logger.Error(err))
		}
	}()
}
