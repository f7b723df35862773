package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// LogSink writes every envelope as a structured log record.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a LogSink. A nil logger uses slog.Default().
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger.With("component", "events")}
}

// Append implements EventSink.
func (s *LogSink) Append(ctx context.Context, envelope Envelope) error {
	s.logger.InfoContext(ctx, "event",
		"type", envelope.Type,
		"source", envelope.Source,
		"run_id", envelope.RunID,
		"idempotency_key", envelope.IdempotencyKey,
		"payload", string(envelope.Payload))
	return nil
}

// RedisStreamSink appends envelopes to a Redis stream. A per-key marker set
// with SET NX makes repeated appends of the same idempotency key no-ops.
type RedisStreamSink struct {
	client    redis.UniversalClient
	stream    string
	maxLen    int64
	dedupeTTL time.Duration
}

// RedisStreamOptions configures a RedisStreamSink.
type RedisStreamOptions struct {
	Stream string

	// MaxLen approximately caps the stream length; zero disables trimming.
	MaxLen int64

	// DedupeTTL is how long an idempotency marker is kept.
	DedupeTTL time.Duration
}

// NewRedisStreamSink creates a sink writing to opts.Stream.
func NewRedisStreamSink(client redis.UniversalClient, opts RedisStreamOptions) *RedisStreamSink {
	if opts.Stream == "" {
		opts.Stream = "gradebook:events"
	}
	if opts.DedupeTTL <= 0 {
		opts.DedupeTTL = 24 * time.Hour
	}
	return &RedisStreamSink{
		client:    client,
		stream:    opts.Stream,
		maxLen:    opts.MaxLen,
		dedupeTTL: opts.DedupeTTL,
	}
}

// Append implements EventSink.
func (s *RedisStreamSink) Append(ctx context.Context, envelope Envelope) error {
	if envelope.IdempotencyKey != "" {
		marker := s.stream + ":seen:" + envelope.IdempotencyKey
		fresh, err := s.client.SetNX(ctx, marker, 1, s.dedupeTTL).Result()
		if err != nil {
			return fmt.Errorf("redis dedupe marker: %w", err)
		}
		if !fresh {
			return nil
		}
	}

	body, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]any{
			"type":     envelope.Type,
			"run_id":   envelope.RunID,
			"envelope": string(body),
		},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}
	if err := s.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("redis xadd %s: %w", s.stream, err)
	}
	return nil
}
