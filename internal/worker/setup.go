package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/ahrav/go-gradebook/internal/aggregation"
	"github.com/ahrav/go-gradebook/internal/config"
	"github.com/ahrav/go-gradebook/internal/emit"
	"github.com/ahrav/go-gradebook/internal/pipeline"
	"github.com/ahrav/go-gradebook/internal/table"
	"github.com/ahrav/go-gradebook/pkg/activity"
	"github.com/ahrav/go-gradebook/pkg/events"
)

// InitializeEventSink builds the sink selected by cfg.Events.Sink. The
// returned close function releases any connection and is never nil.
func InitializeEventSink(ctx context.Context, cfg *config.Config, logger *slog.Logger) (events.EventSink, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Events.Sink {
	case config.SinkLog:
		return events.NewLogSink(logger), noop, nil
	case config.SinkRedis:
		rc := cfg.Events.Redis
		client := redis.NewClient(&redis.Options{
			Addr:     rc.Addr,
			Password: rc.Password,
			DB:       rc.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, noop, fmt.Errorf("connect redis %s: %w", rc.Addr, err)
		}
		sink := events.NewRedisStreamSink(client, events.RedisStreamOptions{
			Stream:    rc.Stream,
			MaxLen:    rc.MaxLen,
			DedupeTTL: rc.DedupeTTL(),
		})
		return sink, client.Close, nil
	default:
		return events.NewNoOpEventSink(), noop, nil
	}
}

// InitializeActivities wires the table opener, report emitter and pipeline
// from cfg into report activities that emit to sink.
func InitializeActivities(cfg *config.Config, sink events.EventSink, logger *slog.Logger) *aggregation.Activities {
	if logger == nil {
		logger = slog.Default()
	}

	opener := table.NewOpener(cfg.TableOptions(),
		table.WithS3Region(cfg.Input.S3Region),
		table.WithLogger(logger.With("component", "table")))

	emitter := emit.New(
		emit.WithIndent(cfg.Output.Indent),
		emit.WithS3Region(cfg.Input.S3Region),
		emit.WithLogger(logger.With("component", "emit")))

	pipe := pipeline.New(pipeline.WithLogger(logger.With("component", "pipeline")))

	return aggregation.NewActivities(activity.NewBaseActivities(sink), opener, emitter, pipe)
}
