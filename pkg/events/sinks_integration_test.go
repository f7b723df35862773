//go:build integration
// +build integration

package events_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	redisContainer "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/ahrav/go-gradebook/pkg/events"
)

// setupRedisContainer starts a Redis container and returns a connected client.
// The container is terminated when the test completes.
func setupRedisContainer(t *testing.T) *redis.Client {
	ctx := context.Background()

	container, err := redisContainer.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Redis container: %v", err)
		}
	})

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })

	_, err = client.Ping(ctx).Result()
	require.NoError(t, err)
	return client
}

func TestRedisStreamSink_RealRedis(t *testing.T) {
	client := setupRedisContainer(t)
	ctx := context.Background()

	sink := events.NewRedisStreamSink(client, events.RedisStreamOptions{
		Stream:    "gradebook:test",
		DedupeTTL: time.Minute,
	})

	env := events.Envelope{
		ID:             "key-1",
		Type:           "ReportGenerated",
		Source:         "gradebook.test",
		Version:        "1.0.0",
		Timestamp:      time.Now().UTC(),
		IdempotencyKey: "key-1",
		WorkflowID:     "wf-1",
		RunID:          "run-1",
		Payload:        json.RawMessage(`{"students":2}`),
	}

	require.NoError(t, sink.Append(ctx, env))
	require.NoError(t, sink.Append(ctx, env), "repeated append is a no-op")

	msgs, err := client.XRange(ctx, "gradebook:test", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "ReportGenerated", msgs[0].Values["type"])
	assert.Equal(t, "run-1", msgs[0].Values["run_id"])

	var got events.Envelope
	require.NoError(t, json.Unmarshal([]byte(msgs[0].Values["envelope"].(string)), &got))
	assert.Equal(t, "key-1", got.IdempotencyKey)
	assert.JSONEq(t, `{"students":2}`, string(got.Payload))

	ttl, err := client.TTL(ctx, "gradebook:test:seen:key-1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestRedisStreamSink_MaxLen(t *testing.T) {
	client := setupRedisContainer(t)
	ctx := context.Background()

	sink := events.NewRedisStreamSink(client, events.RedisStreamOptions{Stream: "gradebook:capped", MaxLen: 5})
	for i := 0; i < 20; i++ {
		env := events.Envelope{Type: "ReportGenerated", RunID: "run", Payload: json.RawMessage(`{}`)}
		require.NoError(t, sink.Append(ctx, env))
	}

	n, err := client.XLen(ctx, "gradebook:capped").Result()
	require.NoError(t, err)
	assert.LessOrEqual(t, n, int64(20))
	assert.GreaterOrEqual(t, n, int64(5))
}
