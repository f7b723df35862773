package events

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEnvelope(key, typ string) Envelope {
	return Envelope{
		ID:             key,
		Type:           typ,
		Source:         "gradebook.test",
		Version:        "1.0.0",
		Timestamp:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		IdempotencyKey: key,
		WorkflowID:     "wf-1",
		RunID:          "run-1",
		Payload:        json.RawMessage(`{"output":"out.json"}`),
	}
}

func TestNoOpEventSink(t *testing.T) {
	sink := NewNoOpEventSink()
	assert.NoError(t, sink.Append(context.Background(), newEnvelope("k", "ReportGenerated")))
}

func TestMemorySink_Dedupes(t *testing.T) {
	sink := NewMemorySink()
	ctx := context.Background()

	require.NoError(t, sink.Append(ctx, newEnvelope("a", "ReportGenerated")))
	require.NoError(t, sink.Append(ctx, newEnvelope("a", "ReportGenerated")))
	require.NoError(t, sink.Append(ctx, newEnvelope("b", "ReportRejected")))

	got := sink.Events()
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].IdempotencyKey)
	assert.Equal(t, "b", got[1].IdempotencyKey)

	got[0].Type = "mutated"
	assert.Equal(t, "ReportGenerated", sink.Events()[0].Type, "Events returns a copy")
}

func TestMemorySink_Concurrent(t *testing.T) {
	sink := NewMemorySink()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = sink.Append(context.Background(), newEnvelope("same", "ReportGenerated"))
		}()
	}
	wg.Wait()
	assert.Len(t, sink.Events(), 1)
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogSink(slog.New(slog.NewJSONHandler(&buf, nil)))

	require.NoError(t, sink.Append(context.Background(), newEnvelope("k1", "ReportGenerated")))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "event", rec["msg"])
	assert.Equal(t, "events", rec["component"])
	assert.Equal(t, "ReportGenerated", rec["type"])
	assert.Equal(t, "k1", rec["idempotency_key"])
	assert.Equal(t, `{"output":"out.json"}`, rec["payload"])
}

func TestEnvelope_JSON(t *testing.T) {
	data, err := json.Marshal(newEnvelope("k", "ReportRejected"))
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "k", m["idempotency_key"])
	assert.Equal(t, "wf-1", m["workflow_id"])
	assert.Equal(t, map[string]any{"output": "out.json"}, m["payload"])
}
