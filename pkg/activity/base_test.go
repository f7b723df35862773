package activity

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-gradebook/pkg/events"
)

type failingSink struct {
	calls atomic.Int32
}

func (f *failingSink) Append(context.Context, events.Envelope) error {
	f.calls.Add(1)
	return errors.New("sink down")
}

func TestGetWorkflowContext_OutsideActivity(t *testing.T) {
	base := NewBaseActivities(nil)
	wfCtx := base.GetWorkflowContext(context.Background())

	assert.Equal(t, LocalWorkflowID, wfCtx.WorkflowID)
	_, err := uuid.Parse(wfCtx.RunID)
	assert.NoError(t, err, "local runs get a uuid run id")
	assert.NotEqual(t, wfCtx.RunID, base.GetWorkflowContext(context.Background()).RunID)
}

func TestEmitEventSafe(t *testing.T) {
	env := events.Envelope{Type: "ReportGenerated", IdempotencyKey: "k"}

	t.Run("delivers to sink", func(t *testing.T) {
		sink := events.NewMemorySink()
		base := NewBaseActivities(sink)
		base.EmitEventSafe(context.Background(), env, "test")
		require.Len(t, sink.Events(), 1)
	})

	t.Run("nil sink is a no-op", func(t *testing.T) {
		base := NewBaseActivities(nil)
		assert.NotPanics(t, func() { base.EmitEventSafe(context.Background(), env, "test") })
	})

	t.Run("failures are retried then swallowed", func(t *testing.T) {
		sink := &failingSink{}
		base := NewBaseActivities(sink)
		base.EmitEventSafe(context.Background(), env, "test")
		assert.Equal(t, int32(2), sink.calls.Load())
	})

	t.Run("cancelled context stops retrying", func(t *testing.T) {
		sink := &failingSink{}
		base := NewBaseActivities(sink)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		base.EmitEventSafe(ctx, env, "test")
		assert.Equal(t, int32(1), sink.calls.Load())
	})
}

func TestSafeLog_OutsideActivity(t *testing.T) {
	assert.NotPanics(t, func() {
		SafeLog(context.Background(), "hello", "k", "v")
		SafeLogError(context.Background(), "oops", "k", "v")
	})
}
