package domain

import (
	"encoding/json"
	"testing"
	"testing/quick"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateIdempotencyKey(t *testing.T) {
	a := GenerateIdempotencyKey("run-1", EventTypeReportGenerated)
	b := GenerateIdempotencyKey("run-1", EventTypeReportGenerated)
	c := GenerateIdempotencyKey("run-1", EventTypeReportRejected)
	d := GenerateIdempotencyKey("run-2", EventTypeReportGenerated)

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a, d)
}

// Property: keys are deterministic 64-char lowercase hex for any run id.
func TestProperty_GenerateIdempotencyKey(t *testing.T) {
	property := func(runID string) bool {
		key := GenerateIdempotencyKey(runID, EventTypeReportGenerated)
		if key != GenerateIdempotencyKey(runID, EventTypeReportGenerated) || len(key) != 64 {
			return false
		}
		for _, r := range key {
			if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
				return false
			}
		}
		return true
	}
	if err := quick.Check(property, nil); err != nil {
		t.Errorf("Property violation: %v", err)
	}
}

func TestNewReportGeneratedEvent(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	payload := ReportGeneratedPayload{Output: "out.json", Students: 2, Courses: 3, Marks: 10}

	env, err := NewReportGeneratedEvent("wf-1", "run-1", "gradebook.test", payload, now)
	require.NoError(t, err)

	assert.Equal(t, EventTypeReportGenerated, env.EventType)
	assert.Equal(t, 1, env.Version)
	assert.Equal(t, now, env.OccurredAt)
	assert.Equal(t, "wf-1", env.WorkflowID)
	assert.Equal(t, "run-1", env.RunID)
	assert.Equal(t, GenerateIdempotencyKey("run-1", EventTypeReportGenerated), env.IdempotencyKey)

	var got ReportGeneratedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &got))
	assert.Equal(t, payload, got)
}

func TestNewReportRejectedEvent(t *testing.T) {
	now := time.Now().UTC()

	t.Run("valid", func(t *testing.T) {
		payload := ReportRejectedPayload{
			Output:     "out.json",
			Reason:     InvalidWeightsMessage,
			Mismatches: []CourseWeightSum{{CourseID: 1, Sum: 60_000_000}},
		}
		env, err := NewReportRejectedEvent("wf-1", "run-1", "gradebook.test", payload, now)
		require.NoError(t, err)
		assert.Equal(t, EventTypeReportRejected, env.EventType)
		assert.JSONEq(t,
			`{"output":"out.json","reason":"Invalid course weights","mismatches":[{"course_id":1,"sum":60}]}`,
			string(env.Payload))
	})

	t.Run("requires mismatches", func(t *testing.T) {
		payload := ReportRejectedPayload{Output: "out.json", Reason: InvalidWeightsMessage}
		_, err := NewReportRejectedEvent("wf-1", "run-1", "gradebook.test", payload, now)
		assert.Error(t, err)
	})

	t.Run("requires workflow id", func(t *testing.T) {
		payload := ReportRejectedPayload{
			Output:     "out.json",
			Reason:     InvalidWeightsMessage,
			Mismatches: []CourseWeightSum{{CourseID: 1, Sum: 60_000_000}},
		}
		_, err := NewReportRejectedEvent("", "run-1", "gradebook.test", payload, now)
		assert.Error(t, err)
	})
}
