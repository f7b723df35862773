package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents the type of event emitted by the system.
type EventType string

const (
	// EventTypeReportGenerated is emitted once a student report has been written.
	EventTypeReportGenerated EventType = "ReportGenerated"

	// EventTypeReportRejected is emitted when the weights gate produced the
	// error report instead of a student report.
	EventTypeReportRejected EventType = "ReportRejected"
)

// EventEnvelope wraps report events with consistent metadata for downstream
// consumers. Payload schemas vary by EventType and Version.
type EventEnvelope struct {
	// IdempotencyKey ensures events are processed exactly once during retries.
	IdempotencyKey string `json:"idempotency_key" validate:"required"`

	EventType EventType `json:"event_type" validate:"required"`

	// Version enables event schema evolution.
	Version int `json:"version" validate:"required,min=1"`

	OccurredAt time.Time `json:"occurred_at" validate:"required"`

	// WorkflowID is the Temporal workflow that ran the report, or the CLI
	// run id when the pipeline ran outside a worker.
	WorkflowID string `json:"workflow_id" validate:"required"`

	RunID string `json:"run_id" validate:"required"`

	Payload json.RawMessage `json:"payload" validate:"required"`

	// Producer identifies the component that emitted this event.
	Producer string `json:"producer" validate:"required"`
}

// Validate checks if the event envelope meets all requirements.
func (e *EventEnvelope) Validate() error {
	return validate.Struct(e)
}

// ReportGeneratedPayload contains the data for ReportGenerated events.
type ReportGeneratedPayload struct {
	Output   string `json:"output" validate:"required"`
	Students int    `json:"students" validate:"min=0"`
	Courses  int    `json:"courses" validate:"min=0"`
	Marks    int    `json:"marks" validate:"min=0"`
}

// Validate checks if the payload meets all requirements.
func (p *ReportGeneratedPayload) Validate() error { return validate.Struct(p) }

// ReportRejectedPayload contains the data for ReportRejected events.
type ReportRejectedPayload struct {
	Output     string            `json:"output" validate:"required"`
	Reason     string            `json:"reason" validate:"required"`
	Mismatches []CourseWeightSum `json:"mismatches" validate:"required,min=1"`
}

// Validate checks if the payload meets all requirements.
func (p *ReportRejectedPayload) Validate() error { return validate.Struct(p) }

// GenerateIdempotencyKey creates a deterministic key for event deduplication:
// H(run_id || ":" || event_type). A replayed run emits identical keys.
func GenerateIdempotencyKey(runID string, eventType EventType) string {
	hasher := sha256.New()
	hasher.Write([]byte(runID + ":" + string(eventType)))
	return hex.EncodeToString(hasher.Sum(nil))
}

// NewEventEnvelope creates an EventEnvelope with required fields populated.
func NewEventEnvelope(
	eventType EventType,
	workflowID, runID string,
	payload json.RawMessage,
	producer string,
	occurredAt time.Time,
) EventEnvelope {
	return EventEnvelope{
		IdempotencyKey: GenerateIdempotencyKey(runID, eventType),
		EventType:      eventType,
		Version:        1,
		OccurredAt:     occurredAt,
		WorkflowID:     workflowID,
		RunID:          runID,
		Payload:        payload,
		Producer:       producer,
	}
}

// NewReportGeneratedEvent creates a ReportGenerated event envelope.
func NewReportGeneratedEvent(
	workflowID, runID, producer string,
	payload ReportGeneratedPayload,
	occurredAt time.Time,
) (EventEnvelope, error) {
	if err := payload.Validate(); err != nil {
		return EventEnvelope{}, fmt.Errorf("invalid report generated payload: %w", err)
	}
	return buildEnvelope(EventTypeReportGenerated, workflowID, runID, producer, payload, occurredAt)
}

// NewReportRejectedEvent creates a ReportRejected event envelope.
func NewReportRejectedEvent(
	workflowID, runID, producer string,
	payload ReportRejectedPayload,
	occurredAt time.Time,
) (EventEnvelope, error) {
	if err := payload.Validate(); err != nil {
		return EventEnvelope{}, fmt.Errorf("invalid report rejected payload: %w", err)
	}
	return buildEnvelope(EventTypeReportRejected, workflowID, runID, producer, payload, occurredAt)
}

func buildEnvelope(
	eventType EventType,
	workflowID, runID, producer string,
	payload any,
	occurredAt time.Time,
) (EventEnvelope, error) {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return EventEnvelope{}, fmt.Errorf("failed to marshal payload: %w", err)
	}

	envelope := NewEventEnvelope(eventType, workflowID, runID, payloadJSON, producer, occurredAt)
	if err := envelope.Validate(); err != nil {
		return EventEnvelope{}, fmt.Errorf("invalid event envelope: %w", err)
	}
	return envelope, nil
}
