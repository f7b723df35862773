// Package aggregation implements the report generation Temporal activity.
// It drives the pipeline over the requested tables, writes the resulting
// document and emits ReportGenerated or ReportRejected events.
package aggregation

import (
	"context"
	"fmt"
	"time"

	"github.com/ahrav/go-gradebook/internal/domain"
	"github.com/ahrav/go-gradebook/pkg/activity"
	"github.com/ahrav/go-gradebook/pkg/events"
)

// Producer identifies this package as the source of emitted events.
const Producer = "gradebook.aggregation"

// EventEmitter handles event emission for report runs.
// Event emission is best-effort; failures are logged without affecting the run.
type EventEmitter struct {
	base activity.BaseActivities
}

// NewEventEmitter creates a new EventEmitter with the provided base activities.
func NewEventEmitter(base activity.BaseActivities) *EventEmitter {
	return &EventEmitter{base: base}
}

// EmitReportGenerated emits a ReportGenerated event for a written student report.
func (e *EventEmitter) EmitReportGenerated(
	ctx context.Context,
	wfCtx activity.WorkflowContext,
	payload domain.ReportGeneratedPayload,
	occurredAt time.Time,
) {
	domainEvent, err := domain.NewReportGeneratedEvent(
		wfCtx.WorkflowID, wfCtx.RunID, Producer, payload, occurredAt)
	if err != nil {
		activity.SafeLogError(ctx, "Failed to create ReportGenerated event",
			"run_id", wfCtx.RunID,
			"error", err)
		return
	}
	e.base.EmitEventSafe(ctx, convertDomainEventToEnvelope(domainEvent),
		fmt.Sprintf("ReportGenerated[%s]", wfCtx.RunID))
}

// EmitReportRejected emits a ReportRejected event for a run stopped by the
// weights gate.
func (e *EventEmitter) EmitReportRejected(
	ctx context.Context,
	wfCtx activity.WorkflowContext,
	payload domain.ReportRejectedPayload,
	occurredAt time.Time,
) {
	domainEvent, err := domain.NewReportRejectedEvent(
		wfCtx.WorkflowID, wfCtx.RunID, Producer, payload, occurredAt)
	if err != nil {
		activity.SafeLogError(ctx, "Failed to create ReportRejected event",
			"run_id", wfCtx.RunID,
			"error", err)
		return
	}
	e.base.EmitEventSafe(ctx, convertDomainEventToEnvelope(domainEvent),
		fmt.Sprintf("ReportRejected[%s]", wfCtx.RunID))
}

// convertDomainEventToEnvelope converts domain.EventEnvelope to events.Envelope.
func convertDomainEventToEnvelope(domainEvent domain.EventEnvelope) events.Envelope {
	return events.Envelope{
		ID:             domainEvent.IdempotencyKey, // Use idempotency key for deterministic IDs
		Type:           string(domainEvent.EventType),
		Source:         domainEvent.Producer,
		Version:        fmt.Sprintf("%d.0.0", domainEvent.Version),
		Timestamp:      domainEvent.OccurredAt,
		IdempotencyKey: domainEvent.IdempotencyKey,
		WorkflowID:     domainEvent.WorkflowID,
		RunID:          domainEvent.RunID,
		Payload:        domainEvent.Payload,
	}
}
