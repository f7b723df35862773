package aggregation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"

	"github.com/ahrav/go-gradebook/internal/domain"
	"github.com/ahrav/go-gradebook/internal/emit"
	"github.com/ahrav/go-gradebook/internal/pipeline"
	"github.com/ahrav/go-gradebook/internal/table"
	"github.com/ahrav/go-gradebook/pkg/activity"
)

// GenerateReportActivity is the registered name of Activities.GenerateReport.
const GenerateReportActivity = "GenerateReport"

// Activities runs report generation as a Temporal activity. The same
// method is called directly by the CLI, where the workflow context falls
// back to a local run.
type Activities struct {
	activity.BaseActivities
	events   *EventEmitter
	opener   *table.Opener
	emitter  *emit.Emitter
	pipeline *pipeline.Pipeline
	now      func() time.Time
}

// NewActivities creates report activities with the provided dependencies.
func NewActivities(
	base activity.BaseActivities,
	opener *table.Opener,
	emitter *emit.Emitter,
	pipe *pipeline.Pipeline,
) *Activities {
	return &Activities{
		BaseActivities: base,
		events:         NewEventEmitter(base),
		opener:         opener,
		emitter:        emitter,
		pipeline:       pipe,
		now:            time.Now,
	}
}

// GenerateReport loads the four tables named by req, runs the pipeline and
// writes the resulting document to req.Output.
//
// An invalid weight distribution is not an error: the error report is
// written and the response carries ReportStatusInvalidWeights. Input
// failures (validation, references, degenerate students) are returned as
// non-retryable application errors typed by their domain.ErrorKind.
// Environment failures (I/O, network) stay retryable.
func (a *Activities) GenerateReport(
	ctx context.Context,
	req domain.ReportRequest,
) (*domain.ReportResponse, error) {
	if err := req.Validate(); err != nil {
		err = fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
		return nil, nonRetryable(string(domain.ErrorKindRequest), err, "invalid report request")
	}

	wfCtx := a.GetWorkflowContext(ctx)
	runID := req.RunID
	if runID == "" {
		runID = wfCtx.RunID
	}

	activity.SafeLog(ctx, "Starting GenerateReport activity",
		"workflow_id", wfCtx.WorkflowID,
		"activity_id", wfCtx.ActivityID,
		"run_id", runID,
		"output", req.Output)

	res, err := a.pipeline.Run(ctx, a.opener.ForRequest(req))
	if err != nil {
		activity.SafeLogError(ctx, "GenerateReport failed",
			"stage", res.Stage,
			"error", err)
		return nil, classify(err)
	}

	if err := a.emitter.Emit(ctx, res.Report, req.Output); err != nil {
		return nil, classify(fmt.Errorf("emit report: %w", err))
	}

	out := &domain.ReportResponse{
		RunID:      runID,
		Status:     res.Status,
		Output:     req.Output,
		Students:   len(res.Report.Students),
		Mismatches: res.Stats.Mismatches,
	}
	if err := out.Validate(); err != nil {
		err = fmt.Errorf("%w: response: %w", domain.ErrInvariant, err)
		return nil, nonRetryable(string(domain.ErrorKindInvariant), err, "invalid report response")
	}

	wfCtx.RunID = runID
	switch res.Status {
	case domain.ReportStatusInvalidWeights:
		a.events.EmitReportRejected(ctx, wfCtx, domain.ReportRejectedPayload{
			Output:     req.Output,
			Reason:     domain.InvalidWeightsMessage,
			Mismatches: res.Stats.Mismatches,
		}, a.now())
	default:
		a.events.EmitReportGenerated(ctx, wfCtx, domain.ReportGeneratedPayload{
			Output:   req.Output,
			Students: len(res.Report.Students),
			Courses:  res.Stats.Rows[domain.TableCourses],
			Marks:    res.Stats.JoinedMarks,
		}, a.now())
	}

	activity.SafeLog(ctx, "GenerateReport completed",
		"status", out.Status,
		"students", out.Students,
		"stage", res.Stage)

	return out, nil
}

// classify converts a pipeline error into a Temporal application error.
// Context cancellation is returned unchanged.
func classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	kind := domain.Classify(err)
	if kind == domain.ErrorKindEnvironment {
		return temporal.NewApplicationErrorWithCause(err.Error(), string(kind), err)
	}
	return nonRetryable(string(kind), err, err.Error())
}

// Error helpers - wrap errors as Temporal application errors

func nonRetryable(tag string, cause error, msg string) error {
	return temporal.NewNonRetryableApplicationError(msg, tag, cause)
}
