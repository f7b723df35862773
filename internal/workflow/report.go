package workflow

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/ahrav/go-gradebook/internal/aggregation"
	"github.com/ahrav/go-gradebook/internal/domain"
)

// TaskQueue is the default task queue served by gradebook workers.
const TaskQueue = "gradebook-reports"

// ActivityTimeout bounds a single GenerateReport attempt unless the request
// carries its own timeout.
const ActivityTimeout = 10 * time.Minute

// GradeReportWorkflow validates req and runs the GenerateReport activity.
// Input errors are non-retryable; environment errors are retried a few times.
// Report emission replaces the output atomically, so a retried attempt never
// leaves a mixed document behind.
func GradeReportWorkflow(
	ctx workflow.Context,
	req domain.ReportRequest,
) (*domain.ReportResponse, error) {
	// Version gate enables safe evolution and backward compatibility.
	const currentVersion = 1
	_ = workflow.GetVersion(ctx, "gradereport.v", workflow.DefaultVersion, currentVersion)

	if err := req.Validate(); err != nil {
		return nil, temporal.NewNonRetryableApplicationError(
			"invalid report request",
			string(domain.ErrorKindRequest),
			fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err),
		)
	}

	timeout := ActivityTimeout
	if req.TimeoutSeconds > 0 {
		timeout = time.Duration(req.TimeoutSeconds) * time.Second
	}

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: timeout,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	var resp domain.ReportResponse
	if err := workflow.ExecuteActivity(ctx, aggregation.GenerateReportActivity, req).Get(ctx, &resp); err != nil {
		return nil, err
	}

	workflow.GetLogger(ctx).Info("grade report finished",
		"status", resp.Status,
		"students", resp.Students,
		"output", resp.Output)
	return &resp, nil
}
