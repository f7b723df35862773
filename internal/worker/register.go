// Package worker exposes helpers to register workflows/activities with a Temporal worker.
package worker

import (
	sdkactivity "go.temporal.io/sdk/activity"
	sdkworker "go.temporal.io/sdk/worker"

	"github.com/ahrav/go-gradebook/internal/aggregation"
	"github.com/ahrav/go-gradebook/internal/workflow"
)

// RegisterAll registers the report workflow and activity with the Temporal
// worker. It must be called once during worker initialization, before the
// worker is started.
func RegisterAll(w sdkworker.Registry, acts *aggregation.Activities) {
	w.RegisterWorkflow(workflow.GradeReportWorkflow)
	w.RegisterActivityWithOptions(acts.GenerateReport, sdkactivity.RegisterOptions{
		Name: aggregation.GenerateReportActivity,
	})
}
