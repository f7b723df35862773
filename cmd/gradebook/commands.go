package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"
	"go.temporal.io/sdk/client"
	tlog "go.temporal.io/sdk/log"
	sdkworker "go.temporal.io/sdk/worker"

	"github.com/ahrav/go-gradebook/internal/config"
	"github.com/ahrav/go-gradebook/internal/domain"
	"github.com/ahrav/go-gradebook/internal/pipeline"
	"github.com/ahrav/go-gradebook/internal/table"
	"github.com/ahrav/go-gradebook/internal/worker"
	"github.com/ahrav/go-gradebook/internal/workflow"
)

// cliEnv carries the state shared by all commands of one invocation.
type cliEnv struct {
	cfg    *config.Config
	logger *slog.Logger
	out    printer
	stdout io.Writer
	stderr io.Writer
}

func (e *cliEnv) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return ctx, err
	}
	if v := cmd.String("log-level"); v != "" {
		cfg.Log.Level = v
	}
	if v := cmd.String("log-format"); v != "" {
		cfg.Log.Format = v
	}
	if err := cfg.Validate(); err != nil {
		return ctx, err
	}

	e.cfg = cfg
	e.logger = newLogger(cfg.Log, e.stderr)
	slog.SetDefault(e.logger)
	return ctx, nil
}

// requestFromArgs builds a report request from positional arguments.
func requestFromArgs(cmd *cli.Command, withOutput bool) (domain.ReportRequest, error) {
	want := 4
	usage := "<courses> <students> <tests> <marks>"
	if withOutput {
		want = 5
		usage += " <output>"
	}
	args := cmd.Args()
	if args.Len() != want {
		return domain.ReportRequest{}, usageErrorf("%s expects %d arguments %s, got %d",
			cmd.Name, want, usage, args.Len())
	}

	req := domain.ReportRequest{
		Courses:  args.Get(0),
		Students: args.Get(1),
		Tests:    args.Get(2),
		Marks:    args.Get(3),
		RunID:    uuid.NewString(),
	}
	if withOutput {
		req.Output = args.Get(4)
	}
	return req, nil
}

func (e *cliEnv) reportAction(ctx context.Context, cmd *cli.Command) error {
	req, err := requestFromArgs(cmd, true)
	if err != nil {
		return err
	}
	if cmd.IsSet("indent") {
		e.cfg.Output.Indent = cmd.String("indent")
	}

	sink, closeSink, err := worker.InitializeEventSink(ctx, e.cfg, e.logger)
	if err != nil {
		return err
	}
	defer closeSink()

	acts := worker.InitializeActivities(e.cfg, sink, e.logger)
	resp, err := acts.GenerateReport(ctx, req)
	if err != nil {
		return err
	}
	e.out.reportWritten(resp)
	return nil
}

func (e *cliEnv) checkAction(ctx context.Context, cmd *cli.Command) error {
	req, err := requestFromArgs(cmd, false)
	if err != nil {
		return err
	}

	opener := table.NewOpener(e.cfg.TableOptions(),
		table.WithS3Region(e.cfg.Input.S3Region),
		table.WithLogger(e.logger.With("component", "table")))
	pipe := pipeline.New(pipeline.WithLogger(e.logger.With("component", "pipeline")))

	res, err := pipe.Check(ctx, opener.ForRequest(req))
	if err != nil {
		return err
	}
	if res.Status == domain.ReportStatusInvalidWeights {
		e.out.checkRejected(res.Stats.Mismatches)
		return nil
	}
	e.out.checkPassed(res.Stats.WeightedCourses, res.Stats.Rows)
	return nil
}

func (e *cliEnv) dial() (client.Client, error) {
	c, err := client.Dial(client.Options{
		HostPort:  e.cfg.Temporal.HostPort,
		Namespace: e.cfg.Temporal.Namespace,
		Logger:    tlog.NewStructuredLogger(e.logger),
	})
	if err != nil {
		return nil, fmt.Errorf("dial temporal %s: %w", e.cfg.Temporal.HostPort, err)
	}
	return c, nil
}

func (e *cliEnv) workerAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 0 {
		return usageErrorf("worker takes no arguments")
	}

	sink, closeSink, err := worker.InitializeEventSink(ctx, e.cfg, e.logger)
	if err != nil {
		return err
	}
	defer closeSink()

	c, err := e.dial()
	if err != nil {
		return err
	}
	defer c.Close()

	w := sdkworker.New(c, e.cfg.Temporal.TaskQueue, sdkworker.Options{})
	worker.RegisterAll(w, worker.InitializeActivities(e.cfg, sink, e.logger))

	e.logger.Info("worker started",
		"task_queue", e.cfg.Temporal.TaskQueue,
		"namespace", e.cfg.Temporal.Namespace)
	return w.Run(sdkworker.InterruptCh())
}

func (e *cliEnv) submitAction(ctx context.Context, cmd *cli.Command) error {
	req, err := requestFromArgs(cmd, true)
	if err != nil {
		return err
	}
	req.TimeoutSeconds = e.cfg.Temporal.ActivityTimeoutSeconds

	c, err := e.dial()
	if err != nil {
		return err
	}
	defer c.Close()

	run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        "gradebook-" + req.RunID,
		TaskQueue: e.cfg.Temporal.TaskQueue,
	}, workflow.GradeReportWorkflow, req)
	if err != nil {
		return fmt.Errorf("start workflow: %w", err)
	}
	e.logger.Info("workflow started", "workflow_id", run.GetID(), "run_id", run.GetRunID())

	var resp domain.ReportResponse
	if err := run.Get(ctx, &resp); err != nil {
		return err
	}
	e.out.reportWritten(&resp)
	return nil
}
