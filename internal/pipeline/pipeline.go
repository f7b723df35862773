// Package pipeline implements the grade report core: table validation, the
// course-weight gate, the marks/tests join, and the roll-up into per-course
// and per-student averages.
//
// Every stage is a pure function over decoded record slices. Run sequences
// them as a state machine:
//
//	Start -> WeightsChecked -> ErrorReport (terminal)
//	                        -> TablesValidated -> Joined -> Built (terminal)
//
// An invalid weight distribution is the only recoverable outcome and is
// returned as a Result with StatusInvalidWeights. Every other failure is a
// returned error and the run produces no report.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ahrav/go-gradebook/internal/domain"
	"github.com/ahrav/go-gradebook/internal/table"
)

// Stage is a pipeline state.
type Stage string

const (
	StageStart           Stage = "start"
	StageWeightsChecked  Stage = "weights_checked"
	StageErrorReport     Stage = "error_report"
	StageTablesValidated Stage = "tables_validated"
	StageJoined          Stage = "joined"
	StageBuilt           Stage = "built"
)

// Source loads one input table at a time.
type Source interface {
	Load(ctx context.Context, kind domain.TableKind) (*table.Table, error)
}

// Tables holds the four decoded input tables of one run.
type Tables struct {
	Courses  []domain.Course
	Students []domain.Student
	Tests    []domain.Test
	Marks    []domain.Mark
}

// Stats summarizes the input of a run.
type Stats struct {
	Rows    map[domain.TableKind]int
	Dropped map[domain.TableKind]int

	// WeightedCourses is the number of courses that have tests.
	WeightedCourses int
	Mismatches      []domain.CourseWeightSum
	JoinedMarks     int
}

// Result is the outcome of a run that did not fail fatally.
type Result struct {
	Status domain.ReportStatus
	Report domain.Report
	Stage  Stage
	Stats  Stats
}

// Pipeline runs report generation over a Source.
type Pipeline struct {
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(p *Pipeline) { p.logger = l } }

// New creates a Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{logger: slog.Default().With("component", "pipeline")}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Run loads the tests table, checks course weights, and only if they are
// valid loads, validates, joins and aggregates the remaining tables. The
// returned Result carries the stage reached even when err is non-nil.
func (p *Pipeline) Run(ctx context.Context, src Source) (Result, error) {
	res, tables, err := p.gate(ctx, src)
	if err != nil || res.Stage == StageErrorReport {
		return res, err
	}

	report, stage, joined, err := Generate(tables)
	res.Stage = stage
	res.Stats.JoinedMarks = joined
	if err != nil {
		return res, err
	}

	p.logger.Info("report built",
		"students", len(report.Students),
		"courses", len(tables.Courses),
		"marks", len(tables.Marks))
	res.Status = domain.ReportStatusOK
	res.Report = report
	return res, nil
}

// gate loads the tests table and checks course weights. On a mismatch it
// returns the error report result without touching the other sources;
// otherwise it loads and decodes the remaining three tables.
func (p *Pipeline) gate(ctx context.Context, src Source) (Result, Tables, error) {
	res := Result{
		Stage: StageStart,
		Stats: Stats{
			Rows:    make(map[domain.TableKind]int, len(domain.AllTables)),
			Dropped: make(map[domain.TableKind]int, len(domain.AllTables)),
		},
	}

	testsTable, err := p.load(ctx, src, domain.TableTests, &res.Stats)
	if err != nil {
		return res, Tables{}, err
	}
	tests, err := table.Tests(testsTable)
	if err != nil {
		return res, Tables{}, fmt.Errorf("decode tests: %w", err)
	}

	check := CheckWeights(tests)
	res.Stage = StageWeightsChecked
	res.Stats.WeightedCourses = check.Courses
	res.Stats.Mismatches = check.Mismatches
	if !check.Valid() {
		p.logger.Warn("course weights do not sum to 100",
			"courses", check.Courses,
			"error", check.Err())
		res.Stage = StageErrorReport
		res.Status = domain.ReportStatusInvalidWeights
		res.Report = domain.InvalidWeightsReport()
		return res, Tables{}, nil
	}

	tables := Tables{Tests: tests}
	if tables.Courses, err = loadDecoded(ctx, p, src, domain.TableCourses, &res.Stats, table.Courses); err != nil {
		return res, tables, err
	}
	if tables.Students, err = loadDecoded(ctx, p, src, domain.TableStudents, &res.Stats, table.Students); err != nil {
		return res, tables, err
	}
	if tables.Marks, err = loadDecoded(ctx, p, src, domain.TableMarks, &res.Stats, table.Marks); err != nil {
		return res, tables, err
	}
	return res, tables, nil
}

// Check runs the weights gate and, when it passes, table validation
// without joining or aggregating. A passing check ends at
// StageTablesValidated with StatusOK and an empty report.
func (p *Pipeline) Check(ctx context.Context, src Source) (Result, error) {
	res, tables, err := p.gate(ctx, src)
	if err != nil || res.Stage == StageErrorReport {
		return res, err
	}
	if err := ValidateTables(tables); err != nil {
		return res, err
	}
	res.Stage = StageTablesValidated
	res.Status = domain.ReportStatusOK
	return res, nil
}

// Generate runs validation, join and aggregation over already decoded
// tables whose weights have passed the gate. It returns the last stage
// reached and the number of joined marks.
func Generate(t Tables) (domain.Report, Stage, int, error) {
	if err := ValidateTables(t); err != nil {
		return domain.Report{}, StageWeightsChecked, 0, err
	}

	joined, err := JoinMarks(t.Marks, t.Tests)
	if err != nil {
		return domain.Report{}, StageTablesValidated, 0, err
	}

	report, err := BuildReport(t.Students, t.Courses, joined)
	if err != nil {
		return domain.Report{}, StageJoined, len(joined), err
	}
	return report, StageBuilt, len(joined), nil
}

func (p *Pipeline) load(ctx context.Context, src Source, kind domain.TableKind, stats *Stats) (*table.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t, err := src.Load(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", kind, err)
	}
	stats.Rows[kind] = t.Len()
	stats.Dropped[kind] = t.Dropped
	return t, nil
}

func loadDecoded[T any](
	ctx context.Context,
	p *Pipeline,
	src Source,
	kind domain.TableKind,
	stats *Stats,
	decode func(*table.Table) ([]T, error),
) ([]T, error) {
	t, err := p.load(ctx, src, kind, stats)
	if err != nil {
		return nil, err
	}
	rows, err := decode(t)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	return rows, nil
}
