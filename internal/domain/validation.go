package domain

import (
	"github.com/go-playground/validator/v10"
)

// validate is the package-level validator instance used for struct validation.
var validate = validator.New(validator.WithRequiredStructEnabled())

// ReportRequest identifies the four input tables and the output destination
// of one report run. Locations are resolved by the table loader: plain paths,
// compressed files, s3:// objects, or sqlite:// and postgres:// tables.
type ReportRequest struct {
	Courses  string `json:"courses" validate:"required"`
	Students string `json:"students" validate:"required"`
	Tests    string `json:"tests" validate:"required"`
	Marks    string `json:"marks" validate:"required"`
	Output   string `json:"output" validate:"required"`

	// RunID correlates logs and events for the run. Generated when empty.
	RunID string `json:"run_id,omitempty" validate:"omitempty,uuid"`

	// TimeoutSeconds bounds one activity attempt when run on a worker.
	// Zero uses the workflow default.
	TimeoutSeconds int `json:"timeout_seconds,omitempty" validate:"min=0,max=86400"`
}

// Validate checks if the request meets all requirements.
func (r *ReportRequest) Validate() error { return validate.Struct(r) }

// Location returns the configured location of the given table.
func (r *ReportRequest) Location(kind TableKind) string {
	switch kind {
	case TableCourses:
		return r.Courses
	case TableStudents:
		return r.Students
	case TableTests:
		return r.Tests
	case TableMarks:
		return r.Marks
	default:
		return ""
	}
}

// ReportStatus is the non-fatal outcome of a run.
type ReportStatus string

const (
	// ReportStatusOK means the student report was built and emitted.
	ReportStatusOK ReportStatus = "ok"

	// ReportStatusInvalidWeights means the weights gate failed and the error
	// report was emitted instead.
	ReportStatusInvalidWeights ReportStatus = "invalid_weights"
)

// ReportResponse summarizes a completed run.
type ReportResponse struct {
	RunID    string       `json:"run_id" validate:"required"`
	Status   ReportStatus `json:"status" validate:"required,oneof=ok invalid_weights"`
	Output   string       `json:"output" validate:"required"`
	Students int          `json:"students" validate:"min=0"`

	// Mismatches lists the courses that failed the weights gate.
	Mismatches []CourseWeightSum `json:"mismatches,omitempty"`
}

// Validate checks if the response meets all requirements.
func (r *ReportResponse) Validate() error { return validate.Struct(r) }
