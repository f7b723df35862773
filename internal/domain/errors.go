package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the grade report pipeline. Every typed error below
// unwraps to exactly one of these so callers can branch with errors.Is.
var (
	// ErrValidation indicates a table-local invariant was broken
	// (duplicate identifier, negative mark, unparsable cell).
	ErrValidation = errors.New("table validation failed")

	// ErrInvalidWeights indicates that at least one course's test weights
	// do not sum to 100. This is the only recoverable pipeline failure.
	ErrInvalidWeights = errors.New("invalid course weights")

	// ErrReference indicates a row references an identifier that does not exist.
	ErrReference = errors.New("dangling reference")

	// ErrDegenerateInput indicates input for which an average is undefined.
	ErrDegenerateInput = errors.New("degenerate input")

	// ErrInvariant indicates an internal invariant the earlier stages should
	// have guaranteed did not hold.
	ErrInvariant = errors.New("pipeline invariant violated")

	// ErrInvalidRequest indicates that a report request contains invalid data.
	ErrInvalidRequest = errors.New("invalid report request")
)

// InvalidWeightsMessage is the exact message carried by the error report
// produced when weights do not sum to 100.
const InvalidWeightsMessage = "Invalid course weights"

// ValidationError describes a broken per-table invariant.
type ValidationError struct {
	Table  TableKind // Table the violation was found in.
	Rule   string    // Short rule name, e.g. "unique_id" or "non_negative_mark".
	Detail string    // Human readable context such as the offending ids.
}

// Error returns a formatted validation error message.
func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %s violated", e.Table, e.Rule)
	}
	return fmt.Sprintf("%s: %s violated: %s", e.Table, e.Rule, e.Detail)
}

// Unwrap returns ErrValidation.
func (e *ValidationError) Unwrap() error { return ErrValidation }

// ReferenceKind names which relationship a ReferenceError broke.
type ReferenceKind string

const (
	// ReferenceTest is a mark whose test_id is absent from the tests table.
	ReferenceTest ReferenceKind = "test"

	// ReferenceCourse is a joined mark whose course_id is absent from the courses table.
	ReferenceCourse ReferenceKind = "course"
)

// ReferenceError reports a mark or test that points at a missing row.
type ReferenceError struct {
	Kind    ReferenceKind
	ID      int64
	Student string // Student name when known; empty otherwise.
}

// Error returns a formatted reference error message.
func (e *ReferenceError) Error() string {
	switch e.Kind {
	case ReferenceTest:
		return fmt.Sprintf("test id %d is not found in tests", e.ID)
	case ReferenceCourse:
		if e.Student != "" {
			return fmt.Sprintf("student %s took a non existing course: course id %d", e.Student, e.ID)
		}
		return fmt.Sprintf("course id %d is not found in courses", e.ID)
	default:
		return fmt.Sprintf("%s id %d is not found", e.Kind, e.ID)
	}
}

// Unwrap returns ErrReference.
func (e *ReferenceError) Unwrap() error { return ErrReference }

// DegenerateInputError reports a student for whom no average can be computed.
type DegenerateInputError struct {
	StudentID int64
	Student   string
}

// Error returns a formatted degenerate-input error message.
func (e *DegenerateInputError) Error() string {
	return fmt.Sprintf("student %s (id %d) has no marks; average is undefined", e.Student, e.StudentID)
}

// Unwrap returns ErrDegenerateInput.
func (e *DegenerateInputError) Unwrap() error { return ErrDegenerateInput }

// CourseWeightSum records the total test weight found for one course.
type CourseWeightSum struct {
	CourseID int64  `json:"course_id"`
	Sum      Weight `json:"sum"`
}

// WeightMismatchError lists every course whose weights do not sum to 100.
type WeightMismatchError struct {
	Mismatches []CourseWeightSum
}

// Error returns a formatted message naming every offending course.
func (e *WeightMismatchError) Error() string {
	parts := make([]string, 0, len(e.Mismatches))
	for _, m := range e.Mismatches {
		parts = append(parts, fmt.Sprintf("course %d sums to %s", m.CourseID, m.Sum))
	}
	return fmt.Sprintf("%s: %s", ErrInvalidWeights, strings.Join(parts, ", "))
}

// Unwrap returns ErrInvalidWeights.
func (e *WeightMismatchError) Unwrap() error { return ErrInvalidWeights }

// ErrorKind classifies pipeline failures for exit codes and retry decisions.
type ErrorKind string

const (
	ErrorKindNone        ErrorKind = ""
	ErrorKindValidation  ErrorKind = "validation"
	ErrorKindWeights     ErrorKind = "weights"
	ErrorKindReference   ErrorKind = "reference"
	ErrorKindDegenerate  ErrorKind = "degenerate_input"
	ErrorKindInvariant   ErrorKind = "invariant"
	ErrorKindRequest     ErrorKind = "request"
	ErrorKindEnvironment ErrorKind = "environment"
)

// Classify maps an error to its ErrorKind. Errors that do not wrap a
// pipeline sentinel (I/O, network, driver failures) classify as
// ErrorKindEnvironment.
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return ErrorKindNone
	case errors.Is(err, ErrInvalidWeights):
		return ErrorKindWeights
	case errors.Is(err, ErrValidation):
		return ErrorKindValidation
	case errors.Is(err, ErrReference):
		return ErrorKindReference
	case errors.Is(err, ErrDegenerateInput):
		return ErrorKindDegenerate
	case errors.Is(err, ErrInvariant):
		return ErrorKindInvariant
	case errors.Is(err, ErrInvalidRequest):
		return ErrorKindRequest
	default:
		return ErrorKindEnvironment
	}
}

// IsRecoverable reports whether err has a defined output contract.
// Only a weight mismatch does; everything else aborts the run.
func IsRecoverable(err error) bool {
	return Classify(err) == ErrorKindWeights
}
