// Package domain defines the records, derived results, and error taxonomy of
// the grade report pipeline. Records are plain values: every stage receives
// slices of them and returns new slices, nothing is mutated in place.
package domain

// TableKind names one of the four input tables.
type TableKind string

const (
	TableCourses  TableKind = "courses"
	TableStudents TableKind = "students"
	TableTests    TableKind = "tests"
	TableMarks    TableKind = "marks"
)

// AllTables lists the input tables in the order the pipeline loads them
// after the weights gate has passed.
var AllTables = []TableKind{TableCourses, TableStudents, TableMarks, TableTests}

// String returns the table name.
func (k TableKind) String() string { return string(k) }

// Prefix returns the column namespace used for the table. The marks table is
// namespaced with an empty table name, so its columns read "_student_id",
// "_test_id" and "_mark" while every other table uses "<table>_".
func (k TableKind) Prefix() string {
	if k == TableMarks {
		return ""
	}
	return string(k)
}

// Column returns the namespaced name of a raw column of this table.
func (k TableKind) Column(raw string) string {
	return k.Prefix() + "_" + raw
}

// Student is one row of the students table.
type Student struct {
	ID   int64  `json:"id"`
	Name string `json:"name" validate:"required"`
}

// Validate checks row-level requirements.
func (s *Student) Validate() error { return validate.Struct(s) }

// Course is one row of the courses table.
type Course struct {
	ID      int64  `json:"id"`
	Name    string `json:"name" validate:"required"`
	Teacher string `json:"teacher" validate:"required"`
}

// Validate checks row-level requirements.
func (c *Course) Validate() error { return validate.Struct(c) }

// Test is one row of the tests table.
type Test struct {
	ID       int64  `json:"id"`
	CourseID int64  `json:"course_id"`
	Weight   Weight `json:"weight"`

	// Inexact marks a weight given with more precision than a Weight holds.
	// Its course can never be shown to sum to exactly 100.
	Inexact bool `json:"inexact,omitempty"`
}

// Mark is one row of the marks table. Mark rows carry no key of their own
// and duplicates are kept as-is.
type Mark struct {
	StudentID int64   `json:"student_id"`
	TestID    int64   `json:"test_id"`
	Value     float64 `json:"mark"`
}

// JoinedMark is a Mark enriched with the weight and course of its test.
type JoinedMark struct {
	Mark
	CourseID int64  `json:"course_id"`
	Weight   Weight `json:"weight"`

	// WeightedScore is (mark/100) * (weight/100), the fraction of the
	// course's 0-100 average this mark contributes.
	WeightedScore float64 `json:"weighted_score"`
}

// NewJoinedMark attaches test to m and computes its weighted score.
func NewJoinedMark(m Mark, test Test) JoinedMark {
	return JoinedMark{
		Mark:          m,
		CourseID:      test.CourseID,
		Weight:        test.Weight,
		WeightedScore: (m.Value / 100.0) * test.Weight.Fraction(),
	}
}
