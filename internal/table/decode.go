package table

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/ahrav/go-gradebook/internal/domain"
)

// Raw (un-namespaced) column names of each table.
const (
	colID       = "id"
	colName     = "name"
	colTeacher  = "teacher"
	colCourseID = "course_id"
	colWeight   = "weight"
	colStudent  = "student_id"
	colTest     = "test_id"
	colMark     = "mark"
)

// Students decodes a students table.
func Students(t *Table) ([]domain.Student, error) {
	if err := expectKind(t, domain.TableStudents); err != nil {
		return nil, err
	}
	idx, err := t.requireColumns(colID, colName)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Student, 0, t.Len())
	for n, row := range t.Rows {
		id, err := parseID(t, n, colID, row[idx[0]])
		if err != nil {
			return nil, err
		}
		s := domain.Student{ID: id, Name: row[idx[1]]}
		if err := checkRow(t, n, s.Validate()); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Courses decodes a courses table.
func Courses(t *Table) ([]domain.Course, error) {
	if err := expectKind(t, domain.TableCourses); err != nil {
		return nil, err
	}
	idx, err := t.requireColumns(colID, colName, colTeacher)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Course, 0, t.Len())
	for n, row := range t.Rows {
		id, err := parseID(t, n, colID, row[idx[0]])
		if err != nil {
			return nil, err
		}
		c := domain.Course{ID: id, Name: row[idx[1]], Teacher: row[idx[2]]}
		if err := checkRow(t, n, c.Validate()); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Tests decodes a tests table. A weight finer than a millionth of a point
// decodes rounded with Inexact set; the weights check rejects its course.
func Tests(t *Table) ([]domain.Test, error) {
	if err := expectKind(t, domain.TableTests); err != nil {
		return nil, err
	}
	idx, err := t.requireColumns(colID, colCourseID, colWeight)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Test, 0, t.Len())
	for n, row := range t.Rows {
		id, err := parseID(t, n, colID, row[idx[0]])
		if err != nil {
			return nil, err
		}
		courseID, err := parseID(t, n, colCourseID, row[idx[1]])
		if err != nil {
			return nil, err
		}
		w, err := domain.ParseWeight(row[idx[2]])
		inexact := errors.Is(err, domain.ErrWeightPrecision)
		if err != nil && !inexact {
			return nil, cellError(t, n, colWeight, err)
		}
		out = append(out, domain.Test{ID: id, CourseID: courseID, Weight: w, Inexact: inexact})
	}
	return out, nil
}

// Marks decodes a marks table. Negative marks decode successfully; rejecting
// them is the table validator's job.
func Marks(t *Table) ([]domain.Mark, error) {
	if err := expectKind(t, domain.TableMarks); err != nil {
		return nil, err
	}
	idx, err := t.requireColumns(colStudent, colTest, colMark)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Mark, 0, t.Len())
	for n, row := range t.Rows {
		studentID, err := parseID(t, n, colStudent, row[idx[0]])
		if err != nil {
			return nil, err
		}
		testID, err := parseID(t, n, colTest, row[idx[1]])
		if err != nil {
			return nil, err
		}
		v, err := strconv.ParseFloat(row[idx[2]], 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, cellError(t, n, colMark, fmt.Errorf("not a finite number: %q", row[idx[2]]))
		}
		out = append(out, domain.Mark{StudentID: studentID, TestID: testID, Value: v})
	}
	return out, nil
}

func expectKind(t *Table, want domain.TableKind) error {
	if t == nil {
		return fmt.Errorf("%w: nil %s table", domain.ErrInvariant, want)
	}
	if t.Kind != want {
		return fmt.Errorf("%w: decoding %s table as %s", domain.ErrInvariant, t.Kind, want)
	}
	return nil
}

// parseID accepts integer cells, and float cells with no fractional part
// ("3.0") as produced by spreadsheet exports.
func parseID(t *Table, row int, col, cell string) (int64, error) {
	if id, err := strconv.ParseInt(cell, 10, 64); err == nil {
		return id, nil
	}
	f, err := strconv.ParseFloat(cell, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, cellError(t, row, col, fmt.Errorf("not an integer id: %q", cell))
	}
	return int64(f), nil
}

func cellError(t *Table, row int, col string, err error) error {
	return &domain.ValidationError{
		Table:  t.Kind,
		Rule:   "cell",
		Detail: fmt.Sprintf("row %d column %s: %v", row+1, t.Kind.Column(col), err),
	}
}

func checkRow(t *Table, row int, err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &domain.ValidationError{
			Table:  t.Kind,
			Rule:   "row",
			Detail: fmt.Sprintf("row %d: field %s failed %q", row+1, fe.Field(), fe.Tag()),
		}
	}
	return &domain.ValidationError{Table: t.Kind, Rule: "row", Detail: fmt.Sprintf("row %d: %v", row+1, err)}
}
