package pipeline

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/ahrav/go-gradebook/internal/domain"
)

// maxListed caps how many offending ids a ValidationError names.
const maxListed = 10

// ValidateStudents fails if any student id repeats.
func ValidateStudents(rows []domain.Student) error {
	return uniqueIDs(domain.TableStudents, rows, func(s domain.Student) int64 { return s.ID })
}

// ValidateCourses fails if any course id repeats.
func ValidateCourses(rows []domain.Course) error {
	return uniqueIDs(domain.TableCourses, rows, func(c domain.Course) int64 { return c.ID })
}

// ValidateTests fails if any test id repeats.
func ValidateTests(rows []domain.Test) error {
	return uniqueIDs(domain.TableTests, rows, func(t domain.Test) int64 { return t.ID })
}

// ValidateMarks fails if any mark is negative.
func ValidateMarks(rows []domain.Mark) error {
	var bad []string
	for i, m := range rows {
		if m.Value < 0 {
			bad = append(bad, fmt.Sprintf("row %d (student %d, test %d) has mark %v", i+1, m.StudentID, m.TestID, m.Value))
		}
	}
	if len(bad) == 0 {
		return nil
	}
	return &domain.ValidationError{
		Table:  domain.TableMarks,
		Rule:   "non_negative_mark",
		Detail: listDetail(bad),
	}
}

// ValidateTables runs every per-table check and reports all failures
// together, in courses, students, marks, tests order.
func ValidateTables(t Tables) error {
	return errors.Join(
		ValidateCourses(t.Courses),
		ValidateStudents(t.Students),
		ValidateMarks(t.Marks),
		ValidateTests(t.Tests),
	)
}

func uniqueIDs[T any](kind domain.TableKind, rows []T, id func(T) int64) error {
	seen := mapset.NewThreadUnsafeSetWithSize[int64](len(rows))
	dups := mapset.NewThreadUnsafeSet[int64]()
	var listed []string
	for _, r := range rows {
		v := id(r)
		if seen.Add(v) {
			continue
		}
		if dups.Add(v) {
			listed = append(listed, strconv.FormatInt(v, 10))
		}
	}
	if len(listed) == 0 {
		return nil
	}
	return &domain.ValidationError{
		Table:  kind,
		Rule:   "unique_id",
		Detail: "conflicting ids " + listDetail(listed),
	}
}

func listDetail(items []string) string {
	if len(items) <= maxListed {
		return strings.Join(items, ", ")
	}
	return fmt.Sprintf("%s and %d more", strings.Join(items[:maxListed], ", "), len(items)-maxListed)
}
