package pipeline

import (
	"github.com/ahrav/go-gradebook/internal/domain"
)

// WeightCheck is the outcome of grouping tests by course and summing weights.
type WeightCheck struct {
	// Courses is the number of distinct courses that have tests.
	Courses int

	// Mismatches lists every course whose weights do not sum to 100, in
	// first-seen order.
	Mismatches []domain.CourseWeightSum
}

// Valid reports whether every course's weights sum to exactly 100.
func (c WeightCheck) Valid() bool { return len(c.Mismatches) == 0 }

// Err returns a WeightMismatchError describing the mismatches, or nil.
func (c WeightCheck) Err() error {
	if c.Valid() {
		return nil
	}
	return &domain.WeightMismatchError{Mismatches: c.Mismatches}
}

// CheckWeights groups tests by course and checks every group; it never
// stops at the first valid or invalid course. Courses without tests have no
// group and are not checked. A course holding an inexact weight is always a
// mismatch.
func CheckWeights(tests []domain.Test) WeightCheck {
	sums := make(map[int64]domain.Weight)
	inexact := make(map[int64]bool)
	var order []int64
	for _, t := range tests {
		if _, ok := sums[t.CourseID]; !ok {
			order = append(order, t.CourseID)
		}
		sums[t.CourseID] += t.Weight
		if t.Inexact {
			inexact[t.CourseID] = true
		}
	}

	check := WeightCheck{Courses: len(order)}
	for _, id := range order {
		if sums[id] != domain.FullWeight || inexact[id] {
			check.Mismatches = append(check.Mismatches, domain.CourseWeightSum{CourseID: id, Sum: sums[id]})
		}
	}
	return check
}

// VerifyWeights reports whether every course's test weights sum to exactly 100.
func VerifyWeights(tests []domain.Test) bool {
	return CheckWeights(tests).Valid()
}
