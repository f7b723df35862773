package pipeline

import (
	"fmt"
	"math"

	"github.com/ahrav/go-gradebook/internal/domain"
)

// courseGroup accumulates one student's weighted scores for one course.
type courseGroup struct {
	courseID int64
	sum      float64
}

// BuildReport rolls joined marks up into per-course and per-student averages.
//
// Students appear in students-table order. Within a student, courses appear
// in the order the student's marks first mention them. A course average is
// round(sum(weighted_score) * 100, 2); the total average is the rounded mean
// of the student's course averages over the courses the student has marks in.
//
// A student without marks fails with a DegenerateInputError, and a mark whose
// course is missing from courses fails with a ReferenceError naming the student.
func BuildReport(students []domain.Student, courses []domain.Course, joined []domain.JoinedMark) (domain.Report, error) {
	courseByID := make(map[int64]domain.Course, len(courses))
	for _, c := range courses {
		if _, ok := courseByID[c.ID]; !ok {
			courseByID[c.ID] = c
		}
	}

	marksByStudent := make(map[int64][]domain.JoinedMark)
	for _, jm := range joined {
		marksByStudent[jm.StudentID] = append(marksByStudent[jm.StudentID], jm)
	}

	reports := make([]domain.StudentReport, 0, len(students))
	for _, s := range students {
		marks := marksByStudent[s.ID]
		if len(marks) == 0 {
			return domain.Report{}, &domain.DegenerateInputError{StudentID: s.ID, Student: s.Name}
		}

		groups := groupByCourse(marks)
		results := make([]domain.CourseResult, 0, len(groups))
		var total float64
		for _, g := range groups {
			course, ok := courseByID[g.courseID]
			if !ok {
				return domain.Report{}, &domain.ReferenceError{
					Kind:    domain.ReferenceCourse,
					ID:      g.courseID,
					Student: s.Name,
				}
			}
			avg := domain.RoundAverage(g.sum * 100)
			if !finite(avg) {
				return domain.Report{}, fmt.Errorf("%w: student %s course %d average overflows",
					domain.ErrDegenerateInput, s.Name, g.courseID)
			}
			total += float64(avg)
			results = append(results, domain.CourseResult{
				ID:            course.ID,
				Name:          course.Name,
				Teacher:       course.Teacher,
				CourseAverage: avg,
			})
		}

		totalAvg := domain.RoundAverage(total / float64(len(results)))
		if !finite(totalAvg) {
			return domain.Report{}, fmt.Errorf("%w: student %s total average overflows",
				domain.ErrDegenerateInput, s.Name)
		}
		reports = append(reports, domain.StudentReport{
			ID:           s.ID,
			Name:         s.Name,
			TotalAverage: totalAvg,
			Courses:      results,
		})
	}
	return domain.Report{Students: reports}, nil
}

// groupByCourse sums weighted scores per course in first-seen order.
func groupByCourse(marks []domain.JoinedMark) []courseGroup {
	pos := make(map[int64]int)
	var groups []courseGroup
	for _, m := range marks {
		i, ok := pos[m.CourseID]
		if !ok {
			i = len(groups)
			pos[m.CourseID] = i
			groups = append(groups, courseGroup{courseID: m.CourseID})
		}
		groups[i].sum += m.WeightedScore
	}
	return groups
}

func finite(a domain.Average) bool {
	f := float64(a)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
