package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ahrav/go-gradebook/internal/domain"
	"github.com/ahrav/go-gradebook/internal/table"
)

// memSource serves CSV text per table and records which tables were loaded.
type memSource struct {
	mu     sync.Mutex
	tables map[domain.TableKind]string
	loaded []domain.TableKind
}

func newMemSource(courses, students, tests, marks string) *memSource {
	return &memSource{tables: map[domain.TableKind]string{
		domain.TableCourses:  courses,
		domain.TableStudents: students,
		domain.TableTests:    tests,
		domain.TableMarks:    marks,
	}}
}

func (m *memSource) Load(_ context.Context, kind domain.TableKind) (*table.Table, error) {
	m.mu.Lock()
	m.loaded = append(m.loaded, kind)
	m.mu.Unlock()

	text, ok := m.tables[kind]
	if !ok {
		return nil, fmt.Errorf("no %s table", kind)
	}
	return table.ReadCSV(strings.NewReader(text), kind, table.DefaultOptions())
}

func (m *memSource) Loaded() []domain.TableKind {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.TableKind(nil), m.loaded...)
}

func w(percent float64) domain.Weight {
	wt, err := domain.WeightFromFloat(percent)
	if err != nil {
		panic(err)
	}
	return wt
}

func test(id, course int64, percent float64) domain.Test {
	return domain.Test{ID: id, CourseID: course, Weight: w(percent)}
}

func mark(student, testID int64, value float64) domain.Mark {
	return domain.Mark{StudentID: student, TestID: testID, Value: value}
}

// Sample data shared by the scenario tests: two students, three courses.
const (
	sampleCourses = "id,name,teacher\n" +
		"1,Biology,Mr. D\n" +
		"2,History,Mrs. P\n" +
		"3,Math,Mrs. C\n"

	sampleStudents = "id,name\n" +
		"1,A\n" +
		"2,B\n"

	sampleTests = "id,course_id,weight\n" +
		"1,1,10\n" +
		"2,1,40\n" +
		"3,1,50\n" +
		"4,2,40\n" +
		"5,2,60\n" +
		"6,3,90\n" +
		"7,3,10\n"

	sampleMarks = "test_id,student_id,mark\n" +
		"1,1,78\n" +
		"2,1,87\n" +
		"3,1,95\n" +
		"4,1,32\n" +
		"5,1,65\n" +
		"6,1,78\n" +
		"7,1,40\n" +
		"1,2,78\n" +
		"2,2,87\n" +
		"3,2,15\n" +
		"6,2,78\n" +
		"7,2,40\n"

	sampleReport = `{"students":[` +
		`{"id":1,"name":"A","totalAverage":72.03,"courses":[` +
		`{"id":1,"name":"Biology","teacher":"Mr. D","courseAverage":90.1},` +
		`{"id":2,"name":"History","teacher":"Mrs. P","courseAverage":51.8},` +
		`{"id":3,"name":"Math","teacher":"Mrs. C","courseAverage":74.2}]},` +
		`{"id":2,"name":"B","totalAverage":62.15,"courses":[` +
		`{"id":1,"name":"Biology","teacher":"Mr. D","courseAverage":50.1},` +
		`{"id":3,"name":"Math","teacher":"Mrs. C","courseAverage":74.2}]}]}`
)
