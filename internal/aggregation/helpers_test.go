package aggregation

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-gradebook/internal/domain"
	"github.com/ahrav/go-gradebook/internal/emit"
	"github.com/ahrav/go-gradebook/internal/pipeline"
	"github.com/ahrav/go-gradebook/internal/table"
	"github.com/ahrav/go-gradebook/pkg/activity"
	"github.com/ahrav/go-gradebook/pkg/events"
)

// writeTables writes the four CSV tables into a temp dir and returns a
// request reading them. An empty table text leaves that file missing.
func writeTables(t *testing.T, courses, students, tests, marks string) domain.ReportRequest {
	t.Helper()
	dir := t.TempDir()
	write := func(name, text string) string {
		p := filepath.Join(dir, name)
		if text != "" {
			require.NoError(t, os.WriteFile(p, []byte(text), 0o644))
		}
		return p
	}
	return domain.ReportRequest{
		Courses:  write("courses.csv", courses),
		Students: write("students.csv", students),
		Tests:    write("tests.csv", tests),
		Marks:    write("marks.csv", marks),
		Output:   filepath.Join(dir, "out.json"),
		RunID:    uuid.NewString(),
	}
}

func newTestActivities(sink events.EventSink) *Activities {
	acts := NewActivities(
		activity.NewBaseActivities(sink),
		table.NewOpener(table.DefaultOptions()),
		emit.New(),
		pipeline.New(),
	)
	acts.now = func() time.Time { return time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC) }
	return acts
}

const (
	algoCourses  = "id,name,teacher\n1,Algo,A\n"
	annStudents  = "id,name\n1,Ann\n"
	fullTest     = "id,course_id,weight\n1,1,100\n"
	annMark      = "test_id,student_id,mark\n1,1,90\n"
	annReport    = `{"students":[{"id":1,"name":"Ann","totalAverage":90.0,"courses":[{"id":1,"name":"Algo","teacher":"A","courseAverage":90.0}]}]}`
	invalidTests = "id,course_id,weight\n1,1,60\n"
)
