package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func validRequest() ReportRequest {
	return ReportRequest{
		Courses:  "courses.csv",
		Students: "students.csv",
		Tests:    "tests.csv",
		Marks:    "marks.csv",
		Output:   "out.json",
	}
}

func TestReportRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ReportRequest)
		wantErr bool
	}{
		{name: "valid", mutate: func(*ReportRequest) {}},
		{name: "valid with run id", mutate: func(r *ReportRequest) { r.RunID = uuid.NewString() }},
		{name: "missing output", mutate: func(r *ReportRequest) { r.Output = "" }, wantErr: true},
		{name: "missing marks", mutate: func(r *ReportRequest) { r.Marks = "" }, wantErr: true},
		{name: "run id not a uuid", mutate: func(r *ReportRequest) { r.RunID = "run-1" }, wantErr: true},
		{name: "negative timeout", mutate: func(r *ReportRequest) { r.TimeoutSeconds = -1 }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			err := req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestReportRequest_Location(t *testing.T) {
	req := validRequest()
	assert.Equal(t, "courses.csv", req.Location(TableCourses))
	assert.Equal(t, "students.csv", req.Location(TableStudents))
	assert.Equal(t, "tests.csv", req.Location(TableTests))
	assert.Equal(t, "marks.csv", req.Location(TableMarks))
	assert.Empty(t, req.Location(TableKind("grades")))
}

func TestReportResponse_Validate(t *testing.T) {
	ok := ReportResponse{RunID: "r", Status: ReportStatusOK, Output: "out.json", Students: 1}
	assert.NoError(t, ok.Validate())

	bad := ok
	bad.Status = "partial"
	assert.Error(t, bad.Validate())
}

func TestRecords_Validate(t *testing.T) {
	assert.NoError(t, (&Student{ID: 1, Name: "Ann"}).Validate())
	assert.Error(t, (&Student{ID: 1}).Validate())
	assert.NoError(t, (&Course{ID: 1, Name: "Algo", Teacher: "A"}).Validate())
	assert.Error(t, (&Course{ID: 1, Name: "Algo"}).Validate())
}

func TestTableKind_Column(t *testing.T) {
	assert.Equal(t, "students_id", TableStudents.Column("id"))
	assert.Equal(t, "tests_course_id", TableTests.Column("course_id"))
	assert.Equal(t, "_test_id", TableMarks.Column("test_id"))
}

func TestNewJoinedMark(t *testing.T) {
	jm := NewJoinedMark(Mark{StudentID: 1, TestID: 2, Value: 50}, Test{ID: 2, CourseID: 3, Weight: 40_000_000})
	assert.Equal(t, int64(3), jm.CourseID)
	assert.Equal(t, Weight(40_000_000), jm.Weight)
	assert.InDelta(t, 0.2, jm.WeightedScore, 1e-12)
}
