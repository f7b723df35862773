package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Average is a 0-100 grade average rounded to two decimals. It always
// encodes with a decimal point (90.0, 72.5, 80.25) so documents read the
// same as the reports produced by earlier tooling.
type Average float64

// RoundAverage rounds x to two decimal places. The exact binary value of x
// is rounded, with exact ties going to the even digit: 80.125 becomes 80.12
// while 12.345, stored slightly above the tie, becomes 12.35.
func RoundAverage(x float64) Average {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return Average(x)
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 2, 64), 64)
	if err != nil {
		return Average(math.NaN())
	}
	return Average(r)
}

// MarshalJSON encodes the average with at least one fractional digit.
func (a Average) MarshalJSON() ([]byte, error) {
	f := float64(a)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%w: average %v is not finite", ErrDegenerateInput, f)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return []byte(s), nil
}

// UnmarshalJSON decodes a numeric average.
func (a *Average) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*a = Average(f)
	return nil
}

// CourseResult is one course's average for one student.
type CourseResult struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Teacher       string  `json:"teacher"`
	CourseAverage Average `json:"courseAverage"`
}

// StudentReport is one student's averages, with courses in the order the
// student's marks first mention them.
type StudentReport struct {
	ID           int64          `json:"id"`
	Name         string         `json:"name"`
	TotalAverage Average        `json:"totalAverage"`
	Courses      []CourseResult `json:"courses"`
}

// Report is the top-level output document: either an error message or the
// list of student reports in student-table order.
type Report struct {
	Error    string
	Students []StudentReport
}

// NewErrorReport returns a report carrying only msg.
func NewErrorReport(msg string) Report {
	return Report{Error: msg}
}

// InvalidWeightsReport is the report produced when weights do not sum to 100.
func InvalidWeightsReport() Report {
	return NewErrorReport(InvalidWeightsMessage)
}

// IsError reports whether the report is an error document.
func (r Report) IsError() bool { return r.Error != "" }

type errorDocument struct {
	Error string `json:"error"`
}

type studentsDocument struct {
	Students []StudentReport `json:"students"`
}

// MarshalJSON encodes exactly one of the two document shapes. A successful
// report with no students still encodes "students" as an empty array.
func (r Report) MarshalJSON() ([]byte, error) {
	if r.IsError() {
		return json.Marshal(errorDocument{Error: r.Error})
	}
	students := make([]StudentReport, len(r.Students))
	copy(students, r.Students)
	for i := range students {
		if students[i].Courses == nil {
			students[i].Courses = []CourseResult{}
		}
	}
	return json.Marshal(studentsDocument{Students: students})
}

// UnmarshalJSON decodes either document shape.
func (r *Report) UnmarshalJSON(data []byte) error {
	var raw struct {
		Error    *string         `json:"error"`
		Students []StudentReport `json:"students"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Report{Students: raw.Students}
	if raw.Error != nil {
		r.Error = *raw.Error
	}
	return nil
}
