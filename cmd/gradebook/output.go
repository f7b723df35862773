package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/ahrav/go-gradebook/internal/domain"
	"github.com/ahrav/go-gradebook/internal/emit"
)

// OutputtedMessage is printed after every written report.
const OutputtedMessage = "JSON outputted"

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
)

// printer writes the human-facing summary lines of the CLI.
type printer struct {
	stdout io.Writer
	stderr io.Writer
}

// reportWritten announces a written report. When the report itself went to
// stdout the message moves to stderr.
func (p printer) reportWritten(resp *domain.ReportResponse) {
	w := p.stdout
	if resp.Output == emit.Stdout {
		w = p.stderr
	}
	if resp.Status == domain.ReportStatusInvalidWeights {
		warnColor.Fprintln(p.stderr, domain.InvalidWeightsMessage+":")
		for _, m := range resp.Mismatches {
			warnColor.Fprintf(p.stderr, "  course %d sums to %s\n", m.CourseID, m.Sum)
		}
	}
	okColor.Fprintln(w, OutputtedMessage)
}

// checkPassed reports a passing check.
func (p printer) checkPassed(courses int, rows map[domain.TableKind]int) {
	okColor.Fprintf(p.stdout, "ok: %d weighted courses", courses)
	for _, kind := range domain.AllTables {
		fmt.Fprintf(p.stdout, ", %d %s", rows[kind], kind)
	}
	fmt.Fprintln(p.stdout)
}

// checkRejected reports a check stopped by the weights gate.
func (p printer) checkRejected(mismatches []domain.CourseWeightSum) {
	warnColor.Fprintln(p.stdout, domain.InvalidWeightsMessage+":")
	for _, m := range mismatches {
		warnColor.Fprintf(p.stdout, "  course %d sums to %s\n", m.CourseID, m.Sum)
	}
}
