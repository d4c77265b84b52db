package questions

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ImportReport summarizes a structural check of a source.
type ImportReport struct {
	Valid         bool     `json:"valid"`
	Errors        []string `json:"errors"`
	Warnings      []string `json:"warnings"`
	QuestionCount int      `json:"questionCount"`
}

func (r *ImportReport) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ImportReport) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Validate checks every row of a source and reports all problems found.
// Rows are numbered from 1, not counting the header. A missing type is only
// a warning, while an explicit multiple-choice row without options or a
// correct answer is an error.
func (im *Importer) Validate(source string) (*ImportReport, error) {
	if err := im.exists(source); err != nil {
		return nil, err
	}
	f, err := im.open(source)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	report := &ImportReport{Errors: []string{}, Warnings: []string{}}
	rr, err := newRowReader(f)
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if rr.hasHeader && !rr.hasColumn(0) {
		report.errorf("Header: missing %q column", Columns[0])
	}

	for n := 1; ; n++ {
		row, err := rr.next()
		if errors.Is(err, io.EOF) {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			report.QuestionCount++
			report.errorf("Row %d: Malformed record: %v", n, perr.Err)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", n, err)
		}
		report.QuestionCount++
		validateRow(report, n, row)
	}

	report.Valid = len(report.Errors) == 0
	return report, nil
}

func validateRow(report *ImportReport, n int, row Row) {
	errs := len(report.Errors)
	if strings.TrimSpace(row.Question) == "" {
		report.errorf("Row %d: Missing question text", n)
	}

	kind := Kind(strings.ToLower(strings.TrimSpace(row.Type)))
	if kind == "" {
		report.warnf("Row %d: Missing question type, defaulting to %s", n, KindMultipleChoice)
	}
	if kind == KindMultipleChoice {
		if strings.TrimSpace(row.Options) == "" {
			report.errorf("Row %d: Multiple choice question missing options", n)
		}
		if strings.TrimSpace(row.CorrectAnswer) == "" {
			report.errorf("Row %d: Multiple choice question missing correct answer", n)
		}
	}
	if len(report.Errors) > errs {
		return
	}

	// Import drops rows that fail the question invariant.
	if q := FormatRow(row, ""); q != nil {
		if err := q.Validate(); err != nil {
			report.warnf("Row %d: Skipped on import, %v", n, err)
		}
	}
}
