// Package report writes scan results and debug rows as CSV.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/ironsheep/omr-scanner/internal/omr"
)

// ResultsOptions controls the results table layout.
type ResultsOptions struct {
	// FieldIDs are identity columns placed between "file" and the
	// questions.
	FieldIDs []string

	// QuestionIDs are the answer columns, in template order.
	QuestionIDs []string

	// ErrorColumn appends an "error" column with each failure message.
	ErrorColumn bool
}

// ResultsHeader returns the header row for opts.
func ResultsHeader(opts ResultsOptions) []string {
	header := make([]string, 0, 2+len(opts.FieldIDs)+len(opts.QuestionIDs))
	header = append(header, "file")
	header = append(header, opts.FieldIDs...)
	header = append(header, opts.QuestionIDs...)
	if opts.ErrorColumn {
		header = append(header, "error")
	}
	return header
}

// ResultRow lays out one ScanResult. A failed image has empty answers.
func ResultRow(r omr.ScanResult, opts ResultsOptions) []string {
	row := make([]string, 0, 2+len(opts.FieldIDs)+len(opts.QuestionIDs))
	row = append(row, r.File)
	for _, id := range opts.FieldIDs {
		row = append(row, r.Fields[id])
	}
	for _, id := range opts.QuestionIDs {
		row = append(row, r.Answers[id])
	}
	if opts.ErrorColumn {
		row = append(row, r.Error)
	}
	return row
}

// WriteResults writes the header and one row per result.
func WriteResults(w io.Writer, results []omr.ScanResult, opts ResultsOptions) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ResultsHeader(opts)); err != nil {
		return fmt.Errorf("failed to write results header: %w", err)
	}
	for _, r := range results {
		if err := cw.Write(ResultRow(r, opts)); err != nil {
			return fmt.Errorf("failed to write result for %s: %w", r.File, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush results: %w", err)
	}
	return nil
}

// DebugHeader is the header of the debug table.
var DebugHeader = []string{"file", "qid", "coords", "scores"}

// WriteDebug writes the header and one row per DebugRow.
func WriteDebug(w io.Writer, rows []omr.DebugRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(DebugHeader); err != nil {
		return fmt.Errorf("failed to write debug header: %w", err)
	}
	for _, d := range rows {
		if err := cw.Write([]string{d.File, d.QuestionID, d.CoordsString(), d.ScoresString()}); err != nil {
			return fmt.Errorf("failed to write debug row for %s: %w", d.File, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush debug rows: %w", err)
	}
	return nil
}

// WriteFile creates path and passes it to write. A path of "-" writes to
// stdout.
func WriteFile(path string, write func(io.Writer) error) error {
	if path == "-" {
		return write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
