// Package dataset reads and writes the CSV files the experiment runs on:
// annotation tables, full reflection datasets, label matrices and metrics.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/mlcompare/mlcompare/internal/agreement"
)

// Table is a CSV file with a header row.
type Table struct {
	Header []string
	Rows   [][]string
}

// ReadTable reads a CSV table whose first row is the header.
// Rows may have differing widths.
func ReadTable(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("read csv: missing header row")
	}
	return &Table{Header: records[0], Rows: records[1:]}, nil
}

// WriteTable writes the header followed by every row.
func WriteTable(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}

// Key returns the value of column col in data row i (0-based, excluding
// the header).
func (t *Table) Key(i, col int) (string, error) {
	row := t.Rows[i]
	if col < 0 || col >= len(row) {
		return "", fmt.Errorf("row %d: key column %d out of range (%d columns)", i+2, col, len(row))
	}
	return row[col], nil
}

// FilterTable keeps the rows whose key column scores at least threshold.
// The header and the relative order of kept rows are preserved.
func FilterTable(t *Table, keyColumn int, scores agreement.Scores, threshold float64) (*Table, error) {
	for i := range t.Rows {
		if _, err := t.Key(i, keyColumn); err != nil {
			return nil, err
		}
	}
	kept := agreement.Filter(t.Rows, func(row []string) string { return row[keyColumn] }, scores, threshold)
	return &Table{Header: t.Header, Rows: kept}, nil
}

// AnnotationOptions locates the identifier and label-set columns in an
// annotation table.
type AnnotationOptions struct {
	IDColumn   int
	SetsColumn int
	HasHeader  bool
}

// DefaultAnnotationOptions matches the label_sets.csv layout: no header,
// identifier then serialized label sets.
func DefaultAnnotationOptions() AnnotationOptions {
	return AnnotationOptions{IDColumn: 0, SetsColumn: 1}
}

// ReadAnnotations reads one annotation per row.
func ReadAnnotations(r io.Reader, opts AnnotationOptions) ([]agreement.Annotation, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var out []agreement.Annotation
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read annotations: %w", err)
		}
		if line == 1 && opts.HasHeader {
			continue
		}
		need := max(opts.IDColumn, opts.SetsColumn)
		if need >= len(rec) {
			return nil, fmt.Errorf("annotations line %d: want at least %d columns, got %d", line, need+1, len(rec))
		}
		out = append(out, agreement.Annotation{ID: rec[opts.IDColumn], Raw: rec[opts.SetsColumn]})
	}
	return out, nil
}

// WriteScores writes one (identifier, score) row per annotation, in the
// order given.
func WriteScores(w io.Writer, ids []string, scores agreement.Scores) error {
	rows := [][]string{{"id", "agreement"}}
	for _, id := range ids {
		s, ok := scores[id]
		if !ok {
			continue
		}
		rows = append(rows, []string{id, fmt.Sprintf("%.4f", s)})
	}
	return WriteRows(w, rows)
}

// WriteRows writes rows verbatim, with no header handling.
func WriteRows(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
