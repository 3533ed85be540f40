package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// ReadMatrix reads a headerless 0/1 label matrix: one row per reflection,
// one column per label.
func ReadMatrix(r io.Reader) (*mat.Dense, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read label matrix: %w", err)
	}
	if len(records) == 0 || len(records[0]) == 0 {
		return nil, errors.New("read label matrix: empty input")
	}

	rows, cols := len(records), len(records[0])
	data := make([]float64, 0, rows*cols)
	for i, rec := range records {
		for j, cell := range rec {
			v, err := strconv.Atoi(strings.TrimSpace(cell))
			if err != nil {
				return nil, fmt.Errorf("label matrix line %d column %d: %w", i+1, j+1, err)
			}
			data = append(data, float64(v))
		}
	}
	return mat.NewDense(rows, cols, data), nil
}

// WriteMatrix writes m as integer CSV rows.
func WriteMatrix(w io.Writer, m mat.Matrix) error {
	rows, cols := m.Dims()
	out := make([][]string, rows)
	for i := range rows {
		row := make([]string, cols)
		for j := range cols {
			row[j] = strconv.FormatFloat(m.At(i, j), 'f', -1, 64)
		}
		out[i] = row
	}
	return WriteRows(w, out)
}

// SampleFewShot draws perLabel training rows for each label column, with
// replacement, among the rows where that label is set. Rows are returned
// grouped by label in the order labels are given.
func SampleFewShot(t *Table, labels []string, perLabel int, rng *rand.Rand) (*Table, error) {
	if perLabel <= 0 {
		return nil, fmt.Errorf("per-label sample size must be positive, got %d", perLabel)
	}

	out := &Table{Header: t.Header}
	for _, label := range labels {
		col := slices.Index(t.Header, label)
		if col < 0 {
			return nil, fmt.Errorf("label column %q not found in header", label)
		}

		var positives []int
		for i := range t.Rows {
			cell, err := t.Key(i, col)
			if err != nil {
				return nil, err
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: %w", i+2, label, err)
			}
			if v != 0 {
				positives = append(positives, i)
			}
		}
		if len(positives) == 0 {
			return nil, fmt.Errorf("label %q has no positive examples", label)
		}

		for range perLabel {
			out.Rows = append(out.Rows, t.Rows[positives[rng.IntN(len(positives))]])
		}
	}
	return out, nil
}
