// Package metrics scores multi-label predictions against human labels with
// one binary confusion matrix per label.
package metrics

import (
	"fmt"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// Confusion holds the binary confusion counts for one label.
type Confusion struct {
	Label string `json:"label"`
	TN    int    `json:"tn"`
	FP    int    `json:"fp"`
	FN    int    `json:"fn"`
	TP    int    `json:"tp"`
}

// Accuracy is the fraction of reflections this label was decided
// correctly for.
func (c Confusion) Accuracy() float64 {
	n := c.TN + c.FP + c.FN + c.TP
	if n == 0 {
		return 0
	}
	return float64(c.TP+c.TN) / float64(n)
}

// Result is the outcome of scoring one prediction matrix.
type Result struct {
	Labels   []Confusion `json:"labels"`
	Samples  int         `json:"samples"`
	Accuracy float64     `json:"accuracy"`
}

// Evaluate compares pred against truth column by column. Both matrices must
// have the same shape and hold only 0 and 1. Only the first len(labels)
// columns are scored. Accuracy is the mean of the per-label accuracies.
func Evaluate(truth, pred mat.Matrix, labels []string) (*Result, error) {
	tr, tc := truth.Dims()
	pr, pc := pred.Dims()
	if tr != pr || tc != pc {
		return nil, fmt.Errorf("shape mismatch: truth is %dx%d, predictions are %dx%d", tr, tc, pr, pc)
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("no labels to evaluate")
	}
	if len(labels) > tc {
		return nil, fmt.Errorf("%d labels configured but matrices have %d columns", len(labels), tc)
	}

	res := &Result{Samples: tr, Labels: make([]Confusion, len(labels))}
	for j, label := range labels {
		c := Confusion{Label: label}
		for i := range tr {
			t, err := binary(truth.At(i, j))
			if err != nil {
				return nil, fmt.Errorf("truth row %d label %q: %w", i+1, label, err)
			}
			p, err := binary(pred.At(i, j))
			if err != nil {
				return nil, fmt.Errorf("prediction row %d label %q: %w", i+1, label, err)
			}
			switch {
			case t && p:
				c.TP++
			case t:
				c.FN++
			case p:
				c.FP++
			default:
				c.TN++
			}
		}
		res.Labels[j] = c
		res.Accuracy += c.Accuracy()
	}
	res.Accuracy /= float64(len(labels))
	return res, nil
}

func binary(v float64) (bool, error) {
	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("value %v is not 0 or 1", v)
	}
}

// Align cuts truth and pred to the first min(numPreds, pred rows)
// rows and the first labels columns. Truth must cover every scored row.
func Align(truth, pred *mat.Dense, numPreds, labels int) (mat.Matrix, mat.Matrix, error) {
	tr, tc := truth.Dims()
	pr, pc := pred.Dims()
	n := min(numPreds, pr)
	if tr < n {
		return nil, nil, fmt.Errorf("truth matrix has %d rows, need %d", tr, n)
	}
	if tc < labels {
		return nil, nil, fmt.Errorf("truth matrix has %d columns, need %d", tc, labels)
	}
	if pc < labels {
		return nil, nil, fmt.Errorf("prediction matrix has %d columns, need %d", pc, labels)
	}
	return truth.Slice(0, n, 0, labels), pred.Slice(0, n, 0, labels), nil
}

// Rows flattens the result into the key/value rows of metrics.csv:
// "<label>-tn", "-fp", "-fn", "-tp" per label, then "accuracy".
func (r *Result) Rows() [][]string {
	rows := make([][]string, 0, len(r.Labels)*4+1)
	for _, c := range r.Labels {
		rows = append(rows,
			[]string{c.Label + "-tn", strconv.Itoa(c.TN)},
			[]string{c.Label + "-fp", strconv.Itoa(c.FP)},
			[]string{c.Label + "-fn", strconv.Itoa(c.FN)},
			[]string{c.Label + "-tp", strconv.Itoa(c.TP)},
		)
	}
	rows = append(rows, []string{"accuracy", strconv.FormatFloat(r.Accuracy, 'f', -1, 64)})
	return rows
}
