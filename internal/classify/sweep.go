package classify

import (
	"context"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/mlcompare/mlcompare/internal/metrics"
)

// Trial is one classification run at a fixed temperature.
type Trial struct {
	Temperature float64
	Predictions []*Prediction
	Result      *metrics.Result
}

// Matrix stacks prediction vectors into a rows x labels 0/1 matrix.
func Matrix(preds []*Prediction, labels int) *mat.Dense {
	if len(preds) == 0 {
		return nil
	}
	m := mat.NewDense(len(preds), labels, nil)
	for i, p := range preds {
		m.SetRow(i, p.Vector)
	}
	return m
}

// Sweep runs one trial per temperature over the first limit reflections
// and scores each against the matching rows of truth. The best trial has
// the highest accuracy; the earliest wins ties.
func (c *Classifier) Sweep(ctx context.Context, reflections []string, truth *mat.Dense, limit int, temperatures []float64) (*Trial, []*Trial, error) {
	if len(temperatures) == 0 {
		return nil, nil, errors.New("no temperatures to try")
	}
	if len(reflections) == 0 {
		return nil, nil, errors.New("no reflections to classify")
	}
	if truth == nil {
		return nil, nil, errors.New("no truth matrix")
	}

	var (
		trials []*Trial
		best   *Trial
	)
	for _, temp := range temperatures {
		preds, err := c.ClassifyAll(ctx, reflections, limit, temp)
		if err != nil {
			return nil, nil, fmt.Errorf("temperature %g: %w", temp, err)
		}

		want, got, err := metrics.Align(truth, Matrix(preds, len(c.labels)), len(preds), len(c.labels))
		if err != nil {
			return nil, nil, err
		}
		res, err := metrics.Evaluate(want, got, c.labels)
		if err != nil {
			return nil, nil, fmt.Errorf("temperature %g: score: %w", temp, err)
		}

		t := &Trial{Temperature: temp, Predictions: preds, Result: res}
		trials = append(trials, t)
		c.logger.InfoContext(ctx, "trial complete",
			"temperature", temp, "samples", res.Samples, "accuracy", res.Accuracy)

		if best == nil || res.Accuracy > best.Result.Accuracy {
			best = t
		}
	}
	return best, trials, nil
}
