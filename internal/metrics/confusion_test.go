package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestEvaluate(t *testing.T) {
	truth := mat.NewDense(4, 2, []float64{
		1, 0,
		1, 1,
		0, 0,
		0, 1,
	})
	pred := mat.NewDense(4, 2, []float64{
		1, 1,
		0, 1,
		0, 0,
		1, 0,
	})

	res, err := Evaluate(truth, pred, []string{"Github", "Assignments"})
	require.NoError(t, err)

	assert.Equal(t, 4, res.Samples)
	assert.Equal(t, Confusion{Label: "Github", TN: 1, FP: 1, FN: 1, TP: 1}, res.Labels[0])
	assert.Equal(t, Confusion{Label: "Assignments", TN: 1, FP: 1, FN: 1, TP: 1}, res.Labels[1])
	assert.InDelta(t, 0.5, res.Accuracy, 1e-12)
}

func TestEvaluate_OnlyConfiguredLabels(t *testing.T) {
	truth := mat.NewDense(2, 3, []float64{1, 0, 1, 0, 1, 1})
	pred := mat.NewDense(2, 3, []float64{1, 0, 0, 0, 1, 0})

	res, err := Evaluate(truth, pred, []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, res.Labels, 2)
	assert.Equal(t, 1.0, res.Accuracy)
}

func TestEvaluate_Errors(t *testing.T) {
	two := mat.NewDense(2, 2, []float64{1, 0, 0, 1})

	_, err := Evaluate(two, mat.NewDense(1, 2, []float64{1, 0}), []string{"a"})
	assert.ErrorContains(t, err, "shape mismatch")

	_, err = Evaluate(two, two, []string{"a", "b", "c"})
	assert.Error(t, err)

	_, err = Evaluate(two, two, nil)
	assert.Error(t, err)

	_, err = Evaluate(two, mat.NewDense(2, 2, []float64{1, 0, 2, 1}), []string{"a", "b"})
	assert.ErrorContains(t, err, "not 0 or 1")
}

func TestAlign(t *testing.T) {
	truth := mat.NewDense(4, 3, []float64{
		1, 0, 1,
		0, 1, 1,
		1, 1, 0,
		0, 0, 0,
	})
	pred := mat.NewDense(3, 2, []float64{1, 0, 0, 1, 1, 1})

	want, got, err := Align(truth, pred, 150, 2)
	require.NoError(t, err)
	r, c := want.Dims()
	assert.Equal(t, []int{3, 2}, []int{r, c})
	r, c = got.Dims()
	assert.Equal(t, []int{3, 2}, []int{r, c})
	assert.Equal(t, 1.0, want.At(2, 1))

	want, _, err = Align(truth, pred, 2, 2)
	require.NoError(t, err)
	r, _ = want.Dims()
	assert.Equal(t, 2, r)

	_, _, err = Align(truth.Slice(0, 2, 0, 3).(*mat.Dense), pred, 150, 2)
	assert.ErrorContains(t, err, "truth matrix has 2 rows, need 3")

	_, _, err = Align(truth, pred, 150, 3)
	assert.ErrorContains(t, err, "prediction matrix has 2 columns, need 3")
}

func TestResultRows(t *testing.T) {
	res := &Result{
		Labels:   []Confusion{{Label: "Github", TN: 3, FP: 1, FN: 0, TP: 2}},
		Samples:  6,
		Accuracy: 0.8333333333333334,
	}
	assert.Equal(t, [][]string{
		{"Github-tn", "3"},
		{"Github-fp", "1"},
		{"Github-fn", "0"},
		{"Github-tp", "2"},
		{"accuracy", "0.8333333333333334"},
	}, res.Rows())
}
