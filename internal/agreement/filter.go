package agreement

import (
	"errors"
	"slices"

	"github.com/mlcompare/mlcompare/internal/labelset"
)

// Annotation pairs a reflection identifier with its serialized label sets,
// one per annotator.
type Annotation struct {
	ID  string
	Raw string
}

// Scores maps reflection identifiers to their agreement.
type Scores map[string]float64

// ScoreAll computes the group agreement of every annotation.
//
// A bad record does not stop the batch: every record that scores is
// returned, along with the per-record *ParseError and *InvalidInputError
// values joined into one error. When an identifier appears more than once
// the highest score is kept.
func ScoreAll(annotations []Annotation) (Scores, error) {
	scores := make(Scores, len(annotations))
	var errs []error
	for _, a := range annotations {
		score, err := Score(a)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if prev, ok := scores[a.ID]; !ok || score > prev {
			scores[a.ID] = score
		}
	}
	return scores, errors.Join(errs...)
}

// Score parses one annotation and returns its group agreement.
func Score(a Annotation) (float64, error) {
	sets, err := labelset.Parse(a.Raw)
	if err != nil {
		return 0, &ParseError{ID: a.ID, Err: err}
	}
	score, err := GroupAgreement(sets)
	if err != nil {
		var inv *InvalidInputError
		if errors.As(err, &inv) {
			inv.ID = a.ID
		}
		return 0, err
	}
	return score, nil
}

// Filter keeps the records whose identifier scores at least threshold,
// in their original order. Records without a score are dropped.
func Filter[T any](records []T, id func(T) string, scores Scores, threshold float64) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		if score, ok := scores[id(r)]; ok && score >= threshold {
			out = append(out, r)
		}
	}
	return out
}

// Distinct returns the distinct agreement values in ascending order.
func (s Scores) Distinct() []float64 {
	vals := make([]float64, 0, len(s))
	for _, v := range s {
		vals = append(vals, v)
	}
	slices.Sort(vals)
	return slices.Compact(vals)
}

// Summary describes a scored batch against a threshold.
type Summary struct {
	Scored   int
	Passing  int
	Distinct []float64
}

// Summarize counts the identifiers meeting threshold.
func Summarize(s Scores, threshold float64) Summary {
	sum := Summary{Scored: len(s), Distinct: s.Distinct()}
	for _, v := range s {
		if v >= threshold {
			sum.Passing++
		}
	}
	return sum
}
