// Package agreement scores inter-annotator agreement on set-valued labels
// and filters a dataset down to the reflections annotators agreed on.
//
// Pairwise similarity is the MASI measure (Passonneau, 2006) with the
// Jaccard term corrected: the score is M × J, where J is the Jaccard index
// and M is 1 for identical sets, 0.67 when one set contains the other, 0.33
// when the sets overlap without containment and 0 when they are disjoint.
package agreement

import (
	"gonum.org/v1/gonum/stat"

	"github.com/mlcompare/mlcompare/internal/labelset"
)

// Monotonicity weights from the MASI paper, as published (not 2/3, 1/3).
const (
	weightIdentical = 1.0
	weightSubset    = 0.67
	weightOverlap   = 0.33
	weightDisjoint  = 0.0
)

// Similarity returns the MASI similarity of two label sets, in [0, 1].
// Two empty sets agree perfectly.
func Similarity(a, b labelset.Set) float64 {
	union := a.UnionLen(b)
	if union == 0 {
		return weightIdentical
	}
	inter := a.IntersectionLen(b)
	jaccard := float64(inter) / float64(union)
	return monotonicity(a, b, inter) * jaccard
}

func monotonicity(a, b labelset.Set, inter int) float64 {
	switch {
	case a.Equal(b):
		return weightIdentical
	case a.SubsetOf(b) || b.SubsetOf(a):
		return weightSubset
	case inter > 0 && a.DifferenceLen(b) > 0 && b.DifferenceLen(a) > 0:
		return weightOverlap
	default:
		return weightDisjoint
	}
}

// GroupAgreement returns the mean pairwise Similarity over every unordered
// pair of annotators. At least two label sets are required.
func GroupAgreement(sets []labelset.Set) (float64, error) {
	if len(sets) < 2 {
		return 0, &InvalidInputError{Sets: len(sets)}
	}
	pairs := make([]float64, 0, len(sets)*(len(sets)-1)/2)
	for i := 0; i < len(sets); i++ {
		for j := i + 1; j < len(sets); j++ {
			pairs = append(pairs, Similarity(sets[i], sets[j]))
		}
	}
	return stat.Mean(pairs, nil), nil
}
