package agreement

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlcompare/mlcompare/internal/labelset"
)

func set(labels ...labelset.Label) labelset.Set { return labelset.New(labels...) }

func TestSimilarity_Scenarios(t *testing.T) {
	tests := []struct {
		name string
		a, b labelset.Set
		want float64
	}{
		{"identical", set("1", "2"), set("1", "2"), 1.0},
		{"subset", set("1", "2"), set("1", "2", "3"), 0.67 * 2.0 / 3.0},
		{"overlap", set("1", "2"), set("2", "3"), 0.33 * 1.0 / 3.0},
		{"disjoint", set("1", "2"), set("3", "4"), 0.0},
		{"both empty", set(), set(), 1.0},
		{"one empty", set(), set("1"), 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Similarity(tt.a, tt.b), 1e-12)
		})
	}

	assert.InDelta(t, 0.4467, Similarity(set("1", "2"), set("1", "2", "3")), 1e-4)
	assert.InDelta(t, 0.1100, Similarity(set("1", "2"), set("2", "3")), 1e-4)
}

func TestSimilarity_Properties(t *testing.T) {
	universe := []labelset.Label{"0", "1", "2", "3"}

	// Every subset of a four-label universe.
	var sets []labelset.Set
	for mask := 0; mask < 1<<len(universe); mask++ {
		var ls []labelset.Label
		for i, l := range universe {
			if mask&(1<<i) != 0 {
				ls = append(ls, l)
			}
		}
		sets = append(sets, set(ls...))
	}

	for _, a := range sets {
		assert.Equal(t, 1.0, Similarity(a, a), "self similarity of %s", a)
		for _, b := range sets {
			s := Similarity(a, b)
			assert.Equal(t, s, Similarity(b, a), "symmetry for %s, %s", a, b)
			assert.GreaterOrEqual(t, s, 0.0)
			assert.LessOrEqual(t, s, 1.0)
			if a.Len() > 0 && b.Len() > 0 && a.IntersectionLen(b) == 0 {
				assert.Equal(t, 0.0, s, "disjoint %s, %s", a, b)
			}
		}
	}
}

func TestGroupAgreement(t *testing.T) {
	got, err := GroupAgreement([]labelset.Set{set("1"), set("1"), set("2")})
	require.NoError(t, err)
	assert.InDelta(t, 1.0/3.0, got, 1e-12)

	a, b := set("1", "2"), set("2", "3")
	pair, err := GroupAgreement([]labelset.Set{a, b})
	require.NoError(t, err)
	assert.Equal(t, Similarity(a, b), pair)
}

func TestGroupAgreement_TooFewSets(t *testing.T) {
	for _, sets := range [][]labelset.Set{nil, {set("1")}} {
		_, err := GroupAgreement(sets)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidInput))
	}
}

func TestScoreAll(t *testing.T) {
	scores, err := ScoreAll([]Annotation{
		{ID: "r1", Raw: "[{1, 2}, {1, 2}]"},
		{ID: "r2", Raw: "[{1}, {1}, {2}]"},
		{ID: "bad", Raw: "[{1, 2}"},
		{ID: "lonely", Raw: "[{1}]"},
		{ID: "r3", Raw: "[{1}, {2}]"},
		{ID: "r3", Raw: "[{1}, {1}]"},
	})
	require.Error(t, err)

	assert.Len(t, scores, 3)
	assert.InDelta(t, 1.0, scores["r1"], 1e-12)
	assert.InDelta(t, 1.0/3.0, scores["r2"], 1e-12)
	assert.InDelta(t, 1.0, scores["r3"], 1e-12, "duplicate ids keep the highest score")

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "bad", perr.ID)

	var inv *InvalidInputError
	require.True(t, errors.As(err, &inv))
	assert.Equal(t, "lonely", inv.ID)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.True(t, strings.Contains(err.Error(), `"lonely"`))
}

func TestScoreAll_Clean(t *testing.T) {
	scores, err := ScoreAll([]Annotation{{ID: "a", Raw: "[set(), set()]"}})
	require.NoError(t, err)
	assert.Equal(t, Scores{"a": 1.0}, scores)
}

type record struct {
	id   string
	text string
}

func recordID(r record) string { return r.id }

func TestFilter(t *testing.T) {
	records := []record{{"a", "first"}, {"b", "second"}, {"c", "third"}, {"d", "missing"}}
	scores := Scores{"a": 0.9, "b": 0.5, "c": 1.0}

	got := Filter(records, recordID, scores, 0.70)
	assert.Equal(t, []record{{"a", "first"}, {"c", "third"}}, got)

	again := Filter(got, recordID, scores, 0.70)
	assert.Equal(t, got, again, "filtering is idempotent")
}

func TestFilter_ThresholdInclusive(t *testing.T) {
	records := []record{{"a", ""}, {"b", ""}}
	got := Filter(records, recordID, Scores{"a": 0.7, "b": 0.69999}, 0.7)
	assert.Equal(t, []record{{"a", ""}}, got)
}

func TestSummarize(t *testing.T) {
	sum := Summarize(Scores{"a": 0.9, "b": 0.5, "c": 1.0, "d": 0.9}, 0.7)
	assert.Equal(t, 4, sum.Scored)
	assert.Equal(t, 3, sum.Passing)
	assert.Equal(t, []float64{0.5, 0.9, 1.0}, sum.Distinct)
}
