// Package labelset provides the typed label sets annotators assign to a
// reflection, and the parser for their serialized form.
package labelset

import (
	"slices"
	"strings"
)

// Label is a category identifier. Integer identifiers are stored in their
// canonical decimal form so that 1 and 01 name the same category. String
// identifiers are stored as-is unless they could be mistaken for an integer
// (see Text).
type Label string

// Text returns the label for a string item. A string that spells a
// canonical integer, or that starts with a quote, is kept wrapped in single
// quotes, so the string '1' and the integer 1 stay distinct labels.
func Text(s string) Label {
	if isCanonicalInt(s) || strings.HasPrefix(s, "'") {
		return Label("'" + s + "'")
	}
	return Label(s)
}

func isCanonicalInt(s string) bool {
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Set is an immutable, sorted, duplicate-free collection of labels.
// The zero value is the empty set.
type Set struct {
	labels []Label
}

// New builds a Set from labels, dropping duplicates.
func New(labels ...Label) Set {
	if len(labels) == 0 {
		return Set{}
	}
	out := slices.Clone(labels)
	slices.Sort(out)
	return Set{labels: slices.Compact(out)}
}

// Len returns the number of labels in the set.
func (s Set) Len() int { return len(s.labels) }

// Contains reports whether l is in the set.
func (s Set) Contains(l Label) bool {
	_, ok := slices.BinarySearch(s.labels, l)
	return ok
}

// Labels returns a copy of the labels in sorted order.
func (s Set) Labels() []Label { return slices.Clone(s.labels) }

// Equal reports whether both sets hold the same labels.
func (s Set) Equal(o Set) bool { return slices.Equal(s.labels, o.labels) }

// SubsetOf reports whether every label of s is also in o.
func (s Set) SubsetOf(o Set) bool {
	return s.IntersectionLen(o) == s.Len()
}

// IntersectionLen returns |s ∩ o|.
func (s Set) IntersectionLen(o Set) int {
	n := 0
	i, j := 0, 0
	for i < len(s.labels) && j < len(o.labels) {
		switch strings.Compare(string(s.labels[i]), string(o.labels[j])) {
		case 0:
			n++
			i++
			j++
		case -1:
			i++
		default:
			j++
		}
	}
	return n
}

// UnionLen returns |s ∪ o|.
func (s Set) UnionLen(o Set) int {
	return s.Len() + o.Len() - s.IntersectionLen(o)
}

// DifferenceLen returns |s − o|.
func (s Set) DifferenceLen(o Set) int {
	return s.Len() - s.IntersectionLen(o)
}

// String renders the set in brace notation, e.g. {1, 2}.
func (s Set) String() string {
	parts := make([]string, len(s.labels))
	for i, l := range s.labels {
		parts[i] = string(l)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
