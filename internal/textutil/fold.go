package textutil

import (
	"strings"

	"golang.org/x/text/cases"
)

// Fold returns the case-folded form of s with surrounding whitespace trimmed.
// cases.Caser is stateful, so each call uses its own.
func Fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// EqualFold reports whether a and b are the same name after folding.
func EqualFold(a, b string) bool {
	return Fold(a) == Fold(b)
}

// ContainsFold reports whether substr occurs in s after folding both.
func ContainsFold(s, substr string) bool {
	return strings.Contains(Fold(s), Fold(substr))
}

// FoldSet is a set of folded names that remembers the first spelling seen.
type FoldSet struct {
	order    []string
	original map[string]string
}

// NewFoldSet builds a set from names. Blank names are ignored.
func NewFoldSet(names ...string) *FoldSet {
	s := &FoldSet{original: make(map[string]string, len(names))}
	for _, name := range names {
		s.Add(name)
	}
	return s
}

// Add inserts name and reports whether it was new.
func (s *FoldSet) Add(name string) bool {
	key := Fold(name)
	if key == "" {
		return false
	}
	if _, ok := s.original[key]; ok {
		return false
	}
	s.original[key] = strings.TrimSpace(name)
	s.order = append(s.order, key)
	return true
}

// Contains reports whether name is in the set.
func (s *FoldSet) Contains(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.original[Fold(name)]
	return ok
}

// Len returns the number of names.
func (s *FoldSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Names returns the original spelling of every name in insertion order.
func (s *FoldSet) Names() []string {
	return s.Missing(nil)
}

// Missing returns, in insertion order, the original spelling of every name not in seen.
func (s *FoldSet) Missing(seen *FoldSet) []string {
	if s == nil {
		return nil
	}
	var out []string
	for _, key := range s.order {
		if !seen.Contains(key) {
			out = append(out, s.original[key])
		}
	}
	return out
}
