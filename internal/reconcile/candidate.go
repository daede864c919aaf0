package reconcile

import (
	"path/filepath"
	"strconv"
	"strings"
)

const candidateExt = ".png"

// Candidate is one numbered image produced by the renderer.
type Candidate struct {
	Path        string
	Ordinal     int
	DisplayName string
}

// Even reports whether the ordinal is even.
func (c Candidate) Even() bool { return c.Ordinal%2 == 0 }

// ParseCandidate splits a renderer file name into its ordinal and display name.
// The ordinal may carry letter suffixes the renderer uses for repeated faces.
// Files that are not PNGs or lack a positive ordinal are rejected.
func ParseCandidate(path string) (Candidate, bool) {
	base := filepath.Base(path)
	if !strings.EqualFold(filepath.Ext(base), candidateExt) {
		return Candidate{}, false
	}
	stem := base[:len(base)-len(candidateExt)]
	number, name, ok := strings.Cut(stem, " ")
	if !ok {
		return Candidate{}, false
	}
	number = strings.TrimRightFunc(number, func(r rune) bool {
		return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
	})
	ordinal, err := strconv.Atoi(number)
	if err != nil || ordinal <= 0 {
		return Candidate{}, false
	}
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return Candidate{}, false
	}
	return Candidate{Path: path, Ordinal: ordinal, DisplayName: name}, true
}
