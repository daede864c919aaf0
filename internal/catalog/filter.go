package catalog

import (
	"slices"
	"strings"
)

// Reason names the predicate that dropped an entry.
type Reason string

const (
	ReasonAllowed      Reason = ""
	ReasonReprint      Reason = "reprint"
	ReasonLayout       Reason = "layout"
	ReasonPromo        Reason = "promo"
	ReasonVariation    Reason = "variation"
	ReasonFrameEffects Reason = "frame_effects"
	ReasonSetType      Reason = "set_type"
	ReasonBorder       Reason = "border_color"
	ReasonIllegalSet   Reason = "illegal_set"
)

// Rules are the configurable parts of the filter.
type Rules struct {
	IllegalSetCodes  []string
	ExcludedSetTypes []string
}

// Filter applies the ordered exclusion predicates.
type Filter struct {
	illegalSetCodes  []string
	excludedSetTypes []string
}

// NewFilter builds a filter from rules. Codes and set types are compared lowercase.
func NewFilter(rules Rules) *Filter {
	f := &Filter{}
	for _, code := range rules.IllegalSetCodes {
		if code = strings.ToLower(strings.TrimSpace(code)); code != "" {
			f.illegalSetCodes = append(f.illegalSetCodes, code)
		}
	}
	for _, setType := range rules.ExcludedSetTypes {
		if setType = strings.ToLower(strings.TrimSpace(setType)); setType != "" {
			f.excludedSetTypes = append(f.excludedSetTypes, setType)
		}
	}
	return f
}

// Allow reports whether entry is in scope. When it is not, the returned Reason
// names the first predicate that rejected it.
func (f *Filter) Allow(entry Entry) (bool, Reason) {
	switch {
	case entry.Reprint:
		return false, ReasonReprint
	case entry.Layout != "split" && entry.Layout != "adventure":
		return false, ReasonLayout
	case entry.Promo:
		return false, ReasonPromo
	case entry.Variation:
		return false, ReasonVariation
	case len(entry.FrameEffects) > 0:
		return false, ReasonFrameEffects
	case slices.Contains(f.excludedSetTypes, entry.SetType):
		return false, ReasonSetType
	case entry.BorderColor != "black":
		return false, ReasonBorder
	}
	for _, code := range f.illegalSetCodes {
		if strings.Contains(entry.SetCode, code) {
			return false, ReasonIllegalSet
		}
	}
	return true, ReasonAllowed
}

// Stats counts dropped entries per reason.
type Stats struct {
	Total   int
	Allowed int
	Dropped map[Reason]int
}

// Apply returns the allowed entries in catalog order along with drop counts.
func (f *Filter) Apply(entries []Entry) ([]Entry, Stats) {
	stats := Stats{Total: len(entries), Dropped: make(map[Reason]int)}
	allowed := make([]Entry, 0, len(entries)/8)
	for _, entry := range entries {
		ok, reason := f.Allow(entry)
		if !ok {
			stats.Dropped[reason]++
			continue
		}
		allowed = append(allowed, entry)
	}
	stats.Allowed = len(allowed)
	return allowed, stats
}
