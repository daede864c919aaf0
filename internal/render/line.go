package render

import "strings"

// failureMarker is matched case-insensitively anywhere in a renderer line.
const failureMarker = "failed"

// minFailureTokens is the shortest failure line that can carry a card name:
// severity, source, progress, duration, name..., status.
const minFailureTokens = 5

// LineKind classifies one renderer output line.
type LineKind int

const (
	LinePlain LineKind = iota
	LineFailure
	LineUnattributable
)

func (k LineKind) String() string {
	switch k {
	case LineFailure:
		return "failure"
	case LineUnattributable:
		return "unattributable"
	default:
		return "plain"
	}
}

// ClassifyLine decides whether line reports a failed card and, if so, which one.
// The expected failure format is
//
//	SEVERITY [Source] N/M DURATION Card Name // Other Name STATUS
//
// and the name is every token between the duration and the final status.
func ClassifyLine(line string) (LineKind, string) {
	if !strings.Contains(strings.ToLower(line), failureMarker) {
		return LinePlain, ""
	}
	tokens := strings.Fields(line)
	if len(tokens) < minFailureTokens {
		return LineUnattributable, ""
	}
	name := strings.Join(tokens[4:len(tokens)-1], " ")
	if name == "" {
		return LineUnattributable, ""
	}
	return LineFailure, name
}
