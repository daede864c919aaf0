package reconcile

import "proxymill/internal/card"

// Verdict is the reconciler's decision for one candidate.
type Verdict int

const (
	Keep Verdict = iota
	Discard
	// Deferred marks a candidate whose card belongs to another pass.
	Deferred
)

func (v Verdict) String() string {
	switch v {
	case Keep:
		return "keep"
	case Deferred:
		return "deferred"
	default:
		return "discard"
	}
}

// Decide returns the verdict for a candidate with the given ordinal that
// matched rec during pass.
//
// The standard pass keeps even ordinals for front faces and odd ordinals for
// back faces, and defers every card templated for another pass. The other
// passes only produce a usable back, so they keep back faces templated for
// that pass regardless of parity.
func Decide(pass card.Template, rec *card.Record, ordinal int) Verdict {
	even := ordinal%2 == 0
	if pass == card.TemplateStandard {
		if rec.Template != card.TemplateStandard {
			return Deferred
		}
		if (rec.Face == card.Front) == even {
			return Keep
		}
		return Discard
	}
	if rec.Face != card.Back {
		return Discard
	}
	if rec.Template != pass {
		return Deferred
	}
	return Keep
}
