package pipeline

import (
	"proxymill/internal/catalog"
	"proxymill/internal/derive"
	"proxymill/internal/preflight"
	"proxymill/internal/reconcile"
	"proxymill/internal/workflow"
)

// PassSummary is the result of rendering and reconciling one pass.
type PassSummary struct {
	Pass         string
	Cards        int
	Outcome      workflow.Outcome
	Reconcile    reconcile.Report
	ReconcileErr error
}

// Summary describes a finished run.
type Summary struct {
	RunID      string
	Preflight  []preflight.Result
	Entries    int
	Filter     catalog.Stats
	Derive     derive.Report
	Passes     []PassSummary
	Unrendered []string
	RerunPath  string
}

// Complete reports whether every pass succeeded and every card has an image.
func (s Summary) Complete() bool {
	if len(s.Unrendered) > 0 {
		return false
	}
	for _, p := range s.Passes {
		if !p.Outcome.Succeeded() || p.ReconcileErr != nil {
			return false
		}
	}
	return true
}

func (s Summary) exhausted() bool {
	for _, p := range s.Passes {
		if p.Outcome.State == workflow.StateExhaustedRetries {
			return true
		}
	}
	return false
}
