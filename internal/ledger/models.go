package ledger

import "time"

// RunStatus is the final disposition of a run.
type RunStatus string

const (
	RunRunning    RunStatus = "running"
	RunSucceeded  RunStatus = "succeeded"
	RunIncomplete RunStatus = "incomplete"
	RunFailed     RunStatus = "failed"
)

// CardStatus is the outcome of one card face within a pass.
type CardStatus string

const (
	CardRendered CardStatus = "rendered"
	CardMissing  CardStatus = "missing"
	CardRejected CardStatus = "rejected"
	CardFailed   CardStatus = "failed"
)

// Run is one invocation of the rendering pipeline.
type Run struct {
	ID         string
	Passes     []string
	Status     RunStatus
	Message    string
	StartedAt  time.Time
	FinishedAt *time.Time
}

// Duration returns the run's wall time, or zero while it is still running.
func (r Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// PassResult summarizes one rendering pass.
type PassResult struct {
	Pass        string
	State       string
	Cards       int
	Batches     int
	RetryRounds int
	Failures    int
	Copied      int
	Discarded   int
	Unrendered  int
}

// CardResult is the outcome of one card face.
type CardResult struct {
	DisplayName string
	CardName    string
	Face        string
	Status      CardStatus
}
