package workflow

// State is the orchestrator's position in its per-pass state machine.
type State string

const (
	StateBatching         State = "batching"
	StateRunning          State = "running"
	StateRetrying         State = "retrying"
	StateSucceeded        State = "succeeded"
	StateExhaustedRetries State = "exhausted_retries"
	StateInterrupted      State = "interrupted"
)

// Terminal reports whether no further work follows s.
func (s State) Terminal() bool {
	switch s {
	case StateSucceeded, StateExhaustedRetries, StateInterrupted:
		return true
	default:
		return false
	}
}
