// Package notifications delivers run events via ntfy.
//
// NewService returns a no-op notifier when no topic is configured, so the
// pipeline can publish unconditionally. Delivery failures are returned to the
// caller, which logs them without affecting the run's outcome.
package notifications
