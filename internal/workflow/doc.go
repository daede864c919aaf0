// Package workflow drives one rendering pass through the external renderer.
//
// The Orchestrator partitions the pass's cards into bounded batches, runs them
// strictly one after another, and collects the names of cards the renderer
// reported as failed. Those names are resolved back to both faces of each card
// and re-rendered in retry rounds until a round comes back clean or the retry
// ceiling is reached. Every pass starts from a fresh Orchestrator so counters
// never leak between templates.
//
// Batches never overlap because the renderer shares working files inside its
// directory; throughput is traded for predictable output.
package workflow
