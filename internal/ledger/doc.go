// Package ledger keeps a SQLite history of proxymill runs.
//
// Each run records the passes it rendered, the orchestrator outcome per pass,
// and the final state of every card face the pass was responsible for. The
// history backs the `proxymill history` command and lets an operator see which
// cards keep failing across runs. The schema is versioned; a mismatched
// database must be deleted before it can be reused.
package ledger
