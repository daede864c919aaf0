// Package preflight verifies the files, directories, and programs a run needs
// before any batch is rendered.
//
// The pipeline calls RunAll and aborts when Err reports a failure, so a missing
// renderer jar or template never produces a pass full of doomed batches. The
// CLI "proxymill check" command prints the same results as a table.
package preflight
