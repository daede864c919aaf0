package reconcile_test

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"proxymill/internal/reconcile"
)

// cmpCounts compares reports by their counters only.
func cmpCounts() cmp.Option {
	return cmpopts.IgnoreFields(reconcile.Report{}, "Rendered", "Missing")
}
