package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"proxymill/internal/services"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(exitCode(err))
	}
}

// exitCode separates runs that never started rendering (2) from runs that
// rendered but left work behind (1).
func exitCode(err error) int {
	if services.IsFatal(err) {
		return 2
	}
	return 1
}
