package render_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"proxymill/internal/render"
)

func TestCommandExecutorStreamsBothPipes(t *testing.T) {
	dir := t.TempDir()
	var stdout, stderr []string
	err := render.CommandExecutor{}.Run(context.Background(), render.Command{
		Dir:    dir,
		Binary: "/bin/sh",
		Args:   []string{"-c", "echo one; echo two; echo oops >&2"},
	}, func(line string) {
		stdout = append(stdout, line)
	}, func(line string) {
		stderr = append(stderr, line)
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if diff := cmp.Diff([]string{"one", "two"}, stdout); diff != "" {
		t.Fatalf("stdout mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"oops"}, stderr); diff != "" {
		t.Fatalf("stderr mismatch (-want +got):\n%s", diff)
	}
}

func TestCommandExecutorReportsExitStatus(t *testing.T) {
	var lines []string
	err := render.CommandExecutor{}.Run(context.Background(), render.Command{
		Dir:    t.TempDir(),
		Binary: "/bin/sh",
		Args:   []string{"-c", "echo partial; exit 3"},
	}, func(line string) {
		lines = append(lines, line)
	}, nil)
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}
	if diff := cmp.Diff([]string{"partial"}, lines); diff != "" {
		t.Fatalf("stdout mismatch (-want +got):\n%s", diff)
	}
}
