package render

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"golang.org/x/sync/errgroup"
)

const maxLineBytes = 1 << 20

// Command describes one subprocess invocation.
type Command struct {
	Dir    string
	Binary string
	Args   []string
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, cmd Command, onStdout, onStderr func(string)) error
}

// CommandExecutor runs commands with os/exec, streaming both output pipes line by line.
// Callbacks are never invoked concurrently.
type CommandExecutor struct{}

func (CommandExecutor) Run(ctx context.Context, command Command, onStdout, onStderr func(string)) error {
	cmd := exec.CommandContext(ctx, command.Binary, command.Args...) //nolint:gosec
	cmd.Dir = command.Dir
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	var mu sync.Mutex
	forward := func(fn func(string)) func(string) {
		return func(line string) {
			if fn == nil {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			fn(line)
		}
	}

	var g errgroup.Group
	g.Go(func() error { return scanLines(stdout, forward(onStdout)) })
	g.Go(func() error { return scanLines(stderr, forward(onStderr)) })

	if scanErr := g.Wait(); scanErr != nil {
		_ = cmd.Wait()
		return fmt.Errorf("scan output: %w", scanErr)
	}
	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("wait command: %w", err)
	}
	return nil
}

func scanLines(r io.Reader, fn func(string)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		fn(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		// Keep the pipe drained so the child cannot block on a full buffer.
		_, _ = io.Copy(io.Discard, r)
		return err
	}
	return nil
}
