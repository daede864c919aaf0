package logs_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"proxymill/internal/logs"
)

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "proxymill.log")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

func appendLog(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open append: %v", err)
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("append log: %v", err)
	}
}

func TestTailLastLines(t *testing.T) {
	path := writeLog(t, "a\nb\nc\n")

	lines, offset, err := logs.Tail(path, 2, logs.Filter{})
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if diff := cmp.Diff([]string{"b", "c"}, lines); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}
	if offset != 6 {
		t.Fatalf("offset = %d, want 6", offset)
	}
}

func TestTailFiltersAndSkipsPartialLine(t *testing.T) {
	path := writeLog(t, "INFO batch=standard_1 start\nINFO batch=standard_2 start\nWARN batch=standard_1 FAILED\nINFO batch=standard_1 par")

	lines, offset, err := logs.Tail(path, 10, logs.Filter{Contains: []string{"batch=standard_1"}})
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	want := []string{"INFO batch=standard_1 start", "WARN batch=standard_1 FAILED"}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}
	if offset != int64(len("INFO batch=standard_1 start\nINFO batch=standard_2 start\nWARN batch=standard_1 FAILED\n")) {
		t.Fatalf("offset should stop before the partial line, got %d", offset)
	}
}

func TestTailMissingFile(t *testing.T) {
	lines, offset, err := logs.Tail(filepath.Join(t.TempDir(), "absent.log"), 5, logs.Filter{})
	if err != nil || lines != nil || offset != 0 {
		t.Fatalf("expected empty result, got %v %d %v", lines, offset, err)
	}
}

func TestFollowEmitsAppendedLines(t *testing.T) {
	path := writeLog(t, "start\n")
	_, offset, err := logs.Tail(path, 0, logs.Filter{})
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var got []string
	received := make(chan struct{}, 4)
	done := make(chan error, 1)
	go func() {
		done <- logs.Follow(ctx, path, offset, 10*time.Millisecond, logs.Filter{}, func(line string) {
			mu.Lock()
			got = append(got, line)
			mu.Unlock()
			received <- struct{}{}
		})
	}()

	appendLog(t, path, "later\n")
	select {
	case <-received:
	case <-time.After(5 * time.Second):
		t.Fatal("follow did not emit appended line")
	}
	cancel()
	if err := <-done; err != context.Canceled {
		t.Fatalf("Follow returned %v, want context.Canceled", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if diff := cmp.Diff([]string{"later"}, got); diff != "" {
		t.Fatalf("followed lines mismatch (-want +got):\n%s", diff)
	}
}
