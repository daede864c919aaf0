package logging_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"proxymill/internal/config"
	"proxymill/internal/logging"
	"proxymill/internal/services"
)

func readLog(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	return string(content)
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("pipeline starting", logging.String("catalog", "cards.json"))

	content := readLog(t, filepath.Join(cfg.Paths.LogDir, logging.LogFileName))
	if !strings.Contains(content, "pipeline starting") || !strings.Contains(content, "catalog=cards.json") {
		t.Fatalf("unexpected log file content: %q", content)
	}
	if strings.Contains(content, "\x1b[") {
		t.Fatalf("log file must not contain color codes: %q", content)
	}
}

func TestConsoleLoggerFormatsComponentAndAttrs(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	component := logging.NewComponentLogger(logger, "renderer")
	component.Info("batch finished", logging.String("batch", "standard_1"), logging.Int("cards", 20))
	component.Debug("hidden at info level")

	content := readLog(t, logPath)
	if !strings.Contains(content, "INFO renderer: batch finished batch=standard_1 cards=20") {
		t.Fatalf("unexpected console line: %q", content)
	}
	if strings.Contains(content, "hidden at info level") {
		t.Fatalf("debug line leaked at info level: %q", content)
	}
	if strings.Contains(content, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
}

func TestConsoleLoggerQuotesValuesWithSpaces(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "quote.log")
	logger, err := logging.New(logging.Options{Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("card rejected", logging.String(logging.FieldCard, "Bonecrusher Giant // Stomp"))

	content := readLog(t, logPath)
	if !strings.Contains(content, `card="Bonecrusher Giant // Stomp"`) {
		t.Fatalf("expected quoted card name, got %q", content)
	}
}

func TestTraceLevelEnablesTraceLines(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "trace.log")
	logger, err := logging.New(logging.Options{Level: "trace", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.Trace(logger, "renderer line", logging.String("line", "Rendering 1 of 20"))

	content := readLog(t, logPath)
	if !strings.Contains(content, "TRACE renderer line") {
		t.Fatalf("expected trace line, got %q", content)
	}
}

func TestJSONLoggerUsesShortKeys(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "trace", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.Trace(logger, "trace entry")

	line := strings.TrimSpace(readLog(t, logPath))
	var payload map[string]any
	if err := json.Unmarshal([]byte(line), &payload); err != nil {
		t.Fatalf("decode json log: %v (%q)", err, line)
	}
	if payload["msg"] != "trace entry" {
		t.Fatalf("unexpected msg: %v", payload["msg"])
	}
	if payload["level"] != "trace" {
		t.Fatalf("unexpected level: %v", payload["level"])
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("expected ts key in %v", payload)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWithContextAddsRunFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "ctx.log")
	logger, err := logging.New(logging.Options{Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithRunID(context.Background(), "run-1")
	ctx = services.WithPass(ctx, "sketch")
	ctx = services.WithBatch(ctx, "sketch_1")
	logging.WithContext(ctx, logger).Info("batch queued")

	content := readLog(t, logPath)
	for _, want := range []string{"run_id=run-1", "pass=sketch", "batch=sketch_1"} {
		if !strings.Contains(content, want) {
			t.Fatalf("expected %q in %q", want, content)
		}
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "warn.log")
	logger, err := logging.New(logging.Options{Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.WarnWithContext(logger, "missing watermark", "card_validation",
		logging.String(logging.FieldImpact, "card skipped"),
	)

	content := readLog(t, logPath)
	for _, want := range []string{"event_type=card_validation", "error_hint=", `impact="card skipped"`} {
		if !strings.Contains(content, want) {
			t.Fatalf("expected %q in %q", want, content)
		}
	}
	logging.WarnWithContext(nil, "ignored", "noop")
}

func TestCleanupOldLogs(t *testing.T) {
	dir := t.TempDir()
	oldLog := filepath.Join(dir, "old.log")
	freshLog := filepath.Join(dir, "fresh.log")
	activeLog := filepath.Join(dir, "active.log")
	otherFile := filepath.Join(dir, "ledger.db")
	for _, path := range []string{oldLog, freshLog, activeLog, otherFile} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	stale := time.Now().AddDate(0, 0, -10)
	for _, path := range []string{oldLog, activeLog, otherFile} {
		if err := os.Chtimes(path, stale, stale); err != nil {
			t.Fatalf("chtimes %s: %v", path, err)
		}
	}

	removed := logging.CleanupOldLogs(logging.NewNop(), 5, logging.RetentionTarget{
		Dir:     dir,
		Pattern: "*.log",
		Exclude: []string{activeLog},
	})
	if removed != 1 {
		t.Fatalf("expected one file removed, got %d", removed)
	}
	if _, err := os.Stat(oldLog); !os.IsNotExist(err) {
		t.Fatalf("expected old log removed, stat err=%v", err)
	}
	for _, path := range []string{freshLog, activeLog, otherFile} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s to remain: %v", path, err)
		}
	}

	if removed := logging.CleanupOldLogs(nil, 0, logging.RetentionTarget{Dir: dir}); removed != 0 {
		t.Fatalf("retention 0 should disable pruning, removed %d", removed)
	}
}
