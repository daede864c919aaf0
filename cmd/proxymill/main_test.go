package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"proxymill/internal/config"
	"proxymill/internal/ledger"
	"proxymill/internal/pipeline"
	"proxymill/internal/services"
	"proxymill/internal/testsupport"
)

func newTestConfig(t *testing.T, java string, opts ...testsupport.ConfigOption) (*config.Config, string) {
	t.Helper()
	base := []testsupport.ConfigOption{
		testsupport.WithStubbedJava(java),
		testsupport.WithCatalog(
			testsupport.SplitEntry("Fire // Ice", "{1}{R}", "{1}{U}", "Dan Scott"),
		),
	}
	cfg := testsupport.NewConfig(t, append(base, opts...)...)
	return cfg, writeTestConfig(t, cfg)
}

func TestCLIRunRendersAndRecordsHistory(t *testing.T) {
	cfg, configPath := newTestConfig(t, stubRenderer)

	out, _, err := runCLI(t, []string{"run"}, configPath)
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}
	requireContains(t, out, "standard")
	requireContains(t, out, "succeeded")
	for _, name := range []string{"Fire", "Ice"} {
		if _, err := os.Stat(filepath.Join(cfg.Paths.OutputDir, name+".png")); err != nil {
			t.Fatalf("expected proxy for %s: %v", name, err)
		}
	}

	out, _, err = runCLI(t, []string{"history"}, configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, string(ledger.RunSucceeded))

	store := testsupport.MustOpenLedger(t, cfg)
	runs, err := store.RecentRuns(context.Background(), 1)
	if err != nil || len(runs) != 1 {
		t.Fatalf("RecentRuns: %v (%d runs)", err, len(runs))
	}

	out, _, err = runCLI(t, []string{"history", "--json"}, configPath)
	if err != nil {
		t.Fatalf("history --json: %v", err)
	}
	var decoded []ledger.Run
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("decode history json: %v\n%s", err, out)
	}
	if len(decoded) != 1 || decoded[0].ID != runs[0].ID || decoded[0].Status != ledger.RunSucceeded {
		t.Fatalf("unexpected history json: %+v", decoded)
	}
	requireContains(t, out, "\n  ")

	out, _, err = runCLI(t, []string{"history", "show", runs[0].ID, "--status", "rendered"}, configPath)
	if err != nil {
		t.Fatalf("history show: %v", err)
	}
	requireContains(t, out, "Fire")
	requireContains(t, out, string(ledger.CardRendered))
}

func TestCLIRunReportsUnrenderedCards(t *testing.T) {
	cfg, configPath := newTestConfig(t, "exit 0")

	out, _, err := runCLI(t, []string{"run"}, configPath)
	if !errors.Is(err, services.ErrRenderFailed) {
		t.Fatalf("expected render failure, got %v", err)
	}
	requireContains(t, out, "without a proxy")
	requireContains(t, out, "Fire // Ice")

	list, err := pipeline.ReadRerunList(cfg.RerunPath())
	if err != nil {
		t.Fatalf("ReadRerunList: %v", err)
	}
	if len(list.CardSubset) != 1 || list.CardSubset[0] != "Fire // Ice" {
		t.Fatalf("unexpected rerun subset: %+v", list.CardSubset)
	}
}

func TestCLIRunRerunWithoutListIsNoop(t *testing.T) {
	_, configPath := newTestConfig(t, "exit 1")

	out, _, err := runCLI(t, []string{"run", "--rerun"}, configPath)
	if err != nil {
		t.Fatalf("run --rerun: %v", err)
	}
	requireContains(t, out, "No rerun list found")
}

func TestCLIRunRejectsUnknownPass(t *testing.T) {
	_, configPath := newTestConfig(t, "exit 0")

	_, _, err := runCLI(t, []string{"run", "--pass", "foil"}, configPath)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestCLICheckReportsMissingJar(t *testing.T) {
	cfg, configPath := newTestConfig(t, "exit 0")

	out, _, err := runCLI(t, []string{"check"}, configPath)
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	requireContains(t, out, "All required checks passed")

	if err := os.Remove(cfg.JarPath()); err != nil {
		t.Fatalf("remove jar: %v", err)
	}
	out, _, err = runCLI(t, []string{"check"}, configPath)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	requireContains(t, out, "FAIL")
}

func TestCLIConfigInitAndShow(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "config.toml")

	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, target)

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected existing file error, got %v", err)
	}

	_, configPath := newTestConfig(t, "exit 0")
	out, _, err = runCLI(t, []string{"config", "show"}, configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "[renderer]")
	requireContains(t, out, "max_card_count")

	out, _, err = runCLI(t, []string{"config", "validate"}, configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
}

func TestCLIHistoryEmptyLedger(t *testing.T) {
	_, configPath := newTestConfig(t, "exit 0")

	out, _, err := runCLI(t, []string{"history"}, configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No runs recorded")

	if _, _, err := runCLI(t, []string{"history", "show", "missing"}, configPath); err == nil {
		t.Fatal("expected error for unknown run")
	}
}

func TestCLILogsFiltersByBatch(t *testing.T) {
	cfg, configPath := newTestConfig(t, "exit 0")
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.LogDir, "proxymill.log"),
		"INFO batch: queued batch=standard_1\nINFO batch: queued batch=standard_2\nWARN renderer: FAILED batch=standard_1\n")

	out, _, err := runCLI(t, []string{"logs", "--batch", "standard_1"}, configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	want := "INFO batch: queued batch=standard_1\nWARN renderer: FAILED batch=standard_1\n"
	if out != want {
		t.Fatalf("logs output = %q, want %q", out, want)
	}
}

func TestCLITestNotifyRequiresTopic(t *testing.T) {
	_, configPath := newTestConfig(t, "exit 0")

	_, _, err := runCLI(t, []string{"test-notify"}, configPath)
	if err == nil || !strings.Contains(err.Error(), "ntfy_topic") {
		t.Fatalf("expected missing topic error, got %v", err)
	}
}

func TestExitCodeSeparatesFatalErrors(t *testing.T) {
	fatal := services.Wrap(services.ErrConfiguration, "preflight", "", "renderer jar missing", nil)
	if got := exitCode(fatal); got != 2 {
		t.Fatalf("exitCode(fatal) = %d, want 2", got)
	}
	partial := services.Wrap(services.ErrRetriesExhausted, "pipeline", "", "1 card(s) without a proxy", nil)
	if got := exitCode(partial); got != 1 {
		t.Fatalf("exitCode(partial) = %d, want 1", got)
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable([]string{"Pass", "Cards"}, [][]string{{"standard"}, {"sketch", "12"}}, []columnAlignment{alignLeft, alignRight})
	for _, want := range []string{"PASS", "CARDS", "standard", "sketch", "12"} {
		requireContains(t, out, want)
	}
	if renderTable(nil, nil, nil) != "" {
		t.Fatal("expected empty output without headers")
	}
}
