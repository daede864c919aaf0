package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"proxymill/internal/card"
	"proxymill/internal/catalog"
	"proxymill/internal/config"
	"proxymill/internal/derive"
	"proxymill/internal/ledger"
	"proxymill/internal/logging"
	"proxymill/internal/notifications"
	"proxymill/internal/preflight"
	"proxymill/internal/reconcile"
	"proxymill/internal/render"
	"proxymill/internal/services"
	"proxymill/internal/textutil"
	"proxymill/internal/workflow"
)

// Options adjusts a single run without changing the configuration.
type Options struct {
	// Passes restricts the run to these passes, in this order.
	Passes []string
	// Executor replaces the subprocess runner, mainly for tests.
	Executor render.Executor
	// Notifier receives run events. Defaults to the configured ntfy topic.
	Notifier notifications.Service
}

// Run executes one complete job. A non-nil Summary is always returned; the
// error is non-nil when the run aborted or left cards without an image.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts Options) (Summary, error) {
	var summary Summary
	if logger == nil {
		logger = logging.NewNop()
	}
	log := logging.NewComponentLogger(logger, "pipeline")
	started := time.Now()
	if opts.Notifier == nil {
		opts.Notifier = notifications.NewService(cfg)
	}

	passes, err := selectPasses(cfg, opts.Passes)
	if err != nil {
		return summary, err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return summary, services.Wrap(services.ErrConfiguration, "pipeline", "setup", "create directories", err)
	}

	summary.Preflight = preflight.RunAll(cfg)
	if err := preflight.Err(summary.Preflight); err != nil {
		logging.ErrorWithContext(log, "preflight failed", "preflight_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run 'proxymill check' for details"),
		)
		notify(log, opts.Notifier.NotifyError(ctx, err, "preflight"))
		return summary, err
	}

	lock, err := acquireLock(cfg.LockPath())
	if err != nil {
		return summary, err
	}
	defer func() {
		if err := lock.release(); err != nil {
			log.Warn("failed to release run lock", logging.Error(err))
		}
	}()

	store, run := openLedger(ctx, cfg, log, passes)
	if store != nil {
		defer store.Close()
	}
	summary.RunID = uuid.NewString()
	if run != nil {
		summary.RunID = run.ID
	}
	ctx = services.WithRunID(ctx, summary.RunID)
	log = logging.WithContext(ctx, log)
	logger = logger.With(logging.String(logging.FieldRunID, summary.RunID))

	runErr := execute(ctx, cfg, logger, log, opts, passes, store, &summary)

	summary.RerunPath = cfg.RerunPath()
	if err := writeRerunList(summary.RerunPath, RerunList{RunID: summary.RunID, CardSubset: summary.Unrendered}); err != nil {
		log.Warn("failed to write rerun list", logging.String("path", summary.RerunPath), logging.Error(err))
	}
	if run != nil {
		status, message := runStatus(runErr, len(summary.Unrendered))
		if err := store.FinishRun(context.WithoutCancel(ctx), run.ID, status, message); err != nil {
			log.Warn("failed to finish ledger run", logging.Error(err))
		}
	}
	pruneLogs(cfg, log)
	publishOutcome(ctx, opts.Notifier, log, summary, passes, runErr, time.Since(started))

	if runErr != nil {
		return summary, runErr
	}
	if len(summary.Unrendered) > 0 {
		marker := services.ErrRenderFailed
		if summary.exhausted() {
			marker = services.ErrRetriesExhausted
		}
		return summary, services.Wrap(marker, "pipeline", "", fmt.Sprintf(
			"%d card(s) without a proxy; rerun list written to %s", len(summary.Unrendered), summary.RerunPath), nil)
	}
	log.Info("run complete",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int("passes", len(summary.Passes)),
		logging.String("output_dir", cfg.Paths.OutputDir),
	)
	return summary, nil
}

func execute(ctx context.Context, cfg *config.Config, logger, log *slog.Logger, opts Options, passes []string, store *ledger.Store, summary *Summary) error {
	entries, err := catalog.Load(cfg.Paths.CatalogPath)
	if err != nil {
		return err
	}
	summary.Entries = len(entries)
	legal, stats := catalog.NewFilter(catalog.Rules{
		IllegalSetCodes:  cfg.Cards.IllegalSetCodes,
		ExcludedSetTypes: cfg.Cards.ExcludedSetTypes,
	}).Apply(entries)
	summary.Filter = stats
	log.Info("catalog filtered",
		logging.Int("entries", stats.Total),
		logging.Int("legal", stats.Allowed),
		logging.Any("dropped", stats.Dropped),
	)
	if len(legal) == 0 {
		return services.Wrap(services.ErrNotFound, "pipeline", "filter", "no legal cards in catalog", nil)
	}

	pool, report := derive.New(cfg, logger).Derive(legal)
	summary.Derive = report
	if pool.Len() == 0 {
		log.Info("nothing to render", logging.Int("skipped_existing", report.SkippedExisting))
		return nil
	}

	notify(log, opts.Notifier.NotifyRunStarted(ctx, passes, pool.Len()))

	unrendered := textutil.NewFoldSet()
	for _, pass := range passes {
		if err := ctx.Err(); err != nil {
			return err
		}
		passSummary := runPass(ctx, cfg, logger, opts, pass, pool)
		summary.Passes = append(summary.Passes, passSummary)
		for _, name := range passSummary.Outcome.Remaining {
			unrendered.Add(name)
		}
		for _, rec := range passSummary.Reconcile.Missing {
			unrendered.Add(rec.Name)
		}
		recordPass(ctx, store, summary.RunID, passSummary, log)
		if passSummary.Outcome.State == workflow.StateInterrupted {
			summary.Unrendered = unrendered.Names()
			return passSummary.Outcome.Err
		}
	}
	summary.Unrendered = unrendered.Names()
	return nil
}

func runPass(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts Options, pass string, pool *card.Pool) PassSummary {
	template, _ := card.ParseTemplate(pass)
	records := pool.WithTemplate(template)
	result := PassSummary{Pass: pass, Cards: len(records)}
	if len(records) == 0 {
		logger.Info("no cards for pass", logging.String(logging.FieldPass, pass))
		result.Outcome = workflow.Outcome{Pass: pass, State: workflow.StateSucceeded}
		return result
	}

	batchOpts := render.OptionsFromConfig(cfg, pass)
	batchOpts.Executor = opts.Executor
	orch := workflow.NewOrchestrator(workflow.Options{
		Batch:      batchOpts,
		MaxRetries: cfg.Renderer.MaxRetries,
		Pool:       pool,
		Logger:     logger,
	})
	result.Outcome = orch.Run(ctx, pass, records)
	if result.Outcome.State == workflow.StateInterrupted {
		return result
	}

	result.Reconcile, result.ReconcileErr = reconcile.New(reconcile.OptionsFromConfig(cfg, logger)).Reconcile(pass, pool)
	return result
}

func selectPasses(cfg *config.Config, requested []string) ([]string, error) {
	if len(requested) == 0 {
		return cfg.Renderer.Passes, nil
	}
	var passes []string
	for _, pass := range requested {
		pass = strings.ToLower(strings.TrimSpace(pass))
		if cfg.TemplatePath(pass) == "" {
			return nil, services.Wrap(services.ErrConfiguration, "pipeline", "passes",
				fmt.Sprintf("pass %q has no template configured", pass), nil)
		}
		passes = append(passes, pass)
	}
	return passes, nil
}

func openLedger(ctx context.Context, cfg *config.Config, log *slog.Logger, passes []string) (*ledger.Store, *ledger.Run) {
	if !cfg.Ledger.Enabled {
		return nil, nil
	}
	store, err := ledger.Open(cfg.Ledger.Path)
	if err != nil {
		logging.WarnWithContext(log, "run ledger unavailable", "ledger_unavailable",
			logging.Error(err),
			logging.String(logging.FieldImpact, "this run will not appear in history"),
		)
		return nil, nil
	}
	run, err := store.BeginRun(ctx, passes)
	if err != nil {
		log.Warn("failed to record run start", logging.Error(err))
		_ = store.Close()
		return nil, nil
	}
	return store, run
}

func recordPass(ctx context.Context, store *ledger.Store, runID string, p PassSummary, log *slog.Logger) {
	if store == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	result := ledger.PassResult{
		Pass:        p.Pass,
		State:       string(p.Outcome.State),
		Cards:       p.Cards,
		Batches:     len(p.Outcome.Batches),
		RetryRounds: p.Outcome.RetryRounds,
		Failures:    p.Outcome.Failures,
		Copied:      p.Reconcile.Copied,
		Discarded:   p.Reconcile.Discarded,
		Unrendered:  len(p.Reconcile.Missing),
	}
	if err := store.RecordPass(ctx, runID, result); err != nil {
		log.Warn("failed to record pass", logging.Error(err))
	}
	if err := store.RecordCards(ctx, runID, p.Pass, cardResults(p)); err != nil {
		log.Warn("failed to record card outcomes", logging.Error(err))
	}
}

func cardResults(p PassSummary) []ledger.CardResult {
	rejected := make(map[*card.Record]bool, len(p.Outcome.Rejected))
	for _, rec := range p.Outcome.Rejected {
		rejected[rec] = true
	}
	remaining := textutil.NewFoldSet(p.Outcome.Remaining...)

	var results []ledger.CardResult
	add := func(rec *card.Record, status ledger.CardStatus) {
		results = append(results, ledger.CardResult{
			DisplayName: rec.DisplayName,
			CardName:    rec.Name,
			Face:        string(rec.Face),
			Status:      status,
		})
	}
	for _, rec := range p.Reconcile.Rendered {
		add(rec, ledger.CardRendered)
	}
	for _, rec := range p.Reconcile.Missing {
		switch {
		case rejected[rec]:
			add(rec, ledger.CardRejected)
		case remaining.Contains(rec.Name):
			add(rec, ledger.CardFailed)
		default:
			add(rec, ledger.CardMissing)
		}
	}
	return results
}

func runStatus(runErr error, unrendered int) (ledger.RunStatus, string) {
	switch {
	case runErr == nil && unrendered > 0:
		return ledger.RunIncomplete, fmt.Sprintf("%d card(s) without a proxy", unrendered)
	case runErr == nil:
		return ledger.RunSucceeded, ""
	case errors.Is(runErr, context.Canceled):
		return ledger.RunFailed, "interrupted"
	default:
		return ledger.RunFailed, runErr.Error()
	}
}

func publishOutcome(ctx context.Context, notifier notifications.Service, log *slog.Logger, summary Summary, passes []string, runErr error, elapsed time.Duration) {
	ctx = context.WithoutCancel(ctx)
	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			return
		}
		notify(log, notifier.NotifyError(ctx, runErr, "run "+summary.RunID))
		return
	}
	report := notifications.RunReport{
		RunID:      summary.RunID,
		Passes:     passes,
		Unrendered: summary.Unrendered,
		Duration:   elapsed,
	}
	for _, p := range summary.Passes {
		report.Copied += p.Reconcile.Copied
	}
	notify(log, notifier.NotifyRunCompleted(ctx, report))
}

func notify(log *slog.Logger, err error) {
	if err != nil {
		logging.WarnWithContext(log, "notification failed", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run outcome is unaffected"),
		)
	}
}

func pruneLogs(cfg *config.Config, log *slog.Logger) {
	removed := logging.CleanupOldLogs(log, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "*.log", Exclude: []string{filepath.Join(cfg.Paths.LogDir, logging.LogFileName)}},
		logging.RetentionTarget{Dir: cfg.Paths.RendererDir, Pattern: "*_cards.txt"},
		logging.RetentionTarget{Dir: cfg.Paths.RendererDir, Pattern: "*_command.sh"},
	)
	if removed > 0 {
		log.Debug("pruned old files", logging.Int("removed", removed))
	}
}
