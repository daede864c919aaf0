package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"proxymill/internal/card"
	"proxymill/internal/logging"
	"proxymill/internal/render"
	"proxymill/internal/services"
	"proxymill/internal/textutil"
)

// Options configures an Orchestrator for one pass.
type Options struct {
	// Batch is copied into every batch; its MaxCardCount also sizes partitions.
	Batch      render.Options
	MaxRetries int
	// Pool resolves siblings when computing override flags. Failed names are
	// matched against every record in it, not only the pass input.
	Pool   *card.Pool
	Logger *slog.Logger
}

// Outcome reports how a pass ended.
type Outcome struct {
	Pass    string
	State   State
	Cards   int
	Batches []render.Result
	// RetryRounds counts retry rounds. A round spans several batches when more
	// than max_card_count faces fail.
	RetryRounds    int
	Failures       int
	Unattributable int
	// Remaining holds the card names still failing when retries ran out,
	// including names that matched no card in the pool.
	Remaining   []string
	Rejected    []*card.Record
	BatchErrors []error
	Err         error
}

// Succeeded reports whether the pass finished without outstanding failures.
func (o Outcome) Succeeded() bool { return o.State == StateSucceeded }

// Orchestrator runs batches and retry rounds for a single pass.
type Orchestrator struct {
	opts   Options
	logger *slog.Logger

	state      State
	outcome    Outcome
	failed     *textutil.FoldSet
	unresolved *textutil.FoldSet
}

// NewOrchestrator returns an orchestrator ready to run one pass.
func NewOrchestrator(opts Options) *Orchestrator {
	if opts.Pool == nil {
		opts.Pool = card.NewPool()
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.Batch.Logger == nil {
		opts.Batch.Logger = opts.Logger
	}
	return &Orchestrator{
		opts:   opts,
		logger: logging.NewComponentLogger(opts.Logger, "orchestrator"),
	}
}

// State returns the current state.
func (o *Orchestrator) State() State { return o.state }

// Run renders records for pass, retrying failed cards until a round is clean or
// the retry ceiling is reached. Counters are reset on every call.
func (o *Orchestrator) Run(ctx context.Context, pass string, records []*card.Record) Outcome {
	ctx = services.WithPass(ctx, pass)
	o.reset(pass)
	logger := o.logger.With(logging.String(logging.FieldPass, pass))
	o.outcome.Cards = len(records)

	o.state = StateBatching
	batches := o.buildBatches(pass, Partition(records, o.opts.Batch.MaxCardCount), "")
	logger.Info("pass started",
		logging.String(logging.FieldEventType, "pass_start"),
		logging.Int("cards", len(records)),
		logging.Int("batches", len(batches)),
		logging.Int("max_card_count", o.opts.Batch.MaxCardCount),
	)

	o.state = StateRunning
	if !o.runBatches(ctx, batches) {
		return o.finish(logger)
	}

	for o.failed.Len() > 0 {
		if o.outcome.RetryRounds >= o.opts.MaxRetries {
			o.state = StateExhaustedRetries
			o.outcome.Remaining = o.failed.Names()
			break
		}
		o.state = StateRetrying
		names := o.failed.Names()
		candidates := o.candidates(records)
		retry := ResolveFailures(names, candidates)
		o.failed = textutil.NewFoldSet()
		if missing := unmatched(names, candidates); len(missing) > 0 {
			logging.WarnWithContext(logger, "failed cards could not be matched for retry", "retry_unresolved",
				logging.Any("names", missing),
				logging.String(logging.FieldImpact, "cards will not be retried"),
				logging.String(logging.FieldErrorHint, "add the names to cards.subset and rerun"),
			)
			for _, name := range missing {
				o.unresolved.Add(name)
			}
		}
		if len(retry) == 0 {
			o.state = StateExhaustedRetries
			break
		}
		o.outcome.RetryRounds++
		logger.Info("retry round started",
			logging.String(logging.FieldEventType, "retry_start"),
			logging.Int("round", o.outcome.RetryRounds),
			logging.Int("failed_names", len(names)),
			logging.Int("cards", len(retry)),
		)
		prefix := fmt.Sprintf("retry%d_", o.outcome.RetryRounds)
		if !o.runBatches(ctx, o.buildBatches(pass, Partition(retry, o.opts.Batch.MaxCardCount), prefix)) {
			return o.finish(logger)
		}
	}
	if o.state != StateExhaustedRetries {
		o.state = StateSucceeded
	}
	return o.finish(logger)
}

func (o *Orchestrator) reset(pass string) {
	o.outcome = Outcome{Pass: pass}
	o.failed = textutil.NewFoldSet()
	o.unresolved = textutil.NewFoldSet()
	o.state = ""
}

// candidates returns the records failed names are matched against. Both faces
// of a card are retried even when the sibling is rendered by another pass.
func (o *Orchestrator) candidates(records []*card.Record) []*card.Record {
	if all := o.opts.Pool.Records(); len(all) > 0 {
		return all
	}
	return records
}

func (o *Orchestrator) buildBatches(pass string, chunks [][]*card.Record, prefix string) []*render.Batch {
	batches := make([]*render.Batch, 0, len(chunks))
	for i, chunk := range chunks {
		name := fmt.Sprintf("%s_%s%d", pass, prefix, i+1)
		batch := render.NewBatch(name, o.opts.Pool, o.opts.Batch)
		for _, rec := range chunk {
			// Rejections are recorded on the batch and reported after it runs.
			_ = batch.Add(rec)
		}
		batches = append(batches, batch)
	}
	return batches
}

// runBatches runs each batch in order and returns false if the pass was interrupted.
func (o *Orchestrator) runBatches(ctx context.Context, batches []*render.Batch) bool {
	for _, batch := range batches {
		if err := ctx.Err(); err != nil {
			o.interrupt(err)
			return false
		}
		batchCtx := services.WithBatch(ctx, batch.Name())
		logger := logging.WithContext(batchCtx, o.logger)

		result, err := batch.Run(batchCtx, func(name string) {
			o.outcome.Failures++
			o.failed.Add(name)
		})
		o.outcome.Batches = append(o.outcome.Batches, result)
		o.outcome.Rejected = append(o.outcome.Rejected, batch.Rejected()...)
		o.outcome.Unattributable += result.Unattributable
		if err != nil {
			if ctx.Err() != nil {
				o.interrupt(ctx.Err())
				return false
			}
			o.outcome.BatchErrors = append(o.outcome.BatchErrors, err)
			logging.ErrorWithContext(logger, "batch did not run", "batch_fatal",
				logging.Error(err),
				logging.Int("cards", batch.Len()),
				logging.String(logging.FieldErrorHint, "cards in this batch will appear in the missing output report"),
			)
			continue
		}
		logger.Info("batch finished",
			logging.Int("cards", result.Accepted),
			logging.Int("rejected", result.Rejected),
			logging.Int("failed", len(result.Failures)),
		)
	}
	return true
}

func (o *Orchestrator) interrupt(err error) {
	o.state = StateInterrupted
	o.outcome.Err = err
	o.outcome.Remaining = o.failed.Names()
}

func (o *Orchestrator) finish(logger *slog.Logger) Outcome {
	if o.unresolved.Len() > 0 {
		if o.state == StateSucceeded {
			o.state = StateExhaustedRetries
		}
		reported := textutil.NewFoldSet(o.outcome.Remaining...)
		o.outcome.Remaining = append(o.outcome.Remaining, o.unresolved.Missing(reported)...)
	}
	o.outcome.State = o.state
	switch o.state {
	case StateSucceeded:
		logger.Info("pass succeeded",
			logging.String(logging.FieldEventType, "pass_complete"),
			logging.Int("batches", len(o.outcome.Batches)),
			logging.Int("retry_rounds", o.outcome.RetryRounds),
			logging.Int("failures", o.outcome.Failures),
		)
	case StateExhaustedRetries:
		o.outcome.Err = services.Wrap(services.ErrRetriesExhausted, "orchestrator", o.outcome.Pass,
			fmt.Sprintf("%d card(s) still failing after %d retry round(s)", len(o.outcome.Remaining), o.outcome.RetryRounds), nil)
		logging.ErrorWithContext(logger, "retries exhausted", "retries_exhausted",
			logging.Any("remaining", o.outcome.Remaining),
			logging.Int("retry_rounds", o.outcome.RetryRounds),
			logging.String(logging.FieldErrorHint, "rerun with the remaining names in cards.subset"),
		)
	case StateInterrupted:
		logger.Warn("pass interrupted", logging.Error(o.outcome.Err))
	}
	return o.outcome
}

// unmatched returns the names no record's full name contains.
func unmatched(names []string, records []*card.Record) []string {
	var out []string
	for _, name := range names {
		found := false
		for _, rec := range records {
			if textutil.ContainsFold(rec.Name, name) {
				found = true
				break
			}
		}
		if !found {
			out = append(out, name)
		}
	}
	return out
}

// ResolveFailures maps failed card names back to records. A record matches when
// its full name contains the failed name, ignoring case, so both faces of a
// card are retried together. Input order is preserved and no record repeats.
func ResolveFailures(names []string, records []*card.Record) []*card.Record {
	var out []*card.Record
	seen := make(map[*card.Record]struct{})
	for _, rec := range records {
		for _, name := range names {
			if !textutil.ContainsFold(rec.Name, name) {
				continue
			}
			if _, ok := seen[rec]; !ok {
				seen[rec] = struct{}{}
				out = append(out, rec)
			}
			break
		}
	}
	return out
}
