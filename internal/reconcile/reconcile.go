package reconcile

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"proxymill/internal/card"
	"proxymill/internal/config"
	"proxymill/internal/fileutil"
	"proxymill/internal/logging"
	"proxymill/internal/services"
	"proxymill/internal/textutil"
)

// Options configures a Reconciler.
type Options struct {
	RawDirs         []string
	OutputDir       string
	DeleteDiscarded bool
	Logger          *slog.Logger
}

// OptionsFromConfig builds reconciler options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config, logger *slog.Logger) Options {
	return Options{
		RawDirs:         cfg.RawOutputPaths(),
		OutputDir:       cfg.Paths.OutputDir,
		DeleteDiscarded: cfg.Renderer.DeleteDiscarded,
		Logger:          logger,
	}
}

// Report summarizes one reconciliation pass.
type Report struct {
	Pass       string
	Scanned    int
	Ignored    int
	Unmatched  int
	Copied     int
	Unchanged  int
	Discarded  int
	Deferred   int
	Deleted    int
	Rendered   []*card.Record
	Missing    []*card.Record
	CopyErrors int
}

// Reconciler copies winning candidates to the output directory.
type Reconciler struct {
	opts   Options
	logger *slog.Logger
}

// New returns a Reconciler.
func New(opts Options) *Reconciler {
	return &Reconciler{opts: opts, logger: logging.NewComponentLogger(opts.Logger, "reconciler")}
}

// Reconcile scans the raw output directories for pass and copies every kept
// candidate. Records templated for pass that end without an output file are
// listed in Report.Missing and produce an ErrRenderFailed error.
func (r *Reconciler) Reconcile(pass string, pool *card.Pool) (Report, error) {
	report := Report{Pass: pass}
	template, ok := card.ParseTemplate(pass)
	if !ok {
		return report, services.Wrap(services.ErrConfiguration, "reconciler", pass, "unknown pass", nil)
	}
	logger := r.logger.With(logging.String(logging.FieldPass, pass))
	if err := os.MkdirAll(r.opts.OutputDir, 0o755); err != nil {
		return report, services.Wrap(services.ErrConfiguration, "reconciler", pass, "create output directory", err)
	}

	byName := indexByDisplayName(pool)
	for _, dir := range r.opts.RawDirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			logging.WarnWithContext(logger, "renderer output directory unreadable", "raw_dir_unreadable",
				logging.String("dir", dir),
				logging.Error(err),
				logging.String(logging.FieldImpact, "candidates in this directory are ignored"),
				logging.String(logging.FieldErrorHint, "check paths.raw_output_dirs"),
			)
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			r.consider(logger, template, filepath.Join(dir, entry.Name()), byName, &report)
		}
	}

	for _, rec := range pool.WithTemplate(template) {
		if fileutil.Exists(r.outputPath(rec)) {
			report.Rendered = append(report.Rendered, rec)
			continue
		}
		report.Missing = append(report.Missing, rec)
		logging.WarnWithContext(logger, "card has no rendered image", "card_unrendered",
			logging.String(logging.FieldCard, rec.DisplayName),
			logging.String(logging.FieldFace, string(rec.Face)),
			logging.String(logging.FieldImpact, "proxy missing from output"),
			logging.String(logging.FieldErrorHint, "add the card to cards.subset and rerun"),
		)
	}

	logger.Info("reconciliation finished",
		logging.String(logging.FieldEventType, "reconcile_complete"),
		logging.Int("scanned", report.Scanned),
		logging.Int("copied", report.Copied),
		logging.Int("discarded", report.Discarded),
		logging.Int("missing", len(report.Missing)),
		logging.String("output_dir", r.opts.OutputDir),
	)
	if len(report.Missing) > 0 {
		return report, services.Wrap(services.ErrRenderFailed, "reconciler", pass,
			fmt.Sprintf("%d card(s) have no rendered image", len(report.Missing)), nil)
	}
	return report, nil
}

func (r *Reconciler) consider(logger *slog.Logger, pass card.Template, path string, byName map[string]*card.Record, report *Report) {
	candidate, ok := ParseCandidate(path)
	if !ok {
		report.Ignored++
		logging.Trace(logger, "ignoring file", logging.String("path", path))
		return
	}
	report.Scanned++
	rec := byName[textutil.Fold(candidate.DisplayName)]
	if rec == nil {
		report.Unmatched++
		logging.WarnWithContext(logger, "rendered image matches no card", "candidate_unmatched",
			logging.String("path", path),
			logging.String(logging.FieldImpact, "image left in place"),
		)
		return
	}

	switch Decide(pass, rec, candidate.Ordinal) {
	case Deferred:
		report.Deferred++
		logging.Trace(logger, "candidate deferred to its own pass",
			logging.String(logging.FieldCard, rec.DisplayName),
			logging.String("template", string(rec.Template)))
	case Discard:
		report.Discarded++
		logging.Trace(logger, "candidate discarded",
			logging.String(logging.FieldCard, rec.DisplayName),
			logging.Int("ordinal", candidate.Ordinal))
		if r.opts.DeleteDiscarded {
			if err := fileutil.RemoveIfExists(path); err != nil {
				logger.Warn("failed to delete discarded candidate", logging.String("path", path), logging.Error(err))
			} else {
				report.Deleted++
			}
		}
	case Keep:
		r.copy(logger, pass, rec, candidate, report)
	}
}

func (r *Reconciler) copy(logger *slog.Logger, pass card.Template, rec *card.Record, candidate Candidate, report *Report) {
	dst := r.outputPath(rec)
	err := fileutil.CopyFile(candidate.Path, dst, pass != card.TemplateStandard)
	switch {
	case errors.Is(err, fileutil.ErrExists):
		report.Unchanged++
		logger.Debug("output already present; keeping existing image",
			logging.String(logging.FieldCard, rec.DisplayName),
			logging.String("output", dst))
	case err != nil:
		report.CopyErrors++
		logging.ErrorWithContext(logger, "failed to copy rendered image", "copy_failed",
			logging.String(logging.FieldCard, rec.DisplayName),
			logging.String("source", candidate.Path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check output_dir permissions and free space"),
		)
	default:
		report.Copied++
		logger.Debug("rendered image copied",
			logging.String(logging.FieldCard, rec.DisplayName),
			logging.String("output", dst))
	}
}

func (r *Reconciler) outputPath(rec *card.Record) string {
	return filepath.Join(r.opts.OutputDir, card.OutputFileName(rec.DisplayName))
}

func indexByDisplayName(pool *card.Pool) map[string]*card.Record {
	index := make(map[string]*card.Record, pool.Len())
	for _, rec := range pool.Records() {
		key := textutil.Fold(rec.DisplayName)
		if _, ok := index[key]; !ok {
			index[key] = rec
		}
	}
	return index
}
