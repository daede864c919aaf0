package render

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"proxymill/internal/card"
	"proxymill/internal/config"
	"proxymill/internal/logging"
	"proxymill/internal/services"
)

const (
	itemListSuffix = "_cards.txt"
	scriptSuffix   = "_command.sh"
	defaultShell   = "/bin/sh"
)

// Options holds everything a batch needs besides its cards.
type Options struct {
	MaxCardCount   int
	RendererDir    string
	JavaBinary     string
	JarPath        string
	TemplatePath   string
	ArtDir         string
	ArtSource      string
	SetSymbol      string
	UseCardBack    bool
	RarityOverride string
	Shell          string
	Executor       Executor
	Logger         *slog.Logger
}

// OptionsFromConfig builds batch options for one rendering pass.
func OptionsFromConfig(cfg *config.Config, pass string) Options {
	return Options{
		MaxCardCount:   cfg.Renderer.MaxCardCount,
		RendererDir:    cfg.Paths.RendererDir,
		JavaBinary:     cfg.Renderer.JavaBinary,
		JarPath:        cfg.JarPath(),
		TemplatePath:   cfg.TemplatePath(pass),
		ArtDir:         cfg.ArtDir(),
		ArtSource:      cfg.Renderer.ArtSource,
		SetSymbol:      cfg.Renderer.SetSymbol,
		UseCardBack:    cfg.Renderer.UseCardBack,
		RarityOverride: cfg.Cards.RarityOverride,
	}
}

// Result summarizes one batch run.
type Result struct {
	Name           string
	Accepted       int
	Rejected       int
	Lines          int
	Failures       []string
	Unattributable int
	ExitErr        error
}

// Batch is a bounded group of cards rendered by one renderer invocation.
type Batch struct {
	name     string
	opts     Options
	pool     *card.Pool
	items    []string
	accepted []*card.Record
	rejected []*card.Record
	logger   *slog.Logger
}

// NewBatch creates an empty batch. Override flags are evaluated against pool.
func NewBatch(name string, pool *card.Pool, opts Options) *Batch {
	if opts.Executor == nil {
		opts.Executor = CommandExecutor{}
	}
	if opts.Shell == "" {
		opts.Shell = defaultShell
	}
	logger := logging.NewComponentLogger(opts.Logger, "batch").With(logging.String(logging.FieldBatch, name))
	return &Batch{name: name, opts: opts, pool: pool, logger: logger}
}

// Name returns the batch name.
func (b *Batch) Name() string { return b.name }

// Len returns the number of accepted cards.
func (b *Batch) Len() int { return len(b.accepted) }

// Full reports whether the batch reached its capacity.
func (b *Batch) Full() bool {
	return b.opts.MaxCardCount > 0 && len(b.accepted) >= b.opts.MaxCardCount
}

// Cards returns the accepted records in insertion order.
func (b *Batch) Cards() []*card.Record { return b.accepted }

// Rejected returns the records that failed validation.
func (b *Batch) Rejected() []*card.Record { return b.rejected }

// ItemListPath is where the batch writes its card list.
func (b *Batch) ItemListPath() string {
	return filepath.Join(b.opts.RendererDir, b.name+itemListSuffix)
}

// ScriptPath is where the batch writes its invocation script.
func (b *Batch) ScriptPath() string {
	return filepath.Join(b.opts.RendererDir, b.name+scriptSuffix)
}

// Add validates rec and appends it. A rejected card is remembered and returns an
// ErrValidation error; a full batch returns an error without recording anything.
func (b *Batch) Add(rec *card.Record) error {
	if b.Full() {
		return fmt.Errorf("batch %s is full (%d cards)", b.name, b.opts.MaxCardCount)
	}
	flags := b.pool.Flags(rec)
	if err := card.Validate(rec, flags); err != nil {
		b.rejected = append(b.rejected, rec)
		logging.WarnWithContext(b.logger, "card rejected", "card_validation",
			logging.String(logging.FieldCard, rec.Name),
			logging.String(logging.FieldFace, string(rec.Face)),
			logging.Error(err),
			logging.String(logging.FieldImpact, "card excluded from this batch"),
			logging.String(logging.FieldErrorHint, "fix the catalog entry or add a manual override"),
		)
		return err
	}
	line := b.itemLine(rec, flags)
	b.items = append(b.items, line)
	b.accepted = append(b.accepted, rec)
	logging.Trace(b.logger, "card added",
		logging.String(logging.FieldCard, rec.DisplayName),
		logging.Int("count", len(b.accepted)),
		logging.String("item", line),
	)
	return nil
}

func (b *Batch) itemLine(rec *card.Record, flags card.Flags) string {
	var sb strings.Builder
	sb.WriteString("1 ")
	sb.WriteString(rec.Name)
	override := func(value string) {
		sb.WriteString(" --override=")
		sb.WriteString(value)
	}
	if b.opts.RarityOverride != "" {
		override("rarity:" + b.opts.RarityOverride)
	}
	if flags.Color {
		override(`colors:["` + rec.Color + `"]`)
		override("proximity.mtg.color_count:" + strconv.Itoa(rec.ColorCount))
	}
	if flags.Watermark {
		override("watermark:" + rec.Watermark)
	}
	if flags.Artist {
		override(`artist:"` + rec.Artist + `"`)
	}
	if flags.Art {
		override(`image_uris.art_crop:""` + artURI(filepath.Join(b.opts.ArtDir, rec.ArtFileName)) + `""`)
	}
	return sb.String()
}

func artURI(path string) string {
	path = filepath.ToSlash(path)
	path = strings.TrimPrefix(path, "/")
	return "file:///" + strings.ReplaceAll(path, " ", "%20")
}

func (b *Batch) script() string {
	var sb strings.Builder
	sb.WriteString("#!/bin/sh\n")
	fmt.Fprintf(&sb, "cd %s || exit 1\n", shellQuote(b.opts.RendererDir))
	fmt.Fprintf(&sb, "exec %s -jar %s --template=%s --cards=%s --art_source=%s --set_symbol=%s --use_card_back=%t\n",
		shellQuote(b.opts.JavaBinary),
		shellQuote(b.opts.JarPath),
		shellQuote(b.opts.TemplatePath),
		shellQuote(b.ItemListPath()),
		b.opts.ArtSource,
		b.opts.SetSymbol,
		b.opts.UseCardBack,
	)
	return sb.String()
}

func shellQuote(value string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`, "$", `\$`, "`", "\\`").Replace(value) + `"`
}

// WriteArtifacts writes the item list and invocation script and confirms both exist.
func (b *Batch) WriteArtifacts() error {
	list := strings.Join(b.items, "\n") + "\n"
	if err := os.WriteFile(b.ItemListPath(), []byte(list), 0o644); err != nil {
		return services.Wrap(services.ErrExternalTool, "batch", b.name, "write item list", err)
	}
	if err := os.WriteFile(b.ScriptPath(), []byte(b.script()), 0o755); err != nil {
		return services.Wrap(services.ErrExternalTool, "batch", b.name, "write invocation script", err)
	}
	for _, path := range []string{b.ItemListPath(), b.ScriptPath()} {
		if _, err := os.Stat(path); err != nil {
			return services.Wrap(services.ErrNotFound, "batch", b.name, fmt.Sprintf("generated artifact %s missing", filepath.Base(path)), err)
		}
	}
	return nil
}

// Run writes the artifacts, invokes the renderer, and reports each attributable
// failure to onFailure as it streams. A returned error means the renderer never ran.
func (b *Batch) Run(ctx context.Context, onFailure func(name string)) (Result, error) {
	result := Result{Name: b.name, Accepted: len(b.accepted), Rejected: len(b.rejected)}
	if len(b.accepted) == 0 {
		logging.WarnWithContext(b.logger, "batch has no valid cards; skipping", "batch_empty",
			logging.Int("rejected", len(b.rejected)),
			logging.String(logging.FieldImpact, "no renderer invocation for this batch"),
		)
		return result, nil
	}
	if err := b.WriteArtifacts(); err != nil {
		logging.ErrorWithContext(b.logger, "batch artifacts unavailable", "batch_artifacts_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check renderer_dir exists and is writable"),
		)
		return result, err
	}

	rendererLog := logging.NewComponentLogger(b.opts.Logger, "renderer").With(logging.String(logging.FieldBatch, b.name))
	b.logger.Debug("batch render starting",
		logging.Int("cards", len(b.accepted)),
		logging.String("script", b.ScriptPath()),
	)

	onStdout := func(line string) {
		if strings.TrimSpace(line) == "" {
			return
		}
		result.Lines++
		kind, name := ClassifyLine(line)
		switch kind {
		case LineFailure:
			rendererLog.Warn(line)
			result.Failures = append(result.Failures, name)
			if onFailure != nil {
				onFailure(name)
			}
		case LineUnattributable:
			rendererLog.Warn(line)
			result.Unattributable++
			logging.ErrorWithContext(b.logger, "failed render cannot be attributed to a card", "render_unattributable",
				logging.String("line", line),
				logging.String(logging.FieldErrorHint, "the card cannot be retried automatically; check renderer output"),
			)
		default:
			rendererLog.Info(line)
		}
	}
	onStderr := func(line string) {
		if strings.TrimSpace(line) != "" {
			rendererLog.Debug(line, logging.String("stream", "stderr"))
		}
	}

	command := Command{Dir: b.opts.RendererDir, Binary: b.opts.Shell, Args: []string{b.ScriptPath()}}
	if err := b.opts.Executor.Run(ctx, command, onStdout, onStderr); err != nil {
		if ctx.Err() != nil {
			return result, services.Wrap(services.ErrExternalTool, "batch", b.name, "renderer interrupted", err)
		}
		result.ExitErr = err
		b.logger.Debug("renderer exited with error; relying on output", logging.Error(err))
	}

	if len(result.Failures) > 0 {
		logging.WarnWithContext(b.logger, "batch finished with failed renders", "batch_failures",
			logging.Int("failed", len(result.Failures)),
			logging.String(logging.FieldImpact, "failed cards queued for retry"),
		)
	} else {
		b.logger.Debug("batch render completed", logging.Int("lines", result.Lines))
	}
	return result, nil
}
