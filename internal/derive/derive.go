package derive

import (
	"log/slog"
	"path/filepath"
	"strings"

	"proxymill/internal/card"
	"proxymill/internal/catalog"
	"proxymill/internal/config"
	"proxymill/internal/fileutil"
	"proxymill/internal/logging"
	"proxymill/internal/textutil"
)

// aftermathKeyword marks split cards whose back face uses the double feature template.
const aftermathKeyword = "aftermath"

// Options configures derivation.
type Options struct {
	ArtFileExtension string
	Subset           []string
	UpdatesOnly      bool
	OutputDir        string
	ArtistOverrides  []config.ArtistOverride
}

// OptionsFromConfig extracts derivation settings from cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		ArtFileExtension: cfg.Cards.ArtFileExtension,
		Subset:           cfg.Cards.Subset,
		UpdatesOnly:      cfg.Cards.UpdatesOnly,
		OutputDir:        cfg.Paths.OutputDir,
		ArtistOverrides:  cfg.Cards.ArtistOverrides,
	}
}

// Report summarizes a derivation run.
type Report struct {
	Entries         int
	Records         int
	Duplicates      int
	WatermarkMerges int
	Backfilled      int
	SkippedSubset   int
	SkippedExisting int
	MissingFields   int
	UnmatchedSubset []string
	UnusedOverrides []config.ArtistOverride
}

// Deriver builds card records from catalog entries.
type Deriver struct {
	opts   Options
	logger *slog.Logger
	subset *textutil.FoldSet
}

// New constructs a Deriver from configuration.
func New(cfg *config.Config, logger *slog.Logger) *Deriver {
	return NewWithOptions(OptionsFromConfig(cfg), logger)
}

// NewWithOptions constructs a Deriver from explicit options.
func NewWithOptions(opts Options, logger *slog.Logger) *Deriver {
	return &Deriver{
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "derive"),
		subset: textutil.NewFoldSet(opts.Subset...),
	}
}

// Derive builds the record pool from entries in catalog order.
func (d *Deriver) Derive(entries []catalog.Entry) (*card.Pool, Report) {
	pool := card.NewPool()
	report := Report{Entries: len(entries)}
	usedOverrides := make([]bool, len(d.opts.ArtistOverrides))

	for _, entry := range entries {
		if d.subset.Len() > 0 && !d.subset.Contains(entry.Name) {
			report.SkippedSubset++
			continue
		}
		d.deriveEntry(pool, entry, usedOverrides, &report)
	}

	for _, rec := range pool.BackfillWatermarks() {
		report.Backfilled++
		logging.Trace(d.logger, "watermark backfilled from sibling",
			logging.String(logging.FieldCard, rec.Name),
			logging.String(logging.FieldFace, string(rec.Face)),
			logging.String("watermark", rec.Watermark),
		)
	}
	report.Records = pool.Len()

	d.reportUnmatched(pool, usedOverrides, &report)
	return pool, report
}

func (d *Deriver) deriveEntry(pool *card.Pool, entry catalog.Entry, usedOverrides []bool, report *Report) {
	layout, ok := card.ParseLayout(entry.Layout)
	if !ok {
		d.warnMissing(entry, "", "layout", report)
		layout = card.LayoutSplit
	}
	if entry.Name == "" {
		d.warnMissing(entry, "", "name", report)
	}

	faces := [2]card.Face{card.Front, card.Back}
	var records [2]*card.Record
	for i, face := range faces {
		var data catalog.FaceData
		if i < len(entry.Faces) {
			data = entry.Faces[i]
		}
		if data.ManaCost == "" {
			d.warnMissing(entry, face, "mana_cost", report)
		}
		if data.Artist == "" {
			d.warnMissing(entry, face, "artist", report)
		}
		artFile := card.ArtFileName(entry.Name, face, d.opts.ArtFileExtension)
		if artFile == "" {
			d.warnMissing(entry, face, "art file name", report)
		}
		records[i] = card.New(entry.Name, face, layout, templateFor(entry, face, layout), data.ManaCost, artFile, data.Artist, data.Watermark)
	}

	if d.opts.UpdatesOnly && d.rendered(records[0]) && d.rendered(records[1]) {
		report.SkippedExisting++
		logging.Trace(d.logger, "render already exists; skipping",
			logging.String(logging.FieldCard, entry.Name),
		)
		return
	}

	var fresh [2]bool
	for i, rec := range records {
		if existing := pool.ByDisplayName(rec.DisplayName); existing != nil {
			report.Duplicates++
			if existing.Watermark == "" && rec.Watermark != "" {
				existing.Watermark = rec.Watermark
				report.WatermarkMerges++
				logging.Trace(d.logger, "merged watermark from duplicate printing",
					logging.String(logging.FieldCard, existing.DisplayName),
					logging.String("watermark", existing.Watermark),
				)
			}
			logging.Trace(d.logger, "duplicate printing skipped",
				logging.String(logging.FieldCard, rec.DisplayName),
				logging.Int("position", entry.Position),
			)
			records[i] = existing
			continue
		}
		if idx, ok := d.matchOverride(rec); ok {
			rec.CorrectArtist(d.opts.ArtistOverrides[idx].Artist)
			usedOverrides[idx] = true
			logging.Trace(d.logger, "artist manually corrected",
				logging.String(logging.FieldCard, rec.Name),
				logging.String(logging.FieldFace, string(rec.Face)),
				logging.String("artist", rec.Artist),
			)
		}
		pool.Append(rec)
		fresh[i] = true
	}

	d.link(pool, records, fresh)
}

// link connects the two faces. Records that were replaced by an earlier printing
// keep their own sibling; a fresh face paired with one of them points at it one way.
func (d *Deriver) link(pool *card.Pool, records [2]*card.Record, fresh [2]bool) {
	front, back := records[0], records[1]
	switch {
	case fresh[0] && fresh[1]:
		pool.Link(front, back)
	case fresh[0]:
		pool.LinkTo(front, back)
	case fresh[1]:
		pool.LinkTo(back, front)
	default:
		return
	}
	for i, rec := range records {
		if !fresh[i] {
			continue
		}
		if flags := pool.Flags(rec); flags.Any() {
			logging.Trace(d.logger, "override flags",
				logging.String(logging.FieldCard, rec.DisplayName),
				logging.Bool("color", flags.Color),
				logging.Bool("artist", flags.Artist),
				logging.Bool("art", flags.Art),
				logging.Bool("watermark", flags.Watermark),
			)
		}
	}
}

func templateFor(entry catalog.Entry, face card.Face, layout card.Layout) card.Template {
	if face != card.Back {
		return card.TemplateStandard
	}
	if entry.HasKeyword(aftermathKeyword) {
		return card.TemplateDoubleFeature
	}
	if layout == card.LayoutAdventure {
		return card.TemplateSketch
	}
	return card.TemplateStandard
}

func (d *Deriver) matchOverride(rec *card.Record) (int, bool) {
	for i, override := range d.opts.ArtistOverrides {
		if strings.EqualFold(override.Face, string(rec.Face)) && textutil.EqualFold(override.Card, rec.Name) {
			return i, true
		}
	}
	return 0, false
}

func (d *Deriver) rendered(rec *card.Record) bool {
	if d.opts.OutputDir == "" {
		return false
	}
	return fileutil.Exists(filepath.Join(d.opts.OutputDir, card.OutputFileName(rec.DisplayName)))
}

func (d *Deriver) warnMissing(entry catalog.Entry, face card.Face, field string, report *Report) {
	report.MissingFields++
	attrs := []logging.Attr{
		logging.String(logging.FieldCard, entry.Name),
		logging.String("field", field),
		logging.Int("position", entry.Position),
		logging.String(logging.FieldImpact, "record kept; batch validation may reject it"),
		logging.String(logging.FieldErrorHint, "check the catalog entry for this card"),
	}
	if face != "" {
		attrs = append(attrs, logging.String(logging.FieldFace, string(face)))
	}
	logging.WarnWithContext(d.logger, "catalog entry missing field", "catalog_missing_field", attrs...)
}

func (d *Deriver) reportUnmatched(pool *card.Pool, usedOverrides []bool, report *Report) {
	if d.subset.Len() > 0 {
		derived := textutil.NewFoldSet()
		for _, rec := range pool.Records() {
			derived.Add(rec.Name)
		}
		report.UnmatchedSubset = d.subset.Missing(derived)
		for _, name := range report.UnmatchedSubset {
			logging.WarnWithContext(d.logger, "subset card not found among legal cards", "subset_unmatched",
				logging.String(logging.FieldCard, name),
				logging.String(logging.FieldErrorHint, "verify the name in cards.subset matches the catalog"),
				logging.String(logging.FieldImpact, "card will not be rendered"),
			)
		}
	}

	// Overrides for cards skipped as already rendered are expected to go unused.
	if d.opts.UpdatesOnly {
		return
	}
	for i, override := range d.opts.ArtistOverrides {
		if usedOverrides[i] {
			continue
		}
		report.UnusedOverrides = append(report.UnusedOverrides, override)
		logging.WarnWithContext(d.logger, "artist override matched no card", "artist_override_unused",
			logging.String(logging.FieldCard, override.Card),
			logging.String(logging.FieldFace, override.Face),
			logging.String(logging.FieldErrorHint, "verify cards.artist_overrides card name and face"),
			logging.String(logging.FieldImpact, "override has no effect"),
		)
	}
}
