package reconcile_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"proxymill/internal/card"
	"proxymill/internal/reconcile"
	"proxymill/internal/services"
)

func TestParseCandidate(t *testing.T) {
	tests := []struct {
		file   string
		want   reconcile.Candidate
		wantOK bool
	}{
		{file: "12 Bonecrusher Giant.png", want: reconcile.Candidate{Ordinal: 12, DisplayName: "Bonecrusher Giant"}, wantOK: true},
		{file: "13a Stomp.png", want: reconcile.Candidate{Ordinal: 13, DisplayName: "Stomp"}, wantOK: true},
		{file: "4ab Fire  Ice.PNG", want: reconcile.Candidate{Ordinal: 4, DisplayName: "Fire Ice"}, wantOK: true},
		{file: "12 Bonecrusher Giant.jpg"},
		{file: "Bonecrusher Giant.png"},
		{file: "0 Stomp.png"},
		{file: "12.png"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			path := filepath.Join("/raw", tt.file)
			got, ok := reconcile.ParseCandidate(path)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			tt.want.Path = path
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("candidate mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecide(t *testing.T) {
	front := card.New("Fire // Ice", card.Front, card.LayoutSplit, card.TemplateStandard, "{1}{R}", "fire.jpg", "A", "")
	back := card.New("Fire // Ice", card.Back, card.LayoutSplit, card.TemplateStandard, "{1}{U}", "ice.jpg", "A", "")
	sketchBack := card.New("Bonecrusher Giant // Stomp", card.Back, card.LayoutAdventure, card.TemplateSketch, "{1}{R}", "stomp.jpg", "A", "")
	dfBack := card.New("Driven // Despair", card.Back, card.LayoutSplit, card.TemplateDoubleFeature, "{1}{B}", "despair.jpg", "A", "")

	tests := []struct {
		name    string
		pass    card.Template
		rec     *card.Record
		ordinal int
		want    reconcile.Verdict
	}{
		{"standard front even", card.TemplateStandard, front, 2, reconcile.Keep},
		{"standard front odd", card.TemplateStandard, front, 3, reconcile.Discard},
		{"standard back odd", card.TemplateStandard, back, 3, reconcile.Keep},
		{"standard back even", card.TemplateStandard, back, 2, reconcile.Discard},
		{"standard defers sketch card", card.TemplateStandard, sketchBack, 3, reconcile.Deferred},
		{"sketch keeps back any parity", card.TemplateSketch, sketchBack, 2, reconcile.Keep},
		{"sketch keeps back odd", card.TemplateSketch, sketchBack, 7, reconcile.Keep},
		{"sketch discards front", card.TemplateSketch, front, 3, reconcile.Discard},
		{"sketch defers other template", card.TemplateSketch, dfBack, 3, reconcile.Deferred},
		{"double feature keeps back", card.TemplateDoubleFeature, dfBack, 4, reconcile.Keep},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := reconcile.Decide(tt.pass, tt.rec, tt.ordinal); got != tt.want {
				t.Fatalf("Decide = %s, want %s", got, tt.want)
			}
		})
	}
}

type fixture struct {
	raw    string
	output string
	pool   *card.Pool
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	base := t.TempDir()
	f := fixture{
		raw:    filepath.Join(base, "images", "fronts"),
		output: filepath.Join(base, "proxies"),
		pool:   card.NewPool(),
	}
	if err := os.MkdirAll(f.raw, 0o755); err != nil {
		t.Fatal(err)
	}
	f.pool.Pair(
		card.New("Fire // Ice", card.Front, card.LayoutSplit, card.TemplateStandard, "{1}{R}", "fire.jpg", "A", ""),
		card.New("Fire // Ice", card.Back, card.LayoutSplit, card.TemplateStandard, "{1}{U}", "ice.jpg", "A", ""),
	)
	f.pool.Pair(
		card.New("Bonecrusher Giant // Stomp", card.Front, card.LayoutAdventure, card.TemplateStandard, "{2}{R}", "bonecrushergiant.jpg", "A", ""),
		card.New("Bonecrusher Giant // Stomp", card.Back, card.LayoutAdventure, card.TemplateSketch, "{1}{R}", "stomp.jpg", "A", ""),
	)
	return f
}

func (f fixture) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(f.raw, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func (f fixture) read(t *testing.T, displayName string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.output, card.OutputFileName(displayName)))
	if err != nil {
		t.Fatalf("read output %s: %v", displayName, err)
	}
	return string(data)
}

func TestReconcileStandardPass(t *testing.T) {
	f := newFixture(t)
	f.write(t, "1 Fire.png", "fire-odd")
	f.write(t, "2 Fire.png", "fire-even")
	f.write(t, "3 Ice.png", "ice-odd")
	f.write(t, "4 Ice.png", "ice-even")
	f.write(t, "6 bonecrusher giant.png", "giant-even")
	f.write(t, "7 Stomp.png", "stomp-odd")
	f.write(t, "8 Unknown Card.png", "x")
	f.write(t, "notes.txt", "x")

	r := reconcile.New(reconcile.Options{RawDirs: []string{f.raw}, OutputDir: f.output})
	report, err := r.Reconcile("standard", f.pool)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if got := f.read(t, "Fire"); got != "fire-even" {
		t.Fatalf("Fire output = %q", got)
	}
	if got := f.read(t, "Ice"); got != "ice-odd" {
		t.Fatalf("Ice output = %q", got)
	}
	if got := f.read(t, "Bonecrusher Giant"); got != "giant-even" {
		t.Fatalf("Bonecrusher Giant output = %q", got)
	}
	if _, err := os.Stat(filepath.Join(f.output, "Stomp.png")); !os.IsNotExist(err) {
		t.Fatalf("sketch card must not be copied in the standard pass (err=%v)", err)
	}
	want := reconcile.Report{Pass: "standard", Scanned: 7, Ignored: 1, Unmatched: 1, Copied: 3, Discarded: 2, Deferred: 1}
	if diff := cmp.Diff(want, report, cmpCounts()); diff != "" {
		t.Fatalf("report mismatch (-want +got):\n%s", diff)
	}
	if len(report.Rendered) != 3 || len(report.Missing) != 0 {
		t.Fatalf("rendered=%d missing=%d", len(report.Rendered), len(report.Missing))
	}
	if _, err := os.Stat(filepath.Join(f.raw, "1 Fire.png")); err != nil {
		t.Fatalf("discarded candidate should remain without delete_discarded: %v", err)
	}
}

func TestReconcileStandardNeverOverwrites(t *testing.T) {
	f := newFixture(t)
	if err := os.MkdirAll(f.output, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(f.output, "Fire.png"), []byte("previous"), 0o644); err != nil {
		t.Fatal(err)
	}
	f.write(t, "2 Fire.png", "fresh")
	f.write(t, "4 Fire.png", "second")

	r := reconcile.New(reconcile.Options{RawDirs: []string{f.raw}, OutputDir: f.output})
	report, _ := r.Reconcile("standard", f.pool)
	if got := f.read(t, "Fire"); got != "previous" {
		t.Fatalf("standard pass overwrote existing output: %q", got)
	}
	if report.Unchanged != 2 || report.Copied != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestReconcileSketchPassOverwrites(t *testing.T) {
	f := newFixture(t)
	if err := os.MkdirAll(f.output, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(f.output, "Stomp.png"), []byte("previous"), 0o644); err != nil {
		t.Fatal(err)
	}
	f.write(t, "1 Bonecrusher Giant.png", "giant")
	f.write(t, "2 Stomp.png", "stomp-2")
	f.write(t, "3 Stomp.png", "stomp-3")

	r := reconcile.New(reconcile.Options{RawDirs: []string{f.raw}, OutputDir: f.output})
	report, err := r.Reconcile("sketch", f.pool)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if got := f.read(t, "Stomp"); got != "stomp-3" {
		t.Fatalf("sketch pass should keep the last candidate, got %q", got)
	}
	if _, err := os.Stat(filepath.Join(f.output, "Bonecrusher Giant.png")); !os.IsNotExist(err) {
		t.Fatalf("front face must not be copied in the sketch pass (err=%v)", err)
	}
	if report.Copied != 2 || report.Discarded != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestReconcileReportsMissing(t *testing.T) {
	f := newFixture(t)
	f.write(t, "2 Fire.png", "fire")

	r := reconcile.New(reconcile.Options{RawDirs: []string{f.raw, filepath.Join(f.raw, "absent")}, OutputDir: f.output})
	report, err := r.Reconcile("standard", f.pool)
	if !errors.Is(err, services.ErrRenderFailed) {
		t.Fatalf("expected render failed error, got %v", err)
	}
	var missing []string
	for _, rec := range report.Missing {
		missing = append(missing, rec.DisplayName)
	}
	if diff := cmp.Diff([]string{"Ice", "Bonecrusher Giant"}, missing); diff != "" {
		t.Fatalf("missing mismatch (-want +got):\n%s", diff)
	}
}

func TestReconcileDeletesDiscarded(t *testing.T) {
	f := newFixture(t)
	odd := f.write(t, "1 Fire.png", "odd")
	f.write(t, "2 Fire.png", "even")

	r := reconcile.New(reconcile.Options{RawDirs: []string{f.raw}, OutputDir: f.output, DeleteDiscarded: true})
	report, _ := r.Reconcile("standard", f.pool)
	if report.Deleted != 1 {
		t.Fatalf("expected one deletion, got %+v", report)
	}
	if _, err := os.Stat(odd); !os.IsNotExist(err) {
		t.Fatalf("discarded candidate should be deleted (err=%v)", err)
	}
}

func TestReconcileUnknownPass(t *testing.T) {
	f := newFixture(t)
	r := reconcile.New(reconcile.Options{RawDirs: []string{f.raw}, OutputDir: f.output})
	if _, err := r.Reconcile("watercolor", f.pool); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
