package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ohler55/ojg/oj"
)

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()
	writeFile(t, path, content, 0o644)
}

// WriteExecutable writes an executable script to path.
func WriteExecutable(t testing.TB, path, content string) {
	t.Helper()
	writeFile(t, path, content, 0o755)
}

func writeFile(t testing.TB, path, content string, mode os.FileMode) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), mode); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteCatalog writes entries as a JSON array catalog document.
func WriteCatalog(t testing.TB, path string, entries ...map[string]any) {
	t.Helper()
	doc := make([]any, 0, len(entries))
	for _, entry := range entries {
		doc = append(doc, entry)
	}
	WriteFile(t, path, oj.JSON(doc))
}

// AdventureEntry returns a catalog entry for a legal two-faced adventure card.
func AdventureEntry(name, frontCost, backCost, artist string) map[string]any {
	return twoFacedEntry(name, "adventure", frontCost, backCost, artist)
}

// SplitEntry returns a catalog entry for a legal split card.
func SplitEntry(name, frontCost, backCost, artist string) map[string]any {
	return twoFacedEntry(name, "split", frontCost, backCost, artist)
}

func twoFacedEntry(name, layout, frontCost, backCost, artist string) map[string]any {
	return map[string]any{
		"name":         name,
		"layout":       layout,
		"set":          "eld",
		"set_type":     "expansion",
		"border_color": "black",
		"promo":        false,
		"reprint":      false,
		"variation":    false,
		"artist":       artist,
		"card_faces": []any{
			map[string]any{"mana_cost": frontCost, "artist": artist},
			map[string]any{"mana_cost": backCost, "artist": artist},
		},
	}
}
