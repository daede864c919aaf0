package catalog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"

	"proxymill/internal/services"
)

// FaceData holds the per-face fields of a catalog entry.
type FaceData struct {
	ManaCost  string
	Artist    string
	Watermark string
}

// Entry is one catalog record reduced to the fields proxymill uses.
type Entry struct {
	Position     int
	Name         string
	Layout       string
	SetCode      string
	SetType      string
	BorderColor  string
	Keywords     []string
	FrameEffects []string
	Promo        bool
	Reprint      bool
	Variation    bool
	Faces        []FaceData
}

// HasKeyword reports whether the entry carries keyword, ignoring case.
func (e Entry) HasKeyword(keyword string) bool {
	for _, k := range e.Keywords {
		if strings.EqualFold(k, keyword) {
			return true
		}
	}
	return false
}

var (
	pathName         = jp.MustParseString("name")
	pathLayout       = jp.MustParseString("layout")
	pathSet          = jp.MustParseString("set")
	pathSetType      = jp.MustParseString("set_type")
	pathBorderColor  = jp.MustParseString("border_color")
	pathKeywords     = jp.MustParseString("keywords[*]")
	pathFrameEffects = jp.MustParseString("frame_effects[*]")
	pathPromo        = jp.MustParseString("promo")
	pathReprint      = jp.MustParseString("reprint")
	pathVariation    = jp.MustParseString("variation")
	pathFaces        = jp.MustParseString("card_faces[*]")
	pathManaCost     = jp.MustParseString("mana_cost")
	pathArtist       = jp.MustParseString("artist")
	pathWatermark    = jp.MustParseString("watermark")
)

// Load opens and decodes the catalog at path.
func Load(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, services.Wrap(services.ErrNotFound, "catalog", "load", fmt.Sprintf("catalog %q not found", path), err)
		}
		return nil, services.Wrap(services.ErrConfiguration, "catalog", "load", "open catalog", err)
	}
	defer file.Close()
	return Decode(bufio.NewReaderSize(file, 1<<20))
}

// Decode parses a catalog document from r.
func Decode(r io.Reader) ([]Entry, error) {
	doc, err := oj.Load(r)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "catalog", "decode", "parse catalog json", err)
	}
	items, ok := doc.([]any)
	if !ok {
		return nil, services.Wrap(services.ErrValidation, "catalog", "decode", "catalog root must be an array", nil)
	}

	entries := make([]Entry, 0, len(items))
	for i, item := range items {
		if _, ok := item.(map[string]any); !ok {
			continue
		}
		entries = append(entries, decodeEntry(i, item))
	}
	return entries, nil
}

func decodeEntry(position int, node any) Entry {
	entry := Entry{
		Position:     position,
		Name:         stringAt(pathName, node),
		Layout:       strings.ToLower(stringAt(pathLayout, node)),
		SetCode:      strings.ToLower(stringAt(pathSet, node)),
		SetType:      strings.ToLower(stringAt(pathSetType, node)),
		BorderColor:  strings.ToLower(stringAt(pathBorderColor, node)),
		Keywords:     stringsAt(pathKeywords, node),
		FrameEffects: stringsAt(pathFrameEffects, node),
		Promo:        boolAt(pathPromo, node),
		Reprint:      boolAt(pathReprint, node),
		Variation:    boolAt(pathVariation, node),
	}
	// Split cards carry the artist at the top level as well; faces override it.
	topArtist := stringAt(pathArtist, node)
	for _, face := range pathFaces.Get(node) {
		data := FaceData{
			ManaCost:  stringAt(pathManaCost, face),
			Artist:    stringAt(pathArtist, face),
			Watermark: stringAt(pathWatermark, face),
		}
		if data.Artist == "" {
			data.Artist = topArtist
		}
		entry.Faces = append(entry.Faces, data)
	}
	return entry
}

func stringAt(x jp.Expr, node any) string {
	if s, ok := x.First(node).(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func stringsAt(x jp.Expr, node any) []string {
	var out []string
	for _, v := range x.Get(node) {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

func boolAt(x jp.Expr, node any) bool {
	b, _ := x.First(node).(bool)
	return b
}
