package card

import (
	"fmt"
	"strings"

	"proxymill/internal/textutil"
)

// Face identifies the physical side of a dual card.
type Face string

const (
	Front Face = "front"
	Back  Face = "back"
)

// ParseFace converts a case-insensitive face name.
func ParseFace(value string) (Face, bool) {
	switch Face(strings.ToLower(strings.TrimSpace(value))) {
	case Front:
		return Front, true
	case Back:
		return Back, true
	default:
		return "", false
	}
}

// Layout is the physical structure of the card.
type Layout string

const (
	LayoutSplit     Layout = "split"
	LayoutAdventure Layout = "adventure"
)

// ParseLayout converts a catalog layout string. Only split and adventure are supported.
func ParseLayout(value string) (Layout, bool) {
	switch Layout(strings.ToLower(strings.TrimSpace(value))) {
	case LayoutSplit:
		return LayoutSplit, true
	case LayoutAdventure:
		return LayoutAdventure, true
	default:
		return "", false
	}
}

// Template selects the rendering treatment and therefore the pass that renders a face.
// Values match the pass names used in configuration.
type Template string

const (
	TemplateStandard      Template = "standard"
	TemplateSketch        Template = "sketch"
	TemplateDoubleFeature Template = "double_feature"
)

// ParseTemplate converts a pass name into a Template.
func ParseTemplate(value string) (Template, bool) {
	switch Template(strings.ToLower(strings.TrimSpace(value))) {
	case TemplateStandard:
		return TemplateStandard, true
	case TemplateSketch:
		return TemplateSketch, true
	case TemplateDoubleFeature:
		return TemplateDoubleFeature, true
	default:
		return "", false
	}
}

// NameSeparator splits the full dual name into face names.
const NameSeparator = " // "

// Record is one face of a two-faced card.
type Record struct {
	Name         string
	DisplayName  string
	Face         Face
	Layout       Layout
	Template     Template
	Color        string
	ColorCount   int
	ArtFileName  string
	Artist       string
	Watermark    string
	ManualArtist bool

	index   int
	sibling int
}

// New builds a record for one face. The display name and color fields are derived
// from name and manaCost.
func New(name string, face Face, layout Layout, template Template, manaCost, artFileName, artist, watermark string) *Record {
	color := CanonicalColor(manaCost)
	return &Record{
		Name:        name,
		DisplayName: DisplayName(name, face),
		Face:        face,
		Layout:      layout,
		Template:    template,
		Color:       color,
		ColorCount:  len(color),
		ArtFileName: artFileName,
		Artist:      artist,
		Watermark:   watermark,
		index:       -1,
		sibling:     -1,
	}
}

// DisplayName returns the single-face name: the first segment for the front and
// the last for the back.
func DisplayName(name string, face Face) string {
	parts := strings.Split(name, NameSeparator)
	if face == Back {
		return strings.TrimSpace(parts[len(parts)-1])
	}
	return strings.TrimSpace(parts[0])
}

// ArtFileName derives the art crop file name for a face: the face's segment of the
// slash-separated name with spaces and apostrophes removed, lowercased, plus ext.
func ArtFileName(name string, face Face, ext string) string {
	parts := strings.Split(name, "/")
	segment := parts[0]
	if face == Back {
		segment = parts[len(parts)-1]
	}
	segment = strings.NewReplacer(" ", "", "'", "").Replace(segment)
	if segment == "" {
		return ""
	}
	return strings.ToLower(segment) + ext
}

// CorrectArtist replaces the artist and marks it as manually corrected.
func (r *Record) CorrectArtist(artist string) {
	r.Artist = artist
	r.ManualArtist = true
}

// Index returns the record's position in its pool, or -1 when unpooled.
func (r *Record) Index() int { return r.index }

func (r *Record) String() string {
	return fmt.Sprintf("%s (%s %s)", r.DisplayName, r.Layout, r.Face)
}

// OutputFileName returns the canonical output image name for a display name.
func OutputFileName(displayName string) string {
	return textutil.SanitizeFileName(displayName) + ".png"
}
