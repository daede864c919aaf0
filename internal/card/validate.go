package card

import (
	"proxymill/internal/services"
)

// Validate rejects a record that needs an override it has no data for.
func Validate(rec *Record, flags Flags) error {
	var reason string
	switch {
	case rec.Name == "":
		reason = "missing name"
	case flags.Color && len(rec.Color) != rec.ColorCount:
		reason = "color and color count are mismatched"
	case flags.Watermark && rec.Watermark == "":
		reason = "watermark is missing"
	case flags.Artist && rec.Artist == "":
		reason = "artist is missing"
	case flags.Art && rec.ArtFileName == "":
		reason = "art file is missing"
	default:
		return nil
	}
	return services.Wrap(services.ErrValidation, "card", rec.DisplayName, reason, nil)
}
