package card

import "strings"

// colorOrder is the fixed output order of color symbols.
const colorOrder = "WUBRG"

// pairSwaps maps two-color combinations to the order the renderer recognizes.
var pairSwaps = map[string]string{
	"UG": "GU",
	"WG": "GW",
	"WR": "RW",
}

// CanonicalColor returns the renderer color string for a mana cost (or an existing
// color string). Symbols are collected by presence in WUBRG order, then the
// two-color swap table is applied. The result is stable under repeated application.
func CanonicalColor(manaCost string) string {
	upper := strings.ToUpper(manaCost)
	var b strings.Builder
	for _, symbol := range colorOrder {
		if strings.ContainsRune(upper, symbol) {
			b.WriteRune(symbol)
		}
	}
	color := b.String()
	if swapped, ok := pairSwaps[color]; ok {
		return swapped
	}
	return color
}
