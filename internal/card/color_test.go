package card_test

import (
	"testing"

	"proxymill/internal/card"
)

func TestCanonicalColor(t *testing.T) {
	tests := []struct {
		manaCost string
		want     string
	}{
		{"{2}{G}", "G"},
		{"{1}{U}{G}", "GU"},
		{"{G}{U}", "GU"},
		{"{W}{G}", "GW"},
		{"{R}{W}", "RW"},
		{"{w}{r}", "RW"},
		{"{U}{B}", "UB"},
		{"{B}{G}", "BG"},
		{"{2}{W}{U}{B}", "WUB"},
		{"{G/U}", "GU"},
		{"{3}", ""},
		{"", ""},
	}
	for _, tc := range tests {
		t.Run(tc.manaCost, func(t *testing.T) {
			if got := card.CanonicalColor(tc.manaCost); got != tc.want {
				t.Fatalf("CanonicalColor(%q) = %q, want %q", tc.manaCost, got, tc.want)
			}
		})
	}
}

func TestCanonicalColorIsIdempotent(t *testing.T) {
	for _, input := range []string{"{U}{G}", "{W}{G}", "{W}{R}", "{W}{U}{B}{R}{G}", "{B}{R}", "{W}"} {
		once := card.CanonicalColor(input)
		twice := card.CanonicalColor(once)
		if once != twice {
			t.Fatalf("canonicalization not idempotent for %q: %q then %q", input, once, twice)
		}
	}
}

func TestCanonicalColorSwapsAreOneWay(t *testing.T) {
	swaps := map[string]string{"UG": "GU", "WG": "GW", "WR": "RW"}
	for naive, want := range swaps {
		if got := card.CanonicalColor(naive); got != want {
			t.Fatalf("CanonicalColor(%q) = %q, want %q", naive, got, want)
		}
		if got := card.CanonicalColor(want); got != want {
			t.Fatalf("CanonicalColor(%q) = %q, must stay %q", want, got, want)
		}
	}
}
