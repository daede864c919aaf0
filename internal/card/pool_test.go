package card_test

import (
	"testing"

	"proxymill/internal/card"
)

func adventurePair(frontCost, backCost, frontArtist, backArtist string) (*card.Record, *card.Record) {
	name := "Bonecrusher Giant // Stomp"
	front := card.New(name, card.Front, card.LayoutAdventure, card.TemplateStandard, frontCost, "bonecrushergiant.jpg", frontArtist, "")
	back := card.New(name, card.Back, card.LayoutAdventure, card.TemplateSketch, backCost, "stomp.jpg", backArtist, "")
	return front, back
}

func TestPairLinksSiblingsSymmetrically(t *testing.T) {
	pool := card.NewPool()
	front, back := adventurePair("{2}{R}", "{1}{R}", "Victor Adame Minguez", "Victor Adame Minguez")
	pool.Pair(front, back)

	if pool.Sibling(front) != back {
		t.Fatal("front sibling should be back")
	}
	if pool.Sibling(back) != front {
		t.Fatal("back sibling should be front")
	}
	if pool.Len() != 2 || pool.At(0) != front || pool.At(1) != back {
		t.Fatalf("unexpected pool order: %v", pool.Records())
	}
}

func TestLinkToIsOneWay(t *testing.T) {
	pool := card.NewPool()
	front, back := adventurePair("{2}{R}", "{1}{R}", "A", "A")
	pool.Pair(front, back)

	other := card.New("Other Giant // Stomp", card.Front, card.LayoutAdventure, card.TemplateStandard, "{G}", "othergiant.jpg", "B", "")
	pool.Append(other)
	pool.LinkTo(other, back)

	if pool.Sibling(other) != back {
		t.Fatal("expected other to resolve to the existing back face")
	}
	if pool.Sibling(back) != front {
		t.Fatal("existing back must keep its original sibling")
	}
}

func TestFlags(t *testing.T) {
	t.Run("same colors and artists", func(t *testing.T) {
		pool := card.NewPool()
		front, back := adventurePair("{2}{R}", "{1}{R}", "A", "A")
		pool.Pair(front, back)

		got := pool.Flags(front)
		if got.Color || got.Artist || got.Art || got.Watermark {
			t.Fatalf("adventure front with matching sibling needs no overrides: %+v", got)
		}
		got = pool.Flags(back)
		if got.Color || got.Artist || !got.Art || got.Watermark {
			t.Fatalf("adventure back needs only art override: %+v", got)
		}
	})

	t.Run("different colors and artists", func(t *testing.T) {
		pool := card.NewPool()
		front, back := adventurePair("{2}{G}", "{1}{U}", "A", "B")
		pool.Pair(front, back)

		for _, rec := range []*card.Record{front, back} {
			got := pool.Flags(rec)
			if !got.Color || !got.Artist {
				t.Fatalf("%s should need color and artist overrides: %+v", rec.DisplayName, got)
			}
		}
	})

	t.Run("manual artist and split layout", func(t *testing.T) {
		pool := card.NewPool()
		front := card.New("Fire // Ice", card.Front, card.LayoutSplit, card.TemplateStandard, "{1}{R}", "fire.jpg", "A", "")
		back := card.New("Fire // Ice", card.Back, card.LayoutSplit, card.TemplateStandard, "{1}{U}", "ice.jpg", "A", "")
		pool.Pair(front, back)
		front.CorrectArtist("A")

		got := pool.Flags(front)
		if !got.Artist {
			t.Fatal("manually corrected artist always needs an override")
		}
		if !got.Art {
			t.Fatal("split front needs an art override")
		}
	})

	t.Run("unlinked record compares against empty face", func(t *testing.T) {
		pool := card.NewPool()
		rec := pool.Append(card.New("Fire // Ice", card.Front, card.LayoutSplit, card.TemplateStandard, "{R}", "fire.jpg", "A", ""))
		if pool.Sibling(rec) != nil {
			t.Fatal("expected no sibling")
		}
		if got := pool.Flags(rec); !got.Color || !got.Artist {
			t.Fatalf("unexpected flags for unlinked record: %+v", got)
		}
	})
}

func TestBackfillWatermarksIsIdempotent(t *testing.T) {
	pool := card.NewPool()
	front := card.New("Status // Statue", card.Front, card.LayoutSplit, card.TemplateStandard, "{B/G}", "status.jpg", "A", "golgari")
	back := card.New("Status // Statue", card.Back, card.LayoutSplit, card.TemplateStandard, "{2}{B}{G}", "statue.jpg", "A", "")
	pool.Pair(front, back)

	if !pool.Flags(back).Watermark {
		t.Fatal("back should need a watermark override because the front has one")
	}
	changed := pool.BackfillWatermarks()
	if len(changed) != 1 || changed[0] != back {
		t.Fatalf("expected only the back to change, got %v", changed)
	}
	if back.Watermark != "golgari" {
		t.Fatalf("back watermark = %q", back.Watermark)
	}
	if again := pool.BackfillWatermarks(); len(again) != 0 {
		t.Fatalf("second backfill changed %v", again)
	}
	if err := card.Validate(back, pool.Flags(back)); err != nil {
		t.Fatalf("backfilled record should validate: %v", err)
	}
}

func TestWithTemplateAndLookup(t *testing.T) {
	pool := card.NewPool()
	front, back := adventurePair("{2}{R}", "{1}{R}", "A", "A")
	pool.Pair(front, back)

	standard := pool.WithTemplate(card.TemplateStandard)
	if len(standard) != 1 || standard[0] != front {
		t.Fatalf("standard records = %v", standard)
	}
	sketch := pool.WithTemplate(card.TemplateSketch)
	if len(sketch) != 1 || sketch[0] != back {
		t.Fatalf("sketch records = %v", sketch)
	}
	if pool.ByDisplayName("Stomp") != back {
		t.Fatal("expected lookup by display name")
	}
	if pool.ByDisplayName("stomp") != nil {
		t.Fatal("display name lookup is exact")
	}
}
