package layout

import (
	"errors"
	"math"
	"strconv"
	"testing"

	"github.com/shouni/go-vn-stage/pkg/vnstage/asset"
	"github.com/shouni/go-vn-stage/pkg/vnstage/domain"
)

type stubFinder map[string]bool

func (f stubFinder) Lookup(id string) (asset.Character, bool) {
	if !f[id] {
		return asset.Character{}, false
	}
	return asset.Character{ID: id}, true
}

func finderFor(n int) (stubFinder, []string) {
	f := stubFinder{}
	ids := make([]string, n)
	for i := range ids {
		ids[i] = "c" + strconv.Itoa(i)
		f[ids[i]] = true
	}
	return f, ids
}

func TestPlaceSymmetricSlots(t *testing.T) {
	bounds := Bounds{Left: 40, Top: 0, Width: 1000, Height: 1920}

	for n := 1; n <= 6; n++ {
		finder, ids := finderFor(n)
		engine := NewEngine(finder, Config{Bounds: bounds, MaxCharacters: 6})

		positions, err := engine.Place(ids)
		if err != nil {
			t.Fatalf("n=%d: place: %v", n, err)
		}
		if len(positions) != n {
			t.Fatalf("n=%d: expected %d positions, got %d", n, n, len(positions))
		}

		center := bounds.CenterX()
		for i, p := range positions {
			mirror := positions[n-1-i]
			if d := math.Abs((p.X - center) + (mirror.X - center)); d > 1e-9 {
				t.Fatalf("n=%d: slot %d not symmetric with slot %d (%.6f)", n, i, n-1-i, d)
			}
			if p.Slot != i || p.Z != i {
				t.Fatalf("n=%d: unexpected slot/z for %d: %+v", n, i, p)
			}
			if p.SpriteWidth > p.SlotWidth {
				t.Fatalf("n=%d: sprite wider than slot: %+v", n, p)
			}
			if i > 0 {
				prev := positions[i-1]
				if prev.X+prev.SpriteWidth/2 > p.X-p.SpriteWidth/2 {
					t.Fatalf("n=%d: sprites %d and %d overlap", n, i-1, i)
				}
			}
		}
	}
}

func TestPlaceTwoCharacters(t *testing.T) {
	finder := stubFinder{"Herbert": true, "Margot": true}
	engine := NewEngine(finder, Config{Bounds: Bounds{Width: 1080, Height: 1920}, MaxCharacters: 4})

	positions, err := engine.Place([]string{"Herbert", "Margot"})
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if positions[0].X != 270 || positions[1].X != 810 {
		t.Fatalf("expected x 270/810, got %.1f/%.1f", positions[0].X, positions[1].X)
	}
	if positions[0].SlotWidth != 540 {
		t.Fatalf("expected slot width 540, got %.1f", positions[0].SlotWidth)
	}
}

func TestPlaceDeterministic(t *testing.T) {
	finder, ids := finderFor(3)
	engine := NewEngine(finder, Config{Bounds: Bounds{Width: 900}, MaxCharacters: 3})

	a, err := engine.Place(ids)
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	b, err := engine.Place(ids)
	if err != nil {
		t.Fatalf("place again: %v", err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("expected identical positions, got %+v vs %+v", a[i], b[i])
		}
	}
}

func TestPlaceErrors(t *testing.T) {
	finder, ids := finderFor(3)
	engine := NewEngine(finder, Config{Bounds: Bounds{Width: 900}, MaxCharacters: 2})

	var layoutErr *domain.ErrLayout
	if _, err := engine.Place(ids); !errors.As(err, &layoutErr) {
		t.Fatalf("expected ErrLayout for too many characters, got %v", err)
	}
	if _, err := engine.Place([]string{"c0", "c0"}); !errors.As(err, &layoutErr) {
		t.Fatalf("expected ErrLayout for duplicate id, got %v", err)
	}

	var cfgErr *domain.ErrConfig
	if _, err := engine.Place([]string{"c0", "missing"}); !errors.As(err, &cfgErr) {
		t.Fatalf("expected ErrConfig for unknown id, got %v", err)
	}
	if cfgErr.CharacterID != "missing" {
		t.Fatalf("expected character id in error, got %+v", cfgErr)
	}

	positions, err := engine.Place(nil)
	if err != nil || len(positions) != 0 {
		t.Fatalf("expected empty placement, got %v, %v", positions, err)
	}
}
