package render

import (
	"testing"
	"time"

	"github.com/shouni/go-vn-stage/pkg/vnstage/balloon"
	"github.com/shouni/go-vn-stage/pkg/vnstage/domain"
	"github.com/shouni/go-vn-stage/pkg/vnstage/timeline"
)

func sampleTimeline() *timeline.Timeline {
	scene := &timeline.Scene{
		Speaker: "Herbert",
		Cast: []timeline.Placement{
			{ID: "Margot", Image: "margot.png", Slot: 1, X: 810, SpriteWidth: 513, Z: 1, Opacity: 0.5},
			{ID: "Herbert", Image: "herbert.png", Slot: 0, X: 270, SpriteWidth: 513, Z: 0, Opacity: 1},
		},
		Balloons: []balloon.Geometry{{
			Speaker: "Herbert", X: 170, Y: 1000, Width: 200, Height: 120, CenterX: 270,
			Lines: []string{"I'm hungry"}, FontSize: 40, LineHeight: 40, Padding: 20,
		}},
	}
	return &timeline.Timeline{
		Segments: []timeline.Segment{
			{Kind: timeline.SegmentHook, Duration: 3 * time.Second, Count: 1},
			{Kind: timeline.SegmentReveal, Start: 3 * time.Second, Duration: 2 * time.Second, First: 1, Count: 1},
			{Kind: timeline.SegmentVocab, Start: 5 * time.Second, Duration: 2 * time.Second, First: 2, Count: 1},
		},
		Frames: []timeline.Frame{
			{Segment: timeline.SegmentHook, Duration: 3 * time.Second, Card: &timeline.Card{Kind: timeline.CardHook, Title: "Lunch time", Level: "A2"}},
			{Segment: timeline.SegmentReveal, Start: 3 * time.Second, Duration: 2 * time.Second, Scene: scene, Audio: &domain.AudioClipRef{DurationSeconds: 2, FileRef: "001.wav"}},
			{Segment: timeline.SegmentVocab, Start: 5 * time.Second, Duration: 2 * time.Second, Card: &timeline.Card{Kind: timeline.CardVocab, Term: &domain.VocabTerm{Word: "hungry", Translation: "お腹が空いた"}}},
		},
	}
}

func TestEmitPreservesOrderAndDurations(t *testing.T) {
	e := NewEmitter(Style{SpriteTop: 1300, SpriteHeight: 600})
	entries := e.Emit(sampleTimeline())

	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	wantSeconds := []float64{3, 2, 2}
	for i, entry := range entries {
		if entry.Index != i {
			t.Fatalf("entry %d has index %d", i, entry.Index)
		}
		if entry.DurationSeconds != wantSeconds[i] {
			t.Fatalf("entry %d: expected %.1fs, got %.3fs", i, wantSeconds[i], entry.DurationSeconds)
		}
		if entry.Description.Width != DefaultWidth || entry.Description.Height != DefaultHeight {
			t.Fatalf("entry %d: unexpected canvas %dx%d", i, entry.Description.Width, entry.Description.Height)
		}
		if entry.Description.Elements[0].Kind != ElementBackground {
			t.Fatalf("entry %d: first element must be the background", i)
		}
	}
	if entries[1].Audio != "001.wav" {
		t.Fatalf("expected audio ref on dialogue entry, got %q", entries[1].Audio)
	}
}

func TestDescribeScenePaintOrder(t *testing.T) {
	e := NewEmitter(Style{SpriteTop: 1300, SpriteHeight: 600})
	d := e.Describe(sampleTimeline().Frames[1])

	kinds := make([]ElementKind, len(d.Elements))
	for i, el := range d.Elements {
		kinds[i] = el.Kind
	}
	want := []ElementKind{ElementBackground, ElementSprite, ElementSprite, ElementBalloon, ElementText}
	if len(kinds) != len(want) {
		t.Fatalf("unexpected elements: %v", kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("unexpected paint order: %v", kinds)
		}
	}

	herbert, margot := d.Elements[1], d.Elements[2]
	if herbert.ID != "Herbert" || margot.ID != "Margot" {
		t.Fatalf("sprites not ordered by z: %s, %s", herbert.ID, margot.ID)
	}
	if herbert.Opacity != 1 || margot.Opacity != 0.5 {
		t.Fatalf("unexpected opacities: %.1f / %.1f", herbert.Opacity, margot.Opacity)
	}
	if herbert.X != 270-513.0/2 || herbert.Y != 1300 || herbert.Height != 600 {
		t.Fatalf("unexpected sprite box: %+v", herbert)
	}

	text := d.Elements[4]
	if text.X != 190 || text.Y != 1020 || text.Lines[0] != "I'm hungry" {
		t.Fatalf("unexpected balloon text: %+v", text)
	}
}

func TestDescribeBlindBalloonHasNoText(t *testing.T) {
	e := NewEmitter(Style{})
	f := sampleTimeline().Frames[1]
	scene := *f.Scene
	scene.Balloons = []balloon.Geometry{{Speaker: "Herbert", X: 170, Y: 1080, Width: 200, Height: 120, Blind: true}}
	f.Scene = &scene

	for _, el := range e.Describe(f).Elements {
		if el.Kind == ElementText {
			t.Fatalf("blind balloon must not carry text: %+v", el)
		}
	}
}

func TestDescribeVocabCard(t *testing.T) {
	e := NewEmitter(Style{})
	d := e.Describe(sampleTimeline().Frames[2])

	var badge, translation *Element
	for i := range d.Elements {
		switch d.Elements[i].Kind {
		case ElementBadge:
			badge = &d.Elements[i]
		case ElementText:
			translation = &d.Elements[i]
		}
	}
	if badge == nil || translation == nil {
		t.Fatalf("expected badge and translation, got %+v", d.Elements)
	}
	spine := float64(DefaultWidth) / 2
	if badge.X+badge.Width > spine || translation.X < spine {
		t.Fatalf("badge and translation must sit on either side of the centre: %+v %+v", badge, translation)
	}
	if badge.TextColor != "#FFFFFF" {
		t.Fatalf("badge text color = %q, want default white", badge.TextColor)
	}
	if translation.Align != AlignLeft {
		t.Fatalf("expected left-aligned translation, got %q", translation.Align)
	}
}

func TestWrapRunes(t *testing.T) {
	lines := wrapRunes("Check your understanding of this conversation", 12)
	for _, l := range lines {
		if len([]rune(l)) > 12 {
			t.Fatalf("line too long: %q", l)
		}
	}
	want := []string{"Check your", "understandin", "g of this", "conversation"}
	if len(lines) != len(want) {
		t.Fatalf("expected %q, got %q", want, lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("expected %q, got %q", want, lines)
		}
	}
}
