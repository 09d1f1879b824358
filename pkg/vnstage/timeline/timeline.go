package timeline

import (
	"fmt"
	"time"
)

// Total はすべてのフレームの長さの合計です。
func (t *Timeline) Total() time.Duration {
	var total time.Duration
	for _, f := range t.Frames {
		total += f.Duration
	}
	return total
}

// Segment は種別に対応する区間を返します。
func (t *Timeline) Segment(kind SegmentKind) (Segment, bool) {
	for _, s := range t.Segments {
		if s.Kind == kind {
			return s, true
		}
	}
	return Segment{}, false
}

// SegmentFrames は区間に属するフレームのスライスを返します (コピーではありません)。
func (t *Timeline) SegmentFrames(kind SegmentKind) []Frame {
	s, ok := t.Segment(kind)
	if !ok {
		return nil
	}
	return t.Frames[s.First : s.First+s.Count]
}

// DialogueOnly はリビール区間だけを開始 0 に詰め直したタイムラインを返します。
// レイアウトを再計算せず合成済みのフレームを切り出すため、見た目は元の区間と同一です。
func (t *Timeline) DialogueOnly() *Timeline {
	reveal := t.SegmentFrames(SegmentReveal)
	out := &Timeline{Frames: make([]Frame, len(reveal))}
	if len(reveal) == 0 {
		return out
	}

	offset := reveal[0].Start
	for i, f := range reveal {
		f.Start -= offset
		out.Frames[i] = f
	}
	out.Segments = []Segment{{
		Kind:     SegmentReveal,
		Start:    0,
		Duration: out.Frames[len(out.Frames)-1].End(),
		First:    0,
		Count:    len(out.Frames),
	}}
	return out
}

// Verify はフレームが隙間・重なりなく連続し、区間がフレーム列を過不足なく分割していることを検証します。
func (t *Timeline) Verify() error {
	var cursor time.Duration
	for i, f := range t.Frames {
		if f.Start != cursor {
			return fmt.Errorf("フレーム #%d の開始時刻 %v が直前の終了時刻 %v と一致しません", i, f.Start, cursor)
		}
		if f.Duration < 0 {
			return fmt.Errorf("フレーム #%d の長さが負です: %v", i, f.Duration)
		}
		cursor = f.End()
	}

	next := 0
	var segTotal time.Duration
	for _, s := range t.Segments {
		if s.First != next {
			return fmt.Errorf("区間 %s の開始フレーム %d が期待値 %d と一致しません", s.Kind, s.First, next)
		}
		var d time.Duration
		if s.Count < 0 || s.First+s.Count > len(t.Frames) {
			return fmt.Errorf("区間 %s のフレーム範囲 [%d, %d) がフレーム数 %d を超えています", s.Kind, s.First, s.First+s.Count, len(t.Frames))
		}
		for _, f := range t.Frames[s.First : s.First+s.Count] {
			if f.Segment != s.Kind {
				return fmt.Errorf("区間 %s に別区間 %s のフレームが混在しています", s.Kind, f.Segment)
			}
			d += f.Duration
		}
		if d != s.Duration {
			return fmt.Errorf("区間 %s の長さ %v がフレーム合計 %v と一致しません", s.Kind, s.Duration, d)
		}
		next += s.Count
		segTotal += s.Duration
	}
	if next != len(t.Frames) {
		return fmt.Errorf("区間に属さないフレームがあります (%d / %d)", next, len(t.Frames))
	}
	if segTotal != cursor {
		return fmt.Errorf("区間長の合計 %v が全体長 %v と一致しません", segTotal, cursor)
	}
	return nil
}
