package timeline

import (
	"time"

	"github.com/shouni/go-vn-stage/pkg/vnstage/balloon"
	"github.com/shouni/go-vn-stage/pkg/vnstage/domain"
)

// ----------------------------------------------------------------------
// データモデル (タイムライン)
// ----------------------------------------------------------------------

// SegmentKind はタイムラインの区間種別です。
type SegmentKind string

const (
	SegmentHook      SegmentKind = "hook"
	SegmentBlind     SegmentKind = "blind"
	SegmentSeparator SegmentKind = "separator"
	SegmentReveal    SegmentKind = "reveal"
	SegmentVocab     SegmentKind = "vocab"
)

// CardKind は静止カードの種別です。
type CardKind string

const (
	CardHook      CardKind = "hook"
	CardSeparator CardKind = "separator"
	CardVocab     CardKind = "vocab"
)

// Placement はステージ上の1キャラクターの配置とフォーカス状態です。
type Placement struct {
	ID          string  `json:"id"`
	Image       string  `json:"image"`
	Slot        int     `json:"slot"`
	X           float64 `json:"x"`
	SlotWidth   float64 `json:"slot_width"`
	SpriteWidth float64 `json:"sprite_width"`
	Z           int     `json:"z"`
	Opacity     float64 `json:"opacity"`
}

// Scene は発話1つ分のステージ状態です。
type Scene struct {
	Speaker  string             `json:"speaker"`
	Cast     []Placement        `json:"cast"`
	Balloons []balloon.Geometry `json:"balloons"`
}

// Card はフック・区切り・語彙カードなどの静止フレームの内容です。
type Card struct {
	Kind  CardKind          `json:"kind"`
	Title string            `json:"title,omitempty"`
	Level string            `json:"level,omitempty"`
	Term  *domain.VocabTerm `json:"term,omitempty"`
}

// Frame は開始時刻と長さを持つ1枚の静止画です。Scene か Card のどちらか一方を持ちます。
type Frame struct {
	Segment  SegmentKind          `json:"segment"`
	Index    int                  `json:"index"` // 発話または語彙のインデックス。カードでは区間内の連番
	Start    time.Duration        `json:"start"`
	Duration time.Duration        `json:"duration"`
	Scene    *Scene               `json:"scene,omitempty"`
	Card     *Card                `json:"card,omitempty"`
	Audio    *domain.AudioClipRef `json:"audio,omitempty"`
}

// End はフレームの終了時刻です。
func (f Frame) End() time.Duration {
	return f.Start + f.Duration
}

// Segment はタイムライン上の名前付き区間です。Frames[First:First+Count] に対応します。
type Segment struct {
	Kind     SegmentKind   `json:"kind"`
	Start    time.Duration `json:"start"`
	Duration time.Duration `json:"duration"`
	First    int           `json:"first"`
	Count    int           `json:"count"`
}

// Timeline は時刻順に並んだフレーム列です。
type Timeline struct {
	Segments []Segment `json:"segments"`
	Frames   []Frame   `json:"frames"`
}
