package render

import (
	"time"

	"github.com/shouni/go-vn-stage/pkg/vnstage/timeline"
)

// ElementKind は描画要素の種別です。
type ElementKind string

const (
	ElementBackground ElementKind = "background"
	ElementSprite     ElementKind = "sprite"
	ElementBalloon    ElementKind = "balloon"
	ElementText       ElementKind = "text"
	ElementBadge      ElementKind = "badge"
)

// Align はテキストの水平揃えです。
type Align string

const (
	AlignCenter Align = "center"
	AlignLeft   Align = "left"
	AlignRight  Align = "right"
)

// Element は1つの描画要素です。Elements の並び順がそのまま描画順になります。
type Element struct {
	Kind       ElementKind `json:"kind"`
	ID         string      `json:"id,omitempty"`
	Image      string      `json:"image,omitempty"`
	X          float64     `json:"x"`
	Y          float64     `json:"y"`
	Width      float64     `json:"width"`
	Height     float64     `json:"height"`
	Opacity    float64     `json:"opacity"`
	Color      string      `json:"color,omitempty"`
	TextColor  string      `json:"text_color,omitempty"` // バッジの文字色
	Lines      []string    `json:"lines,omitempty"`
	FontSize   float64     `json:"font_size,omitempty"`
	LineHeight float64     `json:"line_height,omitempty"`
	Align      Align       `json:"align,omitempty"`
}

// Description はエンコーダに渡す1枚の静止画の記述です。
type Description struct {
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	Background string    `json:"background"`
	Elements   []Element `json:"elements"`
}

// Entry は静止画記述とその表示時間の組です。
type Entry struct {
	Index           int                  `json:"index"`
	Segment         timeline.SegmentKind `json:"segment"`
	Start           time.Duration        `json:"start"`
	Duration        time.Duration        `json:"duration"`
	DurationSeconds float64              `json:"duration_seconds"`
	Audio           string               `json:"audio,omitempty"`
	Description     Description          `json:"description"`
}

// Style はキャンバスと各要素の見た目の設定です。
type Style struct {
	Width      int
	Height     int
	Background string

	SpriteTop    float64
	SpriteHeight float64

	BalloonColor string
	TextColor    string

	CardBackground      string
	CardTextColor       string
	BadgeColor          string
	BadgeTextColor      string
	TitleFontSize       float64
	WordFontSize        float64
	TranslationFontSize float64

	SeparatorBackground string
	SeparatorTextColor  string
	SeparatorText       string
}
