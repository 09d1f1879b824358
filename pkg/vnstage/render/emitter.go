package render

import (
	"cmp"
	"sort"

	"github.com/shouni/go-vn-stage/pkg/vnstage/timeline"
)

// 縦型動画のデフォルトのキャンバス
const (
	DefaultWidth  = 1080
	DefaultHeight = 1920
)

// Emitter はタイムラインのフレームを描画要素の列に射影します。時間計算は行いません。
type Emitter struct {
	style Style
}

// NewEmitter は新しい Emitter を作成します。未設定の値にはデフォルトを適用します。
func NewEmitter(style Style) *Emitter {
	style.Width = cmp.Or(style.Width, DefaultWidth)
	style.Height = cmp.Or(style.Height, DefaultHeight)
	style.Background = cmp.Or(style.Background, "#FFFFFF")
	style.BalloonColor = cmp.Or(style.BalloonColor, "#FFFFFF")
	style.TextColor = cmp.Or(style.TextColor, "#000000")
	style.CardBackground = cmp.Or(style.CardBackground, "#FFFFFF")
	style.CardTextColor = cmp.Or(style.CardTextColor, "#333333")
	style.BadgeColor = cmp.Or(style.BadgeColor, "#3B82F6")
	style.BadgeTextColor = cmp.Or(style.BadgeTextColor, "#FFFFFF")
	style.TitleFontSize = cmp.Or(style.TitleFontSize, 100)
	style.WordFontSize = cmp.Or(style.WordFontSize, 100)
	style.TranslationFontSize = cmp.Or(style.TranslationFontSize, 70)
	style.SeparatorBackground = cmp.Or(style.SeparatorBackground, "#000000")
	style.SeparatorTextColor = cmp.Or(style.SeparatorTextColor, "#FFFFFF")
	style.SeparatorText = cmp.Or(style.SeparatorText, "Check your understanding...")
	return &Emitter{style: style}
}

// Emit はタイムライン順に Entry を返します。
func (e *Emitter) Emit(tl *timeline.Timeline) []Entry {
	entries := make([]Entry, len(tl.Frames))
	for i, f := range tl.Frames {
		entry := Entry{
			Index:           i,
			Segment:         f.Segment,
			Start:           f.Start,
			Duration:        f.Duration,
			DurationSeconds: f.Duration.Seconds(),
			Description:     e.Describe(f),
		}
		if f.Audio != nil {
			entry.Audio = f.Audio.FileRef
		}
		entries[i] = entry
	}
	return entries
}

// Describe は1フレームを描画要素に変換します。
func (e *Emitter) Describe(f timeline.Frame) Description {
	switch {
	case f.Scene != nil:
		return e.describeScene(f.Scene)
	case f.Card != nil:
		return e.describeCard(f.Card)
	default:
		return e.canvas(e.style.Background)
	}
}

func (e *Emitter) canvas(background string) Description {
	return Description{
		Width:      e.style.Width,
		Height:     e.style.Height,
		Background: background,
		Elements: []Element{{
			Kind:    ElementBackground,
			Width:   float64(e.style.Width),
			Height:  float64(e.style.Height),
			Opacity: 1,
			Color:   background,
		}},
	}
}

func (e *Emitter) describeScene(s *timeline.Scene) Description {
	d := e.canvas(e.style.Background)

	cast := make([]timeline.Placement, len(s.Cast))
	copy(cast, s.Cast)
	sort.SliceStable(cast, func(i, j int) bool { return cast[i].Z < cast[j].Z })

	for _, p := range cast {
		d.Elements = append(d.Elements, Element{
			Kind:    ElementSprite,
			ID:      p.ID,
			Image:   p.Image,
			X:       p.X - p.SpriteWidth/2,
			Y:       e.style.SpriteTop,
			Width:   p.SpriteWidth,
			Height:  e.style.SpriteHeight,
			Opacity: p.Opacity,
		})
	}

	for _, g := range s.Balloons {
		d.Elements = append(d.Elements, Element{
			Kind:    ElementBalloon,
			ID:      g.Speaker,
			X:       g.X,
			Y:       g.Y,
			Width:   g.Width,
			Height:  g.Height,
			Opacity: 1,
			Color:   e.style.BalloonColor,
		})
		if g.Blind || len(g.Lines) == 0 {
			continue
		}
		lines := make([]string, len(g.Lines))
		copy(lines, g.Lines)
		d.Elements = append(d.Elements, Element{
			Kind:       ElementText,
			ID:         g.Speaker,
			X:          g.X + g.Padding,
			Y:          g.Y + g.Padding,
			Width:      g.Width - 2*g.Padding,
			Height:     g.Height - 2*g.Padding,
			Opacity:    1,
			Color:      e.style.TextColor,
			Lines:      lines,
			FontSize:   g.FontSize,
			LineHeight: g.LineHeight,
			Align:      AlignCenter,
		})
	}

	return d
}

func (e *Emitter) describeCard(c *timeline.Card) Description {
	w, h := float64(e.style.Width), float64(e.style.Height)

	switch c.Kind {
	case timeline.CardSeparator:
		d := e.canvas(e.style.SeparatorBackground)
		size := e.style.TitleFontSize * 0.8
		d.Elements = append(d.Elements, e.centeredText(e.style.SeparatorText, size, w*0.1, h/2, w*0.8, e.style.SeparatorTextColor))
		return d

	case timeline.CardVocab:
		d := e.canvas(e.style.CardBackground)
		if c.Term == nil {
			return d
		}
		return e.vocabCard(d, c)

	default:
		d := e.canvas(e.style.CardBackground)
		d.Elements = append(d.Elements, e.centeredText(c.Title, e.style.TitleFontSize, w*0.1, h/2, w*0.8, e.style.CardTextColor))
		if c.Level != "" {
			size := e.style.TitleFontSize * 0.6
			bw := estimateWidth(c.Level, size) + size
			d.Elements = append(d.Elements, Element{
				Kind:       ElementBadge,
				X:          (w - bw) / 2,
				Y:          h*0.3 - size,
				Width:      bw,
				Height:     size * 1.6,
				Opacity:    1,
				Color:      e.style.BadgeColor,
				TextColor:  e.style.BadgeTextColor,
				Lines:      []string{c.Level},
				FontSize:   size,
				LineHeight: size * 1.6,
				Align:      AlignCenter,
			})
		}
		return d
	}
}

// vocabCard は単語バッジを中心線の左に右揃えで、訳語を右に左揃えで配置します。
func (e *Emitter) vocabCard(d Description, c *timeline.Card) Description {
	const gap = 20
	w, h := float64(e.style.Width), float64(e.style.Height)
	spine := w / 2

	wordSize := e.style.WordFontSize
	bw := estimateWidth(c.Term.Word, wordSize) + 100
	bh := wordSize + 50
	if maxW := spine - gap; bw > maxW {
		bw = maxW
	}
	by := h/2 - bh/2

	d.Elements = append(d.Elements, Element{
		Kind:       ElementBadge,
		ID:         c.Term.Word,
		X:          spine - gap - bw,
		Y:          by,
		Width:      bw,
		Height:     bh,
		Opacity:    1,
		Color:      e.style.BadgeColor,
		TextColor:  e.style.BadgeTextColor,
		Lines:      []string{c.Term.Word},
		FontSize:   wordSize,
		LineHeight: bh,
		Align:      AlignCenter,
	})

	if c.Term.Translation != "" {
		size := e.style.TranslationFontSize
		d.Elements = append(d.Elements, Element{
			Kind:       ElementText,
			X:          spine + gap,
			Y:          by,
			Width:      spine - gap,
			Height:     bh,
			Opacity:    1,
			Color:      e.style.CardTextColor,
			Lines:      []string{c.Term.Translation},
			FontSize:   size,
			LineHeight: bh,
			Align:      AlignLeft,
		})
	}

	if c.Term.Example != "" {
		size := e.style.TranslationFontSize * 0.7
		d.Elements = append(d.Elements, e.centeredText(c.Term.Example, size, w*0.1, by+bh+size*2, w*0.8, e.style.CardTextColor))
	}
	return d
}

// centeredText は centerY を中心に、おおよその文字幅で折り返したテキスト要素を作ります。
func (e *Emitter) centeredText(text string, size, x, centerY, width float64, color string) Element {
	perLine := int(width / (size * 0.5))
	lines := wrapRunes(text, max(perLine, 10))
	lineHeight := size * 1.2
	height := float64(len(lines)) * lineHeight
	return Element{
		Kind:       ElementText,
		X:          x,
		Y:          centerY - height/2,
		Width:      width,
		Height:     height,
		Opacity:    1,
		Color:      color,
		Lines:      lines,
		FontSize:   size,
		LineHeight: lineHeight,
		Align:      AlignCenter,
	}
}
