package raster

import (
	"cmp"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/shouni/go-vn-stage/pkg/vnstage/balloon"
	"github.com/shouni/go-vn-stage/pkg/vnstage/render"
)

// placeholderColor は画像参照を持たない立ち絵の代替色です。
var placeholderColor = color.NRGBA{R: 0xC8, G: 0xC8, B: 0xC8, A: 0xFF}

// Rasterizer は render.Description を画像に描画します。
// 状態を持たないため、複数のゴルーチンから同時に Rasterize を呼び出せます。
type Rasterizer struct {
	fonts  *balloon.FontMeasurer
	images ImageLoader
}

// NewRasterizer は新しい Rasterizer を作成します。
func NewRasterizer(fonts *balloon.FontMeasurer, images ImageLoader) *Rasterizer {
	return &Rasterizer{fonts: fonts, images: images}
}

// Rasterize は記述の要素を順番に描画した画像を返します。
func (r *Rasterizer) Rasterize(d render.Description) (*image.RGBA, error) {
	if d.Width <= 0 || d.Height <= 0 {
		return nil, fmt.Errorf("キャンバスサイズが不正です: %dx%d", d.Width, d.Height)
	}
	dst := image.NewRGBA(image.Rect(0, 0, d.Width, d.Height))

	if d.Background != "" {
		bg, err := parseHex(d.Background)
		if err != nil {
			return nil, err
		}
		draw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	}

	faces := make(map[float64]font.Face)
	defer func() {
		for _, f := range faces {
			_ = f.Close()
		}
	}()

	for i, el := range d.Elements {
		var err error
		switch el.Kind {
		case render.ElementBackground, render.ElementBalloon:
			err = fillRect(dst, el)
		case render.ElementSprite:
			err = r.drawSprite(dst, el)
		case render.ElementBadge:
			if err = fillRect(dst, el); err == nil {
				err = r.drawText(dst, el, cmp.Or(el.TextColor, "#FFFFFF"), faces)
			}
		case render.ElementText:
			err = r.drawText(dst, el, el.Color, faces)
		default:
			err = fmt.Errorf("未知の要素種別です: %q", el.Kind)
		}
		if err != nil {
			return nil, fmt.Errorf("要素 #%d (%s) の描画に失敗しました: %w", i, el.Kind, err)
		}
	}
	return dst, nil
}

func rectOf(el render.Element) image.Rectangle {
	x0, y0 := int(el.X+0.5), int(el.Y+0.5)
	return image.Rect(x0, y0, x0+int(el.Width+0.5), y0+int(el.Height+0.5))
}

func fillRect(dst *image.RGBA, el render.Element) error {
	c, err := parseHex(el.Color)
	if err != nil {
		return err
	}
	draw.Draw(dst, rectOf(el).Intersect(dst.Bounds()), image.NewUniform(withOpacity(c, el.Opacity)), image.Point{}, draw.Over)
	return nil
}

func (r *Rasterizer) drawSprite(dst *image.RGBA, el render.Element) error {
	rect := rectOf(el)
	if el.Image == "" || r.images == nil {
		draw.Draw(dst, rect.Intersect(dst.Bounds()), image.NewUniform(withOpacity(placeholderColor, el.Opacity)), image.Point{}, draw.Over)
		return nil
	}

	src, err := r.images.Load(el.Image)
	if err != nil {
		return err
	}
	scaled := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), src, src.Bounds(), xdraw.Src, nil)

	mask := image.NewUniform(color.Alpha{A: uint8(min(max(el.Opacity, 0), 1)*255 + 0.5)})
	draw.DrawMask(dst, rect, scaled, image.Point{}, mask, image.Point{}, draw.Over)
	return nil
}

// drawText は各行を LineHeight 間隔で、行ボックスの中央にベースラインを合わせて描画します。
func (r *Rasterizer) drawText(dst *image.RGBA, el render.Element, hex string, faces map[float64]font.Face) error {
	if len(el.Lines) == 0 || el.FontSize <= 0 {
		return nil
	}
	c, err := parseHex(hex)
	if err != nil {
		return err
	}
	face, ok := faces[el.FontSize]
	if !ok {
		if face, err = r.fonts.NewFace(el.FontSize); err != nil {
			return err
		}
		faces[el.FontSize] = face
	}

	m := face.Metrics()
	ascent := float64(m.Ascent) / 64
	height := float64(m.Ascent+m.Descent) / 64
	lineHeight := el.LineHeight
	if lineHeight <= 0 {
		lineHeight = float64(m.Height) / 64
	}

	d := &font.Drawer{Dst: dst, Src: image.NewUniform(withOpacity(c, el.Opacity)), Face: face}
	for i, line := range el.Lines {
		advance := float64(d.MeasureString(line)) / 64
		x := el.X
		switch el.Align {
		case render.AlignRight:
			x = el.X + el.Width - advance
		case render.AlignLeft:
		default:
			x = el.X + (el.Width-advance)/2
		}
		baseline := el.Y + float64(i)*lineHeight + (lineHeight-height)/2 + ascent
		d.Dot = fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(baseline * 64)}
		d.DrawString(line)
	}
	return nil
}
