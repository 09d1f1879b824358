package balloon

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Measurer は吹き出しレイアウトが要求するフォントメトリクスを抽象化します。
type Measurer interface {
	// Advance は text を size ポイントで描画したときの横幅 (ピクセル) を返します。
	Advance(text string, size float64) (float64, error)
	// LineHeight は size ポイントでの1行の高さ (ピクセル) を返します。
	LineHeight(size float64) (float64, error)
}

// FontMeasurer は OpenType フォントに基づく Measurer 実装です。
// サイズごとの font.Face をキャッシュします。font.Face は並行利用できないため、
// 計測はミューテックスで直列化します。
type FontMeasurer struct {
	font *opentype.Font

	faces   map[float64]font.Face
	facesMu sync.Mutex
}

// NewFontMeasurer は TTF/OTF のバイト列から FontMeasurer を作成します。
// ttf が空の場合は Go Regular フォントを使用します。
func NewFontMeasurer(ttf []byte) (*FontMeasurer, error) {
	if len(ttf) == 0 {
		ttf = goregular.TTF
	}
	f, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("フォントの解析に失敗しました: %w", err)
	}
	return &FontMeasurer{
		font:  f,
		faces: make(map[float64]font.Face),
	}, nil
}

// NewFace はキャッシュを通さない新しい font.Face を返します。
// 並行に描画する呼び出し元 (ラスタライザ) はワーカーごとにこれを使います。
func (m *FontMeasurer) NewFace(size float64) (font.Face, error) {
	face, err := opentype.NewFace(m.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("フォントフェイスの作成に失敗しました (size=%.1f): %w", size, err)
	}
	return face, nil
}

// face はロック取得済みの状態で呼び出す必要があります。
func (m *FontMeasurer) face(size float64) (font.Face, error) {
	if f, ok := m.faces[size]; ok {
		return f, nil
	}
	f, err := m.NewFace(size)
	if err != nil {
		return nil, err
	}
	m.faces[size] = f
	return f, nil
}

// Advance は Measurer の実装です。
func (m *FontMeasurer) Advance(text string, size float64) (float64, error) {
	m.facesMu.Lock()
	defer m.facesMu.Unlock()

	f, err := m.face(size)
	if err != nil {
		return 0, err
	}
	return float64(font.MeasureString(f, text)) / 64, nil
}

// LineHeight は Measurer の実装です。
func (m *FontMeasurer) LineHeight(size float64) (float64, error) {
	m.facesMu.Lock()
	defer m.facesMu.Unlock()

	f, err := m.face(size)
	if err != nil {
		return 0, err
	}
	return float64(f.Metrics().Height) / 64, nil
}
