package balloon

import (
	"fmt"
	"math"
	"strings"

	"github.com/shouni/go-vn-stage/pkg/vnstage/domain"
	"github.com/shouni/go-vn-stage/pkg/vnstage/layout"
)

// Mode は吹き出しの内容を表示するかどうかを指定します。
type Mode int

const (
	// Full は台詞を表示します (リビールパス)。
	Full Mode = iota
	// Blind は空の吹き出しを最小サイズで表示します (ブラインドリスニングパス)。
	Blind
)

func (m Mode) String() string {
	if m == Blind {
		return "blind"
	}
	return "full"
}

// Config は吹き出しレイアウトの設定です。
type Config struct {
	MaxWidth     float64
	MinWidth     float64
	MinHeight    float64
	Padding      float64
	AnchorBottom float64 // 吹き出し下端の Y 座標 (キャラクターの上)
	FontSize     float64
	MinFontSize  float64
	FontStep     float64
	LineSpacing  float64 // 行の高さに掛ける倍率
	MaxLines     int
}

// Geometry は吹き出し1つ分の計算結果です。
// 箱は折り返し後のテキストとパディングを常に包含します。
type Geometry struct {
	Speaker    string   `json:"speaker,omitempty"`
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	Width      float64  `json:"width"`
	Height     float64  `json:"height"`
	CenterX    float64  `json:"center_x"`
	Lines      []string `json:"lines,omitempty"`
	FontSize   float64  `json:"font_size"`
	LineHeight float64  `json:"line_height"`
	Padding    float64  `json:"padding"`
	Blind      bool     `json:"blind,omitempty"`
}

// Engine は吹き出しのサイズと折り返しを計算します。
type Engine struct {
	measurer Measurer
	bounds   layout.Bounds
	config   Config
}

// NewEngine は新しい Engine を作成します。未設定の値にはデフォルトを適用します。
func NewEngine(measurer Measurer, bounds layout.Bounds, config Config) *Engine {
	if config.FontSize <= 0 {
		config.FontSize = DefaultFontSize
	}
	if config.MinFontSize <= 0 || config.MinFontSize > config.FontSize {
		config.MinFontSize = config.FontSize
	}
	if config.FontStep <= 0 {
		config.FontStep = DefaultFontStep
	}
	if config.LineSpacing <= 0 {
		config.LineSpacing = 1
	}
	if config.MaxLines <= 0 {
		config.MaxLines = DefaultMaxLines
	}
	if config.MaxWidth <= 0 {
		config.MaxWidth = bounds.Width
	}
	return &Engine{measurer: measurer, bounds: bounds, config: config}
}

// デフォルト値
const (
	DefaultFontSize = 50
	DefaultFontStep = 2
	DefaultMaxLines = 6
)

// Layout は text を anchorX を中心とする吹き出しに収めます。
//
// 方針: まず設定フォントサイズで行数を MaxLines まで増やし、それでも収まらない場合に限り
// FontStep ずつ MinFontSize まで縮小します。最小サイズでも MaxLines を超える場合、
// または吹き出し上端がステージ上端を越える場合は ErrLayout を返します。テキストの切り捨ては行いません。
func (e *Engine) Layout(text string, anchorX float64, mode Mode) (Geometry, error) {
	b := e.bounds
	if anchorX < b.Left || anchorX > b.Right() {
		return Geometry{}, &domain.ErrLayout{Index: -1, Details: fmt.Sprintf("吹き出しの基準位置 %.1f がステージ外です", anchorX)}
	}

	available := e.availableWidth(anchorX)
	textWidth := available - 2*e.config.Padding
	if textWidth <= 0 {
		return Geometry{}, &domain.ErrLayout{Index: -1, Details: fmt.Sprintf("吹き出しの幅を確保できません (利用可能幅 %.1f)", available)}
	}

	text = strings.TrimSpace(text)
	if mode == Blind || text == "" {
		lh, err := e.lineHeight(e.config.FontSize)
		if err != nil {
			return Geometry{}, err
		}
		g := e.box(anchorX, available, nil, 0, e.config.FontSize, lh)
		g.Blind = mode == Blind
		if g.Y < b.Top {
			return Geometry{}, &domain.ErrLayout{Index: -1, Details: "最小サイズの吹き出しがステージ上端を越えます"}
		}
		return g, nil
	}

	for step := 0; ; step++ {
		size := e.config.FontSize - float64(step)*e.config.FontStep
		if size < e.config.MinFontSize {
			break
		}

		lines, widest, ok, err := e.wrap(text, textWidth, size)
		if err != nil {
			return Geometry{}, err
		}
		if !ok || len(lines) > e.config.MaxLines {
			continue
		}

		lh, err := e.lineHeight(size)
		if err != nil {
			return Geometry{}, err
		}
		g := e.box(anchorX, available, lines, widest, size, lh)
		if g.Y < b.Top {
			continue
		}
		return g, nil
	}

	return Geometry{}, &domain.ErrLayout{
		Index: -1,
		Details: fmt.Sprintf("最小フォントサイズ %.1f でも %d 行以内に収まりません (%d 文字)",
			e.config.MinFontSize, e.config.MaxLines, len([]rune(text))),
	}
}

// availableWidth は中心を anchorX に固定したままステージからはみ出さない最大幅です。
func (e *Engine) availableWidth(anchorX float64) float64 {
	b := e.bounds
	edge := math.Min(anchorX-b.Left, b.Right()-anchorX)
	return math.Min(e.config.MaxWidth, 2*edge)
}

func (e *Engine) lineHeight(size float64) (float64, error) {
	lh, err := e.measurer.LineHeight(size)
	if err != nil {
		return 0, err
	}
	return lh * e.config.LineSpacing, nil
}

func (e *Engine) box(anchorX, available float64, lines []string, widest, size, lineHeight float64) Geometry {
	width := math.Max(widest+2*e.config.Padding, e.config.MinWidth)
	width = math.Min(width, available)

	height := float64(len(lines))*lineHeight + 2*e.config.Padding
	height = math.Max(height, e.config.MinHeight)

	return Geometry{
		X:          anchorX - width/2,
		Y:          e.config.AnchorBottom - height,
		Width:      width,
		Height:     height,
		CenterX:    anchorX,
		Lines:      lines,
		FontSize:   size,
		LineHeight: lineHeight,
		Padding:    e.config.Padding,
	}
}

// wrap は貪欲法で単語単位に折り返します。1行に収まらない単語はルーン単位で強制分割します。
// 1ルーンすら収まらない場合は ok=false を返します。
func (e *Engine) wrap(text string, width, size float64) (lines []string, widest float64, ok bool, err error) {
	var current string
	var currentWidth float64

	flush := func() {
		if current != "" {
			lines = append(lines, current)
			widest = math.Max(widest, currentWidth)
		}
		current, currentWidth = "", 0
	}

	for _, word := range strings.Fields(text) {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		adv, err := e.measurer.Advance(candidate, size)
		if err != nil {
			return nil, 0, false, err
		}
		if adv <= width {
			current, currentWidth = candidate, adv
			continue
		}

		// 現在行に追加できないので確定し、単語を新しい行に置く
		flush()
		adv, err = e.measurer.Advance(word, size)
		if err != nil {
			return nil, 0, false, err
		}
		if adv <= width {
			current, currentWidth = word, adv
			continue
		}

		pieces, err := e.breakWord(word, width, size)
		if err != nil {
			return nil, 0, false, err
		}
		if pieces == nil {
			return nil, 0, false, nil
		}
		for _, p := range pieces[:len(pieces)-1] {
			current, currentWidth = p.text, p.width
			flush()
		}
		last := pieces[len(pieces)-1]
		current, currentWidth = last.text, last.width
	}
	flush()

	return lines, widest, true, nil
}

type piece struct {
	text  string
	width float64
}

// breakWord は単語をルーン単位で width 以下の断片に分割します。
// 1ルーンも収まらない場合は nil を返します。
func (e *Engine) breakWord(word string, width, size float64) ([]piece, error) {
	var pieces []piece
	runes := []rune(word)

	start := 0
	var lastWidth float64
	for i := 1; i <= len(runes); i++ {
		adv, err := e.measurer.Advance(string(runes[start:i]), size)
		if err != nil {
			return nil, err
		}
		if adv <= width {
			lastWidth = adv
			continue
		}
		if i-1 == start {
			return nil, nil
		}
		pieces = append(pieces, piece{text: string(runes[start : i-1]), width: lastWidth})
		start = i - 1
		adv, err = e.measurer.Advance(string(runes[start:i]), size)
		if err != nil {
			return nil, err
		}
		if adv > width {
			return nil, nil
		}
		lastWidth = adv
	}
	pieces = append(pieces, piece{text: string(runes[start:]), width: lastWidth})

	return pieces, nil
}
