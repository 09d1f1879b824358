package layout

import (
	"fmt"

	"github.com/shouni/go-vn-stage/pkg/vnstage/asset"
	"github.com/shouni/go-vn-stage/pkg/vnstage/domain"
)

// DefaultSpriteFill は立ち絵がスロット幅に占める割合です。
const DefaultSpriteFill = 0.95

// Bounds はキャンバス上のステージ領域 (ピクセル) です。
type Bounds struct {
	Left   float64 `yaml:"left" json:"left"`
	Top    float64 `yaml:"top" json:"top"`
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`
}

func (b Bounds) Right() float64   { return b.Left + b.Width }
func (b Bounds) Bottom() float64  { return b.Top + b.Height }
func (b Bounds) CenterX() float64 { return b.Left + b.Width/2 }

// Position は1キャラクター分の配置結果です。
type Position struct {
	ID          string  `json:"id"`
	Slot        int     `json:"slot"`
	X           float64 `json:"x"` // スロット中心の X 座標
	SlotWidth   float64 `json:"slot_width"`
	SpriteWidth float64 `json:"sprite_width"` // 立ち絵の最大幅
	Z           int     `json:"z"`
}

// Config はステージ配置の設定です。
type Config struct {
	Bounds        Bounds
	MaxCharacters int
	SpriteFill    float64
}

// Engine はアンサンブル人数に応じてキャラクターを横一列に配置します。
type Engine struct {
	finder asset.Finder
	config Config
}

// NewEngine は新しい Engine を作成します。
func NewEngine(finder asset.Finder, config Config) *Engine {
	if config.SpriteFill <= 0 || config.SpriteFill > 1 {
		config.SpriteFill = DefaultSpriteFill
	}
	return &Engine{finder: finder, config: config}
}

// Bounds はステージ領域を返します。
func (e *Engine) Bounds() Bounds {
	return e.config.Bounds
}

// Place は ID リスト (順序込み) からスロット位置を計算します。
// ステージ幅を N 等分し、各スロット中心に配置するため、結果はステージ中心に対して左右対称です。
func (e *Engine) Place(ids []string) ([]Position, error) {
	n := len(ids)
	if n == 0 {
		return nil, nil
	}
	if e.config.MaxCharacters > 0 && n > e.config.MaxCharacters {
		return nil, &domain.ErrLayout{
			Index:   -1,
			Details: fmt.Sprintf("ステージに配置できるのは最大 %d 人です (要求: %d 人)", e.config.MaxCharacters, n),
		}
	}

	seen := make(map[string]bool, n)
	for _, id := range ids {
		if _, ok := e.finder.Lookup(id); !ok {
			return nil, &domain.ErrConfig{Index: -1, CharacterID: id, Details: "アセットレジストリに存在しません"}
		}
		if seen[id] {
			return nil, &domain.ErrLayout{Index: -1, CharacterID: id, Details: "同じキャラクターを複数のスロットに配置できません"}
		}
		seen[id] = true
	}

	b := e.config.Bounds
	slotWidth := b.Width / float64(n)
	positions := make([]Position, n)
	for i, id := range ids {
		positions[i] = Position{
			ID:          id,
			Slot:        i,
			X:           b.Left + b.Width*float64(2*i+1)/float64(2*n),
			SlotWidth:   slotWidth,
			SpriteWidth: slotWidth * e.config.SpriteFill,
			Z:           i,
		}
	}
	return positions, nil
}
