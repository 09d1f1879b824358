package asset

// ----------------------------------------------------------------------
// インターフェース定義
// ----------------------------------------------------------------------

// Finder はステージ配置が Registry に要求する検索機能を抽象化します。
type Finder interface {
	Lookup(id string) (Character, bool)
}

// ----------------------------------------------------------------------
// 構造体定義
// ----------------------------------------------------------------------

// VoiceParams は TTS 呼び出し時に使う音声パラメータです。
type VoiceParams struct {
	Name         string `yaml:"name" json:"name"`   // 例: "ずんだもん"
	Style        string `yaml:"style" json:"style"` // 例: "ノーマル"
	Gender       string `yaml:"gender" json:"gender"`
	LanguageCode string `yaml:"language_code" json:"language_code,omitempty"`
}

// Character はステージに立つキャラクターの静的な定義です。ロード後は不変です。
type Character struct {
	ID    string      `yaml:"id" json:"id"`
	Image string      `yaml:"image" json:"image"` // 立ち絵画像への参照
	Voice VoiceParams `yaml:"voice" json:"voice"`
}
