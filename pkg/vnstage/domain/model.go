package domain

import (
	"math"
	"strings"
	"time"
)

// ----------------------------------------------------------------------
// データモデル (スクリプト・音声)
// ----------------------------------------------------------------------

// Utterance はスクリプト解析結果の1行（話者と台詞）を表します。
// コアは読み取り専用として扱います。
type Utterance struct {
	Speaker string      `json:"speaker"`
	Text    string      `json:"text"`
	Level   string      `json:"level,omitempty"` // CEFR レベル (例: "A2")
	Vocab   []VocabTerm `json:"vocab,omitempty"`
}

// VocabTerm は語彙カード1枚分のデータです。
type VocabTerm struct {
	Word        string `json:"word"`
	Translation string `json:"translation,omitempty"`
	Example     string `json:"example,omitempty"`
}

// AudioClipRef は TTS が生成した音声クリップへの参照です。
// コアは長さを不透明なスカラーとして扱い、クリップ自体は変更しません。
type AudioClipRef struct {
	DurationSeconds float64 `json:"duration_seconds"`
	FileRef         string  `json:"file_ref"`
}

// Length は秒数を time.Duration (ナノ秒整数) に一度だけ変換します。
// 以降の時間計算はすべて整数で行うため、累積誤差は発生しません。
func (c *AudioClipRef) Length() time.Duration {
	if c == nil {
		return 0
	}
	return time.Duration(math.Round(c.DurationSeconds * float64(time.Second)))
}

// Resolved はクリップが合成に使える状態かどうかを返します。
func (c *AudioClipRef) Resolved() bool {
	return c != nil && c.DurationSeconds > 0 && c.Length() > 0
}

// VocabKey は語彙の照合に使うキーです。前後の空白を除いて小文字化します。
func VocabKey(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}
