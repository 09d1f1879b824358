package script

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/shouni/go-vn-stage/pkg/vnstage/domain"
)

// ----------------------------------------------------------------------
// データモデル (スクリプト文書)
// ----------------------------------------------------------------------

// Line はスクリプト1行です。Audio は TTS 済みのクリップがある場合だけ設定されます。
type Line struct {
	domain.Utterance
	Audio *domain.AudioClipRef `json:"audio,omitempty"`
}

// Document は1シーン分のスクリプト文書です。
type Document struct {
	Title      string                          `json:"title,omitempty"`
	Level      string                          `json:"level,omitempty"`
	Vocab      []domain.VocabTerm              `json:"vocab,omitempty"`
	VocabAudio map[string]*domain.AudioClipRef `json:"vocab_audio,omitempty"`
	Script     []Line                          `json:"script"`
}

// ErrInvalidDocument はスクリプト文書の内容が不正であることを示します。
type ErrInvalidDocument struct {
	Index   int // 行インデックス。文書全体の場合は -1
	Details string
}

func (e *ErrInvalidDocument) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("スクリプト文書の行 #%d が不正です: %s", e.Index, e.Details)
	}
	return fmt.Sprintf("スクリプト文書が不正です: %s", e.Details)
}

// LoadJSON はスクリプト文書を読み込みます。
// オブジェクト形式 ({"title":..., "script":[...]}) と、行の配列だけの形式の両方を受け付けます。
func LoadJSON(r io.Reader) (*Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("スクリプト文書の読み込みに失敗しました: %w", err)
	}

	doc := &Document{}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		err = decodeStrict(trimmed, &doc.Script)
	} else {
		err = decodeStrict(trimmed, doc)
	}
	if err != nil {
		return nil, &ErrInvalidDocument{Index: -1, Details: err.Error()}
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// Validate は各行に話者とテキストがあることを確認します。
func (d *Document) Validate() error {
	if len(d.Script) == 0 {
		return &ErrInvalidDocument{Index: -1, Details: "スクリプトが空です"}
	}
	for i, l := range d.Script {
		if strings.TrimSpace(l.Speaker) == "" {
			return &ErrInvalidDocument{Index: i, Details: "話者が空です"}
		}
		if strings.TrimSpace(l.Text) == "" {
			return &ErrInvalidDocument{Index: i, Details: "テキストが空です"}
		}
	}
	return nil
}

// Utterances は行の発話部分をスクリプト順に返します。
func (d *Document) Utterances() []domain.Utterance {
	out := make([]domain.Utterance, len(d.Script))
	for i, l := range d.Script {
		out[i] = l.Utterance
	}
	return out
}

// Clips は行に添付されたクリップを返します。未添付の行は nil です。
func (d *Document) Clips() []*domain.AudioClipRef {
	out := make([]*domain.AudioClipRef, len(d.Script))
	for i, l := range d.Script {
		out[i] = l.Audio
	}
	return out
}

// HasAllClips はすべての行にクリップが添付済みかどうかを返します。
func (d *Document) HasAllClips() bool {
	for _, l := range d.Script {
		if !l.Audio.Resolved() {
			return false
		}
	}
	return true
}

// FromUtterances は発話列から文書を作成します。
func FromUtterances(title string, utterances []domain.Utterance) *Document {
	doc := &Document{Title: title, Script: make([]Line, len(utterances))}
	for i, u := range utterances {
		doc.Script[i] = Line{Utterance: u}
	}
	return doc
}

// VocabClips は語彙の発音クリップを小文字化した単語をキーにして返します。
func (d *Document) VocabClips() map[string]*domain.AudioClipRef {
	out := make(map[string]*domain.AudioClipRef, len(d.VocabAudio))
	for word, clip := range d.VocabAudio {
		out[domain.VocabKey(word)] = clip
	}
	return out
}
