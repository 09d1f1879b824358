package scriptai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shouni/go-vn-stage/pkg/vnstage/domain"
)

// DefaultMaxInputTokens は1回の解析に渡せる入力の上限です。
const DefaultMaxInputTokens = 30000

const systemPrompt = `You are an expert script parser. Your task is to transcribe the ENTIRE story verbatim from the raw text.

RULES:
1. IDENTIFY SPEAKERS: Identify every line's speaker. Use only these names: %s.
2. NARRATOR: Tag descriptive text as speaker "%s".
3. CHARACTERS: Tag dialogue with the character's name.
4. VERBATIM: Keep the text EXACTLY as it is in the input. Do not summarize. Retrieve every sentence.

OUTPUT: A JSON object {"title": "...", "level": "...", "script": [{"speaker": "%s", "text": "..."}]}`

// ScriptParser は自由形式のテキストを LLM で話者付きの発話列に変換します。
type ScriptParser struct {
	completer      Completer
	maxInputTokens int
	narrator       string
	countTokens    func(string) int
}

// NewScriptParser は新しい ScriptParser を作成します。
func NewScriptParser(completer Completer, maxInputTokens int, narrator string) *ScriptParser {
	if maxInputTokens <= 0 {
		maxInputTokens = DefaultMaxInputTokens
	}
	if narrator == "" {
		narrator = "Narrator"
	}
	return &ScriptParser{
		completer:      completer,
		maxInputTokens: maxInputTokens,
		narrator:       narrator,
		countTokens:    CountTokens,
	}
}

// Result は解析結果です。
type Result struct {
	Title      string
	Level      string
	Utterances []domain.Utterance
}

// Parse は raw を解析します。cast は話者として許可するキャラクター ID です。
func (p *ScriptParser) Parse(ctx context.Context, raw string, cast []string) (*Result, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, &ErrInvalidResponse{Details: "入力テキストが空です"}
	}

	system := fmt.Sprintf(systemPrompt, strings.Join(append(append([]string{}, cast...), p.narrator), ", "), p.narrator, p.narrator)
	user := "RAW TEXT:\n" + raw

	if tokens := p.countTokens(system + user); tokens > p.maxInputTokens {
		return nil, &ErrInputTooLong{Tokens: tokens, Max: p.maxInputTokens}
	}

	slog.InfoContext(ctx, "AIによるスクリプト解析を開始します", "input_chars", len(raw), "cast", cast)
	text, err := p.completer.Complete(ctx, system, user)
	if err != nil {
		return nil, fmt.Errorf("AIによるスクリプト解析に失敗しました: %w", err)
	}

	res, err := decodeResponse(text)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "AIによるスクリプト解析が完了しました", "lines", len(res.Utterances), "title", res.Title)
	return res, nil
}

// decodeResponse はコードフェンスを取り除いて応答をデコードします。
func decodeResponse(text string) (*Result, error) {
	text = stripCodeFence(text)

	var resp Response
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		return nil, &ErrInvalidResponse{Details: "JSONのデコード", WrappedErr: err}
	}

	res := &Result{Title: strings.TrimSpace(resp.Title), Level: strings.TrimSpace(resp.Level)}
	for i, l := range resp.Script {
		speaker, line := strings.TrimSpace(l.Speaker), strings.TrimSpace(l.Text)
		if line == "" {
			continue
		}
		if speaker == "" {
			return nil, &ErrInvalidResponse{Details: fmt.Sprintf("行 #%d に話者がありません", i)}
		}
		res.Utterances = append(res.Utterances, domain.Utterance{Speaker: speaker, Text: line})
	}
	if len(res.Utterances) == 0 {
		return nil, &ErrInvalidResponse{Details: "発話が1つもありません"}
	}
	return res, nil
}

func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
