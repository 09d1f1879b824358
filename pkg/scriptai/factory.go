package scriptai

import (
	"context"
	"fmt"
)

// Options は NewParser の設定です。
type Options struct {
	Provider       string // "gemini" or "openai"
	Model          string
	APIKey         string
	BaseURL        string // OpenAI 互換エンドポイント用
	MaxInputTokens int
	Narrator       string
}

// NewParser はプロバイダに応じた Completer を組み立てて ScriptParser を返します。
func NewParser(ctx context.Context, opts Options) (*ScriptParser, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("%s の API キーが設定されていません", opts.Provider)
	}

	var completer Completer
	switch opts.Provider {
	case "gemini":
		g, err := NewGeminiCompleter(ctx, opts.APIKey, opts.Model)
		if err != nil {
			return nil, err
		}
		completer = g
	case "openai":
		completer = NewOpenAICompleter(opts.APIKey, opts.Model, opts.BaseURL)
	default:
		return nil, fmt.Errorf("未知のAIプロバイダです: %q", opts.Provider)
	}

	return NewScriptParser(completer, opts.MaxInputTokens, opts.Narrator), nil
}
