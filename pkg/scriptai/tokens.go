package scriptai

import (
	"log/slog"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// CountTokens は text のトークン数を数えます。
// エンコーディングを取得できない環境では、4 文字 = 1 トークンの概算に切り替えます。
func CountTokens(text string) int {
	tkm, err := tiktoken.EncodingForModel("gpt-4o")
	if err != nil {
		slog.Warn("トークナイザーを取得できないため概算値を使用します", "error", err)
		return (utf8.RuneCountInString(text) + 3) / 4
	}
	return len(tkm.Encode(text, nil, nil))
}
