package scriptai

import "fmt"

// ErrInputTooLong は入力テキストがトークン上限を超えていることを示します。
type ErrInputTooLong struct {
	Tokens int
	Max    int
}

func (e *ErrInputTooLong) Error() string {
	return fmt.Sprintf("入力テキストが長すぎます (%d トークン, 上限 %d)", e.Tokens, e.Max)
}

// ErrInvalidResponse は LLM の応答がスクリプトとして解釈できないことを示します。
type ErrInvalidResponse struct {
	Details    string
	WrappedErr error
}

func (e *ErrInvalidResponse) Error() string {
	if e.WrappedErr != nil {
		return fmt.Sprintf("AI応答が不正です: %s (詳細: %v)", e.Details, e.WrappedErr)
	}
	return fmt.Sprintf("AI応答が不正です: %s", e.Details)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.WrappedErr }
