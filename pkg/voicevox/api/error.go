package api

import "fmt"

// ErrAPINetwork はリトライ後も失敗した通信エラーです。
type ErrAPINetwork struct {
	Endpoint   string
	WrappedErr error
}

func (e *ErrAPINetwork) Error() string {
	return fmt.Sprintf("VOICEVOX API通信エラー (%s): %v", e.Endpoint, e.WrappedErr)
}

func (e *ErrAPINetwork) Unwrap() error { return e.WrappedErr }

// ErrAPIResponse は応答の内容が合成に使えないことを示します。
type ErrAPIResponse struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *ErrAPIResponse) Error() string {
	body := e.Body
	if len(body) > 100 {
		body = body[:100] + "..."
	}
	return fmt.Sprintf("VOICEVOX API応答エラー (%s, status %d): %s", e.Endpoint, e.StatusCode, body)
}

// ErrInvalidJSON はAPI応答が期待されるJSON形式でなかったことを示します。
type ErrInvalidJSON struct {
	Details    string
	WrappedErr error
}

func (e *ErrInvalidJSON) Error() string {
	if e.WrappedErr == nil {
		return fmt.Sprintf("不正なJSONデータ: %s", e.Details)
	}
	return fmt.Sprintf("不正なJSONデータ: %s (詳細: %v)", e.Details, e.WrappedErr)
}

func (e *ErrInvalidJSON) Unwrap() error { return e.WrappedErr }
