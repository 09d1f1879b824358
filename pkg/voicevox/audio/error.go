package audio

import "fmt"

// ErrInvalidWAVHeader はWAVデータのヘッダーやチャンク構造に問題があることを示します。
type ErrInvalidWAVHeader struct {
	Index   int // 対象WAVのインデックス。単体処理の場合は -1
	Details string
}

func (e *ErrInvalidWAVHeader) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("WAVデータ #%d のヘッダーが無効です: %s", e.Index, e.Details)
	}
	return fmt.Sprintf("WAVデータのヘッダーが無効です: %s", e.Details)
}

// ErrNoAudioData は結合すべきWAVデータがないことを示します。
type ErrNoAudioData struct{}

func (e *ErrNoAudioData) Error() string {
	return "処理対象となる有効なオーディオデータがありません"
}
