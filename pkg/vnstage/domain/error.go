package domain

import "fmt"

// ----------------------------------------------------------------------
// 合成処理エラー (いずれも合成実行全体にとって致命的)
// ----------------------------------------------------------------------

// ErrConfig はキャラクター・音声の参照が解決できないことを示します。
type ErrConfig struct {
	Index       int // 発話インデックス。発話に紐づかない場合は -1
	CharacterID string
	Details     string
}

func (e *ErrConfig) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("設定エラー (発話 #%d, キャラクター %q): %s", e.Index, e.CharacterID, e.Details)
	}
	return fmt.Sprintf("設定エラー (キャラクター %q): %s", e.CharacterID, e.Details)
}

// ErrLayout はステージや吹き出しの範囲内にコンテンツを収められないことを示します。
type ErrLayout struct {
	Index       int // 発話インデックス。発話に紐づかない場合は -1
	CharacterID string
	Details     string
}

func (e *ErrLayout) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("レイアウトエラー (発話 #%d, キャラクター %q): %s", e.Index, e.CharacterID, e.Details)
	}
	return fmt.Sprintf("レイアウトエラー: %s", e.Details)
}

// ErrMissingAudio は発話に対応する音声クリップが解決されていないことを示します。
type ErrMissingAudio struct {
	Index   int
	Speaker string
}

func (e *ErrMissingAudio) Error() string {
	return fmt.Sprintf("発話 #%d (%s) の音声クリップが解決されていません", e.Index, e.Speaker)
}
