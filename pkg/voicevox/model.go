package voicevox

import (
	"context"

	"github.com/shouni/go-vn-stage/pkg/vnstage/asset"
	"github.com/shouni/go-vn-stage/pkg/vnstage/domain"
)

// ----------------------------------------------------------------------
// インターフェース
// ----------------------------------------------------------------------

// ClipSynthesizer は発話ごとの音声クリップを生成する契約です。
// 戻り値のスライスは reqs とインデックスで 1:1 に対応します。
type ClipSynthesizer interface {
	SynthesizeAll(ctx context.Context, reqs []Request) ([]*domain.AudioClipRef, error)
}

// AudioQueryClient は api.Client が満たすべき API 呼び出しインターフェースです。
type AudioQueryClient interface {
	RunAudioQuery(ctx context.Context, text string, styleID int, speedScale float64) ([]byte, error)
	RunSynthesis(ctx context.Context, queryBody []byte, styleID int) ([]byte, error)
}

// ----------------------------------------------------------------------
// データモデル
// ----------------------------------------------------------------------

// Request は発話1つ分の合成要求です。
type Request struct {
	Text   string
	Voice  asset.VoiceParams
	Output string // 書き込み先のWAVファイルパス
}
