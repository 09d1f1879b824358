package voicevox

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shouni/go-vn-stage/pkg/vnstage/domain"
	"github.com/shouni/go-vn-stage/pkg/voicevox/api"
	"github.com/shouni/go-vn-stage/pkg/voicevox/speaker"
)

// ----------------------------------------------------------------------
// No-op パターン
// ----------------------------------------------------------------------

// noopSynthesizer は TTS を使わない実行のための ClipSynthesizer です。
// クリップを生成しないため、スクリプトに添付されたクリップだけで合成することになります。
type noopSynthesizer struct{}

// SynthesizeAll はすべて nil のクリップを返します。
func (n *noopSynthesizer) SynthesizeAll(ctx context.Context, reqs []Request) ([]*domain.AudioClipRef, error) {
	slog.InfoContext(ctx, "VOICEVOX機能は無効です。音声合成はスキップされました。", "segments", len(reqs))
	return make([]*domain.AudioClipRef, len(reqs)), nil
}

// ----------------------------------------------------------------------
// Factory 関数
// ----------------------------------------------------------------------

// Options は NewClipSynthesizer の設定です。
type Options struct {
	Enabled          bool
	APIURL           string
	HTTPTimeout      time.Duration
	RequiredSpeakers []string // 登録キャラクターが使う VOICEVOX 話者名
	Config           Config
}

// NewClipSynthesizer はVOICEVOXエンジンへの接続と話者データのロードを行い、
// ClipSynthesizer を組み立てて返します。Enabled が false の場合は何もしない実装を返します。
func NewClipSynthesizer(ctx context.Context, opts Options) (ClipSynthesizer, error) {
	if !opts.Enabled {
		slog.InfoContext(ctx, "VOICEVOX機能は無効です。ダミーのSynthesizerを返します。", "action", "skip_initialization")
		return &noopSynthesizer{}, nil
	}

	apiURL := opts.APIURL
	if apiURL == "" {
		apiURL = DefaultAPIURL
		slog.WarnContext(ctx, "VOICEVOXのAPI URLが設定されていません。", "default_url", apiURL)
	}

	client := api.NewClient(apiURL, opts.HTTPTimeout)

	slog.InfoContext(ctx, "VOICEVOX話者スタイルデータをロード中...", "api_url", apiURL)
	data, err := speaker.LoadSpeakers(ctx, client, opts.RequiredSpeakers)
	if err != nil {
		return nil, fmt.Errorf("VOICEVOXエンジンへの接続または話者データのロードに失敗しました: %w", err)
	}

	synth := NewSynthesizer(client, data, opts.Config)
	slog.InfoContext(ctx, "VOICEVOX Synthesizerの初期化が完了しました。",
		"max_parallel", synth.config.MaxParallelSegments,
		"segment_timeout", synth.config.SegmentTimeout.String())

	return synth, nil
}
