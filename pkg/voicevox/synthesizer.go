package voicevox

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/shouni/go-vn-stage/pkg/vnstage/asset"
	"github.com/shouni/go-vn-stage/pkg/vnstage/domain"
	"github.com/shouni/go-vn-stage/pkg/voicevox/audio"
	"github.com/shouni/go-vn-stage/pkg/voicevox/speaker"
)

// Config は Synthesizer の並列度・タイムアウト・話速の設定です。
type Config struct {
	MaxParallelSegments int
	SegmentTimeout      time.Duration
	SegmentRateLimit    time.Duration
	SpeedScale          float64
}

// Synthesizer はVOICEVOXエンジンで発話ごとのクリップを並列に生成します。
// 結果は常に要求の順序で返します。
type Synthesizer struct {
	client  AudioQueryClient
	data    speaker.DataFinder
	config  Config
	limiter *rate.Limiter

	styleIDCache      map[string]int
	styleIDCacheMutex sync.RWMutex
}

// segmentResult はワーカーの処理結果です。
type segmentResult struct {
	index int
	clip  *domain.AudioClipRef
	err   error
}

// NewSynthesizer は新しい Synthesizer を作成します。未設定の値にはデフォルトを適用します。
func NewSynthesizer(client AudioQueryClient, data speaker.DataFinder, config Config) *Synthesizer {
	if config.MaxParallelSegments <= 0 {
		config.MaxParallelSegments = DefaultMaxParallelSegments
	}
	if config.SegmentTimeout <= 0 {
		config.SegmentTimeout = DefaultSegmentTimeout
	}
	if config.SegmentRateLimit <= 0 {
		config.SegmentRateLimit = DefaultSegmentRateLimit
	}

	return &Synthesizer{
		client:       client,
		data:         data,
		config:       config,
		limiter:      rate.NewLimiter(rate.Every(config.SegmentRateLimit), 1),
		styleIDCache: make(map[string]int),
	}
}

// styleID は音声パラメータから Style ID を検索し、キャッシュを使用・更新します。
// 指定スタイルがない場合は話者の既定スタイルにフォールバックします。
func (s *Synthesizer) styleID(ctx context.Context, v asset.VoiceParams, index int) (int, error) {
	key := v.Name + "/" + v.Style

	s.styleIDCacheMutex.RLock()
	if id, ok := s.styleIDCache[key]; ok {
		s.styleIDCacheMutex.RUnlock()
		return id, nil
	}
	s.styleIDCacheMutex.RUnlock()

	id, ok := s.data.StyleID(v.Name, v.Style)
	if !ok && v.Style != "" {
		id, ok = s.data.StyleID(v.Name, "")
		if ok {
			slog.WarnContext(ctx, "スタイルが未定義のため既定スタイルにフォールバック",
				"segment_index", index,
				"speaker", v.Name,
				"style", v.Style)
		}
	}
	if !ok {
		return 0, fmt.Errorf("話者 %q (スタイル %q) に対応するStyle IDが見つかりません (発話 %d)", v.Name, v.Style, index)
	}

	s.styleIDCacheMutex.Lock()
	s.styleIDCache[key] = id
	s.styleIDCacheMutex.Unlock()
	return id, nil
}

// processSegment は単一の発話を合成し、WAVを書き出してクリップ参照を返します。
func (s *Synthesizer) processSegment(ctx context.Context, req Request, styleID int, index int) segmentResult {
	query, err := s.client.RunAudioQuery(ctx, req.Text, styleID, s.config.SpeedScale)
	if err != nil {
		return segmentResult{index: index, err: fmt.Errorf("発話 %d のオーディオクエリ失敗: %w", index, err)}
	}

	wavData, err := s.client.RunSynthesis(ctx, query, styleID)
	if err != nil {
		return segmentResult{index: index, err: fmt.Errorf("発話 %d の音声合成失敗: %w", index, err)}
	}

	seconds, err := audio.Duration(wavData)
	if err != nil {
		return segmentResult{index: index, err: fmt.Errorf("発話 %d のWAV解析失敗: %w", index, err)}
	}

	if err := writeFile(req.Output, wavData); err != nil {
		return segmentResult{index: index, err: fmt.Errorf("発話 %d のWAV書き込み失敗: %w", index, err)}
	}

	return segmentResult{index: index, clip: &domain.AudioClipRef{DurationSeconds: seconds, FileRef: req.Output}}
}

// SynthesizeAll は ClipSynthesizer の実装です。
// いずれかの発話が失敗した場合は ErrSynthesisBatch を返し、クリップは返しません。
func (s *Synthesizer) SynthesizeAll(ctx context.Context, reqs []Request) ([]*domain.AudioClipRef, error) {
	// 1. Style ID の事前解決
	styleIDs := make([]int, len(reqs))
	batchErr := &ErrSynthesisBatch{}
	for i, req := range reqs {
		id, err := s.styleID(ctx, req.Voice, i)
		if err != nil {
			batchErr.add(i, err)
			continue
		}
		styleIDs[i] = id
	}
	if batchErr.TotalErrors > 0 {
		return nil, batchErr
	}

	// 2. 並列処理
	semaphore := make(chan struct{}, s.config.MaxParallelSegments)
	wg := sync.WaitGroup{}
	resultsChan := make(chan segmentResult, len(reqs))

	slog.InfoContext(ctx, "音声合成バッチ処理開始", "total_segments", len(reqs), "max_parallel", s.config.MaxParallelSegments)

dispatch:
	for i, req := range reqs {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "バッチ処理ループがコンテキストキャンセルにより終了しました。")
			break dispatch
		case semaphore <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, req Request) {
			defer wg.Done()
			defer func() { <-semaphore }()

			if err := s.limiter.Wait(ctx); err != nil {
				resultsChan <- segmentResult{index: i, err: fmt.Errorf("発話 %d は中断されました: %w", i, err)}
				return
			}

			segCtx, cancel := context.WithTimeout(ctx, s.config.SegmentTimeout)
			defer cancel()

			resultsChan <- s.processSegment(segCtx, req, styleIDs[i], i)
		}(i, req)
	}

	// 3. 集約
	wg.Wait()
	close(resultsChan)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("音声合成がキャンセルされました: %w", err)
	}

	clips := make([]*domain.AudioClipRef, len(reqs))
	for res := range resultsChan {
		if res.err != nil {
			batchErr.add(res.index, res.err)
			continue
		}
		clips[res.index] = res.clip
	}
	if batchErr.TotalErrors > 0 {
		batchErr.sortByIndex()
		return nil, batchErr
	}

	slog.InfoContext(ctx, "全ての発話の音声合成が完了しました。", "total_segments", len(reqs))
	return clips, nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("出力ディレクトリの作成に失敗しました (%s): %w", dir, err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}
