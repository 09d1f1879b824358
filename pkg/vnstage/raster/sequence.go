package raster

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/gen2brain/webp"

	"github.com/shouni/go-vn-stage/pkg/vnstage/render"
)

// DefaultQuality は WebP のデフォルト品質です。
const DefaultQuality = 90

// SequenceOptions は WriteSequence の設定です。
type SequenceOptions struct {
	Workers int
	Quality int
	Prefix  string // ファイル名の接頭辞。例: "social"
}

// WriteSequence はエントリを並列に描画して dir に WebP として保存し、
// タイムライン順のファイルパスを返します。
func (r *Rasterizer) WriteSequence(ctx context.Context, entries []render.Entry, dir string, opts SequenceOptions) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("出力ディレクトリの作成に失敗しました (%s): %w", dir, err)
	}
	workers := max(opts.Workers, 1)
	quality := opts.Quality
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "frame"
	}

	paths := make([]string, len(entries))
	errs := make([]error, len(entries))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	slog.InfoContext(ctx, "静止画の書き出しを開始します", "frames", len(entries), "workers", workers, "dir", dir)

loop:
	for i, e := range entries {
		select {
		case <-ctx.Done():
			break loop
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			path := filepath.Join(dir, fmt.Sprintf("%s_%04d.webp", prefix, e.Index))
			if err := r.writeFrame(e.Description, path, quality); err != nil {
				errs[i] = fmt.Errorf("フレーム #%d: %w", e.Index, err)
				return
			}
			paths[i] = path
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	slog.InfoContext(ctx, "静止画の書き出しが完了しました", "frames", len(paths))
	return paths, nil
}

func (r *Rasterizer) writeFrame(d render.Description, path string, quality int) error {
	img, err := r.Rasterize(d)
	if err != nil {
		return err
	}
	buf := new(bytes.Buffer)
	if err := webp.Encode(buf, img, webp.Options{Lossless: false, Quality: quality}); err != nil {
		return fmt.Errorf("failed to encode webp: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}
	return nil
}
