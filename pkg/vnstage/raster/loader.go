package raster

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/gen2brain/webp"
)

// ImageLoader は立ち絵の参照から画像を取得します。
type ImageLoader interface {
	Load(ref string) (image.Image, error)
}

// FileLoader は Root からの相対パスとして参照を解決し、デコード済みの画像をキャッシュします。
// PNG / JPEG / WebP に対応します。
type FileLoader struct {
	Root string

	cache   map[string]image.Image
	cacheMu sync.RWMutex
}

// NewFileLoader は新しい FileLoader を作成します。
func NewFileLoader(root string) *FileLoader {
	return &FileLoader{Root: root, cache: make(map[string]image.Image)}
}

// Load は ImageLoader の実装です。
func (l *FileLoader) Load(ref string) (image.Image, error) {
	l.cacheMu.RLock()
	img, ok := l.cache[ref]
	l.cacheMu.RUnlock()
	if ok {
		return img, nil
	}

	path := ref
	if !filepath.IsAbs(path) {
		path = filepath.Join(l.Root, ref)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("画像ファイルを開けません (%s): %w", path, err)
	}
	defer f.Close()

	img, _, err = image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("画像のデコードに失敗しました (%s): %w", path, err)
	}

	l.cacheMu.Lock()
	l.cache[ref] = img
	l.cacheMu.Unlock()
	return img, nil
}
