package vnstage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/shouni/go-vn-stage/pkg/vnstage/script"
)

// ----------------------------------------------------------------------
// 一括実行
// ----------------------------------------------------------------------

// DocumentLoader は入力ファイル1つからスクリプト文書を作成します。
type DocumentLoader func(ctx context.Context, path string) (*script.Document, error)

// BatchItem は一括実行の入力1件分の結果です。Err が nil でなければ Result は nil です。
type BatchItem struct {
	Input  string
	RunID  string
	Result *Result
	Err    error
}

// ListInputs は dir 直下で拡張子が exts のいずれかに一致するファイルを名前順に返します。
// 拡張子は大文字小文字を区別しません。
func ListInputs(dir string, exts ...string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("入力ディレクトリを読み込めません (%s): %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if slices.ContainsFunc(exts, func(x string) bool { return strings.EqualFold(x, ext) }) {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out, nil
}

// ExecuteBatch は inputs を順に読み込んで Execute します。
// 実行 ID には入力ファイル名から拡張子を除いたものを使います。
// 1件の失敗では止まらず、失敗した入力のエラーをまとめて返します。ctx がキャンセルされた時点で打ち切ります。
func (p *Producer) ExecuteBatch(ctx context.Context, inputs []string, outDir string, load DocumentLoader, opts ...ExecuteOption) ([]BatchItem, error) {
	items := make([]BatchItem, 0, len(inputs))
	var errs []error

	for i, path := range inputs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		name := filepath.Base(path)
		item := BatchItem{Input: path, RunID: strings.TrimSuffix(name, filepath.Ext(name))}
		slog.InfoContext(ctx, "入力を処理します", "input", name, "progress", fmt.Sprintf("%d/%d", i+1, len(inputs)))

		item.Result, item.Err = p.executeOne(ctx, path, outDir, item.RunID, load, opts)
		if item.Err != nil {
			slog.ErrorContext(ctx, "入力の処理に失敗したためスキップします", "input", name, "error", item.Err)
			errs = append(errs, fmt.Errorf("%s: %w", name, item.Err))
		}
		items = append(items, item)
	}

	slog.InfoContext(ctx, "一括実行が完了しました", "inputs", len(inputs), "failed", len(errs))
	return items, errors.Join(errs...)
}

func (p *Producer) executeOne(ctx context.Context, path, outDir, runID string, load DocumentLoader, opts []ExecuteOption) (*Result, error) {
	doc, err := load(ctx, path)
	if err != nil {
		return nil, err
	}
	return p.Execute(ctx, doc, outDir, append(slices.Clone(opts), WithRunID(runID))...)
}
