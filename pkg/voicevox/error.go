package voicevox

import (
	"fmt"
	"sort"
	"strings"
)

// ErrSynthesisBatch は音声合成バッチ全体で発生した複数のエラーをまとめたエラー型です。
// スタイル解決の事前エラーと実行時エラーの両方を含みます。
type ErrSynthesisBatch struct {
	TotalErrors int
	Indexes     []int // 失敗した発話インデックス (昇順)
	Details     []string
}

func (e *ErrSynthesisBatch) Error() string {
	return fmt.Sprintf("音声合成バッチ処理中に %d 件のエラーが発生しました:\n- %s",
		e.TotalErrors, strings.Join(e.Details, "\n- "))
}

func (e *ErrSynthesisBatch) add(index int, err error) {
	e.TotalErrors++
	e.Indexes = append(e.Indexes, index)
	e.Details = append(e.Details, err.Error())
}

// sortByIndex は並列処理で順不同に集まったエラーを発話順に並べ替えます。
func (e *ErrSynthesisBatch) sortByIndex() {
	order := make([]int, len(e.Indexes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return e.Indexes[order[a]] < e.Indexes[order[b]] })

	indexes := make([]int, len(order))
	details := make([]string, len(order))
	for i, o := range order {
		indexes[i] = e.Indexes[o]
		details[i] = e.Details[o]
	}
	e.Indexes, e.Details = indexes, details
}
