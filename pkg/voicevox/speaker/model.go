package speaker

import (
	"context"
	"sort"
)

// ----------------------------------------------------------------------
// インターフェース定義
// ----------------------------------------------------------------------

// SpeakerClient は /speakers エンドポイントを呼び出す能力を抽象化するインターフェースです。
// api.Client がこれを満たします。
type SpeakerClient interface {
	GetSpeakers(ctx context.Context) ([]byte, error)
}

// DataFinder は話者名とスタイル名から Style ID を検索する機能を抽象化します。
type DataFinder interface {
	StyleID(speakerName, styleName string) (styleID int, ok bool)
}

// ----------------------------------------------------------------------
// 構造体定義
// ----------------------------------------------------------------------

// SpeakerData はVOICEVOXから取得した話者・スタイル情報の不変な参照テーブルです。
type SpeakerData struct {
	styles   map[string]map[string]int // 話者名 -> スタイル名 -> Style ID
	defaults map[string]int            // 話者名 -> 既定スタイルの Style ID
}

// StyleID は DataFinder の実装です。styleName が空の場合は既定スタイルを返します。
func (d *SpeakerData) StyleID(speakerName, styleName string) (int, bool) {
	if styleName == "" {
		id, ok := d.defaults[speakerName]
		return id, ok
	}
	id, ok := d.styles[speakerName][styleName]
	return id, ok
}

// DefaultStyleID は話者の既定スタイルの Style ID を返します。
func (d *SpeakerData) DefaultStyleID(speakerName string) (int, bool) {
	id, ok := d.defaults[speakerName]
	return id, ok
}

// Speakers は登録されている話者名をソートして返します。
func (d *SpeakerData) Speakers() []string {
	names := make([]string, 0, len(d.styles))
	for name := range d.styles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StyleCount は登録されているスタイルの総数です。
func (d *SpeakerData) StyleCount() int {
	n := 0
	for _, s := range d.styles {
		n += len(s)
	}
	return n
}
