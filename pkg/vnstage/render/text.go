package render

import (
	"strings"
	"unicode/utf8"
)

// estimateWidth は平均文字幅 (フォントサイズの 0.55 倍) による幅の見積もりです。
// カード類の装飾にのみ使い、吹き出しの計測には使いません。
func estimateWidth(text string, size float64) float64 {
	return float64(utf8.RuneCountInString(text)) * size * 0.55
}

// wrapRunes は1行あたりのルーン数で単語単位に折り返します。
func wrapRunes(text string, perLine int) []string {
	var lines []string
	var current []rune

	for _, word := range strings.Fields(text) {
		w := []rune(word)
		for len(w) > perLine {
			if len(current) > 0 {
				lines = append(lines, string(current))
				current = nil
			}
			lines = append(lines, string(w[:perLine]))
			w = w[perLine:]
		}
		switch {
		case len(current) == 0:
			current = w
		case len(current)+1+len(w) <= perLine:
			current = append(append(current, ' '), w...)
		default:
			lines = append(lines, string(current))
			current = w
		}
	}
	if len(current) > 0 {
		lines = append(lines, string(current))
	}
	return lines
}
