package script

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shouni/go-vn-stage/pkg/vnstage/domain"
)

// TTS が安全に処理できる1発話あたりの最大文字数の目安
const DefaultMaxSegmentCharLength = 200

var (
	// 基本形式: [話者] テキスト
	reTaggedLine = regexp.MustCompile(`^\[([^\[\]]+?)\]\s*(.*)`)
	// テキスト中の演出タグ ([laughs] など) を取り除く
	reDirection = regexp.MustCompile(`\[[^\[\]]*\]`)
)

// splitRunes は長い発話を分割してよい句読点です。
var splitRunes = map[rune]bool{
	'。': true, '、': true, '！': true, '？': true,
	'.': true, ',': true, '!': true, '?': true,
}

// TaggedParser は "[話者] テキスト" 形式のテキストスクリプトを解析します。
type TaggedParser struct {
	maxChars        int
	fallbackSpeaker string

	utterances  []domain.Utterance
	current     string
	currentText *strings.Builder
	pending     string
}

// NewTaggedParser は新しい TaggedParser を作成します。
// タグ付き行が1つもない場合、テキスト全体を fallbackSpeaker の発話とします。
func NewTaggedParser(maxChars int, fallbackSpeaker string) *TaggedParser {
	if maxChars <= 0 {
		maxChars = DefaultMaxSegmentCharLength
	}
	return &TaggedParser{
		maxChars:        maxChars,
		fallbackSpeaker: fallbackSpeaker,
		currentText:     &strings.Builder{},
	}
}

// ParseTagged はデフォルト設定で content を解析します。
func ParseTagged(content string) []domain.Utterance {
	return NewTaggedParser(DefaultMaxSegmentCharLength, "").Parse(content)
}

// Parse は content を発話列に変換します。
// タグのない行は直前の発話に結合し、最初のタグより前にある行は次のタグ付き行に結合します。
// "//" で始まる行はコメントとして無視します。
func (p *TaggedParser) Parse(content string) []domain.Utterance {
	p.utterances = nil
	p.current = ""
	p.pending = ""
	p.currentText.Reset()

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		p.processLine(line)
	}
	p.finish()

	return p.utterances
}

func (p *TaggedParser) processLine(line string) {
	if m := reTaggedLine.FindStringSubmatch(line); m != nil {
		p.flush()
		p.current = strings.TrimSpace(m[1])
		text := m[2]
		if p.pending != "" {
			text = p.pending + " " + text
			p.pending = ""
		}
		p.appendAndSplit(text)
		return
	}

	if p.current != "" {
		p.appendAndSplit(line)
		return
	}
	if p.pending != "" {
		line = p.pending + " " + line
	}
	p.pending = line
	slog.Warn("タグのないテキスト行が検出されました。次のタグ付き行に結合されます。", "text", line)
}

// appendAndSplit はテキストを現在の発話に追記し、最大文字数を超える場合は分割します。
func (p *TaggedParser) appendAndSplit(text string) {
	for text != "" {
		part, remainder := p.splitByPunctuation(text)
		if part != "" {
			if p.currentText.Len() > 0 {
				p.currentText.WriteString(" ")
			}
			p.currentText.WriteString(part)
		}
		if remainder == "" {
			return
		}
		slog.Warn("発話が最大文字数を超えたため分割します。", "char_limit", p.maxChars, "speaker", p.current)
		p.flush()
		text = strings.TrimSpace(remainder)
	}
}

// splitByPunctuation は文字数制限内で最も後ろの句読点で text を分割します。
// 句読点がなければ制限位置で強制的に分割します。
func (p *TaggedParser) splitByPunctuation(text string) (part, remainder string) {
	count := utf8.RuneCountInString(p.currentText.String())
	space := 0
	if count > 0 {
		space = 1
	}
	if count+space+utf8.RuneCountInString(text) <= p.maxChars {
		return text, ""
	}

	capacity := p.maxChars - count - space
	if capacity <= 0 {
		return "", text
	}

	runes := []rune(text)
	best := -1
	for i := 0; i < len(runes) && i < capacity; i++ {
		if splitRunes[runes[i]] {
			best = i + 1
		}
	}
	if best > 0 {
		return string(runes[:best]), string(runes[best:])
	}
	if capacity < len(runes) {
		return string(runes[:capacity]), string(runes[capacity:])
	}
	return text, ""
}

func (p *TaggedParser) flush() {
	if p.currentText.Len() > 0 && p.current != "" {
		p.add(p.current, p.currentText.String())
	}
	p.currentText.Reset()
}

func (p *TaggedParser) add(speaker, text string) {
	text = strings.Join(strings.Fields(reDirection.ReplaceAllString(text, "")), " ")
	if text == "" {
		return
	}
	p.utterances = append(p.utterances, domain.Utterance{Speaker: speaker, Text: text})
}

func (p *TaggedParser) finish() {
	p.flush()
	if p.pending == "" {
		return
	}

	switch {
	case len(p.utterances) > 0:
		last := p.utterances[len(p.utterances)-1].Speaker
		slog.Warn("末尾にタグのないテキストが残りました。最後の話者の発話として扱います。", "text", p.pending, "speaker", last)
		p.add(last, p.pending)
	case p.fallbackSpeaker != "":
		slog.Warn("タグ付きの行がありません。フォールバック話者を使用します。", "speaker", p.fallbackSpeaker)
		p.current = p.fallbackSpeaker
		p.appendAndSplit(p.pending)
		p.flush()
	default:
		slog.Error("タグ付きの行もフォールバック話者もないため、テキストは破棄されます。", "text", p.pending)
	}
	p.pending = ""
}
