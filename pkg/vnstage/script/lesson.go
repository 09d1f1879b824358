package script

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/shouni/go-vn-stage/pkg/vnstage/domain"
)

// ----------------------------------------------------------------------
// レッスン HTML の取り込み
// ----------------------------------------------------------------------

// UntitledLesson は <h2> が見つからないときのタイトルです。
const UntitledLesson = "Untitled Lesson"

var (
	reLineBreak     = regexp.MustCompile(`(?i)<br\s*/?>`)
	reTooltip       = regexp.MustCompile(`(?s)\[tooltip\].*?\[/tooltip\]`)
	reExampleTag    = regexp.MustCompile(`\[/?esempio\]`)
	reTranslateHead = regexp.MustCompile(`(?i)^Translate:?\s*`)
	reExampleHead   = regexp.MustCompile(`(?i)^Example:?\s*`)
)

// Lesson はレッスン HTML から取り出した内容です。
type Lesson struct {
	Title string
	Vocab []domain.VocabTerm
	Text  string // 本文。タグと訳注を除き、空白を1つにまとめたもの
}

// LoadLesson はレッスン HTML を読み込み、タイトル・語彙カード・本文を取り出します。
// 本文は section.vocabulary-story、section.dialogue、body の順で最初に見つかった要素から取ります。
func LoadLesson(r io.Reader) (*Lesson, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("レッスン HTML の解析に失敗しました: %w", err)
	}

	lesson := &Lesson{Title: UntitledLesson, Vocab: extractVocab(root)}
	if h2 := findFirst(root, func(n *html.Node) bool { return n.DataAtom == atom.H2 }); h2 != nil {
		if t := collapse(textOf(h2)); t != "" {
			lesson.Title = t
		}
	}

	content := findFirst(root, elementWithClass(atom.Section, "vocabulary-story"))
	if content == nil {
		content = findFirst(root, elementWithClass(atom.Section, "dialogue"))
	}
	if content == nil {
		content = findFirst(root, func(n *html.Node) bool { return n.DataAtom == atom.Body })
	}
	if content == nil {
		content = root
	}

	text, err := cleanContent(content)
	if err != nil {
		return nil, err
	}
	lesson.Text = text
	return lesson, nil
}

// Apply はレッスンのタイトルと語彙を文書に設定します。
func (l *Lesson) Apply(doc *Document) {
	doc.Title = l.Title
	if len(l.Vocab) > 0 {
		doc.Vocab = slices.Clone(l.Vocab)
	}
}

// extractVocab は div.vocab-card から語彙を取り出します。単語のないカードは無視します。
func extractVocab(root *html.Node) []domain.VocabTerm {
	var terms []domain.VocabTerm
	for _, card := range findAll(root, elementWithClass(atom.Div, "vocab-card")) {
		var term domain.VocabTerm
		if n := findFirst(card, elementWithClass(atom.H4, "word")); n != nil {
			term.Word = collapse(textOf(n))
		}
		if term.Word == "" {
			continue
		}
		if n := findFirst(card, elementWithClass(atom.Div, "vocab-card-translate")); n != nil {
			term.Translation = collapse(reTranslateHead.ReplaceAllString(collapse(textOf(n)), ""))
		}
		if n := findFirst(card, elementWithClass(atom.Div, "vocab-card-example")); n != nil {
			term.Example = collapse(reExampleHead.ReplaceAllString(collapse(textOf(n)), ""))
		}
		terms = append(terms, term)
	}
	return terms
}

// cleanContent は要素の中身から改行タグ・訳注・独自タグを除いたプレーンテキストを返します。
// 訳注は HTML タグをまたぐことがあるため、いったん HTML に戻してから取り除きます。
func cleanContent(n *html.Node) (string, error) {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", fmt.Errorf("レッスン本文の書き出しに失敗しました: %w", err)
		}
	}

	s := reLineBreak.ReplaceAllString(buf.String(), "\n")
	s = reTooltip.ReplaceAllString(s, " ")
	s = reExampleTag.ReplaceAllString(s, " ")

	frag, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return "", fmt.Errorf("レッスン本文の解析に失敗しました: %w", err)
	}
	return collapse(textOf(frag)), nil
}

// ----------------------------------------------------------------------
// ノード探索
// ----------------------------------------------------------------------

func elementWithClass(a atom.Atom, class string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.DataAtom != a {
			return false
		}
		for _, attr := range n.Attr {
			if attr.Key == "class" && slices.Contains(strings.Fields(attr.Val), class) {
				return true
			}
		}
		return false
	}
}

func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if match(n) {
			out = append(out, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

// textOf はテキストノードを空白区切りで連結します。script と style の中身は含めません。
func textOf(n *html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			parts = append(parts, n.Data)
		case n.Type == html.ElementNode && (n.DataAtom == atom.Script || n.DataAtom == atom.Style):
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(parts, " ")
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
