package timeline

import (
	"errors"
	"time"

	"github.com/shouni/go-vn-stage/pkg/vnstage/asset"
	"github.com/shouni/go-vn-stage/pkg/vnstage/balloon"
	"github.com/shouni/go-vn-stage/pkg/vnstage/domain"
	"github.com/shouni/go-vn-stage/pkg/vnstage/focus"
	"github.com/shouni/go-vn-stage/pkg/vnstage/layout"
)

// DefaultMaxVocabCards は語彙カード区間に表示する最大枚数です。
const DefaultMaxVocabCards = 5

// Resolver は Compositor が Registry に要求する機能です。
type Resolver interface {
	asset.Finder
	Resolve(name string) (string, bool)
	IsNarrator(name string) bool
	Narrator() asset.Character
	Roster(utterances []domain.Utterance) ([]string, error)
}

// Settings は音声に依存しない区間の長さなどの設定です。
type Settings struct {
	HookDuration      time.Duration
	SeparatorDuration time.Duration
	VocabCardDuration time.Duration
	VocabPause        time.Duration // 発音クリップ付きカードで、クリップの後に置く無音
	MaxVocabCards     int
}

// Input は1シーン分の合成入力です。Clips は Utterances とインデックスで 1:1 に対応します。
type Input struct {
	Title      string
	Level      string
	Utterances []domain.Utterance
	Clips      []*domain.AudioClipRef
	Vocab      []domain.VocabTerm
	VocabClips map[string]*domain.AudioClipRef // キーは小文字化した単語
}

// Compositor はレイアウト・フォーカス・吹き出しの結果と音声長を1本のタイムラインにまとめます。
type Compositor struct {
	registry Resolver
	stage    *layout.Engine
	balloons *balloon.Engine
	settings Settings
}

// NewCompositor は新しい Compositor を作成します。
func NewCompositor(registry Resolver, stage *layout.Engine, balloons *balloon.Engine, settings Settings) *Compositor {
	if settings.MaxVocabCards <= 0 {
		settings.MaxVocabCards = DefaultMaxVocabCards
	}
	return &Compositor{
		registry: registry,
		stage:    stage,
		balloons: balloons,
		settings: settings,
	}
}

// Compose はフック、ブラインド、区切り、リビール、語彙の順に区間を組み立てます。
// いずれかの発話に解決済みの音声クリップがない場合は ErrMissingAudio を返し、
// 途中までのタイムラインは返しません。
func (c *Compositor) Compose(in Input) (*Timeline, error) {
	for i, u := range in.Utterances {
		if i >= len(in.Clips) || !in.Clips[i].Resolved() {
			return nil, &domain.ErrMissingAudio{Index: i, Speaker: u.Speaker}
		}
	}

	cast, err := c.registry.Roster(in.Utterances)
	if err != nil {
		return nil, err
	}
	positions, err := c.stage.Place(cast)
	if err != nil {
		return nil, err
	}

	b := &builder{timeline: &Timeline{}}

	// 1. フック
	b.begin(SegmentHook)
	if c.settings.HookDuration > 0 {
		b.add(Frame{
			Card:     &Card{Kind: CardHook, Title: in.Title, Level: sceneLevel(in)},
			Duration: c.settings.HookDuration,
		})
	}

	// 2. ブラインドリスニング
	if err := c.dialogue(b, SegmentBlind, in, positions, balloon.Blind); err != nil {
		return nil, err
	}

	// 3. 区切り
	b.begin(SegmentSeparator)
	if c.settings.SeparatorDuration > 0 {
		b.add(Frame{Card: &Card{Kind: CardSeparator}, Duration: c.settings.SeparatorDuration})
	}

	// 4. リビール (同じ音声長で全文表示)
	if err := c.dialogue(b, SegmentReveal, in, positions, balloon.Full); err != nil {
		return nil, err
	}

	// 5. 語彙カード
	b.begin(SegmentVocab)
	for i, term := range c.VocabTerms(in) {
		duration := c.settings.VocabCardDuration
		clip := in.VocabClips[domain.VocabKey(term.Word)]
		if clip.Resolved() {
			duration = clip.Length() + c.settings.VocabPause
		} else {
			clip = nil
		}
		if duration <= 0 {
			continue
		}
		t := term
		b.add(Frame{Index: i, Card: &Card{Kind: CardVocab, Term: &t, Level: sceneLevel(in)}, Duration: duration, Audio: clip})
	}

	return b.timeline, nil
}

// dialogue は発話ごとに1フレームを追加します。ブラインドとリビールで同じ処理を使い、
// 吹き出しの表示モードだけを切り替えます。
func (c *Compositor) dialogue(b *builder, kind SegmentKind, in Input, positions []layout.Position, mode balloon.Mode) error {
	b.begin(kind)
	for i, u := range in.Utterances {
		scene, err := c.scene(i, u, positions, mode)
		if err != nil {
			return err
		}
		clip := in.Clips[i]
		b.add(Frame{Index: i, Scene: scene, Duration: clip.Length(), Audio: clip})
	}
	return nil
}

func (c *Compositor) scene(index int, u domain.Utterance, positions []layout.Position, mode balloon.Mode) (*Scene, error) {
	castIDs := make([]string, len(positions))
	for i, p := range positions {
		castIDs[i] = p.ID
	}

	speaker := c.registry.Narrator().ID
	var speakers []string
	if !c.registry.IsNarrator(u.Speaker) {
		id, ok := c.registry.Resolve(u.Speaker)
		if !ok {
			return nil, &domain.ErrConfig{Index: index, CharacterID: u.Speaker, Details: "話者を解決できません"}
		}
		speaker = id
		speakers = []string{id}
	}

	state := focus.Resolve(speakers, castIDs)

	anchorX := c.stage.Bounds().CenterX()
	cast := make([]Placement, len(positions))
	for i, p := range positions {
		ch, _ := c.registry.Lookup(p.ID)
		cast[i] = Placement{
			ID:          p.ID,
			Image:       ch.Image,
			Slot:        p.Slot,
			X:           p.X,
			SlotWidth:   p.SlotWidth,
			SpriteWidth: p.SpriteWidth,
			Z:           p.Z,
			Opacity:     state[p.ID],
		}
		if p.ID == speaker {
			anchorX = p.X
		}
	}

	g, err := c.balloons.Layout(u.Text, anchorX, mode)
	if err != nil {
		var layoutErr *domain.ErrLayout
		if errors.As(err, &layoutErr) {
			e := *layoutErr
			e.Index = index
			e.CharacterID = speaker
			return nil, &e
		}
		return nil, err
	}
	g.Speaker = speaker

	return &Scene{Speaker: speaker, Cast: cast, Balloons: []balloon.Geometry{g}}, nil
}

// VocabTerms は文書の語彙、次に各発話の語彙の順で重複を除き、最大枚数までを返します。
func (c *Compositor) VocabTerms(in Input) []domain.VocabTerm {
	seen := make(map[string]bool)
	var terms []domain.VocabTerm

	add := func(t domain.VocabTerm) {
		key := domain.VocabKey(t.Word)
		if key == "" || seen[key] || len(terms) >= c.settings.MaxVocabCards {
			return
		}
		seen[key] = true
		terms = append(terms, t)
	}

	for _, t := range in.Vocab {
		add(t)
	}
	for _, u := range in.Utterances {
		for _, t := range u.Vocab {
			add(t)
		}
	}
	return terms
}

func sceneLevel(in Input) string {
	if in.Level != "" {
		return in.Level
	}
	for _, u := range in.Utterances {
		if u.Level != "" {
			return u.Level
		}
	}
	return ""
}

// builder は単一の時刻カーソルを進めながらフレームと区間を追加します。
type builder struct {
	timeline *Timeline
	cursor   time.Duration
}

func (b *builder) begin(kind SegmentKind) {
	b.timeline.Segments = append(b.timeline.Segments, Segment{
		Kind:  kind,
		Start: b.cursor,
		First: len(b.timeline.Frames),
	})
}

func (b *builder) add(f Frame) {
	seg := &b.timeline.Segments[len(b.timeline.Segments)-1]
	f.Segment = seg.Kind
	f.Start = b.cursor
	b.timeline.Frames = append(b.timeline.Frames, f)

	b.cursor += f.Duration
	seg.Duration += f.Duration
	seg.Count++
}
