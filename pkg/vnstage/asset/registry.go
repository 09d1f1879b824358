package asset

import (
	"fmt"
	"strings"

	"github.com/shouni/go-vn-stage/pkg/vnstage/domain"
)

// DefaultNarratorID はナレーター行の話者名です。
const DefaultNarratorID = "Narrator"

// Registry はキャラクター定義の不変な参照テーブルです。
// プロセス起動時に一度だけ構築し、以降は読み取り専用で各コンポーネントに渡します。
type Registry struct {
	characters map[string]Character
	order      []string // 登録順 (名前解決の優先順位)
	narrator   Character
}

// NewRegistry はキャラクター一覧から Registry を構築します。
// ID の重複や空 ID は ErrConfig になります。
func NewRegistry(chars []Character, narrator Character) (*Registry, error) {
	if narrator.ID == "" {
		narrator.ID = DefaultNarratorID
	}

	r := &Registry{
		characters: make(map[string]Character, len(chars)),
		order:      make([]string, 0, len(chars)),
		narrator:   narrator,
	}

	for _, c := range chars {
		if strings.TrimSpace(c.ID) == "" {
			return nil, &domain.ErrConfig{Index: -1, Details: "キャラクター ID が空です"}
		}
		if _, dup := r.characters[c.ID]; dup {
			return nil, &domain.ErrConfig{Index: -1, CharacterID: c.ID, Details: "キャラクター ID が重複しています"}
		}
		if strings.EqualFold(c.ID, narrator.ID) {
			return nil, &domain.ErrConfig{Index: -1, CharacterID: c.ID, Details: "ナレーター ID と同名のキャラクターは登録できません"}
		}
		r.characters[c.ID] = c
		r.order = append(r.order, c.ID)
	}

	return r, nil
}

// Lookup は ID の完全一致でキャラクターを検索します (Finder 実装)
func (r *Registry) Lookup(id string) (Character, bool) {
	c, ok := r.characters[id]
	return c, ok
}

// IDs は登録順のキャラクター ID 一覧のコピーを返します。
func (r *Registry) IDs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Narrator はナレーター定義を返します。
func (r *Registry) Narrator() Character {
	return r.narrator
}

// IsNarrator は話者名がナレーターを指すかどうかを返します。
func (r *Registry) IsNarrator(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), r.narrator.ID)
}

// Resolve はスクリプト上の話者名を登録済みキャラクター ID に解決します。
// 完全一致、大文字小文字無視、前方一致 (名前がキーで始まる)、逆前方一致の順に試します。
// 同じ段階で複数候補がある場合は登録順で先のものを採用します。
func (r *Registry) Resolve(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" || r.IsNarrator(name) {
		return "", false
	}

	if _, ok := r.characters[name]; ok {
		return name, true
	}

	lower := strings.ToLower(name)
	matchers := []func(key string) bool{
		func(key string) bool { return key == lower },
		func(key string) bool { return strings.HasPrefix(lower, key) },
		func(key string) bool { return strings.HasPrefix(key, lower) },
	}
	for _, match := range matchers {
		for _, id := range r.order {
			if match(strings.ToLower(id)) {
				return id, true
			}
		}
	}

	return "", false
}

// Voice は話者の音声パラメータを返します。ナレーターはナレーター音声を使います。
func (r *Registry) Voice(speaker string) (VoiceParams, error) {
	if r.IsNarrator(speaker) {
		if r.narrator.Voice.Name == "" {
			return VoiceParams{}, &domain.ErrConfig{Index: -1, CharacterID: speaker, Details: "ナレーターの音声が設定されていません"}
		}
		return r.narrator.Voice, nil
	}

	id, ok := r.Resolve(speaker)
	if !ok {
		return VoiceParams{}, &domain.ErrConfig{Index: -1, CharacterID: speaker, Details: "話者を解決できません"}
	}
	voice := r.characters[id].Voice
	if voice.Name == "" {
		return VoiceParams{}, &domain.ErrConfig{Index: -1, CharacterID: id, Details: "音声パラメータが設定されていません"}
	}
	return voice, nil
}

// Roster はスクリプトに登場するキャラクター ID を初登場順に重複なく返します。
// ナレーターは含みません。解決できない話者は発話インデックス付きの ErrConfig になります。
func (r *Registry) Roster(utterances []domain.Utterance) ([]string, error) {
	seen := make(map[string]bool)
	var roster []string

	for i, u := range utterances {
		if r.IsNarrator(u.Speaker) {
			continue
		}
		id, ok := r.Resolve(u.Speaker)
		if !ok {
			return nil, &domain.ErrConfig{
				Index:       i,
				CharacterID: u.Speaker,
				Details:     fmt.Sprintf("登録済みキャラクター %v のいずれにも一致しません", r.order),
			}
		}
		if !seen[id] {
			seen[id] = true
			roster = append(roster, id)
		}
	}

	return roster, nil
}
