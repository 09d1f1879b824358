package config

import (
	"cmp"
	"fmt"
	"os"

	"github.com/shouni/go-vn-stage/pkg/scriptai"
	"github.com/shouni/go-vn-stage/pkg/vnstage/asset"
	"github.com/shouni/go-vn-stage/pkg/vnstage/balloon"
	"github.com/shouni/go-vn-stage/pkg/vnstage/layout"
	"github.com/shouni/go-vn-stage/pkg/vnstage/raster"
	"github.com/shouni/go-vn-stage/pkg/vnstage/render"
	"github.com/shouni/go-vn-stage/pkg/vnstage/script"
	"github.com/shouni/go-vn-stage/pkg/vnstage/timeline"
	"github.com/shouni/go-vn-stage/pkg/voicevox"
)

// ----------------------------------------------------------------------
// 各コンポーネント向けの設定への変換
// ----------------------------------------------------------------------

// Registry はキャラクター定義から不変の Registry を構築します。
func (c *Config) Registry() (*asset.Registry, error) {
	return asset.NewRegistry(c.Characters, asset.Character{ID: c.Narrator.ID, Voice: c.Narrator.Voice})
}

// StageBounds はステージ領域です。
func (c *Config) StageBounds() layout.Bounds {
	return layout.Bounds{Left: c.Stage.Left, Top: c.Stage.Top, Width: c.Stage.Width, Height: c.Stage.Height}
}

// LayoutConfig はステージ配置の設定です。
func (c *Config) LayoutConfig() layout.Config {
	return layout.Config{
		Bounds:        c.StageBounds(),
		MaxCharacters: c.Stage.MaxCharactersPerScene,
		SpriteFill:    c.Stage.SpriteFill,
	}
}

// BalloonLayout は吹き出しレイアウトの設定です。
func (c *Config) BalloonLayout() balloon.Config {
	b := c.Balloon
	return balloon.Config{
		MaxWidth:     b.MaxWidth,
		MinWidth:     b.MinWidth,
		MinHeight:    b.MinHeight,
		Padding:      b.Padding,
		AnchorBottom: b.AnchorBottom,
		FontSize:     b.FontSize,
		MinFontSize:  b.MinFontSize,
		FontStep:     b.FontStep,
		LineSpacing:  b.LineSpacing,
		MaxLines:     b.MaxLines,
	}
}

// FontMeasurer は font_path のフォント (未指定なら Go Regular) の計測器を作成します。
func (c *Config) FontMeasurer() (*balloon.FontMeasurer, error) {
	var ttf []byte
	if c.Balloon.FontPath != "" {
		data, err := os.ReadFile(c.Balloon.FontPath)
		if err != nil {
			return nil, fmt.Errorf("フォントファイルの読み込みに失敗しました (%s): %w", c.Balloon.FontPath, err)
		}
		ttf = data
	}
	return balloon.NewFontMeasurer(ttf)
}

// TimelineSettings は音声に依存しない区間の設定です。
func (c *Config) TimelineSettings() timeline.Settings {
	return timeline.Settings{
		HookDuration:      c.SegmentDurations.Hook,
		SeparatorDuration: c.SegmentDurations.Separator,
		VocabCardDuration: c.SegmentDurations.VocabCard,
		VocabPause:        c.SegmentDurations.VocabPause,
		MaxVocabCards:     c.MaxVocabCards,
	}
}

// RenderStyle は描画記述の見た目の設定です。
func (c *Config) RenderStyle() render.Style {
	return render.Style{
		Width:               c.Canvas.Width,
		Height:              c.Canvas.Height,
		Background:          c.Canvas.Background,
		SpriteTop:           c.Stage.SpriteTop,
		SpriteHeight:        c.Stage.SpriteHeight,
		BalloonColor:        c.Balloon.Color,
		TextColor:           c.Balloon.TextColor,
		CardBackground:      c.Cards.Background,
		CardTextColor:       c.Cards.TextColor,
		BadgeColor:          c.Cards.BadgeColor,
		TitleFontSize:       c.Cards.TitleFontSize,
		WordFontSize:        c.Cards.WordFontSize,
		TranslationFontSize: c.Cards.TranslationFontSize,
		SeparatorText:       c.Cards.SeparatorText,
	}
}

// VoicevoxOptions は音声合成の初期化オプションです。
func (c *Config) VoicevoxOptions() voicevox.Options {
	seen := make(map[string]bool)
	var speakers []string
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			speakers = append(speakers, name)
		}
	}
	add(c.Narrator.Voice.Name)
	for _, ch := range c.Characters {
		add(ch.Voice.Name)
	}

	v := c.Voicevox
	return voicevox.Options{
		Enabled:          v.Enabled,
		APIURL:           v.APIURL,
		HTTPTimeout:      v.HTTPTimeout,
		RequiredSpeakers: speakers,
		Config: voicevox.Config{
			MaxParallelSegments: v.MaxParallel,
			SegmentTimeout:      v.SegmentTimeout,
			SegmentRateLimit:    v.RateLimit,
			SpeedScale:          v.SpeedScale,
		},
	}
}

// ScriptAIOptions は選択中のプロバイダ向けの AI スクリプト解析オプションです。
func (c *Config) ScriptAIOptions() scriptai.Options {
	opts := scriptai.Options{
		Provider:       c.AI.Provider,
		MaxInputTokens: c.AI.MaxInputTokens,
		Narrator:       c.Narrator.ID,
	}
	switch c.AI.Provider {
	case "openai":
		opts.Model, opts.APIKey = c.AI.OpenAIModel, c.AI.OpenAIAPIKey
	default:
		opts.Model, opts.APIKey = c.AI.GeminiModel, c.AI.GeminiAPIKey
	}
	return opts
}

// SequenceOptions は静止画書き出しの設定です。
func (c *Config) SequenceOptions() raster.SequenceOptions {
	return raster.SequenceOptions{Workers: c.Raster.Workers, Quality: c.Raster.Quality}
}

// TaggedParser はタグ付きテキストのパーサーです。タグのないテキストはナレーターの発話になります。
func (c *Config) TaggedParser() *script.TaggedParser {
	return script.NewTaggedParser(c.Script.MaxSegmentChars, cmp.Or(c.Script.FallbackSpeaker, c.Narrator.ID))
}
