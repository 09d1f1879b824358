package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/shouni/go-vn-stage/pkg/vnstage/asset"
	"github.com/shouni/go-vn-stage/pkg/vnstage/script"
)

// Config はアプリケーション全体の設定です。認識するキーをすべて列挙し、未知のキーはエラーにします。
type Config struct {
	Canvas           CanvasConfig      `yaml:"canvas"`
	Stage            StageConfig       `yaml:"stage"`
	Balloon          BalloonConfig     `yaml:"balloon"`
	Cards            CardConfig        `yaml:"cards"`
	SegmentDurations SegmentDurations  `yaml:"segment_durations"`
	MaxVocabCards    int               `yaml:"max_vocab_cards"`
	Narrator         NarratorConfig    `yaml:"narrator"`
	Script           ScriptConfig      `yaml:"script"`
	Characters       []asset.Character `yaml:"characters"`
	Voicevox         VoicevoxConfig    `yaml:"voicevox"`
	AI               AIConfig          `yaml:"ai"`
	Raster           RasterConfig      `yaml:"raster"`
	Server           ServerConfig      `yaml:"server"`
	Output           OutputConfig      `yaml:"output"`
	Logging          LoggingConfig     `yaml:"logging"`
}

type CanvasConfig struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Background string `yaml:"background"`
}

type StageConfig struct {
	Left                  float64 `yaml:"left"`
	Top                   float64 `yaml:"top"`
	Width                 float64 `yaml:"width"`
	Height                float64 `yaml:"height"`
	MaxCharactersPerScene int     `yaml:"max_characters_per_scene"`
	SpriteFill            float64 `yaml:"sprite_fill"`
	SpriteTop             float64 `yaml:"sprite_top"`
	SpriteHeight          float64 `yaml:"sprite_height"`
}

type BalloonConfig struct {
	MaxWidth     float64 `yaml:"max_width"`
	MinWidth     float64 `yaml:"min_width"`
	MinHeight    float64 `yaml:"min_height"`
	Padding      float64 `yaml:"padding"`
	AnchorBottom float64 `yaml:"anchor_bottom"`
	FontPath     string  `yaml:"font_path"` // 空の場合は Go Regular
	FontSize     float64 `yaml:"font_size"`
	MinFontSize  float64 `yaml:"min_font_size"`
	FontStep     float64 `yaml:"font_step"`
	LineSpacing  float64 `yaml:"line_spacing"`
	MaxLines     int     `yaml:"max_lines"`
	Color        string  `yaml:"color"`
	TextColor    string  `yaml:"text_color"`
}

// CardConfig はフック・区切り・語彙カードの見た目です。
type CardConfig struct {
	Background          string  `yaml:"background"`
	TextColor           string  `yaml:"text_color"`
	BadgeColor          string  `yaml:"badge_color"`
	TitleFontSize       float64 `yaml:"title_font_size"`
	WordFontSize        float64 `yaml:"word_font_size"`
	TranslationFontSize float64 `yaml:"translation_font_size"`
	SeparatorText       string  `yaml:"separator_text"`
}

// SegmentDurations は音声に依存しない区間の長さです ("3s" などの形式)。
type SegmentDurations struct {
	Hook       time.Duration `yaml:"hook"`
	Separator  time.Duration `yaml:"separator"`
	VocabCard  time.Duration `yaml:"vocab_card"`
	VocabPause time.Duration `yaml:"vocab_pause"`
}

type NarratorConfig struct {
	ID    string            `yaml:"id"`
	Voice asset.VoiceParams `yaml:"voice"`
}

type VoicevoxConfig struct {
	Enabled        bool          `yaml:"enabled"`
	APIURL         string        `yaml:"api_url"`
	HTTPTimeout    time.Duration `yaml:"http_timeout"`
	MaxParallel    int           `yaml:"max_parallel"`
	SegmentTimeout time.Duration `yaml:"segment_timeout"`
	RateLimit      time.Duration `yaml:"rate_limit"`
	SpeedScale     float64       `yaml:"speed_scale"`
}

type AIConfig struct {
	Provider       string `yaml:"provider"` // "gemini" or "openai"
	GeminiModel    string `yaml:"gemini_model"`
	GeminiAPIKey   string `yaml:"gemini_api_key"`
	OpenAIModel    string `yaml:"openai_model"`
	OpenAIAPIKey   string `yaml:"openai_api_key"`
	MaxInputTokens int    `yaml:"max_input_tokens"`
}

type RasterConfig struct {
	Enabled bool `yaml:"enabled"`
	Workers int  `yaml:"workers"`
	Quality int  `yaml:"quality"` // WebP 品質 (1-100)
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// ScriptConfig はタグ付きテキストの解析設定です。
type ScriptConfig struct {
	MaxSegmentChars int    `yaml:"max_segment_chars"`
	FallbackSpeaker string `yaml:"fallback_speaker"` // 空の場合はナレーター
}

type OutputConfig struct {
	Dir string `yaml:"dir"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default は縦型動画 (1080x1920) 向けの既定設定を返します。キャラクターは含みません。
func Default() *Config {
	return &Config{
		Canvas: CanvasConfig{Width: 1080, Height: 1920, Background: "#FFFFFF"},
		Stage: StageConfig{
			Left:                  0,
			Top:                   0,
			Width:                 1080,
			Height:                1920,
			MaxCharactersPerScene: 4,
			SpriteFill:            0.95,
			SpriteTop:             1100,
			SpriteHeight:          800,
		},
		Balloon: BalloonConfig{
			MaxWidth:     900,
			MinWidth:     240,
			MinHeight:    160,
			Padding:      40,
			AnchorBottom: 1060,
			FontSize:     50,
			MinFontSize:  30,
			FontStep:     2,
			LineSpacing:  1.2,
			MaxLines:     6,
			Color:        "#FFFFFF",
			TextColor:    "#000000",
		},
		Cards: CardConfig{
			Background:          "#FFFFFF",
			TextColor:           "#333333",
			BadgeColor:          "#3B82F6",
			TitleFontSize:       100,
			WordFontSize:        100,
			TranslationFontSize: 70,
			SeparatorText:       "Check your understanding...",
		},
		SegmentDurations: SegmentDurations{
			Hook:       3 * time.Second,
			Separator:  time.Second,
			VocabCard:  3 * time.Second,
			VocabPause: 500 * time.Millisecond,
		},
		MaxVocabCards: 5,
		Narrator:      NarratorConfig{ID: asset.DefaultNarratorID},
		Script:        ScriptConfig{MaxSegmentChars: script.DefaultMaxSegmentCharLength},
		Voicevox: VoicevoxConfig{
			Enabled:     true,
			APIURL:      "http://localhost:50021",
			HTTPTimeout: 60 * time.Second,
		},
		AI: AIConfig{
			Provider:       "gemini",
			GeminiModel:    "gemini-2.5-flash",
			OpenAIModel:    "gpt-4o-mini",
			MaxInputTokens: 30000,
		},
		Raster:  RasterConfig{Workers: 4, Quality: 90},
		Server:  ServerConfig{Addr: ":8080"},
		Output:  OutputConfig{Dir: "output"},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load は YAML ファイルを読み込み、既定値に上書きし、環境変数を適用してから検証します。
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("設定ファイルの読み込みに失敗しました (%s): %w", path, err)
	}
	cfg, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("設定ファイル %s: %w", path, err)
	}
	return cfg, nil
}

// Decode は YAML を既定値に上書きして検証します。
func Decode(r io.Reader) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, &ErrInvalidConfig{Field: "-", Details: err.Error()}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv は秘匿情報と接続先を環境変数で上書きします。
func (c *Config) applyEnv() {
	if v := os.Getenv("VOICEVOX_API_URL"); v != "" {
		c.Voicevox.APIURL = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.AI.GeminiAPIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.AI.OpenAIAPIKey = v
	}
}
