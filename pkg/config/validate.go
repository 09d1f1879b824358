package config

import (
	"fmt"
	"strings"
)

// Validate は設定全体を読み込み時に検証します。最初に見つかった問題を返します。
func (c *Config) Validate() error {
	checks := []struct {
		ok      bool
		field   string
		details string
	}{
		{c.Canvas.Width > 0 && c.Canvas.Height > 0, "canvas", "幅と高さは正の値が必要です"},
		{c.Stage.Width > 0 && c.Stage.Height > 0, "stage", "幅と高さは正の値が必要です"},
		{c.Stage.Left >= 0 && c.Stage.Top >= 0, "stage", "left/top は 0 以上が必要です"},
		{c.Stage.Left+c.Stage.Width <= float64(c.Canvas.Width), "stage.width", "ステージがキャンバスの幅を超えています"},
		{c.Stage.Top+c.Stage.Height <= float64(c.Canvas.Height), "stage.height", "ステージがキャンバスの高さを超えています"},
		{c.Stage.MaxCharactersPerScene >= 1 && c.Stage.MaxCharactersPerScene <= 8, "stage.max_characters_per_scene", "1 から 8 の範囲で指定してください"},
		{c.Stage.SpriteFill > 0 && c.Stage.SpriteFill <= 1, "stage.sprite_fill", "0 より大きく 1 以下で指定してください"},
		{c.Stage.SpriteHeight > 0, "stage.sprite_height", "正の値が必要です"},
		{c.Balloon.MaxWidth > 0, "balloon.max_width", "正の値が必要です"},
		{c.Balloon.MinWidth > 0 && c.Balloon.MinWidth <= c.Balloon.MaxWidth, "balloon.min_width", "正の値かつ max_width 以下が必要です"},
		{c.Balloon.MinHeight > 0, "balloon.min_height", "正の値が必要です"},
		{c.Balloon.Padding >= 0 && 2*c.Balloon.Padding < c.Balloon.MinWidth, "balloon.padding", "0 以上かつ min_width の半分未満が必要です"},
		{c.Balloon.AnchorBottom > c.Stage.Top && c.Balloon.AnchorBottom <= c.Stage.Top+c.Stage.Height, "balloon.anchor_bottom", "ステージ内の Y 座標が必要です"},
		{c.Balloon.FontSize > 0, "balloon.font_size", "正の値が必要です"},
		{c.Balloon.MinFontSize > 0 && c.Balloon.MinFontSize <= c.Balloon.FontSize, "balloon.min_font_size", "正の値かつ font_size 以下が必要です"},
		{c.Balloon.FontStep > 0, "balloon.font_step", "正の値が必要です"},
		{c.Balloon.LineSpacing >= 1, "balloon.line_spacing", "1 以上が必要です"},
		{c.Balloon.MaxLines >= 1, "balloon.max_lines", "1 以上が必要です"},
		{c.SegmentDurations.Hook >= 0, "segment_durations.hook", "負の値は指定できません"},
		{c.SegmentDurations.Separator >= 0, "segment_durations.separator", "負の値は指定できません"},
		{c.SegmentDurations.VocabCard >= 0, "segment_durations.vocab_card", "負の値は指定できません"},
		{c.SegmentDurations.VocabPause >= 0, "segment_durations.vocab_pause", "負の値は指定できません"},
		{c.Script.MaxSegmentChars > 0, "script.max_segment_chars", "正の値が必要です"},
		{c.MaxVocabCards >= 0, "max_vocab_cards", "負の値は指定できません"},
		{len(c.Characters) > 0, "characters", "キャラクターを1人以上登録してください"},
		{c.AI.Provider == "gemini" || c.AI.Provider == "openai", "ai.provider", `"gemini" か "openai" を指定してください`},
		{c.AI.MaxInputTokens > 0, "ai.max_input_tokens", "正の値が必要です"},
		{c.Raster.Workers >= 1, "raster.workers", "1 以上が必要です"},
		{c.Raster.Quality > 0 && c.Raster.Quality <= 100, "raster.quality", "0 より大きく 100 以下で指定してください"},
		{c.Voicevox.SpeedScale >= 0, "voicevox.speed_scale", "負の値は指定できません"},
	}
	for _, chk := range checks {
		if !chk.ok {
			return &ErrInvalidConfig{Field: chk.field, Details: chk.details}
		}
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return &ErrInvalidConfig{Field: "logging.level", Details: fmt.Sprintf("未知のログレベル %q", c.Logging.Level)}
	}

	for i, ch := range c.Characters {
		field := fmt.Sprintf("characters[%d]", i)
		if strings.TrimSpace(ch.ID) == "" {
			return &ErrInvalidConfig{Field: field + ".id", Details: "ID が空です"}
		}
		if ch.Image == "" {
			return &ErrInvalidConfig{Field: field + ".image", Details: fmt.Sprintf("キャラクター %q の画像が指定されていません", ch.ID)}
		}
		if c.Voicevox.Enabled && ch.Voice.Name == "" {
			return &ErrInvalidConfig{Field: field + ".voice.name", Details: fmt.Sprintf("キャラクター %q の音声が指定されていません", ch.ID)}
		}
	}
	if c.Voicevox.Enabled && c.Narrator.Voice.Name == "" {
		return &ErrInvalidConfig{Field: "narrator.voice.name", Details: "ナレーターの音声が指定されていません"}
	}

	return nil
}
