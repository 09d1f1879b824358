package speaker

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/shouni/go-vn-stage/pkg/voicevox/api"
)

// LoadSpeakers は /speakers エンドポイントからデータを取得し、SpeakerData を構築します。
// required に挙げた話者がエンジンに存在しない場合は ErrMissingRequiredField を返します。
func LoadSpeakers(ctx context.Context, client SpeakerClient, required []string) (*SpeakerData, error) {
	body, err := client.GetSpeakers(ctx)
	if err != nil {
		return nil, err
	}

	var speakers []api.Speaker
	if err := json.Unmarshal(body, &speakers); err != nil {
		return nil, &api.ErrInvalidJSON{Details: "/speakers 応答", WrappedErr: err}
	}

	data := &SpeakerData{
		styles:   make(map[string]map[string]int, len(speakers)),
		defaults: make(map[string]int, len(speakers)),
	}

	for _, spk := range speakers {
		if spk.Name == "" || len(spk.Styles) == 0 {
			slog.DebugContext(ctx, "スタイルのない話者をスキップします", "speaker", spk.Name)
			continue
		}

		styles := make(map[string]int, len(spk.Styles))
		for _, style := range spk.Styles {
			if _, dup := styles[style.Name]; !dup {
				styles[style.Name] = style.ID
			}
		}
		data.styles[spk.Name] = styles

		if id, ok := styles[DefaultStyleName]; ok {
			data.defaults[spk.Name] = id
		} else {
			data.defaults[spk.Name] = spk.Styles[0].ID
		}
	}

	var missing []string
	for _, name := range required {
		if _, ok := data.defaults[name]; !ok {
			slog.ErrorContext(ctx, "設定された話者がVOICEVOXエンジンに存在しません", "speaker", name)
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &ErrMissingRequiredField{
			Field:   "話者 (" + strings.Join(missing, ", ") + ")",
			Context: "VOICEVOX話者データのロード時",
		}
	}

	slog.InfoContext(ctx, "VOICEVOXスタイルデータが正常にロードされました",
		"speakers_count", len(data.styles),
		"styles_count", data.StyleCount())

	return data, nil
}
