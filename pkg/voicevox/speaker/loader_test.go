package speaker

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/shouni/go-vn-stage/pkg/voicevox/api"
)

type stubClient struct {
	body []byte
	err  error
}

func (s stubClient) GetSpeakers(ctx context.Context) ([]byte, error) {
	return s.body, s.err
}

const speakersJSON = `[
	{"name": "四国めたん", "speaker_uuid": "a", "styles": [{"name": "ノーマル", "id": 2}, {"name": "あまあま", "id": 0}]},
	{"name": "ずんだもん", "speaker_uuid": "b", "styles": [{"name": "あまあま", "id": 1}, {"name": "ノーマル", "id": 3}]},
	{"name": "No Normal", "speaker_uuid": "c", "styles": [{"name": "Whisper", "id": 40}, {"name": "Loud", "id": 41}]}
]`

func TestLoadSpeakersResolvesStyles(t *testing.T) {
	data, err := LoadSpeakers(context.Background(), stubClient{body: []byte(speakersJSON)}, []string{"四国めたん"})
	if err != nil {
		t.Fatalf("load speakers: %v", err)
	}

	tests := []struct {
		speaker, style string
		wantID         int
		wantOK         bool
	}{
		{"四国めたん", "あまあま", 0, true},
		{"四国めたん", "", 2, true},
		{"ずんだもん", "", 3, true},
		{"No Normal", "", 40, true},
		{"No Normal", "Loud", 41, true},
		{"ずんだもん", "ささやき", 0, false},
		{"Unknown", "", 0, false},
	}
	for _, tt := range tests {
		id, ok := data.StyleID(tt.speaker, tt.style)
		if id != tt.wantID || ok != tt.wantOK {
			t.Fatalf("StyleID(%q, %q) = (%d, %v), want (%d, %v)", tt.speaker, tt.style, id, ok, tt.wantID, tt.wantOK)
		}
	}

	if got := data.StyleCount(); got != 6 {
		t.Fatalf("expected 6 styles, got %d", got)
	}
	if got := data.Speakers(); !reflect.DeepEqual(got, []string{"No Normal", "ずんだもん", "四国めたん"}) {
		t.Fatalf("unexpected speakers: %v", got)
	}
}

func TestLoadSpeakersMissingRequired(t *testing.T) {
	_, err := LoadSpeakers(context.Background(), stubClient{body: []byte(speakersJSON)}, []string{"春日部つむぎ"})
	var missing *ErrMissingRequiredField
	if !errors.As(err, &missing) {
		t.Fatalf("expected ErrMissingRequiredField, got %v", err)
	}
}

func TestLoadSpeakersInvalidJSON(t *testing.T) {
	_, err := LoadSpeakers(context.Background(), stubClient{body: []byte(`{"not": "a list"}`)}, nil)
	var jsonErr *api.ErrInvalidJSON
	if !errors.As(err, &jsonErr) {
		t.Fatalf("expected ErrInvalidJSON, got %v", err)
	}
}
