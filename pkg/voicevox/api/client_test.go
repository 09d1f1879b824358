package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/audio_query", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Query().Get("text") != "こんにちは" || r.URL.Query().Get("speaker") != "3" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"accent_phrases": [], "speedScale": 1.0, "pitchScale": 0.0}`))
	})

	mux.HandleFunc("/synthesis", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "audio/wav" {
			t.Errorf("expected Accept audio/wav, got %q", r.Header.Get("Accept"))
		}
		body, _ := io.ReadAll(r.Body)
		var query map[string]any
		if err := json.Unmarshal(body, &query); err != nil {
			t.Errorf("synthesis body is not JSON: %v", err)
		}
		if query["speedScale"] != 1.25 {
			t.Errorf("expected patched speedScale, got %v", query["speedScale"])
		}
		if _, ok := query["pitchScale"]; !ok {
			t.Errorf("expected other query fields to be preserved")
		}
		w.Header().Set("Content-Type", "audio/wav")
		_, _ = w.Write(make([]byte, 64))
	})

	mux.HandleFunc("/speakers", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"name": "ずんだもん", "speaker_uuid": "x", "styles": [{"name": "ノーマル", "id": 3}]}]`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientAudioQueryAndSynthesis(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(srv.URL, 5*time.Second)
	ctx := context.Background()

	query, err := c.RunAudioQuery(ctx, "こんにちは", 3, 1.25)
	if err != nil {
		t.Fatalf("audio query: %v", err)
	}

	wav, err := c.RunSynthesis(ctx, query, 3)
	if err != nil {
		t.Fatalf("synthesis: %v", err)
	}
	if len(wav) != 64 {
		t.Fatalf("expected 64 bytes, got %d", len(wav))
	}
}

func TestClientGetSpeakers(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(srv.URL, 5*time.Second)

	body, err := c.GetSpeakers(context.Background())
	if err != nil {
		t.Fatalf("get speakers: %v", err)
	}
	var speakers []Speaker
	if err := json.Unmarshal(body, &speakers); err != nil {
		t.Fatalf("decode speakers: %v", err)
	}
	if len(speakers) != 1 || speakers[0].Styles[0].ID != 3 {
		t.Fatalf("unexpected speakers: %+v", speakers)
	}
}

func TestClientInvalidBaseURL(t *testing.T) {
	c := NewClient("://bad url", time.Second)

	_, err := c.GetSpeakers(context.Background())
	if _, ok := err.(*ErrAPINetwork); !ok {
		t.Fatalf("expected ErrAPINetwork, got %T %v", err, err)
	}
}
