package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/shouni/go-vn-stage/pkg/vnstage/asset"
	"github.com/shouni/go-vn-stage/pkg/vnstage/balloon"
	"github.com/shouni/go-vn-stage/pkg/vnstage/layout"
	"github.com/shouni/go-vn-stage/pkg/vnstage/render"
	"github.com/shouni/go-vn-stage/pkg/vnstage/script"
	"github.com/shouni/go-vn-stage/pkg/vnstage/timeline"
)

type fixedMeasurer struct{}

func (fixedMeasurer) Advance(text string, size float64) (float64, error) {
	return float64(utf8.RuneCountInString(text)) * size * 0.5, nil
}

func (fixedMeasurer) LineHeight(size float64) (float64, error) {
	return size, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	registry, err := asset.NewRegistry([]asset.Character{
		{ID: "Herbert", Image: "herbert.png"},
		{ID: "Margot", Image: "margot.png"},
	}, asset.Character{})
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	bounds := layout.Bounds{Width: 1080, Height: 1920}
	compositor := timeline.NewCompositor(
		registry,
		layout.NewEngine(registry, layout.Config{Bounds: bounds, MaxCharacters: 4}),
		balloon.NewEngine(fixedMeasurer{}, bounds, balloon.Config{
			MaxWidth:     900,
			MinWidth:     200,
			MinHeight:    120,
			Padding:      20,
			AnchorBottom: 1200,
			FontSize:     40,
			MinFontSize:  20,
			MaxLines:     4,
		}),
		timeline.Settings{HookDuration: 3 * time.Second, SeparatorDuration: time.Second, VocabCardDuration: 2 * time.Second},
	)
	return NewServer(context.Background(), compositor, render.NewEmitter(render.Style{}), "error")
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestPostTimeline(t *testing.T) {
	body := `{"title":"Lunch time","script":[
		{"speaker":"Herbert","text":"I'm hungry","audio":{"duration_seconds":2.0,"file_ref":"a.wav"}},
		{"speaker":"Margot","text":"Me too","audio":{"duration_seconds":1.5,"file_ref":"b.wav"}}
	]}`
	rec := do(t, newTestServer(t), http.MethodPost, "/api/timeline", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp TimelineResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ID == "" {
		t.Error("missing response id")
	}
	if resp.Social.TotalSeconds != 11 {
		t.Errorf("social total = %v, want 11", resp.Social.TotalSeconds)
	}
	if resp.Dialogue.TotalSeconds != 3.5 {
		t.Errorf("dialogue total = %v, want 3.5", resp.Dialogue.TotalSeconds)
	}
	if len(resp.Social.Entries) != 6 || len(resp.Dialogue.Entries) != 2 {
		t.Errorf("entries = %d / %d", len(resp.Social.Entries), len(resp.Dialogue.Entries))
	}
	if resp.Dialogue.Entries[0].Start != 0 {
		t.Errorf("dialogue starts at %v", resp.Dialogue.Entries[0].Start)
	}
}

func TestPostTimelineErrors(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantCode  int
		wantKind  string
		wantIndex int
	}{
		{
			name:      "missing audio",
			body:      `[{"speaker":"Herbert","text":"Hi","audio":{"duration_seconds":1,"file_ref":"a.wav"}},{"speaker":"Margot","text":"Hello"}]`,
			wantCode:  http.StatusUnprocessableEntity,
			wantKind:  "missing_audio",
			wantIndex: 1,
		},
		{
			name:      "unknown speaker",
			body:      `[{"speaker":"Zed","text":"Hi","audio":{"duration_seconds":1,"file_ref":"a.wav"}}]`,
			wantCode:  http.StatusUnprocessableEntity,
			wantKind:  "config",
			wantIndex: 0,
		},
		{
			name:      "layout overflow",
			body:      `[{"speaker":"Herbert","text":"` + strings.Repeat("word ", 400) + `","audio":{"duration_seconds":1,"file_ref":"a.wav"}}]`,
			wantCode:  http.StatusUnprocessableEntity,
			wantKind:  "layout",
			wantIndex: 0,
		},
		{
			name:      "empty text",
			body:      `[{"speaker":"Herbert","text":""}]`,
			wantCode:  http.StatusBadRequest,
			wantKind:  "invalid_document",
			wantIndex: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newTestServer(t), http.MethodPost, "/api/timeline", tt.body)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			var resp ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Kind != tt.wantKind {
				t.Errorf("kind = %q, want %q", resp.Kind, tt.wantKind)
			}
			if resp.Index == nil || *resp.Index != tt.wantIndex {
				t.Errorf("index = %v, want %d", resp.Index, tt.wantIndex)
			}
		})
	}
}

func TestPostTimelineMalformedJSON(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/api/timeline", `{"script":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestPostParse(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/api/parse", `{"text":"[Herbert] I'm hungry.\n[Margot] Me too."}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Script []struct {
			Speaker string `json:"speaker"`
			Text    string `json:"text"`
		} `json:"script"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Script) != 2 || resp.Script[1].Speaker != "Margot" {
		t.Errorf("unexpected script: %+v", resp.Script)
	}
}

type ctxKey struct{}

func TestRequestContextDerivesFromServerContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.WithValue(context.Background(), ctxKey{}, "root"))
	s := NewServer(ctx, nil, nil, "error")

	base := s.Echo.Server.BaseContext(nil)
	if base.Value(ctxKey{}) != "root" {
		t.Fatalf("request base context does not carry the server context")
	}
	cancel()
	if base.Err() == nil {
		t.Fatalf("request base context was not cancelled with the server context")
	}
}

func TestPostParseUsesConfiguredParser(t *testing.T) {
	s := newTestServer(t)
	s.TaggedParser = func() *script.TaggedParser { return script.NewTaggedParser(10, "Narrator") }

	rec := do(t, s, http.MethodPost, "/api/parse", `{"text":"Herbert looks at the map."}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Script []struct {
			Speaker string `json:"speaker"`
			Text    string `json:"text"`
		} `json:"script"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Script) < 2 {
		t.Fatalf("expected narrator text split at 10 chars, got %+v", resp.Script)
	}
	for _, u := range resp.Script {
		if u.Speaker != "Narrator" {
			t.Errorf("speaker = %q, want Narrator", u.Speaker)
		}
	}
}
