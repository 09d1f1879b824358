package scriptai

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubCompleter struct {
	response string
	err      error

	system string
	user   string
}

func (s *stubCompleter) Complete(_ context.Context, system, user string) (string, error) {
	s.system, s.user = system, user
	return s.response, s.err
}

func newTestParser(c Completer, maxTokens int) *ScriptParser {
	p := NewScriptParser(c, maxTokens, "Narrator")
	p.countTokens = func(text string) int { return len(text) / 4 }
	return p
}

func TestParseDecodesFencedResponse(t *testing.T) {
	stub := &stubCompleter{response: "```json\n" + `{"title":"Lunch","level":"A2","script":[
		{"speaker":"Narrator","text":"It was noon."},
		{"speaker":"Herbert","text":"I'm hungry."},
		{"speaker":"Margot","text":"  "},
		{"speaker":"Margot","text":"Me too."}
	]}` + "\n```"}
	p := newTestParser(stub, 0)

	res, err := p.Parse(context.Background(), "It was noon. Herbert said he was hungry.", []string{"Herbert", "Margot"})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if res.Title != "Lunch" || res.Level != "A2" {
		t.Errorf("title/level = %q/%q", res.Title, res.Level)
	}
	if len(res.Utterances) != 3 {
		t.Fatalf("got %d utterances, want 3 (blank text skipped)", len(res.Utterances))
	}
	if res.Utterances[1].Speaker != "Herbert" || res.Utterances[2].Text != "Me too." {
		t.Errorf("unexpected utterances: %+v", res.Utterances)
	}
	if !strings.Contains(stub.system, "Herbert, Margot, Narrator") {
		t.Errorf("system prompt does not list the cast: %s", stub.system)
	}
	if !strings.HasSuffix(stub.user, "Herbert said he was hungry.") {
		t.Errorf("user prompt does not carry the raw text: %s", stub.user)
	}
}

func TestParseRejectsLongInput(t *testing.T) {
	stub := &stubCompleter{}
	p := newTestParser(stub, 10)

	_, err := p.Parse(context.Background(), strings.Repeat("word ", 100), nil)
	var tooLong *ErrInputTooLong
	if !errors.As(err, &tooLong) {
		t.Fatalf("expected ErrInputTooLong, got %v", err)
	}
	if tooLong.Max != 10 {
		t.Errorf("Max = %d, want 10", tooLong.Max)
	}
	if stub.user != "" {
		t.Error("completer must not be called when the input is too long")
	}
}

func TestParseInvalidResponses(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"not json", "sorry, I cannot help"},
		{"empty script", `{"script":[]}`},
		{"missing speaker", `{"script":[{"speaker":"","text":"Hi."}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestParser(&stubCompleter{response: tt.response}, 0)
			_, err := p.Parse(context.Background(), "Hi.", nil)
			var invalid *ErrInvalidResponse
			if !errors.As(err, &invalid) {
				t.Fatalf("expected ErrInvalidResponse, got %v", err)
			}
		})
	}
}

func TestParseCompleterError(t *testing.T) {
	boom := errors.New("boom")
	p := newTestParser(&stubCompleter{err: boom}, 0)
	if _, err := p.Parse(context.Background(), "Hi.", nil); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped completer error, got %v", err)
	}
}

func TestParseEmptyInput(t *testing.T) {
	p := newTestParser(&stubCompleter{}, 0)
	if _, err := p.Parse(context.Background(), "   ", nil); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestNewParserUnknownProvider(t *testing.T) {
	if _, err := NewParser(context.Background(), Options{Provider: "claude", APIKey: "k"}); err == nil {
		t.Fatal("expected error for unknown provider")
	}
	if _, err := NewParser(context.Background(), Options{Provider: "openai"}); err == nil {
		t.Fatal("expected error for missing api key")
	}
}

func TestNewParserOpenAI(t *testing.T) {
	p, err := NewParser(context.Background(), Options{Provider: "openai", APIKey: "k", MaxInputTokens: 123})
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	if p.maxInputTokens != 123 || p.narrator != "Narrator" {
		t.Errorf("unexpected parser settings: %+v", p)
	}
}
