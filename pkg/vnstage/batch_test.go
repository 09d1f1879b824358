package vnstage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shouni/go-vn-stage/pkg/vnstage/domain"
	"github.com/shouni/go-vn-stage/pkg/vnstage/script"
)

func loadJSONFile(_ context.Context, path string) (*script.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return script.LoadJSON(f)
}

func writeInputs(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestListInputs(t *testing.T) {
	dir := writeInputs(t, map[string]string{
		"b.json":   "{}",
		"a.JSON":   "{}",
		"c.html":   "",
		"notes.md": "",
		"README":   "",
	})
	if err := os.Mkdir(filepath.Join(dir, "sub.json"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := ListInputs(dir, ".json", ".html")
	if err != nil {
		t.Fatalf("ListInputs: %v", err)
	}
	want := []string{"a.JSON", "b.json", "c.html"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if filepath.Base(got[i]) != want[i] {
			t.Errorf("got[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	if _, err := ListInputs(filepath.Join(dir, "missing")); err == nil {
		t.Errorf("expected error for missing directory")
	}
}

func TestExecuteBatchContinuesPastFailures(t *testing.T) {
	dir := writeInputs(t, map[string]string{
		"lesson1.json": `[{"speaker": "Herbert", "text": "I'm hungry"}]`,
		"lesson2.json": `[{"speaker": "Zed", "text": "Who?"}]`,
		"lesson3.json": `{"script": []}`,
		"lesson4.json": `[{"speaker": "Margot", "text": "Me too"}]`,
	})
	inputs, err := ListInputs(dir, ".json")
	if err != nil {
		t.Fatal(err)
	}
	out := t.TempDir()
	p := newTestProducer(t, WithSynthesizer(&stubSynth{}))

	items, err := p.ExecuteBatch(context.Background(), inputs, out, loadJSONFile)
	if len(items) != 4 {
		t.Fatalf("got %d items, want 4", len(items))
	}

	var cfgErr *domain.ErrConfig
	if !errors.As(err, &cfgErr) || cfgErr.CharacterID != "Zed" {
		t.Fatalf("expected joined ErrConfig for Zed, got %v", err)
	}
	var docErr *script.ErrInvalidDocument
	if !errors.As(err, &docErr) {
		t.Fatalf("expected joined ErrInvalidDocument, got %v", err)
	}
	if !strings.Contains(err.Error(), "lesson2.json") || !strings.Contains(err.Error(), "lesson3.json") {
		t.Errorf("error should name failed inputs: %v", err)
	}

	for _, i := range []int{0, 3} {
		it := items[i]
		if it.Err != nil || it.Result == nil {
			t.Fatalf("item %d failed: %v", i, it.Err)
		}
		if it.RunID != strings.TrimSuffix(filepath.Base(it.Input), ".json") {
			t.Errorf("run id = %q for %s", it.RunID, it.Input)
		}
		if _, err := os.Stat(filepath.Join(out, it.RunID, SocialManifestName)); err != nil {
			t.Errorf("manifest missing for %s: %v", it.RunID, err)
		}
	}
	for _, i := range []int{1, 2} {
		if items[i].Err == nil || items[i].Result != nil {
			t.Errorf("item %d should have failed: %+v", i, items[i])
		}
	}
}

func TestExecuteBatchStopsOnCancel(t *testing.T) {
	dir := writeInputs(t, map[string]string{
		"a.json": `[{"speaker": "Herbert", "text": "Hi"}]`,
	})
	inputs, err := ListInputs(dir, ".json")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	loaded := false
	load := func(ctx context.Context, path string) (*script.Document, error) {
		loaded = true
		return loadJSONFile(ctx, path)
	}
	items, err := newTestProducer(t).ExecuteBatch(ctx, inputs, t.TempDir(), load)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(items) != 0 || loaded {
		t.Errorf("no input should be processed after cancel: items=%d loaded=%v", len(items), loaded)
	}
}
