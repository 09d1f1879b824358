package script

import (
	"strings"
	"testing"
)

const lessonHTML = `<html><body>
<h2>Lunch <em>time</em></h2>
<div class="vocab-card">
  <h4 class="word">hungry</h4>
  <div class="vocab-card-translate">Translate: affamato</div>
  <div class="vocab-card-example">Example:  I am   hungry.</div>
</div>
<div class="vocab-card"><div class="vocab-card-translate">Translate: senza parola</div></div>
<div class="vocab-card card-wide"><h4 class="word">sandwich</h4></div>
<section class="vocabulary-story">
  <p>Herbert: I'm hungry.[tooltip]<i>Ho fame.</i>[/tooltip]<br>Margot: [esempio]Me too.[/esempio]</p>
  <p>Herbert: Let's eat.</p>
</section>
<footer>Copyright</footer>
</body></html>`

func TestLoadLesson(t *testing.T) {
	lesson, err := LoadLesson(strings.NewReader(lessonHTML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if lesson.Title != "Lunch time" {
		t.Errorf("title = %q", lesson.Title)
	}

	if len(lesson.Vocab) != 2 {
		t.Fatalf("expected 2 vocab terms, got %+v", lesson.Vocab)
	}
	if v := lesson.Vocab[0]; v.Word != "hungry" || v.Translation != "affamato" || v.Example != "I am hungry." {
		t.Errorf("unexpected first term: %+v", v)
	}
	if v := lesson.Vocab[1]; v.Word != "sandwich" || v.Translation != "" || v.Example != "" {
		t.Errorf("unexpected second term: %+v", v)
	}

	want := "Herbert: I'm hungry. Margot: Me too. Herbert: Let's eat."
	if lesson.Text != want {
		t.Errorf("text = %q, want %q", lesson.Text, want)
	}
}

func TestLoadLessonContentFallback(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "dialogue section",
			html: `<body><p>intro</p><section class="dialogue">Hi<br/>there</section></body>`,
			want: "Hi there",
		},
		{
			name: "body",
			html: `<body><p>Hello</p><p>world</p><script>var x = 1;</script></body>`,
			want: "Hello world",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lesson, err := LoadLesson(strings.NewReader(tt.html))
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if lesson.Text != tt.want {
				t.Errorf("text = %q, want %q", lesson.Text, tt.want)
			}
			if lesson.Title != UntitledLesson || len(lesson.Vocab) != 0 {
				t.Errorf("unexpected lesson: %+v", lesson)
			}
		})
	}
}

func TestLessonApply(t *testing.T) {
	lesson, err := LoadLesson(strings.NewReader(lessonHTML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	doc := FromUtterances("AI title", nil)
	lesson.Apply(doc)
	if doc.Title != "Lunch time" || len(doc.Vocab) != 2 || doc.Vocab[1].Word != "sandwich" {
		t.Fatalf("unexpected document: %+v", doc)
	}
}
