package focus

import (
	"reflect"
	"testing"
)

func TestResolve(t *testing.T) {
	cast := []string{"Herbert", "Margot", "Lena"}

	tests := []struct {
		name     string
		speakers []string
		want     State
	}{
		{
			name:     "single speaker",
			speakers: []string{"Margot"},
			want:     State{"Herbert": Dimmed, "Margot": Active, "Lena": Dimmed},
		},
		{
			name:     "multiple speakers",
			speakers: []string{"Herbert", "Lena"},
			want:     State{"Herbert": Active, "Margot": Dimmed, "Lena": Active},
		},
		{
			name:     "narrator dims everyone",
			speakers: []string{"Narrator"},
			want:     State{"Herbert": Dimmed, "Margot": Dimmed, "Lena": Dimmed},
		},
		{
			name:     "no speakers",
			speakers: nil,
			want:     State{"Herbert": Dimmed, "Margot": Dimmed, "Lena": Dimmed},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.speakers, cast)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Resolve(%v) = %v, want %v", tt.speakers, got, tt.want)
			}
		})
	}
}

func TestResolveHasNoMemory(t *testing.T) {
	cast := []string{"Herbert", "Margot"}

	_ = Resolve([]string{"Herbert"}, cast)
	got := Resolve([]string{"Margot"}, cast)

	if got["Herbert"] != Dimmed {
		t.Fatalf("expected previous speaker to be dimmed, got %v", got["Herbert"])
	}
	if !reflect.DeepEqual(got.Active(), []string{"Margot"}) {
		t.Fatalf("unexpected active set: %v", got.Active())
	}
}
