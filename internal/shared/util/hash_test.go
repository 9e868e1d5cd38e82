package util

import "testing"

func TestHashKey(t *testing.T) {
	got := HashKey("meal_plan", "prompt")
	if got != HashKey("meal_plan", "prompt") {
		t.Fatalf("expected stable hash, got %s", got)
	}
	if got == HashKey("exercise_plan", "prompt") {
		t.Fatalf("expected different parts to hash differently")
	}
	for _, ch := range got {
		if !((ch >= 'a' && ch <= 'f') || (ch >= '0' && ch <= '9')) {
			t.Fatalf("hash contains non-hex character: %c", ch)
		}
	}
	if len(got) != 64 {
		t.Fatalf("expected 64 hex characters, got %d", len(got))
	}
}

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{name: "trims", in: "  apple  ", want: "apple"},
		{name: "drops control chars", in: "app\x00le\x1b", want: "apple"},
		{name: "keeps newlines", in: "line one\nline two", want: "line one\nline two"},
		{name: "truncates runes", in: "bánh mì sandwich", max: 7, want: "bánh mì"},
		{name: "blank", in: " \t ", want: ""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeText(tt.in, tt.max); got != tt.want {
				t.Fatalf("SanitizeText(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}
