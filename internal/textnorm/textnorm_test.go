package textnorm

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "hello world", "hello world"},
		{"crlf", "a\r\nb", "a\nb"},
		{"control chars stripped", "a\x00b\x07c", "abc"},
		{"tab collapsed to space", "a\tb", "a b"},
		{"space runs collapsed", "a    b", "a b"},
		{"hyphenation repaired", "this is an exam-\nple of text", "this is an example of text"},
		{"hyphen before capital kept", "non-\nNewtonian", "non-\nNewtonian"},
		{"blank runs collapsed", "a\n\n\n\n\nb", "a\n\nb"},
		{"trailing spaces trimmed", "a   \nb", "a\nb"},
		{"surrounding whitespace trimmed", "\n\n  hello  \n\n", "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
