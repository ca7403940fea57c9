package utils

import "testing"

func TestTruncateChars(t *testing.T) {
	if got := TruncateChars("hello", 3); got != "hel" {
		t.Errorf("TruncateChars: got %q", got)
	}
	if got := TruncateChars("hello", 10); got != "hello" {
		t.Errorf("TruncateChars under limit: got %q", got)
	}
	if got := TruncateChars("hello", 0); got != "hello" {
		t.Errorf("TruncateChars zero limit: got %q", got)
	}
}

func TestWordCount(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"   ", 0},
		{"one", 1},
		{"one two\tthree\nfour", 4},
	}
	for _, c := range cases {
		if got := WordCount(c.in); got != c.want {
			t.Errorf("WordCount(%q)=%d, want %d", c.in, got, c.want)
		}
	}
}
