package textutil_test

import (
	"testing"

	"zcomx/internal/textutil"
)

func TestScrubFileName(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{"passthrough", "My Book 001", "My Book 001"},
		{"slashes", "He Said/She Said", "He Said-She Said"},
		{"colon", "Book: The Sequel", "Book- The Sequel"},
		{"removed", "Who? <Me> \"Now\"|", "Who Me Now"},
		{"trimmed", "  padded  ", "padded"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := textutil.ScrubFileName(tc.input); got != tc.expected {
				t.Fatalf("ScrubFileName(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestPathToken(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"First Last", "first-last"},
		{"Émile Zolá", "emile-zola"},
		{"  spaced   out  ", "spaced-out"},
		{"100 Bullets", "100-bullets"},
		{"", "unknown"},
		{"!!!", "unknown"},
	}
	for _, tc := range cases {
		if got := textutil.PathToken(tc.input); got != tc.expected {
			t.Fatalf("PathToken(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}

func TestFirstShardRune(t *testing.T) {
	cases := []struct {
		input    string
		expected rune
	}{
		{"first last", 'F'},
		{"Zed", 'Z'},
		{"100 Bullets", '1'},
		{"émile", 'E'},
		{"'quoted'", 'Q'},
		{"", 0},
	}
	for _, tc := range cases {
		if got := textutil.FirstShardRune(tc.input); got != tc.expected {
			t.Fatalf("FirstShardRune(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}

func TestFirstShardRuneStable(t *testing.T) {
	for i := 0; i < 3; i++ {
		if got := textutil.FirstShardRune("first last"); got != 'F' {
			t.Fatalf("unstable shard rune: %q", got)
		}
	}
}
