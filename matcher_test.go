package main

import (
	"testing"
)

func TestNormalize(t *testing.T) {
	norm := Normalizer{StripPunctuation: true}

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"trims whitespace", "  bread  ", "BREAD"},
		{"upper cases", "DuckDuckGo", "DUCKDUCKGO"},
		{"collapses inner whitespace", "ice   cream \t sandwich", "ICE CREAM SANDWICH"},
		{"strips punctuation", "mac 'n' cheese!", "MAC N CHEESE"},
		{"empty input", "   ", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := norm.Normalize(tc.in); got != tc.want {
				t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeKeepsPunctuationWhenConfigured(t *testing.T) {
	norm := Normalizer{StripPunctuation: false}

	if got := norm.Normalize("mac 'n' cheese"); got != "MAC 'N' CHEESE" {
		t.Errorf("Normalize() = %q, want punctuation preserved", got)
	}
}

func TestFindMatch(t *testing.T) {
	norm := Normalizer{StripPunctuation: true}

	answers := []Answer{
		{Text: "Google", Weight: 60},
		{Text: "Bing", Weight: 20},
		{Text: "Yahoo", Weight: 10},
		{Text: "DuckDuckGo", Weight: 10},
	}

	cases := []struct {
		name      string
		guess     string
		wantIndex int
		wantOK    bool
	}{
		{"exact", "Google", 0, true},
		{"case folded", "bing", 1, true},
		{"padded", "  yahoo  ", 2, true},
		{"punctuation ignored", "duck-duck-go", 3, true},
		{"no match", "altavista", 0, false},
		{"empty guess", "", 0, false},
		{"partial is not a match", "goog", 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			index, ok := norm.FindMatch(tc.guess, answers)
			if ok != tc.wantOK {
				t.Fatalf("FindMatch(%q) ok = %t, want %t", tc.guess, ok, tc.wantOK)
			}
			if ok && index != tc.wantIndex {
				t.Errorf("FindMatch(%q) index = %d, want %d", tc.guess, index, tc.wantIndex)
			}
		})
	}
}

func TestFindMatchPrefersFirstDuplicate(t *testing.T) {
	norm := Normalizer{}

	answers := []Answer{
		{Text: "Apple", Weight: 50},
		{Text: "apple", Weight: 5},
	}

	index, ok := norm.FindMatch("APPLE", answers)
	if !ok || index != 0 {
		t.Errorf("FindMatch() = (%d, %t), want first occurrence (0, true)", index, ok)
	}
}
