package main

import (
	"strings"
	"unicode"
)

// Normalizer is the guess normalization policy. Guesses and answer text
// are trimmed, upper-cased, and whitespace-collapsed before comparison;
// punctuation stripping is optional so the policy can be tuned without
// touching the matcher.
type Normalizer struct {
	StripPunctuation bool
}

// Normalize canonicalizes text for comparison.
func (n Normalizer) Normalize(text string) string {
	text = strings.ToUpper(text)

	if n.StripPunctuation {
		text = strings.Map(func(r rune) rune {
			if unicode.IsPunct(r) {
				return -1
			}
			return r
		}, text)
	}

	return strings.Join(strings.Fields(text), " ")
}

// FindMatch returns the index of the first answer, in list order, whose
// normalized text equals the normalized guess. Later duplicates are never
// considered, so whether the match counts depends solely on the first
// occurrence's revealed state.
func (n Normalizer) FindMatch(guess string, answers []Answer) (int, bool) {
	normalized := n.Normalize(guess)
	if normalized == "" {
		return 0, false
	}

	for i, answer := range answers {
		if n.Normalize(answer.Text) == normalized {
			return i, true
		}
	}

	return 0, false
}
