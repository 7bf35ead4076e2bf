// Package concordance builds an alphabetical word index from plain text.
// Each distinct word maps to its frequency and the ordered list of sentence
// numbers it appears in. Sentence numbers start at 1 and advance after any
// token containing a period, except for configured abbreviations.
package concordance

import (
	"strings"
)

// restricted is stripped before the sentence check. Periods survive so that
// terminators and abbreviations can still be recognised.
const restricted = ",()!@#$%^&*[]{}~`"

// extended is stripped from every word before it is recorded
const extended = restricted + "."

var (
	restrictedStripper = newStripper(restricted)
	extendedStripper   = newStripper(extended)
)

// Tokenize lowercases text and splits it on spaces, carriage returns and line
// feeds. Consecutive delimiters produce empty tokens; callers must skip them.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}

	text = strings.ToLower(text)

	tokens := make([]string, 0, strings.Count(text, " ")+1)
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case ' ', '\r', '\n':
			tokens = append(tokens, text[start:i])
			start = i + 1
		}
	}
	return append(tokens, text[start:])
}

// StripRestricted trims surrounding whitespace and removes the restricted
// punctuation set, keeping periods.
func StripRestricted(token string) string {
	return restrictedStripper.Replace(strings.TrimSpace(token))
}

// Normalize trims surrounding whitespace and removes all stripped punctuation,
// periods included. The result is the concordance key for a word.
func Normalize(token string) string {
	return extendedStripper.Replace(strings.TrimSpace(token))
}

// newStripper returns a replacer that deletes every character in set
func newStripper(set string) *strings.Replacer {
	pairs := make([]string, 0, len(set)*2)
	for _, r := range set {
		pairs = append(pairs, string(r), "")
	}
	return strings.NewReplacer(pairs...)
}
