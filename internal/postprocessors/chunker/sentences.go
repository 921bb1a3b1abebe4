package chunker

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SplitSentences splits text after '.', '!' or '?' when followed by whitespace.
// Boundary punctuation stays with its sentence and the whitespace is dropped.
// Empty sentences are discarded.
func SplitSentences(text string) []string {
	var sentences []string
	start := 0
	prev := rune(0)
	for i, r := range text {
		if unicode.IsSpace(r) && isBoundary(prev) {
			if s := strings.TrimSpace(text[start:i]); s != "" {
				sentences = append(sentences, s)
			}
			start = i
		}
		prev = r
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func isBoundary(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
