package chunker

import (
	"iter"
	"strings"
)

// Chunks splits text into sentence-aligned chunks of at most maxSize runes.
//
// Sentences accumulate greedily while the joined length stays within maxSize.
// When the next sentence would overflow, the current chunk is emitted and the
// next one is seeded with the trailing sentences of the emitted chunk that fit
// in the overlap budget, trimmed from the oldest until the seed and the next
// sentence fit in maxSize. A sentence longer than maxSize is emitted alone,
// without a seed. The sequence is empty for text with no sentences and may be
// ranged over more than once.
func Chunks(text string, maxSize, overlap int) iter.Seq[string] {
	return func(yield func(string) bool) {
		var current []string
		length := 0

		for _, s := range SplitSentences(text) {
			n := runeLen(s)
			if len(current) == 0 {
				current, length = []string{s}, n
				continue
			}
			if length+1+n <= maxSize {
				current = append(current, s)
				length += 1 + n
				continue
			}

			if !yield(strings.Join(current, " ")) {
				return
			}

			var seed []string
			if n <= maxSize {
				seed = overlapSeed(current, overlap, maxSize-n-1)
			}
			current = append(seed, s)
			length = joinedLen(current)
		}

		if len(current) > 0 {
			yield(strings.Join(current, " "))
		}
	}
}

// overlapSeed returns the longest run of trailing sentences whose joined
// length is within both the overlap budget and room.
func overlapSeed(sentences []string, overlap, room int) []string {
	limit := min(overlap, room)
	if limit <= 0 {
		return nil
	}
	length := 0
	start := len(sentences)
	for i := len(sentences) - 1; i >= 0; i-- {
		next := runeLen(sentences[i])
		if start < len(sentences) {
			next++
		}
		if length+next > limit {
			break
		}
		length += next
		start = i
	}
	if start == len(sentences) {
		return nil
	}
	return append([]string(nil), sentences[start:]...)
}

func joinedLen(sentences []string) int {
	if len(sentences) == 0 {
		return 0
	}
	n := len(sentences) - 1
	for _, s := range sentences {
		n += runeLen(s)
	}
	return n
}
