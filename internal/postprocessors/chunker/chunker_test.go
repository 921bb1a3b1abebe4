package chunker

import (
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// numberedSentence returns a distinct sentence of exactly size runes.
func numberedSentence(i, size int) string {
	head := fmt.Sprintf("Sentence %02d ", i)
	return head + strings.Repeat("x", size-len(head)-1) + "."
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"whitespace", "  \n ", nil},
		{"no terminal", "no terminal punctuation", []string{"no terminal punctuation"}},
		{"three kinds", "Hello world. How are you? Fine!", []string{"Hello world.", "How are you?", "Fine!"}},
		{"decimal not a boundary", "Version 1.2 is out. Upgrade.", []string{"Version 1.2 is out.", "Upgrade."}},
		{"newline boundary", "First.\n\nSecond.", []string{"First.", "Second."}},
		{"ellipsis", "Wait...  what?", []string{"Wait...", "what?"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitSentences(tt.input))
		})
	}
}

func TestChunks_Empty(t *testing.T) {
	assert.Empty(t, slices.Collect(Chunks("", 100, 10)))
	assert.Empty(t, slices.Collect(Chunks(" \n\t", 100, 10)))
}

func TestChunks_ShortTextSingleChunk(t *testing.T) {
	got := slices.Collect(Chunks("One. Two. Three.", 100, 10))
	assert.Equal(t, []string{"One. Two. Three."}, got)
}

func TestChunks_ThreeThousandCharacters(t *testing.T) {
	var sentences []string
	for i := 0; i < 59; i++ {
		sentences = append(sentences, numberedSentence(i, 49))
	}
	sentences = append(sentences, numberedSentence(59, 50))
	text := strings.Join(sentences, " ")
	require.Len(t, text, 3000)

	got := slices.Collect(Chunks(text, 2000, 200))

	require.Len(t, got, 2)
	assert.Len(t, got[0], 1999)
	// The last four sentences of the first chunk fit the overlap budget.
	tail := strings.Join(sentences[36:40], " ")
	assert.True(t, strings.HasSuffix(got[0], tail))
	assert.True(t, strings.HasPrefix(got[1], tail+" "+sentences[40]))
	assert.True(t, strings.HasSuffix(got[1], sentences[59]))
}

func TestChunks_OverlapSeed(t *testing.T) {
	text := "Aaaa. Bbbb. Cccc. Dddd. Eeee. Ffff. Gggg."

	got := slices.Collect(Chunks(text, 30, 12))

	assert.Equal(t, []string{
		"Aaaa. Bbbb. Cccc. Dddd. Eeee.",
		"Dddd. Eeee. Ffff. Gggg.",
	}, got)
}

func TestChunks_SeedTrimmedToFitNextSentence(t *testing.T) {
	text := "Aaaa. Bbbb. Cccc. Dddddddddddddd."

	got := slices.Collect(Chunks(text, 20, 15))

	assert.Equal(t, []string{"Aaaa. Bbbb. Cccc.", "Dddddddddddddd."}, got)
}

func TestChunks_ZeroOverlap(t *testing.T) {
	got := slices.Collect(Chunks("Aaaa. Bbbb. Cccc.", 11, 0))

	assert.Equal(t, []string{"Aaaa. Bbbb.", "Cccc."}, got)
}

func TestChunks_OversizedSentenceEmittedAlone(t *testing.T) {
	long := strings.Repeat("x", 29) + "."
	text := "Short one. " + long + " Tail end."

	got := slices.Collect(Chunks(text, 20, 5))

	assert.Equal(t, []string{"Short one.", long, "Tail end."}, got)
}

func TestChunks_OversizedFirstSentence(t *testing.T) {
	long := strings.Repeat("y", 40) + "!"

	got := slices.Collect(Chunks(long, 20, 5))

	assert.Equal(t, []string{long}, got)
}

func TestChunks_Bounds(t *testing.T) {
	var sentences []string
	for i := 0; i < 200; i++ {
		sentences = append(sentences, numberedSentence(i, 15+(i*7)%60))
	}
	text := strings.Join(sentences, " ")

	for _, maxSize := range []int{80, 150, 500} {
		for _, overlap := range []int{0, 20, 60} {
			t.Run(fmt.Sprintf("max=%d/overlap=%d", maxSize, overlap), func(t *testing.T) {
				chunks := slices.Collect(Chunks(text, maxSize, overlap))
				require.NotEmpty(t, chunks)

				seen := map[string]bool{}
				var order []string
				for _, c := range chunks {
					assert.LessOrEqual(t, runeLen(c), maxSize)
					for _, s := range SplitSentences(c) {
						if !seen[s] {
							seen[s] = true
							order = append(order, s)
						}
					}
				}
				assert.Equal(t, sentences, order)
			})
		}
	}
}

func TestChunks_CountsRunes(t *testing.T) {
	// Each sentence is 6 runes but 11 bytes.
	text := "ααααα. βββββ. γγγγγ."

	got := slices.Collect(Chunks(text, 13, 0))

	assert.Equal(t, []string{"ααααα. βββββ.", "γγγγγ."}, got)
}

func TestChunks_Restartable(t *testing.T) {
	seq := Chunks("Aaaa. Bbbb. Cccc. Dddd.", 11, 5)

	first := slices.Collect(seq)
	second := slices.Collect(seq)

	assert.Equal(t, first, second)
	assert.Len(t, first, 3)
}

func TestChunks_StopsWhenYieldReturnsFalse(t *testing.T) {
	count := 0
	for range Chunks("Aaaa. Bbbb. Cccc. Dddd.", 5, 0) {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}
