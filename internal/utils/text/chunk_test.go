package text_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-summarizer/internal/utils/text"
)

func sampleDocument(minLength int) string {
	var b strings.Builder
	for i := 1; b.Len() < minLength; i++ {
		fmt.Fprintf(&b, "Sentence %d of the sample document explains one more detail. ", i)
	}
	return strings.TrimSpace(b.String())
}

func TestSplitSentences(t *testing.T) {
	got := text.SplitSentences("First one. Second one!! Third?! \n Fourth...  ")
	assert.Equal(t, []string{"First one", "Second one", "Third", "Fourth"}, got)
	assert.Empty(t, text.SplitSentences(" ... !? "))
}

func TestSplitChunks_FitsInOneChunk(t *testing.T) {
	doc := sampleDocument(1700)
	require.LessOrEqual(t, text.CountRunes(doc), 2000)

	chunks := text.SplitChunks(doc, 2000)
	assert.Equal(t, []string{doc}, chunks)

	exact := strings.Repeat("x", 2000)
	assert.Equal(t, []string{exact}, text.SplitChunks(exact, 2000))
}

func TestSplitChunks_RespectsCapAndOrder(t *testing.T) {
	doc := sampleDocument(6500)

	chunks := text.SplitChunks(doc, 2000)

	assert.GreaterOrEqual(t, len(chunks), 3)
	var rejoined []string
	for i, c := range chunks {
		assert.LessOrEqual(t, text.CountRunes(c), 2000, "chunk %d", i)
		assert.NotEmpty(t, c)
		rejoined = append(rejoined, text.SplitSentences(c)...)
	}
	assert.Equal(t, text.SplitSentences(doc), rejoined)
}

func TestSplitChunks_OversizedSentence(t *testing.T) {
	long := strings.Repeat("a", 80)
	doc := "Short opener here. " + long + ". Short closer here."

	chunks := text.SplitChunks(doc, 40)

	assert.Equal(t, []string{"Short opener here", long, "Short closer here"}, chunks)
}

func TestSplitChunks_JoinsWithSeparator(t *testing.T) {
	chunks := text.SplitChunks("One two. Three four. Five six. Seven eight.", 25)
	assert.Equal(t, []string{"One two. Three four", "Five six. Seven eight"}, chunks)
}

func TestSplitChunks_NonPositiveCap(t *testing.T) {
	assert.Equal(t, []string{"a. b. c."}, text.SplitChunks("a. b. c.", 0))
}
