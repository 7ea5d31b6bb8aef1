package text

import (
	"regexp"
	"strings"
)

// SentenceSeparator joins sentences inside a chunk.
const SentenceSeparator = ". "

var sentenceEndPattern = regexp.MustCompile(`[.!?]+`)

// SplitSentences splits text on runs of terminal punctuation and returns the
// trimmed, non-empty pieces in order. The punctuation itself is dropped.
func SplitSentences(text string) []string {
	parts := sentenceEndPattern.Split(text, -1)
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
}

// SplitChunks packs whole sentences into chunks of at most maxChunkSize runes.
// Text that already fits is returned unchanged as the only chunk. A sentence
// longer than maxChunkSize becomes a chunk of its own. A non-positive
// maxChunkSize disables splitting.
func SplitChunks(text string, maxChunkSize int) []string {
	if maxChunkSize <= 0 || CountRunes(text) <= maxChunkSize {
		return []string{text}
	}

	var (
		chunks  []string
		current strings.Builder
		size    int
	)
	for _, sentence := range SplitSentences(text) {
		n := CountRunes(sentence)
		if size > 0 && size+len(SentenceSeparator)+n > maxChunkSize {
			chunks = append(chunks, current.String())
			current.Reset()
			size = 0
		}
		if size > 0 {
			current.WriteString(SentenceSeparator)
			size += len(SentenceSeparator)
		}
		current.WriteString(sentence)
		size += n
	}
	if size > 0 {
		chunks = append(chunks, current.String())
	}

	if len(chunks) == 0 {
		return []string{text}
	}
	return chunks
}
