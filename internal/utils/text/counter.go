// Package text implements the deterministic text-preparation stages of the
// summarization pipeline: normalization, line deduplication, validation and
// sentence-aligned chunking. All lengths are measured in runes.
package text

import "unicode/utf8"

// CountRunes counts the number of Unicode characters in text.
//
//	CountRunes("hello")     // 5
//	CountRunes("こんにちは") // 5
//	CountRunes("")          // 0
func CountRunes(text string) int {
	return utf8.RuneCountInString(text)
}
