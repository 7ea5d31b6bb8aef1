package summarize

import (
	"strings"

	"blog-summarizer/internal/domain/entity"
	"blog-summarizer/internal/prompt"
	"blog-summarizer/internal/utils/text"
)

const minFallbackSentenceLength = 10

// FallbackSummary builds a summary without the model: the first 3, 5 or 7
// sentences (by preference) longer than 10 characters become the bullets and
// the first two form the TL;DR.
func FallbackSummary(cleaned string, pref entity.LengthPreference) entity.Summary {
	var sentences []string
	for _, s := range text.SplitSentences(cleaned) {
		if text.CountRunes(s) > minFallbackSentenceLength {
			sentences = append(sentences, s)
		}
	}

	n := min(pref.FallbackBulletCount(), len(sentences))
	bullets := append([]string(nil), sentences[:n]...)
	if len(bullets) == 0 {
		bullets = []string{entity.NoSummaryBullet}
	}

	tldr := entity.NoSummaryTLDR
	if len(sentences) > 0 {
		lead := sentences[:min(2, len(sentences))]
		tldr = prompt.TruncateWords(strings.Join(lead, text.SentenceSeparator)+".", entity.MaxTLDRWords)
	}

	return entity.Summary{Bullets: bullets, TLDR: tldr}
}
