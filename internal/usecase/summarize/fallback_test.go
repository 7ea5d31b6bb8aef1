package summarize_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"blog-summarizer/internal/domain/entity"
	"blog-summarizer/internal/usecase/summarize"
)

func TestFallbackSummary(t *testing.T) {
	doc := article(1000)

	tests := []struct {
		pref        entity.LengthPreference
		wantBullets int
	}{
		{entity.LengthShort, 3},
		{entity.LengthMedium, 5},
		{entity.LengthLong, 7},
	}

	for _, tt := range tests {
		t.Run(string(tt.pref), func(t *testing.T) {
			got := summarize.FallbackSummary(doc, tt.pref)
			assert.Len(t, got.Bullets, tt.wantBullets)
			assert.Equal(t, "Sentence 1 of the article reports one more verified fact", got.Bullets[0])
			assert.True(t, strings.HasSuffix(got.TLDR, "fact."))
		})
	}
}

func TestFallbackSummary_SkipsShortSentences(t *testing.T) {
	got := summarize.FallbackSummary("Yes. No! This sentence is long enough. Ok? Another usable sentence here.", entity.LengthShort)

	assert.Equal(t, []string{"This sentence is long enough", "Another usable sentence here"}, got.Bullets)
	assert.Equal(t, "This sentence is long enough. Another usable sentence here.", got.TLDR)
}

func TestFallbackSummary_NothingUsable(t *testing.T) {
	got := summarize.FallbackSummary("Hi. Yo. Ok.", entity.LengthMedium)

	assert.Equal(t, []string{entity.NoSummaryBullet}, got.Bullets)
	assert.Equal(t, entity.NoSummaryTLDR, got.TLDR)
}

func TestFallbackSummary_TLDRWordLimit(t *testing.T) {
	long := strings.Repeat("word ", 80) + "end"
	got := summarize.FallbackSummary(long+". "+long+".", entity.LengthShort)

	assert.Len(t, strings.Fields(got.TLDR), entity.MaxTLDRWords)
	assert.True(t, strings.HasSuffix(got.TLDR, "..."))
}
