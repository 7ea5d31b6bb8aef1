// Package prompt builds completion prompts for the summarizer and parses the
// model's free-text answer back into bullets and a TL;DR.
package prompt

import (
	"fmt"
	"strings"

	"blog-summarizer/internal/domain/entity"
)

// Response markers shared by the builder and the parser.
const (
	BulletsMarker = "BULLETS:"
	TLDRMarker    = "TL;DR:"
	BulletGlyph   = "•"
)

// Sampling parameters biased toward deterministic, non-repetitive extraction.
const (
	Temperature      float32 = 0.3
	TopP             float32 = 0.9
	FrequencyPenalty float32 = 0.1
	PresencePenalty  float32 = 0.1
)

const systemMessage = `You are a precise summarizer for blog posts and articles. Your role is to:

1. Extract factual information accurately
2. Maintain neutrality and objectivity
3. Preserve important names, dates, numbers, and locations
4. Avoid speculation or adding facts not present in the source
5. Structure information clearly and concisely

Guidelines:
- Focus on who, what, when, where, why, and how
- Prioritize the most important information first
- Use clear, professional language
- Flag if content appears to be opinion-heavy or biased
- Maintain the original meaning without distortion`

var ordinals = []string{"First", "Second", "Third", "Fourth", "Fifth", "Sixth", "Seventh"}

// Builder turns cleaned text into a Prompt using a fixed profile table.
type Builder struct {
	profiles entity.LengthProfiles
}

// NewBuilder returns a Builder over profiles. The table is not copied and must not be mutated afterwards.
func NewBuilder(profiles entity.LengthProfiles) *Builder {
	return &Builder{profiles: profiles}
}

// SystemMessage returns the constant persona and constraint text.
func (b *Builder) SystemMessage() string {
	return systemMessage
}

// UserMessage returns the instruction block for pref followed by text verbatim.
func (b *Builder) UserMessage(text string, pref entity.LengthPreference) (string, error) {
	profile, err := b.profiles.Lookup(pref)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Please summarize the following text into a %s (target: ~%d words).\n\n",
		strings.ToLower(profile.Description), profile.WordTarget)
	sb.WriteString("Requirements:\n")
	sb.WriteString("1. Create 5-7 bullet points that capture the key information\n")
	sb.WriteString("2. Include a 2-3 sentence TL;DR (Too Long; Didn't Read) summary\n")
	sb.WriteString("3. Preserve important names, dates, numbers, and locations\n")
	sb.WriteString("4. Maintain factual accuracy and neutrality\n")
	sb.WriteString("5. Avoid adding information not present in the source\n\n")
	sb.WriteString("Format your response as:\n")
	sb.WriteString(BulletsMarker + "\n")
	for _, ord := range ordinals {
		fmt.Fprintf(&sb, "%s [%s key point]\n", BulletGlyph, ord)
	}
	sb.WriteString("\n" + TLDRMarker + " [2-3 sentence summary capturing the essence]\n\n")
	sb.WriteString("Text to summarize:\n")
	sb.WriteString(text)

	return sb.String(), nil
}

// Build assembles the full Prompt for text at pref.
func (b *Builder) Build(text string, pref entity.LengthPreference) (entity.Prompt, error) {
	user, err := b.UserMessage(text, pref)
	if err != nil {
		return entity.Prompt{}, err
	}

	return entity.Prompt{
		SystemMessage:    b.SystemMessage(),
		UserMessage:      user,
		Temperature:      Temperature,
		TopP:             TopP,
		MaxTokens:        b.profiles[pref].MaxTokens,
		FrequencyPenalty: FrequencyPenalty,
		PresencePenalty:  PresencePenalty,
	}, nil
}
