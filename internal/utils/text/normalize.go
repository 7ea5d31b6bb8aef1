package text

import (
	"regexp"
	"strings"

	"blog-summarizer/internal/domain/entity"
)

var (
	tagPattern            = regexp.MustCompile(`<[^>]*>`)
	paragraphBreakPattern = regexp.MustCompile(`\n\s*\n`)
	whitespacePattern     = regexp.MustCompile(`\s+`)
	adMarkerPattern       = regexp.MustCompile(`(?i)\[(?:ad|advertisement|sponsored)\]`)
	ctaPattern            = regexp.MustCompile(`(?i)follow us on|subscribe to|click here|read more`)
	ellipsisRunPattern    = regexp.MustCompile(`\.{3,}`)
	bangRunPattern        = regexp.MustCompile(`!{2,}`)
	questionRunPattern    = regexp.MustCompile(`\?{2,}`)
	controlCharPattern    = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)
)

var glyphReplacer = strings.NewReplacer(
	"“", `"`, "”", `"`, "„", `"`, "‟", `"`,
	"‘", "'", "’", "'", "‚", "'", "‛", "'",
	"…", "...",
)

// Normalize cleans raw text for summarization. It removes markup tags,
// collapses whitespace while keeping paragraph breaks, drops advertising and
// call-to-action boilerplate, canonicalizes typographic quotes and ellipses,
// collapses repeated punctuation and strips control characters.
//
// The passes repeat until the text stops changing, so Normalize(Normalize(x))
// always equals Normalize(x).
func Normalize(raw string) (string, error) {
	if raw == "" {
		return "", entity.ErrInvalidInput
	}

	text := strings.ReplaceAll(raw, "\r\n", "\n")
	for {
		next := normalizePass(text)
		if next == text {
			return next, nil
		}
		text = next
	}
}

// normalizePass can expose new matches, e.g. removing "click here" from
// "cliclick hereck here". After the first pass it never grows the byte length
// of its input, which bounds the loop in Normalize.
func normalizePass(text string) string {
	text = tagPattern.ReplaceAllString(text, "")
	text = collapseWhitespace(text)

	text = adMarkerPattern.ReplaceAllString(text, "")
	text = ctaPattern.ReplaceAllString(text, "")

	text = glyphReplacer.Replace(text)
	text = ellipsisRunPattern.ReplaceAllString(text, "...")
	text = bangRunPattern.ReplaceAllString(text, "!")
	text = questionRunPattern.ReplaceAllString(text, "?")

	text = controlCharPattern.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// collapseWhitespace turns every whitespace run into one space inside a
// paragraph and separates non-empty paragraphs with exactly one blank line.
func collapseWhitespace(text string) string {
	parts := paragraphBreakPattern.Split(text, -1)
	paragraphs := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(whitespacePattern.ReplaceAllString(p, " "))
		if p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return strings.Join(paragraphs, "\n\n")
}
