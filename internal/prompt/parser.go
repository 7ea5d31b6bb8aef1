package prompt

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"blog-summarizer/internal/domain/entity"
	"blog-summarizer/internal/utils/text"
)

const (
	minBulletLength        = 10
	maxBulletLength        = 200
	minFallbackSentenceLen = 10
	minTLDRLineLength      = 20
	maxTLDRLines           = 2
	ellipsis               = "..."
)

// Models do not always use the requested glyph inside the bullets section.
var bulletGlyphs = []string{BulletGlyph, "-", "*"}

var (
	tldrLabelPattern  = regexp.MustCompile(`(?i)^\s*tl;?dr\s*:\s*`)
	disclaimerPattern = regexp.MustCompile(`(?i)\b(cannot|can't|can not|unable to|not able to)\b.*\b(summari[sz]e|summary|provide)`)
)

// Parse extracts bullets and a TL;DR from a model response. It trusts the
// BULLETS:/TL;DR: layout first, then falls back to sentence splitting for
// bullets and to prose lines or the first bullets for the TL;DR.
//
// It returns ErrInvalidResponseFormat for a blank response and
// ErrInsufficientBullets when fewer than entity.MinBullets bullets survive.
func Parse(raw string) (entity.Summary, error) {
	if strings.TrimSpace(raw) == "" {
		return entity.Summary{}, entity.ErrInvalidResponseFormat
	}

	bullets, tldr := scanSections(raw)

	if len(bullets) == 0 {
		bullets = sentenceBullets(raw)
	}

	if tldr == "" {
		tldr = proseTLDR(raw)
	}
	if tldr == "" && len(bullets) > 0 {
		tldr = synthesizeTLDR(bullets)
	}
	tldr = TruncateWords(tldrLabelPattern.ReplaceAllString(tldr, ""), entity.MaxTLDRWords)

	bullets = cleanBullets(bullets)
	if len(bullets) < entity.MinBullets {
		return entity.Summary{}, entity.ErrInsufficientBullets
	}

	if tldr == "" {
		tldr = entity.NoSummaryTLDR
	}
	return entity.Summary{Bullets: bullets, TLDR: tldr}, nil
}

func scanSections(raw string) (bullets []string, tldr string) {
	inBullets := false
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)

		switch {
		case strings.HasPrefix(lower, "bullets:"):
			inBullets = true
		case tldrLabelPattern.MatchString(line):
			inBullets = false
			tldr = strings.TrimSpace(tldrLabelPattern.ReplaceAllString(line, ""))
		case inBullets:
			if body, ok := trimBulletGlyph(line); ok && body != "" {
				bullets = append(bullets, body)
			}
		}
	}
	return bullets, tldr
}

func trimBulletGlyph(line string) (string, bool) {
	for _, g := range bulletGlyphs {
		if strings.HasPrefix(line, g) {
			return strings.TrimSpace(strings.TrimPrefix(line, g)), true
		}
	}
	return "", false
}

func sentenceBullets(raw string) []string {
	var out []string
	for _, s := range text.SplitSentences(raw) {
		if text.CountRunes(s) > minFallbackSentenceLen {
			out = append(out, s)
			if len(out) == entity.MaxBullets {
				break
			}
		}
	}
	return out
}

// proseTLDR picks up to two non-bullet lines, preferring ones that read as complete sentences.
func proseTLDR(raw string) string {
	var candidates, sentences []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if _, isBullet := trimBulletGlyph(line); isBullet {
			continue
		}
		if text.CountRunes(line) <= minTLDRLineLength || disclaimerPattern.MatchString(line) {
			continue
		}
		candidates = append(candidates, line)
		if looksLikeSentence(line) {
			sentences = append(sentences, line)
		}
	}

	if len(sentences) > 0 {
		candidates = sentences
	}
	if len(candidates) > maxTLDRLines {
		candidates = candidates[:maxTLDRLines]
	}
	return strings.Join(candidates, " ")
}

func looksLikeSentence(line string) bool {
	first, _ := utf8.DecodeRuneInString(line)
	last, _ := utf8.DecodeLastRuneInString(line)
	return unicode.IsUpper(first) && strings.ContainsRune(".!?", last)
}

func synthesizeTLDR(bullets []string) string {
	n := min(len(bullets), maxTLDRLines)
	tldr := strings.Join(bullets[:n], text.SentenceSeparator)
	if last, _ := utf8.DecodeLastRuneInString(tldr); !strings.ContainsRune(".!?", last) {
		tldr += "."
	}
	return tldr
}

// TruncateWords keeps the first maxWords words of s and marks the cut with "...".
func TruncateWords(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return strings.TrimSpace(s)
	}
	return strings.Join(words[:maxWords], " ") + ellipsis
}

func cleanBullets(bullets []string) []string {
	out := make([]string, 0, entity.MaxBullets)
	for _, b := range bullets {
		n := text.CountRunes(b)
		if n > minBulletLength && n < maxBulletLength {
			out = append(out, b)
			if len(out) == entity.MaxBullets {
				break
			}
		}
	}
	return out
}
