// Package extractor turns an HTML document into plain article text before it
// enters the cleaning pipeline.
package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"blog-summarizer/internal/domain/entity"
	"blog-summarizer/internal/utils/text"
)

// DefaultMinReadableLength is the shortest readability result that is
// trusted before falling back to the block walk.
const DefaultMinReadableLength = 50

const (
	noiseSelector = "script, style, noscript, template, nav, header, footer, aside, form, iframe, svg"
	blockSelector = "h1, h2, h3, h4, h5, h6, p, li, blockquote, pre, td"
)

// Extractor uses go-readability to find the main content and falls back to
// walking the document's text blocks with goquery when readability finds
// nothing usable, which is common for fragments and very short pages.
type Extractor struct {
	minReadableLength int
}

// New returns an Extractor. A non-positive minReadableLength uses the default.
func New(minReadableLength int) *Extractor {
	if minReadableLength <= 0 {
		minReadableLength = DefaultMinReadableLength
	}
	return &Extractor{minReadableLength: minReadableLength}
}

// Extract returns the readable text of html with blocks separated by blank
// lines. It fails with entity.ErrInvalidInput when the document has no text.
func (e *Extractor) Extract(ctx context.Context, html string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(html) == "" {
		return "", fmt.Errorf("%w: empty html document", entity.ErrInvalidInput)
	}

	article, err := readability.FromReader(strings.NewReader(html), nil)
	if err == nil {
		if content := strings.TrimSpace(article.TextContent); text.CountRunes(content) >= e.minReadableLength {
			return content, nil
		}
	}

	slog.DebugContext(ctx, "readability found no main content, walking text blocks",
		slog.Any("readability_error", err))

	content, err := walkBlocks(html)
	if err != nil {
		return "", err
	}
	if content == "" {
		return "", fmt.Errorf("%w: html document has no readable text", entity.ErrInvalidInput)
	}
	return content, nil
}

// walkBlocks collects the text of block elements in document order. Nested
// blocks are read once, through their outermost match.
func walkBlocks(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find(noiseSelector).Remove()

	var blocks []string
	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		if s.ParentsFiltered(blockSelector).Length() > 0 {
			return
		}
		if t := strings.Join(strings.Fields(s.Text()), " "); t != "" {
			blocks = append(blocks, t)
		}
	})

	if len(blocks) == 0 {
		if t := strings.Join(strings.Fields(doc.Find("body").Text()), " "); t != "" {
			blocks = append(blocks, t)
		}
	}
	return strings.Join(blocks, "\n\n"), nil
}
