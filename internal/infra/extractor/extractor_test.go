package extractor_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-summarizer/internal/domain/entity"
	"blog-summarizer/internal/infra/extractor"
)

const articlePage = `<!DOCTYPE html>
<html>
<head><title>Launch notes</title><script>var trackingCode = "abc";</script></head>
<body>
  <nav><a href="/">Home</a> <a href="/blog">Blog</a></nav>
  <article>
    <h1>Launch notes</h1>
    <p>The engineering team shipped the new storage engine on Monday after six months of work, replacing the legacy write path entirely.</p>
    <p>Early benchmarks show write latency dropping by forty percent while read throughput stays flat across every workload the team measured.</p>
    <p>Customers on the beta program will be migrated first, and general availability is planned for the second quarter of next year.</p>
  </article>
  <footer>Copyright 2025 Example Corp</footer>
</body>
</html>`

func TestExtract_ArticlePage(t *testing.T) {
	got, err := extractor.New(0).Extract(context.Background(), articlePage)
	require.NoError(t, err)

	assert.Contains(t, got, "shipped the new storage engine on Monday")
	assert.Contains(t, got, "general availability is planned")
	assert.NotContains(t, got, "trackingCode")
}

func TestExtract_FragmentFallsBackToBlocks(t *testing.T) {
	html := `<div><h2>Release</h2><ul><li>Faster writes for every table</li><li>New <b>backup</b> command</li></ul>
<script>alert("x")</script><p>Upgrade when <em>ready</em>.</p></div>`

	got, err := extractor.New(500).Extract(context.Background(), html)
	require.NoError(t, err)

	assert.Equal(t, "Release\n\nFaster writes for every table\n\nNew backup command\n\nUpgrade when ready.", got)
}

func TestExtract_NestedBlocksReadOnce(t *testing.T) {
	html := `<blockquote><p>Quoted paragraph inside a block quote.</p></blockquote>`

	got, err := extractor.New(1000).Extract(context.Background(), html)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(got, "Quoted paragraph"))
}

func TestExtract_BodyTextWithoutBlocks(t *testing.T) {
	got, err := extractor.New(1000).Extract(context.Background(), "<div>Just   some <span>inline</span> text</div>")
	require.NoError(t, err)
	assert.Equal(t, "Just some inline text", got)
}

func TestExtract_NoText(t *testing.T) {
	tests := []struct {
		name string
		html string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"only markup", "<html><body><div></div></body></html>"},
		{"only scripts", "<html><body><script>var a = 1;</script></body></html>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := extractor.New(0).Extract(context.Background(), tt.html)
			assert.ErrorIs(t, err, entity.ErrInvalidInput)
		})
	}
}

func TestExtract_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := extractor.New(0).Extract(ctx, articlePage)
	assert.ErrorIs(t, err, context.Canceled)
}
