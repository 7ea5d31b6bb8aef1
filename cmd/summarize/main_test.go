package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const article = "Go is an open source programming language. It makes it simple to build secure software. " +
	"Goroutines make concurrency approachable for every team. The standard library covers most needs."

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("LLM_PROVIDER", "stub")
	t.Setenv("LOG_LEVEL", "error")

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(strings.NewReader(stdin), &stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestSummarize_StdinText(t *testing.T) {
	out, _, err := execute(t, article, "--length", "short")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Key points:\n"))
	assert.Contains(t, out, "TL;DR: ")
	assert.Contains(t, out, "short, 1 chunk(s)")
}

func TestSummarize_FileJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "post.html")
	require.NoError(t, os.WriteFile(path, []byte("<html><body><article><p>"+article+"</p></article></body></html>"), 0o600))

	out, _, err := execute(t, "", path, "--format", "html", "-o", "json")
	require.NoError(t, err)

	var got Output
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.NotEmpty(t, got.Bullets)
	assert.NotEmpty(t, got.TLDR)
	assert.Equal(t, "medium", got.Meta.Length)
	assert.Equal(t, 1, got.Meta.ChunksProcessed)
	assert.True(t, strings.HasSuffix(got.Meta.ProcessingTime, "ms"))
}

func TestSummarize_Errors(t *testing.T) {
	tests := []struct {
		name    string
		stdin   string
		args    []string
		wantErr string
	}{
		{"bad length", article, []string{"--length", "huge"}, `invalid length "huge"`},
		{"bad format", article, []string{"--format", "pdf"}, `invalid format "pdf"`},
		{"bad output", article, []string{"--output", "yaml"}, `invalid output "yaml"`},
		{"missing file", "", []string{filepath.Join(os.TempDir(), "does-not-exist.txt")}, "read "},
		{"too short", "short text", nil, "text validation failed"},
		{"too many args", "", []string{"a", "b"}, "accepts at most 1 arg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, err := execute(t, tt.stdin, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			if !strings.Contains(tt.wantErr, "arg") {
				assert.Contains(t, stderr, "Error: ")
			}
		})
	}
}
