// Package main provides a CLI that summarizes a file or standard input with
// the same pipeline as the API.
// Usage: summarize [file] [--length short|medium|long] [--format text|html] [--output text|json]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"blog-summarizer/internal/config"
	"blog-summarizer/internal/domain/entity"
	"blog-summarizer/internal/infra/extractor"
	"blog-summarizer/internal/infra/llm"
	"blog-summarizer/internal/observability/logging"
	"blog-summarizer/internal/prompt"
	"blog-summarizer/internal/usecase/summarize"
)

// Output is the JSON form of a result.
type Output struct {
	Bullets []string   `json:"bullets"`
	TLDR    string     `json:"tldr"`
	Meta    OutputMeta `json:"meta"`
}

// OutputMeta describes how the summary was produced.
type OutputMeta struct {
	TokensUsed      int    `json:"tokensUsed"`
	Model           string `json:"model"`
	Length          string `json:"length"`
	ProcessingTime  string `json:"processingTime"`
	OriginalLength  int    `json:"originalLength"`
	CleanedLength   int    `json:"cleanedLength"`
	ChunksProcessed int    `json:"chunksProcessed"`
	Fallback        bool   `json:"fallback,omitempty"`
}

type options struct {
	length string
	format string
	output string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "summarize [file]",
		Short: "Summarize an article into key bullets and a TL;DR",
		Long: `Summarize an article with the configured language model.

The text is read from the given file, or from standard input when no file is
named. Provider, model and limits come from the same environment variables as
the API server.

Examples:
  summarize post.txt
  summarize --length long post.txt
  curl -s https://example.com/post | summarize --format html --output json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := run(cmd.Context(), opts, args, stdin, stdout, stderr)
			if err != nil {
				fmt.Fprintf(stderr, "Error: %v\n", err)
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&opts.length, "length", "l", string(entity.DefaultLength), "Summary length: short, medium, long")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Input format: text, html")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "text", "Output format: text, json")
	return cmd
}

func run(ctx context.Context, opts *options, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	pref, err := entity.ParseLengthPreference(opts.length)
	if err != nil {
		return fmt.Errorf("invalid length %q (must be short, medium or long)", opts.length)
	}
	if opts.format != "text" && opts.format != "html" {
		return fmt.Errorf("invalid format %q (must be text or html)", opts.format)
	}
	if opts.output != "text" && opts.output != "json" {
		return fmt.Errorf("invalid output %q (must be text or json)", opts.output)
	}

	input, err := readInput(args, stdin)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.New(stderr, cfg.LogLevel, true)
	slog.SetDefault(logger)

	client, err := llm.New(cfg.LLMClientConfig(), nil)
	if err != nil {
		return err
	}
	svc := summarize.NewService(client, prompt.NewBuilder(cfg.Pipeline.Profiles), summarize.Config{
		MinLength:        cfg.Pipeline.TextMinLength,
		MaxLength:        cfg.Pipeline.TextMaxLength,
		ChunkSize:        cfg.Pipeline.ChunkSize,
		Parallelism:      cfg.Pipeline.ChunkParallelism,
		FinalPassRetries: cfg.Pipeline.FinalPassRetries,
		Model:            cfg.LLM.Model,
	}, summarize.WithExtractor(extractor.New(0)))

	ctx, cancel := context.WithTimeout(ctx, cfg.Pipeline.Timeout)
	defer cancel()

	result, err := svc.Process(ctx, entity.RawInput{Text: input, Length: pref, HTML: opts.format == "html"})
	if err != nil {
		var ve *entity.ValidationError
		if errors.As(err, &ve) {
			return fmt.Errorf("text validation failed: %s", strings.Join(ve.Errors, "; "))
		}
		return err
	}

	if opts.output == "json" {
		return writeJSON(stdout, result)
	}
	return writeText(stdout, result)
}

func readInput(args []string, stdin io.Reader) (string, error) {
	if len(args) == 0 {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read %s: %w", args[0], err)
	}
	return string(b), nil
}

func writeText(w io.Writer, r *entity.AggregateResult) error {
	var b strings.Builder
	b.WriteString("Key points:\n")
	for _, bullet := range r.Bullets {
		fmt.Fprintf(&b, "  • %s\n", bullet)
	}
	fmt.Fprintf(&b, "\nTL;DR: %s\n", r.TLDR)
	fmt.Fprintf(&b, "\n(%s, %s, %d chunk(s), %dms", r.Model, r.Length, r.ChunksProcessed, r.ProcessingTime.Milliseconds())
	if r.Fallback {
		b.WriteString(", fallback")
	}
	b.WriteString(")\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func writeJSON(w io.Writer, r *entity.AggregateResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Output{
		Bullets: r.Bullets,
		TLDR:    r.TLDR,
		Meta: OutputMeta{
			TokensUsed:      r.TokensUsed,
			Model:           r.Model,
			Length:          string(r.Length),
			ProcessingTime:  fmt.Sprintf("%dms", r.ProcessingTime.Milliseconds()),
			OriginalLength:  r.OriginalLength,
			CleanedLength:   r.CleanedLength,
			ChunksProcessed: r.ChunksProcessed,
			Fallback:        r.Fallback,
		},
	})
}
