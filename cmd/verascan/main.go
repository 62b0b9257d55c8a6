// verascan extracts structured fields from a text file without a
// running server: no store, no queue, optional LLM. Useful for tuning
// rules files against sample documents.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/veradocs/vera/internal/common"
	"github.com/veradocs/vera/internal/extract"
	"github.com/veradocs/vera/internal/llm"
)

func main() {
	rulesPath := flag.String("rules", "", "path to a YAML rules override")
	locale := flag.String("locale", "", `amount locale: "", "us", or "eu"`)
	model := flag.String("model", "", "LLM model name; empty disables the LLM")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: verascan [flags] <text-file>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	text, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "read input: %v\n", err)
		os.Exit(1)
	}

	rules, err := extract.LoadRules(*rulesPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load rules: %v\n", err)
		os.Exit(1)
	}

	var summarizer extract.Summarizer
	if *model != "" {
		summarizer = llm.NewClient(common.LoadConfig().LLM, logger)
	}

	engine := extract.NewEngine(rules, nil, summarizer, logger)
	summary := engine.Extract(context.Background(), string(text), extract.SummaryOptions{
		Model:  *model,
		Locale: extract.Locale(*locale),
	})

	out := map[string]any{
		"bullet_summary":    summary.BulletSummary,
		"structured_fields": summary.StructuredFields,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "encode output: %v\n", err)
		os.Exit(1)
	}
}
