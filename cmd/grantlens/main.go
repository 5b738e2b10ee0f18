// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/grantlens"
	"github.com/poiesic/grantlens/ai"
	"github.com/poiesic/grantlens/engine"
	"github.com/poiesic/grantlens/export"
	"github.com/poiesic/grantlens/fetch"
	"github.com/poiesic/grantlens/storage/badger"
)

func main() {
	app := &cli.App{
		Name:  "grantlens",
		Usage: "Hybrid keyword and semantic categorization for NIH research grants",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "fetch",
				Usage:  "Fetch grant records from the NIH RePORTER API into a JSONL file",
				Action: fetchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "output",
						Aliases:  []string{"o"},
						Usage:    "Path of the JSONL output file",
						Required: true,
					},
					&cli.IntSliceFlag{
						Name:  "fiscal-year",
						Usage: "Fiscal year to fetch (repeatable; defaults to last year)",
					},
					&cli.StringFlag{
						Name:  "search-text",
						Usage: "Restrict to projects whose title or abstract contain these terms",
					},
					&cli.StringSliceFlag{
						Name:  "org-name",
						Usage: "Restrict to awardee organizations (repeatable)",
					},
					&cli.IntFlag{
						Name:  "max-requests",
						Usage: "Maximum number of page requests",
						Value: 10,
					},
					&cli.DurationFlag{
						Name:  "delay",
						Usage: "Pause between page requests",
						Value: time.Second,
					},
				},
			},
			{
				Name:   "analyze",
				Usage:  "Run the hybrid categorization over a JSONL batch and write CSV results",
				Action: analyzeCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "config",
						Aliases:  []string{"c"},
						Usage:    "Path to the YAML taxonomy/configuration file",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "Path of the JSONL grant records file",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "output-dir",
						Aliases: []string{"o"},
						Usage:   "Directory for the CSV output files",
						Value:   ".",
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL (overrides config)",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name (overrides config)",
					},
					&cli.StringFlag{
						Name:  "cache",
						Usage: "Path to the embedding cache directory (disabled when empty)",
					},
					&cli.BoolFlag{
						Name:  "no-embedding",
						Usage: "Skip the semantic pipeline; keyword results only",
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Worker pool size (defaults to half the CPUs)",
					},
				},
			},
			{
				Name:   "cache-clear",
				Usage:  "Drop all cached embeddings for a model, forcing re-embedding on the next run",
				Action: cacheClearCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "cache",
						Usage:    "Path to the embedding cache directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "model",
						Aliases:  []string{"m"},
						Usage:    "Embedding model whose cached vectors should be removed",
						Required: true,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func fetchCommand(c *cli.Context) error {
	ctx := context.Background()

	client, err := fetch.NewClient(
		fetch.WithMaxRequests(c.Int("max-requests")),
		fetch.WithDelay(c.Duration("delay")),
	)
	if err != nil {
		return err
	}

	records, err := client.Fetch(ctx, fetch.Query{
		FiscalYears: c.IntSlice("fiscal-year"),
		SearchText:  c.String("search-text"),
		OrgNames:    c.StringSlice("org-name"),
	})
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}

	out, err := os.Create(c.String("output"))
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer out.Close()

	if err := fetch.WriteRecords(out, records); err != nil {
		return fmt.Errorf("writing records: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Fetched %d records to %s\n", len(records), c.String("output"))
	return nil
}

func analyzeCommand(c *cli.Context) error {
	ctx := context.Background()

	cfg, err := grantlens.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}
	applyEmbeddingOverrides(cfg, c)

	var opts []grantlens.AnalyzerOption
	if c.Bool("no-embedding") {
		opts = append(opts, grantlens.WithoutEmbedding())
	}
	if cachePath := c.String("cache"); cachePath != "" {
		opts = append(opts, grantlens.WithEmbeddingCachePath(cachePath))
	}
	if poolSize := c.Int("pool-size"); poolSize > 0 {
		opts = append(opts, grantlens.WithPoolSize(poolSize))
	}

	analyzer, err := grantlens.NewAnalyzer(cfg, opts...)
	if err != nil {
		return err
	}
	defer analyzer.Close()

	in, err := os.Open(c.String("input"))
	if err != nil {
		return fmt.Errorf("opening input file: %w", err)
	}
	records, err := fetch.ReadRecords(in)
	in.Close()
	if err != nil {
		return fmt.Errorf("reading records: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("no records in %s", c.String("input"))
	}

	analysis, err := analyzer.Analyze(ctx, records)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	outputDir := c.String("output-dir")
	if err := writeOutputs(outputDir, analysis); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Analyzed %d records, %d similarity edges; results in %s\n",
		len(analysis.Results), len(analysis.Graph.Edges()), outputDir)
	return nil
}

func cacheClearCommand(c *cli.Context) error {
	model := c.String("model")
	removed, err := clearCacheModel(c.String("cache"), model)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Removed %d cached embeddings for model %q\n", removed, model)
	return nil
}

// clearCacheModel opens the on-disk embedding cache and deletes every
// record stored under the given model. Cached vectors for other models
// are untouched.
func clearCacheModel(path, model string) (int, error) {
	backend, err := badger.OpenBackend(path, false)
	if err != nil {
		return 0, fmt.Errorf("opening embedding cache: %w", err)
	}
	defer backend.Close()

	repo, err := badger.NewEmbeddingRepository(backend)
	if err != nil {
		return 0, err
	}
	return repo.DeleteModel(context.Background(), model)
}

// applyEmbeddingOverrides lets the command line override the embedding
// provider settings from the config file.
func applyEmbeddingOverrides(cfg *grantlens.Config, c *cli.Context) {
	host := c.String("embedding-host")
	model := c.String("embedding-model")
	if host == "" && model == "" {
		return
	}

	if cfg.AI == nil {
		cfg.AI = ai.DefaultConfig()
	}
	if host != "" {
		cfg.AI.EmbeddingHost = host
	}
	if model != "" {
		cfg.AI.EmbeddingModel = model
	}
	cfg.AI.Normalize()
}

// writeOutputs renders the three CSV views into dir.
func writeOutputs(dir string, analysis *engine.Analysis) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	write := func(name string, fn func(f *os.File) error) error {
		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("creating %s: %w", name, err)
		}
		defer f.Close()
		if err := fn(f); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
		return nil
	}

	if err := write("results.csv", func(f *os.File) error {
		return export.WriteResults(f, analysis.Results)
	}); err != nil {
		return err
	}
	if err := write("edges.csv", func(f *os.File) error {
		return export.WriteEdges(f, analysis.Graph.Edges())
	}); err != nil {
		return err
	}
	return write("categories.csv", func(f *os.File) error {
		return export.WriteCategorySummary(f, analysis.Results)
	})
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
