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


package grantlens

import (
	"context"
	"log/slog"

	"github.com/poiesic/grantlens/ai"
	"github.com/poiesic/grantlens/ai/openai"
	"github.com/poiesic/grantlens/classify"
	"github.com/poiesic/grantlens/core"
	"github.com/poiesic/grantlens/engine"
	"github.com/poiesic/grantlens/storage"
	"github.com/poiesic/grantlens/storage/badger"
	"github.com/poiesic/grantlens/taxonomy"
)

// Analyzer is the composition root: it compiles the taxonomy, wires the
// embedder and cache, and owns the engine's lifecycle.
type Analyzer struct {
	taxonomy *taxonomy.Taxonomy
	engine   *engine.Engine
	backend  *badger.Backend
	cache    storage.EmbeddingRepository
	logger   *slog.Logger
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*analyzerOptions)

type analyzerOptions struct {
	embedder    ai.Embedder
	cachePath   string
	memoryCache bool
	noEmbedding bool
	poolSize    int
}

// WithEmbedder injects a pre-built embedder, bypassing the configured
// OpenAI-compatible provider. Mainly for tests.
func WithEmbedder(embedder ai.Embedder) AnalyzerOption {
	return func(o *analyzerOptions) {
		o.embedder = embedder
	}
}

// WithEmbeddingCachePath enables the on-disk embedding cache at the
// given directory.
func WithEmbeddingCachePath(path string) AnalyzerOption {
	return func(o *analyzerOptions) {
		o.cachePath = path
	}
}

// WithMemoryCache enables an in-memory embedding cache. Useful in tests
// and for single runs where persistence buys nothing.
func WithMemoryCache() AnalyzerOption {
	return func(o *analyzerOptions) {
		o.memoryCache = true
	}
}

// WithoutEmbedding disables the semantic pipeline entirely: keyword
// results only, no similarity edges.
func WithoutEmbedding() AnalyzerOption {
	return func(o *analyzerOptions) {
		o.noEmbedding = true
	}
}

// WithPoolSize sets the engine's worker pool size.
func WithPoolSize(size int) AnalyzerOption {
	return func(o *analyzerOptions) {
		o.poolSize = size
	}
}

// NewAnalyzer builds an analyzer from a validated configuration.
func NewAnalyzer(cfg *Config, opts ...AnalyzerOption) (*Analyzer, error) {
	options := &analyzerOptions{}
	for _, opt := range opts {
		opt(options)
	}

	tax, err := taxonomy.New(cfg.Taxonomy)
	if err != nil {
		return nil, err
	}

	scorer, err := classify.NewWeightedScorer(cfg.Weights)
	if err != nil {
		return nil, err
	}

	a := &Analyzer{
		taxonomy: tax,
		logger:   slog.Default(),
	}

	embedder := options.embedder
	if embedder == nil && !options.noEmbedding && cfg.AI != nil {
		embedder, err = openai.NewEmbedder(cfg.AI)
		if err != nil {
			return nil, err
		}
	}

	if options.cachePath != "" || options.memoryCache {
		backend, err := badger.OpenBackend(options.cachePath, options.memoryCache)
		if err != nil {
			return nil, err
		}
		cache, err := badger.NewEmbeddingRepository(backend)
		if err != nil {
			backend.Close()
			return nil, err
		}
		a.backend = backend
		a.cache = cache
	}

	engineOpts := []engine.Option{
		engine.WithProcessingConfig(cfg.Processing),
		engine.WithThresholds(cfg.Thresholds),
		engine.WithScorer(scorer),
	}
	if embedder != nil && !options.noEmbedding {
		engineOpts = append(engineOpts, engine.WithEmbedder(embedder))
	}
	if a.cache != nil {
		engineOpts = append(engineOpts, engine.WithEmbeddingCache(a.cache))
	}
	if options.poolSize > 0 {
		engineOpts = append(engineOpts, engine.WithPoolSize(options.poolSize))
	}

	eng, err := engine.NewEngine(tax, engineOpts...)
	if err != nil {
		a.closeCache()
		return nil, err
	}
	a.engine = eng

	return a, nil
}

// Analyze runs the hybrid categorization over a batch.
func (a *Analyzer) Analyze(ctx context.Context, records []*core.GrantRecord) (*engine.Analysis, error) {
	return a.engine.Analyze(ctx, records)
}

// Taxonomy returns the compiled taxonomy.
func (a *Analyzer) Taxonomy() *taxonomy.Taxonomy {
	return a.taxonomy
}

// Close releases the engine and the embedding cache.
func (a *Analyzer) Close() error {
	a.engine.Release()
	return a.closeCache()
}

func (a *Analyzer) closeCache() error {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("error closing embedding cache", "err", err)
		}
	}
	if a.backend != nil {
		if err := a.backend.Close(); err != nil {
			a.logger.Error("error closing cache backend", "err", err)
			return err
		}
	}
	return nil
}
