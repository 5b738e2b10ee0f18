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


package engine

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/grantlens/ai"
	"github.com/poiesic/grantlens/classify"
	"github.com/poiesic/grantlens/core"
	"github.com/poiesic/grantlens/similarity"
	"github.com/poiesic/grantlens/storage"
	"github.com/poiesic/grantlens/taxonomy"
	"github.com/poiesic/grantlens/textproc"
)

// Engine runs the hybrid categorization over grant batches. It holds the
// compiled taxonomy and the injected collaborators; the taxonomy is
// immutable for the engine's lifetime and shared lock-free across
// workers.
type Engine struct {
	taxonomy   *taxonomy.Taxonomy
	normalizer *textproc.Normalizer
	matcher    *classify.Matcher
	embedder   ai.Embedder
	cache      storage.EmbeddingRepository
	strategy   similarity.Strategy
	thresholds similarity.Thresholds
	pool       *ants.Pool
	logger     *slog.Logger

	processing textproc.Config
	scorer     classify.Scorer
}

// Option configures an Engine.
type Option func(*Engine) error

// WithProcessingConfig sets the text normalization configuration.
// Default is textproc.DefaultConfig().
func WithProcessingConfig(cfg textproc.Config) Option {
	return func(e *Engine) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		e.processing = cfg
		return nil
	}
}

// WithScorer sets a custom confidence scorer for keyword assignments.
func WithScorer(scorer classify.Scorer) Option {
	return func(e *Engine) error {
		e.scorer = scorer
		return nil
	}
}

// WithEmbedder sets the embedding provider. Without one the semantic
// pipeline is skipped entirely and results carry no similarity edges.
func WithEmbedder(embedder ai.Embedder) Option {
	return func(e *Engine) error {
		e.embedder = embedder
		return nil
	}
}

// WithEmbeddingCache sets an optional embedding cache. Cache failures
// are logged and degrade to re-embedding, never to batch failure.
func WithEmbeddingCache(cache storage.EmbeddingRepository) Option {
	return func(e *Engine) error {
		e.cache = cache
		return nil
	}
}

// WithStrategy sets the pairwise similarity strategy.
// Default is the exact all-pairs strategy.
func WithStrategy(strategy similarity.Strategy) Option {
	return func(e *Engine) error {
		e.strategy = strategy
		return nil
	}
}

// WithThresholds sets the similarity tier thresholds.
// Default is similarity.DefaultThresholds().
func WithThresholds(thresholds similarity.Thresholds) Option {
	return func(e *Engine) error {
		if err := thresholds.Validate(); err != nil {
			return err
		}
		e.thresholds = thresholds
		return nil
	}
}

// WithPoolSize sets the worker pool size for per-record fan-out.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(e *Engine) error {
		if size < 1 {
			size = 1
		}

		if e.pool != nil {
			e.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		e.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewEngine creates an engine for the given taxonomy.
func NewEngine(tax *taxonomy.Taxonomy, opts ...Option) (*Engine, error) {
	if tax == nil {
		return nil, ErrTaxonomyRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		taxonomy:   tax,
		thresholds: similarity.DefaultThresholds(),
		pool:       pool,
		logger:     slog.Default(),
		processing: textproc.DefaultConfig(),
	}

	for _, opt := range opts {
		if optErr := opt(e); optErr != nil {
			e.Release()
			return nil, optErr
		}
	}

	// Build the normalizer and matcher after options are applied, so they
	// see the final processing config and scorer.
	normalizer, err := textproc.NewNormalizer(e.processing)
	if err != nil {
		e.Release()
		return nil, err
	}
	e.normalizer = normalizer

	matcherOpts := []classify.Option{classify.WithLogger(e.logger)}
	if e.scorer != nil {
		matcherOpts = append(matcherOpts, classify.WithScorer(e.scorer))
	}
	matcher, err := classify.NewMatcher(tax, normalizer, matcherOpts...)
	if err != nil {
		e.Release()
		return nil, err
	}
	e.matcher = matcher

	if e.strategy == nil {
		strategy, err := similarity.NewExact(similarity.WithLogger(e.logger))
		if err != nil {
			e.Release()
			return nil, err
		}
		e.strategy = strategy
	}

	return e, nil
}

// Release releases the worker pool. The engine should not be used after
// calling Release.
func (e *Engine) Release() {
	if e.pool != nil {
		e.pool.Release()
	}
}

// Analysis is the batch-level output: one HybridResult per input record
// in input order, the flattened keyword hits, and the similarity graph.
type Analysis struct {
	Results []core.HybridResult
	Matches []core.KeywordMatch
	Graph   *similarity.Graph
}

// Analyze runs both pipelines over the batch and reconciles them.
//
// The run is deterministic and idempotent: an unchanged batch and
// taxonomy produce identical results. If ctx is cancelled mid-run, the
// per-record results computed so far are returned alongside the context
// error; they are valid as far as they go (keyword results without
// similarity evidence).
func (e *Engine) Analyze(ctx context.Context, records []*core.GrantRecord) (*Analysis, error) {
	if len(records) == 0 {
		return nil, ErrEmptyBatch
	}
	if err := core.ValidateBatch(records); err != nil {
		return nil, err
	}

	analysis := e.keywordStage(records)
	if err := ctx.Err(); err != nil {
		return analysis, err
	}

	vectors := e.embeddingStage(ctx, records, analysis.Results)
	if err := ctx.Err(); err != nil {
		return analysis, err
	}

	pairs, err := e.strategy.Neighbors(ctx, vectors, e.thresholds.Low)
	if err != nil {
		return analysis, err
	}

	ids := make([]string, len(records))
	for i, record := range records {
		ids[i] = record.ID
	}
	analysis.Graph = similarity.BuildGraph(ids, pairs, e.thresholds)

	reconcile(analysis.Results, analysis.Graph)

	e.logger.Info("batch analyzed",
		"records", len(records),
		"edges", len(analysis.Graph.Edges()))
	return analysis, nil
}

// keywordStage fans normalization and keyword matching out over the
// batch. Each record's matching is pure with respect to the immutable
// taxonomy, so workers share no mutable state beyond their own result
// slot.
func (e *Engine) keywordStage(records []*core.GrantRecord) *Analysis {
	type outcome struct {
		matches        []core.KeywordMatch
		assignments    []core.CategoryAssignment
		unclassifiable bool
	}
	outcomes := make([]outcome, len(records))

	var wg sync.WaitGroup
	for i := range records {
		idx := i
		task := func() {
			defer wg.Done()
			record := records[idx]
			tokens, err := e.normalizer.NormalizeRecord(record)
			if err != nil {
				e.logger.Debug("record unclassifiable", "grant", record.ID, "err", err)
				outcomes[idx] = outcome{unclassifiable: true}
				return
			}
			matches, assignments := e.matcher.Match(record.ID, tokens)
			outcomes[idx] = outcome{matches: matches, assignments: assignments}
		}
		wg.Add(1)
		if err := e.pool.Submit(task); err != nil {
			// Pool rejected the task; run it inline.
			task()
		}
	}
	wg.Wait()

	analysis := &Analysis{
		Results: make([]core.HybridResult, len(records)),
	}
	for i, record := range records {
		analysis.Results[i] = core.HybridResult{
			GrantID:        record.ID,
			Assignments:    outcomes[i].assignments,
			AwardSize:      e.taxonomy.AwardSize(record.AwardAmount),
			Unclassifiable: outcomes[i].unclassifiable,
		}
		analysis.Matches = append(analysis.Matches, outcomes[i].matches...)
	}
	return analysis
}

// embeddingStage produces the batch-aligned vector slice for the
// similarity strategy. Unclassifiable records and per-record embedding
// failures leave nil slots; a nil slot simply drops out of the pairwise
// computation.
func (e *Engine) embeddingStage(ctx context.Context, records []*core.GrantRecord, results []core.HybridResult) [][]float32 {
	vectors := make([][]float32, len(records))
	if e.embedder == nil {
		return vectors
	}

	// Indices still needing a vector, after the cache pass.
	var pending []int
	for i := range records {
		if results[i].Unclassifiable {
			continue
		}
		pending = append(pending, i)
	}

	if e.cache != nil {
		pending = e.cachePass(ctx, records, vectors, pending)
	}
	if len(pending) == 0 {
		return vectors
	}

	texts := make([]string, len(pending))
	for i, idx := range pending {
		texts[i] = records[idx].Text()
	}

	embedded, err := e.embedder.EmbedTexts(ctx, texts)
	if err == nil && len(embedded) == len(pending) {
		for i, idx := range pending {
			vectors[idx] = embedded[i]
		}
		e.storeEmbeddings(ctx, records, vectors, pending)
		return vectors
	}

	// The batch call failed; retry record by record so a single bad input
	// degrades one record, not the whole batch.
	e.logger.Warn("batch embedding failed, falling back to per-record calls", "err", err)
	var succeeded []int
	for _, idx := range pending {
		if ctx.Err() != nil {
			break
		}
		vector, err := e.embedder.EmbedText(ctx, records[idx].Text())
		if err != nil {
			e.logger.Warn("embedding unavailable for record", "grant", records[idx].ID, "err", err)
			results[idx].EmbeddingUnavailable = true
			continue
		}
		vectors[idx] = vector
		succeeded = append(succeeded, idx)
	}
	e.storeEmbeddings(ctx, records, vectors, succeeded)
	return vectors
}

// cachePass fills vector slots from the embedding cache and returns the
// indices that still miss. Cache errors degrade to a miss.
func (e *Engine) cachePass(ctx context.Context, records []*core.GrantRecord, vectors [][]float32, pending []int) []int {
	model := e.embedder.Model()

	keys := make([]core.ID, len(pending))
	byKey := make(map[core.ID][]int, len(pending))
	for i, idx := range pending {
		key := core.EmbeddingKey(model, records[idx].Text())
		keys[i] = key
		byKey[key] = append(byKey[key], idx)
	}

	cached, err := e.cache.GetEmbeddings(ctx, keys...)
	if err != nil {
		e.logger.Warn("embedding cache lookup failed", "err", err)
		return pending
	}

	hit := make(map[int]bool, len(pending))
	for _, record := range cached {
		for _, idx := range byKey[record.Key] {
			vectors[idx] = record.Vector
			hit[idx] = true
		}
	}

	var misses []int
	for _, idx := range pending {
		if !hit[idx] {
			misses = append(misses, idx)
		}
	}
	e.logger.Debug("embedding cache pass", "hits", len(pending)-len(misses), "misses", len(misses))
	return misses
}

// storeEmbeddings writes freshly computed vectors back to the cache.
func (e *Engine) storeEmbeddings(ctx context.Context, records []*core.GrantRecord, vectors [][]float32, indices []int) {
	if e.cache == nil || len(indices) == 0 {
		return
	}

	model := e.embedder.Model()
	entries := make([]*core.EmbeddingRecord, 0, len(indices))
	for _, idx := range indices {
		if vectors[idx] == nil {
			continue
		}
		text := records[idx].Text()
		entries = append(entries, &core.EmbeddingRecord{
			Key:    core.EmbeddingKey(model, text),
			Model:  model,
			Vector: vectors[idx],
		})
	}
	if err := e.cache.PutEmbeddings(ctx, entries...); err != nil {
		e.logger.Warn("embedding cache write failed", "err", err)
	}
}
