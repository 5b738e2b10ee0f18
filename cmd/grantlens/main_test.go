package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/grantlens"
	"github.com/poiesic/grantlens/ai"
	"github.com/poiesic/grantlens/core"
	"github.com/poiesic/grantlens/engine"
	"github.com/poiesic/grantlens/similarity"
	"github.com/poiesic/grantlens/storage"
	"github.com/poiesic/grantlens/storage/badger"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		level   string
		wantErr bool
	}{
		{"debug", false},
		{"info", false},
		{"WARN", false},
		{"error", false},
		{"verbose", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			app := cli.NewApp()
			set := flag.NewFlagSet("test", 0)
			set.String("log-level", tt.level, "")
			c := cli.NewContext(app, set, nil)

			err := setupLogger(c)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestApplyEmbeddingOverrides(t *testing.T) {
	app := cli.NewApp()
	set := flag.NewFlagSet("test", 0)
	set.String("embedding-host", "http://example.test:9999", "")
	set.String("embedding-model", "custom-model", "")
	c := cli.NewContext(app, set, nil)

	cfg := &grantlens.Config{AI: ai.DefaultConfig()}
	applyEmbeddingOverrides(cfg, c)

	assert.Equal(t, "http://example.test:9999/v1", cfg.AI.EmbeddingHost)
	assert.Equal(t, "custom-model", cfg.AI.EmbeddingModel)
}

func TestApplyEmbeddingOverrides_NoFlags(t *testing.T) {
	app := cli.NewApp()
	set := flag.NewFlagSet("test", 0)
	set.String("embedding-host", "", "")
	set.String("embedding-model", "", "")
	c := cli.NewContext(app, set, nil)

	cfg := &grantlens.Config{AI: ai.DefaultConfig()}
	original := *cfg.AI
	applyEmbeddingOverrides(cfg, c)

	assert.Equal(t, original, *cfg.AI)
}

func TestWriteOutputs(t *testing.T) {
	dir := t.TempDir()

	analysis := &engine.Analysis{
		Results: []core.HybridResult{
			{
				GrantID: "g1",
				Assignments: []core.CategoryAssignment{
					{Category: "Cancer", Matched: true, Confidence: 0.8},
				},
				AwardSize: "Small",
			},
		},
		Graph: similarity.BuildGraph(
			[]string{"g1", "g2"},
			[]similarity.Pair{{I: 0, J: 1, Score: 0.9}},
			similarity.DefaultThresholds(),
		),
	}

	require.NoError(t, writeOutputs(filepath.Join(dir, "out"), analysis))

	for _, name := range []string{"results.csv", "edges.csv", "categories.csv"} {
		data, err := os.ReadFile(filepath.Join(dir, "out", name))
		require.NoError(t, err)
		assert.NotEmpty(t, data)
	}
}

func TestClearCacheModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache")

	backend, err := badger.OpenBackend(path, false)
	require.NoError(t, err)
	repo, err := badger.NewEmbeddingRepository(backend)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, repo.PutEmbeddings(ctx,
		&core.EmbeddingRecord{Key: core.EmbeddingKey("old-model", "abstract one"), Model: "old-model", Vector: []float32{1, 0}},
		&core.EmbeddingRecord{Key: core.EmbeddingKey("old-model", "abstract two"), Model: "old-model", Vector: []float32{0, 1}},
		&core.EmbeddingRecord{Key: core.EmbeddingKey("new-model", "abstract one"), Model: "new-model", Vector: []float32{1, 1}},
	))
	require.NoError(t, backend.Close())

	removed, err := clearCacheModel(path, "old-model")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	// The other model's record survives.
	backend, err = badger.OpenBackend(path, false)
	require.NoError(t, err)
	defer backend.Close()
	repo, err = badger.NewEmbeddingRepository(backend)
	require.NoError(t, err)

	kept, err := repo.GetEmbedding(ctx, core.EmbeddingKey("new-model", "abstract one"))
	require.NoError(t, err)
	assert.Equal(t, "new-model", kept.Model)

	_, err = repo.GetEmbedding(ctx, core.EmbeddingKey("old-model", "abstract one"))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestClearCacheModel_EmptyModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache")

	backend, err := badger.OpenBackend(path, false)
	require.NoError(t, err)
	require.NoError(t, backend.Close())

	removed, err := clearCacheModel(path, "never-used")
	require.NoError(t, err)
	assert.Zero(t, removed)
}
