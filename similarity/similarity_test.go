package similarity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/grantlens/core"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0, 0}, []float32{1, 0, 0}, 1},
		{"orthogonal", []float32{1, 0, 0}, []float32{0, 1, 0}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"scaled", []float32{2, 0}, []float32{5, 0}, 1},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
		{"length mismatch", []float32{1, 0}, []float32{1, 0, 0}, 0},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Cosine(tt.a, tt.b), 1e-9)
		})
	}
}

func TestCosine_Symmetric(t *testing.T) {
	a := []float32{0.3, 0.5, 0.2, 0.9}
	b := []float32{0.1, 0.8, 0.4, 0.2}
	assert.Equal(t, Cosine(a, b), Cosine(b, a))
}

func TestThresholds_TierBoundaries(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		score    float64
		wantTier core.SimilarityTier
		wantOK   bool
	}{
		{1.0, core.TierHigh, true},
		{0.8, core.TierHigh, true}, // Exactly at the boundary is inclusive
		{0.79, core.TierMedium, true},
		{0.6, core.TierMedium, true},
		{0.59, core.TierLow, true},
		{0.4, core.TierLow, true},
		{0.399999, "", false}, // Below low: no edge at all
		{0, "", false},
	}

	for _, tt := range tests {
		tier, ok := th.Tier(tt.score)
		assert.Equal(t, tt.wantOK, ok, "score %v", tt.score)
		assert.Equal(t, tt.wantTier, tier, "score %v", tt.score)
	}
}

func TestThresholds_Validate(t *testing.T) {
	assert.NoError(t, DefaultThresholds().Validate())
	assert.Error(t, Thresholds{High: 0.6, Medium: 0.8, Low: 0.4}.Validate())
	assert.Error(t, Thresholds{High: 0.8, Medium: 0.6, Low: 0}.Validate())
	assert.Error(t, Thresholds{High: 1.2, Medium: 0.6, Low: 0.4}.Validate())
}

func TestExact_Neighbors(t *testing.T) {
	strategy, err := NewExact(WithPoolSize(2), WithBlockSize(1))
	require.NoError(t, err)

	vectors := [][]float32{
		{1, 0, 0},
		{1, 0, 0},       // identical to 0
		{0, 1, 0},       // orthogonal to 0 and 1
		{0.9, 0.1, 0},   // close to 0 and 1
	}

	pairs, err := strategy.Neighbors(context.Background(), vectors, 0.4)
	require.NoError(t, err)

	// No self-pairs, I < J always, ordering deterministic.
	for _, p := range pairs {
		assert.Less(t, p.I, p.J)
	}

	byPair := make(map[[2]int]float64)
	for _, p := range pairs {
		byPair[[2]int{p.I, p.J}] = p.Score
	}
	assert.InDelta(t, 1.0, byPair[[2]int{0, 1}], 1e-6)
	assert.Contains(t, byPair, [2]int{0, 3})
	assert.Contains(t, byPair, [2]int{1, 3})
	// Orthogonal pair filtered by minScore.
	assert.NotContains(t, byPair, [2]int{0, 2})
}

func TestExact_Deterministic(t *testing.T) {
	strategy, err := NewExact(WithPoolSize(4), WithBlockSize(2))
	require.NoError(t, err)

	vectors := make([][]float32, 30)
	for i := range vectors {
		vectors[i] = []float32{float32(i%7) + 1, float32(i%3) + 1, float32(i%5) + 1}
	}

	first, err := strategy.Neighbors(context.Background(), vectors, 0.4)
	require.NoError(t, err)
	second, err := strategy.Neighbors(context.Background(), vectors, 0.4)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestExact_SkipsNilVectors(t *testing.T) {
	strategy, err := NewExact()
	require.NoError(t, err)

	vectors := [][]float32{
		{1, 0},
		nil, // embedding unavailable
		{1, 0},
	}

	pairs, err := strategy.Neighbors(context.Background(), vectors, 0.4)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, 0, pairs[0].I)
	assert.Equal(t, 2, pairs[0].J)
}

func TestExact_CancelledContext(t *testing.T) {
	strategy, err := NewExact()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = strategy.Neighbors(ctx, [][]float32{{1}, {1}}, 0.4)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExact_TooFewVectors(t *testing.T) {
	strategy, err := NewExact()
	require.NoError(t, err)

	pairs, err := strategy.Neighbors(context.Background(), [][]float32{{1, 0}}, 0.4)
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestBuildGraph(t *testing.T) {
	ids := []string{"g0", "g1", "g2"}
	pairs := []Pair{
		{I: 0, J: 1, Score: 0.85},
		{I: 0, J: 2, Score: 0.65},
		{I: 1, J: 2, Score: 0.30}, // below low threshold, dropped
	}

	g := BuildGraph(ids, pairs, DefaultThresholds())

	edges := g.Edges()
	require.Len(t, edges, 2)
	assert.Equal(t, core.TierHigh, edges[0].Tier)
	assert.Equal(t, core.TierMedium, edges[1].Tier)

	g0 := g.EdgesOf("g0")
	require.Len(t, g0, 2)
	assert.Equal(t, "g1", g0[0].Other("g0"))
	assert.Equal(t, "g2", g0[1].Other("g0"))

	assert.Equal(t, []string{"g0"}, g.Neighbors("g1", core.TierHigh))
	assert.Empty(t, g.Neighbors("g1", core.TierMedium))
	assert.Empty(t, g.EdgesOf("missing"))
}

func TestGraph_Nearest(t *testing.T) {
	ids := []string{"g0", "g1", "g2", "g3"}
	pairs := []Pair{
		{I: 0, J: 1, Score: 0.62},
		{I: 0, J: 2, Score: 0.95},
		{I: 0, J: 3, Score: 0.41},
	}

	g := BuildGraph(ids, pairs, DefaultThresholds())

	nearest := g.Nearest("g0", 2)
	require.Len(t, nearest, 2)
	assert.Equal(t, "g2", nearest[0].Other("g0"))
	assert.Equal(t, "g1", nearest[1].Other("g0"))
}
