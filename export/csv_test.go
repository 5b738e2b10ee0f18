package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/grantlens/core"
)

func sampleResults() []core.HybridResult {
	return []core.HybridResult{
		{
			GrantID:   "g1",
			AwardSize: "Small",
			Assignments: []core.CategoryAssignment{
				{Category: "Cancer", Matched: true, Subtypes: []string{"Blood_Cancers"}, Confidence: 0.8},
				{Category: "Genetics", Matched: false},
			},
			Edges: []core.SimilarityEdge{
				{A: "g1", B: "g2", Score: 0.91, Tier: core.TierHigh},
			},
			Agreement: true,
		},
		{
			GrantID:   "g2",
			AwardSize: "Large",
			Assignments: []core.CategoryAssignment{
				{Category: "Cancer", Matched: true, Confidence: 0.3},
				{Category: "Genetics", Matched: false},
			},
			Edges: []core.SimilarityEdge{
				{A: "g1", B: "g2", Score: 0.91, Tier: core.TierHigh},
			},
			Agreement: true,
		},
		{
			GrantID:        "g3",
			AwardSize:      "Small",
			Unclassifiable: true,
		},
	}
}

func parseCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteResults(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResults(&buf, sampleResults()))

	rows := parseCSV(t, buf.Bytes())
	require.Len(t, rows, 4)

	assert.Equal(t, "grant_id", rows[0][0])

	g1 := rows[1]
	assert.Equal(t, "g1", g1[0])
	assert.Equal(t, "Small", g1[1])
	assert.Equal(t, "Cancer", g1[2])
	assert.Equal(t, "Cancer/Blood_Cancers", g1[3])
	assert.Equal(t, "0.8000", g1[4])
	assert.Equal(t, "true", g1[5])
	assert.Equal(t, "1", g1[6])

	g3 := rows[3]
	assert.Equal(t, "g3", g3[0])
	assert.Empty(t, g3[2])
	assert.Equal(t, "true", g3[7])
}

func TestWriteEdges(t *testing.T) {
	var buf bytes.Buffer
	edges := []core.SimilarityEdge{
		{A: "g1", B: "g2", Score: 0.91, Tier: core.TierHigh},
		{A: "g2", B: "g3", Score: 0.45, Tier: core.TierLow},
	}
	require.NoError(t, WriteEdges(&buf, edges))

	rows := parseCSV(t, buf.Bytes())
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"g1", "g2", "0.9100", "high"}, rows[1])
	assert.Equal(t, []string{"g2", "g3", "0.4500", "low"}, rows[2])
}

func TestWriteCategorySummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCategorySummary(&buf, sampleResults()))

	rows := parseCSV(t, buf.Bytes())
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"category", "grants_matched", "mean_confidence"}, rows[0])
	assert.Equal(t, []string{"Cancer", "2", "0.5500"}, rows[1])
}
