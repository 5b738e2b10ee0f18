package similarity

import (
	"sort"

	"github.com/poiesic/grantlens/core"
)

// Graph is the sparse relatedness graph over a batch. Edges are stored
// once per unordered pair, with A preceding B in batch input order; only
// pairs at or above the low threshold exist at all.
type Graph struct {
	edges    []core.SimilarityEdge
	incident map[string][]int
}

// BuildGraph materializes tiered edges from scored index pairs. ids maps
// batch positions to grant identifiers. Pairs below the low threshold are
// dropped; self-pairs never occur by Strategy contract.
func BuildGraph(ids []string, pairs []Pair, thresholds Thresholds) *Graph {
	g := &Graph{
		incident: make(map[string][]int),
	}
	for _, p := range pairs {
		tier, ok := thresholds.Tier(p.Score)
		if !ok {
			continue
		}
		edge := core.SimilarityEdge{
			A:     ids[p.I],
			B:     ids[p.J],
			Score: p.Score,
			Tier:  tier,
		}
		idx := len(g.edges)
		g.edges = append(g.edges, edge)
		g.incident[edge.A] = append(g.incident[edge.A], idx)
		g.incident[edge.B] = append(g.incident[edge.B], idx)
	}
	return g
}

// Edges returns every retained edge in deterministic batch order.
func (g *Graph) Edges() []core.SimilarityEdge {
	return g.edges
}

// EdgesOf returns the edges incident to a grant, ordered by the other
// endpoint's batch position.
func (g *Graph) EdgesOf(grantID string) []core.SimilarityEdge {
	idxs := g.incident[grantID]
	if len(idxs) == 0 {
		return nil
	}
	out := make([]core.SimilarityEdge, len(idxs))
	for i, idx := range idxs {
		out[i] = g.edges[idx]
	}
	return out
}

// Neighbors returns the grants connected to grantID at exactly the given
// tier, in batch order.
func (g *Graph) Neighbors(grantID string, tier core.SimilarityTier) []string {
	var out []string
	for _, idx := range g.incident[grantID] {
		edge := g.edges[idx]
		if edge.Tier == tier {
			out = append(out, edge.Other(grantID))
		}
	}
	return out
}

// Nearest returns up to k neighbors of grantID ranked by similarity
// score descending. Ties resolve by incidence order, keeping the result
// deterministic.
func (g *Graph) Nearest(grantID string, k int) []core.SimilarityEdge {
	edges := g.EdgesOf(grantID)
	sort.SliceStable(edges, func(i, j int) bool {
		return edges[i].Score > edges[j].Score
	})
	if k >= 0 && len(edges) > k {
		edges = edges[:k]
	}
	return edges
}
