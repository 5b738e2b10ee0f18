package engine

import (
	"github.com/poiesic/grantlens/core"
	"github.com/poiesic/grantlens/similarity"
)

// reconcile layers the similarity evidence onto the keyword results.
// Agreement holds when a record's keyword categories intersect the
// keyword categories of its high-tier semantic neighbors. Similarity
// never assigns a category by itself: embeddings carry no category
// label, so neighbor categories come strictly from the neighbors' own
// keyword assignments.
func reconcile(results []core.HybridResult, graph *similarity.Graph) {
	matched := make(map[string]map[string]struct{}, len(results))
	for i := range results {
		set := make(map[string]struct{})
		for _, name := range results[i].MatchedCategories() {
			set[name] = struct{}{}
		}
		matched[results[i].GrantID] = set
	}

	for i := range results {
		result := &results[i]
		result.Edges = graph.EdgesOf(result.GrantID)

		own := matched[result.GrantID]
		if len(own) == 0 {
			continue
		}

	neighbors:
		for _, neighbor := range graph.Neighbors(result.GrantID, core.TierHigh) {
			for category := range matched[neighbor] {
				if _, ok := own[category]; ok {
					result.Agreement = true
					break neighbors
				}
			}
		}
	}
}
