package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for stored entities.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// GrantRecord represents a single research grant as produced by the
// data-fetch layer. Records are read-only inside the engine; metadata
// fields pass through untouched.
type GrantRecord struct {
	ID          string // Unique within a batch (e.g. NIH application id)
	Title       string
	Abstract    string
	AwardAmount float64
	FiscalYear  int
	Metadata    map[string]string // Passed through unmodified
}

// Text returns the combined title and abstract used for classification.
func (g *GrantRecord) Text() string {
	if g.Abstract == "" {
		return g.Title
	}
	return g.Title + " " + g.Abstract
}

// KeywordMatch is a single keyword hit for a grant.
// Subtype is empty for bare-category keyword hits.
type KeywordMatch struct {
	GrantID  string
	Category string
	Subtype  string
	Keyword  string
}

// CategoryAssignment aggregates keyword matches per (grant, category).
type CategoryAssignment struct {
	Category   string
	Matched    bool
	Subtypes   []string // Distinct matched subtypes, in taxonomy order
	Confidence float64  // In [0,1], deterministic function of match counts
}

// SimilarityTier buckets a continuous similarity score.
type SimilarityTier string

const (
	// TierHigh marks pairs with similarity >= the high threshold.
	TierHigh SimilarityTier = "high"
	// TierMedium marks pairs in [medium, high).
	TierMedium SimilarityTier = "medium"
	// TierLow marks pairs in [low, medium).
	TierLow SimilarityTier = "low"
)

// SimilarityEdge is an unordered grant pair with its cosine similarity.
// Pairs below the low threshold are never materialized. A precedes B in
// batch input order.
type SimilarityEdge struct {
	A     string
	B     string
	Score float64
	Tier  SimilarityTier
}

// Other returns the edge endpoint that is not the given grant.
func (e *SimilarityEdge) Other(grantID string) string {
	if e.A == grantID {
		return e.B
	}
	return e.A
}

// HybridResult is the terminal per-grant artifact combining the keyword
// and similarity pipelines.
type HybridResult struct {
	GrantID     string
	Assignments []CategoryAssignment // One per taxonomy category, taxonomy order
	AwardSize   string               // Award-size tier name, empty if no tiers configured
	Edges       []SimilarityEdge     // Incident edges, ordered by the other endpoint's batch position

	// Agreement is true when the keyword-assigned categories overlap with
	// the keyword-assigned categories of high-tier semantic neighbors.
	Agreement bool

	// Unclassifiable is set when the record's text failed normalization
	// (too short or empty). The record keeps its batch position.
	Unclassifiable bool

	// EmbeddingUnavailable is set when the embedding provider failed for
	// this record; keyword results remain valid.
	EmbeddingUnavailable bool
}

// MatchedCategories returns the names of categories with Matched set,
// in assignment order.
func (r *HybridResult) MatchedCategories() []string {
	var names []string
	for _, a := range r.Assignments {
		if a.Matched {
			names = append(names, a.Category)
		}
	}
	return names
}

// EmbeddingRecord is a cached embedding vector. Key is a content hash of
// the model name and the embedded text, so changing the model invalidates
// cached entries naturally.
type EmbeddingRecord struct {
	Key        ID
	Model      string
	Vector     []float32
	InsertedAt time.Time
}

// EmbeddingKey computes the cache key for a (model, text) pair.
func EmbeddingKey(model, text string) ID {
	return IDFromContent("(" + model + ")" + text)
}
