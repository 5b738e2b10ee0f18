package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity
// analysis. Implementations must be thread-safe for concurrent use. The
// engine treats embedding as a pure, potentially expensive function and
// never retries: a per-record failure degrades that record to
// "similarity unavailable" rather than aborting the batch.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a
	// batch. The returned slice contains embeddings in the same order as
	// the input texts. Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)

	// Model returns the identifier of the underlying embedding model.
	// It is part of the cache key, so two embedders with different models
	// never share cached vectors.
	Model() string
}
