// Package mock provides a test double implementation of ai.Embedder.
//
// The mock allows tests to run without an external embedding service and
// enables controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	embedder := mock.NewMockEmbedder()
//	vector, err := embedder.EmbedText(ctx, "test")
//
//	// Pin vectors for specific texts to control similarity geometry
//	embedder.Vectors = map[string][]float32{
//	    "first abstract":  {1, 0, 0},
//	    "second abstract": {0.9, 0.1, 0},
//	}
//
//	// Custom behavior injection
//	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//	    return nil, errors.New("service down")
//	}
//
// # Default Behavior
//
// Texts without a pinned vector get a deterministic vector derived from an
// FNV hash of the text, so identical text always embeds identically.
package mock
