// Package ai defines the embedding provider boundary for the
// categorization engine.
//
// The engine consumes embeddings through the Embedder interface and never
// depends on a concrete model. Production deployments use the
// OpenAI-compatible implementation in ai/openai; tests use the
// deterministic stub in ai/mock.
package ai
