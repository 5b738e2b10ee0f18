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


// Package storage provides the storage abstraction layer for grantlens.
//
// This package defines the repository interface for the embedding cache,
// decoupling the analysis engine from the storage implementation. The
// cache lets repeated analysis runs over overlapping grant batches skip
// re-embedding unchanged text, which is the slow and costly part of the
// pipeline.
//
// # Constructor Return Type Pattern
//
// Public constructors return interfaces rather than concrete types:
//
//	cache, err := badger.NewEmbeddingRepository(backend)  // storage.EmbeddingRepository
//
// This keeps consumers decoupled from BadgerDB specifics and lets tests
// substitute the in-memory backend without modification.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation and
// timeout support.
package storage
