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


package core

import "errors"

// Error kinds surfaced by the categorization engine. Callers distinguish
// fatal configuration problems (ErrTaxonomyInvalid) from per-record
// degradation (ErrRecordUnclassifiable, ErrEmbeddingUnavailable) with
// errors.Is.
var (
	// ErrTaxonomyInvalid indicates the taxonomy failed load-time validation.
	// This is fatal: the engine refuses to run on an invalid taxonomy.
	ErrTaxonomyInvalid = errors.New("taxonomy invalid")

	// ErrRecordUnclassifiable indicates a record's text could not be
	// normalized (empty or below the minimum abstract length). The record
	// stays in the batch with empty assignments.
	ErrRecordUnclassifiable = errors.New("record unclassifiable")

	// ErrEmbeddingUnavailable indicates the embedding provider failed for a
	// record. Keyword results for the record remain valid.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")

	// ErrInvalidGrantRecord indicates a GrantRecord failed validation.
	ErrInvalidGrantRecord = errors.New("invalid grant record")

	// ErrEmptyGrantID indicates the grant identifier field is empty.
	ErrEmptyGrantID = errors.New("grant id cannot be empty")

	// ErrDuplicateGrantID indicates two records in a batch share an identifier.
	ErrDuplicateGrantID = errors.New("duplicate grant id in batch")

	// ErrNegativeAwardAmount indicates a negative award amount.
	ErrNegativeAwardAmount = errors.New("award amount cannot be negative")
)
