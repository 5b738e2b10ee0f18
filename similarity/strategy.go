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


package similarity

import "context"

// Pair is a scored pair of batch indexes with I < J. Self-pairs are never
// produced.
type Pair struct {
	I     int
	J     int
	Score float64
}

// Strategy enumerates vector pairs scoring at or above minScore. The
// exact strategy compares every pair; callers with larger batches can
// swap in an approximate nearest-neighbor index without changing the
// engine contract, as long as the implementation stays deterministic for
// a fixed input (and a fixed seed, where applicable).
//
// Entries of vectors may be nil (embedding unavailable for that record);
// implementations must skip them.
type Strategy interface {
	Neighbors(ctx context.Context, vectors [][]float32, minScore float64) ([]Pair, error)
}
