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


package classify

import (
	"errors"
	"math"
)

// Weights parameterizes the default confidence formula. The constants are
// a calibration surface, not ground truth: they live in configuration so
// they can be tuned against labeled data without code changes.
type Weights struct {
	// Category is awarded once for any category-level hit, whether it came
	// from a bare keyword or a subtype keyword.
	Category float64 `yaml:"category"`

	// Subtype scales with distinct matched subtypes, saturating at two:
	// one subtype earns half the weight, two or more earn it fully.
	Subtype float64 `yaml:"subtype"`

	// ExtraSubtypeBonus is awarded when more than two distinct subtypes
	// matched.
	ExtraSubtypeBonus float64 `yaml:"extra_subtype_bonus"`
}

// DefaultWeights returns the standard confidence weights.
func DefaultWeights() Weights {
	return Weights{Category: 0.3, Subtype: 0.5, ExtraSubtypeBonus: 0.2}
}

// Validate checks the weights are usable.
func (w Weights) Validate() error {
	if w.Category < 0 || w.Subtype < 0 || w.ExtraSubtypeBonus < 0 {
		return errors.New("confidence weights cannot be negative")
	}
	return nil
}

// Scorer turns per-category match counts into a confidence in [0,1].
// Implementations must be deterministic.
type Scorer interface {
	// Score computes confidence for one (grant, category) pair.
	// bareHits is the count of bare-category keyword hits; subtypeCount is
	// the number of distinct subtypes with at least one keyword hit.
	Score(bareHits, subtypeCount int) float64
}

// WeightedScorer is the default Scorer:
//
//	confidence = min(1, Wc*sign(hit) + Ws*min(s,2)/2 + Wb*[s > 2])
//
// where hit is any category-level hit (bare or via subtype). A single
// bare keyword hit therefore caps at Wc, while multiple independent
// subtype hits push confidence toward 1.
type WeightedScorer struct {
	weights Weights
}

// NewWeightedScorer creates the default scorer with the given weights.
func NewWeightedScorer(weights Weights) (*WeightedScorer, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return &WeightedScorer{weights: weights}, nil
}

// Score implements Scorer.
func (s *WeightedScorer) Score(bareHits, subtypeCount int) float64 {
	if bareHits <= 0 && subtypeCount <= 0 {
		return 0
	}

	confidence := s.weights.Category
	confidence += s.weights.Subtype * math.Min(float64(subtypeCount), 2) / 2
	if subtypeCount > 2 {
		confidence += s.weights.ExtraSubtypeBonus
	}
	return math.Min(1.0, confidence)
}
