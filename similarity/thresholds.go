package similarity

import (
	"errors"

	"github.com/poiesic/grantlens/core"
)

// Thresholds bucket a similarity score into relatedness tiers. A score at
// exactly a boundary belongs to the higher tier: boundaries are inclusive.
type Thresholds struct {
	High   float64 `yaml:"high"`
	Medium float64 `yaml:"medium"`
	Low    float64 `yaml:"low"`
}

// DefaultThresholds returns the standard tier boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{High: 0.8, Medium: 0.6, Low: 0.4}
}

// Validate checks the thresholds are strictly ordered within (0,1].
func (t Thresholds) Validate() error {
	if t.Low <= 0 || t.High > 1 {
		return errors.New("similarity thresholds must lie in (0,1]")
	}
	if !(t.Low < t.Medium && t.Medium < t.High) {
		return errors.New("similarity thresholds must satisfy low < medium < high")
	}
	return nil
}

// Tier returns the tier for a score, or false when the score is below the
// low threshold and no edge should be materialized.
func (t Thresholds) Tier(score float64) (core.SimilarityTier, bool) {
	switch {
	case score >= t.High:
		return core.TierHigh, true
	case score >= t.Medium:
		return core.TierMedium, true
	case score >= t.Low:
		return core.TierLow, true
	default:
		return "", false
	}
}
