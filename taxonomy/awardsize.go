package taxonomy

import (
	"fmt"

	"github.com/poiesic/grantlens/core"
)

// AwardTier is one award-size bucket. Exactly one of three shapes is
// valid: only MaxAmount (open below), both bounds, or only MinAmount
// (open above). A tier covers (MinAmount, MaxAmount]: amounts equal to
// MaxAmount belong to the tier, amounts equal to MinAmount do not.
type AwardTier struct {
	Name      string   `yaml:"name"`
	MinAmount *float64 `yaml:"min_amount,omitempty"`
	MaxAmount *float64 `yaml:"max_amount,omitempty"`
}

// contains reports whether amount falls inside the tier's interval.
func (t *AwardTier) contains(amount float64) bool {
	if t.MinAmount != nil && amount <= *t.MinAmount {
		return false
	}
	if t.MaxAmount != nil && amount > *t.MaxAmount {
		return false
	}
	return true
}

// validateAwardTiers checks that tiers partition [0, +inf) without gaps
// or overlaps. An empty tier list is allowed and disables award-size
// classification.
func validateAwardTiers(tiers []AwardTier) error {
	if len(tiers) == 0 {
		return nil
	}

	names := make(map[string]struct{}, len(tiers))
	for i, tier := range tiers {
		if tier.Name == "" {
			return fmt.Errorf("%w: award tier %d has no name", core.ErrTaxonomyInvalid, i)
		}
		if _, ok := names[tier.Name]; ok {
			return fmt.Errorf("%w: duplicate award tier %q", core.ErrTaxonomyInvalid, tier.Name)
		}
		names[tier.Name] = struct{}{}

		if tier.MinAmount == nil && tier.MaxAmount == nil {
			return fmt.Errorf("%w: award tier %q has no bounds", core.ErrTaxonomyInvalid, tier.Name)
		}
		if tier.MinAmount != nil && tier.MaxAmount != nil && *tier.MinAmount >= *tier.MaxAmount {
			return fmt.Errorf("%w: award tier %q has min_amount >= max_amount", core.ErrTaxonomyInvalid, tier.Name)
		}
	}

	// The first tier must be open below, the last open above, and each
	// boundary must be shared exactly so the tiers are gapless and
	// non-overlapping.
	first, last := tiers[0], tiers[len(tiers)-1]
	if first.MinAmount != nil {
		return fmt.Errorf("%w: first award tier %q must have only max_amount", core.ErrTaxonomyInvalid, first.Name)
	}
	if last.MaxAmount != nil {
		return fmt.Errorf("%w: last award tier %q must have only min_amount", core.ErrTaxonomyInvalid, last.Name)
	}
	for i := 1; i < len(tiers); i++ {
		prev, cur := tiers[i-1], tiers[i]
		if cur.MinAmount == nil {
			return fmt.Errorf("%w: award tier %q must have min_amount", core.ErrTaxonomyInvalid, cur.Name)
		}
		if prev.MaxAmount == nil {
			return fmt.Errorf("%w: award tier %q must have max_amount", core.ErrTaxonomyInvalid, prev.Name)
		}
		if *cur.MinAmount != *prev.MaxAmount {
			return fmt.Errorf("%w: gap or overlap between award tiers %q and %q", core.ErrTaxonomyInvalid, prev.Name, cur.Name)
		}
	}

	return nil
}

// AwardSize places a non-negative amount into exactly one tier and
// returns its name. Returns "" when no tiers are configured.
func (t *Taxonomy) AwardSize(amount float64) string {
	for i := range t.AwardTiers {
		if t.AwardTiers[i].contains(amount) {
			return t.AwardTiers[i].Name
		}
	}
	return ""
}
