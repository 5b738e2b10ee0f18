package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/grantlens/core"
)

func TestAwardSize_TotalAndExclusive(t *testing.T) {
	tax, err := New(validSpec())
	require.NoError(t, err)

	tests := []struct {
		amount float64
		want   string
	}{
		{0, "Small"},
		{100000, "Small"},
		{250000, "Small"}, // Boundary amount satisfies max_amount inclusively
		{250000.01, "Medium"},
		{999999, "Medium"},
		{1000000, "Medium"}, // Boundary amount satisfies max_amount inclusively
		{1000000.01, "Large"},
		{50000000, "Large"},
	}

	for _, tt := range tests {
		got := tax.AwardSize(tt.amount)
		assert.Equal(t, tt.want, got, "amount %v", tt.amount)
	}
}

func TestAwardSize_ExactlyOneTier(t *testing.T) {
	tax, err := New(validSpec())
	require.NoError(t, err)

	// Every non-negative amount must land in exactly one tier.
	for _, amount := range []float64{0, 1, 249999.99, 250000, 250001, 1000000, 2500000} {
		hits := 0
		for i := range tax.AwardTiers {
			if tax.AwardTiers[i].contains(amount) {
				hits++
			}
		}
		assert.Equal(t, 1, hits, "amount %v hit %d tiers", amount, hits)
	}
}

func TestValidateAwardTiers_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Spec)
	}{
		{
			name:   "inverted bounds",
			mutate: func(s *Spec) { s.AwardSize[1].MinAmount = f(2000000) },
		},
		{
			name:   "gap between tiers",
			mutate: func(s *Spec) { s.AwardSize[1].MinAmount = f(300000) },
		},
		{
			name:   "overlap between tiers",
			mutate: func(s *Spec) { s.AwardSize[1].MinAmount = f(200000) },
		},
		{
			name:   "duplicate tier name",
			mutate: func(s *Spec) { s.AwardSize[1].Name = "Small" },
		},
		{
			name:   "unnamed tier",
			mutate: func(s *Spec) { s.AwardSize[0].Name = "" },
		},
		{
			name:   "first tier not open below",
			mutate: func(s *Spec) { s.AwardSize[0].MinAmount = f(0) },
		},
		{
			name:   "last tier not open above",
			mutate: func(s *Spec) { s.AwardSize[2].MaxAmount = f(9000000) },
		},
		{
			name:   "tier with no bounds",
			mutate: func(s *Spec) { s.AwardSize[0].MaxAmount = nil },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := validSpec()
			tt.mutate(&spec)
			_, err := New(spec)
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrTaxonomyInvalid)
		})
	}
}

func TestAwardSize_NoTiersConfigured(t *testing.T) {
	spec := validSpec()
	spec.AwardSize = nil

	tax, err := New(spec)
	require.NoError(t, err)
	assert.Equal(t, "", tax.AwardSize(500000))
}
