package calc

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/taskup/internal/domain"
)

func TestComputeAllocation_Empty(t *testing.T) {
	a := ComputeAllocation(nil)
	assert.Equal(t, Allocation{Total: 0, Available: 100}, a)
	assert.False(t, a.OverAllocated())
}

func TestComputeAllocation_Sums(t *testing.T) {
	a := ComputeAllocation([]float64{30, 45})
	assert.InDelta(t, 75, a.Total, 1e-9)
	assert.InDelta(t, 25, a.Available, 1e-9)
}

func TestStakeholderAllocation(t *testing.T) {
	assert.Equal(t, Allocation{Total: 0, Available: 100}, StakeholderAllocation(nil))

	stakes := []*domain.Stakeholder{{Percentage: 30}, {Percentage: 45}}
	assert.Equal(t, Allocation{Total: 75, Available: 25}, StakeholderAllocation(stakes))
}

func TestComputeAllocation_OverAllocatedGoesNegative(t *testing.T) {
	a := ComputeAllocation([]float64{70, 50})
	assert.InDelta(t, -20, a.Available, 1e-9)
	assert.True(t, a.OverAllocated())
}

func TestValidateNewAllocation_ExceedsAvailable(t *testing.T) {
	_, err := ValidateNewAllocation(75, 30)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExceedsAvailable)

	var allocErr *AllocationError
	require.True(t, errors.As(err, &allocErr))
	assert.InDelta(t, 25, allocErr.Available, 1e-9)
	assert.Contains(t, err.Error(), "25")
}

func TestValidateNewAllocation_FillsToCap(t *testing.T) {
	got, err := ValidateNewAllocation(75, 25)
	require.NoError(t, err)
	assert.Equal(t, 25.0, got)
	assert.InDelta(t, 100, ComputeAllocation([]float64{75, got}).Total, 1e-9)
}

func TestValidateNewAllocation_InvalidRange(t *testing.T) {
	cases := map[string]float64{
		"zero":     0,
		"negative": -5,
		"over cap": 101,
		"nan":      math.NaN(),
	}
	for name, pct := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ValidateNewAllocation(0, pct)
			assert.ErrorIs(t, err, ErrInvalidRange)
		})
	}
}

func TestValidateNewAllocation_ToleratesFloatDrift(t *testing.T) {
	existing := ComputeAllocation([]float64{33.3, 33.3}).Total
	_, err := ValidateNewAllocation(existing, 33.4)
	assert.NoError(t, err)
}

func TestValidateNewAllocation_EditExcludesSelf(t *testing.T) {
	// Stakeholders 40 and 60; editing the 40 to 40 again must pass when the
	// caller excludes the edited row from the existing total.
	_, err := ValidateNewAllocation(60, 40)
	assert.NoError(t, err)
	_, err = ValidateNewAllocation(100, 40)
	assert.ErrorIs(t, err, ErrExceedsAvailable)
}

func TestClampToAvailable(t *testing.T) {
	assert.Equal(t, 25.0, ClampToAvailable(30, 25))
	assert.Equal(t, 10.0, ClampToAvailable(10, 25))
	assert.Equal(t, 0.0, ClampToAvailable(10, -5))
}

// TestValidateNewAllocation_Invariant_AcceptedNeverExceedsCap property-tests
// that any sequence of accepted requests keeps the total at or below the cap.
func TestValidateNewAllocation_Invariant_AcceptedNeverExceedsCap(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 200; trial++ {
		var accepted []float64
		for i := 0; i < 20; i++ {
			req := math.Round(rng.Float64()*6000) / 100 // 0.00–60.00
			total := ComputeAllocation(accepted).Total
			if got, err := ValidateNewAllocation(total, req); err == nil {
				accepted = append(accepted, got)
			}
		}
		assert.LessOrEqual(t, ComputeAllocation(accepted).Total, CapWithTolerance(), "trial %d", trial)
	}
}
