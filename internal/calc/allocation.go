package calc

import (
	"errors"
	"fmt"
	"math"

	"github.com/alexanderramin/taskup/internal/domain"
)

// AllocationCap is the maximum combined stakeholder percentage of a project.
const AllocationCap = 100.0

// allocationEpsilon absorbs float drift in sums such as 33.3+33.3+33.4.
const allocationEpsilon = 1e-9

var (
	ErrInvalidRange     = errors.New("percentage out of range")
	ErrExceedsAvailable = errors.New("percentage exceeds available allocation")
)

// AllocationError reports a rejected stakeholder percentage together with
// the share that was still available. It unwraps to ErrInvalidRange or
// ErrExceedsAvailable.
type AllocationError struct {
	Kind      error
	Requested float64
	Available float64
}

func (e *AllocationError) Error() string {
	if errors.Is(e.Kind, ErrInvalidRange) {
		return fmt.Sprintf("percentage %g must be greater than 0 and at most %g", e.Requested, AllocationCap)
	}
	return fmt.Sprintf("percentage %g exceeds available allocation of %g%%", e.Requested, e.Available)
}

func (e *AllocationError) Unwrap() error { return e.Kind }

// Allocation summarizes the stakeholder shares of one project.
// Available may be negative when the stored data is already over-allocated.
type Allocation struct {
	Total     float64 `json:"total"`
	Available float64 `json:"available"`
}

// OverAllocated reports whether the stored shares break the cap.
func (a Allocation) OverAllocated() bool {
	return a.Total > AllocationCap+allocationEpsilon
}

// ComputeAllocation sums the given percentages.
func ComputeAllocation(percentages []float64) Allocation {
	var total float64
	for _, p := range percentages {
		total += p
	}
	return Allocation{Total: total, Available: AllocationCap - total}
}

// StakeholderAllocation is ComputeAllocation over a project's stakeholders.
func StakeholderAllocation(stakes []*domain.Stakeholder) Allocation {
	pcts := make([]float64, len(stakes))
	for i, st := range stakes {
		pcts[i] = st.Percentage
	}
	return ComputeAllocation(pcts)
}

// ValidateNewAllocation checks that requested can be added on top of
// existingTotal without exceeding the cap. When editing a stakeholder,
// existingTotal must exclude that stakeholder's current share.
func ValidateNewAllocation(existingTotal, requested float64) (float64, error) {
	available := AllocationCap - existingTotal
	if requested <= 0 || requested > AllocationCap || math.IsNaN(requested) {
		return 0, &AllocationError{Kind: ErrInvalidRange, Requested: requested, Available: available}
	}
	if requested > available+allocationEpsilon {
		return 0, &AllocationError{Kind: ErrExceedsAvailable, Requested: requested, Available: available}
	}
	return requested, nil
}

// ClampToAvailable limits a typed percentage to what is still available,
// never returning less than zero.
func ClampToAvailable(requested, available float64) float64 {
	if available < 0 {
		available = 0
	}
	if requested > available {
		return available
	}
	return requested
}

// CapWithTolerance is the value SQL guards compare sums against.
func CapWithTolerance() float64 {
	return AllocationCap + allocationEpsilon
}
