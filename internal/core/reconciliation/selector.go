package reconciliation

import (
	"fmt"

	"github.com/sunilgaur959-bit/gst-reconciliation-tool/internal/domain"
)

// Strategy names accepted by SelectorByName.
const (
	StrategyFirst   = "first"
	StrategyClosest = "closest"
)

// CandidateSelector picks one record among GSTR_2B candidates that are already within
// tolerance of target. It returns the index into candidates, or -1 to pick none.
type CandidateSelector interface {
	Name() string
	Select(target domain.Amounts, candidates []*domain.Record) int
}

// FirstSelector takes the first candidate in ledger order.
type FirstSelector struct{}

func (FirstSelector) Name() string { return StrategyFirst }

func (FirstSelector) Select(_ domain.Amounts, candidates []*domain.Record) int {
	if len(candidates) == 0 {
		return -1
	}
	return 0
}

// ClosestSelector takes the candidate with the smallest summed absolute difference.
// Ties go to the earlier candidate.
type ClosestSelector struct{}

func (ClosestSelector) Name() string { return StrategyClosest }

func (ClosestSelector) Select(target domain.Amounts, candidates []*domain.Record) int {
	best := -1
	for i, c := range candidates {
		if best < 0 || c.Amounts.Distance(target).LessThan(candidates[best].Amounts.Distance(target)) {
			best = i
		}
	}
	return best
}

// SelectorByName resolves a configured strategy name. Empty means first.
func SelectorByName(name string) (CandidateSelector, error) {
	switch name {
	case "", StrategyFirst:
		return FirstSelector{}, nil
	case StrategyClosest:
		return ClosestSelector{}, nil
	default:
		return nil, fmt.Errorf("unknown match strategy %q", name)
	}
}
