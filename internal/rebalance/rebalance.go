// Package rebalance implements component E: recomputing per-element
// weights and stack relevance so that longer stacks are neither unfairly
// advantaged nor disadvantaged relative to shorter ones.
package rebalance

import (
	"math"

	"github.com/carmenstack/spatialmatch/internal/mask"
	"github.com/carmenstack/spatialmatch/internal/phrasematch"
	"github.com/carmenstack/spatialmatch/internal/stack"
)

// scale is the precision used by round8: half-away-from-zero rounding to
// 8 decimal places, applied at the edges of Rebalance (spec.md §4.E, §9).
const scale = 1e8

// Round8 rounds x half-away-from-zero to 8 decimal places.
func Round8(x float64) float64 {
	return math.Round(x*scale) / scale
}

// Rebalance clones the stack and recomputes each element's weight and the
// stack's relev from scratch. The input stack is never mutated.
func Rebalance(queryLen int, in *stack.Stack[*phrasematch.Phrasematch]) *stack.Stack[*phrasematch.Phrasematch] {
	n := len(in.Elements)

	var stackMask mask.Bits
	for _, e := range in.Elements {
		stackMask = mask.Union(stackMask, e.Mask)
	}

	garbage := 0
	if mask.PopCount(stackMask) != queryLen {
		garbage = 1
	}

	totalLengthBonus := 0.01 * float64(garbage+n)
	weightPerMatch := 1.0/float64(garbage+n) - 0.01

	elems := make([]*phrasematch.Phrasematch, n)
	sum := 0.0
	for i, e := range in.Elements {
		clone := *e
		w := Round8((weightPerMatch + totalLengthBonus*e.Weight) * e.EditMultiplier)
		clone.Weight = w
		elems[i] = &clone
		sum += w
	}

	relev := Round8(sum)
	if relev > 1 {
		relev = 1
	}

	return &stack.Stack[*phrasematch.Phrasematch]{
		Elements: elems,
		Relev:    relev,
		AdjRelev: in.AdjRelev,
	}
}
