package rebalance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carmenstack/spatialmatch/internal/phrasematch"
	"github.com/carmenstack/spatialmatch/internal/stack"
)

func TestRebalanceIsDeterministicAndClamped(t *testing.T) {
	in := &stack.Stack[*phrasematch.Phrasematch]{
		Elements: []*phrasematch.Phrasematch{
			{Idx: 0, Mask: 0b01, Weight: 0.6, EditMultiplier: 1},
			{Idx: 1, Mask: 0b10, Weight: 0.6, EditMultiplier: 1},
		},
		AdjRelev: 0.95,
	}

	out1 := Rebalance(2, in)
	out2 := Rebalance(2, in)

	assert.Equal(t, out1.Relev, out2.Relev, "rebalance must be deterministic")
	assert.LessOrEqual(t, out1.Relev, 1.0)
	assert.Equal(t, in.AdjRelev, out1.AdjRelev)

	// The original stack's elements must not be mutated.
	assert.Equal(t, 0.6, in.Elements[0].Weight)
}

func TestRebalanceSumsWeightsToRelev(t *testing.T) {
	in := &stack.Stack[*phrasematch.Phrasematch]{
		Elements: []*phrasematch.Phrasematch{
			{Idx: 0, Mask: 0b01, Weight: 0.3, EditMultiplier: 1},
			{Idx: 1, Mask: 0b10, Weight: 0.3, EditMultiplier: 1},
		},
	}

	out := Rebalance(2, in)
	sum := 0.0
	for _, e := range out.Elements {
		sum += e.Weight
	}
	assert.InDelta(t, out.Relev, Round8(sum), 1e-12)
}

func TestRound8HalfAwayFromZero(t *testing.T) {
	assert.InDelta(t, 0.12345679, Round8(0.123456785), 1e-9)
	assert.Equal(t, -0.5, Round8(-0.5))
}
