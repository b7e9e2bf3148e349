package stack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carmenstack/spatialmatch/internal/archetype"
	"github.com/carmenstack/spatialmatch/internal/mask"
	"github.com/carmenstack/spatialmatch/internal/phrasematch"
)

func arch(idx int, m mask.Bits, bmask mask.Bits, weight, editMult float64, zoom int) *archetype.Archetype {
	return &archetype.Archetype{
		Idx:            idx,
		Mask:           m,
		BMask:          bmask,
		Weight:         weight,
		EditMultiplier: editMult,
		Zoom:           zoom,
		Exemplars:      []*phrasematch.Phrasematch{{Idx: idx, Mask: m, Weight: weight, EditMultiplier: editMult, Zoom: zoom}},
	}
}

func level(idx int, nmask, bmask mask.Bits, candidates ...*archetype.Archetype) Level[*archetype.Archetype] {
	return Level[*archetype.Archetype]{Idx: idx, NMask: nmask, BMask: bmask, Candidates: candidates}
}

// Scenario 1: single index, single phrasematch.
func TestStackableSingleIndexSingleMatch(t *testing.T) {
	levels := []Level[*archetype.Archetype]{
		level(0, 0b1, 0, arch(0, 0b1, 0, 1, 1, 6)),
	}
	stacks := Stackable(levels, StackableOptions{Limit: 10})
	require.Len(t, stacks, 1)
	assert.Len(t, stacks[0].Elements, 1)
	assert.InDelta(t, 1.0, stacks[0].Relev, 1e-9)
	assert.InDelta(t, 1.0, stacks[0].AdjRelev, 1e-9)
}

// Scenario 2: mask conflict prevents stacking.
func TestStackableMaskConflict(t *testing.T) {
	levels := []Level[*archetype.Archetype]{
		level(0, 0b01, 0, arch(0, 0b11, 0, 0.6, 1, 6)),
		level(1, 0b10, 0, arch(1, 0b11, 0, 0.6, 1, 6)),
	}
	stacks := Stackable(levels, StackableOptions{Limit: 10})
	for _, s := range stacks {
		assert.Len(t, s.Elements, 1, "conflicting masks must not stack")
	}
}

// Scenario 3: bmask exclusion rejects any stack containing both indexes.
func TestStackableBMaskExclusion(t *testing.T) {
	levels := []Level[*archetype.Archetype]{
		level(0, 0b01, mask.Bit(1), arch(0, 0b01, mask.Bit(1), 0.6, 1, 6)),
		level(1, 0b10, 0, arch(1, 0b10, 0, 0.6, 1, 6)),
	}
	stacks := Stackable(levels, StackableOptions{Limit: 10})
	for _, s := range stacks {
		hasBoth := false
		seen := map[int]bool{}
		for _, e := range s.Elements {
			seen[e.GetIdx()] = true
		}
		if seen[0] && seen[1] {
			hasBoth = true
		}
		assert.False(t, hasBoth, "index 0 and 1 must never co-occur")
	}
}

func TestLengthPenaltyMonotonic(t *testing.T) {
	penalty := func(n int) float64 { return 0.9 + 0.1/float64(n) }
	assert.Greater(t, penalty(1), penalty(2))
	assert.Greater(t, penalty(2), penalty(3))
}

func TestAllowedIdentityWithNoFilter(t *testing.T) {
	s1 := &Stack[*archetype.Archetype]{Elements: []*archetype.Archetype{arch(0, 1, 0, 1, 1, 1)}}
	in := []*Stack[*archetype.Archetype]{s1}
	out := Allowed(in, nil)
	assert.Equal(t, in, out)
}

func TestAllowedFiltersByMaxIdx(t *testing.T) {
	s0 := &Stack[*archetype.Archetype]{Elements: []*archetype.Archetype{arch(0, 1, 0, 1, 1, 1)}}
	s1 := &Stack[*archetype.Archetype]{Elements: []*archetype.Archetype{arch(1, 1, 0, 1, 1, 1)}}
	out := Allowed([]*Stack[*archetype.Archetype]{s0, s1}, map[int]bool{1: true})
	require.Len(t, out, 1)
	assert.Equal(t, 1, out[0].MaxIdx())
}

func TestSortByRelevLengthIdxOrdersByAdjRelevDesc(t *testing.T) {
	high := &Stack[*archetype.Archetype]{AdjRelev: 0.9}
	low := &Stack[*archetype.Archetype]{AdjRelev: 0.5}
	stacks := []*Stack[*archetype.Archetype]{low, high}
	SortByRelevLengthIdx(stacks)
	assert.Equal(t, high, stacks[0])
}

func TestSortByZoomIdx(t *testing.T) {
	elems := []*archetype.Archetype{
		arch(1, 0b10, 0, 1, 1, 5),
		arch(0, 0b01, 0, 1, 1, 3),
	}
	SortByZoomIdx(elems)
	assert.Equal(t, 3, elems[0].Zoom)
	assert.Equal(t, 5, elems[1].Zoom)
}

func TestExpandCartesianProduct(t *testing.T) {
	a1 := &archetype.Archetype{Idx: 0, Exemplars: []*phrasematch.Phrasematch{{Idx: 0}, {Idx: 0}}}
	a2 := &archetype.Archetype{Idx: 1, Exemplars: []*phrasematch.Phrasematch{{Idx: 1}, {Idx: 1}, {Idx: 1}}}
	in := &Stack[*archetype.Archetype]{Elements: []*archetype.Archetype{a1, a2}, Relev: 0.9, AdjRelev: 0.8}

	out := Expand(in, 100)
	require.Len(t, out, 6)
	for _, s := range out {
		assert.InDelta(t, 0.9, s.Relev, 1e-9)
		assert.InDelta(t, 0.8, s.AdjRelev, 1e-9)
	}
}

func TestExpandRespectsBudget(t *testing.T) {
	a1 := &archetype.Archetype{Idx: 0, Exemplars: []*phrasematch.Phrasematch{{Idx: 0}, {Idx: 0}}}
	a2 := &archetype.Archetype{Idx: 1, Exemplars: []*phrasematch.Phrasematch{{Idx: 1}, {Idx: 1}, {Idx: 1}}}
	in := &Stack[*archetype.Archetype]{Elements: []*archetype.Archetype{a1, a2}}

	out := Expand(in, 2)
	assert.Len(t, out, 2)
}
