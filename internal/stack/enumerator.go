package stack

import "github.com/carmenstack/spatialmatch/internal/mask"

// DefaultStackableLimit bounds the enumerator's stacks/maxStacks buffers
// when the caller does not supply stackable_limit (spec.md §6).
const DefaultStackableLimit = 100

// acceptanceThreshold is the minimum relev a branch must reach before it
// is admitted into the result set (§4.C).
const acceptanceThreshold = 0.5

// StackableOptions configures the pruned enumeration.
type StackableOptions struct {
	// Limit caps the size of both the stacks and maxStacks buffers.
	Limit int
}

type memoState[T Element] struct {
	stacks    []*Stack[T]
	maxStacks []*Stack[T]
	maxRelev  float64
	limit     int
}

// Stackable performs the pruned recursive search over levels described in
// spec.md §4.C, returning every admitted stack with the top-frame length
// penalty already applied to AdjRelev.
func Stackable[T Element](levels []Level[T], opts StackableOptions) []*Stack[T] {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultStackableLimit
	}

	memo := &memoState[T]{limit: limit}
	recurseLevel(levels, 0, 0, 0, &Stack[T]{}, memo)

	all := make([]*Stack[T], 0, len(memo.stacks)+len(memo.maxStacks))
	all = append(all, memo.stacks...)
	all = append(all, memo.maxStacks...)

	for _, s := range all {
		n := len(s.Elements)
		if n < 1 {
			n = 1
		}
		lengthPenalty := 0.9 + 0.1/float64(n)
		s.AdjRelev *= lengthPenalty
	}
	return all
}

// recurseLevel implements one frame of the enumerator: skip this level
// first (always), then attempt to include one of its candidates.
func recurseLevel[T Element](levels []Level[T], idx int, m, nm mask.Bits, cur *Stack[T], memo *memoState[T]) {
	if idx >= len(levels) {
		return
	}
	level := levels[idx]

	// Always recurse skipping this level before considering inclusion.
	recurseLevel(levels, idx+1, m, nm, cur, memo)

	// Gate 1: token-collision with the subquery already represented.
	if mask.Intersects(nm, level.NMask) {
		return
	}
	// Gate 2: bmask exclusion against every already-stacked element, in
	// both directions: this level's bmask against the stacked idx, and the
	// stacked element's level bmask against this level's idx.
	for _, s := range cur.Elements {
		if mask.Has(level.BMask, s.GetIdx()) {
			return
		}
		for _, prev := range levels[:idx] {
			if prev.Idx == s.GetIdx() && mask.Has(prev.BMask, level.Idx) {
				return
			}
		}
	}

	nextNMask := mask.Union(nm, level.NMask)

	for _, next := range level.Candidates {
		if mask.Intersects(m, next.GetMask()) {
			continue
		}

		// Direction gate: once a stack has a head, a candidate whose idx is
		// not above the head's idx and whose mask is larger than the
		// current accumulated mask is not considered (prevents degenerate
		// orderings).
		if len(cur.Elements) > 0 {
			head := cur.Elements[0]
			if head.GetIdx() >= next.GetIdx() && m != 0 && m < next.GetMask() {
				continue
			}
		}

		target := cur.Clone()
		if next.GetMask() < m {
			target.Elements = append([]T{next}, target.Elements...)
		} else {
			target.Elements = append(target.Elements, next)
		}
		target.Relev += next.GetWeight()
		target.AdjRelev += next.GetWeight() * next.GetEditMultiplier()

		if target.Relev > acceptanceThreshold {
			admit(memo, target)
		}

		recurseLevel(levels, idx+1, mask.Union(m, next.GetMask()), nextNMask, target, memo)
	}
}

// admit applies the three-way admission rule from §4.C.
func admit[T Element](memo *memoState[T], target *Stack[T]) {
	switch {
	case target.Relev > memo.maxRelev:
		if len(memo.maxStacks) >= memo.limit {
			memo.stacks = append(memo.stacks, memo.maxStacks...)
			memo.maxStacks = []*Stack[T]{target}
		} else {
			memo.maxStacks = append(memo.maxStacks, target)
		}
		memo.maxRelev = target.Relev
	case target.Relev == memo.maxRelev:
		memo.maxStacks = append(memo.maxStacks, target)
	default:
		if len(memo.stacks) < memo.limit {
			memo.stacks = append(memo.stacks, target)
		}
	}
}
