// Package stack implements components B (expand), C (stackable) and D
// (filter & sort) of the spatialmatch pipeline: the pruned recursive
// enumeration over phrasematch levels, the stack ordering rules, and the
// archetype-to-exemplar expansion that runs after a stack is selected.
package stack

import "github.com/carmenstack/spatialmatch/internal/mask"

// Element is anything that can occupy a Stack slot: an *archetype.Archetype
// during enumeration, or an exemplar *phrasematch.Phrasematch after Expand.
// Both satisfy this via methods defined in their own packages, so this
// package never imports archetype for the enumerator/sort logic — only
// expand.go needs the concrete archetype type.
type Element interface {
	GetIdx() int
	GetMask() mask.Bits
	GetWeight() float64
	GetEditMultiplier() float64
	GetZoom() int
	GetProxMatch() int
	GetCatMatch() int
	GetScoreFactor() float64
}

// Stack is an ordered sequence of elements drawn from distinct indexes,
// carrying the two attached scalars relev/adjRelev (spec.md §3, §9). The
// enumerator inserts a candidate at position 0 when its Mask is below the
// stack's accumulated mask and appends it otherwise; SortByZoomIdx later
// reorders Elements by zoom, idx and mask.
type Stack[T Element] struct {
	Elements []T
	Relev    float64
	AdjRelev float64
}

// Clone returns a copy of the stack whose Elements slice does not alias the
// receiver's backing array, so branching in the enumerator never mutates a
// sibling branch's view of the stack.
func (s *Stack[T]) Clone() *Stack[T] {
	elems := make([]T, len(s.Elements))
	copy(elems, s.Elements)
	return &Stack[T]{Elements: elems, Relev: s.Relev, AdjRelev: s.AdjRelev}
}

// Len returns the number of elements, satisfying sort.Interface callers.
func (s *Stack[T]) Len() int { return len(s.Elements) }

// MaxIdx returns the highest idx among the stack's elements, or -1 for an
// empty stack.
func (s *Stack[T]) MaxIdx() int {
	best := -1
	for _, e := range s.Elements {
		if e.GetIdx() > best {
			best = e.GetIdx()
		}
	}
	return best
}

// Level is one index's candidate set as seen by the enumerator: a
// collapsed PhrasematchResult (NMask/BMask live at the result level, the
// candidates are its archetypes).
type Level[T Element] struct {
	Idx        int
	NMask      mask.Bits
	BMask      mask.Bits
	Candidates []T
}
