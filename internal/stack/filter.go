package stack

import "sort"

// Allowed retains only the stacks whose max-idx element passes the
// allowed_idx filter (§4.D). A nil/empty filter is the identity.
func Allowed[T Element](stacks []*Stack[T], allowedIdx map[int]bool) []*Stack[T] {
	if len(allowedIdx) == 0 {
		return stacks
	}
	out := make([]*Stack[T], 0, len(stacks))
	for _, s := range stacks {
		if allowedIdx[s.MaxIdx()] {
			out = append(out, s)
		}
	}
	return out
}

// SortByZoomIdx orders one stack's elements by zoom asc, idx asc, mask
// desc (§4.D). It mutates Elements in place.
func SortByZoomIdx[T Element](elements []T) {
	sort.SliceStable(elements, func(i, j int) bool {
		a, b := elements[i], elements[j]
		if a.GetZoom() != b.GetZoom() {
			return a.GetZoom() < b.GetZoom()
		}
		if a.GetIdx() != b.GetIdx() {
			return a.GetIdx() < b.GetIdx()
		}
		return a.GetMask() > b.GetMask()
	})
}

// SortByRelevLengthIdx orders stacks by descending quality per §4.D's
// seven-level comparator, the last level being a per-position idx scan.
// Stacks that match on every key compare as equal, and the stable sort
// keeps them in input order.
func SortByRelevLengthIdx[T Element](stacks []*Stack[T]) {
	sort.SliceStable(stacks, func(i, j int) bool {
		return stackLess(stacks[i], stacks[j])
	})
}

func stackLess[T Element](a, b *Stack[T]) bool {
	if a.AdjRelev != b.AdjRelev {
		return a.AdjRelev > b.AdjRelev
	}
	if len(a.Elements) != len(b.Elements) {
		return len(a.Elements) < len(b.Elements)
	}
	if a.Relev != b.Relev {
		return a.Relev > b.Relev
	}

	if la, lb, ok := lastElements(a, b); ok {
		if la.GetProxMatch() != lb.GetProxMatch() {
			return la.GetProxMatch() > lb.GetProxMatch()
		}
		if la.GetCatMatch() != lb.GetCatMatch() {
			return la.GetCatMatch() > lb.GetCatMatch()
		}
		if la.GetScoreFactor() != lb.GetScoreFactor() {
			return la.GetScoreFactor() > lb.GetScoreFactor()
		}
	}

	// Final tiebreaker: per-position idx, scanned from the last position
	// to the first, so it is deterministic and total.
	n := len(a.Elements)
	if len(b.Elements) < n {
		n = len(b.Elements)
	}
	for k := n - 1; k >= 0; k-- {
		ia, ib := a.Elements[k].GetIdx(), b.Elements[k].GetIdx()
		if ia != ib {
			return ia < ib
		}
	}
	return false
}

func lastElements[T Element](a, b *Stack[T]) (T, T, bool) {
	var zero T
	if len(a.Elements) == 0 || len(b.Elements) == 0 {
		return zero, zero, false
	}
	return a.Elements[len(a.Elements)-1], b.Elements[len(b.Elements)-1], true
}
