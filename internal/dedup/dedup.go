// Package dedup is the component G deduper/finalizer: it concatenates
// every stack's coalesced Spatialmatches, sorts them, and streams them
// through a direction-aware dedup pass keyed by the leading cover's tmpid
// (spec.md §4.G).
package dedup

import (
	"sort"

	"github.com/carmenstack/spatialmatch/internal/result"
)

// Output is the finalizer's result (spec.md §6): the emitted matches, a
// feature-best map over every cover seen, and the waste log carried
// through from the coalesce driver.
type Output struct {
	Results []result.Spatialmatch
	Sets    map[uint64]result.Cover
	Waste   [][]int
}

// Finalize concatenates, sorts, and dedups spatialmatches from every
// stack's coalesce outcome.
func Finalize(matchesByStack [][]result.Spatialmatch, waste [][]int) Output {
	sets := make(map[uint64]result.Cover)
	var all []result.Spatialmatch
	for _, matches := range matchesByStack {
		all = append(all, matches...)
		for _, m := range matches {
			for _, c := range m.Covers {
				best, ok := sets[c.ID]
				if !ok || c.Relev > best.Relev {
					sets[c.ID] = c
				}
			}
		}
	}

	sort.SliceStable(all, func(i, j int) bool { return less(all[i], all[j]) })

	doneAscending := map[uint64]bool{}
	doneDescending := map[uint64]bool{}
	doneSingle := map[uint64]bool{}

	emitted := make([]result.Spatialmatch, 0, len(all))
	for _, m := range all {
		if len(m.Covers) == 0 {
			continue
		}
		tmpid := m.Covers[0].TmpID

		switch {
		case len(m.Covers) > 1 && m.Covers[0].Idx > m.Covers[1].Idx && !doneDescending[tmpid]:
			emitted = append(emitted, m)
			doneDescending[tmpid] = true
		case len(m.Covers) > 1 && m.Covers[0].Idx < m.Covers[1].Idx && !doneAscending[tmpid]:
			emitted = append(emitted, m)
			doneAscending[tmpid] = true
		case len(m.Covers) == 1 && !doneAscending[tmpid] && !doneDescending[tmpid] && !doneSingle[tmpid]:
			emitted = append(emitted, m)
			doneSingle[tmpid] = true
		}
	}

	var wasteOut [][]int
	for _, w := range waste {
		if len(w) > 0 {
			wasteOut = append(wasteOut, w)
		}
	}

	return Output{Results: emitted, Sets: sets, Waste: wasteOut}
}

// less implements the final cross-stack sort (§4.G): relev desc →
// scoredist desc → covers[0].idx asc → hasAddress desc.
func less(a, b result.Spatialmatch) bool {
	if a.Relev != b.Relev {
		return a.Relev > b.Relev
	}
	if a.Scoredist != b.Scoredist {
		return a.Scoredist > b.Scoredist
	}
	ai, aok := firstIdx(a)
	bi, bok := firstIdx(b)
	if aok && bok && ai != bi {
		return ai < bi
	}
	if a.HasAddress() != b.HasAddress() {
		return a.HasAddress()
	}
	return false
}

func firstIdx(m result.Spatialmatch) (int, bool) {
	if len(m.Covers) == 0 {
		return 0, false
	}
	return m.Covers[0].Idx, true
}
