// Package archetype implements the collapse half of component B of the
// spatialmatch pipeline: collapsing phrasematches that behave identically
// for stacking purposes into a single archetype. Expanding a stack of
// archetypes back into the cartesian product of their original exemplars
// is done by stack.Expand.
package archetype

import (
	"github.com/carmenstack/spatialmatch/internal/mask"
	"github.com/carmenstack/spatialmatch/internal/phrasematch"
)

// lowConfidencePenalty is applied once, to the archetype, when a group of
// collapsed exemplars looks like a low-confidence prefix match (§4.B).
// Per the spec's Open Question (c), this never compounds across expansion.
const lowConfidencePenalty = 0.99

// Archetype collapses one or more phrasematches from the same index that
// share (mask, weight, editMultiplier, prefix). Its scoring fields are
// identical to every retained exemplar's.
type Archetype struct {
	Idx            int
	Mask           mask.Bits
	BMask          mask.Bits
	Weight         float64
	EditMultiplier float64
	Zoom           int
	ScoreFactor    float64
	ProxMatch      int
	CatMatch       int
	Prefix         phrasematch.Prefix
	Radius         float64
	PartialNumber  bool
	Exemplars      []*phrasematch.Phrasematch
}

type groupKey struct {
	mask           mask.Bits
	weight         float64
	editMultiplier float64
	prefix         phrasematch.Prefix
}

// Collapse groups a result's phrasematches into archetypes, applying the
// low-confidence penalty where it fires.
func Collapse(result *phrasematch.PhrasematchResult) []*Archetype {
	order := make([]groupKey, 0, len(result.Phrasematches))
	groups := make(map[groupKey][]*phrasematch.Phrasematch)

	for _, pm := range result.Phrasematches {
		k := groupKey{mask: pm.Mask, weight: pm.Weight, editMultiplier: pm.EditMultiplier, prefix: pm.Prefix}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], pm)
	}

	archetypes := make([]*Archetype, 0, len(order))
	for _, k := range order {
		exemplars := groups[k]
		exemplar := exemplars[0]

		a := &Archetype{
			Idx:            exemplar.Idx,
			Mask:           exemplar.Mask,
			BMask:          exemplar.BMask,
			Weight:         exemplar.Weight,
			EditMultiplier: exemplar.EditMultiplier,
			Zoom:           exemplar.Zoom,
			ScoreFactor:    exemplar.ScoreFactor,
			ProxMatch:      exemplar.ProxMatch,
			CatMatch:       exemplar.CatMatch,
			Prefix:         exemplar.Prefix,
			Radius:         exemplar.Radius,
			PartialNumber:  exemplar.PartialNumber,
			Exemplars:      exemplars,
		}

		if isLowConfidence(exemplars) {
			a.EditMultiplier *= lowConfidencePenalty
		}

		archetypes = append(archetypes, a)
	}

	return archetypes
}

// These getters let Archetype satisfy stack.Element.
func (a *Archetype) GetIdx() int             { return a.Idx }
func (a *Archetype) GetMask() mask.Bits      { return a.Mask }
func (a *Archetype) GetWeight() float64      { return a.Weight }
func (a *Archetype) GetEditMultiplier() float64 { return a.EditMultiplier }
func (a *Archetype) GetZoom() int            { return a.Zoom }
func (a *Archetype) GetProxMatch() int       { return a.ProxMatch }
func (a *Archetype) GetCatMatch() int        { return a.CatMatch }
func (a *Archetype) GetScoreFactor() float64 { return a.ScoreFactor }

// isLowConfidence reports whether a collapsed group matches the
// single-token, zero-edit-distance, prefix-enabled, over-collapsed shape
// the penalty targets.
func isLowConfidence(exemplars []*phrasematch.Phrasematch) bool {
	if len(exemplars) <= 2 {
		return false
	}
	first := exemplars[0]
	return len(first.Subquery) == 1 &&
		first.EditDistance == 0 &&
		first.Prefix != phrasematch.PrefixDisabled
}
