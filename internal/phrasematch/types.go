// Package phrasematch holds the per-index candidate match types described
// in spec.md §3: Phrasematch and PhrasematchResult. These are the inputs to
// the spatialmatch pipeline; nothing in this package mutates them.
package phrasematch

import "github.com/carmenstack/spatialmatch/internal/mask"

// Prefix is the enum over a phrasematch's prefix-matching mode.
type Prefix int

const (
	PrefixDisabled Prefix = iota
	PrefixEnabled
)

// Phrasematch is one candidate interpretation of part of the query against
// one index (spec.md §3). BMask is a bitmask over index ordinals: bit idx
// is set when this phrasematch's geocoder_stack does not intersect index
// idx's stack (so `bmask has the bit of b.idx set` is `mask.Has(BMask, b.Idx)`).
type Phrasematch struct {
	Idx            int
	Mask           mask.Bits
	NMask          mask.Bits
	BMask          mask.Bits
	Weight         float64
	EditMultiplier float64
	EditDistance   int
	Prefix         Prefix
	ScoreFactor    float64
	ProxMatch      int
	CatMatch       int
	PartialNumber  bool
	Radius         float64
	Zoom           int
	Subquery       []string
	Address        *string
}

// PhrasematchResult is one candidate index/interpretation, grouping the
// phrasematches that share an idx (spec.md §3).
type PhrasematchResult struct {
	Idx           int
	NMask         mask.Bits
	BMask         mask.Bits
	Phrasematches []*Phrasematch
}

// These getters let Phrasematch satisfy stack.Element, so an expanded
// stack (post-archetype) is interchangeable with a stack of archetypes.
func (p *Phrasematch) GetIdx() int             { return p.Idx }
func (p *Phrasematch) GetMask() mask.Bits      { return p.Mask }
func (p *Phrasematch) GetWeight() float64      { return p.Weight }
func (p *Phrasematch) GetEditMultiplier() float64 { return p.EditMultiplier }
func (p *Phrasematch) GetZoom() int            { return p.Zoom }
func (p *Phrasematch) GetProxMatch() int       { return p.ProxMatch }
func (p *Phrasematch) GetCatMatch() int        { return p.CatMatch }
func (p *Phrasematch) GetScoreFactor() float64 { return p.ScoreFactor }
