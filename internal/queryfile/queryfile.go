// Package queryfile loads a JSON fixture describing a query's phrasematch
// results, options, and grid references — the shape a CLI driving the
// spatialmatch engine in isolation (without an upstream tokenizer/phrasematch
// stage wired in) needs to supply by hand.
package queryfile

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/carmenstack/spatialmatch/internal/coalescefii"
	"github.com/carmenstack/spatialmatch/internal/mask"
	"github.com/carmenstack/spatialmatch/internal/phrasematch"
	"github.com/carmenstack/spatialmatch/internal/spatialmatch"
)

// PhrasematchJSON mirrors phrasematch.Phrasematch field-for-field in a
// JSON-friendly shape.
type PhrasematchJSON struct {
	Idx            int      `json:"idx"`
	Mask           uint64   `json:"mask"`
	NMask          uint64   `json:"nmask"`
	BMask          uint64   `json:"bmask"`
	Weight         float64  `json:"weight"`
	EditMultiplier float64  `json:"edit_multiplier"`
	EditDistance   int      `json:"edit_distance"`
	Prefix         bool     `json:"prefix"`
	ScoreFactor    float64  `json:"score_factor"`
	ProxMatch      int      `json:"prox_match"`
	CatMatch       int      `json:"cat_match"`
	PartialNumber  bool     `json:"partial_number"`
	Radius         float64  `json:"radius"`
	Zoom           int      `json:"zoom"`
	Subquery       []string `json:"subquery"`
	Address        *string  `json:"address"`
}

// ResultJSON mirrors phrasematch.PhrasematchResult.
type ResultJSON struct {
	Idx           int               `json:"idx"`
	NMask         uint64            `json:"nmask"`
	BMask         uint64            `json:"bmask"`
	Phrasematches []PhrasematchJSON `json:"phrasematches"`
}

// OptionsJSON mirrors spatialmatch.Options' JSON-serializable subset.
type OptionsJSON struct {
	Proximity *struct {
		Lon float64 `json:"lon"`
		Lat float64 `json:"lat"`
	} `json:"proximity"`
	BBox *struct {
		MinLon float64 `json:"min_lon"`
		MinLat float64 `json:"min_lat"`
		MaxLon float64 `json:"max_lon"`
		MaxLat float64 `json:"max_lat"`
	} `json:"bbox"`
	AllowedIdx             []int `json:"allowed_idx"`
	StackableLimit         int   `json:"stackable_limit"`
	SpatialmatchStackLimit int   `json:"spatialmatch_stack_limit"`
}

// Request is the full fixture: query tokens, phrasematch results, options,
// and the grid references the indexer would otherwise supply.
type Request struct {
	Tokens   []string          `json:"tokens"`
	Results  []ResultJSON      `json:"results"`
	Options  OptionsJSON       `json:"options"`
	GridRefs map[string]uint64 `json:"grid_refs"`
}

// Load reads and parses a Request fixture from path.
func Load(path string) (*Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("queryfile: read %s: %w", path, err)
	}
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("queryfile: parse %s: %w", path, err)
	}
	return &req, nil
}

// ToPhrasematchResults converts the fixture's results into the engine's
// input type.
func (r *Request) ToPhrasematchResults() []*phrasematch.PhrasematchResult {
	out := make([]*phrasematch.PhrasematchResult, 0, len(r.Results))
	for _, res := range r.Results {
		pms := make([]*phrasematch.Phrasematch, 0, len(res.Phrasematches))
		for _, p := range res.Phrasematches {
			prefix := phrasematch.PrefixDisabled
			if p.Prefix {
				prefix = phrasematch.PrefixEnabled
			}
			pms = append(pms, &phrasematch.Phrasematch{
				Idx:            p.Idx,
				Mask:           mask.Bits(p.Mask),
				NMask:          mask.Bits(p.NMask),
				BMask:          mask.Bits(p.BMask),
				Weight:         p.Weight,
				EditMultiplier: p.EditMultiplier,
				EditDistance:   p.EditDistance,
				Prefix:         prefix,
				ScoreFactor:    p.ScoreFactor,
				ProxMatch:      p.ProxMatch,
				CatMatch:       p.CatMatch,
				PartialNumber:  p.PartialNumber,
				Radius:         p.Radius,
				Zoom:           p.Zoom,
				Subquery:       p.Subquery,
				Address:        p.Address,
			})
		}
		out = append(out, &phrasematch.PhrasematchResult{
			Idx:           res.Idx,
			NMask:         mask.Bits(res.NMask),
			BMask:         mask.Bits(res.BMask),
			Phrasematches: pms,
		})
	}
	return out
}

// ToOptions converts the fixture's options into spatialmatch.Options.
func (r *Request) ToOptions() spatialmatch.Options {
	var opts spatialmatch.Options
	if r.Options.Proximity != nil {
		opts.Proximity = &coalescefii.LonLat{Lon: r.Options.Proximity.Lon, Lat: r.Options.Proximity.Lat}
	}
	if r.Options.BBox != nil {
		bbox := coalescefii.BBox{r.Options.BBox.MinLon, r.Options.BBox.MinLat, r.Options.BBox.MaxLon, r.Options.BBox.MaxLat}
		opts.BBox = &bbox
	}
	if len(r.Options.AllowedIdx) > 0 {
		opts.AllowedIdx = make(map[int]bool, len(r.Options.AllowedIdx))
		for _, idx := range r.Options.AllowedIdx {
			opts.AllowedIdx[idx] = true
		}
	}
	opts.StackableLimit = r.Options.StackableLimit
	opts.SpatialmatchStackLimit = r.Options.SpatialmatchStackLimit
	return opts
}

// GridRefResolver adapts the fixture's grid_refs map to coalesce.GridRefs.
type GridRefResolver struct {
	refs map[int]uint64
}

// NewGridRefResolver builds a resolver from the fixture's idx-keyed map
// (JSON keys are strings; converted once here).
func (r *Request) NewGridRefResolver() (*GridRefResolver, error) {
	refs := make(map[int]uint64, len(r.GridRefs))
	for k, v := range r.GridRefs {
		var idx int
		if _, err := fmt.Sscanf(k, "%d", &idx); err != nil {
			return nil, fmt.Errorf("queryfile: grid_refs key %q is not an index: %w", k, err)
		}
		refs[idx] = v
	}
	return &GridRefResolver{refs: refs}, nil
}

// GridRef implements coalesce.GridRefs.
func (g *GridRefResolver) GridRef(idx int) (uint64, bool) {
	v, ok := g.refs[idx]
	return v, ok
}
