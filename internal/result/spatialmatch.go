package result

// Spatialmatch is one finished spatial match: a relevance, its per-layer
// covers ordered the way the coalesce primitive returned them, and a
// scoredist used for final cross-stack ranking (spec.md §3).
type Spatialmatch struct {
	Relev         float64
	Covers        []Cover
	PartialNumber bool
	Address       *string
	Scoredist     float64
}

// partialNumberScoredistMultiplier is declared empirical in the source;
// preserved exactly (spec.md §8 scenario 5, §9 open question (b)).
const partialNumberScoredistMultiplier = 300

// NewSpatialmatch assembles a Spatialmatch from a coalesced relev and its
// decoded covers. scoredist is covers[0].scoredist, multiplied by 300 iff
// partialNumber (§3).
func NewSpatialmatch(relev float64, covers []Cover, partialNumber bool, address *string) Spatialmatch {
	var scoredist float64
	if len(covers) > 0 {
		scoredist = covers[0].Scoredist
	}
	if partialNumber {
		scoredist *= partialNumberScoredistMultiplier
	}
	return Spatialmatch{
		Relev:         relev,
		Covers:        covers,
		PartialNumber: partialNumber,
		Address:       address,
		Scoredist:     scoredist,
	}
}

// HasAddress reports whether this match carries a resolved address, used as
// the final tiebreaker in the cross-stack sort (§4.G).
func (s Spatialmatch) HasAddress() bool {
	return s.Address != nil
}
