// Package result holds the two output record types — Cover and
// Spatialmatch (spec.md §3) — and the score/scoredist decoding step that
// turns a coalesce primitive's raw CacheCover into a ranked Cover (§4.F).
package result

import (
	"github.com/carmenstack/spatialmatch/internal/coalescefii"
	"github.com/carmenstack/spatialmatch/internal/mask"
	"github.com/carmenstack/spatialmatch/internal/phrasematch"
)

// Cover enriches a coalesce primitive's CacheCover with decoded score and
// scoredist plus text/zoom/prefix/mask inherited from the phrasematch that
// produced it.
type Cover struct {
	X, Y      int
	Idx       int
	ID        uint64
	TmpID     uint64
	Relev     float64
	Distance  float64
	Score     float64
	Scoredist float64

	MatchesLanguage bool

	Mask     mask.Bits
	Zoom     int
	Prefix   phrasematch.Prefix
	Address  *string
}

// DecodeCover builds a Cover from a raw CacheCover and the phrasematch that
// layer came from, applying the §4.F score-decoding rules.
func DecodeCover(raw coalescefii.CacheCover, source *phrasematch.Phrasematch) Cover {
	c := Cover{
		X:               raw.X,
		Y:               raw.Y,
		Idx:             raw.Idx,
		ID:              raw.ID,
		TmpID:           raw.TmpID,
		Relev:           raw.Relev,
		Distance:        raw.Distance,
		MatchesLanguage: raw.MatchesLanguage,
		Score:           coalescefii.Decode3BitLogScale(raw.Score, source.ScoreFactor),
		Scoredist:       decodeScoredist(raw.ScoreDist, source.ScoreFactor),
		Mask:            source.Mask,
		Zoom:            source.Zoom,
		Prefix:          source.Prefix,
		Address:         source.Address,
	}
	return c
}

// decodeScoredist implements the raw_scoredist > 7 linear branch alongside
// the shared 3-bit log scale decoder (§4.F).
func decodeScoredist(rawScoredist int, scoreFactor float64) float64 {
	if rawScoredist > 7 {
		return (scoreFactor / 7) * float64(rawScoredist)
	}
	return coalescefii.Decode3BitLogScale(rawScoredist, scoreFactor)
}
