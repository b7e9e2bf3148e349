package result

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carmenstack/spatialmatch/internal/coalescefii"
	"github.com/carmenstack/spatialmatch/internal/phrasematch"
)

func TestDecodeCoverAppliesLinearBranchAboveSeven(t *testing.T) {
	source := &phrasematch.Phrasematch{ScoreFactor: 14, Zoom: 6}

	under := coalescefii.CacheCover{Score: 3, ScoreDist: 3}
	over := coalescefii.CacheCover{Score: 3, ScoreDist: 9}

	cu := DecodeCover(under, source)
	co := DecodeCover(over, source)

	assert.InDelta(t, coalescefii.Decode3BitLogScale(3, 14), cu.Scoredist, 1e-9)
	assert.InDelta(t, (14.0/7)*9, co.Scoredist, 1e-9)
}

func TestDecodeCoverContinuousAtBoundary(t *testing.T) {
	source := &phrasematch.Phrasematch{ScoreFactor: 21}
	atSeven := DecodeCover(coalescefii.CacheCover{ScoreDist: 7}, source)
	assert.InDelta(t, 21.0, atSeven.Scoredist, 1e-9)
}

func TestNewSpatialmatchAppliesPartialNumberMultiplier(t *testing.T) {
	covers := []Cover{{Scoredist: 2.0}}

	plain := NewSpatialmatch(0.8, covers, false, nil)
	boosted := NewSpatialmatch(0.8, covers, true, nil)

	assert.InDelta(t, 2.0, plain.Scoredist, 1e-9)
	assert.InDelta(t, 600.0, boosted.Scoredist, 1e-9)
	assert.InDelta(t, boosted.Scoredist, plain.Scoredist*300, 1e-9)
}

func TestHasAddress(t *testing.T) {
	addr := "123 Main St"
	withAddr := NewSpatialmatch(1, nil, false, &addr)
	withoutAddr := NewSpatialmatch(1, nil, false, nil)

	assert.True(t, withAddr.HasAddress())
	assert.False(t, withoutAddr.HasAddress())
}
