package coalesce

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carmenstack/spatialmatch/internal/coalescefii"
	"github.com/carmenstack/spatialmatch/internal/mask"
	"github.com/carmenstack/spatialmatch/internal/phrasematch"
	"github.com/carmenstack/spatialmatch/internal/stack"
)

type fixedGridRefs map[int]uint64

func (f fixedGridRefs) GridRef(idx int) (uint64, bool) {
	v, ok := f[idx]
	return v, ok
}

type fakeCoalescer struct {
	results []coalescefii.CacheSpatialmatch
}

func (f *fakeCoalescer) Coalesce(ctx context.Context, stack []coalescefii.StackLayer, opts coalescefii.CoalesceOptions) ([]coalescefii.CacheSpatialmatch, error) {
	return f.results, nil
}

func oneElementStack(idx int, zoom int) *stack.Stack[*phrasematch.Phrasematch] {
	return &stack.Stack[*phrasematch.Phrasematch]{
		Elements: []*phrasematch.Phrasematch{{Idx: idx, Mask: mask.Bit(0), Zoom: zoom, ScoreFactor: 1}},
		Relev:    1,
		AdjRelev: 1,
	}
}

func TestRunWrapsCoalesceResultsIntoSpatialmatches(t *testing.T) {
	fake := &fakeCoalescer{results: []coalescefii.CacheSpatialmatch{
		{Relev: 0.9, Covers: []coalescefii.CacheCover{{Idx: 0, Score: 3, ScoreDist: 2}}},
	}}
	d := NewDriver(fake, fixedGridRefs{0: 42})

	outcomes, err := d.Run(context.Background(), []*stack.Stack[*phrasematch.Phrasematch]{oneElementStack(0, 6)}, Options{})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	require.Len(t, outcomes[0].Spatialmatches, 1)
	assert.Empty(t, outcomes[0].Waste)
	assert.InDelta(t, 0.9, outcomes[0].Spatialmatches[0].Relev, 1e-9)
}

func TestRunRecordsWasteOnEmptyResult(t *testing.T) {
	fake := &fakeCoalescer{results: nil}
	d := NewDriver(fake, fixedGridRefs{0: 42})

	outcomes, err := d.Run(context.Background(), []*stack.Stack[*phrasematch.Phrasematch]{oneElementStack(0, 6)}, Options{})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Empty(t, outcomes[0].Spatialmatches)
	assert.Equal(t, []int{0}, outcomes[0].Waste)
}

func TestRunFailsQueryOnMissingGridRef(t *testing.T) {
	fake := &fakeCoalescer{}
	d := NewDriver(fake, fixedGridRefs{})

	_, err := d.Run(context.Background(), []*stack.Stack[*phrasematch.Phrasematch]{oneElementStack(0, 6)}, Options{})
	assert.Error(t, err)
}

func TestBuildOptionsSkipsWhenPartialNumberBboxDisjoint(t *testing.T) {
	opts := Options{
		Proximity: &coalescefii.LonLat{Lon: 0, Lat: 0},
		BBox:      &coalescefii.BBox{50, 50, 60, 60},
	}
	last := &phrasematch.Phrasematch{PartialNumber: true}
	s := oneElementStack(0, 6)

	_, skip := buildOptions(opts, 6, s, true, last)
	assert.True(t, skip)
}
