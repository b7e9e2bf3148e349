package spatialmatch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carmenstack/spatialmatch/internal/coalescefii"
	"github.com/carmenstack/spatialmatch/internal/mask"
	"github.com/carmenstack/spatialmatch/internal/phrasematch"
)

type fixedGridRefs map[int]uint64

func (f fixedGridRefs) GridRef(idx int) (uint64, bool) {
	v, ok := f[idx]
	return v, ok
}

type stubCoalescer struct{}

func (stubCoalescer) Coalesce(ctx context.Context, stack []coalescefii.StackLayer, opts coalescefii.CoalesceOptions) ([]coalescefii.CacheSpatialmatch, error) {
	covers := make([]coalescefii.CacheCover, len(stack))
	for i, l := range stack {
		covers[i] = coalescefii.CacheCover{Idx: l.Idx, TmpID: 1, Relev: 1}
	}
	return []coalescefii.CacheSpatialmatch{{Relev: 1, Covers: covers}}, nil
}

type countingCoalescer struct {
	calls int
}

func (c *countingCoalescer) Coalesce(ctx context.Context, stack []coalescefii.StackLayer, opts coalescefii.CoalesceOptions) ([]coalescefii.CacheSpatialmatch, error) {
	c.calls++
	covers := make([]coalescefii.CacheCover, len(stack))
	for i, l := range stack {
		covers[i] = coalescefii.CacheCover{Idx: l.Idx, TmpID: 1, Relev: 1}
	}
	return []coalescefii.CacheSpatialmatch{{Relev: 1, Covers: covers}}, nil
}

func TestRunSingleIndexSinglePhrasematch(t *testing.T) {
	phrasematchResults := []*phrasematch.PhrasematchResult{
		{
			Idx:   0,
			NMask: mask.Bit(0),
			Phrasematches: []*phrasematch.Phrasematch{
				{Mask: mask.Bit(0), Weight: 1, EditMultiplier: 1, Zoom: 6, ScoreFactor: 1},
			},
		},
	}

	engine, err := New(stubCoalescer{}, fixedGridRefs{0: 1}, 0, "")
	require.NoError(t, err)
	out, err := engine.Run(context.Background(), []string{"main"}, phrasematchResults, Options{})
	require.NoError(t, err)

	require.Len(t, out.Results, 1)
	assert.InDelta(t, 1.0, out.Results[0].Relev, 1e-9)
}

func TestRunRejectsEmptyPhrasematchResults(t *testing.T) {
	engine, err := New(stubCoalescer{}, fixedGridRefs{}, 0, "")
	require.NoError(t, err)
	_, err = engine.Run(context.Background(), []string{"main"}, nil, Options{})
	assert.Error(t, err)
}

func TestRunUsesConfiguredConcurrency(t *testing.T) {
	engine, err := New(stubCoalescer{}, fixedGridRefs{0: 1}, 0, "")
	require.NoError(t, err)
	engine.Concurrency = 1

	phrasematchResults := []*phrasematch.PhrasematchResult{
		{
			Idx:   0,
			NMask: mask.Bit(0),
			Phrasematches: []*phrasematch.Phrasematch{
				{Mask: mask.Bit(0), Weight: 1, EditMultiplier: 1, Zoom: 6, ScoreFactor: 1},
			},
		},
	}
	out, err := engine.Run(context.Background(), []string{"main"}, phrasematchResults, Options{})
	require.NoError(t, err)
	require.Len(t, out.Results, 1)
}

func TestRunMemoizesRepeatedQueriesViaTileCache(t *testing.T) {
	phrasematchResults := []*phrasematch.PhrasematchResult{
		{
			Idx:   0,
			NMask: mask.Bit(0),
			Phrasematches: []*phrasematch.Phrasematch{
				{Mask: mask.Bit(0), Weight: 1, EditMultiplier: 1, Zoom: 6, ScoreFactor: 1},
			},
		},
	}

	inner := &countingCoalescer{}
	engine, err := New(inner, fixedGridRefs{0: 1}, 0, "")
	require.NoError(t, err)

	_, err = engine.Run(context.Background(), []string{"main"}, phrasematchResults, Options{})
	require.NoError(t, err)
	_, err = engine.Run(context.Background(), []string{"main"}, phrasematchResults, Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
}
