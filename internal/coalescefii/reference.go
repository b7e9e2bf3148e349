package coalescefii

import (
	"context"
	"sort"
	"sync"
)

// ReferenceCoalescer is a pure-Go stand-in for the native coalesce engine,
// used by tests and by PuregoCoalescer when intersection math isn't routed
// through a real native library. It holds an in-memory grid keyed by the
// same opaque GridRef the indexer attaches to a stack layer, and coalesces
// by grouping covers that share a tile coordinate across every layer.
type ReferenceCoalescer struct {
	mu    sync.RWMutex
	grids map[uint64][]CacheCover
}

// NewReferenceCoalescer returns an empty reference engine.
func NewReferenceCoalescer() *ReferenceCoalescer {
	return &ReferenceCoalescer{grids: make(map[uint64][]CacheCover)}
}

// Seed registers the covers a grid reference resolves to, for use by
// fixtures/tests.
func (r *ReferenceCoalescer) Seed(gridRef uint64, covers []CacheCover) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.grids[gridRef] = covers
}

type tileKey struct{ x, y int }

// Coalesce intersects covers tile-by-tile across stack layers, in order,
// keeping only tile coordinates present in every layer, and returns matches
// sorted by relev descending (the native primitive is documented as
// returning pre-sorted results). Covers outside opts.BBox are dropped
// before intersecting; the proximity center and radius are not used.
func (r *ReferenceCoalescer) Coalesce(ctx context.Context, stack []StackLayer, opts CoalesceOptions) ([]CacheSpatialmatch, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	if len(stack) == 0 {
		return nil, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	byKey := map[tileKey][]CacheCover{}
	for _, c := range r.grids[stack[0].GridRef] {
		if !passesFilter(c, opts) {
			continue
		}
		byKey[tileKey{c.X, c.Y}] = append(byKey[tileKey{c.X, c.Y}], c)
	}

	for _, layer := range stack[1:] {
		next := map[tileKey][]CacheCover{}
		for _, c := range r.grids[layer.GridRef] {
			if !passesFilter(c, opts) {
				continue
			}
			k := tileKey{c.X, c.Y}
			if existing, ok := byKey[k]; ok {
				merged := make([]CacheCover, len(existing), len(existing)+1)
				copy(merged, existing)
				next[k] = append(merged, c)
			}
		}
		byKey = next
		if len(byKey) == 0 {
			break
		}
	}

	results := make([]CacheSpatialmatch, 0, len(byKey))
	for _, covers := range byKey {
		sum := 0.0
		for _, c := range covers {
			sum += c.Relev
		}
		results = append(results, CacheSpatialmatch{Relev: sum / float64(len(covers)), Covers: covers})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Relev > results[j].Relev })
	return results, nil
}

func passesFilter(c CacheCover, opts CoalesceOptions) bool {
	if opts.HasBBox {
		inside := false
		for _, tr := range opts.BBox {
			if c.X >= tr.MinX && c.X <= tr.MaxX && c.Y >= tr.MinY && c.Y <= tr.MaxY {
				inside = true
				break
			}
		}
		if !inside {
			return false
		}
	}
	return true
}
