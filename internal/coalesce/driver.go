// Package coalesce is the component F driver: it turns proximity/bbox
// query options and a rebalanced stack into the external coalesce
// primitive's option shape, invokes it (bounded, in parallel, across
// independent stacks), and wraps raw results into result.Spatialmatch
// values (spec.md §4.F).
package coalesce

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/carmenstack/spatialmatch/internal/coalescefii"
	"github.com/carmenstack/spatialmatch/internal/phrasematch"
	"github.com/carmenstack/spatialmatch/internal/result"
	"github.com/carmenstack/spatialmatch/internal/stack"
)

// DefaultProxRadius is used when a proximity option is present but the
// stack's last layer carries no explicit radius. The source leaves this
// value to the caller; a 50-mile default is a reasonable geocoder fallback
// and is recorded as an open-question decision in DESIGN.md.
const DefaultProxRadius = 50.0

// DefaultConcurrency is the soft cap on outstanding coalesce calls (§5).
const DefaultConcurrency = 500

// Options is the subset of spatialmatch's options (spec.md §6) the
// coalesce driver consumes.
type Options struct {
	Proximity *coalescefii.LonLat
	BBox      *coalescefii.BBox
}

// GridRefs resolves an index id to the opaque grid reference the native
// coalesce primitive needs to find that layer's tiles. Supplied by the
// indexer-backed store in production, or a fixture in tests.
type GridRefs interface {
	GridRef(idx int) (uint64, bool)
}

// Outcome is one rebalanced stack's coalesce result: either a non-empty
// set of Spatialmatches, or a waste entry recording which indexes produced
// nothing (§4.F, §6 output.waste).
type Outcome struct {
	Spatialmatches []result.Spatialmatch
	Waste          []int
}

// Driver invokes the external coalesce primitive for each stack, bounded
// to Concurrency outstanding calls at once (§5).
type Driver struct {
	Coalescer   coalescefii.Coalescer
	Grids       GridRefs
	Concurrency int
}

// NewDriver builds a Driver with the default concurrency cap.
func NewDriver(coalescer coalescefii.Coalescer, grids GridRefs) *Driver {
	return &Driver{Coalescer: coalescer, Grids: grids, Concurrency: DefaultConcurrency}
}

// Run coalesces every stack in parallel (bounded) and returns one Outcome
// per input stack, in input order. A single failing coalesce call is
// fatal for the whole query (§7: "Partial failures in parallel coalesce
// are fatal for the query").
func (d *Driver) Run(ctx context.Context, stacks []*stack.Stack[*phrasematch.Phrasematch], opts Options) ([]Outcome, error) {
	outcomes := make([]Outcome, len(stacks))
	concurrency := d.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, concurrency)
	var mu sync.Mutex
	var firstErr error

	for i, s := range stacks {
		i, s := i, s
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-gctx.Done():
				return gctx.Err()
			}

			outcome, err := d.coalesceOne(gctx, s, opts)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return nil
			}
			outcomes[i] = outcome
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return outcomes, nil
}

func (d *Driver) coalesceOne(ctx context.Context, s *stack.Stack[*phrasematch.Phrasematch], opts Options) (Outcome, error) {
	if len(s.Elements) == 0 {
		return Outcome{}, nil
	}

	stackByIdx := make(map[int]*phrasematch.Phrasematch, len(s.Elements))
	layers := make([]coalescefii.StackLayer, 0, len(s.Elements))
	idxList := make([]int, 0, len(s.Elements))
	maxZoom := s.Elements[0].Zoom
	var addr *string

	for _, e := range s.Elements {
		stackByIdx[e.Idx] = e
		idxList = append(idxList, e.Idx)
		if e.Zoom > maxZoom {
			maxZoom = e.Zoom
		}
		if addr == nil {
			addr = e.Address
		}
		gridRef, ok := d.Grids.GridRef(e.Idx)
		if !ok {
			return Outcome{}, fmt.Errorf("coalesce: no grid reference for index %d", e.Idx)
		}
		layers = append(layers, coalescefii.StackLayer{Idx: e.Idx, GridRef: gridRef})
	}

	last := s.Elements[len(s.Elements)-1]
	partialNumber := last.PartialNumber

	copts, skip := buildOptions(opts, maxZoom, s, partialNumber, last)
	if skip {
		return Outcome{Waste: idxList}, nil
	}

	raw, err := d.Coalescer.Coalesce(ctx, layers, copts)
	if err != nil {
		return Outcome{}, fmt.Errorf("coalesce: %w", err)
	}
	if len(raw) == 0 {
		return Outcome{Waste: idxList}, nil
	}

	matches := make([]result.Spatialmatch, 0, len(raw))
	for _, cs := range raw {
		covers := make([]result.Cover, 0, len(cs.Covers))
		for _, rc := range cs.Covers {
			source, ok := stackByIdx[rc.Idx]
			if !ok {
				continue
			}
			covers = append(covers, result.DecodeCover(rc, source))
		}
		matches = append(matches, result.NewSpatialmatch(cs.Relev, covers, partialNumber, addr))
	}
	return Outcome{Spatialmatches: matches}, nil
}

// buildOptions maps proximity/bbox query options to the native coalesce
// primitive's tile-coordinate option shape (§4.F). skip is true when a
// partial-number proximity buffer doesn't intersect the caller's bbox, in
// which case this stack must emit no results.
func buildOptions(opts Options, maxZoom int, s *stack.Stack[*phrasematch.Phrasematch], partialNumber bool, last *phrasematch.Phrasematch) (coalescefii.CoalesceOptions, bool) {
	var out coalescefii.CoalesceOptions

	if opts.Proximity != nil {
		out.HasCenter = true
		out.Center = coalescefii.ProjectToTileXY(*opts.Proximity, maxZoom)
		radius := last.Radius
		if radius == 0 {
			radius = DefaultProxRadius
		}
		out.Radius = radius
	}

	switch {
	case partialNumber && opts.Proximity != nil:
		pnBbox := coalescefii.BufferMiles(*opts.Proximity, 10)
		if opts.BBox != nil {
			intersected, ok := coalescefii.BboxIntersection(pnBbox, *opts.BBox)
			if !ok {
				return out, true
			}
			pnBbox = intersected
		}
		out.HasBBox = true
		out.BBox = coalescefii.InsideTile(pnBbox, s.Elements[0].Zoom)
	case opts.BBox != nil:
		out.HasBBox = true
		out.BBox = coalescefii.InsideTile(*opts.BBox, s.Elements[0].Zoom)
	}

	return out, false
}
