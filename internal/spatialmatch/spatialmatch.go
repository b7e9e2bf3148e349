// Package spatialmatch wires components B through H into the single
// entry point spec.md §6 describes:
// spatialmatch(query, phrasematchResults, options, done).
package spatialmatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/carmenstack/spatialmatch/internal/archetype"
	"github.com/carmenstack/spatialmatch/internal/coalesce"
	"github.com/carmenstack/spatialmatch/internal/coalescefii"
	"github.com/carmenstack/spatialmatch/internal/dedup"
	"github.com/carmenstack/spatialmatch/internal/geoerr"
	"github.com/carmenstack/spatialmatch/internal/logging"
	"github.com/carmenstack/spatialmatch/internal/mask"
	"github.com/carmenstack/spatialmatch/internal/phrasematch"
	"github.com/carmenstack/spatialmatch/internal/rebalance"
	"github.com/carmenstack/spatialmatch/internal/result"
	"github.com/carmenstack/spatialmatch/internal/stack"
	"github.com/carmenstack/spatialmatch/internal/tilecache"
)

// DefaultStackableLimit and DefaultSpatialmatchStackLimit are the caps
// applied when the caller's Options leaves them at zero (§6).
const (
	DefaultStackableLimit         = stack.DefaultStackableLimit
	DefaultSpatialmatchStackLimit = 100
)

// Options is the input options bag from spec.md §6.
type Options struct {
	Proximity              *coalescefii.LonLat
	BBox                   *coalescefii.BBox
	AllowedIdx             map[int]bool
	StackableLimit         int
	SpatialmatchStackLimit int
}

// Engine wires the external coalesce primitive and the grid-reference
// lookup needed to run queries.
type Engine struct {
	Coalescer   coalescefii.Coalescer
	Grids       coalesce.GridRefs
	Log         *slog.Logger
	Concurrency int // bounded coalesce fan-out; <= 0 uses coalesce.DefaultConcurrency
}

// New builds an Engine around the given coalesce primitive and grid
// reference resolver, logging to slog.Default() unless overridden via the
// Log field. coalescer is wrapped in a tilecache.Cache of tileCacheSize
// entries (tilecache.DefaultSize if <= 0), so repeated stack/option shapes
// across queries skip the native call; when gridPath is non-empty, the
// cache also watches it and purges itself whenever the indexer's
// pack-and-swap replaces the file. Pass an empty gridPath when there is no
// real grid file backing the query (e.g. a fixture-driven run).
func New(coalescer coalescefii.Coalescer, grids coalesce.GridRefs, tileCacheSize int, gridPath string) (*Engine, error) {
	cache, err := tilecache.New(coalescer, tileCacheSize, slog.Default())
	if err != nil {
		return nil, fmt.Errorf("spatialmatch: new tile cache: %w", err)
	}
	if gridPath != "" {
		if err := cache.WatchGridFile(gridPath); err != nil {
			return nil, fmt.Errorf("spatialmatch: watch grid file %s: %w", gridPath, err)
		}
	}
	return &Engine{Coalescer: cache, Grids: grids, Log: slog.Default()}, nil
}

// Run executes the full pipeline: collapse, stackable enumeration,
// allowed+sort, archetype expansion, rebalance, parallel coalesce, and
// finalization (spec.md §2 data flow).
func (e *Engine) Run(ctx context.Context, queryTokens []string, phrasematchResults []*phrasematch.PhrasematchResult, opts Options) (dedup.Output, error) {
	log := e.Log
	if log == nil {
		log = slog.Default()
	}
	queryID := logging.NewQueryID()
	start := time.Now()
	log.Debug("spatialmatch: query started", "queryID", queryID, "tokens", len(queryTokens), "results", len(phrasematchResults))

	if len(phrasematchResults) == 0 {
		return dedup.Output{}, geoerr.New(geoerr.KindInvalidOptions, "phrasematchResults must not be empty")
	}

	for _, pr := range phrasematchResults {
		if err := mask.Validate(pr.Idx); err != nil {
			return dedup.Output{}, geoerr.Wrap(geoerr.KindIndexOutOfRange, "phrasematch result index out of range", err)
		}
	}

	levels := make([]stack.Level[*archetype.Archetype], 0, len(phrasematchResults))
	for _, pr := range phrasematchResults {
		archetypes := archetype.Collapse(pr)
		levels = append(levels, stack.Level[*archetype.Archetype]{
			Idx:        pr.Idx,
			NMask:      pr.NMask,
			BMask:      pr.BMask,
			Candidates: archetypes,
		})
	}

	stackableLimit := opts.StackableLimit
	if stackableLimit <= 0 {
		stackableLimit = DefaultStackableLimit
	}
	archetypeStacks := stack.Stackable(levels, stack.StackableOptions{Limit: stackableLimit})
	log.Debug("spatialmatch: enumerated stacks", "queryID", queryID, "count", len(archetypeStacks))

	archetypeStacks = stack.Allowed(archetypeStacks, opts.AllowedIdx)
	log.Debug("spatialmatch: stacks after allowed_idx filter", "queryID", queryID, "count", len(archetypeStacks))

	for _, s := range archetypeStacks {
		stack.SortByZoomIdx(s.Elements)
	}
	stack.SortByRelevLengthIdx(archetypeStacks)

	spatialmatchStackLimit := opts.SpatialmatchStackLimit
	if spatialmatchStackLimit <= 0 {
		spatialmatchStackLimit = DefaultSpatialmatchStackLimit
	}
	if len(archetypeStacks) > spatialmatchStackLimit {
		archetypeStacks = archetypeStacks[:spatialmatchStackLimit]
	}

	expanded := stack.ExpandAll(archetypeStacks, spatialmatchStackLimit)

	rebalanced := make([]*stack.Stack[*phrasematch.Phrasematch], len(expanded))
	for i, s := range expanded {
		rebalanced[i] = rebalance.Rebalance(len(queryTokens), s)
	}

	driver := coalesce.NewDriver(e.Coalescer, e.Grids)
	if e.Concurrency > 0 {
		driver.Concurrency = e.Concurrency
	}
	outcomes, err := driver.Run(ctx, rebalanced, coalesce.Options{Proximity: opts.Proximity, BBox: opts.BBox})
	if err != nil {
		return dedup.Output{}, geoerr.Wrap(geoerr.KindCoalesceFailure, "coalesce failed", err)
	}

	matchesByStack := make([][]result.Spatialmatch, len(outcomes))
	waste := make([][]int, len(outcomes))
	for i, o := range outcomes {
		matchesByStack[i] = o.Spatialmatches
		waste[i] = o.Waste
	}

	out := dedup.Finalize(matchesByStack, waste)
	log.Info("spatialmatch: query finished", "queryID", queryID, "results", len(out.Results), "waste", len(out.Waste), "duration", time.Since(start))
	return out, nil
}
