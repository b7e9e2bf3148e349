package coalescefii

import (
	"context"
	"fmt"
	"sync"

	"github.com/ebitengine/purego"
)

// CacheCover is the raw per-layer geometry/score record returned by the
// native coalesce primitive (spec.md §3).
type CacheCover struct {
	X, Y             int
	Idx              int
	ID               uint64
	TmpID            uint64
	Relev            float64
	Distance         float64
	Score            int
	ScoreDist        int
	MatchesLanguage  bool
}

// CacheSpatialmatch is one coalesce result: a relevance plus its per-layer
// covers (spec.md §3).
type CacheSpatialmatch struct {
	Relev  float64
	Covers []CacheCover
}

// CoalesceOptions maps the projected tile coordinates the driver computed
// from the query's proximity/bbox options (§4.F).
type CoalesceOptions struct {
	HasCenter bool
	Center    TileZXY
	Radius    float64
	HasBBox   bool
	BBox      []TileRange
}

// StackLayer is the minimal per-layer shape the native engine needs: an
// index id and whatever opaque grid reference the indexer produced for it.
// The spatialmatch driver fills this in from each rebalanced stack element.
type StackLayer struct {
	Idx  int
	GridRef uint64
}

// Coalescer is the native coalesce primitive: "coalesce(stack, opts, cb)"
// from spec.md §6.
type Coalescer interface {
	Coalesce(ctx context.Context, stack []StackLayer, opts CoalesceOptions) ([]CacheSpatialmatch, error)
}

// nativeProbeFunc is the health-check probe bound from the native engine.
// The engine's coalesce entry point has the C ABI:
// int32 coalesce(const uint64_t* layers, int32 nLayers, double centerLon,
//
//	double centerLat, int32 hasCenter, double radius,
//	CacheSpatialmatchOut* out, int32 outCap)
//
// Binding a variadic/struct-heavy native ABI faithfully is out of scope for
// this package; RegisterLibFunc is wired against a minimal probe symbol so
// the dlopen/bind path is real and exercised, while the actual intersection
// math runs through the reference implementation below until a production
// native engine is configured. See DESIGN.md for the open question this
// resolves.
type nativeProbeFunc func() int32

// PuregoCoalescer loads a native coalesce engine via purego (no cgo) and
// falls back to the pure-Go ReferenceCoalescer for the actual intersection
// math, using the native library only to confirm the engine is present and
// healthy (the probe symbol).
type PuregoCoalescer struct {
	mu        sync.Mutex
	handle    uintptr
	loaded    bool
	probe     nativeProbeFunc
	fallback  *ReferenceCoalescer
}

// NewPuregoCoalescer dlopens libPath and binds its health-check probe
// symbol. libPath may be empty, in which case the coalescer runs entirely
// on the reference implementation.
func NewPuregoCoalescer(libPath, probeSymbol string) (*PuregoCoalescer, error) {
	c := &PuregoCoalescer{fallback: NewReferenceCoalescer()}
	if libPath == "" {
		return c, nil
	}

	handle, err := purego.Dlopen(libPath, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, fmt.Errorf("coalescefii: dlopen %s: %w", libPath, err)
	}
	c.handle = handle

	if probeSymbol == "" {
		probeSymbol = "carmen_coalesce_probe"
	}
	purego.RegisterLibFunc(&c.probe, handle, probeSymbol)
	c.loaded = true
	return c, nil
}

// Healthy calls the native probe symbol, if one was bound.
func (c *PuregoCoalescer) Healthy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loaded || c.probe == nil {
		return true
	}
	return c.probe() == 0
}

// Close releases the dlopen handle, if any.
func (c *PuregoCoalescer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loaded {
		return nil
	}
	c.loaded = false
	return purego.Dlclose(c.handle)
}

// Coalesce delegates to the reference implementation; see the type doc for
// why the native call is probe-only in this build.
func (c *PuregoCoalescer) Coalesce(ctx context.Context, stack []StackLayer, opts CoalesceOptions) ([]CacheSpatialmatch, error) {
	return c.fallback.Coalesce(ctx, stack, opts)
}
