// Package tilecache memoizes coalesce primitive calls (spec.md §5: "the
// RocksDB cache backing" the coalesce call is a suspension point, and grid
// data is read-only during query evaluation). It wraps a
// coalescefii.Coalescer with a golang-lru cache keyed by stack shape and
// options, and invalidates the whole cache when the backing native grid
// file is swapped out from under it (the indexer's pack-and-swap, §6).
package tilecache

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/fsnotify/fsnotify"

	"github.com/carmenstack/spatialmatch/internal/coalescefii"
)

// DefaultSize is the default number of coalesce results held in memory.
const DefaultSize = 4096

// Cache wraps a coalescefii.Coalescer with an LRU memo, invalidated whole
// on grid-file swap rather than per-entry, since a swap can change every
// tile's contents at once.
type Cache struct {
	inner coalescefii.Coalescer
	cache *lru.Cache[string, []coalescefii.CacheSpatialmatch]
	log   *slog.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// New wraps inner with an LRU cache of the given size (DefaultSize if <= 0).
func New(inner coalescefii.Coalescer, size int, log *slog.Logger) (*Cache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	if log == nil {
		log = slog.Default()
	}
	c, err := lru.New[string, []coalescefii.CacheSpatialmatch](size)
	if err != nil {
		return nil, fmt.Errorf("tilecache: new lru: %w", err)
	}
	return &Cache{inner: inner, cache: c, log: log}, nil
}

// WatchGridFile starts watching path (the native grid store) for writes and
// renames, purging the entire memo whenever one occurs — a pack-and-swap
// always replaces the file's identity, so per-key invalidation can't tell
// which entries changed.
func (c *Cache) WatchGridFile(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.watcher != nil {
		return fmt.Errorf("tilecache: already watching a grid file")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("tilecache: new watcher: %w", err)
	}
	if err := w.Add(path); err != nil {
		w.Close()
		return fmt.Errorf("tilecache: watch %s: %w", path, err)
	}

	c.watcher = w
	c.done = make(chan struct{})
	go c.watchLoop()
	return nil
}

func (c *Cache) watchLoop() {
	for {
		select {
		case ev, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Rename|fsnotify.Create|fsnotify.Remove) != 0 {
				c.log.Info("tilecache: grid file changed, purging memo", "path", ev.Name, "op", ev.Op.String())
				c.cache.Purge()
			}
		case err, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			c.log.Warn("tilecache: watcher error", "error", err)
		case <-c.done:
			return
		}
	}
}

// Close stops the grid-file watch, if any.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.watcher == nil {
		return nil
	}
	close(c.done)
	err := c.watcher.Close()
	c.watcher = nil
	return err
}

// Coalesce serves from the memo when the (stack, opts) shape has been seen
// before, otherwise delegates to inner and caches the result.
func (c *Cache) Coalesce(ctx context.Context, stack []coalescefii.StackLayer, opts coalescefii.CoalesceOptions) ([]coalescefii.CacheSpatialmatch, error) {
	key := cacheKey(stack, opts)
	if cached, ok := c.cache.Get(key); ok {
		return cached, nil
	}

	out, err := c.inner.Coalesce(ctx, stack, opts)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, out)
	return out, nil
}

func cacheKey(stack []coalescefii.StackLayer, opts coalescefii.CoalesceOptions) string {
	var b strings.Builder
	for _, l := range stack {
		b.WriteString(strconv.Itoa(l.Idx))
		b.WriteByte(':')
		b.WriteString(strconv.FormatUint(l.GridRef, 36))
		b.WriteByte(',')
	}
	b.WriteByte('|')
	if opts.HasCenter {
		b.WriteString(strconv.Itoa(opts.Center.Z))
		b.WriteByte('/')
		b.WriteString(strconv.Itoa(opts.Center.X))
		b.WriteByte('/')
		b.WriteString(strconv.Itoa(opts.Center.Y))
		b.WriteByte('@')
		b.WriteString(strconv.FormatFloat(opts.Radius, 'g', -1, 64))
	}
	b.WriteByte('|')
	if opts.HasBBox {
		for _, r := range opts.BBox {
			fmt.Fprintf(&b, "%d:%d,%d,%d,%d;", r.Z, r.MinX, r.MinY, r.MaxX, r.MaxY)
		}
	}
	return b.String()
}
