// Package cache implements the bounded reference-frame cache the condition
// evaluator loads template pixels through (§5: frame cache sized to avoid
// unbounded memory growth across long-lived routine sessions). Backed by
// xsync's lock-free map, grounded on the teacher's use of
// puzpuzpuz/xsync/v3 for its concurrent lookup tables (see SPEC_FULL §B).
package cache

import (
	"container/list"
	"fmt"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/pixelpilot/autocore/internal/domain"
)

// Loader fetches a reference frame's pixels by id on a cache miss —
// production wiring reads a PNG off disk; tests supply a fake.
type Loader interface {
	Load(frameID string) (*domain.Bitmap, error)
}

// DefaultCapacity is the minimum bound guaranteed by New when capacity <= 0.
const DefaultCapacity = 64

// FrameCache is a bounded LRU cache of decoded reference frames. Lookups
// are lock-free via xsync.MapOf; eviction order is tracked separately
// under a small mutex since LRU bookkeeping is inherently sequential.
type FrameCache struct {
	loader   Loader
	capacity int

	entries *xsync.MapOf[string, *domain.Bitmap]

	mu    sync.Mutex
	order *list.List               // front = most recently used
	pos   map[string]*list.Element // frameID -> its node in order
}

// New constructs a FrameCache bounded at capacity entries (DefaultCapacity
// if capacity <= 0).
func New(loader Loader, capacity int) *FrameCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &FrameCache{
		loader:   loader,
		capacity: capacity,
		entries:  xsync.NewMapOf[string, *domain.Bitmap](),
		order:    list.New(),
		pos:      make(map[string]*list.Element),
	}
}

// ReferenceFrame satisfies condition.FrameSource, loading frameID on a
// cache miss and evicting the least recently used entry if that would
// exceed capacity.
func (c *FrameCache) ReferenceFrame(frameID string) (*domain.Bitmap, error) {
	if bm, ok := c.entries.Load(frameID); ok {
		c.touch(frameID)
		return bm, nil
	}

	bm, err := c.loader.Load(frameID)
	if err != nil {
		return nil, fmt.Errorf("cache.ReferenceFrame: loading %q: %w", frameID, err)
	}
	c.entries.Store(frameID, bm)
	c.touch(frameID)
	c.evictIfNeeded()
	return bm, nil
}

func (c *FrameCache) touch(frameID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.pos[frameID]; ok {
		c.order.MoveToFront(el)
		return
	}
	c.pos[frameID] = c.order.PushFront(frameID)
}

func (c *FrameCache) evictIfNeeded() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.order.Len() > c.capacity {
		back := c.order.Back()
		if back == nil {
			return
		}
		id := back.Value.(string)
		c.order.Remove(back)
		delete(c.pos, id)
		c.entries.Delete(id)
	}
}

// Len reports how many frames are currently cached.
func (c *FrameCache) Len() int {
	return c.entries.Size()
}
