package tracing

import (
	"sync"

	"github.com/sarchlab/dmcache/cache"
	"github.com/sarchlab/dmcache/hooking"
)

// LineCount holds the outcomes observed on a single cache line.
type LineCount struct {
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
}

// CountTracer counts hits, misses, and evictions per cache line. Lines with
// many evictions are where conflicting blocks fight for the same slot.
type CountTracer struct {
	lock   sync.Mutex
	counts []LineCount
}

// NewCountTracer creates a new CountTracer
func NewCountTracer() *CountTracer {
	return &CountTracer{}
}

// Func updates the counters.
func (t *CountTracer) Func(ctx hooking.HookCtx) {
	t.lock.Lock()
	defer t.lock.Unlock()

	switch ctx.Pos {
	case cache.HookPosReset:
		t.counts = make([]LineCount, ctx.Item.(int))
	case cache.HookPosAccess:
		t.countAccess(ctx.Item.(cache.AccessEvent))
	}
}

func (t *CountTracer) countAccess(event cache.AccessEvent) {
	for len(t.counts) <= event.LineIndex {
		t.counts = append(t.counts, LineCount{})
	}

	c := &t.counts[event.LineIndex]

	if event.IsHit() {
		c.Hits++
		return
	}

	c.Misses++
	if event.Evicted {
		c.Evictions++
	}
}

// Counts returns a copy of the per-line counters.
func (t *CountTracer) Counts() []LineCount {
	t.lock.Lock()
	defer t.lock.Unlock()

	counts := make([]LineCount, len(t.counts))
	copy(counts, t.counts)

	return counts
}
