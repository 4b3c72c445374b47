package simulation

import (
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sarchlab/dmcache/cache"
	"github.com/sarchlab/dmcache/hooking"
	"github.com/sarchlab/dmcache/monitoring"
	"github.com/sarchlab/dmcache/pattern"
	"github.com/sarchlab/dmcache/tracing"
)

// Builder can be used to build a simulation.
type Builder struct {
	cache        *cache.Cache
	generator    *pattern.Generator
	memoryBlocks int
	tickInterval time.Duration
	monitor      *monitoring.Monitor
	dbTracer     *tracing.DBTracer
	hooks        []hooking.Hook
}

// MakeBuilder creates a new builder. Unless configured otherwise, the
// simulation uses a default 4-line cache, 1024 memory blocks, a time-seeded
// generator, and no pacing.
func MakeBuilder() Builder {
	return Builder{
		memoryBlocks: 1024,
	}
}

// WithCache sets the cache to simulate.
func (b Builder) WithCache(c *cache.Cache) Builder {
	b.cache = c
	return b
}

// WithGenerator sets the pattern generator.
func (b Builder) WithGenerator(g *pattern.Generator) Builder {
	b.generator = g
	return b
}

// WithMemoryBlocks sets the number of memory blocks that random workloads
// draw from.
func (b Builder) WithMemoryBlocks(n int) Builder {
	b.memoryBlocks = n
	return b
}

// WithTickInterval sets the time between two accesses. Zero replays as fast
// as possible.
func (b Builder) WithTickInterval(d time.Duration) Builder {
	b.tickInterval = d
	return b
}

// WithMonitor attaches a monitor to the cache and reports progress to it.
func (b Builder) WithMonitor(m *monitoring.Monitor) Builder {
	b.monitor = m
	return b
}

// WithDBTracer records every run into a database.
func (b Builder) WithDBTracer(t *tracing.DBTracer) Builder {
	b.dbTracer = t
	return b
}

// WithHook attaches an extra hook, such as a log tracer, to the cache.
func (b Builder) WithHook(h hooking.Hook) Builder {
	b.hooks = append(b.hooks[:len(b.hooks):len(b.hooks)], h)
	return b
}

func (b Builder) parametersMustBeValid() error {
	if b.tickInterval < 0 {
		return fmt.Errorf("%w: tick interval must not be negative",
			cache.ErrInvalidArgument)
	}

	return nil
}

// Build builds the simulation. Building twice with the same cache yields two
// simulations sharing that cache and its hooks.
func (b Builder) Build() (*Simulation, error) {
	err := b.parametersMustBeValid()
	if err != nil {
		return nil, err
	}

	s := &Simulation{
		id:           xid.New().String(),
		cache:        b.cache,
		generator:    b.generator,
		memoryBlocks: b.memoryBlocks,
		tickInterval: b.tickInterval,
		monitor:      b.monitor,
		dbTracer:     b.dbTracer,
	}

	if s.cache == nil {
		s.cache, err = cache.MakeBuilder().Build("Cache")
		if err != nil {
			return nil, err
		}
	}

	if s.generator == nil {
		s.generator = pattern.NewGenerator(nil)
	}

	for _, h := range b.hooks {
		attachHook(s.cache, h)
	}

	if s.monitor != nil {
		attachHook(s.cache, s.monitor)
	}

	if s.dbTracer != nil {
		attachHook(s.cache, s.dbTracer)
	}

	return s, nil
}

// attachHook lets a builder be reused with the same cache. Hooks that are
// already attached stay attached once.
func attachHook(c *cache.Cache, h hooking.Hook) {
	if !c.HasHook(h) {
		c.AcceptHook(h)
	}
}
