// Package cache models a direct-mapped cache. Every memory block maps to
// exactly one line, selected by block mod N, so a miss always replaces the
// occupant of that line.
package cache

import (
	"fmt"

	"github.com/sarchlab/dmcache/hooking"
)

// EmptyTag is the tag held by a line that has never been filled.
const EmptyTag = -1

// HookPosAccess marks a hook invocation after an access. The hook item is the
// AccessEvent.
var HookPosAccess = &hooking.HookPos{Name: "Cache Access"}

// HookPosReset marks a hook invocation after a reset. The hook item is the new
// number of lines.
var HookPosReset = &hooking.HookPos{Name: "Cache Reset"}

// A Line is the information that is associated with a cache line.
type Line struct {
	Valid bool `json:"valid"`
	Tag   int  `json:"tag"`
}

// A Cache is a fixed number of lines indexed by block number. It only tracks
// which block is stored where; it holds no data and is not safe for
// concurrent use.
type Cache struct {
	hooking.HookableBase

	name        string
	lines       []Line
	stats       Stats
	hitLatency  float64
	missLatency float64
}

// Name returns the name of the cache.
func (c *Cache) Name() string {
	return c.name
}

// NumLines returns the number of lines in the cache.
func (c *Cache) NumLines() int {
	return len(c.lines)
}

// HitLatency returns the time that a hit takes, in nanoseconds.
func (c *Cache) HitLatency() float64 {
	return c.hitLatency
}

// MissLatency returns the time that a miss takes, in nanoseconds.
func (c *Cache) MissLatency() float64 {
	return c.missLatency
}

// Reset invalidates every line, resizes the cache to numLines lines, and
// zeroes the statistics.
func (c *Cache) Reset(numLines int) error {
	if numLines <= 0 {
		return fmt.Errorf("%w: cache must have at least one line, got %d",
			ErrInvalidArgument, numLines)
	}

	c.lines = make([]Line, numLines)
	for i := range c.lines {
		c.lines[i] = Line{Valid: false, Tag: EmptyTag}
	}

	c.stats = Stats{}

	c.invokeHook(HookPosReset, numLines)

	return nil
}

// Access looks up a block. On a miss, the block is loaded into the only line
// it can map to, evicting whatever was there.
func (c *Cache) Access(block int) (AccessEvent, error) {
	if block < 0 {
		return AccessEvent{}, fmt.Errorf("%w: block %d is negative",
			ErrInvalidArgument, block)
	}

	index := c.indexOf(block)
	line := &c.lines[index]

	event := AccessEvent{
		Block:      block,
		LineIndex:  index,
		EvictedTag: EmptyTag,
	}

	c.stats.TotalAccesses++

	if line.Valid && line.Tag == block {
		event.Outcome = Hit
		c.stats.Hits++
	} else {
		event.Outcome = Miss
		c.stats.Misses++

		if line.Valid {
			event.Evicted = true
			event.EvictedTag = line.Tag
		}

		line.Valid = true
		line.Tag = block
	}

	c.invokeHook(HookPosAccess, event)

	return event, nil
}

func (c *Cache) indexOf(block int) int {
	return block % len(c.lines)
}

// Stats returns a snapshot of the running counters.
func (c *Cache) Stats() Stats {
	return c.stats
}

// DerivedMetrics returns the hit rate, miss rate, and access times implied by
// the current counters.
func (c *Cache) DerivedMetrics() Metrics {
	return ComputeMetrics(c.stats, c.hitLatency, c.missLatency)
}

// Lines returns a copy of all the lines.
func (c *Cache) Lines() []Line {
	lines := make([]Line, len(c.lines))
	copy(lines, c.lines)

	return lines
}

// Line returns the line at the given index.
func (c *Cache) Line(index int) (Line, error) {
	if index < 0 || index >= len(c.lines) {
		return Line{}, fmt.Errorf("%w: line %d out of range [0, %d)",
			ErrInvalidArgument, index, len(c.lines))
	}

	return c.lines[index], nil
}

func (c *Cache) invokeHook(pos *hooking.HookPos, item any) {
	if c.NumHooks() == 0 {
		return
	}

	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    pos,
		Item:   item,
	})
}
