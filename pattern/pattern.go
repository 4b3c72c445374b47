// Package pattern generates the block sequences that the simulator replays
// against a cache.
package pattern

import (
	"fmt"
	"strings"

	"github.com/sarchlab/dmcache/cache"
)

// A Pattern names one of the benchmark workloads.
type Pattern int

// The available patterns, in menu order.
const (
	Sequential Pattern = iota + 1
	Random
	MidRepeat
)

// Literal shape of the workloads. Each workload touches 2N distinct blocks
// (the span) and is repeated Repeats times.
const (
	Repeats         = 4
	MidRepeatPasses = 2
	SpanFactor      = 2
	RandomFactor    = 4
)

// All returns every pattern in menu order.
func All() []Pattern {
	return []Pattern{Sequential, Random, MidRepeat}
}

func (p Pattern) String() string {
	switch p {
	case Sequential:
		return "sequential"
	case Random:
		return "random"
	case MidRepeat:
		return "mid-repeat"
	default:
		return fmt.Sprintf("pattern(%d)", int(p))
	}
}

// ParsePattern converts a pattern name into a Pattern. Names are case
// insensitive and the dash in mid-repeat is optional.
func ParsePattern(name string) (Pattern, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sequential", "seq":
		return Sequential, nil
	case "random", "rand":
		return Random, nil
	case "mid-repeat", "midrepeat", "mid_repeat":
		return MidRepeat, nil
	default:
		return 0, fmt.Errorf("%w: unknown pattern %q",
			cache.ErrInvalidArgument, name)
	}
}

// Length returns the number of accesses that the pattern produces for a cache
// with numLines lines.
func (p Pattern) Length(numLines int) int {
	switch p {
	case Sequential:
		return Repeats * SpanFactor * numLines
	case Random:
		return RandomFactor * numLines
	case MidRepeat:
		perRepeat := numLines + MidRepeatPasses*(numLines-1) +
			(SpanFactor-1)*numLines
		return Repeats * perRepeat
	default:
		return 0
	}
}
