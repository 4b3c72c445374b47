package cache

import "fmt"

// Builder can build caches.
type Builder struct {
	numLines    int
	hitLatency  float64
	missLatency float64
}

// MakeBuilder creates a new builder with 4 lines, a 1 ns hit latency, and a
// 100 ns miss latency.
func MakeBuilder() Builder {
	return Builder{
		numLines:    4,
		hitLatency:  DefaultHitLatencyNs,
		missLatency: DefaultMissLatencyNs,
	}
}

// WithNumLines sets the number of lines of the cache to build.
func (b Builder) WithNumLines(numLines int) Builder {
	b.numLines = numLines
	return b
}

// WithHitLatency sets the time a hit takes, in nanoseconds.
func (b Builder) WithHitLatency(ns float64) Builder {
	b.hitLatency = ns
	return b
}

// WithMissLatency sets the time a miss takes, in nanoseconds.
func (b Builder) WithMissLatency(ns float64) Builder {
	b.missLatency = ns
	return b
}

func (b Builder) parametersMustBeValid() error {
	if b.hitLatency < 0 || b.missLatency < 0 {
		return fmt.Errorf("%w: latencies must not be negative",
			ErrInvalidArgument)
	}

	return nil
}

// Build builds an empty cache.
func (b Builder) Build(name string) (*Cache, error) {
	err := b.parametersMustBeValid()
	if err != nil {
		return nil, err
	}

	c := &Cache{
		name:        name,
		hitLatency:  b.hitLatency,
		missLatency: b.missLatency,
	}

	err = c.Reset(b.numLines)
	if err != nil {
		return nil, err
	}

	return c, nil
}
