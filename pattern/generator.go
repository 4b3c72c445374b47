package pattern

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/sarchlab/dmcache/cache"
)

// A Generator produces block sequences. The random source is injectable so
// that random workloads can be replayed.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a Generator that draws random blocks from src. A nil
// src is replaced with a time-seeded source.
func NewGenerator(src rand.Source) *Generator {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}

	return &Generator{rng: rand.New(src)}
}

// NewSeededGenerator creates a Generator whose random workloads are fully
// determined by seed.
func NewSeededGenerator(seed int64) *Generator {
	return NewGenerator(rand.NewSource(seed))
}

// Generate returns the whole sequence of blocks for the pattern. numLines is
// the number of cache lines; memoryBlocks bounds the random pattern and is
// ignored by the others.
func (g *Generator) Generate(
	p Pattern,
	numLines int,
	memoryBlocks int,
) ([]int, error) {
	if numLines <= 0 {
		return nil, fmt.Errorf("%w: number of lines must be positive, got %d",
			cache.ErrInvalidArgument, numLines)
	}

	switch p {
	case Sequential:
		return sequential(numLines), nil
	case Random:
		return g.random(numLines, memoryBlocks)
	case MidRepeat:
		return midRepeat(numLines), nil
	default:
		return nil, fmt.Errorf("%w: unknown pattern %d",
			cache.ErrInvalidArgument, int(p))
	}
}

func sequential(numLines int) []int {
	span := SpanFactor * numLines
	blocks := make([]int, 0, Sequential.Length(numLines))

	for range Repeats {
		for i := 0; i < span; i++ {
			blocks = append(blocks, i)
		}
	}

	return blocks
}

func (g *Generator) random(numLines, memoryBlocks int) ([]int, error) {
	if memoryBlocks < 1 {
		return nil, fmt.Errorf("%w: memory blocks must be at least 1, got %d",
			cache.ErrInvalidArgument, memoryBlocks)
	}

	blocks := make([]int, Random.Length(numLines))
	for i := range blocks {
		blocks[i] = g.rng.Intn(memoryBlocks)
	}

	return blocks, nil
}

func midRepeat(numLines int) []int {
	span := SpanFactor * numLines
	blocks := make([]int, 0, MidRepeat.Length(numLines))

	for range Repeats {
		for i := 0; i < numLines; i++ {
			blocks = append(blocks, i)
		}

		for range MidRepeatPasses {
			for i := 1; i < numLines; i++ {
				blocks = append(blocks, i)
			}
		}

		for i := numLines; i < span; i++ {
			blocks = append(blocks, i)
		}
	}

	return blocks
}
