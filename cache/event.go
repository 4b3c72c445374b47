package cache

import "fmt"

// Outcome tells whether an access found its block in the cache.
type Outcome int

// Possible outcomes of an access.
const (
	Miss Outcome = iota
	Hit
)

func (o Outcome) String() string {
	switch o {
	case Hit:
		return "Hit"
	case Miss:
		return "Miss"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// An AccessEvent describes what a single access did to the cache. It is not
// retained by the cache.
type AccessEvent struct {
	Block     int
	LineIndex int
	Outcome   Outcome

	// Evicted is set when a miss replaced a valid line. EvictedTag is the
	// block that used to live there, or EmptyTag.
	Evicted    bool
	EvictedTag int
}

// IsHit returns true if the access hit.
func (e AccessEvent) IsHit() bool {
	return e.Outcome == Hit
}

// String formats the event as one line of an access log.
func (e AccessEvent) String() string {
	if e.Outcome == Hit {
		return fmt.Sprintf("Hit: Memory Block %d found in Cache Block %d",
			e.Block, e.LineIndex)
	}

	return fmt.Sprintf("Miss: Memory Block %d loaded into Cache Block %d",
		e.Block, e.LineIndex)
}
