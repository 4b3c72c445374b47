package tracing

import (
	"github.com/rs/xid"
	"github.com/sarchlab/dmcache/cache"
	"github.com/sarchlab/dmcache/datarecording"
	"github.com/sarchlab/dmcache/hooking"
)

// Table names used by the DBTracer.
const (
	AccessTable = "cache_accesses"
	RunTable    = "cache_runs"
)

// accessEntry represents a single access in the database
type accessEntry struct {
	ID         string
	RunID      string
	Seq        uint64
	Block      int
	LineIndex  int
	Outcome    string
	Evicted    bool
	EvictedTag int
}

// runEntry represents the summary of a run in the database
type runEntry struct {
	RunID             string
	Pattern           string
	NumLines          int
	MemoryBlocks      int
	TotalAccesses     uint64
	Hits              uint64
	Misses            uint64
	HitRate           float64
	MissRate          float64
	AvgAccessTimeNs   float64
	TotalAccessTimeNs float64
	Completed         bool
}

// RunSummary describes a run. A run that was stopped early has Completed
// unset and counts only the accesses that were applied.
type RunSummary struct {
	RunID        string
	Pattern      string
	NumLines     int
	MemoryBlocks int
	Stats        cache.Stats
	Metrics      cache.Metrics
	Completed    bool
}

// A DBTracer is a hook that records every access of a cache into a
// DataRecorder.
type DBTracer struct {
	dataRecorder datarecording.DataRecorder
	runID        string
	seq          uint64
}

// NewDBTracer creates a new DBTracer and the tables it writes to.
func NewDBTracer(dataRecorder datarecording.DataRecorder) *DBTracer {
	t := &DBTracer{
		dataRecorder: dataRecorder,
	}

	t.dataRecorder.CreateTable(AccessTable, accessEntry{})
	t.dataRecorder.CreateTable(RunTable, runEntry{})

	return t
}

// StartRun tags the following accesses with runID and restarts the sequence
// numbers.
func (t *DBTracer) StartRun(runID string) {
	t.runID = runID
	t.seq = 0
}

// Func records an access.
func (t *DBTracer) Func(ctx hooking.HookCtx) {
	if ctx.Pos != cache.HookPosAccess {
		return
	}

	event := ctx.Item.(cache.AccessEvent)

	entry := accessEntry{
		ID:         xid.New().String(),
		RunID:      t.runID,
		Seq:        t.seq,
		Block:      event.Block,
		LineIndex:  event.LineIndex,
		Outcome:    event.Outcome.String(),
		Evicted:    event.Evicted,
		EvictedTag: event.EvictedTag,
	}
	t.seq++

	t.dataRecorder.InsertData(AccessTable, entry)
}

// RecordRun records the summary of a run.
func (t *DBTracer) RecordRun(s RunSummary) {
	entry := runEntry{
		RunID:             s.RunID,
		Pattern:           s.Pattern,
		NumLines:          s.NumLines,
		MemoryBlocks:      s.MemoryBlocks,
		TotalAccesses:     s.Stats.TotalAccesses,
		Hits:              s.Stats.Hits,
		Misses:            s.Stats.Misses,
		HitRate:           s.Metrics.HitRate,
		MissRate:          s.Metrics.MissRate,
		AvgAccessTimeNs:   s.Metrics.AvgAccessTimeNs,
		TotalAccessTimeNs: s.Metrics.TotalAccessTimeNs,
		Completed:         s.Completed,
	}

	t.dataRecorder.InsertData(RunTable, entry)
}

// Flush writes buffered records to the database.
func (t *DBTracer) Flush() {
	t.dataRecorder.Flush()
}
