// Package simulation drives a cache with generated workloads. It replays
// every block of a pattern in order and collects what happened.
package simulation

import (
	"context"
	"time"

	"github.com/rs/xid"
	"github.com/sarchlab/dmcache/cache"
	"github.com/sarchlab/dmcache/monitoring"
	"github.com/sarchlab/dmcache/pattern"
	"github.com/sarchlab/dmcache/tracing"
)

// A RunReport is the outcome of replaying one pattern.
type RunReport struct {
	RunID        string
	Pattern      pattern.Pattern
	NumLines     int
	MemoryBlocks int
	Sequence     []int
	Events       []cache.AccessEvent
	Stats        cache.Stats
	Metrics      cache.Metrics
	Lines        []cache.Line

	// Completed is false when the run was cancelled before the end of the
	// sequence.
	Completed bool
}

// A Simulation owns a cache and replays patterns against it, one access at a
// time.
type Simulation struct {
	id           string
	cache        *cache.Cache
	generator    *pattern.Generator
	memoryBlocks int
	tickInterval time.Duration

	monitor  *monitoring.Monitor
	dbTracer *tracing.DBTracer
}

// ID returns the ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// Cache returns the simulated cache.
func (s *Simulation) Cache() *cache.Cache {
	return s.cache
}

// Monitor returns the monitor, or nil when monitoring is off.
func (s *Simulation) Monitor() *monitoring.Monitor {
	return s.monitor
}

// Run empties the cache, generates the pattern, and replays it. When a tick
// interval is set, one access is applied per tick. A cancelled ctx stops the
// replay between two accesses; the partial report is returned together with
// the context error.
func (s *Simulation) Run(ctx context.Context, p pattern.Pattern) (RunReport, error) {
	numLines := s.cache.NumLines()

	err := s.cache.Reset(numLines)
	if err != nil {
		return RunReport{}, err
	}

	sequence, err := s.generator.Generate(p, numLines, s.memoryBlocks)
	if err != nil {
		return RunReport{}, err
	}

	report := RunReport{
		RunID:        xid.New().String(),
		Pattern:      p,
		NumLines:     numLines,
		MemoryBlocks: s.memoryBlocks,
		Sequence:     sequence,
		Events:       make([]cache.AccessEvent, 0, len(sequence)),
	}

	if s.dbTracer != nil {
		s.dbTracer.StartRun(report.RunID)
	}

	err = s.replay(ctx, &report)

	s.collect(&report)

	return report, err
}

func (s *Simulation) replay(ctx context.Context, report *RunReport) error {
	var bar *monitoring.ProgressBar
	if s.monitor != nil {
		bar = s.monitor.CreateProgressBar(
			report.Pattern.String(), uint64(len(report.Sequence)))
		defer s.monitor.CompleteProgressBar(bar)
	}

	var ticks <-chan time.Time
	if s.tickInterval > 0 {
		ticker := time.NewTicker(s.tickInterval)
		defer ticker.Stop()

		ticks = ticker.C
	}

	for _, block := range report.Sequence {
		err := waitForTick(ctx, ticks)
		if err != nil {
			return err
		}

		event, err := s.cache.Access(block)
		if err != nil {
			return err
		}

		report.Events = append(report.Events, event)

		if bar != nil {
			bar.IncrementFinished(1)
		}
	}

	report.Completed = true

	return nil
}

func waitForTick(ctx context.Context, ticks <-chan time.Time) error {
	if ticks == nil {
		return ctx.Err()
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-ticks:
		return nil
	}
}

func (s *Simulation) collect(report *RunReport) {
	report.Stats = s.cache.Stats()
	report.Metrics = s.cache.DerivedMetrics()
	report.Lines = s.cache.Lines()

	if s.dbTracer == nil {
		return
	}

	s.dbTracer.RecordRun(tracing.RunSummary{
		RunID:        report.RunID,
		Pattern:      report.Pattern.String(),
		NumLines:     report.NumLines,
		MemoryBlocks: report.MemoryBlocks,
		Stats:        report.Stats,
		Metrics:      report.Metrics,
		Completed:    report.Completed,
	})
}

// RunAll replays the patterns one after another, stopping at the first
// error. onRun, when not nil, is called after every run that started,
// including one that was stopped early. The returned reports include that
// partial run.
func (s *Simulation) RunAll(
	ctx context.Context,
	patterns []pattern.Pattern,
	onRun func(RunReport),
) ([]RunReport, error) {
	reports := make([]RunReport, 0, len(patterns))

	for _, p := range patterns {
		report, err := s.Run(ctx, p)

		if report.RunID != "" {
			reports = append(reports, report)

			if onRun != nil {
				onRun(report)
			}
		}

		if err != nil {
			return reports, err
		}
	}

	return reports, nil
}
