package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/sarchlab/dmcache/cache"
	"github.com/sarchlab/dmcache/config"
	"github.com/sarchlab/dmcache/datarecording"
	"github.com/sarchlab/dmcache/monitoring"
	"github.com/sarchlab/dmcache/pattern"
	"github.com/sarchlab/dmcache/report"
	"github.com/sarchlab/dmcache/simulation"
	"github.com/sarchlab/dmcache/tracing"
	"github.com/spf13/cobra"
)

func newRunCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run [pattern...]",
		Short: "Replay access patterns against the cache.",
		Long: "`run` replays the given patterns (sequential, random, " +
			"mid-repeat) in order, emptying the cache before each one. " +
			"Without arguments, all three patterns are replayed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			patterns, err := parsePatterns(args)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return run(ctx, cmd.OutOrStdout(), opts.cfg, patterns)
		},
	}
}

func parsePatterns(args []string) ([]pattern.Pattern, error) {
	if len(args) == 0 {
		return pattern.All(), nil
	}

	patterns := make([]pattern.Pattern, 0, len(args))
	for _, a := range args {
		p, err := pattern.ParsePattern(a)
		if err != nil {
			return nil, err
		}

		patterns = append(patterns, p)
	}

	return patterns, nil
}

func newGenerator(cfg config.Config) *pattern.Generator {
	if cfg.HasSeed {
		return pattern.NewSeededGenerator(cfg.Seed)
	}

	return pattern.NewGenerator(nil)
}

func run(
	ctx context.Context,
	out io.Writer,
	cfg config.Config,
	patterns []pattern.Pattern,
) (err error) {
	c, err := cache.MakeBuilder().WithNumLines(cfg.NumLines).Build("Cache")
	if err != nil {
		return err
	}

	counts := tracing.NewCountTracer()

	b := simulation.MakeBuilder().
		WithCache(c).
		WithGenerator(newGenerator(cfg)).
		WithMemoryBlocks(cfg.MemoryBlocks).
		WithTickInterval(cfg.TickInterval).
		WithHook(counts)

	if cfg.Verbose {
		b = b.WithHook(tracing.NewLogTracer(log.New(out, "", 0)).
			WithFormatter(report.RenderEvent))
	}

	if cfg.Record {
		recorder, recErr := datarecording.New(cfg.RecordPath)
		if recErr != nil {
			return recErr
		}

		defer func() {
			err = errors.Join(err, recorder.Close())
		}()

		b = b.WithDBTracer(tracing.NewDBTracer(recorder))
	}

	if cfg.Monitor {
		m, stopMonitor, monErr := startMonitor(cfg)
		if monErr != nil {
			return monErr
		}
		defer stopMonitor()

		b = b.WithMonitor(m)
	}

	sim, err := b.Build()
	if err != nil {
		return err
	}

	_, err = sim.RunAll(ctx, patterns, func(r simulation.RunReport) {
		printReport(out, r, counts.Counts())
	})

	return err
}

func startMonitor(cfg config.Config) (*monitoring.Monitor, func(), error) {
	m := monitoring.NewMonitor()
	if cfg.MonitorPort != 0 {
		m.WithPortNumber(cfg.MonitorPort)
	}

	url, err := m.StartServer()
	if err != nil {
		return nil, nil, err
	}

	if cfg.OpenBrowser {
		err = monitoring.OpenInBrowser(url)
		if err != nil {
			log.Printf("Warning: cannot open browser: %v", err)
		}
	}

	stop := func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		_ = m.Shutdown(ctx)
	}

	return m, stop, nil
}

func printReport(
	out io.Writer,
	r simulation.RunReport,
	counts []tracing.LineCount,
) {
	title := fmt.Sprintf("%s test", r.Pattern)
	if !r.Completed {
		title += fmt.Sprintf(" (stopped after %d of %d accesses)",
			len(r.Events), len(r.Sequence))
	}

	fmt.Fprintln(out, report.RenderTitle(title))
	fmt.Fprintln(out, report.RenderLines(r.Lines, counts))
	fmt.Fprintln(out, report.RenderStats(r.NumLines, r.Stats, r.Metrics))
}
