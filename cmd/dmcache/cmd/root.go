// Package cmd provides the command-line interface for dmcache.
package cmd

import (
	"github.com/sarchlab/dmcache/config"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// options holds the flags that are not part of the simulator config.
type options struct {
	configFile string
	envFile    string
	cfg        config.Config
}

// NewRootCmd creates the dmcache command with all of its subcommands.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "dmcache",
		Short: "dmcache simulates a direct-mapped cache.",
		Long: `dmcache replays sequential, random, and mid-repeat memory ` +
			`access patterns against a direct-mapped cache and reports ` +
			`hits, misses, and access times.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd.Root())
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "",
		"Config file (default ./dmcache.yaml)")
	flags.StringVar(&opts.envFile, "env-file", "",
		"Environment file to load (default ./.env)")
	flags.Int("lines", config.DefaultNumLines, "Number of cache lines (N)")
	flags.String("memory-blocks", "1024",
		"Number of memory blocks for random accesses (minimum 1024)")
	flags.Int64("seed", 0, "Seed for random accesses (default random)")
	flags.Duration("tick", 0,
		"Time between two accesses, e.g. 200ms (default no pacing)")
	flags.Bool("record", false, "Record accesses into a SQLite database")
	flags.String("record-path", "",
		"Database name for --record, without extension")
	flags.Bool("monitor", false, "Serve the cache state over HTTP")
	flags.Int("monitor-port", 0, "Port of the monitoring server")
	flags.Bool("open-browser", false, "Open the monitor in a browser")
	flags.BoolP("verbose", "v", false, "Log every access")

	rootCmd.AddCommand(newRunCmd(opts))
	rootCmd.AddCommand(newGenerateCmd(opts))
	rootCmd.AddCommand(newPatternsCmd(opts))

	return rootCmd
}

var flagKeys = map[string]string{
	"lines":         config.KeyLines,
	"memory-blocks": config.KeyMemoryBlocks,
	"seed":          config.KeySeed,
	"tick":          config.KeyTick,
	"record":        config.KeyRecord,
	"record-path":   config.KeyRecordPath,
	"monitor":       config.KeyMonitor,
	"monitor-port":  config.KeyMonitorPort,
	"open-browser":  config.KeyOpenBrowser,
	"verbose":       config.KeyVerbose,
}

func (o *options) load(root *cobra.Command) error {
	var envFiles []string
	if o.envFile != "" {
		envFiles = append(envFiles, o.envFile)
	}

	err := config.LoadDotEnv(envFiles...)
	if err != nil {
		return err
	}

	v, err := config.NewViper(o.configFile)
	if err != nil {
		return err
	}

	for flagName, key := range flagKeys {
		err = v.BindPFlag(key, root.PersistentFlags().Lookup(flagName))
		if err != nil {
			return err
		}
	}

	o.cfg, err = config.Load(v)

	return err
}

// Execute runs the command line and exits. Exit handlers registered with
// atexit, such as recorder flushes, run before the process ends.
func Execute() {
	err := NewRootCmd().Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
