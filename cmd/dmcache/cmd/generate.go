package cmd

import (
	"fmt"

	"github.com/sarchlab/dmcache/pattern"
	"github.com/sarchlab/dmcache/report"
	"github.com/spf13/cobra"
)

func newGenerateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "generate <pattern>",
		Short: "Print the block sequence of a pattern.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := pattern.ParsePattern(args[0])
			if err != nil {
				return err
			}

			blocks, err := newGenerator(opts.cfg).
				Generate(p, opts.cfg.NumLines, opts.cfg.MemoryBlocks)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), report.RenderSequence(p, blocks))

			return nil
		},
	}
}

func newPatternsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "patterns",
		Short: "List the available patterns.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, p := range pattern.All() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %d accesses\n",
					p, p.Length(opts.cfg.NumLines))
			}
		},
	}
}
