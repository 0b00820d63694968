package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mastercactapus/gcinterp/config"
	"github.com/mastercactapus/gcinterp/gcode"
	"github.com/mastercactapus/gcinterp/job"
	"github.com/mastercactapus/gcinterp/report"
	"github.com/mastercactapus/gcinterp/vm"
)

func newRunCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	var asJSON, verbose bool

	cmd := &cobra.Command{
		Use:   "run FILE...",
		Short: "Interpret G-code files and print one report per line",
		Long:  "Interpret G-code files and print one report per line. Use - to read stdin.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			var rep report.Reporter
			if asJSON {
				rep = report.NewJSON(out)
			} else {
				c := report.NewConsole(out)
				c.Verbose = verbose
				rep = c
			}

			// modal state carries across files
			m := vm.NewMachine(cfg.Interpreter.Options())
			for _, name := range args {
				sum, err := runFile(cmd, name, m, rep)
				if err != nil {
					return err
				}
				if !asJSON {
					printSummary(cmd.ErrOrStderr(), name, sum, m.Options().Scale)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print one JSON object per line instead of text.")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Also report blank lines.")
	return cmd
}

func runFile(cmd *cobra.Command, name string, m *vm.Machine, rep report.Reporter) (*job.Summary, error) {
	var r io.Reader = cmd.InOrStdin()
	if name != "-" {
		fd, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		defer fd.Close()
		r = fd
	}

	sum, err := job.Run(cmd.Context(), gcode.NewParser(r), m, rep)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return sum, nil
}

func printSummary(w io.Writer, name string, sum *job.Summary, scale gcode.Fixed) {
	fmt.Fprintf(w, "%s: %d lines", name, sum.Lines)
	for _, o := range vm.Outcomes {
		if n := sum.Count(o); n > 0 {
			fmt.Fprintf(w, ", %d %s", n, o)
		}
	}
	fmt.Fprintf(w, "; final %s F%s\n", sum.Final.Pos.Format(scale), sum.Final.Feed.Format(scale))
}
