package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/mastercactapus/gcinterp/config"
)

func main() {
	log.SetFlags(log.Lshortfile)

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:           "gcnc",
		Short:         "G-code line interpreter",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          func(cmd *cobra.Command, _ []string) error { return cmd.Help() },
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "gcnc.yaml", "Path to the YAML config file.")

	loadConfig := func() (*config.Config, error) {
		return config.Load(cfgPath)
	}

	root.AddCommand(
		newRunCmd(loadConfig),
		newServeCmd(loadConfig),
		newConsoleCmd(loadConfig),
	)
	return root
}
