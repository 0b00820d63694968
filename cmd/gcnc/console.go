package main

import (
	"io"
	"log"

	"github.com/spf13/cobra"

	"github.com/mastercactapus/gcinterp/config"
	"github.com/mastercactapus/gcinterp/console"
	"github.com/mastercactapus/gcinterp/vm"
)

type stdio struct {
	io.Reader
	io.Writer
}

func newConsoleCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	var port string
	var baud int

	cmd := &cobra.Command{
		Use:   "console",
		Short: "Interpret lines from a serial port or stdin, answering each with ok or error",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("port") {
				cfg.Console.Port = port
			}
			if flags.Changed("baud") {
				cfg.Console.Baud = baud
			}

			ctx := cmd.Context()
			m := vm.NewMachine(cfg.Interpreter.Options())

			if cfg.Console.Port == "" {
				return console.Serve(ctx, stdio{cmd.InOrStdin(), cmd.OutOrStdout()}, m)
			}

			p, err := console.OpenSerial(cfg.Console.Port, cfg.Console.Baud)
			if err != nil {
				return err
			}
			defer p.Close()

			// unblock the pending read on interrupt
			go func() {
				<-ctx.Done()
				p.Close()
			}()

			log.Printf("serving %s at %d baud", cfg.Console.Port, cfg.Console.Baud)
			err = console.Serve(ctx, p, m)
			if ctx.Err() != nil {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "Serial device to serve (default stdin/stdout).")
	cmd.Flags().IntVar(&baud, "baud", 0, "Serial baud rate (default from config, 115200).")
	return cmd
}
