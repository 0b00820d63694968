package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/mastercactapus/gcinterp/config"
	"github.com/mastercactapus/gcinterp/history"
	"github.com/mastercactapus/gcinterp/job"
	"github.com/mastercactapus/gcinterp/server"
)

func newServeCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	var addr, dir, hist string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the interpreter and job store over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("addr") {
				cfg.Server.Addr = addr
			}
			if flags.Changed("dir") {
				cfg.Server.DataDir = dir
			}
			if flags.Changed("history") {
				cfg.Server.History = hist
			}

			srvCfg := server.Config{
				Options: cfg.Interpreter.Options(),
				Store:   &job.Store{Dir: cfg.Server.DataDir},
			}
			if cfg.Server.History != "" {
				db, err := history.Open(cfg.Server.History)
				if err != nil {
					return err
				}
				defer db.Close()
				srvCfg.History = db
			}

			s := server.New(srvCfg)
			defer s.Close()

			return listen(cmd.Context(), cfg.Server.Addr, s)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Address to bind the server to (default from config, :9091).")
	cmd.Flags().StringVar(&dir, "dir", "", "Data directory to use (default from config, ./data).")
	cmd.Flags().StringVar(&hist, "history", "", "SQLite run log path; empty disables it.")
	return cmd
}

func listen(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr: addr,
		Handler: http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "*")
			log.Printf("%s %s - %s", req.Method, req.URL.Path, req.RemoteAddr)
			h.ServeHTTP(w, req)
		}),
	}

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := srv.Shutdown(sctx)
		if err != nil {
			log.Println("ERROR: shutdown:", err)
		}
	}()

	log.Println("listening on", addr)
	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
