package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/seamcarve/seamcarve"
	"github.com/seamcarve/seamcarve/server"
)

func (a *app) serveCmd() *cobra.Command {
	var addr, strategy string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve seam carving and interactive resize sessions over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = a.cfg.Server.Addr
			}
			if !cmd.Flags().Changed("strategy") {
				strategy = a.cfg.Carve.Strategy
			}
			s, err := seamcarve.ParseStrategy(strategy)
			if err != nil {
				return err
			}

			logger := loggerFromContext(cmd.Context())
			srv := server.New(seamcarve.Options{
				Strategy:  s,
				Workers:   a.cfg.Carve.Workers,
				BlurSigma: a.cfg.Carve.Blur,
				Logger:    logger,
			}, server.Config{
				MaxUploadBytes: int64(a.cfg.Server.MaxUploadMB) << 20,
				MaxPixels:      a.cfg.Server.MaxPixels,
				SessionTTL:     time.Duration(a.cfg.Server.SessionTTLMinutes) * time.Minute,
				Debounce:       time.Duration(a.cfg.Interactive.DebounceMS) * time.Millisecond,
				Quality:        a.cfg.Output.Quality,
				Logger:         logger,
			})

			err = srv.ListenAndServe(cmd.Context(), addr)
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&strategy, "strategy", "dp", "seam finder used by sessions")

	return cmd
}
