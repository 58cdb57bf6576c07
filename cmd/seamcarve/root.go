package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/seamcarve/seamcarve/config"
)

const helpBanner = `
┌─┐┌─┐┌─┐┌┬┐┌─┐┌─┐┬─┐┬  ┬┌─┐
└─┐├┤ ├─┤│││├─ ├─┤├┬┘└┐┌┘├┤
└─┘└─┘┴ ┴┴ ┴└─┘┴ ┴┴└─ └┘ └─┘

Content aware image resize tool.
    Version: %s
`

// app holds the state shared by all commands.
type app struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *log.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{cfg: config.DefaultConfig()}

	root := &cobra.Command{
		Use:           "seamcarve",
		Short:         "Content aware image resizing by seam carving",
		Long:          fmt.Sprintf(helpBanner, Version),
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg

			level := log.InfoLevel
			if a.verbose || cfg.Log.Verbose {
				level = log.DebugLevel
			}
			a.logger = newLogger(os.Stderr, level)
			cmd.SetContext(withLogger(cmd.Context(), a.logger))
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "seamcarve.yaml", "configuration file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(a.carveCmd())
	root.AddCommand(a.compareCmd())
	root.AddCommand(a.interactiveCmd())
	root.AddCommand(a.menuCmd())
	root.AddCommand(a.serveCmd())

	return root
}

// newLogger creates a logger with timestamp formatting.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, falling back to log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
