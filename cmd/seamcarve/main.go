package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
)

// Version indicates the current build version.
var Version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130) // Standard shell convention for SIGINT
		}
		printError("%v", err)
		os.Exit(1)
	}
}
