package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/handiism/tunetracer/internal/cli"
	"github.com/handiism/tunetracer/internal/game"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		if errors.Is(err, game.ErrSessionCancelled) {
			os.Exit(130)
		}
		os.Exit(1)
	}
}
