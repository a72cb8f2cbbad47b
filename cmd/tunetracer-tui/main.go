package main

import (
	"fmt"
	"os"

	"github.com/handiism/tunetracer/internal/config"
	"github.com/handiism/tunetracer/internal/tui"
)

func main() {
	settings, err := config.Load(config.DefaultPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if err := tui.Run(settings, settings.Game.Source); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
