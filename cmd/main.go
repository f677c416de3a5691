package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/stripd/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	runner := NewRunner(RunnerOpts{Logger: logger})

	app := &cli.Command{
		Name:     "stripd",
		Usage:    "Drive an animated LED strip and serve its configuration over HTTP",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
