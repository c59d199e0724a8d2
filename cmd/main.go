package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/desertthunder/libsort/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)
	app := newApp(NewRunner(RunnerOpts{Logger: logger}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}

func newApp(runner *Runner) *cli.Command {
	return &cli.Command{
		Name:     "libsort",
		Usage:    "Sort an iTunes library export into BPM and genre playlists",
		Version:  "0.3.0",
		Flags:    globalFlags(),
		Action:   runner.Generate,
		Commands: runner.register(),
	}
}
