package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/desertthunder/libsort/internal/library"
	"github.com/desertthunder/libsort/internal/models"
	"github.com/desertthunder/libsort/internal/shared"
	"github.com/desertthunder/libsort/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Generate runs the full pipeline and writes one playlist per bucket.
func (r *Runner) Generate(ctx context.Context, cmd *cli.Command) error {
	return r.runEngine(ctx, cmd, func(e *tasks.Engine, progress chan<- tasks.ProgressUpdate) (*models.Report, error) {
		return e.Run(ctx, progress)
	})
}

// Analyze prints the report for the library without writing playlists.
func (r *Runner) Analyze(ctx context.Context, cmd *cli.Command) error {
	return r.runEngine(ctx, cmd, func(e *tasks.Engine, progress chan<- tasks.ProgressUpdate) (*models.Report, error) {
		return e.Analyze(ctx, progress)
	})
}

// Dedupe writes a deduplicated, shuffled copy of every text playlist export in a directory.
func (r *Runner) Dedupe(ctx context.Context, cmd *cli.Command) error {
	dir := cmd.StringArg("dir")
	if dir == "" {
		return fmt.Errorf("%w: directory of playlist exports", shared.ErrMissingArgument)
	}

	opts := library.TextExportOptions{
		VolumePrefix: cmd.String("volume-prefix"),
		Extensions:   cmd.StringSlice("ext"),
	}
	return r.runEngine(ctx, cmd, func(e *tasks.Engine, progress chan<- tasks.ProgressUpdate) (*models.Report, error) {
		return e.DedupeExports(ctx, dir, opts, progress)
	})
}

func (r *Runner) runEngine(
	ctx context.Context,
	cmd *cli.Command,
	run func(*tasks.Engine, chan<- tasks.ProgressUpdate) (*models.Report, error),
) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	engine, err := r.newEngine(cmd, config)
	if err != nil {
		return err
	}

	progress, done := r.watchProgress()
	report, err := run(engine, progress)
	done()
	if err != nil {
		return err
	}

	return r.writeReport(cmd, report)
}

// Init writes the embedded default configuration to --config, or to the XDG config directory with --xdg.
func (r *Runner) Init(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if cmd.Bool("xdg") {
		p, err := xdg.ConfigFile(filepath.Join(shared.AppName, "config.toml"))
		if err != nil {
			return fmt.Errorf("failed to locate config directory: %w", err)
		}
		path = p
	}

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", path)
	return r.writePlain("Wrote %s\n", path)
}
