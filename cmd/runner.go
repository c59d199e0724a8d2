package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/libsort/internal/formatter"
	"github.com/desertthunder/libsort/internal/library"
	"github.com/desertthunder/libsort/internal/models"
	"github.com/desertthunder/libsort/internal/shared"
	"github.com/desertthunder/libsort/internal/tasks"
	"github.com/desertthunder/libsort/internal/ui"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config *shared.Config
	logger *log.Logger
	output io.Writer
	stat   library.StatFunc
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config   // Used instead of loading --config when set
	Logger *log.Logger      // Progress and diagnostics
	Output io.Writer        // Report destination
	Stat   library.StatFunc // Existence checks, defaults to os.Stat
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config: opts.Config,
		logger: opts.Logger,
		output: opts.Output,
		stat:   opts.Stat,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		analyzeCommand, dedupeCommand, initCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig resolves the configuration for a command: the injected config, else the --config file, else the XDG
// config file, else the defaults. Flag overrides are applied on top and the result is validated.
func (r *Runner) loadConfig(cmd *cli.Command) (*shared.Config, error) {
	var config shared.Config
	switch {
	case r.config != nil:
		config = *r.config
	default:
		explicit := cmd.String("config")
		path := shared.FindConfig(explicit)
		if cmd.IsSet("config") && path != explicit {
			return nil, fmt.Errorf("%w: config file not found: %s", shared.ErrInvalidConfig, explicit)
		}

		if path == "" {
			config = *shared.DefaultConfig()
		} else {
			loaded, err := shared.LoadConfig(path)
			if err != nil {
				return nil, err
			}
			config = *loaded
			r.logger.Debug("loaded config", "path", path)
		}
	}

	if cmd.IsSet("library") {
		config.Library.Path = cmd.String("library")
	}
	if cmd.IsSet("output") {
		config.Output.Dir = cmd.String("output")
	}
	if cmd.IsSet("log-level") {
		config.Log.Level = cmd.String("log-level")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	if err := shared.SetLogLevelString(r.logger, config.Log.Level); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}
	return &config, nil
}

func (r *Runner) newEngine(cmd *cli.Command, config *shared.Config) (*tasks.Engine, error) {
	opts := tasks.EngineOpts{
		Config: config,
		Logger: r.logger,
		Stat:   r.stat,
		DryRun: cmd.Bool("dry-run"),
	}
	if cmd.IsSet("seed") {
		opts.Shuffler = tasks.NewSeededShuffler(uint64(cmd.Int64("seed")))
	}
	return tasks.NewEngine(opts)
}

// watchProgress logs updates from the returned channel until it is closed; the returned func closes it and waits.
func (r *Runner) watchProgress() (chan<- tasks.ProgressUpdate, func()) {
	progressCh := make(chan tasks.ProgressUpdate, 50)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range progressCh {
			switch update.Phase {
			case tasks.WritePlaylists, tasks.ResolvePaths:
				r.logger.Debug(update.Message, "phase", update.Phase)
			default:
				r.logger.Info(update.Message, "phase", update.Phase)
			}
		}
	}()

	return progressCh, func() {
		close(progressCh)
		wg.Wait()
	}
}

func (r *Runner) writeReport(cmd *cli.Command, report *models.Report) error {
	if cmd.Bool("json") {
		return r.writeJSON(report, true)
	}
	return formatter.RenderReport(r.output, report, ui.NewPalette(r.output))
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
