// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// globalFlags are accepted by the root command and inherited by every subcommand.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
		},
		&cli.StringFlag{
			Name:    "library",
			Aliases: []string{"l"},
			Usage:   "Path to the exported Library.xml (overrides library.path)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Directory playlists are written to (overrides output.dir)",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Print the report as JSON",
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Build playlists and report without writing files",
		},
		&cli.Int64Flag{
			Name:  "seed",
			Usage: "Fixed shuffle seed, for reproducible playlist order",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error (overrides log.level)",
		},
	}
}

// analyzeCommand reports on the library without writing playlists
func analyzeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "analyze",
		Usage:  "Parse, resolve and classify the library and print the report; no files are written",
		Action: r.Analyze,
	}
}

// dedupeCommand handles tab-separated playlist exports
func dedupeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "dedupe",
		Usage: "Deduplicate and shuffle every *.txt playlist export in a directory",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "dir",
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "volume-prefix",
				Usage: "Prefix joined in front of relative locations (e.g. /Volumes)",
			},
			&cli.StringSliceFlag{
				Name:  "ext",
				Usage: "Only keep files with this extension (repeatable, e.g. --ext .aif)",
			},
		},
		Action: r.Dedupe,
	}
}

// initCommand writes the default configuration
func initCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Write the default configuration file",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "xdg",
				Usage: "Write to $XDG_CONFIG_HOME/libsort/config.toml instead of --config",
			},
		},
		Action: r.Init,
	}
}
