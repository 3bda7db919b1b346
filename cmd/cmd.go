// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// serveCommand starts the HTTP comparison service
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the block comparison HTTP service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Serve,
	}
}

// compareCommand runs a comparison between two usernames
func compareCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "compare",
		Aliases: []string{"cmp"},
		Usage:   "Compare the blocks of two are.na users",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "user1"},
			&cli.StringArg{Name: "user2"},
		},
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "concurrency",
				Aliases: []string{"n"},
				Usage:   "Maximum channels fetched simultaneously per user",
			},
			&cli.IntFlag{
				Name:  "max-channels",
				Usage: "Maximum channels processed per user",
			},
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "Suppress progress output",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Save the result to a file",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Export format: text, csv, md",
				Value: "text",
			},
		},
		Action: r.Compare,
	}
}

// channelsCommand lists a user's channels
func channelsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "channels",
		Usage: "List an are.na user's channels",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "username"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		},
		Action: r.Channels,
	}
}

// setupCommand writes a starter configuration file
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create a starter config.toml",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}
