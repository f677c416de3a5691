// submodule cmd contains command definitions
package main

import (
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/stripd/internal/formatter"
	"github.com/desertthunder/stripd/internal/services"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
		Sources: cli.EnvVars("STRIPD_CONFIG"),
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format (json, csv, md, text)",
		Value:   formatter.FormatJSON,
	}
}

func urlFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "url",
		Aliases: []string{"u"},
		Usage:   "Base URL of the device",
		Value:   services.DefaultBaseURL,
		Sources: cli.EnvVars("STRIPD_URL"),
	}
}

// serveCommand runs the render loop and the configuration API
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Drive the strip and serve the configuration API",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Override server.port",
			},
			&cli.StringFlag{
				Name:  "sink",
				Usage: "Override strip.sink (apa102, artnet, terminal, discard)",
			},
		},
		Action: r.Serve,
	}
}

// setupCommand writes a config file and prepares the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create config.toml and initialize the database",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "reset",
				Usage: "Drop the saved configuration so the next start uses the defaults",
			},
		},
		Action: r.Setup,
	}
}

// defaultsCommand prints the built-in segments.
func defaultsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "defaults",
		Usage: "Print the built-in default configuration",
		Flags: []cli.Flag{
			formatFlag(),
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.Defaults,
	}
}

// remoteCommand talks to a running device
func remoteCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "remote",
		Usage: "Read or change the configuration of a running device",
		Commands: []*cli.Command{
			{
				Name:   "now",
				Usage:  "Print the device clock in milliseconds",
				Flags:  []cli.Flag{urlFlag()},
				Action: r.RemoteNow,
			},
			{
				Name:  "get",
				Usage: "Print the device configuration",
				Flags: []cli.Flag{
					urlFlag(),
					formatFlag(),
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write to a file instead of stdout",
					},
				},
				Action: r.RemoteGet,
			},
			{
				Name:      "put",
				Usage:     "Replace the device configuration with a JSON file (- reads stdin)",
				ArgsUsage: "<file>",
				Flags:     []cli.Flag{urlFlag()},
				Action:    r.RemotePut,
			},
			{
				Name:   "open",
				Usage:  "Open the device control page in a browser",
				Flags:  []cli.Flag{urlFlag()},
				Action: r.RemoteOpen,
			},
		},
	}
}

// previewCommand animates a configuration in the terminal
func previewCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "preview",
		Usage: "Animate the configuration in the terminal",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "url",
				Aliases: []string{"u"},
				Usage:   "Preview a running device instead of the local database",
				Sources: cli.EnvVars("STRIPD_URL"),
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Write logs to this file while the preview is running",
			},
		},
		Action: r.Preview,
	}
}
