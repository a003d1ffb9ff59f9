package main

import (
	"context"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "wfgraph",
		Usage: "Render workflow-definition XML as status transition diagrams",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Settings file (JSON)",
				Sources: cli.EnvVars("WFGRAPH_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Sources: cli.EnvVars("WFGRAPH_LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "output-dir",
				Usage:   "Directory the diagrams are moved into",
				Sources: cli.EnvVars("WFGRAPH_OUTPUT_DIR"),
			},
			&cli.BoolFlag{
				Name:    "mermaid",
				Usage:   "Also write a Mermaid flowchart (.mmd) per diagram",
				Sources: cli.EnvVars("WFGRAPH_MERMAID"),
			},
		},
		Commands: []*cli.Command{
			newSingleCommand(),
			newMultiCommand(),
			newVersionCommand(),
		},
	}
}
