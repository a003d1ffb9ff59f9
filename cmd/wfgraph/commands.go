package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rendis/wfgraph/internal/config"
	"github.com/rendis/wfgraph/internal/expressions"
	"github.com/rendis/wfgraph/internal/logging"
	"github.com/rendis/wfgraph/internal/pipeline"
	cli "github.com/urfave/cli/v3"
)

const missingSource = "You must specify source XML file path"

func newSingleCommand() *cli.Command {
	return &cli.Command{
		Name:      "single",
		Usage:     "Render one diagram from a single-workflow document",
		ArgsUsage: "<source_xml_file> [output_name]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() == 0 {
				return printUsage(cmd, "wfgraph single <source_xml_file> [output_name]")
			}

			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			runner, err := pipeline.New(cfg, logger)
			if err != nil {
				return err
			}
			moved, err := runner.RunSingle(ctx, cmd.Args().Get(0), cmd.Args().Get(1))
			if err != nil {
				return err
			}
			return printSummary(cmd, moved)
		},
	}
}

func newMultiCommand() *cli.Command {
	return &cli.Command{
		Name:      "multi",
		Usage:     "Render one diagram per actionable from a grouped document",
		ArgsUsage: "<source_xml_file>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "filter",
				Usage:   `Expression selecting actionables, e.g. actionableType == "Ticket"`,
				Sources: cli.EnvVars("WFGRAPH_FILTER"),
			},
			&cli.IntFlag{
				Name:    "parallel",
				Usage:   "Render up to N actionables concurrently (0 renders sequentially)",
				Sources: cli.EnvVars("WFGRAPH_PARALLEL"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() == 0 {
				return printUsage(cmd, "wfgraph multi <source_xml_file>")
			}

			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			selector, err := expressions.NewSelector(cmd.String("filter"))
			if err != nil {
				return err
			}
			runner, err := pipeline.New(cfg, logger)
			if err != nil {
				return err
			}
			moved, err := runner.RunMulti(ctx, cmd.Args().Get(0), selector)
			if err != nil {
				return err
			}
			return printSummary(cmd, moved)
		},
	}
}

// printUsage reports a missing source path. It is not an error and touches
// no files.
func printUsage(cmd *cli.Command, usage string) error {
	_, err := fmt.Fprintf(cmd.Root().Writer, "%s\nUsage: %s\n", missingSource, usage)
	return err
}

func printSummary(cmd *cli.Command, moved []string) error {
	for _, path := range moved {
		if _, err := fmt.Fprintln(cmd.Root().Writer, path); err != nil {
			return err
		}
	}
	return nil
}

// setup loads the layered configuration, applies the flags set on the
// command line and installs the logger.
func setup(cmd *cli.Command) (config.Config, *slog.Logger, error) {
	cfg, report, err := config.Load(cmd.String("config"))
	if err != nil {
		return cfg, nil, err
	}

	if v := cmd.String("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if v := cmd.String("output-dir"); v != "" {
		cfg.OutputDir = v
	}
	if cmd.IsSet("mermaid") {
		cfg.Mermaid = cmd.Bool("mermaid")
	}
	if cmd.IsSet("parallel") {
		cfg.Parallel = cmd.Int("parallel")
	}
	if err := cfg.Validate(); err != nil {
		return cfg, nil, err
	}

	logger := logging.Setup(cmd.Root().ErrWriter, cfg.LogLevel)
	for _, w := range report.Warnings {
		logger.Warn(w.Message, slog.String("path", w.Path))
	}
	return cfg, logger, nil
}
