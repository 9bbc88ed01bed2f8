package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"labordash/internal/config"
	"labordash/internal/dataset"
	"labordash/internal/infrastructure"
	"labordash/internal/services"
	"labordash/pkg/contracts"
)

// cli holds the state shared by every subcommand
type cli struct {
	out    io.Writer
	errOut io.Writer

	file      string
	aggregate string
	logLevel  string

	cfg    *config.Config
	logger *slog.Logger
	svc    *services.DashboardService
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	c := &cli{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "labor-report",
		Short: "Print and export labor-force statistics",
		Long: `labor-report reads the same source table as the dashboard and prints
its headline figures, the available selections, or writes an export.

Commands:
  summary - KPI panel and regional comparison for one selection
  options - selectable years and regions
  export  - write the table as CSV or the selected view as XLSX`,
		Version:           contracts.GetFullVersionString(),
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVar(&c.file, "file", "", "source table (.csv, .tsv or .xlsx); defaults to the configured data file")
	root.PersistentFlags().StringVar(&c.aggregate, "aggregate", "", "label of the nationwide aggregate region")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(
		newSummaryCmd(c),
		newOptionsCmd(c),
		newExportCmd(c),
	)
	return root
}

// setup loads the configuration, applies the flags and builds the service
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if c.aggregate != "" {
		cfg.Data.AggregateRegion = c.aggregate
	}
	cfg.Logging.Level = c.logLevel
	cfg.Logging.Output = "console"
	c.cfg = cfg

	logger, err := infrastructure.NewLogger(cfg.Logging, c.errOut)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	c.logger = logger

	path := c.file
	if path == "" {
		paths, err := config.GetPaths(cfg.Data)
		if err != nil {
			return err
		}
		path = paths.DataFile
	}

	loader := dataset.NewLoader(dataset.OptionsFromConfig(cfg.Data), logger, nil)
	c.svc = services.NewDashboardService(dataset.NewCache(loader), path, cfg.Data.AggregateRegion, nil, logger)

	logger.DebugContext(cmd.Context(), "labor-report ready",
		slog.String("command", cmd.Name()),
		slog.String("file", path))
	return nil
}
