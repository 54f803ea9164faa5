package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roadsafety/schools-cli/internal/config"
	"github.com/roadsafety/schools-cli/internal/report"
)

var (
	importFlags  reportFlags
	importDryRun bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Compute the report and replace the destination tables",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		importFlags.apply(cmd, &cfg.Report)
		_, err := runImport(ctx, cfg, importDryRun)
		return err
	},
}

// runImport runs the pipeline and, unless dryRun, replaces both report
// tables with the result.
func runImport(ctx context.Context, c *config.Config, dryRun bool) (report.Counts, error) {
	mode := "import"
	if dryRun {
		mode = "export"
	}
	if err := c.Validate(mode); err != nil {
		return report.Counts{}, err
	}
	params, err := c.Report.Params()
	if err != nil {
		return report.Counts{}, err
	}

	log := zap.L().With(zap.String("run_id", uuid.New().String()))
	start := time.Now()
	log.Info("import started",
		zap.String("start_date", c.Report.StartDate),
		zap.String("end_date", c.Report.EndDate),
		zap.Float64("distance_km", params.RadiusKM),
		zap.String("preset", c.Report.Preset))

	env, err := initPipeline(ctx, c)
	if err != nil {
		return report.Counts{}, err
	}
	defer env.Close()

	res, err := env.Pipeline.Run(ctx, params)
	if err != nil {
		return report.Counts{}, eris.Wrap(err, "import: run pipeline")
	}

	if dryRun {
		log.Info("dry run complete, destination untouched",
			zap.Int("schools", res.Schools),
			zap.Int("report_rows", len(res.Rows)),
			zap.Int("raw_rows", len(res.Raw)),
			zap.Duration("elapsed", time.Since(start)))
		return report.Counts{Report: int64(len(res.Rows)), Raw: int64(len(res.Raw))}, nil
	}

	st, err := openStore(ctx, c)
	if err != nil {
		return report.Counts{}, err
	}
	defer st.Close() //nolint:errcheck

	counts, err := st.Replace(ctx, res.Rows, res.Raw, c.Report.BatchSize)
	if err != nil {
		return report.Counts{}, eris.Wrap(err, "import: replace tables")
	}

	log.Info("import complete",
		zap.Int("schools", res.Schools),
		zap.Int64("report_rows", counts.Report),
		zap.Int64("raw_rows", counts.Raw),
		zap.Duration("elapsed", time.Since(start)))
	return counts, nil
}

func init() {
	importFlags.register(importCmd)
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "compute the report without writing to the destination")
	rootCmd.AddCommand(importCmd)
}
