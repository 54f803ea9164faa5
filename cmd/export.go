package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roadsafety/schools-cli/internal/config"
	"github.com/roadsafety/schools-cli/internal/export"
)

var (
	exportFlags    reportFlags
	exportFormat   string
	exportDir      string
	exportEncoding string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Compute the report and write it to CSV or XLSX files",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		exportFlags.apply(cmd, &cfg.Report)
		if cmd.Flags().Changed("format") {
			cfg.Export.Format = exportFormat
		}
		if cmd.Flags().Changed("dir") {
			cfg.Export.Dir = exportDir
		}
		if cmd.Flags().Changed("encoding") {
			cfg.Export.Encoding = exportEncoding
		}

		_, err := runExport(ctx, cfg)
		return err
	},
}

// runExport runs the pipeline and writes the result as files.
func runExport(ctx context.Context, c *config.Config) ([]string, error) {
	if err := c.Validate("export"); err != nil {
		return nil, err
	}
	params, err := c.Report.Params()
	if err != nil {
		return nil, err
	}
	format, err := export.ParseFormat(c.Export.Format)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(c.Export.Dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "export: create %s", c.Export.Dir)
	}

	env, err := initPipeline(ctx, c)
	if err != nil {
		return nil, err
	}
	defer env.Close()

	res, err := env.Pipeline.Run(ctx, params)
	if err != nil {
		return nil, eris.Wrap(err, "export: run pipeline")
	}

	paths, err := export.WriteFiles(export.Options{
		Dir:      c.Export.Dir,
		Format:   format,
		Encoding: c.Export.Encoding,
	}, res.Rows, res.Raw)
	if err != nil {
		return nil, err
	}

	zap.L().Info("export complete",
		zap.Strings("files", paths),
		zap.Int("report_rows", len(res.Rows)),
		zap.Int("raw_rows", len(res.Raw)))
	return paths, nil
}

func init() {
	exportFlags.register(exportCmd)
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "output format: csv or xlsx (default from config)")
	exportCmd.Flags().StringVar(&exportDir, "dir", "", "output directory (default from config)")
	exportCmd.Flags().StringVar(&exportEncoding, "encoding", "", "CSV encoding, e.g. utf-8 or cp1255 (default from config)")
	rootCmd.AddCommand(exportCmd)
}
