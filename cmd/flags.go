package main

import (
	"github.com/spf13/cobra"

	"github.com/roadsafety/schools-cli/internal/config"
)

// reportFlags are the run parameters every pipeline command accepts. Set
// flags override config values.
type reportFlags struct {
	startDate string
	endDate   string
	distance  float64
	batchSize int
	preset    string
	schoolIDs []int64
}

func (f *reportFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.startDate, "start-date", "", "window start, DD-MM-YYYY (inclusive)")
	cmd.Flags().StringVar(&f.endDate, "end-date", "", "window end, DD-MM-YYYY (exclusive)")
	cmd.Flags().Float64Var(&f.distance, "distance", 0, "search radius around each school in km")
	cmd.Flags().IntVar(&f.batchSize, "batch-size", 0, "rows per destination insert batch")
	cmd.Flags().StringVar(&f.preset, "preset", "", "predicate preset name")
	cmd.Flags().Int64SliceVar(&f.schoolIDs, "school-id", nil, "restrict the run to these school ids")
}

func (f *reportFlags) apply(cmd *cobra.Command, r *config.ReportConfig) {
	changed := cmd.Flags().Changed
	if changed("start-date") {
		r.StartDate = f.startDate
	}
	if changed("end-date") {
		r.EndDate = f.endDate
	}
	if changed("distance") {
		r.DistanceKM = f.distance
	}
	if changed("batch-size") {
		r.BatchSize = f.batchSize
	}
	if changed("preset") {
		r.Preset = f.preset
	}
	if changed("school-id") {
		r.SchoolIDs = f.schoolIDs
	}
}
