package injury

import (
	"context"

	"github.com/roadsafety/schools-cli/internal/accident"
)

// Result is the output of a full run.
type Result struct {
	Rows []ReportRow
	Raw  []MatchedRecord
	// Schools is the number of eligible schools considered.
	Schools int
}

// Pipeline chains aggregation, pivot, ranking and merge.
type Pipeline struct {
	aggregator *Aggregator
}

// NewPipeline creates a Pipeline reading through agg.
func NewPipeline(agg *Aggregator) *Pipeline {
	return &Pipeline{aggregator: agg}
}

// Run computes the report rows and the raw matched records for p.
func (pl *Pipeline) Run(ctx context.Context, p Params) (*Result, error) {
	agg, err := pl.aggregator.Aggregate(ctx, p)
	if err != nil {
		return nil, err
	}

	pivot := BuildPivot(agg.Matched)
	pivot.EnsureColumns(accident.SeverityKilled, accident.SeveritySevere, accident.SeverityLight)
	if p.IncludeEmptySchools {
		pivot.AddEmptySchools(agg.Schools, agg.Links)
	}

	rows, err := Merge(pivot, RankByMunicipality(pivot), p.RadiusKM)
	if err != nil {
		return nil, err
	}
	return &Result{Rows: rows, Raw: agg.Matched, Schools: len(agg.Schools)}, nil
}
