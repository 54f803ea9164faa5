// Package report persists the injured-around-schools report and its raw
// matched records, replacing the previous contents atomically.
package report

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/roadsafety/schools-cli/internal/injury"
)

// Destination tables.
const (
	ReportTable = "injured_around_school"
	RawTable    = "injured_around_school_all_data"
)

// Store is a destination for report runs.
type Store interface {
	// Replace truncates both tables and inserts rows and raw in batches of
	// batchSize, all in one transaction. On error the previous contents are
	// left untouched.
	Replace(ctx context.Context, rows []injury.ReportRow, raw []injury.MatchedRecord, batchSize int) (Counts, error)
	// ListReport returns stored report rows, optionally for one
	// municipality, in report order.
	ListReport(ctx context.Context, municipality string) ([]injury.ReportRow, error)
	Migrate(ctx context.Context) error
	Close() error
}

// Counts is the number of rows written per table.
type Counts struct {
	Report int64
	Raw    int64
}

func checkBatchSize(batchSize int) error {
	if batchSize <= 0 {
		return eris.Wrapf(injury.ErrInvalidParameter, "batch size must be positive, got %d", batchSize)
	}
	return nil
}

func writeFailure(err error) error {
	return &injury.IOFailure{Op: "replace report tables", Err: err}
}
