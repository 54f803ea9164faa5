// Package injury aggregates the involvement records found around each
// school into per-year severity counts and ranks schools within their
// municipality.
package injury

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/roadsafety/schools-cli/internal/accident"
)

// Params configures one run.
type Params struct {
	RadiusKM  float64
	Window    accident.Window
	Predicate accident.Predicate
	// SchoolIDs, when non-empty, restricts the run to these schools.
	SchoolIDs []int64
	// IncludeEmptySchools emits a zero row for eligible schools that had no
	// matching records.
	IncludeEmptySchools bool
}

// Validate checks the parameters before any query is issued.
func (p Params) Validate() error {
	if !(p.RadiusKM > 0) || math.IsInf(p.RadiusKM, 0) {
		return eris.Wrapf(ErrInvalidParameter, "radius must be positive, got %v", p.RadiusKM)
	}
	if !p.Window.Valid() {
		return eris.Wrapf(ErrInvalidParameter, "end date %s must be after start date %s",
			p.Window.End.Format("2006-01-02"), p.Window.Start.Format("2006-01-02"))
	}
	if err := p.Predicate.Validate(); err != nil {
		return eris.Wrapf(ErrInvalidParameter, "predicate: %v", err)
	}
	return nil
}
