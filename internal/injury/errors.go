package injury

import "github.com/rotisserie/eris"

// ErrInvalidParameter is returned for run parameters rejected before any
// query is issued.
var ErrInvalidParameter = eris.New("injury: invalid parameter")

// ErrMissingAggregationColumn is returned when a severity column is read
// before it has been created on the pivot.
var ErrMissingAggregationColumn = eris.New("injury: missing aggregation column")

// IOFailure reports a failed read or write against an external system.
type IOFailure struct {
	Op  string
	Err error
}

func (e *IOFailure) Error() string {
	return "injury: " + e.Op + ": " + e.Err.Error()
}

func (e *IOFailure) Unwrap() error { return e.Err }
