package injury

import (
	"context"
	"iter"
	"sync/atomic"
	"time"

	"github.com/roadsafety/schools-cli/internal/accident"
	"github.com/roadsafety/schools-cli/internal/resilience"
	"github.com/roadsafety/schools-cli/internal/school"
)

var testWindow = accident.Window{
	Start: time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC),
	End:   time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
}

func testParams() Params {
	return Params{
		RadiusKM:            1,
		Window:              testWindow,
		Predicate:           accident.DefaultPresets()[accident.PresetAllSeverities],
		IncludeEmptySchools: true,
	}
}

func testSchool(id int64, municipality string, lat, lon float64) school.School {
	return school.School{
		ID:           id,
		Category:     school.CategoryGeneralSchool,
		Name:         "school",
		Municipality: municipality,
		Latitude:     lat,
		Longitude:    lon,
	}
}

// recordsAt returns one record per severity, all at (lat, lon) in year.
func recordsAt(lat, lon float64, year int, sevs ...accident.Severity) []accident.InvolvementRecord {
	var out []accident.InvolvementRecord
	for i, s := range sevs {
		out = append(out, accident.InvolvementRecord{
			AccidentID:       int64(year*1000 + i),
			ProviderCode:     accident.ProviderCBSType1,
			Latitude:         lat,
			Longitude:        lon,
			Severity:         s,
			AgeGroup:         2,
			Timestamp:        time.Date(year, 6, 1, 8, 0, 0, 0, time.UTC),
			LocationAccuracy: accident.LocationAccuracyPrecise,
		})
	}
	return out
}

func newTestAggregator(schools []school.School, records []accident.InvolvementRecord) *Aggregator {
	return NewAggregator(
		school.NewMemoryDirectory(schools),
		accident.NewMemorySource(records),
		WithWorkers(3),
		WithRetry(fastRetry()),
	)
}

func fastRetry() resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
	}
}

// flakySource fails the first `failures` queries, then delegates.
type flakySource struct {
	next     accident.Source
	failures int64
	err      error
	calls    atomic.Int64
}

func (s *flakySource) Query(ctx context.Context, q accident.Query) iter.Seq2[accident.InvolvementRecord, error] {
	if s.calls.Add(1) <= s.failures {
		return func(yield func(accident.InvolvementRecord, error) bool) {
			yield(accident.InvolvementRecord{}, s.err)
		}
	}
	return s.next.Query(ctx, q)
}

type failingDirectory struct{ err error }

func (d failingDirectory) List(context.Context, school.Filter) ([]school.School, error) {
	return nil, d.err
}
