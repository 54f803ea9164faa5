package injury

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/roadsafety/schools-cli/internal/accident"
	"github.com/roadsafety/schools-cli/internal/geo"
	"github.com/roadsafety/schools-cli/internal/resilience"
	"github.com/roadsafety/schools-cli/internal/school"
)

const (
	defaultWorkers = 4
	progressEvery  = 100
)

// MatchedRecord is an involvement record found around a school. A record
// near several schools appears once per school.
type MatchedRecord struct {
	accident.InvolvementRecord
	School school.School
	Links  Links
}

// Aggregation is the output of one aggregation pass.
type Aggregation struct {
	// Schools are the eligible schools in directory order.
	Schools []school.School
	// Links holds each school's UI links, indexed like Schools.
	Links []Links
	// Matched holds every matched record, grouped by school in the same
	// order as Schools.
	Matched []MatchedRecord
}

// Aggregator runs the spatial record filter around every eligible school.
type Aggregator struct {
	directory school.Directory
	filter    *accident.Filter
	workers   int
	limiter   *rate.Limiter
	retry     resilience.RetryConfig
	uiBaseURL string
	log       *zap.Logger
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithWorkers sets how many schools are queried concurrently.
func WithWorkers(n int) AggregatorOption {
	return func(a *Aggregator) {
		if n > 0 {
			a.workers = n
		}
	}
}

// WithRateLimit caps record-source queries per second. Zero disables the cap.
func WithRateLimit(perSecond float64) AggregatorOption {
	return func(a *Aggregator) {
		if perSecond > 0 {
			burst := max(int(perSecond), 1)
			a.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

// WithRetry sets the retry policy for per-school reads.
func WithRetry(cfg resilience.RetryConfig) AggregatorOption {
	return func(a *Aggregator) { a.retry = cfg }
}

// WithUIBaseURL sets the map UI base for school links.
func WithUIBaseURL(base string) AggregatorOption {
	return func(a *Aggregator) { a.uiBaseURL = base }
}

// NewAggregator creates an Aggregator over dir and src.
func NewAggregator(dir school.Directory, src accident.Source, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		directory: dir,
		filter:    accident.NewFilter(src),
		workers:   defaultWorkers,
		limiter:   rate.NewLimiter(rate.Inf, 1),
		retry:     resilience.DefaultRetryConfig(),
		uiBaseURL: DefaultUIBaseURL,
		log:       zap.L().With(zap.String("component", "injury.aggregate")),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.retry.OnRetry == nil {
		a.retry.OnRetry = resilience.RetryLogger("injury.aggregate", "select records")
	}
	return a
}

// Aggregate lists the eligible schools and collects the records around each.
func (a *Aggregator) Aggregate(ctx context.Context, p Params) (*Aggregation, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	schools, err := a.directory.List(ctx, school.EligibleFilter(p.SchoolIDs))
	if err != nil {
		return nil, &IOFailure{Op: "list schools", Err: err}
	}
	a.log.Info("aggregating schools",
		zap.Int("schools", len(schools)),
		zap.Float64("radius_km", p.RadiusKM),
		zap.Int("workers", a.workers))

	perSchool := make([][]accident.InvolvementRecord, len(schools))
	links := make([]Links, len(schools))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)

	for i, s := range schools {
		links[i] = BuildLinks(a.uiBaseURL, s, p)

		g.Go(func() error {
			if err := a.limiter.Wait(gctx); err != nil {
				return err
			}

			box, err := geo.BoundingBoxAround(s.Latitude, s.Longitude, p.RadiusKM)
			if err != nil {
				return eris.Wrapf(ErrInvalidParameter, "school %d: %v", s.ID, err)
			}

			recs, err := resilience.DoVal(gctx, a.retry, func(ctx context.Context) ([]accident.InvolvementRecord, error) {
				return accident.Collect(a.filter.Select(ctx, box, p.Window, p.Predicate))
			})
			if err != nil {
				return &IOFailure{Op: fmt.Sprintf("select records around school %d", s.ID), Err: err}
			}
			perSchool[i] = recs

			if n := done.Add(1); n%progressEvery == 0 {
				a.log.Info("aggregation progress",
					zap.Int64("done", n),
					zap.Int("total", len(schools)))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Aggregation{Schools: schools, Links: links}
	for i, recs := range perSchool {
		for _, r := range recs {
			out.Matched = append(out.Matched, MatchedRecord{
				InvolvementRecord: r,
				School:            schools[i],
				Links:             links[i],
			})
		}
	}

	a.log.Info("aggregation complete",
		zap.Int("schools", len(schools)),
		zap.Int("matched_records", len(out.Matched)),
		zap.Duration("elapsed", time.Since(start)))
	return out, nil
}
