package main

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/roadsafety/schools-cli/internal/accident"
	"github.com/roadsafety/schools-cli/internal/config"
	"github.com/roadsafety/schools-cli/internal/db"
	"github.com/roadsafety/schools-cli/internal/injury"
	"github.com/roadsafety/schools-cli/internal/report"
	"github.com/roadsafety/schools-cli/internal/resilience"
	"github.com/roadsafety/schools-cli/internal/school"
)

// pipelineEnv holds the pipeline and the resources behind it.
type pipelineEnv struct {
	Pipeline *injury.Pipeline
	closers  []func()
}

// Close releases the pipeline's resources.
func (e *pipelineEnv) Close() {
	for _, fn := range e.closers {
		fn()
	}
}

// initPipeline wires the record source and school directory named by c.
func initPipeline(ctx context.Context, c *config.Config) (*pipelineEnv, error) {
	env := &pipelineEnv{}

	var (
		src accident.Source
		dir school.Directory
	)
	switch c.Source.Driver {
	case "postgres":
		pool, err := db.Connect(ctx, c.SourceDatabaseURL(), db.PoolConfig{
			MaxConns: int32(c.Source.Workers) + 1,
			MinConns: c.Store.MinConns,
		})
		if err != nil {
			return nil, eris.Wrap(err, "init source")
		}
		env.closers = append(env.closers, pool.Close)
		src = accident.NewPostgresSource(pool)
		dir = school.NewPostgresDirectory(pool)
	case "csv":
		records, err := accident.LoadCSVFile(c.Source.RecordsPath)
		if err != nil {
			return nil, eris.Wrap(err, "init source")
		}
		schools, err := loadSchools(c.Source)
		if err != nil {
			return nil, eris.Wrap(err, "init source")
		}
		zap.L().Info("loaded CSV source",
			zap.Int("records", len(records)),
			zap.Int("schools", len(schools)))
		src = accident.NewMemorySource(records)
		dir = school.NewMemoryDirectory(schools)
	default:
		return nil, eris.Errorf("init source: unknown driver %q", c.Source.Driver)
	}

	retry := c.Source.Retry
	agg := injury.NewAggregator(dir, src,
		injury.WithWorkers(c.Source.Workers),
		injury.WithRateLimit(c.Source.RatePerSec),
		injury.WithRetry(resilience.FromSettings(retry.MaxAttempts, retry.InitialBackoffMs, retry.MaxBackoffMs)),
		injury.WithUIBaseURL(c.Report.UIBaseURL),
	)
	env.Pipeline = injury.NewPipeline(agg)
	return env, nil
}

// loadSchools reads the school directory file, choosing the reader by
// extension.
func loadSchools(c config.SourceConfig) ([]school.School, error) {
	switch strings.ToLower(filepath.Ext(c.SchoolsPath)) {
	case ".shp", ".zip":
		return school.LoadShapefile(c.SchoolsPath, c.SchoolsEncoding)
	default:
		return school.LoadCSVFile(c.SchoolsPath)
	}
}

// openStore opens the destination store named by c.
func openStore(ctx context.Context, c *config.Config) (report.Store, error) {
	switch c.Store.Driver {
	case "postgres":
		pool, err := db.Connect(ctx, c.Store.DatabaseURL, db.PoolConfig{
			MaxConns: c.Store.MaxConns,
			MinConns: c.Store.MinConns,
		})
		if err != nil {
			return nil, eris.Wrap(err, "open store")
		}
		return report.NewPostgres(pool, pool.Close), nil
	case "sqlite":
		st, err := report.NewSQLite(c.Store.DatabaseURL)
		if err != nil {
			return nil, eris.Wrap(err, "open store")
		}
		return st, nil
	default:
		return nil, eris.Errorf("open store: unknown driver %q", c.Store.Driver)
	}
}
