package report

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/roadsafety/schools-cli/internal/db"
	"github.com/roadsafety/schools-cli/internal/injury"
)

// replaceLockID serialises concurrent Replace calls across processes.
const replaceLockID = 8675311

// PostgresStore writes the report tables with COPY.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// NewPostgres creates a PostgresStore over pool. closeFn, if set, is called
// by Close.
func NewPostgres(pool db.Pool, closeFn func()) *PostgresStore {
	return &PostgresStore{pool: pool, closeFn: closeFn}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS injured_around_school (
	id                         BIGSERIAL PRIMARY KEY,
	school_yishuv_name         TEXT,
	school_id                  BIGINT NOT NULL,
	school_name                TEXT,
	school_type                TEXT,
	school_anyway_link         TEXT,
	rank_in_yishuv             INTEGER,
	school_longitude           DOUBLE PRECISION,
	school_latitude            DOUBLE PRECISION,
	accident_year              INTEGER,
	killed_count               INTEGER NOT NULL DEFAULT 0,
	severely_injured_count     INTEGER NOT NULL DEFAULT 0,
	light_injured_count        INTEGER NOT NULL DEFAULT 0,
	total_injured_killed_count INTEGER NOT NULL DEFAULT 0,
	distance_in_km             DOUBLE PRECISION
);

CREATE INDEX IF NOT EXISTS idx_injured_around_school_yishuv ON injured_around_school(school_yishuv_name);
CREATE INDEX IF NOT EXISTS idx_injured_around_school_school ON injured_around_school(school_id);

CREATE TABLE IF NOT EXISTS injured_around_school_all_data (
	id                          BIGSERIAL PRIMARY KEY,
	accident_id                 BIGINT,
	provider_code               INTEGER,
	accident_timestamp          TIMESTAMP,
	accident_year               INTEGER,
	injury_severity             INTEGER,
	injury_severity_hebrew      TEXT,
	age_group                   INTEGER,
	injured_type                INTEGER,
	injured_type_hebrew         TEXT,
	involve_vehicle_type        INTEGER,
	involve_vehicle_type_hebrew TEXT,
	speed_limit                 INTEGER,
	speed_limit_hebrew          TEXT,
	cross_location              INTEGER,
	cross_location_hebrew       TEXT,
	location_accuracy           INTEGER,
	latitude                    DOUBLE PRECISION,
	longitude                   DOUBLE PRECISION,
	school_id                   BIGINT NOT NULL,
	school_type                 TEXT,
	school_name                 TEXT,
	school_yishuv_name          TEXT,
	school_longitude            DOUBLE PRECISION,
	school_latitude             DOUBLE PRECISION,
	school_anyway_link          TEXT,
	anyway_link_with_filters    TEXT
);

CREATE INDEX IF NOT EXISTS idx_injured_around_school_all_data_school ON injured_around_school_all_data(school_id);
`

// Migrate creates the destination tables.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "report: migrate")
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// Replace implements Store.
func (s *PostgresStore) Replace(ctx context.Context, rows []injury.ReportRow, raw []injury.MatchedRecord, batchSize int) (Counts, error) {
	if err := checkBatchSize(batchSize); err != nil {
		return Counts{}, err
	}
	log := zap.L().With(zap.String("component", "report.postgres"))
	start := time.Now()

	counts, err := s.replace(ctx, rows, raw, batchSize)
	if err != nil {
		return Counts{}, writeFailure(err)
	}

	log.Info("report tables replaced",
		zap.Int64("report_rows", counts.Report),
		zap.Int64("raw_rows", counts.Raw),
		zap.Duration("elapsed", time.Since(start)))
	return counts, nil
}

func (s *PostgresStore) replace(ctx context.Context, rows []injury.ReportRow, raw []injury.MatchedRecord, batchSize int) (Counts, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Counts{}, eris.Wrap(err, "report: begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", int64(replaceLockID)); err != nil {
		return Counts{}, eris.Wrap(err, "report: acquire lock")
	}

	truncate := "TRUNCATE TABLE " + db.SanitizeTable(ReportTable) + ", " + db.SanitizeTable(RawTable)
	if _, err := tx.Exec(ctx, truncate); err != nil {
		return Counts{}, eris.Wrap(err, "report: truncate")
	}

	var counts Counts
	counts.Report, err = db.CopyInBatches(ctx, tx, ReportTable, ReportColumns, reportMatrix(rows), batchSize)
	if err != nil {
		return Counts{}, eris.Wrap(err, "report: copy report rows")
	}
	counts.Raw, err = db.CopyInBatches(ctx, tx, RawTable, RawColumns, rawMatrix(raw), batchSize)
	if err != nil {
		return Counts{}, eris.Wrap(err, "report: copy raw rows")
	}

	if err := tx.Commit(ctx); err != nil {
		return Counts{}, eris.Wrap(err, "report: commit")
	}
	return counts, nil
}

const listReportSQL = `SELECT school_yishuv_name, school_id, school_name, school_type, school_anyway_link,
	rank_in_yishuv, school_longitude, school_latitude, accident_year,
	killed_count, severely_injured_count, light_injured_count, total_injured_killed_count, distance_in_km
FROM injured_around_school
WHERE ($1 = '' OR school_yishuv_name = $1)
ORDER BY school_yishuv_name, rank_in_yishuv, school_id, accident_year`

// ListReport implements Store.
func (s *PostgresStore) ListReport(ctx context.Context, municipality string) ([]injury.ReportRow, error) {
	rows, err := s.pool.Query(ctx, listReportSQL, municipality)
	if err != nil {
		return nil, eris.Wrap(err, "report: list")
	}
	defer rows.Close()

	var out []injury.ReportRow
	for rows.Next() {
		r, err := scanReportRow(rows)
		if err != nil {
			return nil, eris.Wrap(err, "report: scan row")
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "report: iterate rows")
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReportRow(row scanner) (injury.ReportRow, error) {
	var r injury.ReportRow
	err := row.Scan(
		&r.Municipality,
		&r.SchoolID,
		&r.SchoolName,
		&r.SchoolType,
		&r.SchoolLink,
		&r.RankInMunicipality,
		&r.SchoolLongitude,
		&r.SchoolLatitude,
		&r.AccidentYear,
		&r.KilledCount,
		&r.SeverelyInjuredCount,
		&r.LightInjuredCount,
		&r.TotalCount,
		&r.DistanceKM,
	)
	return r, err
}
