package report

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/roadsafety/schools-cli/internal/injury"
)

// SQLite caps bound parameters per statement.
const sqliteMaxParams = 32766

// SQLiteStore keeps the report tables in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "report: sqlite open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "report: sqlite exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS injured_around_school (
	id                         INTEGER PRIMARY KEY AUTOINCREMENT,
	school_yishuv_name         TEXT,
	school_id                  INTEGER NOT NULL,
	school_name                TEXT,
	school_type                TEXT,
	school_anyway_link         TEXT,
	rank_in_yishuv             INTEGER,
	school_longitude           REAL,
	school_latitude            REAL,
	accident_year              INTEGER,
	killed_count               INTEGER NOT NULL DEFAULT 0,
	severely_injured_count     INTEGER NOT NULL DEFAULT 0,
	light_injured_count        INTEGER NOT NULL DEFAULT 0,
	total_injured_killed_count INTEGER NOT NULL DEFAULT 0,
	distance_in_km             REAL
);

CREATE INDEX IF NOT EXISTS idx_injured_around_school_yishuv ON injured_around_school(school_yishuv_name);

CREATE TABLE IF NOT EXISTS injured_around_school_all_data (
	id                          INTEGER PRIMARY KEY AUTOINCREMENT,
	accident_id                 INTEGER,
	provider_code               INTEGER,
	accident_timestamp          TEXT,
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
	latitude                    REAL,
	longitude                   REAL,
	school_id                   INTEGER NOT NULL,
	school_type                 TEXT,
	school_name                 TEXT,
	school_yishuv_name          TEXT,
	school_longitude            REAL,
	school_latitude             REAL,
	school_anyway_link          TEXT,
	anyway_link_with_filters    TEXT
);

CREATE INDEX IF NOT EXISTS idx_injured_around_school_all_data_school ON injured_around_school_all_data(school_id);
`

// Migrate creates the destination tables.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "report: sqlite migrate")
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Replace implements Store.
func (s *SQLiteStore) Replace(ctx context.Context, rows []injury.ReportRow, raw []injury.MatchedRecord, batchSize int) (Counts, error) {
	if err := checkBatchSize(batchSize); err != nil {
		return Counts{}, err
	}
	start := time.Now()

	counts, err := s.replace(ctx, rows, raw, batchSize)
	if err != nil {
		return Counts{}, writeFailure(err)
	}

	zap.L().Info("report tables replaced",
		zap.String("component", "report.sqlite"),
		zap.Int64("report_rows", counts.Report),
		zap.Int64("raw_rows", counts.Raw),
		zap.Duration("elapsed", time.Since(start)))
	return counts, nil
}

func (s *SQLiteStore) replace(ctx context.Context, rows []injury.ReportRow, raw []injury.MatchedRecord, batchSize int) (Counts, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Counts{}, eris.Wrap(err, "report: sqlite begin tx")
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{ReportTable, RawTable} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return Counts{}, eris.Wrapf(err, "report: sqlite clear %s", table)
		}
	}

	var counts Counts
	counts.Report, err = insertBatches(ctx, tx, ReportTable, ReportColumns, reportMatrix(rows), batchSize)
	if err != nil {
		return Counts{}, err
	}
	counts.Raw, err = insertBatches(ctx, tx, RawTable, RawColumns, rawMatrix(raw), batchSize)
	if err != nil {
		return Counts{}, err
	}

	if err := tx.Commit(); err != nil {
		return Counts{}, eris.Wrap(err, "report: sqlite commit")
	}
	return counts, nil
}

// insertBatches writes rows with one multi-row INSERT per batch.
func insertBatches(ctx context.Context, tx *sql.Tx, table string, columns []string, rows [][]any, batchSize int) (int64, error) {
	batchSize = min(batchSize, sqliteMaxParams/len(columns))

	var total int64
	for start := 0; start < len(rows); start += batchSize {
		batch := rows[start:min(start+batchSize, len(rows))]

		args := make([]any, 0, len(batch)*len(columns))
		for _, r := range batch {
			for _, v := range r {
				if t, ok := v.(time.Time); ok {
					v = t.UTC().Format(time.RFC3339)
				}
				args = append(args, v)
			}
		}

		res, err := tx.ExecContext(ctx, insertSQL(table, columns, len(batch)), args...)
		if err != nil {
			return total, eris.Wrapf(err, "report: sqlite insert %s batch starting at row %d", table, start)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, eris.Wrap(err, "report: sqlite rows affected")
		}
		total += n
	}
	return total, nil
}

func insertSQL(table string, columns []string, rows int) string {
	placeholder := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(table)
	b.WriteString(" (")
	b.WriteString(strings.Join(columns, ", "))
	b.WriteString(") VALUES ")
	for i := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(placeholder)
	}
	return b.String()
}

const sqliteListReport = `SELECT school_yishuv_name, school_id, school_name, school_type, school_anyway_link,
	rank_in_yishuv, school_longitude, school_latitude, accident_year,
	killed_count, severely_injured_count, light_injured_count, total_injured_killed_count, distance_in_km
FROM injured_around_school
WHERE (? = '' OR school_yishuv_name = ?)
ORDER BY school_yishuv_name, rank_in_yishuv, school_id, accident_year`

// ListReport implements Store.
func (s *SQLiteStore) ListReport(ctx context.Context, municipality string) ([]injury.ReportRow, error) {
	rows, err := s.db.QueryContext(ctx, sqliteListReport, municipality, municipality)
	if err != nil {
		return nil, eris.Wrap(err, "report: sqlite list")
	}
	defer rows.Close()

	var out []injury.ReportRow
	for rows.Next() {
		r, err := scanReportRow(rows)
		if err != nil {
			return nil, eris.Wrap(err, "report: sqlite scan row")
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "report: sqlite iterate rows")
}
