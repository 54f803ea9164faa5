package accident

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/roadsafety/schools-cli/internal/db"
	"github.com/roadsafety/schools-cli/internal/geo"
)

// InvolvedMarkersTable is the view joining accident markers with their
// involved persons.
const InvolvedMarkersTable = "involved_markers_hebrew"

const involvedColumns = `
	accident_id, provider_code, latitude, longitude, COALESCE(injury_severity, 0),
	age_group, accident_timestamp, COALESCE(location_accuracy, 0), COALESCE(accident_year, 0),
	COALESCE(injury_severity_hebrew, ''),
	COALESCE(injured_type, 0), COALESCE(injured_type_hebrew, ''),
	COALESCE(involve_vehicle_type, 0), COALESCE(involve_vehicle_type_hebrew, ''),
	COALESCE(speed_limit, 0), COALESCE(speed_limit_hebrew, ''),
	COALESCE(cross_location, 0), COALESCE(cross_location_hebrew, '')`

// PostgresSource reads involvement records from a PostGIS database.
type PostgresSource struct {
	pool  db.Pool
	table string
}

// NewPostgresSource creates a PostgresSource over the involved-markers view.
func NewPostgresSource(pool db.Pool) *PostgresSource {
	return &PostgresSource{pool: pool, table: InvolvedMarkersTable}
}

// Query implements Source. Rows are ordered so that repeated runs over
// unchanged data produce the same sequence.
func (s *PostgresSource) Query(ctx context.Context, q Query) iter.Seq2[InvolvementRecord, error] {
	return func(yield func(InvolvementRecord, error) bool) {
		sql, args, err := buildQuery(s.table, q)
		if err != nil {
			yield(InvolvementRecord{}, err)
			return
		}

		rows, err := s.pool.Query(ctx, sql, args...)
		if err != nil {
			yield(InvolvementRecord{}, eris.Wrap(err, "accident: query involvement records"))
			return
		}
		defer rows.Close()

		for rows.Next() {
			r, err := scanRecord(rows)
			if err != nil {
				yield(InvolvementRecord{}, err)
				return
			}
			if !yield(r, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(InvolvementRecord{}, eris.Wrap(err, "accident: iterate involvement records"))
		}
	}
}

// buildQuery compiles q into SQL. Optional conditions are appended only
// when the predicate enables them.
func buildQuery(table string, q Query) (string, []any, error) {
	area, err := geo.EncodeEWKB(q.Area)
	if err != nil {
		return "", nil, err
	}
	p := q.Predicate

	args := []any{area, p.TrustedProviders, q.Window.Start, q.Window.End}
	where := []string{
		"ST_Intersects(geom, ST_GeomFromEWKB($1))",
		"provider_code = ANY($2)",
		"accident_timestamp >= $3",
		"accident_timestamp < $4",
	}
	add := func(cond string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if p.RequirePreciseLocation {
		add("location_accuracy = $%d", LocationAccuracyPrecise)
	}
	add("age_group = ANY($%d)", p.AgeGroups)
	if p.MaxSeverity > 0 {
		add("injury_severity <= $%d", int(p.MaxSeverity))
	}
	if len(p.InjuredTypes) > 0 {
		add("injured_type = ANY($%d)", p.InjuredTypes)
	}
	if len(p.VehicleTypes) > 0 {
		add("involve_vehicle_type = ANY($%d)", p.VehicleTypes)
	}

	sql := fmt.Sprintf("SELECT %s\n\tFROM %s\n\tWHERE %s\n\tORDER BY accident_timestamp, accident_id, provider_code",
		involvedColumns, db.SanitizeTable(table), strings.Join(where, "\n\t  AND "))
	return sql, args, nil
}

func scanRecord(rows pgx.Rows) (InvolvementRecord, error) {
	var r InvolvementRecord
	var severity int
	if err := rows.Scan(
		&r.AccidentID, &r.ProviderCode, &r.Latitude, &r.Longitude, &severity,
		&r.AgeGroup, &r.Timestamp, &r.LocationAccuracy, &r.AccidentYear,
		&r.SeverityHebrew,
		&r.InjuredType, &r.InjuredTypeHebrew,
		&r.VehicleType, &r.VehicleTypeHebrew,
		&r.SpeedLimit, &r.SpeedLimitHebrew,
		&r.CrossLocation, &r.CrossLocationHebrew,
	); err != nil {
		return InvolvementRecord{}, eris.Wrap(err, "accident: scan involvement record")
	}
	r.Severity = Severity(severity)
	return r, nil
}
