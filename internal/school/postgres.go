package school

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/roadsafety/schools-cli/internal/db"
)

// SchoolsTable holds the school directory with its geocoding.
const SchoolsTable = "schools_with_description"

// PostgresDirectory implements Directory over the schools table.
type PostgresDirectory struct {
	pool db.Pool
}

// NewPostgresDirectory creates a PostgresDirectory.
func NewPostgresDirectory(pool db.Pool) *PostgresDirectory {
	return &PostgresDirectory{pool: pool}
}

// List implements Directory. Results are ordered by school id.
func (d *PostgresDirectory) List(ctx context.Context, f Filter) ([]School, error) {
	var where []string
	var args []any
	if len(f.Categories) > 0 {
		args = append(args, f.Categories)
		where = append(where, fmt.Sprintf("school_type = ANY($%d)", len(args)))
	}
	if f.RequireCoordinates {
		where = append(where,
			"latitude IS NOT NULL", "longitude IS NOT NULL",
			"latitude <> 0", "longitude <> 0")
	}
	if len(f.IDs) > 0 {
		args = append(args, f.IDs)
		where = append(where, fmt.Sprintf("school_id = ANY($%d)", len(args)))
	}

	sql := `
		SELECT school_id, COALESCE(school_type, ''), COALESCE(school_name, ''),
		       COALESCE(yishuv_name, ''), COALESCE(latitude, 0), COALESCE(longitude, 0)
		FROM ` + db.SanitizeTable(SchoolsTable)
	if len(where) > 0 {
		sql += "\n\t\tWHERE " + strings.Join(where, " AND ")
	}
	sql += "\n\t\tORDER BY school_id"

	rows, err := d.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, eris.Wrap(err, "school: list schools")
	}
	defer rows.Close()

	var schools []School
	for rows.Next() {
		var s School
		if err := rows.Scan(&s.ID, &s.Category, &s.Name, &s.Municipality, &s.Latitude, &s.Longitude); err != nil {
			return nil, eris.Wrap(err, "school: scan school row")
		}
		schools = append(schools, s)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "school: iterate school rows")
	}
	return schools, nil
}
