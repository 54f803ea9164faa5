package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// CopyFrom bulk-inserts rows into a table using PostgreSQL COPY protocol.
// Schema-qualified names like "public.injured_around_school" are accepted.
func CopyFrom(ctx context.Context, c Copier, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	n, err := c.CopyFrom(ctx, Identifier(table), columns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, eris.Wrapf(err, "db: COPY INTO %s", table)
	}

	return n, nil
}

// CopyInBatches runs CopyFrom over consecutive chunks of at most batchSize
// rows and returns the total number of rows copied.
func CopyInBatches(ctx context.Context, c Copier, table string, columns []string, rows [][]any, batchSize int) (int64, error) {
	if batchSize <= 0 {
		return 0, eris.Errorf("db: batch size must be positive, got %d", batchSize)
	}

	var total int64
	for start := 0; start < len(rows); start += batchSize {
		end := min(start+batchSize, len(rows))
		n, err := CopyFrom(ctx, c, table, columns, rows[start:end])
		if err != nil {
			return total, eris.Wrapf(err, "db: batch starting at row %d", start)
		}
		total += n
	}
	return total, nil
}

// Identifier splits an optionally schema-qualified table name.
func Identifier(table string) pgx.Identifier {
	parts := strings.SplitN(table, ".", 2)
	if len(parts) == 2 {
		return pgx.Identifier{parts[0], parts[1]}
	}
	return pgx.Identifier{table}
}

// SanitizeTable quotes an optionally schema-qualified table name for SQL.
func SanitizeTable(table string) string {
	return Identifier(table).Sanitize()
}
