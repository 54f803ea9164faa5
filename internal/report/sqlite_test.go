package report

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadsafety/schools-cli/internal/injury"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLite(filepath.Join(t.TempDir(), "report.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func rawCount(t *testing.T, st *SQLiteStore) int {
	t.Helper()
	var n int
	require.NoError(t, st.db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM "+RawTable).Scan(&n))
	return n
}

func TestSQLite_ReplaceAndList(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	counts, err := st.Replace(ctx, sampleRows(), sampleRaw(), 2)
	require.NoError(t, err)
	assert.Equal(t, Counts{Report: 3, Raw: 2}, counts)

	all, err := st.ListReport(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, sampleRows(), all)

	haifa, err := st.ListReport(ctx, "חיפה")
	require.NoError(t, err)
	assert.Len(t, haifa, 2)
	assert.Equal(t, 2, rawCount(t, st))
}

func TestSQLite_ReplaceOverwritesPreviousRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.Replace(ctx, sampleRows(), sampleRaw(), 100)
	require.NoError(t, err)

	_, err = st.Replace(ctx, sampleRows()[2:], nil, 100)
	require.NoError(t, err)

	all, err := st.ListReport(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, int64(20), all[0].SchoolID)
	assert.Zero(t, rawCount(t, st))
}

func TestSQLite_FailedReplaceKeepsPreviousContents(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.Replace(ctx, sampleRows(), sampleRaw(), 100)
	require.NoError(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = st.Replace(cancelled, sampleRows()[:1], nil, 100)
	require.Error(t, err)
	var ioErr *injury.IOFailure
	assert.ErrorAs(t, err, &ioErr)

	all, err := st.ListReport(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, 2, rawCount(t, st))
}

func TestSQLite_ReplaceInvalidBatchSize(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.Replace(context.Background(), sampleRows(), nil, -1)
	require.Error(t, err)
	assert.True(t, eris.Is(err, injury.ErrInvalidParameter))
}

func TestSQLite_ReplaceLargeBatchIsSplit(t *testing.T) {
	st := newTestSQLiteStore(t)

	var rows []injury.ReportRow
	for i := range 3000 {
		r := sampleRows()[2]
		r.SchoolID = int64(i)
		rows = append(rows, r)
	}

	counts, err := st.Replace(context.Background(), rows, nil, 10000)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), counts.Report)
}

func TestSQLite_MigrateIdempotent(t *testing.T) {
	st := newTestSQLiteStore(t)
	assert.NoError(t, st.Migrate(context.Background()))
}
