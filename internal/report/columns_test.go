package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValuesMatchColumns(t *testing.T) {
	assert.Len(t, ReportValues(sampleRows()[0]), len(ReportColumns))
	assert.Len(t, RawValues(sampleRaw()[0]), len(RawColumns))
}

func TestRawValues(t *testing.T) {
	vals := RawValues(sampleRaw()[0])
	byName := map[string]any{}
	for i, c := range RawColumns {
		byName[c] = vals[i]
	}

	assert.Equal(t, int64(555), byName["accident_id"])
	assert.Equal(t, 1, byName["injury_severity"])
	assert.Equal(t, 2018, byName["accident_year"])
	assert.Equal(t, time.Date(2018, 3, 4, 7, 30, 0, 0, time.UTC), byName["accident_timestamp"])
	assert.Equal(t, int64(10), byName["school_id"])
	assert.Equal(t, "חיפה", byName["school_yishuv_name"])
	assert.Equal(t, "https://example.test/?map_only=true", byName["school_anyway_link"])
}

func TestInsertSQL(t *testing.T) {
	got := insertSQL("t", []string{"a", "b"}, 2)
	assert.Equal(t, "INSERT INTO t (a, b) VALUES (?, ?), (?, ?)", got)
}
