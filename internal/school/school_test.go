package school

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSchools() []School {
	return []School{
		{ID: 3, Category: CategoryGeneralSchool, Name: "Gimel", Municipality: "Haifa", Latitude: 32.8, Longitude: 35.0},
		{ID: 1, Category: CategoryKindergarten, Name: "Alef", Municipality: "Tel Aviv", Latitude: 32.0, Longitude: 34.8},
		{ID: 2, Category: "תיכון", Name: "Bet", Municipality: "Tel Aviv", Latitude: 32.1, Longitude: 34.8},
		{ID: 4, Category: CategoryGeneralSchool, Name: "Dalet", Municipality: "Haifa"},
		{ID: 5, Category: CategoryGeneralSchool, Name: "He", Municipality: "Haifa", Latitude: 32.8},
	}
}

func TestFilterAllows(t *testing.T) {
	f := EligibleFilter(nil)
	var got []int64
	for _, s := range sampleSchools() {
		if f.Allows(s) {
			got = append(got, s.ID)
		}
	}
	assert.Equal(t, []int64{3, 1}, got)
}

func TestFilterAllows_AllowList(t *testing.T) {
	f := EligibleFilter([]int64{1, 2})
	assert.True(t, f.Allows(sampleSchools()[1]))
	assert.False(t, f.Allows(sampleSchools()[0]), "not in allow-list")
	assert.False(t, f.Allows(sampleSchools()[2]), "ineligible category")
}

func TestFilterAllows_Empty(t *testing.T) {
	for _, s := range sampleSchools() {
		assert.True(t, Filter{}.Allows(s))
	}
}

func TestMemoryDirectory_List(t *testing.T) {
	d := NewMemoryDirectory(sampleSchools())
	got, err := d.List(context.Background(), EligibleFilter(nil))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(3), got[1].ID)
}

const sampleCSV = `school_id,school_type,school_name,yishuv_name,latitude,longitude
541896,בית ספר,יסודי א,תל אביב -יפו,32.0853,34.7818
513986,גן ילדים,גן ורד,חיפה,,
`

func TestReadCSV(t *testing.T) {
	schools, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, schools, 2)

	assert.Equal(t, int64(541896), schools[0].ID)
	assert.Equal(t, CategoryGeneralSchool, schools[0].Category)
	assert.Equal(t, "תל אביב -יפו", schools[0].Municipality)
	assert.True(t, schools[0].HasCoordinates())
	assert.False(t, schools[1].HasCoordinates())
}

func TestReadCSV_Errors(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("school_id,school_type\n1,x\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing column")

	_, err = ReadCSV(strings.NewReader("school_id,school_type,school_name,yishuv_name,latitude,longitude\nabc,x,y,z,1,2\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "school_id")

	_, err = ReadCSV(strings.NewReader("school_id,school_type,school_name,yishuv_name,latitude,longitude\n1,x,y,z,north,2\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "latitude")
}

func TestLoadCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schools.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))
	schools, err := LoadCSVFile(path)
	require.NoError(t, err)
	assert.Len(t, schools, 2)
}

func TestPostgresDirectory_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT .+ FROM "schools_with_description"\s+WHERE school_type = ANY\(\$1\) AND latitude IS NOT NULL .+ AND school_id = ANY\(\$2\)\s+ORDER BY school_id`).
		WithArgs(EligibleCategories, []int64{541896}).
		WillReturnRows(pgxmock.NewRows([]string{"school_id", "school_type", "school_name", "yishuv_name", "latitude", "longitude"}).
			AddRow(int64(541896), CategoryGeneralSchool, "יסודי א", "תל אביב -יפו", 32.0853, 34.7818))

	d := NewPostgresDirectory(mock)
	got, err := d.List(context.Background(), EligibleFilter([]int64{541896}))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "יסודי א", got[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDirectory_ListNoFilter(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM "schools_with_description"\s+ORDER BY school_id`).
		WillReturnRows(pgxmock.NewRows([]string{"school_id", "school_type", "school_name", "yishuv_name", "latitude", "longitude"}))

	got, err := NewPostgresDirectory(mock).List(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDirectory_ListError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT").WillReturnError(fmt.Errorf("connection refused"))

	_, err = NewPostgresDirectory(mock).List(context.Background(), EligibleFilter(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list schools")
}
