package school

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// MemoryDirectory serves a fixed list of schools, for example one loaded
// from a CSV export of the directory.
type MemoryDirectory struct {
	schools []School
}

// NewMemoryDirectory creates a MemoryDirectory.
func NewMemoryDirectory(schools []School) *MemoryDirectory {
	return &MemoryDirectory{schools: schools}
}

// List implements Directory. Results are ordered by school id.
func (d *MemoryDirectory) List(_ context.Context, f Filter) ([]School, error) {
	var out []School
	for _, s := range d.schools {
		if f.Allows(s) {
			out = append(out, s)
		}
	}
	slices.SortStableFunc(out, func(a, b School) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out, nil
}

// LoadCSVFile reads schools from a CSV file on disk.
func LoadCSVFile(path string) ([]School, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "school: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	return ReadCSV(f)
}

// ReadCSV parses a school directory export with the header
// school_id, school_type, school_name, yishuv_name, latitude, longitude.
// Empty coordinates are read as zero.
func ReadCSV(r io.Reader) ([]School, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, eris.Wrap(err, "school: read CSV header")
	}
	cols := make(map[string]int, len(header))
	for i, c := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(c, "\ufeff"))] = i
	}
	for _, req := range []string{"school_id", "school_type", "school_name", "yishuv_name", "latitude", "longitude"} {
		if _, ok := cols[req]; !ok {
			return nil, eris.Errorf("school: CSV missing column %q", req)
		}
	}

	var schools []School
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "school: read CSV line %d", line)
		}
		get := func(name string) string { return strings.TrimSpace(row[cols[name]]) }

		id, err := strconv.ParseInt(get("school_id"), 10, 64)
		if err != nil {
			return nil, eris.Wrapf(err, "school: CSV line %d: school_id", line)
		}
		lat, err := parseCoord(get("latitude"))
		if err != nil {
			return nil, eris.Wrapf(err, "school: CSV line %d: latitude", line)
		}
		lon, err := parseCoord(get("longitude"))
		if err != nil {
			return nil, eris.Wrapf(err, "school: CSV line %d: longitude", line)
		}

		schools = append(schools, School{
			ID:           id,
			Category:     get("school_type"),
			Name:         get("school_name"),
			Municipality: get("yishuv_name"),
			Latitude:     lat,
			Longitude:    lon,
		})
	}
	return schools, nil
}

func parseCoord(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
