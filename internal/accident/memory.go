package accident

import (
	"context"
	"encoding/csv"
	"io"
	"iter"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/roadsafety/schools-cli/internal/geo"
)

// MemorySource serves records held in memory, evaluating the predicate and
// search area itself.
type MemorySource struct {
	records []InvolvementRecord
}

// NewMemorySource creates a MemorySource over records.
func NewMemorySource(records []InvolvementRecord) *MemorySource {
	return &MemorySource{records: records}
}

// Query implements Source.
func (s *MemorySource) Query(ctx context.Context, q Query) iter.Seq2[InvolvementRecord, error] {
	return func(yield func(InvolvementRecord, error) bool) {
		for _, r := range s.records {
			if err := ctx.Err(); err != nil {
				yield(InvolvementRecord{}, eris.Wrap(err, "accident: memory query"))
				return
			}
			if !geo.PolygonContains(q.Area, r.Latitude, r.Longitude) {
				continue
			}
			if !q.Predicate.Matches(r, q.Window) {
				continue
			}
			if !yield(r, nil) {
				return
			}
		}
	}
}

// Timestamp layouts accepted in CSV exports.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// LoadCSVFile reads involvement records from a CSV export on disk.
func LoadCSVFile(path string) ([]InvolvementRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "accident: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	return ReadCSV(f)
}

// ReadCSV parses involvement records. The header row names the columns;
// provider_code, latitude, longitude, injury_severity, age_group,
// accident_timestamp and location_accuracy are required.
func ReadCSV(r io.Reader) ([]InvolvementRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, eris.Wrap(err, "accident: read CSV header")
	}
	cols := make(map[string]int, len(header))
	for i, c := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(c, "\ufeff"))] = i
	}
	for _, req := range []string{"provider_code", "latitude", "longitude", "injury_severity", "age_group", "accident_timestamp", "location_accuracy"} {
		if _, ok := cols[req]; !ok {
			return nil, eris.Errorf("accident: CSV missing column %q", req)
		}
	}

	var out []InvolvementRecord
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, eris.Wrapf(err, "accident: read CSV line %d", line)
		}

		p := rowParser{row: row, cols: cols}
		rec := InvolvementRecord{
			AccidentID:          p.atoi64("accident_id"),
			ProviderCode:        p.atoi("provider_code"),
			Latitude:            p.atof("latitude"),
			Longitude:           p.atof("longitude"),
			Severity:            Severity(p.atoi("injury_severity")),
			AgeGroup:            p.atoi("age_group"),
			LocationAccuracy:    p.atoi("location_accuracy"),
			AccidentYear:        p.atoi("accident_year"),
			SeverityHebrew:      p.text("injury_severity_hebrew"),
			InjuredType:         p.atoi("injured_type"),
			InjuredTypeHebrew:   p.text("injured_type_hebrew"),
			VehicleType:         p.atoi("involve_vehicle_type"),
			VehicleTypeHebrew:   p.text("involve_vehicle_type_hebrew"),
			SpeedLimit:          p.atoi("speed_limit"),
			SpeedLimitHebrew:    p.text("speed_limit_hebrew"),
			CrossLocation:       p.atoi("cross_location"),
			CrossLocationHebrew: p.text("cross_location_hebrew"),
		}
		rec.Timestamp = p.timestamp("accident_timestamp")
		if p.err != nil {
			return nil, eris.Wrapf(p.err, "accident: CSV line %d", line)
		}
		out = append(out, rec)
	}
	return out, nil
}

// rowParser reads typed values from a CSV row, keeping the first error.
type rowParser struct {
	row  []string
	cols map[string]int
	err  error
}

func (p *rowParser) text(name string) string {
	i, ok := p.cols[name]
	if !ok || i >= len(p.row) {
		return ""
	}
	return strings.TrimSpace(p.row[i])
}

func (p *rowParser) atoi(name string) int {
	return int(p.atoi64(name))
}

func (p *rowParser) atoi64(name string) int64 {
	s := p.text(name)
	if s == "" || p.err != nil {
		return 0
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		p.err = eris.Wrapf(err, "column %s", name)
	}
	return v
}

func (p *rowParser) atof(name string) float64 {
	s := p.text(name)
	if s == "" || p.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		p.err = eris.Wrapf(err, "column %s", name)
	}
	return v
}

func (p *rowParser) timestamp(name string) time.Time {
	s := p.text(name)
	if p.err != nil {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	p.err = eris.Errorf("column %s: unrecognised timestamp %q", name, s)
	return time.Time{}
}
