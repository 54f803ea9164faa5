package injury

import (
	"cmp"
	"maps"
	"slices"

	"github.com/rotisserie/eris"

	"github.com/roadsafety/schools-cli/internal/accident"
	"github.com/roadsafety/schools-cli/internal/school"
)

// SchoolKey identifies a school within a municipality.
type SchoolKey struct {
	Municipality string
	SchoolID     int64
	SchoolName   string
	Category     string
}

func keyOf(s school.School) SchoolKey {
	return SchoolKey{
		Municipality: s.Municipality,
		SchoolID:     s.ID,
		SchoolName:   s.Name,
		Category:     s.Category,
	}
}

type groupKey struct {
	SchoolKey
	Year int
}

// PivotRow holds the severity counts of one school in one year.
type PivotRow struct {
	School school.School
	Links  Links
	Year   int
	Total  int

	counts map[accident.Severity]int
}

// Count returns the count for severity s.
func (r PivotRow) Count(s accident.Severity) (int, error) {
	n, ok := r.counts[s]
	if !ok {
		return 0, eris.Wrapf(ErrMissingAggregationColumn, "severity %d (%s)", int(s), s)
	}
	return n, nil
}

// Pivot is the wide count table: one row per school and year, one column
// per severity.
type Pivot struct {
	rows    []*PivotRow
	columns map[accident.Severity]struct{}
}

// BuildPivot counts matched records by school, year and severity. Columns
// are the known severities present anywhere in matched; absent cells are
// zero. Records without a known severity are not counted.
func BuildPivot(matched []MatchedRecord) *Pivot {
	p := &Pivot{columns: make(map[accident.Severity]struct{})}
	index := make(map[groupKey]*PivotRow)

	for _, m := range matched {
		if !m.Severity.Known() {
			continue
		}
		k := groupKey{SchoolKey: keyOf(m.School), Year: m.Year()}
		row, ok := index[k]
		if !ok {
			row = &PivotRow{
				School: m.School,
				Links:  m.Links,
				Year:   k.Year,
				counts: make(map[accident.Severity]int),
			}
			index[k] = row
			p.rows = append(p.rows, row)
		}
		row.counts[m.Severity]++
		p.columns[m.Severity] = struct{}{}
	}

	p.fill()
	p.sort()
	return p
}

// EnsureColumns adds the given severity columns, zero-filled, if absent.
func (p *Pivot) EnsureColumns(sevs ...accident.Severity) {
	for _, s := range sevs {
		p.columns[s] = struct{}{}
	}
	p.fill()
}

// AddEmptySchools appends a year-0 row with all counts zero for every
// school that has no row yet. links is indexed like schools.
func (p *Pivot) AddEmptySchools(schools []school.School, links []Links) {
	present := make(map[int64]struct{}, len(p.rows))
	for _, r := range p.rows {
		present[r.School.ID] = struct{}{}
	}
	for i, s := range schools {
		if _, ok := present[s.ID]; ok {
			continue
		}
		present[s.ID] = struct{}{}
		row := &PivotRow{School: s, counts: make(map[accident.Severity]int)}
		if i < len(links) {
			row.Links = links[i]
		}
		p.rows = append(p.rows, row)
	}
	p.fill()
	p.sort()
}

// Columns returns the severity columns in ascending order.
func (p *Pivot) Columns() []accident.Severity {
	return slices.Sorted(maps.Keys(p.columns))
}

// Rows returns copies of the pivot rows ordered by municipality, school id
// and year.
func (p *Pivot) Rows() []PivotRow {
	out := make([]PivotRow, len(p.rows))
	for i, r := range p.rows {
		out[i] = *r
		out[i].counts = maps.Clone(r.counts)
	}
	return out
}

func (p *Pivot) fill() {
	for _, r := range p.rows {
		total := 0
		for s := range p.columns {
			total += r.counts[s]
			if _, ok := r.counts[s]; !ok {
				r.counts[s] = 0
			}
		}
		r.Total = total
	}
}

func (p *Pivot) sort() {
	slices.SortStableFunc(p.rows, func(a, b *PivotRow) int {
		return cmp.Or(
			cmp.Compare(a.School.Municipality, b.School.Municipality),
			cmp.Compare(a.School.ID, b.School.ID),
			cmp.Compare(a.Year, b.Year),
		)
	})
}
