package injury

import (
	"cmp"
	"slices"

	"github.com/roadsafety/schools-cli/internal/accident"
)

// ReportRow is one (school, year) line of the published report.
type ReportRow struct {
	Municipality         string  `json:"school_yishuv_name"`
	SchoolID             int64   `json:"school_id"`
	SchoolName           string  `json:"school_name"`
	SchoolType           string  `json:"school_type"`
	SchoolLink           string  `json:"school_anyway_link"`
	RankInMunicipality   int     `json:"rank_in_yishuv"`
	SchoolLongitude      float64 `json:"school_longitude"`
	SchoolLatitude       float64 `json:"school_latitude"`
	AccidentYear         int     `json:"accident_year"`
	KilledCount          int     `json:"killed_count"`
	SeverelyInjuredCount int     `json:"severely_injured_count"`
	LightInjuredCount    int     `json:"light_injured_count"`
	TotalCount           int     `json:"total_injured_killed_count"`
	DistanceKM           float64 `json:"distance_in_km"`
}

// Merge joins pivot rows with their school's rank and renders report rows
// sorted by municipality, rank, school id and year. The killed, severe and
// light columns must exist on the pivot.
func Merge(p *Pivot, ranks []RankedSchool, radiusKM float64) ([]ReportRow, error) {
	rankOf := make(map[SchoolKey]int, len(ranks))
	for _, r := range ranks {
		rankOf[r.SchoolKey] = r.Rank
	}

	out := make([]ReportRow, 0, len(p.rows))
	for _, r := range p.rows {
		killed, err := r.Count(accident.SeverityKilled)
		if err != nil {
			return nil, err
		}
		severe, err := r.Count(accident.SeveritySevere)
		if err != nil {
			return nil, err
		}
		light, err := r.Count(accident.SeverityLight)
		if err != nil {
			return nil, err
		}

		out = append(out, ReportRow{
			Municipality:         r.School.Municipality,
			SchoolID:             r.School.ID,
			SchoolName:           r.School.Name,
			SchoolType:           r.School.Category,
			SchoolLink:           r.Links.MapOnly,
			RankInMunicipality:   rankOf[keyOf(r.School)],
			SchoolLongitude:      r.School.Longitude,
			SchoolLatitude:       r.School.Latitude,
			AccidentYear:         r.Year,
			KilledCount:          killed,
			SeverelyInjuredCount: severe,
			LightInjuredCount:    light,
			TotalCount:           r.Total,
			DistanceKM:           radiusKM,
		})
	}

	slices.SortStableFunc(out, func(a, b ReportRow) int {
		return cmp.Or(
			cmp.Compare(a.Municipality, b.Municipality),
			cmp.Compare(a.RankInMunicipality, b.RankInMunicipality),
			cmp.Compare(a.SchoolID, b.SchoolID),
			cmp.Compare(a.AccidentYear, b.AccidentYear),
		)
	})
	return out, nil
}
