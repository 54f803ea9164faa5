package injury

import (
	"net/url"
	"strconv"

	"github.com/roadsafety/schools-cli/internal/school"
)

// DefaultUIBaseURL is the map UI the school links point to.
const DefaultUIBaseURL = "https://www.anyway.co.il/"

const (
	uiDateLayout = "2006-01-02"
	uiZoom       = "17"
	// Accident subtype for accidents involving a pedestrian.
	uiPedestrianAccidentType = "1"
)

// Links are the map UI deep links for one school.
type Links struct {
	MapOnly     string `json:"school_anyway_link"`
	WithFilters string `json:"anyway_link_with_filters"`
}

// BuildLinks renders both UI links for s, centred on the school and using
// the run's date window.
func BuildLinks(baseURL string, s school.School, p Params) Links {
	if baseURL == "" {
		baseURL = DefaultUIBaseURL
	}

	q := url.Values{}
	q.Set("zoom", uiZoom)
	q.Set("start_date", p.Window.Start.Format(uiDateLayout))
	q.Set("end_date", p.Window.End.Format(uiDateLayout))
	q.Set("lat", strconv.FormatFloat(s.Latitude, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(s.Longitude, 'f', -1, 64))
	q.Set("show_fatal", "1")
	q.Set("show_severe", "1")
	q.Set("show_light", "1")
	q.Set("accurate", "1")
	if p.Predicate.RequirePreciseLocation {
		q.Set("approx", "")
	} else {
		q.Set("approx", "1")
	}
	q.Set("show_markers", "1")
	q.Set("show_discussions", "0")
	q.Set("acctype", uiPedestrianAccidentType)
	q.Set("age_groups", ageGroupParam(p.Predicate.AgeGroups))

	withFilters := baseURL + "?" + q.Encode()
	q.Set("map_only", "true")
	return Links{
		MapOnly:     baseURL + "?" + q.Encode(),
		WithFilters: withFilters,
	}
}

func ageGroupParam(groups []int) string {
	var b []byte
	for _, g := range groups {
		b = strconv.AppendInt(b, int64(g), 10)
	}
	return string(b)
}
