// Package accident models per-person accident involvement records and
// selects the ones that fall inside a search area.
package accident

import "time"

// Severity is the injury severity of an involved person.
type Severity int

// Severity levels. Lower is more severe. SeverityUnknown is stored for
// people involved without a recorded injury.
const (
	SeverityUnknown Severity = 0
	SeverityKilled  Severity = 1
	SeveritySevere  Severity = 2
	SeverityLight   Severity = 3
)

// Known reports whether s is one of the counted injury levels.
func (s Severity) Known() bool {
	return s >= SeverityKilled && s <= SeverityLight
}

// String implements fmt.Stringer.
func (s Severity) String() string {
	switch s {
	case SeverityKilled:
		return "killed"
	case SeveritySevere:
		return "severely_injured"
	case SeverityLight:
		return "light_injured"
	default:
		return "unknown"
	}
}

// Provider codes for the road-accident data providers.
const (
	ProviderCBSType1 = 1
	ProviderCBSType3 = 3
)

// LocationAccuracyPrecise marks a record geocoded to an exact point.
const LocationAccuracyPrecise = 1

// InvolvementRecord is one person's involvement in one accident. A single
// accident yields zero or more records.
type InvolvementRecord struct {
	AccidentID       int64     `json:"accident_id"`
	ProviderCode     int       `json:"provider_code"`
	Latitude         float64   `json:"latitude"`
	Longitude        float64   `json:"longitude"`
	Severity         Severity  `json:"injury_severity"`
	AgeGroup         int       `json:"age_group"`
	Timestamp        time.Time `json:"accident_timestamp"`
	LocationAccuracy int       `json:"location_accuracy"`

	AccidentYear        int    `json:"accident_year"`
	SeverityHebrew      string `json:"injury_severity_hebrew,omitempty"`
	InjuredType         int    `json:"injured_type,omitempty"`
	InjuredTypeHebrew   string `json:"injured_type_hebrew,omitempty"`
	VehicleType         int    `json:"involve_vehicle_type,omitempty"`
	VehicleTypeHebrew   string `json:"involve_vehicle_type_hebrew,omitempty"`
	SpeedLimit          int    `json:"speed_limit,omitempty"`
	SpeedLimitHebrew    string `json:"speed_limit_hebrew,omitempty"`
	CrossLocation       int    `json:"cross_location,omitempty"`
	CrossLocationHebrew string `json:"cross_location_hebrew,omitempty"`
}

// Year returns the accident year, falling back to the timestamp's year when
// the source did not supply one.
func (r InvolvementRecord) Year() int {
	if r.AccidentYear != 0 {
		return r.AccidentYear
	}
	return r.Timestamp.Year()
}

// Window is a half-open time interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Valid reports whether End is strictly after Start.
func (w Window) Valid() bool {
	return w.End.After(w.Start)
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}
