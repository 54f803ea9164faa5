package report

import (
	"github.com/roadsafety/schools-cli/internal/injury"
)

// ReportColumns are the columns of the report table in insert order.
var ReportColumns = []string{
	"school_yishuv_name",
	"school_id",
	"school_name",
	"school_type",
	"school_anyway_link",
	"rank_in_yishuv",
	"school_longitude",
	"school_latitude",
	"accident_year",
	"killed_count",
	"severely_injured_count",
	"light_injured_count",
	"total_injured_killed_count",
	"distance_in_km",
}

// ReportValues returns r's values in ReportColumns order.
func ReportValues(r injury.ReportRow) []any {
	return []any{
		r.Municipality,
		r.SchoolID,
		r.SchoolName,
		r.SchoolType,
		r.SchoolLink,
		r.RankInMunicipality,
		r.SchoolLongitude,
		r.SchoolLatitude,
		r.AccidentYear,
		r.KilledCount,
		r.SeverelyInjuredCount,
		r.LightInjuredCount,
		r.TotalCount,
		r.DistanceKM,
	}
}

// RawColumns are the columns of the raw matched-record table.
var RawColumns = []string{
	"accident_id",
	"provider_code",
	"accident_timestamp",
	"accident_year",
	"injury_severity",
	"injury_severity_hebrew",
	"age_group",
	"injured_type",
	"injured_type_hebrew",
	"involve_vehicle_type",
	"involve_vehicle_type_hebrew",
	"speed_limit",
	"speed_limit_hebrew",
	"cross_location",
	"cross_location_hebrew",
	"location_accuracy",
	"latitude",
	"longitude",
	"school_id",
	"school_type",
	"school_name",
	"school_yishuv_name",
	"school_longitude",
	"school_latitude",
	"school_anyway_link",
	"anyway_link_with_filters",
}

// RawValues returns m's values in RawColumns order.
func RawValues(m injury.MatchedRecord) []any {
	return []any{
		m.AccidentID,
		m.ProviderCode,
		m.Timestamp,
		m.Year(),
		int(m.Severity),
		m.SeverityHebrew,
		m.AgeGroup,
		m.InjuredType,
		m.InjuredTypeHebrew,
		m.VehicleType,
		m.VehicleTypeHebrew,
		m.SpeedLimit,
		m.SpeedLimitHebrew,
		m.CrossLocation,
		m.CrossLocationHebrew,
		m.LocationAccuracy,
		m.Latitude,
		m.Longitude,
		m.School.ID,
		m.School.Category,
		m.School.Name,
		m.School.Municipality,
		m.School.Longitude,
		m.School.Latitude,
		m.Links.MapOnly,
		m.Links.WithFilters,
	}
}

func reportMatrix(rows []injury.ReportRow) [][]any {
	out := make([][]any, len(rows))
	for i, r := range rows {
		out[i] = ReportValues(r)
	}
	return out
}

func rawMatrix(raw []injury.MatchedRecord) [][]any {
	out := make([][]any, len(raw))
	for i, m := range raw {
		out[i] = RawValues(m)
	}
	return out
}
