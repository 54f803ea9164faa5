package report

import (
	"time"

	"github.com/roadsafety/schools-cli/internal/accident"
	"github.com/roadsafety/schools-cli/internal/injury"
	"github.com/roadsafety/schools-cli/internal/school"
)

func sampleRows() []injury.ReportRow {
	return []injury.ReportRow{
		{
			Municipality: "חיפה", SchoolID: 10, SchoolName: "אורט", SchoolType: school.CategoryGeneralSchool,
			SchoolLink: "https://example.test/?lat=32.8", RankInMunicipality: 1,
			SchoolLongitude: 35.0, SchoolLatitude: 32.8, AccidentYear: 2018,
			KilledCount: 1, SeverelyInjuredCount: 2, LightInjuredCount: 4, TotalCount: 7, DistanceKM: 0.5,
		},
		{
			Municipality: "חיפה", SchoolID: 11, SchoolName: "רעות", SchoolType: school.CategoryKindergarten,
			RankInMunicipality: 2, SchoolLongitude: 35.01, SchoolLatitude: 32.81, DistanceKM: 0.5,
		},
		{
			Municipality: "עכו", SchoolID: 20, SchoolName: "אלון", SchoolType: school.CategoryGeneralSchool,
			RankInMunicipality: 1, SchoolLongitude: 35.07, SchoolLatitude: 32.92, AccidentYear: 2019,
			LightInjuredCount: 3, TotalCount: 3, DistanceKM: 0.5,
		},
	}
}

func sampleRaw() []injury.MatchedRecord {
	s := school.School{ID: 10, Category: school.CategoryGeneralSchool, Name: "אורט", Municipality: "חיפה", Latitude: 32.8, Longitude: 35.0}
	return []injury.MatchedRecord{
		{
			InvolvementRecord: accident.InvolvementRecord{
				AccidentID: 555, ProviderCode: 1, Latitude: 32.801, Longitude: 35.001,
				Severity: accident.SeverityKilled, SeverityHebrew: "הרוג", AgeGroup: 3,
				Timestamp:        time.Date(2018, 3, 4, 7, 30, 0, 0, time.UTC),
				LocationAccuracy: 1,
			},
			School: s,
			Links:  injury.Links{MapOnly: "https://example.test/?map_only=true", WithFilters: "https://example.test/"},
		},
		{
			InvolvementRecord: accident.InvolvementRecord{
				AccidentID: 556, ProviderCode: 3, Latitude: 32.802, Longitude: 35.002,
				Severity: accident.SeverityLight, AgeGroup: 4,
				Timestamp:        time.Date(2018, 5, 1, 14, 0, 0, 0, time.UTC),
				LocationAccuracy: 1,
			},
			School: s,
		},
	}
}
