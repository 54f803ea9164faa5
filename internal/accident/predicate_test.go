package accident

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testWindow = Window{
	Start: time.Date(2014, 1, 1, 0, 0, 0, 0, time.UTC),
	End:   time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC),
}

func matchingRecord() InvolvementRecord {
	return InvolvementRecord{
		AccidentID:       1,
		ProviderCode:     ProviderCBSType1,
		Latitude:         32.0,
		Longitude:        34.8,
		Severity:         SeverityLight,
		AgeGroup:         2,
		Timestamp:        time.Date(2016, 5, 1, 8, 0, 0, 0, time.UTC),
		LocationAccuracy: LocationAccuracyPrecise,
		InjuredType:      1,
		VehicleType:      15,
	}
}

func TestPredicateMatches(t *testing.T) {
	base := DefaultPresets()[PresetAllSeverities]

	tests := []struct {
		name   string
		pred   func(Predicate) Predicate
		record func(InvolvementRecord) InvolvementRecord
		want   bool
	}{
		{"baseline", nil, nil, true},
		{"untrusted provider", nil, func(r InvolvementRecord) InvolvementRecord { r.ProviderCode = 2; return r }, false},
		{"before window", nil, func(r InvolvementRecord) InvolvementRecord {
			r.Timestamp = testWindow.Start.Add(-time.Second)
			return r
		}, false},
		{"at window start", nil, func(r InvolvementRecord) InvolvementRecord { r.Timestamp = testWindow.Start; return r }, true},
		{"at window end", nil, func(r InvolvementRecord) InvolvementRecord { r.Timestamp = testWindow.End; return r }, false},
		{"approximate location", nil, func(r InvolvementRecord) InvolvementRecord { r.LocationAccuracy = 9; return r }, false},
		{"approximate location allowed",
			func(p Predicate) Predicate { p.RequirePreciseLocation = false; return p },
			func(r InvolvementRecord) InvolvementRecord { r.LocationAccuracy = 9; return r }, true},
		{"adult age group", nil, func(r InvolvementRecord) InvolvementRecord { r.AgeGroup = 8; return r }, false},
		{"severity above cutoff",
			func(p Predicate) Predicate { p.MaxSeverity = SeverityLight; return p },
			func(r InvolvementRecord) InvolvementRecord { r.Severity = 4; return r }, false},
		{"severity at cutoff",
			func(p Predicate) Predicate { p.MaxSeverity = SeverityLight; return p },
			nil, true},
		{"cutoff unset keeps unknown severity", nil,
			func(r InvolvementRecord) InvolvementRecord { r.Severity = 4; return r }, true},
		{"cutoff unset keeps empty severity", nil,
			func(r InvolvementRecord) InvolvementRecord { r.Severity = SeverityUnknown; return r }, true},
		{"cutoff drops empty severity",
			func(p Predicate) Predicate { p.MaxSeverity = SeverityLight; return p },
			func(r InvolvementRecord) InvolvementRecord { r.Severity = SeverityUnknown; return r }, false},
		{"injured type filtered",
			func(p Predicate) Predicate { p.InjuredTypes = []int{6, 7}; return p },
			nil, false},
		{"vehicle type accepted",
			func(p Predicate) Predicate { p.VehicleTypes = []int{15, 21}; return p },
			nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			if tt.pred != nil {
				p = tt.pred(p)
			}
			r := matchingRecord()
			if tt.record != nil {
				r = tt.record(r)
			}
			assert.Equal(t, tt.want, p.Matches(r, testWindow))
		})
	}
}

func TestPredicateNormalize(t *testing.T) {
	p := Predicate{
		TrustedProviders: []int{3, 1, 3},
		AgeGroups:        []int{4, 1, 2, 2},
	}
	n := p.Normalize()

	assert.Equal(t, []int{1, 3}, n.TrustedProviders)
	assert.Equal(t, []int{1, 2, 4}, n.AgeGroups)
	assert.Nil(t, n.InjuredTypes)
	// Original is untouched.
	assert.Equal(t, []int{3, 1, 3}, p.TrustedProviders)
}

func TestPredicateValidate(t *testing.T) {
	require.NoError(t, DefaultPresets()[PresetSeverityCapped].Validate())

	err := Predicate{AgeGroups: []int{1}}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trusted provider")

	err = Predicate{TrustedProviders: []int{1}}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "age group")

	err = Predicate{TrustedProviders: []int{1}, AgeGroups: []int{1}, MaxSeverity: -1}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max severity")
}

func TestWindow(t *testing.T) {
	assert.True(t, testWindow.Valid())
	assert.False(t, Window{Start: testWindow.End, End: testWindow.Start}.Valid())
	assert.False(t, Window{Start: testWindow.Start, End: testWindow.Start}.Valid())
}

func TestInvolvementRecordYear(t *testing.T) {
	r := matchingRecord()
	assert.Equal(t, 2016, r.Year())
	r.AccidentYear = 2015
	assert.Equal(t, 2015, r.Year())
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "killed", SeverityKilled.String())
	assert.Equal(t, "severely_injured", SeveritySevere.String())
	assert.Equal(t, "light_injured", SeverityLight.String())
	assert.Equal(t, "unknown", Severity(9).String())
	assert.Equal(t, "unknown", SeverityUnknown.String())
}

func TestSeverityKnown(t *testing.T) {
	for _, s := range []Severity{SeverityKilled, SeveritySevere, SeverityLight} {
		assert.True(t, s.Known(), "severity %d", s)
	}
	for _, s := range []Severity{SeverityUnknown, 4, -1} {
		assert.False(t, s.Known(), "severity %d", s)
	}
}
