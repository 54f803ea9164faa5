package accident

import (
	"slices"

	"github.com/rotisserie/eris"
)

// Predicate holds the non-spatial conditions a record must meet. It is a
// plain value: filters never modify it, and Normalize returns a copy.
type Predicate struct {
	// TrustedProviders lists the provider codes whose records are accepted.
	TrustedProviders []int `yaml:"trusted_providers" mapstructure:"trusted_providers" json:"trusted_providers"`

	// RequirePreciseLocation keeps only records geocoded to an exact point.
	RequirePreciseLocation bool `yaml:"require_precise_location" mapstructure:"require_precise_location" json:"require_precise_location"`

	// AgeGroups lists the accepted age-group codes.
	AgeGroups []int `yaml:"age_groups" mapstructure:"age_groups" json:"age_groups"`

	// MaxSeverity drops records with a severity value above the cutoff.
	// Zero disables the cutoff.
	MaxSeverity Severity `yaml:"max_severity" mapstructure:"max_severity" json:"max_severity,omitempty"`

	// InjuredTypes and VehicleTypes restrict the involvement kind when set.
	InjuredTypes []int `yaml:"injured_types" mapstructure:"injured_types" json:"injured_types,omitempty"`
	VehicleTypes []int `yaml:"vehicle_types" mapstructure:"vehicle_types" json:"vehicle_types,omitempty"`
}

// Normalize returns a copy with every code list sorted and deduplicated.
func (p Predicate) Normalize() Predicate {
	p.TrustedProviders = sortedSet(p.TrustedProviders)
	p.AgeGroups = sortedSet(p.AgeGroups)
	p.InjuredTypes = sortedSet(p.InjuredTypes)
	p.VehicleTypes = sortedSet(p.VehicleTypes)
	return p
}

func sortedSet(in []int) []int {
	if len(in) == 0 {
		return nil
	}
	out := slices.Clone(in)
	slices.Sort(out)
	return slices.Compact(out)
}

// Validate checks that the predicate can match anything at all.
func (p Predicate) Validate() error {
	if len(p.TrustedProviders) == 0 {
		return eris.New("accident: predicate needs at least one trusted provider")
	}
	if len(p.AgeGroups) == 0 {
		return eris.New("accident: predicate needs at least one age group")
	}
	if p.MaxSeverity < 0 {
		return eris.Errorf("accident: max severity must not be negative, got %d", p.MaxSeverity)
	}
	return nil
}

// Matches evaluates every non-spatial condition against r.
func (p Predicate) Matches(r InvolvementRecord, w Window) bool {
	if !slices.Contains(p.TrustedProviders, r.ProviderCode) {
		return false
	}
	if !w.Contains(r.Timestamp) {
		return false
	}
	if p.RequirePreciseLocation && r.LocationAccuracy != LocationAccuracyPrecise {
		return false
	}
	if !slices.Contains(p.AgeGroups, r.AgeGroup) {
		return false
	}
	if p.MaxSeverity > 0 && (r.Severity == SeverityUnknown || r.Severity > p.MaxSeverity) {
		return false
	}
	if len(p.InjuredTypes) > 0 && !slices.Contains(p.InjuredTypes, r.InjuredType) {
		return false
	}
	if len(p.VehicleTypes) > 0 && !slices.Contains(p.VehicleTypes, r.VehicleType) {
		return false
	}
	return true
}
