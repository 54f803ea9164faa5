package accident

import (
	"maps"
	"os"
	"slices"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Built-in preset names.
const (
	PresetAllSeverities  = "all_severities"
	PresetSeverityCapped = "severity_capped"
)

// DefaultAgeGroups are the child age-group codes (0-19 years).
var DefaultAgeGroups = []int{1, 2, 3, 4}

// DefaultPresets returns the built-in predicates. Both accept the two CBS
// providers and exact locations only; the capped preset also drops any
// severity above lightly injured.
func DefaultPresets() map[string]Predicate {
	capped := basePreset()
	capped.MaxSeverity = SeverityLight

	return map[string]Predicate{
		PresetAllSeverities:  basePreset(),
		PresetSeverityCapped: capped,
	}
}

func basePreset() Predicate {
	return Predicate{
		TrustedProviders:       []int{ProviderCBSType1, ProviderCBSType3},
		RequirePreciseLocation: true,
		AgeGroups:              slices.Clone(DefaultAgeGroups),
	}
}

type presetFile struct {
	Presets map[string]Predicate `yaml:"presets"`
}

// ParsePresets decodes a presets document and layers it over the built-in
// presets. A preset in the document replaces a built-in one of the same name.
func ParsePresets(data []byte) (map[string]Predicate, error) {
	var f presetFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "accident: parse presets")
	}

	out := DefaultPresets()
	for name, p := range f.Presets {
		if err := p.Validate(); err != nil {
			return nil, eris.Wrapf(err, "accident: preset %q", name)
		}
		out[name] = p.Normalize()
	}
	return out, nil
}

// LoadPresets reads a presets file. An empty path yields the built-ins.
func LoadPresets(path string) (map[string]Predicate, error) {
	if path == "" {
		return DefaultPresets(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "accident: read presets %s", path)
	}
	return ParsePresets(data)
}

// LookupPreset returns the named predicate.
func LookupPreset(presets map[string]Predicate, name string) (Predicate, error) {
	p, ok := presets[name]
	if !ok {
		names := slices.Sorted(maps.Keys(presets))
		return Predicate{}, eris.Errorf("accident: unknown preset %q (available: %v)", name, names)
	}
	return p.Normalize(), nil
}
