// Package school lists the schools whose surroundings are analysed.
package school

import (
	"context"
	"slices"
)

// Directory categories as they appear in the source data.
const (
	CategoryKindergarten  = "גן ילדים"
	CategoryGeneralSchool = "בית ספר"
)

// EligibleCategories are the categories included in the analysis.
var EligibleCategories = []string{CategoryKindergarten, CategoryGeneralSchool}

// School is one directory entry. Missing coordinates are stored as zero.
type School struct {
	ID           int64   `json:"school_id"`
	Category     string  `json:"school_type"`
	Name         string  `json:"school_name"`
	Municipality string  `json:"school_yishuv_name"`
	Latitude     float64 `json:"school_latitude"`
	Longitude    float64 `json:"school_longitude"`
}

// HasCoordinates reports whether both coordinates are present and non-zero.
func (s School) HasCoordinates() bool {
	return s.Latitude != 0 && s.Longitude != 0
}

// Filter restricts a directory listing.
type Filter struct {
	Categories         []string
	RequireCoordinates bool
	// IDs, when non-empty, limits the listing to these schools.
	IDs []int64
}

// EligibleFilter selects geocoded kindergartens and schools, optionally
// limited to an explicit allow-list.
func EligibleFilter(ids []int64) Filter {
	return Filter{
		Categories:         slices.Clone(EligibleCategories),
		RequireCoordinates: true,
		IDs:                slices.Clone(ids),
	}
}

// Allows reports whether s passes the filter.
func (f Filter) Allows(s School) bool {
	if len(f.Categories) > 0 && !slices.Contains(f.Categories, s.Category) {
		return false
	}
	if f.RequireCoordinates && !s.HasCoordinates() {
		return false
	}
	if len(f.IDs) > 0 && !slices.Contains(f.IDs, s.ID) {
		return false
	}
	return true
}

// Directory lists schools.
type Directory interface {
	List(ctx context.Context, f Filter) ([]School, error)
}
