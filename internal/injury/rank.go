package injury

import (
	"cmp"
	"slices"
)

// RankedSchool is a school's total over all years and its dense rank within
// its municipality. Rank 1 has the most injuries.
type RankedSchool struct {
	SchoolKey
	Total int
	Rank  int
}

// RankByMunicipality collapses the pivot to one total per school and dense
// ranks schools by total descending within each municipality. Equal totals
// share a rank and ranks have no gaps.
func RankByMunicipality(p *Pivot) []RankedSchool {
	totals := make(map[SchoolKey]int)
	var order []SchoolKey
	for _, r := range p.rows {
		k := keyOf(r.School)
		if _, ok := totals[k]; !ok {
			order = append(order, k)
		}
		totals[k] += r.Total
	}

	ranked := make([]RankedSchool, 0, len(order))
	for _, k := range order {
		ranked = append(ranked, RankedSchool{SchoolKey: k, Total: totals[k]})
	}

	slices.SortFunc(ranked, func(a, b RankedSchool) int {
		return cmp.Or(
			cmp.Compare(a.Municipality, b.Municipality),
			cmp.Compare(b.Total, a.Total),
			cmp.Compare(a.SchoolID, b.SchoolID),
		)
	})

	for i := range ranked {
		switch {
		case i == 0 || ranked[i].Municipality != ranked[i-1].Municipality:
			ranked[i].Rank = 1
		case ranked[i].Total == ranked[i-1].Total:
			ranked[i].Rank = ranked[i-1].Rank
		default:
			ranked[i].Rank = ranked[i-1].Rank + 1
		}
	}
	return ranked
}
