package analysis

import (
	"math"
	"sort"

	"adoptdash/domain/adoption"
	domainStats "adoptdash/domain/stats"
	"adoptdash/internal/errors"
)

// RankByTechnology averages attr per technology and sorts ascending, ties by
// technology name. Technologies without any value for attr sort last.
func RankByTechnology(view adoption.View, attr adoption.Attribute) (domainStats.Ranking, error) {
	if !attr.IsNumeric() {
		return domainStats.Ranking{}, errors.InvalidInput("unknown attribute: " + string(attr))
	}

	groups := view.GroupByTechnology()
	ranking := domainStats.Ranking{Attribute: attr, Entries: make([]domainStats.RankEntry, 0, len(groups))}
	for _, g := range groups {
		values := present(g.View.Values(attr))
		ranking.Entries = append(ranking.Entries, domainStats.RankEntry{
			Technology: g.Key,
			Value:      mean(values),
			Count:      len(values),
		})
	}

	sort.SliceStable(ranking.Entries, func(i, j int) bool {
		a, b := ranking.Entries[i], ranking.Entries[j]
		aNaN, bNaN := math.IsNaN(a.Value), math.IsNaN(b.Value)
		switch {
		case aNaN != bNaN:
			return bNaN
		case !aNaN && a.Value != b.Value:
			return a.Value < b.Value
		default:
			return a.Technology < b.Technology
		}
	})
	return ranking, nil
}
