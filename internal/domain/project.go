package domain

import "sort"

// Breakdown is a categorical sub-map pivoted into parallel arrays.
type Breakdown struct {
	Keys      []string         `json:"keys"`
	Subseries map[string][]int `json:"subseries"`
}

// ProjectSubseries pivots the sub-map stored under field into one sequence per
// key, aligned with dates. Keys are the sorted union over every day of the
// series. A day that lacks a key, or carries it as unknown, contributes 0.
func ProjectSubseries(series TimeSeries, dates []string, field string) Breakdown {
	keyset := make(map[string]struct{})
	for _, rec := range series {
		for k := range rec.Breakdown(field) {
			keyset[k] = struct{}{}
		}
	}

	keys := make([]string, 0, len(keyset))
	for k := range keyset {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sub := make(map[string][]int, len(keys))
	for _, k := range keys {
		sub[k] = make([]int, len(dates))
	}
	for i, d := range dates {
		for k, c := range series[d].Breakdown(field) {
			sub[k][i] = c.Or(0)
		}
	}
	return Breakdown{Keys: keys, Subseries: sub}
}
