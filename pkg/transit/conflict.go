package transit

import (
	"maps"
	"slices"
)

// RouteSet is a set of route IDs.
type RouteSet map[string]struct{}

// ConflictSet maps every stop visited by at least two distinct routes to the
// IDs of those routes. It is read-only once built.
type ConflictSet map[string]RouteSet

// Conflicts scans the routes once and keeps the stops shared by two or more
// routes. A route that visits the same stop twice is counted once.
func Conflicts(routes []Route) ConflictSet {
	all := make(map[string]RouteSet)
	for _, r := range routes {
		for _, s := range r.Stops {
			set, ok := all[s.ID]
			if !ok {
				set = make(RouteSet)
				all[s.ID] = set
			}
			set[r.ID] = struct{}{}
		}
	}

	conflicts := make(ConflictSet)
	for id, set := range all {
		if len(set) >= 2 {
			conflicts[id] = set
		}
	}
	return conflicts
}

// Has reports whether stopID is a conflict stop.
func (c ConflictSet) Has(stopID string) bool {
	_, ok := c[stopID]
	return ok
}

// Count returns the number of routes passing through stopID, or 0 if the
// stop is not shared.
func (c ConflictSet) Count(stopID string) int {
	return len(c[stopID])
}

// Participants returns the sorted route IDs sharing stopID.
func (c ConflictSet) Participants(stopID string) []string {
	return slices.Sorted(maps.Keys(c[stopID]))
}

// StopIDs returns the sorted conflict stop IDs.
func (c ConflictSet) StopIDs() []string {
	return slices.Sorted(maps.Keys(c))
}
