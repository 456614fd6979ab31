// Package feed reads routes from a GTFS static feed.
//
// A feed is read from a directory or a zip archive with [ReadPath], or from
// downloaded bytes with [ReadZip]. Only routes.txt, trips.txt, stops.txt and
// stop_times.txt are used. Every trip becomes a [Candidate]: the route it
// belongs to and the ordered stops it serves.
//
// Stops are identified by [StopKey], which drops the platform suffix after
// the first ":", so the same stop served from different platforms is shared
// between routes.
//
// A run builds one [transit.Route] per route ID. [Representative] picks one
// trip per route without asking; [Select] converts an explicit choice.
package feed

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/transitgit/pkg/errors"
	"github.com/matzehuels/transitgit/pkg/transit"
)

// RouteInfo is a row of routes.txt.
type RouteInfo struct {
	ID        string `json:"id"`
	ShortName string `json:"short_name,omitempty"`
	LongName  string `json:"long_name,omitempty"`
}

// DisplayName returns the long name, falling back to the short name and
// then the ID.
func (r RouteInfo) DisplayName() string {
	return cmp.Or(r.LongName, r.ShortName, r.ID)
}

// Candidate is one trip of a route with its stops in stop_sequence order.
type Candidate struct {
	Route    RouteInfo      `json:"route"`
	Trip     string         `json:"trip"`
	Headsign string         `json:"headsign,omitempty"`
	Stops    []transit.Stop `json:"stops"`
}

// String is the label shown when choosing routes.
func (c Candidate) String() string {
	return fmt.Sprintf("%s: From %s to %s", c.Route.DisplayName(), c.first(), c.last())
}

func (c Candidate) first() string {
	if len(c.Stops) == 0 {
		return "?"
	}
	return c.Stops[0].Name
}

func (c Candidate) last() string {
	if len(c.Stops) == 0 {
		return "?"
	}
	return c.Stops[len(c.Stops)-1].Name
}

// ToRoute converts the candidate into a route named after its route.
func (c Candidate) ToRoute() transit.Route {
	return transit.Route{
		ID:    c.Route.ID,
		Name:  c.Route.DisplayName(),
		Stops: slices.Clone(c.Stops),
	}
}

// Feed is the parsed content of a GTFS feed.
type Feed struct {
	Routes     map[string]RouteInfo // By route ID
	Trips      int                  // Rows of trips.txt
	Candidates []Candidate          // Trips with stops, sorted by route then trip ID
}

// RouteIDs returns the IDs of routes that have at least one candidate.
func (f *Feed) RouteIDs() []string {
	ids := make(map[string]struct{})
	for _, c := range f.Candidates {
		ids[c.Route.ID] = struct{}{}
	}
	return slices.Sorted(maps.Keys(ids))
}

// ParsePrefilter splits a comma-separated list of route names. Blank entries
// are dropped.
func ParsePrefilter(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Prefilter keeps the candidates whose route long or short name is one of
// names. No names keeps everything.
func Prefilter(cands []Candidate, names []string) []Candidate {
	if len(names) == 0 {
		return cands
	}
	keep := make(map[string]bool, len(names))
	for _, n := range names {
		keep[n] = true
	}

	var out []Candidate
	for _, c := range cands {
		if (c.Route.LongName != "" && keep[c.Route.LongName]) || (c.Route.ShortName != "" && keep[c.Route.ShortName]) {
			out = append(out, c)
		}
	}
	return out
}

// Match keeps the candidates of the routes named by keys. A key matches a
// route ID, short name or long name. A key that matches nothing is an
// ErrCodeNotFound error.
func Match(cands []Candidate, keys []string) ([]Candidate, error) {
	var out []Candidate
	for _, key := range keys {
		found := false
		for _, c := range cands {
			if c.Route.ID == key || c.Route.ShortName == key || c.Route.LongName == key {
				out = append(out, c)
				found = true
			}
		}
		if !found {
			return nil, errors.New(errors.ErrCodeNotFound, "no route matches %q", key)
		}
	}
	return out, nil
}

// Representative picks one candidate per route: the trip with the most
// stops, ties going to the smallest trip ID. The result is sorted by route ID.
func Representative(cands []Candidate) []Candidate {
	best := make(map[string]Candidate)
	for _, c := range cands {
		cur, ok := best[c.Route.ID]
		if !ok || len(c.Stops) > len(cur.Stops) || (len(c.Stops) == len(cur.Stops) && c.Trip < cur.Trip) {
			best[c.Route.ID] = c
		}
	}

	out := make([]Candidate, 0, len(best))
	for _, id := range slices.Sorted(maps.Keys(best)) {
		out = append(out, best[id])
	}
	return out
}

// Select converts the chosen candidates into routes, one per route ID. When
// several trips of a route are chosen the last one wins. Routes keep the
// order in which their ID first appears.
func Select(chosen []Candidate) ([]transit.Route, error) {
	if len(chosen) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "at least one route must be selected")
	}

	index := make(map[string]int)
	var routes []transit.Route
	for _, c := range chosen {
		if len(c.Stops) == 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "trip %s of route %s has no stops", c.Trip, c.Route.DisplayName())
		}
		r := c.ToRoute()
		if i, ok := index[r.ID]; ok {
			routes[i] = r
			continue
		}
		index[r.ID] = len(routes)
		routes = append(routes, r)
	}
	return routes, nil
}
