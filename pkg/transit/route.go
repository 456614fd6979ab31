package transit

import (
	"fmt"
	"slices"

	"github.com/matzehuels/transitgit/pkg/errors"
)

// Stop is a physical stopping location. ID is the identity; Name is only used
// for display and commit messages.
type Stop struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Route is one line of the network with the ordered stops of a single trip.
type Route struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Stops []Stop `json:"stops"`
}

// Len returns the number of stops.
func (r Route) Len() int { return len(r.Stops) }

// Stop returns the stop at index i.
func (r Route) Stop(i int) (Stop, bool) {
	if i < 0 || i >= len(r.Stops) {
		return Stop{}, false
	}
	return r.Stops[i], true
}

// First returns the first stop, or the zero Stop for an empty route.
func (r Route) First() Stop {
	s, _ := r.Stop(0)
	return s
}

// Last returns the last stop, or the zero Stop for an empty route.
func (r Route) Last() Stop {
	s, _ := r.Stop(len(r.Stops) - 1)
	return s
}

// StopIDs returns the stop IDs in route order. Duplicates are kept.
func (r Route) StopIDs() []string {
	ids := make([]string, len(r.Stops))
	for i, s := range r.Stops {
		ids[i] = s.ID
	}
	return ids
}

// StopNames returns the stop names in route order.
func (r Route) StopNames() []string {
	names := make([]string, len(r.Stops))
	for i, s := range r.Stops {
		names[i] = s.Name
	}
	return names
}

// StopName returns the name of the first stop with the given ID.
func (r Route) StopName(id string) (string, bool) {
	for _, s := range r.Stops {
		if s.ID == id {
			return s.Name, true
		}
	}
	return "", false
}

// Reversed returns a copy of r with its stops in the opposite order.
// The receiver's slice is not modified.
func (r Route) Reversed() Route {
	stops := slices.Clone(r.Stops)
	slices.Reverse(stops)
	return Route{ID: r.ID, Name: r.Name, Stops: stops}
}

// String renders the route the way the selection prompt lists it.
func (r Route) String() string {
	if len(r.Stops) == 0 {
		return r.Name
	}
	return fmt.Sprintf("%s: From %s to %s", r.Name, r.First().Name, r.Last().Name)
}

// ValidateRoutes checks the preconditions of graph construction: every route
// has an ID and at least one stop, and route IDs are unique.
func ValidateRoutes(routes []Route) error {
	seen := make(map[string]bool, len(routes))
	for _, r := range routes {
		if r.ID == "" {
			return errors.New(errors.ErrCodeInvalidInput, "route %q has an empty id", r.Name)
		}
		if seen[r.ID] {
			return errors.New(errors.ErrCodeInvalidInput, "duplicate route id %q", r.ID)
		}
		seen[r.ID] = true
		if len(r.Stops) == 0 {
			return errors.New(errors.ErrCodeInvalidInput, "route %q (%s) has no stops", r.Name, r.ID)
		}
		for i, s := range r.Stops {
			if s.ID == "" {
				return errors.New(errors.ErrCodeInvalidInput, "route %q stop %d has an empty id", r.Name, i)
			}
		}
	}
	return nil
}
