package transit

import (
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/transitgit/pkg/errors"
)

// Orientation records whether a route was kept as given or reversed by
// [Reconcile].
type Orientation int

const (
	// AsGiven means the route keeps its feed order.
	AsGiven Orientation = iota
	// Flipped means the route's stops were reversed.
	Flipped
)

func (o Orientation) String() string {
	if o == Flipped {
		return "reversed"
	}
	return "as given"
}

// SameOrder reports whether the stops shared by a and b appear in the same
// relative order in both routes.
//
// Both routes are filtered down to the stop IDs the other one also visits,
// each keeping its own order, and the two sequences must be identical
// element by element. Duplicated stop IDs therefore have to line up too.
// Routes with fewer than two shared stops always agree.
func SameOrder(a, b Route) bool {
	inA := idSet(a)
	inB := idSet(b)

	var fromB []string
	for _, s := range b.Stops {
		if inA[s.ID] {
			fromB = append(fromB, s.ID)
		}
	}
	var fromA []string
	for _, s := range a.Stops {
		if inB[s.ID] {
			fromA = append(fromA, s.ID)
		}
	}
	return slices.Equal(fromA, fromB)
}

func idSet(r Route) map[string]bool {
	set := make(map[string]bool, len(r.Stops))
	for _, s := range r.Stops {
		set[s.ID] = true
	}
	return set
}

// accepted is a route admitted to the reference set with its chosen
// orientation. index points back into the input slice.
type accepted struct {
	index  int
	route  Route
	orient Orientation
}

// Reconcile chooses an orientation for every route so that all pairs agree
// under [SameOrder].
//
// Routes are processed in input order. Each route is accepted as given if it
// agrees with every accepted route, reversed if its reversal does, or else
// after a single repair: the accepted routes that disagree with the reversed
// route are themselves reversed, and the repair is kept only if the accepted
// routes then agree pairwise and each agrees with the route as given. If that
// fails too, Reconcile returns an
// IRRECONCILABLE_ORDER error whose cause is an [*OrderReport].
//
// The returned routes and orientations are index-aligned with the input.
// The input slice and its routes are not modified.
func Reconcile(routes []Route) ([]Route, []Orientation, error) {
	if err := ValidateRoutes(routes); err != nil {
		return nil, nil, err
	}

	var refs []accepted
	for i, r := range routes {
		if agreesWithAll(r, refs) {
			refs = append(refs, accepted{index: i, route: r, orient: AsGiven})
			continue
		}

		flipped := r.Reversed()
		if agreesWithAll(flipped, refs) {
			refs = append(refs, accepted{index: i, route: flipped, orient: Flipped})
			continue
		}

		if repaired, ok := repair(r, flipped, refs); ok {
			refs = append(repaired, accepted{index: i, route: r, orient: AsGiven})
			continue
		}

		report := newOrderReport(r, flipped, refs)
		return nil, nil, errors.Wrap(errors.ErrCodeIrreconcilableOrder, report,
			"could not unify stop order for route %s", r.Name)
	}

	out := make([]Route, len(routes))
	orients := make([]Orientation, len(routes))
	for _, a := range refs {
		out[a.index] = a.route
		orients[a.index] = a.orient
	}
	return out, orients, nil
}

func agreesWithAll(r Route, refs []accepted) bool {
	for _, ref := range refs {
		if !SameOrder(r, ref.route) {
			return false
		}
	}
	return true
}

// repair flips the accepted routes that disagree with flipped and validates
// the result against itself and against r as given.
func repair(r, flipped Route, refs []accepted) ([]accepted, bool) {
	candidate := make([]accepted, len(refs))
	for i, ref := range refs {
		candidate[i] = ref
		if !SameOrder(flipped, ref.route) {
			candidate[i].route = ref.route.Reversed()
			candidate[i].orient = toggle(ref.orient)
		}
	}

	if !agreesWithAll(r, candidate) {
		return nil, false
	}
	for i := range candidate {
		for j := range candidate {
			if i != j && !SameOrder(candidate[i].route, candidate[j].route) {
				return nil, false
			}
		}
	}
	return candidate, true
}

func toggle(o Orientation) Orientation {
	if o == Flipped {
		return AsGiven
	}
	return Flipped
}

// =============================================================================
// Diagnostics
// =============================================================================

// OrderVerdict is the pairwise comparison of a rejected route with one of
// the routes accepted before it.
type OrderVerdict struct {
	Route    Route // accepted route with its chosen orientation
	AsGiven  bool  // SameOrder(rejected, Route)
	Reversed bool  // SameOrder(reverse(rejected), Route)
}

// OrderReport describes why [Reconcile] could not place a route.
type OrderReport struct {
	Route      Route
	References []OrderVerdict
}

func newOrderReport(r, flipped Route, refs []accepted) *OrderReport {
	report := &OrderReport{Route: r}
	for _, ref := range refs {
		report.References = append(report.References, OrderVerdict{
			Route:    ref.route,
			AsGiven:  SameOrder(r, ref.route),
			Reversed: SameOrder(flipped, ref.route),
		})
	}
	return report
}

// Error implements error so the report can travel as an error cause.
func (r *OrderReport) Error() string {
	var given, reversed int
	for _, v := range r.References {
		if !v.AsGiven {
			given++
		}
		if !v.Reversed {
			reversed++
		}
	}
	return fmt.Sprintf("%d accepted routes disagree as given, %d reversed", given, reversed)
}

// String renders the full dump: the rejected route's stops, then every
// accepted route with its verdict as given and reversed.
func (r *OrderReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Could not unify stops order for route %s.\n", r.Route.Name)
	fmt.Fprintf(&b, "Stops for route %s: %s\n", r.Route.Name, formatNames(r.Route))
	for _, v := range r.References {
		fmt.Fprintf(&b, "(%t) %s: %s\n", v.AsGiven, v.Route.Name, formatNames(v.Route))
		fmt.Fprintf(&b, "(%t,R) %s: %s\n", v.Reversed, v.Route.Name, formatNames(v.Route))
	}
	return b.String()
}

func formatNames(r Route) string {
	return "[" + strings.Join(r.StopNames(), ", ") + "]"
}
