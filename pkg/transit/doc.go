// Package transit provides the route model and the ordering analysis that
// precedes commit graph construction.
//
// # Overview
//
// A [Route] is an ordered sequence of [Stop] values. Stops are identified by
// their ID alone: two routes that list a stop with the same ID pass through
// the same physical location, regardless of the display name each feed row
// carries.
//
// Routes coming out of a GTFS feed are oriented independently. One trip of a
// line may run north to south while another line sharing part of the track
// is recorded south to north. Before the stops can be chained into commits,
// every pair of routes must agree on the relative order of the stops they
// share. [Reconcile] establishes that agreement.
//
// # Order Reconciliation
//
// [SameOrder] is the pairwise predicate: the stops common to two routes must
// appear in the same sequence in both. [Reconcile] walks the routes in input
// order, accepting each one as given, reversed, or after flipping the
// accepted routes that disagree with it. Anything it cannot resolve with one
// such flip is reported as an IRRECONCILABLE_ORDER error carrying an
// [OrderReport]:
//
//	routes, orientations, err := transit.Reconcile(routes)
//	var report *transit.OrderReport
//	if errors.As(err, &report) {
//	    fmt.Println(report)
//	}
//
// The repair is deliberately limited to whole-route reversal. Routes whose
// shared stops form a genuine ordering cycle are rejected.
//
// # Conflicts
//
// [Conflicts] computes the stops visited by at least two distinct routes.
// Those stops become merge commits; every other stop becomes a plain commit
// on its route's branch. The result is computed once from the reconciled
// routes and never changes afterwards.
package transit
