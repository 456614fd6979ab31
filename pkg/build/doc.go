// Package build turns routes with a consistent stop order into a commit
// graph.
//
// # Model
//
// Every route becomes a branch and every stop a commit whose message is the
// stop name. A stop shared by several routes becomes a single commit with one
// parent per route, created on the branch of the route with the smallest ID;
// the other branches are fast-forwarded to it.
//
// # Progress
//
// The progress of a route is a [State]:
//
//	Untouched(n) → Pending(0) → Pending(1) → ... → Built
//
// [AdvanceBy] moves a route after a commit for a known stop index and
// [AdvanceByOne] after a merge. Any other move is an ErrCodeInvariant error.
//
// # Driving
//
// [BuildRoute] commits one route's stops up to its next shared stop.
// [Driver] runs it for every route, then merges each shared stop once all of
// its routes are waiting there, and resumes them:
//
//	d, err := build.NewDriver(s, routes, build.Options{})
//	res, err := d.Run(ctx)
//
// Each merge advances at least two routes, so the loop terminates. A pass in
// which no shared stop is ready is a deadlock; the error carries a
// [*DeadlockReport] describing where each route is stuck.
package build
