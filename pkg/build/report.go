package build

import (
	"fmt"
	"strings"

	"github.com/matzehuels/transitgit/pkg/transit"
)

// RouteProgress is one route's position when the driver gave up.
type RouteProgress struct {
	Route transit.Route
	State State
}

// String describes how far the route got, naming stops rather than indices.
func (p RouteProgress) String() string {
	r := p.Route
	span := fmt.Sprintf("(%s to %s)", r.First().Name, r.Last().Name)
	switch s := p.State.(type) {
	case Built:
		return fmt.Sprintf("%s built %s", r.Name, span)
	case Pending:
		done, _ := r.Stop(s.BuiltIndex)
		if next, ok := r.Stop(s.BuiltIndex + 1); ok {
			return fmt.Sprintf("%s done until stop %s (included), waiting for %s", r.Name, done.Name, next.Name)
		}
		return fmt.Sprintf("%s done until stop %s (included)", r.Name, done.Name)
	default:
		return fmt.Sprintf("%s not started %s, waiting for %s", r.Name, span, r.First().Name)
	}
}

// DeadlockReport lists every route when no shared stop can be merged because
// each one still waits for a route that is stuck elsewhere.
type DeadlockReport struct {
	Routes []RouteProgress // Sorted by route ID
}

// Waiting returns the routes that are not built.
func (r *DeadlockReport) Waiting() []RouteProgress {
	var out []RouteProgress
	for _, p := range r.Routes {
		if !IsBuilt(p.State) {
			out = append(out, p)
		}
	}
	return out
}

func (r *DeadlockReport) Error() string {
	return fmt.Sprintf("%d of %d routes wait on each other", len(r.Waiting()), len(r.Routes))
}

// String renders one line per route.
func (r *DeadlockReport) String() string {
	var b strings.Builder
	for _, p := range r.Routes {
		b.WriteString(p.String())
		b.WriteByte('\n')
	}
	return b.String()
}
