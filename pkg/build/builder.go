package build

import (
	"context"

	"github.com/matzehuels/transitgit/pkg/store"
	"github.com/matzehuels/transitgit/pkg/transit"
)

// BuildRoute commits the stops of r that follow st, one commit per stop on
// branch, until it reaches a stop in conflicts or the end of the route.
// Conflict stops are left for the [Driver] to merge.
//
// A built route is returned unchanged. A pending route whose last stop was
// already committed (by a merge at its final stop) becomes [Built].
func BuildRoute(ctx context.Context, s store.Store, r transit.Route, branch string, st State, conflicts transit.ConflictSet) (State, error) {
	next, ok := NextIndex(st)
	if !ok {
		return st, nil
	}
	if p, pending := st.(Pending); pending && next >= p.Length {
		return Built{Final: p.Head}, nil
	}

	for i := next; i < r.Len(); i++ {
		stop := r.Stops[i]
		if conflicts.Has(stop.ID) {
			break
		}

		var parents []store.CommitID
		if head := Head(st); head != "" {
			parents = []store.CommitID{head}
		}
		id, err := s.CreateCommit(ctx, stop.Name, parents, branch)
		if err != nil {
			return st, err
		}
		if st, err = AdvanceBy(st, id, i); err != nil {
			return nil, err
		}
	}
	return st, nil
}
