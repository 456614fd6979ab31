package build

import (
	"context"
	"maps"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/transitgit/pkg/errors"
	"github.com/matzehuels/transitgit/pkg/observability"
	"github.com/matzehuels/transitgit/pkg/store"
	"github.com/matzehuels/transitgit/pkg/transit"
)

// Options configures a [Driver].
type Options struct {
	// Branches maps route ID to branch name. Missing routes are named with
	// [store.AssignBranches].
	Branches map[string]string

	// Conflicts overrides the shared stops. Nil computes them from the routes,
	// which must already have a consistent stop order.
	Conflicts transit.ConflictSet

	// Logger receives debug output for every merge. Nil uses log.Default().
	Logger *log.Logger

	// OnTransition, if set, is called for every state change.
	OnTransition func(routeID string, from, to State)
}

// Stats counts what a run wrote.
type Stats struct {
	Routes      int           `json:"routes"`
	Conflicts   int           `json:"conflicts"`
	Commits     int           `json:"commits"`
	Merges      int           `json:"merges"` // Commits for shared stops
	BranchMoves int           `json:"branch_moves"`
	Passes      int           `json:"passes"`
	Duration    time.Duration `json:"duration"`
}

// Result is the outcome of a successful [Driver.Run].
type Result struct {
	States   map[string]State          // Route ID to Built state
	Heads    map[string]store.CommitID // Branch name to final commit
	Branches map[string]string         // Route ID to branch name
	Stats    Stats
}

// Driver builds the commit graph of a set of routes. It builds every route
// up to its first shared stop, then repeatedly merges shared stops that all
// their routes have reached and resumes those routes after the merge.
//
// A Driver is single use and not safe for concurrent use.
type Driver struct {
	store        *countingStore
	routes       map[string]transit.Route
	order        []string
	branches     map[string]string
	conflicts    transit.ConflictSet
	states       map[string]State
	logger       *log.Logger
	onTransition func(routeID string, from, to State)
	stats        Stats
}

// NewDriver validates routes and prepares a run against s.
func NewDriver(s store.Store, routes []transit.Route, opts Options) (*Driver, error) {
	if s == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "store is required")
	}
	if err := transit.ValidateRoutes(routes); err != nil {
		return nil, err
	}

	branches := store.AssignBranches(routes)
	maps.Copy(branches, opts.Branches)
	for _, name := range branches {
		if err := errors.ValidateBranchName(name); err != nil {
			return nil, err
		}
	}

	conflicts := opts.Conflicts
	if conflicts == nil {
		conflicts = transit.Conflicts(routes)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	d := &Driver{
		store:        &countingStore{next: s},
		routes:       make(map[string]transit.Route, len(routes)),
		branches:     branches,
		conflicts:    conflicts,
		states:       make(map[string]State, len(routes)),
		logger:       logger,
		onTransition: opts.OnTransition,
	}
	for _, r := range routes {
		d.routes[r.ID] = r
		d.states[r.ID] = Untouched{Length: r.Len()}
	}
	d.order = slices.Sorted(maps.Keys(d.routes))
	d.stats.Routes = len(routes)
	d.stats.Conflicts = len(conflicts)
	return d, nil
}

// Run builds every route. It fails with ErrCodeDeadlock (cause
// [*DeadlockReport]) when a pass finds no shared stop to merge, and with
// ErrCodeInvariant on an illegal state transition. A cancelled context
// stops the run between merges.
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	for _, id := range d.order {
		if err := d.build(ctx, id); err != nil {
			return nil, err
		}
	}

	for !d.done() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		d.stats.Passes++

		groups := d.readyGroups()
		hooks := observability.Build()
		hooks.OnPass(ctx, d.stats.Passes, len(groups))
		if len(groups) == 0 {
			report := d.deadlock()
			hooks.OnDeadlock(ctx, len(report.Waiting()))
			return nil, errors.Wrap(errors.ErrCodeDeadlock, report, "no shared stop can be merged")
		}
		for _, g := range groups {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := d.merge(ctx, g.stopID, g.routes); err != nil {
				return nil, err
			}
		}
	}

	d.stats.Duration = time.Since(start)
	d.stats.Commits = d.store.commits
	d.stats.BranchMoves = d.store.moves
	res := &Result{
		States:   maps.Clone(d.states),
		Heads:    make(map[string]store.CommitID, len(d.states)),
		Branches: maps.Clone(d.branches),
		Stats:    d.stats,
	}
	for id, st := range d.states {
		res.Heads[d.branches[id]] = Head(st)
	}
	return res, nil
}

// States returns a copy of the current state of every route.
func (d *Driver) States() map[string]State {
	return maps.Clone(d.states)
}

// Frontier maps each unbuilt route to the ID of the next stop it needs.
func (d *Driver) Frontier() map[string]string {
	out := make(map[string]string)
	for _, id := range d.order {
		i, ok := NextIndex(d.states[id])
		if !ok {
			continue
		}
		if stop, ok := d.routes[id].Stop(i); ok {
			out[id] = stop.ID
		}
	}
	return out
}

type group struct {
	stopID string
	routes []string // Sorted
}

// readyGroups returns, sorted by stop ID, the shared stops that every route
// passing through them is waiting for.
func (d *Driver) readyGroups() []group {
	frontier := d.Frontier()
	waiting := make(map[string][]string)
	for _, id := range d.order {
		if stopID, ok := frontier[id]; ok {
			waiting[stopID] = append(waiting[stopID], id)
		}
	}

	var out []group
	for _, stopID := range slices.Sorted(maps.Keys(waiting)) {
		routes := waiting[stopID]
		if d.conflicts.Has(stopID) && len(routes) == d.conflicts.Count(stopID) {
			out = append(out, group{stopID: stopID, routes: routes})
		}
	}
	return out
}

func (d *Driver) merge(ctx context.Context, stopID string, routes []string) error {
	host := routes[0]
	name, _ := d.routes[host].StopName(stopID)

	var parents []store.CommitID
	for _, id := range routes {
		if head := Head(d.states[id]); head != "" && !slices.Contains(parents, head) {
			parents = append(parents, head)
		}
	}

	commit, err := d.store.CreateCommit(ctx, name, parents, d.branches[host])
	if err != nil {
		return err
	}
	d.stats.Merges++
	observability.Build().OnMerge(ctx, stopID, len(routes), len(parents))
	d.logger.Debug("merged shared stop", "stop", name, "routes", routes, "parents", len(parents), "commit", commit.Short())

	for _, id := range routes[1:] {
		if err := d.store.MoveBranchHead(ctx, d.branches[id], commit); err != nil {
			return err
		}
	}

	for _, id := range routes {
		next, err := AdvanceByOne(d.states[id], commit)
		if err != nil {
			d.logger.Debug("illegal transition", "route", id, "stop", name)
			return err
		}
		d.transition(id, next)
	}
	for _, id := range routes {
		if err := d.build(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (d *Driver) build(ctx context.Context, id string) error {
	next, err := BuildRoute(ctx, d.store, d.routes[id], d.branches[id], d.states[id], d.conflicts)
	if err != nil {
		return err
	}
	d.transition(id, next)
	return nil
}

func (d *Driver) transition(id string, next State) {
	prev := d.states[id]
	if prev == next {
		return
	}
	d.states[id] = next
	if d.onTransition != nil {
		d.onTransition(id, prev, next)
	}
}

func (d *Driver) done() bool {
	for _, st := range d.states {
		if !IsBuilt(st) {
			return false
		}
	}
	return true
}

func (d *Driver) deadlock() *DeadlockReport {
	report := &DeadlockReport{Routes: make([]RouteProgress, 0, len(d.order))}
	for _, id := range d.order {
		report.Routes = append(report.Routes, RouteProgress{Route: d.routes[id], State: d.states[id]})
	}
	return report
}

// countingStore counts the writes of one run.
type countingStore struct {
	next    store.Store
	commits int
	moves   int
}

func (c *countingStore) CreateCommit(ctx context.Context, content string, parents []store.CommitID, branch string) (store.CommitID, error) {
	id, err := c.next.CreateCommit(ctx, content, parents, branch)
	if err == nil {
		c.commits++
	}
	return id, err
}

func (c *countingStore) MoveBranchHead(ctx context.Context, branch string, id store.CommitID) error {
	err := c.next.MoveBranchHead(ctx, branch, id)
	if err == nil {
		c.moves++
	}
	return err
}
