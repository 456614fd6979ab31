package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/transitgit/pkg/build"
	"github.com/matzehuels/transitgit/pkg/cache"
	"github.com/matzehuels/transitgit/pkg/commitgraph"
	"github.com/matzehuels/transitgit/pkg/errors"
	"github.com/matzehuels/transitgit/pkg/feed"
	"github.com/matzehuels/transitgit/pkg/httputil"
	"github.com/matzehuels/transitgit/pkg/observability"
	"github.com/matzehuels/transitgit/pkg/store"
	"github.com/matzehuels/transitgit/pkg/transit"
)

// Runner executes the pipeline with a shared download cache.
//
// The Runner holds no per-run state, so one Runner can serve several runs
// with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs load → select → reconcile → build.
//
// Fatal construction errors keep their code: IRRECONCILABLE_ORDER carries a
// [*transit.OrderReport] and DEADLOCK a [*build.DeadlockReport]. On a
// deadlock the partial Result is returned alongside the error so callers
// can still export what was built.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{RunID: uuid.NewString()}
	logger := opts.Logger.With("run", result.RunID[:8])
	opts.Logger = logger

	// Stage 1: Load
	loadStart := time.Now()
	f, err := r.Load(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Feed = f
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.Candidates = len(f.Candidates)

	logger.Info("loaded feed",
		"routes", len(f.Routes),
		"trips", f.Trips,
		"candidates", len(f.Candidates),
		"duration", result.Stats.LoadTime)

	// Stage 2: Select
	routes, err := r.Choose(ctx, f, opts)
	if err != nil {
		return nil, err
	}

	// Stage 3: Reconcile
	reconcileStart := time.Now()
	routes, orients, err := r.Reconcile(ctx, routes, opts)
	result.Stats.ReconcileTime = time.Since(reconcileStart)
	if err != nil {
		return nil, err
	}
	result.Routes = routes
	result.Orientations = orients
	for _, o := range orients {
		if o == transit.Flipped {
			result.Stats.Reversed++
		}
	}
	result.Stats.Routes = len(routes)

	result.Conflicts = transit.Conflicts(routes)
	result.Stats.Conflicts = len(result.Conflicts)

	// Stage 4: Build
	buildStart := time.Now()
	rec, res, err := r.Build(ctx, routes, opts)
	result.Stats.BuildTime = time.Since(buildStart)
	if rec != nil {
		result.Graph = rec.Graph()
		gs := result.Graph.Stats()
		result.Stats.Commits = gs.Commits
		result.Stats.BranchMoves = gs.Moves
	}
	if err != nil {
		if errors.Is(err, errors.ErrCodeDeadlock) {
			return result, err
		}
		return nil, err
	}
	result.Build = res
	result.Stats.Merges = res.Stats.Merges

	logger.Info("built commit graph",
		"commits", result.Stats.Commits,
		"merges", result.Stats.Merges,
		"branches", len(res.Heads),
		"duration", result.Stats.BuildTime)

	return result, nil
}

// Load reads the feed named by opts.Feed. Remote feeds go through the
// runner's cache unless opts.NoCache is set.
func (r *Runner) Load(ctx context.Context, opts Options) (*feed.Feed, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, opts.Feed)
	start := time.Now()

	var (
		f   *feed.Feed
		err error
	)
	if opts.IsRemote() {
		f, err = r.download(ctx, opts)
	} else {
		f, err = feed.ReadPath(opts.Feed)
	}

	count := 0
	if f != nil {
		count = len(f.Routes)
	}
	hooks.OnLoadComplete(ctx, opts.Feed, count, time.Since(start), err)
	return f, err
}

func (r *Runner) download(ctx context.Context, opts Options) (*feed.Feed, error) {
	var c cache.Cache = cache.NewNullCache()
	if !opts.NoCache {
		c = cache.Instrument(r.Cache, "feed")
	}
	fetcher := httputil.NewFetcher(c, r.Keyer)
	if opts.TTL > 0 {
		fetcher.TTL = opts.TTL
	}

	opts.Logger.Debug("downloading feed", "url", opts.Feed)
	data, err := fetcher.Get(ctx, opts.Feed)
	if err != nil {
		return nil, err
	}
	opts.Logger.Debug("downloaded feed", "bytes", len(data))
	return feed.ReadZip(data)
}

// Choose applies the prefilter and selects one trip per route. Explicit
// opts.Routes win over opts.Pick; with neither, every route contributes its
// representative trip.
func (r *Runner) Choose(ctx context.Context, f *feed.Feed, opts Options) ([]transit.Route, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	cands := f.Candidates
	if names := feed.ParsePrefilter(opts.Prefilter); len(names) > 0 {
		cands = feed.Prefilter(cands, names)
		opts.Logger.Debug("applied prefilter", "names", names, "candidates", len(cands))
	}
	if len(cands) == 0 {
		return nil, errors.New(errors.ErrCodeNotFound, "no routes left after prefilter %q", opts.Prefilter)
	}

	var chosen []feed.Candidate
	switch {
	case len(opts.Routes) > 0:
		matched, err := feed.Match(cands, opts.Routes)
		if err != nil {
			return nil, err
		}
		chosen = feed.Representative(matched)
	case opts.Pick != nil:
		picked, err := opts.Pick(ctx, cands)
		if err != nil {
			return nil, err
		}
		chosen = picked
	default:
		chosen = feed.Representative(cands)
	}

	routes, err := feed.Select(chosen)
	if err != nil {
		return nil, err
	}
	opts.Logger.Info("selected routes", "routes", len(routes))
	return routes, nil
}

// Reconcile orients routes and logs the decided order of each.
func (r *Runner) Reconcile(ctx context.Context, routes []transit.Route, opts Options) ([]transit.Route, []transit.Orientation, error) {
	r.applyLogger(&opts)

	start := time.Now()
	out, orients, err := transit.Reconcile(routes)
	flipped := 0
	for _, o := range orients {
		if o == transit.Flipped {
			flipped++
		}
	}
	observability.Pipeline().OnReconcileComplete(ctx, len(routes), flipped, time.Since(start), err)
	if err != nil {
		return nil, nil, err
	}

	for i, rt := range out {
		opts.Logger.Info("decided order",
			"route", rt.Name,
			"orientation", orients[i],
			"stops", strings.Join(rt.StopNames(), " > "))
	}
	opts.Logger.Info("reconciled routes", "routes", len(out), "reversed", flipped)
	return out, orients, nil
}

// Build writes the commit graph of reconciled routes. The returned recorder
// holds every commit written, even when the build fails.
func (r *Runner) Build(ctx context.Context, routes []transit.Route, opts Options) (*commitgraph.Recorder, *build.Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, nil, err
	}

	target, err := r.openStore(opts)
	if err != nil {
		return nil, nil, err
	}
	rec := commitgraph.NewRecorder(target)

	conflicts := transit.Conflicts(routes)
	hooks := observability.Pipeline()
	hooks.OnBuildStart(ctx, len(routes), len(conflicts))
	start := time.Now()

	driver, err := build.NewDriver(rec, routes, build.Options{
		Conflicts: conflicts,
		Logger:    opts.Logger,
	})
	if err != nil {
		hooks.OnBuildComplete(ctx, 0, 0, time.Since(start), err)
		return nil, nil, err
	}

	res, err := driver.Run(ctx)
	stats := rec.Graph().Stats()
	hooks.OnBuildComplete(ctx, stats.Commits, stats.Merges, time.Since(start), err)
	if err != nil {
		return rec, nil, err
	}
	return rec, res, nil
}

func (r *Runner) openStore(opts Options) (store.Store, error) {
	if opts.DryRun {
		opts.Logger.Debug("dry run, building in memory")
		return store.NewMemStore(), nil
	}
	gs, err := store.OpenGit(opts.GitDir, store.GitOptions{
		AuthorName:  opts.AuthorName,
		AuthorEmail: opts.AuthorEmail,
		When:        opts.When,
		Force:       opts.Force,
	})
	if err != nil {
		return nil, err
	}
	opts.Logger.Debug("opened repository", "dir", gs.Dir())
	return gs, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
