// Package pipeline runs the complete feed → routes → commit graph pipeline.
//
// The pipeline has four stages:
//
//  1. Load: read a GTFS feed from a directory, a zip file or a URL
//  2. Select: pick one trip per route, by name, interactively or by default
//  3. Reconcile: orient every route so shared stops agree in order
//  4. Build: write the commit graph into a git repository or memory
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Feed:   "./gtfs",
//	    GitDir: "./result",
//	})
//	if err != nil {
//	    var dl *build.DeadlockReport
//	    if errors.As(err, &dl) {
//	        fmt.Print(dl)
//	    }
//	}
//	fmt.Println(result.Stats.Commits, "commits")
//
// Each stage is also available on its own: [Runner.Load], [Runner.Choose],
// [Runner.Reconcile] and [Runner.Build].
package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/transitgit/pkg/build"
	"github.com/matzehuels/transitgit/pkg/commitgraph"
	"github.com/matzehuels/transitgit/pkg/errors"
	"github.com/matzehuels/transitgit/pkg/feed"
	"github.com/matzehuels/transitgit/pkg/transit"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultFeed is where the feed is read from when none is given.
	DefaultFeed = "./gtfs"

	// DefaultGitDir is where the repository is written when none is given.
	DefaultGitDir = "./result"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Picker chooses trips from the prefiltered candidates, typically by asking
// the user. Returning several trips of one route keeps the last.
type Picker func(ctx context.Context, cands []feed.Candidate) ([]feed.Candidate, error)

// Options contains all configuration for one pipeline run.
type Options struct {
	// Load options
	Feed    string        `json:"feed"`
	NoCache bool          `json:"no_cache,omitempty"`
	TTL     time.Duration `json:"ttl,omitempty"`

	// Select options
	Prefilter string   `json:"prefilter,omitempty"` // Comma-separated long or short names
	Routes    []string `json:"routes,omitempty"`    // Route IDs or names; overrides Pick
	Pick      Picker   `json:"-"`

	// Build options
	GitDir      string    `json:"git_dir"`
	DryRun      bool      `json:"dry_run,omitempty"` // Build in memory only
	Force       bool      `json:"force,omitempty"`
	AuthorName  string    `json:"author_name,omitempty"`
	AuthorEmail string    `json:"author_email,omitempty"`
	When        time.Time `json:"when,omitzero"` // Fixed commit time for reproducible hashes

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies the run in logs.
	RunID string

	// Feed is the parsed feed.
	Feed *feed.Feed

	// Routes are the selected routes with their decided orientation applied.
	Routes []transit.Route

	// Orientations records, per route, whether it was reversed.
	Orientations []transit.Orientation

	// Conflicts are the stops shared by two or more routes.
	Conflicts transit.ConflictSet

	// Graph mirrors every commit written to the store.
	Graph *commitgraph.Graph

	// Build is the driver's result: final states, heads and branches.
	Build *build.Result

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Candidates    int
	Routes        int
	Reversed      int
	Conflicts     int
	Commits       int
	Merges        int
	BranchMoves   int
	LoadTime      time.Duration
	ReconcileTime time.Duration
	BuildTime     time.Duration
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the options and fills in defaults.
// Calling it again has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Feed == "" {
		o.Feed = DefaultFeed
	}
	if err := errors.ValidateFeedLocation(o.Feed); err != nil {
		return err
	}
	if !o.DryRun {
		if o.GitDir == "" {
			o.GitDir = DefaultGitDir
		}
		if err := errors.ValidatePath(o.GitDir); err != nil {
			return err
		}
	}
	for _, r := range o.Routes {
		if r == "" {
			return errors.New(errors.ErrCodeInvalidInput, "route name cannot be empty")
		}
	}
	if o.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache TTL cannot be negative")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// IsRemote reports whether the feed is downloaded.
func (o *Options) IsRemote() bool {
	return errors.IsURL(o.Feed)
}
