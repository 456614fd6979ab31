package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/transitgit/pkg/build"
	"github.com/matzehuels/transitgit/pkg/config"
	"github.com/matzehuels/transitgit/pkg/errors"
	graphio "github.com/matzehuels/transitgit/pkg/io"
	"github.com/matzehuels/transitgit/pkg/pipeline"
	"github.com/matzehuels/transitgit/pkg/render/nodelink"
	"github.com/matzehuels/transitgit/pkg/transit"
)

// buildFlags holds flag values for the build command.
type buildFlags struct {
	feed        string
	gitDir      string
	prefilter   string
	routes      []string
	interactive bool
	dryRun      bool
	force       bool
	noCache     bool
	graph       string
	detailed    bool
}

// buildCommand creates the build command.
func (c *CLI) buildCommand() *cobra.Command {
	var flags buildFlags

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Write the routes of a GTFS feed as a git commit graph",
		Long: `Read a GTFS feed, choose one trip per route and write every route as a
branch. Stops shared by several routes become merge commits.

The feed is a directory, a .zip file or an http(s) URL. Without --route or
--interactive every route of the (prefiltered) feed is used.`,
		Example: `  # Every route of ./gtfs into ./result
  transitgit build

  # Two lines from a remote feed, into a scratch repository
  transitgit build -p https://example.org/gtfs.zip --route U1 --route U2 -g /tmp/net

  # Pick routes interactively and export the graph
  transitgit build -i --prefilter "S1,S2,S3" --graph network.svg`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts := buildOptions(cmd, cfg, flags)
			if flags.interactive && len(opts.Routes) == 0 {
				opts.Pick = pickRoutes
			}
			return c.runBuild(cmd.Context(), cfg, opts, flags)
		},
	}

	flags.register(cmd)
	return cmd
}

// register adds the build flags to cmd.
func (b *buildFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&b.feed, "feed", "p", pipeline.DefaultFeed, "GTFS feed: directory, .zip file or URL")
	f.StringVarP(&b.gitDir, "git-dir", "g", pipeline.DefaultGitDir, "repository to write")
	f.StringVar(&b.prefilter, "prefilter", "", "comma-separated route names to consider")
	f.StringArrayVar(&b.routes, "route", nil, "route ID or name to build (repeatable)")
	f.BoolVarP(&b.interactive, "interactive", "i", false, "choose routes interactively")
	f.BoolVar(&b.dryRun, "dry-run", false, "build in memory without writing a repository")
	f.BoolVar(&b.force, "force", false, "overwrite branches that already exist")
	f.BoolVar(&b.noCache, "no-cache", false, "download the feed even if it is cached")
	f.StringVar(&b.graph, "graph", "", "export the commit graph (.json, .dot or .svg)")
	f.BoolVar(&b.detailed, "detailed", false, "label exported commits with ID and branch")
}

// buildOptions layers flags the user set over the config file.
func buildOptions(cmd *cobra.Command, cfg config.Config, flags buildFlags) pipeline.Options {
	opts := pipeline.Options{
		Feed:        cfg.Feed.Location,
		Prefilter:   cfg.Feed.Prefilter,
		Routes:      cfg.Feed.Routes,
		TTL:         cfg.Feed.CacheTTL,
		GitDir:      cfg.Store.GitDir,
		Force:       cfg.Store.Force,
		AuthorName:  cfg.Store.AuthorName,
		AuthorEmail: cfg.Store.AuthorEmail,
		DryRun:      flags.dryRun,
		NoCache:     flags.noCache,
	}

	set := cmd.Flags().Changed
	if set("feed") {
		opts.Feed = flags.feed
	}
	if set("git-dir") {
		opts.GitDir = flags.gitDir
	}
	if set("prefilter") {
		opts.Prefilter = flags.prefilter
	}
	if set("route") {
		opts.Routes = slices.Clone(flags.routes)
	}
	if set("force") {
		opts.Force = flags.force
	}
	return opts
}

func (c *CLI) runBuild(ctx context.Context, cfg config.Config, opts pipeline.Options, flags buildFlags) error {
	runner, err := c.newRunner(ctx, cfg.Cache, opts.NoCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	res, err := runner.Execute(ctx, opts)
	if err != nil {
		printFailure(err)
		if res != nil && res.Graph != nil && flags.graph != "" {
			if exportErr := exportGraph(ctx, res, flags); exportErr == nil {
				printDetail("Partial graph written to %s", flags.graph)
			}
		}
		return err
	}
	prog.done("Built commit graph")

	printSuccess("Built %d routes", res.Stats.Routes)
	printStats(
		count{res.Stats.Commits, "commit"},
		count{res.Stats.Merges, "merge"},
		count{len(res.Build.Heads), "branch"},
		count{res.Stats.Reversed, "reversed route"},
	)
	for _, r := range res.Routes {
		branch := res.Build.Branches[r.ID]
		printKeyValue(branch, fmt.Sprintf("%s  %s", res.Build.Heads[branch].Short(), StyleDim.Render(r.First().Name+" "+iconArrow+" "+r.Last().Name)))
	}
	printKeyValue("run", res.RunID)

	if flags.graph != "" {
		if err := exportGraph(ctx, res, flags); err != nil {
			return err
		}
		printFile(flags.graph)
	}
	if !opts.DryRun {
		printNextStep("Inspect the network", "git -C "+opts.GitDir+" log --graph --oneline --all")
	}
	return nil
}

// exportGraph writes the commit graph as JSON, DOT or SVG depending on the
// extension of --graph.
func exportGraph(ctx context.Context, res *pipeline.Result, flags buildFlags) error {
	if filepath.Ext(flags.graph) == ".json" {
		if err := graphio.ExportJSON(res.Graph, flags.graph); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "export graph")
		}
		return nil
	}

	data, err := nodelink.Export(ctx, res.Graph, flags.graph, nodelink.Options{
		Detailed: flags.detailed,
		Heads:    true,
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "export graph")
	}
	if err := os.WriteFile(flags.graph, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", flags.graph)
	}
	return nil
}

// printFailure prints the diagnostic dump attached to fatal construction
// errors. Other errors are left to the caller.
func printFailure(err error) {
	var order *transit.OrderReport
	var dl *build.DeadlockReport
	switch {
	case stderrors.As(err, &order):
		printError("Route stop orders cannot be reconciled")
		printBlock(order.String())
	case stderrors.As(err, &dl):
		printError("Build deadlocked: %s", dl.Error())
		printBlock(dl.String())
	case errors.Is(err, errors.ErrCodeInvariant):
		printError("Internal error, please report it: %s", errors.UserMessage(err))
	}
}
