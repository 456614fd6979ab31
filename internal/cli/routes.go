package cli

import (
	"context"
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/transitgit/pkg/feed"
	"github.com/matzehuels/transitgit/pkg/pipeline"
)

// routesFlags holds flag values for the routes command.
type routesFlags struct {
	feed      string
	prefilter string
	allTrips  bool
	browse    bool
	noCache   bool
}

// routesCommand creates the routes command.
func (c *CLI) routesCommand() *cobra.Command {
	var flags routesFlags

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the routes of a GTFS feed",
		Long: `List the routes of a GTFS feed with the trip that "build" would use for
each. --all-trips lists every trip instead and --browse opens an interactive
browser showing the stops of each trip.`,
		Example: `  transitgit routes -p ./gtfs
  transitgit routes -p https://example.org/gtfs.zip --prefilter "U1,U2"
  transitgit routes --all-trips --browse`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts := pipeline.Options{
				Feed:      cfg.Feed.Location,
				Prefilter: cfg.Feed.Prefilter,
				TTL:       cfg.Feed.CacheTTL,
				NoCache:   flags.noCache,
				DryRun:    true,
			}
			if cmd.Flags().Changed("feed") {
				opts.Feed = flags.feed
			}
			if cmd.Flags().Changed("prefilter") {
				opts.Prefilter = flags.prefilter
			}

			runner, err := c.newRunner(cmd.Context(), cfg.Cache, opts.NoCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			cands, err := c.listRoutes(cmd.Context(), runner, opts, flags.allTrips)
			if err != nil {
				return err
			}
			if flags.browse {
				return browseRoutes(cands)
			}
			printRoutes(cands)
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.feed, "feed", "p", pipeline.DefaultFeed, "GTFS feed: directory, .zip file or URL")
	cmd.Flags().StringVar(&flags.prefilter, "prefilter", "", "comma-separated route names to list")
	cmd.Flags().BoolVar(&flags.allTrips, "all-trips", false, "list every trip instead of one per route")
	cmd.Flags().BoolVarP(&flags.browse, "browse", "b", false, "browse routes interactively")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "download the feed even if it is cached")

	return cmd
}

// listRoutes loads the feed behind a spinner and returns the candidates to
// show.
func (c *CLI) listRoutes(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options, allTrips bool) ([]feed.Candidate, error) {
	spin := newSpinner(ctx, "Loading "+opts.Feed)
	spin.Start()
	f, err := runner.Load(ctx, opts)
	if err != nil {
		spin.StopWithError("Loading %s failed", opts.Feed)
		return nil, err
	}
	spin.Stop()

	cands := f.Candidates
	if names := feed.ParsePrefilter(opts.Prefilter); len(names) > 0 {
		cands = feed.Prefilter(cands, names)
	}
	if !allTrips {
		cands = feed.Representative(cands)
	}
	c.Logger.Debug("listed routes", "feed", opts.Feed, "candidates", len(cands))
	return cands, nil
}

func printRoutes(cands []feed.Candidate) {
	if len(cands) == 0 {
		printInfo("No routes found")
		return
	}

	rows := make([][]string, len(cands))
	for i, cand := range cands {
		rows[i] = []string{
			cand.Route.ID,
			cand.Route.DisplayName(),
			cand.Trip,
			strconv.Itoa(len(cand.Stops)),
			firstName(cand),
			lastName(cand),
		}
	}
	fmt.Fprintln(stdout, renderTable([]string{"Route", "Name", "Trip", "Stops", "From", "To"}, rows))
	printStats(count{len(cands), "trip"})
}

func browseRoutes(cands []feed.Candidate) error {
	_, err := tea.NewProgram(NewRouteBrowserModel(cands), tea.WithAltScreen()).Run()
	return err
}
