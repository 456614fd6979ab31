// Package pkg provides the libraries behind transitgit, which writes the
// routes of a transit network as a git commit graph.
//
// # Overview
//
// Every route becomes a branch and every stop a commit. A stop served by
// several routes becomes one merge commit that all of them share, so
// "git log --graph --all" draws the network.
//
// # Architecture
//
// The data flow of a run:
//
//	GTFS feed (directory, zip, URL)
//	         ↓
//	    [feed] package (read routes, trips, stops; choose one trip per route)
//	         ↓
//	    [transit] package (reconcile stop order, find shared stops)
//	         ↓
//	    [build] package (per-route builder and merge fixpoint)
//	         ↓
//	    [store] package (git repository or in-memory store)
//
// [pipeline] wires these steps together; [commitgraph] mirrors the commits
// for summaries and for the exports in [render/nodelink] and [io].
//
// # Quick Start
//
//	f, _ := feed.ReadPath("./gtfs")
//	routes, _ := feed.Select(feed.Representative(f.Candidates))
//	routes, _, err := transit.Reconcile(routes)
//	if err != nil {
//	    log.Fatal(err) // *transit.OrderReport explains the conflict
//	}
//
//	s, _ := store.OpenGit("./result", store.GitOptions{})
//	d, _ := build.NewDriver(s, routes, build.Options{})
//	res, err := d.Run(ctx)
//
// # Main Packages
//
//   - [transit]: stops, routes, order reconciliation and conflict sets
//   - [build]: route build states, the per-route builder and the driver
//   - [store]: the commit store interface with git and memory backends
//   - [feed]: GTFS static feed reading and trip selection
//   - [pipeline]: end-to-end orchestration with caching and hooks
//   - [cache]: file and Redis caches for downloaded feeds
//   - [config]: TOML configuration with validation
//   - [errors]: error codes shared by all packages
//
// [transit]: github.com/matzehuels/transitgit/pkg/transit
// [build]: github.com/matzehuels/transitgit/pkg/build
// [store]: github.com/matzehuels/transitgit/pkg/store
// [feed]: github.com/matzehuels/transitgit/pkg/feed
// [pipeline]: github.com/matzehuels/transitgit/pkg/pipeline
// [commitgraph]: github.com/matzehuels/transitgit/pkg/commitgraph
// [render/nodelink]: github.com/matzehuels/transitgit/pkg/render/nodelink
// [io]: github.com/matzehuels/transitgit/pkg/io
// [cache]: github.com/matzehuels/transitgit/pkg/cache
// [config]: github.com/matzehuels/transitgit/pkg/config
// [errors]: github.com/matzehuels/transitgit/pkg/errors
package pkg
