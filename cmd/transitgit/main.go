// Command transitgit writes the routes of a GTFS feed as a git commit graph.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/transitgit/internal/cli"
)

// exitInterrupted follows the shell convention for a command killed by SIGINT.
const exitInterrupted = 130

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()

	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		os.Exit(exitInterrupted)
	default:
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	c := cli.New(os.Stderr, cli.LogInfo)
	defer c.Close()

	root := c.RootCommand()
	addVerboseFlag(root, c)
	return root.ExecuteContext(ctx)
}

// addVerboseFlag registers -v on root. The level can only change once flags
// are parsed, so it hooks in ahead of the existing pre-run.
func addVerboseFlag(root *cobra.Command, c *cli.CLI) {
	verbose := root.PersistentFlags().BoolP("verbose", "v", false, "enable verbose logging")

	next := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if *verbose {
			c.SetLogLevel(cli.LogDebug)
		}
		if next == nil {
			return nil
		}
		return next(cmd, args)
	}
}
