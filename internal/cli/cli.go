// Package cli implements the transitgit command-line interface.
//
// # Commands
//
//   - build: read a GTFS feed and write its routes as a git commit graph
//   - routes: list (or browse) the routes of a feed
//   - cache: manage the feed download cache
//   - completion: generate shell completion scripts
//
// # Logging
//
// Logs go to stderr at info level; --verbose (-v) switches to debug and
// --log-file also writes them to a rotating file.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/matzehuels/transitgit/pkg/buildinfo"
	"github.com/matzehuels/transitgit/pkg/config"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "transitgit"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	out        io.Writer
	logFile    *lumberjack.Logger
	configPath string
	logPath    string
}

// New creates a new CLI instance logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		out:    w,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// SetLogFile additionally writes logs to a rotating file at path.
func (c *CLI) SetLogFile(path string) {
	if c.logFile != nil {
		c.logFile.Close()
	}
	c.logFile = openLogFile(path)
	c.Logger.SetOutput(io.MultiWriter(c.out, c.logFile))
}

// Close flushes and closes the log file, if any.
func (c *CLI) Close() error {
	if c.logFile == nil {
		return nil
	}
	return c.logFile.Close()
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "transitgit turns transit routes into a git commit graph",
		Long: `transitgit reads a GTFS feed and writes every route as a git branch whose
commits are the route's stops. Stops served by several routes become merge
commits, so "git log --graph --all" draws the network.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.logPath != "" {
				c.SetLogFile(c.logPath)
			}
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ./"+config.DefaultFile+" if present)")
	root.PersistentFlags().StringVar(&c.logPath, "log-file", "", "also write logs to this rotating file")

	root.AddCommand(c.buildCommand())
	root.AddCommand(c.routesCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the --config file, the default file or the defaults.
func (c *CLI) loadConfig() (config.Config, error) {
	return config.LoadOrDefault(c.configPath)
}
