package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/spf13/cobra"

	"github.com/matzehuels/transitgit/pkg/config"
)

func TestRootCommand(t *testing.T) {
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()

	var names []string
	for _, sub := range root.Commands() {
		names = append(names, sub.Name())
	}
	for _, want := range []string{"build", "routes", "cache", "completion"} {
		if !slices.Contains(names, want) {
			t.Errorf("subcommands = %v, missing %q", names, want)
		}
	}

	for _, flag := range []string{"config", "log-file"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("missing persistent flag --%s", flag)
		}
	}
}

func TestBuildCommandFlags(t *testing.T) {
	cmd := New(&bytes.Buffer{}, LogInfo).buildCommand()
	for _, flag := range []string{"feed", "git-dir", "prefilter", "route", "interactive", "dry-run", "force", "no-cache", "graph", "detailed"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("build is missing --%s", flag)
		}
	}
}

func TestBuildOptions(t *testing.T) {
	cfg := config.Default()
	cfg.Feed.Location = "https://example.org/gtfs.zip"
	cfg.Feed.Routes = []string{"U1"}
	cfg.Store.GitDir = "/srv/net"

	tests := []struct {
		name       string
		args       []string
		wantFeed   string
		wantGitDir string
		wantRoutes []string
		wantForce  bool
	}{
		{
			name:       "config only",
			wantFeed:   "https://example.org/gtfs.zip",
			wantGitDir: "/srv/net",
			wantRoutes: []string{"U1"},
		},
		{
			name:       "flags win",
			args:       []string{"-p", "./local", "-g", "out", "--route", "U2", "--route", "U3", "--force"},
			wantFeed:   "./local",
			wantGitDir: "out",
			wantRoutes: []string{"U2", "U3"},
			wantForce:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var flags buildFlags
			cmd := &cobra.Command{Use: "build"}
			flags.register(cmd)
			if err := cmd.ParseFlags(tt.args); err != nil {
				t.Fatalf("ParseFlags() error: %v", err)
			}

			opts := buildOptions(cmd, cfg, flags)
			if opts.Feed != tt.wantFeed {
				t.Errorf("Feed = %q, want %q", opts.Feed, tt.wantFeed)
			}
			if opts.GitDir != tt.wantGitDir {
				t.Errorf("GitDir = %q, want %q", opts.GitDir, tt.wantGitDir)
			}
			if !slices.Equal(opts.Routes, tt.wantRoutes) {
				t.Errorf("Routes = %v, want %v", opts.Routes, tt.wantRoutes)
			}
			if opts.Force != tt.wantForce {
				t.Errorf("Force = %v, want %v", opts.Force, tt.wantForce)
			}
			if opts.AuthorName != cfg.Store.AuthorName {
				t.Errorf("AuthorName = %q, want %q", opts.AuthorName, cfg.Store.AuthorName)
			}
		})
	}
}

func TestLoadConfigFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "net.toml")
	data := "[feed]\nlocation = \"./vbb\"\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New(&bytes.Buffer{}, LogInfo)
	c.configPath = path
	cfg, err := c.loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if cfg.Feed.Location != "./vbb" {
		t.Errorf("Feed.Location = %q, want ./vbb", cfg.Feed.Location)
	}
}
