package io

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/matzehuels/transitgit/pkg/commitgraph"
)

// ReadJSON decodes a graph written by [WriteJSON]. Commits are added in file
// order and heads that differ from the last commit of their branch are moved
// afterwards. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*commitgraph.Graph, error) {
	var data graph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	g := commitgraph.New()
	for _, c := range data.Commits {
		if c.ID == "" {
			return nil, fmt.Errorf("commit %q: missing id", c.Content)
		}
		n := commitgraph.Node{ID: c.ID, Content: c.Content, Branch: c.Branch, Parents: c.Parents}
		if err := g.AddCommit(n); err != nil {
			return nil, fmt.Errorf("commit %s: %w", c.ID, err)
		}
	}

	current := g.Heads()
	for _, branch := range slices.Sorted(maps.Keys(data.Heads)) {
		id := data.Heads[branch]
		if current[branch] == id {
			continue
		}
		if err := g.MoveHead(branch, id); err != nil {
			return nil, fmt.Errorf("head %s: %w", branch, err)
		}
	}
	return g, nil
}

// ImportJSON reads a JSON file at path and returns the decoded graph.
func ImportJSON(path string) (*commitgraph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
