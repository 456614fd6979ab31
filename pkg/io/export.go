package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/transitgit/pkg/commitgraph"
	"github.com/matzehuels/transitgit/pkg/store"
)

type graph struct {
	Commits []commit                  `json:"commits"`
	Heads   map[string]store.CommitID `json:"heads"`
}

type commit struct {
	ID      store.CommitID   `json:"id"`
	Content string           `json:"content"`
	Branch  string           `json:"branch"`
	Parents []store.CommitID `json:"parents,omitempty"`
}

// WriteJSON encodes g as indented JSON and writes it to w.
func WriteJSON(g *commitgraph.Graph, w io.Writer) error {
	nodes := g.Commits()
	out := graph{
		Commits: make([]commit, len(nodes)),
		Heads:   g.Heads(),
	}
	for i, n := range nodes {
		out.Commits[i] = commit{ID: n.ID, Content: n.Content, Branch: n.Branch, Parents: n.Parents}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes g to a JSON file at path.
func ExportJSON(g *commitgraph.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(g, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
