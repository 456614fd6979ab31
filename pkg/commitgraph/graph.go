// Package commitgraph keeps an in-memory copy of the commit DAG written during
// a build.
//
// A [Recorder] wraps any [store.Store] and mirrors every commit and branch
// move into a [Graph]. The graph backs the build summary, the DOT/SVG export
// and the structural checks in tests, independent of whether commits went to
// git or to memory.
//
// Edges point from parent to child. The underlying graph refuses edges that
// would close a cycle, so a successful build is a DAG by construction.
package commitgraph

import (
	stderrors "errors"
	"maps"
	"slices"
	"sync"

	"github.com/dominikbraun/graph"

	"github.com/matzehuels/transitgit/pkg/errors"
	"github.com/matzehuels/transitgit/pkg/store"
)

// Node is one commit of the graph.
type Node struct {
	ID      store.CommitID
	Content string           // Stop name
	Branch  string           // Branch the commit was created on
	Parents []store.CommitID // In the order given to the store
	Seq     int              // Creation order, starting at 0
}

// IsMerge reports whether the commit has more than one parent.
func (n Node) IsMerge() bool { return len(n.Parents) > 1 }

// IsRoot reports whether the commit has no parent.
func (n Node) IsRoot() bool { return len(n.Parents) == 0 }

// Stats summarizes a graph.
type Stats struct {
	Commits  int `json:"commits"`
	Merges   int `json:"merges"`
	Roots    int `json:"roots"`
	Branches int `json:"branches"`
	Moves    int `json:"moves"` // Fast-forwards without a new commit
}

// Graph is a commit DAG with branch heads. It is safe for concurrent use.
type Graph struct {
	mu    sync.RWMutex
	dag   graph.Graph[store.CommitID, Node]
	nodes map[store.CommitID]Node
	order []store.CommitID
	heads map[string]store.CommitID
	moves int
}

func hashNode(n Node) store.CommitID { return n.ID }

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		dag:   graph.New(hashNode, graph.Directed(), graph.Acyclic(), graph.PreventCycles()),
		nodes: make(map[store.CommitID]Node),
		heads: make(map[string]store.CommitID),
	}
}

// AddCommit adds n and moves its branch head to it. Parents must already be
// in the graph. Adding an ID twice only moves the head; stores that hash
// content can legitimately return the same ID for identical commits.
func (g *Graph) AddCommit(n Node) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.nodes[n.ID]; ok {
		g.heads[n.Branch] = n.ID
		return nil
	}
	for _, p := range n.Parents {
		if _, ok := g.nodes[p]; !ok {
			return errors.New(errors.ErrCodeInvariant, "commit %s has unknown parent %s", n.ID.Short(), p.Short())
		}
	}

	n.Parents = slices.Clone(n.Parents)
	n.Seq = len(g.order)
	if err := g.dag.AddVertex(n); err != nil {
		return errors.Wrap(errors.ErrCodeInvariant, err, "add commit %s", n.ID.Short())
	}
	for _, p := range n.Parents {
		err := g.dag.AddEdge(p, n.ID)
		if err != nil && !stderrors.Is(err, graph.ErrEdgeAlreadyExists) {
			return errors.Wrap(errors.ErrCodeInvariant, err, "link %s to parent %s", n.ID.Short(), p.Short())
		}
	}

	g.nodes[n.ID] = n
	g.order = append(g.order, n.ID)
	g.heads[n.Branch] = n.ID
	return nil
}

// MoveHead points branch at an existing commit.
func (g *Graph) MoveHead(branch string, id store.CommitID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.nodes[id]; !ok {
		return errors.New(errors.ErrCodeInvariant, "cannot move %s to unknown commit %s", branch, id.Short())
	}
	g.heads[branch] = id
	g.moves++
	return nil
}

// Node returns the commit with the given ID.
func (g *Graph) Node(id store.CommitID) (Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[id]
	return n, ok
}

// Commits returns every commit in creation order.
func (g *Graph) Commits() []Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Node, len(g.order))
	for i, id := range g.order {
		out[i] = g.nodes[id]
	}
	return out
}

// Heads returns a copy of the branch head map.
func (g *Graph) Heads() map[string]store.CommitID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return maps.Clone(g.heads)
}

// Branches returns the branch names in sorted order.
func (g *Graph) Branches() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Sorted(maps.Keys(g.heads))
}

// Children returns the IDs of the commits that have id as a parent, in
// creation order.
func (g *Graph) Children(id store.CommitID) ([]store.CommitID, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	adj, err := g.dag.AdjacencyMap()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read adjacency")
	}
	out := slices.Collect(maps.Keys(adj[id]))
	slices.SortFunc(out, func(a, b store.CommitID) int { return g.nodes[a].Seq - g.nodes[b].Seq })
	return out, nil
}

// TopologicalOrder returns the commits with every parent before its
// children. Ties are broken by creation order, so the result is stable.
func (g *Graph) TopologicalOrder() ([]Node, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	ids, err := graph.StableTopologicalSort(g.dag, func(a, b store.CommitID) bool {
		return g.nodes[a].Seq < g.nodes[b].Seq
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvariant, err, "sort commits")
	}
	out := make([]Node, len(ids))
	for i, id := range ids {
		out[i] = g.nodes[id]
	}
	return out, nil
}

// Log walks first parents from the head of branch back to a root and
// returns the commits oldest first.
func (g *Graph) Log(branch string) []Node {
	g.mu.RLock()
	defer g.mu.RUnlock()

	id, ok := g.heads[branch]
	if !ok {
		return nil
	}
	var out []Node
	for {
		n := g.nodes[id]
		out = append(out, n)
		if n.IsRoot() {
			break
		}
		id = n.Parents[0]
	}
	slices.Reverse(out)
	return out
}

// Stats counts commits, merges, roots and branches.
func (g *Graph) Stats() Stats {
	g.mu.RLock()
	defer g.mu.RUnlock()

	s := Stats{Commits: len(g.order), Branches: len(g.heads), Moves: g.moves}
	for _, n := range g.nodes {
		switch {
		case n.IsMerge():
			s.Merges++
		case n.IsRoot():
			s.Roots++
		}
	}
	return s
}
