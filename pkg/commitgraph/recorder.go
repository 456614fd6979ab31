package commitgraph

import (
	"context"

	"github.com/matzehuels/transitgit/pkg/observability"
	"github.com/matzehuels/transitgit/pkg/store"
)

// Recorder is a [store.Store] that forwards every call to another store and
// mirrors successful writes into a [Graph].
type Recorder struct {
	next  store.Store
	graph *Graph
}

// NewRecorder wraps next. A nil next records into a fresh [store.MemStore].
func NewRecorder(next store.Store) *Recorder {
	if next == nil {
		next = store.NewMemStore()
	}
	return &Recorder{next: next, graph: New()}
}

// Graph returns the recorded graph.
func (r *Recorder) Graph() *Graph { return r.graph }

// CreateCommit implements [store.Store].
func (r *Recorder) CreateCommit(ctx context.Context, content string, parents []store.CommitID, branch string) (store.CommitID, error) {
	id, err := r.next.CreateCommit(ctx, content, parents, branch)
	if err != nil {
		return "", err
	}
	if err := r.graph.AddCommit(Node{ID: id, Content: content, Branch: branch, Parents: parents}); err != nil {
		return "", err
	}
	observability.Store().OnCommit(ctx, branch, len(parents))
	return id, nil
}

// MoveBranchHead implements [store.Store].
func (r *Recorder) MoveBranchHead(ctx context.Context, branch string, id store.CommitID) error {
	if err := r.next.MoveBranchHead(ctx, branch, id); err != nil {
		return err
	}
	if err := r.graph.MoveHead(branch, id); err != nil {
		return err
	}
	observability.Store().OnBranchMove(ctx, branch)
	return nil
}

// Ensure Recorder implements store.Store.
var _ store.Store = (*Recorder)(nil)
