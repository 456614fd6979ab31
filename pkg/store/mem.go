package store

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/matzehuels/transitgit/pkg/errors"
)

// Commit is a commit as recorded by [MemStore].
type Commit struct {
	ID      CommitID
	Content string
	Parents []CommitID
	Branch  string
}

// MemStore is an in-memory [Store]. IDs are assigned sequentially
// (c0001, c0002, ...) so runs over the same input are reproducible.
// It is safe for concurrent use.
type MemStore struct {
	mu      sync.RWMutex
	commits map[CommitID]Commit
	order   []CommitID
	heads   map[string]CommitID
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		commits: make(map[CommitID]Commit),
		heads:   make(map[string]CommitID),
	}
}

// CreateCommit implements [Store].
func (s *MemStore) CreateCommit(ctx context.Context, content string, parents []CommitID, branch string) (CommitID, error) {
	if err := errors.ValidateBranchName(branch); err != nil {
		return "", errors.Wrap(errors.ErrCodeStore, ErrInvalidBranch, "%s", errors.UserMessage(err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range parents {
		if _, ok := s.commits[p]; !ok {
			return "", errors.Wrap(errors.ErrCodeStore, ErrUnknownCommit, "parent %s", p)
		}
	}

	id := CommitID(fmt.Sprintf("c%04d", len(s.order)+1))
	s.commits[id] = Commit{
		ID:      id,
		Content: content,
		Parents: slices.Clone(parents),
		Branch:  branch,
	}
	s.order = append(s.order, id)
	s.heads[branch] = id
	return id, nil
}

// MoveBranchHead implements [Store].
func (s *MemStore) MoveBranchHead(ctx context.Context, branch string, id CommitID) error {
	if err := errors.ValidateBranchName(branch); err != nil {
		return errors.Wrap(errors.ErrCodeStore, ErrInvalidBranch, "%s", errors.UserMessage(err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.commits[id]; !ok {
		return errors.Wrap(errors.ErrCodeStore, ErrUnknownCommit, "move %s to %s", branch, id)
	}
	s.heads[branch] = id
	return nil
}

// Commit returns the commit with the given ID.
func (s *MemStore) Commit(id CommitID) (Commit, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.commits[id]
	return c, ok
}

// Commits returns every commit in creation order.
func (s *MemStore) Commits() []Commit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Commit, len(s.order))
	for i, id := range s.order {
		out[i] = s.commits[id]
	}
	return out
}

// Heads returns a copy of the branch → head commit map.
func (s *MemStore) Heads() map[string]CommitID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.heads)
}

// Ensure MemStore implements Store.
var _ Store = (*MemStore)(nil)
