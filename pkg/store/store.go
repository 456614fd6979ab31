// Package store defines the version store the commit graph is written to.
//
// The graph builder only ever performs two operations: create a commit with
// a message, an ordered set of parents and a target branch, and move a
// branch reference to an existing commit. [Store] captures exactly that.
//
// Two implementations are provided:
//
//   - [MemStore] keeps everything in memory with deterministic IDs. It backs
//     tests and dry runs.
//   - [GitStore] writes a real git repository with go-git, without shelling
//     out to a git binary. Every commit carries the empty tree.
//
// Branch names are derived from route names with [BranchName] and made
// unique per run with [AssignBranches].
package store

import (
	"context"
	"errors"
)

// CommitID identifies a commit inside a store. The builder treats it as
// opaque and only hands it back as a parent or branch target.
type CommitID string

// Short returns the first seven characters of the ID.
func (id CommitID) Short() string {
	if len(id) > 7 {
		return string(id[:7])
	}
	return string(id)
}

// Store persists commits and branch heads.
//
// CreateCommit records content with the given parents and advances branch to
// the new commit, creating the branch if needed. Parents are passed in the
// caller's order and must already be deduplicated.
//
// MoveBranchHead points branch at an existing commit without creating a new
// one. It is how routes sharing a merge commit are fast-forwarded.
type Store interface {
	CreateCommit(ctx context.Context, content string, parents []CommitID, branch string) (CommitID, error)
	MoveBranchHead(ctx context.Context, branch string, id CommitID) error
}

// Sentinel errors returned (wrapped) by store implementations.
var (
	// ErrUnknownCommit is returned when a parent or branch target does not exist.
	ErrUnknownCommit = errors.New("unknown commit")

	// ErrBranchExists is returned by GitStore when a branch already exists in
	// the repository before this run wrote to it.
	ErrBranchExists = errors.New("branch already exists")

	// ErrInvalidBranch is returned for branch names git cannot store.
	ErrInvalidBranch = errors.New("invalid branch name")
)
