package store

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/matzehuels/transitgit/pkg/errors"
)

// Default signature used when GitOptions leaves it empty.
const (
	DefaultAuthorName  = "transitgit"
	DefaultAuthorEmail = "transitgit@localhost"
)

// GitOptions configures a [GitStore].
type GitOptions struct {
	// AuthorName and AuthorEmail sign every commit as author and committer.
	AuthorName  string
	AuthorEmail string

	// When fixes the signature time. Zero means the wall clock at commit time.
	// A fixed time makes commit hashes reproducible across runs.
	When time.Time

	// Force allows writing to branches that already exist in the repository.
	Force bool
}

// GitStore writes commits into a git repository on disk using go-git.
// Commits carry the empty tree; the stop is the commit message.
type GitStore struct {
	repo      *git.Repository
	dir       string
	opts      GitOptions
	emptyTree plumbing.Hash

	mu      sync.Mutex
	touched map[string]bool
	headSet bool
}

// OpenGit opens the repository at dir, initialising a new non-bare
// repository (and the directory) if none exists.
func OpenGit(dir string, opts GitOptions) (*GitStore, error) {
	if err := errors.ValidatePath(dir); err != nil {
		return nil, err
	}
	if opts.AuthorName == "" {
		opts.AuthorName = DefaultAuthorName
	}
	if opts.AuthorEmail == "" {
		opts.AuthorEmail = DefaultAuthorEmail
	}

	repo, err := git.PlainOpen(dir)
	if stderrors.Is(err, git.ErrRepositoryNotExists) {
		repo, err = git.PlainInit(dir, false)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "open repository %s", dir)
	}

	tree, err := writeEmptyTree(repo)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "write empty tree")
	}

	return &GitStore{
		repo:      repo,
		dir:       dir,
		opts:      opts,
		emptyTree: tree,
		touched:   make(map[string]bool),
	}, nil
}

func writeEmptyTree(repo *git.Repository) (plumbing.Hash, error) {
	obj := repo.Storer.NewEncodedObject()
	if err := (&object.Tree{}).Encode(obj); err != nil {
		return plumbing.ZeroHash, err
	}
	return repo.Storer.SetEncodedObject(obj)
}

// Dir returns the repository directory.
func (s *GitStore) Dir() string { return s.dir }

// Repository exposes the underlying go-git repository for inspection.
func (s *GitStore) Repository() *git.Repository { return s.repo }

// CreateCommit implements [Store].
func (s *GitStore) CreateCommit(ctx context.Context, content string, parents []CommitID, branch string) (CommitID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ref, err := s.claim(branch)
	if err != nil {
		return "", err
	}

	hashes := make([]plumbing.Hash, len(parents))
	for i, p := range parents {
		h := plumbing.NewHash(string(p))
		if err := s.repo.Storer.HasEncodedObject(h); err != nil {
			return "", errors.Wrap(errors.ErrCodeStore, ErrUnknownCommit, "parent %s", p)
		}
		hashes[i] = h
	}

	sig := object.Signature{Name: s.opts.AuthorName, Email: s.opts.AuthorEmail, When: s.opts.When}
	if sig.When.IsZero() {
		sig.When = time.Now()
	}
	commit := &object.Commit{
		Author:       sig,
		Committer:    sig,
		Message:      content,
		TreeHash:     s.emptyTree,
		ParentHashes: hashes,
	}

	obj := s.repo.Storer.NewEncodedObject()
	if err := commit.Encode(obj); err != nil {
		return "", errors.Wrap(errors.ErrCodeStore, err, "encode commit %q", content)
	}
	h, err := s.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeStore, err, "store commit %q", content)
	}

	if err := s.setRef(ref, h); err != nil {
		return "", err
	}
	return CommitID(h.String()), nil
}

// MoveBranchHead implements [Store].
func (s *GitStore) MoveBranchHead(ctx context.Context, branch string, id CommitID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ref, err := s.claim(branch)
	if err != nil {
		return err
	}
	h := plumbing.NewHash(string(id))
	if _, err := s.repo.CommitObject(h); err != nil {
		return errors.Wrap(errors.ErrCodeStore, ErrUnknownCommit, "move %s to %s", branch, id)
	}
	return s.setRef(ref, h)
}

// claim validates branch and, the first time this store writes to it,
// refuses branches that already exist unless Force is set.
func (s *GitStore) claim(branch string) (plumbing.ReferenceName, error) {
	if err := errors.ValidateBranchName(branch); err != nil {
		return "", errors.Wrap(errors.ErrCodeStore, ErrInvalidBranch, "%s", errors.UserMessage(err))
	}
	name := plumbing.NewBranchReferenceName(branch)
	if s.touched[branch] {
		return name, nil
	}

	_, err := s.repo.Reference(name, false)
	switch {
	case err == nil && !s.opts.Force:
		return "", errors.Wrap(errors.ErrCodeStore, ErrBranchExists, "branch %s in %s (use --force to overwrite)", branch, s.dir)
	case err != nil && !stderrors.Is(err, plumbing.ErrReferenceNotFound):
		return "", errors.Wrap(errors.ErrCodeStore, err, "read branch %s", branch)
	}
	s.touched[branch] = true
	return name, nil
}

func (s *GitStore) setRef(name plumbing.ReferenceName, h plumbing.Hash) error {
	if err := s.repo.Storer.SetReference(plumbing.NewHashReference(name, h)); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "update %s", name)
	}
	if !s.headSet {
		if err := s.repo.Storer.SetReference(plumbing.NewSymbolicReference(plumbing.HEAD, name)); err != nil {
			return errors.Wrap(errors.ErrCodeStore, err, "point HEAD at %s", name)
		}
		s.headSet = true
	}
	return nil
}

// Heads lists every branch of the repository with its head commit.
func (s *GitStore) Heads() (map[string]CommitID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	iter, err := s.repo.Branches()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "list branches")
	}
	defer iter.Close()

	heads := make(map[string]CommitID)
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		heads[ref.Name().Short()] = CommitID(ref.Hash().String())
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "list branches")
	}
	return heads, nil
}

// Ensure GitStore implements Store.
var _ Store = (*GitStore)(nil)
