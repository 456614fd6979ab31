package build

import (
	"fmt"

	"github.com/matzehuels/transitgit/pkg/errors"
	"github.com/matzehuels/transitgit/pkg/store"
)

// State is the build progress of one route. It is one of [Untouched],
// [Pending] or [Built]; no other type can implement it.
//
// States are values. A transition returns a new State and never modifies
// the old one.
type State interface {
	fmt.Stringer
	state()
}

// Untouched is the state of a route with no commit yet.
type Untouched struct {
	Length int // Number of stops on the route
}

// Pending is the state of a route with commits for stops 0..BuiltIndex.
type Pending struct {
	BuiltIndex int
	Length     int
	Head       store.CommitID // Commit of stop BuiltIndex
}

// Built is the terminal state: every stop has a commit.
type Built struct {
	Final store.CommitID // Commit of the last stop
}

func (Untouched) state() {}
func (Pending) state()   {}
func (Built) state()     {}

func (s Untouched) String() string { return fmt.Sprintf("Untouched(%d)", s.Length) }

func (s Pending) String() string {
	return fmt.Sprintf("Pending(%d/%d, %s)", s.BuiltIndex, s.Length, s.Head.Short())
}

func (s Built) String() string { return fmt.Sprintf("Built(%s)", s.Final.Short()) }

// Head returns the latest commit of a route, or "" if it has none.
func Head(s State) store.CommitID {
	switch s := s.(type) {
	case Pending:
		return s.Head
	case Built:
		return s.Final
	default:
		return ""
	}
}

// IsBuilt reports whether s is terminal.
func IsBuilt(s State) bool {
	_, ok := s.(Built)
	return ok
}

// NextIndex returns the index of the next stop the route needs, and false
// for a built route.
func NextIndex(s State) (int, bool) {
	switch s := s.(type) {
	case Untouched:
		return 0, true
	case Pending:
		return s.BuiltIndex + 1, true
	default:
		return 0, false
	}
}

// AdvanceBy records that the stop at index now has commit. index must directly
// follow the last built index (0 for an untouched route). The result is
// [Built] when index is the last stop of the route.
func AdvanceBy(s State, commit store.CommitID, index int) (State, error) {
	var length int
	switch s := s.(type) {
	case Untouched:
		if index != 0 {
			return nil, invariant(s, "advance by index %d, want 0", index)
		}
		length = s.Length
	case Pending:
		if index != s.BuiltIndex+1 {
			return nil, invariant(s, "advance by index %d, want %d", index, s.BuiltIndex+1)
		}
		length = s.Length
	case Built:
		return nil, invariant(s, "advance a built route")
	default:
		return nil, invariant(s, "unknown state")
	}

	if index >= length {
		return nil, invariant(s, "index %d past the end of the route", index)
	}
	if index == length-1 {
		return Built{Final: commit}, nil
	}
	return Pending{BuiltIndex: index, Length: length, Head: commit}, nil
}

// AdvanceByOne records that the next stop of the route has commit. It is
// used after a merge commit, where the index follows from the state.
//
// An untouched route always becomes Pending at index 0, even when it has a
// single stop; the builder completes it on its next call.
func AdvanceByOne(s State, commit store.CommitID) (State, error) {
	switch s := s.(type) {
	case Untouched:
		return Pending{BuiltIndex: 0, Length: s.Length, Head: commit}, nil
	case Pending:
		switch {
		case s.BuiltIndex+1 >= s.Length:
			return nil, invariant(s, "advance past the end of the route")
		case s.BuiltIndex == s.Length-2:
			return Built{Final: commit}, nil
		default:
			return Pending{BuiltIndex: s.BuiltIndex + 1, Length: s.Length, Head: commit}, nil
		}
	case Built:
		return nil, invariant(s, "advance a built route")
	default:
		return nil, invariant(s, "unknown state")
	}
}

func invariant(s State, format string, args ...any) error {
	return errors.New(errors.ErrCodeInvariant, "%s: %s", fmt.Sprintf(format, args...), describe(s))
}

func describe(s State) string {
	if s == nil {
		return "state <nil>"
	}
	return "state " + s.String()
}
