package build

import (
	"context"
	"slices"
	"testing"

	"github.com/matzehuels/transitgit/pkg/store"
	"github.com/matzehuels/transitgit/pkg/transit"
)

// line builds a route whose name is its ID and whose stop names are their IDs.
func line(id string, stops ...string) transit.Route {
	r := transit.Route{ID: id, Name: id}
	for _, s := range stops {
		r.Stops = append(r.Stops, transit.Stop{ID: s, Name: s})
	}
	return r
}

func messages(commits []store.Commit) []string {
	out := make([]string, len(commits))
	for i, c := range commits {
		out[i] = c.Content
	}
	return out
}

func TestBuildRoute(t *testing.T) {
	conflicts := transit.ConflictSet{"S3": {"A": {}, "B": {}}}

	tests := []struct {
		name     string
		route    transit.Route
		want     State
		messages []string
	}{
		{
			name:     "no conflict builds everything",
			route:    line("A", "S1", "S2"),
			want:     Built{Final: "c0002"},
			messages: []string{"S1", "S2"},
		},
		{
			name:     "stops before conflict",
			route:    line("A", "S1", "S2", "S3", "S4"),
			want:     Pending{BuiltIndex: 1, Length: 4, Head: "c0002"},
			messages: []string{"S1", "S2"},
		},
		{
			name:     "conflict first stays untouched",
			route:    line("A", "S3", "S4"),
			want:     Untouched{Length: 2},
			messages: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := store.NewMemStore()
			got, err := BuildRoute(context.Background(), s, tt.route, "a", Untouched{Length: tt.route.Len()}, conflicts)
			if err != nil {
				t.Fatalf("BuildRoute() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("BuildRoute() = %v, want %v", got, tt.want)
			}
			if msgs := messages(s.Commits()); !slices.Equal(msgs, tt.messages) {
				t.Errorf("commits = %v, want %v", msgs, tt.messages)
			}
		})
	}
}

func TestBuildRouteChainsParents(t *testing.T) {
	s := store.NewMemStore()
	if _, err := BuildRoute(context.Background(), s, line("A", "S1", "S2", "S3"), "a", Untouched{Length: 3}, nil); err != nil {
		t.Fatalf("BuildRoute() error: %v", err)
	}

	commits := s.Commits()
	if len(commits[0].Parents) != 0 {
		t.Errorf("first commit parents = %v, want none", commits[0].Parents)
	}
	for i := 1; i < len(commits); i++ {
		if !slices.Equal(commits[i].Parents, []store.CommitID{commits[i-1].ID}) {
			t.Errorf("commit %d parents = %v, want [%s]", i, commits[i].Parents, commits[i-1].ID)
		}
		if commits[i].Branch != "a" {
			t.Errorf("commit %d on branch %s, want a", i, commits[i].Branch)
		}
	}
}

func TestBuildRouteResumesAfterMerge(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemStore()
	merge, _ := s.CreateCommit(ctx, "S2", nil, "a")

	st := Pending{BuiltIndex: 1, Length: 3, Head: merge}
	got, err := BuildRoute(ctx, s, line("A", "S1", "S2", "S3"), "a", st, nil)
	if err != nil {
		t.Fatalf("BuildRoute() error: %v", err)
	}
	built, ok := got.(Built)
	if !ok {
		t.Fatalf("BuildRoute() = %v, want Built", got)
	}
	last, _ := s.Commit(built.Final)
	if last.Content != "S3" || !slices.Equal(last.Parents, []store.CommitID{merge}) {
		t.Errorf("last commit = %+v, want S3 on top of %s", last, merge)
	}
}

func TestBuildRouteCompletesMergedLastStop(t *testing.T) {
	s := store.NewMemStore()
	st := Pending{BuiltIndex: 0, Length: 1, Head: "c0009"}

	got, err := BuildRoute(context.Background(), s, line("A", "S1"), "a", st, nil)
	if err != nil {
		t.Fatalf("BuildRoute() error: %v", err)
	}
	if want := (Built{Final: "c0009"}); got != want {
		t.Errorf("BuildRoute() = %v, want %v", got, want)
	}
	if n := len(s.Commits()); n != 0 {
		t.Errorf("BuildRoute() created %d commits, want 0", n)
	}
}

func TestBuildRouteBuiltIsNoop(t *testing.T) {
	s := store.NewMemStore()
	st := Built{Final: "c0001"}

	got, err := BuildRoute(context.Background(), s, line("A", "S1", "S2"), "a", st, nil)
	if err != nil {
		t.Fatalf("BuildRoute() error: %v", err)
	}
	if got != st {
		t.Errorf("BuildRoute() = %v, want %v", got, st)
	}
	if n := len(s.Commits()); n != 0 {
		t.Errorf("BuildRoute() created %d commits, want 0", n)
	}
}
