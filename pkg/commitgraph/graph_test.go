package commitgraph

import (
	"context"
	"slices"
	"testing"

	"github.com/matzehuels/transitgit/pkg/errors"
	"github.com/matzehuels/transitgit/pkg/observability"
	"github.com/matzehuels/transitgit/pkg/store"
)

// diamond records S1 on a, S4 on b, a merge S2 on a with b fast-forwarded,
// then S3 on a and S5 on b.
func diamond(t *testing.T) *Recorder {
	t.Helper()
	ctx := context.Background()
	r := NewRecorder(nil)

	must := func(id store.CommitID, err error) store.CommitID {
		t.Helper()
		if err != nil {
			t.Fatalf("CreateCommit() error: %v", err)
		}
		return id
	}

	s1 := must(r.CreateCommit(ctx, "S1", nil, "a"))
	s4 := must(r.CreateCommit(ctx, "S4", nil, "b"))
	s2 := must(r.CreateCommit(ctx, "S2", []store.CommitID{s1, s4}, "a"))
	if err := r.MoveBranchHead(ctx, "b", s2); err != nil {
		t.Fatalf("MoveBranchHead() error: %v", err)
	}
	must(r.CreateCommit(ctx, "S3", []store.CommitID{s2}, "a"))
	must(r.CreateCommit(ctx, "S5", []store.CommitID{s2}, "b"))
	return r
}

func contents(nodes []Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Content
	}
	return out
}

func TestGraphStats(t *testing.T) {
	g := diamond(t).Graph()

	want := Stats{Commits: 5, Merges: 1, Roots: 2, Branches: 2, Moves: 1}
	if got := g.Stats(); got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}
	if got := g.Branches(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("Branches() = %v, want [a b]", got)
	}
}

func TestGraphLog(t *testing.T) {
	g := diamond(t).Graph()

	tests := []struct {
		branch string
		want   []string
	}{
		{"a", []string{"S1", "S2", "S3"}},
		{"b", []string{"S1", "S2", "S5"}}, // first parent of the merge is a's S1
		{"missing", nil},
	}
	for _, tt := range tests {
		t.Run(tt.branch, func(t *testing.T) {
			if got := contents(g.Log(tt.branch)); !slices.Equal(got, tt.want) {
				t.Errorf("Log(%s) = %v, want %v", tt.branch, got, tt.want)
			}
		})
	}
}

func TestGraphTopologicalOrder(t *testing.T) {
	g := diamond(t).Graph()

	order, err := g.TopologicalOrder()
	if err != nil {
		t.Fatalf("TopologicalOrder() error: %v", err)
	}
	pos := make(map[store.CommitID]int)
	for i, n := range order {
		pos[n.ID] = i
	}
	for _, n := range order {
		for _, p := range n.Parents {
			if pos[p] >= pos[n.ID] {
				t.Errorf("parent %s sorted after child %s", p, n.ID)
			}
		}
	}
	if got := contents(order); !slices.Equal(got, []string{"S1", "S4", "S2", "S3", "S5"}) {
		t.Errorf("TopologicalOrder() = %v", got)
	}
}

func TestGraphChildren(t *testing.T) {
	g := diamond(t).Graph()
	merge := g.Commits()[2]

	children, err := g.Children(merge.ID)
	if err != nil {
		t.Fatalf("Children() error: %v", err)
	}
	var names []string
	for _, id := range children {
		n, _ := g.Node(id)
		names = append(names, n.Content)
	}
	if !slices.Equal(names, []string{"S3", "S5"}) {
		t.Errorf("Children() = %v, want [S3 S5]", names)
	}
}

func TestGraphRejectsUnknownParent(t *testing.T) {
	g := New()
	err := g.AddCommit(Node{ID: "x", Content: "S1", Branch: "a", Parents: []store.CommitID{"y"}})
	if !errors.Is(err, errors.ErrCodeInvariant) {
		t.Errorf("AddCommit() error = %v, want invariant violation", err)
	}
	if err := g.MoveHead("a", "y"); !errors.Is(err, errors.ErrCodeInvariant) {
		t.Errorf("MoveHead() error = %v, want invariant violation", err)
	}
}

func TestGraphDuplicateIDMovesHead(t *testing.T) {
	g := New()
	if err := g.AddCommit(Node{ID: "x", Content: "S1", Branch: "a"}); err != nil {
		t.Fatal(err)
	}
	if err := g.AddCommit(Node{ID: "x", Content: "S1", Branch: "b"}); err != nil {
		t.Fatalf("AddCommit() duplicate error: %v", err)
	}
	if n := g.Stats().Commits; n != 1 {
		t.Errorf("Commits = %d, want 1", n)
	}
	if g.Heads()["b"] != "x" {
		t.Errorf("Heads()[b] = %s, want x", g.Heads()["b"])
	}
}

type countingHooks struct {
	observability.NoopStoreHooks
	commits, merges, moves int
}

func (h *countingHooks) OnCommit(_ context.Context, _ string, parents int) {
	h.commits++
	if parents > 1 {
		h.merges++
	}
}

func (h *countingHooks) OnBranchMove(context.Context, string) { h.moves++ }

func TestRecorderEmitsStoreHooks(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetStoreHooks(hooks)
	t.Cleanup(observability.Reset)

	diamond(t)

	if hooks.commits != 5 || hooks.merges != 1 || hooks.moves != 1 {
		t.Errorf("hooks = %+v, want 5 commits, 1 merge, 1 move", *hooks)
	}
}

func TestRecorderForwardsErrors(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemStore()
	r := NewRecorder(mem)

	if _, err := r.CreateCommit(ctx, "x", []store.CommitID{"c0042"}, "a"); err == nil {
		t.Fatal("CreateCommit() with unknown parent should fail")
	}
	if err := r.MoveBranchHead(ctx, "a", "c0042"); err == nil {
		t.Fatal("MoveBranchHead() to unknown commit should fail")
	}
	if n := r.Graph().Stats().Commits; n != 0 {
		t.Errorf("failed writes were recorded: %d commits", n)
	}
	if n := len(mem.Commits()); n != 0 {
		t.Errorf("store has %d commits", n)
	}
}
