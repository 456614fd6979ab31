package build

import (
	"testing"

	"github.com/matzehuels/transitgit/pkg/errors"
)

func TestAdvanceBy(t *testing.T) {
	tests := []struct {
		name  string
		from  State
		index int
		want  State
	}{
		{"untouched to pending", Untouched{Length: 3}, 0, Pending{BuiltIndex: 0, Length: 3, Head: "c"}},
		{"untouched single stop", Untouched{Length: 1}, 0, Built{Final: "c"}},
		{"pending to pending", Pending{BuiltIndex: 0, Length: 3, Head: "p"}, 1, Pending{BuiltIndex: 1, Length: 3, Head: "c"}},
		{"pending to built", Pending{BuiltIndex: 1, Length: 3, Head: "p"}, 2, Built{Final: "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AdvanceBy(tt.from, "c", tt.index)
			if err != nil {
				t.Fatalf("AdvanceBy() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("AdvanceBy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAdvanceByInvariant(t *testing.T) {
	tests := []struct {
		name  string
		from  State
		index int
	}{
		{"untouched skips", Untouched{Length: 3}, 1},
		{"pending repeats", Pending{BuiltIndex: 1, Length: 3, Head: "p"}, 1},
		{"pending skips", Pending{BuiltIndex: 0, Length: 3, Head: "p"}, 2},
		{"pending past end", Pending{BuiltIndex: 2, Length: 3, Head: "p"}, 3},
		{"untouched empty", Untouched{Length: 0}, 0},
		{"built", Built{Final: "f"}, 0},
		{"nil", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AdvanceBy(tt.from, "c", tt.index)
			if !errors.Is(err, errors.ErrCodeInvariant) {
				t.Fatalf("AdvanceBy() = %v, %v; want invariant violation", got, err)
			}
			if got != nil {
				t.Errorf("AdvanceBy() state = %v on error, want nil", got)
			}
		})
	}
}

func TestAdvanceByOne(t *testing.T) {
	tests := []struct {
		name string
		from State
		want State
	}{
		{"untouched", Untouched{Length: 3}, Pending{BuiltIndex: 0, Length: 3, Head: "m"}},
		{"untouched single stop stays pending", Untouched{Length: 1}, Pending{BuiltIndex: 0, Length: 1, Head: "m"}},
		{"pending middle", Pending{BuiltIndex: 0, Length: 4, Head: "p"}, Pending{BuiltIndex: 1, Length: 4, Head: "m"}},
		{"pending second to last", Pending{BuiltIndex: 1, Length: 3, Head: "p"}, Built{Final: "m"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AdvanceByOne(tt.from, "m")
			if err != nil {
				t.Fatalf("AdvanceByOne() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("AdvanceByOne() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAdvanceByOneInvariant(t *testing.T) {
	for _, from := range []State{
		Built{Final: "f"},
		Pending{BuiltIndex: 2, Length: 3, Head: "p"},
		nil,
	} {
		if _, err := AdvanceByOne(from, "m"); !errors.Is(err, errors.ErrCodeInvariant) {
			t.Errorf("AdvanceByOne(%v) error = %v, want invariant violation", from, err)
		}
	}
}

func TestInvariantMessageCarriesState(t *testing.T) {
	_, err := AdvanceByOne(Built{Final: "c0007"}, "m")
	if err == nil {
		t.Fatal("expected error")
	}
	if got, want := errors.UserMessage(err), "advance a built route: state Built(c0007)"; got != want {
		t.Errorf("UserMessage() = %q, want %q", got, want)
	}
}

func TestStateHelpers(t *testing.T) {
	tests := []struct {
		state State
		head  string
		next  int
		open  bool
		str   string
	}{
		{Untouched{Length: 2}, "", 0, true, "Untouched(2)"},
		{Pending{BuiltIndex: 1, Length: 3, Head: "c0002"}, "c0002", 2, true, "Pending(1/3, c0002)"},
		{Built{Final: "c0003"}, "c0003", 0, false, "Built(c0003)"},
	}

	for _, tt := range tests {
		t.Run(tt.str, func(t *testing.T) {
			if got := Head(tt.state); string(got) != tt.head {
				t.Errorf("Head() = %q, want %q", got, tt.head)
			}
			next, open := NextIndex(tt.state)
			if next != tt.next || open != tt.open {
				t.Errorf("NextIndex() = %d, %v; want %d, %v", next, open, tt.next, tt.open)
			}
			if IsBuilt(tt.state) == tt.open {
				t.Errorf("IsBuilt() = %v", IsBuilt(tt.state))
			}
			if got := tt.state.String(); got != tt.str {
				t.Errorf("String() = %q, want %q", got, tt.str)
			}
		})
	}
}
