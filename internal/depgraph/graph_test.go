package depgraph

import (
	"errors"
	"reflect"
	"testing"

	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/model"
)

func build(edges ...[2]string) *Graph {
	g := New()
	for _, e := range edges {
		g.AddEdge(e[0], e[1])
	}
	return g
}

func TestFromDependencies(t *testing.T) {
	g := FromDependencies([]*model.TaskDependency{
		{ID: "dep-1", PredecessorID: "a", SuccessorID: "b"},
		{ID: "dep-2", PredecessorID: "a", SuccessorID: "c"},
		{ID: "dep-3", PredecessorID: "a", SuccessorID: "b"},
	})
	if g.EdgeCount() != 2 {
		t.Errorf("expected 2 edges, got %d", g.EdgeCount())
	}
	if got := g.Successors("a"); !reflect.DeepEqual(got, []string{"b", "c"}) {
		t.Errorf("successors(a) = %v", got)
	}
	if got := g.Predecessors("b"); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("predecessors(b) = %v", got)
	}
	if !g.HasEdge("a", "c") || g.HasEdge("c", "a") {
		t.Error("HasEdge mismatch")
	}
}

func TestAddEdge_Duplicate(t *testing.T) {
	g := New()
	if !g.AddEdge("a", "b") {
		t.Fatal("first AddEdge should report new")
	}
	if g.AddEdge("a", "b") {
		t.Error("second AddEdge should report duplicate")
	}
}

func TestReachableAndPath(t *testing.T) {
	// a -> b -> d, a -> c -> d, d -> e
	g := build([2]string{"a", "b"}, [2]string{"a", "c"}, [2]string{"b", "d"}, [2]string{"c", "d"}, [2]string{"d", "e"})
	g.AddNode("lonely")

	tests := []struct {
		from, to string
		want     []string
	}{
		{"a", "e", []string{"a", "b", "d", "e"}},
		{"c", "e", []string{"c", "d", "e"}},
		{"e", "a", nil},
		{"a", "lonely", nil},
		{"b", "b", []string{"b"}},
	}
	for _, tt := range tests {
		got := g.PathBetween(tt.from, tt.to)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("PathBetween(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
		if g.Reachable(tt.from, tt.to) != (tt.want != nil) {
			t.Errorf("Reachable(%s, %s) mismatch", tt.from, tt.to)
		}
	}
}

func TestWouldCreateCycle(t *testing.T) {
	// A -> B -> C
	g := build([2]string{"A", "B"}, [2]string{"B", "C"})

	if got := g.WouldCreateCycle("C", "A"); !reflect.DeepEqual(got, []string{"C", "A", "B", "C"}) {
		t.Errorf("WouldCreateCycle(C, A) = %v", got)
	}
	if got := g.WouldCreateCycle("B", "A"); !reflect.DeepEqual(got, []string{"B", "A", "B"}) {
		t.Errorf("WouldCreateCycle(B, A) = %v", got)
	}
	if got := g.WouldCreateCycle("A", "A"); !reflect.DeepEqual(got, []string{"A", "A"}) {
		t.Errorf("WouldCreateCycle(A, A) = %v", got)
	}
	if got := g.WouldCreateCycle("A", "C"); got != nil {
		t.Errorf("redundant forward edge should be safe, got %v", got)
	}
	if got := g.WouldCreateCycle("C", "D"); got != nil {
		t.Errorf("edge to new node should be safe, got %v", got)
	}
}

func TestTopologicalOrder(t *testing.T) {
	g := build([2]string{"c", "d"}, [2]string{"a", "d"}, [2]string{"b", "c"}, [2]string{"a", "b"})
	g.AddNode("z")
	g.AddNode("0")

	order, err := g.TopologicalOrder()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"0", "a", "b", "c", "d", "z"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}

	pos := make(map[string]int)
	for i, id := range order {
		pos[id] = i
	}
	for _, id := range g.Nodes() {
		for _, next := range g.Successors(id) {
			if pos[id] >= pos[next] {
				t.Errorf("%s must precede %s", id, next)
			}
		}
	}
}

func TestTopologicalOrder_Cycle(t *testing.T) {
	g := build([2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"c", "a"})
	_, err := g.TopologicalOrder()
	if !errors.Is(err, ErrCycle) {
		t.Fatalf("expected ErrCycle, got %v", err)
	}
}

func TestDetectCycle(t *testing.T) {
	if c := build([2]string{"a", "b"}, [2]string{"b", "c"}).DetectCycle(); c != nil {
		t.Errorf("acyclic graph reported cycle %v", c)
	}

	c := build([2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"c", "a"}).DetectCycle()
	if !reflect.DeepEqual(c, []string{"a", "b", "c", "a"}) {
		t.Errorf("cycle = %v", c)
	}

	if c := build([2]string{"x", "x"}).DetectCycle(); !reflect.DeepEqual(c, []string{"x", "x"}) {
		t.Errorf("self-loop cycle = %v", c)
	}
}

func TestBlocked(t *testing.T) {
	// a -> c, b -> c, c -> d
	g := build([2]string{"a", "c"}, [2]string{"b", "c"}, [2]string{"c", "d"})
	done := map[string]bool{"a": true}

	got := g.Blocked(func(id string) bool { return done[id] })
	if !reflect.DeepEqual(got, []string{"c", "d"}) {
		t.Errorf("blocked = %v, want [c d]", got)
	}

	done["b"] = true
	got = g.Blocked(func(id string) bool { return done[id] })
	if !reflect.DeepEqual(got, []string{"d"}) {
		t.Errorf("blocked = %v, want [d]", got)
	}
}
