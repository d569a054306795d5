// Package depgraph holds the task dependency graph of a project: a directed
// graph where an edge from A to B means A must finish before B starts.
package depgraph

import (
	"errors"
	"fmt"
	"sort"

	"github.com/leandroborgeseng/gestor-de-projetos-sub001/internal/model"
)

// ErrCycle is returned by TopologicalOrder when the graph is not acyclic.
var ErrCycle = errors.New("dependency cycle")

// Graph is a directed graph of task ids. The zero value is not usable; call New.
type Graph struct {
	nodes map[string]struct{}
	adj   map[string][]string // task -> tasks it blocks
	rev   map[string][]string // task -> tasks that block it
	edges map[[2]string]struct{}
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]struct{}),
		adj:   make(map[string][]string),
		rev:   make(map[string][]string),
		edges: make(map[[2]string]struct{}),
	}
}

// FromDependencies builds a graph from stored dependency edges.
func FromDependencies(deps []*model.TaskDependency) *Graph {
	g := New()
	for _, d := range deps {
		g.AddEdge(d.PredecessorID, d.SuccessorID)
	}
	return g
}

// AddNode registers a task with no edges. Adding an existing node is a no-op.
func (g *Graph) AddNode(id string) {
	g.nodes[id] = struct{}{}
}

// AddEdge adds from -> to and reports whether the edge was new.
func (g *Graph) AddEdge(from, to string) bool {
	key := [2]string{from, to}
	if _, ok := g.edges[key]; ok {
		return false
	}
	g.edges[key] = struct{}{}
	g.AddNode(from)
	g.AddNode(to)
	g.adj[from] = insertSorted(g.adj[from], to)
	g.rev[to] = insertSorted(g.rev[to], from)
	return true
}

// HasEdge reports whether from -> to exists.
func (g *Graph) HasEdge(from, to string) bool {
	_, ok := g.edges[[2]string{from, to}]
	return ok
}

// Nodes returns every node id in sorted order.
func (g *Graph) Nodes() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// EdgeCount returns the number of distinct edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Successors returns the tasks id blocks, sorted.
func (g *Graph) Successors(id string) []string { return g.adj[id] }

// Predecessors returns the tasks blocking id, sorted.
func (g *Graph) Predecessors(id string) []string { return g.rev[id] }

// Reachable reports whether to can be reached from from by following edges.
// A node always reaches itself.
func (g *Graph) Reachable(from, to string) bool {
	return g.PathBetween(from, to) != nil
}

// PathBetween returns the shortest path from from to to, both ends included,
// or nil if there is none. Ties are broken by node id.
func (g *Graph) PathBetween(from, to string) []string {
	if from == to {
		return []string{from}
	}
	parent := map[string]string{from: ""}
	queue := []string{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range g.adj[cur] {
			if _, seen := parent[next]; seen {
				continue
			}
			parent[next] = cur
			if next == to {
				return tracePath(parent, from, to)
			}
			queue = append(queue, next)
		}
	}
	return nil
}

// WouldCreateCycle reports the cycle that adding pred -> succ would close,
// starting and ending at pred, or nil if the edge is safe.
func (g *Graph) WouldCreateCycle(pred, succ string) []string {
	path := g.PathBetween(succ, pred)
	if path == nil {
		return nil
	}
	cycle := make([]string, 0, len(path)+1)
	cycle = append(cycle, pred)
	if pred == succ {
		return append(cycle, pred)
	}
	return append(cycle, path...)
}

// TopologicalOrder returns the nodes in dependency order using Kahn's
// algorithm. Among nodes that are ready at the same time the smallest id
// comes first, so the result is deterministic.
func (g *Graph) TopologicalOrder() ([]string, error) {
	indegree := make(map[string]int, len(g.nodes))
	for id := range g.nodes {
		indegree[id] = len(g.rev[id])
	}

	var ready []string
	for id, n := range indegree {
		if n == 0 {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(g.nodes))
	for len(ready) > 0 {
		cur := ready[0]
		ready = ready[1:]
		order = append(order, cur)
		for _, next := range g.adj[cur] {
			indegree[next]--
			if indegree[next] == 0 {
				ready = insertSorted(ready, next)
			}
		}
	}

	if len(order) != len(g.nodes) {
		return nil, fmt.Errorf("%w: %v", ErrCycle, g.DetectCycle())
	}
	return order, nil
}

// DetectCycle returns one cycle, first node repeated at the end, or nil if
// the graph is acyclic. Uses DFS with white/gray/black coloring.
func (g *Graph) DetectCycle() []string {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(g.nodes))
	parent := make(map[string]string)

	var dfs func(node string) []string
	dfs = func(node string) []string {
		color[node] = gray
		for _, next := range g.adj[node] {
			switch color[next] {
			case gray:
				cycle := []string{next}
				for cur := node; cur != next; cur = parent[cur] {
					cycle = append(cycle, cur)
				}
				cycle = append(cycle, next)
				for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
					cycle[i], cycle[j] = cycle[j], cycle[i]
				}
				return cycle
			case white:
				parent[next] = node
				if cycle := dfs(next); cycle != nil {
					return cycle
				}
			}
		}
		color[node] = black
		return nil
	}

	for _, id := range g.Nodes() {
		if color[id] == white {
			if cycle := dfs(id); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

// Blocked returns, sorted, the nodes that have at least one predecessor for
// which done reports false.
func (g *Graph) Blocked(done func(id string) bool) []string {
	var blocked []string
	for _, id := range g.Nodes() {
		for _, p := range g.rev[id] {
			if !done(p) {
				blocked = append(blocked, id)
				break
			}
		}
	}
	return blocked
}

func tracePath(parent map[string]string, from, to string) []string {
	var path []string
	for cur := to; ; cur = parent[cur] {
		path = append(path, cur)
		if cur == from {
			break
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

func insertSorted(s []string, v string) []string {
	i := sort.SearchStrings(s, v)
	s = append(s, "")
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}
