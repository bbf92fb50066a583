// Package depgraph builds and checks the dependency graph of a catalog.
//
// Edges run from a derived entry to the entries it is computed from:
// provenance bases, expression inputs, reduction dependencies and a
// vector's components. A parent_vector back-reference is deliberately not
// an edge, otherwise every vector/component pair would form a trivial
// two-cycle. The graph must be acyclic; cycle reports carry a minimal
// witness path.
package depgraph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/plasmakit/stdnames/model"
)

// DanglingEdgeError reports a dependency on a name the catalog does not
// contain.
type DanglingEdgeError struct {
	From string
	To   string
}

func (e *DanglingEdgeError) Error() string {
	return fmt.Sprintf("entry %q depends on %q, which does not exist", e.From, e.To)
}

// CycleError reports a dependency cycle. Path starts and ends with the
// same name.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return "dependency cycle: " + strings.Join(e.Path, " -> ")
}

// Graph is an immutable dependency graph over catalog entries.
type Graph struct {
	// edges maps each name to its direct dependencies, sorted.
	edges map[string][]string
	// reverse maps each name to its direct dependents, sorted.
	reverse map[string][]string
}

// EdgesOf returns the direct dependencies an entry declares, sorted and
// deduplicated. Dangling targets are included; Build filters them.
func EdgesOf(e *model.Entry) []string {
	set := make(map[string]struct{})
	if e.Provenance != nil {
		for _, ref := range e.Provenance.References() {
			set[ref] = struct{}{}
		}
	}
	for _, name := range e.Components {
		set[name] = struct{}{}
	}
	delete(set, e.Name)
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Build constructs the graph over the given entries. Edges to names absent
// from the set are dropped from the graph and reported as
// DanglingEdgeErrors.
func Build(entries map[string]*model.Entry) (*Graph, []error) {
	g := &Graph{
		edges:   make(map[string][]string, len(entries)),
		reverse: make(map[string][]string, len(entries)),
	}
	var errs []error
	names := sortedKeys(entries)
	for _, name := range names {
		g.edges[name] = nil
		g.reverse[name] = nil
	}
	for _, name := range names {
		for _, dep := range EdgesOf(entries[name]) {
			if _, ok := entries[dep]; !ok {
				errs = append(errs, &DanglingEdgeError{From: name, To: dep})
				continue
			}
			g.edges[name] = append(g.edges[name], dep)
			g.reverse[dep] = append(g.reverse[dep], name)
		}
	}
	for _, m := range []map[string][]string{g.edges, g.reverse} {
		for name := range m {
			sort.Strings(m[name])
		}
	}
	return g, errs
}

// Dependencies returns the direct dependencies of name.
func (g *Graph) Dependencies(name string) []string {
	return append([]string(nil), g.edges[name]...)
}

// Dependents returns the entries that directly depend on name.
func (g *Graph) Dependents(name string) []string {
	return append([]string(nil), g.reverse[name]...)
}

// TransitiveDependencies returns everything name depends on, directly or
// indirectly, sorted.
func (g *Graph) TransitiveDependencies(name string) []string {
	return g.closure(name, g.edges)
}

// TransitiveDependents returns everything that depends on name, directly
// or indirectly, sorted. Catalog mutations use this to decide which
// entries a removal or rename can break.
func (g *Graph) TransitiveDependents(name string) []string {
	return g.closure(name, g.reverse)
}

func (g *Graph) closure(name string, edges map[string][]string) []string {
	seen := make(map[string]struct{})
	stack := append([]string(nil), edges[name]...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		stack = append(stack, edges[n]...)
	}
	delete(seen, name)
	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// CheckAcyclic verifies the graph contains no cycle. On failure it returns
// a CycleError whose path is a minimal witness, chosen deterministically.
func (g *Graph) CheckAcyclic() error {
	const (
		white = iota
		grey
		black
	)
	color := make(map[string]int, len(g.edges))
	var stack []string

	var visit func(name string) *CycleError
	visit = func(name string) *CycleError {
		color[name] = grey
		stack = append(stack, name)
		for _, dep := range g.edges[name] {
			switch color[dep] {
			case grey:
				// Slice the stack from the first occurrence of dep to
				// get the minimal cycle.
				for i, n := range stack {
					if n == dep {
						path := append([]string(nil), stack[i:]...)
						path = append(path, dep)
						return &CycleError{Path: path}
					}
				}
			case white:
				if cerr := visit(dep); cerr != nil {
					return cerr
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[name] = black
		return nil
	}

	for _, name := range sortedKeys(g.edges) {
		if color[name] == white {
			if cerr := visit(name); cerr != nil {
				return cerr
			}
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
