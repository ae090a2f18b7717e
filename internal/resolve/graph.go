// Package resolve implements the option resolution engine: a derived
// constraint graph over the option schema and a pure, deterministic resolver
// that computes a consistent final selection set for a chip and a set of
// explicit requests, or reports precisely why no consistent set exists.
package resolve

import (
	"fmt"
	"strings"

	"github.com/ziyadedher/esp-generate/internal/schema"
)

// Graph is a derived, chip-independent view over the schema: requirement
// edges between option and category nodes, plus the implicit positive edge
// from every option to its owning category. Negative requirement edges are
// tracked separately and never participate in closure or cycle analysis,
// since they express exclusion rather than chained implication.
type Graph struct {
	nodes    []string            // options then categories, declaration order
	positive map[string][]string // node -> positive requirement targets
	negative map[string][]string // node -> targets that must stay unselected
	category map[string][]string // option -> owning category names (per variant)
}

// CycleError reports a cycle of positive requirement edges. A positive
// cycle is unsatisfiable except trivially and is treated as a schema defect.
type CycleError struct {
	Path []string // the cycle, first node repeated at the end
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("schema: requirement cycle: %s", strings.Join(e.Path, " -> "))
}

// BuildGraph derives the constraint graph from the schema and rejects
// positive requirement cycles. Edges of same-named chip variants are
// merged: a cycle on any variant combination is a schema defect regardless
// of which chip is ultimately targeted.
func BuildGraph(s *schema.Schema) (*Graph, error) {
	g := &Graph{
		positive: make(map[string][]string),
		negative: make(map[string][]string),
		category: make(map[string][]string),
	}

	addEdge := func(edges map[string][]string, from, to string) {
		for _, existing := range edges[from] {
			if existing == to {
				return
			}
		}
		edges[from] = append(edges[from], to)
	}

	for _, name := range s.Names() {
		g.nodes = append(g.nodes, name)
		for _, variant := range s.Variants(name) {
			for _, req := range variant.Requires {
				if req.Negated {
					addEdge(g.negative, name, req.Target)
				} else {
					addEdge(g.positive, name, req.Target)
				}
			}
			if variant.Category != "" {
				addEdge(g.category, name, variant.Category)
				// Selecting an option implies its category gate.
				addEdge(g.positive, name, variant.Category)
			}
		}
	}
	for _, cat := range s.Categories {
		g.nodes = append(g.nodes, cat.Name)
		for _, req := range cat.Requires {
			if req.Negated {
				addEdge(g.negative, cat.Name, req.Target)
			} else {
				addEdge(g.positive, cat.Name, req.Target)
			}
		}
	}

	if err := g.detectCycles(); err != nil {
		return nil, err
	}
	return g, nil
}

// Positive returns the positive requirement targets of a node.
func (g *Graph) Positive(node string) []string { return g.positive[node] }

// Negative returns the targets a node requires to be unselected.
func (g *Graph) Negative(node string) []string { return g.negative[node] }

// Categories returns the owning category names of an option node.
func (g *Graph) Categories(option string) []string { return g.category[option] }

// detectCycles runs a depth-first traversal over positive edges with a
// visiting/visited marker. A back edge to a node still marked visiting is a
// cycle; the full cycle path is reported.
func (g *Graph) detectCycles() error {
	const (
		unvisited = 0
		visiting  = 1
		visited   = 2
	)
	state := make(map[string]int, len(g.nodes))
	var stack []string

	var visit func(node string) *CycleError
	visit = func(node string) *CycleError {
		state[node] = visiting
		stack = append(stack, node)
		for _, next := range g.positive[node] {
			switch state[next] {
			case visiting:
				// Trim the stack down to the start of the cycle.
				start := 0
				for i, n := range stack {
					if n == next {
						start = i
						break
					}
				}
				path := append(append([]string{}, stack[start:]...), next)
				return &CycleError{Path: path}
			case unvisited:
				if err := visit(next); err != nil {
					return err
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[node] = visited
		return nil
	}

	for _, node := range g.nodes {
		if state[node] == unvisited {
			if err := visit(node); err != nil {
				return err
			}
		}
	}
	return nil
}
