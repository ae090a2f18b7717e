package resolve

// resolve.go — The resolver: a pure function from (schema, graph, chip,
// explicit requests) to a final selection set plus ordered diagnostics.
//
// Closure is purely additive: turning a feature on can only turn more
// features on, never any off. Conflicts are always surfaced as diagnostics
// rather than silently auto-corrected, so results stay auditable and an
// explicit user choice is never dropped without a report.

import (
	"sort"

	"github.com/ziyadedher/esp-generate/internal/chip"
	"github.com/ziyadedher/esp-generate/internal/schema"
)

// Result is the outcome of one resolution. Final has an entry for every
// known option name, including chip-inapplicable ones fixed to false. An
// empty Diagnostics slice means the configuration is fully consistent.
type Result struct {
	Final       map[string]bool
	Diagnostics []Diagnostic
}

// Ok reports whether the resolution produced no diagnostics.
func (r Result) Ok() bool { return len(r.Diagnostics) == 0 }

// Selected returns the names of all finally selected options in schema
// declaration order.
func (r Result) Selected(s *schema.Schema) []string {
	var out []string
	for _, name := range s.Names() {
		if r.Final[name] {
			out = append(out, name)
		}
	}
	return out
}

// Resolve computes the fixpoint closure of the explicit requests for the
// given chip and validates every constraint. It never mutates its inputs,
// performs no I/O, and yields identical output for identical input, so
// concurrent calls against the same schema are safe.
func Resolve(s *schema.Schema, g *Graph, c chip.Chip, requested map[string]bool) Result {
	diags := []Diagnostic{}
	active := make(map[string]bool)      // option and category nodes
	var activeOptions []string           // options only, activation order
	incompatible := make(map[string]bool) // already-diagnosed chip conflicts

	// Explicitly requested names that match no declared option.
	var unknown []string
	for name, want := range requested {
		if want && !s.IsOption(name) {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		diags = append(diags, unknownOption(name))
	}

	activate := func(name string, queue *[]string) {
		active[name] = true
		if s.IsOption(name) {
			activeOptions = append(activeOptions, name)
		}
		*queue = append(*queue, name)
	}

	// Chip filtering and seeding, in schema declaration order. An explicit
	// request for an option with no variant on this chip is an unrecoverable
	// conflict for that option; resolution continues for the rest.
	var queue []string
	for _, name := range s.Names() {
		if !requested[name] {
			continue
		}
		if s.Variant(name, c) == nil {
			diags = append(diags, chipIncompatible(name, c.String(), ""))
			incompatible[name] = true
			continue
		}
		activate(name, &queue)
	}

	// Positive closure. Negative edges never propagate; a chip-inapplicable
	// target reached through a positive edge is a hard conflict naming the
	// forcing node.
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		for _, target := range positiveTargets(s, g, c, node) {
			if active[target] {
				continue
			}
			if s.IsOption(target) && s.Variant(target, c) == nil {
				if !incompatible[target] {
					diags = append(diags, chipIncompatible(target, c.String(), node))
					incompatible[target] = true
				}
				continue
			}
			activate(target, &queue)
		}
	}

	// Negative validation: exclusion only invalidates, it never deselects.
	for _, name := range activeOptions {
		for _, req := range s.Variant(name, c).Requires {
			if req.Negated && valueOf(s, active, req.Target, make(map[string]bool)) {
				diags = append(diags, negativeRequirement(name, req.Target))
			}
		}
	}

	// Group validation: multiplicity is reported, never auto-resolved, so an
	// explicit user choice is never silently lost.
	for _, group := range s.Groups() {
		var selected []string
		for _, member := range s.GroupMembers(group) {
			if active[member] {
				selected = append(selected, member)
			}
		}
		if len(selected) > 1 {
			diags = append(diags, groupConflict(group, selected))
		}
	}

	// Category gate validation: a selected option whose owning category's
	// requirements do not hold should not have been selectable at all.
	for _, name := range activeOptions {
		cat := s.Variant(name, c).Category
		if cat == "" {
			continue
		}
		if !gateSatisfied(s, active, cat, make(map[string]bool)) {
			diags = append(diags, categoryGate(name, cat))
		}
	}

	final := make(map[string]bool, len(s.Names()))
	for _, name := range s.Names() {
		final[name] = active[name]
	}
	return Result{Final: final, Diagnostics: diags}
}

// positiveTargets returns the positive requirement targets of a node for
// the active chip. Options contribute their visible variant's requires plus
// the implicit edge to their owning category; category nodes are
// chip-independent, so the graph's merged edges are exact for them.
func positiveTargets(s *schema.Schema, g *Graph, c chip.Chip, node string) []string {
	v := s.Variant(node, c)
	if v == nil {
		return g.Positive(node)
	}
	var targets []string
	for _, req := range v.Requires {
		if !req.Negated {
			targets = append(targets, req.Target)
		}
	}
	if v.Category != "" {
		targets = append(targets, v.Category)
	}
	return targets
}

// valueOf evaluates the effective boolean value of a requirement target:
// selection state for options, gate satisfaction for categories.
func valueOf(s *schema.Schema, active map[string]bool, name string, visiting map[string]bool) bool {
	if s.IsOption(name) {
		return active[name]
	}
	if s.Category(name) != nil {
		return gateSatisfied(s, active, name, visiting)
	}
	return false
}

// gateSatisfied reports whether a category's own requirements hold under
// the active set. Mutual exclusion between categories can form negative
// reference loops; re-entry breaks the loop optimistically.
func gateSatisfied(s *schema.Schema, active map[string]bool, name string, visiting map[string]bool) bool {
	if visiting[name] {
		return true
	}
	visiting[name] = true
	defer delete(visiting, name)

	for _, req := range s.Category(name).Requires {
		if valueOf(s, active, req.Target, visiting) == req.Negated {
			return false
		}
	}
	return true
}
