// Package schema holds the in-memory model of the generator's option
// schema: selectable options, their owning categories, requirement terms,
// selection groups, and chip-applicability sets.
//
// The model is built once by Load and never mutated afterwards, so a single
// *Schema may be shared freely across concurrent resolver calls.
package schema

import (
	"strings"

	"github.com/ziyadedher/esp-generate/internal/chip"
)

// Requirement is a single parsed requirement term. A negated term means the
// target must be unselected; otherwise it must be selected. The target names
// an option or a category.
type Requirement struct {
	Target  string
	Negated bool
}

// ParseRequirement parses the string form of a requirement term: a leading
// "!" marks the term negated, the rest is the target name.
func ParseRequirement(s string) Requirement {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "!"); ok {
		return Requirement{Target: rest, Negated: true}
	}
	return Requirement{Target: s}
}

func (r Requirement) String() string {
	if r.Negated {
		return "!" + r.Target
	}
	return r.Target
}

// Option is one declared variant of a selectable option. The schema may
// declare the same name more than once with disjoint chip sets; each
// declaration is kept as its own Option and Schema.Variant picks the one
// visible for the active chip.
type Option struct {
	Name           string
	DisplayName    string
	Help           string
	SelectionGroup string
	Requires       []Requirement
	Chips          []chip.Chip // nil = applicable to every chip
	Category       string      // owning category name, "" for top-level options
}

// AppliesTo reports whether this variant is applicable to c. An option with
// no chip set applies everywhere.
func (o *Option) AppliesTo(c chip.Chip) bool {
	if len(o.Chips) == 0 {
		return true
	}
	for _, cc := range o.Chips {
		if cc == c {
			return true
		}
	}
	return false
}

// Category is a named grouping of options. A category is addressable as a
// requirement target: it has no selection state of its own, its effective
// value is the conjunction of its own requirements.
type Category struct {
	Name        string
	DisplayName string
	Requires    []Requirement
	Options     []*Option // declaration order, every variant
}

// Schema is the immutable option schema. All slices preserve declaration
// order; lookups go through the maps built at load time.
type Schema struct {
	Options    []*Option   // every declared variant, declaration order
	Categories []*Category // declaration order

	variants   map[string][]*Option
	categories map[string]*Category
	names      []string            // unique logical option names, declaration order
	groups     map[string][]string // selection group -> member names, declaration order
	groupOrder []string
}

// Names returns every logical option name (variants collapsed) in
// declaration order.
func (s *Schema) Names() []string { return s.names }

// Variants returns all declared variants of the named option, or nil when
// the name is unknown.
func (s *Schema) Variants(name string) []*Option { return s.variants[name] }

// Variant returns the variant of the named option visible for c, or nil
// when the name is unknown or no variant applies to c.
func (s *Schema) Variant(name string, c chip.Chip) *Option {
	for _, o := range s.variants[name] {
		if o.AppliesTo(c) {
			return o
		}
	}
	return nil
}

// Category returns the named category, or nil.
func (s *Schema) Category(name string) *Category { return s.categories[name] }

// IsOption reports whether name is a declared option name.
func (s *Schema) IsOption(name string) bool { return len(s.variants[name]) > 0 }

// Groups returns all selection group names in declaration order.
func (s *Schema) Groups() []string { return s.groupOrder }

// GroupMembers returns the option names sharing the named selection group,
// in declaration order.
func (s *Schema) GroupMembers(group string) []string { return s.groups[group] }
