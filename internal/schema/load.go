package schema

// load.go — YAML document parsing and structural validation.
//
// The document form mirrors the template schema file: a flat list of nodes
// where a node carrying a non-empty "options" list is a category and every
// other node is an option.

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/ziyadedher/esp-generate/internal/chip"
)

// Node is one raw schema document entry, either an option or (when Options
// is non-empty) a category of options.
type Node struct {
	Name           string   `yaml:"name"`
	DisplayName    string   `yaml:"display_name,omitempty"`
	Help           string   `yaml:"help,omitempty"`
	SelectionGroup string   `yaml:"selection_group,omitempty"`
	Requires       []string `yaml:"requires,omitempty"`
	Chips          []string `yaml:"chips,omitempty"`
	Options        []Node   `yaml:"options,omitempty"`
}

// Document is the raw, unvalidated schema document.
type Document struct {
	Options []Node `yaml:"options"`
}

// Load unmarshals and validates a schema document, returning the immutable
// model. All validation failures are fatal; the caller gets either a fully
// built model or an error, never a partial one.
func Load(data []byte) (*Schema, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse schema document: %w", err)
	}
	return Parse(doc)
}

// Parse validates a raw document and builds the model.
func Parse(doc Document) (*Schema, error) {
	s := &Schema{
		variants:   make(map[string][]*Option),
		categories: make(map[string]*Category),
		groups:     make(map[string][]string),
	}

	for _, node := range doc.Options {
		if len(node.Options) > 0 {
			if err := addCategory(s, node); err != nil {
				return nil, err
			}
			continue
		}
		if err := addOption(s, node, ""); err != nil {
			return nil, err
		}
	}

	if err := validateDisjointVariants(s); err != nil {
		return nil, err
	}
	if err := validateReferences(s); err != nil {
		return nil, err
	}
	return s, nil
}

func addCategory(s *Schema, node Node) error {
	if node.Name == "" {
		return fmt.Errorf("schema: category with no name")
	}
	if _, exists := s.categories[node.Name]; exists {
		return &AmbiguousDuplicateError{Name: node.Name, Detail: "category declared twice"}
	}
	if len(s.variants[node.Name]) > 0 {
		return &AmbiguousDuplicateError{Name: node.Name, Detail: "declared as both option and category"}
	}
	cat := &Category{
		Name:        node.Name,
		DisplayName: node.DisplayName,
		Requires:    parseRequirements(node.Requires),
	}
	s.categories[node.Name] = cat
	s.Categories = append(s.Categories, cat)

	for _, child := range node.Options {
		if len(child.Options) > 0 {
			return fmt.Errorf("schema: category %q contains nested category %q", node.Name, child.Name)
		}
		if err := addOption(s, child, node.Name); err != nil {
			return err
		}
	}
	return nil
}

func addOption(s *Schema, node Node, category string) error {
	if node.Name == "" {
		return fmt.Errorf("schema: option with no name")
	}
	if _, exists := s.categories[node.Name]; exists {
		return &AmbiguousDuplicateError{Name: node.Name, Detail: "declared as both option and category"}
	}
	chips, err := parseChips(node.Name, node.Chips)
	if err != nil {
		return err
	}
	opt := &Option{
		Name:           node.Name,
		DisplayName:    node.DisplayName,
		Help:           node.Help,
		SelectionGroup: node.SelectionGroup,
		Requires:       parseRequirements(node.Requires),
		Chips:          chips,
		Category:       category,
	}

	if len(s.variants[node.Name]) == 0 {
		s.names = append(s.names, node.Name)
	}
	s.variants[node.Name] = append(s.variants[node.Name], opt)
	s.Options = append(s.Options, opt)
	if category != "" {
		s.categories[category].Options = append(s.categories[category].Options, opt)
	}
	if g := node.SelectionGroup; g != "" {
		if !contains(s.groups[g], node.Name) {
			if len(s.groups[g]) == 0 {
				s.groupOrder = append(s.groupOrder, g)
			}
			s.groups[g] = append(s.groups[g], node.Name)
		}
	}
	return nil
}

func parseRequirements(raw []string) []Requirement {
	if len(raw) == 0 {
		return nil
	}
	reqs := make([]Requirement, len(raw))
	for i, r := range raw {
		reqs[i] = ParseRequirement(r)
	}
	return reqs
}

func parseChips(option string, raw []string) ([]chip.Chip, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	chips := make([]chip.Chip, len(raw))
	for i, r := range raw {
		c, err := chip.Parse(r)
		if err != nil {
			return nil, fmt.Errorf("schema: option %q: %w", option, err)
		}
		chips[i] = c
	}
	return chips, nil
}

// validateDisjointVariants checks that every set of same-named option
// declarations has pairwise-disjoint chip sets. A variant with no chip set
// applies to every chip and so overlaps any other declaration.
func validateDisjointVariants(s *Schema) error {
	for _, name := range s.names {
		variants := s.variants[name]
		if len(variants) < 2 {
			continue
		}
		for i, a := range variants {
			for _, b := range variants[i+1:] {
				if len(a.Chips) == 0 || len(b.Chips) == 0 {
					return &AmbiguousDuplicateError{
						Name:   name,
						Detail: "duplicate declaration without a chip restriction",
					}
				}
				for _, c := range a.Chips {
					if b.AppliesTo(c) {
						return &AmbiguousDuplicateError{
							Name:   name,
							Detail: fmt.Sprintf("declarations overlap on chip %s", c),
						}
					}
				}
			}
		}
	}
	return nil
}

// validateReferences checks that every requirement target (negated or not)
// names a declared option or category.
func validateReferences(s *Schema) error {
	check := func(from string, reqs []Requirement) error {
		for _, r := range reqs {
			if s.IsOption(r.Target) {
				continue
			}
			if _, ok := s.categories[r.Target]; ok {
				continue
			}
			return &UnknownReferenceError{From: from, Target: r.Target}
		}
		return nil
	}
	for _, o := range s.Options {
		if err := check(o.Name, o.Requires); err != nil {
			return err
		}
	}
	for _, c := range s.Categories {
		if err := check(c.Name, c.Requires); err != nil {
			return err
		}
	}
	return nil
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
