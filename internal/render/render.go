// Package render implements the line-directive engine applied to every
// template file during project generation.
//
// Directives are recognized with either a "#" or "//" prefix so the same
// syntax works in TOML, YAML, and Rust sources:
//
//	#IF <cond> / #ELIF <cond> / #ELSE / #ENDIF   conditional blocks (nestable)
//	#REPLACE <pattern> <variable> [&& ...]       substitute on the next line
//	#INCLUDEFILE <cond>                          include or drop the whole file
//	#INCLUDE_AS <path>                           rename the rendered file
//	#+ / //+                                     strip the marker, keep the line
//
// Conditions are expressions evaluated with expr-lang; the environment
// exposes option(name) over the resolved selection set.
package render

import (
	"fmt"
	"strings"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

// Variable is one named substitution value available to #REPLACE.
type Variable struct {
	Name  string
	Value string
}

// File is a rendered template file.
type File struct {
	Path    string
	Content string
}

// Context carries the selection set and variables a render run evaluates
// against. Compiled condition programs are cached per context.
type Context struct {
	selected map[string]bool
	vars     []Variable
	programs map[string]*exprvm.Program
}

// NewContext builds a render context from the names visible to option()
// and the ordered variable table.
func NewContext(selected []string, vars []Variable) *Context {
	set := make(map[string]bool, len(selected))
	for _, name := range selected {
		set[name] = true
	}
	return &Context{
		selected: set,
		vars:     vars,
		programs: make(map[string]*exprvm.Program),
	}
}

// Variable returns the value of a named variable and whether it exists.
func (c *Context) Variable(name string) (string, bool) {
	for _, v := range c.vars {
		if v.Name == name {
			return v.Value, true
		}
	}
	return "", false
}

// eval compiles (with caching) and runs a directive condition.
func (c *Context) eval(cond string) (bool, error) {
	program, ok := c.programs[cond]
	if !ok {
		var err error
		program, err = exprlang.Compile(cond,
			exprlang.AsBool(),
			exprlang.Function("option", func(params ...any) (any, error) {
				if len(params) != 1 {
					return nil, fmt.Errorf("option() takes one argument")
				}
				name, ok := params[0].(string)
				if !ok {
					return nil, fmt.Errorf("option() argument must be a string")
				}
				return c.selected[name], nil
			}, new(func(string) bool)),
		)
		if err != nil {
			return false, fmt.Errorf("compile condition %q: %w", cond, err)
		}
		c.programs[cond] = program
	}
	out, err := exprlang.Run(program, nil)
	if err != nil {
		return false, fmt.Errorf("evaluate condition %q: %w", cond, err)
	}
	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("condition %q is not boolean", cond)
	}
	return b, nil
}

// block tracks one conditional nesting level: whether the current branch is
// included and whether any earlier branch of the same IF chain was.
type block struct {
	root    bool
	current bool
	any     bool
}

func (b block) includeLine() bool {
	if b.root {
		return true
	}
	return b.current && !b.any
}

// RenderFile processes one template file. It returns nil when the file is
// excluded by an #INCLUDEFILE directive, otherwise the rendered file with
// its (possibly renamed) path.
func (c *Context) RenderFile(path, contents string) (*File, error) {
	var out strings.Builder
	var replace []Variable

	stack := []block{{root: true}}
	outPath := path
	fileDirectives := true

	for lineNo, line := range strings.Split(strings.TrimSuffix(contents, "\n"), "\n") {
		lineNo++
		trimmed := strings.TrimSpace(line)

		// File-level directives are only honored before the first content
		// line.
		if fileDirectives {
			if cond, ok := directiveArg(trimmed, "INCLUDEFILE"); ok {
				include, err := c.eval(cond)
				if err != nil {
					return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
				}
				if !include {
					return nil, nil
				}
				continue
			}
			if as, ok := directiveArg(trimmed, "INCLUDE_AS"); ok {
				outPath = strings.TrimSpace(as)
				continue
			}
		}
		fileDirectives = false

		// The generated project is formatted afterwards; skip markers kept
		// for the template sources themselves.
		if trimmed == "#[rustfmt::skip]" {
			continue
		}

		switch {
		case hasDirective(trimmed, "REPLACE"):
			what, _ := directiveArg(trimmed, "REPLACE")
			replace = parseReplacements(what, c.vars)

		case hasDirective(trimmed, "IF"):
			cond, _ := directiveArg(trimmed, "IF")
			current := false
			if stack[len(stack)-1].includeLine() {
				var err error
				current, err = c.eval(cond)
				if err != nil {
					return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
				}
			}
			stack = append(stack, block{current: current})

		case hasDirective(trimmed, "ELIF"):
			cond, _ := directiveArg(trimmed, "ELIF")
			last, err := pop(&stack, path, lineNo, "ELIF")
			if err != nil {
				return nil, err
			}
			// Only evaluate when no earlier branch was taken.
			current := false
			if !last.current && !last.any {
				current, err = c.eval(cond)
				if err != nil {
					return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
				}
			}
			stack = append(stack, block{current: current, any: last.any || last.current})

		case hasDirective(trimmed, "ELSE"):
			last, err := pop(&stack, path, lineNo, "ELSE")
			if err != nil {
				return nil, err
			}
			stack = append(stack, block{current: !(last.any || last.current), any: last.any || last.current})

		case hasDirective(trimmed, "ENDIF"):
			if _, err := pop(&stack, path, lineNo, "ENDIF"); err != nil {
				return nil, err
			}

		default:
			if !allIncluded(stack) {
				continue
			}
			if strings.HasPrefix(trimmed, "#+") {
				line = strings.ReplaceAll(line, "#+", "")
			}
			if strings.HasPrefix(trimmed, "//+") {
				line = strings.ReplaceAll(line, "//+", "")
			}
			for _, r := range replace {
				line = strings.ReplaceAll(line, r.Name, r.Value)
			}
			out.WriteString(line)
			out.WriteString("\n")
			replace = nil
		}
	}

	if len(stack) != 1 {
		return nil, fmt.Errorf("%s: unterminated IF block", path)
	}
	return &File{Path: outPath, Content: out.String()}, nil
}

// hasDirective reports whether a trimmed line starts with "#<name> ",
// "//<name> ", or equals the bare directive.
func hasDirective(trimmed, name string) bool {
	_, ok := directiveArg(trimmed, name)
	if ok {
		return true
	}
	return trimmed == "#"+name || trimmed == "//"+name
}

// directiveArg extracts the argument of a directive line, if present.
func directiveArg(trimmed, name string) (string, bool) {
	for _, prefix := range []string{"#" + name + " ", "//" + name + " "} {
		if rest, ok := strings.CutPrefix(trimmed, prefix); ok {
			return strings.TrimSpace(rest), true
		}
	}
	return "", false
}

// parseReplacements parses "<pattern> <variable> [&& ...]" pairs, dropping
// pairs whose variable is unknown.
func parseReplacements(what string, vars []Variable) []Variable {
	var out []Variable
	for _, pair := range strings.Split(what, " && ") {
		fields := strings.Fields(pair)
		if len(fields) != 2 {
			continue
		}
		for _, v := range vars {
			if v.Name == fields[1] {
				out = append(out, Variable{Name: fields[0], Value: v.Value})
				break
			}
		}
	}
	return out
}

func pop(stack *[]block, path string, lineNo int, directive string) (block, error) {
	last := (*stack)[len(*stack)-1]
	if last.root {
		return block{}, fmt.Errorf("%s:%d: %s without IF", path, lineNo, directive)
	}
	*stack = (*stack)[:len(*stack)-1]
	return last, nil
}

func allIncluded(stack []block) bool {
	for _, b := range stack {
		if !b.includeLine() {
			return false
		}
	}
	return true
}
