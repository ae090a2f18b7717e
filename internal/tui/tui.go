// Package tui implements the interactive option selection screen: a
// navigable category/option tree over the chip-filtered schema. Every
// toggle re-runs the resolver, so the display always reflects the real
// closure of the current selection and conflicts are surfaced inline
// instead of being silently fixed.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ziyadedher/esp-generate/internal/chip"
	"github.com/ziyadedher/esp-generate/internal/resolve"
	"github.com/ziyadedher/esp-generate/internal/schema"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	impliedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("36"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// item is one visible row: an option or a category entry point.
type item struct {
	name       string
	display    string
	help       string
	isCategory bool
}

// Model is the bubbletea model of the selection screen.
type Model struct {
	schema *schema.Schema
	graph  *resolve.Graph
	chip   chip.Chip

	category  string // "" at the top level
	items     []item
	cursor    int
	requested map[string]bool // explicit user toggles
	result    resolve.Result  // last resolution

	done      bool
	cancelled bool
}

// New builds the selection screen for a chip, pre-toggling the given
// option names.
func New(s *schema.Schema, g *resolve.Graph, c chip.Chip, preselected []string) Model {
	requested := make(map[string]bool)
	for _, name := range preselected {
		requested[name] = true
	}
	m := Model{
		schema:    s,
		graph:     g,
		chip:      c,
		requested: requested,
	}
	m.result = resolve.Resolve(s, g, c, requested)
	m.items = m.visibleItems()
	return m
}

// visibleItems lists the rows of the current level, hiding options with no
// variant on the active chip and categories left empty by that filter.
func (m Model) visibleItems() []item {
	var items []item

	appendOption := func(o *schema.Option) {
		display := o.DisplayName
		if display == "" {
			display = o.Name
		}
		items = append(items, item{name: o.Name, display: display, help: o.Help})
	}

	if m.category == "" {
		seen := make(map[string]bool)
		for _, o := range m.schema.Options {
			if o.Category != "" || seen[o.Name] || !applicable(m.schema, m.chip, o.Name) {
				continue
			}
			seen[o.Name] = true
			appendOption(m.schema.Variant(o.Name, m.chip))
		}
		for _, cat := range m.schema.Categories {
			if !categoryVisible(m.schema, m.chip, cat) {
				continue
			}
			display := cat.DisplayName
			if display == "" {
				display = cat.Name
			}
			items = append(items, item{name: cat.Name, display: display, isCategory: true})
		}
		return items
	}

	cat := m.schema.Category(m.category)
	seen := make(map[string]bool)
	for _, o := range cat.Options {
		if seen[o.Name] || !applicable(m.schema, m.chip, o.Name) {
			continue
		}
		seen[o.Name] = true
		appendOption(m.schema.Variant(o.Name, m.chip))
	}
	return items
}

func applicable(s *schema.Schema, c chip.Chip, name string) bool {
	return s.Variant(name, c) != nil
}

func categoryVisible(s *schema.Schema, c chip.Chip, cat *schema.Category) bool {
	for _, o := range cat.Options {
		if applicable(s, c, o.Name) {
			return true
		}
	}
	return false
}

// Selection returns the final resolved option names, or nil when the user
// cancelled.
func (m Model) Selection() []string {
	if m.cancelled || !m.done {
		return nil
	}
	return m.result.Selected(m.schema)
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "q":
		m.cancelled = true
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case "backspace", "esc", "left", "h":
		if m.category != "" {
			m.category = ""
			m.items = m.visibleItems()
			m.cursor = 0
		}

	case "enter", " ", "right", "l":
		if len(m.items) == 0 {
			break
		}
		it := m.items[m.cursor]
		if it.isCategory {
			if key.String() == " " {
				break
			}
			m.category = it.name
			m.items = m.visibleItems()
			m.cursor = 0
			break
		}
		m.toggle(it.name)

	case "s":
		if m.result.Ok() {
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *Model) toggle(name string) {
	if m.requested[name] {
		delete(m.requested, name)
	} else {
		m.requested[name] = true
	}
	m.result = resolve.Resolve(m.schema, m.graph, m.chip, m.requested)
}

func (m Model) View() string {
	if m.done || m.cancelled {
		return ""
	}

	var sb strings.Builder
	title := fmt.Sprintf("esp-generate — %s", m.chip)
	if m.category != "" {
		cat := m.schema.Category(m.category)
		display := cat.DisplayName
		if display == "" {
			display = cat.Name
		}
		title += " — " + display
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n\n")

	for i, it := range m.items {
		prefix := "  "
		if i == m.cursor {
			prefix = cursorStyle.Render("> ")
		}
		var row string
		switch {
		case it.isCategory:
			row = fmt.Sprintf("%s/", it.display)
		case m.requested[it.name]:
			row = selectedStyle.Render(fmt.Sprintf("[x] %s", it.display))
		case m.result.Final[it.name]:
			row = impliedStyle.Render(fmt.Sprintf("[+] %s", it.display))
		default:
			row = fmt.Sprintf("[ ] %s", it.display)
		}
		sb.WriteString(prefix + row + "\n")
	}

	if len(m.items) > 0 && m.items[m.cursor].help != "" {
		sb.WriteString("\n" + helpStyle.Render(m.items[m.cursor].help) + "\n")
	}

	for _, d := range m.result.Diagnostics {
		sb.WriteString("\n" + errorStyle.Render("✗ "+d.Message))
	}
	if len(m.result.Diagnostics) > 0 {
		sb.WriteString("\n")
	}

	sb.WriteString("\n" + helpStyle.Render("enter/space toggle · backspace up · s save · q quit"))
	sb.WriteString("\n")
	return sb.String()
}

// Run shows the selection screen and blocks until the user saves or
// cancels. Returns nil on cancel.
func Run(s *schema.Schema, g *resolve.Graph, c chip.Chip, preselected []string) ([]string, error) {
	program := tea.NewProgram(New(s, g, c, preselected))
	final, err := program.Run()
	if err != nil {
		return nil, fmt.Errorf("run selection screen: %w", err)
	}
	model, ok := final.(Model)
	if !ok {
		return nil, fmt.Errorf("unexpected model type %T", final)
	}
	return model.Selection(), nil
}
