// Command esp-generate creates esp-hal project skeletons. Without
// --headless it walks the user through chip and option selection in a
// terminal UI; with it, everything must be supplied on the command line
// and any inconsistency in the requested options is a hard error.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ziyadedher/esp-generate/internal/chip"
	"github.com/ziyadedher/esp-generate/internal/project"
	"github.com/ziyadedher/esp-generate/internal/resolve"
	"github.com/ziyadedher/esp-generate/internal/schema"
	"github.com/ziyadedher/esp-generate/internal/templates"
	"github.com/ziyadedher/esp-generate/internal/tui"
)

// version is overridden at build time via -ldflags.
var version = "0.1.0-dev"

type cliOptions struct {
	chip       string
	options    []string
	headless   bool
	outputPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}
	cmd := &cobra.Command{
		Use:   "esp-generate [NAME]",
		Short: "Generate an esp-hal project skeleton",
		Long: `esp-generate creates a ready-to-build esp-hal project for an Espressif
chip. Run it without flags for an interactive session, or pass --headless
together with --chip and the desired options for scripted use.`,
		Args:          cobra.MaximumNArgs(1),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.chip, "chip", "c", "", "target chip (esp32, esp32c2, esp32c3, esp32c6, esp32h2, esp32s2, esp32s3)")
	flags.StringArrayVarP(&opts.options, "option", "o", nil, "enable an option (repeatable)")
	flags.BoolVar(&opts.headless, "headless", false, "no interactive prompts; fail on any inconsistency")
	flags.StringVarP(&opts.outputPath, "output-path", "O", ".", "parent directory for the generated project")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	return cmd
}

func run(opts *cliOptions, args []string) error {
	setupLogging(opts.logLevel)

	s, err := schema.Load(templates.SchemaSource())
	if err != nil {
		return fmt.Errorf("load option schema: %w", err)
	}
	g, err := resolve.BuildGraph(s)
	if err != nil {
		return fmt.Errorf("build requirement graph: %w", err)
	}

	var name string
	if len(args) > 0 {
		name = args[0]
	} else if opts.headless {
		return fmt.Errorf("a project name is required with --headless")
	} else if name, err = promptName(); err != nil {
		return err
	}
	if err := validateName(name); err != nil {
		return err
	}

	var c chip.Chip
	if opts.chip != "" {
		if c, err = chip.Parse(opts.chip); err != nil {
			return err
		}
	} else if opts.headless {
		return fmt.Errorf("--chip is required with --headless")
	} else if c, err = promptChip(); err != nil {
		return err
	}

	var selected []string
	if opts.headless {
		requested := make(map[string]bool, len(opts.options))
		for _, o := range opts.options {
			requested[o] = true
		}
		res := resolve.Resolve(s, g, c, requested)
		if !res.Ok() {
			for _, d := range res.Diagnostics {
				fmt.Fprintln(os.Stderr, "error:", d.Message)
			}
			return fmt.Errorf("the requested options are inconsistent for %s", c)
		}
		selected = res.Selected(s)
	} else {
		selected, err = tui.Run(s, g, c, opts.options)
		if err != nil {
			return err
		}
		if selected == nil {
			fmt.Println("cancelled, nothing generated")
			return nil
		}
	}

	slog.Debug("selection resolved", "chip", c, "options", selected)
	if err := project.Generate(s, project.Options{
		Name:      name,
		Chip:      c,
		Selected:  selected,
		OutputDir: opts.outputPath,
		Version:   version,
	}); err != nil {
		return err
	}
	fmt.Printf("generated %s\n", filepath.Join(opts.outputPath, name))

	for _, w := range environmentWarnings(c, selected) {
		slog.Warn(w)
	}
	return nil
}

// environmentWarnings checks the local toolchain against what the generated
// project needs. Advisory only.
func environmentWarnings(c chip.Chip, selected []string) []string {
	msrv := ""
	if src, ok := templates.Lookup("Cargo.toml"); ok {
		if manifest, err := project.LoadCargoToml(src); err == nil {
			msrv = manifest.MSRV()
		}
	}
	return project.CheckEnvironment(c, slices.Contains(selected, "probe-rs"), msrv)
}

// validateName enforces cargo package naming: the name becomes both the
// directory and the crate.
func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("project name must not be empty")
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case i > 0 && (r >= '0' && r <= '9' || r == '-'):
		default:
			return fmt.Errorf("invalid project name %q: use letters, digits, '-' and '_', starting with a letter", name)
		}
	}
	return nil
}

func setupLogging(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

// ---------------------------------------------------------------------------
// interactive prompts
// ---------------------------------------------------------------------------

// nameModel asks for the project name with a single text input.
type nameModel struct {
	input textinput.Model
	done  bool
}

func newNameModel() nameModel {
	ti := textinput.New()
	ti.Placeholder = "project name"
	ti.CharLimit = 128
	ti.Focus()
	return nameModel{input: ti}
}

func (m nameModel) Init() tea.Cmd { return textinput.Blink }

func (m nameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if strings.TrimSpace(m.input.Value()) != "" {
				m.done = true
				return m, tea.Quit
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m nameModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("Project name: %s\n", m.input.View())
}

func promptName() (string, error) {
	result, err := tea.NewProgram(newNameModel()).Run()
	if err != nil {
		return "", fmt.Errorf("prompt: %w", err)
	}
	final, ok := result.(nameModel)
	if !ok || !final.done {
		return "", fmt.Errorf("prompt cancelled")
	}
	return strings.TrimSpace(final.input.Value()), nil
}

// chipModel is a minimal picker over the supported chips.
type chipModel struct {
	cursor int
	done   bool
}

func (m chipModel) Init() tea.Cmd { return nil }

func (m chipModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "ctrl+c", "esc", "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(chip.All)-1 {
			m.cursor++
		}
	case "enter":
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m chipModel) View() string {
	if m.done {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("Select a chip:\n")
	for i, c := range chip.All {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		fmt.Fprintf(&sb, "%s%s\n", cursor, c)
	}
	return sb.String()
}

func promptChip() (chip.Chip, error) {
	result, err := tea.NewProgram(chipModel{}).Run()
	if err != nil {
		return "", fmt.Errorf("prompt: %w", err)
	}
	final, ok := result.(chipModel)
	if !ok || !final.done {
		return "", fmt.Errorf("prompt cancelled")
	}
	return chip.All[final.cursor], nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
