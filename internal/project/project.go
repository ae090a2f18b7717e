// Package project turns a resolved option selection into a project skeleton
// on disk: it renders every template file against the selection, writes the
// tree, and runs the post-generation tooling (cargo fmt, git init).
//
// The resolver itself never touches the filesystem; this package is the
// collaborator that consumes its output.
package project

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ziyadedher/esp-generate/internal/chip"
	"github.com/ziyadedher/esp-generate/internal/render"
	"github.com/ziyadedher/esp-generate/internal/schema"
	"github.com/ziyadedher/esp-generate/internal/templates"
)

// Options configures one generation run.
type Options struct {
	Name      string    // project (and directory) name
	Chip      chip.Chip // target hardware
	Selected  []string  // resolved, consistent option selection
	OutputDir string    // parent directory for the project
	Version   string    // generator version, exposed as a template variable
}

// Symbols returns the names visible to template option() conditions: the
// selected options, their active selection groups, the chip name, and the
// chip's instruction-set tag.
func Symbols(s *schema.Schema, c chip.Chip, selected []string) []string {
	symbols := append([]string{}, selected...)
	for _, name := range selected {
		v := s.Variant(name, c)
		if v == nil || v.SelectionGroup == "" {
			continue
		}
		if !containsString(symbols, v.SelectionGroup) {
			symbols = append(symbols, v.SelectionGroup)
		}
	}
	symbols = append(symbols, c.String())
	if c.IsRISCV() {
		symbols = append(symbols, "riscv")
	} else {
		symbols = append(symbols, "xtensa")
	}
	return symbols
}

// Variables builds the substitution table for #REPLACE directives.
func Variables(opts Options, manifest *CargoToml, unstableHal bool) []render.Variable {
	halFeatures := fmt.Sprintf("%q", opts.Chip.String())
	if unstableHal {
		halFeatures = fmt.Sprintf("%q, %q", opts.Chip.String(), "unstable")
	}
	return []render.Variable{
		{Name: "project-name", Value: opts.Name},
		{Name: "mcu", Value: opts.Chip.String()},
		{Name: "mcu-feature", Value: fmt.Sprintf("%q", opts.Chip.String())},
		{Name: "esp-hal-features", Value: halFeatures},
		{Name: "rust_target", Value: opts.Chip.Target()},
		{Name: "wokwi-board", Value: opts.Chip.WokwiBoard()},
		{Name: "generate-version", Value: opts.Version},
		{Name: "esp-hal-version", Value: manifest.DependencyVersion("esp-hal")},
		{Name: "msrv", Value: manifest.MSRV()},
	}
}

// Generate renders the template into opts.OutputDir/opts.Name. The target
// directory must not already exist. Formatting and git initialization are
// best-effort; their failures are logged, not fatal.
func Generate(s *schema.Schema, opts Options) error {
	if opts.Name == "" {
		return fmt.Errorf("project name must not be empty")
	}
	dir := filepath.Join(opts.OutputDir, opts.Name)
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("directory %q already exists", dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create project dir: %w", err)
	}

	manifestSrc, ok := templates.Lookup("Cargo.toml")
	if !ok {
		return fmt.Errorf("template archive misses Cargo.toml")
	}
	manifest, err := LoadCargoToml(manifestSrc)
	if err != nil {
		return err
	}

	symbols := Symbols(s, opts.Chip, opts.Selected)
	vars := Variables(opts, manifest, containsString(opts.Selected, "unstable-hal"))
	ctx := render.NewContext(symbols, vars)

	for _, tf := range templates.Files() {
		rendered, err := ctx.RenderFile(tf.Path, tf.Content)
		if err != nil {
			return fmt.Errorf("render %s: %w", tf.Path, err)
		}
		if rendered == nil {
			continue
		}
		target := filepath.Join(dir, filepath.FromSlash(rendered.Path))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("create %s: %w", filepath.Dir(target), err)
		}
		if err := os.WriteFile(target, []byte(rendered.Content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", rendered.Path, err)
		}
	}

	formatProject(dir)

	if shouldInitGitRepo(dir) {
		if out, err := exec.Command("git", "init", dir).CombinedOutput(); err != nil {
			slog.Warn("git init failed", "error", err, "output", strings.TrimSpace(string(out)))
		}
	} else {
		slog.Warn("already inside a git repository, skipping git initialization")
	}
	return nil
}

// formatProject runs cargo fmt over the generated sources. The generated
// project is valid without it, so failures only warn.
func formatProject(dir string) {
	if _, err := exec.LookPath("cargo"); err != nil {
		slog.Warn("cargo not found, skipping formatting")
		return
	}
	cmd := exec.Command("cargo", "fmt", "--",
		"--config", "group_imports=StdExternalCrate",
		"--config", "imports_granularity=Module")
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		slog.Warn("cargo fmt failed", "error", err, "output", strings.TrimSpace(string(out)))
	}
}

// shouldInitGitRepo walks up from dir looking for an enclosing .git
// directory; generating inside an existing work tree must not re-init.
func shouldInitGitRepo(dir string) bool {
	for path := dir; ; {
		if info, err := os.Stat(filepath.Join(path, ".git")); err == nil && info.IsDir() {
			return false
		}
		parent := filepath.Dir(path)
		if parent == path {
			return true
		}
		path = parent
	}
}

func containsString(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
