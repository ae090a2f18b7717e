package project

// project_test.go — Generation against the embedded template into a temp
// directory, plus symbol/variable table construction.

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ziyadedher/esp-generate/internal/chip"
	"github.com/ziyadedher/esp-generate/internal/schema"
	"github.com/ziyadedher/esp-generate/internal/templates"
)

func embeddedSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.Load(templates.SchemaSource())
	if err != nil {
		t.Fatalf("load embedded schema: %v", err)
	}
	return s
}

// ---------------------------------------------------------------------------
// Symbols
// ---------------------------------------------------------------------------

func TestSymbols(t *testing.T) {
	s := embeddedSchema(t)
	symbols := Symbols(s, chip.Esp32c6, []string{"alloc", "unstable-hal", "ble-bleps"})

	for _, want := range []string{"alloc", "ble-bleps", "ble-lib", "esp32c6", "riscv"} {
		if !containsString(symbols, want) {
			t.Errorf("symbols %v miss %q", symbols, want)
		}
	}
	if containsString(symbols, "xtensa") {
		t.Error("esp32c6 must not be tagged xtensa")
	}
}

func TestSymbols_Xtensa(t *testing.T) {
	s := embeddedSchema(t)
	symbols := Symbols(s, chip.Esp32s3, nil)
	if !containsString(symbols, "xtensa") || containsString(symbols, "riscv") {
		t.Errorf("symbols %v", symbols)
	}
}

// ---------------------------------------------------------------------------
// Cargo metadata
// ---------------------------------------------------------------------------

func TestLoadCargoToml_Template(t *testing.T) {
	src, ok := templates.Lookup("Cargo.toml")
	if !ok {
		t.Fatal("template archive misses Cargo.toml")
	}
	manifest, err := LoadCargoToml(src)
	if err != nil {
		t.Fatalf("LoadCargoToml: %v", err)
	}
	if v := manifest.DependencyVersion("esp-hal"); v == "" {
		t.Error("esp-hal version not found in template manifest")
	}
	if manifest.MSRV() == "" {
		t.Error("rust-version not found in template manifest")
	}
}

func TestCargoToml_DependencyForms(t *testing.T) {
	manifest, err := LoadCargoToml(`
[package]
rust-version = "1.86"

[dependencies]
plain = "1.2.3"
table = { version = "4.5.6", features = ["x"] }
git-dep = { git = "https://example.com/repo" }
`)
	if err != nil {
		t.Fatalf("LoadCargoToml: %v", err)
	}
	tests := []struct {
		dep  string
		want string
	}{
		{"plain", "1.2.3"},
		{"table", "4.5.6"},
		{"git-dep", ""},
		{"absent", ""},
	}
	for _, tc := range tests {
		if got := manifest.DependencyVersion(tc.dep); got != tc.want {
			t.Errorf("DependencyVersion(%q) = %q, want %q", tc.dep, got, tc.want)
		}
	}
}

// ---------------------------------------------------------------------------
// Generate
// ---------------------------------------------------------------------------

func TestGenerate_WritesProjectTree(t *testing.T) {
	s := embeddedSchema(t)
	out := t.TempDir()

	err := Generate(s, Options{
		Name:      "blinky",
		Chip:      chip.Esp32c6,
		Selected:  []string{"alloc", "unstable-hal", "wifi", "log"},
		OutputDir: out,
		Version:   "test",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	dir := filepath.Join(out, "blinky")
	mustRead := func(rel string) string {
		t.Helper()
		data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
		if err != nil {
			t.Fatalf("read %s: %v", rel, err)
		}
		return string(data)
	}

	manifest := mustRead("Cargo.toml")
	if !strings.Contains(manifest, `name = "blinky"`) {
		t.Errorf("project name not substituted:\n%s", manifest)
	}
	if !strings.Contains(manifest, `"esp32c6", "unstable"`) {
		t.Errorf("esp-hal features not substituted:\n%s", manifest)
	}
	if !strings.Contains(manifest, "esp-wifi") {
		t.Error("wifi selection did not pull esp-wifi into the manifest")
	}
	if strings.Contains(manifest, "defmt") {
		t.Error("unselected defmt leaked into the manifest")
	}
	if strings.Contains(manifest, "#IF") || strings.Contains(manifest, "#REPLACE") {
		t.Error("directives leaked into rendered output")
	}

	cfg := mustRead(".cargo/config.toml")
	if !strings.Contains(cfg, chip.Esp32c6.Target()) {
		t.Errorf("rust target not substituted:\n%s", cfg)
	}
	if !strings.Contains(cfg, "espflash flash") {
		t.Errorf("runner should default to espflash without probe-rs:\n%s", cfg)
	}

	mainRS := mustRead("src/bin/main.rs")
	if !strings.Contains(mainRS, "esp_println::logger::init_logger_from_env") {
		t.Errorf("log selection missing from main.rs:\n%s", mainRS)
	}

	// wokwi was not selected, its files must not exist.
	if _, err := os.Stat(filepath.Join(dir, "wokwi.toml")); !os.IsNotExist(err) {
		t.Error("wokwi.toml generated without the wokwi option")
	}
	// Nor the schema document itself.
	if _, err := os.Stat(filepath.Join(dir, "template.yaml")); !os.IsNotExist(err) {
		t.Error("template.yaml must not be part of the generated project")
	}
}

func TestGenerate_ExistingDirRefused(t *testing.T) {
	s := embeddedSchema(t)
	out := t.TempDir()
	if err := os.Mkdir(filepath.Join(out, "taken"), 0o755); err != nil {
		t.Fatal(err)
	}
	err := Generate(s, Options{Name: "taken", Chip: chip.Esp32c6, OutputDir: out})
	if err == nil {
		t.Fatal("expected error for existing directory")
	}
}

// ---------------------------------------------------------------------------
// Environment check helpers
// ---------------------------------------------------------------------------

func TestVersionLess(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"1.85.0", "1.86", true},
		{"1.86", "1.86", false},
		{"1.86.1", "1.86", false},
		{"1.90.0", "1.86", false},
		{"2.0", "1.99.9", false},
	}
	for _, tc := range tests {
		if got := versionLess(tc.a, tc.b); got != tc.want {
			t.Errorf("versionLess(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestShouldInitGitRepo(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	if !shouldInitGitRepo(sub) {
		t.Error("no enclosing .git, should init")
	}
	if err := os.MkdirAll(filepath.Join(dir, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	if shouldInitGitRepo(sub) {
		t.Error("enclosing .git present, should not init")
	}
}
