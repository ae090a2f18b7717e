package templates

// templates_test.go — Sanity checks over the embedded archive: the schema
// document must load and every expected project file must be present.

import (
	"strings"
	"testing"

	"github.com/ziyadedher/esp-generate/internal/resolve"
	"github.com/ziyadedher/esp-generate/internal/schema"
)

func TestSchemaSource_Loads(t *testing.T) {
	s, err := schema.Load(SchemaSource())
	if err != nil {
		t.Fatalf("embedded schema does not load: %v", err)
	}
	if _, err := resolve.BuildGraph(s); err != nil {
		t.Fatalf("embedded schema does not build a graph: %v", err)
	}

	// Landmarks the CLI and TUI rely on.
	for _, name := range []string{"alloc", "wifi", "probe-rs", "log", "wokwi"} {
		if !s.IsOption(name) {
			t.Errorf("embedded schema misses option %q", name)
		}
	}
	if len(s.Variants("probe-rs")) != 2 {
		t.Errorf("probe-rs should have two chip variants, got %d", len(s.Variants("probe-rs")))
	}
}

func TestFiles_ExpectedMembers(t *testing.T) {
	want := []string{
		"Cargo.toml",
		"src/bin/main.rs",
		".cargo/config.toml",
		"rust-toolchain.toml",
		"build.rs",
		".gitignore",
		"wokwi.toml",
	}
	for _, path := range want {
		if _, ok := Lookup(path); !ok {
			t.Errorf("archive misses %q", path)
		}
	}
	// The schema document is not a project file.
	if _, ok := Lookup("template.yaml"); ok {
		t.Error("template.yaml must not be written into generated projects")
	}
}

func TestFiles_DirectivesBalanced(t *testing.T) {
	// Cheap structural check: every template file has as many IF openers as
	// ENDIF closers.
	for _, f := range Files() {
		opens, closes := 0, 0
		for _, line := range strings.Split(f.Content, "\n") {
			trimmed := strings.TrimSpace(line)
			if strings.HasPrefix(trimmed, "#IF ") || strings.HasPrefix(trimmed, "//IF ") {
				opens++
			}
			if trimmed == "#ENDIF" || trimmed == "//ENDIF" {
				closes++
			}
		}
		if opens != closes {
			t.Errorf("%s: %d IF but %d ENDIF", f.Path, opens, closes)
		}
	}
}
