package schema

// schema_test.go — Tests for requirement parsing, document loading, variant
// merging, and structural validation.

import (
	"errors"
	"testing"

	"github.com/ziyadedher/esp-generate/internal/chip"
)

// ---------------------------------------------------------------------------
// ParseRequirement
// ---------------------------------------------------------------------------

func TestParseRequirement(t *testing.T) {
	tests := []struct {
		input   string
		target  string
		negated bool
	}{
		{"alloc", "alloc", false},
		{"!probe-rs", "probe-rs", true},
		{"  wifi  ", "wifi", false},
		{"!log", "log", true},
	}
	for _, tc := range tests {
		got := ParseRequirement(tc.input)
		if got.Target != tc.target || got.Negated != tc.negated {
			t.Errorf("ParseRequirement(%q) = %+v, want target=%q negated=%v",
				tc.input, got, tc.target, tc.negated)
		}
	}
}

func TestRequirement_String_RoundTrip(t *testing.T) {
	for _, s := range []string{"alloc", "!probe-rs"} {
		if got := ParseRequirement(s).String(); got != s {
			t.Errorf("round trip of %q = %q", s, got)
		}
	}
}

// ---------------------------------------------------------------------------
// Load
// ---------------------------------------------------------------------------

const validDoc = `
options:
  - name: alloc
    display_name: "Heap allocations"
  - name: connectivity
    display_name: "Connectivity"
    options:
      - name: wifi
        display_name: "Wi-Fi"
        requires:
          - alloc
  - name: probe-rs
    display_name: "probe-rs (RISC-V)"
    chips: [esp32c2, esp32c3, esp32c6, esp32h2]
  - name: probe-rs
    display_name: "probe-rs (Xtensa)"
    chips: [esp32, esp32s2, esp32s3]
  - name: log
    requires:
      - "!probe-rs"
`

func TestLoad_Valid(t *testing.T) {
	s, err := Load([]byte(validDoc))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	wantNames := []string{"alloc", "wifi", "probe-rs", "log"}
	if len(s.Names()) != len(wantNames) {
		t.Fatalf("Names() = %v, want %v", s.Names(), wantNames)
	}
	for i, n := range wantNames {
		if s.Names()[i] != n {
			t.Errorf("Names()[%d] = %q, want %q", i, s.Names()[i], n)
		}
	}

	if got := len(s.Variants("probe-rs")); got != 2 {
		t.Errorf("probe-rs variants = %d, want 2", got)
	}
	if cat := s.Category("connectivity"); cat == nil || len(cat.Options) != 1 {
		t.Errorf("connectivity category not built correctly: %+v", cat)
	}
	if o := s.Variant("wifi", chip.Esp32c6); o == nil || o.Category != "connectivity" {
		t.Errorf("wifi variant lookup failed: %+v", o)
	}
}

func TestLoad_VariantSelection(t *testing.T) {
	s, err := Load([]byte(validDoc))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	tests := []struct {
		chip chip.Chip
		want string // DisplayName of the visible variant
	}{
		{chip.Esp32c6, "probe-rs (RISC-V)"},
		{chip.Esp32s3, "probe-rs (Xtensa)"},
	}
	for _, tc := range tests {
		v := s.Variant("probe-rs", tc.chip)
		if v == nil {
			t.Errorf("Variant(probe-rs, %s) = nil", tc.chip)
			continue
		}
		if v.DisplayName != tc.want {
			t.Errorf("Variant(probe-rs, %s).DisplayName = %q, want %q", tc.chip, v.DisplayName, tc.want)
		}
	}
}

func TestLoad_NegatedRequirementParsed(t *testing.T) {
	s, err := Load([]byte(validDoc))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	v := s.Variant("log", chip.Esp32c6)
	if v == nil || len(v.Requires) != 1 {
		t.Fatalf("log variant missing requirements: %+v", v)
	}
	if r := v.Requires[0]; r.Target != "probe-rs" || !r.Negated {
		t.Errorf("log requirement = %+v, want negated probe-rs", r)
	}
}

// ---------------------------------------------------------------------------
// Validation failures
// ---------------------------------------------------------------------------

func TestLoad_UnknownReference(t *testing.T) {
	doc := `
options:
  - name: wifi
    requires: [alloc]
`
	_, err := Load([]byte(doc))
	var unknown *UnknownReferenceError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownReferenceError, got %v", err)
	}
	if unknown.From != "wifi" || unknown.Target != "alloc" {
		t.Errorf("unexpected error detail: %+v", unknown)
	}
}

func TestLoad_UnknownReference_Negated(t *testing.T) {
	doc := `
options:
  - name: log
    requires: ["!ghost"]
`
	_, err := Load([]byte(doc))
	var unknown *UnknownReferenceError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownReferenceError, got %v", err)
	}
	if unknown.Target != "ghost" {
		t.Errorf("target = %q, want ghost", unknown.Target)
	}
}

func TestLoad_AmbiguousDuplicates(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			"overlapping chip sets",
			`
options:
  - name: probe-rs
    chips: [esp32c3, esp32c6]
  - name: probe-rs
    chips: [esp32c6, esp32h2]
`,
		},
		{
			"unrestricted duplicate",
			`
options:
  - name: probe-rs
  - name: probe-rs
    chips: [esp32c6]
`,
		},
		{
			"option and category share a name",
			`
options:
  - name: wifi
  - name: wifi
    options:
      - name: esp-now
`,
		},
	}
	for _, tc := range tests {
		_, err := Load([]byte(tc.doc))
		var dup *AmbiguousDuplicateError
		if !errors.As(err, &dup) {
			t.Errorf("%s: expected AmbiguousDuplicateError, got %v", tc.name, err)
		}
	}
}

func TestLoad_UnknownChip(t *testing.T) {
	doc := `
options:
  - name: wokwi
    chips: [esp9000]
`
	if _, err := Load([]byte(doc)); err == nil {
		t.Fatal("expected error for unknown chip")
	}
}

func TestLoad_NestedCategoryRejected(t *testing.T) {
	doc := `
options:
  - name: outer
    options:
      - name: inner
        options:
          - name: leaf
`
	if _, err := Load([]byte(doc)); err == nil {
		t.Fatal("expected error for nested category")
	}
}

// ---------------------------------------------------------------------------
// Selection groups
// ---------------------------------------------------------------------------

func TestLoad_SelectionGroups(t *testing.T) {
	doc := `
options:
  - name: alloc
  - name: ble-bleps
    selection_group: ble-lib
    requires: [alloc]
  - name: ble-trouble
    selection_group: ble-lib
    requires: [alloc]
`
	s, err := Load([]byte(doc))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := s.Groups(); len(got) != 1 || got[0] != "ble-lib" {
		t.Fatalf("Groups() = %v, want [ble-lib]", got)
	}
	members := s.GroupMembers("ble-lib")
	if len(members) != 2 || members[0] != "ble-bleps" || members[1] != "ble-trouble" {
		t.Errorf("GroupMembers(ble-lib) = %v", members)
	}
}
