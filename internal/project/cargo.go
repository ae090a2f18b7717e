package project

// cargo.go — Metadata read from the template Cargo.toml: the pinned esp-hal
// version and the minimum supported Rust version. Directive lines in the
// template are TOML comments, so the raw file parses as-is.

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// CargoToml is the subset of a Cargo manifest the generator reads.
type CargoToml struct {
	Package struct {
		RustVersion string `toml:"rust-version"`
	} `toml:"package"`
	Dependencies map[string]any `toml:"dependencies"`
}

// LoadCargoToml parses a Cargo manifest.
func LoadCargoToml(src string) (*CargoToml, error) {
	var c CargoToml
	if _, err := toml.Decode(src, &c); err != nil {
		return nil, fmt.Errorf("parse Cargo.toml: %w", err)
	}
	return &c, nil
}

// DependencyVersion returns the declared version of a dependency, handling
// both the string and the inline-table form. Empty when absent or pinned
// some other way (git, path).
func (c *CargoToml) DependencyVersion(name string) string {
	switch dep := c.Dependencies[name].(type) {
	case string:
		return dep
	case map[string]any:
		if v, ok := dep["version"].(string); ok {
			return v
		}
	}
	return ""
}

// MSRV returns the manifest's minimum supported Rust version.
func (c *CargoToml) MSRV() string {
	return c.Package.RustVersion
}
