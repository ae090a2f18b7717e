// Package chip enumerates the supported hardware targets and the
// per-target metadata the generator needs (instruction set, Rust target
// triple, Wokwi devkit board).
package chip

import (
	"fmt"
	"strings"
)

// Chip identifies one supported hardware target family.
type Chip string

const (
	Esp32   Chip = "esp32"
	Esp32c2 Chip = "esp32c2"
	Esp32c3 Chip = "esp32c3"
	Esp32c6 Chip = "esp32c6"
	Esp32h2 Chip = "esp32h2"
	Esp32s2 Chip = "esp32s2"
	Esp32s3 Chip = "esp32s3"
)

// All lists every supported chip in display order.
var All = []Chip{Esp32, Esp32c2, Esp32c3, Esp32c6, Esp32h2, Esp32s2, Esp32s3}

// Parse maps a user-supplied string to a Chip. Matching is case-insensitive.
func Parse(s string) (Chip, error) {
	c := Chip(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range All {
		if c == known {
			return known, nil
		}
	}
	return "", fmt.Errorf("unknown chip %q (supported: %s)", s, joinAll())
}

func joinAll() string {
	names := make([]string, len(All))
	for i, c := range All {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

func (c Chip) String() string { return string(c) }

// IsRISCV reports whether the chip uses a RISC-V core. The remaining
// targets are Xtensa.
func (c Chip) IsRISCV() bool {
	switch c {
	case Esp32c2, Esp32c3, Esp32c6, Esp32h2:
		return true
	}
	return false
}

// Target returns the Rust compilation target triple for the chip.
func (c Chip) Target() string {
	switch c {
	case Esp32:
		return "xtensa-esp32-none-elf"
	case Esp32c2, Esp32c3:
		return "riscv32imc-unknown-none-elf"
	case Esp32c6, Esp32h2:
		return "riscv32imac-unknown-none-elf"
	case Esp32s2:
		return "xtensa-esp32s2-none-elf"
	case Esp32s3:
		return "xtensa-esp32s3-none-elf"
	}
	return ""
}

// WokwiBoard returns the Wokwi devkit board identifier for the chip, or ""
// when no board exists for it.
func (c Chip) WokwiBoard() string {
	switch c {
	case Esp32:
		return "board-esp32-devkit-c-v4"
	case Esp32c3:
		return "board-esp32-c3-devkitm-1"
	case Esp32c6:
		return "board-esp32-c6-devkitc-1"
	case Esp32h2:
		return "board-esp32-h2-devkitm-1"
	case Esp32s2:
		return "board-esp32-s2-devkitm-1"
	case Esp32s3:
		return "board-esp32-s3-devkitc-1"
	}
	return ""
}
