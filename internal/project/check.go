package project

// check.go — Post-generation environment check: verifies the locally
// installed toolchain can actually build and flash the generated project.
// Everything here is advisory; missing tools produce warnings, not errors.

import (
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/ziyadedher/esp-generate/internal/chip"
)

var versionRe = regexp.MustCompile(`\d+\.\d+(\.\d+)?`)

// CheckEnvironment inspects the installed rustc, espflash, and probe-rs
// binaries and returns a human-readable warning per problem found. probers
// selects which flashing tool the generated project expects.
func CheckEnvironment(c chip.Chip, probers bool, msrv string) []string {
	var warnings []string

	if c.IsRISCV() {
		if version, ok := toolVersion("rustc", "--version"); !ok {
			warnings = append(warnings, "rustc not found; install Rust via rustup")
		} else if msrv != "" && versionLess(version, msrv) {
			warnings = append(warnings,
				"rustc "+version+" is older than the project's minimum supported version "+msrv)
		}
	} else {
		// Xtensa needs the esp toolchain channel; presence of rustc alone
		// is not enough to tell, so only check it exists.
		if _, ok := toolVersion("rustc", "--version"); !ok {
			warnings = append(warnings, "rustc not found; install the esp toolchain via espup")
		}
	}

	if probers {
		if _, ok := toolVersion("probe-rs", "--version"); !ok {
			warnings = append(warnings, "probe-rs not found; the generated project is configured to flash with it")
		}
	} else {
		if _, ok := toolVersion("espflash", "--version"); !ok {
			warnings = append(warnings, "espflash not found; the generated project is configured to flash with it")
		}
	}

	return warnings
}

// toolVersion runs a tool and extracts the first version-shaped token from
// its output.
func toolVersion(tool string, args ...string) (string, bool) {
	path, err := exec.LookPath(tool)
	if err != nil {
		return "", false
	}
	out, err := exec.Command(path, args...).CombinedOutput()
	if err != nil {
		return "", false
	}
	version := versionRe.FindString(string(out))
	if version == "" {
		return "", false
	}
	return version, true
}

// versionLess compares dotted numeric versions, missing segments count as
// zero.
func versionLess(a, b string) bool {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) || i < len(bs); i++ {
		av, bv := 0, 0
		if i < len(as) {
			av, _ = strconv.Atoi(as[i])
		}
		if i < len(bs) {
			bv, _ = strconv.Atoi(bs[i])
		}
		if av != bv {
			return av < bv
		}
	}
	return false
}
