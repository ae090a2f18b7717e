package resolve

// diagnostic.go — Structured, ordered diagnostics for resolution conflicts.
//
// Diagnostics are recoverable: the resolver always returns a best-effort
// final selection alongside them, so a caller can show the user exactly
// what is wrong and let them adjust. Fatal schema defects are reported as
// errors from schema.Load and BuildGraph instead, before any resolution.

import (
	"fmt"
	"strings"
)

// Kind classifies a resolution diagnostic.
type Kind string

const (
	// KindUnknownOption: an explicitly requested name matches no declared
	// option.
	KindUnknownOption Kind = "unknown-option"

	// KindChipIncompatible: an option was requested, or forced by a
	// requirement, on a chip none of its variants applies to.
	KindChipIncompatible Kind = "chip-incompatible-selection"

	// KindNegativeRequirement: a selected option requires another option to
	// stay unselected, but that option is selected too.
	KindNegativeRequirement Kind = "negative-requirement-violated"

	// KindGroupConflict: more than one member of a mutual-exclusion
	// selection group is selected.
	KindGroupConflict Kind = "group-conflict"

	// KindCategoryGate: a selected option belongs to a category whose own
	// requirements are not satisfied.
	KindCategoryGate Kind = "category-gate-unsatisfied"
)

// Diagnostic is one structured conflict report. Message is human-readable;
// the identifier fields carry the offending names for programmatic use.
// Fields not relevant to a Kind are zero.
type Diagnostic struct {
	Kind    Kind
	Message string

	Option      string   // offending option (or requested name)
	ForcedBy    string   // option whose requirement forced a chip-incompatible target
	Conflicting string   // the selected option violating a negative requirement
	Group       string   // selection group with multiple selected members
	Members     []string // the conflicting group members
	Category    string   // category whose gate is unsatisfied
}

func unknownOption(name string) Diagnostic {
	return Diagnostic{
		Kind:    KindUnknownOption,
		Option:  name,
		Message: fmt.Sprintf("unknown option %q", name),
	}
}

func chipIncompatible(option, chipName, forcedBy string) Diagnostic {
	d := Diagnostic{
		Kind:     KindChipIncompatible,
		Option:   option,
		ForcedBy: forcedBy,
	}
	if forcedBy == "" {
		d.Message = fmt.Sprintf("option %q is not supported for chip %s", option, chipName)
	} else {
		d.Message = fmt.Sprintf("option %q (required by %q) is not supported for chip %s", option, forcedBy, chipName)
	}
	return d
}

func negativeRequirement(option, conflicting string) Diagnostic {
	return Diagnostic{
		Kind:        KindNegativeRequirement,
		Option:      option,
		Conflicting: conflicting,
		Message:     fmt.Sprintf("option %q is disabled by %q", option, conflicting),
	}
}

func groupConflict(group string, members []string) Diagnostic {
	return Diagnostic{
		Kind:    KindGroupConflict,
		Group:   group,
		Members: members,
		Message: listAsSentence("the following options can not be enabled together:", "", members),
	}
}

func categoryGate(option, category string) Diagnostic {
	return Diagnostic{
		Kind:     KindCategoryGate,
		Option:   option,
		Category: category,
		Message:  fmt.Sprintf("option %q is not selectable: requirements of category %q are not met", option, category),
	}
}

// listAsSentence joins items into prose: "prefix a, b and c suffix".
func listAsSentence(prefix, suffix string, items []string) string {
	var sb strings.Builder
	sb.WriteString(prefix)
	for i, item := range items {
		switch {
		case i == 0:
			sb.WriteString(" ")
		case i == len(items)-1:
			sb.WriteString(" and ")
		default:
			sb.WriteString(", ")
		}
		sb.WriteString(item)
	}
	if suffix != "" {
		sb.WriteString(" ")
		sb.WriteString(suffix)
	}
	return sb.String()
}
