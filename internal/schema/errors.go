package schema

import "fmt"

// UnknownReferenceError reports a requirement term whose target names no
// declared option or category. Fatal: the schema document is defective.
type UnknownReferenceError struct {
	From   string // option or category declaring the requirement
	Target string // the unresolvable name
}

func (e *UnknownReferenceError) Error() string {
	return fmt.Sprintf("schema: %q requires unknown option or category %q", e.From, e.Target)
}

// AmbiguousDuplicateError reports a name declared more than once without
// pairwise-disjoint chip sets, or a name used for both an option and a
// category. Fatal: the declarations cannot be told apart at resolution time.
type AmbiguousDuplicateError struct {
	Name   string
	Detail string
}

func (e *AmbiguousDuplicateError) Error() string {
	return fmt.Sprintf("schema: ambiguous duplicate %q: %s", e.Name, e.Detail)
}
