package dimension

import (
	"fmt"
	"strings"
)

type WarningKind string

const (
	UnknownUnitNode      WarningKind = "unknown-unit-node"
	UnknownLineNode      WarningKind = "unknown-line-node"
	MissingReferenceNode WarningKind = "missing-reference-node"
	UnlistedUnit         WarningKind = "unlisted-unit"
)

// Warning is a dimensional inconsistency. The offending entity is left out of
// the derived sets; the run continues unless strict topology checks are on.
type Warning struct {
	Kind   WarningKind
	Entity string
	Detail string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s (%s)", w.Kind, w.Entity, w.Detail)
}

// StrictError wraps the warnings of a run with strict topology checks.
type StrictError struct {
	Warnings []Warning
}

func (e *StrictError) Error() string {
	parts := make([]string, 0, len(e.Warnings))
	for _, w := range e.Warnings {
		parts = append(parts, w.String())
	}
	return "dimensional inconsistency: " + strings.Join(parts, "; ")
}
