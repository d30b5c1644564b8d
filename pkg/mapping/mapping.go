// Package mapping turns sheet rows into target issues.
//
// A FieldMapping names a source column, a target issue field, and a
// transform Kind. Transforms are data rather than functions so mapping sets
// can be loaded from YAML and printed back.
package mapping

import (
	"fmt"
	"slices"

	"github.com/xbfighting/google-sheet-to-github-issues/pkg/errors"
)

// Kind selects the transform applied to a cell value.
type Kind string

// Transform kinds.
const (
	// KindIdentity passes the cell text through unchanged.
	KindIdentity Kind = "identity"
	// KindLabel wraps the value as a single label.
	KindLabel Kind = "label"
	// KindPhase produces a single "phase-<value>" label.
	KindPhase Kind = "phase"
	// KindStatus maps done/fixed/completed to closed and anything else to open.
	KindStatus Kind = "status"
	// KindList splits a comma-separated value, trimming and dropping empties.
	KindList Kind = "list"
)

// Kinds lists every supported transform kind.
var Kinds = []Kind{KindIdentity, KindLabel, KindPhase, KindStatus, KindList}

// Target is an issue field a mapping can write.
type Target string

// Issue fields.
const (
	TargetTitle     Target = "title"
	TargetBody      Target = "body"
	TargetLabels    Target = "labels"
	TargetAssignees Target = "assignees"
	TargetState     Target = "state"
)

// Targets lists every writable issue field.
var Targets = []Target{TargetTitle, TargetBody, TargetLabels, TargetAssignees, TargetState}

// FieldMapping maps one sheet column onto one issue field.
type FieldMapping struct {
	Source    string `json:"source" yaml:"source"`
	Target    Target `json:"target" yaml:"target"`
	Transform Kind   `json:"transform,omitempty" yaml:"transform,omitempty"`
}

// Kind returns the transform kind, defaulting to identity.
func (m FieldMapping) Kind() Kind {
	if m.Transform == "" {
		return KindIdentity
	}
	return m.Transform
}

// String implements fmt.Stringer.
func (m FieldMapping) String() string {
	return fmt.Sprintf("%s -> %s (%s)", m.Source, m.Target, m.Kind())
}

// Defaults returns the built-in mapping set.
func Defaults() []FieldMapping {
	return []FieldMapping{
		{Source: "Feature / Issue", Target: TargetTitle},
		{Source: "Notes", Target: TargetBody},
		{Source: "Category", Target: TargetLabels, Transform: KindLabel},
		{Source: "Launch Phase", Target: TargetLabels, Transform: KindPhase},
		{Source: "Status", Target: TargetState, Transform: KindStatus},
	}
}

// Validate checks every mapping for an empty source column, an unknown
// target, an unknown transform, or a transform that cannot produce a value
// the target accepts.
func Validate(mappings []FieldMapping) error {
	for i, m := range mappings {
		field := fmt.Sprintf("mappings[%d]", i)
		if m.Source == "" {
			return errors.NewValidationError(field+".source", m.Source, "source column is required")
		}
		if !slices.Contains(Targets, m.Target) {
			return errors.NewValidationError(field+".target", m.Target,
				fmt.Sprintf("unknown target field %q", m.Target))
		}
		if !slices.Contains(Kinds, m.Kind()) {
			return errors.NewValidationError(field+".transform", m.Transform,
				fmt.Sprintf("unknown transform %q", m.Transform))
		}
		if err := checkCompatible(m); err != nil {
			return errors.NewValidationError(field, m.String(), err.Error())
		}
	}
	return nil
}

func checkCompatible(m FieldMapping) error {
	switch m.Kind() {
	case KindLabel, KindPhase:
		if m.Target != TargetLabels {
			return fmt.Errorf("transform %s only applies to labels", m.Kind())
		}
	case KindList:
		if m.Target != TargetLabels && m.Target != TargetAssignees {
			return fmt.Errorf("transform %s only applies to labels or assignees", m.Kind())
		}
	case KindStatus:
		if m.Target != TargetState {
			return fmt.Errorf("transform %s only applies to state", m.Kind())
		}
	}
	return nil
}
