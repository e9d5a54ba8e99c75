// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// RequirementNeed is one unmet, actionable requirement group found on an
// audit. Values are created fresh per extraction and never modified.
type RequirementNeed struct {
	// ID is gened_<i> or courses_<i>, where i is the position of the source
	// section in the input. It is only stable within one extraction.
	ID string `json:"id" yaml:"id"`

	// Title is a short, human-friendly label for the requirement group.
	Title string `json:"title" yaml:"title"`

	// NeedText has the form "NEEDS: <quantity> <unit>".
	NeedText string `json:"needText" yaml:"needText"`

	// SearchPath is a relative catalog search target. Empty when no
	// confident mapping exists.
	SearchPath string `json:"searchPath,omitempty" yaml:"searchPath,omitempty"`

	// Options lists candidate courses in "SUBJECT NUMBER" form, in order of
	// discovery, excluding courses already taken. Nil when none were found.
	Options []string `json:"options,omitempty" yaml:"options,omitempty"`
}

// ActionableNeeds is the full result of one extraction.
type ActionableNeeds struct {
	GenEds  []RequirementNeed `json:"geneds" yaml:"geneds"`
	Courses []RequirementNeed `json:"courses" yaml:"courses"`
}

// Empty reports whether neither list has entries. An empty result means
// either the audit is fully satisfied or the parser produced nothing usable;
// the two cannot be told apart here.
func (n ActionableNeeds) Empty() bool {
	return len(n.GenEds) == 0 && len(n.Courses) == 0
}
