package domain

import (
	"fmt"
	"strings"
)

// Placement hints where the presenter positions the callout relative to the target.
type Placement string

const (
	PlacementTop    Placement = "top"
	PlacementBottom Placement = "bottom"
	PlacementLeft   Placement = "left"
	PlacementRight  Placement = "right"
	PlacementCenter Placement = "center"
)

// DefaultPlacement is used when a step leaves the placement empty.
const DefaultPlacement = PlacementBottom

// ParsePlacement normalizes a placement string. Empty input yields DefaultPlacement.
func ParsePlacement(s string) (Placement, error) {
	p := Placement(strings.ToLower(strings.TrimSpace(s)))
	if p == "" {
		return DefaultPlacement, nil
	}
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPlacement, s)
	}
	return p, nil
}

// Valid reports whether p is one of the known placements.
func (p Placement) Valid() bool {
	switch p {
	case PlacementTop, PlacementBottom, PlacementLeft, PlacementRight, PlacementCenter:
		return true
	}
	return false
}

// StepContent is the display payload of a step.
// Body is plain text or markdown; mapping it to visuals is the presenter's job.
type StepContent struct {
	Title string `json:"title" yaml:"title" mapstructure:"title"`
	Body  string `json:"body" yaml:"body" mapstructure:"body"`
}

// StepDescriptor describes a single step of a tour.
type StepDescriptor struct {
	// Target is the selector of the element to highlight (attribute, class or id pattern).
	// A target that matches nothing at presentation time is skipped, not an error.
	Target string `json:"target" yaml:"target" mapstructure:"target"`

	Content StepContent `json:"content" yaml:"content" mapstructure:"content"`

	Placement Placement `json:"placement" yaml:"placement" mapstructure:"placement"`

	// FirstStep suppresses the entry beacon normally shown before the step is reached.
	FirstStep bool `json:"first_step,omitempty" yaml:"first_step,omitempty" mapstructure:"first_step"`
}

// CloneSteps returns a copy of steps so callers cannot alias registry or session storage.
// A nil input yields an empty, non-nil slice.
func CloneSteps(steps []StepDescriptor) []StepDescriptor {
	out := make([]StepDescriptor, len(steps))
	copy(out, steps)
	return out
}
