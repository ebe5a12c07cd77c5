package domain

import "time"

// TourSession is the mutable state owned by a coordinator.
type TourSession struct {
	// SessionID identifies the browser session the tour belongs to.
	SessionID string `json:"session_id,omitempty"`

	// Active reports whether a walkthrough is currently presented.
	Active bool `json:"active"`

	// Steps is the loaded sequence. It is kept after Stop (last tour shown).
	Steps []StepDescriptor `json:"steps"`

	// CurrentIndex is 0-based and within [0, len(Steps)-1] while Steps is non-empty.
	CurrentIndex int `json:"current_index"`

	// Tag names the running tour. It is opaque and carries no behavior.
	Tag string `json:"tag,omitempty"`

	StartedAt time.Time `json:"started_at,omitzero"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// NewSession returns an inactive session, the state every application starts in.
func NewSession(sessionID string) *TourSession {
	return &TourSession{
		SessionID: sessionID,
		Steps:     []StepDescriptor{},
	}
}

// Snapshot returns a deep copy of the session.
func (s *TourSession) Snapshot() *TourSession {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Steps = CloneSteps(s.Steps)
	return &cp
}

// CurrentStep returns the step at CurrentIndex, or false when there is none.
func (s *TourSession) CurrentStep() (StepDescriptor, bool) {
	if s == nil || s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Steps) {
		return StepDescriptor{}, false
	}
	return s.Steps[s.CurrentIndex], true
}

// IsLast reports whether the current step is the final one.
func (s *TourSession) IsLast() bool {
	return s != nil && len(s.Steps) > 0 && s.CurrentIndex == len(s.Steps)-1
}
