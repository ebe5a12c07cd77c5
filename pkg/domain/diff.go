package domain

import (
	"reflect"
)

// SessionDiff represents the changes between two sessions.
// It is designed to be serialized to JSON for partial updates on the client.
type SessionDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	Active       *bool   `json:"active,omitempty"`
	CurrentIndex *int    `json:"current_index,omitempty"`
	Tag          *string `json:"tag,omitempty"`

	// Steps is the full sequence, sent only when it was replaced.
	// A replacement with no steps is sent as an empty list.
	Steps *[]StepDescriptor `json:"steps,omitempty"`
}

// Diff calculates the difference between oldSession and newSession.
// If oldSession is nil, it returns a diff representing the entire newSession (initial load).
// It returns nil when nothing changed.
func Diff(oldSession, newSession *TourSession) *SessionDiff {
	if newSession == nil {
		return nil
	}

	diff := &SessionDiff{
		SessionID: newSession.SessionID,
	}

	if oldSession == nil || oldSession.Active != newSession.Active {
		diff.Active = &newSession.Active
	}
	if oldSession == nil || oldSession.CurrentIndex != newSession.CurrentIndex {
		diff.CurrentIndex = &newSession.CurrentIndex
	}
	if oldSession == nil || oldSession.Tag != newSession.Tag {
		diff.Tag = &newSession.Tag
	}
	if oldSession == nil || !sameSteps(oldSession.Steps, newSession.Steps) {
		// A restart with an identical sequence still resets the index, which is covered above.
		steps := CloneSteps(newSession.Steps)
		diff.Steps = &steps
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// sameSteps treats nil and empty sequences as equal.
func sameSteps(a, b []StepDescriptor) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *SessionDiff) IsEmpty() bool {
	return d.Active == nil &&
		d.CurrentIndex == nil &&
		d.Tag == nil &&
		d.Steps == nil
}
