package domain

import "strings"

// Role classifies the visitor a trigger surface is rendered for.
type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleDealer        Role = "dealer"
	RoleAnonymous     Role = "anonymous"
)

// ParseRole maps free-form input to a Role. Anything unrecognized is anonymous.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdministrator, "admin":
		return RoleAdministrator
	case RoleDealer:
		return RoleDealer
	default:
		return RoleAnonymous
	}
}

// Tour is a named, ordered sequence of steps.
type Tour struct {
	ID    string           `json:"id"`
	Title string           `json:"title,omitempty"`
	Roles []Role           `json:"roles,omitempty"`
	Steps []StepDescriptor `json:"steps"`
}
