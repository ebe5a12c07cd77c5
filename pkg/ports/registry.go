package ports

import "github.com/aretw0/guidepost/pkg/domain"

// StepRegistry resolves tours by name.
type StepRegistry interface {
	// GetSteps returns a copy of the ordered steps of a tour.
	// Returns domain.ErrTourNotFound for unknown ids.
	GetSteps(tourID string) ([]domain.StepDescriptor, error)

	// Tour returns the full tour definition.
	Tour(tourID string) (domain.Tour, error)

	// List returns all tours in registration order.
	List() []domain.Tour

	// ToursForRole returns the tours offered to a role. It may be empty.
	ToursForRole(role domain.Role) []domain.Tour
}
