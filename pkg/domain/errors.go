package domain

import "errors"

// ErrTourNotFound is returned when a tour id is not present in the registry.
var ErrTourNotFound = errors.New("tour not found")

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrNotProvided signals a wiring mistake: a coordinator was requested outside
// the scope where it was provided.
var ErrNotProvided = errors.New("tour coordinator not provided")

// ErrInvalidPlacement is returned for placements outside top|bottom|left|right|center.
var ErrInvalidPlacement = errors.New("invalid placement")
