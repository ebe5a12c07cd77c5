package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventTourStart  EventType = "tour_start"
	EventTourStop   EventType = "tour_stop"
	EventStepChange EventType = "step_change"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
}

// TourEvent represents a tour being started or stopped.
type TourEvent struct {
	EventBase
	Tag   string `json:"tag"`
	Steps int    `json:"steps"`

	// Replaced holds the tag of an active tour that a start discarded.
	Replaced string `json:"replaced,omitempty"`

	// Completed is set on stop when the user reached the end of the sequence.
	Completed bool `json:"completed,omitempty"`
}

// StepEvent represents the current index moving.
type StepEvent struct {
	EventBase
	Tag  string `json:"tag"`
	From int    `json:"from"`
	To   int    `json:"to"`
}

// LifecycleHooks defines callbacks for coordinator observability.
type LifecycleHooks struct {
	OnTourStart  func(context.Context, *TourEvent)
	OnTourStop   func(context.Context, *TourEvent)
	OnStepChange func(context.Context, *StepEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnTourStart:  chain(h.OnTourStart, other.OnTourStart),
		OnTourStop:   chain(h.OnTourStop, other.OnTourStop),
		OnStepChange: chain(h.OnStepChange, other.OnStepChange),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
