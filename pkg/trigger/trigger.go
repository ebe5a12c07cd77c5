package trigger

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/guidepost/pkg/coordinator"
	"github.com/aretw0/guidepost/pkg/domain"
	"github.com/aretw0/guidepost/pkg/ports"
)

// Variant names a trigger layout.
type Variant string

const (
	VariantIcon     Variant = "icon"
	VariantButton   Variant = "button"
	VariantFloating Variant = "floating"
)

var (
	// ErrUnknownVariant is returned by New for layouts that do not exist.
	ErrUnknownVariant = errors.New("unknown trigger variant")

	// ErrTourNotOffered is returned when a floating menu is asked for a tour outside its role.
	ErrTourNotOffered = errors.New("tour not offered for role")
)

// Renderer writes a trigger's HTML.
type Renderer interface {
	Render(w io.Writer) error
}

// Option configures bound triggers.
type Option func(*binding)

// WithTag overrides the tour tag, which defaults to the tour id.
func WithTag(tag string) Option {
	return func(b *binding) {
		b.tag = tag
	}
}

// WithLabel sets the visible (button) or accessible (icon) label.
func WithLabel(label string) Option {
	return func(b *binding) {
		b.label = label
	}
}

// binding is the state shared by the button variants: one tour, one tag.
type binding struct {
	registry ports.StepRegistry
	tourID   string
	tag      string
	label    string
}

func newBinding(reg ports.StepRegistry, tourID string, opts []Option) binding {
	b := binding{registry: reg, tourID: tourID}
	for _, opt := range opts {
		opt(&b)
	}
	if b.tag == "" {
		b.tag = tourID
	}
	if b.label == "" {
		if tour, err := reg.Tour(tourID); err == nil && tour.Title != "" {
			b.label = tour.Title
		} else {
			b.label = "Take the tour"
		}
	}
	return b
}

// start is the single activation path of every variant.
func start(ctx context.Context, reg ports.StepRegistry, tourID, tag string) error {
	c := coordinator.MustFromContext(ctx)

	steps, err := reg.GetSteps(tourID)
	if err != nil {
		return fmt.Errorf("failed to resolve tour: %w", err)
	}
	c.Start(ctx, steps, tag)
	return nil
}

// New builds a trigger by variant name. Bound variants need tourID, the floating menu needs role.
func New(variant Variant, reg ports.StepRegistry, role domain.Role, tourID string, opts ...Option) (Renderer, error) {
	switch variant {
	case VariantIcon:
		return NewIconButton(reg, tourID, opts...), nil
	case VariantButton:
		return NewLabeledButton(reg, tourID, opts...), nil
	case VariantFloating:
		return NewFloatingMenu(reg, role), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, variant)
}
