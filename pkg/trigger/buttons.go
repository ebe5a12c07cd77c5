package trigger

import (
	"context"
	"io"

	"github.com/aretw0/guidepost/pkg/ports"
)

// IconButton is a compact "?" button placed next to the element it explains.
type IconButton struct {
	binding
}

// NewIconButton binds an icon trigger to a tour.
func NewIconButton(reg ports.StepRegistry, tourID string, opts ...Option) *IconButton {
	return &IconButton{binding: newBinding(reg, tourID, opts)}
}

// Activate starts the bound tour on the provided coordinator.
func (b *IconButton) Activate(ctx context.Context) error {
	return start(ctx, b.registry, b.tourID, b.tag)
}

func (b *IconButton) Render(w io.Writer) error {
	return templates.ExecuteTemplate(w, "icon", b.view())
}

// LabeledButton is a full-width button with a visible label.
type LabeledButton struct {
	binding
}

// NewLabeledButton binds a labeled trigger to a tour.
func NewLabeledButton(reg ports.StepRegistry, tourID string, opts ...Option) *LabeledButton {
	return &LabeledButton{binding: newBinding(reg, tourID, opts)}
}

// Activate starts the bound tour on the provided coordinator.
func (b *LabeledButton) Activate(ctx context.Context) error {
	return start(ctx, b.registry, b.tourID, b.tag)
}

func (b *LabeledButton) Render(w io.Writer) error {
	return templates.ExecuteTemplate(w, "button", b.view())
}

type buttonView struct {
	TourID string
	Tag    string
	Label  string
}

func (b binding) view() buttonView {
	return buttonView{TourID: b.tourID, Tag: b.tag, Label: b.label}
}
