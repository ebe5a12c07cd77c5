package runner

import (
	"context"

	"github.com/aretw0/guidepost/pkg/domain"
)

// StepView is what a handler needs to show one step.
type StepView struct {
	Tag   string                `json:"tag"`
	Index int                   `json:"index"`
	Total int                   `json:"total"`
	Step  domain.StepDescriptor `json:"step"`
	Last  bool                  `json:"last"`
}

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (CLI) and JSON (structured) modes.
type IOHandler interface {
	// Output presents a step.
	Output(ctx context.Context, view StepView) error

	// Input reads the next command. io.EOF ends the walk.
	Input(ctx context.Context) (Command, error)

	// SystemOutput presents a meta-message (tour finished, step skipped).
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer transforms step bodies before output (e.g. markdown to ANSI).
type ContentRenderer func(string) (string, error)
