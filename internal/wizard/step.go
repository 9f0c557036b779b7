package wizard

import (
	"context"
	"errors"
)

// ErrUserCancelled is returned by a prompt when the user backs out. It is a
// control-flow signal, not a failure.
var ErrUserCancelled = errors.New("operation cancelled by user")

// IsCancelled reports whether err carries ErrUserCancelled.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrUserCancelled)
}

// PromptStep gathers input. ShouldPrompt must be a pure predicate; only
// Prompt may mutate the context or the environment.
type PromptStep interface {
	ShouldPrompt(wctx *Context) bool
	Prompt(ctx context.Context, wctx *Context) error
}

// SubWizardProvider is implemented by prompt steps that can contribute more
// steps once they have been answered. A nil SubWizard means none.
type SubWizardProvider interface {
	SubWizard(ctx context.Context, wctx *Context) (*SubWizard, error)
}

// ExecuteStep applies an effect. Lower priorities run first; equal
// priorities keep discovery order.
type ExecuteStep interface {
	Priority() int
	ShouldExecute(wctx *Context) bool
	Execute(ctx context.Context, wctx *Context) error
}

// SubWizard is a bundle of steps discovered while prompting.
type SubWizard struct {
	PromptSteps  []PromptStep
	ExecuteSteps []ExecuteStep
}
