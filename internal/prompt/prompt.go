package prompt

import (
	"context"
	"errors"
)

// ValidationError is returned by an input validator to reject a value. The
// prompter shows Message and asks again.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// InputOptions describes a text prompt.
type InputOptions struct {
	Label        string
	Help         string
	DefaultValue string
	// Validate returns nil for acceptable input. Any other error is shown to
	// the user and the prompt is repeated.
	Validate func(string) error
}

// Item is one choice of a Pick prompt.
type Item struct {
	Label       string
	Description string
	Value       string
}

// PickOptions describes a single choice prompt.
type PickOptions struct {
	Label string
	Items []Item
	// DefaultValue preselects the item with this Value.
	DefaultValue string
}

// Prompter asks the user for input. Both methods return
// wizard.ErrUserCancelled when the user backs out.
type Prompter interface {
	Input(ctx context.Context, opts InputOptions) (string, error)
	Pick(ctx context.Context, opts PickOptions) (Item, error)
}

// errNoItems is returned when Pick has nothing to offer.
var errNoItems = errors.New("no items to pick from")
