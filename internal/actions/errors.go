package actions

import (
	"fmt"

	"github.com/funcscaffold/funcscaffold/internal/templates"
)

// ExecutionError reports a failed action. When the template supplies error
// text it is the user-facing message; the underlying error stays reachable
// through Unwrap.
type ExecutionError struct {
	Job    string
	Action string
	Type   templates.ActionType
	Text   string
	Err    error
}

func (e *ExecutionError) Error() string {
	if e.Text != "" {
		return e.Text
	}
	return fmt.Sprintf("action %q (%s) failed: %v", e.Action, e.Type, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
