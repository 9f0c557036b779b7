package templates

import (
	"errors"
	"fmt"
)

// ErrNoTemplates is returned when a bundle yields no usable function template.
var ErrNoTemplates = errors.New("no function templates could be parsed")

// ParseError reports one raw item that was discarded.
type ParseError struct {
	Kind  string // "template", "binding", "user prompt"
	ID    string // item id when known
	Index int
	Err   error
}

func (e *ParseError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("parsing %s %q: %v", e.Kind, e.ID, e.Err)
	}
	return fmt.Sprintf("parsing %s #%d: %v", e.Kind, e.Index, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// boundary runs fn and converts a panic into an error so that one malformed
// item cannot take down its siblings.
func boundary(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed item: %v", r)
		}
	}()
	return fn()
}
