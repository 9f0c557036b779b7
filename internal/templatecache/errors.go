package templatecache

import (
	"github.com/funcscaffold/funcscaffold/internal/templates"
)

// TierError records why one acquisition tier could not serve a request.
type TierError struct {
	Source templates.Source
	Err    error
}

// AcquisitionError is returned when every tier failed. Its message is the
// live feed error, which is usually the actionable one; the other tiers'
// errors are kept in Attempts.
type AcquisitionError struct {
	Language string
	Schema   templates.SchemaVersion
	Err      error
	Attempts []TierError
}

func (e *AcquisitionError) Error() string {
	if e.Err == nil {
		return templates.ErrNoTemplates.Error()
	}
	return e.Err.Error()
}

func (e *AcquisitionError) Unwrap() error {
	if e.Err == nil {
		return templates.ErrNoTemplates
	}
	return e.Err
}
