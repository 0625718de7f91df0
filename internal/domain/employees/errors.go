package employees

import "errors"

var (
	ErrNotFound          = errors.New("employee not found")
	ErrForbiddenScope    = errors.New("employee outside manager scope")
	ErrNoUpdatableFields = errors.New("no updatable fields supplied")
	ErrInvalidField      = errors.New("invalid field value")
)
