package evaluations

import "errors"

var (
	ErrNotFound          = errors.New("evaluation not found")
	ErrInvalidSubmission = errors.New("employee_id and at least one numeric response are required")
	ErrWindowClosed      = errors.New("evaluation window closed")
	ErrRoundClosed       = errors.New("round is closed and read-only")
	ErrForbiddenScope    = errors.New("employee outside manager scope")
	ErrEmployeeNotFound  = errors.New("employee not found")
)
