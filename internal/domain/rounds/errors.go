package rounds

import "errors"

var (
	ErrNotFound       = errors.New("round not found")
	ErrNoActiveRound  = errors.New("no active round configured")
	ErrRoundRequired  = errors.New("round_code is required")
	ErrInvalidPeriod  = errors.New("period must use MMYYYY")
	ErrInvalidWindow  = errors.New("invalid evaluation window")
	ErrConfigNotFound = errors.New("config key not found")
)
