package rounds

import "time"

const (
	StatusOpen   = "OPEN"
	StatusClosed = "CLOSED"
)

const ActiveRoundKey = "active_round_code"

type Round struct {
	Code     string     `json:"code"`
	Status   string     `json:"status"`
	OpenedAt time.Time  `json:"opened_at"`
	ClosedAt *time.Time `json:"closed_at"`
}

func (r Round) Closed() bool {
	return r.Status == StatusClosed
}

// Active pairs the configured code with its round row, which may be missing.
type Active struct {
	Code  *string `json:"active_round_code"`
	Round *Round  `json:"active_round"`
}

type ConfigEntry struct {
	Key         string `json:"config_key"`
	Value       string `json:"config_value"`
	Description string `json:"description,omitempty"`
}

type OpenRequest struct {
	RoundCode string `json:"round_code" validate:"required,max=64"`
}

type PeriodRequest struct {
	Period string `json:"period" validate:"required,len=6,numeric"`
}

type WindowRequest struct {
	StartAt string `json:"start_at" validate:"required"`
	EndAt   string `json:"end_at" validate:"required"`
}

type Window struct {
	Period  string     `json:"period"`
	Open    bool       `json:"open"`
	StartAt *time.Time `json:"start_at"`
	EndAt   *time.Time `json:"end_at"`
}
