package rounds

import (
	"context"
	"time"
)

type StoreAPI interface {
	List(ctx context.Context) ([]Round, error)
	Get(ctx context.Context, code string) (Round, error)
	GetConfig(ctx context.Context, key string) (ConfigEntry, error)
	PutConfig(ctx context.Context, entry ConfigEntry) error
	OpenRound(ctx context.Context, code string, at time.Time) (Round, error)
	CloseRound(ctx context.Context, code string, at time.Time) (Round, error)
	CurrentPeriod(ctx context.Context) (string, error)
	SetCurrentPeriod(ctx context.Context, period string) error
	PeriodWindow(ctx context.Context, period string) (*time.Time, *time.Time, error)
	UpsertWindow(ctx context.Context, period string, start, end time.Time) error
}
