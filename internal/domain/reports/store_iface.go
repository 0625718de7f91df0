package reports

import (
	"context"

	"hrkey/internal/domain/scoring"
)

type StoreAPI interface {
	NineBoxItems(ctx context.Context, filter NineBoxFilter) ([]NineBoxItem, error)
	PDIRows(ctx context.Context, filter PDIFilter) ([]PDIRow, error)
	MeritRows(ctx context.Context, defaultRegion string, defaultYear int) ([]MeritRow, error)
	MeritBands(ctx context.Context) ([]scoring.MeritBand, error)
}
