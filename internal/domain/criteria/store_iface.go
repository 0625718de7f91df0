package criteria

import "context"

type StoreAPI interface {
	List(ctx context.Context) ([]Criterion, error)
	Create(ctx context.Context, in Criterion) (Criterion, error)
	Update(ctx context.Context, id int64, in Criterion) (Criterion, error)
	ListWeights(ctx context.Context) ([]DimensionWeight, error)
	UpsertWeights(ctx context.Context, weights []DimensionWeight) error
}
