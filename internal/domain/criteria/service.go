package criteria

import (
	"context"
	"fmt"
	"strings"

	"hrkey/internal/domain/scoring"
)

type Service struct {
	Store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{Store: store}
}

func (s *Service) List(ctx context.Context) ([]Criterion, error) {
	return s.Store.List(ctx)
}

func (s *Service) Create(ctx context.Context, in CriterionInput) (Criterion, error) {
	c, err := normalize(in)
	if err != nil {
		return Criterion{}, err
	}
	return s.Store.Create(ctx, c)
}

func (s *Service) Update(ctx context.Context, id int64, in CriterionInput) (Criterion, error) {
	c, err := normalize(in)
	if err != nil {
		return Criterion{}, err
	}
	return s.Store.Update(ctx, id, c)
}

func (s *Service) Weights(ctx context.Context) ([]DimensionWeight, error) {
	return s.Store.ListWeights(ctx)
}

// UpdateWeights stores the given rows. The sum is not checked; missing
// dimensions keep their stored value.
func (s *Service) UpdateWeights(ctx context.Context, rows []DimensionWeight) ([]DimensionWeight, error) {
	normalized := make([]DimensionWeight, 0, len(rows))
	for _, row := range rows {
		dim, ok := scoring.ParseDimension(row.Dimension)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidWeight, row.Dimension)
		}
		normalized = append(normalized, DimensionWeight{Dimension: dim.String(), Weight: row.Weight})
	}
	if err := s.Store.UpsertWeights(ctx, normalized); err != nil {
		return nil, err
	}
	return s.Store.ListWeights(ctx)
}

// Snapshot loads the criteria and weights a scoring run needs.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	rows, err := s.Store.List(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load criteria: %w", err)
	}
	weights, err := s.Store.ListWeights(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load weights: %w", err)
	}
	return Snapshot{Criteria: ToScoring(rows), Weights: WeightsFromRows(weights)}, nil
}

func normalize(in CriterionInput) (Criterion, error) {
	dim, ok := scoring.ParseCriterionDimension(in.Dimension)
	if !ok {
		return Criterion{}, ErrInvalidDimension
	}
	typ, ok := scoring.ParseCriterionType(in.Type)
	if !ok {
		return Criterion{}, ErrInvalidType
	}
	return Criterion{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Dimension:   dim.String(),
		Type:        typ.String(),
	}, nil
}
