package criteria

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"hrkey/internal/platform/querier"
)

type Store struct {
	DB querier.TxQuerier
}

func NewStore(db querier.TxQuerier) *Store {
	return &Store{DB: db}
}

func (s *Store) List(ctx context.Context) ([]Criterion, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, COALESCE(description, ''), dimension, type
    FROM evaluation_criteria
    ORDER BY dimension, id
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Criterion
	for rows.Next() {
		var c Criterion
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Dimension, &c.Type); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) Create(ctx context.Context, in Criterion) (Criterion, error) {
	out := in
	err := s.DB.QueryRow(ctx, `
    INSERT INTO evaluation_criteria (name, description, dimension, type)
    VALUES ($1,$2,$3,$4)
    RETURNING id
  `, in.Name, in.Description, in.Dimension, in.Type).Scan(&out.ID)
	return out, err
}

func (s *Store) Update(ctx context.Context, id int64, in Criterion) (Criterion, error) {
	out := in
	err := s.DB.QueryRow(ctx, `
    UPDATE evaluation_criteria
    SET name = $1, description = $2, dimension = $3, type = $4
    WHERE id = $5
    RETURNING id
  `, in.Name, in.Description, in.Dimension, in.Type, id).Scan(&out.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Criterion{}, ErrNotFound
	}
	return out, err
}

func (s *Store) ListWeights(ctx context.Context) ([]DimensionWeight, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT dimension, weight
    FROM dimension_weights
    ORDER BY CASE dimension
      WHEN 'INSTITUCIONAL' THEN 1
      WHEN 'FUNCIONAL' THEN 2
      WHEN 'INDIVIDUAL' THEN 3
      ELSE 4 END
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DimensionWeight
	for rows.Next() {
		var w DimensionWeight
		if err := rows.Scan(&w.Dimension, &w.Weight); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// UpsertWeights writes every row in one transaction.
func (s *Store) UpsertWeights(ctx context.Context, weights []DimensionWeight) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	for _, w := range weights {
		if _, err := tx.Exec(ctx, `
      INSERT INTO dimension_weights (dimension, weight) VALUES ($1, $2)
      ON CONFLICT (dimension) DO UPDATE SET weight = EXCLUDED.weight
    `, w.Dimension, w.Weight); err != nil {
			return fmt.Errorf("upsert weight %s: %w", w.Dimension, err)
		}
	}
	return tx.Commit(ctx)
}
