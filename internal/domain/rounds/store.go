package rounds

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"hrkey/internal/platform/querier"
)

type Store struct {
	DB querier.TxQuerier
}

func NewStore(db querier.TxQuerier) *Store {
	return &Store{DB: db}
}

func (s *Store) List(ctx context.Context) ([]Round, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT code, status, opened_at, closed_at
    FROM evaluation_rounds
    ORDER BY opened_at DESC
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Round
	for rows.Next() {
		var r Round
		if err := rows.Scan(&r.Code, &r.Status, &r.OpenedAt, &r.ClosedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) Get(ctx context.Context, code string) (Round, error) {
	var r Round
	err := s.DB.QueryRow(ctx, `
    SELECT code, status, opened_at, closed_at
    FROM evaluation_rounds
    WHERE code = $1
  `, code).Scan(&r.Code, &r.Status, &r.OpenedAt, &r.ClosedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Round{}, ErrNotFound
	}
	return r, err
}

func (s *Store) GetConfig(ctx context.Context, key string) (ConfigEntry, error) {
	entry := ConfigEntry{Key: key}
	err := s.DB.QueryRow(ctx, `
    SELECT config_value, COALESCE(description, '')
    FROM system_config
    WHERE config_key = $1
  `, key).Scan(&entry.Value, &entry.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return ConfigEntry{}, ErrConfigNotFound
	}
	return entry, err
}

func (s *Store) PutConfig(ctx context.Context, entry ConfigEntry) error {
	return putConfig(ctx, s.DB, entry)
}

func putConfig(ctx context.Context, db querier.Querier, entry ConfigEntry) error {
	_, err := db.Exec(ctx, `
    INSERT INTO system_config (config_key, config_value, description, updated_at)
    VALUES ($1, $2, NULLIF($3, ''), now())
    ON CONFLICT (config_key) DO UPDATE
    SET config_value = EXCLUDED.config_value,
        description = COALESCE(EXCLUDED.description, system_config.description),
        updated_at = now()
  `, entry.Key, entry.Value, entry.Description)
	return err
}

// OpenRound marks the round OPEN and makes it the active round in one
// transaction.
func (s *Store) OpenRound(ctx context.Context, code string, at time.Time) (Round, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return Round{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var r Round
	if err := tx.QueryRow(ctx, `
    INSERT INTO evaluation_rounds (code, status, opened_at, closed_at)
    VALUES ($1, $2, $3, NULL)
    ON CONFLICT (code) DO UPDATE
    SET status = EXCLUDED.status, opened_at = EXCLUDED.opened_at, closed_at = NULL
    RETURNING code, status, opened_at, closed_at
  `, code, StatusOpen, at).Scan(&r.Code, &r.Status, &r.OpenedAt, &r.ClosedAt); err != nil {
		return Round{}, err
	}
	if err := putConfig(ctx, tx, ConfigEntry{Key: ActiveRoundKey, Value: code, Description: activeDescription(code)}); err != nil {
		return Round{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Round{}, err
	}
	return r, nil
}

func (s *Store) CloseRound(ctx context.Context, code string, at time.Time) (Round, error) {
	var r Round
	err := s.DB.QueryRow(ctx, `
    INSERT INTO evaluation_rounds (code, status, opened_at, closed_at)
    VALUES ($1, $2, $3, $3)
    ON CONFLICT (code) DO UPDATE
    SET status = EXCLUDED.status, closed_at = EXCLUDED.closed_at
    RETURNING code, status, opened_at, closed_at
  `, code, StatusClosed, at).Scan(&r.Code, &r.Status, &r.OpenedAt, &r.ClosedAt)
	return r, err
}

// CurrentPeriod returns "" when no period row exists.
func (s *Store) CurrentPeriod(ctx context.Context) (string, error) {
	var period string
	err := s.DB.QueryRow(ctx, `SELECT period FROM evaluation_current_period WHERE id = 1`).Scan(&period)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return period, err
}

func (s *Store) SetCurrentPeriod(ctx context.Context, period string) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO evaluation_current_period (id, period) VALUES (1, $1)
    ON CONFLICT (id) DO UPDATE SET period = EXCLUDED.period
  `, period)
	return err
}

func (s *Store) PeriodWindow(ctx context.Context, period string) (*time.Time, *time.Time, error) {
	var start, end time.Time
	err := s.DB.QueryRow(ctx, `
    SELECT start_at, end_at FROM evaluation_periods WHERE period = $1
  `, period).Scan(&start, &end)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return &start, &end, nil
}

func (s *Store) UpsertWindow(ctx context.Context, period string, start, end time.Time) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO evaluation_periods (period, start_at, end_at) VALUES ($1, $2, $3)
    ON CONFLICT (period) DO UPDATE SET start_at = EXCLUDED.start_at, end_at = EXCLUDED.end_at
  `, period, start, end)
	return err
}
