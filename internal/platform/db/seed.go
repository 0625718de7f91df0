package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hrkey/internal/domain/auth"
	"hrkey/internal/platform/config"
)

// Seed makes the access tables match the static role table, creates the
// HR admin when configured, records the default evaluation period and
// applies the reference data file. Every step is idempotent.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		if err := seedGrants(ctx, tx); err != nil {
			return err
		}
		if err := seedAdmin(ctx, tx, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
			return err
		}
		return seedPeriod(ctx, tx, cfg.DefaultPeriod)
	})
	if err != nil {
		return fmt.Errorf("seed access data: %w", err)
	}

	if strings.TrimSpace(cfg.ReferenceDataFile) == "" {
		return nil
	}
	data, err := LoadReferenceData(cfg.ReferenceDataFile)
	if err != nil {
		return err
	}
	if err := ApplyReferenceData(ctx, pool, data); err != nil {
		return err
	}
	slog.Info("reference data applied", "file", cfg.ReferenceDataFile, "criteria", len(data.Criteria), "bands", len(data.MeritMatrix))
	return nil
}

func seedGrants(ctx context.Context, tx pgx.Tx) error {
	if _, err := tx.Exec(ctx, `
    INSERT INTO permissions (key) SELECT unnest($1::text[])
    ON CONFLICT (key) DO NOTHING
  `, auth.DefaultPermissions); err != nil {
		return fmt.Errorf("permissions: %w", err)
	}

	roles := make([]string, 0, len(auth.RolePermissions))
	for role := range auth.RolePermissions {
		roles = append(roles, role)
	}
	sort.Strings(roles)

	for _, role := range roles {
		perms := auth.RolePermissions[role]
		var roleID string
		if err := tx.QueryRow(ctx, `
      INSERT INTO roles (name) VALUES ($1)
      ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
      RETURNING id::text
    `, role).Scan(&roleID); err != nil {
			return fmt.Errorf("role %s: %w", role, err)
		}

		tag, err := tx.Exec(ctx, `
      INSERT INTO role_permissions (role_id, permission_id)
      SELECT $1::uuid, p.id FROM permissions p WHERE p.key = ANY($2::text[])
      ON CONFLICT DO NOTHING
    `, roleID, perms)
		if err != nil {
			return fmt.Errorf("grants for %s: %w", role, err)
		}
		slog.Debug("role grants ensured", "role", role, "permissions", len(perms), "inserted", tag.RowsAffected())
	}
	return nil
}

func seedAdmin(ctx context.Context, tx pgx.Tx, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || strings.TrimSpace(password) == "" {
		return nil
	}

	var exists bool
	err := tx.QueryRow(ctx, "SELECT true FROM users WHERE lower(email) = lower($1)", email).Scan(&exists)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
    INSERT INTO users (email, password_hash, role_id)
    SELECT $1, $2, id FROM roles WHERE name = $3
  `, email, hash, auth.RoleHR)
	if err == nil {
		slog.Info("seeded hr admin", "email", email)
	}
	return err
}

func seedPeriod(ctx context.Context, tx pgx.Tx, period string) error {
	if strings.TrimSpace(period) == "" {
		return nil
	}
	_, err := tx.Exec(ctx, `
    INSERT INTO evaluation_current_period (id, period) VALUES (1, $1)
    ON CONFLICT (id) DO NOTHING
  `, period)
	return err
}
