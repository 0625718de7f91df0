package auth

import (
	"context"
	"time"
)

type StoreAPI interface {
	FindActiveUserByEmail(ctx context.Context, email string) (AuthUser, error)
	CreateSession(ctx context.Context, sessionID, userID string, expires time.Time) error
	RevokeSession(ctx context.Context, sessionID string) error
	SessionValid(ctx context.Context, sessionID string) (bool, error)
	UpdateLastLogin(ctx context.Context, userID string) error
	HasPermission(ctx context.Context, roleName, permission string) (bool, error)
}
