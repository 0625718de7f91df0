package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Service struct {
	Store         StoreAPI
	Secret        string
	SessionTTL    time.Duration
	LinkSecret    string
	LinkTTL       time.Duration
	PublicBaseURL string
	now           func() time.Time
}

func NewService(store StoreAPI, secret string, sessionTTL time.Duration, linkSecret string, linkTTL time.Duration, baseURL string) *Service {
	if linkSecret == "" {
		linkSecret = secret
	}
	return &Service{
		Store:         store,
		Secret:        secret,
		SessionTTL:    sessionTTL,
		LinkSecret:    linkSecret,
		LinkTTL:       linkTTL,
		PublicBaseURL: strings.TrimRight(baseURL, "/"),
		now:           time.Now,
	}
}

func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	user, err := s.Store.FindActiveUserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, pgx.ErrNoRows) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("find user: %w", err)
	}
	if err := CheckPassword(user.Password, password); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	sessionID := uuid.NewString()
	expires := s.now().Add(s.SessionTTL)
	token, err := GenerateToken(s.Secret, Claims{UserID: user.ID, RoleID: user.RoleID, RoleName: user.RoleName}, sessionID, s.SessionTTL)
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}
	if err := s.Store.CreateSession(ctx, sessionID, user.ID, expires); err != nil {
		return Session{}, fmt.Errorf("create session: %w", err)
	}
	if err := s.Store.UpdateLastLogin(ctx, user.ID); err != nil {
		slog.Warn("update last login failed", "userId", user.ID, "err", err)
	}
	return Session{Token: token, ExpiresAt: expires, UserID: user.ID, Role: user.RoleName, SessionID: sessionID}, nil
}

func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.Store.RevokeSession(ctx, sessionID)
}

// SessionValid lets the auth middleware reject revoked tokens.
func (s *Service) SessionValid(ctx context.Context, sessionID string) (bool, error) {
	return s.Store.SessionValid(ctx, sessionID)
}

func (s *Service) HasPermission(ctx context.Context, roleName, permission string) (bool, error) {
	return s.Store.HasPermission(ctx, roleName, permission)
}

// IssueManagerLink signs a team link for managerCode. A non-positive ttl
// uses the configured default.
func (s *Service) IssueManagerLink(managerCode string, ttl time.Duration) (ManagerLink, error) {
	if ttl <= 0 {
		ttl = s.LinkTTL
	}
	token, expires, err := GenerateManagerLink(s.LinkSecret, managerCode, ttl)
	if err != nil {
		return ManagerLink{}, err
	}
	return ManagerLink{
		ManagerCode: strings.TrimSpace(managerCode),
		Token:       token,
		URL:         s.PublicBaseURL + "/team?t=" + url.QueryEscape(token),
		ExpiresAt:   expires,
	}, nil
}

func (s *Service) VerifyManagerLink(token string) (string, error) {
	return ParseManagerLink(s.LinkSecret, token)
}

func Describe(user UserContext) WhoAmI {
	return WhoAmI{Role: user.RoleName, ManagerCode: user.Scope(), UserID: user.UserID}
}
