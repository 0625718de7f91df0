package rounds

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hrkey/internal/platform/cache"
)

type Service struct {
	Store         StoreAPI
	Cache         *cache.Client
	DefaultPeriod string
	Now           func() time.Time
}

func NewService(store StoreAPI, reportCache *cache.Client, defaultPeriod string) *Service {
	return &Service{Store: store, Cache: reportCache, DefaultPeriod: defaultPeriod, Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func (s *Service) List(ctx context.Context) ([]Round, error) {
	return s.Store.List(ctx)
}

// ActiveCode returns the configured active round, or "" when none is set.
func (s *Service) ActiveCode(ctx context.Context) (string, error) {
	entry, err := s.Store.GetConfig(ctx, ActiveRoundKey)
	if errors.Is(err, ErrConfigNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load active round: %w", err)
	}
	return NormalizeRoundCode(entry.Value), nil
}

func (s *Service) Active(ctx context.Context) (Active, error) {
	code, err := s.ActiveCode(ctx)
	if err != nil || code == "" {
		return Active{}, err
	}
	out := Active{Code: &code}
	r, err := s.Store.Get(ctx, code)
	if errors.Is(err, ErrNotFound) {
		return out, nil
	}
	if err != nil {
		return Active{}, err
	}
	out.Round = &r
	return out, nil
}

func (s *Service) Open(ctx context.Context, code string) (Round, error) {
	code = NormalizeRoundCode(code)
	if code == "" {
		return Round{}, ErrRoundRequired
	}
	r, err := s.Store.OpenRound(ctx, code, s.now())
	if err != nil {
		return Round{}, fmt.Errorf("open round %s: %w", code, err)
	}
	s.Cache.InvalidateReports(ctx)
	return r, nil
}

// CloseActive makes the active round read-only. The round stays configured
// as active.
func (s *Service) CloseActive(ctx context.Context) (Round, error) {
	code, err := s.ActiveCode(ctx)
	if err != nil {
		return Round{}, err
	}
	if code == "" {
		return Round{}, ErrNoActiveRound
	}
	r, err := s.Store.CloseRound(ctx, code, s.now())
	if err != nil {
		return Round{}, fmt.Errorf("close round %s: %w", code, err)
	}
	s.Cache.InvalidateReports(ctx)
	return r, nil
}

// IsClosed reports whether submissions to the round are rejected. Unknown
// rounds and the empty code are writable.
func (s *Service) IsClosed(ctx context.Context, code string) (bool, error) {
	code = NormalizeRoundCode(code)
	if code == "" {
		return false, nil
	}
	r, err := s.Store.Get(ctx, code)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return r.Closed(), nil
}

func (s *Service) GetConfig(ctx context.Context, key string) (ConfigEntry, error) {
	return s.Store.GetConfig(ctx, strings.TrimSpace(key))
}

// PutConfig only accepts the active round key.
func (s *Service) PutConfig(ctx context.Context, entry ConfigEntry) (ConfigEntry, error) {
	entry.Key = strings.TrimSpace(entry.Key)
	if entry.Key == "" {
		entry.Key = ActiveRoundKey
	}
	if entry.Key != ActiveRoundKey {
		return ConfigEntry{}, ErrConfigNotFound
	}
	entry.Value = NormalizeRoundCode(entry.Value)
	if entry.Value == "" {
		return ConfigEntry{}, ErrRoundRequired
	}
	if entry.Description == "" {
		entry.Description = activeDescription(entry.Value)
	}
	if err := s.Store.PutConfig(ctx, entry); err != nil {
		return ConfigEntry{}, err
	}
	s.Cache.InvalidateReports(ctx)
	return entry, nil
}

// CurrentPeriod falls back to the configured default when none is stored.
func (s *Service) CurrentPeriod(ctx context.Context) (string, error) {
	period, err := s.Store.CurrentPeriod(ctx)
	if err != nil {
		return "", fmt.Errorf("load current period: %w", err)
	}
	if strings.TrimSpace(period) == "" {
		return s.DefaultPeriod, nil
	}
	return strings.TrimSpace(period), nil
}

func (s *Service) SetCurrentPeriod(ctx context.Context, period string) (string, error) {
	period = strings.TrimSpace(period)
	if !ValidPeriod(period) {
		return "", ErrInvalidPeriod
	}
	if err := s.Store.SetCurrentPeriod(ctx, period); err != nil {
		return "", err
	}
	return period, nil
}

func (s *Service) Window(ctx context.Context) (Window, error) {
	period, err := s.CurrentPeriod(ctx)
	if err != nil {
		return Window{}, err
	}
	start, end, err := s.Store.PeriodWindow(ctx, period)
	if err != nil {
		return Window{}, fmt.Errorf("load window %s: %w", period, err)
	}
	return Window{Period: period, Open: IsOpen(start, end, s.now()), StartAt: start, EndAt: end}, nil
}

func (s *Service) SetWindow(ctx context.Context, req WindowRequest) (Window, error) {
	start, end, err := ParseWindow(req)
	if err != nil {
		return Window{}, err
	}
	period, err := s.CurrentPeriod(ctx)
	if err != nil {
		return Window{}, err
	}
	if err := s.Store.UpsertWindow(ctx, period, start, end); err != nil {
		return Window{}, err
	}
	return Window{Period: period, Open: IsOpen(&start, &end, s.now()), StartAt: &start, EndAt: &end}, nil
}

// WindowOpen is the submission gate.
func (s *Service) WindowOpen(ctx context.Context) (bool, error) {
	w, err := s.Window(ctx)
	if err != nil {
		return false, err
	}
	return w.Open, nil
}
