package reports

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"hrkey/internal/domain/scoring"
	"hrkey/internal/platform/cache"
	"hrkey/internal/platform/metrics"
)

const (
	ReportNineBox = "ninebox"
	ReportPDI     = "pdi"
	ReportMerit   = "merit"
)

type ActiveRoundSource interface {
	ActiveCode(ctx context.Context) (string, error)
}

type Settings struct {
	Thresholds    scoring.Thresholds
	DefaultRegion string
	DefaultYear   int
}

type Service struct {
	Store    StoreAPI
	Rounds   ActiveRoundSource
	Cache    *cache.Client
	Metrics  *metrics.Collector
	Settings Settings
	Now      func() time.Time
}

func NewService(store StoreAPI, rounds ActiveRoundSource, reportCache *cache.Client, m *metrics.Collector, settings Settings) *Service {
	return &Service{Store: store, Rounds: rounds, Cache: reportCache, Metrics: m, Settings: settings}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// cached serves a report from the cache when present, else loads and
// stores it. Cache failures only degrade to a fresh load.
func cached[T any](ctx context.Context, s *Service, report, key string, load func() (T, error)) (T, error) {
	var out T
	if s.Cache.Enabled() {
		hit, err := s.Cache.Get(ctx, key, &out)
		if err != nil {
			slog.Warn("report cache read failed", "report", report, "err", err)
		}
		s.Metrics.CacheLookup(report, hit)
		if hit {
			return out, nil
		}
	}
	out, err := load()
	if err != nil {
		return out, err
	}
	if err := s.Cache.Set(ctx, key, out); err != nil {
		slog.Warn("report cache write failed", "report", report, "err", err)
	}
	return out, nil
}

func (s *Service) resolveRound(ctx context.Context, roundCode string) (string, error) {
	roundCode = strings.TrimSpace(roundCode)
	if roundCode != "" || s.Rounds == nil {
		return roundCode, nil
	}
	code, err := s.Rounds.ActiveCode(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to resolve active round: %w", err)
	}
	return code, nil
}

// NineBox lists grid placements for a round, the active one by default.
// A non-empty scope restricts the report to that manager's team.
func (s *Service) NineBox(ctx context.Context, scope, roundCode, managerName string) (NineBoxReport, error) {
	round, err := s.resolveRound(ctx, roundCode)
	if err != nil {
		return NineBoxReport{}, err
	}
	managerName = strings.TrimSpace(managerName)
	key := cache.Key(ReportNineBox, round, strings.ToUpper(managerName), scope)
	report, err := cached(ctx, s, ReportNineBox, key, func() (NineBoxReport, error) {
		items, err := s.Store.NineBoxItems(ctx, NineBoxFilter{RoundCode: round, ManagerName: managerName, ManagerCode: scope})
		if err != nil {
			return NineBoxReport{}, fmt.Errorf("failed to load nine-box items: %w", err)
		}
		return BuildNineBox(round, managerName, items), nil
	})
	if err != nil {
		return NineBoxReport{}, err
	}
	// The key folds case, so echo this caller's spelling.
	report.ManagerName = nil
	if managerName != "" {
		report.ManagerName = &managerName
	}
	return report, nil
}

// PDI classifies every evaluation of a round, the active one by default,
// against the configured thresholds.
func (s *Service) PDI(ctx context.Context, scope, roundCode, empresa string) (PDIReport, error) {
	roundCode, err := s.resolveRound(ctx, roundCode)
	if err != nil {
		return PDIReport{}, err
	}
	empresa = strings.TrimSpace(empresa)
	key := cache.Key(ReportPDI, roundCode, empresa, scope)
	report, err := cached(ctx, s, ReportPDI, key, func() (PDIReport, error) {
		rows, err := s.Store.PDIRows(ctx, PDIFilter{RoundCode: roundCode, Empresa: empresa, ManagerCode: scope})
		if err != nil {
			return PDIReport{}, fmt.Errorf("failed to load evaluations: %w", err)
		}
		t := s.Settings.Thresholds
		items := BuildPDIItems(rows, t)
		report := PDIReport{
			Criteria: PDICriteria{
				PDIThreshold:         t.PDI,
				RecognitionThreshold: t.Recognition,
				Description:          t.Description(),
			},
			Total: len(items),
			Items: items,
		}
		if roundCode != "" {
			report.RoundCode = &roundCode
		}
		if empresa != "" {
			report.Empresa = &empresa
		}
		return report, nil
	})
	if err != nil {
		return PDIReport{}, err
	}
	report.GeneratedAt = s.now()
	return report, nil
}

func (s *Service) meritItems(ctx context.Context) ([]MeritItem, error) {
	rows, err := s.Store.MeritRows(ctx, s.Settings.DefaultRegion, s.Settings.DefaultYear)
	if err != nil {
		return nil, fmt.Errorf("failed to load merit rows: %w", err)
	}
	bands, err := s.Store.MeritBands(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load merit matrix: %w", err)
	}
	return ResolveMeritItems(rows, bands), nil
}

func (s *Service) MeritSimulation(ctx context.Context) (MeritSimulation, error) {
	return cached(ctx, s, ReportMerit, cache.Key(ReportMerit, "simulation"), func() (MeritSimulation, error) {
		items, err := s.meritItems(ctx)
		if err != nil {
			return MeritSimulation{}, err
		}
		return MeritSimulation{Count: len(items), Items: items}, nil
	})
}

// MeritReport groups the simulation by manager.
func (s *Service) MeritReport(ctx context.Context) ([]MeritGroup, error) {
	return cached(ctx, s, ReportMerit, cache.Key(ReportMerit, "grouped"), func() ([]MeritGroup, error) {
		items, err := s.meritItems(ctx)
		if err != nil {
			return nil, err
		}
		return GroupMerit(items), nil
	})
}
