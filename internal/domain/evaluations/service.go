package evaluations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"hrkey/internal/domain/criteria"
	"hrkey/internal/domain/employees"
	"hrkey/internal/domain/scoring"
	"hrkey/internal/platform/cache"
	"hrkey/internal/platform/metrics"
)

const defaultEvaluatorID = 1

type SnapshotSource interface {
	Snapshot(ctx context.Context) (criteria.Snapshot, error)
}

type RoundGate interface {
	WindowOpen(ctx context.Context) (bool, error)
	IsClosed(ctx context.Context, code string) (bool, error)
	ActiveCode(ctx context.Context) (string, error)
}

type ScopeChecker interface {
	CheckScope(ctx context.Context, scope string, employeeID int64) error
}

type Service struct {
	Store           StoreAPI
	Criteria        SnapshotSource
	Rounds          RoundGate
	Employees       ScopeChecker
	Cache           *cache.Client
	Metrics         *metrics.Collector
	AdminWindowCode string
	DefaultYear     int
}

func NewService(store StoreAPI, criteriaSource SnapshotSource, rounds RoundGate, emps ScopeChecker, reportCache *cache.Client, m *metrics.Collector, adminWindowCode string, defaultYear int) *Service {
	return &Service{
		Store:           store,
		Criteria:        criteriaSource,
		Rounds:          rounds,
		Employees:       emps,
		Cache:           reportCache,
		Metrics:         m,
		AdminWindowCode: strings.TrimSpace(adminWindowCode),
		DefaultYear:     defaultYear,
	}
}

// Submit validates, scores and stores one evaluation. A later submission
// for the same employee and round fully replaces the earlier one.
func (s *Service) Submit(ctx context.Context, scope string, sub Submission) (SubmitResult, error) {
	responses := parseResponses(sub.Responses)
	if sub.EmployeeID <= 0 || len(responses) == 0 {
		s.Metrics.Submission("invalid")
		return SubmitResult{}, ErrInvalidSubmission
	}
	if issues := sub.Check(); len(issues) > 0 {
		s.Metrics.Submission("invalid")
		return SubmitResult{}, fmt.Errorf("%w: %s %s", ErrInvalidSubmission, issues[0].Field, issues[0].Reason)
	}

	open, err := s.Rounds.WindowOpen(ctx)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("check window: %w", err)
	}
	if !open && !s.overrideAccepted(sub.Code) {
		s.Metrics.Submission("window_closed")
		return SubmitResult{}, ErrWindowClosed
	}

	roundCode := strings.TrimSpace(sub.RoundCode)
	closed, err := s.Rounds.IsClosed(ctx, roundCode)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("check round: %w", err)
	}
	if closed {
		s.Metrics.Submission("round_closed")
		return SubmitResult{}, ErrRoundClosed
	}

	if err := s.checkScope(ctx, scope, sub.EmployeeID); err != nil {
		s.Metrics.Submission("forbidden")
		return SubmitResult{}, err
	}

	snap, err := s.Criteria.Snapshot(ctx)
	if err != nil {
		return SubmitResult{}, err
	}
	weights := resolveWeights(sub.DimensionWeights, snap.Weights).Map()
	rows := responseRows(responses)
	goals := buildGoals(sub.Goals)
	scores := scoring.Compute(StoredInput(snap.Criteria, weights, rows, goals))

	rec := Record{
		TargetID:       sub.explicitTarget(),
		EmployeeID:     sub.EmployeeID,
		EvaluatorID:    defaultEvaluatorID,
		EvaluationYear: s.DefaultYear,
		RoundCode:      roundCode,
		Weights:        weights,
		Responses:      rows,
		Goals:          goals,
		Scores:         scores,
	}
	if sub.EvaluatorID != nil {
		rec.EvaluatorID = *sub.EvaluatorID
	}
	if sub.EvaluationYear != nil {
		rec.EvaluationYear = *sub.EvaluationYear
	}

	id, created, err := s.Store.Save(ctx, rec)
	if err != nil {
		s.Metrics.Submission("error")
		return SubmitResult{}, fmt.Errorf("save evaluation: %w", err)
	}

	s.Cache.InvalidateReports(ctx)
	s.Metrics.Submission("accepted")
	s.Metrics.NineBoxAssigned(scores.NineBoxPosition)
	return SubmitResult{ID: id, EvaluationID: id, Created: created, Scores: scores, Message: "evaluation saved"}, nil
}

func (s *Service) overrideAccepted(code string) bool {
	return s.AdminWindowCode != "" && strings.TrimSpace(code) == s.AdminWindowCode
}

func (s *Service) checkScope(ctx context.Context, scope string, employeeID int64) error {
	if scope == "" {
		return nil
	}
	err := s.Employees.CheckScope(ctx, scope, employeeID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, employees.ErrForbiddenScope):
		return ErrForbiddenScope
	case errors.Is(err, employees.ErrNotFound):
		return ErrEmployeeNotFound
	default:
		return err
	}
}

// parseResponses keeps entries with an integer criterion id and a rating
// that is an integer in 1..5.
func parseResponses(raw map[string]LooseNumber) scoring.Responses {
	out := make(scoring.Responses, len(raw))
	for key, rating := range raw {
		id, err := strconv.ParseInt(strings.TrimSpace(key), 10, 64)
		if err != nil {
			continue
		}
		v, ok := rating.Value()
		if !ok || !validRating(v) {
			continue
		}
		out[id] = v
	}
	return out
}

func responseRows(responses scoring.Responses) []Response {
	out := make([]Response, 0, len(responses))
	for id, v := range responses {
		out = append(out, Response{CriteriaID: id, Rating: int(v)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CriteriaID < out[j].CriteriaID })
	return out
}

// resolveWeights prefers the submitted weights when any is numeric.
func resolveWeights(raw map[string]LooseNumber, stored scoring.Weights) scoring.Weights {
	named := make(map[string]float64, len(raw))
	for key, w := range raw {
		if v, ok := w.Value(); ok {
			named[key] = v
		}
	}
	if len(named) == 0 {
		return stored
	}
	return scoring.WeightsFromNames(named)
}

// buildGoals numbers goals from 1. A rating that is not an integer in 1..5
// leaves the goal unrated and a missing weight is stored as 0.
func buildGoals(inputs []GoalInput) []Goal {
	out := make([]Goal, 0, len(inputs))
	for i, in := range inputs {
		g := Goal{
			Index:           i + 1,
			Name:            strings.TrimSpace(in.Name),
			Description:     strings.TrimSpace(in.Description),
			Rating1Criteria: in.Rating1Criteria,
			Rating2Criteria: in.Rating2Criteria,
			Rating3Criteria: in.Rating3Criteria,
			Rating4Criteria: in.Rating4Criteria,
			Rating5Criteria: in.Rating5Criteria,
		}
		if w, ok := in.Weight.Value(); ok {
			g.Weight = w
		}
		if r, ok := in.Rating.Value(); ok && validRating(r) {
			rating := int(r)
			g.Rating = &rating
		}
		out = append(out, g)
	}
	return out
}

func scoringGoals(goals []Goal) []scoring.Goal {
	out := make([]scoring.Goal, 0, len(goals))
	for _, g := range goals {
		sg := scoring.Goal{}
		if g.Rating != nil {
			r := float64(*g.Rating)
			sg.Rating = &r
		}
		w := g.Weight
		sg.Weight = &w
		out = append(out, sg)
	}
	return out
}

// Latest returns the newest evaluation of an employee, optionally within a
// round, with its responses, weights and goals.
func (s *Service) Latest(ctx context.Context, scope string, employeeID int64, roundCode string) (Latest, error) {
	if err := s.checkScope(ctx, scope, employeeID); err != nil {
		return Latest{}, err
	}
	ev, err := s.Store.Latest(ctx, employeeID, strings.TrimSpace(roundCode))
	if err != nil {
		return Latest{}, err
	}
	responses, err := s.Store.Responses(ctx, ev.ID)
	if err != nil {
		return Latest{}, fmt.Errorf("load responses: %w", err)
	}
	goals, err := s.Store.Goals(ctx, ev.ID)
	if err != nil {
		return Latest{}, fmt.Errorf("load goals: %w", err)
	}
	weights := ev.DimensionWeights
	if len(weights) == 0 {
		weights = scoring.DefaultWeights().Map()
	}
	return Latest{Evaluation: ev, Responses: responses, Weights: weights, Goals: goals}, nil
}

func (s *Service) Get(ctx context.Context, scope string, id int64) (Evaluation, error) {
	ev, err := s.Store.Get(ctx, id)
	if err != nil {
		return Evaluation{}, err
	}
	if err := s.checkScope(ctx, scope, ev.EmployeeID); err != nil {
		return Evaluation{}, err
	}
	responses, err := s.Store.Responses(ctx, id)
	if err != nil {
		return Evaluation{}, fmt.Errorf("load responses: %w", err)
	}
	ev.Responses = responses
	return ev, nil
}

func (s *Service) List(ctx context.Context, scope string, filter ListFilter) ([]Evaluation, error) {
	filter.RoundCode = strings.TrimSpace(filter.RoundCode)
	filter.ManagerCode = scope
	return s.Store.List(ctx, filter)
}

func (s *Service) Responses(ctx context.Context, scope string, evaluationID int64) ([]Response, error) {
	if scope != "" {
		if _, err := s.Get(ctx, scope, evaluationID); err != nil {
			return nil, err
		}
	}
	return s.Store.Responses(ctx, evaluationID)
}

func (s *Service) Goals(ctx context.Context, scope string, evaluationID int64) ([]Goal, error) {
	if _, err := s.Get(ctx, scope, evaluationID); err != nil {
		return nil, err
	}
	return s.Store.Goals(ctx, evaluationID)
}

// Recompute re-derives every evaluation of a round from its stored inputs
// and the current criteria. An empty code selects the active round.
func (s *Service) Recompute(ctx context.Context, roundCode string) (RecomputeSummary, error) {
	roundCode = strings.TrimSpace(roundCode)
	if roundCode == "" {
		active, err := s.Rounds.ActiveCode(ctx)
		if err != nil {
			return RecomputeSummary{}, err
		}
		roundCode = active
	}
	snap, err := s.Criteria.Snapshot(ctx)
	if err != nil {
		return RecomputeSummary{}, err
	}
	ids, err := s.Store.IDsForRound(ctx, roundCode)
	if err != nil {
		return RecomputeSummary{}, fmt.Errorf("list evaluations: %w", err)
	}

	summary := RecomputeSummary{RoundCode: roundCode}
	rescore := func(weights map[string]float64, responses []Response, goals []Goal) scoring.Scores {
		return scoring.Compute(StoredInput(snap.Criteria, weights, responses, goals))
	}
	for _, id := range ids {
		changed, err := s.Store.Rescore(ctx, id, rescore)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return summary, fmt.Errorf("rescore evaluation %d: %w", id, err)
		}
		summary.Evaluated++
		if changed {
			summary.Changed++
		}
	}
	if summary.Changed > 0 {
		s.Cache.InvalidateReports(ctx)
	}
	slog.Info("evaluations recomputed", "roundCode", roundCode, "evaluated", summary.Evaluated, "changed", summary.Changed)
	return summary, nil
}

// StoredInput rebuilds the scoring input of a persisted evaluation. Weights
// missing from the stored snapshot default like any partial configuration.
func StoredInput(crit scoring.Criteria, weights map[string]float64, responses []Response, goals []Goal) scoring.Input {
	rs := make(scoring.Responses, len(responses))
	for _, r := range responses {
		rs[r.CriteriaID] = float64(r.Rating)
	}
	return scoring.Input{
		Responses: rs,
		Criteria:  crit,
		Goals:     scoringGoals(goals),
		Weights:   scoring.WeightsFromNames(weights),
	}
}
