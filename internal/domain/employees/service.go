package employees

import (
	"context"
	"fmt"
	"strings"

	"hrkey/internal/domain/auth"
	"hrkey/internal/platform/cache"
)

type Service struct {
	Store StoreAPI
	Cache *cache.Client
}

func NewService(store StoreAPI, reportCache *cache.Client) *Service {
	return &Service{Store: store, Cache: reportCache}
}

// List applies the caller's manager scope on top of the filter.
func (s *Service) List(ctx context.Context, user auth.UserContext, managerName string) ([]Employee, error) {
	filter := ListFilter{ManagerName: strings.TrimSpace(managerName), ManagerCode: user.Scope()}
	items, err := s.Store.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range items {
		FilterEmployeeFields(&items[i], user)
	}
	return items, nil
}

func (s *Service) Get(ctx context.Context, user auth.UserContext, id int64) (Employee, error) {
	emp, err := s.Store.Get(ctx, id)
	if err != nil {
		return Employee{}, err
	}
	if scope := user.Scope(); scope != "" && emp.ManagerCode != scope {
		return Employee{}, ErrForbiddenScope
	}
	FilterEmployeeFields(&emp, user)
	return emp, nil
}

// CheckScope reports ErrForbiddenScope when a manager-scoped caller reaches
// for an employee outside their team.
func (s *Service) CheckScope(ctx context.Context, scope string, id int64) error {
	if scope == "" {
		return nil
	}
	code, err := s.Store.ManagerCode(ctx, id)
	if err != nil {
		return err
	}
	if code != scope {
		return ErrForbiddenScope
	}
	return nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Employee, error) {
	in.Nome = strings.TrimSpace(in.Nome)
	if in.Nome == "" {
		return Employee{}, fmt.Errorf("%w: nome is required", ErrInvalidField)
	}
	in.SalaryRegion = strings.ToUpper(strings.TrimSpace(in.SalaryRegion))
	emp, err := s.Store.Create(ctx, in)
	if err != nil {
		return Employee{}, fmt.Errorf("create employee: %w", err)
	}
	s.Cache.InvalidateReports(ctx)
	return emp, nil
}

// Update returns the row before and after the change for the audit trail.
func (s *Service) Update(ctx context.Context, id int64, raw map[string]any) (Employee, Employee, error) {
	changes, err := SanitizeUpdate(raw)
	if err != nil {
		return Employee{}, Employee{}, err
	}
	before, err := s.Store.Get(ctx, id)
	if err != nil {
		return Employee{}, Employee{}, err
	}
	after, err := s.Store.Update(ctx, id, changes)
	if err != nil {
		return Employee{}, Employee{}, err
	}
	s.Cache.InvalidateReports(ctx)
	return before, after, nil
}

// Movements are salary history; manager link holders never see them.
func (s *Service) Movements(ctx context.Context, user auth.UserContext, employeeID int64) ([]Movement, error) {
	if user.RoleName == auth.RoleManager {
		return nil, ErrForbiddenScope
	}
	if _, err := s.Store.Get(ctx, employeeID); err != nil {
		return nil, err
	}
	return s.Store.ListMovements(ctx, employeeID)
}

func (s *Service) AddMovement(ctx context.Context, employeeID int64, in MovementInput) (Movement, error) {
	if strings.TrimSpace(in.MovementDate) == "" || in.SalaryValue == nil {
		return Movement{}, fmt.Errorf("%w: movement_date and salary_value are required", ErrInvalidField)
	}
	if _, err := s.Store.Get(ctx, employeeID); err != nil {
		return Movement{}, err
	}
	in.MovementDate = strings.TrimSpace(in.MovementDate)
	in.RoleTitle = strings.TrimSpace(in.RoleTitle)
	in.Notes = strings.TrimSpace(in.Notes)
	return s.Store.CreateMovement(ctx, employeeID, in)
}

func (s *Service) SalaryGrades(ctx context.Context, filter GradeFilter) ([]SalaryGrade, error) {
	filter.Region = strings.TrimSpace(filter.Region)
	return s.Store.ListGrades(ctx, filter)
}
