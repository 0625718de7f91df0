package employees

import (
	"context"
	"errors"
	"testing"

	"hrkey/internal/domain/auth"
)

type fakeStore struct {
	employees map[int64]Employee
	movements map[int64][]Movement
	lastList  ListFilter
}

func newFakeStore() *fakeStore {
	salary := 3000.0
	return &fakeStore{
		employees: map[int64]Employee{
			1: {ID: 1, Nome: "Ana", ManagerCode: "M1", ManagerName: "Carla", Salario: &salary},
			2: {ID: 2, Nome: "Bruno", ManagerCode: "M2", ManagerName: "Diego", Salario: &salary},
		},
		movements: map[int64][]Movement{},
	}
}

func (f *fakeStore) List(_ context.Context, filter ListFilter) ([]Employee, error) {
	f.lastList = filter
	var out []Employee
	for _, id := range []int64{1, 2} {
		e := f.employees[id]
		if filter.ManagerCode != "" && e.ManagerCode != filter.ManagerCode {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeStore) Get(_ context.Context, id int64) (Employee, error) {
	e, ok := f.employees[id]
	if !ok {
		return Employee{}, ErrNotFound
	}
	return e, nil
}

func (f *fakeStore) Create(_ context.Context, in CreateInput) (Employee, error) {
	e := Employee{ID: int64(len(f.employees) + 1), Nome: in.Nome, SalaryRegion: in.SalaryRegion}
	f.employees[e.ID] = e
	return e, nil
}

func (f *fakeStore) Update(_ context.Context, id int64, changes []Change) (Employee, error) {
	e, ok := f.employees[id]
	if !ok {
		return Employee{}, ErrNotFound
	}
	for _, c := range changes {
		if c.Column == "cargo" {
			e.Cargo, _ = c.Value.(string)
		}
	}
	f.employees[id] = e
	return e, nil
}

func (f *fakeStore) ManagerCode(_ context.Context, id int64) (string, error) {
	e, ok := f.employees[id]
	if !ok {
		return "", ErrNotFound
	}
	return e.ManagerCode, nil
}

func (f *fakeStore) ListMovements(_ context.Context, employeeID int64) ([]Movement, error) {
	return f.movements[employeeID], nil
}

func (f *fakeStore) CreateMovement(_ context.Context, employeeID int64, in MovementInput) (Movement, error) {
	m := Movement{ID: int64(len(f.movements[employeeID]) + 1), EmployeeID: employeeID, MovementDate: in.MovementDate, SalaryValue: *in.SalaryValue}
	f.movements[employeeID] = append(f.movements[employeeID], m)
	return m, nil
}

func (f *fakeStore) ListGrades(context.Context, GradeFilter) ([]SalaryGrade, error) {
	return nil, nil
}

var (
	hrUser      = auth.UserContext{RoleName: auth.RoleHR, UserID: "u1"}
	managerUser = auth.UserContext{RoleName: auth.RoleManager, ManagerCode: "M1"}
)

func TestListAppliesManagerScope(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil)

	items, err := svc.List(context.Background(), managerUser, " Carla ")
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if store.lastList.ManagerCode != "M1" || store.lastList.ManagerName != "Carla" {
		t.Fatalf("unexpected filter %+v", store.lastList)
	}
	if len(items) != 1 || items[0].Salario != nil {
		t.Fatalf("expected one employee without salary, got %+v", items)
	}

	items, _ = svc.List(context.Background(), hrUser, "")
	if len(items) != 2 {
		t.Fatalf("expected hr to see everyone, got %d", len(items))
	}
}

func TestGetOutsideScope(t *testing.T) {
	svc := NewService(newFakeStore(), nil)
	if _, err := svc.Get(context.Background(), managerUser, 2); !errors.Is(err, ErrForbiddenScope) {
		t.Fatalf("expected forbidden scope, got %v", err)
	}
	if err := svc.CheckScope(context.Background(), "M1", 1); err != nil {
		t.Fatalf("expected own employee in scope, got %v", err)
	}
	if err := svc.CheckScope(context.Background(), "M1", 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateReturnsBeforeAndAfter(t *testing.T) {
	svc := NewService(newFakeStore(), nil)
	before, after, err := svc.Update(context.Background(), 1, map[string]any{"cargo": "Gerente"})
	if err != nil {
		t.Fatalf("update error: %v", err)
	}
	if before.Cargo != "" || after.Cargo != "Gerente" {
		t.Fatalf("unexpected before/after %+v %+v", before, after)
	}
	if _, _, err := svc.Update(context.Background(), 1, map[string]any{"manager_code": "M9"}); !errors.Is(err, ErrNoUpdatableFields) {
		t.Fatalf("expected no updatable fields, got %v", err)
	}
}

func TestMovements(t *testing.T) {
	svc := NewService(newFakeStore(), nil)
	if _, err := svc.AddMovement(context.Background(), 1, MovementInput{MovementDate: "2025-01-01"}); !errors.Is(err, ErrInvalidField) {
		t.Fatalf("expected missing salary error, got %v", err)
	}
	value := 3500.0
	if _, err := svc.AddMovement(context.Background(), 1, MovementInput{MovementDate: "2025-01-01", SalaryValue: &value}); err != nil {
		t.Fatalf("add movement error: %v", err)
	}
	items, err := svc.Movements(context.Background(), hrUser, 1)
	if err != nil || len(items) != 1 {
		t.Fatalf("expected one movement, got %v %v", items, err)
	}
	if _, err := svc.Movements(context.Background(), managerUser, 1); !errors.Is(err, ErrForbiddenScope) {
		t.Fatalf("expected managers blocked from movements, got %v", err)
	}
}

func TestCreateRequiresName(t *testing.T) {
	svc := NewService(newFakeStore(), nil)
	if _, err := svc.Create(context.Background(), CreateInput{Nome: " "}); !errors.Is(err, ErrInvalidField) {
		t.Fatalf("expected invalid field, got %v", err)
	}
	emp, err := svc.Create(context.Background(), CreateInput{Nome: "Eva", SalaryRegion: " r2 "})
	if err != nil {
		t.Fatalf("create error: %v", err)
	}
	if emp.SalaryRegion != "R2" {
		t.Fatalf("expected normalized region, got %q", emp.SalaryRegion)
	}
}
