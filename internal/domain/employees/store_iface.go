package employees

import "context"

type StoreAPI interface {
	List(ctx context.Context, filter ListFilter) ([]Employee, error)
	Get(ctx context.Context, id int64) (Employee, error)
	Create(ctx context.Context, in CreateInput) (Employee, error)
	Update(ctx context.Context, id int64, changes []Change) (Employee, error)
	ManagerCode(ctx context.Context, id int64) (string, error)
	ListMovements(ctx context.Context, employeeID int64) ([]Movement, error)
	CreateMovement(ctx context.Context, employeeID int64, in MovementInput) (Movement, error)
	ListGrades(ctx context.Context, filter GradeFilter) ([]SalaryGrade, error)
}
