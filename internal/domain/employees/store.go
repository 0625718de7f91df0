package employees

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"hrkey/internal/platform/querier"
)

const employeeColumns = `
    id, nome, COALESCE(cargo, ''), COALESCE(empresa, ''), salario::float8,
    COALESCE(manager_name, ''), COALESCE(manager_code, ''),
    to_char(admission_date, 'YYYY-MM-DD'), to_char(birth_date, 'YYYY-MM-DD'),
    COALESCE(company_name, ''), COALESCE(branch_name, ''), COALESCE(department_name, ''),
    COALESCE(employment_status, ''), COALESCE(leave_reason, ''),
    grade_group, COALESCE(grade_level, ''), COALESCE(salary_region, ''), salary_grade_year,
    created_at, updated_at`

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func scanEmployee(row pgx.Row) (Employee, error) {
	var e Employee
	err := row.Scan(&e.ID, &e.Nome, &e.Cargo, &e.Empresa, &e.Salario,
		&e.ManagerName, &e.ManagerCode,
		&e.AdmissionDate, &e.BirthDate,
		&e.CompanyName, &e.BranchName, &e.DepartmentName,
		&e.EmploymentStatus, &e.LeaveReason,
		&e.GradeGroup, &e.GradeLevel, &e.SalaryRegion, &e.SalaryGradeYear,
		&e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func (s *Store) List(ctx context.Context, filter ListFilter) ([]Employee, error) {
	query := "SELECT" + employeeColumns + " FROM employees WHERE 1=1"
	var args []any
	if filter.ManagerCode != "" {
		args = append(args, filter.ManagerCode)
		query += fmt.Sprintf(" AND manager_code = $%d", len(args))
	}
	if filter.ManagerName != "" {
		args = append(args, filter.ManagerName)
		query += fmt.Sprintf(" AND upper(trim(manager_name)) = upper(trim($%d))", len(args))
	}
	query += " ORDER BY nome, id"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) Get(ctx context.Context, id int64) (Employee, error) {
	e, err := scanEmployee(s.DB.QueryRow(ctx, "SELECT"+employeeColumns+" FROM employees WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	return e, err
}

func (s *Store) Create(ctx context.Context, in CreateInput) (Employee, error) {
	return scanEmployee(s.DB.QueryRow(ctx, `
    INSERT INTO employees (nome, cargo, empresa, salario, manager_name, manager_code, admission_date, birth_date,
      company_name, branch_name, department_name, employment_status, leave_reason,
      grade_group, grade_level, salary_region, salary_grade_year)
    VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, '')::date, NULLIF($8, '')::date,
      NULLIF($9, ''), NULLIF($10, ''), NULLIF($11, ''), NULLIF($12, ''), NULLIF($13, ''),
      $14, NULLIF($15, ''), NULLIF($16, ''), $17)
    RETURNING`+employeeColumns,
		strings.TrimSpace(in.Nome), in.Cargo, in.Empresa, in.Salario, in.ManagerName, in.ManagerCode, in.AdmissionDate, in.BirthDate,
		in.CompanyName, in.BranchName, in.DepartmentName, in.EmploymentStatus, in.LeaveReason,
		in.GradeGroup, in.GradeLevel, in.SalaryRegion, in.SalaryGradeYear))
}

// Update applies changes produced by SanitizeUpdate; column names come from
// the allowlist only.
func (s *Store) Update(ctx context.Context, id int64, changes []Change) (Employee, error) {
	sets := make([]string, 0, len(changes)+1)
	args := make([]any, 0, len(changes)+1)
	for _, c := range changes {
		kind, ok := updatableFields[c.Column]
		if !ok {
			return Employee{}, fmt.Errorf("%w: %s", ErrInvalidField, c.Column)
		}
		args = append(args, c.Value)
		placeholder := fmt.Sprintf("$%d", len(args))
		switch kind {
		case kindDate:
			placeholder += "::date"
		case kindNumber:
			placeholder += "::numeric"
		}
		sets = append(sets, c.Column+" = "+placeholder)
	}
	sets = append(sets, "updated_at = now()")
	args = append(args, id)
	query := fmt.Sprintf("UPDATE employees SET %s WHERE id = $%d RETURNING%s", strings.Join(sets, ", "), len(args), employeeColumns)

	e, err := scanEmployee(s.DB.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	return e, err
}

func (s *Store) ManagerCode(ctx context.Context, id int64) (string, error) {
	var code string
	err := s.DB.QueryRow(ctx, `SELECT COALESCE(manager_code, '') FROM employees WHERE id = $1`, id).Scan(&code)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return code, err
}

func (s *Store) ListMovements(ctx context.Context, employeeID int64) ([]Movement, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, to_char(movement_date, 'YYYY-MM-DD'), COALESCE(role_title, ''),
      salary_value::float8, COALESCE(notes, ''), created_at
    FROM salary_movements
    WHERE employee_id = $1
    ORDER BY movement_date DESC, id DESC
  `, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Movement
	for rows.Next() {
		var m Movement
		if err := rows.Scan(&m.ID, &m.EmployeeID, &m.MovementDate, &m.RoleTitle, &m.SalaryValue, &m.Notes, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) CreateMovement(ctx context.Context, employeeID int64, in MovementInput) (Movement, error) {
	m := Movement{EmployeeID: employeeID, MovementDate: in.MovementDate, RoleTitle: in.RoleTitle, Notes: in.Notes}
	if in.SalaryValue != nil {
		m.SalaryValue = *in.SalaryValue
	}
	err := s.DB.QueryRow(ctx, `
    INSERT INTO salary_movements (employee_id, movement_date, role_title, salary_value, notes)
    VALUES ($1, $2::date, NULLIF($3, ''), $4, NULLIF($5, ''))
    RETURNING id, created_at
  `, employeeID, in.MovementDate, in.RoleTitle, m.SalaryValue, in.Notes).Scan(&m.ID, &m.CreatedAt)
	return m, err
}

func (s *Store) ListGrades(ctx context.Context, filter GradeFilter) ([]SalaryGrade, error) {
	query := `
    SELECT id, year, region, group_no, median_80::float8, median_100::float8, median_120::float8
    FROM salary_grades
    WHERE 1=1`
	var args []any
	if filter.Year > 0 {
		args = append(args, filter.Year)
		query += fmt.Sprintf(" AND year = $%d", len(args))
	}
	if filter.Region != "" {
		args = append(args, filter.Region)
		query += fmt.Sprintf(" AND upper(region) = upper($%d)", len(args))
	}
	query += " ORDER BY year DESC, region, group_no"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SalaryGrade
	for rows.Next() {
		var g SalaryGrade
		if err := rows.Scan(&g.ID, &g.Year, &g.Region, &g.GroupNo, &g.Median80, &g.Median100, &g.Median120); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
