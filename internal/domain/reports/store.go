package reports

import (
	"context"
	"fmt"

	"hrkey/internal/domain/scoring"
	"hrkey/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) NineBoxItems(ctx context.Context, filter NineBoxFilter) ([]NineBoxItem, error) {
	query := `
        SELECT e.employee_id, emp.nome, COALESCE(emp.cargo, ''), COALESCE(emp.empresa, ''),
               COALESCE(emp.department_name, ''), COALESCE(emp.manager_name, ''), COALESCE(emp.manager_code, ''),
               e.final_rating::float8, e.performance_rating::float8, e.potential_rating::float8,
               e.nine_box_position, e.round_code, e.evaluation_year, e.evaluation_date, e.created_at
        FROM evaluations e
        JOIN employees emp ON emp.id = e.employee_id
        WHERE 1=1`
	var args []any
	if filter.RoundCode != "" {
		args = append(args, filter.RoundCode)
		query += fmt.Sprintf(" AND e.round_code = $%d", len(args))
	}
	if filter.ManagerCode != "" {
		args = append(args, filter.ManagerCode)
		query += fmt.Sprintf(" AND emp.manager_code = $%d", len(args))
	}
	if filter.ManagerName != "" {
		args = append(args, filter.ManagerName)
		query += fmt.Sprintf(" AND upper(trim(emp.manager_name)) = upper(trim($%d))", len(args))
	}
	query += " ORDER BY upper(trim(COALESCE(emp.manager_name, ''))), emp.nome, e.id"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []NineBoxItem
	for rows.Next() {
		var it NineBoxItem
		if err := rows.Scan(&it.EmployeeID, &it.EmployeeName, &it.Cargo, &it.Empresa,
			&it.DepartmentName, &it.ManagerName, &it.ManagerCode,
			&it.FinalRating, &it.PerformanceRating, &it.PotentialRating,
			&it.NineBoxPosition, &it.RoundCode, &it.EvaluationYear, &it.EvaluationDate, &it.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (s *Store) PDIRows(ctx context.Context, filter PDIFilter) ([]PDIRow, error) {
	query := `
        SELECT e.id, e.employee_id, emp.nome, COALESCE(emp.cargo, ''), COALESCE(emp.empresa, ''),
               COALESCE(emp.company_name, ''), COALESCE(emp.branch_name, ''), COALESCE(emp.department_name, ''),
               COALESCE(emp.manager_name, ''), COALESCE(emp.manager_code, ''), e.round_code,
               e.institucional_avg::float8, e.funcional_avg::float8, e.individual_avg::float8,
               e.metas_avg::float8, e.final_rating::float8
        FROM evaluations e
        JOIN employees emp ON emp.id = e.employee_id
        WHERE 1=1`
	var args []any
	if filter.RoundCode != "" {
		args = append(args, filter.RoundCode)
		query += fmt.Sprintf(" AND e.round_code = $%d", len(args))
	}
	if filter.Empresa != "" {
		args = append(args, filter.Empresa)
		query += fmt.Sprintf(" AND emp.empresa = $%d", len(args))
	}
	if filter.ManagerCode != "" {
		args = append(args, filter.ManagerCode)
		query += fmt.Sprintf(" AND emp.manager_code = $%d", len(args))
	}
	query += " ORDER BY e.id"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PDIRow
	for rows.Next() {
		var r PDIRow
		if err := rows.Scan(&r.EvaluationID, &r.EmployeeID, &r.EmployeeName, &r.Cargo, &r.Empresa,
			&r.CompanyName, &r.BranchName, &r.DepartmentName,
			&r.ManagerName, &r.ManagerCode, &r.RoundCode,
			&r.InstitucionalAvg, &r.FuncionalAvg, &r.IndividualAvg,
			&r.MetasAvg, &r.FinalRating); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// MeritRows joins every employee with its salary grade and the final
// rating of its latest evaluation. Missing region and grade year fall back
// to the given defaults.
func (s *Store) MeritRows(ctx context.Context, defaultRegion string, defaultYear int) ([]MeritRow, error) {
	rows, err := s.DB.Query(ctx, `
        WITH latest AS (
            SELECT DISTINCT ON (employee_id) employee_id, final_rating
            FROM evaluations
            ORDER BY employee_id, evaluation_date DESC, created_at DESC
        )
        SELECT emp.id, emp.nome, COALESCE(emp.cargo, ''),
               COALESCE(NULLIF(emp.company_name, ''), emp.empresa, ''),
               COALESCE(emp.branch_name, ''), COALESCE(emp.department_name, ''),
               COALESCE(emp.manager_name, ''), COALESCE(emp.salario, 0)::float8,
               emp.grade_group, COALESCE(emp.grade_level, ''),
               COALESCE(NULLIF(emp.salary_region, ''), $1::text), COALESCE(emp.salary_grade_year, $2::int),
               sg.median_80::float8, sg.median_100::float8, sg.median_120::float8,
               l.final_rating::float8
        FROM employees emp
        LEFT JOIN latest l ON l.employee_id = emp.id
        LEFT JOIN salary_grades sg
               ON sg.year = COALESCE(emp.salary_grade_year, $2::int)
              AND upper(sg.region) = upper(COALESCE(NULLIF(emp.salary_region, ''), $1::text))
              AND sg.group_no = emp.grade_group
        ORDER BY emp.manager_name NULLS LAST, emp.nome, emp.id`, defaultRegion, defaultYear)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MeritRow
	for rows.Next() {
		var r MeritRow
		if err := rows.Scan(&r.EmployeeID, &r.EmployeeName, &r.Cargo,
			&r.CompanyName,
			&r.BranchName, &r.DepartmentName,
			&r.ManagerName, &r.CurrentSalary,
			&r.GradeGroup, &r.GradeLevel,
			&r.SalaryRegion, &r.SalaryGradeYear,
			&r.Median80, &r.Median100, &r.Median120,
			&r.FinalRating); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) MeritBands(ctx context.Context) ([]scoring.MeritBand, error) {
	rows, err := s.DB.Query(ctx, `
        SELECT id, year, region, band_order, pct_med_min::float8, pct_med_max::float8,
               inc_rating1::float8, inc_rating2::float8, inc_rating3::float8,
               inc_rating4::float8, inc_rating5::float8
        FROM merit_matrix
        ORDER BY year, region, band_order, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []scoring.MeritBand
	for rows.Next() {
		var b scoring.MeritBand
		if err := rows.Scan(&b.ID, &b.Year, &b.Region, &b.BandOrder, &b.PctMin, &b.PctMax,
			&b.Increase[0], &b.Increase[1], &b.Increase[2], &b.Increase[3], &b.Increase[4]); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
