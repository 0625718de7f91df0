package employees

import "time"

type Employee struct {
	ID               int64     `json:"id"`
	Nome             string    `json:"nome"`
	Cargo            string    `json:"cargo"`
	Empresa          string    `json:"empresa"`
	Salario          *float64  `json:"salario"`
	ManagerName      string    `json:"manager_name"`
	ManagerCode      string    `json:"manager_code,omitempty"`
	AdmissionDate    *string   `json:"admission_date"`
	BirthDate        *string   `json:"birth_date"`
	CompanyName      string    `json:"company_name"`
	BranchName       string    `json:"branch_name"`
	DepartmentName   string    `json:"department_name"`
	EmploymentStatus string    `json:"employment_status"`
	LeaveReason      string    `json:"leave_reason"`
	GradeGroup       *int      `json:"grade_group"`
	GradeLevel       string    `json:"grade_level"`
	SalaryRegion     string    `json:"salary_region"`
	SalaryGradeYear  *int      `json:"salary_grade_year"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type CreateInput struct {
	Nome             string   `json:"nome" validate:"required,max=200"`
	Cargo            string   `json:"cargo" validate:"max=200"`
	Empresa          string   `json:"empresa" validate:"max=200"`
	Salario          *float64 `json:"salario" validate:"omitempty,gte=0"`
	ManagerName      string   `json:"manager_name" validate:"max=200"`
	ManagerCode      string   `json:"manager_code" validate:"max=64"`
	AdmissionDate    string   `json:"admission_date" validate:"omitempty,datetime=2006-01-02"`
	BirthDate        string   `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	CompanyName      string   `json:"company_name" validate:"max=200"`
	BranchName       string   `json:"branch_name" validate:"max=200"`
	DepartmentName   string   `json:"department_name" validate:"max=200"`
	EmploymentStatus string   `json:"employment_status" validate:"max=64"`
	LeaveReason      string   `json:"leave_reason" validate:"max=200"`
	GradeGroup       *int     `json:"grade_group" validate:"omitempty,gte=1"`
	GradeLevel       string   `json:"grade_level" validate:"max=32"`
	SalaryRegion     string   `json:"salary_region" validate:"max=16"`
	SalaryGradeYear  *int     `json:"salary_grade_year" validate:"omitempty,gte=2000,lte=2100"`
}

type ListFilter struct {
	ManagerName string
	ManagerCode string
}

type Movement struct {
	ID           int64     `json:"id"`
	EmployeeID   int64     `json:"employee_id"`
	MovementDate string    `json:"movement_date"`
	RoleTitle    string    `json:"role_title"`
	SalaryValue  float64   `json:"salary_value"`
	Notes        string    `json:"notes"`
	CreatedAt    time.Time `json:"created_at"`
}

type MovementInput struct {
	MovementDate string   `json:"movement_date" validate:"required,datetime=2006-01-02"`
	RoleTitle    string   `json:"role_title" validate:"max=200"`
	SalaryValue  *float64 `json:"salary_value" validate:"required,gte=0"`
	Notes        string   `json:"notes" validate:"max=2000"`
}

type SalaryGrade struct {
	ID        int64    `json:"id"`
	Year      int      `json:"year"`
	Region    string   `json:"region"`
	GroupNo   int      `json:"group_no"`
	Median80  *float64 `json:"median_80"`
	Median100 *float64 `json:"median_100"`
	Median120 *float64 `json:"median_120"`
}

type GradeFilter struct {
	Year   int
	Region string
}
