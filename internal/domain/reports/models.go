package reports

import (
	"time"

	"hrkey/internal/domain/scoring"
)

const unnamedManager = "Gestor sem nome"

type NineBoxFilter struct {
	RoundCode   string
	ManagerName string
	ManagerCode string
}

type NineBoxItem struct {
	EmployeeID        int64     `json:"employee_id"`
	EmployeeName      string    `json:"employee_name"`
	Cargo             string    `json:"cargo"`
	Empresa           string    `json:"empresa"`
	DepartmentName    string    `json:"department_name"`
	ManagerName       string    `json:"manager_name"`
	ManagerCode       string    `json:"manager_code"`
	FinalRating       *float64  `json:"final_rating"`
	PerformanceRating *float64  `json:"performance_rating"`
	PotentialRating   *float64  `json:"potential_rating"`
	NineBoxPosition   *int      `json:"nine_box_position"`
	RoundCode         *string   `json:"round_code"`
	EvaluationYear    int       `json:"evaluation_year"`
	EvaluationDate    time.Time `json:"evaluation_date"`
	CreatedAt         time.Time `json:"created_at"`
}

type NineBoxReport struct {
	RoundCode   string         `json:"round_code"`
	ManagerName *string        `json:"manager_name"`
	Total       int            `json:"total"`
	Counts      map[string]int `json:"counts"`
	Items       []NineBoxItem  `json:"items"`
}

type PDIFilter struct {
	RoundCode   string
	Empresa     string
	ManagerCode string
}

// PDIRow is an evaluation joined with its employee.
type PDIRow struct {
	EvaluationID     int64
	EmployeeID       int64
	EmployeeName     string
	Cargo            string
	Empresa          string
	CompanyName      string
	BranchName       string
	DepartmentName   string
	ManagerName      string
	ManagerCode      string
	RoundCode        *string
	InstitucionalAvg *float64
	FuncionalAvg     *float64
	IndividualAvg    *float64
	MetasAvg         *float64
	FinalRating      *float64
}

type PDIItem struct {
	EmployeeID      int64              `json:"employee_id"`
	EmployeeName    string             `json:"employee_name"`
	Cargo           string             `json:"cargo"`
	Empresa         string             `json:"empresa"`
	CompanyName     string             `json:"company_name"`
	BranchName      string             `json:"branch_name"`
	DepartmentName  string             `json:"department_name"`
	ManagerName     string             `json:"manager_name"`
	ManagerCode     string             `json:"manager_code"`
	Ratings         map[string]float64 `json:"ratings"`
	FinalRating     float64            `json:"final_rating"`
	Classification  scoring.Outcome    `json:"classification"`
	PDIFlag         bool               `json:"pdi_flag"`
	RecognitionFlag bool               `json:"recognition_flag"`
	RoundCode       *string            `json:"round_code"`
	EvaluationID    int64              `json:"evaluation_id"`
}

type PDICriteria struct {
	PDIThreshold         float64 `json:"pdi_threshold"`
	RecognitionThreshold float64 `json:"recognition_threshold"`
	Description          string  `json:"description"`
}

type PDIReport struct {
	RoundCode   *string     `json:"round_code"`
	Empresa     *string     `json:"empresa"`
	GeneratedAt time.Time   `json:"generated_at"`
	Criteria    PDICriteria `json:"criteria"`
	Total       int         `json:"total"`
	Items       []PDIItem   `json:"items"`
}

// MeritRow is an employee with its salary grade and latest final rating.
type MeritRow struct {
	EmployeeID      int64    `json:"employee_id"`
	EmployeeName    string   `json:"employee_name"`
	Cargo           string   `json:"cargo"`
	CompanyName     string   `json:"company_name"`
	BranchName      string   `json:"branch_name"`
	DepartmentName  string   `json:"department_name"`
	ManagerName     string   `json:"manager_name"`
	CurrentSalary   float64  `json:"current_salary"`
	GradeGroup      *int     `json:"grade_group"`
	GradeLevel      string   `json:"grade_level"`
	SalaryRegion    string   `json:"salary_region"`
	SalaryGradeYear int      `json:"salary_grade_year"`
	Median80        *float64 `json:"median_80"`
	Median100       *float64 `json:"median_100"`
	Median120       *float64 `json:"median_120"`
	FinalRating     *float64 `json:"final_rating"`
}

type MeritItem struct {
	MeritRow
	scoring.MeritOutcome
}

type MeritSimulation struct {
	Count int         `json:"count"`
	Items []MeritItem `json:"items"`
}

type MeritEmployee struct {
	EmployeeID       int64    `json:"employeeId"`
	Nome             string   `json:"nome"`
	Cargo            string   `json:"cargo"`
	Company          string   `json:"company"`
	Department       string   `json:"department"`
	Branch           string   `json:"branch"`
	CurrentSalary    float64  `json:"currentSalary"`
	MedianSalary     *float64 `json:"medianSalary"`
	Median80         *float64 `json:"median80"`
	Median120        *float64 `json:"median120"`
	PctOfMedian      *float64 `json:"pctOfMedian"`
	FinalRating      *float64 `json:"finalRating"`
	FinalRatingRound *int     `json:"finalRatingRound"`
	MeritPercent     *float64 `json:"meritPercent"`
	NewSalary        *float64 `json:"newSalary"`
	MonthlyImpact    *float64 `json:"monthlyImpact"`
	AnnualImpact     *float64 `json:"annualImpact"`
	GradeGroup       *int     `json:"gradeGroup"`
	GradeLevel       string   `json:"gradeLevel"`
	SalaryRegion     string   `json:"salaryRegion"`
	SalaryYear       int      `json:"salaryYear"`
}

type MeritGroup struct {
	Gestor       string          `json:"gestor"`
	Funcionarios []MeritEmployee `json:"funcionarios"`
}
