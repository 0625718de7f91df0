package evaluations

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"hrkey/internal/domain/scoring"
)

// LooseNumber decodes a JSON number or numeric string. Anything else,
// including null, decodes without error into an invalid value so malformed
// ratings and weights drop out of aggregation instead of failing the request.
type LooseNumber struct {
	value float64
	valid bool
}

func Number(v float64) LooseNumber {
	return LooseNumber{value: v, valid: true}
}

func (n *LooseNumber) UnmarshalJSON(data []byte) error {
	*n = LooseNumber{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		raw = strings.TrimSpace(s)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	*n = LooseNumber{value: v, valid: true}
	return nil
}

func (n LooseNumber) MarshalJSON() ([]byte, error) {
	if !n.valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.value)
}

func (n LooseNumber) Value() (float64, bool) {
	return n.value, n.valid
}

// Ptr returns nil for invalid values.
func (n LooseNumber) Ptr() *float64 {
	if !n.valid {
		return nil
	}
	v := n.value
	return &v
}

type GoalInput struct {
	Name            string      `json:"name" validate:"max=300"`
	Description     string      `json:"description" validate:"max=4000"`
	Weight          LooseNumber `json:"weight"`
	Rating          LooseNumber `json:"rating"`
	Rating1Criteria string      `json:"rating_1_criteria"`
	Rating2Criteria string      `json:"rating_2_criteria"`
	Rating3Criteria string      `json:"rating_3_criteria"`
	Rating4Criteria string      `json:"rating_4_criteria"`
	Rating5Criteria string      `json:"rating_5_criteria"`
}

// Submission is the POST /evaluations payload. ID or EvaluationID together
// with Update (or action "update") targets an existing evaluation directly.
type Submission struct {
	ID               *int64                 `json:"id"`
	EvaluationID     *int64                 `json:"evaluation_id"`
	Update           bool                   `json:"update"`
	Action           string                 `json:"action"`
	EmployeeID       int64                  `json:"employee_id" validate:"required,gt=0"`
	EvaluatorID      *int64                 `json:"evaluator_id" validate:"omitempty,gt=0"`
	EvaluationYear   *int                   `json:"evaluation_year" validate:"omitempty,gte=2000,lte=2100"`
	RoundCode        string                 `json:"round_code" validate:"max=64"`
	Code             string                 `json:"code"`
	Responses        map[string]LooseNumber `json:"responses"`
	Goals            []GoalInput            `json:"goals" validate:"max=50,dive"`
	DimensionWeights map[string]LooseNumber `json:"dimension_weights"`
}

func (s Submission) explicitTarget() *int64 {
	if !s.Update && !strings.EqualFold(strings.TrimSpace(s.Action), "update") {
		return nil
	}
	if s.ID != nil && *s.ID > 0 {
		return s.ID
	}
	if s.EvaluationID != nil && *s.EvaluationID > 0 {
		return s.EvaluationID
	}
	return nil
}

type FieldError struct {
	Field  string
	Reason string
}

// Check reports weights outside 0..100. Ratings are never reported: a
// rating that is not an integer in 1..5 is dropped when the submission is
// scored.
func (s Submission) Check() []FieldError {
	var out []FieldError
	for i, g := range s.Goals {
		if v, ok := g.Weight.Value(); ok && (v < 0 || v > 100) {
			out = append(out, FieldError{Field: "goals." + strconv.Itoa(i) + ".weight", Reason: "must be between 0 and 100"})
		}
	}
	for key, w := range s.DimensionWeights {
		if _, ok := scoring.ParseDimension(key); !ok {
			continue
		}
		if v, ok := w.Value(); ok && (v < 0 || v > 100) {
			out = append(out, FieldError{Field: "dimension_weights." + key, Reason: "must be between 0 and 100"})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

// validRating accepts the integer grades 1 to 5.
func validRating(v float64) bool {
	return v >= 1 && v <= 5 && v == math.Trunc(v)
}

type Evaluation struct {
	ID                int64              `json:"id"`
	EmployeeID        int64              `json:"employee_id"`
	EvaluatorID       *int64             `json:"evaluator_id"`
	EvaluationYear    int                `json:"evaluation_year"`
	RoundCode         *string            `json:"round_code"`
	EvaluationDate    time.Time          `json:"evaluation_date"`
	DimensionWeights  map[string]float64 `json:"dimension_weights"`
	InstitucionalAvg  *float64           `json:"institucional_avg"`
	FuncionalAvg      *float64           `json:"funcional_avg"`
	IndividualAvg     *float64           `json:"individual_avg"`
	MetasAvg          *float64           `json:"metas_avg"`
	FinalRating       *float64           `json:"final_rating"`
	PerformanceRating *float64           `json:"performance_rating"`
	PotentialRating   *float64           `json:"potential_rating"`
	NineBoxPosition   *int               `json:"nine_box_position"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
	Responses         []Response         `json:"responses,omitempty"`
}

type Response struct {
	EvaluationID int64 `json:"evaluation_id"`
	CriteriaID   int64 `json:"criteria_id"`
	Rating       int   `json:"rating"`
}

type Goal struct {
	ID              int64   `json:"id,omitempty"`
	EvaluationID    int64   `json:"evaluation_id,omitempty"`
	RoundCode       string  `json:"round_code"`
	Index           int     `json:"index"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	Weight          float64 `json:"weight"`
	Rating          *int    `json:"rating"`
	Rating1Criteria string  `json:"rating_1_criteria"`
	Rating2Criteria string  `json:"rating_2_criteria"`
	Rating3Criteria string  `json:"rating_3_criteria"`
	Rating4Criteria string  `json:"rating_4_criteria"`
	Rating5Criteria string  `json:"rating_5_criteria"`
}

// Record is one submission ready for persistence.
type Record struct {
	TargetID       *int64
	EmployeeID     int64
	EvaluatorID    int64
	EvaluationYear int
	RoundCode      string
	Weights        map[string]float64
	Responses      []Response
	Goals          []Goal
	Scores         scoring.Scores
}

// LockKey names the (employee, round) pair serialized by the advisory lock.
func (r Record) LockKey() string {
	if r.RoundCode != "" {
		return "round:" + r.RoundCode
	}
	return "year:" + strconv.Itoa(r.EvaluationYear)
}

type SubmitResult struct {
	ID           int64          `json:"id"`
	EvaluationID int64          `json:"evaluation_id"`
	Created      bool           `json:"created"`
	Scores       scoring.Scores `json:"scores"`
	Message      string         `json:"message"`
}

type Latest struct {
	Evaluation Evaluation         `json:"evaluation"`
	Responses  []Response         `json:"responses"`
	Weights    map[string]float64 `json:"weights"`
	Goals      []Goal             `json:"goals"`
}

type ListFilter struct {
	RoundCode   string
	EmployeeID  int64
	ManagerCode string
}

type RecomputeSummary struct {
	RoundCode string `json:"round_code"`
	Evaluated int    `json:"evaluated"`
	Changed   int    `json:"changed"`
}

// RescoreFunc derives fresh scores from an evaluation's stored inputs.
type RescoreFunc func(weights map[string]float64, responses []Response, goals []Goal) scoring.Scores
