package employees

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"hrkey/internal/domain/auth"
)

// updatableFields is the column allowlist for partial updates.
var updatableFields = map[string]fieldKind{
	"nome":              kindText,
	"cargo":             kindText,
	"empresa":           kindText,
	"salario":           kindNumber,
	"manager_name":      kindText,
	"admission_date":    kindDate,
	"birth_date":        kindDate,
	"company_name":      kindText,
	"branch_name":       kindText,
	"department_name":   kindText,
	"employment_status": kindText,
	"leave_reason":      kindText,
}

type fieldKind int

const (
	kindText fieldKind = iota
	kindNumber
	kindDate
)

// Change is one validated column assignment.
type Change struct {
	Column string
	Value  any
}

// SanitizeUpdate keeps only allowlisted keys, coerces their values and
// returns them sorted by column. Unknown keys are ignored.
func SanitizeUpdate(raw map[string]any) ([]Change, error) {
	var changes []Change
	for key, value := range raw {
		kind, ok := updatableFields[key]
		if !ok {
			continue
		}
		coerced, err := coerce(kind, value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s %v", ErrInvalidField, key, err)
		}
		if key == "nome" && (coerced == nil || coerced == "") {
			return nil, fmt.Errorf("%w: nome is required", ErrInvalidField)
		}
		changes = append(changes, Change{Column: key, Value: coerced})
	}
	if len(changes) == 0 {
		return nil, ErrNoUpdatableFields
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Column < changes[j].Column })
	return changes, nil
}

func coerce(kind fieldKind, value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	switch kind {
	case kindNumber:
		switch v := value.(type) {
		case float64:
			return v, nil
		case json.Number:
			return v.Float64()
		case string:
			if strings.TrimSpace(v) == "" {
				return nil, nil
			}
			return strconv.ParseFloat(strings.TrimSpace(v), 64)
		}
		return nil, fmt.Errorf("must be a number")
	case kindDate:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("must be a YYYY-MM-DD date")
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, nil
		}
		if _, err := time.Parse("2006-01-02", s); err != nil {
			return nil, fmt.Errorf("must be a YYYY-MM-DD date")
		}
		return s, nil
	default:
		switch v := value.(type) {
		case string:
			return strings.TrimSpace(v), nil
		case float64, bool, json.Number:
			return fmt.Sprint(v), nil
		}
		return nil, fmt.Errorf("must be text")
	}
}

// FilterEmployeeFields hides salary data from manager link holders.
func FilterEmployeeFields(emp *Employee, user auth.UserContext) {
	if user.RoleName != auth.RoleManager {
		return
	}
	emp.Salario = nil
}
