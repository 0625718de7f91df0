package shared

import (
	"net/http"
	"sort"
	"strings"

	"hrkey/internal/transport/http/api"
)

// ValidationIssue is one rejected field in a validation_error response.
type ValidationIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Validator collects issues from struct tags and hand-written checks so a
// payload is rejected once with every problem listed.
type Validator struct {
	issues []ValidationIssue
	seen   map[ValidationIssue]struct{}
}

func NewValidator() *Validator {
	return &Validator{seen: map[ValidationIssue]struct{}{}}
}

// Add records an issue. Blank reasons and repeats are dropped.
func (v *Validator) Add(field, reason string) {
	issue := ValidationIssue{Field: strings.TrimSpace(field), Reason: strings.TrimSpace(reason)}
	if v == nil || issue.Reason == "" {
		return
	}
	if _, dup := v.seen[issue]; dup {
		return
	}
	v.seen[issue] = struct{}{}
	v.issues = append(v.issues, issue)
}

// Check adds the issue when ok is false.
func (v *Validator) Check(ok bool, field, reason string) {
	if !ok {
		v.Add(field, reason)
	}
}

// Struct runs the struct tag rules of payload and keeps their issues.
func (v *Validator) Struct(payload any) {
	for _, issue := range StructIssues(payload) {
		v.Add(issue.Field, issue.Reason)
	}
}

func (v *Validator) HasIssues() bool {
	return v != nil && len(v.issues) > 0
}

// Issues returns the collected issues sorted by field then reason.
func (v *Validator) Issues() []ValidationIssue {
	if !v.HasIssues() {
		return nil
	}
	out := append([]ValidationIssue(nil), v.issues...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Field != out[j].Field {
			return out[i].Field < out[j].Field
		}
		return out[i].Reason < out[j].Reason
	})
	return out
}

// Reject writes the validation_error response when issues exist and
// reports whether it did.
func (v *Validator) Reject(w http.ResponseWriter, requestID string) bool {
	if !v.HasIssues() {
		return false
	}
	FailValidation(w, requestID, v.Issues())
	return true
}

func FailValidation(w http.ResponseWriter, requestID string, issues []ValidationIssue) {
	api.FailWithDetails(w, http.StatusBadRequest, "validation_error", "payload validation failed",
		map[string]any{"fields": issues}, requestID)
}
