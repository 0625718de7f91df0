package shared

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type weightPayload struct {
	Dimension string  `json:"dimension" validate:"required"`
	Weight    float64 `json:"weight" validate:"gte=0,lte=100"`
}

func TestValidatorCollectsSortedUniqueIssues(t *testing.T) {
	v := NewValidator()
	v.Struct(weightPayload{Weight: 120})
	v.Check(false, "responses", "at least one rating is required")
	v.Check(true, "ignored", "never added")
	v.Add("responses", "at least one rating is required")
	v.Add("blank", " ")

	issues := v.Issues()
	if len(issues) != 3 {
		t.Fatalf("expected 3 issues, got %+v", issues)
	}
	if issues[0].Field != "dimension" || issues[1].Field != "responses" || issues[2].Field != "weight" {
		t.Fatalf("expected issues sorted by field, got %+v", issues)
	}
}

func TestValidatorRejectWritesEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	if NewValidator().Reject(rec, "req-1") {
		t.Fatal("expected empty validator not to reject")
	}

	v := NewValidator()
	v.Struct([]weightPayload{{Dimension: "FUNCIONAL", Weight: 30}, {Weight: 10}})
	if !v.Reject(rec, "req-1") {
		t.Fatal("expected reject")
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Details struct {
				Fields []ValidationIssue `json:"fields"`
			} `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "validation_error" || len(body.Error.Details.Fields) != 1 {
		t.Fatalf("expected one validation issue, got %+v", body.Error)
	}
	if !strings.HasPrefix(body.Error.Details.Fields[0].Field, "1.") {
		t.Fatalf("expected slice index prefix, got %q", body.Error.Details.Fields[0].Field)
	}
}
