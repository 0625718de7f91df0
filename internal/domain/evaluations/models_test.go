package evaluations

import (
	"encoding/json"
	"testing"
)

func TestLooseNumberDecoding(t *testing.T) {
	var payload struct {
		Values map[string]LooseNumber `json:"values"`
	}
	raw := `{"values":{"a":4,"b":"3","c":" 2.5 ","d":"abc","e":null,"f":true,"g":{"x":1},"h":"NaN"}}`
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}

	want := map[string]float64{"a": 4, "b": 3, "c": 2.5}
	for key, n := range payload.Values {
		v, ok := n.Value()
		expected, valid := want[key]
		if ok != valid {
			t.Fatalf("expected valid=%v for %s, got %v", valid, key, ok)
		}
		if ok && v != expected {
			t.Fatalf("expected %v for %s, got %v", expected, key, v)
		}
	}

	out, err := json.Marshal(payload.Values["d"])
	if err != nil || string(out) != "null" {
		t.Fatalf("expected invalid number to encode as null, got %s %v", out, err)
	}
}

func TestSubmissionCheck(t *testing.T) {
	sub := Submission{
		EmployeeID: 1,
		Responses: map[string]LooseNumber{
			"1": Number(5),
			"2": Number(6),
			"3": Number(2.5),
			"x": Number(9),
			"4": {},
		},
		Goals: []GoalInput{
			{Rating: Number(0), Weight: Number(50)},
			{Rating: Number(7), Weight: Number(120)},
		},
		DimensionWeights: map[string]LooseNumber{"METAS": Number(-1), "BONUS": Number(500)},
	}
	issues := sub.Check()
	want := []string{"dimension_weights.METAS", "goals.1.weight"}
	if len(issues) != len(want) {
		t.Fatalf("expected %d issues, got %+v", len(want), issues)
	}
	for i, issue := range issues {
		if issue.Field != want[i] {
			t.Fatalf("expected %s at %d, got %s", want[i], i, issue.Field)
		}
	}
}

func TestExplicitTargetNeedsUpdateFlag(t *testing.T) {
	id := int64(9)
	if (Submission{ID: &id}).explicitTarget() != nil {
		t.Fatal("expected id without update flag to be ignored")
	}
	if got := (Submission{EvaluationID: &id, Action: "update"}).explicitTarget(); got == nil || *got != 9 {
		t.Fatalf("expected target 9, got %v", got)
	}
}

func TestLockKey(t *testing.T) {
	if got := (Record{RoundCode: "YE2025", EvaluationYear: 2025}).LockKey(); got != "round:YE2025" {
		t.Fatalf("unexpected key %s", got)
	}
	if got := (Record{EvaluationYear: 2024}).LockKey(); got != "year:2024" {
		t.Fatalf("unexpected key %s", got)
	}
}
