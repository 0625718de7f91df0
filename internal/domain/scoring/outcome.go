package scoring

import (
	"fmt"
	"math"
)

type Outcome string

const (
	OutcomeRecognition              Outcome = "RECOGNITION"
	OutcomeMandatoryDevelopmentPlan Outcome = "MANDATORY_DEVELOPMENT_PLAN"
	OutcomeNeutral                  Outcome = "NEUTRAL"
)

type Thresholds struct {
	PDI         float64 `json:"pdi_threshold"`
	Recognition float64 `json:"recognition_threshold"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{PDI: DefaultPDIThreshold, Recognition: DefaultRecognitionThreshold}
}

func (t Thresholds) Description() string {
	return fmt.Sprintf("final_rating <= %.1f => %s; final_rating >= %.1f => %s; otherwise => %s",
		t.PDI, OutcomeMandatoryDevelopmentPlan, t.Recognition, OutcomeRecognition, OutcomeNeutral)
}

// ClassifyOutcome labels a final rating. Recognition is checked first; a
// missing or non-finite rating counts as 0.
func ClassifyOutcome(finalRating *float64, t Thresholds) Outcome {
	fr := 0.0
	if finalRating != nil && !math.IsNaN(*finalRating) && !math.IsInf(*finalRating, 0) {
		fr = *finalRating
	}
	if fr >= t.Recognition {
		return OutcomeRecognition
	}
	if fr <= t.PDI {
		return OutcomeMandatoryDevelopmentPlan
	}
	return OutcomeNeutral
}

// Flags returns the report booleans derived from the label.
func (o Outcome) Flags() (pdi, recognition bool) {
	return o == OutcomeMandatoryDevelopmentPlan, o == OutcomeRecognition
}
