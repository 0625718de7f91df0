package db

import (
	"strings"
	"testing"
)

const sampleReference = `
current_period: "102025"
active_round: YE2025
weights:
  INSTITUCIONAL: 20
  metas: 40
criteria:
  - name: Ética
    dimension: INSTITUCIONAL
    type: DESEMPENHO
  - name: Aprendizado
    dimension: individual
    type: potencial
salary_grades:
  - {year: 2025, region: R1, group: 3, median_80: 4000, median_100: 5000, median_120: 6000}
merit_matrix:
  - {year: 2025, region: R1, band_order: 1, pct_min: 0, pct_max: 89.99, increase: [0, 2, 4, 6, 8]}
`

func TestParseReferenceData(t *testing.T) {
	data, err := ParseReferenceData([]byte(sampleReference))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if data.ActiveRound != "YE2025" || data.CurrentPeriod != "102025" {
		t.Fatalf("unexpected header: %+v", data)
	}
	if len(data.Criteria) != 2 || len(data.SalaryGrades) != 1 || len(data.MeritMatrix) != 1 {
		t.Fatalf("unexpected section sizes: %+v", data)
	}
	if data.MeritMatrix[0].Increase[4] != 8 {
		t.Fatalf("expected increase for rating 5 to be 8, got %v", data.MeritMatrix[0].Increase)
	}
	if data.Weights["metas"] != 40 {
		t.Fatalf("expected metas weight 40, got %v", data.Weights)
	}
}

func TestParseReferenceDataRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{name: "metas criterion", doc: "criteria:\n  - {name: x, dimension: METAS, type: DESEMPENHO}\n", want: "invalid dimension"},
		{name: "bad type", doc: "criteria:\n  - {name: x, dimension: FUNCIONAL, type: OTHER}\n", want: "invalid type"},
		{name: "bad weight key", doc: "weights:\n  BONUS: 10\n", want: "unknown weight dimension"},
		{name: "bad period", doc: "current_period: \"2025\"\n", want: "MMYYYY"},
		{name: "inverted band", doc: "merit_matrix:\n  - {year: 2025, region: R1, band_order: 1, pct_min: 90, pct_max: 10}\n", want: "pct_max"},
		{name: "not yaml", doc: "criteria: [", want: "parse reference data"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseReferenceData([]byte(tc.doc))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}
