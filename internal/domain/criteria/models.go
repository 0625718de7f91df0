package criteria

import (
	"hrkey/internal/domain/scoring"
)

type Criterion struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Dimension   string `json:"dimension"`
	Type        string `json:"type"`
}

type CriterionInput struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Dimension   string `json:"dimension" validate:"required"`
	Type        string `json:"type" validate:"required"`
}

type DimensionWeight struct {
	Dimension string  `json:"dimension" validate:"required"`
	Weight    float64 `json:"weight" validate:"gte=0,lte=100"`
}

// Snapshot is the read-only reference data one scoring run uses.
type Snapshot struct {
	Criteria scoring.Criteria
	Weights  scoring.Weights
}

// ToScoring converts stored rows; rows with an unknown dimension or type
// are dropped so their responses are skipped like unknown ids.
func ToScoring(rows []Criterion) scoring.Criteria {
	out := make(scoring.Criteria, len(rows))
	for _, row := range rows {
		dim, ok := scoring.ParseCriterionDimension(row.Dimension)
		if !ok {
			continue
		}
		typ, ok := scoring.ParseCriterionType(row.Type)
		if !ok {
			continue
		}
		out[row.ID] = scoring.Criterion{ID: row.ID, Dimension: dim, Type: typ}
	}
	return out
}

// WeightsFromRows resolves stored weight rows, defaulting missing ones.
func WeightsFromRows(rows []DimensionWeight) scoring.Weights {
	named := make(map[string]float64, len(rows))
	for _, row := range rows {
		named[row.Dimension] = row.Weight
	}
	return scoring.WeightsFromNames(named)
}
