package scoring

// Weights holds a percentage per weight dimension. They nominally sum to 100
// but are never normalized.
type Weights [weightDimensions]float64

func (w Weights) Get(d Dimension) float64 {
	if d < 0 || int(d) >= weightDimensions {
		return 0
	}
	return w[d]
}

// Map renders the weights keyed by dimension name for storage.
func (w Weights) Map() map[string]float64 {
	out := make(map[string]float64, weightDimensions)
	for _, d := range Dimensions() {
		out[d.String()] = w[d]
	}
	return out
}

// DefaultWeights gives every dimension DefaultWeight.
func DefaultWeights() Weights {
	return Weights{DefaultWeight, DefaultWeight, DefaultWeight, DefaultWeight}
}

// ResolveWeights fills dimensions missing from partial with DefaultWeight.
func ResolveWeights(partial map[Dimension]float64) Weights {
	w := DefaultWeights()
	for d, v := range partial {
		if d < 0 || int(d) >= weightDimensions {
			continue
		}
		w[d] = v
	}
	return w
}

// WeightsFromNames resolves a name-keyed configuration. Unknown names are
// ignored.
func WeightsFromNames(named map[string]float64) Weights {
	partial := make(map[Dimension]float64, len(named))
	for name, v := range named {
		if d, ok := ParseDimension(name); ok {
			partial[d] = v
		}
	}
	return ResolveWeights(partial)
}

// ComposeFinalRating returns the unrounded weighted sum of the three criteria
// averages and the goals average.
func ComposeFinalRating(dims DimensionAverages, goalsAvg float64, w Weights) float64 {
	final := 0.0
	for d := 0; d < criteriaDimensions; d++ {
		final += dims[d] * (w[d] / 100)
	}
	final += goalsAvg * (w[Metas] / 100)
	return final
}

// Input is everything one evaluation is scored from.
type Input struct {
	Responses Responses
	Criteria  Criteria
	Goals     []Goal
	Weights   Weights
}

// Scores are the derived fields persisted on an evaluation, rounded to two
// decimals.
type Scores struct {
	InstitucionalAvg  float64 `json:"institucional_avg"`
	FuncionalAvg      float64 `json:"funcional_avg"`
	IndividualAvg     float64 `json:"individual_avg"`
	MetasAvg          float64 `json:"metas_avg"`
	FinalRating       float64 `json:"final_rating"`
	PerformanceRating float64 `json:"performance_rating"`
	PotentialRating   float64 `json:"potential_rating"`
	NineBoxPosition   int     `json:"nine_box_position"`
}

// Compute runs the whole pipeline. It holds no state, so equal inputs give
// equal scores.
func Compute(in Input) Scores {
	dims := AggregateByDimension(in.Responses, in.Criteria)
	goalsAvg := AggregateGoals(in.Goals)
	final := ComposeFinalRating(dims, goalsAvg, in.Weights)
	types := AggregateByType(in.Responses, in.Criteria)
	box := ClassifyNineBox(types.Performance, types.Potential)

	return Scores{
		InstitucionalAvg:  Round2(dims[Institucional]),
		FuncionalAvg:      Round2(dims[Funcional]),
		IndividualAvg:     Round2(dims[Individual]),
		MetasAvg:          Round2(goalsAvg),
		FinalRating:       Round2(final),
		PerformanceRating: Round2(box.PerformanceScale),
		PotentialRating:   Round2(box.PotentialScale),
		NineBoxPosition:   box.Position,
	}
}
