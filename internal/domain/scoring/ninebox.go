package scoring

// Tier is a tertile on the 1..9 scale: 1 high, 2 medium, 3 low.
type Tier int

const (
	TierHigh   Tier = 1
	TierMedium Tier = 2
	TierLow    Tier = 3
)

// TierOf splits the converted scale at 7 and 4.
func TierOf(scale float64) Tier {
	if scale >= highTierFloor {
		return TierHigh
	}
	if scale >= mediumTierFloor {
		return TierMedium
	}
	return TierLow
}

// GridPosition combines the two tiers into a cell 1..9. Potential picks the
// row and performance picks the column counted from the right.
func GridPosition(performance, potential Tier) int {
	return (int(potential)-1)*3 + (4 - int(performance))
}

type NineBox struct {
	Position         int     `json:"nine_box_position"`
	PerformanceScale float64 `json:"performance_rating"`
	PotentialScale   float64 `json:"potential_rating"`
	PerformanceTier  Tier    `json:"performance_tier"`
	PotentialTier    Tier    `json:"potential_tier"`
}

// ClassifyNineBox converts raw 1..5 performance and potential averages and
// places them on the grid.
func ClassifyNineBox(performanceAvg, potentialAvg float64) NineBox {
	perf := RatingToNineBox(performanceAvg)
	pot := RatingToNineBox(potentialAvg)
	perfTier := TierOf(perf)
	potTier := TierOf(pot)
	return NineBox{
		Position:         GridPosition(perfTier, potTier),
		PerformanceScale: perf,
		PotentialScale:   pot,
		PerformanceTier:  perfTier,
		PotentialTier:    potTier,
	}
}
