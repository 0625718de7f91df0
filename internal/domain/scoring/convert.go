package scoring

import "math"

// RatingToNineBox maps a 1..5 rating onto the 1..9 grid scale. Inputs are
// rounded half to even to one decimal and looked up in the fixed table; anything outside
// the table falls back to 10 - 2r, clamped to [1, 9].
func RatingToNineBox(rating float64) float64 {
	if math.IsNaN(rating) || math.IsInf(rating, 0) {
		rating = 0
	}
	tenths := math.RoundToEven(rating * 10)
	idx := int(tenths) - 10
	if idx >= 0 && idx < len(nineBoxTable) {
		return nineBoxTable[idx]
	}
	return clamp(10-(tenths/10)*2, nineBoxMin, nineBoxMax)
}

// Round2 rounds half to even to two decimals.
func Round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
