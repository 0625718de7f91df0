package scoring

import (
	"math"
	"strings"
)

// MeritBand is one merit-matrix row: a salary-to-median range with the
// increase percentage for each rounded rating 1..5.
type MeritBand struct {
	ID        int64      `json:"id"`
	Year      int        `json:"year"`
	Region    string     `json:"region"`
	BandOrder int        `json:"band_order"`
	PctMin    float64    `json:"pct_med_min"`
	PctMax    float64    `json:"pct_med_max"`
	Increase  [5]float64 `json:"increase_by_rating"`
}

// Contains reports whether pct lies in the closed band range.
func (b MeritBand) Contains(pct float64) bool {
	return pct >= b.PctMin && pct <= b.PctMax
}

// PercentFor returns the increase for a rounded rating, 0 outside 1..5.
func (b MeritBand) PercentFor(roundedRating int) float64 {
	if roundedRating < 1 || roundedRating > 5 {
		return 0
	}
	return b.Increase[roundedRating-1]
}

type MeritInput struct {
	Salary      float64
	Median100   *float64
	Year        int
	Region      string
	FinalRating *float64
}

type MeritOutcome struct {
	PctOfMedian      *float64 `json:"pct_of_median"`
	FinalRatingRound *int     `json:"final_rating_round"`
	BandOrder        *int     `json:"band_order"`
	MeritPercent     *float64 `json:"merit_percent"`
	NewSalary        *float64 `json:"new_salary"`
	MonthlyImpact    *float64 `json:"monthly_impact"`
	AnnualImpact     *float64 `json:"annual_impact"`
}

// PercentOfMedian is salary / median * 100, or nil when the median is
// missing or not positive.
func PercentOfMedian(salary float64, median100 *float64) *float64 {
	if median100 == nil || *median100 <= 0 {
		return nil
	}
	pct := salary / *median100 * 100
	return &pct
}

// FindBand picks the lowest-ordered band of the same year and region whose
// range contains pct.
func FindBand(bands []MeritBand, year int, region string, pct *float64) (MeritBand, bool) {
	if pct == nil {
		return MeritBand{}, false
	}
	var found MeritBand
	ok := false
	for _, b := range bands {
		if b.Year != year || !strings.EqualFold(b.Region, region) || !b.Contains(*pct) {
			continue
		}
		if !ok || b.BandOrder < found.BandOrder {
			found = b
			ok = true
		}
	}
	return found, ok
}

// ResolveMerit computes the merit outcome for one employee. Without a
// matching band the percentage and all money fields stay nil.
func ResolveMerit(in MeritInput, bands []MeritBand) MeritOutcome {
	var out MeritOutcome
	pct := PercentOfMedian(in.Salary, in.Median100)
	if pct != nil {
		display := math.Round(*pct*10) / 10
		out.PctOfMedian = &display
	}

	rounded := 0
	if in.FinalRating != nil {
		rounded = int(math.Round(*in.FinalRating))
		out.FinalRatingRound = &rounded
	}

	band, ok := FindBand(bands, in.Year, in.Region, pct)
	if !ok {
		return out
	}
	order := band.BandOrder
	out.BandOrder = &order

	merit := band.PercentFor(rounded)
	newSalary := roundCents(in.Salary * (1 + merit/100))
	monthly := roundCents(in.Salary * merit / 100)
	annual := roundCents(12 * in.Salary * merit / 100)
	out.MeritPercent = &merit
	out.NewSalary = &newSalary
	out.MonthlyImpact = &monthly
	out.AnnualImpact = &annual
	return out
}

// roundCents rounds money half away from zero, as numeric ROUND does.
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
