package scoring

// Criterion is the reference data the aggregators need from an evaluation
// criterion.
type Criterion struct {
	ID        int64
	Dimension Dimension
	Type      CriterionType
}

// Criteria is a read-only snapshot keyed by criterion id.
type Criteria map[int64]Criterion

// Responses maps criterion id to the submitted 1..5 rating.
type Responses map[int64]float64

// DimensionAverages holds the unweighted mean per criteria dimension.
type DimensionAverages [criteriaDimensions]float64

func (a DimensionAverages) Get(d Dimension) float64 {
	if d < 0 || int(d) >= criteriaDimensions {
		return 0
	}
	return a[d]
}

type TypeAverages struct {
	Performance float64
	Potential   float64
}

type bucket struct {
	sum   float64
	count int
}

func (b *bucket) add(v float64) {
	b.sum += v
	b.count++
}

func (b bucket) mean() float64 {
	if b.count == 0 {
		return 0
	}
	return b.sum / float64(b.count)
}

// AggregateByDimension averages responses per criteria dimension. Unknown
// criterion ids are skipped and an empty dimension averages to 0.
func AggregateByDimension(responses Responses, criteria Criteria) DimensionAverages {
	var buckets [criteriaDimensions]bucket
	for id, rating := range responses {
		c, ok := criteria[id]
		if !ok || c.Dimension < 0 || int(c.Dimension) >= criteriaDimensions {
			continue
		}
		buckets[c.Dimension].add(rating)
	}
	var out DimensionAverages
	for i := range buckets {
		out[i] = buckets[i].mean()
	}
	return out
}

// AggregateByType averages responses per criterion type.
func AggregateByType(responses Responses, criteria Criteria) TypeAverages {
	var perf, pot bucket
	for id, rating := range responses {
		c, ok := criteria[id]
		if !ok {
			continue
		}
		switch c.Type {
		case Performance:
			perf.add(rating)
		case Potential:
			pot.add(rating)
		}
	}
	return TypeAverages{Performance: perf.mean(), Potential: pot.mean()}
}

// Goal carries the two numeric inputs of a goal. Nil means absent or
// malformed.
type Goal struct {
	Rating *float64
	Weight *float64
}

// AggregateGoals returns the weighted mean of rated goals over positive
// weights, the plain mean when no rated goal has a positive weight, and 0
// when nothing is rated.
func AggregateGoals(goals []Goal) float64 {
	var plain bucket
	var weightedSum, totalWeight float64
	for _, g := range goals {
		if g.Rating == nil {
			continue
		}
		rating := *g.Rating
		plain.add(rating)
		if g.Weight != nil && *g.Weight > 0 {
			weightedSum += rating * *g.Weight
			totalWeight += *g.Weight
		}
	}
	if totalWeight > 0 {
		return weightedSum / totalWeight
	}
	return plain.mean()
}
