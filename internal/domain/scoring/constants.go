package scoring

import "strings"

// Dimension indexes the weighted buckets of a final rating. The first three
// hold criteria; Metas is bound to the goals average.
type Dimension int

const (
	Institucional Dimension = iota
	Funcional
	Individual
	Metas
)

const (
	criteriaDimensions = 3
	weightDimensions   = 4
)

var dimensionNames = [weightDimensions]string{"INSTITUCIONAL", "FUNCIONAL", "INDIVIDUAL", "METAS"}

func (d Dimension) String() string {
	if d < 0 || int(d) >= weightDimensions {
		return ""
	}
	return dimensionNames[d]
}

// ParseDimension accepts any of the four weight dimensions.
func ParseDimension(value string) (Dimension, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	for i, name := range dimensionNames {
		if name == normalized {
			return Dimension(i), true
		}
	}
	return 0, false
}

// ParseCriterionDimension rejects METAS, which never carries criteria.
func ParseCriterionDimension(value string) (Dimension, bool) {
	d, ok := ParseDimension(value)
	if !ok || d == Metas {
		return 0, false
	}
	return d, true
}

// Dimensions lists the weight dimensions in storage order.
func Dimensions() []Dimension {
	return []Dimension{Institucional, Funcional, Individual, Metas}
}

type CriterionType int

const (
	Performance CriterionType = iota
	Potential
)

const (
	TypeDesempenho = "DESEMPENHO"
	TypePotencial  = "POTENCIAL"
)

func (t CriterionType) String() string {
	switch t {
	case Performance:
		return TypeDesempenho
	case Potential:
		return TypePotencial
	default:
		return ""
	}
}

func ParseCriterionType(value string) (CriterionType, bool) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case TypeDesempenho:
		return Performance, true
	case TypePotencial:
		return Potential, true
	default:
		return 0, false
	}
}

const DefaultWeight = 25.0

const (
	DefaultPDIThreshold         = 3.0
	DefaultRecognitionThreshold = 4.5
)

const (
	highTierFloor   = 7.0
	mediumTierFloor = 4.0
)

const (
	nineBoxMin = 1.0
	nineBoxMax = 9.0
)

// nineBoxTable maps ratings 1.0..5.0 in tenths (index = rating*10 - 10) to the
// 1..9 display scale.
var nineBoxTable = [41]float64{
	9.0, 8.8, 8.6, 8.4, 8.2, 8.0, 7.8, 7.6, 7.4, 7.2,
	7.0, 6.8, 6.6, 6.4, 6.2, 6.0, 5.8, 5.6, 5.4, 5.2,
	5.0, 4.8, 4.6, 4.4, 4.2, 4.0, 3.8, 3.6, 3.4, 3.2,
	3.0, 2.8, 2.6, 2.4, 2.2, 2.0, 1.8, 1.6, 1.4, 1.2,
	1.0,
}
