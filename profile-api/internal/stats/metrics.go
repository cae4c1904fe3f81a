package stats

import "math"

// SafeDiv never returns NaN or Inf. Every ratio in this package goes through it.
func SafeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	r := num / den
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func Percentage(part, whole float64) float64 {
	return Clamp(SafeDiv(part, whole)*100, 0, 100)
}

// SexRatio is females per hundred males.
func SexRatio(female, male float64) float64 {
	return SafeDiv(female, male) * 100
}

func AverageHouseholdSize(population, households float64) float64 {
	return SafeDiv(population, households)
}

func CoveragePercentage(irrigated, unirrigated float64) float64 {
	return Percentage(irrigated, irrigated+unirrigated)
}

// SimpsonIndex is 1 - Σp². It is 0 for a single category holding everything
// and for an empty or all-zero distribution.
func SimpsonIndex(magnitudes []float64) float64 {
	total := sum(magnitudes)
	if total == 0 {
		return 0
	}
	var sq float64
	for _, m := range magnitudes {
		p := SafeDiv(m, total)
		sq += p * p
	}
	return Clamp(1-sq, 0, 1)
}

// DependencyRatio is the share of the largest category, in percent.
func DependencyRatio(magnitudes []float64) float64 {
	var largest float64
	for _, m := range magnitudes {
		if m > largest {
			largest = m
		}
	}
	return Percentage(largest, sum(magnitudes))
}

// CompositeScore blends diversity, independence from a single category and
// breadth into one number clamped to [0,100]. An empty distribution scores 0.
func CompositeScore(diversity, dependency float64, categories int) float64 {
	if categories <= 0 {
		return 0
	}
	raw := diversity*40 + (100-dependency)*0.3 + float64(categories)*5 + 10
	return Clamp(math.Round(raw), 0, 100)
}

// Round rounds to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func sum(values []float64) float64 {
	var s float64
	for _, v := range values {
		s += v
	}
	return s
}
