package stats

import "sort"

// Extremes points into the slice it was selected from. Both are nil for
// empty input and equal for a single element.
type Extremes[T any] struct {
	Max *T
	Min *T
}

func (e Extremes[T]) Empty() bool { return e.Max == nil }

// SelectExtremes scans once; on ties the earliest element wins.
func SelectExtremes[T any](items []T, metric func(T) float64) Extremes[T] {
	if len(items) == 0 {
		return Extremes[T]{}
	}
	maxIdx, minIdx := 0, 0
	maxVal, minVal := metric(items[0]), metric(items[0])
	for i := 1; i < len(items); i++ {
		v := metric(items[i])
		if v > maxVal {
			maxIdx, maxVal = i, v
		}
		if v < minVal {
			minIdx, minVal = i, v
		}
	}
	return Extremes[T]{Max: &items[maxIdx], Min: &items[minIdx]}
}

// RankBy orders references to items by metric, highest first, keeping input
// order among equal values.
func RankBy[T any](items []T, metric func(T) float64) []*T {
	ranked := make([]*T, len(items))
	for i := range items {
		ranked[i] = &items[i]
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return metric(*ranked[i]) > metric(*ranked[j])
	})
	return ranked
}

// SumBy folds one magnitude across items.
func SumBy[T any](items []T, field func(T) float64) float64 {
	var s float64
	for _, it := range items {
		s += field(it)
	}
	return s
}
