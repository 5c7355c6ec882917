package stats

import "slices"

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ArgMax returns the index and value of the largest element. Ties resolve to
// the first index. An empty slice yields (-1, 0).
func ArgMax(values []float64) (int, float64) {
	if len(values) == 0 {
		return -1, 0
	}
	idx, best := 0, values[0]
	for i, v := range values[1:] {
		if v > best {
			idx, best = i+1, v
		}
	}
	return idx, best
}

// CalculateMedianDiscrete finds the median value in a slice of integers.
func CalculateMedianDiscrete(values []int) float64 {
	if len(values) == 0 {
		return 0
	}

	// Work on a copy to avoid mutating the original
	temp := slices.Clone(values)
	slices.Sort(temp)

	n := len(temp)
	if n%2 == 1 {
		return float64(temp[n/2])
	}
	return float64(temp[n/2-1]+temp[n/2]) / 2.0
}

// Percentile returns the nearest-rank value at p in [0, 1] without
// mutating values.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	idx := int(float64(len(sorted)) * p)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[max(idx, 0)]
}

// FatTailRatio is P98/P50. Values of 5.6 or more indicate an unpredictable,
// fat-tailed process.
func FatTailRatio(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	p50 := Percentile(values, 0.50)
	p98 := Percentile(values, 0.98)
	if p50 == 0 {
		if p98 > 0 {
			return 10.0 // symbolic high value for sparse processes
		}
		return 1.0
	}
	return p98 / p50
}
