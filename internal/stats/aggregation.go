package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Finite returns a copy of values without NaN and infinite entries
func Finite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Mean calculates the arithmetic mean of the finite values
func Mean(values []float64) float64 {
	clean := Finite(values)
	if len(clean) == 0 {
		return 0
	}
	return stat.Mean(clean, nil)
}

// StdDev calculates the sample standard deviation of the finite values
func StdDev(values []float64) float64 {
	clean := Finite(values)
	if len(clean) < 2 {
		return 0
	}
	return stat.StdDev(clean, nil)
}

// Max returns the largest finite value
func Max(values []float64) float64 {
	clean := Finite(values)
	if len(clean) == 0 {
		return 0
	}
	return floats.Max(clean)
}

// Quantile returns the q-th quantile (0-1), interpolating linearly between closest ranks
func Quantile(values []float64, q float64) float64 {
	sorted := Finite(values)
	if len(sorted) == 0 {
		return 0
	}
	q = math.Max(0, math.Min(1, q))
	sort.Float64s(sorted)

	index := q * float64(len(sorted)-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	if lower == upper {
		return sorted[lower]
	}
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// Median calculates the median of the finite values
func Median(values []float64) float64 {
	return Quantile(values, 0.5)
}
