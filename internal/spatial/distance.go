package spatial

import (
	"math"
)

// Distance calculates the Euclidean distance between two points in coordinate units
func Distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// StepLengths returns the distance between each pair of consecutive points.
// A step touching a missing point is NaN.
func StepLengths(points []Point) []float64 {
	if len(points) < 2 {
		return nil
	}

	steps := make([]float64, len(points)-1)
	for i := 1; i < len(points); i++ {
		if points[i-1].IsMissing() || points[i].IsMissing() {
			steps[i-1] = math.NaN()
			continue
		}
		steps[i-1] = Distance(points[i-1], points[i])
	}
	return steps
}

// PathLength calculates the total length of a path, skipping steps with missing points
func PathLength(points []Point) float64 {
	var total float64
	for _, step := range StepLengths(points) {
		if math.IsNaN(step) {
			continue
		}
		total += step
	}
	return total
}

// ToCentimetres converts a coordinate-space length with a pixels-per-cm scale
func ToCentimetres(length, scale float64) float64 {
	if scale == 0 {
		return math.NaN()
	}
	return length / scale
}
