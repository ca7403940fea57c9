package vector

import "math"

// EuclideanDistance returns the L2 distance between two vectors. Vectors of
// different lengths yield +Inf so mismatches sort last instead of panicking.
func EuclideanDistance(a, b []float32) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}
	var sum float64
	for i := range a {
		d := float64(a[i] - b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
