package product

import "math"

// cosineDistance returns 1 - cos(a, b) in [0, 2]. Zero-norm vectors have no
// direction; they are placed at distance 1 (score 0).
func cosineDistance(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 1
	}
	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	// rounding can push |sim| slightly past 1
	sim = math.Max(-1, math.Min(1, sim))
	return 1 - sim
}
