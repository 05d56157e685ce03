package domain

import "math"

// CosineSimilarity returns dot(a,b) / (|a|*|b|), clamped to [-1, 1].
// Vectors must be non-empty and of equal length. When either vector has zero
// magnitude the similarity is undefined and NaN is returned with a nil error.
func CosineSimilarity(a, b Vector) (float64, error) {
	if len(a) != len(b) {
		return 0, &DimensionMismatchError{Left: len(a), Right: len(b)}
	}
	if len(a) == 0 {
		return 0, ErrEmptyVector
	}

	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return math.NaN(), nil
	}

	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	return math.Max(-1, math.Min(1, sim)), nil
}
