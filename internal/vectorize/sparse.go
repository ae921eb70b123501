package vectorize

import (
	"math"
	"sort"
)

// Mean returns the arithmetic mean of sparse rows as a sparse vector.
// Returns nil for zero rows.
func Mean(rows []SparseVector) SparseVector {
	if len(rows) == 0 {
		return nil
	}

	sums := make(map[int]float64)
	for _, row := range rows {
		for _, t := range row {
			sums[t.Index] += t.Weight
		}
	}
	if len(sums) == 0 {
		return nil
	}

	inv := 1 / float64(len(rows))
	mean := make(SparseVector, 0, len(sums))
	for idx, sum := range sums {
		mean = append(mean, Term{Index: idx, Weight: sum * inv})
	}
	sortByIndex(mean)
	return mean
}

// Cosine computes cosine similarity between two sparse vectors via a
// merge walk over their sorted term indices. Zero vectors score 0.
func Cosine(a, b SparseVector) float64 {
	var dot float64
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].Index == b[j].Index:
			dot += a[i].Weight * b[j].Weight
			i++
			j++
		case a[i].Index < b[j].Index:
			i++
		default:
			j++
		}
	}
	if dot == 0 {
		return 0
	}

	na, nb := norm(a), norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (na * nb)
}

func norm(v SparseVector) float64 {
	var sum float64
	for _, t := range v {
		sum += t.Weight * t.Weight
	}
	return math.Sqrt(sum)
}

func sortByIndex(v SparseVector) {
	sort.Slice(v, func(a, b int) bool { return v[a].Index < v[b].Index })
}
