package domain

import (
	"math"
	"sort"
)

// MeanVector returns the arithmetic mean of the given dense rows.
// All rows must share one dimension. Returns nil for zero rows.
func MeanVector(rows [][]float32) []float64 {
	if len(rows) == 0 {
		return nil
	}
	mean := make([]float64, len(rows[0]))
	for _, row := range rows {
		for i, v := range row {
			mean[i] += float64(v)
		}
	}
	inv := 1 / float64(len(rows))
	for i := range mean {
		mean[i] *= inv
	}
	return mean
}

// CosineDense computes cosine similarity between a profile vector and a
// dense matrix row. Zero vectors and dimension mismatches score 0.
func CosineDense(profile []float64, row []float32) float64 {
	if len(profile) != len(row) {
		return 0
	}
	var dot, pn, rn float64
	for i, v := range row {
		f := float64(v)
		dot += profile[i] * f
		pn += profile[i] * profile[i]
		rn += f * f
	}
	if pn == 0 || rn == 0 {
		return 0
	}
	return dot / (math.Sqrt(pn) * math.Sqrt(rn))
}

// RankDescending returns corpus positions ordered by score descending.
// The sort is stable, so equal scores keep corpus order.
func RankDescending(scores []float64) []int {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	return order
}
