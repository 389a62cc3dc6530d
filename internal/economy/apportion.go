package economy

import (
	"math"
	"sort"
)

// Apportion splits total into integer shares proportional to weights using the
// largest-remainder method. The shares always sum to total exactly. Negative
// weights count as zero; when every weight is zero the total is split evenly.
// A non-positive total yields all-zero shares.
func Apportion(total int64, weights []float64) []int64 {
	shares := make([]int64, len(weights))
	if total <= 0 || len(weights) == 0 {
		return shares
	}

	w := make([]float64, len(weights))
	sum := 0.0
	for i, v := range weights {
		if v > 0 && !math.IsInf(v, 1) && !math.IsNaN(v) {
			w[i] = v
			sum += v
		}
	}
	if sum <= 0 {
		for i := range w {
			w[i] = 1
		}
		sum = float64(len(w))
	}

	raw := make([]float64, len(w))
	var assigned int64
	for i, v := range w {
		raw[i] = float64(total) * v / sum
		shares[i] = int64(math.Floor(raw[i]))
		assigned += shares[i]
	}

	order := make([]int, len(w))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return raw[order[a]] > raw[order[b]]
	})

	// Floating error can leave more than len(w)-1 units; keep cycling.
	rem := total - assigned
	for rem > 0 {
		for _, i := range order {
			if rem == 0 {
				break
			}
			if w[i] == 0 {
				continue
			}
			shares[i]++
			rem--
		}
	}
	for i := len(order) - 1; rem < 0 && i >= 0; i-- {
		if k := order[i]; shares[k] > 0 {
			shares[k]--
			rem++
		}
	}
	return shares
}

// ApportionByClass is Apportion keyed by class in canonical order.
func ApportionByClass(total int64, weights ClassScores) ByClass {
	w := make([]float64, len(Classes))
	for i, c := range Classes {
		w[i] = weights[c]
	}
	shares := Apportion(total, w)
	out := NewByClass()
	for i, c := range Classes {
		out[c] = shares[i]
	}
	return out
}
