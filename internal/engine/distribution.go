// Wealth distribution: the taxed surplus and welfare shared across classes.
package engine

import (
	"math"

	"github.com/talgya/hexfront/internal/economy"
)

// Class multiplier bounds.
const (
	MinClassMultiplier = 0.5
	MaxClassMultiplier = 2.0
)

// SurplusSplit is the outcome of distributing one turn's taxed profit.
type SurplusSplit struct {
	Multiplier float64
	Total      int64
	Shares     economy.ByClass // Sums exactly to Total
}

// DistributeSurplus scales the taxed profit by the population's weighted class
// mix and apportions it by population times weight.
func DistributeSurplus(taxedProfit float64, totals economy.ByClass, weights economy.ClassScores) SurplusSplit {
	var pop int64
	weighted := 0.0
	claims := economy.ClassScores{}
	for _, c := range economy.Classes {
		n := max(0, totals[c])
		pop += n
		claims[c] = float64(n) * math.Max(0, weights[c])
		weighted += claims[c]
	}

	mult := 1.0
	if pop > 0 {
		mult = math.Max(MinClassMultiplier, math.Min(MaxClassMultiplier, weighted/float64(pop)))
	}
	total := max(0, floorInt(float64(floorInt(taxedProfit))*mult))
	return SurplusSplit{
		Multiplier: mult,
		Total:      total,
		Shares:     economy.ApportionByClass(total, claims),
	}
}

// ApplySurplus records a split on the snapshot, net of each class's private
// input purchases.
func ApplySurplus(snap *economy.MarketSnapshot, split SurplusSplit) {
	snap.ClassMultiplier = split.Multiplier
	snap.TotalSurplus = split.Total
	for _, c := range economy.Classes {
		snap.SurplusDelta[c] = max(0, split.Shares[c]-snap.PrivateMaintenance[c])
	}
}

// MigrateSurplus moves stored surplus with people who changed class. Every
// shrinking class gives up its per-capita surplus for each member lost; the
// pool goes to growing classes in proportion to their growth. Returns the
// amount moved.
func MigrateSurplus(surplus, last, current economy.ByClass) int64 {
	grew := economy.ClassScores{}
	var totalGrowth, totalLoss int64
	for _, c := range economy.Classes {
		d := current[c] - last[c]
		if d > 0 {
			grew[c] = float64(d)
			totalGrowth += d
		} else {
			totalLoss -= d
		}
	}
	if totalGrowth <= 0 || totalLoss <= 0 {
		return 0
	}

	var pool int64
	for _, c := range economy.Classes {
		lost := last[c] - current[c]
		if lost <= 0 {
			continue
		}
		perCapita := float64(max(0, surplus[c])) / float64(max(1, last[c]))
		take := min(floorInt(float64(lost)*perCapita), max(0, surplus[c]))
		surplus[c] -= take
		pool += take
	}
	for c, add := range economy.ApportionByClass(pool, grew) {
		surplus[c] += add
	}
	return pool
}

// ClassTaxes is what head and proportional taxation raised this turn.
type ClassTaxes struct {
	Head         economy.ByClass
	Proportional economy.ByClass
}

// Total sums both taxes over every class.
func (t ClassTaxes) Total() int64 {
	return t.Head.Total() + t.Proportional.Total()
}

// CollectClassTaxes levies the per-class taxes of the current law. Each class
// pays at most what it has: this turn's income first, then stored surplus.
// surplus already holds this turn's income and is debited in place.
func CollectClassTaxes(p economy.Policies, totals, income, surplus economy.ByClass) ClassTaxes {
	head, prop := p.ClassTaxRates()
	out := ClassTaxes{Head: economy.NewByClass(), Proportional: economy.NewByClass()}

	for _, c := range []economy.Class{economy.Elite, economy.Expert, economy.Labor} {
		earned := max(0, income[c])
		avail := max(0, surplus[c])

		want := floorInt(float64(earned) * clamp01(prop[c]))
		got := min(want, avail)
		out.Proportional[c] = got
		avail -= got

		want = int64(math.Round(math.Max(0, head[c]) * float64(max(0, totals[c]))))
		got = min(want, avail)
		out.Head[c] = got
		avail -= got

		surplus[c] = avail
	}
	return out
}
