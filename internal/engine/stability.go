package engine

import (
	"math"

	"github.com/talgya/hexfront/internal/economy"
	"github.com/talgya/hexfront/internal/social"
)

// Stability tuning.
const (
	StabilityWeightCap = 0.15 // No class weighs more than this before normalising
	ConquestPenalty    = 10
	WarPenalty         = 50 // Any war goal other than conquest
	ProtestThreshold   = 40
	MinProductionMul   = 0.75
	ProductionMulSpan  = 0.5
)

// StabilityInput is everything the stability score reads for one faction.
type StabilityInput struct {
	Satisfaction economy.ClassScores
	ClassTotals  economy.ByClass
	PowerShares  economy.ClassScores
	AtWar        bool
	Wars         []social.WarTarget
	Baseline     *int // Pre-war average, nil when none is stored
}

// Stability is the political score and the production effects derived from it.
type Stability struct {
	Avg             int     `json:"avg"`
	Mul             float64 `json:"mul"`
	SciMicro        float64 `json:"sci_micro"`
	CivMicro        float64 `json:"civ_micro"`
	ProtestSeverity float64 `json:"protest_severity"`

	// Set when peacetime recovery has reached the stored baseline.
	ClearBaseline bool `json:"-"`
}

// ComputeStability aggregates class satisfaction into a 0–100 score and its
// production multiplier. It does not mutate the baseline; callers clear it
// when ClearBaseline is set.
func ComputeStability(in StabilityInput) Stability {
	var popSum int64
	for _, c := range economy.Classes {
		popSum += max(0, in.ClassTotals[c])
	}

	weights := make(map[economy.Class]float64, len(economy.Classes))
	wsum := 0.0
	for _, c := range economy.Classes {
		popShare := 0.25
		if popSum > 0 {
			popShare = clamp01(float64(max(0, in.ClassTotals[c])) / float64(popSum))
		}
		w := math.Min(StabilityWeightCap, math.Min(clamp01(in.PowerShares[c]), popShare))
		weights[c] = w
		wsum += w
	}

	total := 0.0
	for _, c := range economy.Classes {
		w := 0.25
		if wsum > 0 {
			w = weights[c] / wsum
		}
		total += clampScore(math.Floor(in.Satisfaction[c])) * w
	}
	avg := int(math.Floor(total))

	var st Stability
	switch {
	case in.AtWar:
		avg = max(0, avg-warPenalty(in.Wars))
	case in.Baseline != nil:
		if avg < *in.Baseline {
			avg = min(*in.Baseline, avg+1)
		} else {
			st.ClearBaseline = true
		}
	}

	st.Avg = avg
	st.Mul = MinProductionMul + float64(max(0, min(100, avg)))*ProductionMulSpan/100
	switch {
	case avg >= 85:
		st.SciMicro, st.CivMicro = 0.05, 0.05
	case avg >= 70:
		st.SciMicro, st.CivMicro = 0.025, 0.025
	}
	if avg < ProtestThreshold {
		st.ProtestSeverity = math.Min(1, float64(ProtestThreshold-avg)/ProtestThreshold)
	}
	return st
}

// warPenalty is the largest penalty among active wars; a war flag with no
// readable targets costs the full penalty.
func warPenalty(wars []social.WarTarget) int {
	if len(wars) == 0 {
		return WarPenalty
	}
	p := 0
	for _, w := range wars {
		if w.Goal == social.GoalConquest {
			p = max(p, ConquestPenalty)
		} else {
			p = max(p, WarPenalty)
		}
	}
	return p
}

// stabilityInput gathers the provider data for f.
func (s *Simulation) stabilityInput(f *social.Faction) StabilityInput {
	wars, atWar := s.Wars.ActiveWars(f)
	return StabilityInput{
		Satisfaction: s.Politics.ClassSatisfaction(f),
		ClassTotals:  s.Politics.ClassTotals(f),
		PowerShares:  s.Politics.PowerShares(f),
		AtWar:        atWar,
		Wars:         wars,
		Baseline:     f.StabilityBaseline,
	}
}

// stabilityOf computes f's current stability without side effects.
func (s *Simulation) stabilityOf(f *social.Faction) Stability {
	return ComputeStability(s.stabilityInput(f))
}
