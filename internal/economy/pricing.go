package economy

import "math"

// Supply/demand pressure bounds.
const (
	MinThrottle  = 0.25 // Output floor for a starved building
	ThrottleKnee = 0.75 // Ratio at or above which inputs count as satisfied
	RatioCap     = 4.0  // Pressure saturates beyond 4:1
	SurplusSpan  = 0.75 // Price drop across the full surplus range
	ShortageSpan = 0.75 // Price rise across the full shortage range
	NoSupply     = 2.5  // Price factor with demand but no supply at all
	GlutFactor   = 0.25 // Price factor with supply but no demand
	MinInflation = 1.0
	MaxInflation = 12.0
)

// Ratio returns supply/demand with explicit edge cases: 0 when both are zero,
// +Inf when only supply is present.
func Ratio(supply, demand int64) float64 {
	if demand <= 0 {
		if supply <= 0 {
			return 0
		}
		return math.Inf(1)
	}
	return float64(supply) / float64(demand)
}

// ThrottleFactor maps a supply/demand ratio to the share of output a building
// can produce when that resource is one of its inputs.
func ThrottleFactor(r float64) float64 {
	if r >= ThrottleKnee {
		return 1
	}
	return clamp(r+MinThrottle, MinThrottle, 1)
}

// PriceFactor computes the supply/demand pressure multiplier on base price.
func PriceFactor(supply, demand int64) float64 {
	switch {
	case supply <= 0 && demand <= 0:
		return 1
	case demand <= 0:
		return GlutFactor
	case supply <= 0:
		return NoSupply
	}

	r := float64(supply) / float64(demand)
	if r > 1 {
		return clamp(1-((math.Min(r, RatioCap)-1)/3)*SurplusSpan, MinThrottle, 1)
	}

	inv := math.Min(1/r, RatioCap)
	return 1 + ((inv-1)/3)*ShortageSpan
}

// ClampInflation bounds an inflation factor to its legal range.
func ClampInflation(inflation float64) float64 {
	if math.IsNaN(inflation) {
		return MinInflation
	}
	return clamp(inflation, MinInflation, MaxInflation)
}

// Price resolves the integer unit price for a tradable resource.
func Price(r Resource, supply, demand int64, inflation float64) int64 {
	base := BasePrices[r]
	return int64(math.Round(base * PriceFactor(supply, demand) * ClampInflation(inflation)))
}

// Inflation step bounds for money minting.
const (
	MintImpactFloor = -0.02
	MintImpactCeil  = 0.10
	MintImpactScale = 0.12
)

// NextInflation returns the inflation factor after minting mint money against
// a basic money income of basicIncome. Zero minting lets inflation decay.
func NextInflation(current float64, mint, basicIncome int64) float64 {
	ratio := 0.0
	if mint > 0 {
		base := float64(max(basicIncome, 1))
		ratio = float64(mint) / base
	}
	impact := clamp(MintImpactFloor+MintImpactScale*ratio*ratio, MintImpactFloor, MintImpactCeil)
	return ClampInflation(ClampInflation(current) + impact)
}
