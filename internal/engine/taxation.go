package engine

import (
	"math"

	"github.com/talgya/hexfront/internal/catalog"
	"github.com/talgya/hexfront/internal/economy"
	"github.com/talgya/hexfront/internal/social"
)

// ProtestCostRise is the extra operating cost per unit of protest severity.
const ProtestCostRise = 0.1

// inputCost prices what a state building buys on the market this turn,
// scaled by how far its inputs were throttled.
func (fl *buildingFlow) inputCost(snap *economy.MarketSnapshot) float64 {
	cost := 0.0
	for _, r := range fl.inputs {
		need := math.Abs(fl.def.Yield(r)) * fl.researchMul * fl.throttle
		cost += need * float64(snap.PriceOf(r))
	}
	return cost
}

// ApplyTaxation fills in the cost and tax side of a cleared market: operating,
// military and social-security costs, per-resource market taxes, and the
// welfare subsidy split. Tax income is added to the money delta.
func ApplyTaxation(m *MarketResult, f *social.Faction, units []*social.Unit, cat *catalog.Catalog, st Stability) {
	snap := m.Snapshot
	p := f.Policies

	// State buildings pay for what they actually received; private owners
	// pay for their full demand.
	var stateCost, privateCost float64
	for _, fl := range m.flows {
		if len(fl.inputs) == 0 || fl.tile.Private() {
			continue
		}
		stateCost += fl.inputCost(snap)
	}
	for _, r := range economy.TradableResources {
		rm := snap.Resources[r]
		privateCost += float64(rm.PrivateDemand) * float64(rm.Price)
	}
	for cls, demand := range m.privateDemand {
		c := 0.0
		for r, need := range demand {
			c += need * float64(snap.PriceOf(r))
		}
		snap.PrivateMaintenance[cls] += int64(math.Round(c))
	}
	stateCost += float64(m.conscripted*ConscriptFoodDraw) * float64(snap.PriceOf(economy.Food))
	if st.ProtestSeverity > 0 {
		stateCost *= 1 + ProtestCostRise*st.ProtestSeverity
		privateCost *= 1 + ProtestCostRise*st.ProtestSeverity
	}
	snap.OperatingCost = int64(math.Round(stateCost))
	snap.PrivateOperatingCost = int64(math.Round(privateCost))
	snap.MilitaryCost = MilitaryCost(units, f.ID, cat)

	// Market taxes on the state's share of traded profit.
	var taxed, income float64
	for _, r := range economy.TradableResources {
		rm := snap.Resources[r]
		price := float64(rm.Price)
		traded := min(rm.Supply, rm.Demand)
		profit := math.Max(0, float64(traded)*price)
		rate := p.MarketTaxRate(r)
		stateShare := 0.0
		if rm.Supply > 0 {
			stateShare = clamp01(float64(rm.StateSupply) / float64(rm.Supply))
		}
		rm.TaxRate = rate
		rm.Revenue = float64(rm.Supply) * price
		rm.Profit = profit
		rm.TaxedProfit = profit * (1 - rate) * stateShare
		rm.TaxIncome = profit * rate * stateShare
		taxed += rm.TaxedProfit
		income += rm.TaxIncome
	}
	snap.TaxedProfitTotal = taxed
	snap.TaxIncome = floorInt(income)
	m.Deltas[economy.Money] += snap.TaxIncome

	// Welfare is a share of this turn's money income.
	base := max(0, m.Deltas[economy.Money])
	welfare := floorInt(float64(base) * p.SocialSecurityLaw.Percent())
	services := floorInt(float64(base) * p.PublicServicePercent())
	snap.SocialSecurityCost = welfare + services
	snap.SocialSecuritySubsidy = economy.ApportionByClass(welfare, p.SocialSecurityLaw.Weights())
}

// MilitaryCost is the ceiling of the summed component upkeep of owner's units.
// Unknown regiments cost the default upkeep.
func MilitaryCost(units []*social.Unit, owner social.FactionID, cat *catalog.Catalog) int64 {
	total := 0.0
	for _, u := range units {
		if u == nil || u.Owner != owner {
			continue
		}
		for _, id := range u.Components {
			total += math.Max(0, cat.Regiment(id).Maintenance())
		}
	}
	return int64(math.Ceil(total))
}
