// Market clearing: aggregates tile yields into supply and demand, throttles
// input-starved buildings, and prices each tradable resource.
package engine

import (
	"math"

	"github.com/talgya/hexfront/internal/catalog"
	"github.com/talgya/hexfront/internal/economy"
	"github.com/talgya/hexfront/internal/social"
	"github.com/talgya/hexfront/internal/world"
)

// Market tuning.
const (
	BaseBuildPower     = 25
	ProtestIndustryCut = 0.1 // Industry lost per unit of protest severity
	MaxCivMultiplier   = 1.35
	ConscriptFoodDraw  = 10 // Food each barracks draws under mass conscription
	LaissezFaireMoney  = 150
	CooperativeMoney   = 50
)

// MarketInput is everything market clearing reads for one faction.
type MarketInput struct {
	Faction   *social.Faction
	Tiles     []*world.Tile // Owned tiles, in map order
	Catalog   *catalog.Catalog
	Research  ResearchProvider
	Stability Stability
}

// buildingFlow is one building's contribution to the market.
type buildingFlow struct {
	tile        *world.Tile
	def         *catalog.BuildingDefinition
	researchMul float64
	yields      map[economy.Resource]float64 // Effective, before throttling
	inputs      []economy.Resource
	throttle    float64 // gTotal against the published market
}

// MarketResult is a cleared market plus the per-building detail taxation needs.
type MarketResult struct {
	Snapshot *economy.MarketSnapshot
	Deltas   economy.Stockpile

	flows       []*buildingFlow
	conscripted int // Barracks drawing conscript food

	// Unthrottled input demand of private buildings, by investor class.
	privateDemand map[economy.Class]map[economy.Resource]float64
}

// CityThrottle returns the input throttle of the building on the tile keyed
// key, 1 when there is none.
func (m *MarketResult) CityThrottle(key string) float64 {
	for _, fl := range m.flows {
		if fl.tile.Coord.Key() == key {
			return fl.throttle
		}
	}
	return 1
}

// ClearMarket runs the fixed two-pass clearing for one faction. Pass one sums
// raw supply and demand to get each resource's ratio; pass two throttles every
// building by the ratios of its inputs and publishes the result.
func ClearMarket(in MarketInput) *MarketResult {
	res := &MarketResult{
		Snapshot:      economy.NewMarketSnapshot(),
		Deltas:        economy.NewStockpile(),
		privateDemand: map[economy.Class]map[economy.Resource]float64{},
	}
	if in.Research == nil {
		in.Research = NoResearch{}
	}
	p := in.Faction.Policies

	for _, t := range in.Tiles {
		def := in.Catalog.Building(t.Building)
		if def == nil {
			continue
		}
		mul := in.Research.Multiplier(in.Faction, def.ID)
		res.flows = append(res.flows, &buildingFlow{
			tile:        t,
			def:         def,
			researchMul: mul,
			yields:      effectiveYields(in, t, def, mul),
			inputs:      def.Inputs(),
			throttle:    1,
		})
		if def.ID == catalog.Barracks && p.ConscriptionLaw == economy.MassConscription {
			res.conscripted++
		}
	}

	// Pass 1: raw aggregates.
	rawSupply := map[economy.Resource]float64{}
	rawDemand := map[economy.Resource]float64{}
	for _, fl := range res.flows {
		for r, v := range fl.yields {
			if !r.Tradable() {
				continue
			}
			if v > 0 {
				rawSupply[r] += v
			} else {
				rawDemand[r] -= v
			}
		}
	}
	rawDemand[economy.Food] += float64(res.conscripted * ConscriptFoodDraw)
	ratio := map[economy.Resource]float64{}
	for _, r := range economy.TradableResources {
		ratio[r] = economy.Ratio(floorInt(rawSupply[r]), floorInt(rawDemand[r]))
	}

	// Pass 2: throttled output.
	supply := map[economy.Resource]float64{}
	stateSupply := map[economy.Resource]float64{}
	demand := map[economy.Resource]float64{}
	stateDemand := map[economy.Resource]float64{}
	flows := map[economy.Resource]float64{}
	for _, fl := range res.flows {
		fl.throttle = throttleFor(fl.inputs, ratio)
		private := fl.tile.Private()
		investor, classed := fl.tile.InvestorClass()
		for r, v := range fl.yields {
			if !r.Tradable() {
				flows[r] += v
				continue
			}
			if v > 0 {
				supply[r] += v * fl.throttle
				if !private {
					stateSupply[r] += v * fl.throttle
				}
			} else if v < 0 {
				demand[r] -= v
				if !private {
					stateDemand[r] -= v
				} else if classed {
					if res.privateDemand[investor] == nil {
						res.privateDemand[investor] = map[economy.Resource]float64{}
					}
					res.privateDemand[investor][r] -= v
				}
			}
		}
	}
	draft := float64(res.conscripted * ConscriptFoodDraw)
	demand[economy.Food] += draft
	stateDemand[economy.Food] += draft

	snap := res.Snapshot
	for _, r := range economy.TradableResources {
		rm := snap.Resources[r]
		rm.Supply = floorInt(supply[r])
		rm.StateSupply = min(rm.Supply, floorInt(stateSupply[r]))
		rm.PrivateSupply = rm.Supply - rm.StateSupply
		rm.Demand = floorInt(demand[r])
		rm.StateDemand = min(rm.Demand, floorInt(stateDemand[r]))
		rm.PrivateDemand = rm.Demand - rm.StateDemand
		rm.Ratio = ratio[r]
		rm.Throttle = economy.ThrottleFactor(ratio[r])
		rm.Price = economy.Price(r, rm.Supply, rm.Demand, in.Faction.Inflation)
		res.Deltas[r] = rm.Supply
	}

	st := in.Stability
	if st.ProtestSeverity > 0 {
		flows[economy.Industry] *= 1 - ProtestIndustryCut*st.ProtestSeverity
	}
	flows[economy.Money] *= st.Mul
	flows[economy.Civilization] *= math.Min(MaxCivMultiplier, st.Mul+st.CivMicro)
	for r, v := range flows {
		if r == economy.Pop {
			continue
		}
		res.Deltas[r] = floorInt(v)
	}

	snap.BuildPowerMax = buildPowerMax(res.flows, snap)
	return res
}

// effectiveYields applies research, special building rules, and law modifiers
// to a building's base yields.
func effectiveYields(in MarketInput, t *world.Tile, def *catalog.BuildingDefinition, mul float64) map[economy.Resource]float64 {
	p := in.Faction.Policies
	out := make(map[economy.Resource]float64, len(def.Yields))
	for _, r := range def.YieldKeys() {
		base := def.Yields[r]
		eff := base
		if r == economy.Civilization && def.AdminCivBonusPerLevel > 0 {
			lvl := max(0, in.Research.Level(in.Faction, "administration"))
			eff += math.Max(0, math.Floor(def.AdminCivBonusPerLevel)*float64(lvl))
		}
		if eff > 0 {
			eff *= mul
		}
		if r == economy.Energy && base > 0 && (def.EnergyTerrainBonus > 0 || def.EnergyCapRef != "") {
			eff = renewableEnergy(in, t, def, base, mul)
		}

		switch r {
		case economy.Civilization:
			eff *= 1 + civilizationBonus(p)
		case economy.Science:
			eff *= 1 + scienceBonus(p) + in.Stability.SciMicro
		case economy.Money:
			if def.ID == catalog.City {
				switch p.EconomySystem {
				case economy.LaissezFaire:
					eff += LaissezFaireMoney
				case economy.Cooperative:
					eff += CooperativeMoney
				}
			}
		}
		out[r] = eff
	}
	return out
}

// renewableEnergy adds the desert/sea bonus and caps output at the referenced
// plant's researched capacity. A missing reference leaves it uncapped.
func renewableEnergy(in MarketInput, t *world.Tile, def *catalog.BuildingDefinition, base, mul float64) float64 {
	bonus := 0.0
	if t.Terrain.EnergyBonus() {
		bonus = math.Max(0, def.EnergyTerrainBonus)
	}
	capacity := math.Inf(1)
	if ref := in.Catalog.Building(def.EnergyCapRef); ref != nil {
		capacity = math.Max(0, ref.Yield(economy.Energy)*in.Research.Multiplier(in.Faction, ref.ID))
	}
	return math.Min((base+bonus)*mul, capacity)
}

func civilizationBonus(p economy.Policies) float64 {
	b := 0.0
	switch p.GovStructure {
	case economy.Monarchy:
		b += 1.0
	case economy.PresidentialRepublic:
		b += 0.5
	}
	switch p.SpeechLaw {
	case economy.IllegalDissent:
		b += 1.0
	case economy.PressCensorship:
		b += 0.25
	}
	return b
}

func scienceBonus(p economy.Policies) float64 {
	b := 0.0
	if p.EducationLaw == economy.PrivateSchool || p.EducationLaw == economy.PublicSchool {
		b += 0.25
	}
	if p.SpeechLaw == economy.FreeSpeech {
		b += 0.15
	}
	return b
}

// throttleFor averages g(R) over a building's required inputs. A building with
// no tradable inputs runs at full output.
func throttleFor(inputs []economy.Resource, ratio map[economy.Resource]float64) float64 {
	if len(inputs) == 0 {
		return 1
	}
	sum := 0.0
	for _, r := range inputs {
		sum += economy.ThrottleFactor(ratio[r])
	}
	return sum / float64(len(inputs))
}

// buildPowerMax is the base build power plus construction bonuses, throttled
// by the published market.
func buildPowerMax(flows []*buildingFlow, snap *economy.MarketSnapshot) int64 {
	bonus := 0.0
	for _, fl := range flows {
		b := math.Floor(fl.def.BuildPowerCapBonus)
		if b <= 0 {
			continue
		}
		ratio := map[economy.Resource]float64{}
		for _, r := range fl.inputs {
			rm := snap.Resources[r]
			ratio[r] = economy.Ratio(rm.Supply, rm.Demand)
		}
		bonus += b * throttleFor(fl.inputs, ratio)
	}
	return max(0, floorInt(BaseBuildPower+bonus))
}

func floorInt(v float64) int64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int64(math.Floor(v))
}
