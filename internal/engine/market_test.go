package engine

import (
	"math"
	"testing"

	"github.com/talgya/hexfront/internal/catalog"
	"github.com/talgya/hexfront/internal/economy"
	"github.com/talgya/hexfront/internal/world"
)

func clearFor(sim *Simulation, id uint64, st Stability) *MarketResult {
	f := sim.Faction(id)
	return ClearMarket(MarketInput{
		Faction:   f,
		Tiles:     sim.WorldMap.OwnedBy(f.ID),
		Catalog:   sim.Catalog,
		Research:  sim.Research,
		Stability: st,
	})
}

func TestClearMarketThrottlesStarvedBuildings(t *testing.T) {
	sim, f := testSim(t)
	sim.WorldMap.Get(world.HexCoord{Q: 1}).Building = catalog.Farm

	m := clearFor(sim, f.ID, Stability{Mul: 1})
	food := m.Snapshot.Resources[economy.Food]
	// The farm starves for consumer goods and energy: g(0) on both inputs.
	if food.Supply != 3 || food.Demand != 5 {
		t.Errorf("food supply/demand = %d/%d, want 3/5", food.Supply, food.Demand)
	}
	if math.Abs(food.Ratio-3) > 1e-9 {
		t.Errorf("food ratio %v, want 3", food.Ratio)
	}
	// City inputs: food g=1, metal, consumer and energy g=0.25.
	if got := m.CityThrottle(world.HexCoord{}.Key()); math.Abs(got-0.4375) > 1e-9 {
		t.Errorf("city throttle %v, want 0.4375", got)
	}
	// Non-tradable output ignores the throttle.
	if m.Deltas[economy.Money] != 200 {
		t.Errorf("money delta %d, want 200", m.Deltas[economy.Money])
	}
	if m.Deltas[economy.Food] != food.Supply {
		t.Errorf("food delta %d, want %d", m.Deltas[economy.Food], food.Supply)
	}
}

func TestStarvedCityKeepsNonTradableOutput(t *testing.T) {
	sim, f := testSim(t)

	m := clearFor(sim, f.ID, Stability{Mul: 1})
	if got := m.CityThrottle(world.HexCoord{}.Key()); got != economy.MinThrottle {
		t.Fatalf("city throttle %v, want %v", got, economy.MinThrottle)
	}
	// Civilization 4 × 2.25 under monarchy with press censorship.
	if m.Deltas[economy.Money] != 200 || m.Deltas[economy.Civilization] != 9 {
		t.Errorf("money/civilization = %d/%d, want 200/9", m.Deltas[economy.Money], m.Deltas[economy.Civilization])
	}

	m = clearFor(sim, f.ID, Stability{Mul: 1.25})
	if m.Deltas[economy.Money] != 250 {
		t.Errorf("money under mul 1.25 = %d, want 250", m.Deltas[economy.Money])
	}
}

func TestClearMarketPricesAndBounds(t *testing.T) {
	sim, f := testSim(t)
	layout := map[world.HexCoord]string{
		{Q: 1}:        catalog.Farm,
		{Q: -1}:       catalog.Farm,
		{R: 1}:        catalog.RenewablePower,
		{R: -1}:       catalog.CivilianFactory,
		{Q: 1, R: -1}: catalog.Lab,
	}
	for c, b := range layout {
		sim.WorldMap.Get(c).Building = b
	}
	f.Inflation = 2

	m := clearFor(sim, f.ID, Stability{Mul: 1})
	for _, r := range economy.TradableResources {
		rm := m.Snapshot.Resources[r]
		if rm.Supply < 0 || rm.Demand < 0 {
			t.Errorf("%s negative flow %d/%d", r, rm.Supply, rm.Demand)
		}
		if rm.StateSupply+rm.PrivateSupply != rm.Supply {
			t.Errorf("%s state+private supply != supply", r)
		}
		if rm.Throttle < economy.MinThrottle || rm.Throttle > 1 {
			t.Errorf("%s throttle %v out of range", r, rm.Throttle)
		}
		if want := economy.Price(r, rm.Supply, rm.Demand, 2); rm.Price != want {
			t.Errorf("%s price %d, want %d", r, rm.Price, want)
		}
	}
	if m.Snapshot.BuildPowerMax != BaseBuildPower {
		t.Errorf("build power %d, want %d", m.Snapshot.BuildPowerMax, BaseBuildPower)
	}
}

func TestPrivateOutputIsUntaxed(t *testing.T) {
	sim, f := testSim(t)
	farm := sim.WorldMap.Get(world.HexCoord{Q: 1})
	farm.Building = catalog.Farm
	farm.Ownership = world.OwnershipPrivate
	farm.Investor = economy.Labor
	f.Policies.MarketTaxRates[economy.Food] = 0.2

	m := clearFor(sim, f.ID, Stability{Mul: 1})
	ApplyTaxation(m, f, nil, sim.Catalog, Stability{Mul: 1})
	food := m.Snapshot.Resources[economy.Food]
	if food.StateSupply != 0 || food.PrivateSupply != food.Supply {
		t.Fatalf("food state/private = %d/%d", food.StateSupply, food.PrivateSupply)
	}
	if food.TaxIncome != 0 || food.TaxedProfit != 0 {
		t.Errorf("private food taxed: income %v taxed %v", food.TaxIncome, food.TaxedProfit)
	}
	// Starved inputs still cost the full demand: 2 consumer + 2 energy at 5.
	consumer, energy := m.Snapshot.PriceOf(economy.Consumer), m.Snapshot.PriceOf(economy.Energy)
	if consumer != 5 || energy != 5 {
		t.Fatalf("consumer/energy price = %d/%d, want 5/5", consumer, energy)
	}
	if got := m.Snapshot.PrivateMaintenance[economy.Labor]; got != 20 {
		t.Errorf("labor maintenance %d, want 20", got)
	}
	for _, c := range []economy.Class{economy.Elite, economy.Expert, economy.Subsistence} {
		if m.Snapshot.PrivateMaintenance[c] != 0 {
			t.Errorf("%s charged %d maintenance", c, m.Snapshot.PrivateMaintenance[c])
		}
	}
	if m.Snapshot.PrivateOperatingCost != 20 {
		t.Errorf("private operating cost %d, want 20", m.Snapshot.PrivateOperatingCost)
	}
}

func TestMarketTaxOnStateProfit(t *testing.T) {
	sim, f := testSim(t)
	sim.WorldMap.Get(world.HexCoord{Q: 1}).Building = catalog.Farm
	f.Policies.MarketTaxRates[economy.Food] = 0.9 // capped at 0.2 under consumption tax

	m := clearFor(sim, f.ID, Stability{Mul: 1})
	before := m.Deltas[economy.Money]
	ApplyTaxation(m, f, nil, sim.Catalog, Stability{Mul: 1})

	food := m.Snapshot.Resources[economy.Food]
	if food.TaxRate != 0.2 {
		t.Errorf("tax rate %v, want the 0.2 cap", food.TaxRate)
	}
	profit := float64(min(food.Supply, food.Demand) * food.Price)
	if math.Abs(food.TaxIncome-profit*0.2) > 1e-9 || math.Abs(food.TaxedProfit-profit*0.8) > 1e-9 {
		t.Errorf("tax income %v taxed %v for profit %v", food.TaxIncome, food.TaxedProfit, profit)
	}
	if m.Deltas[economy.Money] != before+m.Snapshot.TaxIncome {
		t.Errorf("money delta %d, want %d", m.Deltas[economy.Money], before+m.Snapshot.TaxIncome)
	}
}

func TestSocialSecurityCost(t *testing.T) {
	sim, f := testSim(t)
	f.Policies.SocialSecurityLaw = economy.Pension
	f.Policies.HealthLaw = economy.PublicInsurance

	m := clearFor(sim, f.ID, Stability{Mul: 1})
	ApplyTaxation(m, f, nil, sim.Catalog, Stability{Mul: 1})
	base := m.Deltas[economy.Money]
	welfare := int64(math.Floor(float64(base) * 0.15))
	services := int64(math.Floor(float64(base) * 0.03))
	if m.Snapshot.SocialSecurityCost != welfare+services {
		t.Errorf("social security %d, want %d", m.Snapshot.SocialSecurityCost, welfare+services)
	}
	if m.Snapshot.SocialSecuritySubsidy.Total() != welfare {
		t.Errorf("subsidy %d, want %d", m.Snapshot.SocialSecuritySubsidy.Total(), welfare)
	}
}

func TestProtestCutsIndustry(t *testing.T) {
	sim, f := testSim(t)
	sim.WorldMap.Get(world.HexCoord{Q: 1}).Building = catalog.IndustryPlant

	calm := clearFor(sim, f.ID, Stability{Mul: 1})
	riot := clearFor(sim, f.ID, Stability{Mul: 1, ProtestSeverity: 1})
	if riot.Deltas[economy.Industry] >= calm.Deltas[economy.Industry] {
		t.Errorf("industry under protest %d, calm %d", riot.Deltas[economy.Industry], calm.Deltas[economy.Industry])
	}
}
