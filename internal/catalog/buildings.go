package catalog

import (
	"sort"

	"github.com/talgya/hexfront/internal/economy"
)

// Well-known building ids referenced by game rules.
const (
	City             = "city"
	IndustryPlant    = "industry"
	Barracks         = "barracks"
	Lab              = "lab"
	Farm             = "farm"
	Mine             = "mine"
	PreciousMine     = "precious_mine"
	OilField         = "oil_field"
	Refinery         = "refinery"
	FossilPower      = "fossil_power"
	RenewablePower   = "renewable_power"
	CivilianFactory  = "civilian_factory"
	ConstructionDept = "construction_dept"
	Airbase          = "airbase"
	NavalBase        = "naval_base"
	AdminCenter      = "admin_center"
)

// BuildingDefinition describes what a building produces and consumes each turn.
// Positive yields are output, negative yields are input requirements.
type BuildingDefinition struct {
	ID     string                       `json:"id" toml:"-"`
	Name   string                       `json:"name" toml:"name"`
	Yields map[economy.Resource]float64 `json:"yields" toml:"yields"`
	Cost   economy.Stockpile            `json:"cost" toml:"cost"` // Construction cost; pop draws from a district

	AdminCivBonusPerLevel float64 `json:"admin_civ_bonus_per_level,omitempty" toml:"admin_civ_bonus_per_level"` // Civilization per administration level
	EnergyTerrainBonus    float64 `json:"energy_terrain_bonus,omitempty" toml:"energy_terrain_bonus"`           // Extra energy on desert and sea tiles
	EnergyCapRef          string  `json:"energy_cap_ref,omitempty" toml:"energy_cap_ref"`                       // Building whose energy output caps this one
	BuildPowerCapBonus    float64 `json:"build_power_cap_bonus,omitempty" toml:"build_power_cap_bonus"`
}

// Yield returns the base yield for r, 0 when absent.
func (b *BuildingDefinition) Yield(r economy.Resource) float64 {
	if b == nil {
		return 0
	}
	return b.Yields[r]
}

// Inputs returns the tradable resources this building requires, sorted.
func (b *BuildingDefinition) Inputs() []economy.Resource {
	if b == nil {
		return nil
	}
	var in []economy.Resource
	for r, v := range b.Yields {
		if v < 0 && r.Tradable() {
			in = append(in, r)
		}
	}
	sort.Slice(in, func(i, j int) bool { return in[i] < in[j] })
	return in
}

// YieldKeys returns every resource with a yield entry, sorted.
func (b *BuildingDefinition) YieldKeys() []economy.Resource {
	if b == nil {
		return nil
	}
	keys := make([]economy.Resource, 0, len(b.Yields))
	for r := range b.Yields {
		keys = append(keys, r)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func defaultBuildings() map[string]*BuildingDefinition {
	type Y = map[economy.Resource]float64
	type C = economy.Stockpile
	const (
		money    = economy.Money
		food     = economy.Food
		metal    = economy.Metal
		precious = economy.Precious
		consumer = economy.Consumer
		energy   = economy.Energy
		oil      = economy.Oil
		fuel     = economy.Fuel
		industry = economy.Industry
		pop      = economy.Pop
		science  = economy.Science
		civ      = economy.Civilization
	)

	defs := []*BuildingDefinition{
		{ID: City, Name: "City",
			Yields: Y{money: 200, civ: 4, food: -5, metal: -2, consumer: -4, energy: -6},
			Cost:   C{money: 800, industry: 200, metal: 80, food: 120}},
		{ID: IndustryPlant, Name: "Military Factory",
			Yields: Y{industry: 150, metal: -10, precious: -2, consumer: -6, energy: -6},
			Cost:   C{money: 1000, metal: 120, pop: 40}},
		{ID: Barracks, Name: "Barracks",
			Yields: Y{consumer: -2, energy: -3},
			Cost:   C{money: 500, metal: 60, food: 80, industry: 100, pop: 30}},
		{ID: Lab, Name: "Research Lab",
			Yields: Y{science: 20, money: -40, consumer: -3, energy: -4},
			Cost:   C{money: 600, food: 60, metal: 50, precious: 30, industry: 300, pop: 40}},
		{ID: Farm, Name: "Farm",
			Yields: Y{food: 15, consumer: -2, energy: -2},
			Cost:   C{money: 300, metal: 20, food: 10, pop: 30}},
		{ID: Mine, Name: "Mine",
			Yields: Y{metal: 12, consumer: -2, energy: -3},
			Cost:   C{money: 400, metal: 80, industry: 60, pop: 30}},
		{ID: PreciousMine, Name: "Precious Metal Mine",
			Yields: Y{precious: 8, money: 50, consumer: -3, energy: -4},
			Cost:   C{money: 1200, metal: 100, industry: 120, pop: 40}},
		{ID: OilField, Name: "Oil Field",
			Yields: Y{oil: 12, consumer: -2, energy: -3},
			Cost:   C{money: 800, metal: 80, industry: 120, pop: 30}},
		{ID: Refinery, Name: "Refinery",
			Yields: Y{oil: -10, fuel: 10, consumer: -2, energy: -5},
			Cost:   C{money: 900, metal: 100, industry: 160, pop: 40}},
		{ID: FossilPower, Name: "Fossil Power Plant",
			Yields: Y{oil: -12, energy: 26, consumer: -3},
			Cost:   C{money: 900, metal: 120, industry: 160, pop: 40}},
		{ID: RenewablePower, Name: "Renewable Power Plant",
			Yields:             Y{energy: 10, consumer: -5},
			Cost:               C{money: 800, metal: 80, industry: 140, pop: 35},
			EnergyTerrainBonus: 4,
			EnergyCapRef:       FossilPower},
		{ID: CivilianFactory, Name: "Civilian Factory",
			Yields: Y{consumer: 12, metal: -6, energy: -4},
			Cost:   C{money: 700, metal: 60, industry: 120, pop: 35}},
		{ID: ConstructionDept, Name: "Construction Department",
			Yields:             Y{metal: -6, consumer: -6, energy: -3},
			Cost:               C{money: 600, metal: 60, industry: 120, pop: 30},
			BuildPowerCapBonus: 30},
		{ID: Airbase, Name: "Airbase",
			Yields: Y{money: -60, industry: -30, consumer: -4, energy: -5},
			Cost:   C{money: 900, industry: 200, precious: 40, metal: 100, pop: 50}},
		{ID: NavalBase, Name: "Naval Base",
			Yields: Y{consumer: -3, energy: -4},
			Cost:   C{money: 800, industry: 160, metal: 80, pop: 40}},
		{ID: AdminCenter, Name: "Administration Center",
			Yields:                Y{civ: 2, consumer: -2, energy: -2},
			Cost:                  C{money: 500, industry: 120, metal: 40, pop: 20},
			AdminCivBonusPerLevel: 1},
	}

	out := make(map[string]*BuildingDefinition, len(defs))
	for _, d := range defs {
		out[d.ID] = d
	}
	return out
}
