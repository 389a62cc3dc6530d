package catalog

import "github.com/talgya/hexfront/internal/economy"

// DefaultMaintCost applies to a regiment with no maintenance figure.
const DefaultMaintCost = 1.0

// RegimentType is one component a military unit can be built from.
type RegimentType struct {
	ID        string            `json:"id" toml:"-"`
	Name      string            `json:"name" toml:"name"`
	MaintCost *float64          `json:"maint_cost,omitempty" toml:"maint_cost"` // Money per turn; nil means DefaultMaintCost
	Cost      economy.Stockpile `json:"cost" toml:"cost"`
	HP        int               `json:"hp" toml:"hp"`
	Air       bool              `json:"air,omitempty" toml:"air"` // Refits at airbases instead of cities/barracks
	Naval     bool              `json:"naval,omitempty" toml:"naval"`
}

// Maintenance returns the per-turn upkeep, falling back to DefaultMaintCost.
func (r *RegimentType) Maintenance() float64 {
	if r == nil || r.MaintCost == nil {
		return DefaultMaintCost
	}
	return *r.MaintCost
}

func maint(v float64) *float64 { return &v }

func defaultRegiments() map[string]*RegimentType {
	type C = economy.Stockpile
	const (
		money    = economy.Money
		industry = economy.Industry
		pop      = economy.Pop
	)

	regs := []*RegimentType{
		{ID: "INFANTRY", Name: "Infantry", MaintCost: maint(0.5), HP: 150, Cost: C{money: 75, pop: 50}},
		{ID: "MOTORIZED", Name: "Motorized Infantry", MaintCost: maint(0.6), HP: 135, Cost: C{money: 90, industry: 40, pop: 50}},
		{ID: "MECHANIZED", Name: "Mechanized Infantry", MaintCost: maint(0.75), HP: 135, Cost: C{money: 110, industry: 110, pop: 50}},
		{ID: "ARMORED_INFANTRY", Name: "Armored Infantry", MaintCost: maint(1), HP: 120, Cost: C{money: 120, industry: 140, pop: 50}},
		{ID: "SPECIAL_FORCES", Name: "Special Forces", MaintCost: maint(2), HP: 120, Cost: C{money: 225, industry: 150, pop: 50}},
		{ID: "ARTILLERY", Name: "Infantry Gun", MaintCost: maint(0.75), HP: 3, Cost: C{money: 75, industry: 100, pop: 20}},
		{ID: "HOWITZER", Name: "Howitzer", HP: 3, Cost: C{money: 120, industry: 140, pop: 20}},
		{ID: "AT_GUN", Name: "Anti-Tank Gun", HP: 3, Cost: C{money: 130, industry: 160, pop: 20}},
		{ID: "AA_GUN", Name: "Anti-Air Gun", HP: 3, Cost: C{money: 110, industry: 130, pop: 20}},
		{ID: "ROCKET_ARTILLERY", Name: "Rocket Artillery", MaintCost: maint(1.25), HP: 3, Cost: C{money: 150, industry: 180, pop: 20}},
		{ID: "TANK_LIGHT", Name: "Light Tank", HP: 2, Cost: C{money: 150, industry: 200, pop: 50}},
		{ID: "TANK_MEDIUM", Name: "Medium Tank", MaintCost: maint(1.5), HP: 3, Cost: C{money: 200, industry: 300, pop: 50}},
		{ID: "TANK_HEAVY", Name: "Heavy Tank", MaintCost: maint(2), HP: 4, Cost: C{money: 250, industry: 500, pop: 50}},
		{ID: "TANK_MBT", Name: "Main Battle Tank", MaintCost: maint(2), HP: 5, Cost: C{money: 250, industry: 400, pop: 50}},
		{ID: "TANK_SUPER", Name: "Super-Heavy Tank", MaintCost: maint(3), HP: 10, Cost: C{money: 500, industry: 500, pop: 50}},
		{ID: "CAS", Name: "Close Air Support", HP: 30, Air: true, Cost: C{money: 300, industry: 250, pop: 50}},
		{ID: "FIGHTER", Name: "Fighter", HP: 60, Air: true, Cost: C{money: 320, industry: 260, pop: 50}},
		{ID: "SUBMARINE", Name: "Submarine", HP: 90, Naval: true, Cost: C{money: 180, industry: 160, pop: 40}},
		{ID: "FRIGATE", Name: "Frigate", HP: 100, Naval: true, Cost: C{money: 220, industry: 200, pop: 45}},
		{ID: "DESTROYER", Name: "Destroyer", HP: 125, Naval: true, Cost: C{money: 260, industry: 220, pop: 45}},
		{ID: "BATTLESHIP", Name: "Battleship", MaintCost: maint(5), HP: 240, Naval: true, Cost: C{money: 700, industry: 600, pop: 70}},
		{ID: "CARRIER", Name: "Aircraft Carrier", MaintCost: maint(20), HP: 10, Naval: true, Cost: C{money: 1200, industry: 1000, pop: 80}},
	}

	out := make(map[string]*RegimentType, len(regs))
	for _, r := range regs {
		out[r.ID] = r
	}
	return out
}
