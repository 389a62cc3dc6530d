package catalog

// Research steps add this much output per step to the matching building.
const ResearchStepBonus = 0.25

// TechStep is one researchable step in a tree.
type TechStep struct {
	ID     string   `json:"id" toml:"id"`
	Name   string   `json:"name" toml:"name"`
	Cost   int64    `json:"cost" toml:"cost"`                         // Science required
	Chain  *bool    `json:"chain,omitempty" toml:"chain"`             // nil/true: requires the previous step
	Prereq []string `json:"prereq,omitempty" toml:"prereq,omitempty"` // Steps from other trees
}

// Chained reports whether the step requires its predecessor.
func (s TechStep) Chained() bool {
	return s.Chain == nil || *s.Chain
}

// TechCategory is a research tree. Trees keyed by a building id boost that
// building's positive yields.
type TechCategory struct {
	Key   string     `json:"key" toml:"-"`
	Name  string     `json:"name" toml:"name"`
	Steps []TechStep `json:"steps" toml:"steps"`
}

// Level counts how many steps of the tree are in researched.
func (c *TechCategory) Level(researched map[string]bool) int {
	if c == nil {
		return 0
	}
	n := 0
	for _, s := range c.Steps {
		if researched[s.ID] {
			n++
		}
	}
	return n
}

// Multiplier is the output multiplier a building gets from its own tree.
func (c *TechCategory) Multiplier(researched map[string]bool) float64 {
	return 1 + float64(c.Level(researched))*ResearchStepBonus
}

func productionTree(key, name string, costs ...int64) *TechCategory {
	cat := &TechCategory{Key: key, Name: name}
	for i, cost := range costs {
		cat.Steps = append(cat.Steps, TechStep{
			ID:   key + "_" + string(rune('1'+i)),
			Name: name + " " + roman[i],
			Cost: cost,
		})
	}
	return cat
}

var roman = []string{"I", "II", "III", "IV", "V", "VI"}

func unchained() *bool {
	f := false
	return &f
}

func defaultTechs() map[string]*TechCategory {
	cats := []*TechCategory{
		productionTree(City, "Urban Planning", 50, 150, 400, 1000),
		productionTree(IndustryPlant, "Machine Tools", 80, 200, 500, 1200),
		productionTree(Farm, "Agronomy", 40, 120, 300, 800),
		productionTree(Mine, "Excavation", 40, 120, 300, 800),
		productionTree(PreciousMine, "Refining Process", 100, 300, 700, 1500),
		productionTree(OilField, "Oil Extraction", 80, 200, 500, 1200),
		productionTree(Refinery, "Distillation", 100, 260, 600, 1400),
		productionTree(FossilPower, "Combustion Efficiency", 90, 240, 520, 1250),
		productionTree(RenewablePower, "Panel Efficiency", 80, 220, 500, 1200),
		productionTree(CivilianFactory, "Light Industry", 80, 200, 480, 1200),
		productionTree(ConstructionDept, "Project Management", 90, 240, 520, 1250),
		productionTree("administration", "Administrative Efficiency", 60, 160, 360, 800),
		{Key: "infantry", Name: "Infantry Organization", Steps: []TechStep{
			{ID: "infantry_1", Name: "Motorized Infantry", Cost: 200},
			{ID: "infantry_2", Name: "Mechanized Infantry", Cost: 350},
			{ID: "infantry_3", Name: "Armored Infantry", Cost: 500},
			{ID: "infantry_4", Name: "Special Forces", Cost: 450},
		}},
		{Key: "armor", Name: "Armor Organization", Steps: []TechStep{
			{ID: "armor_1", Name: "Medium Tank", Cost: 300},
			{ID: "armor_2", Name: "Heavy Tank", Cost: 600},
			{ID: "armor_3", Name: "Main Battle Tank", Cost: 1000},
			{ID: "armor_4", Name: "Super-Heavy Tank", Cost: 1500},
		}},
		{Key: "artillery", Name: "Artillery Organization", Steps: []TechStep{
			{ID: "artillery_howitz", Name: "Howitzer", Cost: 180, Chain: unchained()},
			{ID: "artillery_at", Name: "Anti-Tank Gun", Cost: 220, Chain: unchained()},
			{ID: "artillery_aa", Name: "Anti-Air Gun", Cost: 200, Chain: unchained()},
			{ID: "artillery_rocket", Name: "Rocket Artillery", Cost: 260, Chain: unchained()},
		}},
		{Key: "infantry_sf", Name: "Special Forces Training", Steps: []TechStep{
			{ID: "infantry_sf_river", Name: "River Crossing", Cost: 350, Chain: unchained(), Prereq: []string{"infantry_4"}},
			{ID: "infantry_sf_amphib", Name: "Amphibious Assault", Cost: 420, Chain: unchained(), Prereq: []string{"infantry_4"}},
		}},
	}

	out := make(map[string]*TechCategory, len(cats))
	for _, c := range cats {
		out[c.Key] = c
	}
	return out
}
