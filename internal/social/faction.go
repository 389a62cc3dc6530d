// Package social provides factions, their economies, districts, wars, and armies.
package social

import (
	"sort"

	"github.com/talgya/hexfront/internal/economy"
	"github.com/talgya/hexfront/internal/world"
)

// FactionID is a unique identifier for a faction. 0 means unowned.
type FactionID = uint64

// Faction is one player or AI power and its whole economy.
type Faction struct {
	ID      FactionID      `json:"id"`
	Name    string         `json:"name"`
	Capital world.HexCoord `json:"capital"`

	Resources economy.Stockpile `json:"resources"`
	Policies  economy.Policies  `json:"policies"`

	// Per-class running surplus and the class totals observed last turn
	// (compared against current totals for migration).
	Surplus         economy.ByClass `json:"surplus"`
	LastClassTotals economy.ByClass `json:"last_class_totals"`

	// Pre-war stability average; recovery climbs back toward it after peace.
	StabilityBaseline *int    `json:"stability_baseline,omitempty"`
	Inflation         float64 `json:"inflation"` // 1–12

	// Optional overrides. When nil the world-backed providers derive them.
	Satisfaction   economy.ClassScores `json:"satisfaction,omitempty"`
	PowerShares    economy.ClassScores `json:"power_shares,omitempty"`
	SurplusWeights economy.ClassScores `json:"surplus_weights,omitempty"`

	// Research
	Researched       map[string]bool  `json:"researched"`
	ActiveTech       string           `json:"active_tech,omitempty"`
	ResearchProgress map[string]int64 `json:"research_progress,omitempty"`

	Wars []WarTarget `json:"wars,omitempty"`

	// Last computed turn, for readers.
	Deltas economy.Stockpile `json:"deltas"`
	Ledger *economy.Ledger   `json:"-"`
}

// NewFaction creates a faction with empty stockpiles and default policies.
func NewFaction(id FactionID, name string) *Faction {
	return &Faction{
		ID:               id,
		Name:             name,
		Resources:        economy.NewStockpile(),
		Policies:         economy.DefaultPolicies(),
		Surplus:          economy.NewByClass(),
		LastClassTotals:  economy.NewByClass(),
		Inflation:        1,
		Researched:       make(map[string]bool),
		ResearchProgress: make(map[string]int64),
		Deltas:           economy.NewStockpile(),
	}
}

// Normalize fills nil maps left by decoding so the engine can write freely.
func (f *Faction) Normalize() {
	if f.Resources == nil {
		f.Resources = economy.NewStockpile()
	}
	if f.Surplus == nil {
		f.Surplus = economy.NewByClass()
	}
	if f.LastClassTotals == nil {
		f.LastClassTotals = economy.NewByClass()
	}
	if f.Researched == nil {
		f.Researched = make(map[string]bool)
	}
	if f.ResearchProgress == nil {
		f.ResearchProgress = make(map[string]int64)
	}
	if f.Deltas == nil {
		f.Deltas = economy.NewStockpile()
	}
	if f.Policies.MarketTaxRates == nil {
		f.Policies.MarketTaxRates = map[economy.Resource]float64{}
	}
	if f.Inflation < economy.MinInflation {
		f.Inflation = economy.MinInflation
	}
}

// SurplusWeightsOrDefault returns the class surplus weights in force.
func (f *Faction) SurplusWeightsOrDefault() economy.ClassScores {
	if len(f.SurplusWeights) == 0 {
		return economy.DefaultSurplusWeights
	}
	return f.SurplusWeights
}

// ResearchedTechs returns researched step ids, sorted.
func (f *Faction) ResearchedTechs() []string {
	ids := make([]string, 0, len(f.Researched))
	for id, ok := range f.Researched {
		if ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// SeedFactions creates n starting factions with distinct law sets.
func SeedFactions(n int) []*Faction {
	templates := []struct {
		name string
		tune func(p *economy.Policies)
	}{
		{"The Crown", func(p *economy.Policies) {
			p.GovStructure = economy.Monarchy
			p.SpeechLaw = economy.PressCensorship
		}},
		{"Merchant Republic", func(p *economy.Policies) {
			p.GovStructure = economy.PresidentialRepublic
			p.EconomySystem = economy.LaissezFaire
			p.SpeechLaw = economy.FreeSpeech
			p.TaxLaw = economy.ProgressiveTax
			p.EducationLaw = economy.PrivateSchool
		}},
		{"People's Commune", func(p *economy.Policies) {
			p.GovStructure = economy.ParliamentaryRepublic
			p.EconomySystem = economy.Cooperative
			p.HealthLaw = economy.PublicInsurance
			p.EducationLaw = economy.PublicSchool
			p.SocialSecurityLaw = economy.Pension
		}},
		{"Iron Directorate", func(p *economy.Policies) {
			p.GovStructure = economy.Monarchy
			p.SpeechLaw = economy.IllegalDissent
			p.ConscriptionLaw = economy.MassConscription
			p.TaxLaw = economy.HeadTax
			p.HeadTaxPerClass = economy.ClassScores{economy.Elite: 2, economy.Expert: 1, economy.Labor: 1}
		}},
		{"Union of Guilds", func(p *economy.Policies) {
			p.GovStructure = economy.PresidentialRepublic
			p.TaxLaw = economy.ProportionalTax
			p.SurplusTaxPerClass = economy.ClassScores{economy.Elite: 0.1, economy.Expert: 0.1, economy.Labor: 0.1}
			p.SocialSecurityLaw = economy.WageSubsidy
		}},
	}

	factions := make([]*Faction, 0, n)
	for i := 0; i < n; i++ {
		t := templates[i%len(templates)]
		name := t.name
		if i >= len(templates) {
			name = t.name + " " + string(rune('A'+i/len(templates)-1))
		}
		f := NewFaction(FactionID(i+1), name)
		t.tune(&f.Policies)
		for _, r := range economy.TradableResources {
			f.Policies.MarketTaxRates[r] = 0.1
		}
		f.Resources[economy.Money] = 5000
		f.Resources[economy.Industry] = 1000
		f.Resources[economy.Fuel] = 100
		factions = append(factions, f)
	}
	return factions
}
