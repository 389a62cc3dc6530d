// Collaborator interfaces the turn pipeline reads from, with null defaults.
package engine

import (
	"github.com/talgya/hexfront/internal/catalog"
	"github.com/talgya/hexfront/internal/economy"
	"github.com/talgya/hexfront/internal/social"
)

// StabilityInputs supplies the political state stability is computed from.
type StabilityInputs interface {
	ClassSatisfaction(f *social.Faction) economy.ClassScores
	ClassTotals(f *social.Faction) economy.ByClass
	PowerShares(f *social.Faction) economy.ClassScores
}

// WarStateProvider reports a faction's active wars. atWar may be true with an
// empty list when the war flag is set but the targets are unknown.
type WarStateProvider interface {
	ActiveWars(f *social.Faction) (wars []social.WarTarget, atWar bool)
}

// ResearchProvider supplies research-driven output multipliers and tree levels.
type ResearchProvider interface {
	Multiplier(f *social.Faction, building string) float64
	Level(f *social.Faction, category string) int
}

// NeutralStability is the null StabilityInputs: every class at 50 with equal power.
type NeutralStability struct{}

func (NeutralStability) ClassSatisfaction(*social.Faction) economy.ClassScores {
	return economy.ClassScores{economy.Elite: 50, economy.Expert: 50, economy.Labor: 50, economy.Subsistence: 50}
}

func (NeutralStability) ClassTotals(*social.Faction) economy.ByClass { return economy.NewByClass() }

func (NeutralStability) PowerShares(*social.Faction) economy.ClassScores {
	return economy.EqualShares()
}

// NoWars is the null WarStateProvider.
type NoWars struct{}

func (NoWars) ActiveWars(*social.Faction) ([]social.WarTarget, bool) { return nil, false }

// NoResearch is the null ResearchProvider.
type NoResearch struct{}

func (NoResearch) Multiplier(*social.Faction, string) float64 { return 1 }
func (NoResearch) Level(*social.Faction, string) int         { return 0 }

// FactionStabilityInputs derives stability inputs from the faction's laws and
// the districts it owns. Overrides stored on the faction win.
type FactionStabilityInputs struct {
	Sim *Simulation
}

func (p FactionStabilityInputs) ClassTotals(f *social.Faction) economy.ByClass {
	if p.Sim == nil || f == nil {
		return economy.NewByClass()
	}
	return p.Sim.ClassTotals(f.ID)
}

func (p FactionStabilityInputs) ClassSatisfaction(f *social.Faction) economy.ClassScores {
	if f == nil {
		return economy.ClassScores{}
	}
	if len(f.Satisfaction) > 0 {
		return f.Satisfaction
	}
	return ClassSatisfaction(f.Policies, p.ClassTotals(f))
}

func (p FactionStabilityInputs) PowerShares(f *social.Faction) economy.ClassScores {
	if f == nil {
		return economy.ClassScores{}
	}
	if len(f.PowerShares) > 0 {
		return f.PowerShares
	}
	return PowerShares(f.Policies, p.ClassTotals(f))
}

// FactionWarState reads the war list kept on each faction.
type FactionWarState struct{}

func (FactionWarState) ActiveWars(f *social.Faction) ([]social.WarTarget, bool) {
	if f == nil {
		return nil, false
	}
	return f.Wars, f.AtWar()
}

// TechResearch resolves multipliers from the catalog's research trees.
// A tree keyed by a building id boosts that building.
type TechResearch struct {
	Catalog *catalog.Catalog
}

func (r TechResearch) Multiplier(f *social.Faction, building string) float64 {
	if f == nil {
		return 1
	}
	cat := r.Catalog.TechCategory(building)
	if cat == nil {
		return 1
	}
	return cat.Multiplier(f.Researched)
}

func (r TechResearch) Level(f *social.Faction, category string) int {
	if f == nil {
		return 0
	}
	return r.Catalog.TechCategory(category).Level(f.Researched)
}
