// World seeding: generates the map, places faction capitals, claims territory
// and lays out each faction's starting economy.
package engine

import (
	"log/slog"

	"github.com/talgya/hexfront/internal/catalog"
	"github.com/talgya/hexfront/internal/economy"
	"github.com/talgya/hexfront/internal/social"
	"github.com/talgya/hexfront/internal/world"
)

// TerritoryReach is how far a capital's initial claim extends.
const TerritoryReach = 3

// WorldConfig controls generation of a fresh world.
type WorldConfig struct {
	Seed            int64
	Radius          int
	Factions        int
	ParallelRefresh bool
	Catalog         *catalog.Catalog // nil uses the defaults
}

// starterBuilding is one slot in a faction's opening layout.
type starterBuilding struct {
	id       string
	investor economy.Class // Non-empty makes the building private
}

// Every faction opens with enough production to feed its capital.
var starterLayout = []starterBuilding{
	{id: catalog.Farm},
	{id: catalog.Farm},
	{id: catalog.Mine},
	{id: catalog.RenewablePower},
	{id: catalog.RenewablePower},
	{id: catalog.CivilianFactory, investor: economy.Expert},
	{id: catalog.Lab},
}

// NewWorld generates a world and a simulation over it with the world-backed
// collaborators wired in.
func NewWorld(cfg WorldConfig) *Simulation {
	gen := world.DefaultGenConfig()
	gen.Seed = cfg.Seed
	if cfg.Radius > 0 {
		gen.Radius = cfg.Radius
	}
	m := world.Generate(gen)

	n := max(1, cfg.Factions)
	seeds := world.PlaceCapitals(m, n, cfg.Seed)
	factions := social.SeedFactions(len(seeds))
	owners := make([]uint64, len(factions))
	for i, f := range factions {
		owners[i] = f.ID
		f.Capital = seeds[i].Coord
	}
	world.ClaimTerritory(m, seeds, owners, TerritoryReach)

	sim := NewSimulation(cfg.Catalog, m, factions, nil, nil,
		WithWorldProviders(), WithParallelRefresh(cfg.ParallelRefresh))

	for i, f := range factions {
		sim.layoutFaction(f, seeds[i].Name)
		f.LastClassTotals = sim.ClassTotals(f.ID)
	}

	slog.Info("world generated",
		"radius", gen.Radius,
		"seed", cfg.Seed,
		"tiles", m.TileCount(),
		"factions", len(factions),
		"districts", len(sim.Districts),
	)
	return sim
}

// layoutFaction builds the capital city and the opening buildings around it.
func (s *Simulation) layoutFaction(f *social.Faction, cityName string) {
	capital := s.WorldMap.Get(f.Capital)
	if capital == nil {
		return
	}
	capital.Building = catalog.City
	capital.Ownership = world.OwnershipState
	d := s.foundDistrict(f, capital, cityName)
	d.Name = cityName

	tiles := s.WorldMap.InDistrict(d.Key)
	for _, slot := range starterLayout {
		for _, t := range tiles {
			if !s.CanBuildHere(slot.id, t) {
				continue
			}
			t.Building = slot.id
			t.Ownership = world.OwnershipState
			if slot.investor != "" {
				t.Ownership = world.OwnershipPrivate
				t.Investor = slot.investor
			}
			break
		}
	}
	d.ClassMix = social.ClassMixFor(tiles)
	f.Resources[economy.Pop] = s.FactionPopulation(f.ID)
}
