// Simulation holds the world state and wires the turn pipeline together.
package engine

import (
	"sync"

	"github.com/talgya/hexfront/internal/catalog"
	"github.com/talgya/hexfront/internal/economy"
	"github.com/talgya/hexfront/internal/social"
	"github.com/talgya/hexfront/internal/world"
)

// MaxEvents bounds the recent-event buffer.
const MaxEvents = 500

// Simulation is the explicit world context every pipeline stage reads.
// EndTurn, the actions and the snapshot readers take mu; the unexported
// helpers and the query methods assume the caller already holds it.
type Simulation struct {
	mu sync.RWMutex

	Catalog  *catalog.Catalog
	WorldMap *world.Map

	Factions     []*social.Faction
	FactionIndex map[social.FactionID]*social.Faction

	// Districts in creation order, keyed by their city tile.
	Districts     []*social.District
	DistrictIndex map[string]*social.District

	Units      []*social.Unit
	nextUnitID social.UnitID

	Turn   uint64 // Completed turns
	Acting int    // Index into Factions of the faction whose turn it is
	Events []Event

	// Collaborators, resolved at construction.
	Politics StabilityInputs
	Wars     WarStateProvider
	Research ResearchProvider

	// Refresh the non-acting factions concurrently at end of turn.
	ParallelRefresh bool

	// Called after each EndTurn with the ledgers of every faction, outside the lock.
	OnTurnEnd func(turn uint64, ledgers map[social.FactionID]*economy.Ledger)
}

// Event is a notable occurrence in the world.
type Event struct {
	Turn        uint64           `json:"turn"`
	Faction     social.FactionID `json:"faction,omitempty"`
	Description string           `json:"description"`
	Category    string           `json:"category"` // "economy", "war", "research", "build", ...
}

// Option configures a Simulation at construction.
type Option func(*Simulation)

// WithStabilityInputs sets the stability-input provider.
func WithStabilityInputs(p StabilityInputs) Option {
	return func(s *Simulation) { s.Politics = p }
}

// WithWarState sets the war-state provider.
func WithWarState(p WarStateProvider) Option {
	return func(s *Simulation) { s.Wars = p }
}

// WithResearch sets the research provider.
func WithResearch(p ResearchProvider) Option {
	return func(s *Simulation) { s.Research = p }
}

// WithParallelRefresh makes EndTurn refresh other factions concurrently.
func WithParallelRefresh(on bool) Option {
	return func(s *Simulation) { s.ParallelRefresh = on }
}

// WithWorldProviders derives stability inputs, war state and research
// multipliers from the simulation's own factions and catalog.
func WithWorldProviders() Option {
	return func(s *Simulation) {
		s.Politics = FactionStabilityInputs{Sim: s}
		s.Wars = FactionWarState{}
		s.Research = TechResearch{Catalog: s.Catalog}
	}
}

// NewSimulation creates a Simulation from loaded or generated components.
// Collaborators not supplied as options fall back to their null implementations.
func NewSimulation(cat *catalog.Catalog, m *world.Map, factions []*social.Faction,
	districts []*social.District, units []*social.Unit, opts ...Option) *Simulation {
	if cat == nil {
		cat = catalog.Default()
	}
	if m == nil {
		m = world.NewMap(0)
	}

	sim := &Simulation{
		Catalog:   cat,
		WorldMap:  m,
		Factions:  factions,
		Districts: districts,
		Units:     units,
	}
	for _, opt := range opts {
		opt(sim)
	}
	if sim.Politics == nil {
		sim.Politics = NeutralStability{}
	}
	if sim.Wars == nil {
		sim.Wars = NoWars{}
	}
	if sim.Research == nil {
		sim.Research = NoResearch{}
	}

	for _, f := range factions {
		f.Normalize()
	}
	sim.rebuildIndex()
	return sim
}

// rebuildIndex refreshes the id lookups after the slices change.
func (s *Simulation) rebuildIndex() {
	s.FactionIndex = make(map[social.FactionID]*social.Faction, len(s.Factions))
	for _, f := range s.Factions {
		s.FactionIndex[f.ID] = f
	}
	s.DistrictIndex = make(map[string]*social.District, len(s.Districts))
	for _, d := range s.Districts {
		s.DistrictIndex[d.Key] = d
	}
	for _, u := range s.Units {
		if u.ID >= s.nextUnitID {
			s.nextUnitID = u.ID + 1
		}
	}
	if s.nextUnitID == 0 {
		s.nextUnitID = 1
	}
}

// View runs fn with the read lock held. fn must not call the locking methods.
func (s *Simulation) View(fn func()) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn()
}

// Faction returns the faction with id, or nil.
func (s *Simulation) Faction(id social.FactionID) *social.Faction {
	return s.FactionIndex[id]
}

// ActingFaction returns the faction whose turn it is, or nil when there are none.
func (s *Simulation) ActingFaction() *social.Faction {
	if len(s.Factions) == 0 {
		return nil
	}
	return s.Factions[s.Acting%len(s.Factions)]
}

// FactionDistricts returns the districts owned by id, in creation order.
func (s *Simulation) FactionDistricts(id social.FactionID) []*social.District {
	var out []*social.District
	for _, d := range s.Districts {
		if d.Owner == id {
			out = append(out, d)
		}
	}
	return out
}

// FactionPopulation sums the population of id's districts.
func (s *Simulation) FactionPopulation(id social.FactionID) int64 {
	var pop int64
	for _, d := range s.FactionDistricts(id) {
		pop += max(0, d.Population)
	}
	return pop
}

// ClassTotals aggregates per-class population over id's districts.
func (s *Simulation) ClassTotals(id social.FactionID) economy.ByClass {
	out := economy.NewByClass()
	for _, d := range s.FactionDistricts(id) {
		for c, n := range d.Classes() {
			out[c] += n
		}
	}
	return out
}

// UnitsOf returns the units owned by id.
func (s *Simulation) UnitsOf(id social.FactionID) []*social.Unit {
	var out []*social.Unit
	for _, u := range s.Units {
		if u.Owner == id {
			out = append(out, u)
		}
	}
	return out
}

// Unit returns the unit with id, or nil.
func (s *Simulation) Unit(id social.UnitID) *social.Unit {
	for _, u := range s.Units {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// addEvent appends to the recent-event buffer, dropping the oldest past MaxEvents.
func (s *Simulation) addEvent(faction social.FactionID, category, desc string) {
	s.Events = append(s.Events, Event{
		Turn:        s.Turn,
		Faction:     faction,
		Description: desc,
		Category:    category,
	})
	if len(s.Events) > MaxEvents {
		s.Events = s.Events[len(s.Events)-MaxEvents:]
	}
}
