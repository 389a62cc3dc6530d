// Player actions: building, recruiting and refitting, all paid through the
// affordability ledger.
package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/talgya/hexfront/internal/catalog"
	"github.com/talgya/hexfront/internal/economy"
	"github.com/talgya/hexfront/internal/social"
	"github.com/talgya/hexfront/internal/world"
)

// Action failures. ErrCannotAfford is the only one a valid request can hit.
var (
	ErrCannotAfford   = errors.New("insufficient resources")
	ErrUnknownFaction = errors.New("unknown faction")
	ErrInvalidTarget  = errors.New("invalid target")
)

// BuildRequest asks to place a building on a tile.
type BuildRequest struct {
	Faction  social.FactionID `json:"faction"`
	Coord    world.HexCoord   `json:"coord"`
	Building string           `json:"building"`
	Private  bool             `json:"private,omitempty"`
	Investor economy.Class    `json:"investor,omitempty"` // Owning class when private
}

// CanBuildHere applies terrain and district placement rules.
func (s *Simulation) CanBuildHere(id string, t *world.Tile) bool {
	if t == nil || t.Building != "" || t.Terrain == world.TerrainBarrierMountain {
		return false
	}
	if t.Terrain.IsSea() {
		switch id {
		case catalog.NavalBase:
			return t.Terrain == world.TerrainShallowSea && s.nearLand(t.Coord)
		case catalog.RenewablePower, catalog.OilField:
			return t.Terrain == world.TerrainShallowSea
		}
		return false
	}
	if id == catalog.NavalBase {
		return false
	}

	if id == catalog.City {
		return t.DistrictKey == ""
	}
	if s.DistrictIndex[t.DistrictKey] == nil {
		return false
	}
	switch id {
	case catalog.Farm:
		return t.Terrain == world.TerrainPlains
	case catalog.Mine, catalog.PreciousMine:
		return t.Terrain == world.TerrainMountain
	case catalog.OilField:
		return t.Terrain == world.TerrainDesert
	}
	return true
}

func (s *Simulation) nearLand(c world.HexCoord) bool {
	for _, n := range c.Neighbors() {
		if t := s.WorldMap.Get(n); t != nil && !t.Terrain.IsSea() {
			return true
		}
	}
	return false
}

// Build places a building, paying its catalog cost. A new city founds a
// district over nearby unclaimed owned tiles.
func (s *Simulation) Build(req BuildRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.Faction(req.Faction)
	if f == nil {
		return ErrUnknownFaction
	}
	def := s.Catalog.Building(req.Building)
	if def == nil {
		return fmt.Errorf("%w: unknown building %q", ErrInvalidTarget, req.Building)
	}
	t := s.WorldMap.Get(req.Coord)
	if t == nil || t.Owner != f.ID || !s.CanBuildHere(def.ID, t) {
		return fmt.Errorf("%w: cannot build %s at %s", ErrInvalidTarget, def.ID, req.Coord.Key())
	}
	if req.Private && !req.Investor.Valid() {
		return fmt.Errorf("%w: private building needs an investor class", ErrInvalidTarget)
	}

	cost := NormalizeCost(def.Cost)
	if !s.ApplyCost(cost, CostRequest{Faction: f.ID, District: t.DistrictKey}) {
		return ErrCannotAfford
	}

	t.Building = def.ID
	t.Ownership = world.OwnershipState
	t.Investor = ""
	if req.Private {
		t.Ownership = world.OwnershipPrivate
		t.Investor = req.Investor
	}
	if def.ID == catalog.City {
		s.foundDistrict(f, t, def.Name)
	} else if d := s.DistrictIndex[t.DistrictKey]; d != nil {
		d.ClassMix = social.ClassMixFor(s.WorldMap.InDistrict(d.Key))
	}
	s.addEvent(f.ID, "build", fmt.Sprintf("%s built %s at %s for %s", f.Name, def.Name, t.Coord.Key(), FormatCost(cost)))
	return nil
}

// foundDistrict creates the district of a city tile, claiming owned tiles in
// reach that no other district holds.
func (s *Simulation) foundDistrict(f *social.Faction, city *world.Tile, name string) *social.District {
	d := social.NewDistrict(f.ID, city.Coord, fmt.Sprintf("%s %s", name, city.Coord.Key()))
	var tiles []*world.Tile
	for _, t := range s.WorldMap.Within(city.Coord, social.DefaultReach) {
		if t.Owner != f.ID || (t.DistrictKey != "" && t.DistrictKey != d.Key) {
			continue
		}
		t.DistrictKey = d.Key
		tiles = append(tiles, t)
	}
	d.Population, d.PopMax = social.PlainsCapacity(tiles)
	d.ClassMix = social.ClassMixFor(tiles)
	d.GrowthRate = GrowthRate(f.Policies)

	s.Districts = append(s.Districts, d)
	s.DistrictIndex[d.Key] = d
	f.Resources[economy.Pop] = s.FactionPopulation(f.ID)
	return d
}

// UnitBaseCost sums the construction cost of a unit's components.
func (s *Simulation) UnitBaseCost(components []string) economy.Stockpile {
	total := economy.Stockpile{}
	for _, id := range components {
		reg := s.Catalog.Regiment(id)
		if reg == nil {
			continue
		}
		for r, v := range reg.Cost {
			total[r] += v
		}
	}
	return total
}

// RefillCost scales the unit's base cost by its missing share of hit points,
// rounding each resource up.
func (s *Simulation) RefillCost(u *social.Unit) economy.Stockpile {
	out := economy.Stockpile{}
	maxHP := u.MaxHPOrCurrent()
	ratio := float64(u.Missing()) / float64(maxHP)
	for r, v := range s.UnitBaseCost(u.Components) {
		if n := int64(math.Ceil(float64(v) * ratio)); n > 0 {
			out[r] = n
		}
	}
	return out
}

// isAir reports whether every component of the unit flies.
func (s *Simulation) isAir(u *social.Unit) bool {
	if len(u.Components) == 0 {
		return false
	}
	for _, id := range u.Components {
		if reg := s.Catalog.Regiment(id); reg == nil || !reg.Air {
			return false
		}
	}
	return true
}

// atDepot reports whether the unit stands on a friendly tile it can refit at.
// Air units refit at airbases, others at cities and barracks.
func (s *Simulation) atDepot(u *social.Unit) bool {
	t := s.WorldMap.Get(u.Position)
	if t == nil || t.Owner != u.Owner {
		return false
	}
	if s.isAir(u) {
		return t.Building == catalog.Airbase
	}
	return t.Building == catalog.City || t.Building == catalog.Barracks
}

// CanRefill reports whether the unit is damaged, at a depot, and its owner can pay.
func (s *Simulation) CanRefill(u *social.Unit) bool {
	if u == nil || u.Missing() <= 0 || !s.atDepot(u) {
		return false
	}
	t := s.WorldMap.Get(u.Position)
	return s.CanAfford(s.RefillCost(u), CostRequest{Faction: u.Owner, District: t.DistrictKey})
}

// Refill restores a unit to full strength, paying the refit cost.
func (s *Simulation) Refill(id social.UnitID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.Unit(id)
	if u == nil {
		return fmt.Errorf("%w: unknown unit %d", ErrInvalidTarget, id)
	}
	if u.Missing() <= 0 || !s.atDepot(u) {
		return fmt.Errorf("%w: unit %d cannot refit here", ErrInvalidTarget, id)
	}
	t := s.WorldMap.Get(u.Position)
	if !s.ApplyCost(s.RefillCost(u), CostRequest{Faction: u.Owner, District: t.DistrictKey}) {
		return ErrCannotAfford
	}
	u.HP = u.MaxHPOrCurrent()
	return nil
}

// Recruit raises a unit at a city, barracks, or (for air units) an airbase.
func (s *Simulation) Recruit(faction social.FactionID, at world.HexCoord, components []string) (*social.Unit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.Faction(faction)
	if f == nil {
		return nil, ErrUnknownFaction
	}
	if len(components) == 0 {
		return nil, fmt.Errorf("%w: empty unit", ErrInvalidTarget)
	}
	hp := 0
	for _, id := range components {
		reg := s.Catalog.Regiment(id)
		if reg == nil {
			return nil, fmt.Errorf("%w: unknown regiment %q", ErrInvalidTarget, id)
		}
		hp += reg.HP
	}

	u := &social.Unit{Owner: f.ID, Position: at, Components: append([]string(nil), components...), HP: hp, MaxHP: hp}
	t := s.WorldMap.Get(at)
	if t == nil || t.Owner != f.ID {
		return nil, fmt.Errorf("%w: %s is not yours", ErrInvalidTarget, at.Key())
	}
	if !s.atDepot(u) {
		return nil, fmt.Errorf("%w: no depot at %s", ErrInvalidTarget, at.Key())
	}

	if !s.ApplyCost(s.UnitBaseCost(components), CostRequest{Faction: f.ID, District: t.DistrictKey}) {
		return nil, ErrCannotAfford
	}
	u.ID = s.nextUnitID
	s.nextUnitID++
	s.Units = append(s.Units, u)
	s.addEvent(f.ID, "military", fmt.Sprintf("%s raised unit %d at %s", f.Name, u.ID, at.Key()))
	return u, nil
}
