// Package world provides the hex grid, terrain, and tile ownership.
// Uses axial coordinates (q, r) for the hex grid.
package world

import (
	"fmt"

	"github.com/talgya/hexfront/internal/economy"
)

// HexCoord represents a position on the hex grid using axial coordinates.
// The third cube coordinate s is derived: s = -q - r.
type HexCoord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// S returns the implicit third cube coordinate.
func (h HexCoord) S() int {
	return -h.Q - h.R
}

// Key is the "q,r" string used as a district key.
func (h HexCoord) Key() string {
	return fmt.Sprintf("%d,%d", h.Q, h.R)
}

// ParseKey reverses Key.
func ParseKey(key string) (HexCoord, bool) {
	var c HexCoord
	if _, err := fmt.Sscanf(key, "%d,%d", &c.Q, &c.R); err != nil {
		return HexCoord{}, false
	}
	return c, true
}

// Terrain types for hex tiles.
type Terrain uint8

const (
	TerrainPlains          Terrain = iota // Sets district population capacity
	TerrainForest
	TerrainMountain
	TerrainDesert          // Renewable energy bonus
	TerrainBarrierMountain // Impassable ridge
	TerrainShallowSea      // Renewable energy bonus, naval bases
	TerrainDeepSea
)

// IsSea reports whether t is open water.
func (t Terrain) IsSea() bool {
	return t == TerrainShallowSea || t == TerrainDeepSea
}

// EnergyBonus reports whether renewable plants on t get the terrain bonus.
func (t Terrain) EnergyBonus() bool {
	return t == TerrainDesert || t.IsSea()
}

// MarketOwnership says who sells a building's output.
type MarketOwnership string

const (
	OwnershipState   MarketOwnership = "state"
	OwnershipPrivate MarketOwnership = "private"
)

// Tile is a single hex of the world map.
type Tile struct {
	Coord   HexCoord `json:"coord"`
	Terrain Terrain  `json:"terrain"`

	// Elevation and climate data (set during world generation).
	Elevation float64 `json:"elevation"` // 0.0 (sea floor) to 1.0 (peak)
	Rainfall  float64 `json:"rainfall"`  // 0.0 (arid) to 1.0 (wet)

	Owner       uint64          `json:"owner"`              // Faction id, 0 = unowned
	Building    string          `json:"building,omitempty"` // Building id, "" = none
	Ownership   MarketOwnership `json:"ownership"`
	Investor    economy.Class   `json:"investor,omitempty"` // Only meaningful when private
	DistrictKey string          `json:"district_key,omitempty"`
}

// Private reports whether the building's output is sold privately.
func (t *Tile) Private() bool {
	return t.Ownership == OwnershipPrivate
}

// InvestorClass returns the owning class of a private building. An unset
// investor defaults to elite; state buildings have none.
func (t *Tile) InvestorClass() (economy.Class, bool) {
	if !t.Private() {
		return "", false
	}
	if t.Investor.Valid() {
		return t.Investor, true
	}
	return economy.Elite, true
}

// HexNeighborDirections defines the six neighbor offsets in axial coordinates.
var HexNeighborDirections = [6]HexCoord{
	{Q: 1, R: 0},
	{Q: 1, R: -1},
	{Q: 0, R: -1},
	{Q: -1, R: 0},
	{Q: -1, R: 1},
	{Q: 0, R: 1},
}

// Neighbors returns the six adjacent hex coordinates.
func (h HexCoord) Neighbors() [6]HexCoord {
	var result [6]HexCoord
	for i, dir := range HexNeighborDirections {
		result[i] = HexCoord{Q: h.Q + dir.Q, R: h.R + dir.R}
	}
	return result
}

// Distance returns the hex distance between two coordinates.
func Distance(a, b HexCoord) int {
	return max(abs(a.Q-b.Q), abs(a.R-b.R), abs(a.S()-b.S()))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
