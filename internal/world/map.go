package world

import "fmt"

// Map holds the complete hex grid. Tiles iterate in insertion order so every
// pass over the map is deterministic.
type Map struct {
	Tiles  map[HexCoord]*Tile `json:"-"` // All tiles keyed by coordinate
	Order  []HexCoord         `json:"-"`
	Radius int                `json:"radius"`
}

// NewMap creates an empty map with the given radius.
// A hex grid of radius R contains hexes where max(|q|, |r|, |s|) <= R.
func NewMap(radius int) *Map {
	return &Map{
		Tiles:  make(map[HexCoord]*Tile),
		Radius: radius,
	}
}

// Get returns the tile at the given coordinate, or nil if out of bounds.
func (m *Map) Get(coord HexCoord) *Tile {
	return m.Tiles[coord]
}

// Set places a tile at its coordinate.
func (m *Map) Set(t *Tile) {
	if _, ok := m.Tiles[t.Coord]; !ok {
		m.Order = append(m.Order, t.Coord)
	}
	m.Tiles[t.Coord] = t
}

// All returns every tile in deterministic order.
func (m *Map) All() []*Tile {
	out := make([]*Tile, 0, len(m.Order))
	for _, c := range m.Order {
		out = append(out, m.Tiles[c])
	}
	return out
}

// OwnedBy returns the tiles owned by a faction in deterministic order.
func (m *Map) OwnedBy(owner uint64) []*Tile {
	var out []*Tile
	for _, c := range m.Order {
		if t := m.Tiles[c]; t.Owner == owner {
			out = append(out, t)
		}
	}
	return out
}

// InDistrict returns the tiles assigned to a district.
func (m *Map) InDistrict(key string) []*Tile {
	var out []*Tile
	for _, c := range m.Order {
		if t := m.Tiles[c]; t.DistrictKey == key {
			out = append(out, t)
		}
	}
	return out
}

// Within returns in-bounds tiles at most radius steps from center.
func (m *Map) Within(center HexCoord, radius int) []*Tile {
	var out []*Tile
	for dq := -radius; dq <= radius; dq++ {
		for dr := max(-radius, -dq-radius); dr <= min(radius, -dq+radius); dr++ {
			if t := m.Get(HexCoord{Q: center.Q + dq, R: center.R + dr}); t != nil {
				out = append(out, t)
			}
		}
	}
	return out
}

// InBounds returns true if the coordinate is within the map radius.
func (m *Map) InBounds(coord HexCoord) bool {
	return max(abs(coord.Q), abs(coord.R), abs(coord.S())) <= m.Radius
}

// TileCount returns the total number of tiles in the map.
func (m *Map) TileCount() int {
	return len(m.Tiles)
}

// String returns a summary of the map.
func (m *Map) String() string {
	return fmt.Sprintf("Map(radius=%d, tiles=%d)", m.Radius, m.TileCount())
}
