package world

import (
	"testing"

	"github.com/talgya/hexfront/internal/economy"
)

func TestGenerateTileCount(t *testing.T) {
	cfg := SmallTestConfig()
	m := Generate(cfg)
	want := 3*cfg.Radius*(cfg.Radius+1) + 1
	if m.TileCount() != want {
		t.Fatalf("TileCount = %d, want %d", m.TileCount(), want)
	}
	if len(m.Order) != want {
		t.Errorf("order length = %d, want %d", len(m.Order), want)
	}
	for _, tile := range m.All() {
		if !m.InBounds(tile.Coord) {
			t.Errorf("tile %v out of bounds", tile.Coord)
		}
		if tile.Owner != 0 || tile.Building != "" {
			t.Errorf("fresh tile %v not empty", tile.Coord)
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	a := Generate(SmallTestConfig())
	b := Generate(SmallTestConfig())
	for i, c := range a.Order {
		if b.Order[i] != c {
			t.Fatalf("order differs at %d", i)
		}
		if a.Get(c).Terrain != b.Get(c).Terrain {
			t.Fatalf("terrain differs at %v", c)
		}
	}
}

func TestDistanceAndWithin(t *testing.T) {
	if d := Distance(HexCoord{0, 0}, HexCoord{2, -1}); d != 2 {
		t.Errorf("Distance = %d, want 2", d)
	}
	m := Generate(SmallTestConfig())
	if n := len(m.Within(HexCoord{0, 0}, 2)); n != 19 {
		t.Errorf("Within radius 2 = %d tiles, want 19", n)
	}
	for _, tile := range m.Within(HexCoord{1, 1}, 1) {
		if Distance(tile.Coord, HexCoord{1, 1}) > 1 {
			t.Errorf("tile %v too far", tile.Coord)
		}
	}
}

func TestKeyRoundTrip(t *testing.T) {
	c := HexCoord{Q: -3, R: 7}
	got, ok := ParseKey(c.Key())
	if !ok || got != c {
		t.Errorf("ParseKey(%q) = %v, %v", c.Key(), got, ok)
	}
	if _, ok := ParseKey("nonsense"); ok {
		t.Error("ParseKey accepted garbage")
	}
}

func TestInvestorClass(t *testing.T) {
	state := &Tile{Ownership: OwnershipState, Investor: economy.Labor}
	if _, ok := state.InvestorClass(); ok {
		t.Error("state tile reported an investor")
	}
	priv := &Tile{Ownership: OwnershipPrivate}
	if c, ok := priv.InvestorClass(); !ok || c != economy.Elite {
		t.Errorf("default investor = %v, %v; want elite", c, ok)
	}
	priv.Investor = economy.Expert
	if c, _ := priv.InvestorClass(); c != economy.Expert {
		t.Errorf("investor = %v, want expert", c)
	}
}

func TestPlaceCapitalsAndClaim(t *testing.T) {
	m := NewMap(6)
	for q := -6; q <= 6; q++ {
		for r := -6; r <= 6; r++ {
			c := HexCoord{Q: q, R: r}
			if m.InBounds(c) {
				m.Set(&Tile{Coord: c, Terrain: TerrainPlains, Ownership: OwnershipState})
			}
		}
	}

	seeds := PlaceCapitals(m, 3, 7)
	if len(seeds) != 3 {
		t.Fatalf("placed %d capitals, want 3", len(seeds))
	}
	for i := range seeds {
		for j := i + 1; j < len(seeds); j++ {
			if seeds[i].Coord == seeds[j].Coord {
				t.Errorf("capitals %d and %d share a tile", i, j)
			}
		}
		if seeds[i].Name == "" {
			t.Errorf("capital %d unnamed", i)
		}
	}

	ClaimTerritory(m, seeds, []uint64{1, 2, 3}, 3)
	for i, s := range seeds {
		if got := m.Get(s.Coord).Owner; got != uint64(i+1) {
			t.Errorf("capital %d owned by %d", i, got)
		}
	}
}
