package engine

import (
	"errors"
	"testing"

	"github.com/talgya/hexfront/internal/catalog"
	"github.com/talgya/hexfront/internal/economy"
	"github.com/talgya/hexfront/internal/social"
	"github.com/talgya/hexfront/internal/world"
)

func fund(res, amounts economy.Stockpile) {
	for r, v := range amounts {
		res[r] = v
	}
}

func TestBuildPaysCost(t *testing.T) {
	sim, f := testSim(t)
	fund(f.Resources, economy.Stockpile{economy.Money: 1000, economy.Metal: 100, economy.Food: 50})
	at := world.HexCoord{Q: 1, R: 0}
	popBefore := sim.FactionPopulation(f.ID)

	if err := sim.Build(BuildRequest{Faction: f.ID, Coord: at, Building: catalog.Farm}); err != nil {
		t.Fatal(err)
	}
	tile := sim.WorldMap.Get(at)
	if tile.Building != catalog.Farm || tile.Private() {
		t.Errorf("tile = %+v", tile)
	}
	if f.Resources[economy.Money] != 700 || f.Resources[economy.Metal] != 80 || f.Resources[economy.Food] != 40 {
		t.Errorf("resources after = %v", f.Resources)
	}
	if got := sim.FactionPopulation(f.ID); got != popBefore-30 {
		t.Errorf("population %d, want %d", got, popBefore-30)
	}
}

func TestBuildPrivate(t *testing.T) {
	sim, f := testSim(t)
	fund(f.Resources, economy.Stockpile{economy.Money: 5000, economy.Metal: 500, economy.Industry: 500})
	at := world.HexCoord{Q: 0, R: 1}

	err := sim.Build(BuildRequest{Faction: f.ID, Coord: at, Building: catalog.CivilianFactory, Private: true})
	if !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("missing investor: err = %v", err)
	}
	err = sim.Build(BuildRequest{Faction: f.ID, Coord: at, Building: catalog.CivilianFactory, Private: true, Investor: economy.Expert})
	if err != nil {
		t.Fatal(err)
	}
	cls, ok := sim.WorldMap.Get(at).InvestorClass()
	if !ok || cls != economy.Expert {
		t.Errorf("investor = %v %v", cls, ok)
	}
}

func TestBuildRejections(t *testing.T) {
	sim, f := testSim(t)
	fund(f.Resources, economy.Stockpile{economy.Money: 10})

	tests := []struct {
		name string
		req  BuildRequest
		want error
	}{
		{"occupied", BuildRequest{Faction: f.ID, Coord: world.HexCoord{}, Building: catalog.Farm}, ErrInvalidTarget},
		{"unknown building", BuildRequest{Faction: f.ID, Coord: world.HexCoord{Q: 1}, Building: "moon_base"}, ErrInvalidTarget},
		{"off map", BuildRequest{Faction: f.ID, Coord: world.HexCoord{Q: 9}, Building: catalog.Farm}, ErrInvalidTarget},
		{"mine on plains", BuildRequest{Faction: f.ID, Coord: world.HexCoord{Q: 1}, Building: catalog.Mine}, ErrInvalidTarget},
		{"unknown faction", BuildRequest{Faction: 42, Coord: world.HexCoord{Q: 1}, Building: catalog.Farm}, ErrUnknownFaction},
		{"too poor", BuildRequest{Faction: f.ID, Coord: world.HexCoord{Q: 1}, Building: catalog.Farm}, ErrCannotAfford},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := sim.Build(tt.req); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
	if f.Resources[economy.Money] != 10 {
		t.Errorf("money changed to %d", f.Resources[economy.Money])
	}
}

func TestCanBuildHereTerrain(t *testing.T) {
	sim, _ := testSim(t)
	sea := &world.Tile{Coord: world.HexCoord{Q: 3, R: 0}, Terrain: world.TerrainShallowSea, Owner: 1}
	deep := &world.Tile{Coord: world.HexCoord{Q: 5, R: 0}, Terrain: world.TerrainDeepSea, Owner: 1}
	sim.WorldMap.Set(sea)
	sim.WorldMap.Set(deep)

	tests := []struct {
		id   string
		tile *world.Tile
		want bool
	}{
		{catalog.OilField, sea, true},
		{catalog.RenewablePower, sea, true},
		{catalog.NavalBase, sea, true},
		{catalog.Farm, sea, false},
		{catalog.NavalBase, deep, false},
		{catalog.NavalBase, sim.WorldMap.Get(world.HexCoord{Q: 1}), false},
		{catalog.City, sim.WorldMap.Get(world.HexCoord{Q: 1}), false},
		{catalog.Lab, sim.WorldMap.Get(world.HexCoord{Q: 1}), true},
	}
	for _, tt := range tests {
		if got := sim.CanBuildHere(tt.id, tt.tile); got != tt.want {
			t.Errorf("CanBuildHere(%s, %v) = %v, want %v", tt.id, tt.tile.Terrain, got, tt.want)
		}
	}
}

func TestRecruitAndRefill(t *testing.T) {
	sim, f := testSim(t)
	fund(f.Resources, economy.Stockpile{economy.Money: 200})
	capital := world.HexCoord{}

	u, err := sim.Recruit(f.ID, capital, []string{"INFANTRY"})
	if err != nil {
		t.Fatal(err)
	}
	if u.HP != 150 || u.MaxHP != 150 {
		t.Errorf("hp %d/%d, want 150/150", u.HP, u.MaxHP)
	}
	if f.Resources[economy.Money] != 125 {
		t.Errorf("money %d, want 125", f.Resources[economy.Money])
	}

	u.HP = 75
	want := economy.Stockpile{economy.Money: 38, economy.Pop: 25}
	got := sim.RefillCost(u)
	for r, v := range want {
		if got[r] != v {
			t.Errorf("refill %s = %d, want %d", r, got[r], v)
		}
	}
	if !sim.CanRefill(u) {
		t.Fatal("expected refill possible")
	}
	if err := sim.Refill(u.ID); err != nil {
		t.Fatal(err)
	}
	if u.HP != 150 || f.Resources[economy.Money] != 87 {
		t.Errorf("after refill hp %d money %d", u.HP, f.Resources[economy.Money])
	}
	if err := sim.Refill(u.ID); !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("refill at full strength: err = %v", err)
	}
}

func TestRecruitNeedsDepot(t *testing.T) {
	sim, f := testSim(t)
	fund(f.Resources, economy.Stockpile{economy.Money: 5000, economy.Industry: 5000})

	if _, err := sim.Recruit(f.ID, world.HexCoord{Q: 1}, []string{"INFANTRY"}); !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("recruit on empty tile: err = %v", err)
	}
	if _, err := sim.Recruit(f.ID, world.HexCoord{}, []string{"FIGHTER"}); !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("air unit at a city: err = %v", err)
	}
	if _, err := sim.Recruit(f.ID, world.HexCoord{}, []string{"NOT_A_UNIT"}); !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("unknown regiment: err = %v", err)
	}
}

func TestRefillAwayFromDepot(t *testing.T) {
	sim, f := testSim(t)
	fund(f.Resources, economy.Stockpile{economy.Money: 500})
	u, err := sim.Recruit(f.ID, world.HexCoord{}, []string{"INFANTRY"})
	if err != nil {
		t.Fatal(err)
	}
	u.HP = 10
	u.Position = world.HexCoord{Q: 1}
	if sim.CanRefill(u) {
		t.Error("refill possible away from depot")
	}
	if err := sim.Refill(u.ID); !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("err = %v, want ErrInvalidTarget", err)
	}
}

func TestMilitaryCost(t *testing.T) {
	cat := catalog.Default()
	units := []*social.Unit{
		{Owner: 1, Components: []string{"INFANTRY", "HOWITZER", "UNKNOWN"}},
		{Owner: 2, Components: []string{"CARRIER"}},
	}
	// 0.5 + default 1 + default 1, rounded up.
	if got := MilitaryCost(units, 1, cat); got != 3 {
		t.Errorf("military cost %d, want 3", got)
	}
}
