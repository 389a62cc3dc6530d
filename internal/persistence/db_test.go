package persistence

import (
	"path/filepath"
	"testing"

	"github.com/talgya/hexfront/internal/economy"
	"github.com/talgya/hexfront/internal/engine"
	"github.com/talgya/hexfront/internal/social"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "world.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSaveAndLoadWorld(t *testing.T) {
	db := openTestDB(t)
	if db.HasWorldState() {
		t.Fatal("fresh database reports a world")
	}

	sim := engine.NewWorld(engine.WorldConfig{Seed: 42, Radius: 6, Factions: 2})
	for i := 0; i < 3; i++ {
		if _, err := sim.EndTurn(); err != nil {
			t.Fatal(err)
		}
	}
	if err := sim.DeclareWar(sim.Factions[0].ID, sim.Factions[1].ID, social.GoalConquest); err != nil {
		t.Fatal(err)
	}
	if err := db.SaveWorldState(sim); err != nil {
		t.Fatal(err)
	}
	if !db.HasWorldState() {
		t.Fatal("world not saved")
	}

	loaded, err := db.LoadWorld(nil)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Turn != sim.Turn || loaded.Acting != sim.Acting {
		t.Errorf("turn/acting = %d/%d, want %d/%d", loaded.Turn, loaded.Acting, sim.Turn, sim.Acting)
	}
	if loaded.WorldMap.TileCount() != sim.WorldMap.TileCount() {
		t.Errorf("tiles %d, want %d", loaded.WorldMap.TileCount(), sim.WorldMap.TileCount())
	}
	if len(loaded.Districts) != len(sim.Districts) {
		t.Errorf("districts %d, want %d", len(loaded.Districts), len(sim.Districts))
	}
	for i, f := range sim.Factions {
		g := loaded.Factions[i]
		if g.ID != f.ID || g.Name != f.Name {
			t.Errorf("faction %d = %d %q", i, g.ID, g.Name)
		}
		for _, r := range economy.AllResources {
			if g.Resources[r] != f.Resources[r] {
				t.Errorf("%s %s = %d, want %d", f.Name, r, g.Resources[r], f.Resources[r])
			}
		}
		if g.Policies.TaxLaw != f.Policies.TaxLaw {
			t.Errorf("%s tax law %s, want %s", f.Name, g.Policies.TaxLaw, f.Policies.TaxLaw)
		}
		if (g.StabilityBaseline == nil) != (f.StabilityBaseline == nil) {
			t.Errorf("%s baseline not restored", f.Name)
		}
		if g.AtWar() != f.AtWar() {
			t.Errorf("%s war state not restored", f.Name)
		}
	}

	// The loaded world keeps settling turns.
	if _, err := loaded.EndTurn(); err != nil {
		t.Fatal(err)
	}
}

func TestUnitsRoundTrip(t *testing.T) {
	db := openTestDB(t)
	sim := engine.NewWorld(engine.WorldConfig{Seed: 8, Radius: 6, Factions: 1})
	f := sim.Factions[0]
	for _, r := range []string{"money", "industry", "pop"} {
		if _, err := sim.ProvisionFaction(f.Name, r, 1000); err != nil {
			t.Fatal(err)
		}
	}
	u, err := sim.Recruit(f.ID, f.Capital, []string{"INFANTRY", "ARTILLERY"})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.SaveWorldState(sim); err != nil {
		t.Fatal(err)
	}

	units, err := db.LoadUnits()
	if err != nil {
		t.Fatal(err)
	}
	if len(units) != 1 || units[0].ID != u.ID || len(units[0].Components) != 2 || units[0].MaxHP != u.MaxHP {
		t.Errorf("units = %+v", units)
	}
}

func TestLedgerHistory(t *testing.T) {
	db := openTestDB(t)
	for turn := uint64(1); turn <= 5; turn++ {
		snap := economy.NewMarketSnapshot()
		snap.TaxIncome = int64(turn) * 10
		err := db.SaveLedgers(turn, map[social.FactionID]*economy.Ledger{
			1: {Turn: turn, Resources: economy.Stockpile{economy.Money: int64(turn)}, Deltas: economy.NewStockpile(), Market: snap, Stability: 50},
			2: {Turn: turn, Resources: economy.NewStockpile(), Deltas: economy.NewStockpile(), Market: snap},
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	history, err := db.LedgerHistory(1, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 3 {
		t.Fatalf("%d ledgers, want 3", len(history))
	}
	if history[0].Turn != 5 || history[2].Turn != 3 {
		t.Errorf("turns = %d..%d, want 5..3", history[0].Turn, history[2].Turn)
	}
	if history[0].Resources[economy.Money] != 5 || history[0].Market.TaxIncome != 50 {
		t.Errorf("latest ledger = %+v", history[0])
	}
}

func TestMeta(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.GetMeta("missing"); err == nil {
		t.Error("missing key returned no error")
	}
	id, err := db.WorldID()
	if err != nil || id == "" {
		t.Fatalf("world id %q: %v", id, err)
	}
	again, err := db.WorldID()
	if err != nil || again != id {
		t.Errorf("world id changed from %q to %q", id, again)
	}
}
