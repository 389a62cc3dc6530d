// Package persistence provides SQLite-based world state storage.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/hexfront/internal/catalog"
	"github.com/talgya/hexfront/internal/engine"
	"github.com/talgya/hexfront/internal/economy"
	"github.com/talgya/hexfront/internal/social"
	"github.com/talgya/hexfront/internal/world"
)

// World metadata keys.
const (
	MetaWorldID = "world_id"
	MetaTurn    = "turn"
	MetaActing  = "acting"
	MetaRadius  = "radius"
	MetaSavedAt = "saved_at"
)

// DB wraps a SQLite connection for world state persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// SQLite allows a single writer.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS factions (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		capital_q INTEGER NOT NULL,
		capital_r INTEGER NOT NULL,
		inflation REAL NOT NULL,
		stability_baseline INTEGER,
		active_tech TEXT NOT NULL DEFAULT '',
		resources_json TEXT NOT NULL,
		policies_json TEXT NOT NULL,
		surplus_json TEXT NOT NULL,
		last_class_totals_json TEXT NOT NULL,
		research_json TEXT NOT NULL,
		wars_json TEXT NOT NULL,
		overrides_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS districts (
		key TEXT PRIMARY KEY,
		owner INTEGER NOT NULL,
		center_q INTEGER NOT NULL,
		center_r INTEGER NOT NULL,
		name TEXT NOT NULL,
		population INTEGER NOT NULL,
		pop_max INTEGER NOT NULL,
		growth_rate REAL NOT NULL,
		class_mix_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tiles (
		q INTEGER NOT NULL,
		r INTEGER NOT NULL,
		terrain INTEGER NOT NULL,
		elevation REAL NOT NULL,
		rainfall REAL NOT NULL,
		owner INTEGER NOT NULL,
		building TEXT NOT NULL DEFAULT '',
		ownership TEXT NOT NULL DEFAULT '',
		investor TEXT NOT NULL DEFAULT '',
		district_key TEXT NOT NULL DEFAULT '',
		seq INTEGER NOT NULL,
		PRIMARY KEY (q, r)
	);

	CREATE TABLE IF NOT EXISTS units (
		id INTEGER PRIMARY KEY,
		owner INTEGER NOT NULL,
		pos_q INTEGER NOT NULL,
		pos_r INTEGER NOT NULL,
		hp INTEGER NOT NULL,
		max_hp INTEGER NOT NULL,
		components_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS ledgers (
		id TEXT PRIMARY KEY,
		turn INTEGER NOT NULL,
		faction_id INTEGER NOT NULL,
		stability INTEGER NOT NULL,
		build_power_max INTEGER NOT NULL,
		resources_json TEXT NOT NULL,
		deltas_json TEXT NOT NULL,
		market_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		turn INTEGER NOT NULL,
		faction_id INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_ledgers_faction_turn ON ledgers(faction_id, turn);
	CREATE INDEX IF NOT EXISTS idx_events_turn ON events(turn);
	CREATE INDEX IF NOT EXISTS idx_tiles_owner ON tiles(owner);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// factionOverrides groups the optional political overrides stored in one column.
type factionOverrides struct {
	Satisfaction   economy.ClassScores `json:"satisfaction,omitempty"`
	PowerShares    economy.ClassScores `json:"power_shares,omitempty"`
	SurplusWeights economy.ClassScores `json:"surplus_weights,omitempty"`
}

type factionResearch struct {
	Researched map[string]bool  `json:"researched"`
	Progress   map[string]int64 `json:"progress"`
}

type factionRow struct {
	ID                uint64        `db:"id"`
	Name              string        `db:"name"`
	CapitalQ          int           `db:"capital_q"`
	CapitalR          int           `db:"capital_r"`
	Inflation         float64       `db:"inflation"`
	StabilityBaseline sql.NullInt64 `db:"stability_baseline"`
	ActiveTech        string        `db:"active_tech"`
	ResourcesJSON     string        `db:"resources_json"`
	PoliciesJSON      string        `db:"policies_json"`
	SurplusJSON       string        `db:"surplus_json"`
	LastTotalsJSON    string        `db:"last_class_totals_json"`
	ResearchJSON      string        `db:"research_json"`
	WarsJSON          string        `db:"wars_json"`
	OverridesJSON     string        `db:"overrides_json"`
}

type districtRow struct {
	Key          string  `db:"key"`
	Owner        uint64  `db:"owner"`
	CenterQ      int     `db:"center_q"`
	CenterR      int     `db:"center_r"`
	Name         string  `db:"name"`
	Population   int64   `db:"population"`
	PopMax       int64   `db:"pop_max"`
	GrowthRate   float64 `db:"growth_rate"`
	ClassMixJSON string  `db:"class_mix_json"`
}

type tileRow struct {
	Q           int     `db:"q"`
	R           int     `db:"r"`
	Terrain     uint8   `db:"terrain"`
	Elevation   float64 `db:"elevation"`
	Rainfall    float64 `db:"rainfall"`
	Owner       uint64  `db:"owner"`
	Building    string  `db:"building"`
	Ownership   string  `db:"ownership"`
	Investor    string  `db:"investor"`
	DistrictKey string  `db:"district_key"`
	Seq         int     `db:"seq"`
}

type unitRow struct {
	ID             uint64 `db:"id"`
	Owner          uint64 `db:"owner"`
	PosQ           int    `db:"pos_q"`
	PosR           int    `db:"pos_r"`
	HP             int    `db:"hp"`
	MaxHP          int    `db:"max_hp"`
	ComponentsJSON string `db:"components_json"`
}

type ledgerRow struct {
	ID            string `db:"id"`
	Turn          uint64 `db:"turn"`
	FactionID     uint64 `db:"faction_id"`
	Stability     int    `db:"stability"`
	BuildPowerMax int64  `db:"build_power_max"`
	ResourcesJSON string `db:"resources_json"`
	DeltasJSON    string `db:"deltas_json"`
	MarketJSON    string `db:"market_json"`
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

// SaveFactions writes all factions (full replace).
func (db *DB) SaveFactions(tx *sqlx.Tx, factions []*social.Faction) error {
	if _, err := tx.Exec("DELETE FROM factions"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO factions
		(id, name, capital_q, capital_r, inflation, stability_baseline, active_tech,
		 resources_json, policies_json, surplus_json, last_class_totals_json,
		 research_json, wars_json, overrides_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, f := range factions {
		var baseline sql.NullInt64
		if f.StabilityBaseline != nil {
			baseline = sql.NullInt64{Int64: int64(*f.StabilityBaseline), Valid: true}
		}
		_, err := stmt.Exec(
			f.ID, f.Name, f.Capital.Q, f.Capital.R, f.Inflation, baseline, f.ActiveTech,
			mustJSON(f.Resources), mustJSON(f.Policies), mustJSON(f.Surplus), mustJSON(f.LastClassTotals),
			mustJSON(factionResearch{Researched: f.Researched, Progress: f.ResearchProgress}),
			mustJSON(f.Wars),
			mustJSON(factionOverrides{Satisfaction: f.Satisfaction, PowerShares: f.PowerShares, SurplusWeights: f.SurplusWeights}),
		)
		if err != nil {
			return fmt.Errorf("insert faction %d: %w", f.ID, err)
		}
	}
	return nil
}

// SaveDistricts writes all districts (full replace).
func (db *DB) SaveDistricts(tx *sqlx.Tx, districts []*social.District) error {
	if _, err := tx.Exec("DELETE FROM districts"); err != nil {
		return err
	}
	for _, d := range districts {
		_, err := tx.Exec(`INSERT INTO districts
			(key, owner, center_q, center_r, name, population, pop_max, growth_rate, class_mix_json)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			d.Key, d.Owner, d.Center.Q, d.Center.R, d.Name,
			d.Population, d.PopMax, d.GrowthRate, mustJSON(d.ClassMix),
		)
		if err != nil {
			return fmt.Errorf("insert district %s: %w", d.Key, err)
		}
	}
	return nil
}

// SaveTiles writes every map tile (full replace), keeping map order.
func (db *DB) SaveTiles(tx *sqlx.Tx, m *world.Map) error {
	if _, err := tx.Exec("DELETE FROM tiles"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO tiles
		(q, r, terrain, elevation, rainfall, owner, building, ownership, investor, district_key, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, t := range m.All() {
		_, err := stmt.Exec(
			t.Coord.Q, t.Coord.R, int(t.Terrain), t.Elevation, t.Rainfall,
			t.Owner, t.Building, string(t.Ownership), string(t.Investor), t.DistrictKey, i,
		)
		if err != nil {
			return fmt.Errorf("insert tile %s: %w", t.Coord.Key(), err)
		}
	}
	return nil
}

// SaveUnits writes all units (full replace).
func (db *DB) SaveUnits(tx *sqlx.Tx, units []*social.Unit) error {
	if _, err := tx.Exec("DELETE FROM units"); err != nil {
		return err
	}
	for _, u := range units {
		_, err := tx.Exec(`INSERT INTO units
			(id, owner, pos_q, pos_r, hp, max_hp, components_json)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			u.ID, u.Owner, u.Position.Q, u.Position.R, u.HP, u.MaxHP, mustJSON(u.Components),
		)
		if err != nil {
			return fmt.Errorf("insert unit %d: %w", u.ID, err)
		}
	}
	return nil
}

// SaveEvents replaces the stored event log with the simulation's recent events.
func (db *DB) SaveEvents(tx *sqlx.Tx, events []engine.Event) error {
	if _, err := tx.Exec("DELETE FROM events"); err != nil {
		return err
	}
	for _, e := range events {
		_, err := tx.Exec(
			"INSERT INTO events (turn, faction_id, description, category) VALUES (?, ?, ?, ?)",
			e.Turn, e.Faction, e.Description, e.Category,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func saveMeta(tx *sqlx.Tx, key, value string) error {
	_, err := tx.Exec("INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)", key, value)
	return err
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

// WorldID returns the identifier of the stored world, creating one on first use.
func (db *DB) WorldID() (string, error) {
	id, err := db.GetMeta(MetaWorldID)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}
	id = uuid.NewString()
	if err := db.SaveMeta(MetaWorldID, id); err != nil {
		return "", err
	}
	return id, nil
}

// HasWorldState reports whether a world has been saved.
func (db *DB) HasWorldState() bool {
	var count int
	if err := db.conn.Get(&count, "SELECT COUNT(*) FROM factions"); err != nil {
		return false
	}
	return count > 0
}

// SaveWorldState performs a full save of all world state in one transaction.
func (db *DB) SaveWorldState(sim *engine.Simulation) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var turn uint64
	var nFactions, nTiles int
	sim.View(func() {
		turn, nFactions, nTiles = sim.Turn, len(sim.Factions), sim.WorldMap.TileCount()
		if err = db.SaveFactions(tx, sim.Factions); err != nil {
			err = fmt.Errorf("save factions: %w", err)
			return
		}
		if err = db.SaveDistricts(tx, sim.Districts); err != nil {
			err = fmt.Errorf("save districts: %w", err)
			return
		}
		if err = db.SaveTiles(tx, sim.WorldMap); err != nil {
			err = fmt.Errorf("save tiles: %w", err)
			return
		}
		if err = db.SaveUnits(tx, sim.Units); err != nil {
			err = fmt.Errorf("save units: %w", err)
			return
		}
		if err = db.SaveEvents(tx, sim.Events); err != nil {
			err = fmt.Errorf("save events: %w", err)
			return
		}
		for k, v := range map[string]string{
			MetaTurn:    strconv.FormatUint(sim.Turn, 10),
			MetaActing:  strconv.Itoa(sim.Acting),
			MetaRadius:  strconv.Itoa(sim.WorldMap.Radius),
			MetaSavedAt: time.Now().UTC().Format(time.RFC3339),
		} {
			if err = saveMeta(tx, k, v); err != nil {
				err = fmt.Errorf("save meta: %w", err)
				return
			}
		}
	})
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	slog.Info("world state saved", "turn", turn, "factions", nFactions, "tiles", nTiles)
	return nil
}

// LoadFactions reads every saved faction in id order.
func (db *DB) LoadFactions() ([]*social.Faction, error) {
	var rows []factionRow
	if err := db.conn.Select(&rows, "SELECT * FROM factions ORDER BY id"); err != nil {
		return nil, err
	}

	out := make([]*social.Faction, 0, len(rows))
	for _, r := range rows {
		f := social.NewFaction(r.ID, r.Name)
		f.Capital = world.HexCoord{Q: r.CapitalQ, R: r.CapitalR}
		f.Inflation = r.Inflation
		f.ActiveTech = r.ActiveTech
		if r.StabilityBaseline.Valid {
			b := int(r.StabilityBaseline.Int64)
			f.StabilityBaseline = &b
		}

		var research factionResearch
		var overrides factionOverrides
		for _, field := range []struct {
			name string
			raw  string
			dst  any
		}{
			{"resources", r.ResourcesJSON, &f.Resources},
			{"policies", r.PoliciesJSON, &f.Policies},
			{"surplus", r.SurplusJSON, &f.Surplus},
			{"last class totals", r.LastTotalsJSON, &f.LastClassTotals},
			{"research", r.ResearchJSON, &research},
			{"wars", r.WarsJSON, &f.Wars},
			{"overrides", r.OverridesJSON, &overrides},
		} {
			if err := json.Unmarshal([]byte(field.raw), field.dst); err != nil {
				return nil, fmt.Errorf("faction %d %s: %w", r.ID, field.name, err)
			}
		}
		f.Researched = research.Researched
		f.ResearchProgress = research.Progress
		f.Satisfaction = overrides.Satisfaction
		f.PowerShares = overrides.PowerShares
		f.SurplusWeights = overrides.SurplusWeights
		f.Normalize()
		out = append(out, f)
	}
	return out, nil
}

// LoadDistricts reads every saved district in creation order.
func (db *DB) LoadDistricts() ([]*social.District, error) {
	var rows []districtRow
	if err := db.conn.Select(&rows, "SELECT * FROM districts ORDER BY rowid"); err != nil {
		return nil, err
	}

	out := make([]*social.District, 0, len(rows))
	for _, r := range rows {
		d := &social.District{
			Key:        r.Key,
			Owner:      r.Owner,
			Center:     world.HexCoord{Q: r.CenterQ, R: r.CenterR},
			Name:       r.Name,
			Population: r.Population,
			PopMax:     r.PopMax,
			GrowthRate: r.GrowthRate,
		}
		if err := json.Unmarshal([]byte(r.ClassMixJSON), &d.ClassMix); err != nil {
			return nil, fmt.Errorf("district %s class mix: %w", r.Key, err)
		}
		out = append(out, d)
	}
	return out, nil
}

// LoadTiles rebuilds the map from saved tiles.
func (db *DB) LoadTiles() (*world.Map, error) {
	radius := 0
	if v, err := db.GetMeta(MetaRadius); err == nil {
		radius, _ = strconv.Atoi(v)
	}

	var rows []tileRow
	if err := db.conn.Select(&rows, "SELECT * FROM tiles ORDER BY seq"); err != nil {
		return nil, err
	}
	m := world.NewMap(radius)
	for _, r := range rows {
		m.Set(&world.Tile{
			Coord:       world.HexCoord{Q: r.Q, R: r.R},
			Terrain:     world.Terrain(r.Terrain),
			Elevation:   r.Elevation,
			Rainfall:    r.Rainfall,
			Owner:       r.Owner,
			Building:    r.Building,
			Ownership:   world.MarketOwnership(r.Ownership),
			Investor:    economy.Class(r.Investor),
			DistrictKey: r.DistrictKey,
		})
	}
	return m, nil
}

// LoadUnits reads every saved unit.
func (db *DB) LoadUnits() ([]*social.Unit, error) {
	var rows []unitRow
	if err := db.conn.Select(&rows, "SELECT * FROM units ORDER BY id"); err != nil {
		return nil, err
	}
	out := make([]*social.Unit, 0, len(rows))
	for _, r := range rows {
		u := &social.Unit{
			ID:       r.ID,
			Owner:    r.Owner,
			Position: world.HexCoord{Q: r.PosQ, R: r.PosR},
			HP:       r.HP,
			MaxHP:    r.MaxHP,
		}
		if err := json.Unmarshal([]byte(r.ComponentsJSON), &u.Components); err != nil {
			return nil, fmt.Errorf("unit %d components: %w", r.ID, err)
		}
		out = append(out, u)
	}
	return out, nil
}

// RecentEvents returns the most recent N events, oldest first.
func (db *DB) RecentEvents(limit int) ([]engine.Event, error) {
	var rows []struct {
		Turn        uint64 `db:"turn"`
		FactionID   uint64 `db:"faction_id"`
		Description string `db:"description"`
		Category    string `db:"category"`
	}
	err := db.conn.Select(&rows,
		"SELECT turn, faction_id, description, category FROM events ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	events := make([]engine.Event, len(rows))
	for i, r := range rows {
		events[len(rows)-1-i] = engine.Event{Turn: r.Turn, Faction: r.FactionID, Description: r.Description, Category: r.Category}
	}
	return events, nil
}

// LoadWorld rebuilds a simulation from the saved state with the world-backed
// providers wired in. A nil catalog uses the defaults.
func (db *DB) LoadWorld(cat *catalog.Catalog, opts ...engine.Option) (*engine.Simulation, error) {
	m, err := db.LoadTiles()
	if err != nil {
		return nil, fmt.Errorf("load tiles: %w", err)
	}
	factions, err := db.LoadFactions()
	if err != nil {
		return nil, fmt.Errorf("load factions: %w", err)
	}
	districts, err := db.LoadDistricts()
	if err != nil {
		return nil, fmt.Errorf("load districts: %w", err)
	}
	units, err := db.LoadUnits()
	if err != nil {
		return nil, fmt.Errorf("load units: %w", err)
	}

	opts = append([]engine.Option{engine.WithWorldProviders()}, opts...)
	sim := engine.NewSimulation(cat, m, factions, districts, units, opts...)
	if v, err := db.GetMeta(MetaTurn); err == nil {
		sim.Turn, _ = strconv.ParseUint(v, 10, 64)
	}
	if v, err := db.GetMeta(MetaActing); err == nil {
		sim.Acting, _ = strconv.Atoi(v)
	}
	if events, err := db.RecentEvents(engine.MaxEvents); err == nil {
		sim.Events = events
	}

	slog.Info("world state loaded",
		"turn", sim.Turn,
		"factions", len(factions),
		"districts", len(districts),
		"tiles", m.TileCount(),
		"units", len(units),
	)
	return sim, nil
}

// SaveLedgers appends one ledger row per faction for a settled turn.
func (db *DB) SaveLedgers(turn uint64, ledgers map[social.FactionID]*economy.Ledger) error {
	if len(ledgers) == 0 {
		return nil
	}
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for id, l := range ledgers {
		if l == nil {
			continue
		}
		_, err := tx.Exec(`INSERT INTO ledgers
			(id, turn, faction_id, stability, build_power_max, resources_json, deltas_json, market_json)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), turn, id, l.Stability, l.BuildPowerMax,
			mustJSON(l.Resources), mustJSON(l.Deltas), mustJSON(l.Market),
		)
		if err != nil {
			return fmt.Errorf("insert ledger for faction %d: %w", id, err)
		}
	}
	return tx.Commit()
}

// LedgerHistory returns up to limit ledgers for a faction, newest first.
func (db *DB) LedgerHistory(faction social.FactionID, limit int) ([]*economy.Ledger, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []ledgerRow
	err := db.conn.Select(&rows,
		"SELECT * FROM ledgers WHERE faction_id = ? ORDER BY turn DESC LIMIT ?",
		faction, limit,
	)
	if err != nil {
		return nil, err
	}

	out := make([]*economy.Ledger, 0, len(rows))
	for _, r := range rows {
		l := &economy.Ledger{Turn: r.Turn, Stability: r.Stability, BuildPowerMax: r.BuildPowerMax}
		if err := json.Unmarshal([]byte(r.ResourcesJSON), &l.Resources); err != nil {
			return nil, fmt.Errorf("ledger %s resources: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(r.DeltasJSON), &l.Deltas); err != nil {
			return nil, fmt.Errorf("ledger %s deltas: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(r.MarketJSON), &l.Market); err != nil {
			return nil, fmt.Errorf("ledger %s market: %w", r.ID, err)
		}
		out = append(out, l)
	}
	return out, nil
}
