// Command hexfront runs the hex world economy: a timed server with an HTTP
// API, or a headless batch of turns.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/talgya/hexfront/internal/api"
	"github.com/talgya/hexfront/internal/catalog"
	"github.com/talgya/hexfront/internal/config"
	"github.com/talgya/hexfront/internal/economy"
	"github.com/talgya/hexfront/internal/engine"
	"github.com/talgya/hexfront/internal/persistence"
	"github.com/talgya/hexfront/internal/social"
)

func main() {
	cmd := &cli.Command{
		Name:  "hexfront",
		Usage: "multi-faction hex world economy",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "db", Usage: "SQLite database path (HEXFRONT_DB_PATH)"},
			&cli.StringFlag{Name: "catalog", Usage: "TOML catalog overrides (HEXFRONT_CATALOG)"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error (HEXFRONT_LOG_LEVEL)"},
			&cli.Int64Flag{Name: "seed", Usage: "world generation seed (HEXFRONT_SEED)"},
			&cli.IntFlag{Name: "radius", Usage: "map radius in hexes (HEXFRONT_MAP_RADIUS)"},
			&cli.IntFlag{Name: "factions", Usage: "factions in a fresh world (HEXFRONT_FACTIONS)"},
			&cli.BoolFlag{Name: "parallel", Usage: "refresh non-acting factions concurrently (HEXFRONT_PARALLEL_REFRESH)"},
			&cli.BoolFlag{Name: "fresh", Usage: "ignore any saved world and generate a new one"},
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run turns on a timer and serve the HTTP API",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "port", Usage: "HTTP port (HEXFRONT_API_PORT)"},
					&cli.DurationFlag{Name: "interval", Usage: "time between turns (HEXFRONT_TURN_INTERVAL)"},
				},
				Action: serve,
			},
			{
				Name:  "simulate",
				Usage: "settle a fixed number of turns and print a summary",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "turns", Value: 20, Usage: "turns to settle"},
				},
				Action: simulate,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("hexfront failed", "error", err)
		os.Exit(1)
	}
}

// setup loads config with flag overrides, installs the logger and opens the
// world from the database or generates it.
func setup(cmd *cli.Command) (*config.Config, *persistence.DB, *engine.Simulation, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	if cmd.IsSet("db") {
		cfg.DBPath = cmd.String("db")
	}
	if cmd.IsSet("catalog") {
		cfg.CatalogPath = cmd.String("catalog")
	}
	if cmd.IsSet("log-level") {
		cfg.LogLevel = cmd.String("log-level")
	}
	if cmd.IsSet("seed") {
		cfg.Seed = cmd.Int64("seed")
	}
	if cmd.IsSet("radius") {
		cfg.MapRadius = cmd.Int("radius")
	}
	if cmd.IsSet("factions") {
		cfg.Factions = cmd.Int("factions")
	}
	if cmd.IsSet("parallel") {
		cfg.ParallelRefresh = cmd.Bool("parallel")
	}
	if cmd.IsSet("port") {
		cfg.APIPort = cmd.Int("port")
	}
	if cmd.IsSet("interval") {
		cfg.TurnInterval = cmd.Duration("interval")
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, err
	}

	level, _ := config.ParseLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, nil, nil, err
	}

	// ── Database ──────────────────────────────────────────────────────
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, nil, err
	}
	worldID, err := db.WorldID()
	if err != nil {
		db.Close()
		return nil, nil, nil, err
	}
	slog.Info("database opened", "path", cfg.DBPath, "world", worldID)

	// ── Load or Generate World State ─────────────────────────────────
	var sim *engine.Simulation
	if db.HasWorldState() && !cmd.Bool("fresh") {
		slog.Info("found saved world state, loading...")
		sim, err = db.LoadWorld(cat, engine.WithParallelRefresh(cfg.ParallelRefresh))
		if err != nil {
			db.Close()
			return nil, nil, nil, err
		}
	} else {
		slog.Info("no saved state found, generating new world...")
		sim = engine.NewWorld(engine.WorldConfig{
			Seed:            cfg.Seed,
			Radius:          cfg.MapRadius,
			Factions:        cfg.Factions,
			ParallelRefresh: cfg.ParallelRefresh,
			Catalog:         cat,
		})
		if err := db.SaveWorldState(sim); err != nil {
			slog.Error("initial save failed", "error", err)
		}
	}
	return cfg, db, sim, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, db, sim, err := setup(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.AdminKey == "" {
		slog.Warn("HEXFRONT_ADMIN_KEY not set, admin POST endpoints will be disabled")
	}
	server := &api.Server{
		Sim:      sim,
		DB:       db,
		Port:     cfg.APIPort,
		AdminKey: cfg.AdminKey,
	}

	sim.OnTurnEnd = func(turn uint64, ledgers map[social.FactionID]*economy.Ledger) {
		if err := db.SaveLedgers(turn, ledgers); err != nil {
			slog.Error("ledger save failed", "turn", turn, "error", err)
		}
		server.InvalidateHistory()
	}

	eng := engine.NewEngine(sim)
	eng.Interval = cfg.TurnInterval
	eng.OnTurn = func(r *engine.TurnReport) {
		if r.Turn%uint64(cfg.SaveEvery) != 0 {
			return
		}
		if err := db.SaveWorldState(sim); err != nil {
			slog.Error("periodic save failed", "turn", r.Turn, "error", err)
		}
	}
	eng.OnYear = func(turn uint64) {
		logLeaderboard(sim, turn)
	}
	server.Eng = eng
	server.Start()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st := sim.Status()
	fmt.Printf("\nhexfront is running: %d factions, %d districts on %d tiles.\n", st.Factions, st.Districts, st.Tiles)
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.APIPort)
	if st.Turn > 0 {
		fmt.Printf("Resuming at turn %d (%s)\n", st.Turn, engine.TurnLabel(st.Turn))
	}
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	eng.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown failed", "error", err)
	}

	// Final save on shutdown.
	slog.Info("final save...")
	if err := db.SaveWorldState(sim); err != nil {
		return fmt.Errorf("final save: %w", err)
	}
	fmt.Println("Simulation stopped. World state saved.")
	return nil
}

func simulate(ctx context.Context, cmd *cli.Command) error {
	turns := cmd.Int("turns")
	if turns < 1 {
		return fmt.Errorf("turns must be positive, got %d", turns)
	}
	_, db, sim, err := setup(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	sim.OnTurnEnd = func(turn uint64, ledgers map[social.FactionID]*economy.Ledger) {
		if err := db.SaveLedgers(turn, ledgers); err != nil {
			slog.Error("ledger save failed", "turn", turn, "error", err)
		}
	}
	eng := engine.NewEngine(sim)
	eng.OnYear = func(turn uint64) { logLeaderboard(sim, turn) }

	start := time.Now()
	for i := 0; i < turns; i++ {
		if ctx.Err() != nil {
			break
		}
		if _, err := eng.Step(); err != nil {
			return err
		}
	}
	if err := db.SaveWorldState(sim); err != nil {
		return fmt.Errorf("save: %w", err)
	}

	st := sim.Status()
	fmt.Printf("\nSettled %d turns in %s, now %s.\n", turns, time.Since(start).Round(time.Millisecond), engine.TurnLabel(st.Turn))
	fmt.Printf("%-20s %12s %14s %10s %10s\n", "faction", "population", "money", "stability", "inflation")
	for _, f := range sim.FactionSummaries() {
		fmt.Printf("%-20s %12s %14s %10d %10.2f\n",
			f.Name, humanize.Comma(f.Population), humanize.Comma(f.Money), f.Stability, f.Inflation)
	}
	return nil
}

// logLeaderboard writes one line per faction at the turn of the year.
func logLeaderboard(sim *engine.Simulation, turn uint64) {
	for _, f := range sim.FactionSummaries() {
		slog.Info("year end",
			"label", engine.TurnLabel(turn),
			"faction", f.Name,
			"population", humanize.Comma(f.Population),
			"money", humanize.Comma(f.Money),
			"stability", f.Stability,
			"at_war", f.AtWar,
		)
	}
}
