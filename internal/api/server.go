// Package api provides the HTTP API for observing and steering the world.
// GET endpoints are public (read-only observation).
// POST endpoints that change the world require a bearer token.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/talgya/hexfront/internal/economy"
	"github.com/talgya/hexfront/internal/engine"
	"github.com/talgya/hexfront/internal/persistence"
	"github.com/talgya/hexfront/internal/social"
	"github.com/talgya/hexfront/internal/world"
)

// historyCacheSize bounds the cached ledger histories (one per faction/limit pair).
const historyCacheSize = 128

// Server serves the world state over HTTP.
type Server struct {
	Sim      *engine.Simulation
	Eng      *engine.Engine
	DB       *persistence.DB // Optional; history and snapshots need it
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	once    sync.Once
	history *lru.Cache[historyKey, []*economy.Ledger]
	writes  *RateLimiter
	srv     *http.Server
}

type historyKey struct {
	faction social.FactionID
	limit   int
}

func (s *Server) init() {
	s.once.Do(func() {
		s.history, _ = lru.New[historyKey, []*economy.Ledger](historyCacheSize)
		s.writes = NewRateLimiter(60, time.Minute)
	})
}

// Handler returns the routed API with CORS applied.
func (s *Server) Handler() http.Handler {
	s.init()
	mux := http.NewServeMux()

	// Public endpoints.
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/factions", s.handleFactions)
	mux.HandleFunc("/api/v1/faction/", s.handleFactionRoutes)
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/map", s.handleMap)
	mux.HandleFunc("/api/v1/afford", RateLimitMiddleware(s.writes, s.handleAfford))

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/turn", s.adminOnly(RateLimitMiddleware(s.writes, s.handleTurn)))
	mux.HandleFunc("/api/v1/build", s.adminOnly(s.handleBuild))
	mux.HandleFunc("/api/v1/recruit", s.adminOnly(s.handleRecruit))
	mux.HandleFunc("/api/v1/refill", s.adminOnly(s.handleRefill))
	mux.HandleFunc("/api/v1/policies", s.adminOnly(s.handlePolicies))
	mux.HandleFunc("/api/v1/research", s.adminOnly(s.handleResearch))
	mux.HandleFunc("/api/v1/war", s.adminOnly(s.handleWar))
	mux.HandleFunc("/api/v1/intervention", s.adminOnly(s.handleIntervention))
	mux.HandleFunc("/api/v1/pause", s.adminOnly(s.handlePause))
	mux.HandleFunc("/api/v1/snapshot", s.adminOnly(s.handleSnapshot))

	return corsMiddleware(mux)
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "", "persistence", s.DB != nil)

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
	go func() {
		t := time.NewTicker(10 * time.Minute)
		defer t.Stop()
		for range t.C {
			s.writes.Sweep()
		}
	}()
}

// Shutdown stops the listener started by Start.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// InvalidateHistory drops cached ledger histories. Call after ledgers are saved.
func (s *Server) InvalidateHistory() {
	s.init()
	s.history.Purge()
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS env var to a comma-separated list of allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no HEXFRONT_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

// decodePost rejects non-POST requests and decodes the JSON body into v.
// Numbers decode as json.Number so cost maps keep their precision.
func decodePost(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return false
	}
	return true
}

// actionError maps engine action failures to HTTP statuses.
func actionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrUnknownFaction):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, engine.ErrCannotAfford):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := s.Sim.Status()
	resp := map[string]any{
		"name":          "hexfront",
		"turn":          st.Turn,
		"season":        engine.TurnLabel(st.Turn),
		"acting":        st.Acting,
		"factions":      st.Factions,
		"districts":     st.Districts,
		"units":         st.Units,
		"tiles":         st.Tiles,
		"recent_events": st.Events,
	}
	if s.Eng != nil {
		resp["running"] = s.Eng.Running()
		resp["paused"] = s.Eng.Paused()
		resp["interval"] = s.Eng.Interval.String()
	}
	writeJSON(w, resp)
}

func (s *Server) handleFactions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.FactionSummaries())
}

// handleFactionRoutes dispatches /api/v1/faction/{id}[/history|/preview].
func (s *Server) handleFactionRoutes(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/faction/"), "/"), "/")
	if parts[0] == "" {
		http.Error(w, "missing faction id", http.StatusBadRequest)
		return
	}
	id, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		http.Error(w, "invalid faction id", http.StatusBadRequest)
		return
	}

	switch {
	case len(parts) == 1:
		s.handleFactionDetail(w, r, id)
	case len(parts) == 2 && parts[1] == "history":
		s.handleFactionHistory(w, r, id)
	case len(parts) == 2 && parts[1] == "preview":
		s.handleFactionPreview(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleFactionDetail(w http.ResponseWriter, r *http.Request, id social.FactionID) {
	view, ok := s.Sim.FactionView(id)
	if !ok {
		http.Error(w, "faction not found", http.StatusNotFound)
		return
	}
	writeJSON(w, view)
}

func (s *Server) handleFactionHistory(w http.ResponseWriter, r *http.Request, id social.FactionID) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}
	if _, ok := s.Sim.FactionView(id); !ok {
		http.Error(w, "faction not found", http.StatusNotFound)
		return
	}
	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	key := historyKey{faction: id, limit: limit}
	if cached, ok := s.history.Get(key); ok {
		writeJSON(w, cached)
		return
	}
	history, err := s.DB.LedgerHistory(id, limit)
	if err != nil {
		slog.Error("ledger history failed", "faction", id, "error", err)
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}
	if history == nil {
		history = []*economy.Ledger{}
	}
	s.history.Add(key, history)
	writeJSON(w, history)
}

// handleFactionPreview shows how the faction's economy would settle right now.
func (s *Server) handleFactionPreview(w http.ResponseWriter, r *http.Request, id social.FactionID) {
	res, ok := s.Sim.Preview(id)
	if !ok {
		http.Error(w, "faction not found", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]any{
		"stability": res.Stability,
		"market":    res.Market.Snapshot,
		"deltas":    res.Market.Deltas,
		"surplus":   res.Surplus,
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= engine.MaxEvents {
			limit = n
		}
	}

	var events []engine.Event
	s.Sim.View(func() {
		src := s.Sim.Events
		if f := r.URL.Query().Get("faction"); f != "" {
			id, _ := strconv.ParseUint(f, 10, 64)
			for _, e := range src {
				if e.Faction == id {
					events = append(events, e)
				}
			}
		} else {
			events = append(events, src...)
		}
	})

	start := 0
	if len(events) > limit {
		start = len(events) - limit
	}
	writeJSON(w, events[start:])
}

// handleMap returns every tile for a hex renderer.
func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	type tileEntry struct {
		Q         int                   `json:"q"`
		R         int                   `json:"r"`
		Terrain   world.Terrain         `json:"terrain"`
		Owner     uint64                `json:"owner,omitempty"`
		Building  string                `json:"building,omitempty"`
		District  string                `json:"district,omitempty"`
		Ownership world.MarketOwnership `json:"ownership,omitempty"`
	}

	var (
		radius int
		tiles  []tileEntry
	)
	s.Sim.View(func() {
		radius = s.Sim.WorldMap.Radius
		all := s.Sim.WorldMap.All()
		tiles = make([]tileEntry, 0, len(all))
		for _, t := range all {
			tiles = append(tiles, tileEntry{
				Q:         t.Coord.Q,
				R:         t.Coord.R,
				Terrain:   t.Terrain,
				Owner:     t.Owner,
				Building:  t.Building,
				District:  t.DistrictKey,
				Ownership: t.Ownership,
			})
		}
	})
	writeJSON(w, map[string]any{"radius": radius, "tiles": tiles})
}

// handleAfford checks a cost against a faction without spending anything.
// The cost is a bare number (money) or a resource map.
func (s *Server) handleAfford(w http.ResponseWriter, r *http.Request) {
	var req struct {
		engine.CostRequest
		Cost any `json:"cost"`
	}
	if !decodePost(w, r, &req) {
		return
	}
	if _, ok := s.Sim.FactionView(req.Faction); !ok {
		http.Error(w, "faction not found", http.StatusNotFound)
		return
	}
	cost := engine.NormalizeCost(req.Cost)
	writeJSON(w, map[string]any{
		"affordable": s.Sim.CheckCost(cost, req.CostRequest),
		"cost":       cost,
		"formatted":  engine.FormatCost(cost),
	})
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var (
		report *engine.TurnReport
		err    error
	)
	if s.Eng != nil {
		report, err = s.Eng.Step()
	} else {
		report, err = s.Sim.EndTurn()
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.InvalidateHistory()
	writeJSON(w, map[string]any{
		"report": report,
		"season": engine.TurnLabel(report.Turn),
	})
}

func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	var req engine.BuildRequest
	if !decodePost(w, r, &req) {
		return
	}
	if err := s.Sim.Build(req); err != nil {
		actionError(w, err)
		return
	}
	slog.Info("building placed", "faction", req.Faction, "building", req.Building, "coord", req.Coord.Key())
	writeJSON(w, map[string]any{"success": true, "building": req.Building, "coord": req.Coord})
}

func (s *Server) handleRecruit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Faction    social.FactionID `json:"faction"`
		Coord      world.HexCoord   `json:"coord"`
		Components []string         `json:"components"`
	}
	if !decodePost(w, r, &req) {
		return
	}
	u, err := s.Sim.Recruit(req.Faction, req.Coord, req.Components)
	if err != nil {
		actionError(w, err)
		return
	}
	writeJSON(w, u)
}

func (s *Server) handleRefill(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Unit social.UnitID `json:"unit"`
	}
	if !decodePost(w, r, &req) {
		return
	}
	if err := s.Sim.Refill(req.Unit); err != nil {
		actionError(w, err)
		return
	}
	writeJSON(w, map[string]any{"success": true, "unit": req.Unit})
}

func (s *Server) handlePolicies(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Faction  social.FactionID `json:"faction"`
		Policies economy.Policies `json:"policies"`
	}
	if !decodePost(w, r, &req) {
		return
	}
	if err := s.Sim.SetPolicies(req.Faction, req.Policies); err != nil {
		actionError(w, err)
		return
	}
	writeJSON(w, map[string]any{"success": true})
}

func (s *Server) handleResearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Faction social.FactionID `json:"faction"`
		Tech    string           `json:"tech"`
	}
	if !decodePost(w, r, &req) {
		return
	}
	if err := s.Sim.SetResearch(req.Faction, req.Tech); err != nil {
		actionError(w, err)
		return
	}
	writeJSON(w, map[string]any{"success": true, "tech": req.Tech})
}

// handleWar declares war, or makes peace when peace is set.
func (s *Server) handleWar(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Attacker social.FactionID `json:"attacker"`
		Defender social.FactionID `json:"defender"`
		Goal     social.WarGoal   `json:"goal,omitempty"`
		Peace    bool             `json:"peace,omitempty"`
	}
	if !decodePost(w, r, &req) {
		return
	}
	var err error
	if req.Peace {
		err = s.Sim.MakePeace(req.Attacker, req.Defender)
	} else {
		err = s.Sim.DeclareWar(req.Attacker, req.Defender, req.Goal)
	}
	if err != nil {
		actionError(w, err)
		return
	}
	writeJSON(w, map[string]any{"success": true, "at_war": !req.Peace})
}

func (s *Server) handleIntervention(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Faction  string `json:"faction"`
		Resource string `json:"resource"`
		Amount   int64  `json:"amount"`
	}
	if !decodePost(w, r, &req) {
		return
	}
	if req.Amount <= 0 {
		http.Error(w, "amount must be positive", http.StatusBadRequest)
		return
	}
	details, err := s.Sim.ProvisionFaction(req.Faction, req.Resource, req.Amount)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]any{"success": true, "details": details})
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	if s.Eng == nil {
		http.Error(w, "no engine running", http.StatusServiceUnavailable)
		return
	}
	if r.Method == http.MethodPost {
		var req struct {
			Paused bool `json:"paused"`
		}
		if !decodePost(w, r, &req) {
			return
		}
		s.Eng.SetPaused(req.Paused)
		slog.Info("engine pause changed", "paused", req.Paused)
	}
	writeJSON(w, map[string]bool{"paused": s.Eng.Paused()})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}

	if err := s.DB.SaveWorldState(s.Sim); err != nil {
		slog.Error("snapshot save failed", "error", err)
		http.Error(w, "snapshot failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{
		"turn":    s.Sim.Status().Turn,
		"message": "snapshot saved",
	})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
