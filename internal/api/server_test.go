package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/talgya/hexfront/internal/economy"
	"github.com/talgya/hexfront/internal/engine"
	"github.com/talgya/hexfront/internal/persistence"
)

const testKey = "secret"

func testServer(t *testing.T, withDB bool) (*Server, http.Handler) {
	t.Helper()
	sim := engine.NewWorld(engine.WorldConfig{Seed: 42, Radius: 8, Factions: 2})
	s := &Server{Sim: sim, Eng: engine.NewEngine(sim), AdminKey: testKey}
	if withDB {
		db, err := persistence.Open(filepath.Join(t.TempDir(), "api.db"))
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { db.Close() })
		s.DB = db
		sim.OnTurnEnd = func(turn uint64, ledgers map[uint64]*economy.Ledger) {
			if err := db.SaveLedgers(turn, ledgers); err != nil {
				t.Error(err)
			}
		}
	}
	return s, s.Handler()
}

func do(h http.Handler, method, path, body string, auth bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if auth {
		req.Header.Set("Authorization", "Bearer "+testKey)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestStatusAndFactions(t *testing.T) {
	_, h := testServer(t, false)

	rec := do(h, http.MethodGet, "/api/v1/status", "", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status code %d", rec.Code)
	}
	var status map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatal(err)
	}
	if status["season"] != "Spring, Year 1" || status["factions"] != float64(2) {
		t.Errorf("status = %v", status)
	}

	rec = do(h, http.MethodGet, "/api/v1/factions", "", false)
	var factions []engine.FactionSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &factions); err != nil {
		t.Fatal(err)
	}
	if len(factions) != 2 || factions[0].Population <= 0 {
		t.Errorf("factions = %+v", factions)
	}
}

func TestFactionRoutes(t *testing.T) {
	s, h := testServer(t, false)
	id := s.Sim.Factions[0].ID

	tests := []struct {
		path string
		want int
	}{
		{"/api/v1/faction/", http.StatusBadRequest},
		{"/api/v1/faction/abc", http.StatusBadRequest},
		{"/api/v1/faction/999", http.StatusNotFound},
		{"/api/v1/faction/999/preview", http.StatusNotFound},
		{"/api/v1/faction/" + itoa(id), http.StatusOK},
		{"/api/v1/faction/" + itoa(id) + "/preview", http.StatusOK},
		{"/api/v1/faction/" + itoa(id) + "/history", http.StatusServiceUnavailable},
		{"/api/v1/faction/" + itoa(id) + "/nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		if rec := do(h, http.MethodGet, tt.path, "", false); rec.Code != tt.want {
			t.Errorf("GET %s = %d, want %d", tt.path, rec.Code, tt.want)
		}
	}
}

func TestAdminAuth(t *testing.T) {
	s, h := testServer(t, false)

	if rec := do(h, http.MethodPost, "/api/v1/turn", "", false); rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated turn = %d", rec.Code)
	}
	if rec := do(h, http.MethodGet, "/api/v1/turn", "", true); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET turn = %d", rec.Code)
	}

	s.AdminKey = ""
	if rec := do(h, http.MethodPost, "/api/v1/turn", "", true); rec.Code != http.StatusForbidden {
		t.Errorf("turn with admin disabled = %d", rec.Code)
	}
}

func TestTurnAndHistory(t *testing.T) {
	s, h := testServer(t, true)
	id := s.Sim.Factions[0].ID
	path := "/api/v1/faction/" + itoa(id) + "/history?limit=5"

	rec := do(h, http.MethodGet, path, "", false)
	var history []*economy.Ledger
	if err := json.Unmarshal(rec.Body.Bytes(), &history); err != nil {
		t.Fatal(err)
	}
	if len(history) != 0 {
		t.Fatalf("history before any turn: %d", len(history))
	}

	for i := 0; i < 2; i++ {
		if rec := do(h, http.MethodPost, "/api/v1/turn", "", true); rec.Code != http.StatusOK {
			t.Fatalf("turn = %d: %s", rec.Code, rec.Body)
		}
	}
	rec = do(h, http.MethodGet, path, "", false)
	if err := json.Unmarshal(rec.Body.Bytes(), &history); err != nil {
		t.Fatal(err)
	}
	if len(history) != 2 || history[0].Turn != 2 {
		t.Errorf("history after two turns = %d entries", len(history))
	}
}

func TestAfford(t *testing.T) {
	s, h := testServer(t, false)
	id := s.Sim.Factions[0].ID
	money := s.Sim.Factions[0].Resources[economy.Money]

	tests := []struct {
		name string
		body string
		want bool
	}{
		{"bare number", `{"faction": ` + itoa(id) + `, "cost": 1}`, true},
		{"map", `{"faction": ` + itoa(id) + `, "cost": {"money": 1.9}}`, true},
		{"too much", `{"faction": ` + itoa(id) + `, "cost": {"money": ` + itoa(uint64(money)+1) + `}}`, false},
		{"unknown keys dropped", `{"faction": ` + itoa(id) + `, "cost": {"gold": 1e12}}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(h, http.MethodPost, "/api/v1/afford", tt.body, false)
			if rec.Code != http.StatusOK {
				t.Fatalf("code %d: %s", rec.Code, rec.Body)
			}
			var resp struct {
				Affordable bool `json:"affordable"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp.Affordable != tt.want {
				t.Errorf("affordable = %v, want %v", resp.Affordable, tt.want)
			}
		})
	}

	if rec := do(h, http.MethodPost, "/api/v1/afford", `{"faction": 999, "cost": 1}`, false); rec.Code != http.StatusNotFound {
		t.Errorf("unknown faction = %d", rec.Code)
	}
	if s.Sim.Factions[0].Resources[economy.Money] != money {
		t.Error("afford check spent money")
	}
}

func TestBuildErrors(t *testing.T) {
	_, h := testServer(t, false)

	tests := []struct {
		body string
		want int
	}{
		{`not json`, http.StatusBadRequest},
		{`{"faction": 999, "coord": {"q": 0, "r": 0}, "building": "farm"}`, http.StatusNotFound},
		{`{"faction": 1, "coord": {"q": 99, "r": 99}, "building": "farm"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		if rec := do(h, http.MethodPost, "/api/v1/build", tt.body, true); rec.Code != tt.want {
			t.Errorf("build %s = %d, want %d", tt.body, rec.Code, tt.want)
		}
	}
}

func TestInterventionAndWar(t *testing.T) {
	s, h := testServer(t, false)
	a, b := s.Sim.Factions[0], s.Sim.Factions[1]
	before := a.Resources[economy.Money]

	body := `{"faction": "` + a.Name + `", "resource": "money", "amount": 500}`
	if rec := do(h, http.MethodPost, "/api/v1/intervention", body, true); rec.Code != http.StatusOK {
		t.Fatalf("intervention = %d: %s", rec.Code, rec.Body)
	}
	if a.Resources[economy.Money] != before+500 {
		t.Errorf("money %d, want %d", a.Resources[economy.Money], before+500)
	}

	war := `{"attacker": ` + itoa(a.ID) + `, "defender": ` + itoa(b.ID) + `, "goal": "conquest"}`
	if rec := do(h, http.MethodPost, "/api/v1/war", war, true); rec.Code != http.StatusOK {
		t.Fatalf("war = %d: %s", rec.Code, rec.Body)
	}
	if !a.AtWarWith(b.ID) || !b.AtWarWith(a.ID) {
		t.Error("war not declared on both sides")
	}
	peace := `{"attacker": ` + itoa(a.ID) + `, "defender": ` + itoa(b.ID) + `, "peace": true}`
	if rec := do(h, http.MethodPost, "/api/v1/war", peace, true); rec.Code != http.StatusOK {
		t.Fatalf("peace = %d", rec.Code)
	}
	if a.AtWar() || b.AtWar() {
		t.Error("peace did not end the war")
	}
}

func TestPause(t *testing.T) {
	s, h := testServer(t, false)
	if rec := do(h, http.MethodPost, "/api/v1/pause", `{"paused": true}`, true); rec.Code != http.StatusOK {
		t.Fatalf("pause = %d", rec.Code)
	}
	if !s.Eng.Paused() {
		t.Error("engine not paused")
	}
}

func TestCORS(t *testing.T) {
	_, h := testServer(t, false)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/status", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight = %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Error("origin not allowed")
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Hour)
	if !rl.Allow("1.2.3.4") || !rl.Allow("1.2.3.4") {
		t.Fatal("burst refused")
	}
	if rl.Allow("1.2.3.4") {
		t.Error("third request allowed")
	}
	if !rl.Allow("5.6.7.8") {
		t.Error("other client limited")
	}
	if got := rl.RetryAfter("1.2.3.4"); got <= 0 {
		t.Errorf("retry after %d", got)
	}

	handler := RateLimitMiddleware(NewRateLimiter(1, time.Hour), func(w http.ResponseWriter, r *http.Request) {})
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("X-Forwarded-For", "9.9.9.9, 10.0.0.1")
	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		rec := httptest.NewRecorder()
		handler(rec, req)
		if rec.Code != want {
			t.Errorf("request %d = %d, want %d", i, rec.Code, want)
		}
		if want == http.StatusTooManyRequests && rec.Header().Get("Retry-After") == "" {
			t.Error("no Retry-After header")
		}
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		remote, xff, want string
	}{
		{"192.0.2.1:1234", "", "192.0.2.1"},
		{"[::1]:80", "", "::1"},
		{"192.0.2.1:1234", "203.0.113.5, 10.0.0.1", "203.0.113.5"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = tt.remote
		if tt.xff != "" {
			req.Header.Set("X-Forwarded-For", tt.xff)
		}
		if got := clientIP(req); got != tt.want {
			t.Errorf("clientIP(%q, %q) = %q, want %q", tt.remote, tt.xff, got, tt.want)
		}
	}
}

func itoa(v uint64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
