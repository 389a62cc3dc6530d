// Affordability: multi-resource cost checks and debits for build, recruit
// and refill actions. Population costs draw on districts, not the stockpile.
package engine

import (
	"encoding/json"
	"math"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/talgya/hexfront/internal/economy"
	"github.com/talgya/hexfront/internal/social"
)

// CostRequest names who pays and, optionally, which district supplies population.
type CostRequest struct {
	Faction  social.FactionID `json:"faction"`
	District string           `json:"district,omitempty"`
}

// NormalizeCost accepts a bare number (money) or a resource map in any of the
// shapes decoders produce. Fractional amounts round down; unknown keys are dropped.
func NormalizeCost(v any) economy.Stockpile {
	out := economy.Stockpile{}
	put := func(k string, amount float64) {
		r, ok := economy.ParseResource(k)
		if !ok || math.IsNaN(amount) || math.IsInf(amount, 0) {
			return
		}
		out[r] += int64(math.Floor(amount))
	}

	switch c := v.(type) {
	case nil:
	case int:
		out[economy.Money] = int64(c)
	case int64:
		out[economy.Money] = c
	case float64:
		put(string(economy.Money), c)
	case json.Number:
		if f, err := c.Float64(); err == nil {
			put(string(economy.Money), f)
		}
	case economy.Stockpile:
		for r, n := range c {
			out[r] += n
		}
	case map[economy.Resource]float64:
		for r, n := range c {
			put(string(r), n)
		}
	case map[string]int64:
		for k, n := range c {
			put(k, float64(n))
		}
	case map[string]float64:
		for k, n := range c {
			put(k, n)
		}
	case map[string]any:
		for k, raw := range c {
			switch n := raw.(type) {
			case float64:
				put(k, n)
			case int:
				put(k, float64(n))
			case int64:
				put(k, float64(n))
			case json.Number:
				if f, err := n.Float64(); err == nil {
					put(k, f)
				}
			}
		}
	}
	return out
}

// CanAfford reports whether the requesting faction can pay every positive
// entry of cost. Caller holds the lock.
func (s *Simulation) CanAfford(cost economy.Stockpile, req CostRequest) bool {
	f := s.Faction(req.Faction)
	if f == nil {
		return false
	}
	for r, need := range cost {
		if need <= 0 {
			continue
		}
		if r == economy.Pop {
			if s.availablePop(f, req.District) < need {
				return false
			}
			continue
		}
		if f.Resources[r] < need {
			return false
		}
	}
	return true
}

// ApplyCost debits cost from the requesting faction. Nothing changes when it
// cannot afford the whole cost. Caller holds the lock.
func (s *Simulation) ApplyCost(cost economy.Stockpile, req CostRequest) bool {
	if !s.CanAfford(cost, req) {
		return false
	}
	f := s.Faction(req.Faction)
	for r, need := range cost {
		if need <= 0 {
			continue
		}
		if r == economy.Pop {
			s.drawPop(f, req.District, need)
			continue
		}
		f.Resources[r] -= need
	}
	return true
}

// CheckCost is CanAfford for callers outside the turn lock.
func (s *Simulation) CheckCost(cost economy.Stockpile, req CostRequest) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.CanAfford(cost, req)
}

// availablePop is the named district's population, else the faction's
// district total, else the faction's population counter.
func (s *Simulation) availablePop(f *social.Faction, district string) int64 {
	if d := s.DistrictIndex[district]; d != nil && d.Owner == f.ID {
		return max(0, d.Population)
	}
	if ds := s.FactionDistricts(f.ID); len(ds) > 0 {
		return s.FactionPopulation(f.ID)
	}
	return max(0, f.Resources[economy.Pop])
}

// drawPop takes need people from the named district, else from the faction's
// districts largest first, else from the counter.
func (s *Simulation) drawPop(f *social.Faction, district string, need int64) {
	if d := s.DistrictIndex[district]; d != nil && d.Owner == f.ID {
		d.Population = max(0, d.Population-need)
		f.Resources[economy.Pop] = s.FactionPopulation(f.ID)
		return
	}

	ds := s.FactionDistricts(f.ID)
	if len(ds) == 0 {
		f.Resources[economy.Pop] = max(0, f.Resources[economy.Pop]-need)
		return
	}
	sort.SliceStable(ds, func(i, j int) bool { return ds[i].Population > ds[j].Population })
	for _, d := range ds {
		if need <= 0 {
			break
		}
		take := min(max(0, d.Population), need)
		d.Population -= take
		need -= take
	}
	f.Resources[economy.Pop] = s.FactionPopulation(f.ID)
}

// costOrder is the display order for the common cost resources.
var costOrder = []economy.Resource{
	economy.Money, economy.Industry, economy.Pop,
	economy.Food, economy.Metal, economy.Precious,
}

// FormatCost renders a cost for display, e.g. "$1,200 / industry 300 / pop 40".
func FormatCost(cost economy.Stockpile) string {
	var parts []string
	add := func(r economy.Resource) {
		v := cost[r]
		if v <= 0 {
			return
		}
		if r == economy.Money {
			parts = append(parts, "$"+humanize.Comma(v))
			return
		}
		parts = append(parts, string(r)+" "+humanize.Comma(v))
	}
	seen := map[economy.Resource]bool{}
	for _, r := range costOrder {
		add(r)
		seen[r] = true
	}
	for _, r := range cost.Keys() {
		if !seen[r] {
			add(r)
		}
	}
	return strings.Join(parts, " / ")
}
