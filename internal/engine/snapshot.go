// Read-side views of the simulation, copied out under the read lock.
package engine

import (
	"github.com/talgya/hexfront/internal/economy"
	"github.com/talgya/hexfront/internal/social"
)

// Status is a world-level summary.
type Status struct {
	Turn      uint64           `json:"turn"`
	Acting    social.FactionID `json:"acting"`
	Factions  int              `json:"factions"`
	Districts int              `json:"districts"`
	Units     int              `json:"units"`
	Tiles     int              `json:"tiles"`
	Events    []Event          `json:"recent_events"`
}

// FactionSummary is one row of the faction list.
type FactionSummary struct {
	ID         social.FactionID `json:"id"`
	Name       string           `json:"name"`
	Population int64            `json:"population"`
	Money      int64            `json:"money"`
	Stability  int              `json:"stability"`
	Inflation  float64          `json:"inflation"`
	AtWar      bool             `json:"at_war"`
}

// FactionView is the full detail of one faction.
type FactionView struct {
	Faction   social.Faction    `json:"faction"`
	Stability Stability         `json:"stability"`
	Districts []social.District `json:"districts"`
	Ledger    *economy.Ledger   `json:"ledger,omitempty"`
	Units     []social.Unit     `json:"units"`
	Classes   economy.ByClass   `json:"classes"`
}

// Status summarises the world.
func (s *Simulation) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{
		Turn:      s.Turn,
		Factions:  len(s.Factions),
		Districts: len(s.Districts),
		Units:     len(s.Units),
		Tiles:     s.WorldMap.TileCount(),
	}
	if f := s.ActingFaction(); f != nil {
		st.Acting = f.ID
	}
	recent := s.Events
	if len(recent) > 20 {
		recent = recent[len(recent)-20:]
	}
	st.Events = append([]Event(nil), recent...)
	return st
}

// FactionSummaries lists every faction with its headline numbers.
func (s *Simulation) FactionSummaries() []FactionSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]FactionSummary, 0, len(s.Factions))
	for _, f := range s.Factions {
		out = append(out, FactionSummary{
			ID:         f.ID,
			Name:       f.Name,
			Population: s.FactionPopulation(f.ID),
			Money:      f.Resources[economy.Money],
			Stability:  s.stabilityOf(f).Avg,
			Inflation:  f.Inflation,
			AtWar:      f.AtWar(),
		})
	}
	return out
}

// FactionView returns a deep copy of one faction's state.
func (s *Simulation) FactionView(id social.FactionID) (*FactionView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f := s.Faction(id)
	if f == nil {
		return nil, false
	}
	v := &FactionView{
		Faction:   cloneFaction(f),
		Stability: s.stabilityOf(f),
		Ledger:    cloneLedger(f.Ledger),
		Classes:   s.ClassTotals(id),
	}
	for _, d := range s.FactionDistricts(id) {
		cp := *d
		cp.ClassMix = cloneScores(d.ClassMix)
		v.Districts = append(v.Districts, cp)
	}
	for _, u := range s.UnitsOf(id) {
		cp := *u
		cp.Components = append([]string(nil), u.Components...)
		v.Units = append(v.Units, cp)
	}
	return v, true
}

// Ledgers returns a copy of every faction's latest ledger.
func (s *Simulation) Ledgers() map[social.FactionID]*economy.Ledger {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[social.FactionID]*economy.Ledger, len(s.Factions))
	for id, l := range s.ledgers() {
		out[id] = cloneLedger(l)
	}
	return out
}

func cloneLedger(l *economy.Ledger) *economy.Ledger {
	if l == nil {
		return nil
	}
	cp := *l
	cp.Resources = l.Resources.Clone()
	cp.Deltas = l.Deltas.Clone()
	cp.Market = l.Market.Clone()
	return &cp
}

func cloneFaction(f *social.Faction) social.Faction {
	cp := *f
	cp.Resources = f.Resources.Clone()
	cp.Deltas = f.Deltas.Clone()
	cp.Surplus = f.Surplus.Clone()
	cp.LastClassTotals = f.LastClassTotals.Clone()
	cp.Policies.MarketTaxRates = make(map[economy.Resource]float64, len(f.Policies.MarketTaxRates))
	for r, v := range f.Policies.MarketTaxRates {
		cp.Policies.MarketTaxRates[r] = v
	}
	cp.Researched = make(map[string]bool, len(f.Researched))
	for k, v := range f.Researched {
		cp.Researched[k] = v
	}
	cp.ResearchProgress = make(map[string]int64, len(f.ResearchProgress))
	for k, v := range f.ResearchProgress {
		cp.ResearchProgress[k] = v
	}
	cp.Satisfaction = cloneScores(f.Satisfaction)
	cp.PowerShares = cloneScores(f.PowerShares)
	cp.SurplusWeights = cloneScores(f.SurplusWeights)
	cp.Wars = append([]social.WarTarget(nil), f.Wars...)
	if f.StabilityBaseline != nil {
		b := *f.StabilityBaseline
		cp.StabilityBaseline = &b
	}
	cp.Ledger = nil
	return cp
}

func cloneScores(c economy.ClassScores) economy.ClassScores {
	if c == nil {
		return nil
	}
	out := make(economy.ClassScores, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}
