// Turn settlement: resolves the acting faction's economy, applies it, and
// refreshes every other faction's ledger.
package engine

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/talgya/hexfront/internal/economy"
	"github.com/talgya/hexfront/internal/social"
)

// Population growth modifiers.
const (
	HealthGrowthBonus  = 0.02
	DraftGrowthPenalty = 0.015
)

// Resolution is the pure compute pass for one faction.
type Resolution struct {
	Stability Stability
	Market    *MarketResult
	Surplus   SurplusSplit
}

// TurnReport summarises one EndTurn for logs and callers.
type TurnReport struct {
	Turn       uint64                               `json:"turn"`
	Faction    social.FactionID                     `json:"faction"`
	Stability  int                                  `json:"stability"`
	Migrated   int64                                `json:"migrated"`
	ClassTaxes int64                                `json:"class_taxes"`
	Grown      int64                                `json:"grown"`
	Researched string                               `json:"researched,omitempty"`
	Ledgers    map[social.FactionID]*economy.Ledger `json:"-"`
}

// resolve runs stability → market → taxation → distribution for f without
// mutating anything.
func (s *Simulation) resolve(f *social.Faction) *Resolution {
	st := s.stabilityOf(f)
	m := ClearMarket(MarketInput{
		Faction:   f,
		Tiles:     s.WorldMap.OwnedBy(f.ID),
		Catalog:   s.Catalog,
		Research:  s.Research,
		Stability: st,
	})
	ApplyTaxation(m, f, s.Units, s.Catalog, st)
	split := DistributeSurplus(m.Snapshot.TaxedProfitTotal, s.Politics.ClassTotals(f), f.SurplusWeightsOrDefault())
	ApplySurplus(m.Snapshot, split)
	return &Resolution{Stability: st, Market: m, Surplus: split}
}

// Preview resolves a faction's economy as it would settle now, without applying it.
func (s *Simulation) Preview(id social.FactionID) (*Resolution, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f := s.Faction(id)
	if f == nil {
		return nil, false
	}
	return s.resolve(f), true
}

// EndTurn settles the acting faction's turn, refreshes the others, and passes
// play to the next faction.
func (s *Simulation) EndTurn() (*TurnReport, error) {
	s.mu.Lock()
	f := s.ActingFaction()
	if f == nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("end turn: no factions")
	}

	r := s.resolve(f)
	report := s.settle(f, r)
	if err := s.refreshOthers(f); err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("refresh factions: %w", err)
	}

	s.Turn++
	s.Acting = (s.Acting + 1) % len(s.Factions)
	report.Turn = s.Turn
	report.Ledgers = make(map[social.FactionID]*economy.Ledger, len(s.Factions))
	for id, l := range s.ledgers() {
		report.Ledgers[id] = cloneLedger(l)
	}
	cb := s.OnTurnEnd
	s.mu.Unlock()

	if cb != nil {
		cb(report.Turn, report.Ledgers)
	}
	return report, nil
}

// settle applies a resolution to the acting faction in order.
func (s *Simulation) settle(f *social.Faction, r *Resolution) *TurnReport {
	snap := r.Market.Snapshot
	deltas := r.Market.Deltas
	res := f.Resources
	report := &TurnReport{Faction: f.ID, Stability: r.Stability.Avg}

	// (a) tradables are flows: this turn's output only.
	for _, k := range economy.TradableResources {
		res[k] = max(0, deltas[k])
	}
	// (b) stocks accumulate; pop follows the districts.
	for _, k := range economy.AllResources {
		if k.Tradable() || k == economy.Pop {
			continue
		}
		res.Add(k, deltas[k])
	}
	// (c) upkeep.
	for _, cost := range []int64{snap.OperatingCost, snap.MilitaryCost, snap.SocialSecurityCost} {
		res[economy.Money] = max(0, res[economy.Money]-max(0, cost))
	}
	// (d) minting.
	mint := max(0, f.Policies.MintingAmount)
	res[economy.Money] += mint

	// (e) class income.
	income := economy.NewByClass()
	for _, c := range economy.Classes {
		income[c] = max(0, snap.SurplusDelta[c]) + max(0, snap.SocialSecuritySubsidy[c])
		f.Surplus[c] = max(0, f.Surplus[c]+income[c])
	}

	// (f) surplus follows people between classes.
	totals := s.Politics.ClassTotals(f)
	report.Migrated = MigrateSurplus(f.Surplus, f.LastClassTotals, totals)
	f.LastClassTotals = totals.Clone()

	// (g) head and proportional taxes.
	taxes := CollectClassTaxes(f.Policies, totals, income, f.Surplus)
	snap.HeadTaxCollected = taxes.Head
	snap.ProportionalTaxCollected = taxes.Proportional
	report.ClassTaxes = taxes.Total()
	res[economy.Money] += report.ClassTaxes
	deltas[economy.Money] = max(0, deltas[economy.Money]+report.ClassTaxes)

	if r.Stability.ClearBaseline {
		f.StabilityBaseline = nil
	}
	report.Researched = s.advanceResearch(f)
	report.Grown = s.growPopulation(f, r.Market)
	res[economy.Pop] = s.FactionPopulation(f.ID)
	f.Inflation = economy.NextInflation(f.Inflation, mint, r.Market.Deltas[economy.Money])

	f.Deltas = deltas
	f.Ledger = &economy.Ledger{
		Turn:          s.Turn + 1,
		Resources:     res.Clone(),
		Deltas:        deltas.Clone(),
		Market:        snap,
		BuildPowerMax: snap.BuildPowerMax,
		Stability:     r.Stability.Avg,
	}

	slog.Info("turn report",
		"turn", s.Turn+1,
		"faction", f.Name,
		"stability", r.Stability.Avg,
		"money", humanize.Comma(res[economy.Money]),
		"tax_income", humanize.Comma(snap.TaxIncome),
		"class_taxes", humanize.Comma(report.ClassTaxes),
		"surplus", humanize.Comma(snap.TotalSurplus),
		"upkeep", humanize.Comma(snap.OperatingCost+snap.MilitaryCost+snap.SocialSecurityCost),
		"pop", humanize.Comma(res[economy.Pop]),
		"inflation", fmt.Sprintf("%.2f", f.Inflation),
	)
	return report
}

// refreshOthers recomputes every non-acting faction's market and ledger and
// applies its money and industry flows. Factions never read each other, so
// the parallel path touches disjoint state.
func (s *Simulation) refreshOthers(acting *social.Faction) error {
	var g errgroup.Group
	if !s.ParallelRefresh {
		g.SetLimit(1)
	} else {
		g.SetLimit(runtime.GOMAXPROCS(0))
	}
	for _, f := range s.Factions {
		if f == acting {
			continue
		}
		g.Go(func() error {
			return s.refresh(f)
		})
	}
	return g.Wait()
}

func (s *Simulation) refresh(f *social.Faction) error {
	if f.Resources == nil {
		return fmt.Errorf("faction %d has no stockpile", f.ID)
	}
	r := s.resolve(f)
	snap := r.Market.Snapshot
	d := r.Market.Deltas
	res := f.Resources

	upkeep := max(0, snap.OperatingCost) + max(0, snap.MilitaryCost) + max(0, snap.SocialSecurityCost)
	res[economy.Money] = max(0, res[economy.Money]+d[economy.Money]-upkeep)
	res[economy.Industry] = max(0, res[economy.Industry]+d[economy.Industry])
	res[economy.Pop] = s.FactionPopulation(f.ID)

	f.Deltas = d
	f.Ledger = &economy.Ledger{
		Turn:          s.Turn + 1,
		Resources:     res.Clone(),
		Deltas:        d.Clone(),
		Market:        snap,
		BuildPowerMax: snap.BuildPowerMax,
		Stability:     r.Stability.Avg,
	}
	return nil
}

// advanceResearch invests stored science into the active tech. Returns the
// step id when it completes.
func (s *Simulation) advanceResearch(f *social.Faction) string {
	if f.ActiveTech == "" {
		return ""
	}
	cat, i, ok := s.Catalog.FindTech(f.ActiveTech)
	if !ok || f.Researched[f.ActiveTech] {
		f.ActiveTech = ""
		return ""
	}
	step := cat.Steps[i]
	need := max(0, step.Cost-f.ResearchProgress[step.ID])
	invest := min(max(0, f.Resources[economy.Science]), need)
	f.Resources[economy.Science] -= invest
	f.ResearchProgress[step.ID] += invest
	if f.ResearchProgress[step.ID] < step.Cost {
		return ""
	}

	f.Researched[step.ID] = true
	delete(f.ResearchProgress, step.ID)
	f.ActiveTech = ""
	s.addEvent(f.ID, "research", fmt.Sprintf("%s completed %s", f.Name, step.Name))
	return step.ID
}

// growPopulation grows each of f's districts, throttled by its city's inputs.
func (s *Simulation) growPopulation(f *social.Faction, m *MarketResult) int64 {
	rate := GrowthRate(f.Policies)
	var grown int64
	for _, d := range s.FactionDistricts(f.ID) {
		d.GrowthRate = rate
		grown += d.Grow(rate, m.CityThrottle(d.Key))
	}
	return grown
}

// GrowthRate is the per-turn population growth under a law set.
func GrowthRate(p economy.Policies) float64 {
	rate := social.BaseGrowthRate
	if p.HealthLaw == economy.PublicInsurance {
		rate += HealthGrowthBonus
	}
	if p.ConscriptionLaw == economy.MassConscription {
		rate -= DraftGrowthPenalty
	}
	return rate
}

// ledgers returns every faction's latest ledger.
func (s *Simulation) ledgers() map[social.FactionID]*economy.Ledger {
	out := make(map[social.FactionID]*economy.Ledger, len(s.Factions))
	for _, f := range s.Factions {
		if f.Ledger != nil {
			out[f.ID] = f.Ledger
		}
	}
	return out
}
