package engine

import (
	"math"
	"testing"

	"github.com/talgya/hexfront/internal/catalog"
	"github.com/talgya/hexfront/internal/economy"
	"github.com/talgya/hexfront/internal/social"
	"github.com/talgya/hexfront/internal/world"
)

// testSim builds a radius-2 all-plains map owned by one faction with a
// capital district at the origin.
func testSim(t *testing.T) (*Simulation, *social.Faction) {
	t.Helper()
	m := world.NewMap(2)
	for q := -2; q <= 2; q++ {
		for r := -2; r <= 2; r++ {
			c := world.HexCoord{Q: q, R: r}
			if c.S() < -2 || c.S() > 2 {
				continue
			}
			m.Set(&world.Tile{Coord: c, Terrain: world.TerrainPlains, Owner: 1, Ownership: world.OwnershipState})
		}
	}
	f := social.NewFaction(1, "Alpha")
	sim := NewSimulation(nil, m, []*social.Faction{f}, nil, nil, WithWorldProviders())
	city := m.Get(world.HexCoord{})
	city.Building = catalog.City
	sim.foundDistrict(f, city, "Capital")
	return sim, f
}

func uniformScores(v float64) economy.ClassScores {
	return economy.ClassScores{economy.Elite: v, economy.Expert: v, economy.Labor: v, economy.Subsistence: v}
}

func TestComputeStabilityRange(t *testing.T) {
	for _, sat := range []float64{-20, 0, 35, 60, 100, 140} {
		for _, atWar := range []bool{false, true} {
			st := ComputeStability(StabilityInput{
				Satisfaction: uniformScores(sat),
				ClassTotals:  economy.ByClass{economy.Elite: 10, economy.Labor: 90},
				PowerShares:  economy.ClassScores{economy.Elite: 0.8, economy.Labor: 0.2},
				AtWar:        atWar,
			})
			if st.Avg < 0 || st.Avg > 100 {
				t.Errorf("sat %v war %v: avg %d out of range", sat, atWar, st.Avg)
			}
			if st.Mul < MinProductionMul || st.Mul > MinProductionMul+ProductionMulSpan {
				t.Errorf("sat %v war %v: mul %v out of range", sat, atWar, st.Mul)
			}
		}
	}
}

func TestComputeStabilityUniformSatisfaction(t *testing.T) {
	st := ComputeStability(StabilityInput{
		Satisfaction: uniformScores(60),
		PowerShares:  economy.EqualShares(),
	})
	if st.Avg != 60 {
		t.Fatalf("avg = %d, want 60", st.Avg)
	}
	if math.Abs(st.Mul-1.05) > 1e-9 {
		t.Errorf("mul = %v, want 1.05", st.Mul)
	}
	if st.ProtestSeverity != 0 {
		t.Errorf("protest = %v, want 0", st.ProtestSeverity)
	}
}

func TestWarPenalties(t *testing.T) {
	tests := []struct {
		name string
		wars []social.WarTarget
		want int
	}{
		{"conquest", []social.WarTarget{{Target: 2, Goal: social.GoalConquest}}, 50},
		{"humiliate", []social.WarTarget{{Target: 2, Goal: social.GoalHumiliate}}, 10},
		{"mixed takes the worst", []social.WarTarget{
			{Target: 2, Goal: social.GoalConquest},
			{Target: 3, Goal: social.GoalNone},
		}, 10},
		{"unreadable wars", nil, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := ComputeStability(StabilityInput{
				Satisfaction: uniformScores(60),
				PowerShares:  economy.EqualShares(),
				AtWar:        true,
				Wars:         tt.wars,
			})
			if st.Avg != tt.want {
				t.Errorf("avg = %d, want %d", st.Avg, tt.want)
			}
		})
	}
}

func TestBaselineRecovery(t *testing.T) {
	high, low := 70, 50

	st := ComputeStability(StabilityInput{Satisfaction: uniformScores(60), PowerShares: economy.EqualShares(), Baseline: &high})
	if st.Avg != 61 || st.ClearBaseline {
		t.Errorf("below baseline: avg %d clear %v, want 61 false", st.Avg, st.ClearBaseline)
	}

	st = ComputeStability(StabilityInput{Satisfaction: uniformScores(60), PowerShares: economy.EqualShares(), Baseline: &low})
	if st.Avg != 60 || !st.ClearBaseline {
		t.Errorf("above baseline: avg %d clear %v, want 60 true", st.Avg, st.ClearBaseline)
	}
	if low != 50 {
		t.Error("baseline mutated")
	}
}

func TestProtestAndMicroBonuses(t *testing.T) {
	st := ComputeStability(StabilityInput{Satisfaction: uniformScores(20), PowerShares: economy.EqualShares()})
	if math.Abs(st.ProtestSeverity-0.5) > 1e-9 {
		t.Errorf("protest = %v, want 0.5", st.ProtestSeverity)
	}

	st = ComputeStability(StabilityInput{Satisfaction: uniformScores(90), PowerShares: economy.EqualShares()})
	if st.SciMicro != 0.05 || st.CivMicro != 0.05 {
		t.Errorf("micro at 90 = %v/%v, want 0.05", st.SciMicro, st.CivMicro)
	}
	st = ComputeStability(StabilityInput{Satisfaction: uniformScores(72), PowerShares: economy.EqualShares()})
	if st.SciMicro != 0.025 {
		t.Errorf("sci micro at 72 = %v, want 0.025", st.SciMicro)
	}
}

func TestDeclareWarRecordsBaselines(t *testing.T) {
	sim, a := testSim(t)
	b := social.NewFaction(2, "Beta")
	sim.Factions = append(sim.Factions, b)
	b.Normalize()
	sim.rebuildIndex()

	if err := sim.DeclareWar(a.ID, b.ID, social.GoalConquest); err != nil {
		t.Fatal(err)
	}
	if a.StabilityBaseline == nil || b.StabilityBaseline == nil {
		t.Fatal("baselines not recorded")
	}
	if !b.AtWarWith(a.ID) {
		t.Error("defender not at war")
	}
	if err := sim.DeclareWar(a.ID, a.ID, social.GoalConquest); err == nil {
		t.Error("self war accepted")
	}

	if err := sim.MakePeace(b.ID, a.ID); err != nil {
		t.Fatal(err)
	}
	if a.AtWar() || b.AtWar() {
		t.Error("still at war after peace")
	}
	if err := sim.MakePeace(a.ID, b.ID); err == nil {
		t.Error("second peace accepted")
	}
}

func TestClassSatisfactionBounds(t *testing.T) {
	p := economy.DefaultPolicies()
	p.SpeechLaw = economy.IllegalDissent
	p.TaxLaw = economy.HeadTax
	sats := ClassSatisfaction(p, economy.ByClass{economy.Labor: 100})
	for _, c := range economy.Classes {
		if sats[c] < 0 || sats[c] > 100 {
			t.Errorf("%s satisfaction %v out of range", c, sats[c])
		}
	}
	if sats[economy.Labor] >= sats[economy.Elite] {
		t.Errorf("labor %v should be below elite %v under a monarchy head tax", sats[economy.Labor], sats[economy.Elite])
	}
}

func TestPowerSharesSumToOne(t *testing.T) {
	shares := PowerShares(economy.DefaultPolicies(), economy.ByClass{economy.Elite: 10, economy.Expert: 40, economy.Labor: 200, economy.Subsistence: 50})
	sum := 0.0
	for _, v := range shares {
		sum += v
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("shares sum to %v", sum)
	}
	empty := PowerShares(economy.DefaultPolicies(), economy.NewByClass())
	for c, v := range empty {
		if v != 0 {
			t.Errorf("%s share %v with no population", c, v)
		}
	}
}
