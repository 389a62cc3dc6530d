package engine

import (
	"encoding/json"
	"testing"

	"github.com/talgya/hexfront/internal/economy"
	"github.com/talgya/hexfront/internal/social"
	"github.com/talgya/hexfront/internal/world"
)

func TestNormalizeCost(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want economy.Stockpile
	}{
		{"nil", nil, economy.Stockpile{}},
		{"int", 500, economy.Stockpile{economy.Money: 500}},
		{"float rounds down", 12.7, economy.Stockpile{economy.Money: 12}},
		{"json number", json.Number("42"), economy.Stockpile{economy.Money: 42}},
		{"decoded map", map[string]any{"money": 10.9, "pop": 3, "bogus": 5.0}, economy.Stockpile{economy.Money: 10, economy.Pop: 3}},
		{"string map", map[string]int64{"industry": 300, "metal": 20}, economy.Stockpile{economy.Industry: 300, economy.Metal: 20}},
		{"stockpile", economy.Stockpile{economy.Food: 7}, economy.Stockpile{economy.Food: 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeCost(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for r, v := range tt.want {
				if got[r] != v {
					t.Errorf("%s = %d, want %d", r, got[r], v)
				}
			}
		})
	}
}

func TestFormatCost(t *testing.T) {
	tests := []struct {
		cost economy.Stockpile
		want string
	}{
		{economy.Stockpile{economy.Pop: 40, economy.Industry: 300, economy.Money: 1200}, "$1,200 / industry 300 / pop 40"},
		{economy.Stockpile{economy.Science: 5, economy.Money: 10}, "$10 / science 5"},
		{economy.Stockpile{economy.Metal: 0}, ""},
	}
	for _, tt := range tests {
		if got := FormatCost(tt.cost); got != tt.want {
			t.Errorf("FormatCost(%v) = %q, want %q", tt.cost, got, tt.want)
		}
	}
}

func TestApplyCostDebitsExactly(t *testing.T) {
	sim, f := testSim(t)
	f.Resources[economy.Money] = 1000
	f.Resources[economy.Industry] = 50
	key := world.HexCoord{}.Key()
	popBefore := sim.DistrictIndex[key].Population

	cost := economy.Stockpile{economy.Money: 600, economy.Industry: 50, economy.Pop: 100}
	req := CostRequest{Faction: f.ID, District: key}
	if !sim.CanAfford(cost, req) {
		t.Fatal("expected affordable")
	}
	if !sim.ApplyCost(cost, req) {
		t.Fatal("apply failed")
	}
	if f.Resources[economy.Money] != 400 || f.Resources[economy.Industry] != 0 {
		t.Errorf("resources after = %v", f.Resources)
	}
	if got := sim.DistrictIndex[key].Population; got != popBefore-100 {
		t.Errorf("district pop %d, want %d", got, popBefore-100)
	}
	if f.Resources[economy.Pop] != popBefore-100 {
		t.Errorf("pop counter %d not synced", f.Resources[economy.Pop])
	}
}

func TestApplyCostRefusesPartial(t *testing.T) {
	sim, f := testSim(t)
	f.Resources[economy.Money] = 100
	f.Resources[economy.Metal] = 5

	cost := economy.Stockpile{economy.Money: 50, economy.Metal: 10}
	if sim.ApplyCost(cost, CostRequest{Faction: f.ID}) {
		t.Fatal("unaffordable cost applied")
	}
	if f.Resources[economy.Money] != 100 || f.Resources[economy.Metal] != 5 {
		t.Errorf("resources changed: %v", f.Resources)
	}
	if sim.CheckCost(cost, CostRequest{Faction: 99}) {
		t.Error("unknown faction can afford")
	}
}

func TestPopulationFromCounterWithoutDistricts(t *testing.T) {
	f := social.NewFaction(3, "Nomads")
	f.Resources[economy.Pop] = 50
	sim := NewSimulation(nil, world.NewMap(0), []*social.Faction{f}, nil, nil)

	req := CostRequest{Faction: f.ID}
	if sim.CanAfford(economy.Stockpile{economy.Pop: 60}, req) {
		t.Error("60 pop affordable from a counter of 50")
	}
	if !sim.ApplyCost(economy.Stockpile{economy.Pop: 30}, req) {
		t.Fatal("apply failed")
	}
	if f.Resources[economy.Pop] != 20 {
		t.Errorf("pop counter %d, want 20", f.Resources[economy.Pop])
	}
}

func TestPopulationDrawsLargestDistrictFirst(t *testing.T) {
	f := social.NewFaction(1, "Alpha")
	small := &social.District{Key: "a", Owner: 1, Population: 40}
	large := &social.District{Key: "b", Owner: 1, Population: 100}
	sim := NewSimulation(nil, world.NewMap(0), []*social.Faction{f}, []*social.District{small, large}, nil)

	if !sim.ApplyCost(economy.Stockpile{economy.Pop: 120}, CostRequest{Faction: f.ID}) {
		t.Fatal("apply failed")
	}
	if large.Population != 0 || small.Population != 20 {
		t.Errorf("large %d small %d, want 0 and 20", large.Population, small.Population)
	}
	if f.Resources[economy.Pop] != 20 {
		t.Errorf("pop counter %d, want 20", f.Resources[economy.Pop])
	}
}
