package engine

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/talgya/hexfront/internal/economy"
	"github.com/talgya/hexfront/internal/social"
)

// ProvisionFaction grants a stockpile resource to a named faction. Tradables
// are flows and are not grantable; population goes to the largest district.
func (s *Simulation) ProvisionFaction(name, resource string, amount int64) (string, error) {
	r, ok := economy.ParseResource(resource)
	if !ok {
		return "", fmt.Errorf("unknown resource %q", resource)
	}
	if r.Tradable() {
		return "", fmt.Errorf("%s is a market flow and cannot be stockpiled", r)
	}
	if amount <= 0 {
		return "", fmt.Errorf("amount must be positive, got %d", amount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.findFactionByName(name)
	if f == nil {
		return "", fmt.Errorf("faction %q not found", name)
	}

	if r == economy.Pop {
		var target *social.District
		for _, d := range s.FactionDistricts(f.ID) {
			if target == nil || d.Population > target.Population {
				target = d
			}
		}
		if target != nil {
			target.Population += amount
			f.Resources[economy.Pop] = s.FactionPopulation(f.ID)
		} else {
			f.Resources[economy.Pop] += amount
		}
	} else {
		f.Resources[r] += amount
	}

	desc := fmt.Sprintf("%s receives %s %s", f.Name, humanize.Comma(amount), r)
	s.addEvent(f.ID, "intervention", desc)
	slog.Info("provision intervention", "faction", f.Name, "resource", r, "amount", amount)
	return desc, nil
}

func (s *Simulation) findFactionByName(name string) *social.Faction {
	for _, f := range s.Factions {
		if strings.EqualFold(f.Name, name) {
			return f
		}
	}
	return nil
}
