// Governance: law changes and research choices a faction makes between turns.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/hexfront/internal/economy"
	"github.com/talgya/hexfront/internal/social"
)

// SetPolicies replaces a faction's law set after validating every law.
// Market tax rates above the law's cap are kept but clamped when applied.
func (s *Simulation) SetPolicies(id social.FactionID, p economy.Policies) error {
	if err := validatePolicies(p); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.Faction(id)
	if f == nil {
		return ErrUnknownFaction
	}
	if p.MarketTaxRates == nil {
		p.MarketTaxRates = map[economy.Resource]float64{}
	}
	if p.MintingAmount < 0 {
		p.MintingAmount = 0
	}
	old := f.Policies
	f.Policies = p
	for _, d := range s.FactionDistricts(id) {
		d.GrowthRate = GrowthRate(p)
	}

	if old.TaxLaw != p.TaxLaw || old.GovStructure != p.GovStructure {
		s.addEvent(id, "politics", fmt.Sprintf("%s adopts %s under %s", f.Name, p.TaxLaw, p.GovStructure))
	}
	slog.Info("policies changed", "faction", f.Name, "tax_law", p.TaxLaw, "gov", p.GovStructure,
		"welfare", p.SocialSecurityLaw, "mint", p.MintingAmount)
	return nil
}

func validatePolicies(p economy.Policies) error {
	checks := []struct {
		name  string
		value string
		ok    bool
	}{
		{"tax law", string(p.TaxLaw), oneOf(p.TaxLaw, economy.ConsumptionTax, economy.ProgressiveTax, economy.HeadTax, economy.ProportionalTax)},
		{"economy system", string(p.EconomySystem), oneOf(p.EconomySystem, economy.PlannedEconomy, economy.LaissezFaire, economy.Cooperative)},
		{"government", string(p.GovStructure), oneOf(p.GovStructure, economy.Monarchy, economy.PresidentialRepublic, economy.ParliamentaryRepublic)},
		{"speech law", string(p.SpeechLaw), oneOf(p.SpeechLaw, economy.FreeSpeech, economy.PressCensorship, economy.IllegalDissent)},
		{"health law", string(p.HealthLaw), oneOf(p.HealthLaw, economy.NoPublicHealth, economy.PublicInsurance)},
		{"education law", string(p.EducationLaw), oneOf(p.EducationLaw, economy.NoSchooling, economy.PrivateSchool, economy.PublicSchool)},
		{"social security law", string(p.SocialSecurityLaw), oneOf(p.SocialSecurityLaw, economy.NoSocialSecurity, economy.PoorRelief, economy.WageSubsidy, economy.Pension)},
		{"conscription law", string(p.ConscriptionLaw), oneOf(p.ConscriptionLaw, economy.VolunteerArmy, economy.MassConscription)},
	}
	for _, c := range checks {
		if !c.ok {
			return fmt.Errorf("%w: unknown %s %q", ErrInvalidTarget, c.name, c.value)
		}
	}
	for r := range p.MarketTaxRates {
		if !r.Tradable() {
			return fmt.Errorf("%w: %s is not taxed on the market", ErrInvalidTarget, r)
		}
	}
	return nil
}

func oneOf[T comparable](v T, allowed ...T) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

// SetResearch picks the tech a faction's science flows into. The step must be
// unresearched, its predecessor researched when chained, and its
// cross-tree prerequisites met.
func (s *Simulation) SetResearch(id social.FactionID, techID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.Faction(id)
	if f == nil {
		return ErrUnknownFaction
	}
	cat, i, ok := s.Catalog.FindTech(techID)
	if !ok {
		return fmt.Errorf("%w: unknown tech %q", ErrInvalidTarget, techID)
	}
	if f.Researched[techID] {
		return fmt.Errorf("%w: %s already researched", ErrInvalidTarget, techID)
	}
	step := cat.Steps[i]
	if step.Chained() && i > 0 && !f.Researched[cat.Steps[i-1].ID] {
		return fmt.Errorf("%w: %s needs %s first", ErrInvalidTarget, techID, cat.Steps[i-1].ID)
	}
	for _, pre := range step.Prereq {
		if !f.Researched[pre] {
			return fmt.Errorf("%w: %s needs %s first", ErrInvalidTarget, techID, pre)
		}
	}
	f.ActiveTech = techID
	return nil
}
