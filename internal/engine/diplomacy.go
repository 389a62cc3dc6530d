package engine

import (
	"fmt"

	"github.com/talgya/hexfront/internal/social"
)

// DeclareWar puts two factions at war. The declarer fights for goal; the
// defender fights with no goal. Each side keeps its pre-war stability as the
// baseline that peacetime recovery climbs back to.
func (s *Simulation) DeclareWar(attacker, defender social.FactionID, goal social.WarGoal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, d := s.Faction(attacker), s.Faction(defender)
	if a == nil || d == nil {
		return ErrUnknownFaction
	}
	if a == d {
		return fmt.Errorf("%w: a faction cannot fight itself", ErrInvalidTarget)
	}
	if goal == "" {
		goal = social.GoalNone
	}
	switch goal {
	case social.GoalNone, social.GoalConquest, social.GoalHumiliate, social.GoalLiberate:
	default:
		return fmt.Errorf("%w: unknown war goal %q", ErrInvalidTarget, goal)
	}

	s.recordBaseline(a)
	s.recordBaseline(d)
	a.AddWar(d.ID, goal)
	if !d.AtWarWith(a.ID) {
		d.AddWar(a.ID, social.GoalNone)
	}
	s.addEvent(a.ID, "war", fmt.Sprintf("%s declares war on %s (%s)", a.Name, d.Name, goal))
	return nil
}

// MakePeace ends the war between two factions on both sides.
func (s *Simulation) MakePeace(a, b social.FactionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fa, fb := s.Faction(a), s.Faction(b)
	if fa == nil || fb == nil {
		return ErrUnknownFaction
	}
	ended := fa.RemoveWar(b)
	ended = fb.RemoveWar(a) || ended
	if !ended {
		return fmt.Errorf("%w: %s and %s are not at war", ErrInvalidTarget, fa.Name, fb.Name)
	}
	s.addEvent(a, "war", fmt.Sprintf("%s and %s make peace", fa.Name, fb.Name))
	return nil
}

// recordBaseline stores f's current stability unless a baseline already exists.
func (s *Simulation) recordBaseline(f *social.Faction) {
	if f.StabilityBaseline != nil {
		return
	}
	pre := s.stabilityOf(f).Avg
	f.StabilityBaseline = &pre
}
