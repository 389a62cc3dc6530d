package social

import "github.com/talgya/hexfront/internal/world"

// UnitID is a unique identifier for a military unit.
type UnitID = uint64

// Unit is a deployed formation of regiments.
type Unit struct {
	ID         UnitID         `json:"id"`
	Owner      FactionID      `json:"owner"`
	Position   world.HexCoord `json:"position"`
	Components []string       `json:"components"` // Regiment type ids, support first
	HP         int            `json:"hp"`
	MaxHP      int            `json:"max_hp"`
}

// Missing returns how many hit points the unit is down.
func (u *Unit) Missing() int {
	return max(0, u.MaxHPOrCurrent()-u.HP)
}

// MaxHPOrCurrent returns MaxHP, falling back to HP and then 1.
func (u *Unit) MaxHPOrCurrent() int {
	switch {
	case u.MaxHP > 0:
		return u.MaxHP
	case u.HP > 0:
		return u.HP
	}
	return 1
}
