package social

// WarGoal is what a belligerent is fighting for.
type WarGoal string

const (
	GoalNone      WarGoal = "none"
	GoalConquest  WarGoal = "conquest"
	GoalHumiliate WarGoal = "humiliate"
	GoalLiberate  WarGoal = "liberate"
)

// WarTarget is one active war from the declaring faction's side.
type WarTarget struct {
	Target FactionID `json:"target"`
	Goal   WarGoal   `json:"goal"`
}

// AtWar reports whether the faction has any active war.
func (f *Faction) AtWar() bool {
	return len(f.Wars) > 0
}

// AtWarWith reports whether the faction is at war with target.
func (f *Faction) AtWarWith(target FactionID) bool {
	for _, w := range f.Wars {
		if w.Target == target {
			return true
		}
	}
	return false
}

// AddWar records a war, replacing the goal if one already exists.
func (f *Faction) AddWar(target FactionID, goal WarGoal) {
	if goal == "" {
		goal = GoalNone
	}
	for i, w := range f.Wars {
		if w.Target == target {
			f.Wars[i].Goal = goal
			return
		}
	}
	f.Wars = append(f.Wars, WarTarget{Target: target, Goal: goal})
}

// RemoveWar drops the war with target. Returns false if there was none.
func (f *Faction) RemoveWar(target FactionID) bool {
	for i, w := range f.Wars {
		if w.Target == target {
			f.Wars = append(f.Wars[:i], f.Wars[i+1:]...)
			return true
		}
	}
	return false
}
