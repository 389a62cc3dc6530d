// Districts: population catchments around city tiles.
package social

import (
	"github.com/talgya/hexfront/internal/economy"
	"github.com/talgya/hexfront/internal/world"
)

// District population rules.
const (
	PopPerPlains     = 1000 // Starting population per plains tile
	PopMaxPerPlains  = 5000 // Capacity per plains tile
	BaseGrowthRate   = 0.02 // Per turn, before policy modifiers
	DefaultReach     = 2    // District radius around its city
	EmptyTileWeight  = 4    // Subsistence weight of an undeveloped tile
	MinEliteFraction = 0.01
)

// Building class weights: which class staffs which building.
var ClassBuildingWeights = map[economy.Class]map[string]float64{
	economy.Elite:  {"precious_mine": 2, "airbase": 2, "admin_center": 4},
	economy.Expert: {"lab": 5, "refinery": 3, "fossil_power": 3, "renewable_power": 2, "construction_dept": 2},
	economy.Labor: {"city": 3, "industry": 5, "civilian_factory": 4, "mine": 4, "oil_field": 4,
		"barracks": 3, "farm": 5, "refinery": 2},
}

// District is the population catchment of one city tile.
type District struct {
	Key        string         `json:"key"` // City tile coordinate key
	Owner      FactionID      `json:"owner"`
	Center     world.HexCoord `json:"center"`
	Name       string         `json:"name"`
	Population int64          `json:"population"`
	PopMax     int64          `json:"pop_max"`
	GrowthRate float64        `json:"growth_rate"`

	// Class composition as weights; recomputed from the district's buildings.
	ClassMix economy.ClassScores `json:"class_mix"`
}

// NewDistrict creates a district around a city tile.
func NewDistrict(owner FactionID, center world.HexCoord, name string) *District {
	return &District{
		Key:        center.Key(),
		Owner:      owner,
		Center:     center,
		Name:       name,
		GrowthRate: BaseGrowthRate,
		ClassMix:   economy.BaselineClassMix,
	}
}

// Classes splits the population across classes. Every populated district keeps
// at least one percent elite (minimum one), drawn from the lower classes first.
func (d *District) Classes() economy.ByClass {
	mix := d.ClassMix
	if len(mix) == 0 {
		mix = economy.BaselineClassMix
	}
	out := economy.ApportionByClass(d.Population, mix)
	if d.Population <= 0 {
		return out
	}

	minElite := max(1, int64(float64(d.Population)*MinEliteFraction))
	need := minElite - out[economy.Elite]
	for _, c := range []economy.Class{economy.Subsistence, economy.Labor, economy.Expert} {
		if need <= 0 {
			break
		}
		take := min(need, out[c])
		out[c] -= take
		out[economy.Elite] += take
		need -= take
	}
	return out
}

// ClassMixFor weights classes by the buildings on a district's tiles.
// Undeveloped tiles feed subsistence. With no weight at all the baseline mix applies.
func ClassMixFor(tiles []*world.Tile) economy.ClassScores {
	mix := economy.ClassScores{}
	for _, t := range tiles {
		if t.Building == "" {
			mix[economy.Subsistence] += EmptyTileWeight
			continue
		}
		if t.Building == "city" {
			continue
		}
		for c, weights := range ClassBuildingWeights {
			mix[c] += weights[t.Building]
		}
	}

	sum := 0.0
	for _, v := range mix {
		sum += v
	}
	if sum <= 0 {
		return economy.BaselineClassMix
	}
	for c := range mix {
		mix[c] /= sum
	}
	return mix
}

// PlainsCapacity returns the starting population and cap for a set of tiles.
func PlainsCapacity(tiles []*world.Tile) (pop, popMax int64) {
	var plains int64
	for _, t := range tiles {
		if t.Terrain == world.TerrainPlains {
			plains++
		}
	}
	return plains * PopPerPlains, plains * PopMaxPerPlains
}

// Grow applies one turn of growth at the given rate, scaled by the throttle
// on the city's inputs, and bounded to [0, PopMax]. Returns the change.
func (d *District) Grow(rate, throttle float64) int64 {
	cur := max(0, d.Population)
	inc := int64(float64(cur) * rate * max(0, throttle))
	inc = max(-cur, min(inc, max(0, d.PopMax-cur)))
	d.Population = max(0, min(d.PopMax, cur+inc))
	return inc
}
