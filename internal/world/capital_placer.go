// Capital placement: finds suitable start locations and claims territory.
package world

import (
	"math/rand"
	"sort"
)

// CapitalSeed holds the parameters for one faction's starting capital.
type CapitalSeed struct {
	Coord HexCoord
	Score float64 // Desirability score
	Name  string
}

// PlaceCapitals picks up to n well-separated land tiles for faction capitals,
// best sites first.
func PlaceCapitals(m *Map, n int, seed int64) []CapitalSeed {
	rng := rand.New(rand.NewSource(seed + 200))

	type scored struct {
		coord HexCoord
		score float64
	}
	var candidates []scored
	for _, t := range m.All() {
		if s := capitalScore(m, t); s > 0 {
			candidates = append(candidates, scored{t.Coord, s})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	// Spread capitals out; relax the spacing if the map is too cramped.
	var seeds []CapitalSeed
	for minDist := max(m.Radius, 2); minDist >= 1 && len(seeds) < n; minDist-- {
		for _, c := range candidates {
			if len(seeds) >= n {
				break
			}
			if tooClose(c.coord, seeds, minDist) {
				continue
			}
			seeds = append(seeds, CapitalSeed{Coord: c.coord, Score: c.score})
		}
	}

	names := generateNames(rng, len(seeds))
	for i := range seeds {
		seeds[i].Name = names[i]
	}
	return seeds
}

// capitalScore evaluates how desirable a tile is for a capital.
// Prefers plains with plains around them, since plains set population capacity.
func capitalScore(m *Map, t *Tile) float64 {
	score := 0.0
	switch t.Terrain {
	case TerrainPlains:
		score += 3.0
	case TerrainForest:
		score += 1.5
	case TerrainDesert, TerrainMountain:
		score += 0.5
	default:
		return 0
	}

	for _, n := range m.Within(t.Coord, 2) {
		switch {
		case n.Terrain == TerrainPlains:
			score += 0.4
		case n.Terrain.IsSea():
			score += 0.1
		}
	}
	return score
}

// ClaimTerritory assigns every land or shallow-sea tile to the nearest capital
// within reach. owners[i] owns seeds[i]. Ties go to the earlier capital.
func ClaimTerritory(m *Map, seeds []CapitalSeed, owners []uint64, reach int) {
	for _, t := range m.All() {
		if t.Terrain == TerrainDeepSea || t.Terrain == TerrainBarrierMountain {
			continue
		}
		best, bestDist := -1, reach+1
		for i, s := range seeds {
			if d := Distance(t.Coord, s.Coord); d < bestDist {
				best, bestDist = i, d
			}
		}
		if best >= 0 && best < len(owners) {
			t.Owner = owners[best]
		}
	}
}

func tooClose(coord HexCoord, existing []CapitalSeed, minDist int) bool {
	for _, s := range existing {
		if Distance(coord, s.Coord) < minDist {
			return true
		}
	}
	return false
}

// generateNames produces procedural place names by combining syllables.
func generateNames(rng *rand.Rand, count int) []string {
	prefixes := []string{
		"Iron", "Green", "Ash", "Stone", "Mill", "Cross", "Black",
		"Silver", "Red", "White", "Dark", "Bright", "High", "Low",
		"Old", "New", "Far", "Deep", "Long", "Broad", "Gold", "Frost",
	}
	suffixes := []string{
		"haven", "ford", "hollow", "wick", "bridge", "gate", "keep",
		"stead", "field", "dale", "crest", "vale", "port", "bury",
	}

	used := make(map[string]bool)
	names := make([]string, 0, count)
	for len(names) < count {
		name := prefixes[rng.Intn(len(prefixes))] + suffixes[rng.Intn(len(suffixes))]
		if !used[name] {
			used[name] = true
			names = append(names, name)
		}
	}
	return names
}
