// World generation using layered simplex noise.
// Generates elevation and rainfall maps, then derives terrain.
package world

import (
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds world generation parameters.
type GenConfig struct {
	Radius      int     // Hex grid radius
	Seed        int64   // Random seed (0 = random)
	SeaLevel    float64 // Elevation below which tiles are shallow sea (0.0–1.0)
	DeepLevel   float64 // Elevation below which tiles are deep sea
	MountainLvl float64 // Elevation threshold for mountains
	BarrierLvl  float64 // Elevation threshold for impassable ridges
}

// DefaultGenConfig returns a reasonable starting configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Radius:      10,
		Seed:        0,
		SeaLevel:    0.22,
		DeepLevel:   0.12,
		MountainLvl: 0.70,
		BarrierLvl:  0.90,
	}
}

// SmallTestConfig returns a tiny world for rapid iteration.
func SmallTestConfig() GenConfig {
	cfg := DefaultGenConfig()
	cfg.Radius = 5
	cfg.Seed = 42
	return cfg
}

// Generate creates a complete world map with terrain. Every tile starts
// unowned and state-run.
func Generate(cfg GenConfig) *Map {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	elevNoise := opensimplex.NewNormalized(seed)
	rainNoise := opensimplex.NewNormalized(seed + 1)

	m := NewMap(cfg.Radius)

	for q := -cfg.Radius; q <= cfg.Radius; q++ {
		for r := -cfg.Radius; r <= cfg.Radius; r++ {
			coord := HexCoord{Q: q, R: r}
			if !m.InBounds(coord) {
				continue
			}

			// Hex axial → cartesian: x = q + r*0.5, y = r * sqrt(3)/2
			x := float64(q) + float64(r)*0.5
			y := float64(r) * math.Sqrt(3.0) / 2.0

			elev := octaveNoise(elevNoise, x, y, 4, 0.12, 0.5)
			rain := octaveNoise(rainNoise, x, y, 3, 0.09, 0.5)

			// Continental shaping: lower the rim so the map is ringed by sea.
			dist := math.Sqrt(x*x+y*y) / float64(max(cfg.Radius, 1))
			falloff := 1.0 - math.Pow(dist, 4)
			if falloff < 0 {
				falloff = 0
			}
			elev *= falloff

			m.Set(&Tile{
				Coord:     coord,
				Terrain:   deriveTerrain(elev, rain, cfg),
				Elevation: elev,
				Rainfall:  rain,
				Ownership: OwnershipState,
			})
		}
	}

	return m
}

// deriveTerrain determines terrain type from environmental parameters.
func deriveTerrain(elev, rain float64, cfg GenConfig) Terrain {
	switch {
	case elev < cfg.DeepLevel:
		return TerrainDeepSea
	case elev < cfg.SeaLevel:
		return TerrainShallowSea
	case elev > cfg.BarrierLvl:
		return TerrainBarrierMountain
	case elev > cfg.MountainLvl:
		return TerrainMountain
	case rain < 0.3:
		return TerrainDesert
	case rain > 0.6:
		return TerrainForest
	}
	return TerrainPlains
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

// TerrainCounts returns a summary of terrain type distribution.
func TerrainCounts(m *Map) map[Terrain]int {
	counts := make(map[Terrain]int)
	for _, t := range m.Tiles {
		counts[t.Terrain]++
	}
	return counts
}

// TerrainName returns a human-readable name for a terrain type.
func TerrainName(t Terrain) string {
	switch t {
	case TerrainPlains:
		return "Plains"
	case TerrainForest:
		return "Forest"
	case TerrainMountain:
		return "Mountain"
	case TerrainDesert:
		return "Desert"
	case TerrainBarrierMountain:
		return "Barrier Mountain"
	case TerrainShallowSea:
		return "Shallow Sea"
	case TerrainDeepSea:
		return "Deep Sea"
	default:
		return "Unknown"
	}
}
