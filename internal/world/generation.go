// World generation using layered simplex noise.
// Elevation and moisture layers are combined with a per-map-type mask and
// thresholded into water, plains, desert, and mountain bands.
package world

import (
	"fmt"
	"math"
	"strings"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// MapType selects the land mask used during generation.
type MapType uint8

const (
	MapContinent   MapType = iota // One central landmass
	MapArchipelago                // Scattered islands
)

// String returns the map type's name.
func (m MapType) String() string {
	switch m {
	case MapContinent:
		return "continent"
	case MapArchipelago:
		return "archipelago"
	default:
		return "unknown"
	}
}

// ParseMapType parses a map type name.
func ParseMapType(s string) (MapType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "continent", "":
		return MapContinent, nil
	case "archipelago":
		return MapArchipelago, nil
	}
	return 0, fmt.Errorf("unknown map type %q", s)
}

// Bands are the elevation cutoffs for one map type.
// Below Water is water; below Plains is plains; below Upland the tile is
// plains or desert depending on moisture; anything higher is mountain.
type Bands struct {
	Water         float64
	Plains        float64
	Upland        float64
	MoistureSplit float64 // Upland tiles wetter than this stay plains
}

// GenConfig holds map generation parameters.
type GenConfig struct {
	Type   MapType
	Seed   int64
	Width  int
	Height int

	ElevationOctaves int
	MoistureOctaves  int
	Frequency        float64 // Base noise frequency per tile
	Persistence      float64 // Amplitude falloff per octave

	// Continent mode blends noise with a radial mask: elev*(1-MaskWeight) + mask*MaskWeight.
	MaskWeight float64

	Continent   Bands
	Archipelago Bands
}

// DefaultGenConfig returns the standard 120×80 continent configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Type:             MapContinent,
		Seed:             1,
		Width:            120,
		Height:           80,
		ElevationOctaves: 6,
		MoistureOctaves:  4,
		Frequency:        0.03,
		Persistence:      0.5,
		MaskWeight:       0.4,
		Continent: Bands{
			Water:         0.36,
			Plains:        0.52,
			Upland:        0.62,
			MoistureSplit: 0.5,
		},
		Archipelago: Bands{
			Water:         0.55,
			Plains:        0.63,
			Upland:        0.70,
			MoistureSplit: 0.55,
		},
	}
}

// GenerateMap is the short form of Generate using default noise settings.
func GenerateMap(mapType MapType, seed int64, width, height int) *Grid {
	cfg := DefaultGenConfig()
	cfg.Type = mapType
	cfg.Seed = seed
	cfg.Width = width
	cfg.Height = height
	return Generate(cfg)
}

// Generate creates a terrain grid. Output is deterministic for a given config.
// Width and height must be positive.
func Generate(cfg GenConfig) *Grid {
	elevNoise := opensimplex.NewNormalized(cfg.Seed)
	moistNoise := opensimplex.NewNormalized(cfg.Seed + 1000)

	g := NewGrid(cfg.Width, cfg.Height)
	bands := cfg.Continent
	if cfg.Type == MapArchipelago {
		bands = cfg.Archipelago
	}

	for y := 0; y < cfg.Height; y++ {
		for x := 0; x < cfg.Width; x++ {
			fx, fy := float64(x), float64(y)
			elev := octaveNoise(elevNoise, fx, fy, cfg.ElevationOctaves, cfg.Frequency, cfg.Persistence)
			moist := octaveNoise(moistNoise, fx, fy, cfg.MoistureOctaves, cfg.Frequency, cfg.Persistence)

			if cfg.Type == MapContinent {
				elev = elev*(1-cfg.MaskWeight) + continentMask(x, y, cfg.Width, cfg.Height)*cfg.MaskWeight
			}

			t := g.At(x, y)
			t.Terrain = deriveTerrain(elev, moist, bands)
			if t.Terrain == TerrainWater {
				t.Owner = Unclaimable
			}
		}
	}

	return g
}

// continentMask is 1 at the map center, falling linearly to 0 halfway to the edge.
func continentMask(x, y, width, height int) float64 {
	dx := (float64(x) - float64(width)/2) / float64(width)
	dy := (float64(y) - float64(height)/2) / float64(height)
	dist := math.Sqrt(dx*dx + dy*dy)
	return 1 - math.Min(dist*2, 1)
}

func deriveTerrain(elev, moist float64, b Bands) Terrain {
	switch {
	case elev < b.Water:
		return TerrainWater
	case elev < b.Plains:
		return TerrainPlains
	case elev < b.Upland:
		if moist > b.MoistureSplit {
			return TerrainPlains
		}
		return TerrainDesert
	default:
		return TerrainMountain
	}
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

	if maxVal == 0 {
		return 0
	}
	return total / maxVal
}

// TerrainCounts returns a summary of terrain type distribution.
func TerrainCounts(g *Grid) map[Terrain]int {
	counts := make(map[Terrain]int)
	for i := range g.Tiles {
		counts[g.Tiles[i].Terrain]++
	}
	return counts
}

// TerrainName returns a human-readable name for a terrain type.
func TerrainName(t Terrain) string {
	switch t {
	case TerrainPlains:
		return "Plains"
	case TerrainDesert:
		return "Desert"
	case TerrainMountain:
		return "Mountain"
	case TerrainWater:
		return "Water"
	default:
		return "Unknown"
	}
}
