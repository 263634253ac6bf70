package engine

import (
	"fmt"
	"math/rand"
)

// MapParams controls random map generation.
type MapParams struct {
	Dims       Dims
	Wrapping   Wrap2d
	NumPlayers PlayerNum

	// SeedProb is the chance each tile starts as land.
	SeedProb float64
	// GrowthIterations is how many smoothing passes run after seeding.
	GrowthIterations int
	// CardinalGrowProb and DiagonalGrowProb are the per-neighbor
	// chances a water tile turns to land during growth.
	CardinalGrowProb float64
	DiagonalGrowProb float64

	// NeutralCityProb is the chance each land tile without a player
	// city hosts a neutral city.
	NeutralCityProb float64
}

// DefaultMapParams returns generation parameters that produce
// archipelago-style maps.
func DefaultMapParams(dims Dims, numPlayers PlayerNum) MapParams {
	return MapParams{
		Dims:             dims,
		Wrapping:         WrapBoth,
		NumPlayers:       numPlayers,
		SeedProb:         0.1,
		GrowthIterations: 2,
		CardinalGrowProb: 0.2,
		DiagonalGrowProb: 0.05,
		NeutralCityProb:  0.05,
	}
}

// GenerateMap builds a random map: seeded landmasses grown outward by
// neighbor-weighted chance, one starting city per player, and neutral
// cities scattered across the remaining land. All randomness comes from
// rng, so equal seeds generate equal maps.
func GenerateMap(rng *rand.Rand, params MapParams, cityNamer Namer) (*MapData, error) {
	dims := params.Dims
	if dims.Area() == 0 {
		return nil, fmt.Errorf("map generation: empty dims %s", dims)
	}

	terrain := NewLocationGrid[Terrain](dims)
	for x := uint16(0); x < dims.Width; x++ {
		for y := uint16(0); y < dims.Height; y++ {
			if rng.Float64() < params.SeedProb {
				terrain.Replace(Location{x, y}, Land)
			}
		}
	}

	for iter := 0; iter < params.GrowthIterations; iter++ {
		next := terrain.Clone()
		for x := uint16(0); x < dims.Width; x++ {
			for y := uint16(0); y < dims.Height; y++ {
				loc := Location{x, y}
				if t, _ := terrain.Get(loc); t == Land {
					continue
				}
				p := params.CardinalGrowProb*float64(countLandNeighbors(terrain, loc, params.Wrapping, CardinalNeighbors)) +
					params.DiagonalGrowProb*float64(countLandNeighbors(terrain, loc, params.Wrapping, DiagonalNeighbors))
				if rng.Float64() < p {
					next.Replace(loc, Land)
				}
			}
		}
		terrain = next
	}

	m := NewMapData(dims, func(loc Location) Terrain {
		t, _ := terrain.Get(loc)
		return t
	})

	var land []Location
	for _, loc := range dims.Locations() {
		if t, _ := m.Terrain(loc); t == Land {
			land = append(land, loc)
		}
	}
	if len(land) < int(params.NumPlayers) {
		return nil, fmt.Errorf("map generation: only %d land tiles for %d players", len(land), params.NumPlayers)
	}

	// starting cities: a random distinct land tile per player
	perm := rng.Perm(len(land))
	for p := PlayerNum(0); p < params.NumPlayers; p++ {
		loc := land[perm[p]]
		if _, err := m.NewCity(loc, BelligerentAlignment(p), cityNamer.Name()); err != nil {
			return nil, err
		}
	}

	for _, loc := range land {
		if m.CityByLoc(loc) != nil {
			continue
		}
		if rng.Float64() < params.NeutralCityProb {
			if _, err := m.NewCity(loc, Neutral, cityNamer.Name()); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func countLandNeighbors(terrain *LocationGrid[Terrain], loc Location, wrapping Wrap2d, offsets []Vec2d) int {
	n := 0
	for _, offset := range offsets {
		neighbor, ok := wrapping.WrappedAdd(terrain.Dims(), loc, offset)
		if !ok {
			continue
		}
		if t, _ := terrain.Get(neighbor); t == Land {
			n++
		}
	}
	return n
}
