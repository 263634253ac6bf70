package engine

import (
	"math/rand"
	"testing"
)

func TestGenerateMapDeterministic(t *testing.T) {
	params := DefaultMapParams(Dims{30, 30}, 2)
	m1, err := GenerateMap(rand.New(rand.NewSource(7)), params, NewIntNamer("City"))
	if err != nil {
		t.Fatal(err)
	}
	m2, err := GenerateMap(rand.New(rand.NewSource(7)), params, NewIntNamer("City"))
	if err != nil {
		t.Fatal(err)
	}
	for _, loc := range params.Dims.Locations() {
		t1, _ := m1.Terrain(loc)
		t2, _ := m2.Terrain(loc)
		if t1 != t2 {
			t.Fatalf("terrain diverged at %s: %s vs %s", loc, t1, t2)
		}
		c1, c2 := m1.CityByLoc(loc), m2.CityByLoc(loc)
		if (c1 == nil) != (c2 == nil) {
			t.Fatalf("city placement diverged at %s", loc)
		}
		if c1 != nil && c1.Alignment != c2.Alignment {
			t.Fatalf("city alignment diverged at %s", loc)
		}
	}
}

func TestGenerateMapStartingCities(t *testing.T) {
	params := DefaultMapParams(Dims{40, 40}, 4)
	m, err := GenerateMap(rand.New(rand.NewSource(11)), params, NewIntNamer("City"))
	if err != nil {
		t.Fatal(err)
	}
	seen := map[Location]bool{}
	for p := PlayerNum(0); p < 4; p++ {
		cities := m.PlayerCities(p)
		if len(cities) != 1 {
			t.Fatalf("player %d: %d starting cities, want 1", p, len(cities))
		}
		loc := cities[0].Loc
		if seen[loc] {
			t.Fatalf("two starting cities share %s", loc)
		}
		seen[loc] = true
		if terrain, _ := m.Terrain(loc); terrain != Land {
			t.Fatalf("starting city at %s sits on %s", loc, terrain)
		}
	}
	for _, city := range m.Cities() {
		if terrain, _ := m.Terrain(city.Loc); terrain != Land {
			t.Fatalf("city %d at %s sits on %s", city.ID, city.Loc, terrain)
		}
	}
}

func TestGenerateMapEmptyDims(t *testing.T) {
	params := DefaultMapParams(Dims{0, 10}, 2)
	if _, err := GenerateMap(rand.New(rand.NewSource(1)), params, NewIntNamer("City")); err == nil {
		t.Fatal("expected error for empty dims")
	}
}

func TestGenerateMapDifferentSeedsDiffer(t *testing.T) {
	params := DefaultMapParams(Dims{30, 30}, 2)
	m1, err := GenerateMap(rand.New(rand.NewSource(1)), params, NewIntNamer("City"))
	if err != nil {
		t.Fatal(err)
	}
	m2, err := GenerateMap(rand.New(rand.NewSource(2)), params, NewIntNamer("City"))
	if err != nil {
		t.Fatal(err)
	}
	for _, loc := range params.Dims.Locations() {
		t1, _ := m1.Terrain(loc)
		t2, _ := m2.Terrain(loc)
		if t1 != t2 {
			return
		}
	}
	t.Error("seeds 1 and 2 produced identical terrain")
}
