package engine

import "testing"

func TestParseMapData(t *testing.T) {
	m, err := ParseMapData(`
.0..
.i I
..1.
`)
	if err != nil {
		t.Fatal(err)
	}
	if m.Dims() != (Dims{Width: 4, Height: 3}) {
		t.Fatalf("dims = %s", m.Dims())
	}

	c := m.CityByLoc(Location{1, 0})
	if c == nil || !c.Alignment.BelongsTo(0) {
		t.Fatalf("city at (1,0): %+v", c)
	}
	c = m.CityByLoc(Location{2, 2})
	if c == nil || !c.Alignment.BelongsTo(1) {
		t.Fatalf("city at (2,2): %+v", c)
	}

	u := m.UnitByLoc(Location{1, 1})
	if u == nil || u.Type != Infantry || !u.Alignment.BelongsTo(0) {
		t.Fatalf("unit at (1,1): %+v", u)
	}
	u = m.UnitByLoc(Location{3, 1})
	if u == nil || u.Type != Infantry || !u.Alignment.BelongsTo(1) {
		t.Fatalf("unit at (3,1): %+v", u)
	}

	if terrain, _ := m.Terrain(Location{2, 1}); terrain != Water {
		t.Error("space should parse as water")
	}
	if terrain, _ := m.Terrain(Location{0, 0}); terrain != Land {
		t.Error("dot should parse as land")
	}
}

func TestParseMapDataSeaUnitsOnWater(t *testing.T) {
	m, err := ParseMapData(".td.")
	if err != nil {
		t.Fatal(err)
	}
	if terrain, _ := m.Terrain(Location{1, 0}); terrain != Water {
		t.Error("transports should sit on water")
	}
	if u := m.UnitByLoc(Location{2, 0}); u == nil || u.Type != Destroyer {
		t.Errorf("destroyer parse: %+v", u)
	}
}

func TestParseMapDataRejectsUnknown(t *testing.T) {
	if _, err := ParseMapData("..x.."); err == nil {
		t.Error("unknown character should fail")
	}
	if _, err := ParseMapData(""); err == nil {
		t.Error("empty input should fail")
	}
}

func TestParseMapDataNeutralCity(t *testing.T) {
	m, err := ParseMapData("*")
	if err != nil {
		t.Fatal(err)
	}
	c := m.CityByLoc(Location{0, 0})
	if c == nil || !c.Alignment.IsNeutral() {
		t.Fatalf("neutral city: %+v", c)
	}
}
