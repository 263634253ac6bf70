package engine

// Terrain is the base surface of a tile.
type Terrain uint8

const (
	Water Terrain = iota
	Land
)

func (t Terrain) String() string {
	if t == Land {
		return "land"
	}
	return "water"
}

// Tile is one map cell: terrain plus at most one unit and one city.
type Tile struct {
	Terrain Terrain
	Loc     Location
	Unit    *Unit
	City    *City
}

// NewTile returns a tile with the given terrain and no occupants.
func NewTile(loc Location, terrain Terrain) Tile {
	return Tile{Terrain: terrain, Loc: loc}
}

// Clone deep-copies the tile, including any unit and city.
func (t Tile) Clone() Tile {
	out := t
	if t.Unit != nil {
		u := t.Unit.Clone()
		out.Unit = &u
	}
	if t.City != nil {
		c := t.City.Clone()
		out.City = &c
	}
	return out
}

// Empty reports whether the tile holds neither unit nor city.
func (t Tile) Empty() bool {
	return t.Unit == nil && t.City == nil
}
