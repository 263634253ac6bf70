package engine

import "sort"

// MapData is the authoritative map state: the tile grid plus indices
// from unit and city ids to their locations. Every mutation keeps the
// grid and the indices consistent; no operation leaves a half-updated
// state behind an error.
type MapData struct {
	dims  Dims
	tiles *LocationGrid[Tile]

	unitLocByID     map[UnitID]Location
	unitCarrierByID map[UnitID]UnitID
	cityLocByID     map[CityID]Location

	nextUnitID UnitID
	nextCityID CityID
}

// NewMapData builds an empty map with terrain chosen by f.
func NewMapData(dims Dims, f func(Location) Terrain) *MapData {
	return &MapData{
		dims: dims,
		tiles: NewLocationGridInit(dims, func(loc Location) Tile {
			return NewTile(loc, f(loc))
		}),
		unitLocByID:     map[UnitID]Location{},
		unitCarrierByID: map[UnitID]UnitID{},
		cityLocByID:     map[CityID]Location{},
	}
}

// Dims returns the map's dimensions.
func (m *MapData) Dims() Dims { return m.dims }

// Get returns a pointer to the tile at loc, nil when out of bounds.
// It satisfies the pathfinding Source over tiles.
func (m *MapData) Get(loc Location) *Tile {
	return m.tiles.GetMut(loc)
}

// Terrain returns the terrain at loc.
func (m *MapData) Terrain(loc Location) (Terrain, bool) {
	t, ok := m.tiles.Get(loc)
	return t.Terrain, ok
}

// SetTerrain overwrites the terrain at loc.
func (m *MapData) SetTerrain(loc Location, terrain Terrain) bool {
	t := m.tiles.GetMut(loc)
	if t == nil {
		return false
	}
	t.Terrain = terrain
	return true
}

// Clone deep-copies the map and its indices.
func (m *MapData) Clone() *MapData {
	out := &MapData{
		dims:            m.dims,
		tiles:           CloneGridWith(m.tiles, Tile.Clone),
		unitLocByID:     make(map[UnitID]Location, len(m.unitLocByID)),
		unitCarrierByID: make(map[UnitID]UnitID, len(m.unitCarrierByID)),
		cityLocByID:     make(map[CityID]Location, len(m.cityLocByID)),
		nextUnitID:      m.nextUnitID,
		nextCityID:      m.nextCityID,
	}
	for id, loc := range m.unitLocByID {
		out.unitLocByID[id] = loc
	}
	for id, carrier := range m.unitCarrierByID {
		out.unitCarrierByID[id] = carrier
	}
	for id, loc := range m.cityLocByID {
		out.cityLocByID[id] = loc
	}
	return out
}

// NewUnit creates a unit at loc. The tile must have no unit already.
func (m *MapData) NewUnit(loc Location, t UnitType, alignment Alignment, name string) (UnitID, error) {
	tile := m.tiles.GetMut(loc)
	if tile == nil {
		return 0, MoveError{Kind: MoveErrDestinationOutOfBounds, Dest: loc}
	}
	if tile.Unit != nil {
		return 0, GameError{Kind: ErrMove, Loc: loc, UnitID: tile.Unit.ID}
	}
	id := m.nextUnitID
	m.nextUnitID++
	u := NewUnit(id, loc, t, alignment, name)
	tile.Unit = &u
	m.unitLocByID[id] = loc
	return id, nil
}

// NewCity creates a city at loc. The tile must have no city already.
func (m *MapData) NewCity(loc Location, alignment Alignment, name string) (CityID, error) {
	tile := m.tiles.GetMut(loc)
	if tile == nil {
		return 0, MoveError{Kind: MoveErrDestinationOutOfBounds, Dest: loc}
	}
	if tile.City != nil {
		return 0, GameError{Kind: ErrMove, Loc: loc, CityID: tile.City.ID}
	}
	id := m.nextCityID
	m.nextCityID++
	c := NewCity(id, loc, alignment, name)
	tile.City = &c
	m.cityLocByID[id] = loc
	return id, nil
}

// UnitByID returns the unit, whether on the map or aboard a carrier.
func (m *MapData) UnitByID(id UnitID) *Unit {
	if loc, ok := m.unitLocByID[id]; ok {
		return m.tiles.GetMut(loc).Unit
	}
	if carrierID, ok := m.unitCarrierByID[id]; ok {
		carrier := m.UnitByID(carrierID)
		if carrier == nil || carrier.Carrying == nil {
			return nil
		}
		for i := range carrier.Carrying.Carried {
			if carrier.Carrying.Carried[i].ID == id {
				return &carrier.Carrying.Carried[i]
			}
		}
	}
	return nil
}

// UnitLocByID returns the map location of a unit. Passengers report
// their carrier's location.
func (m *MapData) UnitLocByID(id UnitID) (Location, bool) {
	if loc, ok := m.unitLocByID[id]; ok {
		return loc, true
	}
	if carrierID, ok := m.unitCarrierByID[id]; ok {
		return m.UnitLocByID(carrierID)
	}
	return Location{}, false
}

// UnitByLoc returns the top-level unit at loc, nil if none.
func (m *MapData) UnitByLoc(loc Location) *Unit {
	tile := m.tiles.GetMut(loc)
	if tile == nil {
		return nil
	}
	return tile.Unit
}

// CityByID returns the city, nil if the id is unknown.
func (m *MapData) CityByID(id CityID) *City {
	loc, ok := m.cityLocByID[id]
	if !ok {
		return nil
	}
	return m.tiles.GetMut(loc).City
}

// CityByLoc returns the city at loc, nil if none.
func (m *MapData) CityByLoc(loc Location) *City {
	tile := m.tiles.GetMut(loc)
	if tile == nil {
		return nil
	}
	return tile.City
}

// PlayerUnitByID returns the unit only when player controls it.
func (m *MapData) PlayerUnitByID(player PlayerNum, id UnitID) *Unit {
	u := m.UnitByID(id)
	if u == nil || !u.Alignment.BelongsTo(player) {
		return nil
	}
	return u
}

// PlayerCityByID returns the city only when player controls it.
func (m *MapData) PlayerCityByID(player PlayerNum, id CityID) *City {
	c := m.CityByID(id)
	if c == nil || !c.Alignment.BelongsTo(player) {
		return nil
	}
	return c
}

// PlayerCityByLoc returns the city at loc only when player controls it.
func (m *MapData) PlayerCityByLoc(player PlayerNum, loc Location) *City {
	c := m.CityByLoc(loc)
	if c == nil || !c.Alignment.BelongsTo(player) {
		return nil
	}
	return c
}

// PlayerUnits returns the player's top-level units ordered by id.
func (m *MapData) PlayerUnits(player PlayerNum) []*Unit {
	ids := make([]UnitID, 0, len(m.unitLocByID))
	for id := range m.unitLocByID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	var units []*Unit
	for _, id := range ids {
		u := m.UnitByID(id)
		if u != nil && u.Alignment.BelongsTo(player) {
			units = append(units, u)
		}
	}
	return units
}

// PlayerUnitsDeep returns the player's units including passengers,
// ordered by id.
func (m *MapData) PlayerUnitsDeep(player PlayerNum) []*Unit {
	units := m.PlayerUnits(player)
	ids := make([]UnitID, 0, len(m.unitCarrierByID))
	for id := range m.unitCarrierByID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		u := m.UnitByID(id)
		if u != nil && u.Alignment.BelongsTo(player) {
			units = append(units, u)
		}
	}
	return units
}

// PlayerCities returns the player's cities ordered by id.
func (m *MapData) PlayerCities(player PlayerNum) []*City {
	ids := make([]CityID, 0, len(m.cityLocByID))
	for id := range m.cityLocByID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	var cities []*City
	for _, id := range ids {
		c := m.CityByID(id)
		if c != nil && c.Alignment.BelongsTo(player) {
			cities = append(cities, c)
		}
	}
	return cities
}

// Cities returns every city ordered by id.
func (m *MapData) Cities() []*City {
	ids := make([]CityID, 0, len(m.cityLocByID))
	for id := range m.cityLocByID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	cities := make([]*City, 0, len(ids))
	for _, id := range ids {
		cities = append(cities, m.CityByID(id))
	}
	return cities
}

// PlayersWithPresence returns the players that own at least one city or
// unit, in ascending order.
func (m *MapData) PlayersWithPresence() []PlayerNum {
	present := map[PlayerNum]bool{}
	for id := range m.cityLocByID {
		if p, ok := m.CityByID(id).Alignment.Player(); ok {
			present[p] = true
		}
	}
	for id := range m.unitLocByID {
		if p, ok := m.UnitByID(id).Alignment.Player(); ok {
			present[p] = true
		}
	}
	for id := range m.unitCarrierByID {
		u := m.UnitByID(id)
		if u == nil {
			continue
		}
		if p, ok := u.Alignment.Player(); ok {
			present[p] = true
		}
	}
	players := make([]PlayerNum, 0, len(present))
	for p := range present {
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool { return players[i] < players[j] })
	return players
}

// RelocateUnitByID moves a unit to dest, which must be empty of units.
// Passengers relocate off their carrier. The unit's own movement
// accounting is the caller's concern.
func (m *MapData) RelocateUnitByID(id UnitID, dest Location) error {
	destTile := m.tiles.GetMut(dest)
	if destTile == nil {
		return MoveError{Kind: MoveErrDestinationOutOfBounds, ID: id, Dest: dest}
	}
	if destTile.Unit != nil {
		return GameError{Kind: ErrMove, Loc: dest, UnitID: destTile.Unit.ID}
	}
	u, ok := m.PopUnitByID(id)
	if !ok {
		return GameError{Kind: ErrNoSuchUnit, UnitID: id}
	}
	return m.PlaceUnit(u, dest)
}

// CarryUnitByID boards the unit onto the carrier, removing it from its
// tile and reindexing it as a passenger.
func (m *MapData) CarryUnitByID(carrierID, id UnitID) error {
	carrier := m.UnitByID(carrierID)
	if carrier == nil {
		return GameError{Kind: ErrNoSuchUnit, UnitID: carrierID}
	}
	loc, ok := m.unitLocByID[id]
	if !ok {
		return GameError{Kind: ErrNoSuchUnit, UnitID: id}
	}
	tile := m.tiles.GetMut(loc)
	passenger := *tile.Unit
	if err := carrier.CarryUnit(passenger); err != nil {
		return err
	}
	tile.Unit = nil
	delete(m.unitLocByID, id)
	m.unitCarrierByID[id] = carrierID
	return nil
}

// PopUnitByID removes the unit from the map or its carrier and returns
// it. The second return is false when the id is unknown.
func (m *MapData) PopUnitByID(id UnitID) (Unit, bool) {
	if loc, ok := m.unitLocByID[id]; ok {
		tile := m.tiles.GetMut(loc)
		u := *tile.Unit
		tile.Unit = nil
		delete(m.unitLocByID, id)
		return u, true
	}
	if carrierID, ok := m.unitCarrierByID[id]; ok {
		carrier := m.UnitByID(carrierID)
		if carrier != nil {
			if u, found := carrier.ReleaseUnitByID(id); found {
				delete(m.unitCarrierByID, id)
				return u, true
			}
		}
	}
	return Unit{}, false
}

// PlaceUnit puts a previously popped unit at dest, which must be empty
// of units.
func (m *MapData) PlaceUnit(u Unit, dest Location) error {
	tile := m.tiles.GetMut(dest)
	if tile == nil {
		return MoveError{Kind: MoveErrDestinationOutOfBounds, ID: u.ID, Dest: dest}
	}
	if tile.Unit != nil {
		return GameError{Kind: ErrMove, Loc: dest, UnitID: tile.Unit.ID}
	}
	u.Loc = dest
	if u.Carrying != nil {
		for i := range u.Carrying.Carried {
			u.Carrying.Carried[i].Loc = dest
		}
	}
	placed := u
	tile.Unit = &placed
	m.unitLocByID[u.ID] = dest
	return nil
}

// DestroyUnitByID removes the unit and any passengers permanently.
func (m *MapData) DestroyUnitByID(id UnitID) bool {
	u, ok := m.PopUnitByID(id)
	if !ok {
		return false
	}
	if u.Carrying != nil {
		for _, p := range u.Carrying.Carried {
			delete(m.unitCarrierByID, p.ID)
		}
	}
	return true
}

// OccupyCity transfers the city at loc to the occupier's owner,
// clearing production and restoring its strength. A garrisoned city
// cannot be occupied; defeat the garrison first.
func (m *MapData) OccupyCity(loc Location, alignment Alignment) error {
	c := m.CityByLoc(loc)
	if c == nil {
		return GameError{Kind: ErrNoCityAtLocation, Loc: loc}
	}
	if m.UnitByLoc(loc) != nil {
		return GameError{Kind: ErrCannotOccupyGarrisonedCity, Loc: loc}
	}
	c.Alignment = alignment
	c.HP = c.MaxHP()
	c.ClearProduction(false)
	c.IgnoreClearedProduction = false
	return nil
}
