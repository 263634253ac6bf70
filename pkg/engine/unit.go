package engine

import "fmt"

// UnitID identifies a unit for its whole lifetime. IDs are allocated
// monotonically and never reused, so a stale id always misses rather
// than aliasing a newer unit.
type UnitID uint64

// TransportMode is the medium a unit travels in.
type TransportMode uint8

const (
	LandMode TransportMode = iota
	SeaMode
	AirMode
)

func (m TransportMode) String() string {
	switch m {
	case LandMode:
		return "land"
	case SeaMode:
		return "sea"
	case AirMode:
		return "air"
	default:
		return "unknown"
	}
}

// UnitType enumerates the producible unit types.
type UnitType uint8

const (
	Infantry UnitType = iota
	Armor
	Fighter
	Bomber
	Transport
	Destroyer
	Submarine
	Cruiser
	Battleship
	Carrier
)

// UnitTypes lists every unit type in production-menu order.
var UnitTypes = []UnitType{
	Infantry, Armor, Fighter, Bomber, Transport,
	Destroyer, Submarine, Cruiser, Battleship, Carrier,
}

type unitTypeInfo struct {
	name      string
	key       byte
	maxHP     uint16
	cost      uint16
	sight     uint16
	movement  uint16
	mode      TransportMode
	fuel      uint16 // 0 = unlimited
	carries   uint8  // 0 = no carrying space
	carryMode TransportMode
}

var unitTypeTable = [...]unitTypeInfo{
	Infantry:   {name: "Infantry", key: 'i', maxHP: 1, cost: 6, sight: 2, movement: 1, mode: LandMode},
	Armor:      {name: "Armor", key: 'a', maxHP: 2, cost: 12, sight: 2, movement: 2, mode: LandMode},
	Fighter:    {name: "Fighter", key: 'f', maxHP: 1, cost: 12, sight: 4, movement: 5, mode: AirMode, fuel: 20},
	Bomber:     {name: "Bomber", key: 'b', maxHP: 1, cost: 12, sight: 4, movement: 3, mode: AirMode, fuel: 30},
	Transport:  {name: "Transport", key: 't', maxHP: 3, cost: 30, sight: 2, movement: 2, mode: SeaMode, carries: 4, carryMode: LandMode},
	Destroyer:  {name: "Destroyer", key: 'd', maxHP: 2, cost: 24, sight: 3, movement: 3, mode: SeaMode},
	Submarine:  {name: "Submarine", key: 's', maxHP: 2, cost: 24, sight: 3, movement: 2, mode: SeaMode},
	Cruiser:    {name: "Cruiser", key: 'c', maxHP: 4, cost: 36, sight: 3, movement: 2, mode: SeaMode},
	Battleship: {name: "Battleship", key: 'w', maxHP: 8, cost: 60, sight: 4, movement: 1, mode: SeaMode},
	Carrier:    {name: "Carrier", key: 'v', maxHP: 6, cost: 48, sight: 4, movement: 1, mode: SeaMode, carries: 5, carryMode: AirMode},
}

func (t UnitType) String() string { return unitTypeTable[t].name }

// Key returns the single-character code used in map notation.
func (t UnitType) Key() byte { return unitTypeTable[t].key }

// UnitTypeFromKey returns the unit type for a map-notation key.
func UnitTypeFromKey(key byte) (UnitType, bool) {
	for _, ut := range UnitTypes {
		if unitTypeTable[ut].key == key {
			return ut, true
		}
	}
	return 0, false
}

// MaxHP returns the type's full hit points.
func (t UnitType) MaxHP() uint16 { return unitTypeTable[t].maxHP }

// Cost returns the production progress required to build the type.
func (t UnitType) Cost() uint16 { return unitTypeTable[t].cost }

// Sight returns the observation radius.
func (t UnitType) Sight() uint16 { return unitTypeTable[t].sight }

// MovementPerTurn returns the move points granted each turn.
func (t UnitType) MovementPerTurn() uint16 { return unitTypeTable[t].movement }

// TransportMode returns the medium the type travels in.
func (t UnitType) TransportMode() TransportMode { return unitTypeTable[t].mode }

// CanOccupyCities reports whether the type can take and hold cities.
func (t UnitType) CanOccupyCities() bool { return unitTypeTable[t].mode == LandMode }

// FuelCapacity returns the type's fuel tank size. The second return is
// false for types with unlimited range.
func (t UnitType) FuelCapacity() (uint16, bool) {
	f := unitTypeTable[t].fuel
	return f, f > 0
}

// CanMoveOnTerrain reports whether the type's medium admits terrain.
func (t UnitType) CanMoveOnTerrain(terrain Terrain) bool {
	switch unitTypeTable[t].mode {
	case LandMode:
		return terrain == Land
	case SeaMode:
		return terrain == Water
	case AirMode:
		return true
	default:
		return false
	}
}

// Fuel is a unit's remaining range. Units with unlimited range carry a
// zero Fuel value.
type Fuel struct {
	Limited   bool
	Max       uint16
	Remaining uint16
}

func fuelFor(t UnitType) Fuel {
	if cap, limited := t.FuelCapacity(); limited {
		return Fuel{Limited: true, Max: cap, Remaining: cap}
	}
	return Fuel{}
}

// CarryingSpace is the passenger hold of a transport or carrier.
type CarryingSpace struct {
	Mode     TransportMode
	Capacity uint8
	Carried  []Unit
}

func carryingSpaceFor(t UnitType) *CarryingSpace {
	info := unitTypeTable[t]
	if info.carries == 0 {
		return nil
	}
	return &CarryingSpace{Mode: info.carryMode, Capacity: info.carries}
}

// SpaceRemaining returns the number of free passenger slots.
func (c *CarryingSpace) SpaceRemaining() uint8 {
	return c.Capacity - uint8(len(c.Carried))
}

// Clone deep-copies the space and its passengers.
func (c *CarryingSpace) Clone() *CarryingSpace {
	if c == nil {
		return nil
	}
	out := &CarryingSpace{Mode: c.Mode, Capacity: c.Capacity}
	out.Carried = make([]Unit, len(c.Carried))
	for i, u := range c.Carried {
		out.Carried[i] = u.Clone()
	}
	return out
}

// Unit is a mobile piece owned by a player.
type Unit struct {
	ID             UnitID
	Type           UnitType
	Alignment      Alignment
	Loc            Location
	HP             uint16
	MovesRemaining uint16
	Fuel           Fuel
	Name           string
	Orders         *Orders
	Carrying       *CarryingSpace
}

// NewUnit returns a freshly built unit at full strength.
func NewUnit(id UnitID, loc Location, t UnitType, alignment Alignment, name string) Unit {
	return Unit{
		ID:             id,
		Type:           t,
		Alignment:      alignment,
		Loc:            loc,
		HP:             t.MaxHP(),
		MovesRemaining: t.MovementPerTurn(),
		Fuel:           fuelFor(t),
		Name:           name,
		Carrying:       carryingSpaceFor(t),
	}
}

// Clone deep-copies the unit, including orders and passengers.
func (u Unit) Clone() Unit {
	out := u
	if u.Orders != nil {
		o := *u.Orders
		out.Orders = &o
	}
	out.Carrying = u.Carrying.Clone()
	return out
}

func (u *Unit) String() string {
	return fmt.Sprintf("%s %s [%d/%d] of %s", u.Type, u.Name, u.HP, u.MaxHP(), u.Alignment)
}

// MaxHP returns the unit's full hit points.
func (u *Unit) MaxHP() uint16 { return u.Type.MaxHP() }

// Sight returns the unit's observation radius.
func (u *Unit) Sight() uint16 { return u.Type.Sight() }

// MovementPerTurn returns the move points granted each turn.
func (u *Unit) MovementPerTurn() uint16 { return u.Type.MovementPerTurn() }

// RefreshMovesRemaining restores the unit's move points for a new turn.
func (u *Unit) RefreshMovesRemaining() {
	u.MovesRemaining = u.MovementPerTurn()
}

// RefuelHard refills the tank completely, as when landing in a city or
// on a carrier.
func (u *Unit) RefuelHard() {
	if u.Fuel.Limited {
		u.Fuel.Remaining = u.Fuel.Max
	}
}

// RecordMovement burns fuel and move points for moving n tiles. Fuel is
// checked before anything is spent.
func (u *Unit) RecordMovement(n uint16) error {
	if u.Fuel.Limited && u.Fuel.Remaining < n {
		return MoveError{Kind: MoveErrInsufficientFuel, ID: u.ID}
	}
	if u.MovesRemaining < n {
		return MoveError{Kind: MoveErrRemainingMovesExceeded, ID: u.ID, Requested: n, Remaining: u.MovesRemaining}
	}
	if u.Fuel.Limited {
		u.Fuel.Remaining -= n
	}
	u.MovesRemaining -= n
	return nil
}

// CanCarryUnit reports whether other could board this unit, ignoring
// available space.
func (u *Unit) CanCarryUnit(other *Unit) bool {
	return u.Carrying != nil &&
		u.Carrying.Mode == other.Type.TransportMode() &&
		u.Alignment.IsFriendlyTo(other.Alignment)
}

// CarryUnit boards other, failing with a typed error when the unit has
// no hold, the mode differs, the alignments differ, or the hold is full.
func (u *Unit) CarryUnit(other Unit) error {
	if u.Carrying == nil {
		return GameError{Kind: ErrUnitHasNoCarryingSpace, UnitID: u.ID}
	}
	if u.Carrying.Mode != other.Type.TransportMode() {
		return GameError{Kind: ErrWrongTransportMode, UnitID: other.ID}
	}
	if !u.Alignment.IsFriendlyTo(other.Alignment) {
		return GameError{Kind: ErrOnlyAlliesCarry, UnitID: other.ID}
	}
	if u.Carrying.SpaceRemaining() == 0 {
		return GameError{Kind: ErrInsufficientCarryingSpace, UnitID: u.ID}
	}
	other.Loc = u.Loc
	u.Carrying.Carried = append(u.Carrying.Carried, other)
	return nil
}

// ReleaseUnitByID removes a passenger from the hold.
func (u *Unit) ReleaseUnitByID(id UnitID) (Unit, bool) {
	if u.Carrying == nil {
		return Unit{}, false
	}
	for i, p := range u.Carrying.Carried {
		if p.ID == id {
			u.Carrying.Carried = append(u.Carrying.Carried[:i], u.Carrying.Carried[i+1:]...)
			return p, true
		}
	}
	return Unit{}, false
}

// CanMoveOnTile reports whether the unit could legally end a step on
// tile: friendly cities admit anything, hostile cities only
// city-occupiers, friendly transports with room admit their passenger
// mode, and otherwise terrain decides.
func (u *Unit) CanMoveOnTile(tile *Tile) bool {
	if tile.City != nil {
		if tile.City.Alignment.IsFriendlyTo(u.Alignment) {
			return true
		}
		return u.Type.CanOccupyCities()
	}
	if tile.Unit != nil && tile.Unit.CanCarryUnit(u) && tile.Unit.Carrying.SpaceRemaining() > 0 {
		return true
	}
	return u.Type.CanMoveOnTerrain(tile.Terrain)
}

// IsFriendlyTo reports whether the units share an owner.
func (u *Unit) IsFriendlyTo(other *Unit) bool {
	return u.Alignment.IsFriendlyTo(other.Alignment)
}
