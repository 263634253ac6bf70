package engine

import "errors"

// MoveComponent records one step of a unit's movement: where it went,
// any fight it got into on the way, and everything it saw afterward.
type MoveComponent struct {
	PrevLoc Location
	Loc     Location

	// Carrier is set when the step ended aboard a transport or carrier.
	Carrier *UnitID

	UnitCombat *CombatOutcome
	CityCombat *CombatOutcome

	// Observations made after the step resolved.
	Observations []LocatedObs

	Distance uint16
}

// Moved reports whether the unit actually advanced on this step rather
// than dying in combat.
func (c *MoveComponent) Moved() bool {
	if c.UnitCombat != nil && c.UnitCombat.DestroyedAttacker() {
		return false
	}
	if c.CityCombat != nil && c.CityCombat.DestroyedAttacker() {
		return false
	}
	return true
}

// UnitDestroyed reports whether the moving unit died on this step.
func (c *MoveComponent) UnitDestroyed() bool { return !c.Moved() }

// Move is the full result of a movement order: the unit as it ended the
// move and each step taken. A move always has at least one component.
type Move struct {
	Unit        Unit
	StartingLoc Location
	Components  []MoveComponent

	// FuelRanOut is set when a range-limited unit emptied its tank
	// mid-move and was lost.
	FuelRanOut bool
}

var errEmptyMove = errors.New("move must have at least one component")

// NewMove builds a move result, rejecting an empty component list.
func NewMove(unit Unit, startingLoc Location, components []MoveComponent) (*Move, error) {
	if len(components) == 0 {
		return nil, errEmptyMove
	}
	return &Move{Unit: unit, StartingLoc: startingLoc, Components: components}, nil
}

// MovedSuccessfully reports whether the unit survived every fight on
// the way and never ran out of fuel.
func (m *Move) MovedSuccessfully() bool {
	if m.FuelRanOut {
		return false
	}
	for i := range m.Components {
		if !m.Components[i].Moved() {
			return false
		}
	}
	return true
}

// UnitDestroyed reports whether the unit died during the move.
func (m *Move) UnitDestroyed() bool { return !m.MovedSuccessfully() }

// EndingLoc returns where the unit ended up. The second return is false
// when the unit was destroyed.
func (m *Move) EndingLoc() (Location, bool) {
	if !m.MovedSuccessfully() {
		return Location{}, false
	}
	return m.Components[len(m.Components)-1].Loc, true
}

// EndingCarrier returns the carrier the unit ended aboard, if any.
func (m *Move) EndingCarrier() (UnitID, bool) {
	last := m.Components[len(m.Components)-1]
	if last.Carrier == nil {
		return 0, false
	}
	return *last.Carrier, true
}

// ConqueredCity returns the city taken on the final step, nil if none.
func (m *Move) ConqueredCity() *City {
	last := m.Components[len(m.Components)-1]
	if last.CityCombat != nil && last.CityCombat.Victorious() {
		return last.CityCombat.DefenderCity
	}
	return nil
}

// DistanceMoved returns the total tiles traveled.
func (m *Move) DistanceMoved() uint16 {
	var d uint16
	for i := range m.Components {
		if m.Components[i].Moved() {
			d += m.Components[i].Distance
		}
	}
	return d
}

// Observations returns every observation made during the move, in step
// order.
func (m *Move) Observations() []LocatedObs {
	var out []LocatedObs
	for i := range m.Components {
		out = append(out, m.Components[i].Observations...)
	}
	return out
}
