package engine

// MoveUnitByID moves the player's unit toward dest along the shortest
// path the player knows of, fighting whatever it runs into. The unit
// moves as far as its move points allow; reaching dest may take several
// turns' worth of calls. Requires the main phase.
func (g *Game) MoveUnitByID(secret PlayerSecret, id UnitID, dest Location) (*Move, error) {
	player, err := g.validateIsPlayerTurnPhase(secret, PhaseMain)
	if err != nil {
		return nil, err
	}
	return g.moveUnitByID(player, id, dest, combatMovementFilter, false)
}

// MoveUnitByIDAvoidingCombat is MoveUnitByID but paths refuse to enter
// any tile that would start a fight.
func (g *Game) MoveUnitByIDAvoidingCombat(secret PlayerSecret, id UnitID, dest Location) (*Move, error) {
	player, err := g.validateIsPlayerTurnPhase(secret, PhaseMain)
	if err != nil {
		return nil, err
	}
	return g.moveUnitByID(player, id, dest, avoidCombatMovementFilter, false)
}

func combatMovementFilter(unit *Unit) Filter[*Tile] {
	return UnitMovementFilter{Unit: unit}
}

func avoidCombatMovementFilter(unit *Unit) Filter[*Tile] {
	return standardMovementFilter(unit)
}

// moveUnitByID plans and executes a move. With truncate set, a dest
// beyond this turn's reach becomes the farthest point along the path
// instead of an error; the first return of the walk then reports where
// the unit actually got to.
func (g *Game) moveUnitByID(player PlayerNum, id UnitID, dest Location, makeFilter func(*Unit) Filter[*Tile], truncate bool) (*Move, error) {
	dims := g.mapData.Dims()
	if !dims.Contain(dest) {
		return nil, MoveError{Kind: MoveErrDestinationOutOfBounds, ID: id, Dest: dest}
	}
	unit := g.mapData.PlayerUnitByID(player, id)
	if unit == nil {
		return nil, MoveError{Kind: MoveErrSourceUnitDoesNotExist, ID: id, Dest: dest}
	}
	src := unit.Loc
	if src == dest {
		return nil, MoveError{Kind: MoveErrZeroLengthMove, ID: id, Src: src}
	}

	tileFilter := makeFilter(unit)
	obsFilter := OptimisticObsFilter{Inner: tileFilter}
	tracker := g.playerObs.Tracker(player)

	paths := ShortestPathsFrom[Obs](tracker, src, obsFilter, g.wrapping, dims.Area())
	dist, ok := paths.Dist(dest)
	if !ok {
		return nil, MoveError{Kind: MoveErrNoRoute, ID: id, Src: src, Dest: dest}
	}
	budget := uint32(unit.MovesRemaining)
	if unit.Fuel.Limited && uint32(unit.Fuel.Remaining) < budget {
		budget = uint32(unit.Fuel.Remaining)
	}
	fullPath := paths.PathTo(dest)
	if dist > budget {
		if !truncate {
			if dist > uint32(unit.MovesRemaining) {
				return nil, MoveError{Kind: MoveErrRemainingMovesExceeded, ID: id,
					Requested: uint16(dist), Remaining: unit.MovesRemaining}
			}
			return nil, MoveError{Kind: MoveErrInsufficientFuel, ID: id}
		}
		if budget == 0 {
			return nil, MoveError{Kind: MoveErrRemainingMovesExceeded, ID: id,
				Requested: uint16(dist), Remaining: unit.MovesRemaining}
		}
		dest = fullPath[budget]
		fullPath = fullPath[:budget+1]
	}

	return g.walkPath(player, id, src, dest, fullPath[1:], tileFilter, obsFilter)
}

// walkPath steps the unit along path one tile at a time, resolving
// boarding and combat against the real map and re-planning whenever an
// observation changes passability.
func (g *Game) walkPath(player PlayerNum, id UnitID, src, dest Location, path []Location, tileFilter Filter[*Tile], obsFilter Filter[Obs]) (*Move, error) {
	tracker := g.playerObs.Tracker(player)
	dims := g.mapData.Dims()
	unit := g.mapData.UnitByID(id)
	snapshot := unit.Clone()

	var components []MoveComponent
	fuelRanOut := false
	cur := src
	i := 0
	for cur != dest && i < len(path) {
		next := path[i]
		truth := g.mapData.Get(next)
		stepObs := tracker.Observe(*truth, g.turn)
		comp := MoveComponent{PrevLoc: cur, Loc: next, Distance: 1}

		advanced := false
		died := false
		blocked := false

		switch {
		case truth.Unit != nil && truth.Unit.Alignment.IsFriendlyTo(unit.Alignment):
			if truth.Unit.CanCarryUnit(unit) && truth.Unit.Carrying.SpaceRemaining() > 0 {
				carrierID := truth.Unit.ID
				if err := unit.RecordMovement(1); err != nil {
					return nil, err
				}
				if err := g.mapData.CarryUnitByID(carrierID, id); err != nil {
					return nil, err
				}
				unit = g.mapData.UnitByID(id)
				unit.RefuelHard()
				comp.Carrier = &carrierID
				advanced = true
			} else {
				blocked = true
			}

		case !tileFilter.Include(truth):
			blocked = true

		case truth.Unit != nil || (truth.City != nil && !truth.City.Alignment.IsFriendlyTo(unit.Alignment)):
			// hostile ground: fight the garrison, then the city
			if truth.Unit != nil {
				defender := truth.Unit.Clone()
				outcome := resolveCombat(unit.HP, defender.HP, g.rng)
				outcome.DefenderUnit = &defender
				comp.UnitCombat = &outcome
				if outcome.DestroyedAttacker() {
					died = true
					break
				}
				unit.HP -= outcome.DamageTo(Attacker)
				g.mapData.DestroyUnitByID(defender.ID)
			}
			if truth.City != nil && !truth.City.Alignment.IsFriendlyTo(unit.Alignment) {
				defender := truth.City.Clone()
				outcome := resolveCombat(unit.HP, truth.City.HP, g.rng)
				outcome.DefenderCity = &defender
				comp.CityCombat = &outcome
				if outcome.DestroyedAttacker() {
					died = true
					break
				}
				unit.HP -= outcome.DamageTo(Attacker)
				if err := g.mapData.OccupyCity(next, unit.Alignment); err != nil {
					return nil, moveGameError(err)
				}
			}
			if err := unit.RecordMovement(1); err != nil {
				return nil, err
			}
			if err := g.mapData.RelocateUnitByID(id, next); err != nil {
				return nil, err
			}
			unit = g.mapData.UnitByID(id)
			advanced = true

		default:
			if err := unit.RecordMovement(1); err != nil {
				return nil, err
			}
			if err := g.mapData.RelocateUnitByID(id, next); err != nil {
				return nil, err
			}
			unit = g.mapData.UnitByID(id)
			if truth.City != nil {
				unit.RefuelHard()
			}
			advanced = true
		}

		if died {
			g.mapData.DestroyUnitByID(id)
			snapshot.HP = 0
			snapshot.Loc = cur
			components = append(components, comp)
			break
		}

		if blocked {
			// the known map was wrong about this tile; replan around it
			replanned := false
			if stepObs.PassabilityChanged(obsFilter) {
				paths := ShortestPathsFrom[Obs](tracker, cur, obsFilter, g.wrapping, dims.Area())
				if newPath := paths.PathTo(dest); newPath != nil {
					path = newPath[1:]
					i = 0
					replanned = true
				}
			}
			if replanned {
				continue
			}
			if len(components) == 0 {
				return nil, MoveError{Kind: MoveErrNoRoute, ID: id, Src: src, Dest: dest}
			}
			break
		}

		if advanced {
			comp.Observations = observeFrom(next, unit.Sight(), g.mapData, g.turn, g.wrapping, tracker)
			snapshot = unit.Clone()
			components = append(components, comp)
			cur = next
			i++
			if comp.CityCombat != nil && comp.CityCombat.Victorious() {
				// taking a city ends the unit's movement for the turn
				unit.MovesRemaining = 0
				snapshot = unit.Clone()
				break
			}
			if unit.Fuel.Limited && unit.Fuel.Remaining == 0 {
				// the tank ran dry with nowhere to land
				fuelRanOut = true
				g.mapData.DestroyUnitByID(id)
				snapshot.HP = 0
				break
			}
			if cur == dest || unit.MovesRemaining == 0 {
				break
			}
			replan := false
			for _, lo := range comp.Observations {
				if lo.PassabilityChanged(obsFilter) {
					replan = true
					break
				}
			}
			if replan {
				paths := ShortestPathsFrom[Obs](tracker, cur, obsFilter, g.wrapping, dims.Area())
				newPath := paths.PathTo(dest)
				if newPath == nil {
					break
				}
				path = newPath[1:]
				i = 0
			}
		}
	}

	if len(components) == 0 {
		return nil, MoveError{Kind: MoveErrNoRoute, ID: id, Src: src, Dest: dest}
	}
	mv, err := NewMove(snapshot, src, components)
	if err != nil {
		return nil, err
	}
	mv.FuelRanOut = fuelRanOut
	return mv, nil
}
