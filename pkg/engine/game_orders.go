package engine

// OrderUnitSentry puts the unit on watch. Sentried units stop asking
// for orders until activated.
func (g *Game) OrderUnitSentry(secret PlayerSecret, id UnitID) (*OrdersOutcome, error) {
	player, err := g.validateIsPlayerTurnPhase(secret, PhaseMain)
	if err != nil {
		return nil, err
	}
	unit, err := g.orderableUnit(player, id)
	if err != nil {
		return nil, err
	}
	unit.Orders = &Orders{Kind: OrdersSentry}
	return &OrdersOutcome{UnitID: id, Orders: *unit.Orders, Status: OrdersInProgress}, nil
}

// OrderUnitSkip passes the unit's turn. The skip clears at the next
// turn start.
func (g *Game) OrderUnitSkip(secret PlayerSecret, id UnitID) (*OrdersOutcome, error) {
	player, err := g.validateIsPlayerTurnPhase(secret, PhaseMain)
	if err != nil {
		return nil, err
	}
	unit, err := g.orderableUnit(player, id)
	if err != nil {
		return nil, err
	}
	unit.Orders = &Orders{Kind: OrdersSkip}
	return &OrdersOutcome{UnitID: id, Orders: *unit.Orders, Status: OrdersInProgress}, nil
}

// OrderUnitGoTo sends the unit toward dest, moving as far as this
// turn's points allow and resuming automatically each turn start until
// it arrives.
func (g *Game) OrderUnitGoTo(secret PlayerSecret, id UnitID, dest Location) (*OrdersOutcome, error) {
	player, err := g.validateIsPlayerTurnPhase(secret, PhaseMain)
	if err != nil {
		return nil, err
	}
	unit, err := g.orderableUnit(player, id)
	if err != nil {
		return nil, err
	}
	if !g.mapData.Dims().Contain(dest) {
		return nil, MoveError{Kind: MoveErrDestinationOutOfBounds, ID: id, Dest: dest}
	}
	unit.Orders = &Orders{Kind: OrdersGoTo, Dest: dest}
	return g.carryOutGoTo(player, id)
}

// OrderUnitExplore sets the unit exploring: it heads for the nearest
// reachable edge of the known world, turn after turn, until no frontier
// remains.
func (g *Game) OrderUnitExplore(secret PlayerSecret, id UnitID) (*OrdersOutcome, error) {
	player, err := g.validateIsPlayerTurnPhase(secret, PhaseMain)
	if err != nil {
		return nil, err
	}
	unit, err := g.orderableUnit(player, id)
	if err != nil {
		return nil, err
	}
	unit.Orders = &Orders{Kind: OrdersExplore}
	return g.carryOutExplore(player, id)
}

func (g *Game) orderableUnit(player PlayerNum, id UnitID) (*Unit, error) {
	unit := g.mapData.UnitByID(id)
	if unit == nil {
		return nil, GameError{Kind: ErrNoSuchUnit, UnitID: id}
	}
	if !unit.Alignment.BelongsTo(player) {
		return nil, GameError{Kind: ErrUnitNotControlledByPlayer, UnitID: id, Player: player}
	}
	return unit, nil
}

// followPendingOrders resumes every standing order the player's units
// carried over from previous turns.
func (g *Game) followPendingOrders(player PlayerNum) []OrdersResult {
	var pending []UnitID
	for _, u := range g.mapData.PlayerUnits(player) {
		if u.Orders != nil && (u.Orders.Kind == OrdersGoTo || u.Orders.Kind == OrdersExplore) {
			pending = append(pending, u.ID)
		}
	}
	var results []OrdersResult
	for _, id := range pending {
		unit := g.mapData.PlayerUnitByID(player, id)
		if unit == nil || unit.Orders == nil {
			continue
		}
		var outcome *OrdersOutcome
		var err error
		switch unit.Orders.Kind {
		case OrdersGoTo:
			outcome, err = g.carryOutGoTo(player, id)
		case OrdersExplore:
			outcome, err = g.carryOutExplore(player, id)
		}
		results = append(results, OrdersResult{Outcome: outcome, Err: err})
	}
	return results
}

func (g *Game) carryOutGoTo(player PlayerNum, id UnitID) (*OrdersOutcome, error) {
	unit := g.mapData.PlayerUnitByID(player, id)
	orders := *unit.Orders
	dest := orders.Dest
	outcome := &OrdersOutcome{UnitID: id, Orders: orders, Status: OrdersInProgress}

	if unit.Loc == dest {
		unit.Orders = nil
		outcome.Status = OrdersCompleted
		return outcome, nil
	}
	if unit.MovesRemaining == 0 {
		return outcome, nil
	}
	mv, err := g.moveUnitByID(player, id, dest, avoidCombatMovementFilter, true)
	if err != nil {
		unit.Orders = nil
		outcome.Status = OrdersCompleted
		return outcome, err
	}
	outcome.Move = mv
	if mv.UnitDestroyed() {
		outcome.Status = OrdersCompleted
		return outcome, nil
	}
	if loc, ok := mv.EndingLoc(); ok && loc == dest {
		unit = g.mapData.PlayerUnitByID(player, id)
		if unit != nil {
			unit.Orders = nil
		}
		outcome.Status = OrdersCompleted
	}
	return outcome, nil
}

func (g *Game) carryOutExplore(player PlayerNum, id UnitID) (*OrdersOutcome, error) {
	unit := g.mapData.PlayerUnitByID(player, id)
	orders := *unit.Orders
	outcome := &OrdersOutcome{UnitID: id, Orders: orders, Status: OrdersInProgress}
	tracker := g.playerObs.Tracker(player)
	startingLoc := unit.Loc

	var components []MoveComponent
	var snapshot Unit
	fuelRanOut := false
	for {
		unit = g.mapData.PlayerUnitByID(player, id)
		if unit == nil {
			outcome.Status = OrdersCompleted
			break
		}
		snapshot = unit.Clone()
		if unit.MovesRemaining == 0 {
			break
		}
		frontier, ok := NearestAdjacentUnobserved(tracker, unit.Loc, unit, g.wrapping)
		if !ok {
			unit.Orders = nil
			outcome.Status = OrdersCompleted
			break
		}
		dest := frontier
		if frontier == unit.Loc {
			// already on the frontier: step straight into the fog
			dest, ok = g.unobservedNeighbor(tracker, unit.Loc)
			if !ok {
				unit.Orders = nil
				outcome.Status = OrdersCompleted
				break
			}
		}
		mv, err := g.moveUnitByID(player, id, dest, avoidCombatMovementFilter, true)
		if err != nil {
			break
		}
		components = append(components, mv.Components...)
		snapshot = mv.Unit
		if mv.FuelRanOut {
			fuelRanOut = true
		}
		if mv.UnitDestroyed() {
			outcome.Status = OrdersCompleted
			break
		}
		if mv.DistanceMoved() == 0 {
			break
		}
	}

	if len(components) > 0 {
		mv, err := NewMove(snapshot, startingLoc, components)
		if err != nil {
			return outcome, err
		}
		mv.FuelRanOut = fuelRanOut
		outcome.Move = mv
	}
	return outcome, nil
}

func (g *Game) unobservedNeighbor(tracker *ObsTracker, loc Location) (Location, bool) {
	for _, offset := range RelativeNeighbors {
		neighbor, ok := g.wrapping.WrappedAdd(g.mapData.Dims(), loc, offset)
		if !ok {
			continue
		}
		if !tracker.Get(neighbor).Observed {
			return neighbor, true
		}
	}
	return Location{}, false
}
