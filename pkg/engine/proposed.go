package engine

// Proposed holds the result of an action executed against a clone of
// the game. The caller inspects the delta and either discards the
// proposal or applies it, making the clone the live state. Because the
// clone shares the combat rng, proposing and then applying consumes
// exactly the randomness a direct action would.
type Proposed[T any] struct {
	NewState *Game
	Delta    T
}

// Apply replaces g's state with the proposal's and returns the delta.
func (p Proposed[T]) Apply(g *Game) T {
	*g = *p.NewState
	return p.Delta
}

func propose[T any](g *Game, action func(*Game) (T, error)) (Proposed[T], error) {
	clone := g.Clone()
	delta, err := action(clone)
	return Proposed[T]{NewState: clone, Delta: delta}, err
}

// ProposeMoveUnitByID speculatively executes MoveUnitByID.
func (g *Game) ProposeMoveUnitByID(secret PlayerSecret, id UnitID, dest Location) (Proposed[*Move], error) {
	return propose(g, func(clone *Game) (*Move, error) {
		return clone.MoveUnitByID(secret, id, dest)
	})
}

// ProposeMoveUnitByIDAvoidingCombat speculatively executes
// MoveUnitByIDAvoidingCombat.
func (g *Game) ProposeMoveUnitByIDAvoidingCombat(secret PlayerSecret, id UnitID, dest Location) (Proposed[*Move], error) {
	return propose(g, func(clone *Game) (*Move, error) {
		return clone.MoveUnitByIDAvoidingCombat(secret, id, dest)
	})
}

// ProposeOrderUnitGoTo speculatively executes OrderUnitGoTo.
func (g *Game) ProposeOrderUnitGoTo(secret PlayerSecret, id UnitID, dest Location) (Proposed[*OrdersOutcome], error) {
	return propose(g, func(clone *Game) (*OrdersOutcome, error) {
		return clone.OrderUnitGoTo(secret, id, dest)
	})
}

// ProposeOrderUnitExplore speculatively executes OrderUnitExplore.
func (g *Game) ProposeOrderUnitExplore(secret PlayerSecret, id UnitID) (Proposed[*OrdersOutcome], error) {
	return propose(g, func(clone *Game) (*OrdersOutcome, error) {
		return clone.OrderUnitExplore(secret, id)
	})
}

// ProposeSetProduction speculatively executes SetProduction.
func (g *Game) ProposeSetProduction(secret PlayerSecret, loc Location, t UnitType) (Proposed[struct{}], error) {
	return propose(g, func(clone *Game) (struct{}, error) {
		return struct{}{}, clone.SetProduction(secret, loc, t)
	})
}

// ProposeBeginTurn speculatively executes BeginTurn.
func (g *Game) ProposeBeginTurn(secret PlayerSecret, clearProductionAfter bool) (Proposed[*TurnStart], error) {
	return propose(g, func(clone *Game) (*TurnStart, error) {
		return clone.BeginTurn(secret, clearProductionAfter)
	})
}

// ProposeEndTurn speculatively executes EndTurn.
func (g *Game) ProposeEndTurn(secret PlayerSecret) (Proposed[struct{}], error) {
	return propose(g, func(clone *Game) (struct{}, error) {
		return struct{}{}, clone.EndTurn(secret)
	})
}

// ProposeEndThenBeginTurn speculatively executes EndThenBeginTurn.
func (g *Game) ProposeEndThenBeginTurn(secret, nextSecret PlayerSecret, clearProductionAfter bool) (Proposed[*TurnStart], error) {
	return propose(g, func(clone *Game) (*TurnStart, error) {
		return clone.EndThenBeginTurn(secret, nextSecret, clearProductionAfter)
	})
}
