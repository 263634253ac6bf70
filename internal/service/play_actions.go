package service

import (
	"context"

	"github.com/freeeve/quiet-conquest/pkg/engine"
)

// BeginTurn starts the caller's turn, running production and standing
// orders, and returns what happened.
func (s *PlayService) BeginTurn(ctx context.Context, gameID, userID string) (*engine.TurnStart, error) {
	var start *engine.TurnStart
	err := s.withGame(ctx, gameID, userID, func(g *engine.Game, secret engine.PlayerSecret) error {
		var err error
		start, err = g.BeginTurn(secret, false)
		return err
	})
	return start, err
}

// EndTurn ends the caller's turn once every unit and city has been
// answered.
func (s *PlayService) EndTurn(ctx context.Context, gameID, userID string) error {
	return s.withGame(ctx, gameID, userID, func(g *engine.Game, secret engine.PlayerSecret) error {
		return g.EndTurn(secret)
	})
}

// ForceEndTurn ends the caller's turn, sentrying outstanding requests.
func (s *PlayService) ForceEndTurn(ctx context.Context, gameID, userID string) error {
	return s.withGame(ctx, gameID, userID, func(g *engine.Game, secret engine.PlayerSecret) error {
		return g.ForceEndTurn(secret)
	})
}

// MoveUnit moves the caller's unit toward dest, resolving combat on
// contact.
func (s *PlayService) MoveUnit(ctx context.Context, gameID, userID string, id engine.UnitID, dest engine.Location, avoidCombat bool) (*engine.Move, error) {
	var mv *engine.Move
	err := s.withGame(ctx, gameID, userID, func(g *engine.Game, secret engine.PlayerSecret) error {
		var err error
		if avoidCombat {
			mv, err = g.MoveUnitByIDAvoidingCombat(secret, id, dest)
		} else {
			mv, err = g.MoveUnitByID(secret, id, dest)
		}
		return err
	})
	return mv, err
}

// PreviewMove speculatively executes a move without committing it, so
// clients can show the outcome before the player confirms.
func (s *PlayService) PreviewMove(ctx context.Context, gameID, userID string, id engine.UnitID, dest engine.Location) (*engine.Move, error) {
	lg, err := s.load(ctx, gameID)
	if err != nil {
		return nil, err
	}
	lg.mu.Lock()
	defer lg.mu.Unlock()

	secret, err := lg.secretFor(userID)
	if err != nil {
		return nil, err
	}
	proposed, err := lg.game.ProposeMoveUnitByID(secret, id, dest)
	if err != nil {
		return nil, err
	}
	// the proposal is discarded; only the delta leaves this method
	return proposed.Delta, nil
}

// OrderUnit applies a standing order to the caller's unit. kind is
// "sentry", "skip", "goto", or "explore"; dest applies to goto only.
func (s *PlayService) OrderUnit(ctx context.Context, gameID, userID, kind string, id engine.UnitID, dest engine.Location) (*engine.OrdersOutcome, error) {
	var outcome *engine.OrdersOutcome
	err := s.withGame(ctx, gameID, userID, func(g *engine.Game, secret engine.PlayerSecret) error {
		var err error
		switch kind {
		case "sentry":
			outcome, err = g.OrderUnitSentry(secret, id)
		case "skip":
			outcome, err = g.OrderUnitSkip(secret, id)
		case "goto":
			outcome, err = g.OrderUnitGoTo(secret, id, dest)
		case "explore":
			outcome, err = g.OrderUnitExplore(secret, id)
		default:
			return ErrUnknownOrder
		}
		return err
	})
	return outcome, err
}

// SetProduction points a city at a unit type.
func (s *PlayService) SetProduction(ctx context.Context, gameID, userID string, loc engine.Location, t engine.UnitType) error {
	return s.withGame(ctx, gameID, userID, func(g *engine.Game, secret engine.PlayerSecret) error {
		return g.SetProduction(secret, loc, t)
	})
}

// ClearProduction stops a city's production. With ignore set, the city
// stops asking until production is set again.
func (s *PlayService) ClearProduction(ctx context.Context, gameID, userID string, loc engine.Location, ignore bool) error {
	return s.withGame(ctx, gameID, userID, func(g *engine.Game, secret engine.PlayerSecret) error {
		return g.ClearProduction(secret, loc, ignore)
	})
}

// ValidProductions lists the unit types a city could usefully produce.
func (s *PlayService) ValidProductions(ctx context.Context, gameID, userID string, loc engine.Location) ([]engine.UnitType, error) {
	lg, err := s.load(ctx, gameID)
	if err != nil {
		return nil, err
	}
	lg.mu.Lock()
	defer lg.mu.Unlock()

	secret, err := lg.secretFor(userID)
	if err != nil {
		return nil, err
	}
	return lg.game.ValidProductions(secret, loc)
}

// ActivateUnit wakes a sentried unit so it asks for orders again.
func (s *PlayService) ActivateUnit(ctx context.Context, gameID, userID string, loc engine.Location) error {
	return s.withGame(ctx, gameID, userID, func(g *engine.Game, secret engine.PlayerSecret) error {
		return g.ActivateUnit(secret, loc)
	})
}

// DisbandUnit destroys the caller's unit.
func (s *PlayService) DisbandUnit(ctx context.Context, gameID, userID string, id engine.UnitID) (engine.Unit, error) {
	var unit engine.Unit
	err := s.withGame(ctx, gameID, userID, func(g *engine.Game, secret engine.PlayerSecret) error {
		var err error
		unit, err = g.DisbandUnitByID(secret, id)
		return err
	})
	return unit, err
}
