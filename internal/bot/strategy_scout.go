package bot

import (
	"errors"
	"sort"

	"github.com/freeeve/quiet-conquest/pkg/engine"
)

// ScoutStrategy is the default opponent. Units push toward known enemy
// or neutral cities and explore when none are visible; cities produce a
// mix weighted toward infantry.
type ScoutStrategy struct{}

func (ScoutStrategy) Name() string { return "scout" }

func (s ScoutStrategy) PlayTurn(g *engine.Game, secret engine.PlayerSecret) error {
	return playTurn(g, secret, s.actUnit, chooseScoutProduction)
}

func (ScoutStrategy) actUnit(g *engine.Game, secret engine.PlayerSecret, unit engine.Unit) error {
	if unit.Type.CanOccupyCities() {
		if target, ok := nearestHostileCity(g, secret, unit.Loc); ok {
			return advanceOn(g, secret, unit, target)
		}
	}
	outcome, err := g.OrderUnitExplore(secret, unit.ID)
	if err != nil {
		return err
	}
	if outcome.Completed() {
		// nothing left to uncover
		_, err = g.OrderUnitSentry(secret, unit.ID)
	}
	return err
}

// advanceOn attacks the target when it is within this turn's reach;
// otherwise it takes one step toward it, combat allowed.
func advanceOn(g *engine.Game, secret engine.PlayerSecret, unit engine.Unit, target engine.Location) error {
	if _, err := g.MoveUnitByID(secret, unit.ID, target); err == nil {
		return nil
	} else if !isMoveErrKind(err, engine.MoveErrRemainingMovesExceeded) &&
		!isMoveErrKind(err, engine.MoveErrInsufficientFuel) &&
		!isMoveErrKind(err, engine.MoveErrNoRoute) {
		return err
	}

	dests := neighborsOf(g, unit.Loc)
	sort.Slice(dests, func(i, j int) bool {
		return diamondDistance(dests[i], target) < diamondDistance(dests[j], target)
	})
	for _, dest := range dests {
		mv, err := g.MoveUnitByID(secret, unit.ID, dest)
		if err != nil {
			continue
		}
		if mv.UnitDestroyed() || mv.DistanceMoved() > 0 {
			return nil
		}
	}
	_, err := g.OrderUnitSkip(secret, unit.ID)
	return err
}

func isMoveErrKind(err error, kind engine.MoveErrorKind) bool {
	var moveErr engine.MoveError
	if !errors.As(err, &moveErr) {
		return false
	}
	return moveErr.Kind == kind
}

// nearestHostileCity scans the player's observations for the closest
// city they do not own, by straight-line diamond distance.
func nearestHostileCity(g *engine.Game, secret engine.PlayerSecret, from engine.Location) (engine.Location, bool) {
	player, err := g.PlayerWithSecret(secret)
	if err != nil {
		return engine.Location{}, false
	}
	tracker, err := g.PlayerObservations(secret)
	if err != nil {
		return engine.Location{}, false
	}

	var best engine.Location
	bestDist := -1
	tracker.Iter(func(loc engine.Location, obs engine.Obs) {
		if !obs.Observed || obs.Tile.City == nil {
			return
		}
		if obs.Tile.City.Alignment.BelongsTo(player) {
			return
		}
		d := diamondDistance(from, loc)
		if bestDist < 0 || d < bestDist {
			best, bestDist = loc, d
		}
	})
	return best, bestDist >= 0
}

func diamondDistance(a, b engine.Location) int {
	dx := int(a.X) - int(b.X)
	if dx < 0 {
		dx = -dx
	}
	dy := int(a.Y) - int(b.Y)
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// chooseScoutProduction favors infantry, sprinkling in the other
// producible types for variety.
func chooseScoutProduction(options []engine.UnitType) engine.UnitType {
	for _, t := range options {
		if t == engine.Infantry && botFloat64() < 0.6 {
			return t
		}
	}
	return options[botIntn(len(options))]
}
