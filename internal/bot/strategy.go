package bot

import (
	"fmt"

	"github.com/freeeve/quiet-conquest/pkg/engine"
)

// Strategy plays one full turn for a bot seat: answering every unit's
// request for orders and every city's request for production, then
// ending the turn.
type Strategy interface {
	Name() string
	PlayTurn(g *engine.Game, secret engine.PlayerSecret) error
}

// StrategyForDifficulty returns the strategy for a bot difficulty level.
func StrategyForDifficulty(difficulty string) Strategy {
	switch difficulty {
	case "sentry":
		return &SentryStrategy{}
	case "random":
		return &RandomStrategy{}
	default:
		return &ScoutStrategy{}
	}
}

// maxActionsPerTurn bounds the request loop so a strategy bug cannot
// hang a game.
const maxActionsPerTurn = 1000

// playTurn runs the shared begin/act/end loop around a per-unit action
// and a per-city production chooser.
func playTurn(g *engine.Game, secret engine.PlayerSecret,
	actUnit func(*engine.Game, engine.PlayerSecret, engine.Unit) error,
	chooseProduction func([]engine.UnitType) engine.UnitType) error {

	if g.Phase() == engine.PhasePre {
		if _, err := g.BeginTurn(secret, false); err != nil {
			return fmt.Errorf("bot begin turn: %w", err)
		}
	}

	for action := 0; action < maxActionsPerTurn; action++ {
		ids, err := g.PlayerUnitOrdersRequests(secret)
		if err != nil {
			return fmt.Errorf("bot orders requests: %w", err)
		}
		if len(ids) == 0 {
			break
		}
		unit, err := g.PlayerUnitByID(secret, ids[0])
		if err != nil {
			return fmt.Errorf("bot unit %d: %w", ids[0], err)
		}
		if err := actUnit(g, secret, unit); err != nil {
			// park the unit rather than fail the whole turn
			if _, serr := g.OrderUnitSentry(secret, unit.ID); serr != nil {
				return fmt.Errorf("bot unit %d action: %w", unit.ID, err)
			}
		}
	}

	cities, err := g.PlayerCities(secret)
	if err != nil {
		return fmt.Errorf("bot cities: %w", err)
	}
	for _, city := range cities {
		if city.Production != nil || city.IgnoreClearedProduction {
			continue
		}
		options, err := g.ValidProductions(secret, city.Loc)
		if err != nil {
			return fmt.Errorf("bot productions at %s: %w", city.Loc, err)
		}
		if len(options) == 0 {
			if err := g.ClearProduction(secret, city.Loc, true); err != nil {
				return fmt.Errorf("bot clear production at %s: %w", city.Loc, err)
			}
			continue
		}
		if err := g.SetProduction(secret, city.Loc, chooseProduction(options)); err != nil {
			return fmt.Errorf("bot set production at %s: %w", city.Loc, err)
		}
	}

	if err := g.EndTurn(secret); err != nil {
		return g.ForceEndTurn(secret)
	}
	return nil
}

// neighborsOf returns the in-bounds neighbors of loc under the game's
// wrapping, in a random order.
func neighborsOf(g *engine.Game, loc engine.Location) []engine.Location {
	var out []engine.Location
	for _, offset := range engine.RelativeNeighbors {
		if neighbor, ok := g.Wrapping().WrappedAdd(g.Dims(), loc, offset); ok {
			out = append(out, neighbor)
		}
	}
	perm := botPerm(len(out))
	shuffled := make([]engine.Location, len(out))
	for i, j := range perm {
		shuffled[i] = out[j]
	}
	return shuffled
}

// SentryStrategy parks every unit and produces the cheapest option.
// Useful as a do-nothing opponent in tests.
type SentryStrategy struct{}

func (SentryStrategy) Name() string { return "sentry" }

func (SentryStrategy) PlayTurn(g *engine.Game, secret engine.PlayerSecret) error {
	return playTurn(g, secret,
		func(g *engine.Game, secret engine.PlayerSecret, unit engine.Unit) error {
			_, err := g.OrderUnitSentry(secret, unit.ID)
			return err
		},
		func(options []engine.UnitType) engine.UnitType {
			cheapest := options[0]
			for _, t := range options[1:] {
				if t.Cost() < cheapest.Cost() {
					cheapest = t
				}
			}
			return cheapest
		})
}

// RandomStrategy wanders: each unit steps to a random adjacent tile it
// can enter, and cities produce a random valid type.
type RandomStrategy struct{}

func (RandomStrategy) Name() string { return "random" }

func (RandomStrategy) PlayTurn(g *engine.Game, secret engine.PlayerSecret) error {
	return playTurn(g, secret, randomStep,
		func(options []engine.UnitType) engine.UnitType {
			return options[botIntn(len(options))]
		})
}

func randomStep(g *engine.Game, secret engine.PlayerSecret, unit engine.Unit) error {
	for _, dest := range neighborsOf(g, unit.Loc) {
		mv, err := g.MoveUnitByID(secret, unit.ID, dest)
		if err != nil {
			continue
		}
		if mv.UnitDestroyed() {
			return nil
		}
		// a blocked zero-distance move leaves the request standing
		if mv.DistanceMoved() == 0 {
			break
		}
		return nil
	}
	_, err := g.OrderUnitSkip(secret, unit.ID)
	return err
}
