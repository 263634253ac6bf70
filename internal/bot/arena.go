package bot

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/freeeve/quiet-conquest/pkg/engine"
)

// MatchConfig describes one headless bot-vs-bot game.
type MatchConfig struct {
	Name       string
	NumPlayers int
	Width      uint16
	Height     uint16
	Seed       int64
	MaxTurns   engine.TurnNum

	// Strategies keys are seat numbers; seats without an entry use
	// the scout default.
	Strategies map[int]Strategy
}

// MatchResult summarizes a completed match.
type MatchResult struct {
	Name       string         `json:"name"`
	Victor     int            `json:"victor"` // -1 on draw
	Turns      engine.TurnNum `json:"turns"`
	CityCounts map[int]int    `json:"city_counts"`
	UnitCounts map[int]int    `json:"unit_counts"`
	Strategies map[int]string `json:"strategies"`
}

// RunMatch generates a board from the seed and plays strategies against
// each other until one controls every city or MaxTurns passes. Both map
// generation and combat draw from the seeded source, so the same config
// replays the same match.
func RunMatch(ctx context.Context, cfg MatchConfig) (*MatchResult, error) {
	rng := rand.New(rand.NewSource(cfg.Seed))
	params := engine.DefaultMapParams(engine.Dims{Width: cfg.Width, Height: cfg.Height}, engine.PlayerNum(cfg.NumPlayers))
	m, err := engine.GenerateMap(rng, params, engine.NewIntNamer("City"))
	if err != nil {
		return nil, fmt.Errorf("generate map: %w", err)
	}
	g := engine.NewGame(m, engine.PlayerNum(cfg.NumPlayers), true, params.Wrapping,
		rng, engine.NewIntNamer("Unit"), engine.NewIntNamer("City"))

	secrets := make(map[int]engine.PlayerSecret, cfg.NumPlayers)
	strategies := make(map[int]Strategy, cfg.NumPlayers)
	for seat := 0; seat < cfg.NumPlayers; seat++ {
		secret, err := g.RegisterPlayer()
		if err != nil {
			return nil, fmt.Errorf("register seat %d: %w", seat, err)
		}
		secrets[seat] = secret
		strategies[seat] = cfg.Strategies[seat]
		if strategies[seat] == nil {
			strategies[seat] = &ScoutStrategy{}
		}
	}

	victor := -1
	for g.Turn() < cfg.MaxTurns {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if v, ok := g.Victor(); ok {
			victor = int(v)
			break
		}
		seat := int(g.CurrentPlayer())
		if err := strategies[seat].PlayTurn(g, secrets[seat]); err != nil {
			return nil, fmt.Errorf("seat %d turn %d: %w", seat, g.Turn(), err)
		}
	}
	if victor < 0 {
		if v, ok := g.Victor(); ok {
			victor = int(v)
		}
	}

	result := &MatchResult{
		Name:       cfg.Name,
		Victor:     victor,
		Turns:      g.Turn(),
		CityCounts: make(map[int]int, cfg.NumPlayers),
		UnitCounts: make(map[int]int, cfg.NumPlayers),
		Strategies: make(map[int]string, cfg.NumPlayers),
	}
	for seat, secret := range secrets {
		result.Strategies[seat] = strategies[seat].Name()
		if cities, err := g.PlayerCities(secret); err == nil {
			result.CityCounts[seat] = len(cities)
		}
		if units, err := g.PlayerUnits(secret); err == nil {
			result.UnitCounts[seat] = len(units)
		}
	}
	return result, nil
}

// ParseSeatConfig turns "0=scout,1=random,*=sentry" into per-seat
// strategies. The wildcard fills unnamed seats; absent, they default to
// scout.
func ParseSeatConfig(s string, numPlayers int) (map[int]Strategy, error) {
	wildcard := ""
	named := make(map[int]string)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("bad seat config entry %q", part)
		}
		if key == "*" {
			wildcard = value
			continue
		}
		seat, err := strconv.Atoi(key)
		if err != nil || seat < 0 || seat >= numPlayers {
			return nil, fmt.Errorf("bad seat %q", key)
		}
		named[seat] = value
	}

	out := make(map[int]Strategy, numPlayers)
	for seat := 0; seat < numPlayers; seat++ {
		difficulty, ok := named[seat]
		if !ok {
			difficulty = wildcard
		}
		out[seat] = StrategyForDifficulty(difficulty)
	}
	return out, nil
}
