package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/quiet-conquest/internal/bot"
	"github.com/freeeve/quiet-conquest/pkg/engine"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	var (
		seatCfg    string
		numGames   int
		workers    int
		numPlayers int
		width      uint
		height     uint
		maxTurns   uint
		seed       int64
		jsonOut    bool
	)

	flag.StringVar(&seatCfg, "p", "", "Seat config (e.g. 0=scout,*=random)")
	flag.IntVar(&numGames, "n", 1, "Number of games to run")
	flag.IntVar(&workers, "workers", 1, "Concurrency (parallel games)")
	flag.IntVar(&numPlayers, "players", 2, "Players per game")
	flag.UintVar(&width, "width", 90, "Map width")
	flag.UintVar(&height, "height", 45, "Map height")
	flag.UintVar(&maxTurns, "max-turns", 500, "Max turns before draw")
	flag.Int64Var(&seed, "seed", 0, "Base seed (0 = random)")
	flag.BoolVar(&jsonOut, "json", false, "Output results as JSON")

	flag.Parse()

	strategies, err := bot.ParseSeatConfig(seatCfg, numPlayers)
	if err != nil {
		log.Fatal().Err(err).Msg("Bad seat config")
	}
	if seed == 0 {
		seed = rand.Int63()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info().Msg("Shutting down...")
		cancel()
	}()

	// Run games
	results := make([]*bot.MatchResult, numGames)
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)
	errCount := 0

	for i := 0; i < numGames; i++ {
		wg.Add(1)
		sem <- struct{}{}

		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()

			cfg := bot.MatchConfig{
				Name:       fmt.Sprintf("skirmish-%d", idx+1),
				NumPlayers: numPlayers,
				Width:      uint16(width),
				Height:     uint16(height),
				Seed:       seed + int64(idx),
				MaxTurns:   engine.TurnNum(maxTurns),
				Strategies: strategies,
			}

			result, err := bot.RunMatch(ctx, cfg)
			if err != nil {
				log.Error().Err(err).Int("game", idx+1).Msg("Game failed")
				mu.Lock()
				errCount++
				mu.Unlock()
				return
			}

			mu.Lock()
			results[idx] = result
			mu.Unlock()

			log.Info().Int("game", idx+1).Int("victor", result.Victor).Uint32("turns", uint32(result.Turns)).Msg("Game completed")
		}(i)
	}

	wg.Wait()

	if jsonOut {
		printJSON(results, numGames, errCount)
	} else {
		printSummary(results, strategies, numPlayers, int(maxTurns), errCount)
	}
}

func printSummary(results []*bot.MatchResult, strategies map[int]bot.Strategy, numPlayers, maxTurns, errCount int) {
	type stats struct {
		wins        int
		draws       int
		totalCities int
		totalUnits  int
		games       int
	}

	bySeat := make([]*stats, numPlayers)
	for seat := range bySeat {
		bySeat[seat] = &stats{}
	}

	completed := 0
	for _, r := range results {
		if r == nil {
			continue
		}
		completed++
		for seat := 0; seat < numPlayers; seat++ {
			s := bySeat[seat]
			s.games++
			s.totalCities += r.CityCounts[seat]
			s.totalUnits += r.UnitCounts[seat]
			if r.Victor == seat {
				s.wins++
			} else if r.Victor < 0 {
				s.draws++
			}
		}
	}

	fmt.Printf("\nResults (%d games, max %d turns):\n", completed, maxTurns)
	if errCount > 0 {
		fmt.Printf("  (%d games failed)\n", errCount)
	}

	for seat := 0; seat < numPlayers; seat++ {
		s := bySeat[seat]
		avgCities := 0.0
		if s.games > 0 {
			avgCities = float64(s.totalCities) / float64(s.games)
		}
		fmt.Printf("  seat %d (%s):  %d wins, %d draws  -- avg cities: %.1f, units: %d\n",
			seat, strategies[seat].Name(), s.wins, s.draws, avgCities, s.totalUnits)
	}
}

func printJSON(results []*bot.MatchResult, total, errCount int) {
	out := struct {
		Total   int                `json:"total"`
		Errors  int                `json:"errors"`
		Results []*bot.MatchResult `json:"results"`
	}{
		Total:   total,
		Errors:  errCount,
		Results: results,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(out)
}
