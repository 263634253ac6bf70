package bot

import (
	"context"
	"testing"

	"github.com/freeeve/quiet-conquest/pkg/engine"
)

func TestParseSeatConfig(t *testing.T) {
	strategies, err := ParseSeatConfig("0=sentry,*=random", 3)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if strategies[0].Name() != "sentry" {
		t.Errorf("seat 0: expected sentry, got %s", strategies[0].Name())
	}
	for seat := 1; seat < 3; seat++ {
		if strategies[seat].Name() != "random" {
			t.Errorf("seat %d: expected random, got %s", seat, strategies[seat].Name())
		}
	}

	// Empty config falls back to scout everywhere
	strategies, err = ParseSeatConfig("", 2)
	if err != nil {
		t.Fatalf("parse empty: %v", err)
	}
	if strategies[0].Name() != "scout" || strategies[1].Name() != "scout" {
		t.Errorf("expected scout defaults, got %s / %s", strategies[0].Name(), strategies[1].Name())
	}
}

func TestParseSeatConfigRejectsBadInput(t *testing.T) {
	if _, err := ParseSeatConfig("garbage", 2); err == nil {
		t.Error("expected error for entry without =")
	}
	if _, err := ParseSeatConfig("5=scout", 2); err == nil {
		t.Error("expected error for out-of-range seat")
	}
	if _, err := ParseSeatConfig("x=scout", 2); err == nil {
		t.Error("expected error for non-numeric seat")
	}
}

func TestRunMatchCompletes(t *testing.T) {
	SeedBotRng(7)
	defer ResetBotRng()

	result, err := RunMatch(context.Background(), MatchConfig{
		Name:       "test-match",
		NumPlayers: 2,
		Width:      20,
		Height:     15,
		Seed:       7,
		MaxTurns:   3,
		Strategies: map[int]Strategy{0: &SentryStrategy{}, 1: &SentryStrategy{}},
	})
	if err != nil {
		t.Fatalf("run match: %v", err)
	}
	if result.Name != "test-match" {
		t.Errorf("expected name carried through, got %s", result.Name)
	}
	// Sentry seats never attack, so three turns cannot produce a victor.
	if result.Victor != -1 {
		t.Errorf("expected draw, got victor %d", result.Victor)
	}
	if result.Turns != 3 {
		t.Errorf("expected 3 turns, got %d", result.Turns)
	}
	for seat := 0; seat < 2; seat++ {
		if result.CityCounts[seat] < 1 {
			t.Errorf("seat %d: expected at least the starting city, got %d", seat, result.CityCounts[seat])
		}
		if result.Strategies[seat] != "sentry" {
			t.Errorf("seat %d: expected sentry, got %s", seat, result.Strategies[seat])
		}
	}
}

func TestRunMatchIsReproducible(t *testing.T) {
	cfg := MatchConfig{
		Name:       "repro",
		NumPlayers: 2,
		Width:      20,
		Height:     15,
		Seed:       99,
		MaxTurns:   5,
		Strategies: map[int]Strategy{0: &RandomStrategy{}, 1: &RandomStrategy{}},
	}

	run := func() *MatchResult {
		SeedBotRng(99)
		defer ResetBotRng()
		result, err := RunMatch(context.Background(), cfg)
		if err != nil {
			t.Fatalf("run match: %v", err)
		}
		return result
	}

	a := run()
	b := run()
	if a.Victor != b.Victor || a.Turns != b.Turns {
		t.Fatalf("runs diverged: victor %d/%d, turns %d/%d", a.Victor, b.Victor, a.Turns, b.Turns)
	}
	for seat := 0; seat < 2; seat++ {
		if a.CityCounts[seat] != b.CityCounts[seat] || a.UnitCounts[seat] != b.UnitCounts[seat] {
			t.Fatalf("seat %d state diverged: cities %d/%d, units %d/%d", seat,
				a.CityCounts[seat], b.CityCounts[seat], a.UnitCounts[seat], b.UnitCounts[seat])
		}
	}
}

func TestRunMatchHonorsContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RunMatch(ctx, MatchConfig{
		Name:       "cancelled",
		NumPlayers: 2,
		Width:      20,
		Height:     15,
		Seed:       1,
		MaxTurns:   engine.TurnNum(1000),
	})
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
}
