package service

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/quiet-conquest/internal/repository"
)

// TimerListener watches Redis keyspace notifications for expired turn
// deadline keys and force-ends the overdue turn. A polling fallback
// covers deployments without keyspace notifications enabled.
type TimerListener struct {
	rdb      *redis.Client
	play     *PlayService
	gameRepo repository.GameRepository
	cache    repository.ActivityCache
}

// NewTimerListener creates a TimerListener.
func NewTimerListener(rdb *redis.Client, play *PlayService, gameRepo repository.GameRepository, cache repository.ActivityCache) *TimerListener {
	return &TimerListener{rdb: rdb, play: play, gameRepo: gameRepo, cache: cache}
}

// Start begins listening for expired key events and runs the polling
// fallback until ctx is canceled.
func (t *TimerListener) Start(ctx context.Context) {
	go t.listenKeyspace(ctx)
	t.pollDeadlines(ctx)
}

func (t *TimerListener) listenKeyspace(ctx context.Context) {
	pubsub := t.rdb.PSubscribe(ctx, "__keyevent@0__:expired")
	defer pubsub.Close()

	log.Info().Msg("Timer listener started, listening for expired keys")
	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			t.handleExpiry(ctx, msg.Payload)
		}
	}
}

func (t *TimerListener) pollDeadlines(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	log.Info().Msg("Turn deadline poller started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Turn deadline poller stopped")
			return
		case <-ticker.C:
			t.checkOverdueTurns(ctx)
		}
	}
}

// checkOverdueTurns scans active games for deadlines in the past.
func (t *TimerListener) checkOverdueTurns(ctx context.Context) {
	games, err := t.gameRepo.ListActive(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list active games")
		return
	}
	for _, game := range games {
		deadline, err := t.cache.TurnDeadline(ctx, game.ID)
		if err != nil {
			log.Error().Err(err).Str("gameId", game.ID).Msg("Failed to read turn deadline")
			continue
		}
		if deadline.IsZero() || time.Now().Before(deadline) {
			continue
		}
		log.Info().Str("gameId", game.ID).Time("deadline", deadline).Msg("Poller force-ending overdue turn")
		if err := t.play.ForceEndExpiredTurn(ctx, game.ID); err != nil {
			log.Error().Err(err).Str("gameId", game.ID).Msg("Forced turn end failed from poller")
		}
	}
}

// handleExpiry processes an expired key. Only acts on deadline keys.
func (t *TimerListener) handleExpiry(ctx context.Context, key string) {
	if !strings.HasPrefix(key, "game:") || !strings.HasSuffix(key, ":deadline") {
		return
	}
	parts := strings.SplitN(key, ":", 3)
	if len(parts) != 3 {
		return
	}
	gameID := parts[1]

	log.Info().Str("gameId", gameID).Msg("Turn deadline expired, force-ending turn")
	if err := t.play.ForceEndExpiredTurn(ctx, gameID); err != nil {
		log.Error().Err(err).Str("gameId", gameID).Msg("Forced turn end failed after deadline expiry")
	}
}
