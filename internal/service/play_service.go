package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/quiet-conquest/internal/bot"
	"github.com/freeeve/quiet-conquest/internal/model"
	"github.com/freeeve/quiet-conquest/internal/repository"
	"github.com/freeeve/quiet-conquest/pkg/engine"
)

// turnTimeout is how long the current player has before their turn is
// force-ended.
const turnTimeout = 24 * time.Hour

// liveGame is one loaded game. The engine is not safe for concurrent
// use, so every touch goes through mu.
type liveGame struct {
	mu      sync.Mutex
	game    *engine.Game
	rec     *model.Game
	secrets map[int]engine.PlayerSecret
	seats   map[string]int // userID -> player number
	bots    map[int]bool   // player number -> is bot
}

func (lg *liveGame) secretFor(userID string) (engine.PlayerSecret, error) {
	seat, ok := lg.seats[userID]
	if !ok {
		return engine.PlayerSecret{}, ErrNotInGame
	}
	return lg.secrets[seat], nil
}

// PlayService runs active games: it owns the loaded engine states,
// serializes all mutations, persists snapshots, advances bot seats,
// and reports victories back to the lobby records.
type PlayService struct {
	gameRepo    repository.GameRepository
	snapRepo    repository.SnapshotRepository
	secretRepo  repository.SecretRepository
	cache       repository.ActivityCache
	broadcaster Broadcaster
	botStrategy bot.Strategy

	mu    sync.Mutex
	games map[string]*liveGame
}

// NewPlayService creates a PlayService.
func NewPlayService(
	gameRepo repository.GameRepository,
	snapRepo repository.SnapshotRepository,
	secretRepo repository.SecretRepository,
	cache repository.ActivityCache,
	broadcaster Broadcaster,
) *PlayService {
	if broadcaster == nil {
		broadcaster = NoopBroadcaster{}
	}
	return &PlayService{
		gameRepo:    gameRepo,
		snapRepo:    snapRepo,
		secretRepo:  secretRepo,
		cache:       cache,
		broadcaster: broadcaster,
		botStrategy: bot.StrategyForDifficulty(""),
		games:       make(map[string]*liveGame),
	}
}

// StartGame builds the board for a freshly started lobby record,
// registers every seat, persists secrets and the opening snapshot, and
// begins play. Bot seats at the head of the turn order play
// immediately.
func (s *PlayService) StartGame(ctx context.Context, rec *model.Game) error {
	rng := rand.New(rand.NewSource(rec.MapSeed))
	params := engine.DefaultMapParams(engine.Dims{Width: rec.MapWidth, Height: rec.MapHeight}, engine.PlayerNum(rec.NumPlayers))
	m, err := engine.GenerateMap(rng, params, engine.NewIntNamer("City"))
	if err != nil {
		return fmt.Errorf("generate map: %w", err)
	}
	g := engine.NewGame(m, engine.PlayerNum(rec.NumPlayers), rec.FogOfWar, params.Wrapping,
		rng, engine.NewIntNamer("Unit"), engine.NewIntNamer("City"))

	secrets := make(map[int]engine.PlayerSecret, rec.NumPlayers)
	for seat := 0; seat < rec.NumPlayers; seat++ {
		secret, err := g.RegisterPlayer()
		if err != nil {
			return fmt.Errorf("register seat %d: %w", seat, err)
		}
		secrets[seat] = secret
		if err := s.secretRepo.SaveSecret(ctx, rec.ID, seat, secret.String()); err != nil {
			return err
		}
	}

	lg := &liveGame{game: g, rec: rec, secrets: secrets, seats: map[string]int{}, bots: map[int]bool{}}
	for _, p := range rec.Players {
		lg.seats[p.UserID] = p.PlayerNum
		lg.bots[p.PlayerNum] = p.IsBot
	}

	s.mu.Lock()
	s.games[rec.ID] = lg
	s.mu.Unlock()

	lg.mu.Lock()
	defer lg.mu.Unlock()
	if err := s.persist(ctx, lg); err != nil {
		return err
	}
	return s.afterAction(ctx, lg)
}

// load returns the live game, restoring it from storage on a cold
// start.
func (s *PlayService) load(ctx context.Context, gameID string) (*liveGame, error) {
	s.mu.Lock()
	if lg, ok := s.games[gameID]; ok {
		s.mu.Unlock()
		return lg, nil
	}
	s.mu.Unlock()

	rec, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrGameNotFound
	}
	if rec.Status != model.StatusActive {
		return nil, ErrGameNotActive
	}
	blob, err := s.snapRepo.LoadCurrent(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if blob == nil {
		return nil, fmt.Errorf("active game %s has no snapshot", gameID)
	}
	g, err := engine.UnmarshalGame(blob, rand.New(rand.NewSource(rand.Int63())),
		engine.NewIntNamer("Unit"), engine.NewIntNamer("City"))
	if err != nil {
		return nil, fmt.Errorf("restore game %s: %w", gameID, err)
	}
	stored, err := s.secretRepo.LoadSecrets(ctx, gameID)
	if err != nil {
		return nil, err
	}
	secrets := make(map[int]engine.PlayerSecret, len(stored))
	for seat, str := range stored {
		secret, err := engine.ParsePlayerSecret(str)
		if err != nil {
			return nil, fmt.Errorf("seat %d secret: %w", seat, err)
		}
		secrets[seat] = secret
	}

	lg := &liveGame{game: g, rec: rec, secrets: secrets, seats: map[string]int{}, bots: map[int]bool{}}
	for _, p := range rec.Players {
		lg.seats[p.UserID] = p.PlayerNum
		lg.bots[p.PlayerNum] = p.IsBot
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.games[gameID]; ok {
		return existing, nil
	}
	s.games[gameID] = lg
	return lg, nil
}

// Unload drops a game from the registry and clears its live data.
func (s *PlayService) Unload(ctx context.Context, gameID string) error {
	s.mu.Lock()
	delete(s.games, gameID)
	s.mu.Unlock()
	return s.cache.DeleteGameData(ctx, gameID)
}

// RecoverActiveGames reloads every active game after a restart so
// bot-to-move games resume and deadlines are rearmed.
func (s *PlayService) RecoverActiveGames(ctx context.Context) error {
	games, err := s.gameRepo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list active games: %w", err)
	}
	for _, rec := range games {
		lg, err := s.load(ctx, rec.ID)
		if err != nil {
			log.Error().Err(err).Str("gameId", rec.ID).Msg("Failed to recover game")
			continue
		}
		lg.mu.Lock()
		err = s.afterAction(ctx, lg)
		lg.mu.Unlock()
		if err != nil {
			log.Error().Err(err).Str("gameId", rec.ID).Msg("Failed to resume recovered game")
			continue
		}
		log.Info().Str("gameId", rec.ID).Msg("Recovered active game")
	}
	return nil
}

// withGame runs fn while holding the game's lock, then persists,
// advances bots, and broadcasts. fn receives the caller's secret.
func (s *PlayService) withGame(ctx context.Context, gameID, userID string, fn func(*engine.Game, engine.PlayerSecret) error) error {
	lg, err := s.load(ctx, gameID)
	if err != nil {
		return err
	}
	lg.mu.Lock()
	defer lg.mu.Unlock()

	secret, err := lg.secretFor(userID)
	if err != nil {
		return err
	}
	if err := fn(lg.game, secret); err != nil {
		return err
	}
	if err := s.persist(ctx, lg); err != nil {
		return err
	}
	if err := s.cache.Touch(ctx, gameID, userID); err != nil {
		log.Warn().Err(err).Str("gameId", gameID).Msg("Presence touch failed")
	}
	return s.afterAction(ctx, lg)
}

// persist saves the current snapshot blob.
func (s *PlayService) persist(ctx context.Context, lg *liveGame) error {
	blob, err := engine.MarshalGame(lg.game)
	if err != nil {
		return fmt.Errorf("marshal game %s: %w", lg.rec.ID, err)
	}
	return s.snapRepo.SaveCurrent(ctx, lg.rec.ID, uint32(lg.game.Turn()), blob)
}

// afterAction runs the shared post-mutation work: finish the game if
// decided, play any bot seats whose turn has come, archive completed
// turns, rearm the deadline, and notify clients. Callers hold lg.mu.
func (s *PlayService) afterAction(ctx context.Context, lg *liveGame) error {
	startTurn := lg.game.Turn()

	for i := 0; i < lg.rec.NumPlayers; i++ {
		if victor, won := lg.game.Victor(); won {
			return s.finish(ctx, lg, int(victor))
		}
		seat := int(lg.game.CurrentPlayer())
		if !lg.bots[seat] {
			break
		}
		if err := s.botStrategy.PlayTurn(lg.game, lg.secrets[seat]); err != nil {
			return fmt.Errorf("bot seat %d: %w", seat, err)
		}
		if err := s.persist(ctx, lg); err != nil {
			return err
		}
	}
	if victor, won := lg.game.Victor(); won {
		return s.finish(ctx, lg, int(victor))
	}

	if lg.game.Turn() > startTurn {
		blob, err := engine.MarshalGame(lg.game)
		if err == nil {
			err = s.snapRepo.ArchiveTurn(ctx, lg.rec.ID, uint32(lg.game.Turn()), blob)
		}
		if err != nil {
			log.Warn().Err(err).Str("gameId", lg.rec.ID).Msg("Turn archive failed")
		}
	}

	if err := s.cache.SetTurnDeadline(ctx, lg.rec.ID, time.Now().Add(turnTimeout)); err != nil {
		log.Warn().Err(err).Str("gameId", lg.rec.ID).Msg("Deadline arm failed")
	}
	s.broadcaster.BroadcastGameEvent(lg.rec.ID, "game_updated", map[string]any{
		"turn":           lg.game.Turn(),
		"current_player": lg.game.CurrentPlayer(),
	})
	return nil
}

// finish records the winner and tears the game down.
func (s *PlayService) finish(ctx context.Context, lg *liveGame, victor int) error {
	log.Info().Str("gameId", lg.rec.ID).Int("victor", victor).Msg("Game decided")
	if err := s.persist(ctx, lg); err != nil {
		return err
	}
	if err := s.gameRepo.SetFinished(ctx, lg.rec.ID, victor); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.games, lg.rec.ID)
	s.mu.Unlock()
	if err := s.cache.DeleteGameData(ctx, lg.rec.ID); err != nil {
		log.Warn().Err(err).Str("gameId", lg.rec.ID).Msg("Cache cleanup failed")
	}
	s.broadcaster.BroadcastGameEvent(lg.rec.ID, "game_finished", map[string]any{"victor": victor})
	return nil
}

// ForceEndExpiredTurn force-ends the current player's turn after a
// deadline expiry, whoever they are.
func (s *PlayService) ForceEndExpiredTurn(ctx context.Context, gameID string) error {
	lg, err := s.load(ctx, gameID)
	if err != nil {
		return err
	}
	lg.mu.Lock()
	defer lg.mu.Unlock()

	seat := int(lg.game.CurrentPlayer())
	secret := lg.secrets[seat]
	if lg.game.Phase() == engine.PhasePre {
		if _, err := lg.game.BeginTurn(secret, false); err != nil {
			return err
		}
	}
	if err := lg.game.ForceEndTurn(secret); err != nil {
		return err
	}
	if err := s.persist(ctx, lg); err != nil {
		return err
	}
	return s.afterAction(ctx, lg)
}
