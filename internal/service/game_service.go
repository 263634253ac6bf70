package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/freeeve/quiet-conquest/internal/model"
	"github.com/freeeve/quiet-conquest/internal/repository"
)

var (
	ErrGameNotFound   = errors.New("game not found")
	ErrGameNotWaiting = errors.New("game is not in waiting status")
	ErrGameNotActive  = errors.New("game is not active")
	ErrGameFull       = errors.New("game has no open seats")
	ErrNotEnough      = errors.New("not every seat is filled")
	ErrNotCreator     = errors.New("only the creator can do that")
	ErrAlreadyJoined  = errors.New("already joined this game")
	ErrNotInGame      = errors.New("you are not in this game")
	ErrNotYourTurn    = errors.New("not your turn")
	ErrBadDimensions  = errors.New("map dimensions out of range")
	ErrUnknownOrder   = errors.New("unknown order kind")
)

const (
	minPlayers = 2
	maxPlayers = 8
	minMapSide = 10
	maxMapSide = 200
)

// GameService handles the game lifecycle up to the start of play:
// lobby creation, seats, and kicking off the first turn.
type GameService struct {
	gameRepo repository.GameRepository
	userRepo repository.UserRepository
	play     *PlayService
}

// NewGameService creates a GameService. The PlayService receives
// started games.
func NewGameService(gameRepo repository.GameRepository, userRepo repository.UserRepository, play *PlayService) *GameService {
	return &GameService{gameRepo: gameRepo, userRepo: userRepo, play: play}
}

// CreateGame creates a new game in "waiting" status. The creator takes
// the first seat unless botOnly is set, and bots fill the rest up
// front so a lobby can start immediately.
func (s *GameService) CreateGame(ctx context.Context, name, creatorID string, numPlayers int, width, height uint16, fogOfWar, botOnly bool) (*model.Game, error) {
	if numPlayers < minPlayers || numPlayers > maxPlayers {
		return nil, fmt.Errorf("num players must be %d to %d", minPlayers, maxPlayers)
	}
	if width < minMapSide || width > maxMapSide || height < minMapSide || height > maxMapSide {
		return nil, ErrBadDimensions
	}

	seed := rand.Int63()
	game, err := s.gameRepo.Create(ctx, name, creatorID, numPlayers, width, height, seed, fogOfWar)
	if err != nil {
		return nil, err
	}

	botSeats := numPlayers
	if !botOnly {
		if err := s.gameRepo.JoinGame(ctx, game.ID, creatorID, false); err != nil {
			return nil, err
		}
		botSeats--
	}
	for i := 1; i <= botSeats; i++ {
		providerID := fmt.Sprintf("bot-%d", i)
		displayName := fmt.Sprintf("Bot %d", i)
		botUser, err := s.userRepo.Upsert(ctx, "bot", providerID, displayName, "")
		if err != nil {
			return nil, fmt.Errorf("create bot user %d: %w", i, err)
		}
		if err := s.gameRepo.JoinGame(ctx, game.ID, botUser.ID, true); err != nil {
			return nil, fmt.Errorf("seat bot %d: %w", i, err)
		}
	}

	return s.gameRepo.FindByID(ctx, game.ID)
}

// JoinGame claims a seat in a waiting game, bumping a bot if every
// seat is taken.
func (s *GameService) JoinGame(ctx context.Context, gameID, userID string) error {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return err
	}
	if game == nil {
		return ErrGameNotFound
	}
	if game.Status != model.StatusWaiting {
		return ErrGameNotWaiting
	}
	for _, p := range game.Players {
		if p.UserID == userID {
			return ErrAlreadyJoined
		}
	}
	count, err := s.gameRepo.PlayerCount(ctx, gameID)
	if err != nil {
		return err
	}
	if count >= game.NumPlayers {
		return ErrGameFull
	}
	return s.gameRepo.JoinGame(ctx, gameID, userID, false)
}

// StartGame assigns seats randomly, builds the board, and loads the
// game for live play. Only the creator may start.
func (s *GameService) StartGame(ctx context.Context, gameID, userID string) (*model.Game, error) {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, ErrGameNotFound
	}
	if game.Status != model.StatusWaiting {
		return nil, ErrGameNotWaiting
	}
	if game.CreatorID != userID {
		return nil, ErrNotCreator
	}
	if len(game.Players) != game.NumPlayers {
		return nil, ErrNotEnough
	}

	seats := make(map[string]int, len(game.Players))
	for i, seat := range rand.Perm(len(game.Players)) {
		seats[game.Players[i].UserID] = seat
	}
	if err := s.gameRepo.AssignSeats(ctx, gameID, seats); err != nil {
		return nil, err
	}

	game, err = s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if err := s.play.StartGame(ctx, game); err != nil {
		return nil, err
	}
	return game, nil
}

// GetGame returns a game by ID.
func (s *GameService) GetGame(ctx context.Context, gameID string) (*model.Game, error) {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, ErrGameNotFound
	}
	return game, nil
}

// ListGames returns open games, the user's games, or finished games.
func (s *GameService) ListGames(ctx context.Context, userID string, filter string) ([]model.Game, error) {
	switch filter {
	case "my":
		return s.gameRepo.ListByUser(ctx, userID)
	case "finished":
		return s.gameRepo.ListFinished(ctx)
	default:
		return s.gameRepo.ListOpen(ctx)
	}
}

// DeleteGame removes a waiting game. Only the creator can delete.
func (s *GameService) DeleteGame(ctx context.Context, gameID, userID string) error {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return err
	}
	if game == nil {
		return ErrGameNotFound
	}
	if game.Status != model.StatusWaiting {
		return ErrGameNotWaiting
	}
	if game.CreatorID != userID {
		return ErrNotCreator
	}
	return s.gameRepo.Delete(ctx, gameID)
}

// StopGame abandons an active game with no winner recorded. Only the
// creator can stop.
func (s *GameService) StopGame(ctx context.Context, gameID, userID string) (*model.Game, error) {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, ErrGameNotFound
	}
	if game.Status != model.StatusActive {
		return nil, ErrGameNotActive
	}
	if game.CreatorID != userID {
		return nil, ErrNotCreator
	}
	if err := s.play.Unload(ctx, gameID); err != nil {
		return nil, err
	}
	if err := s.gameRepo.SetFinished(ctx, gameID, -1); err != nil {
		return nil, err
	}
	return s.gameRepo.FindByID(ctx, gameID)
}
