package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/freeeve/quiet-conquest/internal/model"
)

// UserRepository defines user data operations.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByProviderID(ctx context.Context, provider, providerID string) (*model.User, error)
	Upsert(ctx context.Context, provider, providerID, displayName, avatarURL string) (*model.User, error)
	UpdateDisplayName(ctx context.Context, id, displayName string) error
}

// GameRepository defines game and seat data operations.
type GameRepository interface {
	Create(ctx context.Context, name, creatorID string, numPlayers int, width, height uint16, seed int64, fogOfWar bool) (*model.Game, error)
	FindByID(ctx context.Context, id string) (*model.Game, error)
	ListOpen(ctx context.Context) ([]model.Game, error)
	ListByUser(ctx context.Context, userID string) ([]model.Game, error)
	ListFinished(ctx context.Context) ([]model.Game, error)
	ListActive(ctx context.Context) ([]model.Game, error)
	JoinGame(ctx context.Context, gameID, userID string, isBot bool) error
	PlayerCount(ctx context.Context, gameID string) (int, error)
	AssignSeats(ctx context.Context, gameID string, seats map[string]int) error
	SetStarted(ctx context.Context, gameID string) error
	SetFinished(ctx context.Context, gameID string, winner int) error
	Delete(ctx context.Context, gameID string) error
}

// SnapshotRepository persists engine state as opaque blobs, one row per
// completed turn plus a rolling current row.
type SnapshotRepository interface {
	SaveCurrent(ctx context.Context, gameID string, turn uint32, state json.RawMessage) error
	LoadCurrent(ctx context.Context, gameID string) (json.RawMessage, error)
	ArchiveTurn(ctx context.Context, gameID string, turn uint32, state json.RawMessage) error
	ListTurns(ctx context.Context, gameID string) ([]uint32, error)
	LoadTurn(ctx context.Context, gameID string, turn uint32) (json.RawMessage, error)
}

// SecretRepository stores each seat's engine secret. Secrets gate all
// engine actions, so they never travel to clients.
type SecretRepository interface {
	SaveSecret(ctx context.Context, gameID string, playerNum int, secret string) error
	LoadSecrets(ctx context.Context, gameID string) (map[int]string, error)
}

// ActivityCache defines live per-game presence and turn-deadline
// operations (Redis).
type ActivityCache interface {
	Touch(ctx context.Context, gameID, userID string) error
	ActiveUsers(ctx context.Context, gameID string) ([]string, error)
	SetTurnDeadline(ctx context.Context, gameID string, deadline time.Time) error
	TurnDeadline(ctx context.Context, gameID string) (time.Time, error)
	ClearTurnDeadline(ctx context.Context, gameID string) error
	DeleteGameData(ctx context.Context, gameID string) error
}
