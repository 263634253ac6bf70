package model

import (
	"time"

	"github.com/freeeve/quiet-conquest/pkg/engine"
)

// User represents a registered user.
type User struct {
	ID          string    `json:"id"`
	Provider    string    `json:"provider"`
	ProviderID  string    `json:"provider_id"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Game statuses.
const (
	StatusWaiting  = "waiting"
	StatusActive   = "active"
	StatusFinished = "finished"
)

// Game represents a hosted game and its lobby state.
type Game struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	CreatorID  string       `json:"creator_id"`
	Status     string       `json:"status"` // waiting, active, finished
	NumPlayers int          `json:"num_players"`
	MapWidth   uint16       `json:"map_width"`
	MapHeight  uint16       `json:"map_height"`
	MapSeed    int64        `json:"map_seed"`
	FogOfWar   bool         `json:"fog_of_war"`
	Winner     *int         `json:"winner,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	StartedAt  *time.Time   `json:"started_at,omitempty"`
	FinishedAt *time.Time   `json:"finished_at,omitempty"`
	Players    []GamePlayer `json:"players,omitempty"`
}

// GamePlayer represents a seat in a game. PlayerNum is assigned when
// the game starts; -1 while waiting.
type GamePlayer struct {
	GameID    string    `json:"game_id"`
	UserID    string    `json:"user_id"`
	PlayerNum int       `json:"player_num"`
	IsBot     bool      `json:"is_bot"`
	JoinedAt  time.Time `json:"joined_at"`
}

// TileView is one observed tile in a player-facing board view.
type TileView struct {
	Loc      engine.Location `json:"loc"`
	Observed bool            `json:"observed"`
	Current  bool            `json:"current,omitempty"`
	Turn     engine.TurnNum  `json:"turn,omitempty"`
	Terrain  string          `json:"terrain,omitempty"`
	Unit     *UnitView       `json:"unit,omitempty"`
	City     *CityView       `json:"city,omitempty"`
}

// UnitView is the wire form of a unit.
type UnitView struct {
	ID             engine.UnitID   `json:"id"`
	Type           string          `json:"type"`
	Player         *int            `json:"player,omitempty"`
	Loc            engine.Location `json:"loc"`
	HP             uint16          `json:"hp"`
	MaxHP          uint16          `json:"max_hp"`
	MovesRemaining uint16          `json:"moves_remaining"`
	FuelRemaining  *uint16         `json:"fuel_remaining,omitempty"`
	Name           string          `json:"name"`
	Orders         string          `json:"orders,omitempty"`
	Carrying       []UnitView      `json:"carrying,omitempty"`
}

// CityView is the wire form of a city.
type CityView struct {
	ID         engine.CityID   `json:"id"`
	Loc        engine.Location `json:"loc"`
	Player     *int            `json:"player,omitempty"` // nil for neutral
	Name       string          `json:"name"`
	Production string          `json:"production,omitempty"`
	Progress   uint16          `json:"progress,omitempty"`
}

// BoardView is everything a single player may see of a game.
type BoardView struct {
	GameID        string          `json:"game_id"`
	Width         uint16          `json:"width"`
	Height        uint16          `json:"height"`
	Turn          engine.TurnNum  `json:"turn"`
	CurrentPlayer int             `json:"current_player"`
	Player        int             `json:"player"`
	Victor        *int            `json:"victor,omitempty"`
	Tiles         []TileView      `json:"tiles"`
	Units         []UnitView      `json:"units"`
	Cities        []CityView      `json:"cities"`
	AwaitOrders   []engine.UnitID `json:"await_orders,omitempty"`
	AwaitProd     []engine.CityID `json:"await_production,omitempty"`
}

// MoveView summarizes one executed move for clients.
type MoveView struct {
	UnitID    engine.UnitID   `json:"unit_id"`
	From      engine.Location `json:"from"`
	To        engine.Location `json:"to"`
	Moved     bool            `json:"moved"`
	Destroyed bool            `json:"destroyed"`
	Conquered *CityView       `json:"conquered,omitempty"`
	Distance  uint16          `json:"distance"`
}
