package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/freeeve/quiet-conquest/internal/model"
)

type mockGameRepo struct {
	games   map[string]*model.Game
	players map[string][]model.GamePlayer
}

func newMockGameRepo() *mockGameRepo {
	return &mockGameRepo{
		games:   make(map[string]*model.Game),
		players: make(map[string][]model.GamePlayer),
	}
}

func (m *mockGameRepo) Create(_ context.Context, name, creatorID string, numPlayers int, width, height uint16, seed int64, fogOfWar bool) (*model.Game, error) {
	g := &model.Game{
		ID:         fmt.Sprintf("game-%d", len(m.games)+1),
		Name:       name,
		CreatorID:  creatorID,
		Status:     model.StatusWaiting,
		NumPlayers: numPlayers,
		MapWidth:   width,
		MapHeight:  height,
		MapSeed:    seed,
		FogOfWar:   fogOfWar,
		CreatedAt:  time.Now(),
	}
	m.games[g.ID] = g
	return g, nil
}

func (m *mockGameRepo) FindByID(_ context.Context, id string) (*model.Game, error) {
	g, ok := m.games[id]
	if !ok {
		return nil, nil
	}
	cp := *g
	cp.Players = m.players[id]
	return &cp, nil
}

func (m *mockGameRepo) ListOpen(_ context.Context) ([]model.Game, error) {
	var result []model.Game
	for _, g := range m.games {
		if g.Status == model.StatusWaiting {
			result = append(result, *g)
		}
	}
	return result, nil
}

func (m *mockGameRepo) ListByUser(_ context.Context, userID string) ([]model.Game, error) {
	seen := make(map[string]bool)
	var result []model.Game
	for gameID, players := range m.players {
		for _, p := range players {
			if p.UserID == userID && !seen[gameID] {
				if g, ok := m.games[gameID]; ok {
					result = append(result, *g)
					seen[gameID] = true
				}
			}
		}
	}
	for _, g := range m.games {
		if g.CreatorID == userID && !seen[g.ID] {
			result = append(result, *g)
			seen[g.ID] = true
		}
	}
	return result, nil
}

func (m *mockGameRepo) ListFinished(_ context.Context) ([]model.Game, error) {
	var result []model.Game
	for _, g := range m.games {
		if g.Status == model.StatusFinished {
			cp := *g
			cp.Players = m.players[g.ID]
			result = append(result, cp)
		}
	}
	return result, nil
}

func (m *mockGameRepo) ListActive(_ context.Context) ([]model.Game, error) {
	var result []model.Game
	for _, g := range m.games {
		if g.Status == model.StatusActive {
			cp := *g
			cp.Players = m.players[g.ID]
			result = append(result, cp)
		}
	}
	return result, nil
}

func (m *mockGameRepo) JoinGame(_ context.Context, gameID, userID string, isBot bool) error {
	m.players[gameID] = append(m.players[gameID], model.GamePlayer{
		GameID:    gameID,
		UserID:    userID,
		PlayerNum: -1,
		IsBot:     isBot,
		JoinedAt:  time.Now(),
	})
	return nil
}

func (m *mockGameRepo) PlayerCount(_ context.Context, gameID string) (int, error) {
	return len(m.players[gameID]), nil
}

func (m *mockGameRepo) AssignSeats(_ context.Context, gameID string, seats map[string]int) error {
	players := m.players[gameID]
	for i := range players {
		if num, ok := seats[players[i].UserID]; ok {
			players[i].PlayerNum = num
		}
	}
	m.players[gameID] = players
	if g, ok := m.games[gameID]; ok {
		g.Status = model.StatusActive
		now := time.Now()
		g.StartedAt = &now
	}
	return nil
}

func (m *mockGameRepo) SetStarted(_ context.Context, gameID string) error {
	if g, ok := m.games[gameID]; ok {
		g.Status = model.StatusActive
		now := time.Now()
		g.StartedAt = &now
	}
	return nil
}

func (m *mockGameRepo) SetFinished(_ context.Context, gameID string, winner int) error {
	if g, ok := m.games[gameID]; ok {
		g.Status = model.StatusFinished
		g.Winner = &winner
		now := time.Now()
		g.FinishedAt = &now
	}
	return nil
}

func (m *mockGameRepo) Delete(_ context.Context, gameID string) error {
	delete(m.games, gameID)
	delete(m.players, gameID)
	return nil
}

// mockUserRepo implements repository.UserRepository for testing.
type mockUserRepo struct {
	users map[string]*model.User
	seq   int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return u, nil
}

func (m *mockUserRepo) FindByProviderID(_ context.Context, provider, providerID string) (*model.User, error) {
	for _, u := range m.users {
		if u.Provider == provider && u.ProviderID == providerID {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) Upsert(_ context.Context, provider, providerID, displayName, avatarURL string) (*model.User, error) {
	for _, u := range m.users {
		if u.Provider == provider && u.ProviderID == providerID {
			u.DisplayName = displayName
			return u, nil
		}
	}
	m.seq++
	u := &model.User{
		ID:          fmt.Sprintf("%s-user-%d", provider, m.seq),
		Provider:    provider,
		ProviderID:  providerID,
		DisplayName: displayName,
		AvatarURL:   avatarURL,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	m.users[u.ID] = u
	return u, nil
}

func (m *mockUserRepo) UpdateDisplayName(_ context.Context, id, displayName string) error {
	if u, ok := m.users[id]; ok {
		u.DisplayName = displayName
	}
	return nil
}

// mockSnapshotRepo implements repository.SnapshotRepository for testing.
type mockSnapshotRepo struct {
	current map[string]json.RawMessage
	turns   map[string]map[uint32]json.RawMessage
}

func newMockSnapshotRepo() *mockSnapshotRepo {
	return &mockSnapshotRepo{
		current: make(map[string]json.RawMessage),
		turns:   make(map[string]map[uint32]json.RawMessage),
	}
}

func (m *mockSnapshotRepo) SaveCurrent(_ context.Context, gameID string, turn uint32, state json.RawMessage) error {
	m.current[gameID] = state
	return nil
}

func (m *mockSnapshotRepo) LoadCurrent(_ context.Context, gameID string) (json.RawMessage, error) {
	return m.current[gameID], nil
}

func (m *mockSnapshotRepo) ArchiveTurn(_ context.Context, gameID string, turn uint32, state json.RawMessage) error {
	if m.turns[gameID] == nil {
		m.turns[gameID] = make(map[uint32]json.RawMessage)
	}
	if _, ok := m.turns[gameID][turn]; !ok {
		m.turns[gameID][turn] = state
	}
	return nil
}

func (m *mockSnapshotRepo) ListTurns(_ context.Context, gameID string) ([]uint32, error) {
	var result []uint32
	for turn := range m.turns[gameID] {
		result = append(result, turn)
	}
	return result, nil
}

func (m *mockSnapshotRepo) LoadTurn(_ context.Context, gameID string, turn uint32) (json.RawMessage, error) {
	return m.turns[gameID][turn], nil
}

// mockSecretRepo implements repository.SecretRepository for testing.
type mockSecretRepo struct {
	secrets map[string]map[int]string
}

func newMockSecretRepo() *mockSecretRepo {
	return &mockSecretRepo{secrets: make(map[string]map[int]string)}
}

func (m *mockSecretRepo) SaveSecret(_ context.Context, gameID string, playerNum int, secret string) error {
	if m.secrets[gameID] == nil {
		m.secrets[gameID] = make(map[int]string)
	}
	if _, ok := m.secrets[gameID][playerNum]; !ok {
		m.secrets[gameID][playerNum] = secret
	}
	return nil
}

func (m *mockSecretRepo) LoadSecrets(_ context.Context, gameID string) (map[int]string, error) {
	result := make(map[int]string, len(m.secrets[gameID]))
	for seat, secret := range m.secrets[gameID] {
		result[seat] = secret
	}
	return result, nil
}

// mockCache implements repository.ActivityCache for testing.
type mockCache struct {
	touches   map[string]map[string]bool // gameID -> set of userIDs
	deadlines map[string]time.Time
}

func newMockCache() *mockCache {
	return &mockCache{
		touches:   make(map[string]map[string]bool),
		deadlines: make(map[string]time.Time),
	}
}

func (c *mockCache) Touch(_ context.Context, gameID, userID string) error {
	if c.touches[gameID] == nil {
		c.touches[gameID] = make(map[string]bool)
	}
	c.touches[gameID][userID] = true
	return nil
}

func (c *mockCache) ActiveUsers(_ context.Context, gameID string) ([]string, error) {
	var result []string
	for userID := range c.touches[gameID] {
		result = append(result, userID)
	}
	return result, nil
}

func (c *mockCache) SetTurnDeadline(_ context.Context, gameID string, deadline time.Time) error {
	c.deadlines[gameID] = deadline
	return nil
}

func (c *mockCache) TurnDeadline(_ context.Context, gameID string) (time.Time, error) {
	return c.deadlines[gameID], nil
}

func (c *mockCache) ClearTurnDeadline(_ context.Context, gameID string) error {
	delete(c.deadlines, gameID)
	return nil
}

func (c *mockCache) DeleteGameData(_ context.Context, gameID string) error {
	delete(c.touches, gameID)
	delete(c.deadlines, gameID)
	return nil
}
