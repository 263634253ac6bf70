//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/freeeve/quiet-conquest/internal/model"
	"github.com/freeeve/quiet-conquest/internal/testutil"
)

var testDB *sql.DB

func TestMain(m *testing.M) {
	m.Run()
}

func setup(t *testing.T) {
	t.Helper()
	if testDB == nil {
		testDB = testutil.SetupDB(t)
	}
	testutil.CleanupDB(t, testDB)
}

// createTestUser is a helper that inserts a user and returns it.
func createTestUser(t *testing.T, repo *UserRepo, suffix string) *model.User {
	t.Helper()
	u, err := repo.Upsert(context.Background(), "google", "provider-"+suffix, "User "+suffix, "https://avatar/"+suffix)
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}
	return u
}

// createTestGame is a helper that inserts a waiting 2-player game.
func createTestGame(t *testing.T, repo *GameRepo, name, creatorID string) *model.Game {
	t.Helper()
	g, err := repo.Create(context.Background(), name, creatorID, 2, 30, 20, 42, true)
	if err != nil {
		t.Fatalf("create test game: %v", err)
	}
	return g
}

// --- UserRepo Tests ---

func TestUserUpsertCreates(t *testing.T) {
	setup(t)
	repo := NewUserRepo(testDB)

	u, err := repo.Upsert(context.Background(), "google", "goog-123", "Alice", "https://avatar/alice")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if u.ID == "" {
		t.Fatal("expected non-empty ID")
	}
	if u.Provider != "google" || u.ProviderID != "goog-123" {
		t.Fatalf("unexpected provider data: %s / %s", u.Provider, u.ProviderID)
	}
	if u.DisplayName != "Alice" {
		t.Fatalf("expected display name Alice, got %s", u.DisplayName)
	}
	if u.AvatarURL != "https://avatar/alice" {
		t.Fatalf("expected avatar URL, got %s", u.AvatarURL)
	}
}

func TestUserUpsertUpdates(t *testing.T) {
	setup(t)
	repo := NewUserRepo(testDB)

	u1, err := repo.Upsert(context.Background(), "google", "goog-456", "Bob", "https://old")
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	u2, err := repo.Upsert(context.Background(), "google", "goog-456", "Bobby", "https://new")
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	if u1.ID != u2.ID {
		t.Fatalf("upsert should return same ID: %s vs %s", u1.ID, u2.ID)
	}
	if u2.DisplayName != "Bobby" {
		t.Fatalf("expected updated name Bobby, got %s", u2.DisplayName)
	}
	if u2.AvatarURL != "https://new" {
		t.Fatalf("expected updated avatar, got %s", u2.AvatarURL)
	}
}

func TestUserFindByID(t *testing.T) {
	setup(t)
	repo := NewUserRepo(testDB)

	created, _ := repo.Upsert(context.Background(), "google", "goog-find", "FindMe", "")
	found, err := repo.FindByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if found == nil || found.ID != created.ID {
		t.Fatal("expected to find user by ID")
	}

	// Not found
	notFound, err := repo.FindByID(context.Background(), "00000000-0000-0000-0000-000000000000")
	if err != nil {
		t.Fatalf("find missing: %v", err)
	}
	if notFound != nil {
		t.Fatal("expected nil for missing user")
	}
}

func TestUserFindByProviderID(t *testing.T) {
	setup(t)
	repo := NewUserRepo(testDB)

	repo.Upsert(context.Background(), "apple", "apple-123", "Charlie", "")

	found, err := repo.FindByProviderID(context.Background(), "apple", "apple-123")
	if err != nil {
		t.Fatalf("find by provider: %v", err)
	}
	if found == nil || found.DisplayName != "Charlie" {
		t.Fatal("expected to find user by provider")
	}

	notFound, err := repo.FindByProviderID(context.Background(), "apple", "no-such-id")
	if err != nil {
		t.Fatalf("find missing provider: %v", err)
	}
	if notFound != nil {
		t.Fatal("expected nil for missing provider ID")
	}
}

func TestUserUpdateDisplayName(t *testing.T) {
	setup(t)
	repo := NewUserRepo(testDB)

	u, _ := repo.Upsert(context.Background(), "google", "goog-upd", "OldName", "")
	if err := repo.UpdateDisplayName(context.Background(), u.ID, "NewName"); err != nil {
		t.Fatalf("update display name: %v", err)
	}

	found, _ := repo.FindByID(context.Background(), u.ID)
	if found.DisplayName != "NewName" {
		t.Fatalf("expected NewName, got %s", found.DisplayName)
	}
}

// --- GameRepo Tests ---

func TestGameCreate(t *testing.T) {
	setup(t)
	userRepo := NewUserRepo(testDB)
	gameRepo := NewGameRepo(testDB)

	creator := createTestUser(t, userRepo, "creator")

	g, err := gameRepo.Create(context.Background(), "Test Game", creator.ID, 4, 90, 45, -7, false)
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	if g.ID == "" {
		t.Fatal("expected non-empty game ID")
	}
	if g.Name != "Test Game" {
		t.Fatalf("expected game name 'Test Game', got '%s'", g.Name)
	}
	if g.Status != "waiting" {
		t.Fatalf("expected waiting status, got %s", g.Status)
	}
	if g.NumPlayers != 4 || g.MapWidth != 90 || g.MapHeight != 45 {
		t.Fatalf("unexpected config: %d players, %dx%d", g.NumPlayers, g.MapWidth, g.MapHeight)
	}
	if g.MapSeed != -7 {
		t.Fatalf("expected seed -7, got %d", g.MapSeed)
	}
	if g.FogOfWar {
		t.Fatal("expected fog of war disabled")
	}
}

func TestGameFindByIDWithPlayers(t *testing.T) {
	setup(t)
	userRepo := NewUserRepo(testDB)
	gameRepo := NewGameRepo(testDB)

	creator := createTestUser(t, userRepo, "owner")
	g := createTestGame(t, gameRepo, "With Players", creator.ID)
	gameRepo.JoinGame(context.Background(), g.ID, creator.ID, false)

	player2 := createTestUser(t, userRepo, "p2")
	gameRepo.JoinGame(context.Background(), g.ID, player2.ID, false)

	found, err := gameRepo.FindByID(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if found == nil {
		t.Fatal("expected to find game")
	}
	if len(found.Players) != 2 {
		t.Fatalf("expected 2 players, got %d", len(found.Players))
	}
	// Seats not assigned yet
	for _, p := range found.Players {
		if p.PlayerNum != -1 {
			t.Fatalf("expected unassigned seat, got %d", p.PlayerNum)
		}
	}
}

func TestGameListOpen(t *testing.T) {
	setup(t)
	userRepo := NewUserRepo(testDB)
	gameRepo := NewGameRepo(testDB)

	creator := createTestUser(t, userRepo, "lister")
	createTestGame(t, gameRepo, "Open1", creator.ID)
	createTestGame(t, gameRepo, "Open2", creator.ID)

	games, err := gameRepo.ListOpen(context.Background())
	if err != nil {
		t.Fatalf("list open: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("expected 2 open games, got %d", len(games))
	}
}

func TestGameListByUser(t *testing.T) {
	setup(t)
	userRepo := NewUserRepo(testDB)
	gameRepo := NewGameRepo(testDB)

	u1 := createTestUser(t, userRepo, "u1")
	u2 := createTestUser(t, userRepo, "u2")

	g1 := createTestGame(t, gameRepo, "G1", u1.ID)
	gameRepo.JoinGame(context.Background(), g1.ID, u1.ID, false)

	g2 := createTestGame(t, gameRepo, "G2", u2.ID)
	gameRepo.JoinGame(context.Background(), g2.ID, u2.ID, false)
	gameRepo.JoinGame(context.Background(), g2.ID, u1.ID, false)

	games, err := gameRepo.ListByUser(context.Background(), u1.ID)
	if err != nil {
		t.Fatalf("list by user: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("expected 2 games for u1, got %d", len(games))
	}

	u2Games, _ := gameRepo.ListByUser(context.Background(), u2.ID)
	if len(u2Games) != 1 {
		t.Fatalf("expected 1 game for u2, got %d", len(u2Games))
	}
}

func TestGameJoinIdempotent(t *testing.T) {
	setup(t)
	userRepo := NewUserRepo(testDB)
	gameRepo := NewGameRepo(testDB)

	creator := createTestUser(t, userRepo, "joiner")
	g := createTestGame(t, gameRepo, "Join Test", creator.ID)

	// Join twice - second should be a no-op (ON CONFLICT DO NOTHING)
	if err := gameRepo.JoinGame(context.Background(), g.ID, creator.ID, false); err != nil {
		t.Fatalf("first join: %v", err)
	}
	if err := gameRepo.JoinGame(context.Background(), g.ID, creator.ID, false); err != nil {
		t.Fatalf("second join should not error: %v", err)
	}

	count, _ := gameRepo.PlayerCount(context.Background(), g.ID)
	if count != 1 {
		t.Fatalf("expected 1 player after duplicate join, got %d", count)
	}
}

func TestGamePlayerCount(t *testing.T) {
	setup(t)
	userRepo := NewUserRepo(testDB)
	gameRepo := NewGameRepo(testDB)

	creator := createTestUser(t, userRepo, "counter")
	g, err := gameRepo.Create(context.Background(), "Count Test", creator.ID, 4, 30, 20, 1, true)
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	gameRepo.JoinGame(context.Background(), g.ID, creator.ID, false)

	for i := 0; i < 3; i++ {
		p := createTestUser(t, userRepo, "cp"+string(rune('a'+i)))
		gameRepo.JoinGame(context.Background(), g.ID, p.ID, i == 2)
	}

	count, err := gameRepo.PlayerCount(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("player count: %v", err)
	}
	if count != 4 {
		t.Fatalf("expected 4 players, got %d", count)
	}
}

func TestGameAssignSeats(t *testing.T) {
	setup(t)
	userRepo := NewUserRepo(testDB)
	gameRepo := NewGameRepo(testDB)

	creator := createTestUser(t, userRepo, "assign-c")
	g, err := gameRepo.Create(context.Background(), "Seat Test", creator.ID, 3, 30, 20, 9, true)
	if err != nil {
		t.Fatalf("create game: %v", err)
	}

	var users []*model.User
	for i := 0; i < 3; i++ {
		u := createTestUser(t, userRepo, "seat-"+string(rune('a'+i)))
		gameRepo.JoinGame(context.Background(), g.ID, u.ID, false)
		users = append(users, u)
	}

	seats := make(map[string]int)
	for i, u := range users {
		seats[u.ID] = i
	}

	if err := gameRepo.AssignSeats(context.Background(), g.ID, seats); err != nil {
		t.Fatalf("assign seats: %v", err)
	}

	found, _ := gameRepo.FindByID(context.Background(), g.ID)
	if found.Status != "active" {
		t.Fatalf("expected active status, got %s", found.Status)
	}
	if found.StartedAt == nil {
		t.Fatal("expected started_at to be set")
	}

	playerSeats := make(map[string]int)
	for _, p := range found.Players {
		playerSeats[p.UserID] = p.PlayerNum
	}
	for _, u := range users {
		if playerSeats[u.ID] != seats[u.ID] {
			t.Fatalf("player %s: expected seat %d, got %d", u.ID, seats[u.ID], playerSeats[u.ID])
		}
	}
}

func TestGameListActive(t *testing.T) {
	setup(t)
	userRepo := NewUserRepo(testDB)
	gameRepo := NewGameRepo(testDB)

	creator := createTestUser(t, userRepo, "active-c")
	g1 := createTestGame(t, gameRepo, "Running", creator.ID)
	gameRepo.JoinGame(context.Background(), g1.ID, creator.ID, false)
	gameRepo.SetStarted(context.Background(), g1.ID)

	createTestGame(t, gameRepo, "Still Waiting", creator.ID)

	active, err := gameRepo.ListActive(context.Background())
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("expected 1 active game, got %d", len(active))
	}
	if active[0].ID != g1.ID {
		t.Fatalf("expected game %s, got %s", g1.ID, active[0].ID)
	}
	if len(active[0].Players) != 1 {
		t.Fatalf("expected players loaded for active game, got %d", len(active[0].Players))
	}
}

func TestGameSetFinished(t *testing.T) {
	setup(t)
	userRepo := NewUserRepo(testDB)
	gameRepo := NewGameRepo(testDB)

	creator := createTestUser(t, userRepo, "finisher")
	g := createTestGame(t, gameRepo, "Finish Test", creator.ID)

	if err := gameRepo.SetFinished(context.Background(), g.ID, 1); err != nil {
		t.Fatalf("set finished: %v", err)
	}

	found, _ := gameRepo.FindByID(context.Background(), g.ID)
	if found.Status != "finished" {
		t.Fatalf("expected finished, got %s", found.Status)
	}
	if found.Winner == nil || *found.Winner != 1 {
		t.Fatalf("expected winner 1, got %v", found.Winner)
	}
	if found.FinishedAt == nil {
		t.Fatal("expected finished_at to be set")
	}

	finished, err := gameRepo.ListFinished(context.Background())
	if err != nil {
		t.Fatalf("list finished: %v", err)
	}
	if len(finished) != 1 {
		t.Fatalf("expected 1 finished game, got %d", len(finished))
	}
}

func TestGameDeleteCascades(t *testing.T) {
	setup(t)
	userRepo := NewUserRepo(testDB)
	gameRepo := NewGameRepo(testDB)
	snapRepo := NewSnapshotRepo(testDB)
	secretRepo := NewSecretRepo(testDB)

	creator := createTestUser(t, userRepo, "deleter")
	g := createTestGame(t, gameRepo, "Delete Me", creator.ID)
	gameRepo.JoinGame(context.Background(), g.ID, creator.ID, false)
	snapRepo.SaveCurrent(context.Background(), g.ID, 0, json.RawMessage(`{"turn":0}`))
	secretRepo.SaveSecret(context.Background(), g.ID, 0, "secret-0")

	if err := gameRepo.Delete(context.Background(), g.ID); err != nil {
		t.Fatalf("delete game: %v", err)
	}

	found, _ := gameRepo.FindByID(context.Background(), g.ID)
	if found != nil {
		t.Fatal("expected game to be gone")
	}
	blob, _ := snapRepo.LoadCurrent(context.Background(), g.ID)
	if blob != nil {
		t.Fatal("expected snapshots to cascade")
	}
	secrets, _ := secretRepo.LoadSecrets(context.Background(), g.ID)
	if len(secrets) != 0 {
		t.Fatal("expected secrets to cascade")
	}
}

// --- SnapshotRepo Tests ---

func TestSnapshotSaveCurrentOverwrites(t *testing.T) {
	setup(t)
	userRepo := NewUserRepo(testDB)
	gameRepo := NewGameRepo(testDB)
	snapRepo := NewSnapshotRepo(testDB)

	creator := createTestUser(t, userRepo, "snap-c")
	g := createTestGame(t, gameRepo, "Snap Test", creator.ID)

	if err := snapRepo.SaveCurrent(context.Background(), g.ID, 0, json.RawMessage(`{"turn":0}`)); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := snapRepo.SaveCurrent(context.Background(), g.ID, 1, json.RawMessage(`{"turn":1}`)); err != nil {
		t.Fatalf("second save: %v", err)
	}

	blob, err := snapRepo.LoadCurrent(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("load current: %v", err)
	}

	var state map[string]any
	if err := json.Unmarshal(blob, &state); err != nil {
		t.Fatalf("unmarshal state: %v", err)
	}
	if state["turn"].(float64) != 1 {
		t.Fatalf("expected current blob for turn 1, got %v", state)
	}
}

func TestSnapshotLoadCurrentMissing(t *testing.T) {
	setup(t)
	userRepo := NewUserRepo(testDB)
	gameRepo := NewGameRepo(testDB)
	snapRepo := NewSnapshotRepo(testDB)

	creator := createTestUser(t, userRepo, "snap-miss")
	g := createTestGame(t, gameRepo, "No Snap", creator.ID)

	blob, err := snapRepo.LoadCurrent(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("load missing: %v", err)
	}
	if blob != nil {
		t.Fatal("expected nil blob for missing snapshot")
	}
}

func TestSnapshotArchiveAndListTurns(t *testing.T) {
	setup(t)
	userRepo := NewUserRepo(testDB)
	gameRepo := NewGameRepo(testDB)
	snapRepo := NewSnapshotRepo(testDB)

	creator := createTestUser(t, userRepo, "arch-c")
	g := createTestGame(t, gameRepo, "Archive Test", creator.ID)

	for turn := uint32(0); turn < 3; turn++ {
		if err := snapRepo.ArchiveTurn(context.Background(), g.ID, turn, json.RawMessage(`{}`)); err != nil {
			t.Fatalf("archive turn %d: %v", turn, err)
		}
	}
	// Re-archiving an existing turn is a no-op
	if err := snapRepo.ArchiveTurn(context.Background(), g.ID, 1, json.RawMessage(`{"dup":true}`)); err != nil {
		t.Fatalf("duplicate archive should not error: %v", err)
	}

	turns, err := snapRepo.ListTurns(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("list turns: %v", err)
	}
	if len(turns) != 3 {
		t.Fatalf("expected 3 archived turns, got %d", len(turns))
	}
	for i, turn := range turns {
		if turn != uint32(i) {
			t.Fatalf("expected turns in order, got %v", turns)
		}
	}

	blob, err := snapRepo.LoadTurn(context.Background(), g.ID, 1)
	if err != nil {
		t.Fatalf("load turn: %v", err)
	}
	var state map[string]any
	json.Unmarshal(blob, &state)
	if _, dup := state["dup"]; dup {
		t.Fatal("duplicate archive should not overwrite the original blob")
	}

	missing, err := snapRepo.LoadTurn(context.Background(), g.ID, 99)
	if err != nil {
		t.Fatalf("load missing turn: %v", err)
	}
	if missing != nil {
		t.Fatal("expected nil blob for missing turn")
	}
}

// --- SecretRepo Tests ---

func TestSecretSaveAndLoad(t *testing.T) {
	setup(t)
	userRepo := NewUserRepo(testDB)
	gameRepo := NewGameRepo(testDB)
	secretRepo := NewSecretRepo(testDB)

	creator := createTestUser(t, userRepo, "secret-c")
	g := createTestGame(t, gameRepo, "Secret Test", creator.ID)

	if err := secretRepo.SaveSecret(context.Background(), g.ID, 0, "secret-a"); err != nil {
		t.Fatalf("save secret 0: %v", err)
	}
	if err := secretRepo.SaveSecret(context.Background(), g.ID, 1, "secret-b"); err != nil {
		t.Fatalf("save secret 1: %v", err)
	}

	secrets, err := secretRepo.LoadSecrets(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("load secrets: %v", err)
	}
	if len(secrets) != 2 {
		t.Fatalf("expected 2 secrets, got %d", len(secrets))
	}
	if secrets[0] != "secret-a" || secrets[1] != "secret-b" {
		t.Fatalf("unexpected secrets: %v", secrets)
	}
}

func TestSecretSaveIsWriteOnce(t *testing.T) {
	setup(t)
	userRepo := NewUserRepo(testDB)
	gameRepo := NewGameRepo(testDB)
	secretRepo := NewSecretRepo(testDB)

	creator := createTestUser(t, userRepo, "secret-wo")
	g := createTestGame(t, gameRepo, "Write Once", creator.ID)

	secretRepo.SaveSecret(context.Background(), g.ID, 0, "original")
	if err := secretRepo.SaveSecret(context.Background(), g.ID, 0, "replacement"); err != nil {
		t.Fatalf("second save should not error: %v", err)
	}

	secrets, _ := secretRepo.LoadSecrets(context.Background(), g.ID)
	if secrets[0] != "original" {
		t.Fatalf("expected original secret kept, got %s", secrets[0])
	}
}
