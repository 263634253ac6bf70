package engine

import (
	"math/rand"

	"github.com/google/uuid"
)

// PlayerSecret is a capability token. Whoever holds a player's secret
// may act for that player; nothing else identifies the caller.
type PlayerSecret uuid.UUID

// NewPlayerSecret mints a fresh secret.
func NewPlayerSecret() PlayerSecret {
	return PlayerSecret(uuid.New())
}

func (s PlayerSecret) String() string {
	return uuid.UUID(s).String()
}

// ParsePlayerSecret parses the string form of a secret.
func ParsePlayerSecret(s string) (PlayerSecret, error) {
	id, err := uuid.Parse(s)
	return PlayerSecret(id), err
}

// TurnPhase is where the current player is within their turn.
type TurnPhase uint8

const (
	// PhasePre precedes BeginTurn: production and refresh are pending.
	PhasePre TurnPhase = iota
	// PhaseMain is when the player issues moves and orders.
	PhaseMain
)

func (p TurnPhase) String() string {
	if p == PhaseMain {
		return "main"
	}
	return "pre"
}

// CitySight is the observation radius of every city.
const CitySight uint16 = 3

// ProductionOutcome reports what one producing city did at turn start.
type ProductionOutcome struct {
	CityID CityID
	Loc    Location
	Type   UnitType

	// UnitID is set when a unit was produced. When Blocked, the city
	// finished paying but its tile already holds a unit; production
	// retries next turn.
	UnitID  UnitID
	Blocked bool
}

// OrdersResult is the outcome or failure of one unit's standing orders.
type OrdersResult struct {
	Outcome *OrdersOutcome
	Err     error
}

// TurnStart is everything that happened when a player's turn began.
type TurnStart struct {
	Turn               TurnNum
	CurrentPlayer      PlayerNum
	ProductionOutcomes []ProductionOutcome
	OrdersResults      []OrdersResult
	Observations       []LocatedObs
}

// Game is the full state of one match and the only mutator of it. A
// Game is not safe for concurrent use; callers serialize access.
type Game struct {
	mapData    *MapData
	playerObs  *PlayerObsTracker
	numPlayers PlayerNum
	wrapping   Wrap2d
	fogOfWar   bool

	turn          TurnNum
	phase         TurnPhase
	currentPlayer PlayerNum

	secrets        []PlayerSecret
	playerBySecret map[PlayerSecret]PlayerNum

	rng       *rand.Rand
	unitNamer Namer
	cityNamer Namer
}

// NewGame wraps map state in a fresh game for numPlayers players.
// The rng drives combat and must be seeded by the caller; equal seeds
// and equal action sequences replay identically.
func NewGame(m *MapData, numPlayers PlayerNum, fogOfWar bool, wrapping Wrap2d, rng *rand.Rand, unitNamer, cityNamer Namer) *Game {
	return &Game{
		mapData:        m,
		playerObs:      NewPlayerObsTracker(numPlayers, m.Dims()),
		numPlayers:     numPlayers,
		wrapping:       wrapping,
		fogOfWar:       fogOfWar,
		phase:          PhasePre,
		playerBySecret: map[PlayerSecret]PlayerNum{},
		rng:            rng,
		unitNamer:      unitNamer,
		cityNamer:      cityNamer,
	}
}

// RegisterPlayer claims the next free player slot and returns its
// secret. Fails once every slot is taken.
func (g *Game) RegisterPlayer() (PlayerSecret, error) {
	if PlayerNum(len(g.secrets)) >= g.numPlayers {
		return PlayerSecret{}, GameError{Kind: ErrNoPlayerSlotsAvailable}
	}
	secret := NewPlayerSecret()
	g.playerBySecret[secret] = PlayerNum(len(g.secrets))
	g.secrets = append(g.secrets, secret)
	return secret, nil
}

// Clone deep-copies the game state. The combat rng is shared with the
// original, so a cloned-and-applied action consumes exactly the flips a
// direct action would.
func (g *Game) Clone() *Game {
	out := &Game{
		mapData:        g.mapData.Clone(),
		playerObs:      g.playerObs.Clone(),
		numPlayers:     g.numPlayers,
		wrapping:       g.wrapping,
		fogOfWar:       g.fogOfWar,
		turn:           g.turn,
		phase:          g.phase,
		currentPlayer:  g.currentPlayer,
		secrets:        append([]PlayerSecret(nil), g.secrets...),
		playerBySecret: make(map[PlayerSecret]PlayerNum, len(g.playerBySecret)),
		rng:            g.rng,
		unitNamer:      g.unitNamer.Clone(),
		cityNamer:      g.cityNamer.Clone(),
	}
	for s, p := range g.playerBySecret {
		out.playerBySecret[s] = p
	}
	return out
}

// Turn returns the current turn number.
func (g *Game) Turn() TurnNum { return g.turn }

// CurrentPlayer returns whose turn it is.
func (g *Game) CurrentPlayer() PlayerNum { return g.currentPlayer }

// Phase returns the current player's turn phase.
func (g *Game) Phase() TurnPhase { return g.phase }

// NumPlayers returns the number of player slots.
func (g *Game) NumPlayers() PlayerNum { return g.numPlayers }

// Dims returns the map dimensions.
func (g *Game) Dims() Dims { return g.mapData.Dims() }

// Wrapping returns the map's wrapping behavior.
func (g *Game) Wrapping() Wrap2d { return g.wrapping }

// FogOfWar reports whether player views are fog-limited.
func (g *Game) FogOfWar() bool { return g.fogOfWar }

// PlayerWithSecret resolves a secret to its player.
func (g *Game) PlayerWithSecret(secret PlayerSecret) (PlayerNum, error) {
	player, ok := g.playerBySecret[secret]
	if !ok {
		return 0, GameError{Kind: ErrNoPlayerIdentifiedBySecret}
	}
	return player, nil
}

// validateIsPlayerTurn resolves the secret and requires it to be that
// player's turn.
func (g *Game) validateIsPlayerTurn(secret PlayerSecret) (PlayerNum, error) {
	player, err := g.PlayerWithSecret(secret)
	if err != nil {
		return 0, err
	}
	if player != g.currentPlayer {
		return 0, GameError{Kind: ErrNotPlayersTurn, Player: player}
	}
	return player, nil
}

func (g *Game) validateIsPlayerTurnPhase(secret PlayerSecret, phase TurnPhase) (PlayerNum, error) {
	player, err := g.validateIsPlayerTurn(secret)
	if err != nil {
		return 0, err
	}
	if g.phase != phase {
		return 0, GameError{Kind: ErrWrongPhase, Player: player}
	}
	return player, nil
}

// BeginTurn runs the current player's turn start: production ticks,
// moves and fuel refresh, observations update, and standing orders
// execute. When clearProductionAfter is set, a city that produced a
// unit stops producing instead of repeating. Requires the pre phase.
func (g *Game) BeginTurn(secret PlayerSecret, clearProductionAfter bool) (*TurnStart, error) {
	player, err := g.validateIsPlayerTurnPhase(secret, PhasePre)
	if err != nil {
		return nil, err
	}
	start := &TurnStart{Turn: g.turn, CurrentPlayer: player}

	start.ProductionOutcomes = g.produceUnits(player, clearProductionAfter)

	for _, u := range g.mapData.PlayerUnitsDeep(player) {
		u.RefreshMovesRemaining()
		if u.Orders != nil && u.Orders.Kind == OrdersSkip {
			u.Orders = nil
		}
	}

	start.Observations = g.updateObservations(player)
	g.phase = PhaseMain
	start.OrdersResults = g.followPendingOrders(player)
	return start, nil
}

// EndTurn ends the current player's turn, failing while units still
// await orders or cities await production. Requires the main phase.
func (g *Game) EndTurn(secret PlayerSecret) error {
	player, err := g.validateIsPlayerTurnPhase(secret, PhaseMain)
	if err != nil {
		return err
	}
	if !g.currentTurnIsDone() {
		return GameError{Kind: ErrTurnEndRequirementsNotMet, Player: player}
	}
	g.forceEndTurn(player)
	return nil
}

// ForceEndTurn ends the current player's turn regardless of outstanding
// requests.
func (g *Game) ForceEndTurn(secret PlayerSecret) error {
	player, err := g.validateIsPlayerTurnPhase(secret, PhaseMain)
	if err != nil {
		return err
	}
	g.forceEndTurn(player)
	return nil
}

func (g *Game) forceEndTurn(player PlayerNum) {
	g.playerObs.Tracker(player).Archive()
	g.currentPlayer = (g.currentPlayer + 1) % g.numPlayers
	if g.currentPlayer == 0 {
		g.turn++
	}
	g.phase = PhasePre
}

// EndThenBeginTurn ends the current player's turn and begins the next
// player's in one call.
func (g *Game) EndThenBeginTurn(secret, nextSecret PlayerSecret, clearProductionAfter bool) (*TurnStart, error) {
	if err := g.EndTurn(secret); err != nil {
		return nil, err
	}
	return g.BeginTurn(nextSecret, clearProductionAfter)
}

// ForceEndThenBeginTurn is EndThenBeginTurn without the turn-done check.
func (g *Game) ForceEndThenBeginTurn(secret, nextSecret PlayerSecret, clearProductionAfter bool) (*TurnStart, error) {
	if err := g.ForceEndTurn(secret); err != nil {
		return nil, err
	}
	return g.BeginTurn(nextSecret, clearProductionAfter)
}

// UnitOrdersRequests returns the player's units that still have moves
// and no standing orders this turn.
func (g *Game) UnitOrdersRequests(player PlayerNum) []UnitID {
	var ids []UnitID
	for _, u := range g.mapData.PlayerUnits(player) {
		if u.MovesRemaining > 0 && u.Orders == nil {
			ids = append(ids, u.ID)
		}
	}
	return ids
}

// ProductionSetRequests returns the player's cities that need a
// production target.
func (g *Game) ProductionSetRequests(player PlayerNum) []CityID {
	var ids []CityID
	for _, c := range g.mapData.PlayerCities(player) {
		if c.Production == nil && !c.IgnoreClearedProduction {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// TurnIsDone reports whether the player could end the given turn.
func (g *Game) TurnIsDone(player PlayerNum, turn TurnNum) bool {
	if g.currentPlayer != player || g.turn != turn || g.phase != PhaseMain {
		return false
	}
	return g.currentTurnIsDone()
}

// CurrentTurnIsDone reports whether the current player could end their
// turn right now.
func (g *Game) CurrentTurnIsDone() bool {
	return g.phase == PhaseMain && g.currentTurnIsDone()
}

func (g *Game) currentTurnIsDone() bool {
	return len(g.UnitOrdersRequests(g.currentPlayer)) == 0 &&
		len(g.ProductionSetRequests(g.currentPlayer)) == 0
}

// Victor returns the winner: the single player left standing among
// cities and city-taking units. The second return is false while the
// game is undecided.
func (g *Game) Victor() (PlayerNum, bool) {
	present := map[PlayerNum]bool{}
	for _, c := range g.mapData.Cities() {
		if p, ok := c.Alignment.Player(); ok {
			present[p] = true
		}
	}
	for p := PlayerNum(0); p < g.numPlayers; p++ {
		for _, u := range g.mapData.PlayerUnitsDeep(p) {
			if u.Type.CanOccupyCities() {
				present[p] = true
				break
			}
		}
	}
	if len(present) != 1 {
		return 0, false
	}
	for p := range present {
		return p, true
	}
	return 0, false
}

func (g *Game) produceUnits(player PlayerNum, clearProductionAfter bool) []ProductionOutcome {
	var outcomes []ProductionOutcome
	for _, c := range g.mapData.PlayerCities(player) {
		if c.Production == nil {
			continue
		}
		t := *c.Production
		c.ProductionProgress++
		if c.ProductionProgress < t.Cost() {
			continue
		}
		outcome := ProductionOutcome{CityID: c.ID, Loc: c.Loc, Type: t}
		if g.mapData.UnitByLoc(c.Loc) != nil {
			outcome.Blocked = true
			c.ProductionProgress = t.Cost()
			outcomes = append(outcomes, outcome)
			continue
		}
		id, err := g.mapData.NewUnit(c.Loc, t, c.Alignment, g.unitNamer.Name())
		if err != nil {
			outcome.Blocked = true
			outcomes = append(outcomes, outcome)
			continue
		}
		outcome.UnitID = id
		c.ProductionProgress = 0
		if clearProductionAfter {
			c.ClearProduction(true)
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

func (g *Game) updateObservations(player PlayerNum) []LocatedObs {
	tracker := g.playerObs.Tracker(player)
	var out []LocatedObs
	for _, c := range g.mapData.PlayerCities(player) {
		out = append(out, observeFrom(c.Loc, CitySight, g.mapData, g.turn, g.wrapping, tracker)...)
	}
	for _, u := range g.mapData.PlayerUnits(player) {
		out = append(out, observeFrom(u.Loc, u.Sight(), g.mapData, g.turn, g.wrapping, tracker)...)
	}
	return out
}

// SetProduction assigns production at the player's city at loc.
func (g *Game) SetProduction(secret PlayerSecret, loc Location, t UnitType) error {
	player, err := g.validateIsPlayerTurn(secret)
	if err != nil {
		return err
	}
	city := g.mapData.CityByLoc(loc)
	if city == nil {
		return GameError{Kind: ErrNoCityAtLocation, Loc: loc}
	}
	if !city.Alignment.BelongsTo(player) {
		return GameError{Kind: ErrCityNotControlledByPlayer, CityID: city.ID, Player: player}
	}
	for _, valid := range g.validProductionsAt(loc) {
		if valid == t {
			city.SetProduction(t)
			return nil
		}
	}
	return GameError{Kind: ErrInvalidProduction, CityID: city.ID, Loc: loc}
}

// ClearProduction stops production at the player's city at loc. When
// ignore is set the city stops asking for a new target.
func (g *Game) ClearProduction(secret PlayerSecret, loc Location, ignore bool) error {
	player, err := g.validateIsPlayerTurn(secret)
	if err != nil {
		return err
	}
	city := g.mapData.CityByLoc(loc)
	if city == nil {
		return GameError{Kind: ErrNoCityAtLocation, Loc: loc}
	}
	if !city.Alignment.BelongsTo(player) {
		return GameError{Kind: ErrCityNotControlledByPlayer, CityID: city.ID, Player: player}
	}
	city.ClearProduction(ignore)
	return nil
}

// ValidProductions returns the unit types the city at loc could
// usefully build: types able to leave the city for some adjacent tile.
func (g *Game) ValidProductions(secret PlayerSecret, loc Location) ([]UnitType, error) {
	if _, err := g.PlayerWithSecret(secret); err != nil {
		return nil, err
	}
	return g.validProductionsAt(loc), nil
}

func (g *Game) validProductionsAt(loc Location) []UnitType {
	var out []UnitType
	for _, t := range UnitTypes {
		for _, offset := range RelativeNeighbors {
			neighbor, ok := g.wrapping.WrappedAdd(g.mapData.Dims(), loc, offset)
			if !ok {
				continue
			}
			terrain, ok := g.mapData.Terrain(neighbor)
			if ok && t.CanMoveOnTerrain(terrain) {
				out = append(out, t)
				break
			}
		}
	}
	return out
}

// ActivateUnit wakes the player's unit at loc, clearing its standing
// orders so it asks for orders again.
func (g *Game) ActivateUnit(secret PlayerSecret, loc Location) error {
	player, err := g.validateIsPlayerTurn(secret)
	if err != nil {
		return err
	}
	u := g.mapData.UnitByLoc(loc)
	if u == nil {
		return GameError{Kind: ErrNoUnitAtLocation, Loc: loc}
	}
	if !u.Alignment.BelongsTo(player) {
		return GameError{Kind: ErrUnitNotControlledByPlayer, UnitID: u.ID, Player: player}
	}
	u.Orders = nil
	return nil
}

// DisbandUnitByID removes the player's unit from play, passengers
// included, and returns a snapshot of it.
func (g *Game) DisbandUnitByID(secret PlayerSecret, id UnitID) (Unit, error) {
	player, err := g.validateIsPlayerTurn(secret)
	if err != nil {
		return Unit{}, err
	}
	u := g.mapData.UnitByID(id)
	if u == nil {
		return Unit{}, GameError{Kind: ErrNoSuchUnit, UnitID: id}
	}
	if !u.Alignment.BelongsTo(player) {
		return Unit{}, GameError{Kind: ErrUnitNotControlledByPlayer, UnitID: id, Player: player}
	}
	snapshot := u.Clone()
	g.mapData.DestroyUnitByID(id)
	return snapshot, nil
}
