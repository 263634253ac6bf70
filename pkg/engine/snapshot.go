package engine

import (
	"encoding/json"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

// MarshalText renders the secret as a uuid string.
func (s PlayerSecret) MarshalText() ([]byte, error) {
	return uuid.UUID(s).MarshalText()
}

// UnmarshalText parses the uuid string form of a secret.
func (s *PlayerSecret) UnmarshalText(b []byte) error {
	var u uuid.UUID
	if err := u.UnmarshalText(b); err != nil {
		return err
	}
	*s = PlayerSecret(u)
	return nil
}

// MapSnapshot is the serializable form of map state. Indices are not
// stored; they rebuild from the tiles.
type MapSnapshot struct {
	Dims       Dims   `json:"dims"`
	Tiles      []Tile `json:"tiles"` // x-major
	NextUnitID UnitID `json:"nextUnitId"`
	NextCityID CityID `json:"nextCityId"`
}

// ObsSnapshot is one player's serialized observations, x-major.
type ObsSnapshot struct {
	Player      PlayerNum `json:"player"`
	Obs         []Obs     `json:"obs"`
	NumObserved uint32    `json:"numObserved"`
}

// GameSnapshot is the serializable form of a whole game, suitable for
// storage as an opaque blob. The combat rng and the namers are not part
// of the snapshot; RestoreGame takes fresh ones.
type GameSnapshot struct {
	Map           MapSnapshot    `json:"map"`
	Observations  []ObsSnapshot  `json:"observations"`
	NumPlayers    PlayerNum      `json:"numPlayers"`
	Wrapping      Wrap2d         `json:"wrapping"`
	FogOfWar      bool           `json:"fogOfWar"`
	Turn          TurnNum        `json:"turn"`
	Phase         TurnPhase      `json:"phase"`
	CurrentPlayer PlayerNum      `json:"currentPlayer"`
	Secrets       []PlayerSecret `json:"secrets"`
}

// Snapshot captures the game's full state.
func (g *Game) Snapshot() *GameSnapshot {
	snap := &GameSnapshot{
		NumPlayers:    g.numPlayers,
		Wrapping:      g.wrapping,
		FogOfWar:      g.fogOfWar,
		Turn:          g.turn,
		Phase:         g.phase,
		CurrentPlayer: g.currentPlayer,
		Secrets:       append([]PlayerSecret(nil), g.secrets...),
	}
	snap.Map.Dims = g.mapData.Dims()
	snap.Map.NextUnitID = g.mapData.nextUnitID
	snap.Map.NextCityID = g.mapData.nextCityID
	g.mapData.tiles.Iter(func(_ Location, tile Tile) {
		snap.Map.Tiles = append(snap.Map.Tiles, tile.Clone())
	})
	for p := PlayerNum(0); p < g.numPlayers; p++ {
		tracker := g.playerObs.Tracker(p)
		obsSnap := ObsSnapshot{Player: p, NumObserved: tracker.NumObserved()}
		tracker.Iter(func(_ Location, obs Obs) {
			obsSnap.Obs = append(obsSnap.Obs, obs)
		})
		snap.Observations = append(snap.Observations, obsSnap)
	}
	return snap
}

// MarshalGame serializes the game to a JSON blob.
func MarshalGame(g *Game) ([]byte, error) {
	return json.Marshal(g.Snapshot())
}

// RestoreGame rebuilds a game from a snapshot. The rng and namers are
// supplied fresh since they are not serialized.
func RestoreGame(snap *GameSnapshot, rng *rand.Rand, unitNamer, cityNamer Namer) (*Game, error) {
	dims := snap.Map.Dims
	if uint32(len(snap.Map.Tiles)) != dims.Area() {
		return nil, fmt.Errorf("snapshot: %d tiles for dims %s", len(snap.Map.Tiles), dims)
	}
	m := NewMapData(dims, func(Location) Terrain { return Water })
	m.nextUnitID = snap.Map.NextUnitID
	m.nextCityID = snap.Map.NextCityID
	i := 0
	for x := uint16(0); x < dims.Width; x++ {
		for y := uint16(0); y < dims.Height; y++ {
			loc := Location{x, y}
			tile := snap.Map.Tiles[i].Clone()
			tile.Loc = loc
			i++
			m.tiles.Replace(loc, tile)
			if tile.Unit != nil {
				m.unitLocByID[tile.Unit.ID] = loc
				if tile.Unit.Carrying != nil {
					for _, p := range tile.Unit.Carrying.Carried {
						m.unitCarrierByID[p.ID] = tile.Unit.ID
					}
				}
			}
			if tile.City != nil {
				m.cityLocByID[tile.City.ID] = loc
			}
		}
	}

	g := NewGame(m, snap.NumPlayers, snap.FogOfWar, snap.Wrapping, rng, unitNamer, cityNamer)
	g.turn = snap.Turn
	g.phase = snap.Phase
	g.currentPlayer = snap.CurrentPlayer
	g.secrets = append([]PlayerSecret(nil), snap.Secrets...)
	for i, s := range g.secrets {
		g.playerBySecret[s] = PlayerNum(i)
	}
	for _, obsSnap := range snap.Observations {
		tracker := g.playerObs.Tracker(obsSnap.Player)
		if tracker == nil {
			return nil, fmt.Errorf("snapshot: observations for unknown player %d", obsSnap.Player)
		}
		if uint32(len(obsSnap.Obs)) != dims.Area() {
			return nil, fmt.Errorf("snapshot: %d observations for dims %s", len(obsSnap.Obs), dims)
		}
		j := 0
		for x := uint16(0); x < dims.Width; x++ {
			for y := uint16(0); y < dims.Height; y++ {
				tracker.observations.Replace(Location{x, y}, obsSnap.Obs[j])
				j++
			}
		}
		tracker.numObserved = obsSnap.NumObserved
	}
	return g, nil
}

// UnmarshalGame deserializes a game blob.
func UnmarshalGame(blob []byte, rng *rand.Rand, unitNamer, cityNamer Namer) (*Game, error) {
	var snap GameSnapshot
	if err := json.Unmarshal(blob, &snap); err != nil {
		return nil, fmt.Errorf("game blob: %w", err)
	}
	return RestoreGame(&snap, rng, unitNamer, cityNamer)
}
