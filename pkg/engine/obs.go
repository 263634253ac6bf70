package engine

import "fmt"

// TurnNum counts completed rounds of play.
type TurnNum uint32

// Obs is one player's knowledge of a single location: either never
// seen, or a snapshot of the tile as of some turn. Current marks
// observations made since the player's observations were last archived.
type Obs struct {
	Observed bool
	Tile     Tile
	Turn     TurnNum
	Current  bool
}

// UnobservedObs is the zero observation.
var UnobservedObs = Obs{}

func (o Obs) String() string {
	if !o.Observed {
		return "unobserved"
	}
	return fmt.Sprintf("observed turn %d (current=%v)", o.Turn, o.Current)
}

// LocatedObs pairs a fresh observation with the one it replaced.
type LocatedObs struct {
	Loc    Location
	Obs    Obs
	OldObs Obs
}

// PassabilityChanged reports whether the new observation changes the
// location's inclusion under filter, which means any path planned
// through it is stale.
func (lo LocatedObs) PassabilityChanged(filter Filter[Obs]) bool {
	return filter.Include(lo.OldObs) != filter.Include(lo.Obs)
}

// ObsTracker is one player's view of the map.
type ObsTracker struct {
	observations *LocationGrid[Obs]
	numObserved  uint32
}

// NewObsTracker returns a tracker with every location unobserved.
func NewObsTracker(dims Dims) *ObsTracker {
	return &ObsTracker{observations: NewLocationGrid[Obs](dims)}
}

// Dims returns the tracked area. Together with Get this satisfies the
// pathfinding Source over observations.
func (t *ObsTracker) Dims() Dims { return t.observations.Dims() }

// Get returns the observation at loc, UnobservedObs when out of bounds.
func (t *ObsTracker) Get(loc Location) Obs {
	obs, ok := t.observations.Get(loc)
	if !ok {
		return UnobservedObs
	}
	return obs
}

// NumObserved returns how many distinct locations have ever been
// observed.
func (t *ObsTracker) NumObserved() uint32 { return t.numObserved }

// Observe records a snapshot of tile as of turn, marking it current,
// and returns the new observation along with the one it replaced.
func (t *ObsTracker) Observe(tile Tile, turn TurnNum) LocatedObs {
	obs := Obs{Observed: true, Tile: tile.Clone(), Turn: turn, Current: true}
	old, ok := t.observations.Replace(tile.Loc, obs)
	if !ok {
		return LocatedObs{Loc: tile.Loc, Obs: obs}
	}
	if !old.Observed {
		t.numObserved++
	}
	return LocatedObs{Loc: tile.Loc, Obs: obs, OldObs: old}
}

// Archive marks every observation as no longer current. Called when a
// player's turn ends so the next turn's sightings stand out.
func (t *ObsTracker) Archive() {
	t.observations.Iter(func(loc Location, obs Obs) {
		if obs.Current {
			obs.Current = false
			t.observations.Replace(loc, obs)
		}
	})
}

// Iter calls f for every location's observation in x-major order.
func (t *ObsTracker) Iter(f func(Location, Obs)) {
	t.observations.Iter(f)
}

// Clone deep-copies the tracker.
func (t *ObsTracker) Clone() *ObsTracker {
	return &ObsTracker{
		observations: CloneGridWith(t.observations, func(o Obs) Obs {
			if o.Observed {
				o.Tile = o.Tile.Clone()
			}
			return o
		}),
		numObserved: t.numObserved,
	}
}

// PlayerObsTracker holds one tracker per player.
type PlayerObsTracker struct {
	trackers map[PlayerNum]*ObsTracker
}

// NewPlayerObsTracker builds trackers for players 0..numPlayers-1.
func NewPlayerObsTracker(numPlayers PlayerNum, dims Dims) *PlayerObsTracker {
	trackers := make(map[PlayerNum]*ObsTracker, numPlayers)
	for p := PlayerNum(0); p < numPlayers; p++ {
		trackers[p] = NewObsTracker(dims)
	}
	return &PlayerObsTracker{trackers: trackers}
}

// Tracker returns the player's tracker, nil for unknown players.
func (p *PlayerObsTracker) Tracker(player PlayerNum) *ObsTracker {
	return p.trackers[player]
}

// Clone deep-copies every tracker.
func (p *PlayerObsTracker) Clone() *PlayerObsTracker {
	trackers := make(map[PlayerNum]*ObsTracker, len(p.trackers))
	for player, t := range p.trackers {
		trackers[player] = t.Clone()
	}
	return &PlayerObsTracker{trackers: trackers}
}

// visibleCoords returns the offsets within sight of an observer: the
// diamond |dx|+|dy| <= sight.
func visibleCoords(sight uint16) []Vec2d {
	s := int32(sight)
	var offsets []Vec2d
	for dx := -s; dx <= s; dx++ {
		for dy := -s; dy <= s; dy++ {
			abs := dx
			if abs < 0 {
				abs = -abs
			}
			absY := dy
			if absY < 0 {
				absY = -absY
			}
			if abs+absY <= s {
				offsets = append(offsets, Vec2d{dx, dy})
			}
		}
	}
	return offsets
}

// observeFrom records everything visible from loc at the given sight
// into tracker and returns the observations made.
func observeFrom(loc Location, sight uint16, m *MapData, turn TurnNum, wrapping Wrap2d, tracker *ObsTracker) []LocatedObs {
	var out []LocatedObs
	for _, offset := range visibleCoords(sight) {
		target, ok := wrapping.WrappedAdd(m.Dims(), loc, offset)
		if !ok {
			continue
		}
		tile := m.Get(target)
		if tile == nil {
			continue
		}
		out = append(out, tracker.Observe(*tile, turn))
	}
	return out
}
