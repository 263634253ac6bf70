package engine

import "container/heap"

// Source is anything pathfinding can read locations from: the real map
// yields tiles, an observation tracker yields what a player knows.
type Source[T any] interface {
	Get(loc Location) T
	Dims() Dims
}

// Filter decides which locations a search may enter.
type Filter[T any] interface {
	Include(item T) bool
}

// UnitMovementFilter admits the tiles a unit could legally end a step
// on.
type UnitMovementFilter struct {
	Unit *Unit
}

func (f UnitMovementFilter) Include(tile *Tile) bool {
	return tile != nil && f.Unit.CanMoveOnTile(tile)
}

// TerrainFilter admits tiles of a single terrain.
type TerrainFilter struct {
	Terrain Terrain
}

func (f TerrainFilter) Include(tile *Tile) bool {
	return tile != nil && tile.Terrain == f.Terrain
}

// UnitTypeFilter admits tiles whose terrain the unit type can travel.
type UnitTypeFilter struct {
	Type UnitType
}

func (f UnitTypeFilter) Include(tile *Tile) bool {
	return tile != nil && f.Type.CanMoveOnTerrain(tile.Terrain)
}

// NoUnitsFilter excludes tiles holding any unit.
type NoUnitsFilter struct{}

func (NoUnitsFilter) Include(tile *Tile) bool {
	return tile != nil && tile.Unit == nil
}

// NoCitiesButOursFilter excludes cities not aligned with us.
type NoCitiesButOursFilter struct {
	Alignment Alignment
}

func (f NoCitiesButOursFilter) Include(tile *Tile) bool {
	if tile == nil {
		return false
	}
	return tile.City == nil || tile.City.Alignment == f.Alignment
}

// AndFilter includes only what every inner filter includes.
type AndFilter[T any] struct {
	Filters []Filter[T]
}

func And[T any](filters ...Filter[T]) AndFilter[T] {
	return AndFilter[T]{Filters: filters}
}

func (f AndFilter[T]) Include(item T) bool {
	for _, inner := range f.Filters {
		if !inner.Include(item) {
			return false
		}
	}
	return true
}

// OrFilter includes what any inner filter includes.
type OrFilter[T any] struct {
	Filters []Filter[T]
}

func Or[T any](filters ...Filter[T]) OrFilter[T] {
	return OrFilter[T]{Filters: filters}
}

func (f OrFilter[T]) Include(item T) bool {
	for _, inner := range f.Filters {
		if inner.Include(item) {
			return true
		}
	}
	return false
}

// ObservedFilter admits only locations the player has seen.
type ObservedFilter struct{}

func (ObservedFilter) Include(obs Obs) bool { return obs.Observed }

// OptimisticObsFilter lifts a tile filter to observations, treating the
// unknown as passable. This is what lets units plan into the fog.
type OptimisticObsFilter struct {
	Inner Filter[*Tile]
}

func (f OptimisticObsFilter) Include(obs Obs) bool {
	if !obs.Observed {
		return true
	}
	tile := obs.Tile
	return f.Inner.Include(&tile)
}

// PessimisticObsFilter lifts a tile filter to observations, treating
// the unknown as impassable.
type PessimisticObsFilter struct {
	Inner Filter[*Tile]
}

func (f PessimisticObsFilter) Include(obs Obs) bool {
	if !obs.Observed {
		return false
	}
	tile := obs.Tile
	return f.Inner.Include(&tile)
}

// standardMovementFilter is the filter used when a unit plans travel
// that must not start fights: its own movement rules, no units in the
// way, no cities but ours.
func standardMovementFilter(unit *Unit) AndFilter[*Tile] {
	return And[*Tile](
		UnitMovementFilter{Unit: unit},
		NoUnitsFilter{},
		NoCitiesButOursFilter{Alignment: unit.Alignment},
	)
}

const infDist = ^uint32(0)

type pathNode struct {
	dist    uint32
	prev    Location
	hasPrev bool
	reached bool
}

// ShortestPaths is the result of a single-source search: distances and
// predecessor links back to the start.
type ShortestPaths struct {
	start Location
	nodes *LocationGrid[pathNode]
}

// Start returns the search origin.
func (s *ShortestPaths) Start() Location { return s.start }

// Dist returns the step count from the start to loc. The second return
// is false when loc was not reached.
func (s *ShortestPaths) Dist(loc Location) (uint32, bool) {
	n, ok := s.nodes.Get(loc)
	if !ok || !n.reached {
		return 0, false
	}
	return n.dist, true
}

// Prev returns the predecessor of loc on its shortest path.
func (s *ShortestPaths) Prev(loc Location) (Location, bool) {
	n, ok := s.nodes.Get(loc)
	if !ok || !n.hasPrev {
		return Location{}, false
	}
	return n.prev, true
}

// PathTo returns the locations from the start to dest inclusive, nil
// when dest was not reached.
func (s *ShortestPaths) PathTo(dest Location) []Location {
	n, ok := s.nodes.Get(dest)
	if !ok || !n.reached {
		return nil
	}
	var rev []Location
	loc := dest
	for {
		rev = append(rev, loc)
		node, _ := s.nodes.Get(loc)
		if !node.hasPrev {
			break
		}
		loc = node.prev
	}
	// reverse in place
	for i, j := 0, len(rev)-1; i < j; i, j = i+1, j-1 {
		rev[i], rev[j] = rev[j], rev[i]
	}
	return rev
}

type searchItem struct {
	loc  Location
	dist uint32
}

type searchQueue []searchItem

func (q searchQueue) Len() int { return len(q) }
func (q searchQueue) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	if q[i].loc.X != q[j].loc.X {
		return q[i].loc.X < q[j].loc.X
	}
	return q[i].loc.Y < q[j].loc.Y
}
func (q searchQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *searchQueue) Push(x any)   { *q = append(*q, x.(searchItem)) }
func (q *searchQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// ShortestPathsFrom runs a uniform-cost search from start over the
// 8-neighborhood, entering only locations the filter includes. The
// start itself is always reachable. maxDist bounds the search radius.
func ShortestPathsFrom[T any](src Source[T], start Location, filter Filter[T], wrapping Wrap2d, maxDist uint32) *ShortestPaths {
	dims := src.Dims()
	result := &ShortestPaths{start: start, nodes: NewLocationGrid[pathNode](dims)}
	startNode := result.nodes.GetMut(start)
	if startNode == nil {
		return result
	}
	startNode.reached = true

	q := &searchQueue{{loc: start, dist: 0}}
	heap.Init(q)
	for q.Len() > 0 {
		item := heap.Pop(q).(searchItem)
		node := result.nodes.GetMut(item.loc)
		if item.dist > node.dist {
			continue
		}
		if item.dist >= maxDist {
			continue
		}
		for _, offset := range RelativeNeighbors {
			neighbor, ok := wrapping.WrappedAdd(dims, item.loc, offset)
			if !ok {
				continue
			}
			if !filter.Include(src.Get(neighbor)) {
				continue
			}
			next := result.nodes.GetMut(neighbor)
			newDist := item.dist + 1
			if next.reached && next.dist <= newDist {
				continue
			}
			next.dist = newDist
			next.prev = item.loc
			next.hasPrev = true
			next.reached = true
			heap.Push(q, searchItem{loc: neighbor, dist: newDist})
		}
	}
	return result
}

// NearestAdjacentUnobserved finds the closest location the unit can
// reach without fighting that still borders unexplored territory. The
// search runs over the player's observations, treating the unknown as
// passable. The second return is false when no frontier is reachable.
func NearestAdjacentUnobserved(tracker *ObsTracker, start Location, unit *Unit, wrapping Wrap2d) (Location, bool) {
	dims := tracker.Dims()
	filter := OptimisticObsFilter{Inner: standardMovementFilter(unit)}

	visited := NewLocationGrid[bool](dims)
	visited.Replace(start, true)
	q := &searchQueue{{loc: start, dist: 0}}
	heap.Init(q)
	for q.Len() > 0 {
		item := heap.Pop(q).(searchItem)
		for _, offset := range RelativeNeighbors {
			neighbor, ok := wrapping.WrappedAdd(dims, item.loc, offset)
			if !ok {
				continue
			}
			if !tracker.Get(neighbor).Observed {
				return item.loc, true
			}
			if seen, _ := visited.Get(neighbor); seen {
				continue
			}
			if !filter.Include(tracker.Get(neighbor)) {
				continue
			}
			visited.Replace(neighbor, true)
			heap.Push(q, searchItem{loc: neighbor, dist: item.dist + 1})
		}
	}
	return Location{}, false
}
