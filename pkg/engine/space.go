// Package engine implements a deterministic turn-based strategy engine:
// a toroidal tile map with units and cities, per-player fog of war,
// shortest-path movement with combat, and a phase-gated turn machine.
package engine

import "fmt"

// Dims is the width and height of a rectangular map.
type Dims struct {
	Width  uint16
	Height uint16
}

// Area returns the number of locations the dims contain.
func (d Dims) Area() uint32 {
	return uint32(d.Width) * uint32(d.Height)
}

// Contain reports whether loc lies inside the dims.
func (d Dims) Contain(loc Location) bool {
	return loc.X < d.Width && loc.Y < d.Height
}

// Locations returns every location in the dims in x-major order.
func (d Dims) Locations() []Location {
	locs := make([]Location, 0, d.Area())
	for x := uint16(0); x < d.Width; x++ {
		for y := uint16(0); y < d.Height; y++ {
			locs = append(locs, Location{x, y})
		}
	}
	return locs
}

func (d Dims) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

// Location is an absolute map coordinate.
type Location struct {
	X uint16
	Y uint16
}

func (l Location) String() string {
	return fmt.Sprintf("(%d,%d)", l.X, l.Y)
}

// ManhattanDistance returns the grid distance to other, ignoring wrapping.
func (l Location) ManhattanDistance(other Location) uint32 {
	dx := int32(l.X) - int32(other.X)
	if dx < 0 {
		dx = -dx
	}
	dy := int32(l.Y) - int32(other.Y)
	if dy < 0 {
		dy = -dy
	}
	return uint32(dx + dy)
}

// Vec2d is a signed coordinate offset.
type Vec2d struct {
	X int32
	Y int32
}

func (v Vec2d) String() string {
	return fmt.Sprintf("<%d,%d>", v.X, v.Y)
}

// Direction is one of the eight compass directions.
type Direction uint8

const (
	Up Direction = iota
	Down
	Left
	Right
	UpLeft
	UpRight
	DownLeft
	DownRight
)

// Vec returns the unit offset for the direction. Up decreases y.
func (d Direction) Vec() Vec2d {
	switch d {
	case Up:
		return Vec2d{0, -1}
	case Down:
		return Vec2d{0, 1}
	case Left:
		return Vec2d{-1, 0}
	case Right:
		return Vec2d{1, 0}
	case UpLeft:
		return Vec2d{-1, -1}
	case UpRight:
		return Vec2d{1, -1}
	case DownLeft:
		return Vec2d{-1, 1}
	case DownRight:
		return Vec2d{1, 1}
	default:
		return Vec2d{}
	}
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	case UpLeft:
		return "up-left"
	case UpRight:
		return "up-right"
	case DownLeft:
		return "down-left"
	case DownRight:
		return "down-right"
	default:
		return "unknown"
	}
}

// Neighbor offset sets used for adjacency and pathfinding.
var (
	RelativeNeighbors = []Vec2d{
		{-1, -1}, {-1, 0}, {-1, 1},
		{0, -1}, {0, 1},
		{1, -1}, {1, 0}, {1, 1},
	}
	CardinalNeighbors = []Vec2d{{0, -1}, {-1, 0}, {1, 0}, {0, 1}}
	DiagonalNeighbors = []Vec2d{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}}
)

// Wrap is the wrapping behavior of a single axis.
type Wrap uint8

const (
	Wrapping Wrap = iota
	NonWrapping
)

func (w Wrap) String() string {
	if w == Wrapping {
		return "wrapping"
	}
	return "non-wrapping"
}

// WrappedAdd adds inc to coord on an axis of extent dim. On a wrapping
// axis the result is reduced into [0, dim) by full modular arithmetic.
// On a non-wrapping axis the second return is false when the sum falls
// outside the axis.
func (w Wrap) WrappedAdd(dim uint16, coord uint16, inc int32) (uint16, bool) {
	sum := int64(coord) + int64(inc)
	if w == Wrapping {
		m := int64(dim)
		sum %= m
		if sum < 0 {
			sum += m
		}
		return uint16(sum), true
	}
	if sum < 0 || sum >= int64(dim) {
		return 0, false
	}
	return uint16(sum), true
}

// Wrap2d is the wrapping behavior of both map axes.
type Wrap2d struct {
	Horiz Wrap
	Vert  Wrap
}

var (
	WrapBoth    = Wrap2d{Wrapping, Wrapping}
	WrapHoriz   = Wrap2d{Wrapping, NonWrapping}
	WrapVert    = Wrap2d{NonWrapping, Wrapping}
	WrapNeither = Wrap2d{NonWrapping, NonWrapping}
)

func (w Wrap2d) String() string {
	return fmt.Sprintf("horiz %s, vert %s", w.Horiz, w.Vert)
}

// WrappedAdd shifts loc by vec inside dims. The second return is false
// when either axis fails to resolve, in which case the location is
// unreachable by that offset.
func (w Wrap2d) WrappedAdd(dims Dims, loc Location, vec Vec2d) (Location, bool) {
	x, ok := w.Horiz.WrappedAdd(dims.Width, loc.X, vec.X)
	if !ok {
		return Location{}, false
	}
	y, ok := w.Vert.WrappedAdd(dims.Height, loc.Y, vec.Y)
	if !ok {
		return Location{}, false
	}
	return Location{x, y}, true
}
