package engine

// LocationGrid is a dense store of one value per map location.
type LocationGrid[T any] struct {
	dims Dims
	// column-major: cells[x][y]
	cells [][]T
}

// NewLocationGrid builds a grid of zero values.
func NewLocationGrid[T any](dims Dims) *LocationGrid[T] {
	cells := make([][]T, dims.Width)
	for x := range cells {
		cells[x] = make([]T, dims.Height)
	}
	return &LocationGrid[T]{dims: dims, cells: cells}
}

// NewLocationGridInit builds a grid with each cell initialized by f.
func NewLocationGridInit[T any](dims Dims, f func(Location) T) *LocationGrid[T] {
	g := NewLocationGrid[T](dims)
	for x := uint16(0); x < dims.Width; x++ {
		for y := uint16(0); y < dims.Height; y++ {
			g.cells[x][y] = f(Location{x, y})
		}
	}
	return g
}

// Dims returns the grid's dimensions.
func (g *LocationGrid[T]) Dims() Dims {
	return g.dims
}

// Get returns the value at loc. The second return is false when loc is
// out of bounds.
func (g *LocationGrid[T]) Get(loc Location) (T, bool) {
	if !g.dims.Contain(loc) {
		var zero T
		return zero, false
	}
	return g.cells[loc.X][loc.Y], true
}

// GetMut returns a pointer to the value at loc, or nil when loc is out
// of bounds.
func (g *LocationGrid[T]) GetMut(loc Location) *T {
	if !g.dims.Contain(loc) {
		return nil
	}
	return &g.cells[loc.X][loc.Y]
}

// Replace stores value at loc and returns the previous value. The
// second return is false when loc is out of bounds and nothing was
// stored.
func (g *LocationGrid[T]) Replace(loc Location, value T) (T, bool) {
	if !g.dims.Contain(loc) {
		var zero T
		return zero, false
	}
	old := g.cells[loc.X][loc.Y]
	g.cells[loc.X][loc.Y] = value
	return old, true
}

// Iter calls f for every cell in x-major order.
func (g *LocationGrid[T]) Iter(f func(Location, T)) {
	for x := uint16(0); x < g.dims.Width; x++ {
		for y := uint16(0); y < g.dims.Height; y++ {
			f(Location{x, y}, g.cells[x][y])
		}
	}
}

// Clone returns a shallow copy of the grid: cells are copied by value.
func (g *LocationGrid[T]) Clone() *LocationGrid[T] {
	out := NewLocationGrid[T](g.dims)
	for x := range g.cells {
		copy(out.cells[x], g.cells[x])
	}
	return out
}

// CloneGridWith returns a deep copy using f to copy each cell.
func CloneGridWith[T any](g *LocationGrid[T], f func(T) T) *LocationGrid[T] {
	out := NewLocationGrid[T](g.dims)
	for x := range g.cells {
		for y := range g.cells[x] {
			out.cells[x][y] = f(g.cells[x][y])
		}
	}
	return out
}
