// Package grid rasterizes room walls onto the pen grid and flood fills each
// room's interior with its id. The filled grid answers "which room owns this
// cell" for every later pass.
package grid

import (
	"github.com/chazu/penmap/pkg/diag"
	"github.com/chazu/penmap/pkg/level"
)

// Cell is the content of one grid square: a sentinel or a room id.
type Cell int

const (
	Empty Cell = -2
	Wall  Cell = -1
)

// Grid is a dense width x height array of cells, indexed [y*width+x].
type Grid struct {
	width, height int
	cells         []Cell
}

// New allocates a grid covering (0,0)..(maxX,maxY) inclusive, every cell
// Empty.
func New(maxX, maxY int) *Grid {
	w, h := maxX+1, maxY+1
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	g := &Grid{width: w, height: h, cells: make([]Cell, w*h)}
	for i := range g.cells {
		g.cells[i] = Empty
	}
	return g
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// InBounds reports whether (x, y) is a cell of the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.width && y < g.height
}

// At returns the cell at (x, y). Out of bounds reads return Empty.
func (g *Grid) At(x, y int) Cell {
	if !g.InBounds(x, y) {
		return Empty
	}
	return g.cells[y*g.width+x]
}

func (g *Grid) set(x, y int, c Cell) {
	g.cells[y*g.width+x] = c
}

// RoomAt returns the room owning (x, y), if the cell has been flooded.
func (g *Grid) RoomAt(x, y int) (level.RoomID, bool) {
	c := g.At(x, y)
	if c < 0 {
		return 0, false
	}
	return level.RoomID(c), true
}

// CellsOf returns the cells labelled id, scanning x outermost then y, which
// is the order floors and ceilings are laid in.
func (g *Grid) CellsOf(id level.RoomID) []level.Point {
	var pts []level.Point
	for x := 0; x < g.width; x++ {
		for y := 0; y < g.height; y++ {
			if g.At(x, y) == Cell(id) {
				pts = append(pts, level.Point{X: x, Y: y})
			}
		}
	}
	return pts
}

// RasterizeWalls marks every cell on the room's walls, endpoints included,
// as Wall.
func (g *Grid) RasterizeWalls(r *level.Room) error {
	for _, w := range r.Walls {
		if !w.AxisAligned() {
			return diag.Roomf(diag.Structural, int(r.ID), "wall %s must be horizontal or vertical", w)
		}
		for _, p := range w.Cells() {
			if g.InBounds(p.X, p.Y) {
				g.set(p.X, p.Y, Wall)
			}
		}
	}
	return nil
}

// FloodFill labels every Empty cell 4-connected to seed with id without
// crossing a Wall cell, and returns the number of cells labelled. A seed
// that is not Empty labels nothing.
func (g *Grid) FloodFill(id level.RoomID, seed level.Point) int {
	if id < 0 || !g.InBounds(seed.X, seed.Y) || g.At(seed.X, seed.Y) != Empty {
		return 0
	}
	label := Cell(id)
	stack := []level.Point{seed}
	g.set(seed.X, seed.Y, label)
	n := 1
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, d := range neighbours {
			q := p.Add(d)
			if !g.InBounds(q.X, q.Y) || g.At(q.X, q.Y) != Empty {
				continue
			}
			g.set(q.X, q.Y, label)
			stack = append(stack, q)
			n++
		}
	}
	return n
}

var neighbours = []level.Point{{X: -1}, {X: 1}, {Y: -1}, {Y: 1}}

// Build allocates a grid for the whole map, rasterizes the walls of every
// room and only then floods every room from its inside point, so each fill
// sees the walls of all its neighbours. Rooms are visited in definition
// order.
func Build(m *level.Map) (*Grid, error) {
	_, hi := m.Bounds()
	g := New(hi.X, hi.Y)
	rooms := m.Rooms()
	for _, r := range rooms {
		if err := g.RasterizeWalls(r); err != nil {
			return nil, err
		}
	}
	for _, r := range rooms {
		if r.Inside == nil {
			return nil, diag.Roomf(diag.Structural, int(r.ID), "room %d must have an inside position", r.ID)
		}
		g.FloodFill(r.ID, *r.Inside)
	}
	return g, nil
}
