// Package walk turns a room's unordered wall segments into a clockwise
// polygon and walks that polygon to produce the direction-tagged sequence of
// wall and door pieces the brick generators consume.
package walk

import (
	"fmt"
	"sort"

	"github.com/chazu/penmap/pkg/diag"
	"github.com/chazu/penmap/pkg/level"
)

// Direction is the side of the room a wall piece bounds.
type Direction int

const (
	Left Direction = iota
	Top
	Right
	Bottom
)

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Top:
		return "top"
	case Right:
		return "right"
	case Bottom:
		return "bottom"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Vertical reports whether walls on this side run along the y axis.
func (d Direction) Vertical() bool { return d == Left || d == Right }

// Kind says whether a piece is solid wall or a door of some status.
type Kind int

const (
	Wall Kind = iota
	Open
	Closed
	Secret
)

func (k Kind) String() string {
	switch k {
	case Wall:
		return "wall"
	case Open:
		return "open"
	case Closed:
		return "closed"
	case Secret:
		return "secret"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func kindOf(s level.DoorStatus) Kind {
	switch s {
	case level.DoorClosed:
		return Closed
	case level.DoorSecret:
		return Secret
	default:
		return Open
	}
}

// Entity is one piece of a room boundary. Seg runs bottom to top or left to
// right. LeadsTo is only meaningful for doors.
type Entity struct {
	Seg     level.Segment
	Kind    Kind
	Dir     Direction
	LeadsTo level.RoomID
}

// IsDoor reports whether the entity is any kind of door.
func (e Entity) IsDoor() bool { return e.Kind != Wall }

func (e Entity) String() string {
	return fmt.Sprintf("%s %s %s", e.Kind, e.Dir, e.Seg)
}

// Key identifies a door independently of which of its two rooms produced
// it.
func (e Entity) Key() string {
	return fmt.Sprintf("%s %s", e.Kind, e.Seg.Sorted())
}

// Room orders the walls of r in place and returns its entity list.
func Room(r *level.Room) ([]Entity, error) {
	ordered, err := OrderWalls(r.ID, r.Walls)
	if err != nil {
		return nil, err
	}
	r.Walls = ordered
	return WallDoorList(r.ID, ordered, r.Doors)
}

// OrderWalls returns the walls as a closed clockwise polygon. The first
// segment is the vertical wall with the lowest bottom end (leftmost on a
// tie), running upwards; every segment is normalized to run bottom to top
// or left to right.
func OrderWalls(id level.RoomID, walls []level.Segment) ([]level.Segment, error) {
	if len(walls) == 0 {
		return nil, diag.Roomf(diag.Structural, int(id), "room has no walls")
	}
	for _, w := range walls {
		if !w.AxisAligned() {
			return nil, diag.Roomf(diag.Structural, int(id), "wall %s must be horizontal or vertical", w)
		}
	}
	start := lowestLeftVertical(walls)
	if start < 0 {
		return nil, diag.Roomf(diag.Structural, int(id), "expecting first wall to be vertical, room has no vertical wall")
	}

	pool := make([]level.Segment, 0, len(walls)-1)
	pool = append(pool, walls[:start]...)
	pool = append(pool, walls[start+1:]...)

	ordered := []level.Segment{walls[start].Sorted()}
	e := ordered[0].B
	for len(pool) > 0 {
		i := joining(pool, e)
		if i < 0 {
			return nil, diag.Roomf(diag.Structural, int(id), "walls do not form a bounded room in room %d, nothing joins %s", id, e)
		}
		w := pool[i]
		ordered = append(ordered, w.Sorted())
		e = w.Other(e)
		pool = append(pool[:i], pool[i+1:]...)
	}
	if e != ordered[0].A {
		return nil, diag.Roomf(diag.Structural, int(id), "walls do not form a bounded room in room %d, %s is left open", id, e)
	}
	if !ordered[0].IsVertical() {
		return nil, diag.Roomf(diag.Internal, int(id), "expecting first wall to be vertical")
	}
	return ordered, nil
}

func lowestLeftVertical(walls []level.Segment) int {
	best := -1
	for i, w := range walls {
		if !w.IsVertical() {
			continue
		}
		if best < 0 {
			best = i
			continue
		}
		lo, blo := w.Min(), walls[best].Min()
		if lo.Y < blo.Y || (lo.Y == blo.Y && lo.X < blo.X) {
			best = i
		}
	}
	return best
}

// joining returns the index of the first segment with an endpoint at e.
func joining(pool []level.Segment, e level.Point) int {
	for i, w := range pool {
		if w.Min() == e || w.Max() == e {
			return i
		}
	}
	return -1
}

// WallDoorList walks the ordered polygon and splits each wall at the doors
// lying on it. The walk starts on the first (left) wall and the side changes
// at each corner according to the way the next wall leaves it.
func WallDoorList(id level.RoomID, ordered []level.Segment, doors []level.Door) ([]Entity, error) {
	if len(ordered) == 0 {
		return nil, diag.Roomf(diag.Structural, int(id), "room has no walls")
	}
	var out []Entity
	dir := Left
	p := ordered[0].A
	for _, w := range ordered {
		if w.A != p && w.B != p {
			return nil, diag.Roomf(diag.Internal, int(id), "wall %s does not continue from %s", w, p)
		}
		next := w.Other(p)
		if dir.Vertical() {
			switch {
			case next.X > p.X:
				dir = Top
			case next.X < p.X:
				dir = Bottom
			}
		} else {
			switch {
			case next.Y > p.Y:
				dir = Left
			case next.Y < p.Y:
				dir = Right
			}
		}
		if dir.Vertical() && !w.IsVertical() {
			return nil, diag.Roomf(diag.Structural, int(id), "expecting wall %s to be vertical", w)
		}
		if !dir.Vertical() && !w.IsHorizontal() {
			return nil, diag.Roomf(diag.Structural, int(id), "expecting wall %s to be horizontal", w)
		}
		out = append(out, splitWall(w, dir, doors)...)
		p = next
	}
	return out, nil
}

// splitWall emits [wall, door, wall, ...] for w. A wall piece stops one cell
// before a door and resumes one cell after it; empty pieces are dropped.
func splitWall(w level.Segment, dir Direction, doors []level.Door) []Entity {
	w = w.Sorted()
	on := doorsOn(w, dir, doors)

	var out []Entity
	pos := w.A
	for _, d := range on {
		f, s := d.Seg.Min(), d.Seg.Max()
		if last := step(f, dir, -1); !before(last, pos, dir) {
			out = append(out, Entity{Seg: level.Segment{A: pos, B: last}, Kind: Wall, Dir: dir})
		}
		out = append(out, Entity{Seg: level.Segment{A: f, B: s}, Kind: kindOf(d.Status), Dir: dir, LeadsTo: d.LeadsTo})
		pos = step(s, dir, 1)
	}
	if !before(w.B, pos, dir) {
		out = append(out, Entity{Seg: level.Segment{A: pos, B: w.B}, Kind: Wall, Dir: dir})
	}
	return out
}

// doorsOn returns the doors lying on w, ordered along it.
func doorsOn(w level.Segment, dir Direction, doors []level.Door) []level.Door {
	var on []level.Door
	for _, d := range doors {
		if dir.Vertical() && !d.Seg.IsVertical() {
			continue
		}
		if !dir.Vertical() && !d.Seg.IsHorizontal() {
			continue
		}
		if w.Covers(d.Seg) {
			on = append(on, d)
		}
	}
	sort.SliceStable(on, func(i, j int) bool {
		return before(on[i].Seg.Min(), on[j].Seg.Min(), dir)
	})
	return on
}

// step moves p by n cells along the wall axis for dir.
func step(p level.Point, dir Direction, n int) level.Point {
	if dir.Vertical() {
		return level.Point{X: p.X, Y: p.Y + n}
	}
	return level.Point{X: p.X + n, Y: p.Y}
}

// before reports whether a comes strictly before b along the wall axis.
func before(a, b level.Point, dir Direction) bool {
	if dir.Vertical() {
		return a.Y < b.Y
	}
	return a.X < b.X
}
