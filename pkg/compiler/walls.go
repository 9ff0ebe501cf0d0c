package compiler

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/penmap/pkg/level"
	"github.com/chazu/penmap/pkg/walk"
)

func (s *State) entity(r *level.Room, e walk.Entity) error {
	if e.Kind == walk.Wall {
		return s.wall(r, e)
	}
	// Both rooms list the same door.
	key := e.Key()
	if s.built[key] {
		return nil
	}
	s.built[key] = true
	if e.Kind == walk.Secret {
		return s.secretDoor(r, e)
	}
	return s.openDoor(r, e)
}

// openDoor builds the doorway and, with visportals on, a portal across
// the gap.
func (s *State) openDoor(r *level.Room, e walk.Entity) error {
	if err := s.doorway(r, e); err != nil {
		return err
	}
	if !s.opts.Visportals {
		return nil
	}
	return s.portal(r, e)
}

// wall raises one column per cell from below the lowest floor to the top
// of the room.
func (s *State) wall(r *level.Room, e walk.Entity) error {
	top := r.FloorLevel + s.maxZ
	for _, c := range e.Seg.Cells() {
		pos := cellVec(c, s.minFloor-1)
		if err := s.cuboid(r, pos, v3.Vec{X: 1, Y: 1, Z: top - pos.Z}, "wall", true, true); err != nil {
			return err
		}
	}
	return nil
}

// doorway fills each door cell with steps between the two floors and a
// head block above the opening. Closed doors are built the same way.
func (s *State) doorway(r *level.Room, e walk.Entity) error {
	for _, c := range e.Seg.Cells() {
		if err := s.steps(r, e, c); err != nil {
			return err
		}
		pos := cellVec(c, r.FloorLevel+MinDoorHeight)
		size := v3.Vec{X: 1, Y: 1, Z: r.FloorLevel + s.maxZ - pos.Z}
		if err := s.cuboid(r, pos, size, "wall", true, true); err != nil {
			return err
		}
	}
	return nil
}

// across returns the unit step crossing the door, from its low side to its
// high side.
func across(e walk.Entity) level.Point {
	if e.Dir.Vertical() {
		return level.Point{X: 1}
	}
	return level.Point{Y: 1}
}

// portal stands a thin portal slab in the middle of each door cell, from
// the top step to the door head.
func (s *State) portal(r *level.Room, e walk.Entity) error {
	step := across(e)
	head := r.FloorLevel + MinDoorHeight
	for _, c := range e.Seg.Cells() {
		near, far := s.sides(r, e, c)
		base := max(near, far)
		if base >= head {
			continue
		}
		pos := cellVec(c, base)
		size := v3.Vec{X: 1, Y: 1, Z: head - base}
		if step.X == 1 {
			pos.X += (1 - portalThickness) / 2
			size.X = portalThickness
		} else {
			pos.Y += (1 - portalThickness) / 2
			size.Y = portalThickness
		}
		if err := s.cuboid(r, pos, size, "portal", true, true); err != nil {
			return err
		}
	}
	return nil
}

// sides returns the floor levels on the low and high side of door cell c.
func (s *State) sides(r *level.Room, e walk.Entity, c level.Point) (float64, float64) {
	step := across(e)
	near := s.floorAt(r, level.Point{X: c.X - step.X, Y: c.Y - step.Y})
	far := s.floorAt(r, c.Add(step))
	return near, far
}

// steps cuts door cell c into level.NoSteps slices across the door, each
// a step between the near and far floor. Equal floors give a flat sill.
func (s *State) steps(r *level.Room, e walk.Entity, c level.Point) error {
	near, far := s.sides(r, e, c)
	rise := (far - near) / level.NoSteps
	width := 1.0 / level.NoSteps
	step := across(e)
	for i := 0; i < level.NoSteps; i++ {
		top := near + float64(i+1)*rise
		if rise < 0 {
			top = near + float64(i)*rise
		}
		pos := cellVec(c, s.minFloor-1)
		size := v3.Vec{X: 1, Y: 1, Z: top - pos.Z}
		if step.X == 1 {
			pos.X += float64(i) * width
			size.X = width
		} else {
			pos.Y += float64(i) * width
			size.Y = width
		}
		if err := s.cuboid(r, pos, size, "wall", true, true); err != nil {
			return err
		}
	}
	return nil
}

// secretDoor builds the doorway and blocks it with a wall of movable
// bricks.
func (s *State) secretDoor(r *level.Room, e walk.Entity) error {
	if err := s.doorway(r, e); err != nil {
		return err
	}
	return s.brickWall(r, e)
}

// brickWall lays secretRows courses of secret bricks in a thin skin across
// the doorway, standing on the higher of the two floors. Odd courses are
// offset by half a brick with wall supports at both ends. A wall lintel
// and wall fill close the gap up to the door head.
func (s *State) brickWall(r *level.Room, e walk.Entity) error {
	cells := e.Seg.Cells()
	seg := e.Seg.Sorted()
	vertical := e.Dir.Vertical()

	var from, to, at float64
	if vertical {
		from, to, at = float64(seg.A.Y), float64(seg.B.Y+1), float64(seg.A.X)
	} else {
		from, to, at = float64(seg.A.X), float64(seg.B.X+1), float64(seg.A.Y)
	}
	box := func(along, length, z float64) (v3.Vec, v3.Vec) {
		if vertical {
			return v3.Vec{X: at + BrickMidOffset, Y: along, Z: z},
				v3.Vec{X: BrickWidth, Y: length, Z: BrickHeight}
		}
		return v3.Vec{X: along, Y: at + BrickMidOffset, Z: z},
			v3.Vec{X: length, Y: BrickWidth, Z: BrickHeight}
	}

	near, far := s.sides(r, e, cells[0])
	z := max(near, far)
	for row := 0; row < secretRows; row++ {
		first, last := from, to
		if row%2 == 1 {
			half := BrickLength / 2
			for _, p := range []float64{first, last - half} {
				pos, size := box(p, half, z)
				if err := s.cuboid(r, pos, size, "wall", true, true); err != nil {
					return err
				}
			}
			first, last = first+half, last-half
		}
		for p := first; p+BrickLength <= last; p += BrickLength {
			pos, size := box(p, BrickLength, z)
			if err := s.cuboid(r, pos, size, "secret", false, false); err != nil {
				return err
			}
		}
		z += BrickHeight
	}

	for _, c := range cells {
		if err := s.cuboid(r, cellVec(c, z), v3.Vec{X: 1, Y: 1, Z: LintelThickness}, "wall", true, true); err != nil {
			return err
		}
	}
	z += LintelThickness
	head := r.FloorLevel + MinDoorHeight
	if head <= z {
		return nil
	}
	for _, c := range cells {
		if err := s.cuboid(r, cellVec(c, z), v3.Vec{X: 1, Y: 1, Z: head - z}, "wall", true, true); err != nil {
			return err
		}
	}
	return nil
}

func cellVec(c level.Point, z float64) v3.Vec {
	return v3.Vec{X: float64(c.X), Y: float64(c.Y), Z: z}
}
