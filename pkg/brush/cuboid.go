// Package brush accumulates the convex solids of a compiled level. Cuboids
// go through a greedy merge engine that removes duplicates and grows
// existing boxes along one axis; polyhedra are stored as given.
package brush

import (
	"fmt"

	"github.com/chazu/penmap/pkg/diag"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// CuboidID is the stable arena index of a cuboid. Ids start at 1.
type CuboidID int

// Cuboid is an axis-aligned box. End is always Pos + Size.
type Cuboid struct {
	ID        CuboidID
	Pos       v3.Vec
	Size      v3.Vec
	End       v3.Vec
	Material  string
	Transform string
	// Fixed is false for movable prop bricks, which merge only among
	// themselves.
	Fixed bool
}

func (c *Cuboid) String() string {
	return fmt.Sprintf("cuboid %d at %s size %s (%s)", c.ID, vecString(c.Pos), vecString(c.Size), c.Material)
}

// sameKind reports whether c may be merged with a box of the given kind.
func (c *Cuboid) sameKind(material, transform string, fixed bool) bool {
	return c.Material == material && c.Transform == transform && c.Fixed == fixed
}

// Store is the arena of cuboids and polyhedra produced by one compile.
// It is not safe for concurrent use; submission order matters.
type Store struct {
	cuboids  []*Cuboid
	polys    []*Polyhedron
	extended int
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// SubmitCuboid adds the box at pos with the given size. The box is dropped
// when a cuboid of the same kind already covers it, merged into the first
// same-kind cuboid it can combine with, or appended. A box that
// interpenetrates a cuboid of another material or transform is a Conflict
// error and leaves the store unchanged.
func (s *Store) SubmitCuboid(pos, size v3.Vec, material, transform string, fixed, allowExtend bool) error {
	if size.X < 0 || size.Y < 0 || size.Z < 0 {
		return diag.Newf(diag.Internal, "cuboid at %s has negative size %s", vecString(pos), vecString(size))
	}
	end := pos.Add(size)

	covered := false
	for _, b := range s.cuboids {
		if b.Material != material || b.Transform != transform {
			if interpenetrates(b.Pos, b.End, pos, end) {
				return diag.Newf(diag.Conflict,
					"brick is being overwritten, box at %s size %s (%s) intersects %s, the two cuboids have material %s and %s",
					vecString(pos), vecString(size), material, b, b.Material, material)
			}
			continue
		}
		if b.Fixed == fixed && contains(b.Pos, b.End, pos, end) {
			covered = true
		}
	}
	if covered {
		return nil
	}

	if allowExtend {
		for _, b := range s.cuboids {
			if !b.sameKind(material, transform, fixed) {
				continue
			}
			if s.combine(b.ID, pos, end) {
				return nil
			}
		}
	}
	s.add(pos, size, material, transform, fixed)
	return nil
}

func (s *Store) add(pos, size v3.Vec, material, transform string, fixed bool) {
	c := &Cuboid{
		ID:        CuboidID(len(s.cuboids) + 1),
		Pos:       pos,
		Size:      size,
		End:       pos.Add(size),
		Material:  material,
		Transform: transform,
		Fixed:     fixed,
	}
	s.cuboids = append(s.cuboids, c)
}

// combine tries to absorb the box pos..end into cuboid id.
func (s *Store) combine(id CuboidID, pos, end v3.Vec) bool {
	b := s.cuboid(id)
	switch {
	case contains(b.Pos, b.End, pos, end):
		return true
	case contains(pos, end, b.Pos, b.End):
		b.Pos, b.End = pos, end
		b.Size = end.Sub(pos)
		return true
	}
	for axis := 0; axis < 3; axis++ {
		if s.extend(b, pos, end, axis) {
			return true
		}
	}
	return false
}

// extend grows b along axis when the other two axes match exactly and the
// intervals on axis overlap or touch.
func (s *Store) extend(b *Cuboid, pos, end v3.Vec, axis int) bool {
	for other := 0; other < 3; other++ {
		if other == axis {
			continue
		}
		if get(b.Pos, other) != get(pos, other) || get(b.End, other) != get(end, other) {
			return false
		}
	}
	a0, a1 := get(pos, axis), get(end, axis)
	b0, b1 := get(b.Pos, axis), get(b.End, axis)
	if a0 > b1 || a1 < b0 {
		return false
	}
	b.Pos = b.Pos.Min(pos)
	b.End = b.End.Max(end)
	b.Size = b.End.Sub(b.Pos)
	s.extended++
	return true
}

func (s *Store) cuboid(id CuboidID) *Cuboid {
	return s.cuboids[id-1]
}

// Cuboids returns the stored cuboids in id order.
func (s *Store) Cuboids() []*Cuboid {
	return s.cuboids
}

// Cuboid returns the cuboid with the given id.
func (s *Store) Cuboid(id CuboidID) (*Cuboid, bool) {
	if id < 1 || int(id) > len(s.cuboids) {
		return nil, false
	}
	return s.cuboids[id-1], true
}

// Len returns the number of stored cuboids.
func (s *Store) Len() int { return len(s.cuboids) }

// Extended returns how many submissions grew an existing cuboid along an
// axis.
func (s *Store) Extended() int { return s.extended }

// interpenetrates reports a strictly positive overlap on all three axes.
// Boxes that only touch do not interpenetrate.
func interpenetrates(apos, aend, bpos, bend v3.Vec) bool {
	return apos.X < bend.X && bpos.X < aend.X &&
		apos.Y < bend.Y && bpos.Y < aend.Y &&
		apos.Z < bend.Z && bpos.Z < aend.Z
}

// contains reports whether the box bpos..bend lies inside apos..aend,
// faces included.
func contains(apos, aend, bpos, bend v3.Vec) bool {
	return inside(apos, aend, bpos) && inside(apos, aend, bend)
}

func inside(lo, hi, p v3.Vec) bool {
	return p.X >= lo.X && p.X <= hi.X &&
		p.Y >= lo.Y && p.Y <= hi.Y &&
		p.Z >= lo.Z && p.Z <= hi.Z
}

func get(v v3.Vec, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

func vecString(v v3.Vec) string {
	return fmt.Sprintf("(%g,%g,%g)", v.X, v.Y, v.Z)
}
