package compiler

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/penmap/pkg/level"
)

// floor fills every room cell from below the lowest floor up to the room's
// floor level.
func (s *State) floor(r *level.Room) error {
	for _, c := range s.g.CellsOf(r.ID) {
		pos := cellVec(c, s.minFloor-1)
		if err := s.cuboid(r, pos, v3.Vec{X: 1, Y: 1, Z: r.FloorLevel - pos.Z}, "floor", true, true); err != nil {
			return err
		}
	}
	return nil
}

func (s *State) ceiling(r *level.Room) error {
	var err error
	if s.opts.Pitched && len(r.Walls) == 4 {
		err = s.pitchedCeiling(r)
	} else {
		err = s.flatCeiling(r)
	}
	if err != nil {
		return err
	}
	if s.opts.Beams {
		return s.beams(r)
	}
	return nil
}

func (s *State) flatCeiling(r *level.Room) error {
	for _, c := range s.g.CellsOf(r.ID) {
		pos := cellVec(c, r.FloorLevel+MinCeilingHeight)
		if err := s.cuboid(r, pos, v3.Vec{X: 1, Y: 1, Z: 1}, "ceiling", true, true); err != nil {
			return err
		}
	}
	return nil
}

// pitchedCeiling roofs a rectangular room with two slabs leaning in from
// its long walls, closed by wall gables on the short sides.
func (s *State) pitchedCeiling(r *level.Room) error {
	lo, hi := r.Bounds()
	long := hi.X-lo.X > hi.Y-lo.Y
	// Work in (u, w): u runs along the ridge, w across it.
	u0, u1, w0, w1 := float64(lo.X), float64(hi.X), float64(lo.Y), float64(hi.Y)
	if !long {
		u0, u1, w0, w1 = w0, w1, u0, u1
	}
	orient := func(u, w, z float64) v3.Vec {
		if long {
			return v3.Vec{X: u, Y: w, Z: z}
		}
		return v3.Vec{X: w, Y: u, Z: z}
	}

	h := r.FloorLevel + MinCeilingHeight
	width := (w1 - w0) / 2
	height := width + 1
	if err := s.roof(r, orient(u0+1, w0, h), orient(u1, w0+1, h+height), orient(0, width, 0), "ceiling"); err != nil {
		return err
	}
	if err := s.roof(r, orient(u0+1, w1, h), orient(u1, w1+1, h+height), orient(0, -width, 0), "ceiling"); err != nil {
		return err
	}
	size := orient(1, w1-w0+1, height)
	for _, u := range []float64{u0, u1} {
		if err := s.cuboid(r, orient(u, w0, h), size, "wall", true, true); err != nil {
			return err
		}
	}
	return nil
}

// beams spans a rectangular room across its short side every beamEvery
// cells, skipping positions where either end meets a door. Candles hang
// between the beams.
func (s *State) beams(r *level.Room) error {
	if len(r.Walls) != 4 {
		return nil
	}
	lo, hi := r.Bounds()
	// A beam runs along w at a fixed u.
	acrossY := hi.X-lo.X > hi.Y-lo.Y
	u0, u1, w0, w1 := lo.X, hi.X, lo.Y, hi.Y
	if !acrossY {
		u0, u1, w0, w1 = lo.Y, hi.Y, lo.X, hi.X
	}
	orient := func(u, w, z float64) v3.Vec {
		if acrossY {
			return v3.Vec{X: u, Y: w, Z: z}
		}
		return v3.Vec{X: w, Y: u, Z: z}
	}
	onDoor := func(u, w int) bool {
		if acrossY {
			return s.doorCells[level.Point{X: u, Y: w}]
		}
		return s.doorCells[level.Point{X: w, Y: u}]
	}

	for u := u0 + 1; u < u1; u += beamEvery {
		if onDoor(u, w0) || onDoor(u, w1) {
			continue
		}
		if err := s.beam(r, orient, float64(u), w0, w1); err != nil {
			return err
		}
	}
	if !s.opts.Candles {
		return nil
	}
	for u := u0 + 3; u < u1; u += beamEvery {
		if onDoor(u, w0) || onDoor(u, w1) {
			continue
		}
		for _, w := range []float64{float64(w0) + 1, float64(w1) - 0.5} {
			pos := orient(float64(u), w, 0)
			s.lights = append(s.lights, LightPoint{
				Room:   r.ID,
				Pos:    v3.Vec{X: pos.X + 0.25, Y: pos.Y + 0.25, Z: r.FloorLevel + CandleHeight},
				Colour: s.colour(r, level.OnCeiling),
				On:     level.OnCeiling,
			})
		}
	}
	return nil
}

// beam builds one beam at u between the walls at w0 and w1: a flat timber,
// an A frame of two rafters, a king post and two braces, resting on stone
// supports.
func (s *State) beam(r *level.Room, orient func(u, w, z float64) v3.Vec, u float64, w0, w1 int) error {
	h := r.FloorLevel + MinCeilingHeight - 0.5
	for w := w0 + 1; w < w1; w++ {
		if err := s.cuboid(r, orient(u, float64(w), h), orient(0.5, 1, 0.5), "ceiling", true, true); err != nil {
			return err
		}
	}

	h = r.FloorLevel + MinCeilingHeight
	rise := float64(w1-w0+1) / 2
	mid := float64(w0) + rise
	parts := []struct {
		bot, top, shift v3.Vec
	}{
		{orient(u, float64(w0)+1, h), orient(u+0.5, float64(w0)+1.5, h+rise), orient(0, rise-1, 0)},
		{orient(u, float64(w1)-0.5, h), orient(u+0.5, float64(w1), h+rise), orient(0, -(rise - 1), 0)},
		{orient(u+0.125, mid-0.125, h), orient(u+0.375, mid+0.125, h+rise), v3.Vec{}},
		{orient(u+0.125, mid-0.125, h), orient(u+0.375, mid+0.125, h+rise/2), orient(0, rise/2, 0)},
		{orient(u+0.125, mid-0.125, h), orient(u+0.375, mid+0.125, h+rise/2), orient(0, -rise/2, 0)},
	}
	for _, p := range parts {
		if err := s.roof(r, p.bot, p.top, p.shift, "ceiling"); err != nil {
			return err
		}
	}

	support := v3.Vec{X: BeamSupportSize, Y: BeamSupportSize, Z: BeamSupportSize}
	for _, w := range []float64{float64(w0) + 1, float64(w1) - 0.5} {
		if err := s.cuboid(r, orient(u, w, h-1), support, "wall", true, true); err != nil {
			return err
		}
	}
	return nil
}
