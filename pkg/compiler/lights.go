package compiler

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"

	"github.com/chazu/penmap/pkg/diag"
	"github.com/chazu/penmap/pkg/level"
	"github.com/chazu/penmap/pkg/walk"
)

func (s *State) lightBlocks(r *level.Room, ents []walk.Entity) error {
	for _, l := range r.Lights {
		switch l.On {
		case level.OnMid:
			if s.opts.PillarLights {
				if err := s.pillarLight(r, l); err != nil {
					return err
				}
			}
		case level.OnFloor:
			if s.opts.FloorLights {
				s.wallLight(r, l, ents, LightFloorHeight)
			}
		case level.OnCeiling:
			if s.opts.CeilingLights {
				s.wallLight(r, l, ents, LightCeilingHeight)
			}
		default:
			return diag.Roomf(diag.Internal, int(r.ID), "unrecognised light position %s", l.On)
		}
	}
	return nil
}

// pillarLight stands a light on a wall pillar.
func (s *State) pillarLight(r *level.Room, l level.Light) error {
	base := r.FloorLevel + r.PlinthHeight(l.At)
	pos := cellVec(l.At, base)
	if err := s.cuboid(r, pos, v3.Vec{X: LightBlock, Y: LightBlock, Z: LightBlockHeight}, "wall", true, true); err != nil {
		return err
	}
	s.addLight(r, l, v3.Vec{X: pos.X + LightBlock/2, Y: pos.Y + LightBlock/2, Z: base + LightHeight})
	return nil
}

// wallLight places a light at height above the floor, pushed against the
// wall it stands next to, if any.
func (s *State) wallLight(r *level.Room, l level.Light, ents []walk.Entity, height float64) {
	pos := cellVec(l.At, 0)
	if e, ok := nextTo(ents, l.At); ok {
		pos = pos.Add(pillarOffset(e.Dir))
	}
	s.addLight(r, l, v3.Vec{X: pos.X + LightBlock/2, Y: pos.Y + LightBlock/2, Z: r.FloorLevel + height})
}

func (s *State) addLight(r *level.Room, l level.Light, pos v3.Vec) {
	s.lights = append(s.lights, LightPoint{Room: r.ID, Pos: pos, Colour: l.Colour, On: l.On})
}

// nextTo returns the wall piece directly beside p on the room side.
func nextTo(ents []walk.Entity, p level.Point) (walk.Entity, bool) {
	return lo.Find(ents, func(e walk.Entity) bool {
		return e.Kind == walk.Wall && e.Seg.Contains(p.Add(outward(e.Dir)))
	})
}

// outward is the step from a room cell towards a wall on side d.
func outward(d walk.Direction) level.Point {
	switch d {
	case walk.Left:
		return level.Point{X: -1}
	case walk.Right:
		return level.Point{X: 1}
	case walk.Top:
		return level.Point{Y: 1}
	default:
		return level.Point{Y: -1}
	}
}

// pillarOffset moves a light block within its cell so it touches the wall
// on side d.
func pillarOffset(d walk.Direction) v3.Vec {
	switch d {
	case walk.Right:
		return v3.Vec{X: 1 - LightBlock}
	case walk.Top:
		return v3.Vec{Y: 1 - LightBlock}
	default:
		return v3.Vec{}
	}
}

// plinths raises each plinth cell by its height.
func (s *State) plinths(r *level.Room) error {
	for _, p := range r.Plinths {
		size := v3.Vec{X: 1, Y: 1, Z: float64(p.Height) / level.InchesPerUnit}
		if err := s.cuboid(r, cellVec(p.At, r.FloorLevel), size, "plinth", true, true); err != nil {
			return err
		}
	}
	return nil
}
