// Package compiler turns a levelled, flooded map into brushes. Each room is
// walked into wall and door pieces, and every piece, floor cell, ceiling and
// fitting is submitted to a single brush store.
package compiler

import (
	"log"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/chazu/penmap/pkg/brush"
	"github.com/chazu/penmap/pkg/diag"
	"github.com/chazu/penmap/pkg/grid"
	"github.com/chazu/penmap/pkg/level"
	"github.com/chazu/penmap/pkg/scope"
	"github.com/chazu/penmap/pkg/walk"
)

// Dimensions in pen units.
const (
	MinCeilingHeight   = 6.0
	LintelThickness    = 0.5
	MinDoorHeight      = MinCeilingHeight - LintelThickness
	BeamSupportSize    = 0.5
	CandleHeight       = MinCeilingHeight - 1
	LightBlock         = 0.25
	LightHeight        = 1.25
	LightBlockHeight   = 1.0
	LightFloorHeight   = 0.125
	LightCeilingHeight = MinCeilingHeight - 1.5
	InvSpawnHeight     = 0.25
	BrickLength        = 0.5
	BrickWidth         = 0.25
	BrickHeight        = 0.5
	BrickMidOffset     = 0.25

	secretRows      = 4
	beamEvery       = 4
	portalThickness = 0.125
)

// Options switches the optional generators. Optimise lets the brush store
// grow existing cuboids instead of adding new ones. Visportals closes each
// open or closed doorway with a portal brush.
type Options struct {
	Optimise      bool
	Visportals    bool
	Pitched       bool
	Beams         bool
	Candles       bool
	PillarLights  bool
	FloorLights   bool
	CeilingLights bool
}

// DefaultOptions returns the generators enabled when nothing is asked for.
func DefaultOptions() Options {
	return Options{
		Optimise:     true,
		Candles:      true,
		PillarLights: true,
		FloorLights:  true,
	}
}

// Config is everything a compile needs besides the map and its grid.
type Config struct {
	Options

	// Globals is the outermost material scope. Nil means scope.Defaults().
	Globals scope.Table
	// Colours are the script-wide light colours, used for candles.
	Colours map[level.LightOn]level.Colour
	// Resolver expands material templates. Nil means round robin.
	Resolver *scope.Resolver
	Logger   *log.Logger
	Verbose  bool
}

// LightPoint is a light source placed by a generator, in pen units with Z
// up.
type LightPoint struct {
	Room   level.RoomID
	Pos    v3.Vec
	Colour level.Colour
	On     level.LightOn
}

// State is the whole mutable state of one compile.
type State struct {
	m        *level.Map
	g        *grid.Grid
	store    *brush.Store
	resolver *scope.Resolver
	globals  scope.Table
	colours  map[level.LightOn]level.Colour
	opts     Options
	logger   *log.Logger
	verbose  bool

	built     map[string]bool
	doorCells map[level.Point]bool
	entities  map[level.RoomID][]walk.Entity
	lights    []LightPoint

	minFloor float64
	maxZ     float64
}

// New prepares a compile of m. Floor levels must already be assigned and g
// must be the flooded grid of m.
func New(m *level.Map, g *grid.Grid, cfg Config) *State {
	lowest, highest := m.FloorRange()
	s := &State{
		m:         m,
		g:         g,
		store:     brush.NewStore(),
		resolver:  cfg.Resolver,
		globals:   cfg.Globals,
		colours:   cfg.Colours,
		opts:      cfg.Options,
		logger:    cfg.Logger,
		verbose:   cfg.Verbose,
		built:     make(map[string]bool),
		doorCells: make(map[level.Point]bool),
		entities:  make(map[level.RoomID][]walk.Entity),
		minFloor:  lowest,
		maxZ:      highest + MinCeilingHeight + 1,
	}
	if s.resolver == nil {
		s.resolver = scope.NewResolver()
	}
	if s.globals == nil {
		s.globals = scope.Defaults()
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	for _, r := range m.Rooms() {
		for _, d := range r.Doors {
			for _, c := range d.Seg.Cells() {
				s.doorCells[c] = true
			}
		}
	}
	return s
}

// Compile builds every room in definition order. The first error stops
// the compile.
func (s *State) Compile() error {
	for _, r := range s.m.Rooms() {
		if err := s.room(r); err != nil {
			return err
		}
	}
	if s.verbose {
		s.logger.Printf("built %d cuboids (%d extended), %d polyhedra, %d lights",
			s.store.Len(), s.store.Extended(), len(s.store.Polyhedra()), len(s.lights))
	}
	return nil
}

// room builds one room. Errors that do not already name a room are
// attributed to r.
func (s *State) room(r *level.Room) error {
	return diag.InRoom(s.buildRoom(r), int(r.ID))
}

func (s *State) buildRoom(r *level.Room) error {
	ents, err := walk.Room(r)
	if err != nil {
		return err
	}
	s.entities[r.ID] = ents
	if s.verbose {
		s.logger.Printf("room %d: %d wall and door pieces, floor %g", r.ID, len(ents), r.FloorLevel)
	}
	for _, e := range ents {
		if err := s.entity(r, e); err != nil {
			return errors.Wrapf(err, "building %s", e)
		}
	}
	if err := s.ceiling(r); err != nil {
		return errors.Wrap(err, "building the ceiling")
	}
	if err := s.floor(r); err != nil {
		return errors.Wrap(err, "building the floor")
	}
	if err := s.lightBlocks(r, ents); err != nil {
		return errors.Wrap(err, "building lights")
	}
	return errors.Wrap(s.plinths(r), "building plinths")
}

// cuboid submits a box whose material and transform are looked up through
// the room's overrides, then the globals.
func (s *State) cuboid(r *level.Room, pos, size v3.Vec, name string, fixed, allowExtend bool) error {
	material, transform, err := s.lookup(r, name)
	if err != nil {
		return err
	}
	return s.store.SubmitCuboid(pos, size, material, transform, fixed, allowExtend && s.opts.Optimise)
}

func (s *State) roof(r *level.Room, bot, top, shift v3.Vec, name string) error {
	material, transform, err := s.lookup(r, name)
	if err != nil {
		return err
	}
	pts, faces := brush.RoofPoints(bot, top, shift)
	return s.store.SubmitPolyhedron(pts, faces, material, transform)
}

func (s *State) lookup(r *level.Room, name string) (string, string, error) {
	scopes := []scope.Table{r.Textures, s.globals}
	material, err := s.resolver.Material(scopes, int(r.ID), name)
	if err != nil {
		return "", "", err
	}
	transform, err := s.resolver.Transform(scopes, int(r.ID), name)
	if err != nil {
		return "", "", err
	}
	return material, transform, nil
}

// floorAt returns the floor level of the room owning p, or r's own level
// when p is not inside any room.
func (s *State) floorAt(r *level.Room, p level.Point) float64 {
	if id, ok := s.g.RoomAt(p.X, p.Y); ok {
		if other := s.m.Get(id); other != nil {
			return other.FloorLevel
		}
	}
	return r.FloorLevel
}

func (s *State) colour(r *level.Room, on level.LightOn) level.Colour {
	if c, ok := r.Colours[on]; ok {
		return c
	}
	if c, ok := s.colours[on]; ok {
		return c
	}
	return level.DefaultColour
}

// Store returns the brushes built so far.
func (s *State) Store() *brush.Store { return s.store }

// Lights returns the light sources in the order they were placed.
func (s *State) Lights() []LightPoint { return s.lights }

// Entities returns the wall and door pieces of room id.
func (s *State) Entities(id level.RoomID) []walk.Entity { return s.entities[id] }

// DoorsBuilt returns the number of distinct doors built.
func (s *State) DoorsBuilt() int { return len(s.built) }

// MinFloor is the lowest floor level of the map.
func (s *State) MinFloor() float64 { return s.minFloor }

// MovableBricks returns the cuboids that are not part of the world.
func (s *State) MovableBricks() []*brush.Cuboid {
	return lo.Filter(s.store.Cuboids(), func(c *brush.Cuboid, _ int) bool { return !c.Fixed })
}
