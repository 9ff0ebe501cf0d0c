package mapfile

import (
	"fmt"
	"io"
	"math"
	"strconv"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/chazu/penmap/pkg/brush"
	"github.com/chazu/penmap/pkg/compiler"
	"github.com/chazu/penmap/pkg/diag"
	"github.com/chazu/penmap/pkg/level"
)

// MaxEntities is the engine's entity limit.
const MaxEntities = 4096

// lightRadius is written on every light.
const lightRadius = 225

// Options controls what the writer emits.
type Options struct {
	// Source names the input file in the header and worldspawn.
	Source     string
	RunID      uuid.UUID
	Deathmatch bool
}

// Stats counts what was written.
type Stats struct {
	Entities int
	Brushes  int
}

type writer struct {
	w      io.Writer
	err    error
	frame  Frame
	m      *level.Map
	s      *compiler.State
	opts   Options
	entity int
	brush  int
}

// Write renders the compiled map. Nothing is buffered: callers that must
// not leave partial output should write into memory first.
func Write(w io.Writer, m *level.Map, s *compiler.State, opts Options) (Stats, error) {
	wr := &writer{w: w, frame: NewFrame(m), m: m, s: s, opts: opts}
	wr.printf("// automatically created from: %s\n", opts.Source)
	wr.printf("// run %s\n", opts.RunID)
	wr.printf("Version 2\n")

	steps := []func() error{
		wr.worldspawn,
		wr.player,
		wr.monsters,
		wr.lights,
		wr.ammo,
		wr.sounds,
		wr.weapons,
		wr.labels,
		wr.movableBricks,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return Stats{}, err
		}
		if wr.err != nil {
			return Stats{}, errors.Wrap(wr.err, "writing map")
		}
	}
	if wr.entity > MaxEntities {
		return Stats{}, diag.Newf(diag.Limit, "map uses %d entities, the limit is %d", wr.entity, MaxEntities)
	}
	return Stats{Entities: wr.entity, Brushes: wr.brush}, nil
}

func (wr *writer) printf(format string, args ...interface{}) {
	if wr.err != nil {
		return
	}
	_, wr.err = fmt.Fprintf(wr.w, format, args...)
}

func (wr *writer) begin(classname string) {
	wr.printf("// entity %d\n{\n", wr.entity)
	wr.field("classname", classname)
}

func (wr *writer) end() {
	wr.printf("}\n")
	wr.entity++
}

func (wr *writer) field(key, value string) {
	wr.printf("    %q %q\n", key, value)
}

func (wr *writer) origin(p v3.Vec) error {
	q, err := wr.frame.Point(p)
	if err != nil {
		return err
	}
	wr.field("origin", fmt.Sprintf("%f %f %f", q.X, q.Y, q.Z))
	return nil
}

// markerAt returns the pen position of a marker standing in cell p of r.
func markerAt(r *level.Room, p level.Point) v3.Vec {
	return v3.Vec{
		X: float64(p.X) + 0.5,
		Y: float64(p.Y) + 0.5,
		Z: r.FloorLevel + r.PlinthHeight(p) + compiler.InvSpawnHeight,
	}
}

func (wr *writer) worldspawn() error {
	wr.printf("// entity %d   (all room walls, floors, ceilings and fittings)\n{\n", wr.entity)
	wr.field("classname", "worldspawn")
	wr.field("spawnflags", "1")
	wr.field("penmap", wr.opts.Source)

	lo, hi := wr.m.Bounds()
	wr.field("penminx", strconv.Itoa(lo.X))
	wr.field("penminy", strconv.Itoa(lo.Y))
	wr.field("penmaxx", strconv.Itoa(hi.X))
	wr.field("penmaxy", strconv.Itoa(hi.Y))
	for _, c := range []struct {
		suffix string
		p      level.Point
	}{{"min", lo}, {"max", hi}} {
		q, err := wr.frame.Point(v3.Vec{X: float64(c.p.X), Y: float64(c.p.Y)})
		if err != nil {
			return err
		}
		wr.field("doom"+c.suffix+"x", number(q.X))
		wr.field("doom"+c.suffix+"y", number(q.Y))
	}

	store := wr.s.Store()
	for _, c := range store.Cuboids() {
		if !c.Fixed {
			continue
		}
		pts, faces, err := wr.frame.CuboidPoints(c)
		if err != nil {
			return err
		}
		if err := wr.brushDef(fmt.Sprintf("cuboid %d", c.ID), pts, faces, c.Material, c.Transform); err != nil {
			return err
		}
	}
	for _, p := range store.Polyhedra() {
		pts, err := wr.frame.PolyhedronPoints(p)
		if err != nil {
			return err
		}
		if err := wr.brushDef(fmt.Sprintf("polyhedron %d", p.ID), pts, p.Faces, p.Material, p.Transform); err != nil {
			return err
		}
	}
	wr.end()
	return nil
}

func (wr *writer) brushDef(comment string, pts []v3.Vec, faces []brush.Face, material, transform string) error {
	planes, err := brush.FacePlanes(pts, faces)
	if err != nil {
		return errors.Wrap(err, comment)
	}
	wr.printf("    // %s\n    {\n", comment)
	wr.printf("         brushDef3\n         {\n")
	for _, pl := range planes {
		wr.printf("             ( %s %s %s %s ) %s %q 0 0 0\n",
			number(pl.Normal.X), number(pl.Normal.Y), number(pl.Normal.Z), number(pl.Dist),
			transform, material)
	}
	wr.printf("         }\n    }\n")
	wr.brush++
	return nil
}

// number prints v in its shortest form, without a fraction when it is
// integral and never as negative zero.
func number(v float64) string {
	if math.Abs(v) < 1e-9 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (wr *writer) player() error {
	r, ok := wr.m.SpawnRoom()
	if !ok {
		return nil
	}
	class := "info_player_start"
	if wr.opts.Deathmatch {
		class = "info_player_deathmatch"
	}
	wr.begin(class)
	wr.field("name", class+"_1")
	if err := wr.origin(markerAt(r, r.Spawns[0])); err != nil {
		return err
	}
	wr.field("angle", "180")
	wr.end()
	return nil
}

func (wr *writer) monsters() error {
	n := 1
	for _, r := range wr.m.Rooms() {
		for _, mon := range r.Monsters {
			wr.begin(mon.Kind)
			wr.field("name", fmt.Sprintf("%s_%d", mon.Kind, n))
			wr.field("anim", "idle")
			if err := wr.origin(markerAt(r, mon.At)); err != nil {
				return err
			}
			wr.field("ambush", "1")
			wr.end()
			n++
		}
	}
	return nil
}

func (wr *writer) lights() error {
	for i, l := range wr.s.Lights() {
		wr.begin("light")
		wr.field("name", fmt.Sprintf("light_%d", i+1))
		if err := wr.origin(l.Pos); err != nil {
			return err
		}
		wr.field("noshadows", "0")
		wr.field("nospecular", "0")
		wr.field("nodiffuse", "0")
		wr.field("falloff", "0.000000")
		wr.field("_color", fmt.Sprintf("%f %f %f",
			float64(l.Colour.R)/256, float64(l.Colour.G)/256, float64(l.Colour.B)/256))
		wr.field("light_radius", fmt.Sprintf("%d %d %d", lightRadius, lightRadius, lightRadius))
		wr.end()
	}
	return nil
}

func (wr *writer) ammo() error {
	n := 1
	for _, r := range wr.m.Rooms() {
		for _, a := range r.Ammo {
			wr.begin(a.Kind)
			wr.field("inv_item", "4")
			wr.field("name", fmt.Sprintf("%s_%d", a.Kind, n))
			if err := wr.origin(markerAt(r, a.At)); err != nil {
				return err
			}
			wr.end()
			n++
		}
	}
	return nil
}

func (wr *writer) sounds() error {
	n := 1
	for _, r := range wr.m.Rooms() {
		for _, snd := range r.Sounds {
			wr.begin("speaker")
			wr.field("name", fmt.Sprintf("speaker_%d", n))
			if err := wr.origin(markerAt(r, snd.At)); err != nil {
				return err
			}
			looping := "0"
			if snd.Looping {
				looping = "1"
			}
			wr.field("s_shader", snd.File)
			wr.field("s_mindistance", "3")
			wr.field("s_maxdistance", "25")
			wr.field("s_volume", strconv.Itoa(snd.Volume))
			wr.field("s_omni", "0")
			wr.field("s_occlusion", "0")
			wr.field("soundgroup", "")
			wr.field("s_leadthrough", "0.100000")
			wr.field("s_plain", "0")
			wr.field("wait", strconv.Itoa(snd.Wait))
			wr.field("random", "0.000000")
			wr.field("s_looping", looping)
			wr.field("s_unclamped", "0")
			wr.field("s_justVolume", "1")
			wr.end()
			n++
		}
	}
	return nil
}

func (wr *writer) weapons() error {
	n := 1
	for _, r := range wr.m.Rooms() {
		for _, wp := range r.Weapons {
			class, ok := level.WeaponClass(wp.Number)
			if !ok {
				return diag.Roomf(diag.Internal, int(r.ID), "unknown weapon number %d", wp.Number)
			}
			wr.begin(class)
			wr.field("inv_item", "4")
			wr.field("name", fmt.Sprintf("%s_%d", class, n))
			if err := wr.origin(markerAt(r, wp.At)); err != nil {
				return err
			}
			wr.end()
			n++
		}
	}
	return nil
}

func (wr *writer) labels() error {
	n := 1
	for _, r := range wr.m.Rooms() {
		for _, l := range r.Labels {
			wr.begin("item_default")
			wr.field("name", fmt.Sprintf("label_%d", n))
			wr.field("label", l.Text)
			if err := wr.origin(markerAt(r, l.At)); err != nil {
				return err
			}
			wr.end()
			n++
		}
	}
	return nil
}

// movableBricks writes each non-fixed cuboid as its own entity. The brush
// is local to the entity origin, the centre of the brick.
func (wr *writer) movableBricks() error {
	for i, c := range wr.s.MovableBricks() {
		pts, faces, err := wr.frame.CuboidPoints(c)
		if err != nil {
			return err
		}
		centre := c.Pos.Add(c.End).MulScalar(0.5)
		origin, err := wr.frame.Point(centre)
		if err != nil {
			return err
		}
		for j := range pts {
			pts[j] = pts[j].Sub(origin)
		}

		name := fmt.Sprintf("moveable_base_brick_%d", i+1)
		wr.begin("moveable_base_brick")
		wr.field("name", name)
		wr.field("model", name)
		wr.field("origin", fmt.Sprintf("%f %f %f", origin.X, origin.Y, origin.Z))
		wr.field("clipshrink", "1")
		if err := wr.brushDef(fmt.Sprintf("brick %d", c.ID), pts, faces, c.Material, c.Transform); err != nil {
			return err
		}
		wr.end()
	}
	return nil
}
