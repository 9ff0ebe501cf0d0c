package compiler_test

import (
	"bytes"
	"fmt"
	"log"
	"sort"
	"strings"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/penmap/pkg/brush"
	"github.com/chazu/penmap/pkg/compiler"
	"github.com/chazu/penmap/pkg/diag"
	"github.com/chazu/penmap/pkg/grid"
	"github.com/chazu/penmap/pkg/level"
	"github.com/chazu/penmap/pkg/pen"
	"github.com/chazu/penmap/pkg/scope"
)

const boxRoom = `
ROOM 1
    WALL 0 0 0 4  0 4 4 4  4 4 4 0  4 0 0 0
    INSIDE AT 1 1
    SPAWN PLAYER AT 2 2
END
END.
`

const twoRoomsOpen = `
ROOM 1
    WALL 0 0 0 4  0 4 4 4  4 4 4 0  4 0 0 0
    DOOR 4 2 4 2 STATUS OPEN LEADS TO 2
    INSIDE AT 1 1
    SPAWN PLAYER AT 1 1
END
ROOM 2
    WALL 4 0 4 4  4 4 8 4  8 4 8 0  8 0 4 0
    DOOR 4 2 4 2 STATUS OPEN LEADS TO 1
    INSIDE AT 5 1
END
END.
`

const twoRoomsSecret = `
ROOM 1
    WALL 0 0 0 4  0 4 4 4  4 4 4 0  4 0 0 0
    DOOR 4 1 4 2 STATUS SECRET LEADS TO 2
    INSIDE AT 1 1
END
ROOM 2
    WALL 4 0 4 4  4 4 8 4  8 4 8 0  8 0 4 0
    DOOR 4 1 4 2 STATUS SECRET LEADS TO 1
    INSIDE AT 5 1
END
END.
`

func compile(t *testing.T, src string, stepped bool, cfg compiler.Config) (*compiler.State, error) {
	t.Helper()
	m, err := pen.ParseString("test.pen", src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	m.AssignFloorLevels(stepped)
	g, err := grid.Build(m)
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	s := compiler.New(m, g, cfg)
	return s, s.Compile()
}

func mustCompile(t *testing.T, src string, stepped bool, cfg compiler.Config) *compiler.State {
	t.Helper()
	s, err := compile(t, src, stepped, cfg)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	checkNoConflicts(t, s.Store())
	return s
}

func defaultConfig() compiler.Config {
	return compiler.Config{Options: compiler.DefaultOptions()}
}

func checkNoConflicts(t *testing.T, store *brush.Store) {
	t.Helper()
	cs := store.Cuboids()
	for i, a := range cs {
		for _, b := range cs[i+1:] {
			if a.Material == b.Material && a.Transform == b.Transform {
				continue
			}
			if a.Pos.X < b.End.X && b.Pos.X < a.End.X &&
				a.Pos.Y < b.End.Y && b.Pos.Y < a.End.Y &&
				a.Pos.Z < b.End.Z && b.Pos.Z < a.End.Z {
				t.Errorf("%s overlaps %s", a, b)
			}
		}
	}
}

// of returns the cuboids built from the default entry name.
func of(store *brush.Store, name string) []*brush.Cuboid {
	d := scope.Defaults()
	var out []*brush.Cuboid
	for _, c := range store.Cuboids() {
		if c.Material == d[name] && c.Transform == d[name+scope.TransformSuffix] {
			out = append(out, c)
		}
	}
	return out
}

func volume(cs []*brush.Cuboid) float64 {
	var v float64
	for _, c := range cs {
		v += c.Size.X * c.Size.Y * c.Size.Z
	}
	return v
}

func find(cs []*brush.Cuboid, pos, size v3.Vec) bool {
	for _, c := range cs {
		if c.Pos == pos && c.Size == size {
			return true
		}
	}
	return false
}

func TestBoxRoom(t *testing.T) {
	s := mustCompile(t, boxRoom, false, defaultConfig())
	store := s.Store()

	// 16 perimeter cells, each a column from -1 up to 7.
	if got := volume(of(store, "wall")); got != 128 {
		t.Errorf("wall volume = %g, want 128", got)
	}
	if got := volume(of(store, "floor")); got != 9 {
		t.Errorf("floor volume = %g, want 9", got)
	}
	if got := volume(of(store, "ceiling")); got != 9 {
		t.Errorf("ceiling volume = %g, want 9", got)
	}
	if n := len(of(store, "wall")); n != 4 {
		t.Errorf("walls merged into %d cuboids, want 4", n)
	}
	if len(store.Polyhedra()) != 0 {
		t.Errorf("flat room built %d polyhedra", len(store.Polyhedra()))
	}
	if len(s.Entities(1)) != 4 {
		t.Errorf("entities = %v", s.Entities(1))
	}
	if s.DoorsBuilt() != 0 || len(s.MovableBricks()) != 0 {
		t.Errorf("doors = %d, movable = %d", s.DoorsBuilt(), len(s.MovableBricks()))
	}
}

func TestStepsBetweenLevels(t *testing.T) {
	s := mustCompile(t, twoRoomsOpen, true, defaultConfig())
	if s.MinFloor() != -1 {
		t.Fatalf("MinFloor = %g, want -1", s.MinFloor())
	}
	if s.DoorsBuilt() != 1 {
		t.Errorf("DoorsBuilt = %d, want 1", s.DoorsBuilt())
	}

	walls := of(s.Store(), "wall")
	var steps []*brush.Cuboid
	for _, c := range walls {
		if c.Pos.Y == 2 && c.Size.Y == 1 && c.Size.X == 0.25 {
			steps = append(steps, c)
		}
	}
	sort.Slice(steps, func(i, j int) bool { return steps[i].Pos.X < steps[j].Pos.X })
	wantTops := []float64{0, -0.25, -0.5, -0.75}
	if len(steps) != len(wantTops) {
		t.Fatalf("steps = %v", steps)
	}
	for i, c := range steps {
		if c.Pos.X != 4+0.25*float64(i) || c.Pos.Z != -2 || c.End.Z != wantTops[i] {
			t.Errorf("step %d = %s, want top %g", i, c, wantTops[i])
		}
	}

	if !find(walls, v3.Vec{X: 4, Y: 2, Z: 5.5}, v3.Vec{X: 1, Y: 1, Z: 1.5}) {
		t.Error("door head not found")
	}
}

func TestFlatSill(t *testing.T) {
	s := mustCompile(t, twoRoomsOpen, false, defaultConfig())
	// Four level slices merge into one sill block.
	if !find(of(s.Store(), "wall"), v3.Vec{X: 4, Y: 2, Z: -1}, v3.Vec{X: 1, Y: 1, Z: 1}) {
		t.Error("flat sill not found")
	}
}

func TestSecretDoorBricks(t *testing.T) {
	s := mustCompile(t, twoRoomsSecret, false, defaultConfig())
	d := scope.Defaults()

	bricks := s.MovableBricks()
	// A two cell doorway: two courses of four bricks, two offset courses of three.
	if len(bricks) != 14 {
		t.Fatalf("movable bricks = %d, want 14", len(bricks))
	}
	for _, b := range bricks {
		if b.Material != d["secret"] || b.Transform != d["secret_transform"] {
			t.Errorf("brick %s has %s %s", b, b.Material, b.Transform)
		}
		if b.Size != (v3.Vec{X: compiler.BrickWidth, Y: compiler.BrickLength, Z: compiler.BrickHeight}) {
			t.Errorf("brick %s has the wrong size", b)
		}
		if b.Pos.X != 4+compiler.BrickMidOffset || b.Pos.Y < 1 || b.End.Y > 3 || b.Pos.Z < 0 || b.End.Z > 2 {
			t.Errorf("brick %s is outside the doorway", b)
		}
	}

	var supports int
	for _, c := range of(s.Store(), "wall") {
		if c.Size == (v3.Vec{X: 0.25, Y: 0.25, Z: 0.5}) {
			supports++
		}
	}
	if supports != 4 {
		t.Errorf("supports = %d, want 4", supports)
	}
	if s.DoorsBuilt() != 1 {
		t.Errorf("DoorsBuilt = %d, want 1", s.DoorsBuilt())
	}
}

func TestUnknownMaterial(t *testing.T) {
	cfg := defaultConfig()
	cfg.Globals = scope.Table{
		"wall":            "textures/a",
		"wall_transform":  "( ( 1 0 0 ) ( 0 1 0 ) )",
		"floor":           "textures/b",
		"floor_transform": "( ( 1 0 0 ) ( 0 1 0 ) )",
	}
	_, err := compile(t, boxRoom, false, cfg)
	if err == nil {
		t.Fatal("expected lookup error")
	}
	e, ok := diag.As(err)
	if !ok || e.Kind != diag.Lookup || e.Room != 1 {
		t.Errorf("err = %v, want lookup error in room 1", err)
	}
	if !strings.Contains(err.Error(), "ceiling") {
		t.Errorf("err = %v, want it to name ceiling", err)
	}
}

func TestRoomTextureConflict(t *testing.T) {
	src := `
ROOM 1
    WALL 0 0 0 4  0 4 4 4  4 4 4 0  4 0 0 0
    INSIDE AT 1 1
END
ROOM 2
    WALL 4 0 4 4  4 4 8 4  8 4 8 0  8 0 4 0
    INSIDE AT 5 1
    DEFAULT TEXTURE WALL textures/base_wall/lfwall13f3
END
END.
`
	_, err := compile(t, src, false, defaultConfig())
	if diag.KindOf(err) != diag.Conflict {
		t.Fatalf("err = %v, want conflict", err)
	}
	if !strings.Contains(err.Error(), "textures/base_wall/lfwall13f3") {
		t.Errorf("err = %v, want it to name both materials", err)
	}
}

func TestRoomTextureOverride(t *testing.T) {
	src := strings.Replace(boxRoom, "INSIDE AT 1 1", "INSIDE AT 1 1\n    DEFAULT TEXTURE FLOOR textures/hell/lava1", 1)
	s := mustCompile(t, src, false, defaultConfig())
	var lava float64
	for _, c := range s.Store().Cuboids() {
		if c.Material == "textures/hell/lava1" {
			lava += c.Size.X * c.Size.Y * c.Size.Z
		}
	}
	if lava != 9 {
		t.Errorf("overridden floor volume = %g, want 9", lava)
	}
}

func TestLights(t *testing.T) {
	src := strings.Replace(boxRoom, "INSIDE AT 1 1", `INSIDE AT 1 1
    LIGHT AT 2 2
    LIGHT AT 1 2 ON FLOOR
    LIGHT AT 3 2 COLOUR 1 2 3 ON FLOOR
    LIGHT AT 2 3 ON CEILING`, 1)

	s := mustCompile(t, src, false, defaultConfig())
	want := []v3.Vec{
		{X: 2.125, Y: 2.125, Z: 1.25},
		{X: 1.125, Y: 2.125, Z: 0.125},
		{X: 3.875, Y: 2.125, Z: 0.125},
	}
	lights := s.Lights()
	if len(lights) != len(want) {
		t.Fatalf("lights = %+v", lights)
	}
	for i, l := range lights {
		if l.Pos != want[i] {
			t.Errorf("light %d at %v, want %v", i, l.Pos, want[i])
		}
	}
	if lights[2].Colour != (level.Colour{R: 1, G: 2, B: 3}) {
		t.Errorf("light colour = %v", lights[2].Colour)
	}
	if !find(of(s.Store(), "wall"), v3.Vec{X: 2, Y: 2}, v3.Vec{X: 0.25, Y: 0.25, Z: 1}) {
		t.Error("light pillar not found")
	}

	cfg := defaultConfig()
	cfg.CeilingLights = true
	cfg.PillarLights = false
	s = mustCompile(t, src, false, cfg)
	lights = s.Lights()
	if len(lights) != 3 {
		t.Fatalf("lights = %+v", lights)
	}
	if got := lights[2].Pos; got != (v3.Vec{X: 2.125, Y: 3.875, Z: 4.5}) {
		t.Errorf("ceiling light at %v", got)
	}
	if len(of(s.Store(), "wall")) != 4 {
		t.Error("pillar built with pillar lights off")
	}
}

func TestPlinth(t *testing.T) {
	src := strings.Replace(boxRoom, "INSIDE AT 1 1", "INSIDE AT 1 1\n    PLINTH 3 3 24", 1)
	s := mustCompile(t, src, false, defaultConfig())
	if !find(of(s.Store(), "plinth"), v3.Vec{X: 3, Y: 3}, v3.Vec{X: 1, Y: 1, Z: 0.5}) {
		t.Error("plinth not found")
	}
}

// longRoom is a rectangle 4 high and %[1]d wide.
const longRoom = `
ROOM 1
    WALL 0 0 0 4  0 4 %[1]d 4  %[1]d 4 %[1]d 0  %[1]d 0 0 0
    INSIDE AT 1 1
END
END.
`

func long(x int) string {
	return fmt.Sprintf(longRoom, x)
}

func TestPitchedCeiling(t *testing.T) {
	cfg := defaultConfig()
	cfg.Pitched = true
	s := mustCompile(t, long(6), false, cfg)

	polys := s.Store().Polyhedra()
	if len(polys) != 2 {
		t.Fatalf("polyhedra = %d, want 2", len(polys))
	}
	for _, p := range polys {
		if _, err := brush.FacePlanes(p.Vertices, p.Faces); err != nil {
			t.Errorf("roof %d: %v", p.ID, err)
		}
	}
	if n := len(of(s.Store(), "ceiling")); n != 0 {
		t.Errorf("pitched room has %d flat ceiling cuboids", n)
	}
	for _, x := range []float64{0, 6} {
		found := false
		for _, c := range of(s.Store(), "wall") {
			if c.Pos.X == x && c.End.Z == 9 {
				found = true
			}
		}
		if !found {
			t.Errorf("no gable reaching z 9 at x %g", x)
		}
	}
}

func TestBeamsAndCandles(t *testing.T) {
	cfg := defaultConfig()
	cfg.Beams = true
	cfg.Colours = map[level.LightOn]level.Colour{level.OnCeiling: {R: 9, G: 8, B: 7}}
	s := mustCompile(t, long(9), false, cfg)

	if n := len(s.Store().Polyhedra()); n != 10 {
		t.Errorf("polyhedra = %d, want 10", n)
	}
	ceiling := of(s.Store(), "ceiling")
	for _, x := range []float64{1, 5} {
		if !find(ceiling, v3.Vec{X: x, Y: 1, Z: 5.5}, v3.Vec{X: 0.5, Y: 3, Z: 0.5}) {
			t.Errorf("beam at x %g not found", x)
		}
	}

	lights := s.Lights()
	if len(lights) != 4 {
		t.Fatalf("candles = %+v", lights)
	}
	if lights[0].Pos != (v3.Vec{X: 3.25, Y: 1.25, Z: 5}) || lights[1].Pos != (v3.Vec{X: 3.25, Y: 3.75, Z: 5}) {
		t.Errorf("candles at %v and %v", lights[0].Pos, lights[1].Pos)
	}
	for _, l := range lights {
		if l.Colour != (level.Colour{R: 9, G: 8, B: 7}) || l.On != level.OnCeiling {
			t.Errorf("candle %+v", l)
		}
	}
}

func TestVerboseLogging(t *testing.T) {
	var buf bytes.Buffer
	cfg := defaultConfig()
	cfg.Logger = log.New(&buf, "", 0)
	cfg.Verbose = true
	mustCompile(t, boxRoom, false, cfg)
	out := buf.String()
	if !strings.Contains(out, "room 1: 4 wall and door pieces") || !strings.Contains(out, "cuboids") {
		t.Errorf("log = %q", out)
	}
}

func TestDeterministic(t *testing.T) {
	a := mustCompile(t, twoRoomsSecret, false, defaultConfig()).Store().Cuboids()
	b := mustCompile(t, twoRoomsSecret, false, defaultConfig()).Store().Cuboids()
	if len(a) != len(b) {
		t.Fatalf("%d cuboids vs %d", len(a), len(b))
	}
	for i := range a {
		if *a[i] != *b[i] {
			t.Errorf("cuboid %d differs: %s vs %s", i, a[i], b[i])
		}
	}
}

func TestVisportals(t *testing.T) {
	cfg := defaultConfig()
	cfg.Visportals = true
	s := mustCompile(t, twoRoomsOpen, true, cfg)

	portals := of(s.Store(), "portal")
	if len(portals) != 1 {
		t.Fatalf("portals = %v, want one", portals)
	}
	// Room 2 is a step down, so the portal starts on room 1's floor and
	// stops under the door head.
	want := v3.Vec{X: 4.4375, Y: 2, Z: 0}
	if p := portals[0]; p.Pos != want || p.Size != (v3.Vec{X: 0.125, Y: 1, Z: 5.5}) {
		t.Errorf("portal = %s", p)
	}

	if got := of(mustCompile(t, twoRoomsOpen, true, defaultConfig()).Store(), "portal"); len(got) != 0 {
		t.Errorf("portals built without the option: %v", got)
	}
	if got := of(mustCompile(t, twoRoomsSecret, false, cfg).Store(), "portal"); len(got) != 0 {
		t.Errorf("secret door got portals: %v", got)
	}
}

func TestOptimiseOff(t *testing.T) {
	cfg := defaultConfig()
	cfg.Optimise = false
	s := mustCompile(t, boxRoom, false, cfg)
	store := s.Store()

	// Every wall and floor cell stays its own cuboid; shared corners are
	// still submitted only once.
	if n := len(of(store, "wall")); n != 16 {
		t.Errorf("wall cuboids = %d, want 16", n)
	}
	if n := len(of(store, "floor")); n != 9 {
		t.Errorf("floor cuboids = %d, want 9", n)
	}
	if got := volume(of(store, "wall")); got != 128 {
		t.Errorf("wall volume = %g, want 128", got)
	}
	if store.Extended() != 0 {
		t.Errorf("Extended = %d with optimising off", store.Extended())
	}

	merged := mustCompile(t, boxRoom, false, defaultConfig()).Store()
	if merged.Len() >= store.Len() {
		t.Errorf("optimised store has %d cuboids, unoptimised %d", merged.Len(), store.Len())
	}
}

func TestConflictNamesTheRoom(t *testing.T) {
	src := `
ROOM 1
    WALL 0 0 0 4  0 4 4 4  4 4 4 0  4 0 0 0
    INSIDE AT 1 1
END
ROOM 2
    WALL 4 0 4 4  4 4 8 4  8 4 8 0  8 0 4 0
    INSIDE AT 5 1
    DEFAULT TEXTURE WALL textures/base_wall/lfwall13f3
END
END.
`
	_, err := compile(t, src, false, defaultConfig())
	e, ok := diag.As(err)
	if !ok || e.Kind != diag.Conflict {
		t.Fatalf("err = %v, want conflict", err)
	}
	if e.Room != 2 {
		t.Errorf("conflict attributed to room %d, want 2", e.Room)
	}
	if !strings.Contains(err.Error(), "room 2: brick is being overwritten") {
		t.Errorf("err = %v", err)
	}
}
