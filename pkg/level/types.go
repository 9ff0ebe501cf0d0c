package level

import (
	"fmt"
	"strings"
)

// RoomID identifies a room. Ids are non-negative so they can share the grid
// cell space with the negative sentinels.
type RoomID int

// Point is an integer position on the pen grid.
type Point struct {
	X, Y int
}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Segment is a wall or door line between two grid points.
type Segment struct {
	A, B Point
}

// Seg is shorthand for a segment from (x0,y0) to (x1,y1).
func Seg(x0, y0, x1, y1 int) Segment {
	return Segment{A: Point{x0, y0}, B: Point{x1, y1}}
}

func (s Segment) String() string {
	return s.A.String() + "-" + s.B.String()
}

// IsVertical reports whether both endpoints share an x coordinate.
func (s Segment) IsVertical() bool { return s.A.X == s.B.X }

// IsHorizontal reports whether both endpoints share a y coordinate.
func (s Segment) IsHorizontal() bool { return s.A.Y == s.B.Y }

// AxisAligned reports whether the segment is horizontal or vertical.
func (s Segment) AxisAligned() bool { return s.IsVertical() || s.IsHorizontal() }

// Sorted returns the segment running bottom to top (vertical) or left to
// right (horizontal).
func (s Segment) Sorted() Segment {
	if s.IsVertical() {
		if s.A.Y > s.B.Y {
			return Segment{A: s.B, B: s.A}
		}
		return s
	}
	if s.A.X > s.B.X {
		return Segment{A: s.B, B: s.A}
	}
	return s
}

// Min is the lowest (vertical) or leftmost (horizontal) endpoint.
func (s Segment) Min() Point { return s.Sorted().A }

// Max is the highest (vertical) or rightmost (horizontal) endpoint.
func (s Segment) Max() Point { return s.Sorted().B }

// Other returns the endpoint of s that is not p. p must be an endpoint.
func (s Segment) Other(p Point) Point {
	if s.A == p {
		return s.B
	}
	return s.A
}

// Contains reports whether p lies on the segment, endpoints included.
func (s Segment) Contains(p Point) bool {
	lo, hi := s.Min(), s.Max()
	if s.IsVertical() {
		return p.X == lo.X && p.Y >= lo.Y && p.Y <= hi.Y
	}
	if s.IsHorizontal() {
		return p.Y == lo.Y && p.X >= lo.X && p.X <= hi.X
	}
	return false
}

// Covers reports whether o lies entirely on s.
func (s Segment) Covers(o Segment) bool {
	return s.Contains(o.A) && s.Contains(o.B)
}

// Cells returns every grid point on the segment, endpoints included.
func (s Segment) Cells() []Point {
	lo, hi := s.Min(), s.Max()
	var pts []Point
	if s.IsVertical() {
		for y := lo.Y; y <= hi.Y; y++ {
			pts = append(pts, Point{lo.X, y})
		}
		return pts
	}
	for x := lo.X; x <= hi.X; x++ {
		pts = append(pts, Point{x, lo.Y})
	}
	return pts
}

// DoorStatus is how a door can be passed.
type DoorStatus int

const (
	DoorOpen DoorStatus = iota
	DoorClosed
	DoorSecret
)

func (s DoorStatus) String() string {
	switch s {
	case DoorOpen:
		return "open"
	case DoorClosed:
		return "closed"
	case DoorSecret:
		return "secret"
	default:
		return fmt.Sprintf("DoorStatus(%d)", int(s))
	}
}

// Door is an opening in a wall of its room leading to another room.
type Door struct {
	Seg     Segment
	Status  DoorStatus
	LeadsTo RoomID
	Line    int
}

// Colour is an 8-bit RGB triple.
type Colour struct {
	R, G, B int
}

// DefaultColour is used for lights when neither the light nor its room
// names a colour.
var DefaultColour = Colour{R: 150, G: 150, B: 150}

// LightOn says where a light is mounted.
type LightOn int

const (
	OnMid LightOn = iota
	OnFloor
	OnCeiling
)

func (o LightOn) String() string {
	switch o {
	case OnMid:
		return "MID"
	case OnFloor:
		return "FLOOR"
	case OnCeiling:
		return "CEIL"
	default:
		return fmt.Sprintf("LightOn(%d)", int(o))
	}
}

// ParseLightOn maps a pen keyword to a mounting position.
func ParseLightOn(s string) (LightOn, bool) {
	switch strings.ToUpper(s) {
	case "MID":
		return OnMid, true
	case "FLOOR":
		return OnFloor, true
	case "CEIL", "CEILING":
		return OnCeiling, true
	}
	return 0, false
}

// Light is a light source marker.
type Light struct {
	At     Point
	Colour Colour
	On     LightOn
}

// Monster is a monster marker. Kind is the entity class.
type Monster struct {
	Kind string
	At   Point
}

// Ammo is an ammunition pickup.
type Ammo struct {
	Kind   string
	Amount int
	At     Point
}

// Weapon is a weapon pickup identified by its pen number.
type Weapon struct {
	Number int
	At     Point
}

var weaponClasses = []string{
	1: "weapon_pistol",
	2: "weapon_shotgun",
	3: "weapon_machinegun",
	4: "weapon_chaingun",
	5: "weapon_handgrenade",
	6: "weapon_plasmagun",
	7: "weapon_rocketlauncher",
	8: "weapon_bfg",
	9: "weapon_chainsaw",
}

// WeaponClass returns the entity class for a pen weapon number.
func WeaponClass(n int) (string, bool) {
	if n < 1 || n >= len(weaponClasses) {
		return "", false
	}
	return weaponClasses[n], true
}

// Label is a named marker.
type Label struct {
	Text string
	At   Point
}

// Sound is an ambient speaker.
type Sound struct {
	File    string
	At      Point
	Volume  int
	Looping bool
	Wait    int
}

// Plinth raises one floor cell. Height is in output units.
type Plinth struct {
	At     Point
	Height int
}

// Room is one room of the dungeon.
type Room struct {
	ID   RoomID
	Line int

	Walls  []Segment
	Doors  []Door
	Inside *Point

	// FloorLevel is in pen units and is assigned by Map.AssignFloorLevels.
	FloorLevel float64

	// Textures overrides global material names (wall, floor, ceiling, plinth).
	Textures map[string]string
	Colours  map[LightOn]Colour

	Lights   []Light
	Monsters []Monster
	Ammo     []Ammo
	Weapons  []Weapon
	Spawns   []Point
	Labels   []Label
	Sounds   []Sound
	Plinths  []Plinth
}

// NewRoom returns an empty room.
func NewRoom(id RoomID, line int) *Room {
	return &Room{
		ID:       id,
		Line:     line,
		Textures: make(map[string]string),
		Colours:  make(map[LightOn]Colour),
	}
}

// LightColour returns the room default for a mounting position, falling
// back to DefaultColour.
func (r *Room) LightColour(on LightOn) Colour {
	if c, ok := r.Colours[on]; ok {
		return c
	}
	return DefaultColour
}

// PlinthHeight returns the plinth height at p in pen units, or 0.
func (r *Room) PlinthHeight(p Point) float64 {
	for _, pl := range r.Plinths {
		if pl.At == p {
			return float64(pl.Height) / InchesPerUnit
		}
	}
	return 0
}

// Bounds returns the bounding box of the room's walls.
func (r *Room) Bounds() (lo, hi Point) {
	return bounds(r.Walls)
}

func bounds(walls []Segment) (lo, hi Point) {
	for i, w := range walls {
		if i == 0 {
			lo, hi = w.A, w.A
		}
		for _, p := range []Point{w.A, w.B} {
			lo.X, lo.Y = min(lo.X, p.X), min(lo.Y, p.Y)
			hi.X, hi.Y = max(hi.X, p.X), max(hi.Y, p.Y)
		}
	}
	return lo, hi
}

// InchesPerUnit is the number of output units in one pen grid unit.
const InchesPerUnit = 48
