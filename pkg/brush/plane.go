package brush

import (
	"math"

	"github.com/chazu/penmap/pkg/diag"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// planeTolerance bounds |n·p + d| for a vertex to count as on its face.
const planeTolerance = 1e-4

// Plane is n·p + Dist = 0 with a unit normal.
type Plane struct {
	Normal v3.Vec
	Dist   float64
}

// PlaneFromPoints returns the plane through p0, p1 and p2. The normal is
// (p2-p0) × (p1-p0), so the winding of the three points picks its side.
func PlaneFromPoints(p0, p1, p2 v3.Vec) (Plane, error) {
	v0 := p1.Sub(p0)
	v1 := p2.Sub(p0)
	n := v1.Cross(v0)
	l := n.Length()
	if l == 0 {
		return Plane{}, diag.Newf(diag.Structural, "face through %s %s %s is degenerate",
			vecString(p0), vecString(p1), vecString(p2))
	}
	n = n.MulScalar(1 / l)
	return Plane{Normal: n, Dist: -p0.Dot(n)}, nil
}

// Eval returns n·p + d, the signed distance of p from the plane.
func (pl Plane) Eval(p v3.Vec) float64 {
	return pl.Normal.Dot(p) + pl.Dist
}

// FacePlanes derives one plane per face and checks that every vertex of
// the face lies on it. A non-planar face is an Internal error.
func FacePlanes(vertices []v3.Vec, faces []Face) ([]Plane, error) {
	if err := checkVertices(vertices); err != nil {
		return nil, err
	}
	planes := make([]Plane, 0, len(faces))
	for i, f := range faces {
		if len(f) < 3 {
			return nil, diag.Newf(diag.Structural, "face %d has %d vertices", i, len(f))
		}
		pl, err := PlaneFromPoints(vertices[f[0]], vertices[f[1]], vertices[f[2]])
		if err != nil {
			return nil, err
		}
		for _, j := range f[3:] {
			if math.Abs(pl.Eval(vertices[j])) >= planeTolerance {
				return nil, diag.Newf(diag.Internal, "face %d is not planar, vertex %s is off the plane",
					i, vecString(vertices[j]))
			}
		}
		planes = append(planes, pl)
	}
	return planes, nil
}

// cubeFaces index the corners returned by CubePoints:
//
//	  6+-----+7
//	  /|    /|
//	5+-----+4|
//	 | |   | |
//	 |0+---|-+1
//	 |/    |/
//	3+-----+2
var cubeFaces = []Face{
	{2, 4, 3, 5}, // front
	{1, 7, 2, 4}, // right
	{3, 5, 0, 6}, // left
	{6, 7, 0, 1}, // back
	{5, 4, 6, 7}, // top
	{3, 0, 2, 1}, // bottom
}

// CubePoints returns the eight corners and six faces of the box from bot to
// top. bot must be the componentwise minimum.
func CubePoints(bot, top v3.Vec) ([]v3.Vec, []Face) {
	size := top.Sub(bot)
	pts := []v3.Vec{
		bot,
		bot.Add(v3.Vec{Y: size.Y}),
		bot.Add(v3.Vec{X: size.X, Y: size.Y}),
		bot.Add(v3.Vec{X: size.X}),
		top,
		top.Sub(v3.Vec{Y: size.Y}),
		top.Sub(v3.Vec{X: size.X, Y: size.Y}),
		top.Sub(v3.Vec{X: size.X}),
	}
	faces := make([]Face, len(cubeFaces))
	for i, f := range cubeFaces {
		faces[i] = append(Face(nil), f...)
	}
	return pts, faces
}

// RoofPoints returns a slanted box between the pen-space corners bot and
// top whose upper vertices are moved by shift. The faces are wound for the
// output frame, which has Z flipped.
func RoofPoints(bot, top, shift v3.Vec) ([]v3.Vec, []Face) {
	lo := flipZ(bot).Min(flipZ(top))
	hi := flipZ(bot).Max(flipZ(top))
	pts, faces := CubePoints(lo, hi)
	for i, p := range pts {
		if p.Z == lo.Z {
			p = p.Add(shift)
		}
		pts[i] = flipZ(p)
	}
	return pts, faces
}

func flipZ(v v3.Vec) v3.Vec {
	return v3.Vec{X: v.X, Y: v.Y, Z: -v.Z}
}
