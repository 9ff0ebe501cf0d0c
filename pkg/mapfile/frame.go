// Package mapfile writes a compiled level as a Doom 3 .map file.
package mapfile

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/penmap/pkg/brush"
	"github.com/chazu/penmap/pkg/diag"
	"github.com/chazu/penmap/pkg/level"
)

// MaxUnits bounds every output coordinate.
const MaxUnits = 5000

// Frame maps pen coordinates (Z up) to output units. Translate moves the
// map's lowest corner to the origin and negates Z; Units scales every axis
// by -level.InchesPerUnit. Together: x' = -48(x-minX), y' = -48(y-minY),
// z' = 48z.
type Frame struct {
	MinX, MinY int
}

// NewFrame returns the frame of m.
func NewFrame(m *level.Map) Frame {
	lo, _ := m.Bounds()
	return Frame{MinX: lo.X, MinY: lo.Y}
}

// Translate moves p into the map-relative frame with Z pointing down.
func (f Frame) Translate(p v3.Vec) v3.Vec {
	return v3.Vec{X: p.X - float64(f.MinX), Y: p.Y - float64(f.MinY), Z: -p.Z}
}

// Units converts a translated point to output units.
func Units(p v3.Vec) (v3.Vec, error) {
	q := p.MulScalar(-level.InchesPerUnit)
	for _, c := range []float64{q.X, q.Y, q.Z} {
		if math.Abs(c) >= MaxUnits {
			return v3.Vec{}, diag.Newf(diag.Limit,
				"map is too large, it must not exceed %d output units or %d pen units square",
				MaxUnits, MaxUnits/level.InchesPerUnit)
		}
	}
	return q, nil
}

// Point converts a pen point to output units.
func (f Frame) Point(p v3.Vec) (v3.Vec, error) {
	return Units(f.Translate(p))
}

// CuboidPoints returns the corners and faces of c in output units.
func (f Frame) CuboidPoints(c *brush.Cuboid) ([]v3.Vec, []brush.Face, error) {
	a, b := f.Translate(c.Pos), f.Translate(c.End)
	pts, faces := brush.CubePoints(a.Min(b), a.Max(b))
	out, err := f.units(pts)
	return out, faces, err
}

// PolyhedronPoints returns the vertices of p in output units.
func (f Frame) PolyhedronPoints(p *brush.Polyhedron) ([]v3.Vec, error) {
	pts := make([]v3.Vec, len(p.Vertices))
	for i, v := range p.Vertices {
		pts[i] = f.Translate(v)
	}
	return f.units(pts)
}

func (f Frame) units(pts []v3.Vec) ([]v3.Vec, error) {
	out := make([]v3.Vec, len(pts))
	for i, p := range pts {
		q, err := Units(p)
		if err != nil {
			return nil, err
		}
		out[i] = q
	}
	return out, nil
}
