// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"

	"github.com/chazu/penmap/pkg/kernel"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// DefaultMeshCells is the marching cubes resolution along the longest axis.
const DefaultMeshCells = 200

type sdfxSolid struct {
	s sdf.SDF3
}

func (s *sdfxSolid) BoundingBox() (min, max v3.Vec) {
	bb := s.s.BoundingBox()
	return bb.Min, bb.Max
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	cells int
	err   error
}

// New returns a kernel meshing with the given resolution. Non-positive
// values select DefaultMeshCells.
func New(cells int) *SdfxKernel {
	if cells <= 0 {
		cells = DefaultMeshCells
	}
	return &SdfxKernel{cells: cells}
}

func unwrap(s kernel.Solid) sdf.SDF3 {
	return s.(*sdfxSolid).s
}

func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

// Box creates a box with its minimum corner at the origin. sdf.Box3D
// centres the box, so it is shifted by half its size. A degenerate size
// is remembered and reported by the next ToMesh.
func (k *SdfxKernel) Box(size v3.Vec) kernel.Solid {
	s, err := sdf.Box3D(size, 0)
	if err != nil {
		if k.err == nil {
			k.err = errors.Wrapf(err, "box %v", size)
		}
		return nil
	}
	return wrap(sdf.Transform3D(s, sdf.Translate3d(size.MulScalar(0.5))))
}

// Translate moves a solid.
func (k *SdfxKernel) Translate(s kernel.Solid, by v3.Vec) kernel.Solid {
	if s == nil {
		return nil
	}
	return wrap(sdf.Transform3D(unwrap(s), sdf.Translate3d(by)))
}

// Union returns the union of the solids, skipping nil ones.
func (k *SdfxKernel) Union(solids ...kernel.Solid) kernel.Solid {
	var parts []sdf.SDF3
	for _, s := range solids {
		if s != nil {
			parts = append(parts, unwrap(s))
		}
	}
	switch len(parts) {
	case 0:
		return nil
	case 1:
		return wrap(parts[0])
	}
	return wrap(sdf.Union3D(parts...))
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	if k.err != nil {
		err := k.err
		k.err = nil
		return nil, err
	}
	if s == nil {
		return &kernel.Mesh{}, nil
	}

	renderer := render.NewMarchingCubesUniform(k.cells)
	triangles := render.ToTriangles(unwrap(s), renderer)

	numVerts := len(triangles) * 3
	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		n := tri.Normal()
		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, float32(n.X), float32(n.Y), float32(n.Z))
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}
