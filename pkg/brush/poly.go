package brush

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/penmap/pkg/diag"
)

// Face is an ordered list of vertex indices. The first three vertices fix
// the plane of the face.
type Face []int

// Polyhedron is a convex solid given by its vertices and faces.
type Polyhedron struct {
	ID        int
	Vertices  []v3.Vec
	Faces     []Face
	Material  string
	Transform string
}

// SubmitPolyhedron appends a polyhedron. Duplicate vertices and faces that
// index outside the vertex list are Structural errors.
func (s *Store) SubmitPolyhedron(vertices []v3.Vec, faces []Face, material, transform string) error {
	if err := checkVertices(vertices); err != nil {
		return err
	}
	for i, f := range faces {
		if len(f) < 3 {
			return diag.Newf(diag.Structural, "polyhedron face %d has %d vertices, need at least 3", i, len(f))
		}
		for _, j := range f {
			if j < 0 || j >= len(vertices) {
				return diag.Newf(diag.Structural, "polyhedron face %d references vertex %d of %d", i, j, len(vertices))
			}
		}
	}
	owned := make([]Face, len(faces))
	for i, f := range faces {
		owned[i] = append(Face(nil), f...)
	}
	p := &Polyhedron{
		ID:        len(s.polys) + 1,
		Vertices:  append([]v3.Vec(nil), vertices...),
		Faces:     owned,
		Material:  material,
		Transform: transform,
	}
	s.polys = append(s.polys, p)
	return nil
}

// Polyhedra returns the stored polyhedra in submission order.
func (s *Store) Polyhedra() []*Polyhedron {
	return s.polys
}

func checkVertices(vertices []v3.Vec) error {
	for i, p := range vertices {
		for j := i + 1; j < len(vertices); j++ {
			if p == vertices[j] {
				return diag.Newf(diag.Structural,
					"the polygon must not have duplicate vertices, %s at indices %d and %d", vecString(p), i, j)
			}
		}
	}
	return nil
}
