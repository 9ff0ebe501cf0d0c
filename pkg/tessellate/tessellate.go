// Package tessellate turns a compiled brush store into triangle meshes
// using a geometry kernel. One mesh is produced per material.
package tessellate

import (
	"sort"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"

	"github.com/chazu/penmap/pkg/brush"
	"github.com/chazu/penmap/pkg/kernel"
)

// Tessellate meshes every solid in the store, in pen units with Z up.
// Cuboids become kernel boxes; polyhedra are approximated by their
// bounding boxes. Meshes are ordered by material name. The store is never
// mutated.
func Tessellate(s *brush.Store, k kernel.Kernel) ([]*kernel.Mesh, error) {
	if s == nil {
		return nil, nil
	}

	solids := make(map[string][]kernel.Solid)
	for _, c := range s.Cuboids() {
		solids[c.Material] = append(solids[c.Material], k.Translate(k.Box(c.Size), c.Pos))
	}
	for _, p := range s.Polyhedra() {
		lo, hi := bounds(p.Vertices)
		solids[p.Material] = append(solids[p.Material], k.Translate(k.Box(hi.Sub(lo)), lo))
	}

	materials := make([]string, 0, len(solids))
	for m := range solids {
		materials = append(materials, m)
	}
	sort.Strings(materials)

	meshes := make([]*kernel.Mesh, 0, len(materials))
	for _, m := range materials {
		mesh, err := k.ToMesh(k.Union(solids[m]...))
		if err != nil {
			return nil, errors.Wrapf(err, "tessellate: meshing %s", m)
		}
		mesh.PartName = m
		meshes = append(meshes, mesh)
	}
	return meshes, nil
}

func bounds(pts []v3.Vec) (lo, hi v3.Vec) {
	for i, p := range pts {
		if i == 0 {
			lo, hi = p, p
			continue
		}
		lo, hi = lo.Min(p), hi.Max(p)
	}
	return lo, hi
}
