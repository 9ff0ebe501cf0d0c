// Package kernel defines the geometry kernel used to build preview meshes
// of a compiled level. Only the operations the preview needs are part of
// the interface: boxes, translation, union and meshing.
package kernel

import v3 "github.com/deadsy/sdfx/vec/v3"

// Solid is an opaque handle to a kernel solid.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max v3.Vec)
}

// Kernel builds solids and meshes them.
type Kernel interface {
	// Box returns a box of the given size with its minimum corner at the
	// origin.
	Box(size v3.Vec) Solid
	Translate(s Solid, by v3.Vec) Solid
	// Union joins any number of solids. It returns nil for no solids.
	Union(solids ...Solid) Solid

	ToMesh(s Solid) (*Mesh, error)
}
