package sdfx

import (
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

func near(a, b v3.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol && math.Abs(a.Z-b.Z) <= tol
}

func TestBox(t *testing.T) {
	k := New(40)
	mesh, err := k.ToMesh(k.Box(v3.Vec{X: 4, Y: 2, Z: 1}))
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	if len(mesh.Vertices) != len(mesh.Normals) {
		t.Fatalf("vertices length %d != normals length %d", len(mesh.Vertices), len(mesh.Normals))
	}
	if len(mesh.Indices) != mesh.TriangleCount()*3 {
		t.Fatalf("indices length %d != triCount*3 %d", len(mesh.Indices), mesh.TriangleCount()*3)
	}
}

func TestBoxCorner(t *testing.T) {
	k := New(0)
	min, max := k.Box(v3.Vec{X: 4, Y: 2, Z: 1}).BoundingBox()
	if !near(min, v3.Vec{}, 1e-9) || !near(max, v3.Vec{X: 4, Y: 2, Z: 1}, 1e-9) {
		t.Errorf("box bounds = %v %v, want origin to size", min, max)
	}
}

func TestTranslate(t *testing.T) {
	k := New(0)
	moved := k.Translate(k.Box(v3.Vec{X: 1, Y: 1, Z: 1}), v3.Vec{X: 10, Y: 20, Z: -3})
	min, max := moved.BoundingBox()
	if !near(min, v3.Vec{X: 10, Y: 20, Z: -3}, 1e-9) || !near(max, v3.Vec{X: 11, Y: 21, Z: -2}, 1e-9) {
		t.Errorf("translated bounds = %v %v", min, max)
	}
}

func TestUnion(t *testing.T) {
	k := New(60)
	a := k.Box(v3.Vec{X: 1, Y: 1, Z: 1})
	b := k.Translate(k.Box(v3.Vec{X: 1, Y: 1, Z: 1}), v3.Vec{X: 3})
	u := k.Union(a, nil, b)
	min, max := u.BoundingBox()
	if !near(min, v3.Vec{}, 1e-9) || !near(max, v3.Vec{X: 4, Y: 1, Z: 1}, 1e-9) {
		t.Errorf("union bounds = %v %v", min, max)
	}
	mesh, err := k.ToMesh(u)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("union mesh is empty")
	}
	t.Logf("union triangle count: %d", mesh.TriangleCount())
}

func TestEmptyUnion(t *testing.T) {
	k := New(0)
	if k.Union() != nil {
		t.Fatal("empty union is not nil")
	}
	mesh, err := k.ToMesh(nil)
	if err != nil || !mesh.IsEmpty() {
		t.Errorf("ToMesh(nil) = %v, %v", mesh, err)
	}
}

func TestDegenerateBox(t *testing.T) {
	k := New(0)
	if s := k.Box(v3.Vec{X: -1, Y: 1, Z: 1}); s != nil {
		t.Fatal("negative box built")
	}
	if _, err := k.ToMesh(nil); err == nil {
		t.Fatal("degenerate box not reported")
	}
	if _, err := k.ToMesh(nil); err != nil {
		t.Fatalf("error reported twice: %v", err)
	}
}
