package level

import (
	"testing"

	"github.com/chazu/penmap/pkg/diag"
)

func TestAddDuplicateRoom(t *testing.T) {
	m := NewMap("dup.pen")
	if err := m.Add(NewRoom(1, 1)); err != nil {
		t.Fatalf("first add: %v", err)
	}
	err := m.Add(NewRoom(1, 9))
	if err == nil {
		t.Fatal("expected error for duplicate room")
	}
	if diag.KindOf(err) != diag.Parse {
		t.Errorf("kind = %s, want parse", diag.KindOf(err))
	}
}

func TestRoomsKeepDefinitionOrder(t *testing.T) {
	m := NewMap("order.pen")
	for _, id := range []RoomID{7, 2, 5} {
		if err := m.Add(NewRoom(id, 1)); err != nil {
			t.Fatal(err)
		}
	}
	rooms := m.Rooms()
	want := []RoomID{7, 2, 5}
	for i, r := range rooms {
		if r.ID != want[i] {
			t.Errorf("rooms[%d] = %d, want %d", i, r.ID, want[i])
		}
	}
}

func TestBounds(t *testing.T) {
	m := threeRooms()
	lo, hi := m.Bounds()
	if lo != (Point{0, 0}) || hi != (Point{12, 4}) {
		t.Errorf("Bounds() = %v %v", lo, hi)
	}
	lo, hi = m.Get(2).Bounds()
	if lo != (Point{4, 0}) || hi != (Point{8, 4}) {
		t.Errorf("room 2 Bounds() = %v %v", lo, hi)
	}
}

func TestVirtualRoom(t *testing.T) {
	m := threeRooms()

	got := m.VirtualRoom(2)
	if len(got) != 2 || got[0] != 2 || got[1] != 3 {
		t.Errorf("VirtualRoom(2) = %v, want [2 3]", got)
	}
	got = m.VirtualRoom(1)
	if len(got) != 1 || got[0] != 1 {
		t.Errorf("VirtualRoom(1) = %v, want [1]", got)
	}
	n := m.VirtualNeighbours(3)
	if len(n) != 1 || n[0] != 1 {
		t.Errorf("VirtualNeighbours(3) = %v, want [1]", n)
	}
	if nb := m.Neighbours(2); len(nb) != 2 {
		t.Errorf("Neighbours(2) = %v", nb)
	}
}

func TestAssignFloorLevels(t *testing.T) {
	m := threeRooms()
	if !m.AssignFloorLevels(true) {
		t.Fatal("expected a spawn room")
	}
	want := map[RoomID]float64{1: 0, 2: -1, 3: -1}
	for id, lvl := range want {
		if got := m.Get(id).FloorLevel; got != lvl {
			t.Errorf("room %d floor = %v, want %v", id, got, lvl)
		}
	}
	lowest, highest := m.FloorRange()
	if lowest != -1 || highest != 0 {
		t.Errorf("FloorRange() = %v %v", lowest, highest)
	}

	m.AssignFloorLevels(false)
	for _, r := range m.Rooms() {
		if r.FloorLevel != 0 {
			t.Errorf("room %d floor = %v after flat levelling", r.ID, r.FloorLevel)
		}
	}
}

func TestAssignFloorLevelsWithoutSpawn(t *testing.T) {
	m := threeRooms()
	m.Get(1).Spawns = nil
	if m.AssignFloorLevels(true) {
		t.Fatal("expected false without a spawn room")
	}
	for _, r := range m.Rooms() {
		if r.FloorLevel != 0 {
			t.Errorf("room %d floor = %v", r.ID, r.FloorLevel)
		}
	}
}

func TestSegmentHelpers(t *testing.T) {
	s := Seg(3, 5, 3, 1)
	if !s.IsVertical() || s.IsHorizontal() {
		t.Fatal("expected vertical")
	}
	if s.Sorted() != Seg(3, 1, 3, 5) {
		t.Errorf("Sorted() = %v", s.Sorted())
	}
	if !s.Contains(Point{3, 4}) || s.Contains(Point{3, 6}) {
		t.Error("Contains is wrong")
	}
	if !s.Covers(Seg(3, 2, 3, 3)) {
		t.Error("Covers should accept an inner span")
	}
	if n := len(s.Cells()); n != 5 {
		t.Errorf("Cells() has %d points, want 5", n)
	}
	if Seg(0, 0, 2, 3).AxisAligned() {
		t.Error("diagonal segment reported as axis aligned")
	}
}
