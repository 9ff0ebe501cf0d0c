package level

import (
	"github.com/chazu/penmap/pkg/diag"
	"github.com/samber/lo"
)

// Floor levelling constants, in pen units.
const (
	FloorStep = 0.25
	NoSteps   = 4
)

// Map is a parsed dungeon. Rooms keep their definition order, which is the
// order every later pass visits them in.
type Map struct {
	Name  string
	rooms map[RoomID]*Room
	order []RoomID
}

// NewMap returns an empty map named after its source.
func NewMap(name string) *Map {
	return &Map{
		Name:  name,
		rooms: make(map[RoomID]*Room),
	}
}

// Add registers a room. Redefining a room id is an error.
func (m *Map) Add(r *Room) error {
	if _, ok := m.rooms[r.ID]; ok {
		return diag.Roomf(diag.Parse, int(r.ID), "room %d has already been defined", r.ID)
	}
	m.rooms[r.ID] = r
	m.order = append(m.order, r.ID)
	return nil
}

// Get returns the room with the given id, or nil.
func (m *Map) Get(id RoomID) *Room {
	return m.rooms[id]
}

// Rooms returns the rooms in definition order.
func (m *Map) Rooms() []*Room {
	rooms := make([]*Room, 0, len(m.order))
	for _, id := range m.order {
		rooms = append(rooms, m.rooms[id])
	}
	return rooms
}

// Len returns the number of rooms.
func (m *Map) Len() int {
	return len(m.order)
}

// Bounds returns the bounding box of every wall in the map.
func (m *Map) Bounds() (lo, hi Point) {
	var walls []Segment
	for _, r := range m.Rooms() {
		walls = append(walls, r.Walls...)
	}
	return bounds(walls)
}

// SpawnRoom returns the first room holding a player spawn.
func (m *Map) SpawnRoom() (*Room, bool) {
	for _, r := range m.Rooms() {
		if len(r.Spawns) > 0 {
			return r, true
		}
	}
	return nil, false
}

// Neighbours returns the rooms reached through any door of room id.
func (m *Map) Neighbours(id RoomID) []RoomID {
	r := m.rooms[id]
	if r == nil {
		return nil
	}
	return lo.Uniq(lo.Map(r.Doors, func(d Door, _ int) RoomID { return d.LeadsTo }))
}

// VirtualRoom returns id together with every room joined to it through
// secret doors, in discovery order.
func (m *Map) VirtualRoom(id RoomID) []RoomID {
	members := []RoomID{id}
	queue := []RoomID{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		r := m.rooms[cur]
		if r == nil {
			continue
		}
		for _, d := range r.Doors {
			if d.Status != DoorSecret || lo.Contains(members, d.LeadsTo) {
				continue
			}
			members = append(members, d.LeadsTo)
			queue = append(queue, d.LeadsTo)
		}
	}
	return members
}

// VirtualNeighbours returns the rooms reached through non-secret doors of
// the virtual room containing id.
func (m *Map) VirtualNeighbours(id RoomID) []RoomID {
	virt := m.VirtualRoom(id)
	var out []RoomID
	for _, member := range virt {
		r := m.rooms[member]
		if r == nil {
			continue
		}
		for _, d := range r.Doors {
			if d.Status == DoorSecret {
				continue
			}
			if lo.Contains(virt, d.LeadsTo) || lo.Contains(out, d.LeadsTo) {
				continue
			}
			out = append(out, d.LeadsTo)
		}
	}
	return out
}

// AssignFloorLevels sets every room's floor level. Without steps every floor
// is at 0. With steps the virtual room holding the player spawn is at 0 and
// each ring of neighbours found breadth first sits one full flight of steps
// lower than the ring before it. It returns false when steps were requested
// but the map has no spawn room, in which case all floors are left at 0.
func (m *Map) AssignFloorLevels(stepped bool) bool {
	for _, r := range m.rooms {
		r.FloorLevel = 0
	}
	if !stepped {
		return true
	}
	spawn, ok := m.SpawnRoom()
	if !ok {
		return false
	}

	assigned := make(map[RoomID]bool)
	for _, id := range m.VirtualRoom(spawn.ID) {
		assigned[id] = true
	}
	level := -(FloorStep * NoSteps)
	queue := m.VirtualNeighbours(spawn.ID)
	for len(queue) > 0 {
		var next []RoomID
		for _, c := range queue {
			for _, id := range m.VirtualRoom(c) {
				r := m.rooms[id]
				if r == nil || assigned[id] {
					continue
				}
				assigned[id] = true
				r.FloorLevel = level
				next = append(next, m.VirtualNeighbours(id)...)
			}
		}
		queue = next
		level -= FloorStep * NoSteps
	}
	return true
}

// FloorRange returns the lowest and highest floor level. Both include 0.
func (m *Map) FloorRange() (lowest, highest float64) {
	for _, r := range m.rooms {
		lowest = min(lowest, r.FloorLevel)
		highest = max(highest, r.FloorLevel)
	}
	return lowest, highest
}
