package level

// boxRoom returns a room whose walls trace the rectangle (x0,y0)-(x1,y1).
func boxRoom(id RoomID, x0, y0, x1, y1 int) *Room {
	r := NewRoom(id, 1)
	r.Walls = []Segment{
		Seg(x0, y0, x0, y1),
		Seg(x0, y1, x1, y1),
		Seg(x1, y1, x1, y0),
		Seg(x1, y0, x0, y0),
	}
	r.Inside = &Point{X: x0 + 1, Y: y0 + 1}
	return r
}

// threeRooms builds rooms 1 | 2 | 3 in a row. 1 and 2 share an open door,
// 2 and 3 a secret door. The player spawns in room 1.
func threeRooms() *Map {
	m := NewMap("three.pen")
	r1 := boxRoom(1, 0, 0, 4, 4)
	r2 := boxRoom(2, 4, 0, 8, 4)
	r3 := boxRoom(3, 8, 0, 12, 4)
	r1.Doors = []Door{{Seg: Seg(4, 2, 4, 2), Status: DoorOpen, LeadsTo: 2}}
	r2.Doors = []Door{
		{Seg: Seg(4, 2, 4, 2), Status: DoorOpen, LeadsTo: 1},
		{Seg: Seg(8, 1, 8, 2), Status: DoorSecret, LeadsTo: 3},
	}
	r3.Doors = []Door{{Seg: Seg(8, 1, 8, 2), Status: DoorSecret, LeadsTo: 2}}
	r1.Spawns = []Point{{1, 1}}
	for _, r := range []*Room{r1, r2, r3} {
		if err := m.Add(r); err != nil {
			panic(err)
		}
	}
	return m
}
