// Package plan draws the top-down plan of a level as an image.
package plan

import (
	"github.com/gogpu/gg"
	"github.com/pkg/errors"

	"github.com/chazu/penmap/pkg/grid"
	"github.com/chazu/penmap/pkg/level"
)

// Palette colours rooms in map order, repeating when there are more rooms
// than colours.
var Palette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// Fixed colours of the plan.
var (
	Background = gg.Hex("#FFFFFF")
	WallColour = gg.Hex("#2C2C2C")
	OpenDoor   = gg.Hex("#F5DEB3")
	ClosedDoor = gg.Hex("#8B4513")
	SecretDoor = gg.Hex("#B22222")
)

// RoomColour returns the palette colour of the i-th room.
func RoomColour(i int) string {
	return Palette[i%len(Palette)]
}

// DoorColour returns the plan colour of a door.
func DoorColour(s level.DoorStatus) gg.RGBA {
	switch s {
	case level.DoorClosed:
		return ClosedDoor
	case level.DoorSecret:
		return SecretDoor
	default:
		return OpenDoor
	}
}

// Render draws g with cellPx pixels per cell. The highest row is drawn at
// the top of the image.
func Render(m *level.Map, g *grid.Grid, cellPx int) (*gg.Context, error) {
	if cellPx < 1 {
		return nil, errors.Errorf("plan: cell size %d must be positive", cellPx)
	}
	if g.Width() == 0 || g.Height() == 0 {
		return nil, errors.New("plan: empty grid")
	}

	index := make(map[level.RoomID]int, m.Len())
	for i, r := range m.Rooms() {
		index[r.ID] = i
	}

	dc := gg.NewContext(g.Width()*cellPx, g.Height()*cellPx)
	dc.ClearWithColor(Background)

	cell := func(x, y int, c gg.RGBA) error {
		dc.SetColor(c.Color())
		dc.DrawRectangle(float64(x*cellPx), float64((g.Height()-1-y)*cellPx), float64(cellPx), float64(cellPx))
		return dc.Fill()
	}

	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			var c gg.RGBA
			switch v := g.At(x, y); v {
			case grid.Empty:
				continue
			case grid.Wall:
				c = WallColour
			default:
				c = gg.Hex(RoomColour(index[level.RoomID(v)]))
			}
			if err := cell(x, y, c); err != nil {
				return nil, errors.Wrapf(err, "plan: drawing cell %d,%d", x, y)
			}
		}
	}
	for _, r := range m.Rooms() {
		for _, d := range r.Doors {
			for _, p := range d.Seg.Cells() {
				if !g.InBounds(p.X, p.Y) {
					continue
				}
				if err := cell(p.X, p.Y, DoorColour(d.Status)); err != nil {
					return nil, errors.Wrapf(err, "plan: drawing door of room %d", r.ID)
				}
			}
		}
	}
	return dc, nil
}
