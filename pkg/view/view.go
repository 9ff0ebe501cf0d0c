// Package view shows a level plan in the terminal. Arrow keys move a
// cursor, the plan scrolls to keep it visible, and the bottom line
// describes the cell under the cursor.
package view

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/chazu/penmap/pkg/grid"
	"github.com/chazu/penmap/pkg/level"
)

var (
	wallStyle   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	roomStyle   = tcell.StyleDefault.Foreground(tcell.ColorDarkGreen)
	doorStyle   = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	cursorStyle = tcell.StyleDefault.Foreground(tcell.ColorWhite).Reverse(true)
	statusStyle = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorSilver)
)

// doorCell is a door as first declared, by the room it belongs to.
type doorCell struct {
	from level.RoomID
	door level.Door
}

// Viewer draws one map on a screen. The screen must already be
// initialised; the caller finalises it.
type Viewer struct {
	screen tcell.Screen
	m      *level.Map
	g      *grid.Grid
	doors  map[level.Point]doorCell

	cursor level.Point
	// left is the grid column in screen column 0, top the grid row in
	// screen row 0.
	left, top int
}

// New returns a viewer with the cursor on the first room's inside point.
func New(screen tcell.Screen, m *level.Map, g *grid.Grid) *Viewer {
	v := &Viewer{
		screen: screen,
		m:      m,
		g:      g,
		doors:  make(map[level.Point]doorCell),
		top:    g.Height() - 1,
	}
	for _, r := range m.Rooms() {
		for _, d := range r.Doors {
			for _, p := range d.Seg.Cells() {
				if _, seen := v.doors[p]; !seen {
					v.doors[p] = doorCell{from: r.ID, door: d}
				}
			}
		}
	}
	for _, r := range m.Rooms() {
		if r.Inside != nil {
			v.cursor = *r.Inside
			break
		}
	}
	return v
}

// Cursor returns the grid cell under the cursor.
func (v *Viewer) Cursor() level.Point { return v.cursor }

// Run draws and handles events until the user quits or the screen is
// finalised.
func (v *Viewer) Run() {
	for {
		v.Draw()
		ev := v.screen.PollEvent()
		if ev == nil {
			return
		}
		if !v.HandleEvent(ev) {
			return
		}
	}
}

// HandleEvent applies one event and reports whether the viewer should
// keep running.
func (v *Viewer) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyRune:
			if ev.Rune() == 'q' || ev.Rune() == 'Q' {
				return false
			}
		case tcell.KeyLeft:
			v.move(-1, 0)
		case tcell.KeyRight:
			v.move(1, 0)
		case tcell.KeyUp:
			v.move(0, 1)
		case tcell.KeyDown:
			v.move(0, -1)
		}
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return true
}

func (v *Viewer) move(dx, dy int) {
	p := v.cursor.Add(level.Point{X: dx, Y: dy})
	if v.g.InBounds(p.X, p.Y) {
		v.cursor = p
	}
}

// scroll keeps the cursor inside a w x rows window.
func (v *Viewer) scroll(w, rows int) {
	if v.cursor.X < v.left {
		v.left = v.cursor.X
	} else if v.cursor.X >= v.left+w {
		v.left = v.cursor.X - w + 1
	}
	if v.cursor.Y > v.top {
		v.top = v.cursor.Y
	} else if v.cursor.Y < v.top-rows+1 {
		v.top = v.cursor.Y + rows - 1
	}
}

// Draw renders the visible part of the plan and the status line.
func (v *Viewer) Draw() {
	w, h := v.screen.Size()
	rows := h - 1
	if w < 1 || rows < 1 {
		return
	}
	v.scroll(w, rows)
	v.screen.Clear()

	for sy := 0; sy < rows; sy++ {
		y := v.top - sy
		for sx := 0; sx < w; sx++ {
			x := v.left + sx
			ch, style := v.glyph(level.Point{X: x, Y: y})
			if x == v.cursor.X && y == v.cursor.Y {
				style = cursorStyle
			}
			v.screen.SetContent(sx, sy, ch, nil, style)
		}
	}

	status := []rune(v.Status())
	for sx := 0; sx < w; sx++ {
		ch := ' '
		if sx < len(status) {
			ch = status[sx]
		}
		v.screen.SetContent(sx, rows, ch, nil, statusStyle)
	}
	v.screen.Show()
}

func (v *Viewer) glyph(p level.Point) (rune, tcell.Style) {
	if dc, ok := v.doors[p]; ok {
		return rune(grid.DoorGlyph(dc.door)), doorStyle
	}
	switch v.g.At(p.X, p.Y) {
	case grid.Empty:
		return ' ', tcell.StyleDefault
	case grid.Wall:
		return '#', wallStyle
	default:
		return '.', roomStyle
	}
}

// Status describes the cell under the cursor.
func (v *Viewer) Status() string {
	p := v.cursor
	where := "outside"
	if dc, ok := v.doors[p]; ok {
		where = fmt.Sprintf("%s door, room %d to room %d", dc.door.Status, dc.from, dc.door.LeadsTo)
	} else if id, ok := v.g.RoomAt(p.X, p.Y); ok {
		where = fmt.Sprintf("room %d", id)
		if r := v.m.Get(id); r != nil {
			where += fmt.Sprintf(" floor %g", r.FloorLevel)
		}
	} else if v.g.At(p.X, p.Y) == grid.Wall {
		where = "wall"
	}
	return fmt.Sprintf(" %s  %d,%d  %s  (arrows move, q quits)", v.m.Name, p.X, p.Y, where)
}
