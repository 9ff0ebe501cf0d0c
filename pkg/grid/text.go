package grid

import (
	"bufio"
	"io"

	"github.com/chazu/penmap/pkg/level"
)

// RenderText writes the map as ASCII art: walls '#', open doors '.',
// closed doors '|' or '-', secret doors '='. The highest row is written
// first and column 0 is omitted.
func RenderText(w io.Writer, m *level.Map) error {
	_, hi := m.Bounds()
	width, height := hi.X+1, hi.Y+1
	rows := make([][]byte, height)
	for y := range rows {
		rows[y] = make([]byte, width)
		for x := range rows[y] {
			rows[y][x] = ' '
		}
	}
	plot := func(s level.Segment, c byte) {
		for _, p := range s.Cells() {
			if p.X >= 0 && p.Y >= 0 && p.X < width && p.Y < height {
				rows[p.Y][p.X] = c
			}
		}
	}
	for _, r := range m.Rooms() {
		for _, wall := range r.Walls {
			plot(wall, '#')
		}
		for _, d := range r.Doors {
			plot(d.Seg, DoorGlyph(d))
		}
	}

	bw := bufio.NewWriter(w)
	for y := height - 1; y >= 0; y-- {
		if width > 1 {
			bw.Write(rows[y][1:])
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// DoorGlyph is the plan character of a door.
func DoorGlyph(d level.Door) byte {
	switch d.Status {
	case level.DoorClosed:
		if d.Seg.IsVertical() {
			return '|'
		}
		return '-'
	case level.DoorSecret:
		return '='
	default:
		return '.'
	}
}
