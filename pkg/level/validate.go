package level

import (
	"fmt"

	"github.com/chazu/penmap/pkg/diag"
)

// ValidationSeverity indicates whether a finding stops the compile or is
// only reported.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks compilation
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// NoRoom marks a finding about the map as a whole.
const NoRoom RoomID = -1

// ValidationError describes a single validation finding.
type ValidationError struct {
	Room     RoomID
	Line     int
	Message  string
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	if e.Room == NoRoom {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] room %d: %s", e.Severity, e.Room, e.Message)
}

// ValidationResult separates blocking errors from warnings.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// Err returns the first blocking finding as a fatal error, or nil.
func (r ValidationResult) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	e := r.Errors[0]
	return diag.Roomf(diag.Structural, int(e.Room), "%s", e.Message)
}

// Validate runs the structural checks on the map description. It is
// read-only and never mutates the map.
func Validate(m *Map) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateWalls(m)...)
	errs = append(errs, validateDoors(m)...)
	errs = append(errs, validateInside(m)...)
	return errs
}

// ValidateAll runs Validate plus the advisory checks.
func ValidateAll(m *Map) ValidationResult {
	var result ValidationResult
	for _, e := range Validate(m) {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, e)
		} else {
			result.Errors = append(result.Errors, e)
		}
	}
	result.Warnings = append(result.Warnings, validateMirroredDoors(m)...)
	result.Warnings = append(result.Warnings, validateSpawns(m)...)
	return result
}

func validateWalls(m *Map) []ValidationError {
	var errs []ValidationError
	for _, r := range m.Rooms() {
		if len(r.Walls) == 0 {
			errs = append(errs, ValidationError{
				Room:     r.ID,
				Line:     r.Line,
				Message:  "room has no walls",
				Severity: SeverityError,
			})
		}
		for _, w := range r.Walls {
			if !w.AxisAligned() {
				errs = append(errs, ValidationError{
					Room:     r.ID,
					Line:     r.Line,
					Message:  fmt.Sprintf("wall %s must be horizontal or vertical", w),
					Severity: SeverityError,
				})
			}
			if w.A.X < 0 || w.A.Y < 0 || w.B.X < 0 || w.B.Y < 0 {
				errs = append(errs, ValidationError{
					Room:     r.ID,
					Line:     r.Line,
					Message:  fmt.Sprintf("wall %s has a negative coordinate", w),
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

func validateDoors(m *Map) []ValidationError {
	var errs []ValidationError
	for _, r := range m.Rooms() {
		for _, d := range r.Doors {
			if !d.Seg.AxisAligned() {
				errs = append(errs, ValidationError{
					Room:     r.ID,
					Line:     d.Line,
					Message:  fmt.Sprintf("door %s must be horizontal or vertical", d.Seg),
					Severity: SeverityError,
				})
				continue
			}
			if d.LeadsTo == r.ID {
				errs = append(errs, ValidationError{
					Room:     r.ID,
					Line:     d.Line,
					Message:  fmt.Sprintf("door %s leads back into its own room", d.Seg),
					Severity: SeverityError,
				})
			} else if m.Get(d.LeadsTo) == nil {
				errs = append(errs, ValidationError{
					Room:     r.ID,
					Line:     d.Line,
					Message:  fmt.Sprintf("door %s leads to room %d which does not exist", d.Seg, d.LeadsTo),
					Severity: SeverityError,
				})
			}
			if !doorOnWall(r, d) {
				errs = append(errs, ValidationError{
					Room:     r.ID,
					Line:     d.Line,
					Message:  fmt.Sprintf("door %s does not lie on a wall", d.Seg),
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

func doorOnWall(r *Room, d Door) bool {
	for _, w := range r.Walls {
		if w.AxisAligned() && w.Covers(d.Seg) {
			return true
		}
	}
	return false
}

func validateInside(m *Map) []ValidationError {
	var errs []ValidationError
	for _, r := range m.Rooms() {
		if r.Inside == nil {
			errs = append(errs, ValidationError{
				Room:     r.ID,
				Line:     r.Line,
				Message:  "room must have an inside position",
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateMirroredDoors warns when a door has no twin in the room it leads to.
func validateMirroredDoors(m *Map) []ValidationError {
	var warns []ValidationError
	for _, r := range m.Rooms() {
		for _, d := range r.Doors {
			other := m.Get(d.LeadsTo)
			if other == nil {
				continue
			}
			found := false
			for _, od := range other.Doors {
				if od.LeadsTo == r.ID && sameSegment(od.Seg, d.Seg) {
					found = true
					break
				}
			}
			if !found {
				warns = append(warns, ValidationError{
					Room:     r.ID,
					Line:     d.Line,
					Message:  fmt.Sprintf("door %s is not declared in room %d", d.Seg, d.LeadsTo),
					Severity: SeverityWarning,
				})
			}
		}
	}
	return warns
}

func sameSegment(a, b Segment) bool {
	return a.Sorted() == b.Sorted()
}

func validateSpawns(m *Map) []ValidationError {
	n := 0
	for _, r := range m.Rooms() {
		n += len(r.Spawns)
	}
	switch {
	case n == 0:
		return []ValidationError{{Room: NoRoom, Message: "no player spawn point", Severity: SeverityWarning}}
	case n > 1:
		return []ValidationError{{Room: NoRoom, Message: fmt.Sprintf("%d player spawn points, only the first is used", n), Severity: SeverityWarning}}
	}
	return nil
}

// CellLookup answers which room owns a grid cell after flood filling.
type CellLookup interface {
	RoomAt(x, y int) (RoomID, bool)
}

// ValidateGrid checks the flood-filled grid against the map: every room's
// seed cell must carry its own id, and every door must separate cells of the
// two rooms it joins. A leaking wall polygon shows up here.
func ValidateGrid(m *Map, cells CellLookup) []ValidationError {
	var errs []ValidationError
	for _, r := range m.Rooms() {
		if r.Inside == nil {
			continue
		}
		got, ok := cells.RoomAt(r.Inside.X, r.Inside.Y)
		if !ok || got != r.ID {
			msg := fmt.Sprintf("inside position %s is not enclosed by the room's walls", r.Inside)
			if ok {
				msg = fmt.Sprintf("inside position %s was flooded by room %d; walls do not form a bounded room", r.Inside, got)
			}
			errs = append(errs, ValidationError{Room: r.ID, Line: r.Line, Message: msg, Severity: SeverityError})
			continue
		}
		for _, d := range r.Doors {
			if !doorSeparates(cells, d, r.ID) {
				errs = append(errs, ValidationError{
					Room:     r.ID,
					Line:     d.Line,
					Message:  fmt.Sprintf("door %s does not separate room %d from room %d", d.Seg, r.ID, d.LeadsTo),
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

func doorSeparates(cells CellLookup, d Door, id RoomID) bool {
	var steps []Point
	if d.Seg.IsVertical() {
		steps = append(steps, Point{X: 1})
	}
	if d.Seg.IsHorizontal() {
		steps = append(steps, Point{Y: 1})
	}
	for _, step := range steps {
		if separatesAlong(cells, d, id, step) {
			return true
		}
	}
	return false
}

func separatesAlong(cells CellLookup, d Door, id RoomID, step Point) bool {
	for _, p := range d.Seg.Cells() {
		a, okA := cells.RoomAt(p.X-step.X, p.Y-step.Y)
		b, okB := cells.RoomAt(p.X+step.X, p.Y+step.Y)
		if !okA || !okB {
			return false
		}
		if !(a == id && b == d.LeadsTo) && !(a == d.LeadsTo && b == id) {
			return false
		}
	}
	return true
}
