// Package diag defines the single fatal error type used by every stage of
// the penmap compiler. Nothing in the compiler recovers from an error: any
// *Error unwinds to the driver, which reports it and exits.
package diag

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a fatal error.
type Kind int

const (
	Structural Kind = iota // unbounded room, bad wall polygon, missing seed
	Conflict               // interpenetrating bricks of different materials
	Lookup                 // material or transform not found in any scope
	Parse                  // malformed pen source
	Internal               // broken invariant inside the compiler
	Limit                  // map exceeds the output coordinate range
)

func (k Kind) String() string {
	switch k {
	case Structural:
		return "structural"
	case Conflict:
		return "conflict"
	case Lookup:
		return "lookup"
	case Parse:
		return "parse"
	case Internal:
		return "internal"
	case Limit:
		return "limit"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// NoRoom marks an error that is not attributed to a room.
const NoRoom = -1

// Error is a fatal compile error.
type Error struct {
	Kind    Kind
	Room    int // room id, or NoRoom
	Line    int // source line, 0 if unknown
	Message string
}

func (e *Error) Error() string {
	switch {
	case e.Line > 0 && e.Room != NoRoom:
		return fmt.Sprintf("line %d: room %d: %s", e.Line, e.Room, e.Message)
	case e.Line > 0:
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	case e.Room != NoRoom:
		return fmt.Sprintf("room %d: %s", e.Room, e.Message)
	default:
		return e.Message
	}
}

// Newf returns a fatal error of the given kind with a stack attached.
func Newf(kind Kind, format string, args ...interface{}) error {
	return errors.WithStack(&Error{Kind: kind, Room: NoRoom, Message: fmt.Sprintf(format, args...)})
}

// Roomf returns a fatal error attributed to room.
func Roomf(kind Kind, room int, format string, args ...interface{}) error {
	return errors.WithStack(&Error{Kind: kind, Room: room, Message: fmt.Sprintf(format, args...)})
}

// Linef returns a parse error for a source line.
func Linef(line int, format string, args ...interface{}) error {
	return errors.WithStack(&Error{Kind: Parse, Room: NoRoom, Line: line, Message: fmt.Sprintf(format, args...)})
}

// InRoom attributes err to room unless it already names one. Errors from
// outside this package are returned unchanged.
func InRoom(err error, room int) error {
	if e, ok := As(err); ok && e.Room == NoRoom {
		e.Room = room
	}
	return err
}

// As extracts the *Error at the root of err, if any.
func As(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	e, ok := errors.Cause(err).(*Error)
	return e, ok
}

// KindOf reports the kind of err, or Internal when err did not come from
// this package.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return Internal
}
