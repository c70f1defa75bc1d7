package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("reservation not found")

	ErrUnknownRoom = errors.New("reservation references an unknown room")
)

// MalformedError reports a reservation file that could not be parsed.
type MalformedError struct {
	Line   int
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed reservation file at line %d: %s", e.Line, e.Reason)
}

// IOError wraps any failure to read or write a reservation file.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("reservation file %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// UnknownRoomError names the room a loaded reservation referred to.
type UnknownRoomError struct {
	Room string
	Line int
}

func (e *UnknownRoomError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: unknown room %q", e.Line, e.Room)
	}
	return fmt.Sprintf("unknown room %q", e.Room)
}

func (e *UnknownRoomError) Is(target error) bool {
	return target == ErrUnknownRoom
}
