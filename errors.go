package restql

import "fmt"

// ParsingError reports SQL that the PostgreSQL parser rejected.
// CursorPos is the byte offset into the source where parsing stopped;
// Hint is a short classification of the likely cause, when one can be derived.
type ParsingError struct {
	Message   string
	Hint      string
	CursorPos int
}

// Error implements the error interface.
func (e *ParsingError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("parse error at position %d: %s (%s)", e.CursorPos, e.Message, e.Hint)
	}
	return fmt.Sprintf("parse error at position %d: %s", e.CursorPos, e.Message)
}

// UnsupportedError reports valid SQL that uses a construct outside the
// translatable subset. The message names the construct.
type UnsupportedError struct {
	Message string
}

// Error implements the error interface.
func (e *UnsupportedError) Error() string {
	return e.Message
}

// UnimplementedError reports a construct that is inside the intended subset
// but has not been built yet, so callers can tell "wait" from "give up".
type UnimplementedError struct {
	Message string
}

// Error implements the error interface.
func (e *UnimplementedError) Error() string {
	return e.Message
}

// RenderError reports a well-formed statement that the chosen renderer
// cannot express.
type RenderError struct {
	Message string
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	return e.Message
}

func unsupportedf(format string, args ...any) error {
	return &UnsupportedError{Message: fmt.Sprintf(format, args...)}
}

func unimplementedf(format string, args ...any) error {
	return &UnimplementedError{Message: fmt.Sprintf(format, args...)}
}
