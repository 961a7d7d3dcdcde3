package board

import "fmt"

// ParseError reports a malformed FEN field or move notation string
// encountered at an external boundary (FEN parsing, PACN parsing).
type ParseError struct {
	Field  string // which field/token failed to parse
	Value  string // the offending text
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("board: parse error in %s %q: %s", e.Field, e.Value, e.Reason)
}

// InvalidMoveError reports a move supplied by an external caller that is
// not pseudo-legal in the given position, or is pseudo-legal but leaves
// the mover's own king in check.
type InvalidMoveError struct {
	Move   Move
	Reason string
}

func (e *InvalidMoveError) Error() string {
	return fmt.Sprintf("board: invalid move %s: %s", e.Move, e.Reason)
}

// ResourceExhaustedError reports that a bounded, preallocated structure
// (the key-history stack backing repetition detection) has hit its
// configured ceiling and cannot grow further.
type ResourceExhaustedError struct {
	Resource string
	Limit    int
}

func (e *ResourceExhaustedError) Error() string {
	return fmt.Sprintf("board: %s exhausted its limit of %d", e.Resource, e.Limit)
}
