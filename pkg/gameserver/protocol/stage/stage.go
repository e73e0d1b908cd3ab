package stage

import "strconv"

// ID is the coarse phase of a match.
type ID int32

const (
	Setup ID = iota
	Active
	PostGame
	Voting
	Rotating
	// Returning is only reached in the lobby topology.
	Returning
)

func (s ID) String() string {
	switch s {
	case Setup:
		return "setup"
	case Active:
		return "active"
	case PostGame:
		return "post game"
	case Voting:
		return "voting"
	case Rotating:
		return "rotating"
	case Returning:
		return "returning"
	default:
		return strconv.Itoa(int(s))
	}
}

func Valid(s ID) bool {
	return s >= Setup && s <= Returning
}

// IsTerminal reports whether the stage only ends through a level reload.
func IsTerminal(s ID) bool {
	return s == Rotating || s == Returning
}
