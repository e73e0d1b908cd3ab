package role

import (
	"strconv"
	"strings"
)

// ID says whether a peer may mutate match state.
type ID int32

const (
	Replica ID = iota
	Authority
)

func Parse(s string) ID {
	switch strings.ToLower(s) {
	case "replica", "client", "peer":
		return Replica
	case "authority", "host", "server":
		return Authority
	default:
		return -1
	}
}

func (r ID) String() string {
	switch r {
	case Replica:
		return "replica"
	case Authority:
		return "authority"
	default:
		return strconv.Itoa(int(r))
	}
}

func (r ID) IsAuthority() bool {
	return r == Authority
}
