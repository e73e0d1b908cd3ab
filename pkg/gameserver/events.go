package gameserver

import (
	"github.com/arbiterfps/arbiter/pkg/gameserver/game"
)

// Event is anything the event loop applies between ticks.
type Event interface{}

type JoinResult struct {
	Team game.TeamID
	Err  error
}

// JoinEvent adds a participant. Team is a preference; NoTeam lets the
// server choose.
type JoinEvent struct {
	Key   game.Key
	Name  string
	Team  game.TeamID
	Reply chan<- JoinResult
}

type LeaveEvent struct {
	Key game.Key
}

// FragEvent reports that Victim died. Fragger is the same as Victim for
// suicides and environment deaths.
type FragEvent struct {
	Fragger game.Key
	Victim  game.Key
	Melee   bool
}

type ZoneEvent struct {
	Key       game.Key
	Objective int
	Inside    bool
}

type VoteEvent struct {
	Key    game.Key
	Choice int
	Reply  chan<- error
}

type RespawnEvent struct {
	Key   game.Key
	Reply chan<- *game.SpawnPoint
}

type PauseEvent struct {
	Paused bool
}
