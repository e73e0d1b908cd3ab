package game

import (
	opt "github.com/repeale/fp-go/option"

	"github.com/arbiterfps/arbiter/pkg/gameserver/protocol/gamemode"
	"github.com/arbiterfps/arbiter/pkg/gameserver/protocol/stage"
)

// killLeader returns the single participant holding the most kills among
// those with at least limit kills. A shared maximum has no leader.
func killLeader(views []PlayerView, limit int) opt.Option[PlayerView] {
	var (
		leader PlayerView
		best   = -1
		shared bool
	)

	for _, view := range views {
		if view.Kills < limit {
			continue
		}
		switch {
		case view.Kills > best:
			leader, best, shared = view, view.Kills, false
		case view.Kills == best:
			shared = true
		}
	}

	if best < 0 || shared {
		return opt.None[PlayerView]()
	}
	return opt.Some(leader)
}

func playerOutcome(leader opt.Option[PlayerView]) Outcome {
	if opt.IsNone(leader) {
		return NoOutcome()
	}
	return PlayerOutcome(leader.Value)
}

// shared by the kill limit modes: poll the rosters every interval while the
// match is running
type killLimitRace struct {
	interval float64
	limit    func() int
}

func (r *killLimitRace) Step(f *Frame) (Outcome, bool) {
	if f.Stage >= stage.PostGame || !due(f, r.interval) {
		return NoOutcome(), false
	}

	outcome := playerOutcome(killLeader(f.Views(), r.limit()))
	return outcome, outcome.Decided()
}

func (r *killLimitRace) Decide(views []PlayerView, _ RuntimeState) Outcome {
	return playerOutcome(killLeader(views, 0))
}

// KillRace is a free for all: the first participant to reach the kill
// limit wins.
type KillRace struct {
	*teamless
	*killLimitRace
	freeForAllSpawns
	resetOnStart
	killLimit int
}

// assert interface implementations at compile time
var _ Variant = &KillRace{}

func NewKillRace(c *Config) *KillRace {
	m := &KillRace{
		teamless:  &teamless{capacity: c.Capacity},
		killLimit: c.KillRace.KillLimit,
	}
	m.killLimitRace = &killLimitRace{
		interval: orDefault(c.KillRace.PollSeconds, DefaultPollSeconds),
		limit:    func() int { return m.killLimit },
	}
	return m
}

func (*KillRace) ID() gamemode.ID { return gamemode.KillRace }

func (m *KillRace) KillLimit() int { return m.killLimit }

func (*KillRace) NewState() RuntimeState { return &KillRaceState{} }

func (*KillRace) Conforms(state RuntimeState) bool {
	_, ok := state.(*KillRaceState)
	return ok
}
