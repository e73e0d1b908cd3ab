package game

import (
	"github.com/arbiterfps/arbiter/pkg/gameserver/protocol/gamemode"
)

// ProgressionRace walks every participant up a ladder, one rung per kill.
// Clearing the last rung wins.
type ProgressionRace struct {
	*teamless
	*killLimitRace
	freeForAllSpawns
	resetOnStart
	order []string
}

// assert interface implementations at compile time
var _ Variant = &ProgressionRace{}

func NewProgressionRace(c *Config) *ProgressionRace {
	m := &ProgressionRace{
		teamless: &teamless{capacity: c.Capacity},
		order:    append([]string{}, c.Progression.Order...),
	}
	m.killLimitRace = &killLimitRace{
		interval: orDefault(c.Progression.PollSeconds, DefaultPollSeconds),
		limit:    func() int { return len(m.order) },
	}
	return m
}

func (*ProgressionRace) ID() gamemode.ID { return gamemode.Progression }

func (m *ProgressionRace) Order() []string { return m.order }

func (m *ProgressionRace) NewState() RuntimeState {
	return &ProgressionState{
		Order: append([]string{}, m.order...),
	}
}

func (m *ProgressionRace) Conforms(state RuntimeState) bool {
	s, ok := state.(*ProgressionState)
	return ok && len(s.Order) == len(m.order)
}
