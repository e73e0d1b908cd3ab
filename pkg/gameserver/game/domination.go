package game

import (
	"math/rand"

	"github.com/rs/zerolog/log"

	"github.com/arbiterfps/arbiter/pkg/gameserver/protocol/gamemode"
	"github.com/arbiterfps/arbiter/pkg/gameserver/protocol/stage"
)

// Domination is team score plus capturable flags. Every owned flag earns
// its team points on a fixed interval and reaching the point limit ends the
// match early.
type Domination struct {
	*teamed
	resetOnStart
	flags              int
	baseCaptureSpeed   float64
	occupantMultiplier float64
	scoreInterval      float64
	pointsPerFlag      int
	pointLimit         int
	smoothing          float64
}

// assert interface implementations at compile time
var _ Variant = &Domination{}

func NewDomination(c *Config) *Domination {
	d := c.Domination
	return &Domination{
		teamed:             withTeams(d.Teams, c.Capacity, c.MaxTeamDifference),
		flags:              d.Flags,
		baseCaptureSpeed:   d.BaseCaptureSpeed,
		occupantMultiplier: d.OccupantMultiplier,
		scoreInterval:      orDefault(d.ScoreSeconds, DefaultScoreSeconds),
		pointsPerFlag:      d.PointsPerFlag,
		pointLimit:         d.PointLimit,
		smoothing:          d.Smoothing,
	}
}

func (*Domination) ID() gamemode.ID { return gamemode.Domination }

func (m *Domination) Flags() int { return m.flags }

func (m *Domination) Smoothing() float64 { return m.smoothing }

func (m *Domination) NewState() RuntimeState {
	return NewDominationState(m.teams, m.flags)
}

func (m *Domination) Conforms(state RuntimeState) bool {
	s, ok := state.(*DominationState)
	return ok && len(s.TeamScore) == m.teams && len(s.Objectives) == m.flags
}

func (m *Domination) Step(f *Frame) (Outcome, bool) {
	state := f.State.(*DominationState)

	for i, objective := range state.Objectives {
		if !objective.Advance(f.Delta, m.baseCaptureSpeed, m.occupantMultiplier) {
			continue
		}

		log.Info().
			Int("objective", i).
			Int32("team", int32(objective.Owner)).
			Msg("objective captured")

		if f.Bots != nil {
			f.Bots.OnObjectiveCaptured(i, objective.Owner)
		}
	}

	if !due(f, m.scoreInterval) {
		return NoOutcome(), false
	}

	m.Score(state)

	if f.Stage != stage.Active {
		return NoOutcome(), false
	}

	for _, score := range state.TeamScore {
		if score >= m.pointLimit {
			return decideTeams(state.TeamScore), true
		}
	}
	return NoOutcome(), false
}

// Score runs one scoring tick: each owned flag credits its owner.
func (m *Domination) Score(state *DominationState) {
	for _, objective := range state.Objectives {
		if objective.Owner == NoTeam {
			continue
		}
		state.Credit(objective.Owner, m.pointsPerFlag, m.pointLimit)
	}
	state.Clamp(m.pointLimit)
}

func (*Domination) Decide(_ []PlayerView, state RuntimeState) Outcome {
	return decideTeams(state.Scores())
}

// Frags do not score in domination.
func (*Domination) HandleFrag(RuntimeState, PlayerView, PlayerView) {}

// SpawnTiers prefers the area around one of the team's flags once the
// match is running.
func (m *Domination) SpawnTiers(st stage.ID, requester PlayerView, state RuntimeState, rng *rand.Rand) []string {
	primary := TeamGroup(requester.Team)
	if s, ok := state.(*DominationState); ok && st == stage.Active {
		if owned := s.Owned(requester.Team); len(owned) > 0 {
			primary = FlagGroup(owned[rng.Intn(len(owned))])
		}
	}
	return []string{primary, GroupFallback}
}
