package game

import (
	"github.com/arbiterfps/arbiter/pkg/gameserver/protocol/gamemode"
)

// decideTeams names the team with the highest score. Two or more teams on
// the top score are a draw.
func decideTeams(scores []int) Outcome {
	state := TeamScoreState{TeamScore: scores}
	leaders, _ := state.Leaders()
	switch len(leaders) {
	case 0:
		return NoOutcome()
	case 1:
		return TeamOutcome(leaders[0])
	default:
		return DrawOutcome()
	}
}

// TeamScore is team deathmatch: frags score for the team and the best
// team at the end of the clock wins.
type TeamScore struct {
	*teamed
	teamSpawns
	resetOnStart
	pointLimit int
}

// assert interface implementations at compile time
var _ Variant = &TeamScore{}

func NewTeamScore(c *Config) *TeamScore {
	return &TeamScore{
		teamed:     withTeams(c.TeamScore.Teams, c.Capacity, c.MaxTeamDifference),
		pointLimit: c.TeamScore.PointLimit,
	}
}

func (*TeamScore) ID() gamemode.ID { return gamemode.TeamScore }

func (m *TeamScore) NewState() RuntimeState {
	return NewTeamScoreState(m.teams)
}

func (m *TeamScore) Conforms(state RuntimeState) bool {
	s, ok := state.(*TeamScoreState)
	return ok && len(s.TeamScore) == m.teams
}

func (*TeamScore) Step(*Frame) (Outcome, bool) {
	return NoOutcome(), false
}

func (*TeamScore) Decide(_ []PlayerView, state RuntimeState) Outcome {
	return decideTeams(state.Scores())
}

func (m *TeamScore) HandleFrag(state RuntimeState, fragger, victim PlayerView) {
	s, ok := state.(*TeamScoreState)
	if !ok || fragger.Team == NoTeam {
		return
	}

	if fragger.Team == victim.Team {
		s.Credit(fragger.Team, -1, m.pointLimit)
		return
	}
	s.Credit(fragger.Team, 1, m.pointLimit)
}
