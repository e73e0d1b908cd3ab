package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func teamViews(sizes ...int) []PlayerView {
	out := []PlayerView{}
	id := 1
	for team, size := range sizes {
		for i := 0; i < size; i++ {
			out = append(out, PlayerView{ID: id, Team: TeamID(team)})
			id++
		}
	}
	return out
}

func TestCanJoinTeamDifference(t *testing.T) {
	mode := NewTeamScore(teamScoreConfig())
	joining := PlayerView{ID: 100, Team: NoTeam}
	views := teamViews(5, 2)

	assert.False(t, mode.CanJoinTeam(joining, 0, views))
	assert.True(t, mode.CanJoinTeam(joining, 1, views))
}

func TestCanJoinTeamCapacity(t *testing.T) {
	config := teamScoreConfig()
	config.Capacity = 8
	config.MaxTeamDifference = 10
	mode := NewTeamScore(config)
	joining := PlayerView{ID: 100, Team: NoTeam}

	assert.False(t, mode.CanJoinTeam(joining, 0, teamViews(4, 4)), "team is at half the capacity")
	assert.True(t, mode.CanJoinTeam(joining, 0, teamViews(3, 4)))
}

func TestCanJoinThreeTeams(t *testing.T) {
	// a team may grow to half the room even with three teams
	assert.True(t, CanJoin([]int{5, 3, 3}, 0, 12, 10))
	assert.False(t, CanJoin([]int{6, 2, 2}, 0, 12, 10))
	// but never past the room capacity
	assert.False(t, CanJoin([]int{5, 4, 3}, 2, 12, 10))
	// the difference is measured against the smallest other team
	assert.False(t, CanJoin([]int{3, 1, 4}, 0, 12, 2))
	assert.True(t, CanJoin([]int{3, 1, 4}, 1, 12, 2))
}

func TestCanJoinTeamExcludesRequester(t *testing.T) {
	mode := NewTeamScore(teamScoreConfig())
	views := teamViews(3, 2)

	// a member of team 0 switching sides
	switching := views[0]
	assert.True(t, mode.CanJoinTeam(switching, 1, views))
	// and staying put is fine too
	assert.True(t, mode.CanJoinTeam(switching, 0, views))
}

func TestCanJoinInvalidTeam(t *testing.T) {
	assert.False(t, CanJoin([]int{1, 1}, 2, 16, 2))
	assert.False(t, CanJoin([]int{1, 1}, NoTeam, 16, 2))
}

func TestTeamlessAdmission(t *testing.T) {
	config := killRaceConfig(10)
	config.Capacity = 2
	race := NewKillRace(config)

	assert.True(t, race.CanJoinTeam(PlayerView{ID: 9}, NoTeam, views(0)))
	assert.False(t, race.CanJoinTeam(PlayerView{ID: 9}, NoTeam, views(0, 0)))
	assert.True(t, race.CanJoinTeam(PlayerView{ID: 1}, NoTeam, views(0, 0)), "already in the room")
}

func TestSelectTeam(t *testing.T) {
	mode := NewTeamScore(teamScoreConfig())
	joining := PlayerView{ID: 100, Team: NoTeam}

	assert.Equal(t, TeamID(1), SelectTeam(mode, joining, teamViews(3, 2), nil))
	assert.Equal(t, TeamID(0), SelectTeam(mode, joining, teamViews(2, 2), []int{1, 5}), "weaker team first")
	assert.Equal(t, TeamID(0), SelectTeam(mode, joining, teamViews(2, 2), nil))
	assert.Equal(t, NoTeam, SelectTeam(NewKillRace(killRaceConfig(1)), joining, nil, nil))
}

func TestIsEnemy(t *testing.T) {
	mode := NewTeamScore(teamScoreConfig())
	assert.True(t, mode.IsEnemy(PlayerView{ID: 1, Team: 0}, PlayerView{ID: 2, Team: 1}))
	assert.False(t, mode.IsEnemy(PlayerView{ID: 1, Team: 0}, PlayerView{ID: 2, Team: 0}))

	race := NewKillRace(killRaceConfig(1))
	assert.True(t, race.IsEnemy(PlayerView{ID: 1}, PlayerView{ID: 1, IsBot: true}))
	assert.False(t, race.IsEnemy(PlayerView{ID: 1}, PlayerView{ID: 1}))
}

func TestTeamScoreFrags(t *testing.T) {
	config := teamScoreConfig()
	config.TeamScore.PointLimit = 2
	mode := NewTeamScore(config)
	state := mode.NewState().(*TeamScoreState)

	red, red2, blue := PlayerView{ID: 1, Team: 0}, PlayerView{ID: 2, Team: 0}, PlayerView{ID: 3, Team: 1}

	mode.HandleFrag(state, red, blue)
	mode.HandleFrag(state, red, blue)
	mode.HandleFrag(state, red, blue)
	assert.Equal(t, []int{2, 0}, state.TeamScore, "clamped at the point limit")

	mode.HandleFrag(state, blue, blue)
	assert.Equal(t, []int{2, 0}, state.TeamScore, "never below zero")

	mode.HandleFrag(state, red, red2)
	assert.Equal(t, []int{1, 0}, state.TeamScore)
}

func TestTeamScoreDecide(t *testing.T) {
	mode := NewTeamScore(teamScoreConfig())

	state := &TeamScoreState{TeamScore: []int{40, 40}}
	assert.Equal(t, Draw, mode.Decide(nil, state).Kind)

	state = &TeamScoreState{TeamScore: []int{40, 41}}
	assert.Equal(t, TeamOutcome(1), mode.Decide(nil, state))

	state = &TeamScoreState{TeamScore: []int{0, 0}}
	assert.Equal(t, Draw, mode.Decide(nil, state).Kind)
}
