package game

import (
	"github.com/arbiterfps/arbiter/pkg/gameserver/protocol/gamemode"
)

// RuntimeState is the mutable, mode specific part of a match. There is one
// concrete type per mode; the authority owns it and replicas only ever
// overwrite it from snapshots.
type RuntimeState interface {
	Mode() gamemode.ID
	// Scores returns the team score vector, or nil for teamless modes.
	Scores() []int
	// Tick is the match time, in seconds, of the last poll or scoring tick.
	Tick() float64
	SetTick(float64)
	// Reset zeroes the state while keeping its shape.
	Reset()
}

var (
	_ RuntimeState = &KillRaceState{}
	_ RuntimeState = &TeamScoreState{}
	_ RuntimeState = &ProgressionState{}
	_ RuntimeState = &DominationState{}
)

type KillRaceState struct {
	LastTick float64
}

func (*KillRaceState) Mode() gamemode.ID { return gamemode.KillRace }
func (*KillRaceState) Scores() []int     { return nil }
func (s *KillRaceState) Tick() float64   { return s.LastTick }
func (s *KillRaceState) SetTick(t float64) {
	s.LastTick = t
}
func (s *KillRaceState) Reset() { s.LastTick = 0 }

type TeamScoreState struct {
	TeamScore []int
	LastTick  float64
}

func NewTeamScoreState(teams int) *TeamScoreState {
	return &TeamScoreState{
		TeamScore: make([]int, clampTeams(teams)),
	}
}

func (*TeamScoreState) Mode() gamemode.ID { return gamemode.TeamScore }
func (s *TeamScoreState) Scores() []int   { return s.TeamScore }
func (s *TeamScoreState) Tick() float64   { return s.LastTick }
func (s *TeamScoreState) SetTick(t float64) {
	s.LastTick = t
}

func (s *TeamScoreState) Reset() {
	for i := range s.TeamScore {
		s.TeamScore[i] = 0
	}
	s.LastTick = 0
}

// Credit adds points to a team and keeps every score within [0, limit].
// A limit of zero or less only clamps at zero.
func (s *TeamScoreState) Credit(team TeamID, points int, limit int) {
	if team >= 0 && int(team) < len(s.TeamScore) {
		s.TeamScore[team] += points
	}
	s.Clamp(limit)
}

func (s *TeamScoreState) Clamp(limit int) {
	for i, score := range s.TeamScore {
		if score < 0 {
			score = 0
		}
		if limit > 0 && score > limit {
			score = limit
		}
		s.TeamScore[i] = score
	}
}

// Leaders returns every team holding the highest score.
func (s *TeamScoreState) Leaders() (teams []TeamID, score int) {
	for i, value := range s.TeamScore {
		switch {
		case len(teams) == 0 || value > score:
			teams = []TeamID{TeamID(i)}
			score = value
		case value == score:
			teams = append(teams, TeamID(i))
		}
	}
	return teams, score
}

type ProgressionState struct {
	Order    []string
	LastTick float64
}

func (*ProgressionState) Mode() gamemode.ID { return gamemode.Progression }
func (*ProgressionState) Scores() []int     { return nil }
func (s *ProgressionState) Tick() float64   { return s.LastTick }
func (s *ProgressionState) SetTick(t float64) {
	s.LastTick = t
}
func (s *ProgressionState) Reset() { s.LastTick = 0 }

// Rung returns the ladder entry a participant with the given kills is on.
func (s *ProgressionState) Rung(kills int) string {
	if len(s.Order) == 0 {
		return ""
	}
	if kills < 0 {
		kills = 0
	}
	if kills >= len(s.Order) {
		kills = len(s.Order) - 1
	}
	return s.Order[kills]
}

type DominationState struct {
	TeamScoreState
	Objectives []*ObjectiveState
}

func NewDominationState(teams, flags int) *DominationState {
	state := &DominationState{
		TeamScoreState: *NewTeamScoreState(teams),
		Objectives:     make([]*ObjectiveState, flags),
	}
	for i := range state.Objectives {
		state.Objectives[i] = NewObjectiveState(i)
	}
	return state
}

func (*DominationState) Mode() gamemode.ID { return gamemode.Domination }

func (s *DominationState) Reset() {
	s.TeamScoreState.Reset()
	for _, objective := range s.Objectives {
		objective.Reset()
	}
}

// Owned returns the indexes of the objectives the team currently holds.
func (s *DominationState) Owned(team TeamID) []int {
	owned := []int{}
	for i, objective := range s.Objectives {
		if team != NoTeam && objective.Owner == team {
			owned = append(owned, i)
		}
	}
	return owned
}
