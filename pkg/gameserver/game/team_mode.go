package game

import (
	"fmt"
	"sort"
)

type TeamID int32

// NoTeam marks teamless participants and unowned objectives.
const NoTeam TeamID = -1

func TeamGroup(team TeamID) string {
	return fmt.Sprintf("team%d", team)
}

type teamStanding struct {
	team  TeamID
	size  int
	score int
}

// sorts teams ascending by size, then score, then index
type bySizeAndScore []teamStanding

func (teams bySizeAndScore) Len() int {
	return len(teams)
}

func (teams bySizeAndScore) Swap(i, j int) {
	teams[i], teams[j] = teams[j], teams[i]
}

func (teams bySizeAndScore) Less(i, j int) bool {
	if teams[i].size != teams[j].size {
		return teams[i].size < teams[j].size
	}
	if teams[i].score != teams[j].score {
		return teams[i].score < teams[j].score
	}
	return teams[i].team < teams[j].team
}

// TeamSizes counts members per team, leaving out the excluded participant.
func TeamSizes(views []PlayerView, teams int, exclude Key) []int {
	sizes := make([]int, teams)
	for _, view := range views {
		if view.Key() == exclude {
			continue
		}
		if view.Team >= 0 && int(view.Team) < teams {
			sizes[view.Team]++
		}
	}
	return sizes
}

// CanJoin is the admission rule shared by every team mode. sizes must not
// include the requester.
func CanJoin(sizes []int, team TeamID, capacity, maxDifference int) bool {
	if team < 0 || int(team) >= len(sizes) {
		return false
	}

	// a team holds at most half the room, and the room itself must have space
	if capacity > 0 {
		total := 0
		for _, size := range sizes {
			total += size
		}
		if sizes[team] >= capacity/2 || total >= capacity {
			return false
		}
	}

	smallest := -1
	for other, size := range sizes {
		if TeamID(other) == team {
			continue
		}
		if smallest == -1 || size < smallest {
			smallest = size
		}
	}
	if smallest == -1 {
		return true
	}

	return (sizes[team]+1)-smallest <= maxDifference
}

type teamed struct {
	teams         int
	capacity      int
	maxDifference int
}

func withTeams(teams, capacity, maxDifference int) *teamed {
	return &teamed{
		teams:         clampTeams(teams),
		capacity:      capacity,
		maxDifference: maxDifference,
	}
}

func (m *teamed) NumTeams() int { return m.teams }

func (m *teamed) CanJoinTeam(requester PlayerView, team TeamID, views []PlayerView) bool {
	return CanJoin(TeamSizes(views, m.teams, requester.Key()), team, m.capacity, m.maxDifference)
}

func (*teamed) IsEnemy(a, b PlayerView) bool {
	return a.Team != b.Team
}

// SelectTeam picks the weakest team for a participant that did not ask for
// one.
func SelectTeam(p TeamPolicy, requester PlayerView, views []PlayerView, scores []int) TeamID {
	teams := p.NumTeams()
	if teams == 0 {
		return NoTeam
	}

	sizes := TeamSizes(views, teams, requester.Key())
	standings := make([]teamStanding, teams)
	for i := range standings {
		standings[i] = teamStanding{team: TeamID(i), size: sizes[i]}
		if i < len(scores) {
			standings[i].score = scores[i]
		}
	}

	sort.Sort(bySizeAndScore(standings))
	for _, standing := range standings {
		if p.CanJoinTeam(requester, standing.team, views) {
			return standing.team
		}
	}
	return NoTeam
}
