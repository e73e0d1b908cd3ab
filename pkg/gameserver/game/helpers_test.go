package game

import (
	"time"

	"github.com/arbiterfps/arbiter/pkg/gameserver/geom"
	"github.com/arbiterfps/arbiter/pkg/gameserver/protocol/stage"
)

var (
	_ Roster       = &fakeRoster{}
	_ Announcer    = &recordingAnnouncer{}
	_ SceneControl = &recordingScene{}
	_ BotNotifier  = &recordingBots{}
)

type fakeRoster struct {
	humans []Human
	bots   []Bot
}

func (r *fakeRoster) Humans() []Human { return r.humans }
func (r *fakeRoster) Bots() []Bot     { return r.bots }

func (r *fakeRoster) addHuman(id, kills int, team TeamID) {
	r.humans = append(r.humans, Human{
		ID: id,
		Properties: map[string]interface{}{
			PropertyKills: kills,
			PropertyTeam:  int(team),
		},
	})
}

func (r *fakeRoster) addBot(id, kills int, team TeamID) {
	r.bots = append(r.bots, Bot{ID: id, Kills: kills, Team: team})
}

type announcement struct {
	outcome Outcome
	scores  []int
}

type recordingAnnouncer struct {
	announcements []announcement
}

func (a *recordingAnnouncer) AnnounceWinner(outcome Outcome, scores []int) {
	a.announcements = append(a.announcements, announcement{outcome, scores})
}

type recordingScene struct {
	reloaded  []string
	voting    [][]string
	despawned int
}

func (s *recordingScene) ReloadLevel(name string)          { s.reloaded = append(s.reloaded, name) }
func (s *recordingScene) OpenVotingUI(candidates []string) { s.voting = append(s.voting, candidates) }
func (s *recordingScene) DespawnAll()                      { s.despawned++ }

type capture struct {
	index int
	owner TeamID
}

type recordingBots struct {
	captures []capture
}

func (b *recordingBots) OnObjectiveCaptured(index int, owner TeamID) {
	b.captures = append(b.captures, capture{index, owner})
}

func views(kills ...int) []PlayerView {
	out := make([]PlayerView, len(kills))
	for i, k := range kills {
		out[i] = PlayerView{ID: i + 1, Kills: k, Team: NoTeam}
	}
	return out
}

func point(name, group string) *SpawnPoint {
	return &SpawnPoint{
		Name:     name,
		Group:    group,
		Position: geom.NewVector(0, 0, 0),
	}
}

func frame(state RuntimeState, now, delta float64, roster Roster) *Frame {
	return &Frame{
		Now:    now,
		Delta:  delta,
		Stage:  stage.Active,
		State:  state,
		roster: roster,
	}
}

func killRaceConfig(limit int) *Config {
	return &Config{
		Mode:            "kill race",
		Capacity:        16,
		MatchSeconds:    600,
		PostGameSeconds: 10,
		VotingSeconds:   15,
		KillRace: KillRaceConfig{
			KillLimit:   limit,
			PollSeconds: 1,
		},
	}
}

func teamScoreConfig() *Config {
	return &Config{
		Mode:              "team score",
		Capacity:          16,
		MaxTeamDifference: 2,
		MatchSeconds:      600,
		TeamScore: TeamScoreConfig{
			Teams:      2,
			PointLimit: 100,
		},
	}
}

func dominationConfig() *Config {
	return &Config{
		Mode:              "domination",
		Capacity:          16,
		MaxTeamDifference: 2,
		MatchSeconds:      600,
		Domination: DominationConfig{
			Teams:              2,
			Flags:              3,
			BaseCaptureSpeed:   5,
			OccupantMultiplier: 2,
			ScoreSeconds:       5,
			PointsPerFlag:      1,
			PointLimit:         10,
			Smoothing:          4,
		},
	}
}

const second = time.Second
