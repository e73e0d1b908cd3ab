package gameserver

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/arbiterfps/arbiter/pkg/gameserver/game"
	"github.com/arbiterfps/arbiter/pkg/gameserver/geom"
	"github.com/arbiterfps/arbiter/pkg/gameserver/protocol/gamemode"
)

type SceneEventKind string

const (
	SceneReload  SceneEventKind = "reload"
	SceneVoting  SceneEventKind = "voting"
	SceneDespawn SceneEventKind = "despawn"
)

// SceneEvent tells presentation layers what the match wants the scene to
// do.
type SceneEvent struct {
	Kind       SceneEventKind `cbor:"kind"`
	Level      string         `cbor:"level,omitempty"`
	Candidates []string       `cbor:"candidates,omitempty"`
}

// Result is an announced match result.
type Result struct {
	Level    string
	Mode     gamemode.ID
	Outcome  game.Outcome
	Scores   []int
	Players  []game.PlayerView
	Finished time.Time
}

// ResultRecorder stores announced results, e.g. in a database.
type ResultRecorder interface {
	RecordResult(ctx context.Context, result Result) error
}

type Capture struct {
	Objective int         `cbor:"objective"`
	Owner     game.TeamID `cbor:"owner"`
}

type scene struct {
	server *Server
}

func (s scene) ReloadLevel(name string) {
	s.server.pendingLevel = name
	s.server.Scene.Publish(SceneEvent{Kind: SceneReload, Level: name})
}

func (s scene) OpenVotingUI(candidates []string) {
	s.server.Scene.Publish(SceneEvent{Kind: SceneVoting, Candidates: candidates})
}

func (s scene) DespawnAll() {
	s.server.Roster.ForEach(func(c *Client) {
		c.Alive = false
		s.server.Machine.LeaveAllObjectives(c.Key)
	})
	s.server.Scene.Publish(SceneEvent{Kind: SceneDespawn})
}

type announcer struct {
	server *Server
}

func (a announcer) AnnounceWinner(outcome game.Outcome, scores []int) {
	s := a.server
	result := Result{
		Level:    s.Machine.Level(),
		Mode:     s.Machine.Mode(),
		Outcome:  outcome,
		Scores:   append([]int(nil), scores...),
		Players:  game.MergeViews(s.Roster),
		Finished: time.Now(),
	}

	log.Info().
		Str("level", result.Level).
		Str("outcome", outcome.String()).
		Ints("scores", scores).
		Msg("winner announced")

	s.Results.Publish(result)

	if len(s.recorders) == 0 {
		return
	}
	select {
	case s.recordings <- result:
	default:
		log.Warn().Str("level", result.Level).Msg("result queue is full, dropping result")
	}
}

type bots struct {
	server *Server
}

func (b bots) OnObjectiveCaptured(index int, owner game.TeamID) {
	b.server.Captures.Publish(Capture{Objective: index, Owner: owner})
}

// distanceValidator rejects candidates too close to a living enemy.
type distanceValidator struct {
	server *Server
}

func (v distanceValidator) IsValid(candidate *game.SpawnPoint, requester game.PlayerView) bool {
	s := v.server
	minimum := s.Config.MinSpawnDistance
	if minimum <= 0 || candidate.Position == nil {
		return true
	}

	valid := true
	s.Roster.ForEach(func(c *Client) {
		if !valid || !c.Alive || c.Key == requester.Key() {
			return
		}
		if !s.Machine.IsEnemy(requester, c.View()) {
			return
		}
		if geom.Distance(candidate.Position, c.Position) < minimum {
			valid = false
		}
	})
	return valid
}
