package gameserver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sasha-s/go-deadlock"

	"github.com/arbiterfps/arbiter/pkg/chanlock"
	"github.com/arbiterfps/arbiter/pkg/gameserver/game"
	"github.com/arbiterfps/arbiter/pkg/gameserver/protocol/gamemode"
	"github.com/arbiterfps/arbiter/pkg/gameserver/protocol/role"
	"github.com/arbiterfps/arbiter/pkg/gameserver/protocol/stage"
	"github.com/arbiterfps/arbiter/pkg/gameserver/replication"
	"github.com/arbiterfps/arbiter/pkg/utils"
)

// Results waiting for the recorders beyond this are dropped.
const resultBacklog = 8

var (
	ErrAlreadyJoined = errors.New("already joined")
	ErrMatchFull     = errors.New("no team can take another participant")
	ErrUnknownClient = errors.New("unknown client")
)

// Server is the match authority. A single goroutine running Poll owns the
// machine and the roster; everything else talks to it through events.
type Server struct {
	utils.Session

	*Config
	Machine *game.Machine
	Roster  *Roster

	channel    replication.Channel
	recorders  []ResultRecorder
	recordings chan Result

	events       chan Event
	pendingLevel string

	latestMutex deadlock.RWMutex
	latest      []byte
	frames      uint64

	Scene    *utils.Topic[SceneEvent]
	Captures *utils.Topic[Capture]
	Results  *utils.Topic[Result]
}

// New sets up a server on the configured starting level.
func New(ctx context.Context, conf *Config, channel replication.Channel, recorders ...ResultRecorder) (*Server, error) {
	variant, err := game.NewVariant(&conf.Match)
	if err != nil {
		return nil, err
	}

	s := &Server{
		Session:    utils.NewSession(ctx, "gameserver"),
		Config:     conf,
		Roster:     NewRoster(),
		channel:    channel,
		recorders:  recorders,
		events:     make(chan Event, 64),
		recordings: make(chan Result, resultBacklog),
		Scene:      utils.NewTopic[SceneEvent](),
		Captures:   utils.NewTopic[Capture](),
		Results:    utils.NewTopic[Result](),
	}
	if s.channel == nil {
		s.channel = replication.Channels{}
	}

	s.Machine = game.NewMachine(&conf.Match, variant, game.Collaborators{
		Validator: distanceValidator{s},
		Roster:    s.Roster,
		Scene:     scene{s},
		Announcer: announcer{s},
		Bots:      bots{s},
	})
	s.Machine.OnStageChange(s.onStageChange)

	level := conf.Level
	if level == "" && len(conf.Levels) > 0 {
		level = conf.Levels[0].Name
	}
	if err := s.setup(level); err != nil {
		return nil, err
	}

	if len(recorders) > 0 {
		go s.record()
	}

	return s, nil
}

// record hands announced results to the recorders off the loop goroutine,
// so a slow store never delays a tick.
func (s *Server) record() {
	ctx := s.Ctx()
	for {
		select {
		case <-ctx.Done():
			return
		case result := <-s.recordings:
			for _, recorder := range s.recorders {
				if err := recorder.RecordResult(ctx, result); err != nil {
					log.Error().Err(err).Msg("could not record match result")
				}
			}
		}
	}
}

func (s *Server) setup(level string) error {
	points, err := s.Config.SpawnPoints(level)
	if err != nil {
		return err
	}
	return s.Machine.OnSetup(level, points)
}

func (s *Server) onStageChange(from, to stage.ID) {
	if to == stage.Active {
		s.Roster.ResetScores()
	}
}

// Poll runs the event loop until the session ends.
func (s *Server) Poll(ctx context.Context) {
	chanLock := chanlock.New(log.With().Str("loop", "gameserver").Logger())
	health := chanLock.Poll(s.Ctx())

	interval := s.Config.TickInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.Ctx().Done():
			return
		case <-health:
			continue
		case <-ticker.C:
			chanLock.Mark("tick")
			s.Tick(interval)
		case event := <-s.events:
			chanLock.Mark(fmt.Sprintf("%T", event))
			s.Handle(event)
		}
	}
}

// Post queues an event for the loop.
func (s *Server) Post(ctx context.Context, event Event) error {
	select {
	case s.events <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.Ctx().Done():
		return s.Ctx().Err()
	}
}

// Join adds a participant through the loop and waits for its team.
func (s *Server) Join(ctx context.Context, key game.Key, name string, team game.TeamID) (game.TeamID, error) {
	reply := make(chan JoinResult, 1)
	err := s.Post(ctx, JoinEvent{Key: key, Name: name, Team: team, Reply: reply})
	if err != nil {
		return game.NoTeam, err
	}

	select {
	case result := <-reply:
		return result.Team, result.Err
	case <-ctx.Done():
		return game.NoTeam, ctx.Err()
	}
}

// Tick advances the match by one frame, applies a pending level change and
// publishes the resulting snapshot.
func (s *Server) Tick(dt time.Duration) {
	s.Machine.OnTick(role.Authority, dt)

	if level := s.pendingLevel; level != "" {
		s.pendingLevel = ""
		if err := s.setup(level); err != nil {
			log.Error().Err(err).Str("level", level).Msg("could not load level")
		}
	}

	s.publish()
}

func (s *Server) publish() {
	data := replication.Encode(s.Machine.Stage(), s.Machine.TimeLeft(), s.Machine.State())

	s.latestMutex.Lock()
	s.latest = data
	s.frames++
	s.latestMutex.Unlock()

	s.channel.Publish(data)
}

// Latest returns the most recently published snapshot and its frame number.
func (s *Server) Latest() ([]byte, uint64) {
	s.latestMutex.RLock()
	defer s.latestMutex.RUnlock()
	return s.latest, s.frames
}

// Handle applies one event. It must only be called from the loop.
func (s *Server) Handle(event Event) {
	switch e := event.(type) {
	case JoinEvent:
		team, err := s.join(e)
		if err != nil {
			log.Info().Err(err).Str("client", e.Key.String()).Msg("join rejected")
		}
		if e.Reply != nil {
			e.Reply <- JoinResult{Team: team, Err: err}
		}
	case LeaveEvent:
		s.leave(e.Key)
	case FragEvent:
		s.frag(e)
	case ZoneEvent:
		s.zone(e)
	case VoteEvent:
		err := s.vote(e)
		if e.Reply != nil {
			e.Reply <- err
		}
	case RespawnEvent:
		point := s.respawn(e.Key)
		if e.Reply != nil {
			e.Reply <- point
		}
	case PauseEvent:
		if e.Paused {
			s.Machine.Pause()
		} else {
			s.Machine.Resume()
		}
	default:
		log.Warn().Msgf("unhandled event %T", event)
	}
}

func (s *Server) join(e JoinEvent) (game.TeamID, error) {
	if s.Roster.Get(e.Key) != nil {
		return game.NoTeam, fmt.Errorf("%w: %s", ErrAlreadyJoined, e.Key)
	}

	client := NewClient(e.Key, e.Name)
	view := client.View()

	team := game.NoTeam
	if s.Machine.Variant().NumTeams() > 0 {
		team = e.Team
		if team == game.NoTeam || !s.Machine.CanJoinTeam(view, team) {
			team = s.Machine.SelectTeam(view)
		}
		if team == game.NoTeam {
			return game.NoTeam, ErrMatchFull
		}
	} else if !s.Machine.CanJoinTeam(view, game.NoTeam) {
		return game.NoTeam, ErrMatchFull
	}

	client.Team = team
	s.Roster.Add(client)

	log.Info().
		Str("client", client.String()).
		Int32("team", int32(team)).
		Msg("joined")
	return team, nil
}

func (s *Server) leave(key game.Key) {
	client := s.Roster.Remove(key)
	if client == nil {
		return
	}
	s.Machine.LeaveAllObjectives(key)
	log.Info().Str("client", client.String()).Msg("left")
}

func (s *Server) frag(e FragEvent) {
	victim := s.Roster.Get(e.Victim)
	if victim == nil {
		return
	}
	fragger := s.Roster.Get(e.Fragger)
	if fragger == nil {
		fragger = victim
	}

	fraggerView, victimView := fragger.View(), victim.View()
	victim.Die()
	s.Machine.LeaveAllObjectives(victim.Key)

	if s.Machine.Stage() != stage.Active {
		return
	}

	if fragger != victim && s.Machine.IsEnemy(fraggerView, victimView) {
		fragger.Kills++
	} else if fragger.Kills > 0 {
		fragger.Kills--
	}

	// a melee kill sends the victim one rung back down the ladder
	if e.Melee && fragger != victim && s.Machine.Mode() == gamemode.Progression && victim.Kills > 0 {
		victim.Kills--
	}

	s.Machine.HandleFrag(fraggerView, victimView)
}

func (s *Server) zone(e ZoneEvent) {
	client := s.Roster.Get(e.Key)
	if client == nil {
		return
	}

	var err error
	if e.Inside {
		if !client.Alive {
			return
		}
		err = s.Machine.EnterObjective(e.Objective, client.View())
	} else {
		err = s.Machine.LeaveObjective(e.Objective, client.Key)
	}
	if err != nil {
		log.Warn().Err(err).Str("client", client.String()).Msg("zone event rejected")
	}
}

func (s *Server) vote(e VoteEvent) error {
	if s.Roster.Get(e.Key) == nil {
		return fmt.Errorf("%w: %s", ErrUnknownClient, e.Key)
	}
	return s.Machine.CastVote(e.Key, e.Choice)
}

func (s *Server) respawn(key game.Key) *game.SpawnPoint {
	client := s.Roster.Get(key)
	if client == nil || client.Alive {
		return nil
	}

	point := s.Machine.GetSpawn(client.View())
	if point == nil {
		return nil
	}
	client.Spawn(point)
	return point
}
