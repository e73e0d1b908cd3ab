package game

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/arbiterfps/arbiter/pkg/gameserver/protocol/gamemode"
	"github.com/arbiterfps/arbiter/pkg/gameserver/protocol/role"
	"github.com/arbiterfps/arbiter/pkg/gameserver/protocol/stage"
	"github.com/arbiterfps/arbiter/pkg/gameserver/timer"
)

var (
	ErrNoObjective = errors.New("no such objective")
	ErrWrongStage  = errors.New("not allowed in this stage")
)

type StageListener func(from, to stage.ID)

// Machine drives a match through its stages on the authority. It decides
// when things happen and leaves the what to the variant and the
// collaborators.
type Machine struct {
	config  *Config
	variant Variant
	deps    Collaborators
	rng     *rand.Rand
	log     zerolog.Logger

	level  string
	stage  stage.ID
	timer  *timer.Timer
	paused bool
	// seconds of active play, restarted when the match goes live
	clock float64

	state     RuntimeState
	pool      *SpawnPool
	ballot    *Ballot
	outcome   Outcome
	listeners []StageListener
}

func NewMachine(config *Config, variant Variant, deps Collaborators) *Machine {
	return &Machine{
		config:  config,
		variant: variant,
		deps:    deps.withDefaults(),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		log:     log.With().Str("mode", variant.ID().String()).Logger(),
		timer:   timer.New(0),
		outcome: NoOutcome(),
	}
}

// Seed makes spawn selection reproducible.
func (m *Machine) Seed(seed int64) {
	m.rng = rand.New(rand.NewSource(seed))
}

// OnStageChange registers a callback run after every stage transition.
func (m *Machine) OnStageChange(listener StageListener) {
	m.listeners = append(m.listeners, listener)
}

// OnSetup prepares a fresh match on a level. It is also the way back in
// after a level reload.
func (m *Machine) OnSetup(level string, points []*SpawnPoint) error {
	pool, err := BuildSpawnPool(points, m.variant.ID())
	if err == nil {
		err = m.checkSpawns(pool)
	}
	if err != nil {
		return fmt.Errorf("could not set up level %s: %w", level, err)
	}

	from := m.stage
	m.level = level
	m.pool = pool
	m.state = m.variant.NewState()
	m.ballot = nil
	m.outcome = NoOutcome()
	m.clock = 0
	m.stage = stage.Setup
	m.timer.Reset(m.config.PreGame())
	if m.paused {
		m.timer.Pause()
	}

	m.log.Info().
		Str("level", level).
		Int("spawns", pool.Size()).
		Strs("groups", pool.Groups()).
		Msg("match set up")

	m.notify(from, stage.Setup)
	return nil
}

// checkSpawns makes sure every team can spawn both before and during the
// match, so a level without usable groups fails at setup.
func (m *Machine) checkSpawns(pool *SpawnPool) error {
	requesters := []PlayerView{{Team: NoTeam}}
	if teams := m.variant.NumTeams(); teams > 0 {
		requesters = make([]PlayerView, teams)
		for i := range requesters {
			requesters[i].Team = TeamID(i)
		}
	}

	state := m.variant.NewState()
	rng := rand.New(rand.NewSource(0))
	for _, st := range []stage.ID{stage.Setup, stage.Active} {
		for _, requester := range requesters {
			tiers := m.variant.SpawnTiers(st, requester, state, rng)
			if !pool.Covers(tiers) {
				return fmt.Errorf("%w %s: no points in %v during %s", ErrNoSpawnPoints, m.variant.ID(), tiers, st)
			}
		}
	}
	return nil
}

func (m *Machine) notify(from, to stage.ID) {
	for _, listener := range m.listeners {
		listener(from, to)
	}
}

func (m *Machine) transition(to stage.ID, d time.Duration) {
	from := m.stage
	m.stage = to

	if stage.IsTerminal(to) {
		m.timer.Stop()
	} else {
		m.timer.Reset(d)
		if m.paused {
			m.timer.Pause()
		}
	}

	if to == stage.Active {
		m.clock = 0
	}

	m.variant.OnStageChange(from, to, m.ensureState())
	m.log.Info().
		Str("from", from.String()).
		Str("to", to.String()).
		Dur("duration", d).
		Msg("stage changed")
	m.notify(from, to)
}

// ensureState rebuilds the runtime state when it does not have the shape
// the variant expects, e.g. after a handover.
func (m *Machine) ensureState() RuntimeState {
	if m.state == nil || !m.variant.Conforms(m.state) {
		if m.state != nil {
			m.log.Warn().
				Str("found", m.state.Mode().String()).
				Msg("runtime state has the wrong shape, rebuilding")
		}
		m.state = m.variant.NewState()
	}
	return m.state
}

// OnTick advances the match by dt. Only the authority mutates anything;
// replicas just update presentation smoothing.
func (m *Machine) OnTick(r role.ID, dt time.Duration) {
	delta := dt.Seconds()
	state := m.ensureState()

	if r.IsAuthority() && !m.paused {
		before := m.stage

		if m.stage == stage.Active {
			m.clock += delta
			frame := &Frame{
				Now:    m.clock,
				Delta:  delta,
				Stage:  m.stage,
				State:  state,
				Bots:   m.deps.Bots,
				roster: m.deps.Roster,
			}
			if outcome, done := m.variant.Step(frame); done {
				m.Finish(outcome)
			}
		}

		if m.stage == before && m.timer.Advance(dt) {
			m.OnTimerExpired()
		}
	}

	SmoothObjectives(m.state, delta, m.smoothing())
}

func (m *Machine) smoothing() float64 {
	if d, ok := m.variant.(*Domination); ok {
		return d.Smoothing()
	}
	return 0
}

// SmoothObjectives runs the presentation filter over every objective of
// the state, if it has any.
func SmoothObjectives(state RuntimeState, dt, rate float64) {
	s, ok := state.(*DominationState)
	if !ok {
		return
	}
	for _, objective := range s.Objectives {
		objective.Smooth(dt, rate)
	}
}

// OnTimerExpired moves to the stage that follows the current one.
func (m *Machine) OnTimerExpired() {
	switch m.stage {
	case stage.Setup:
		m.transition(stage.Active, m.config.Match())

	case stage.Active:
		m.Finish(m.variant.Decide(MergeViews(m.deps.Roster), m.ensureState()))

	case stage.PostGame:
		if m.config.Lobby {
			m.transition(stage.Returning, 0)
			m.deps.Scene.ReloadLevel(m.config.Hub)
			return
		}

		m.deps.Scene.DespawnAll()
		m.ballot = NewBallot(m.candidates())
		m.deps.Scene.OpenVotingUI(m.ballot.Candidates())
		m.transition(stage.Voting, m.config.Voting())

	case stage.Voting:
		next := m.nextLevel()
		m.transition(stage.Rotating, 0)
		m.deps.Scene.ReloadLevel(next)

	default:
		m.log.Debug().Str("stage", m.stage.String()).Msg("timer expired in terminal stage")
	}
}

// Finish ends the active match with the given outcome.
func (m *Machine) Finish(outcome Outcome) {
	if m.stage != stage.Active {
		return
	}

	m.outcome = outcome
	scores := append([]int{}, m.ensureState().Scores()...)

	m.log.Info().
		Str("outcome", outcome.String()).
		Ints("scores", scores).
		Msg("match finished")

	m.deps.Announcer.AnnounceWinner(outcome, scores)
	m.transition(stage.PostGame, m.config.PostGame())
}

func (m *Machine) candidates() []string {
	if len(m.config.Rotation) == 0 {
		return []string{m.level}
	}
	return m.config.Rotation
}

// nextLevel applies the vote, or moves along the rotation if nobody voted.
func (m *Machine) nextLevel() string {
	if m.ballot != nil {
		if level, ok := m.ballot.Tally(); ok {
			return level
		}
	}

	rotation := m.candidates()
	for i, level := range rotation {
		if level == m.level {
			return rotation[(i+1)%len(rotation)]
		}
	}
	return rotation[0]
}

func (m *Machine) Pause() {
	if m.paused {
		return
	}
	m.paused = true
	m.timer.Pause()
	m.log.Info().Msg("match paused")
}

func (m *Machine) Resume() {
	if !m.paused {
		return
	}
	m.paused = false
	if !stage.IsTerminal(m.stage) {
		m.timer.Start()
	}
	m.log.Info().Msg("match resumed")
}

func (m *Machine) Paused() bool { return m.paused }

// GetSpawn picks a validated spawn point for the requester, or nil when
// none could be found this time.
func (m *Machine) GetSpawn(requester PlayerView) *SpawnPoint {
	if m.pool == nil {
		return nil
	}
	tiers := m.variant.SpawnTiers(m.stage, requester, m.ensureState(), m.rng)
	return m.pool.Allocate(tiers, requester, m.deps.Validator, m.rng)
}

func (m *Machine) CanJoinTeam(requester PlayerView, team TeamID) bool {
	return m.variant.CanJoinTeam(requester, team, MergeViews(m.deps.Roster))
}

func (m *Machine) SelectTeam(requester PlayerView) TeamID {
	return SelectTeam(m.variant, requester, MergeViews(m.deps.Roster), m.ensureState().Scores())
}

func (m *Machine) IsEnemy(a, b PlayerView) bool {
	return m.variant.IsEnemy(a, b)
}

// HandleFrag lets the variant score a frag. Frags outside of active play
// are ignored.
func (m *Machine) HandleFrag(fragger, victim PlayerView) {
	if m.stage != stage.Active {
		return
	}
	m.variant.HandleFrag(m.ensureState(), fragger, victim)
}

func (m *Machine) objective(index int) (*ObjectiveState, error) {
	state, ok := m.ensureState().(*DominationState)
	if !ok || index < 0 || index >= len(state.Objectives) {
		return nil, fmt.Errorf("%w: %d", ErrNoObjective, index)
	}
	return state.Objectives[index], nil
}

// EnterObjective records a participant stepping into a zone.
func (m *Machine) EnterObjective(index int, participant PlayerView) error {
	objective, err := m.objective(index)
	if err != nil {
		return err
	}
	objective.Enter(participant.Key(), participant.Team)
	return nil
}

func (m *Machine) LeaveObjective(index int, participant Key) error {
	objective, err := m.objective(index)
	if err != nil {
		return err
	}
	objective.Leave(participant)
	return nil
}

// LeaveAllObjectives removes a participant from every zone, e.g. on death
// or disconnect.
func (m *Machine) LeaveAllObjectives(participant Key) {
	state, ok := m.ensureState().(*DominationState)
	if !ok {
		return
	}
	for _, objective := range state.Objectives {
		objective.Leave(participant)
	}
}

func (m *Machine) CastVote(voter Key, choice int) error {
	if m.stage != stage.Voting || m.ballot == nil {
		return fmt.Errorf("%w: %s", ErrWrongStage, m.stage)
	}
	return m.ballot.Cast(voter, choice)
}

func (m *Machine) Mode() gamemode.ID       { return m.variant.ID() }
func (m *Machine) Variant() Variant        { return m.variant }
func (m *Machine) Config() *Config         { return m.config }
func (m *Machine) Level() string           { return m.level }
func (m *Machine) Stage() stage.ID         { return m.stage }
func (m *Machine) TimeLeft() time.Duration { return m.timer.TimeLeft() }
func (m *Machine) Clock() float64          { return m.clock }
func (m *Machine) Outcome() Outcome        { return m.outcome }
func (m *Machine) Ballot() *Ballot         { return m.ballot }
func (m *Machine) Pool() *SpawnPool        { return m.pool }

func (m *Machine) State() RuntimeState {
	return m.ensureState()
}

// Restore replaces the runtime state wholesale, e.g. with a state decoded
// from a snapshot by a new authority.
func (m *Machine) Restore(state RuntimeState) {
	m.state = state
	m.ensureState()
}
