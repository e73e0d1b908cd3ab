package replication

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sasha-s/go-deadlock"

	"github.com/arbiterfps/arbiter/pkg/gameserver/game"
	"github.com/arbiterfps/arbiter/pkg/gameserver/protocol/stage"
	"github.com/arbiterfps/arbiter/pkg/gameserver/timer"
)

// Receiver keeps the shadow copy of the match on a replica. Every snapshot
// overwrites it wholesale; the last one applied wins.
type Receiver struct {
	mutex     deadlock.Mutex
	variant   game.Variant
	smoothing float64
	log       zerolog.Logger

	state    game.RuntimeState
	stage    stage.ID
	timeLeft time.Duration
	applied  int
}

func NewReceiver(variant game.Variant, smoothing float64) *Receiver {
	return &Receiver{
		variant:   variant,
		smoothing: smoothing,
		log:       log.With().Str("replica", variant.ID().String()).Logger(),
		state:     variant.NewState(),
	}
}

// Apply decodes a snapshot into the shadow state. A snapshot that cannot be
// decoded leaves the shadow untouched.
func (r *Receiver) Apply(data []byte) error {
	snapshot, err := Decode(data)
	if err != nil {
		return err
	}

	if snapshot.Mode != r.variant.ID() {
		return fmt.Errorf("%w: mode %s, expected %s", ErrMalformedSnapshot, snapshot.Mode, r.variant.ID())
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if snapshot.Stage == stage.Setup && r.stage != stage.Setup {
		r.log.Debug().Msg("match went back to setup, resetting shadow")
		r.state = r.variant.NewState()
	}

	if !fits(r.state, snapshot) {
		r.log.Warn().
			Int("teams", len(snapshot.TeamScores)).
			Int("objectives", len(snapshot.Objectives)).
			Msg("snapshot does not fit the shadow state, rebuilding")
		r.state = r.variant.NewState()
		reshape(r.state, snapshot)
	}

	r.stage = snapshot.Stage
	r.timeLeft = timer.Seconds(float64(snapshot.TimeLeft))
	r.state.SetTick(snapshot.LastTick)

	scores := r.state.Scores()
	for i, score := range snapshot.TeamScores {
		scores[i] = int(score)
	}

	for i, objective := range objectivesOf(r.state) {
		incoming := snapshot.Objectives[i]
		objective.Owner = incoming.Owner
		objective.Contest = incoming.Contest
		objective.RawProgress = incoming.RawProgress
		objective.OccupantCount = int(incoming.OccupantCount)
	}

	r.applied++
	return nil
}

func fits(state game.RuntimeState, snapshot *Snapshot) bool {
	return state.Mode() == snapshot.Mode &&
		len(state.Scores()) == len(snapshot.TeamScores) &&
		len(objectivesOf(state)) == len(snapshot.Objectives)
}

// reshape sizes a fresh state after the authority's snapshot, which is the
// source of truth when the local configuration disagrees.
func reshape(state game.RuntimeState, snapshot *Snapshot) {
	switch s := state.(type) {
	case *game.TeamScoreState:
		s.TeamScore = make([]int, len(snapshot.TeamScores))
	case *game.DominationState:
		s.TeamScore = make([]int, len(snapshot.TeamScores))
		s.Objectives = make([]*game.ObjectiveState, len(snapshot.Objectives))
		for i := range s.Objectives {
			s.Objectives[i] = game.NewObjectiveState(i)
		}
	}
}

// Smooth advances the presentation filter of every objective.
func (r *Receiver) Smooth(dt time.Duration) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	game.SmoothObjectives(r.state, dt.Seconds(), r.smoothing)
}

func (r *Receiver) State() game.RuntimeState {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.state
}

func (r *Receiver) Stage() stage.ID {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.stage
}

func (r *Receiver) TimeLeft() time.Duration {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.timeLeft
}

// Applied returns the number of snapshots applied so far.
func (r *Receiver) Applied() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.applied
}
