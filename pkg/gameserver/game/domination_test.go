package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbiterfps/arbiter/pkg/gameserver/protocol/stage"
)

var (
	red1  = Key{ID: 1}
	red2  = Key{ID: 2}
	blue1 = Key{ID: 3}
)

func TestObjectiveContestStates(t *testing.T) {
	o := NewObjectiveState(0)
	assert.Equal(t, Neutral, o.Contest.Kind)

	o.Enter(red1, 0)
	assert.Equal(t, ContestState{Kind: Capturing, Team: 0}, o.Contest)
	assert.Equal(t, 1, o.OccupantCount)

	o.Enter(blue1, 1)
	assert.Equal(t, Contested, o.Contest.Kind)
	assert.Equal(t, 2, o.OccupantCount)

	o.Leave(red1)
	assert.Equal(t, ContestState{Kind: Capturing, Team: 1}, o.Contest)

	o.Leave(blue1)
	o.Leave(blue1)
	assert.Equal(t, Neutral, o.Contest.Kind)
	assert.Equal(t, 0, o.OccupantCount)
}

func TestObjectiveCaptureRate(t *testing.T) {
	o := NewObjectiveState(0)
	o.Enter(red1, 0)

	assert.False(t, o.Advance(1, 5, 2))
	assert.Equal(t, 5.0, o.RawProgress)

	// a second member of the same team doubles the rate
	o.Enter(red2, 0)
	assert.Equal(t, 5.0, o.RawProgress, "same team joining keeps progress")
	o.Advance(1, 5, 2)
	assert.Equal(t, 15.0, o.RawProgress)

	// an enemy entering wipes progress immediately
	o.Enter(blue1, 1)
	assert.Equal(t, Contested, o.Contest.Kind)
	assert.Equal(t, 0.0, o.RawProgress)
	o.Advance(1, 5, 2)
	assert.Equal(t, 0.0, o.RawProgress)
}

func TestCaptureRateCompounds(t *testing.T) {
	assert.Equal(t, 0.0, CaptureRate(5, 2, 0))
	assert.Equal(t, 5.0, CaptureRate(5, 2, 1))
	assert.Equal(t, 10.0, CaptureRate(5, 2, 2))
	assert.Equal(t, 20.0, CaptureRate(5, 2, 3))
	assert.Equal(t, 5.0, CaptureRate(5, 0, 3))
}

func TestObjectiveCapture(t *testing.T) {
	o := NewObjectiveState(0)
	o.Enter(red1, 0)

	captured := false
	for i := 0; i < 20 && !captured; i++ {
		captured = o.Advance(1, 5, 2)
	}
	require.True(t, captured)
	assert.Equal(t, TeamID(0), o.Owner)
	assert.Equal(t, 0.0, o.RawProgress)

	// owners standing on their own flag make no progress
	o.Advance(1, 5, 2)
	assert.Equal(t, 0.0, o.RawProgress)
}

func TestObjectiveSmoothing(t *testing.T) {
	o := NewObjectiveState(0)
	o.RawProgress = 50

	o.Smooth(0.1, 4)
	assert.Greater(t, o.SmoothedProgress, 0.0)
	assert.Less(t, o.SmoothedProgress, 50.0)

	for i := 0; i < 200; i++ {
		o.Smooth(0.1, 4)
	}
	assert.InDelta(t, 50.0, o.SmoothedProgress, 0.01)
	assert.Equal(t, 50.0, o.RawProgress, "smoothing never touches raw progress")

	o.Smooth(0.1, 0)
	assert.Equal(t, 50.0, o.SmoothedProgress)
}

func TestDominationStepCapturesAndNotifies(t *testing.T) {
	d := NewDomination(dominationConfig())
	state := d.NewState().(*DominationState)
	bots := &recordingBots{}

	state.Objectives[1].Enter(red1, 0)

	for now := 1.0; now <= 20; now++ {
		f := frame(state, now, 1, nil)
		f.Bots = bots
		d.Step(f)
	}

	assert.Equal(t, TeamID(0), state.Objectives[1].Owner)
	assert.Equal(t, []capture{{index: 1, owner: 0}}, bots.captures)
}

func TestDominationScoringTick(t *testing.T) {
	config := dominationConfig()
	config.Domination.PointLimit = 7
	d := NewDomination(config)
	state := d.NewState().(*DominationState)
	state.Objectives[0].Owner = 1
	state.Objectives[2].Owner = 1

	_, done := d.Step(frame(state, 4, 1, nil))
	assert.False(t, done)
	assert.Equal(t, []int{0, 0}, state.TeamScore, "no tick before the interval")

	_, done = d.Step(frame(state, 5, 1, nil))
	assert.False(t, done)
	assert.Equal(t, []int{0, 2}, state.TeamScore)

	d.Step(frame(state, 10, 5, nil))
	assert.Equal(t, []int{0, 4}, state.TeamScore)

	d.Step(frame(state, 15, 5, nil))
	assert.Equal(t, []int{0, 6}, state.TeamScore)

	outcome, done := d.Step(frame(state, 20, 5, nil))
	require.True(t, done, "reaching the limit ends the match")
	assert.Equal(t, TeamOutcome(1), outcome)
	assert.Equal(t, []int{0, 7}, state.TeamScore, "score is clamped to the limit")

	for now := 25.0; now < 100; now += 5 {
		d.Step(frame(state, now, 5, nil))
		assert.LessOrEqual(t, state.TeamScore[1], 7)
	}
}

func TestDominationTieAtLimitIsDraw(t *testing.T) {
	d := NewDomination(dominationConfig())
	state := d.NewState().(*DominationState)
	state.TeamScore = []int{9, 9}
	state.Objectives[0].Owner = 0
	state.Objectives[1].Owner = 1

	outcome, done := d.Step(frame(state, 5, 5, nil))
	require.True(t, done)
	assert.Equal(t, Draw, outcome.Kind)
}

func TestDominationSpawnTiers(t *testing.T) {
	d := NewDomination(dominationConfig())
	state := d.NewState().(*DominationState)
	rng := rand.New(rand.NewSource(1))
	red := PlayerView{ID: 1, Team: 0}

	assert.Equal(t, []string{"team0", GroupFallback}, d.SpawnTiers(stage.Active, red, state, rng))

	state.Objectives[2].Owner = 0
	assert.Equal(t, []string{"flag2", GroupFallback}, d.SpawnTiers(stage.Active, red, state, rng))
	assert.Equal(t, []string{"team0", GroupFallback}, d.SpawnTiers(stage.Setup, red, state, rng))
}

func TestDominationResetKeepsOccupants(t *testing.T) {
	d := NewDomination(dominationConfig())
	state := d.NewState().(*DominationState)
	state.Objectives[0].Enter(red1, 0)
	state.Objectives[0].Owner = 1
	state.TeamScore[1] = 5

	d.OnStageChange(stage.Setup, stage.Active, state)
	assert.Equal(t, []int{0, 0}, state.TeamScore)
	assert.Equal(t, NoTeam, state.Objectives[0].Owner)
	assert.Equal(t, 1, state.Objectives[0].OccupantCount)
	assert.Equal(t, Capturing, state.Objectives[0].Contest.Kind)
}
