package replication

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbiterfps/arbiter/pkg/gameserver/game"
	"github.com/arbiterfps/arbiter/pkg/gameserver/protocol/stage"
)

func dominationVariant(t *testing.T, flags int) game.Variant {
	variant, err := game.NewVariant(&game.Config{
		Mode:         "domination",
		Capacity:     16,
		MatchSeconds: 600,
		Domination: game.DominationConfig{
			Teams:            2,
			Flags:            flags,
			BaseCaptureSpeed: 5,
			PointsPerFlag:    1,
			PointLimit:       100,
			Smoothing:        4,
		},
	})
	require.NoError(t, err)
	return variant
}

func TestReceiverApply(t *testing.T) {
	receiver := NewReceiver(dominationVariant(t, 3), 4)

	require.NoError(t, receiver.Apply(Encode(stage.Active, 30*time.Second, dominationState())))

	state := receiver.State().(*game.DominationState)
	assert.Equal(t, []int{7, 3}, state.TeamScore)
	assert.Equal(t, 42.5, state.LastTick)
	assert.Equal(t, game.TeamID(1), state.Objectives[0].Owner)
	assert.Equal(t, 37.5, state.Objectives[1].RawProgress)
	assert.Equal(t, 2, state.Objectives[2].OccupantCount)
	assert.Equal(t, stage.Active, receiver.Stage())
	assert.Equal(t, 30*time.Second, receiver.TimeLeft())
	assert.Equal(t, 1, receiver.Applied())
}

func TestReceiverRebuildsOnShapeMismatch(t *testing.T) {
	receiver := NewReceiver(dominationVariant(t, 1), 0)

	require.NoError(t, receiver.Apply(Encode(stage.Active, time.Second, dominationState())))

	state := receiver.State().(*game.DominationState)
	assert.Len(t, state.Objectives, 3)
	assert.Equal(t, game.Contested, state.Objectives[2].Contest.Kind)
}

func TestReceiverKeepsShadowOnBadSnapshot(t *testing.T) {
	receiver := NewReceiver(dominationVariant(t, 3), 0)
	data := Encode(stage.Active, time.Second, dominationState())
	require.NoError(t, receiver.Apply(data))

	err := receiver.Apply(data[:len(data)-3])
	assert.True(t, errors.Is(err, ErrShortSnapshot))

	err = receiver.Apply(Encode(stage.Active, time.Second, &game.KillRaceState{}))
	assert.True(t, errors.Is(err, ErrMalformedSnapshot))

	state := receiver.State().(*game.DominationState)
	assert.Equal(t, []int{7, 3}, state.TeamScore)
	assert.Equal(t, 1, receiver.Applied())
}

func TestReceiverResetsOnSetup(t *testing.T) {
	receiver := NewReceiver(dominationVariant(t, 3), 0)
	require.NoError(t, receiver.Apply(Encode(stage.PostGame, time.Second, dominationState())))

	fresh := game.NewDominationState(2, 3)
	fresh.Objectives[0].Enter(game.Key{ID: 5}, 1)
	require.NoError(t, receiver.Apply(Encode(stage.Setup, 10*time.Second, fresh)))

	state := receiver.State().(*game.DominationState)
	assert.Equal(t, []int{0, 0}, state.TeamScore)
	assert.Equal(t, game.NoTeam, state.Objectives[0].Owner)
	assert.Equal(t, 1, state.Objectives[0].OccupantCount)
	assert.Equal(t, stage.Setup, receiver.Stage())
}

func TestReceiverSmooth(t *testing.T) {
	receiver := NewReceiver(dominationVariant(t, 3), 0)
	require.NoError(t, receiver.Apply(Encode(stage.Active, time.Second, dominationState())))

	receiver.Smooth(100 * time.Millisecond)
	state := receiver.State().(*game.DominationState)
	assert.Equal(t, 37.5, state.Objectives[1].SmoothedProgress)
}

func TestLocalChannel(t *testing.T) {
	channel := NewLocalChannel()
	subscriber := channel.Subscribe()
	defer subscriber.Done()

	Channels{channel}.Publish([]byte{1, 2, 3})
	assert.Equal(t, []byte{1, 2, 3}, <-subscriber.Recv())
}
