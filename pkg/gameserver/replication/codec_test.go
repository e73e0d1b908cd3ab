package replication

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbiterfps/arbiter/pkg/gameserver/game"
	"github.com/arbiterfps/arbiter/pkg/gameserver/protocol/gamemode"
	"github.com/arbiterfps/arbiter/pkg/gameserver/protocol/stage"
)

func dominationState() *game.DominationState {
	state := game.NewDominationState(2, 3)
	state.TeamScore[0] = 7
	state.TeamScore[1] = 3
	state.LastTick = 42.5

	state.Objectives[0].Owner = 1
	state.Objectives[1].Enter(game.Key{ID: 1}, 0)
	state.Objectives[1].RawProgress = 37.5
	state.Objectives[2].Enter(game.Key{ID: 1}, 0)
	state.Objectives[2].Enter(game.Key{ID: 2, IsBot: true}, 1)
	return state
}

func TestRoundTrip(t *testing.T) {
	state := dominationState()

	snapshot, err := Decode(Encode(stage.Active, 90*time.Second, state))
	require.NoError(t, err)

	assert.Equal(t, uint8(Version), snapshot.Version)
	assert.Equal(t, gamemode.Domination, snapshot.Mode)
	assert.Equal(t, stage.Active, snapshot.Stage)
	assert.Equal(t, float32(90), snapshot.TimeLeft)
	assert.Equal(t, []int32{7, 3}, snapshot.TeamScores)
	assert.Equal(t, 42.5, snapshot.LastTick)
	require.Len(t, snapshot.Objectives, 3)

	for i, objective := range state.Objectives {
		decoded := snapshot.Objectives[i]
		assert.Equal(t, objective.Owner, decoded.Owner)
		assert.Equal(t, objective.Contest, decoded.Contest)
		assert.Equal(t, objective.RawProgress, decoded.RawProgress)
		assert.Equal(t, int32(objective.OccupantCount), decoded.OccupantCount)
	}
	assert.Equal(t, game.ContestState{Kind: game.Capturing, Team: 0}, snapshot.Objectives[1].Contest)
	assert.Equal(t, game.Contested, snapshot.Objectives[2].Contest.Kind)
}

func TestRoundTripTeamless(t *testing.T) {
	snapshot, err := Decode(Encode(stage.PostGame, 0, &game.KillRaceState{LastTick: 3}))
	require.NoError(t, err)

	assert.Equal(t, gamemode.KillRace, snapshot.Mode)
	assert.Equal(t, stage.PostGame, snapshot.Stage)
	assert.Empty(t, snapshot.TeamScores)
	assert.Empty(t, snapshot.Objectives)
	assert.Equal(t, 3.0, snapshot.LastTick)
}

func TestDecodeTruncated(t *testing.T) {
	data := Encode(stage.Active, time.Second, dominationState())

	for _, size := range []int{0, 5, headerSize, len(data) - 1} {
		_, err := Decode(data[:size])
		assert.True(t, errors.Is(err, ErrShortSnapshot), "size %d", size)
	}
}

func TestDecodeMalformed(t *testing.T) {
	data := Encode(stage.Active, time.Second, dominationState())
	data[0] = Version + 1

	_, err := Decode(data)
	assert.True(t, errors.Is(err, ErrMalformedSnapshot))
}

func TestRoundTripKeepsProgressExact(t *testing.T) {
	state := game.NewDominationState(2, 1)
	state.Objectives[0].Enter(game.Key{ID: 1}, 0)
	state.Objectives[0].Advance(1.0/30, 10, 1.5)
	require.NotZero(t, state.Objectives[0].RawProgress)

	snapshot, err := Decode(Encode(stage.Active, time.Second, state))
	require.NoError(t, err)
	assert.Equal(t, state.Objectives[0].RawProgress, snapshot.Objectives[0].RawProgress)

	receiver := NewReceiver(dominationVariant(t, 1), 4)
	require.NoError(t, receiver.Apply(Encode(stage.Active, time.Second, state)))
	shadow := receiver.State().(*game.DominationState)
	assert.Equal(t, state.Objectives[0].RawProgress, shadow.Objectives[0].RawProgress)
}
