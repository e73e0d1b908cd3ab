package state

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbiterfps/arbiter/pkg/gameserver"
	"github.com/arbiterfps/arbiter/pkg/gameserver/game"
	"github.com/arbiterfps/arbiter/pkg/gameserver/protocol/gamemode"
	"github.com/arbiterfps/arbiter/pkg/mmr"
)

func newStore(t *testing.T) *Store {
	db, err := InitDB(filepath.Join(t.TempDir(), "arbiter.db"))
	require.NoError(t, err)
	return New(db, 0)
}

func TestRecordKillRace(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	winner := game.PlayerView{ID: 1, Kills: 10, Team: game.NoTeam}
	err := store.RecordResult(ctx, gameserver.Result{
		Level:   "arena",
		Mode:    gamemode.KillRace,
		Outcome: game.PlayerOutcome(winner),
		Players: []game.PlayerView{
			winner,
			{ID: 2, Kills: 4, Team: game.NoTeam},
			{ID: 2, IsBot: true, Kills: 0, Team: game.NoTeam},
		},
		Finished: time.Now(),
	})
	require.NoError(t, err)

	results, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "arena", results[0].Level)
	assert.Equal(t, "player", results[0].Outcome)
	assert.Equal(t, "player:1", results[0].Winner)
	assert.Equal(t, uint(3), results[0].Players)

	rating, err := store.Rating(ctx, game.Key{ID: 1}, gamemode.KillRace)
	require.NoError(t, err)
	assert.Equal(t, mmr.Initial+16, rating.Value)
	assert.Equal(t, uint(1), rating.Wins)

	rating, err = store.Rating(ctx, game.Key{ID: 2, IsBot: true}, gamemode.KillRace)
	require.NoError(t, err)
	assert.Equal(t, mmr.Initial-16, rating.Value)
	assert.Equal(t, uint(1), rating.Losses)
}

func TestRecordTeamResult(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	players := []game.PlayerView{
		{ID: 1, Team: 0},
		{ID: 2, Team: 1},
	}
	record := func(outcome game.Outcome) {
		err := store.RecordResult(ctx, gameserver.Result{
			Level:    "docks",
			Mode:     gamemode.TeamScore,
			Outcome:  outcome,
			Scores:   []int{40, 12},
			Players:  players,
			Finished: time.Now(),
		})
		require.NoError(t, err)
	}

	record(game.TeamOutcome(0))
	rating, err := store.Rating(ctx, game.Key{ID: 1}, gamemode.TeamScore)
	require.NoError(t, err)
	assert.Equal(t, mmr.Initial+16, rating.Value)

	record(game.NoOutcome())
	rating, err = store.Rating(ctx, game.Key{ID: 1}, gamemode.TeamScore)
	require.NoError(t, err)
	assert.Equal(t, mmr.Initial+16, rating.Value, "undecided matches are not rated")

	results, err := store.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "40,12", results[0].Scores)
}

func TestRatingDefaults(t *testing.T) {
	store := newStore(t)
	rating, err := store.Rating(context.Background(), game.Key{ID: 7}, gamemode.Domination)
	require.NoError(t, err)
	assert.Equal(t, mmr.Initial, rating.Value)
	assert.Equal(t, uint(0), rating.ID)
}
