package state

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/arbiterfps/arbiter/pkg/gameserver"
	"github.com/arbiterfps/arbiter/pkg/gameserver/game"
	"github.com/arbiterfps/arbiter/pkg/gameserver/protocol/gamemode"
	"github.com/arbiterfps/arbiter/pkg/mmr"
)

// Store persists match results and keeps ratings up to date.
type Store struct {
	db  *gorm.DB
	elo *mmr.Elo
}

var _ gameserver.ResultRecorder = &Store{}

func New(db *gorm.DB, kFactor int) *Store {
	return &Store{db: db, elo: mmr.New(kFactor)}
}

func (s *Store) DB() *gorm.DB {
	return s.db
}

func winner(outcome game.Outcome) string {
	switch outcome.Kind {
	case game.PlayerWin:
		return outcome.Player.Key().String()
	case game.TeamWin:
		return fmt.Sprintf("team:%d", outcome.Team)
	}
	return ""
}

func joinScores(scores []int) string {
	parts := make([]string, len(scores))
	for i, score := range scores {
		parts[i] = strconv.Itoa(score)
	}
	return strings.Join(parts, ",")
}

// RecordResult stores the result and rates everyone who took part.
func (s *Store) RecordResult(ctx context.Context, result gameserver.Result) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record := MatchResult{
			Level:   result.Level,
			Mode:    result.Mode.String(),
			Outcome: result.Outcome.Kind.String(),
			Winner:  winner(result.Outcome),
			Scores:  joinScores(result.Scores),
			Players: uint(len(result.Players)),
			Created: result.Finished,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		return s.rate(tx, result)
	})
}

func getRating(tx *gorm.DB, participant, mode string) (*Rating, error) {
	var rating Rating
	err := tx.Where(Rating{
		Participant: participant,
		Mode:        mode,
	}).First(&rating).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &Rating{
			Participant: participant,
			Mode:        mode,
			Value:       mmr.Initial,
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

func (s *Store) rate(tx *gorm.DB, result gameserver.Result) error {
	if len(result.Players) < 2 || !result.Outcome.Decided() {
		return nil
	}

	mode := result.Mode.String()
	ratings := make([]*Rating, len(result.Players))
	for i, player := range result.Players {
		rating, err := getRating(tx, player.Key().String(), mode)
		if err != nil {
			return err
		}
		ratings[i] = rating
	}

	var outcomes []mmr.Outcome
	if gamemode.IsTeamMode(result.Mode) {
		outcomes = s.rateTeams(result, ratings)
	} else {
		values := make([]int, len(ratings))
		kills := make([]int, len(ratings))
		for i, rating := range ratings {
			values[i] = rating.Value
			kills[i] = result.Players[i].Kills
		}
		outcomes = s.elo.Field(values, kills)
	}

	for i, rating := range ratings {
		switch {
		case outcomes[i].Delta > 0:
			rating.Wins++
		case outcomes[i].Delta < 0:
			rating.Losses++
		default:
			rating.Draws++
		}
		rating.Value = outcomes[i].Rating

		log.Debug().
			Str("participant", rating.Participant).
			Stringer("rating", outcomes[i]).
			Msg("rating changed")

		if err := tx.Save(rating).Error; err != nil {
			return err
		}
	}

	log.Debug().
		Str("mode", mode).
		Int("players", len(ratings)).
		Msg("ratings updated")
	return nil
}

// rateTeams rates each player against the average of everyone not on
// their team.
func (s *Store) rateTeams(result gameserver.Result, ratings []*Rating) []mmr.Outcome {
	values := make([]int, len(ratings))
	teams := make([]int, len(ratings))
	for i, player := range result.Players {
		values[i] = ratings[i].Value
		teams[i] = int(player.Team)
	}

	winner := -1
	if result.Outcome.Kind == game.TeamWin {
		winner = int(result.Outcome.Team)
	}
	return s.elo.Teams(values, teams, winner)
}

// Recent returns the latest results, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]MatchResult, error) {
	var results []MatchResult
	err := s.db.WithContext(ctx).
		Order("created desc").
		Order("id desc").
		Limit(limit).
		Find(&results).Error
	return results, err
}

func (s *Store) Rating(ctx context.Context, participant game.Key, mode gamemode.ID) (*Rating, error) {
	return getRating(s.db.WithContext(ctx), participant.String(), mode.String())
}
