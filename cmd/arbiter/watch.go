package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/arbiterfps/arbiter/pkg/config"
	"github.com/arbiterfps/arbiter/pkg/gameserver/game"
	"github.com/arbiterfps/arbiter/pkg/gameserver/replication"
	"github.com/arbiterfps/arbiter/pkg/ingress"
	"github.com/arbiterfps/arbiter/pkg/relay"

	"github.com/rs/zerolog/log"
)

func logShadow(receiver *replication.Receiver) {
	event := log.Info().
		Str("stage", receiver.Stage().String()).
		Dur("timeLeft", receiver.TimeLeft()).
		Int("applied", receiver.Applied())

	state := receiver.State()
	if scores := state.Scores(); scores != nil {
		event = event.Ints("scores", scores)
	}
	if s, ok := state.(*game.DominationState); ok {
		for _, objective := range s.Objectives {
			event = event.Float64(
				fmt.Sprintf("flag%d", objective.Index),
				objective.SmoothedProgress,
			)
		}
	}
	event.Msg("match")
}

func watchCommand(url string, useRedis bool, configs []string) error {
	conf, err := config.Process(configs)
	if err != nil {
		return fmt.Errorf("failed to load arbiter configuration: %w", err)
	}

	match := conf.Server.Game.Match
	variant, err := game.NewVariant(&match)
	if err != nil {
		return err
	}
	receiver := replication.NewReceiver(variant, match.Domination.Smoothing)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	errc := make(chan error, 1)
	if useRedis {
		settings := conf.Server.Redis
		redisRelay := relay.New(relay.Settings{
			Address:  settings.Address,
			Password: settings.Password,
			DB:       settings.DB,
			Prefix:   settings.Prefix,
		})
		defer redisRelay.Close()

		go func() {
			errc <- redisRelay.Follow(ctx, receiver)
		}()
	} else {
		replica, err := ingress.Dial(ctx, url, receiver)
		if err != nil {
			return fmt.Errorf("could not connect to %s: %w", url, err)
		}
		defer replica.Close()

		if err := replica.Hello(ctx, "arbiter watch"); err != nil {
			return err
		}

		go func() {
			errc <- replica.Watch(ctx, func(op string, _ []byte) {
				log.Debug().Str("op", op).Msg("message")
			})
		}()
	}

	frame := time.Second / 10
	ticker := time.NewTicker(frame)
	defer ticker.Stop()
	report := time.NewTicker(time.Second)
	defer report.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errc:
			if ctx.Err() != nil {
				return nil
			}
			return err
		case <-ticker.C:
			receiver.Smooth(frame)
		case <-report.C:
			logShadow(receiver)
		}
	}
}
